package sqlitedbm

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// MemoryPath opens a private in-memory database. Every open of MemoryPath
// yields a fresh, empty store that is never shared.
const MemoryPath = ":memory:"

// DefaultMode is applied to newly created files when Options.Mode is zero.
const DefaultMode fs.FileMode = 0666

type Options struct {
	Flag Flag

	// Mode is the permission of a newly created file, subject to umask.
	Mode fs.FileMode

	// Table is the table backing the map; DefaultTable if empty.
	Table string

	// BusyTimeout is forwarded to SQLite when non-zero.
	BusyTimeout time.Duration

	// BlobValues stores values as BLOBs and reads them back as raw bytes.
	BlobValues bool

	Logf    func(format string, args ...any)
	Verbose bool
}

// Map is a string-to-string dictionary stored in one SQLite table.
//
// A Map owns a single connection and issues statements on it serially.
// It is not safe for concurrent use; open one Map per goroutine instead.
type Map struct {
	conn  *sqlite.Conn
	owner *Container
	name  string
	q     *queries

	readonly   bool
	blobValues bool
	closed     bool

	logf    func(format string, args ...any)
	verbose bool
}

// Open opens the map stored at path according to opt.Flag.
func Open(path string, opt Options) (*Map, error) {
	flag := opt.Flag.orDefault()
	if !flag.valid() {
		return nil, fmt.Errorf("sqlitedbm: %w %q", ErrInvalidFlag, flag)
	}
	table := opt.Table
	if table == "" {
		table = DefaultTable
	}
	if err := validateMapName(table); err != nil {
		return nil, err
	}

	conn, err := openConn(path, flag, opt)
	if err != nil {
		return nil, err
	}

	m, err := newMap(conn, nil, table, flag, opt)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if flag == FlagNew {
		err = m.clear()
		if err != nil {
			conn.Close()
			return nil, err
		}
	}
	return m, nil
}

func openConn(path string, flag Flag, opt Options) (*sqlite.Conn, error) {
	if path != MemoryPath {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("sqlitedbm: %w", err)
		}
		path = abs

		_, err = os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			if flag.MustExist() {
				return nil, fmt.Errorf("sqlitedbm: %w at %s", ErrStoreNotFound, path)
			}
			mode := opt.Mode
			if mode == 0 {
				mode = DefaultMode
			}
			err = createFile(path, mode)
			if err != nil {
				return nil, fmt.Errorf("sqlitedbm: %w", err)
			}
		} else if err != nil {
			return nil, fmt.Errorf("sqlitedbm: %w", err)
		}
	}

	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate|sqlite.OpenNoMutex)
	if err != nil {
		return nil, fmt.Errorf("sqlitedbm: opening %s: %w", path, err)
	}
	if opt.BusyTimeout > 0 {
		conn.SetBusyTimeout(opt.BusyTimeout)
	}
	return conn, nil
}

// createFile creates an empty file so that mode is honored; SQLite itself
// always creates databases with its own default permissions.
func createFile(path string, mode fs.FileMode) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, mode)
	if err != nil {
		return err
	}
	return f.Close()
}

func newMap(conn *sqlite.Conn, owner *Container, table string, flag Flag, opt Options) (*Map, error) {
	m := &Map{
		conn:       conn,
		owner:      owner,
		name:       table,
		q:          newQueries(table),
		readonly:   flag.ReadOnly(),
		blobValues: opt.BlobValues,
		logf:       opt.Logf,
		verbose:    opt.Verbose,
	}
	if m.logf == nil {
		m.logf = slogf
	}

	err := sqlitex.ExecuteTransient(conn, m.q.create, nil)
	if err != nil {
		return nil, mapErrf(m, "create", "", err)
	}
	return m, nil
}

func validateMapName(name string) error {
	if name == "" || strings.HasPrefix(strings.ToLower(name), "sqlite_") || strings.ContainsRune(name, 0) {
		return fmt.Errorf("sqlitedbm: %w %q", ErrInvalidMapName, name)
	}
	return nil
}

func slogf(format string, args ...any) {
	slog.Debug(fmt.Sprintf(format, args...))
}

// Name returns the name of the table backing the map.
func (m *Map) Name() string {
	return m.name
}

func (m *Map) ReadOnly() bool {
	return m.readonly
}

// SetBlobValues switches value storage between TEXT and raw BLOB bytes.
// Existing values remain readable either way.
func (m *Map) SetBlobValues(on bool) {
	m.blobValues = on
}

// Close releases the connection. Maps obtained from a Container only become
// unusable; the connection is closed together with the container.
func (m *Map) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	if m.owner != nil {
		return nil
	}
	err := m.conn.Close()
	if err != nil {
		return fmt.Errorf("sqlitedbm: closing: %w", err)
	}
	return nil
}

func (m *Map) check(op string) error {
	if m.closed || (m.owner != nil && m.owner.closed) {
		return &MapError{Map: m.name, Op: op, Err: ErrClosed}
	}
	return nil
}

func (m *Map) checkWritable(op string) error {
	if err := m.check(op); err != nil {
		return err
	}
	if m.readonly {
		return &MapError{Map: m.name, Op: op, Err: ErrReadOnly}
	}
	return nil
}

func (m *Map) valueArg(v string) any {
	if m.blobValues {
		return []byte(v)
	}
	return v
}

func (m *Map) columnValue(stmt *sqlite.Stmt, col int) string {
	if m.blobValues {
		buf := make([]byte, stmt.ColumnLen(col))
		stmt.ColumnBytes(col, buf)
		return string(buf)
	}
	return stmt.ColumnText(col)
}
