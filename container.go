package sqlitedbm

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const listTablesQuery = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\' ORDER BY name`

// Container is a single database file holding any number of named maps,
// one table each. All maps share the container's connection.
type Container struct {
	conn   *sqlite.Conn
	opt    Options
	flag   Flag
	maps   map[string]*Map
	closed bool
}

// OpenContainer opens the database at path. opt.Flag applies to the file as
// a whole; with FlagNew every existing map is dropped. opt.Table is ignored.
func OpenContainer(path string, opt Options) (*Container, error) {
	flag := opt.Flag.orDefault()
	if !flag.valid() {
		return nil, fmt.Errorf("sqlitedbm: %w %q", ErrInvalidFlag, flag)
	}
	conn, err := openConn(path, flag, opt)
	if err != nil {
		return nil, err
	}
	c := &Container{
		conn: conn,
		opt:  opt,
		flag: flag,
		maps: make(map[string]*Map),
	}
	if c.opt.Logf == nil {
		c.opt.Logf = slogf
	}
	if flag == FlagNew {
		names, err := c.MapNames()
		if err == nil {
			for _, name := range names {
				err = c.dropTable(name)
				if err != nil {
					break
				}
			}
		}
		if err != nil {
			conn.Close()
			return nil, err
		}
	}
	return c, nil
}

// Map returns the map stored in table name, creating the table if needed.
// Repeated calls with the same name return the same *Map until it is closed.
// Names differing only in ASCII case refer to the same table, as in SQLite,
// and share one *Map.
func (c *Container) Map(name string) (*Map, error) {
	if c.closed {
		return nil, fmt.Errorf("sqlitedbm: map %q: %w", name, ErrClosed)
	}
	if err := validateMapName(name); err != nil {
		return nil, err
	}
	key := foldName(name)
	if m := c.maps[key]; m != nil && !m.closed {
		return m, nil
	}
	m, err := newMap(c.conn, c, name, c.flag, c.opt)
	if err != nil {
		return nil, err
	}
	c.maps[key] = m
	return m, nil
}

// MapNames lists the maps present in the file, sorted by name.
func (c *Container) MapNames() ([]string, error) {
	if c.closed {
		return nil, fmt.Errorf("sqlitedbm: %w", ErrClosed)
	}
	var names []string
	err := sqlitex.Execute(c.conn, listTablesQuery, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			names = append(names, stmt.ColumnText(0))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitedbm: listing maps: %w", err)
	}
	return names, nil
}

// DropMap deletes the table backing name. A *Map previously returned for
// name becomes closed.
func (c *Container) DropMap(name string) error {
	if c.closed {
		return fmt.Errorf("sqlitedbm: map %q: %w", name, ErrClosed)
	}
	if c.flag.ReadOnly() {
		return &MapError{Map: name, Op: "drop", Err: ErrReadOnly}
	}
	if err := validateMapName(name); err != nil {
		return err
	}
	return c.dropTable(name)
}

func (c *Container) dropTable(name string) error {
	q := newQueries(name)
	err := sqlitex.ExecuteTransient(c.conn, q.drop, nil)
	if err != nil {
		return &MapError{Map: name, Op: "drop", Err: err}
	}
	key := foldName(name)
	if m := c.maps[key]; m != nil {
		m.closed = true
		delete(c.maps, key)
	}
	if c.opt.Verbose {
		c.opt.Logf("db: DROP %s", name)
	}
	return nil
}

func (c *Container) ReadOnly() bool {
	return c.flag.ReadOnly()
}

// Close closes every map and the connection.
func (c *Container) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	for _, m := range c.maps {
		m.closed = true
	}
	clear(c.maps)
	err := c.conn.Close()
	if err != nil {
		return fmt.Errorf("sqlitedbm: closing: %w", err)
	}
	return nil
}
