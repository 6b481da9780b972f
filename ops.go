package sqlitedbm

import (
	"errors"
	"iter"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Get returns the value stored under key, or a *KeyError if there is none.
func (m *Map) Get(key string) (string, error) {
	if err := m.check("get"); err != nil {
		return "", err
	}
	v, found, err := m.get(key)
	if err != nil {
		return "", err
	}
	if !found {
		return "", &KeyError{key}
	}
	return v, nil
}

// GetDefault returns the value stored under key, or def if there is none.
func (m *Map) GetDefault(key, def string) (string, error) {
	v, err := m.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return def, nil
	}
	return v, err
}

func (m *Map) get(key string) (value string, found bool, err error) {
	err = sqlitex.Execute(m.conn, m.q.get, &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value, found = m.columnValue(stmt, 0), true
			return nil
		},
	})
	if err != nil {
		return "", false, mapErrf(m, "get", key, err)
	}
	if m.verbose {
		if found {
			m.logf("db: GET %s/%s => %s", m.name, key, loggableValue(value))
		} else {
			m.logf("db: GET.NOTFOUND %s/%s", m.name, key)
		}
	}
	return value, found, nil
}

func (m *Map) Has(key string) (bool, error) {
	_, err := m.Get(key)
	if err == nil {
		return true, nil
	} else if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	} else {
		return false, err
	}
}

// Set stores value under key, replacing any previous value.
func (m *Map) Set(key, value string) error {
	if err := m.checkWritable("set"); err != nil {
		return err
	}
	return m.set(key, value)
}

func (m *Map) set(key, value string) error {
	err := sqlitex.Execute(m.conn, m.q.set, &sqlitex.ExecOptions{
		Args: []any{key, m.valueArg(value)},
	})
	if err != nil {
		return mapErrf(m, "set", key, err)
	}
	if m.verbose {
		m.logf("db: SET %s/%s = %s", m.name, key, loggableValue(value))
	}
	return nil
}

// Delete removes key, failing with a *KeyError if it is not present.
func (m *Map) Delete(key string) error {
	if err := m.checkWritable("delete"); err != nil {
		return err
	}
	_, found, err := m.get(key)
	if err != nil {
		return err
	}
	if !found {
		return &KeyError{key}
	}
	return m.delete(key)
}

func (m *Map) delete(key string) error {
	err := sqlitex.Execute(m.conn, m.q.del, &sqlitex.ExecOptions{
		Args: []any{key},
	})
	if err != nil {
		return mapErrf(m, "delete", key, err)
	}
	if m.verbose {
		m.logf("db: DELETE %s/%s", m.name, key)
	}
	return nil
}

func (m *Map) Len() (int, error) {
	if err := m.check("len"); err != nil {
		return 0, err
	}
	var n int
	err := sqlitex.Execute(m.conn, m.q.count, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			n = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return 0, mapErrf(m, "len", "", err)
	}
	return n, nil
}

// Clear removes every entry and reclaims the freed space when it can. Space
// is left for later reuse if another statement on the connection is open,
// for example an unfinished Scan.
func (m *Map) Clear() error {
	if err := m.checkWritable("clear"); err != nil {
		return err
	}
	return m.clear()
}

func (m *Map) clear() error {
	err := sqlitex.ExecuteTransient(m.conn, m.q.clear, nil)
	if err != nil {
		return mapErrf(m, "clear", "", err)
	}
	if m.verbose {
		m.logf("db: CLEAR %s", m.name)
	}
	// The rows are gone at this point; reclaiming space is best-effort.
	// VACUUM fails while any statement on the connection is still running.
	err = sqlitex.ExecuteTransient(m.conn, "VACUUM", nil)
	if err != nil && m.verbose {
		m.logf("db: VACUUM.SKIPPED %s: %v", m.name, err)
	}
	return nil
}

// Pop removes key and returns its value. If key is absent, def is returned
// when supplied, otherwise a *KeyError.
func (m *Map) Pop(key string, def Optional[string]) (string, error) {
	if err := m.checkWritable("pop"); err != nil {
		return "", err
	}
	v, found, err := m.get(key)
	if err != nil {
		return "", err
	}
	if !found {
		if def.Valid {
			return def.Value, nil
		}
		return "", &KeyError{key}
	}
	err = m.delete(key)
	if err != nil {
		return "", err
	}
	return v, nil
}

// PopItem removes and returns some entry. Which one is up to SQLite.
func (m *Map) PopItem() (key, value string, err error) {
	if err := m.checkWritable("popitem"); err != nil {
		return "", "", err
	}
	var found bool
	err = sqlitex.Execute(m.conn, m.q.getOne, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			key, value, found = stmt.ColumnText(0), m.columnValue(stmt, 1), true
			return nil
		},
	})
	if err != nil {
		return "", "", mapErrf(m, "popitem", "", err)
	}
	if !found {
		return "", "", &MapError{Map: m.name, Op: "popitem", Err: errEmpty}
	}
	err = m.delete(key)
	if err != nil {
		return "", "", err
	}
	return key, value, nil
}

// SetDefault returns the value under key, storing def first if key is absent.
func (m *Map) SetDefault(key, def string) (string, error) {
	if err := m.checkWritable("setdefault"); err != nil {
		return "", err
	}
	v, found, err := m.get(key)
	if err != nil {
		return "", err
	}
	if found {
		return v, nil
	}
	err = m.set(key, def)
	if err != nil {
		return "", err
	}
	return def, nil
}

// Update stores all pairs from all sources in a single transaction. Later
// pairs win over earlier ones with the same key. Nothing is stored if any
// write fails.
//
// Pass maps via maps.All and pair lists via Pairs.
func (m *Map) Update(srcs ...iter.Seq2[string, string]) (err error) {
	if err := m.checkWritable("update"); err != nil {
		return err
	}

	defer sqlitex.Save(m.conn)(&err)

	args := getArgs()
	defer func() { putArgs(args) }()

	var rows, stmts int
	flush := func() error {
		n := len(args) / 2
		opts := &sqlitex.ExecOptions{Args: args}
		var err error
		if n == maxRowsPerInsert {
			err = sqlitex.Execute(m.conn, m.q.setMany(n), opts)
		} else {
			err = sqlitex.ExecuteTransient(m.conn, m.q.setMany(n), opts)
		}
		if err != nil {
			return mapErrf(m, "update", "", err)
		}
		rows += n
		stmts++
		args = args[:0]
		return nil
	}

	for _, src := range srcs {
		for k, v := range src {
			if len(args) == 2*maxRowsPerInsert {
				if err := flush(); err != nil {
					return err
				}
			}
			args = append(args, k, m.valueArg(v))
		}
	}
	if len(args) > 0 {
		if err := flush(); err != nil {
			return err
		}
	}

	if m.verbose {
		m.logf("db: UPDATE %s rows=%d stmts=%d", m.name, rows, stmts)
	}
	return nil
}
