package sqlitedbm

import (
	"iter"

	"zombiezen.com/go/sqlite"
)

// Cursor walks every entry of a map in unspecified order. It holds an open
// statement until Next returns false or Close is called.
//
// Mutating the map while a cursor is open is allowed, but whether the
// cursor observes the change is unspecified.
type Cursor struct {
	m     *Map
	stmt  *sqlite.Stmt
	key   string
	value string
	err   error
	rows  int
}

// Scan starts a full scan of the map.
func (m *Map) Scan() *Cursor {
	c := &Cursor{m: m}
	if err := m.check("scan"); err != nil {
		c.err = err
		return c
	}
	stmt, _, err := m.conn.PrepareTransient(m.q.getAll)
	if err != nil {
		c.err = mapErrf(m, "scan", "", err)
		return c
	}
	c.stmt = stmt
	return c
}

func (c *Cursor) Next() bool {
	if c.stmt == nil {
		return false
	}
	if err := c.m.check("scan"); err != nil {
		c.err = err
		c.Close()
		return false
	}
	hasRow, err := c.stmt.Step()
	if err != nil {
		c.err = mapErrf(c.m, "scan", "", err)
		c.Close()
		return false
	}
	if !hasRow {
		c.Close()
		return false
	}
	c.key = c.stmt.ColumnText(0)
	c.value = c.m.columnValue(c.stmt, 1)
	c.rows++
	return true
}

func (c *Cursor) Key() string   { return c.key }
func (c *Cursor) Value() string { return c.value }

// Err returns the first error encountered by the cursor.
func (c *Cursor) Err() error {
	return c.err
}

// Close finalizes the underlying statement. It is safe to call repeatedly.
func (c *Cursor) Close() error {
	if c.stmt == nil {
		return nil
	}
	stmt := c.stmt
	c.stmt = nil
	if c.m.verbose {
		c.m.logf("db: SCAN %s rows=%d", c.m.name, c.rows)
	}
	err := stmt.Finalize()
	if err != nil && c.err == nil {
		c.err = mapErrf(c.m, "scan", "", err)
	}
	return err
}

// Items iterates over all entries. It panics with a *MapError if the scan
// fails; use Scan to handle errors explicitly.
func (m *Map) Items() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		c := m.Scan()
		defer c.Close()
		for c.Next() {
			if !yield(c.key, c.value) {
				return
			}
		}
		if c.err != nil {
			panic(c.err)
		}
	}
}

// Keys iterates over all keys. Panics like Items.
func (m *Map) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for k := range m.Items() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values iterates over all values. Panics like Items.
func (m *Map) Values() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, v := range m.Items() {
			if !yield(v) {
				return
			}
		}
	}
}

// All is the same as Keys, so that ranging over a map yields its keys.
func (m *Map) All() iter.Seq[string] {
	return m.Keys()
}

func (m *Map) AllItems() ([]Item, error) {
	var result []Item
	c := m.Scan()
	defer c.Close()
	for c.Next() {
		result = append(result, Item{c.key, c.value})
	}
	if c.err != nil {
		return nil, c.err
	}
	return result, nil
}

func (m *Map) AllKeys() ([]string, error) {
	var result []string
	c := m.Scan()
	defer c.Close()
	for c.Next() {
		result = append(result, c.key)
	}
	if c.err != nil {
		return nil, c.err
	}
	return result, nil
}

func (m *Map) AllValues() ([]string, error) {
	var result []string
	c := m.Scan()
	defer c.Close()
	for c.Next() {
		result = append(result, c.value)
	}
	if c.err != nil {
		return nil, c.err
	}
	return result, nil
}
