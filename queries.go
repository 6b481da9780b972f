package sqlitedbm

import "strings"

// MaxQueryVars is the largest number of parameters bound into a single
// statement. Bulk lookups are split into chunks of at most this many keys.
const MaxQueryVars = 999

// maxRowsPerInsert keeps a multi-row insert within MaxQueryVars.
const maxRowsPerInsert = MaxQueryVars / 2

// DefaultTable is the table used by Open when Options.Table is empty.
const DefaultTable = "kv_table"

// queries holds prebuilt statements for a single table. Multi-key lookups
// are memoized per chunk size, so the placeholder list for a given size is
// only built once per map.
type queries struct {
	create  string
	get     string
	getAll  string
	getOne  string
	set     string
	del     string
	clear   string
	count   string
	drop    string
	manyPfx string
	setPfx  string

	many    map[int]string
	setRows map[int]string
}

func newQueries(table string) *queries {
	t := quoteIdent(table)
	return &queries{
		create:  "CREATE TABLE IF NOT EXISTS " + t + " (key TEXT PRIMARY KEY, val TEXT)",
		get:     "SELECT val FROM " + t + " WHERE key = ?",
		getAll:  "SELECT key, val FROM " + t,
		getOne:  "SELECT key, val FROM " + t + " LIMIT 1 OFFSET 0",
		set:     "INSERT OR REPLACE INTO " + t + " (key, val) VALUES (?, ?)",
		del:     "DELETE FROM " + t + " WHERE key = ?",
		clear:   "DELETE FROM " + t,
		count:   "SELECT COUNT(*) FROM " + t,
		drop:    "DROP TABLE IF EXISTS " + t,
		manyPfx: "SELECT key, val FROM " + t + " WHERE key IN (",
		setPfx:  "INSERT OR REPLACE INTO " + t + " (key, val) VALUES ",
		many:    make(map[int]string),
		setRows: make(map[int]string),
	}
}

// getMany returns a lookup statement with n placeholders.
func (q *queries) getMany(n int) string {
	if n <= 0 || n > MaxQueryVars {
		panic("getMany: invalid number of keys")
	}
	if s, ok := q.many[n]; ok {
		return s
	}
	var buf strings.Builder
	buf.Grow(len(q.manyPfx) + 2*n + 1)
	buf.WriteString(q.manyPfx)
	for i := range n {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('?')
	}
	buf.WriteByte(')')
	s := buf.String()
	q.many[n] = s
	return s
}

// setMany returns an insert-or-replace statement for n rows.
func (q *queries) setMany(n int) string {
	if n <= 0 || n > maxRowsPerInsert {
		panic("setMany: invalid number of rows")
	}
	if s, ok := q.setRows[n]; ok {
		return s
	}
	var buf strings.Builder
	buf.Grow(len(q.setPfx) + 6*n)
	buf.WriteString(q.setPfx)
	for i := range n {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("(?,?)")
	}
	s := buf.String()
	q.setRows[n] = s
	return s
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
