package sqlitedbm

import (
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

type Stats struct {
	Rows int

	PageCount     int
	PageSize      int
	FreelistCount int
}

// FileSize is the size of the database file in bytes, shared by every map
// stored in it.
func (s *Stats) FileSize() int {
	return s.PageCount * s.PageSize
}

// FreeSize is the space held by unused pages, reclaimable by VACUUM.
func (s *Stats) FreeSize() int {
	return s.FreelistCount * s.PageSize
}

func (m *Map) Stats() (Stats, error) {
	var s Stats
	var err error
	s.Rows, err = m.Len()
	if err != nil {
		return s, err
	}
	for _, p := range []struct {
		pragma string
		dest   *int
	}{
		{"PRAGMA page_count", &s.PageCount},
		{"PRAGMA page_size", &s.PageSize},
		{"PRAGMA freelist_count", &s.FreelistCount},
	} {
		err = sqlitex.Execute(m.conn, p.pragma, &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				*p.dest = stmt.ColumnInt(0)
				return nil
			},
		})
		if err != nil {
			return s, mapErrf(m, "stats", "", err)
		}
	}
	return s, nil
}
