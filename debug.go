package sqlitedbm

import (
	"fmt"
	"io"
	"strings"
)

type DumpFlags uint64

const (
	DumpHeader = DumpFlags(1 << iota)
	DumpRows
	DumpStats

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump writes a human-readable listing of the map to w.
func (m *Map) Dump(w io.Writer, f DumpFlags) error {
	s, err := m.Stats()
	if err != nil {
		return err
	}

	if f.Contains(DumpHeader) {
		fmt.Fprintln(w, dumpSep1)
		fmt.Fprintf(w, "%s (%d rows)\n", m.name, s.Rows)
	}
	if f.Contains(DumpStats) {
		fmt.Fprintf(w, "%s.stats: page_size = %d, page_count = %d, freelist_count = %d, file_size = %d\n", m.name, s.PageSize, s.PageCount, s.FreelistCount, s.FileSize())
	}
	if f.Contains(DumpRows) {
		if f.Contains(DumpStats) {
			fmt.Fprintln(w, dumpSep2)
		}
		c := m.Scan()
		defer c.Close()
		var rowPos int
		for c.Next() {
			rowPos++
			fmt.Fprintf(w, "%s.%d: %s = %s\n", m.name, rowPos, loggableValue(c.Key()), loggableValue(c.Value()))
		}
		if c.Err() != nil {
			return c.Err()
		}
	}
	return nil
}

// DumpString is Dump into a string, for tests and debugging. Errors are
// rendered inline.
func (m *Map) DumpString(f DumpFlags) string {
	var buf strings.Builder
	err := m.Dump(&buf, f)
	if err != nil {
		fmt.Fprintf(&buf, "** ERROR: %v\n", err)
	}
	return buf.String()
}
