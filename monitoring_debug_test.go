package sqlitedbm

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestStatsAndDump(t *testing.T) {
	m := setup(t, filepath.Join(t.TempDir(), "stats.db"), FlagCreate)
	ok(t, m.Update(Pairs(Item{"a", "1"}, Item{"b", "two\nlines"})))

	s := must(m.Stats())
	if s.Rows != 2 || s.PageSize <= 0 || s.PageCount <= 0 {
		t.Fatalf("Stats = %+v, wanted Rows=2 and non-empty file", s)
	}
	deepEqual(t, s.FileSize(), s.PageCount*s.PageSize)
	_ = s.FreeSize()

	out := m.DumpString(DumpAll)
	for _, want := range []string{
		"kv_table (2 rows)",
		"kv_table.stats: page_size = ",
		`= "two\nlines"`,
		`"a" = "1"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("** Dump output lacks %q:\n%s", want, out)
		}
	}

	out = m.DumpString(DumpHeader)
	if strings.Contains(out, `"a"`) {
		t.Errorf("** DumpHeader included rows:\n%s", out)
	}

	ok(t, m.Close())
	out = m.DumpString(DumpAll)
	if !strings.Contains(out, "** ERROR") {
		t.Errorf("** Dump of closed map = %q, wanted error", out)
	}
}
