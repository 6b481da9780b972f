// Package dbmtest provides a behavior suite that any way of obtaining a
// sqlitedbm.Map must pass, plus logging helpers for tests.
package dbmtest

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/andreyvit/sqlitedbm"
)

// Opener returns a fresh, empty, writable map. It should register cleanup
// with t.
type Opener func(t testing.TB) *sqlitedbm.Map

// BulkSizes straddle the chunk boundary of bulk lookups.
var BulkSizes = []int{0, 1, 10, 37, 100, 849, sqlitedbm.MaxQueryVars - 1, sqlitedbm.MaxQueryVars, sqlitedbm.MaxQueryVars + 1, 2348, 10000}

// Options returns map options that log every operation through t.
func Options(t testing.TB, flag sqlitedbm.Flag) sqlitedbm.Options {
	logger := Logger(t)
	return sqlitedbm.Options{
		Flag: flag,
		Logf: func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		},
		Verbose: true,
	}
}

// Logger returns a slog.Logger that writes to t.Log.
func Logger(t testing.TB) *slog.Logger {
	return slog.New(slog.NewTextHandler(&logWriter{t}, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
	}))
}

type logWriter struct{ t testing.TB }

func (c *logWriter) Write(buf []byte) (int, error) {
	msg := string(buf)
	origLen := len(msg)
	msg = strings.TrimSuffix(msg, "\n")
	c.t.Log(msg)
	return origLen, nil
}

// Run runs the whole suite against maps produced by open.
func Run(t *testing.T, open Opener) {
	t.Run("basic", func(t *testing.T) { testBasic(t, open(t)) })
	t.Run("missing", func(t *testing.T) { testMissing(t, open(t)) })
	t.Run("abc", func(t *testing.T) { testABC(t, open(t)) })
	t.Run("scenario", func(t *testing.T) { testScenario(t, open(t)) })
	t.Run("bulk", func(t *testing.T) {
		for _, n := range BulkSizes {
			t.Run(fmt.Sprint(n), func(t *testing.T) { testBulk(t, open(t), n) })
		}
	})
	t.Run("update", func(t *testing.T) { testUpdate(t, open(t)) })
	t.Run("pop", func(t *testing.T) { testPop(t, open(t)) })
	t.Run("setdefault", func(t *testing.T) { testSetDefault(t, open(t)) })
	t.Run("clear", func(t *testing.T) { testClear(t, open(t)) })
	t.Run("iterate", func(t *testing.T) { testIterate(t, open(t)) })
	t.Run("unicode", func(t *testing.T) { testUnicode(t, open(t)) })
	t.Run("closed", func(t *testing.T) { testClosed(t, open(t)) })
}

func testBasic(t *testing.T, m *sqlitedbm.Map) {
	ok(t, m.Set("k", "v1"))
	eq(t, get(t, m, "k"), "v1")
	ok(t, m.Set("k", "v2"))
	eq(t, get(t, m, "k"), "v2")
	eq(t, length(t, m), 1)

	ok(t, m.Set("", "empty key"))
	ok(t, m.Set("empty value", ""))
	eq(t, get(t, m, ""), "empty key")
	eq(t, get(t, m, "empty value"), "")
	eq(t, length(t, m), 3)

	has, err := m.Has("k")
	ok(t, err)
	eq(t, has, true)

	ok(t, m.Delete("k"))
	has, err = m.Has("k")
	ok(t, err)
	eq(t, has, false)
	eq(t, length(t, m), 2)
}

func testMissing(t *testing.T, m *sqlitedbm.Map) {
	_, err := m.Get("nope")
	keyErr(t, err, "nope")

	v, err := m.GetDefault("nope", "dflt")
	ok(t, err)
	eq(t, v, "dflt")

	keyErr(t, m.Delete("nope"), "nope")
}

func testScenario(t *testing.T, m *sqlitedbm.Map) {
	ok(t, m.Set("a", "1"))
	ok(t, m.Set("b", "2"))

	v, err := m.GetMany([]string{"a", "b", "c"}, "?")
	ok(t, err)
	eq(t, v, []string{"1", "2", "?"})
	eq(t, length(t, m), 2)

	popped, err := m.Pop("a", sqlitedbm.None[string]())
	ok(t, err)
	eq(t, popped, "1")

	has, err := m.Has("a")
	ok(t, err)
	eq(t, has, false)
}

func testABC(t *testing.T, m *sqlitedbm.Map) {
	ok(t, m.Set("a", "1"))
	ok(t, m.Set("b", "2"))
	ok(t, m.Set("c", "3"))

	v, err := m.GetMany([]string{"a", "x", "c", "a"}, "-")
	ok(t, err)
	eq(t, v, []string{"1", "-", "3", "1"})

	v, err = m.Select("c", "b", "a")
	ok(t, err)
	eq(t, v, []string{"3", "2", "1"})

	_, err = m.Select("a", "x", "b", "y")
	var mke *sqlitedbm.MissingKeysError
	if !errors.As(err, &mke) {
		t.Fatalf("** Select error = %v, wanted *MissingKeysError", err)
	}
	eq(t, mke.Key, "x")
	eq(t, mke.Count, 2)
	if !errors.Is(err, sqlitedbm.ErrMissingKeys) || !errors.Is(err, sqlitedbm.ErrKeyNotFound) {
		t.Errorf("** Select error %v does not match ErrMissingKeys and ErrKeyNotFound", err)
	}

	v, err = m.GetMany(nil, "-")
	ok(t, err)
	if v == nil || len(v) != 0 {
		t.Errorf("** GetMany(nil) = %#v, wanted empty non-nil slice", v)
	}
	v, err = m.Select()
	ok(t, err)
	eq(t, len(v), 0)
}

// testBulk stores every even key out of n, then looks up all n keys plus
// duplicates of the first few.
func testBulk(t *testing.T, m *sqlitedbm.Map, n int) {
	src := make(map[string]string)
	for i := 0; i < n; i += 2 {
		src[bulkKey(i)] = bulkValue(i)
	}
	ok(t, m.Update(maps.All(src)))
	eq(t, length(t, m), len(src))

	keys := make([]string, 0, n+n/3)
	for i := range n {
		keys = append(keys, bulkKey(i))
	}
	for i := range n / 3 {
		keys = append(keys, bulkKey(i))
	}

	want := make([]string, len(keys))
	for i, k := range keys {
		want[i] = "?"
		if v, found := src[k]; found {
			want[i] = v
		}
	}

	got, err := m.GetMany(keys, "?")
	ok(t, err)
	checkValues(t, "GetMany", keys, got, want)

	// two sources, split inside the first chunk
	split := min(len(keys), sqlitedbm.MaxQueryVars/2)
	got, err = m.GetManySeq(sqlitedbm.ConcatKeys(sqlitedbm.Keys(keys[:split]...), slices.Values(keys[split:])), "?")
	ok(t, err)
	checkValues(t, "GetManySeq", keys, got, want)

	present := slices.Sorted(maps.Keys(src))
	got, err = m.Select(present...)
	ok(t, err)
	for i, k := range present {
		if got[i] != src[k] {
			t.Fatalf("** Select[%d] (%s) = %q, wanted %q", i, k, got[i], src[k])
		}
	}

	if n > 1 {
		_, err = m.Select(keys...)
		var mke *sqlitedbm.MissingKeysError
		if !errors.As(err, &mke) {
			t.Fatalf("** Select error = %v, wanted *MissingKeysError", err)
		}
		eq(t, mke.Key, bulkKey(1))
	}

	// a single missing key after the last chunk boundary
	_, err = m.Select(append(slices.Clone(present), "absent")...)
	var mke *sqlitedbm.MissingKeysError
	if !errors.As(err, &mke) {
		t.Fatalf("** Select error = %v, wanted *MissingKeysError", err)
	}
	eq(t, mke.Key, "absent")
	eq(t, mke.Count, 1)
}

func testUpdate(t *testing.T, m *sqlitedbm.Map) {
	ok(t, m.Set("keep", "old"))
	ok(t, m.Set("a", "old"))
	ok(t, m.Update(
		sqlitedbm.Pairs(sqlitedbm.Item{Key: "a", Value: "1"}, sqlitedbm.Item{Key: "b", Value: "2"}),
		maps.All(map[string]string{"b": "3", "c": "4"}),
		sqlitedbm.Pairs(sqlitedbm.Item{Key: "a", Value: "5"}),
	))
	v, err := m.Select("keep", "a", "b", "c")
	ok(t, err)
	eq(t, v, []string{"old", "5", "3", "4"})

	ok(t, m.Update())
	eq(t, length(t, m), 4)
}

func testPop(t *testing.T, m *sqlitedbm.Map) {
	ok(t, m.Set("a", "1"))

	v, err := m.Pop("a", sqlitedbm.None[string]())
	ok(t, err)
	eq(t, v, "1")

	_, err = m.Pop("a", sqlitedbm.None[string]())
	keyErr(t, err, "a")

	v, err = m.Pop("a", sqlitedbm.Some(""))
	ok(t, err)
	eq(t, v, "")

	ok(t, m.Set("x", "10"))
	ok(t, m.Set("y", "20"))
	popped := map[string]string{}
	for range 2 {
		k, v, err := m.PopItem()
		ok(t, err)
		popped[k] = v
	}
	eq(t, popped, map[string]string{"x": "10", "y": "20"})

	_, _, err = m.PopItem()
	if !errors.Is(err, sqlitedbm.ErrKeyNotFound) {
		t.Errorf("** PopItem on empty map = %v, wanted ErrKeyNotFound", err)
	}
}

func testSetDefault(t *testing.T, m *sqlitedbm.Map) {
	v, err := m.SetDefault("k", "first")
	ok(t, err)
	eq(t, v, "first")
	v, err = m.SetDefault("k", "second")
	ok(t, err)
	eq(t, v, "first")
	eq(t, get(t, m, "k"), "first")
}

func testClear(t *testing.T, m *sqlitedbm.Map) {
	ok(t, m.Update(maps.All(map[string]string{"a": "1", "b": "2"})))
	ok(t, m.Clear())
	eq(t, length(t, m), 0)
	ok(t, m.Clear())
	ok(t, m.Set("a", "again"))
	eq(t, get(t, m, "a"), "again")
}

func testIterate(t *testing.T, m *sqlitedbm.Map) {
	src := map[string]string{"a": "1", "b": "2", "c": "3"}
	ok(t, m.Update(maps.All(src)))

	eq(t, maps.Collect(m.Items()), src)
	eq(t, slices.Sorted(m.Keys()), []string{"a", "b", "c"})
	eq(t, slices.Sorted(m.Values()), []string{"1", "2", "3"})
	eq(t, slices.Sorted(m.All()), []string{"a", "b", "c"})

	items, err := m.AllItems()
	ok(t, err)
	eq(t, len(items), 3)
	keys, err := m.AllKeys()
	ok(t, err)
	slices.Sort(keys)
	eq(t, keys, []string{"a", "b", "c"})
	values, err := m.AllValues()
	ok(t, err)
	slices.Sort(values)
	eq(t, values, []string{"1", "2", "3"})

	for range m.Items() {
		break
	}
	eq(t, length(t, m), 3)
}

func testUnicode(t *testing.T, m *sqlitedbm.Map) {
	keys := []string{"ключ", "鍵", "🔑", "e\u0301", "\u00e9"}
	for i, k := range keys {
		ok(t, m.Set(k, strings.Repeat(k, i+1)))
	}
	for i, k := range keys {
		eq(t, get(t, m, k), strings.Repeat(k, i+1))
	}
	v, err := m.Select(keys...)
	ok(t, err)
	eq(t, v[2], "🔑🔑🔑")
	eq(t, length(t, m), len(keys))
}

func testClosed(t *testing.T, m *sqlitedbm.Map) {
	ok(t, m.Set("a", "1"))
	ok(t, m.Close())
	ok(t, m.Close())

	_, err := m.Get("a")
	if !errors.Is(err, sqlitedbm.ErrClosed) {
		t.Errorf("** Get after Close = %v, wanted ErrClosed", err)
	}
	if err := m.Set("a", "2"); !errors.Is(err, sqlitedbm.ErrClosed) {
		t.Errorf("** Set after Close = %v, wanted ErrClosed", err)
	}
	if _, err := m.GetMany([]string{"a"}, ""); !errors.Is(err, sqlitedbm.ErrClosed) {
		t.Errorf("** GetMany after Close = %v, wanted ErrClosed", err)
	}
}

func checkValues(t testing.TB, op string, keys, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("** %s returned %d values, wanted %d", op, len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("** %s[%d] (%s) = %q, wanted %q", op, i, keys[i], got[i], want[i])
		}
	}
}

func bulkKey(i int) string   { return fmt.Sprintf("key%06d", i) }
func bulkValue(i int) string { return fmt.Sprintf("value-%d", i*7) }
