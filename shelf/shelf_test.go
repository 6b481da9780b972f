package shelf

import (
	"errors"
	"maps"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/andreyvit/sqlitedbm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int
	Tags map[string]string `json:",omitempty" msgpack:",omitempty"`
}

func openShelf[V any](t testing.TB, enc Encoding) *Shelf[V] {
	s, err := Open[V](sqlitedbm.MemoryPath, Options{Encoding: enc})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestShelf_roundTrip(t *testing.T) {
	for _, enc := range []Encoding{MsgPack, JSON} {
		t.Run(enc.String(), func(t *testing.T) {
			s := openShelf[point](t, enc)

			require.NoError(t, s.Set("a", point{X: 1, Y: 2}))
			require.NoError(t, s.Set("b", point{X: 3, Y: 4, Tags: map[string]string{"z": "1", "a": "2"}}))

			v, err := s.Get("a")
			require.NoError(t, err)
			assert.Equal(t, point{X: 1, Y: 2}, v)

			v, err = s.Get("b")
			require.NoError(t, err)
			assert.Equal(t, point{X: 3, Y: 4, Tags: map[string]string{"z": "1", "a": "2"}}, v)

			n, err := s.Len()
			require.NoError(t, err)
			assert.Equal(t, 2, n)
		})
	}
}

func TestShelf_missing(t *testing.T) {
	s := openShelf[int](t, MsgPack)

	_, err := s.Get("nope")
	assert.ErrorIs(t, err, sqlitedbm.ErrKeyNotFound)

	v, err := s.GetDefault("nope", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	has, err := s.Has("nope")
	require.NoError(t, err)
	assert.False(t, has)

	err = s.Delete("nope")
	var ke *sqlitedbm.KeyError
	require.ErrorAs(t, err, &ke)
	assert.Equal(t, "nope", ke.Key)
}

func TestShelf_pop(t *testing.T) {
	s := openShelf[[]string](t, MsgPack)
	require.NoError(t, s.Set("k", []string{"x", "y"}))

	v, err := s.Pop("k", sqlitedbm.None[[]string]())
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, v)

	_, err = s.Pop("k", sqlitedbm.None[[]string]())
	assert.ErrorIs(t, err, sqlitedbm.ErrKeyNotFound)

	v, err = s.Pop("k", sqlitedbm.Some([]string{"d"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, v)

	require.NoError(t, s.Set("only", []string{"1"}))
	k, v, err := s.PopItem()
	require.NoError(t, err)
	assert.Equal(t, "only", k)
	assert.Equal(t, []string{"1"}, v)

	_, _, err = s.PopItem()
	assert.ErrorIs(t, err, sqlitedbm.ErrKeyNotFound)
}

func TestShelf_setDefault(t *testing.T) {
	s := openShelf[float64](t, JSON)

	v, err := s.SetDefault("pi", 3.14)
	require.NoError(t, err)
	assert.Equal(t, 3.14, v)

	v, err = s.SetDefault("pi", 2.71)
	require.NoError(t, err)
	assert.Equal(t, 3.14, v)
}

func TestShelf_bulk(t *testing.T) {
	s := openShelf[point](t, MsgPack)

	src := map[string]point{}
	for i := range 1500 {
		src[keyOf(i)] = point{X: i, Y: -i}
	}
	require.NoError(t, s.Update(maps.All(src)))

	keys := []string{keyOf(0), "missing", keyOf(1499), keyOf(0), keyOf(1000)}
	got, err := s.GetMany(keys, point{X: -1})
	require.NoError(t, err)
	assert.Equal(t, []point{{X: 0}, {X: -1}, {X: 1499, Y: -1499}, {X: 0}, {X: 1000, Y: -1000}}, got)

	_, err = s.Select(keys...)
	var mke *sqlitedbm.MissingKeysError
	require.ErrorAs(t, err, &mke)
	assert.Equal(t, "missing", mke.Key)

	got, err = s.Select(keyOf(7), keyOf(8))
	require.NoError(t, err)
	assert.Equal(t, []point{{X: 7, Y: -7}, {X: 8, Y: -8}}, got)

	collected := maps.Collect(s.Items())
	assert.Equal(t, src, collected)

	var count int
	for range s.Values() {
		count++
	}
	assert.Equal(t, 1500, count)
}

func TestShelf_decodeError(t *testing.T) {
	s := openShelf[point](t, JSON)
	require.NoError(t, s.Map().Set("bad", "{not json"))

	_, err := s.Get("bad")
	var de *DataError
	require.True(t, errors.As(err, &de), "err = %v", err)
	assert.Equal(t, "bad", de.Key)
	assert.Contains(t, err.Error(), `"bad"`)
}

func TestShelf_persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelf.db")

	s, err := Open[map[string]int](path, Options{})
	require.NoError(t, err)
	require.NoError(t, s.Set("counts", map[string]int{"a": 1}))
	require.NoError(t, s.Close())

	s, err = Open[map[string]int](path, Options{Options: sqlitedbm.Options{Flag: sqlitedbm.FlagRead}})
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Get("counts")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1}, v)

	err = s.Set("counts", nil)
	assert.ErrorIs(t, err, sqlitedbm.ErrReadOnly)
}

func TestParseEncoding(t *testing.T) {
	enc, err := ParseEncoding("json")
	require.NoError(t, err)
	assert.Equal(t, JSON, enc)

	enc, err = ParseEncoding("")
	require.NoError(t, err)
	assert.Equal(t, MsgPack, enc)

	_, err = ParseEncoding("xml")
	assert.Error(t, err)
}

func keyOf(i int) string {
	return "k" + strconv.Itoa(i)
}
