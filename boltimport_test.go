package sqlitedbm

import (
	"errors"
	"path/filepath"
	"testing"

	"go.etcd.io/bbolt"
)

func setupBolt(t testing.TB) *bbolt.DB {
	t.Helper()
	bdb := must(bbolt.Open(filepath.Join(t.TempDir(), "src.bolt"), 0o666, nil))
	t.Cleanup(func() { bdb.Close() })

	ok(t, bdb.Update(func(btx *bbolt.Tx) error {
		root, err := btx.CreateBucket([]byte("root"))
		if err != nil {
			return err
		}
		ensure(root.Put([]byte("a"), []byte("1")))
		ensure(root.Put([]byte{'c', 'a', 'f', 0xE9}, []byte{0xE9}))
		sub, err := root.CreateBucket([]byte("sub"))
		if err != nil {
			return err
		}
		return sub.Put([]byte("deep"), []byte("2"))
	}))
	return bdb
}

func TestImportBolt(t *testing.T) {
	bdb := setupBolt(t)
	m := setup(t, MemoryPath, FlagCreate)
	m.SetBlobValues(true)

	n := must(ImportBolt(m, bdb, "root"))
	deepEqual(t, n, 2)
	deepEqual(t, get(t, m, "a"), "1")
	deepEqual(t, get(t, m, "café"), string([]byte{0xE9}))
	_, err := m.Get("sub")
	isKeyErr(t, err, "sub")

	n = must(ImportBolt(m, bdb, "root/sub"))
	deepEqual(t, n, 1)
	deepEqual(t, get(t, m, "deep"), "2")
	deepEqual(t, length(t, m), 3)
}

func TestImportBolt_errors(t *testing.T) {
	bdb := setupBolt(t)

	m := setup(t, MemoryPath, FlagCreate)
	for _, name := range []string{"nope", "root/nope", "root/sub/deeper"} {
		_, err := ImportBolt(m, bdb, name)
		if !errors.Is(err, ErrBucketNotFound) {
			t.Errorf("** ImportBolt(%q) = %v, wanted ErrBucketNotFound", name, err)
		}
	}

	ro := setup(t, MemoryPath, FlagRead)
	if _, err := ImportBolt(ro, bdb, "root"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("** ImportBolt into read-only map = %v, wanted ErrReadOnly", err)
	}
}

func ensure(err error) {
	if err != nil {
		panic(err)
	}
}
