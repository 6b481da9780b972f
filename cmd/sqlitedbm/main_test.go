package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andreyvit/sqlitedbm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLI_basic(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	_, _, err := execute(t, "", "--db", db, "set", "a", "1")
	require.NoError(t, err)
	_, _, err = execute(t, "", "--db", db, "update", "b=2", "c=three=3")
	require.NoError(t, err)

	out, _, err := execute(t, "", "--db", db, "get", "c")
	require.NoError(t, err)
	assert.Equal(t, "three=3\n", out)

	out, _, err = execute(t, "", "--db", db, "getmany", "--default", "-", "a", "x", "b")
	require.NoError(t, err)
	assert.Equal(t, "1\n-\n2\n", out)

	out, _, err = execute(t, "", "--db", db, "select", "b", "a")
	require.NoError(t, err)
	assert.Equal(t, "2\n1\n", out)

	_, _, err = execute(t, "", "--db", db, "select", "a", "zz")
	assert.ErrorIs(t, err, sqlitedbm.ErrMissingKeys)

	out, _, err = execute(t, "", "--db", db, "keys")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", out)

	out, _, err = execute(t, "", "--db", db, "len")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	out, _, err = execute(t, "", "--db", db, "pop", "a")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, _, err = execute(t, "", "--db", db, "pop", "a", "gone")
	require.NoError(t, err)
	assert.Equal(t, "gone\n", out)

	out, _, err = execute(t, "", "--db", db, "has", "a")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	_, _, err = execute(t, "", "--db", db, "get", "a")
	assert.ErrorIs(t, err, sqlitedbm.ErrKeyNotFound)

	_, _, err = execute(t, "", "--db", db, "del", "b")
	require.NoError(t, err)
	out, _, err = execute(t, "", "--db", db, "items")
	require.NoError(t, err)
	assert.Equal(t, "c\tthree=3\n", out)

	_, _, err = execute(t, "", "--db", db, "clear")
	require.NoError(t, err)
	out, _, err = execute(t, "", "--db", db, "len")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestCLI_updateFromStdin(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	_, stderr, err := execute(t, "k1\tv1\n\nk2\tv 2\n", "--db", db, "update")
	require.NoError(t, err)
	assert.Contains(t, stderr, "updated")

	out, _, err := execute(t, "", "--db", db, "items")
	require.NoError(t, err)
	assert.Equal(t, "k1\tv1\nk2\tv 2\n", out)

	_, _, err = execute(t, "no tab here\n", "--db", db, "update")
	assert.Error(t, err)
}

func TestCLI_flags(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	_, _, err := execute(t, "", "--db", db, "--flag", "r", "len")
	assert.ErrorIs(t, err, sqlitedbm.ErrStoreNotFound)

	_, _, err = execute(t, "", "--db", db, "--flag", "x", "len")
	assert.ErrorIs(t, err, sqlitedbm.ErrInvalidFlag)

	_, _, err = execute(t, "", "--db", db, "set", "a", "1")
	require.NoError(t, err)

	_, _, err = execute(t, "", "--db", db, "--flag", "r", "set", "a", "2")
	assert.ErrorIs(t, err, sqlitedbm.ErrReadOnly)

	_, _, err = execute(t, "", "--db", db, "--flag", "n", "len")
	require.NoError(t, err)
	out, _, err := execute(t, "", "--db", db, "len")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)

	_, _, err = execute(t, "", "--db", db, "--mode", "9", "len")
	assert.Error(t, err)
}

func TestCLI_env(t *testing.T) {
	db := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("SQLITEDBM_DB", db)
	t.Setenv("SQLITEDBM_TABLE", "from_env")

	_, _, err := execute(t, "", "set", "a", "1")
	require.NoError(t, err)

	out, _, err := execute(t, "", "maps")
	require.NoError(t, err)
	assert.Equal(t, "from_env\n", out)

	out, _, err = execute(t, "", "--table", "other", "has", "a")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)
}

func TestCLI_maps(t *testing.T) {
	db := filepath.Join(t.TempDir(), "maps.db")

	_, _, err := execute(t, "", "--db", db, "--table", "one", "set", "a", "1")
	require.NoError(t, err)
	_, _, err = execute(t, "", "--db", db, "--table", "two", "set", "a", "2")
	require.NoError(t, err)

	out, _, err := execute(t, "", "--db", db, "maps")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", out)

	_, _, err = execute(t, "", "--db", db, "drop-map", "one")
	require.NoError(t, err)
	out, _, err = execute(t, "", "--db", db, "maps")
	require.NoError(t, err)
	assert.Equal(t, "two\n", out)
}

func TestCLI_statsDump(t *testing.T) {
	db := filepath.Join(t.TempDir(), "stats.db")
	_, _, err := execute(t, "", "--db", db, "update", "a=1", "b=2")
	require.NoError(t, err)

	out, _, err := execute(t, "", "--db", db, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "rows\t2\n")
	assert.Contains(t, out, "page_size\t")

	out, _, err = execute(t, "", "--db", db, "dump")
	require.NoError(t, err)
	assert.Contains(t, out, "kv_table (2 rows)")
	assert.Contains(t, out, `"b" = "2"`)
}

func TestCLI_verbose(t *testing.T) {
	db := filepath.Join(t.TempDir(), "v.db")
	_, stderr, err := execute(t, "", "--db", db, "-v", "set", "a", "1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "db: SET kv_table/a")
	assert.Contains(t, stderr, "DEBUG")
}

func TestCLI_importBolt(t *testing.T) {
	dir := t.TempDir()
	boltPath := filepath.Join(dir, "src.bolt")
	bdb, err := bbolt.Open(boltPath, 0o600, nil)
	require.NoError(t, err)
	require.NoError(t, bdb.Update(func(btx *bbolt.Tx) error {
		b, err := btx.CreateBucket([]byte("data"))
		if err != nil {
			return err
		}
		if err := b.Put([]byte("x"), []byte("10")); err != nil {
			return err
		}
		return b.Put([]byte("y"), []byte("20"))
	}))
	require.NoError(t, bdb.Close())

	db := filepath.Join(dir, "dst.db")
	_, stderr, err := execute(t, "", "--db", db, "import-bolt", boltPath, "data")
	require.NoError(t, err)
	assert.Contains(t, stderr, "imported")

	out, _, err := execute(t, "", "--db", db, "items")
	require.NoError(t, err)
	assert.Equal(t, "x\t10\ny\t20\n", out)

	_, _, err = execute(t, "", "--db", db, "import-bolt", boltPath, "missing")
	assert.ErrorIs(t, err, sqlitedbm.ErrBucketNotFound)
}
