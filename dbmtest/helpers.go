package dbmtest

import (
	"errors"
	"reflect"
	"testing"

	"github.com/andreyvit/sqlitedbm"
)

func ok(t testing.TB, err error) {
	if err != nil {
		t.Helper()
		t.Fatalf("** unexpected error: %v", err)
	}
}

func eq[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func keyErr(t testing.TB, err error, key string) {
	t.Helper()
	var ke *sqlitedbm.KeyError
	if !errors.As(err, &ke) {
		t.Fatalf("** got %v, wanted *KeyError", err)
	}
	if ke.Key != key {
		t.Errorf("** KeyError.Key = %q, wanted %q", ke.Key, key)
	}
	if !errors.Is(err, sqlitedbm.ErrKeyNotFound) {
		t.Errorf("** %v does not match ErrKeyNotFound", err)
	}
}

func get(t testing.TB, m *sqlitedbm.Map, key string) string {
	t.Helper()
	v, err := m.Get(key)
	ok(t, err)
	return v
}

func length(t testing.TB, m *sqlitedbm.Map) int {
	t.Helper()
	n, err := m.Len()
	ok(t, err)
	return n
}
