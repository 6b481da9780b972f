package sqlitedbm

import (
	"errors"
	"strings"
	"testing"
)

func TestMapError_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := error(&MapError{Map: "kv", Op: "get", Key: "k1", Err: inner})
	if !errors.Is(err, inner) {
		t.Fatalf("errors.Is(err, inner) = false, wanted true")
	}
	if s := err.Error(); s != "kv/k1: get: inner" {
		t.Fatalf("err.Error() = %q, wanted %q", s, "kv/k1: get: inner")
	}

	err = &MapError{Map: "kv", Err: inner}
	if s := err.Error(); s != "kv: inner" {
		t.Fatalf("err.Error() = %q, wanted %q", s, "kv: inner")
	}
}

func TestKeyError(t *testing.T) {
	err := error(&KeyError{"k"})
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("errors.Is(err, ErrKeyNotFound) = false, wanted true")
	}
	if errors.Is(err, ErrMissingKeys) {
		t.Fatalf("errors.Is(err, ErrMissingKeys) = true, wanted false")
	}
	if s := err.Error(); !strings.Contains(s, `"k"`) {
		t.Fatalf("err.Error() = %q, wanted key in message", s)
	}
}

func TestMissingKeysError(t *testing.T) {
	err := error(&MissingKeysError{Key: "b", Count: 1})
	if s := err.Error(); !strings.Contains(s, `"b"`) || strings.Contains(s, "1 of") {
		t.Fatalf("err.Error() = %q", s)
	}
	err = &MissingKeysError{Key: "b", Count: 3}
	if s := err.Error(); !strings.Contains(s, `3 of`) {
		t.Fatalf("err.Error() = %q, wanted count in message", s)
	}
	if !errors.Is(err, ErrMissingKeys) || !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("MissingKeysError does not match both sentinels")
	}
}

func TestPopItemEmpty(t *testing.T) {
	m := setup(t, MemoryPath, FlagCreate)
	_, _, err := m.PopItem()
	var me *MapError
	if !errors.As(err, &me) || me.Op != "popitem" {
		t.Fatalf("** got %v, wanted popitem MapError", err)
	}
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("** got %v, wanted ErrKeyNotFound", err)
	}
}
