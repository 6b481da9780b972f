package sqlitedbm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStoreNotFound is returned by Open when FlagRead or FlagWrite is used
	// and the backing file does not exist.
	ErrStoreNotFound = errors.New("store not found")

	// ErrInvalidFlag is returned by Open and ParseFlag for unknown open flags.
	ErrInvalidFlag = errors.New("invalid flag")

	// ErrReadOnly is returned by every mutating operation on a map opened
	// with FlagRead.
	ErrReadOnly = errors.New("store is read-only")

	// ErrKeyNotFound is matched by both *KeyError and *MissingKeysError.
	ErrKeyNotFound = errors.New("key not found")

	// ErrMissingKeys is matched by *MissingKeysError returned from Select.
	ErrMissingKeys = errors.New("missing keys in bulk lookup")

	ErrClosed = errors.New("store is closed")

	ErrInvalidMapName = errors.New("invalid map name")

	errEmpty = fmt.Errorf("map is empty: %w", ErrKeyNotFound)
)

type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key not found: %q", e.Key)
}

func (e *KeyError) Unwrap() error {
	return ErrKeyNotFound
}

// MissingKeysError reports a strict multi-key lookup where Count of the
// requested keys were absent. Key is the first missing one in input order.
type MissingKeysError struct {
	Key   string
	Count int
}

func (e *MissingKeysError) Error() string {
	if e.Count == 1 {
		return fmt.Sprintf("one of the requested keys is missing: %q", e.Key)
	}
	return fmt.Sprintf("%d of the requested keys are missing, including %q", e.Count, e.Key)
}

func (e *MissingKeysError) Unwrap() []error {
	return []error{ErrMissingKeys, ErrKeyNotFound}
}

// MapError wraps a failure reported by the SQLite engine.
type MapError struct {
	Map string
	Op  string
	Key string
	Err error
}

func mapErrf(m *Map, op string, key string, err error) error {
	return &MapError{m.name, op, key, err}
}

func (e *MapError) Unwrap() error {
	return e.Err
}

func (e *MapError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Map)
	if e.Key != "" {
		buf.WriteByte('/')
		buf.WriteString(e.Key)
	}
	if e.Op != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Op)
		if e.Err != nil {
			buf.WriteString(": ")
			buf.WriteString(e.Err.Error())
		}
	} else if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}
