package sqlitedbm

import "fmt"

// Flag selects how Open treats the backing store. The zero value is FlagRead.
type Flag byte

const (
	// FlagRead opens an existing store read-only. This is the default.
	FlagRead Flag = 'r'
	// FlagWrite opens an existing store for reading and writing.
	FlagWrite Flag = 'w'
	// FlagCreate opens a store for reading and writing, creating it if missing.
	FlagCreate Flag = 'c'
	// FlagNew is FlagCreate followed by removing all existing entries.
	FlagNew Flag = 'n'
)

func ParseFlag(s string) (Flag, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("%w %q", ErrInvalidFlag, s)
	}
	f := Flag(s[0])
	if !f.valid() {
		return 0, fmt.Errorf("%w %q", ErrInvalidFlag, s)
	}
	return f, nil
}

func (f Flag) orDefault() Flag {
	if f == 0 {
		return FlagRead
	}
	return f
}

func (f Flag) valid() bool {
	switch f {
	case FlagRead, FlagWrite, FlagCreate, FlagNew:
		return true
	default:
		return false
	}
}

// MustExist reports whether the backing file has to be present before open.
func (f Flag) MustExist() bool {
	return f == FlagRead || f == FlagWrite
}

func (f Flag) ReadOnly() bool {
	return f == FlagRead
}

func (f Flag) String() string {
	switch f {
	case 0:
		return "r"
	case FlagRead, FlagWrite, FlagCreate, FlagNew:
		return string(rune(f))
	default:
		return fmt.Sprintf("Flag(%d)", byte(f))
	}
}
