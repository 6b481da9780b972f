package sqlitedbm

import (
	"strconv"
	"strings"
)

const maxLoggedValueLen = 120

func loggableValue(v string) string {
	if len(v) > maxLoggedValueLen {
		return strconv.Quote(v[:maxLoggedValueLen]) + "..."
	}
	return strconv.Quote(v)
}

func opLogName(op string) string {
	return strings.ToUpper(op)
}

// foldName lowercases ASCII letters only, matching how SQLite compares
// table names.
func foldName(name string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + 'a' - 'A'
		}
		return r
	}, name)
}
