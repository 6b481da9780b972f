package sqlitedbm

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Bytes that Windows-1252 leaves undefined.
var cp1252Undefined = [256]bool{0x81: true, 0x8D: true, 0x8F: true, 0x90: true, 0x9D: true}

// KeyFromBytes converts a raw byte key into the text form SQLite hands
// back for it. Valid UTF-8 is kept as is; otherwise the bytes are decoded as
// Windows-1252, or as ISO-8859-1 if they contain bytes Windows-1252 does
// not define. The conversion never fails.
func KeyFromBytes(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	if !hasUndefinedCP1252(b) {
		if s, err := charmap.Windows1252.NewDecoder().Bytes(b); err == nil {
			return string(s)
		}
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		// every byte is a valid ISO-8859-1 code point
		panic(err)
	}
	return string(s)
}

func hasUndefinedCP1252(b []byte) bool {
	for _, c := range b {
		if cp1252Undefined[c] {
			return true
		}
	}
	return false
}
