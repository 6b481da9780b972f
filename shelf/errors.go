package shelf

import (
	"errors"
	"fmt"

	"github.com/andreyvit/sqlitedbm"
)

// DataError reports a stored value that could not be decoded.
type DataError struct {
	Key  string
	Data []byte
	Err  error
	Msg  string
}

func dataErrf(data []byte, err error, format string, args ...any) *DataError {
	return &DataError{Data: data, Err: err, Msg: fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	var prefix string
	if e.Key != "" {
		prefix = fmt.Sprintf("%q: ", e.Key)
	}
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s%s: %v: (%d) %x", prefix, e.Msg, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("%s%s: (%d) %x", prefix, e.Msg, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("%s%s: %v: (%d) %x...%x", prefix, e.Msg, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("%s%s: (%d) %x...%x", prefix, e.Msg, n, p, s)
		}
	}
}

func isKeyError(err error) bool {
	return errors.Is(err, sqlitedbm.ErrKeyNotFound)
}
