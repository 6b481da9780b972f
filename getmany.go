package sqlitedbm

import (
	"iter"
	"slices"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// GetMany returns the values for keys in the same order, substituting def
// for absent keys. Duplicate keys are resolved independently, so the result
// always has len(keys) elements.
func (m *Map) GetMany(keys []string, def string) ([]string, error) {
	return m.getMany(slices.Values(keys), len(keys), def)
}

// GetManySeq is GetMany for a lazily produced key sequence.
func (m *Map) GetManySeq(keys iter.Seq[string], def string) ([]string, error) {
	return m.getMany(keys, 0, def)
}

func (m *Map) getMany(keys iter.Seq[string], sizeHint int, def string) ([]string, error) {
	result := make([]string, 0, sizeHint)
	err := m.lookupMany("getmany", keys, func(_ string, value string, found bool) {
		if found {
			result = append(result, value)
		} else {
			result = append(result, def)
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Select is the strict form of GetMany: if any key is absent, it fails with
// a *MissingKeysError.
func (m *Map) Select(keys ...string) ([]string, error) {
	return m.selectKeys(slices.Values(keys), len(keys))
}

func (m *Map) SelectSeq(keys iter.Seq[string]) ([]string, error) {
	return m.selectKeys(keys, 0)
}

func (m *Map) selectKeys(keys iter.Seq[string], sizeHint int) ([]string, error) {
	var missing *MissingKeysError
	result := make([]string, 0, sizeHint)
	err := m.lookupMany("select", keys, func(key string, value string, found bool) {
		if !found {
			if missing == nil {
				missing = &MissingKeysError{Key: key}
			}
			missing.Count++
		}
		result = append(result, value)
	})
	if err != nil {
		return nil, err
	}
	if missing != nil {
		return nil, missing
	}
	return result, nil
}

// lookupMany resolves keys in chunks of at most MaxQueryVars and calls emit
// once per input key, in input order.
func (m *Map) lookupMany(op string, keys iter.Seq[string], emit func(key, value string, found bool)) error {
	if err := m.check(op); err != nil {
		return err
	}

	args := getArgs()
	defer func() { putArgs(args) }()

	var total, chunks int
	flush := func() error {
		found, err := m.lookupChunk(op, args)
		if err != nil {
			return err
		}
		for _, a := range args {
			k := a.(string)
			v, ok := found[k]
			emit(k, v, ok)
		}
		total += len(args)
		chunks++
		args = args[:0]
		return nil
	}

	for k := range keys {
		if len(args) == MaxQueryVars {
			if err := flush(); err != nil {
				return err
			}
		}
		args = append(args, k)
	}
	if len(args) > 0 {
		if err := flush(); err != nil {
			return err
		}
	}

	if m.verbose {
		m.logf("db: %s %s keys=%d chunks=%d", opLogName(op), m.name, total, chunks)
	}
	return nil
}

// lookupChunk runs a single IN (...) query. Rows come back in no particular
// order, hence the map.
func (m *Map) lookupChunk(op string, args []any) (map[string]string, error) {
	found := make(map[string]string, len(args))
	opts := &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found[stmt.ColumnText(0)] = m.columnValue(stmt, 1)
			return nil
		},
	}

	// Only full chunks are kept in the connection's statement cache;
	// the remainder size varies from call to call.
	query := m.q.getMany(len(args))
	var err error
	if len(args) == MaxQueryVars {
		err = sqlitex.Execute(m.conn, query, opts)
	} else {
		err = sqlitex.ExecuteTransient(m.conn, query, opts)
	}
	if err != nil {
		return nil, mapErrf(m, op, "", err)
	}
	return found, nil
}
