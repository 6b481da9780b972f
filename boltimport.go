package sqlitedbm

import (
	"errors"
	"fmt"
	"strings"

	"go.etcd.io/bbolt"
)

var ErrBucketNotFound = errors.New("bucket not found")

// ImportBolt copies every key/value pair of a Bolt bucket into m, in a
// single transaction. bucket may name a nested bucket as "root/sub/leaf".
// Nested buckets inside the source bucket are skipped. Keys that are not
// valid UTF-8 are converted with KeyFromBytes; values are copied verbatim.
//
// Returns the number of pairs written.
func ImportBolt(m *Map, bdb *bbolt.DB, bucket string) (int, error) {
	if err := m.checkWritable("import"); err != nil {
		return 0, err
	}

	var items []Item
	err := bdb.View(func(btx *bbolt.Tx) error {
		b, err := boltBucket(btx, bucket)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			if v == nil {
				return nil
			}
			items = append(items, Item{KeyFromBytes(k), string(v)})
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("sqlitedbm: importing bolt bucket %q: %w", bucket, err)
	}

	err = m.Update(Pairs(items...))
	if err != nil {
		return 0, err
	}
	if m.verbose {
		m.logf("db: IMPORT %s <= bolt:%s rows=%d", m.name, bucket, len(items))
	}
	return len(items), nil
}

func boltBucket(btx *bbolt.Tx, path string) (*bbolt.Bucket, error) {
	name, rest, nested := strings.Cut(path, "/")
	b := btx.Bucket([]byte(name))
	for b != nil && nested {
		name, rest, nested = strings.Cut(rest, "/")
		b = b.Bucket([]byte(name))
	}
	if b == nil {
		return nil, ErrBucketNotFound
	}
	return b, nil
}
