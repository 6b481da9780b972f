package sqlitedbm

import (
	"iter"
	"slices"
)

// Item is a single key/value pair.
type Item struct {
	Key   string
	Value string
}

// Keys returns a sequence over the given keys.
func Keys(keys ...string) iter.Seq[string] {
	return slices.Values(keys)
}

// ConcatKeys chains several key sequences into one, preserving order.
func ConcatKeys(seqs ...iter.Seq[string]) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, seq := range seqs {
			for k := range seq {
				if !yield(k) {
					return
				}
			}
		}
	}
}

// BytesKeys returns a sequence over raw byte keys converted by KeyFromBytes.
func BytesKeys(keys ...[]byte) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, k := range keys {
			if !yield(KeyFromBytes(k)) {
				return
			}
		}
	}
}

// Pairs returns a pair sequence suitable for Update.
func Pairs(items ...Item) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, item := range items {
			if !yield(item.Key, item.Value) {
				return
			}
		}
	}
}
