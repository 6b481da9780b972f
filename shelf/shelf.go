// Package shelf stores arbitrary Go values in a sqlitedbm map, serialized
// with MsgPack or JSON.
package shelf

import (
	"iter"

	"github.com/andreyvit/sqlitedbm"
)

type Options struct {
	sqlitedbm.Options

	Encoding Encoding
}

// Shelf is a persistent map from strings to values of type V.
//
// Like the underlying map, a Shelf is not safe for concurrent use.
type Shelf[V any] struct {
	m   *sqlitedbm.Map
	enc Encoding
}

// New wraps an open map. The map is switched to BLOB values.
func New[V any](m *sqlitedbm.Map, opt Options) *Shelf[V] {
	m.SetBlobValues(true)
	return &Shelf[V]{m: m, enc: opt.Encoding}
}

// Open opens the map at path and wraps it. Unlike sqlitedbm.Open, the
// default flag is FlagCreate.
func Open[V any](path string, opt Options) (*Shelf[V], error) {
	if opt.Flag == 0 {
		opt.Flag = sqlitedbm.FlagCreate
	}
	opt.BlobValues = true
	m, err := sqlitedbm.Open(path, opt.Options)
	if err != nil {
		return nil, err
	}
	return New[V](m, opt), nil
}

// Map returns the underlying map.
func (s *Shelf[V]) Map() *sqlitedbm.Map {
	return s.m
}

func (s *Shelf[V]) Close() error {
	return s.m.Close()
}

func (s *Shelf[V]) encode(v V) (string, error) {
	data, err := s.enc.encode(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Shelf[V]) decode(key, raw string) (V, error) {
	var v V
	err := s.enc.decode([]byte(raw), &v)
	if err != nil {
		if de, ok := err.(*DataError); ok {
			de.Key = key
		}
		return v, err
	}
	return v, nil
}

func (s *Shelf[V]) Get(key string) (V, error) {
	raw, err := s.m.Get(key)
	if err != nil {
		var zero V
		return zero, err
	}
	return s.decode(key, raw)
}

// GetDefault returns def if key is absent.
func (s *Shelf[V]) GetDefault(key string, def V) (V, error) {
	found, err := s.m.Has(key)
	if err != nil || !found {
		return def, err
	}
	return s.Get(key)
}

func (s *Shelf[V]) Has(key string) (bool, error) {
	return s.m.Has(key)
}

func (s *Shelf[V]) Set(key string, v V) error {
	raw, err := s.encode(v)
	if err != nil {
		return err
	}
	return s.m.Set(key, raw)
}

func (s *Shelf[V]) Delete(key string) error {
	return s.m.Delete(key)
}

func (s *Shelf[V]) Len() (int, error) {
	return s.m.Len()
}

func (s *Shelf[V]) Clear() error {
	return s.m.Clear()
}

// Pop removes key and returns its decoded value, or def if key is absent
// and def is supplied.
func (s *Shelf[V]) Pop(key string, def sqlitedbm.Optional[V]) (V, error) {
	raw, err := s.m.Pop(key, sqlitedbm.None[string]())
	if err != nil {
		if def.Valid && isKeyError(err) {
			return def.Value, nil
		}
		var zero V
		return zero, err
	}
	return s.decode(key, raw)
}

func (s *Shelf[V]) PopItem() (string, V, error) {
	key, raw, err := s.m.PopItem()
	if err != nil {
		var zero V
		return "", zero, err
	}
	v, err := s.decode(key, raw)
	return key, v, err
}

// SetDefault returns the value under key, storing def first if key is absent.
func (s *Shelf[V]) SetDefault(key string, def V) (V, error) {
	raw, err := s.encode(def)
	if err != nil {
		return def, err
	}
	raw, err = s.m.SetDefault(key, raw)
	if err != nil {
		return def, err
	}
	return s.decode(key, raw)
}

// Update encodes every pair up front and stores them in one transaction.
// Nothing is stored if any value fails to encode.
func (s *Shelf[V]) Update(srcs ...iter.Seq2[string, V]) error {
	var items []sqlitedbm.Item
	for _, src := range srcs {
		for k, v := range src {
			raw, err := s.encode(v)
			if err != nil {
				return err
			}
			items = append(items, sqlitedbm.Item{Key: k, Value: raw})
		}
	}
	return s.m.Update(sqlitedbm.Pairs(items...))
}

// GetMany returns decoded values for keys in order, with def for absent keys.
func (s *Shelf[V]) GetMany(keys []string, def V) ([]V, error) {
	rawDef, err := s.encode(def)
	if err != nil {
		return nil, err
	}
	raws, err := s.m.GetMany(keys, rawDef)
	if err != nil {
		return nil, err
	}
	return s.decodeAll(keys, raws)
}

// Select is the strict form of GetMany, failing if any key is absent.
func (s *Shelf[V]) Select(keys ...string) ([]V, error) {
	raws, err := s.m.Select(keys...)
	if err != nil {
		return nil, err
	}
	return s.decodeAll(keys, raws)
}

func (s *Shelf[V]) decodeAll(keys []string, raws []string) ([]V, error) {
	result := make([]V, len(raws))
	for i, raw := range raws {
		v, err := s.decode(keys[i], raw)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

// Items iterates over all entries, decoding values as it goes. It panics on
// storage failures like sqlitedbm.Map.Items, and with a *DataError on
// values that cannot be decoded.
func (s *Shelf[V]) Items() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for k, raw := range s.m.Items() {
			v, err := s.decode(k, raw)
			if err != nil {
				panic(err)
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

func (s *Shelf[V]) Keys() iter.Seq[string] {
	return s.m.Keys()
}

func (s *Shelf[V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range s.Items() {
			if !yield(v) {
				return
			}
		}
	}
}
