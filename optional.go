package sqlitedbm

// Optional is a value that may be absent. It distinguishes "no default
// given" from a default that happens to be the zero value.
type Optional[T any] struct {
	Value T
	Valid bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

func (o Optional[T]) Or(def T) T {
	if o.Valid {
		return o.Value
	}
	return def
}
