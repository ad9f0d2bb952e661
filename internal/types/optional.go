package types

// Optional is the result of a lookup that may legitimately find nothing.
// Callers must check Present before using the value.
type Optional[T any] struct {
	value   T
	present bool
}

// Some wraps a found value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// None reports an absent value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Present reports whether a value was found.
func (o Optional[T]) Present() bool {
	return o.present
}

// Get returns the value and whether it was present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

// OrElse returns the value, or fallback when absent.
func (o Optional[T]) OrElse(fallback T) T {
	if o.present {
		return o.value
	}
	return fallback
}
