// Package patch provides optional fields for partial updates.
//
// A Field is absent (the zero value), explicitly cleared, or set to a value.
// Updates only touch fields that are present.
package patch

type state uint8

const (
	absent state = iota
	cleared
	set
)

// Field is a tri-state optional value.
type Field[T any] struct {
	state state
	value T
}

// Set returns a field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{state: set, value: v}
}

// Clear returns a field that resets the stored value.
func Clear[T any]() Field[T] {
	return Field[T]{state: cleared}
}

// Present reports whether the field was provided at all.
func (f Field[T]) Present() bool { return f.state != absent }

// IsSet reports whether the field carries a value.
func (f Field[T]) IsSet() bool { return f.state == set }

// IsCleared reports whether the field was explicitly cleared.
func (f Field[T]) IsCleared() bool { return f.state == cleared }

// Value returns the held value, or the zero value when absent or cleared.
func (f Field[T]) Value() T { return f.value }

// Apply writes the field onto dst when present. Cleared fields write the zero value.
func (f Field[T]) Apply(dst *T) {
	switch f.state {
	case set:
		*dst = f.value
	case cleared:
		var zero T
		*dst = zero
	}
}

// ApplyPtr writes the field onto a nullable destination. Cleared fields write nil.
func (f Field[T]) ApplyPtr(dst **T) {
	switch f.state {
	case set:
		v := f.value
		*dst = &v
	case cleared:
		*dst = nil
	}
}

// String builds a field from a parsed argument map: a missing key is absent,
// an empty value clears, anything else sets.
func String(args map[string]string, key string) Field[string] {
	v, ok := args[key]
	if !ok {
		return Field[string]{}
	}
	if v == "" {
		return Clear[string]()
	}
	return Set(v)
}
