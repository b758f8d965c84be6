package domain

// Field carries the three-state semantics of a partial update: a zero
// Field is absent (leave the column untouched), Null clears the column,
// and Set writes a value. Loose nil checks collapse the first two
// states; Field keeps them distinct at the type level.
type Field[T any] struct {
	present bool
	null    bool
	value   T
}

// Set returns a Field that writes v.
func Set[T any](v T) Field[T] {
	return Field[T]{present: true, value: v}
}

// Null returns a Field that clears the column to NULL.
func Null[T any]() Field[T] {
	return Field[T]{present: true, null: true}
}

// Present reports whether the field participates in the update at all.
func (f Field[T]) Present() bool {
	return f.present
}

// IsNull reports whether the field clears the column.
func (f Field[T]) IsNull() bool {
	return f.present && f.null
}

// Value returns the value to write and whether one is set.
func (f Field[T]) Value() (T, bool) {
	if !f.present || f.null {
		var zero T
		return zero, false
	}
	return f.value, true
}
