package table

import "fmt"

// Entry is one optionally present field slot of a table value.
//
// The zero Entry is empty. An empty entry is never written to the wire, and
// a decoded entry stays empty when the record did not carry it.
type Entry[T any] struct {
	value   T
	present bool
}

// Some returns an entry holding v.
func Some[T any](v T) Entry[T] {
	return Entry[T]{value: v, present: true}
}

// IsPresent reports whether the entry holds a value.
func (e Entry[T]) IsPresent() bool {
	return e.present
}

// Get returns the value and whether it is present.
func (e Entry[T]) Get() (T, bool) {
	return e.value, e.present
}

// Value returns the value, or the zero value of T when the entry is empty.
func (e Entry[T]) Value() T {
	if !e.present {
		var zero T
		return zero
	}

	return e.value
}

// Or returns the value, or def when the entry is empty.
func (e Entry[T]) Or(def T) T {
	if !e.present {
		return def
	}

	return e.value
}

// Set stores v and marks the entry present.
func (e *Entry[T]) Set(v T) {
	e.value = v
	e.present = true
}

// Clear empties the entry.
func (e *Entry[T]) Clear() {
	var zero T
	e.value = zero
	e.present = false
}

func (e Entry[T]) String() string {
	if !e.present {
		return "<empty>"
	}

	return fmt.Sprint(e.value)
}

// RetiredEntry marks a struct field whose id has been retired from the table.
//
// It holds no value and has no setter; the field exists only so the id stays
// visible in the type next to the Retire definition that reserves it.
type RetiredEntry struct{}

// IsPresent always reports false.
func (RetiredEntry) IsPresent() bool {
	return false
}

func (RetiredEntry) String() string {
	return "<retired>"
}
