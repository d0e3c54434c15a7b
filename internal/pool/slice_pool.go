package pool

import "sync"

// boolSlicePool backs the per-record "seen field" bitmaps used while decoding.
var boolSlicePool = sync.Pool{
	New: func() any { return &[]bool{} },
}

// GetBoolSlice retrieves a zeroed bool slice of the given length from the pool.
//
// The caller must call the returned cleanup function to return the slice to the pool.
//
// Parameters:
//   - size: The desired length of the slice
//
// Returns:
//   - []bool: A slice with length equal to size, every element false
//   - func(): Cleanup function that must be called (typically with defer) to return the slice to the pool
//
// Example:
//
//	seen, cleanup := pool.GetBoolSlice(len(fields))
//	defer cleanup()
func GetBoolSlice(size int) ([]bool, func()) {
	ptr, _ := boolSlicePool.Get().(*[]bool)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]bool, size)
	} else {
		slice = slice[:size]
		clear(slice)
	}
	*ptr = slice

	return slice, func() { boolSlicePool.Put(ptr) }
}
