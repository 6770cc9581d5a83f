package common

import (
	"cmp"
	"slices"
)

// Coalesce returns the first non-zero value, or the zero value if every value is zero.
//
// Parameters:
//   - values: the candidates in priority order
//
// Returns:
//   - T: the first non-zero value
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// SortedKeys returns the keys of m in ascending order, so programs are built and
// reloaded in a stable order.
//
// Parameters:
//   - m: the map
//
// Returns:
//   - []K: the sorted keys
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
