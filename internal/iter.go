package internal

import (
	"iter"
	"maps"
	"slices"
)

// SortedKeys yields the keys of a string keyed map in ascending order.
func SortedKeys[V any](m map[string]V) iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(m)))
}
