package store

import (
	"cmp"
	"slices"
)

// SortItems orders items by position, ties broken by id.
func SortItems(items []Item) {
	slices.SortFunc(items, func(a, b Item) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Positions extracts the positions of already sorted items.
func Positions(items []Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.Position
	}
	return out
}

// IndexOf returns the index of id in items, or -1.
func IndexOf(items []Item, id string) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.ID == id })
}
