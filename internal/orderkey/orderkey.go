// Package orderkey implements the integer order-key arithmetic shared by every
// ordered collection (statuses within a board, leads within a status).
//
// Positions are sparse int64 values spaced by Increment. New entries are placed
// at the midpoint of their neighbours until no distinct integer midpoint exists,
// at which point the whole collection has to be re-spaced.
package orderkey

import (
	"errors"
	"math"
)

const (
	// Initial is the position handed out for the first entry of an empty collection.
	Initial int64 = 1000

	// Increment is the gap between consecutive appended or re-spaced positions.
	Increment int64 = 1000

	// MaxPosition and MinPosition bound every stored position, which keeps
	// neighbour differences and end offsets clear of int64 overflow.
	MaxPosition int64 = math.MaxInt64 / 4
	MinPosition int64 = -MaxPosition
)

// ErrPrecisionExhausted signals that two neighbours are too close to fit a new
// position between them, or that an end of the collection has reached the
// position bounds. Callers are expected to rebalance and never surface it.
var ErrPrecisionExhausted = errors.New("order key precision exhausted")

// InitialPosition returns the position used when a collection is empty.
func InitialPosition() int64 {
	return Initial
}

// InRange reports whether p lies within [MinPosition, MaxPosition].
func InRange(p int64) bool {
	return p >= MinPosition && p <= MaxPosition
}

// NextAfter returns the position that appends after last.
// A nil last means the collection is empty. It returns ErrPrecisionExhausted
// when the result would pass MaxPosition.
func NextAfter(last *int64) (int64, error) {
	if last == nil {
		return InitialPosition(), nil
	}
	return above(*last)
}

// above and below step one Increment past an end, staying in range.
func above(p int64) (int64, error) {
	if p > MaxPosition-Increment {
		return 0, ErrPrecisionExhausted
	}
	return p + Increment, nil
}

func below(p int64) (int64, error) {
	if p < MinPosition+Increment {
		return 0, ErrPrecisionExhausted
	}
	return p - Increment, nil
}

// Between returns floor((before+after)/2) without forming the sum.
func Between(before, after int64) int64 {
	// arithmetic shift floors negative differences as well
	return before + (after-before)>>1
}

// TooClose reports whether no integer distinct from both neighbours fits between them.
func TooClose(before, after int64) bool {
	d := after - before
	if d < 0 {
		d = -d
	}
	return d < 2
}

// Spaced returns count positions: Increment, 2*Increment, ... count*Increment.
func Spaced(count int) []int64 {
	if count <= 0 {
		return []int64{}
	}
	out := make([]int64, count)
	for i := range out {
		out[i] = int64(i+1) * Increment
	}
	return out
}

// PositionForInsertAt computes a position for target against the full sorted
// position list of the collection:
//
//   - empty list: InitialPosition()
//   - target == 0: one Increment below the head
//   - target >= len-1: one Increment above the tail
//   - otherwise: the midpoint of ordered[target-1] and ordered[target]
//
// The middle case never checks for exhausted precision; see PositionAt. The
// end cases return ErrPrecisionExhausted when they would leave the bounds.
func PositionForInsertAt(target int, ordered []int64) (int64, error) {
	n := len(ordered)
	switch {
	case n == 0:
		return InitialPosition(), nil
	case target <= 0:
		return below(ordered[0])
	case target >= n-1:
		return above(ordered[n-1])
	default:
		return Between(ordered[target-1], ordered[target]), nil
	}
}

// PositionAt computes the position that places a new entry at index among
// siblings, a sorted list that does not contain the entry itself. An index past
// the end appends. It returns ErrPrecisionExhausted when the two neighbours of
// a middle slot are too close or an end slot would leave the bounds.
func PositionAt(index int, siblings []int64) (int64, error) {
	n := len(siblings)
	switch {
	case n == 0:
		return InitialPosition(), nil
	case index <= 0:
		return below(siblings[0])
	case index >= n:
		return above(siblings[n-1])
	}

	before, after := siblings[index-1], siblings[index]
	if TooClose(before, after) {
		return 0, ErrPrecisionExhausted
	}
	return Between(before, after), nil
}
