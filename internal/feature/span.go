package feature

import (
	"fmt"
	"slices"
)

// Span is a closed 1-based coordinate interval [X1, X2].
type Span struct {
	X1, X2 int
}

func (s Span) String() string { return fmt.Sprintf("%d-%d", s.X1, s.X2) }

// Valid reports whether X1 <= X2.
func (s Span) Valid() bool { return s.X1 <= s.X2 }

func (s Span) Len() int {
	if !s.Valid() {
		return 0
	}
	return s.X2 - s.X1 + 1
}

func (s Span) Contains(x int) bool { return x >= s.X1 && x <= s.X2 }

func (s Span) Overlaps(o Span) bool { return s.X1 <= o.X2 && o.X1 <= s.X2 }

// touches is true when the spans overlap or abut, i.e. they coalesce into
// one span: [10,20] and [21,30] touch.
func (s Span) touches(o Span) bool { return s.X1 <= o.X2+1 && o.X1 <= s.X2+1 }

// InsertSpan adds s to a sorted, coalesced list and returns the result, still
// sorted and coalesced. Overlapping and abutting spans are joined. Invalid
// spans are ignored.
func InsertSpan(list []Span, s Span) []Span {
	if !s.Valid() {
		return list
	}
	// first span that could touch s
	i, _ := slices.BinarySearchFunc(list, s.X1, func(e Span, x int) int {
		if e.X2+1 < x {
			return -1
		}
		return 1
	})
	j := i
	for j < len(list) && list[j].touches(s) {
		s.X1 = min(s.X1, list[j].X1)
		s.X2 = max(s.X2, list[j].X2)
		j++
	}
	if i == j {
		return slices.Insert(list, i, s)
	}
	list[i] = s
	return slices.Delete(list, i+1, j)
}

// MergeLoaded folds src into dst, keeping dst sorted and coalesced. dst is
// modified; src is not.
func MergeLoaded(dst, src []Span) []Span {
	for _, s := range src {
		dst = InsertSpan(dst, s)
	}
	return dst
}

// NormalizeLoaded sorts and coalesces an arbitrary span list.
func NormalizeLoaded(list []Span) []Span {
	var out []Span
	for _, s := range list {
		out = InsertSpan(out, s)
	}
	return out
}

// LoadedCovers reports whether [start,end] lies entirely within one span of
// a coalesced list.
func LoadedCovers(list []Span, start, end int) bool {
	for _, s := range list {
		if start >= s.X1 && end <= s.X2 {
			return true
		}
	}
	return false
}

// Strand of a feature or block relative to the reference sequence.
type Strand int8

const (
	StrandNone Strand = iota
	StrandForward
	StrandReverse
)

func (s Strand) String() string {
	switch s {
	case StrandForward:
		return "+"
	case StrandReverse:
		return "-"
	default:
		return "."
	}
}

// Flip swaps forward and reverse; StrandNone is unchanged.
func (s Strand) Flip() Strand {
	switch s {
	case StrandForward:
		return StrandReverse
	case StrandReverse:
		return StrandForward
	default:
		return s
	}
}

func ParseStrand(s string) (Strand, error) {
	switch s {
	case "+", "forward", "fwd":
		return StrandForward, nil
	case "-", "reverse", "rev":
		return StrandReverse, nil
	case "", ".", "none":
		return StrandNone, nil
	}
	return StrandNone, fmt.Errorf("%w: bad strand %q", ErrArgument, s)
}
