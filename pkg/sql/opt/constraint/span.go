// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package constraint

import (
	"bytes"

	"github.com/ricdong/presto-sub000/pkg/sql/sem/tree"
)

// Bound is one end of a span. A nil Datum means the bound is infinite in
// that direction; Inclusive is meaningless for infinite bounds.
type Bound struct {
	Datum     tree.Datum
	Inclusive bool
}

// Unbounded reports whether the bound is infinite.
func (b Bound) Unbounded() bool { return b.Datum == nil }

// Span is a single contiguous range of values for one column. Spans are
// formatted in the usual way; inclusivity is shown with brackets:
//
//	[/5 - /10)    5 <= x < 10
//	[/5 - /5]     x = 5
//	[ - /3]       x <= 3
type Span struct {
	Start, End Bound
}

// FullSpan returns the span covering all values.
func FullSpan() Span {
	return Span{}
}

// EqSpan returns the span containing exactly the given value.
func EqSpan(d tree.Datum) Span {
	return Span{
		Start: Bound{Datum: d, Inclusive: true},
		End:   Bound{Datum: d, Inclusive: true},
	}
}

// IsFull reports whether the span covers all values.
func (sp Span) IsFull() bool {
	return sp.Start.Unbounded() && sp.End.Unbounded()
}

// IsSingleValue reports whether the span admits exactly one value, and
// returns it.
func (sp Span) IsSingleValue() (tree.Datum, bool) {
	if sp.Start.Unbounded() || sp.End.Unbounded() || !sp.Start.Inclusive || !sp.End.Inclusive {
		return nil, false
	}
	cmp, err := sp.Start.Datum.Compare(sp.End.Datum)
	if err != nil || cmp != 0 {
		return nil, false
	}
	return sp.Start.Datum, true
}

// compareStartBounds orders two start bounds; an unbounded start sorts
// first. Returns an error only for incomparable datum types.
func compareStartBounds(a, b Bound) (int, error) {
	switch {
	case a.Unbounded() && b.Unbounded():
		return 0, nil
	case a.Unbounded():
		return -1, nil
	case b.Unbounded():
		return 1, nil
	}
	cmp, err := a.Datum.Compare(b.Datum)
	if err != nil || cmp != 0 {
		return cmp, err
	}
	// Same value: inclusive start comes first.
	switch {
	case a.Inclusive && !b.Inclusive:
		return -1, nil
	case !a.Inclusive && b.Inclusive:
		return 1, nil
	}
	return 0, nil
}

// compareEndBounds orders two end bounds; an unbounded end sorts last.
func compareEndBounds(a, b Bound) (int, error) {
	switch {
	case a.Unbounded() && b.Unbounded():
		return 0, nil
	case a.Unbounded():
		return 1, nil
	case b.Unbounded():
		return -1, nil
	}
	cmp, err := a.Datum.Compare(b.Datum)
	if err != nil || cmp != 0 {
		return cmp, err
	}
	// Same value: exclusive end comes first.
	switch {
	case !a.Inclusive && b.Inclusive:
		return -1, nil
	case a.Inclusive && !b.Inclusive:
		return 1, nil
	}
	return 0, nil
}

// isValid reports whether the span contains at least one value.
func (sp Span) isValid() bool {
	if sp.Start.Unbounded() || sp.End.Unbounded() {
		return true
	}
	cmp, err := sp.Start.Datum.Compare(sp.End.Datum)
	if err != nil {
		return false
	}
	if cmp != 0 {
		return cmp < 0
	}
	return sp.Start.Inclusive && sp.End.Inclusive
}

// tryIntersect intersects two spans. ok is false if they do not overlap or
// the bounds are not comparable.
func (sp Span) tryIntersect(other Span) (_ Span, ok bool) {
	res := sp
	if cmp, err := compareStartBounds(res.Start, other.Start); err != nil {
		return Span{}, false
	} else if cmp < 0 {
		res.Start = other.Start
	}
	if cmp, err := compareEndBounds(res.End, other.End); err != nil {
		return Span{}, false
	} else if cmp > 0 {
		res.End = other.End
	}
	if !res.isValid() {
		return Span{}, false
	}
	return res, true
}

// startsAfterEnd reports whether the span's start strictly follows the given
// end bound, meaning the two cannot touch or overlap.
func (sp Span) startsAfterEnd(end Bound) bool {
	if sp.Start.Unbounded() || end.Unbounded() {
		return false
	}
	cmp, err := sp.Start.Datum.Compare(end.Datum)
	if err != nil {
		return false
	}
	if cmp != 0 {
		return cmp > 0
	}
	// Touching at a single value: disjoint only if neither side includes it.
	return !sp.Start.Inclusive && !end.Inclusive
}

func (sp Span) String() string {
	var buf bytes.Buffer
	if sp.Start.Unbounded() || sp.Start.Inclusive {
		buf.WriteByte('[')
	} else {
		buf.WriteByte('(')
	}
	if !sp.Start.Unbounded() {
		buf.WriteByte('/')
		buf.WriteString(sp.Start.Datum.String())
	}
	buf.WriteString(" - ")
	if !sp.End.Unbounded() {
		buf.WriteByte('/')
		buf.WriteString(sp.End.Datum.String())
	}
	if sp.End.Unbounded() || sp.End.Inclusive {
		buf.WriteByte(']')
	} else {
		buf.WriteByte(')')
	}
	return buf.String()
}

// intersectSpans intersects two ordered, disjoint span lists using a merge.
func intersectSpans(a, b []Span) []Span {
	var res []Span
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].startsAfterEnd(b[j].End) {
			j++
			continue
		}
		if b[j].startsAfterEnd(a[i].End) {
			i++
			continue
		}
		if sp, ok := a[i].tryIntersect(b[j]); ok {
			res = append(res, sp)
		}
		// Advance whichever span ends first.
		cmp, err := compareEndBounds(a[i].End, b[j].End)
		if err != nil {
			return nil
		}
		if cmp <= 0 {
			i++
		}
		if cmp >= 0 {
			j++
		}
	}
	return res
}

// unionSpans merges two ordered, disjoint span lists into one, coalescing
// overlapping or adjacent spans.
func unionSpans(a, b []Span) []Span {
	merged := make([]Span, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		var next Span
		switch {
		case i == len(a):
			next, j = b[j], j+1
		case j == len(b):
			next, i = a[i], i+1
		default:
			cmp, err := compareStartBounds(a[i].Start, b[j].Start)
			if err != nil {
				return nil
			}
			if cmp <= 0 {
				next, i = a[i], i+1
			} else {
				next, j = b[j], j+1
			}
		}
		if n := len(merged); n > 0 && !next.startsAfterEnd(merged[n-1].End) {
			// Overlaps or touches the previous span: extend it.
			if cmp, err := compareEndBounds(next.End, merged[n-1].End); err == nil && cmp > 0 {
				merged[n-1].End = next.End
			}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}
