// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package physical

import (
	"github.com/ricdong/presto-sub000/pkg/sql/opt"
)

// MatchLocal reports, for each desired local property, how much of it the
// actual property list already provides. The result is parallel to desired:
// a nil entry means the property is fully satisfied for free; a non-nil
// entry is the unmet remainder (for a grouping, the columns still needing a
// group boundary).
//
// Matching is a greedy prefix walk. Actual properties are consumed left to
// right against the current desired entry: a grouping on S counts toward a
// desired grouping on T when S is a subset of T (the stream is subdivided
// further by later properties, so T is satisfied once successive actual
// properties cover all of it); a sort on c counts toward a desired grouping
// containing c, and satisfies a desired sort on the same column and
// direction. Once one desired entry goes unmet, the hierarchy below it is
// meaningless and every later entry is reported unmet in full.
func MatchLocal(actual, desired []LocalProperty) []*LocalProperty {
	result := make([]*LocalProperty, len(desired))
	ai := 0
	for di, want := range desired {
		switch want.Kind {
		case Grouping:
			remaining := want.GroupCols.Copy()
			for ai < len(actual) && !remaining.Empty() {
				if !consumesGrouping(actual[ai], remaining) {
					break
				}
				remaining = remaining.Difference(actual[ai].Cols())
				ai++
			}
			if !remaining.Empty() {
				rem := GroupedOn(remaining)
				return markUnmetFrom(result, desired, di, &rem)
			}

		case Sorting:
			if ai < len(actual) && actual[ai].Equals(want) {
				ai++
			} else {
				rem := want
				return markUnmetFrom(result, desired, di, &rem)
			}
		}
	}
	return result
}

// consumesGrouping reports whether the actual property subdivides a stream
// in a way that contributes to the remaining desired grouping columns.
func consumesGrouping(actual LocalProperty, remaining opt.ColSet) bool {
	switch actual.Kind {
	case Grouping:
		return actual.GroupCols.SubsetOf(remaining)
	case Sorting:
		return remaining.Contains(actual.SortCol)
	default:
		return false
	}
}

// markUnmetFrom records first as the remainder for entry i and every later
// desired entry as unmet in full.
func markUnmetFrom(
	result []*LocalProperty, desired []LocalProperty, i int, first *LocalProperty,
) []*LocalProperty {
	result[i] = first
	for j := i + 1; j < len(desired); j++ {
		rem := desired[j]
		result[j] = &rem
	}
	return result
}

// SatisfiedCount returns the number of leading match results that are fully
// satisfied. Used to size streaming hints (pre-partitioned columns, sorted
// prefix length).
func SatisfiedCount(match []*LocalProperty) int {
	for i, m := range match {
		if m != nil {
			return i
		}
	}
	return len(match)
}

// StripConstants removes columns pinned to a single value from the desired
// properties: a constant column is trivially grouped and sorted, so it never
// forces an exchange or a sort. Groupings that become empty and sorts on a
// constant column are dropped entirely.
func StripConstants(desired []LocalProperty, constants opt.ColSet) []LocalProperty {
	if constants.Empty() {
		return desired
	}
	var res []LocalProperty
	for _, lp := range desired {
		switch lp.Kind {
		case Grouping:
			stripped := lp.GroupCols.Difference(constants)
			if stripped.Empty() {
				continue
			}
			res = append(res, GroupedOn(stripped))
		case Sorting:
			if constants.Contains(lp.SortCol) {
				continue
			}
			res = append(res, lp)
		}
	}
	return res
}
