// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package physical

import (
	"runtime"
	"testing"

	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/stretchr/testify/require"
)

// Returns the line where it is called, used to identify testcases in errors.
func getLine() int {
	_, _, line, _ := runtime.Caller(1)
	return line
}

type matchCase struct {
	line    int
	desired []LocalProperty
	// satisfied is the expected number of fully satisfied leading entries.
	satisfied int
	// remainder, when non-nil, is the expected unmet part of the first
	// unsatisfied entry.
	remainder *LocalProperty
}

type matchSet struct {
	actual []LocalProperty
	cases  []matchCase
}

func lp(p LocalProperty) *LocalProperty { return &p }

func TestMatchLocal(t *testing.T) {
	testSets := []matchSet{
		{
			// No actual properties.
			actual: nil,
			cases: []matchCase{
				{
					line:      getLine(),
					desired:   []LocalProperty{GroupedOn(opt.MakeColSet(1, 2))},
					satisfied: 0,
					remainder: lp(GroupedOn(opt.MakeColSet(1, 2))),
				},
				{
					line:      getLine(),
					desired:   nil,
					satisfied: 0,
				},
			},
		},
		{
			// Grouped on {1,2}.
			actual: []LocalProperty{GroupedOn(opt.MakeColSet(1, 2))},
			cases: []matchCase{
				{
					line:      getLine(),
					desired:   []LocalProperty{GroupedOn(opt.MakeColSet(1, 2))},
					satisfied: 1,
				},
				{
					line:      getLine(),
					desired:   []LocalProperty{GroupedOn(opt.MakeColSet(1, 2, 3))},
					satisfied: 0,
					remainder: lp(GroupedOn(opt.MakeColSet(3))),
				},
				{
					// A coarser grouping does not satisfy a finer one.
					line:      getLine(),
					desired:   []LocalProperty{GroupedOn(opt.MakeColSet(1))},
					satisfied: 0,
					remainder: lp(GroupedOn(opt.MakeColSet(1))),
				},
			},
		},
		{
			// Sorted on 1 asc, then 2 desc.
			actual: []LocalProperty{
				SortedBy(1, opt.Ascending),
				SortedBy(2, opt.Descending),
			},
			cases: []matchCase{
				{
					line: getLine(),
					desired: []LocalProperty{
						SortedBy(1, opt.Ascending),
						SortedBy(2, opt.Descending),
					},
					satisfied: 2,
				},
				{
					line: getLine(),
					desired: []LocalProperty{
						SortedBy(1, opt.Ascending),
						SortedBy(2, opt.Ascending),
					},
					satisfied: 1,
					remainder: lp(SortedBy(2, opt.Ascending)),
				},
				{
					// Sort columns establish group boundaries.
					line:      getLine(),
					desired:   []LocalProperty{GroupedOn(opt.MakeColSet(1, 2))},
					satisfied: 1,
				},
				{
					line: getLine(),
					desired: []LocalProperty{
						GroupedOn(opt.MakeColSet(1)),
						SortedBy(2, opt.Descending),
					},
					satisfied: 2,
				},
				{
					// Out-of-order sort requirement.
					line:      getLine(),
					desired:   []LocalProperty{SortedBy(2, opt.Descending)},
					satisfied: 0,
					remainder: lp(SortedBy(2, opt.Descending)),
				},
			},
		},
		{
			// Grouped on {1} then sorted on 2 within each group.
			actual: []LocalProperty{
				GroupedOn(opt.MakeColSet(1)),
				SortedBy(2, opt.Ascending),
			},
			cases: []matchCase{
				{
					line: getLine(),
					desired: []LocalProperty{
						GroupedOn(opt.MakeColSet(1)),
						SortedBy(2, opt.Ascending),
					},
					satisfied: 2,
				},
				{
					// Both actual levels combine to satisfy one grouping.
					line:      getLine(),
					desired:   []LocalProperty{GroupedOn(opt.MakeColSet(1, 2))},
					satisfied: 1,
				},
				{
					// Once an entry goes unmet, everything after is unmet too.
					line: getLine(),
					desired: []LocalProperty{
						GroupedOn(opt.MakeColSet(3)),
						SortedBy(2, opt.Ascending),
					},
					satisfied: 0,
					remainder: lp(GroupedOn(opt.MakeColSet(3))),
				},
			},
		},
	}

	for _, ts := range testSets {
		for _, tc := range ts.cases {
			res := MatchLocal(ts.actual, tc.desired)
			require.Len(t, res, len(tc.desired), "line %d", tc.line)
			got := SatisfiedCount(res)
			if got != tc.satisfied {
				t.Errorf("line %d: expected %d satisfied, got %d", tc.line, tc.satisfied, got)
				continue
			}
			if tc.remainder != nil {
				require.Less(t, got, len(res), "line %d", tc.line)
				require.NotNil(t, res[got], "line %d", tc.line)
				if !res[got].Equals(*tc.remainder) {
					t.Errorf("line %d: expected remainder %s, got %s", tc.line, tc.remainder, res[got])
				}
				// Later entries come back whole.
				for j := got + 1; j < len(res); j++ {
					require.NotNil(t, res[j], "line %d", tc.line)
					require.True(t, res[j].Equals(tc.desired[j]), "line %d entry %d", tc.line, j)
				}
			}
		}
	}
}

func TestStripConstants(t *testing.T) {
	desired := []LocalProperty{
		GroupedOn(opt.MakeColSet(1, 2)),
		SortedBy(2, opt.Ascending),
		SortedBy(3, opt.Descending),
	}
	got := StripConstants(desired, opt.MakeColSet(2))
	require.Len(t, got, 2)
	require.True(t, got[0].Equals(GroupedOn(opt.MakeColSet(1))))
	require.True(t, got[1].Equals(SortedBy(3, opt.Descending)))

	// A grouping consumed entirely by constants disappears.
	got = StripConstants(desired[:1], opt.MakeColSet(1, 2))
	require.Empty(t, got)

	// No constants: input returned unchanged.
	got = StripConstants(desired, opt.ColSet{})
	require.Equal(t, desired, got)
}
