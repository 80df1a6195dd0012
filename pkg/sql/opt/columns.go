// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package opt

import (
	"bytes"
	"fmt"
	"sort"
)

// ColumnID uniquely identifies a column within the metadata of a single query
// plan. IDs are assigned by the Metadata and are never reused; 0 is reserved
// to mean "no column".
type ColumnID int32

// ColList is a list of column IDs. Unlike ColSet, it is ordered and can
// contain duplicates.
type ColList []ColumnID

// ToSet converts the list to a set of column IDs.
func (cl ColList) ToSet() ColSet {
	var s ColSet
	for _, col := range cl {
		s.Add(col)
	}
	return s
}

// Equals returns true if the two lists have the same columns in the same
// order.
func (cl ColList) Equals(other ColList) bool {
	if len(cl) != len(other) {
		return false
	}
	for i := range cl {
		if cl[i] != other[i] {
			return false
		}
	}
	return true
}

func (cl ColList) String() string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, col := range cl {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%d", col)
	}
	buf.WriteByte(']')
	return buf.String()
}

// ColSet efficiently stores an unordered set of column IDs. The zero value is
// the empty set.
type ColSet struct {
	// Sorted, without duplicates. Plans are small enough that a sorted slice
	// beats a bitmap or a map here.
	cols []ColumnID
}

// MakeColSet returns a set initialized with the given values.
func MakeColSet(vals ...ColumnID) ColSet {
	var s ColSet
	for _, v := range vals {
		s.Add(v)
	}
	return s
}

// Add adds a column to the set. No-op if the column is already in the set.
func (s *ColSet) Add(col ColumnID) {
	i := sort.Search(len(s.cols), func(i int) bool { return s.cols[i] >= col })
	if i < len(s.cols) && s.cols[i] == col {
		return
	}
	s.cols = append(s.cols, 0)
	copy(s.cols[i+1:], s.cols[i:])
	s.cols[i] = col
}

// Contains returns true if the set contains the given column.
func (s ColSet) Contains(col ColumnID) bool {
	i := sort.Search(len(s.cols), func(i int) bool { return s.cols[i] >= col })
	return i < len(s.cols) && s.cols[i] == col
}

// Empty returns true if the set is empty.
func (s ColSet) Empty() bool { return len(s.cols) == 0 }

// Len returns the number of columns in the set.
func (s ColSet) Len() int { return len(s.cols) }

// SubsetOf returns true if every column in s is in other.
func (s ColSet) SubsetOf(other ColSet) bool {
	for _, col := range s.cols {
		if !other.Contains(col) {
			return false
		}
	}
	return true
}

// Intersects returns true if the sets have any columns in common.
func (s ColSet) Intersects(other ColSet) bool {
	for _, col := range s.cols {
		if other.Contains(col) {
			return true
		}
	}
	return false
}

// Union returns a new set containing the columns of both sets.
func (s ColSet) Union(other ColSet) ColSet {
	res := s.Copy()
	for _, col := range other.cols {
		res.Add(col)
	}
	return res
}

// Intersection returns a new set containing the columns common to both sets.
func (s ColSet) Intersection(other ColSet) ColSet {
	var res ColSet
	for _, col := range s.cols {
		if other.Contains(col) {
			res.Add(col)
		}
	}
	return res
}

// Difference returns a new set with the columns of other removed.
func (s ColSet) Difference(other ColSet) ColSet {
	var res ColSet
	for _, col := range s.cols {
		if !other.Contains(col) {
			res.Add(col)
		}
	}
	return res
}

// Equals returns true if the two sets contain the same columns.
func (s ColSet) Equals(other ColSet) bool {
	if len(s.cols) != len(other.cols) {
		return false
	}
	for i := range s.cols {
		if s.cols[i] != other.cols[i] {
			return false
		}
	}
	return true
}

// Copy returns an independent copy of the set.
func (s ColSet) Copy() ColSet {
	res := ColSet{cols: make([]ColumnID, len(s.cols))}
	copy(res.cols, s.cols)
	return res
}

// Ordered returns the columns in increasing ID order.
func (s ColSet) Ordered() []ColumnID {
	res := make([]ColumnID, len(s.cols))
	copy(res, s.cols)
	return res
}

// ForEach calls the given function for each column in the set, in increasing
// ID order.
func (s ColSet) ForEach(f func(col ColumnID)) {
	for _, col := range s.cols {
		f(col)
	}
}

func (s ColSet) String() string {
	var buf bytes.Buffer
	buf.WriteByte('(')
	for i, col := range s.cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%d", col)
	}
	buf.WriteByte(')')
	return buf.String()
}
