// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package opt

import (
	"bytes"
	"fmt"
)

// Direction is the direction of a column ordering.
type Direction int

const (
	// Ascending sorts from smallest to largest.
	Ascending Direction = iota
	// Descending sorts from largest to smallest.
	Descending
)

// SafeValue implements the redact.SafeValue interface.
func (d Direction) SafeValue() {}

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ColumnOrderInfo ties a column to a sort direction.
type ColumnOrderInfo struct {
	Col       ColumnID
	Direction Direction
}

// ColumnOrdering is used to describe a column ordering. For example,
//
//	ColumnOrdering{{3, Descending}, {1, Ascending}}
//
// represents an ordering first by column 3 (descending), then by column 1
// (ascending).
type ColumnOrdering []ColumnOrderInfo

// Equals returns true if the two orderings are identical.
func (ord ColumnOrdering) Equals(other ColumnOrdering) bool {
	if len(ord) != len(other) {
		return false
	}
	for i := range ord {
		if ord[i] != other[i] {
			return false
		}
	}
	return true
}

// Cols returns the set of columns that appear in the ordering.
func (ord ColumnOrdering) Cols() ColSet {
	var s ColSet
	for _, o := range ord {
		s.Add(o.Col)
	}
	return s
}

func (ord ColumnOrdering) String() string {
	var buf bytes.Buffer
	for i, o := range ord {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%d %s", o.Col, o.Direction)
	}
	return buf.String()
}
