// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package opt

import (
	"testing"

	"github.com/ricdong/presto-sub000/pkg/sql/sem/types"
	"github.com/stretchr/testify/require"
)

func TestColSet(t *testing.T) {
	var s ColSet
	require.True(t, s.Empty())

	s.Add(5)
	s.Add(1)
	s.Add(3)
	s.Add(3)
	require.Equal(t, 3, s.Len())
	require.Equal(t, []ColumnID{1, 3, 5}, s.Ordered())
	require.True(t, s.Contains(3))
	require.False(t, s.Contains(2))
	require.Equal(t, "(1,3,5)", s.String())

	other := MakeColSet(1, 3)
	require.True(t, other.SubsetOf(s))
	require.False(t, s.SubsetOf(other))
	require.True(t, s.Intersects(other))
	require.False(t, other.Intersects(MakeColSet(2, 4)))

	require.Equal(t, MakeColSet(1, 3), s.Intersection(MakeColSet(1, 2, 3)))
	require.Equal(t, MakeColSet(1, 2, 3, 5), s.Union(MakeColSet(2)))
	require.Equal(t, MakeColSet(5), s.Difference(other))
	require.True(t, s.Equals(MakeColSet(5, 3, 1)))
	require.False(t, s.Equals(other))

	// Copies are independent.
	cp := s.Copy()
	cp.Add(9)
	require.False(t, s.Contains(9))

	// The empty set is a subset of everything.
	require.True(t, ColSet{}.SubsetOf(s))
	require.True(t, ColSet{}.SubsetOf(ColSet{}))
}

func TestColList(t *testing.T) {
	cl := ColList{3, 1, 3}
	require.Equal(t, MakeColSet(1, 3), cl.ToSet())
	require.Equal(t, "[3,1,3]", cl.String())

	require.True(t, cl.Equals(ColList{3, 1, 3}))
	// Order matters for lists.
	require.False(t, cl.Equals(ColList{1, 3, 3}))
	require.False(t, cl.Equals(ColList{3, 1}))
}

func TestMetadata(t *testing.T) {
	var md Metadata
	a := md.AddColumn("a", types.Int)
	b := md.AddColumn("b", types.String)
	require.Equal(t, ColumnID(1), a)
	require.Equal(t, ColumnID(2), b)
	require.Equal(t, 2, md.NumColumns())

	require.Equal(t, "b", md.ColumnName(b))
	require.Equal(t, types.String, md.ColumnType(b))
	require.Equal(t, types.Int, md.ColumnMeta(a).Type)

	require.Panics(t, func() { md.ColumnName(0) })
	require.Panics(t, func() { md.ColumnName(99) })
}
