// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package tree

import (
	"testing"

	"github.com/ricdong/presto-sub000/pkg/sql/sem/types"
	"github.com/stretchr/testify/require"
)

func TestDatumCompare(t *testing.T) {
	dec5, err := NewDDecimalFromString("5.00")
	require.NoError(t, err)
	dec7, err := NewDDecimalFromString("7")
	require.NoError(t, err)

	testCases := []struct {
		left, right Datum
		expected    int
	}{
		{DInt(1), DInt(2), -1},
		{DInt(2), DInt(2), 0},
		{DInt(3), DInt(2), 1},
		{DFloat(1.5), DFloat(2.5), -1},
		{DString("a"), DString("b"), -1},
		{DBool(false), DBool(true), -1},
		{dec5, dec7, -1},
		{dec5, dec5, 0},
		// NULL sorts below every value.
		{DNull, DInt(0), -1},
		{DInt(0), DNull, 1},
		{DNull, DNull, 0},
	}
	for _, tc := range testCases {
		cmp, err := tc.left.Compare(tc.right)
		require.NoError(t, err)
		require.Equal(t, tc.expected, cmp, "%s vs %s", tc.left, tc.right)
	}

	// Cross-type comparisons are errors, not coercions.
	_, err = DInt(1).Compare(DString("1"))
	require.Error(t, err)
}

func TestDatumNext(t *testing.T) {
	next, ok := DInt(5).Next()
	require.True(t, ok)
	require.Equal(t, Datum(DInt(6)), next)

	next, ok = DBool(false).Next()
	require.True(t, ok)
	require.Equal(t, DBoolTrue, next)
	_, ok = DBool(true).Next()
	require.False(t, ok)

	// String successor sorts immediately after with nothing in between.
	next, ok = DString("ab").Next()
	require.True(t, ok)
	cmp, err := next.Compare(DString("ab"))
	require.NoError(t, err)
	require.Equal(t, 1, cmp)

	_, ok = DFloat(1.0).Next()
	require.False(t, ok)
	_, ok = DNull.Next()
	require.False(t, ok)
}

func TestGetBool(t *testing.T) {
	v, isNull, err := GetBool(DBoolTrue)
	require.NoError(t, err)
	require.True(t, v)
	require.False(t, isNull)

	_, isNull, err = GetBool(DNull)
	require.NoError(t, err)
	require.True(t, isNull)

	_, _, err = GetBool(DInt(1))
	require.Error(t, err)
}

func TestParseDatum(t *testing.T) {
	testCases := []struct {
		input    interface{}
		expected Datum
	}{
		{nil, DNull},
		{true, DBoolTrue},
		{42, DInt(42)},
		{int64(42), DInt(42)},
		{1.5, DFloat(1.5)},
		{"hello", DString("hello")},
	}
	for _, tc := range testCases {
		d, err := ParseDatum(tc.input)
		require.NoError(t, err)
		require.Equal(t, tc.expected, d)
	}

	_, err := ParseDatum([]int{1})
	require.Error(t, err)
}

func TestSplitAndCombineConjuncts(t *testing.T) {
	a := NewComparison(EQ, NewColumnRef(1, "a"), DInt(1))
	b := NewComparison(EQ, NewColumnRef(2, "b"), DInt(2))
	c := NewComparison(EQ, NewColumnRef(3, "c"), DInt(3))

	nested := &AndExpr{Left: &AndExpr{Left: a, Right: b}, Right: c}
	require.Equal(t, []Expr{a, b, c}, SplitConjunction(nested))
	require.Equal(t, []Expr{a}, SplitConjunction(a))
	require.Nil(t, SplitConjunction(nil))

	require.Nil(t, CombineConjuncts())
	require.Nil(t, CombineConjuncts(nil, DBoolTrue))
	require.Equal(t, Expr(a), CombineConjuncts(a))
	require.Equal(t, "((a = 1) AND (b = 2))", CombineConjuncts(a, nil, b).String())
	// TRUE conjuncts vanish.
	require.Equal(t, Expr(a), CombineConjuncts(DBoolTrue, a))
}

func TestReferencedCols(t *testing.T) {
	e := &AndExpr{
		Left: NewComparison(EQ, NewColumnRef(1, "a"), DInt(1)),
		Right: &FuncExpr{Name: "length", Args: []Expr{
			NewColumnRef(3, "c"),
		}},
	}
	cols := ReferencedCols(e)
	require.True(t, cols.Contains(1))
	require.True(t, cols.Contains(3))
	require.Equal(t, 2, cols.Len())
	require.True(t, ReferencedCols(nil).Empty())
}

func TestIsDeterministic(t *testing.T) {
	require.True(t, IsDeterministic(
		&FuncExpr{Name: "length", Args: []Expr{DString("x")}}))
	require.False(t, IsDeterministic(&FuncExpr{Name: "random"}))
	// Volatility is detected at any depth.
	require.False(t, IsDeterministic(&AndExpr{
		Left:  DBoolTrue,
		Right: NewComparison(LT, &FuncExpr{Name: "random"}, DFloat(0.5)),
	}))
	// Unknown functions are assumed deterministic; the registry decides.
	require.True(t, IsDeterministic(&FuncExpr{Name: "mystery"}))
}

func TestLookupFunction(t *testing.T) {
	def, ok := LookupFunction("LENGTH")
	require.True(t, ok)
	require.Equal(t, "length", def.Name)
	require.Equal(t, types.Int, def.ReturnType)

	res, err := def.Fn(Datums{DString("hello")})
	require.NoError(t, err)
	require.Equal(t, Datum(DInt(5)), res)

	_, ok = LookupFunction("no_such_function")
	require.False(t, ok)
}

func TestLookupAggregate(t *testing.T) {
	count, ok := LookupAggregate("count")
	require.True(t, ok)
	require.True(t, count.Decomposable)
	require.Equal(t, "count", count.PartialFunc)
	require.Equal(t, "sum", count.FinalFunc)
	require.Equal(t, types.Int, count.IntermediateType)

	// min/max/sum carry their input type through the split.
	sum, ok := LookupAggregate("sum")
	require.True(t, ok)
	require.True(t, sum.Decomposable)
	require.Equal(t, types.Unknown, sum.IntermediateType)

	// avg needs two intermediate slots, so it does not decompose.
	avg, ok := LookupAggregate("AVG")
	require.True(t, ok)
	require.False(t, avg.Decomposable)

	arrayAgg, ok := LookupAggregate("array_agg")
	require.True(t, ok)
	require.False(t, arrayAgg.Decomposable)
}
