// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package constraint

import (
	"testing"

	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/tree"
	"github.com/stretchr/testify/require"
)

const (
	colA opt.ColumnID = 1
	colB opt.ColumnID = 2
)

func gt(d tree.Datum) Span  { return Span{Start: Bound{Datum: d}} }
func ge(d tree.Datum) Span  { return Span{Start: Bound{Datum: d, Inclusive: true}} }
func lt(d tree.Datum) Span  { return Span{End: Bound{Datum: d}} }
func le(d tree.Datum) Span  { return Span{End: Bound{Datum: d, Inclusive: true}} }
func rng(lo, hi tree.Datum) Span {
	return Span{
		Start: Bound{Datum: lo, Inclusive: true},
		End:   Bound{Datum: hi, Inclusive: true},
	}
}

func spansDomain(col opt.ColumnID, spans ...Span) Domain {
	return ForColumn(col, ColumnDomain{Spans: spans})
}

func TestIntersectSpans(t *testing.T) {
	testCases := []struct {
		a, b     []Span
		expected string
	}{
		// Overlapping ranges narrow to the overlap.
		{[]Span{gt(tree.DInt(5))}, []Span{lt(tree.DInt(10))}, "(/5 - /10)"},
		// Disjoint ranges are empty.
		{[]Span{lt(tree.DInt(5))}, []Span{gt(tree.DInt(10))}, ""},
		// Touching at an excluded point is empty.
		{[]Span{lt(tree.DInt(5))}, []Span{gt(tree.DInt(5))}, ""},
		// Touching at an included point keeps the point.
		{[]Span{le(tree.DInt(5))}, []Span{ge(tree.DInt(5))}, "[/5 - /5]"},
		// A point inside a range survives.
		{[]Span{EqSpan(tree.DInt(7))}, []Span{gt(tree.DInt(5))}, "[/7 - /7]"},
		// Multi-span: a != 5 intersected with a range splits around the hole.
		{
			[]Span{lt(tree.DInt(5)), gt(tree.DInt(5))},
			[]Span{rng(tree.DInt(0), tree.DInt(10))},
			"[/0 - /5) (/5 - /10]",
		},
	}
	for _, tc := range testCases {
		got := ColumnDomain{Spans: intersectSpans(tc.a, tc.b)}
		expected := tc.expected
		if expected == "" {
			expected = "none"
		}
		require.Equal(t, expected, got.String())
	}
}

func TestUnionSpans(t *testing.T) {
	testCases := []struct {
		a, b     []Span
		expected string
	}{
		// Overlapping spans coalesce.
		{
			[]Span{rng(tree.DInt(1), tree.DInt(5))},
			[]Span{rng(tree.DInt(3), tree.DInt(9))},
			"[/1 - /9]",
		},
		// Adjacent-at-a-point spans coalesce.
		{[]Span{le(tree.DInt(5))}, []Span{ge(tree.DInt(5))}, "[ - ]"},
		// Disjoint spans stay separate and ordered.
		{
			[]Span{EqSpan(tree.DInt(8))},
			[]Span{EqSpan(tree.DInt(2))},
			"[/2 - /2] [/8 - /8]",
		},
		// A contained span disappears into the larger one.
		{
			[]Span{rng(tree.DInt(1), tree.DInt(10))},
			[]Span{EqSpan(tree.DInt(5))},
			"[/1 - /10]",
		},
	}
	for _, tc := range testCases {
		got := ColumnDomain{Spans: unionSpans(tc.a, tc.b)}
		require.Equal(t, tc.expected, got.String())
	}
}

func TestDomainIntersect(t *testing.T) {
	d1 := spansDomain(colA, gt(tree.DInt(5)))
	d2 := spansDomain(colA, lt(tree.DInt(10)))
	d3 := spansDomain(colB, EqSpan(tree.DString("x")))

	// Same column: spans intersect.
	res := d1.Intersect(d2)
	cd, ok := res.Column(colA)
	require.True(t, ok)
	require.Equal(t, "(/5 - /10)", cd.String())

	// Different columns: both constraints carried.
	res = d1.Intersect(d3)
	require.Len(t, res.ConstrainedColumns(), 2)

	// Contradiction collapses to None, which absorbs everything.
	none := d1.Intersect(spansDomain(colA, lt(tree.DInt(0))))
	require.True(t, none.IsNone())
	require.True(t, none.Intersect(d3).IsNone())
	require.True(t, d3.Intersect(none).IsNone())

	// All is the identity.
	require.Equal(t, d1, All().Intersect(d1))
	require.Equal(t, d1, d1.Intersect(All()))
}

func TestDomainBindings(t *testing.T) {
	d := spansDomain(colA, EqSpan(tree.DInt(7))).
		Intersect(spansDomain(colB, gt(tree.DInt(0))))

	bindings := d.Bindings()
	require.Equal(t, map[opt.ColumnID]tree.Datum{colA: tree.DInt(7)}, bindings)

	single := d.SingleValueCols()
	require.True(t, single.Contains(colA))
	require.False(t, single.Contains(colB))

	// A column that also admits NULL is not pinned.
	withNull := ForColumn(colA, ColumnDomain{
		Spans: []Span{EqSpan(tree.DInt(7))}, NullAllowed: true,
	})
	require.Empty(t, withNull.Bindings())
}

func TestDecomposePredicate(t *testing.T) {
	refA := tree.NewColumnRef(colA, "a")
	refB := tree.NewColumnRef(colB, "b")

	testCases := []struct {
		expr     tree.Expr
		domain   string
		residual string
	}{
		{tree.NewComparison(tree.EQ, refA, tree.DInt(5)), "/1: [/5 - /5]", ""},
		// Constant on the left is normalized.
		{tree.NewComparison(tree.LT, tree.DInt(5), refA), "/1: (/5 - ]", ""},
		{tree.NewComparison(tree.NE, refA, tree.DInt(5)), "/1: [ - /5) (/5 - ]", ""},
		{&tree.IsNullExpr{Expr: refA}, "/1: NULL", ""},
		{&tree.IsNullExpr{Expr: refA, Negated: true}, "/1: [ - ]", ""},
		// Conjunction splits across columns.
		{
			&tree.AndExpr{
				Left:  tree.NewComparison(tree.GT, refA, tree.DInt(5)),
				Right: tree.NewComparison(tree.EQ, refB, tree.DInt(1)),
			},
			"/1: (/5 - ] /2: [/1 - /1]", "",
		},
		// Single-column OR translates to a multi-span domain.
		{
			&tree.OrExpr{
				Left:  tree.NewComparison(tree.EQ, refA, tree.DInt(1)),
				Right: tree.NewComparison(tree.EQ, refA, tree.DInt(3)),
			},
			"/1: [/1 - /1] [/3 - /3]", "",
		},
		// Cross-column OR cannot be a tuple domain; it goes residual whole.
		{
			&tree.OrExpr{
				Left:  tree.NewComparison(tree.EQ, refA, tree.DInt(1)),
				Right: tree.NewComparison(tree.EQ, refB, tree.DInt(3)),
			},
			"all", "((a = 1) OR (b = 3))",
		},
		// Column-to-column comparisons go residual.
		{tree.NewComparison(tree.EQ, refA, refB), "all", "(a = b)"},
		// Volatile conjuncts are never translated.
		{
			&tree.AndExpr{
				Left: tree.NewComparison(tree.EQ, refA, tree.DInt(5)),
				Right: tree.NewComparison(tree.LT, &tree.FuncExpr{Name: "random"},
					tree.DFloat(0.5)),
			},
			"/1: [/5 - /5]", "(random() < 0.5)",
		},
		// Comparison against NULL rejects all rows.
		{tree.NewComparison(tree.EQ, refA, tree.DNull), "none", ""},
		// A constant FALSE conjunct rejects all rows.
		{tree.DBoolFalse, "none", ""},
	}
	for _, tc := range testCases {
		domain, residual := DecomposePredicate(tc.expr)
		require.Equal(t, tc.domain, domain.String(), "%s", tc.expr)
		if tc.residual == "" {
			require.Nil(t, residual, "%s", tc.expr)
		} else {
			require.NotNil(t, residual, "%s", tc.expr)
			require.Equal(t, tc.residual, residual.String())
		}
	}
}

// ToPredicate must rebuild an expression equivalent to the domain: folding
// the predicate under a value inside the domain yields TRUE, outside FALSE.
func TestDomainToPredicate(t *testing.T) {
	var md opt.Metadata
	a := md.AddColumn("a", 0)

	d := ForColumn(a, ColumnDomain{Spans: []Span{
		rng(tree.DInt(1), tree.DInt(5)), EqSpan(tree.DInt(9)),
	}})
	pred := d.ToPredicate(&md)
	require.NotNil(t, pred)
	require.Equal(t, "(((a >= 1) AND (a <= 5)) OR (a = 9))", pred.String())

	require.Nil(t, All().ToPredicate(&md))
	require.Equal(t, tree.Expr(tree.DBoolFalse), None().ToPredicate(&md))
}
