// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package constraint

import (
	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/tree"
)

// DecomposePredicate summarizes a filter predicate as a tuple domain plus a
// residual expression for whatever could not be translated. The conjunction
// of (domain, residual) is equivalent to the input predicate.
//
// Translated forms: comparisons between a column and a constant (either
// operand order), IS [NOT] NULL on a column, and disjunctions whose arms all
// constrain the same single column. Conjuncts containing volatile function
// calls are never translated, so they keep their per-row semantics; they are
// returned in the residual together with anything else that did not
// translate.
func DecomposePredicate(e tree.Expr) (Domain, tree.Expr) {
	domain := All()
	var residual []tree.Expr
	for _, conjunct := range tree.SplitConjunction(e) {
		if !tree.IsDeterministic(conjunct) {
			residual = append(residual, conjunct)
			continue
		}
		if d, ok := decomposeConjunct(conjunct); ok {
			domain = domain.Intersect(d)
			continue
		}
		residual = append(residual, conjunct)
	}
	return domain, tree.CombineConjuncts(residual...)
}

func decomposeConjunct(e tree.Expr) (Domain, bool) {
	switch t := e.(type) {
	case tree.Datum:
		if v, isNull, err := tree.GetBool(t); err == nil {
			if isNull || !v {
				// A constant FALSE or NULL conjunct rejects every row.
				return None(), true
			}
			return All(), true
		}
		return Domain{}, false

	case *tree.ComparisonExpr:
		return decomposeComparison(t)

	case *tree.IsNullExpr:
		ref, ok := t.Expr.(*tree.ColumnRef)
		if !ok {
			return Domain{}, false
		}
		if t.Negated {
			return ForColumn(ref.Col, ColumnDomain{Spans: []Span{FullSpan()}}), true
		}
		return ForColumn(ref.Col, ColumnDomain{NullAllowed: true}), true

	case *tree.OrExpr:
		left, leftCol, ok := decomposeSingleColumn(t.Left)
		if !ok {
			return Domain{}, false
		}
		right, rightCol, ok := decomposeSingleColumn(t.Right)
		if !ok || leftCol != rightCol {
			return Domain{}, false
		}
		return ForColumn(leftCol, left.union(right)), true

	default:
		return Domain{}, false
	}
}

// decomposeSingleColumn translates an expression constraining exactly one
// column, returning its column domain. Used for OR arms.
func decomposeSingleColumn(e tree.Expr) (ColumnDomain, opt.ColumnID, bool) {
	d, ok := decomposeConjunct(e)
	if !ok || d.none {
		return ColumnDomain{}, 0, false
	}
	cols := d.ConstrainedColumns()
	if len(cols) != 1 {
		return ColumnDomain{}, 0, false
	}
	cd, _ := d.Column(cols[0])
	return cd, cols[0], true
}

func decomposeComparison(e *tree.ComparisonExpr) (Domain, bool) {
	op := e.Operator
	left, right := e.Left, e.Right
	// Normalize to column-op-constant.
	if _, ok := left.(tree.Datum); ok {
		left, right = right, left
		op = op.Flipped()
	}
	ref, ok := left.(*tree.ColumnRef)
	if !ok {
		return Domain{}, false
	}
	val, ok := right.(tree.Datum)
	if !ok {
		return Domain{}, false
	}
	if val == tree.DNull {
		// Any comparison against NULL is NULL, which rejects every row when
		// used as a filter.
		return None(), true
	}

	var spans []Span
	switch op {
	case tree.EQ:
		spans = []Span{EqSpan(val)}
	case tree.LT:
		spans = []Span{{End: Bound{Datum: val, Inclusive: false}}}
	case tree.LE:
		spans = []Span{{End: Bound{Datum: val, Inclusive: true}}}
	case tree.GT:
		spans = []Span{{Start: Bound{Datum: val, Inclusive: false}}}
	case tree.GE:
		spans = []Span{{Start: Bound{Datum: val, Inclusive: true}}}
	case tree.NE:
		spans = []Span{
			{End: Bound{Datum: val, Inclusive: false}},
			{Start: Bound{Datum: val, Inclusive: false}},
		}
	default:
		return Domain{}, false
	}
	return ForColumn(ref.Col, ColumnDomain{Spans: spans}), true
}
