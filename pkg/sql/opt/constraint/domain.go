// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package constraint represents the set of values that columns can take as
// a conjunction of per-column range constraints (a "tuple domain"). Domains
// summarize filter predicates so that scan layouts can be matched and
// pruned without evaluating the predicate row by row.
package constraint

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/tree"
)

// ColumnDomain is the set of values allowed for a single column: a list of
// ordered, disjoint spans, plus whether NULL is allowed. A ColumnDomain with
// no spans and NullAllowed=false admits no values at all.
type ColumnDomain struct {
	Spans       []Span
	NullAllowed bool
}

// IsNone reports whether the column domain admits no values.
func (cd ColumnDomain) IsNone() bool {
	return len(cd.Spans) == 0 && !cd.NullAllowed
}

// IsAll reports whether the column domain admits every value including NULL.
func (cd ColumnDomain) IsAll() bool {
	return cd.NullAllowed && len(cd.Spans) == 1 && cd.Spans[0].IsFull()
}

// SingleValue returns the only value the column can take, if there is
// exactly one (and NULL is excluded).
func (cd ColumnDomain) SingleValue() (tree.Datum, bool) {
	if cd.NullAllowed || len(cd.Spans) != 1 {
		return nil, false
	}
	return cd.Spans[0].IsSingleValue()
}

func (cd ColumnDomain) intersect(other ColumnDomain) ColumnDomain {
	return ColumnDomain{
		Spans:       intersectSpans(cd.Spans, other.Spans),
		NullAllowed: cd.NullAllowed && other.NullAllowed,
	}
}

func (cd ColumnDomain) union(other ColumnDomain) ColumnDomain {
	return ColumnDomain{
		Spans:       unionSpans(cd.Spans, other.Spans),
		NullAllowed: cd.NullAllowed || other.NullAllowed,
	}
}

func (cd ColumnDomain) String() string {
	var buf bytes.Buffer
	for i, sp := range cd.Spans {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(sp.String())
	}
	if cd.NullAllowed {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString("NULL")
	}
	if buf.Len() == 0 {
		return "none"
	}
	return buf.String()
}

// Domain is a conjunction of column domains. A column absent from the map is
// unconstrained. The None sentinel marks a domain that admits no rows at
// all; it absorbs everything under intersection.
//
// Domains are immutable; operations return new values.
type Domain struct {
	cols map[opt.ColumnID]ColumnDomain
	none bool
}

// All returns the unconstrained domain.
func All() Domain { return Domain{} }

// None returns the unsatisfiable domain.
func None() Domain { return Domain{none: true} }

// ForColumn returns a domain constraining a single column. A column domain
// that admits nothing collapses to None; one that admits everything
// collapses to All.
func ForColumn(col opt.ColumnID, cd ColumnDomain) Domain {
	if cd.IsNone() {
		return None()
	}
	if cd.IsAll() {
		return All()
	}
	return Domain{cols: map[opt.ColumnID]ColumnDomain{col: cd}}
}

// IsAll reports whether the domain admits all rows.
func (d Domain) IsAll() bool { return !d.none && len(d.cols) == 0 }

// IsNone reports whether the domain admits no rows.
func (d Domain) IsNone() bool { return d.none }

// Column returns the domain of the given column. Unconstrained columns
// return an all-values domain.
func (d Domain) Column(col opt.ColumnID) (ColumnDomain, bool) {
	cd, ok := d.cols[col]
	return cd, ok
}

// ConstrainedColumns returns the constrained columns in increasing id order.
func (d Domain) ConstrainedColumns() []opt.ColumnID {
	cols := make([]opt.ColumnID, 0, len(d.cols))
	for col := range d.cols {
		cols = append(cols, col)
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i] < cols[j] })
	return cols
}

// Intersect returns the conjunction of two domains.
func (d Domain) Intersect(other Domain) Domain {
	if d.none || other.none {
		return None()
	}
	if d.IsAll() {
		return other
	}
	if other.IsAll() {
		return d
	}
	res := make(map[opt.ColumnID]ColumnDomain, len(d.cols)+len(other.cols))
	for col, cd := range d.cols {
		res[col] = cd
	}
	for col, cd := range other.cols {
		if existing, ok := res[col]; ok {
			cd = existing.intersect(cd)
		}
		if cd.IsNone() {
			return None()
		}
		res[col] = cd
	}
	return Domain{cols: res}
}

// Bindings returns the columns pinned to exactly one non-null value, mapped
// to that value. Used to evaluate catalog pruning predicates.
func (d Domain) Bindings() map[opt.ColumnID]tree.Datum {
	if d.none || len(d.cols) == 0 {
		return nil
	}
	res := make(map[opt.ColumnID]tree.Datum)
	for col, cd := range d.cols {
		if v, ok := cd.SingleValue(); ok {
			res[col] = v
		}
	}
	return res
}

// SingleValueCols returns the set of columns pinned to a single value.
func (d Domain) SingleValueCols() opt.ColSet {
	var s opt.ColSet
	for col, cd := range d.cols {
		if _, ok := cd.SingleValue(); ok {
			s.Add(col)
		}
	}
	return s
}

// ToPredicate reconstructs a boolean expression equivalent to the domain,
// naming columns through the metadata. All returns nil; None returns FALSE.
func (d Domain) ToPredicate(md *opt.Metadata) tree.Expr {
	if d.none {
		return tree.DBoolFalse
	}
	var conjuncts []tree.Expr
	for _, col := range d.ConstrainedColumns() {
		cd := d.cols[col]
		ref := tree.NewColumnRef(col, md.ColumnName(col))
		if !cd.NullAllowed && len(cd.Spans) == 1 && cd.Spans[0].IsFull() {
			// Only NULL is excluded.
			conjuncts = append(conjuncts, &tree.IsNullExpr{Expr: ref, Negated: true})
			continue
		}
		var disjuncts []tree.Expr
		for _, sp := range cd.Spans {
			disjuncts = append(disjuncts, spanPredicate(ref, sp))
		}
		if cd.NullAllowed {
			disjuncts = append(disjuncts, &tree.IsNullExpr{Expr: ref})
		}
		var colPred tree.Expr
		for _, dis := range disjuncts {
			if colPred == nil {
				colPred = dis
			} else {
				colPred = &tree.OrExpr{Left: colPred, Right: dis}
			}
		}
		if colPred != nil {
			conjuncts = append(conjuncts, colPred)
		}
	}
	return tree.CombineConjuncts(conjuncts...)
}

func spanPredicate(ref *tree.ColumnRef, sp Span) tree.Expr {
	if v, ok := sp.IsSingleValue(); ok {
		return tree.NewComparison(tree.EQ, ref, v)
	}
	var conjuncts []tree.Expr
	if !sp.Start.Unbounded() {
		op := tree.GT
		if sp.Start.Inclusive {
			op = tree.GE
		}
		conjuncts = append(conjuncts, tree.NewComparison(op, ref, sp.Start.Datum))
	}
	if !sp.End.Unbounded() {
		op := tree.LT
		if sp.End.Inclusive {
			op = tree.LE
		}
		conjuncts = append(conjuncts, tree.NewComparison(op, ref, sp.End.Datum))
	}
	res := tree.CombineConjuncts(conjuncts...)
	if res == nil {
		// Full span: no restriction.
		return tree.DBoolTrue
	}
	return res
}

func (d Domain) String() string {
	if d.none {
		return "none"
	}
	if len(d.cols) == 0 {
		return "all"
	}
	var buf bytes.Buffer
	for i, col := range d.ConstrainedColumns() {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "/%d: %s", col, d.cols[col])
	}
	return buf.String()
}
