// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package tree

import (
	"bytes"
	"fmt"

	"github.com/ricdong/presto-sub000/pkg/sql/opt"
)

// Expr represents a scalar expression. The set of variants is closed; code
// that dispatches on expression kind uses an exhaustive type switch.
type Expr interface {
	fmt.Stringer

	// Walk calls f on every sub-expression (including the receiver),
	// pre-order. If f returns false, children are not visited.
	Walk(f func(Expr) bool)
}

// ColumnRef is a reference to a column by id. Name is carried for formatting
// only.
type ColumnRef struct {
	Col  opt.ColumnID
	Name string
}

// NewColumnRef returns a reference to the given column.
func NewColumnRef(col opt.ColumnID, name string) *ColumnRef {
	return &ColumnRef{Col: col, Name: name}
}

// Walk implements the Expr interface.
func (e *ColumnRef) Walk(f func(Expr) bool) { f(e) }

func (e *ColumnRef) String() string {
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("@%d", e.Col)
}

// ComparisonOperator identifies a comparison.
type ComparisonOperator int

// The comparison operators.
const (
	EQ ComparisonOperator = iota
	LT
	GT
	LE
	GE
	NE
)

// SafeValue implements the redact.SafeValue interface.
func (op ComparisonOperator) SafeValue() {}

func (op ComparisonOperator) String() string {
	switch op {
	case EQ:
		return "="
	case LT:
		return "<"
	case GT:
		return ">"
	case LE:
		return "<="
	case GE:
		return ">="
	case NE:
		return "!="
	default:
		return fmt.Sprintf("<op %d>", int(op))
	}
}

// Flipped returns the operator with its operands swapped (a op b == b
// Flipped(op) a).
func (op ComparisonOperator) Flipped() ComparisonOperator {
	switch op {
	case LT:
		return GT
	case GT:
		return LT
	case LE:
		return GE
	case GE:
		return LE
	default:
		return op
	}
}

// ComparisonExpr is a binary comparison.
type ComparisonExpr struct {
	Operator    ComparisonOperator
	Left, Right Expr
}

// NewComparison constructs a comparison expression.
func NewComparison(op ComparisonOperator, left, right Expr) *ComparisonExpr {
	return &ComparisonExpr{Operator: op, Left: left, Right: right}
}

// Walk implements the Expr interface.
func (e *ComparisonExpr) Walk(f func(Expr) bool) {
	if f(e) {
		e.Left.Walk(f)
		e.Right.Walk(f)
	}
}

func (e *ComparisonExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Operator, e.Right)
}

// AndExpr is a boolean conjunction.
type AndExpr struct {
	Left, Right Expr
}

// Walk implements the Expr interface.
func (e *AndExpr) Walk(f func(Expr) bool) {
	if f(e) {
		e.Left.Walk(f)
		e.Right.Walk(f)
	}
}

func (e *AndExpr) String() string {
	return fmt.Sprintf("(%s AND %s)", e.Left, e.Right)
}

// OrExpr is a boolean disjunction.
type OrExpr struct {
	Left, Right Expr
}

// Walk implements the Expr interface.
func (e *OrExpr) Walk(f func(Expr) bool) {
	if f(e) {
		e.Left.Walk(f)
		e.Right.Walk(f)
	}
}

func (e *OrExpr) String() string {
	return fmt.Sprintf("(%s OR %s)", e.Left, e.Right)
}

// NotExpr is a boolean negation.
type NotExpr struct {
	Expr Expr
}

// Walk implements the Expr interface.
func (e *NotExpr) Walk(f func(Expr) bool) {
	if f(e) {
		e.Expr.Walk(f)
	}
}

func (e *NotExpr) String() string {
	return fmt.Sprintf("(NOT %s)", e.Expr)
}

// IsNullExpr tests a value for NULL. With Negated set it is IS NOT NULL.
type IsNullExpr struct {
	Expr    Expr
	Negated bool
}

// Walk implements the Expr interface.
func (e *IsNullExpr) Walk(f func(Expr) bool) {
	if f(e) {
		e.Expr.Walk(f)
	}
}

func (e *IsNullExpr) String() string {
	if e.Negated {
		return fmt.Sprintf("(%s IS NOT NULL)", e.Expr)
	}
	return fmt.Sprintf("(%s IS NULL)", e.Expr)
}

// FuncExpr is a call to a scalar function. The function is resolved by name
// against the registry in function.go.
type FuncExpr struct {
	Name string
	Args []Expr
}

// Walk implements the Expr interface.
func (e *FuncExpr) Walk(f func(Expr) bool) {
	if f(e) {
		for _, arg := range e.Args {
			arg.Walk(f)
		}
	}
}

func (e *FuncExpr) String() string {
	var buf bytes.Buffer
	buf.WriteString(e.Name)
	buf.WriteByte('(')
	for i, arg := range e.Args {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(arg.String())
	}
	buf.WriteByte(')')
	return buf.String()
}

// Walk on a Datum visits just the datum; datums are leaves.
func walkDatum(d Datum, f func(Expr) bool) { f(d) }

// Walk implements the Expr interface.
func (d DBool) Walk(f func(Expr) bool) { walkDatum(d, f) }

// Walk implements the Expr interface.
func (d DInt) Walk(f func(Expr) bool) { walkDatum(d, f) }

// Walk implements the Expr interface.
func (d DFloat) Walk(f func(Expr) bool) { walkDatum(d, f) }

// Walk implements the Expr interface.
func (d *DDecimal) Walk(f func(Expr) bool) { walkDatum(d, f) }

// Walk implements the Expr interface.
func (d DString) Walk(f func(Expr) bool) { walkDatum(d, f) }

// Walk implements the Expr interface.
func (d dNull) Walk(f func(Expr) bool) { walkDatum(d, f) }

// SplitConjunction flattens nested ANDs into a list of conjuncts.
func SplitConjunction(e Expr) []Expr {
	if e == nil {
		return nil
	}
	if and, ok := e.(*AndExpr); ok {
		return append(SplitConjunction(and.Left), SplitConjunction(and.Right)...)
	}
	return []Expr{e}
}

// CombineConjuncts rebuilds a conjunction from a list of conjuncts,
// left-associated. Returns nil for an empty list. Conjuncts that are the
// constant TRUE are dropped.
func CombineConjuncts(exprs ...Expr) Expr {
	var res Expr
	for _, e := range exprs {
		if e == nil || e == Expr(DBoolTrue) {
			continue
		}
		if res == nil {
			res = e
		} else {
			res = &AndExpr{Left: res, Right: e}
		}
	}
	return res
}

// AsDatum returns the datum if the expression is a constant value.
func AsDatum(e Expr) (Datum, bool) {
	if d, ok := e.(Datum); ok {
		return d, true
	}
	return nil, false
}

// IsDeterministic reports whether the expression contains no volatile
// function calls.
func IsDeterministic(e Expr) bool {
	res := true
	e.Walk(func(sub Expr) bool {
		if fn, ok := sub.(*FuncExpr); ok {
			if def, found := LookupFunction(fn.Name); found && def.Volatility == VolatilityVolatile {
				res = false
				return false
			}
		}
		return true
	})
	return res
}

// ReferencedCols returns the set of columns referenced by the expression.
func ReferencedCols(e Expr) opt.ColSet {
	var s opt.ColSet
	if e == nil {
		return s
	}
	e.Walk(func(sub Expr) bool {
		if ref, ok := sub.(*ColumnRef); ok {
			s.Add(ref.Col)
		}
		return true
	})
	return s
}
