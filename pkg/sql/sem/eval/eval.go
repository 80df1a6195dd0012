// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package eval implements best-effort constant folding of scalar
// expressions under SQL three-valued logic.
//
// Folding is partial: sub-expressions that reference unbound columns are
// returned unchanged rather than failing, so a caller can both fully
// evaluate closed expressions and simplify open ones. Folding never fails
// the caller: an error while evaluating a sub-expression (an unsupported
// comparison, a function runtime error) leaves that sub-expression in its
// original form.
package eval

import (
	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/tree"
)

// Bindings maps columns to constant values for folding.
type Bindings map[opt.ColumnID]tree.Datum

// Fold partially evaluates an expression. The result is a tree.Datum if the
// expression folded to a constant, or a simplified expression otherwise.
//
// Three-valued logic applies: AND folds to FALSE if either operand is
// definitely FALSE even when the other is unresolved; OR symmetrically
// folds to TRUE. Volatile functions are never folded, preserving their
// per-row semantics; deterministic functions fold only when every argument
// is a resolved constant.
func Fold(e tree.Expr, b Bindings) tree.Expr {
	switch t := e.(type) {
	case tree.Datum:
		return t

	case *tree.ColumnRef:
		if d, ok := b[t.Col]; ok {
			return d
		}
		return t

	case *tree.ComparisonExpr:
		return foldComparison(t, b)

	case *tree.AndExpr:
		return foldAnd(t, b)

	case *tree.OrExpr:
		return foldOr(t, b)

	case *tree.NotExpr:
		inner := Fold(t.Expr, b)
		if d, ok := tree.AsDatum(inner); ok {
			if d == tree.DNull {
				return tree.DNull
			}
			if v, isNull, err := tree.GetBool(d); err == nil && !isNull {
				return tree.MakeDBool(!v)
			}
			// Not a boolean; leave the original expression alone.
			return t
		}
		return &tree.NotExpr{Expr: inner}

	case *tree.IsNullExpr:
		inner := Fold(t.Expr, b)
		if d, ok := tree.AsDatum(inner); ok {
			return tree.MakeDBool(d.IsNull() != t.Negated)
		}
		return &tree.IsNullExpr{Expr: inner, Negated: t.Negated}

	case *tree.FuncExpr:
		return foldFunc(t, b)

	default:
		return e
	}
}

// FoldPredicate folds a boolean expression and reports whether it resolved.
// When resolved, value is the definite outcome and isNull marks the UNKNOWN
// case. When not resolved, residual is the simplified expression.
func FoldPredicate(e tree.Expr, b Bindings) (value bool, isNull bool, residual tree.Expr) {
	folded := Fold(e, b)
	if d, ok := tree.AsDatum(folded); ok {
		if v, null, err := tree.GetBool(d); err == nil {
			return v, null, nil
		}
	}
	return false, false, folded
}

func foldComparison(e *tree.ComparisonExpr, b Bindings) tree.Expr {
	left := Fold(e.Left, b)
	right := Fold(e.Right, b)
	ld, lok := tree.AsDatum(left)
	rd, rok := tree.AsDatum(right)
	if lok && rok {
		if ld == tree.DNull || rd == tree.DNull {
			return tree.DNull
		}
		cmp, err := ld.Compare(rd)
		if err != nil {
			// Could not fold; keep the original comparison.
			return e
		}
		var res bool
		switch e.Operator {
		case tree.EQ:
			res = cmp == 0
		case tree.LT:
			res = cmp < 0
		case tree.GT:
			res = cmp > 0
		case tree.LE:
			res = cmp <= 0
		case tree.GE:
			res = cmp >= 0
		case tree.NE:
			res = cmp != 0
		}
		return tree.MakeDBool(res)
	}
	return &tree.ComparisonExpr{Operator: e.Operator, Left: left, Right: right}
}

func foldAnd(e *tree.AndExpr, b Bindings) tree.Expr {
	left := Fold(e.Left, b)
	right := Fold(e.Right, b)

	// FALSE dominates, even over an unresolved operand.
	if isFalse(left) || isFalse(right) {
		return tree.DBoolFalse
	}
	if isTrue(left) {
		return right
	}
	if isTrue(right) {
		return left
	}
	// NULL AND NULL, or NULL with only TRUE eliminated above.
	if isNull(left) && isNull(right) {
		return tree.DNull
	}
	return &tree.AndExpr{Left: left, Right: right}
}

func foldOr(e *tree.OrExpr, b Bindings) tree.Expr {
	left := Fold(e.Left, b)
	right := Fold(e.Right, b)

	// TRUE dominates, even over an unresolved operand.
	if isTrue(left) || isTrue(right) {
		return tree.DBoolTrue
	}
	if isFalse(left) {
		return right
	}
	if isFalse(right) {
		return left
	}
	if isNull(left) && isNull(right) {
		return tree.DNull
	}
	return &tree.OrExpr{Left: left, Right: right}
}

func foldFunc(e *tree.FuncExpr, b Bindings) tree.Expr {
	def, ok := tree.LookupFunction(e.Name)
	if !ok {
		return e
	}
	args := make([]tree.Expr, len(e.Args))
	argDatums := make(tree.Datums, len(e.Args))
	allConst := true
	anyNull := false
	for i, arg := range e.Args {
		args[i] = Fold(arg, b)
		if d, isConst := tree.AsDatum(args[i]); isConst {
			argDatums[i] = d
			if d == tree.DNull {
				anyNull = true
			}
		} else {
			allConst = false
		}
	}
	if def.Volatility != tree.VolatilityImmutable || !allConst {
		return &tree.FuncExpr{Name: e.Name, Args: args}
	}
	if anyNull {
		// Builtins are strict.
		return tree.DNull
	}
	res, err := invoke(def, argDatums)
	if err != nil {
		// Folding is best-effort: leave the call in place.
		return &tree.FuncExpr{Name: e.Name, Args: args}
	}
	return res
}

// invoke calls the builtin, converting a panic into an error so a
// misbehaving builtin cannot abort the planning pass.
func invoke(def *tree.FunctionDefinition, args tree.Datums) (_ tree.Datum, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errFromPanic
		}
	}()
	return def.Fn(args)
}

var errFromPanic = errPanicSentinel{}

type errPanicSentinel struct{}

func (errPanicSentinel) Error() string { return "builtin panicked during folding" }

func isTrue(e tree.Expr) bool {
	d, ok := tree.AsDatum(e)
	if !ok {
		return false
	}
	v, isNull, err := tree.GetBool(d)
	return err == nil && !isNull && v
}

func isFalse(e tree.Expr) bool {
	d, ok := tree.AsDatum(e)
	if !ok {
		return false
	}
	v, isNull, err := tree.GetBool(d)
	return err == nil && !isNull && !v
}

func isNull(e tree.Expr) bool {
	d, ok := tree.AsDatum(e)
	return ok && d == tree.DNull
}
