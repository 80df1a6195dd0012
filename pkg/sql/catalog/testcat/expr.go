// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package testcat

import (
	"github.com/cockroachdb/errors"
	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/tree"
)

// ExprDef is a scalar expression in YAML form. There is no SQL parser here;
// expressions are small structured trees:
//
//	{op: "=", col: status, value: open}
//	{op: and, args: [{op: ">", col: price, value: 10}, {op: is-not-null, col: custkey}]}
//	{op: call, func: length, args: [{op: col, col: status}]}
type ExprDef struct {
	Op    string      `yaml:"op"`
	Col   string      `yaml:"col"`
	Value interface{} `yaml:"value"`
	Func  string      `yaml:"func"`
	Args  []ExprDef   `yaml:"args"`
}

var comparisonOps = map[string]tree.ComparisonOperator{
	"=":  tree.EQ,
	"!=": tree.NE,
	"<":  tree.LT,
	"<=": tree.LE,
	">":  tree.GT,
	">=": tree.GE,
}

// Build converts the definition to an expression, resolving column names
// through the given mapping.
func (d *ExprDef) Build(colID map[string]opt.ColumnID) (tree.Expr, error) {
	colRef := func() (*tree.ColumnRef, error) {
		id, ok := colID[d.Col]
		if !ok {
			return nil, errors.Newf("unknown column %q", d.Col)
		}
		return tree.NewColumnRef(id, d.Col), nil
	}
	buildArgs := func(want int) ([]tree.Expr, error) {
		if want >= 0 && len(d.Args) != want {
			return nil, errors.Newf("op %q wants %d args, got %d", d.Op, want, len(d.Args))
		}
		args := make([]tree.Expr, len(d.Args))
		for i := range d.Args {
			var err error
			if args[i], err = d.Args[i].Build(colID); err != nil {
				return nil, err
			}
		}
		return args, nil
	}

	if op, ok := comparisonOps[d.Op]; ok {
		ref, err := colRef()
		if err != nil {
			return nil, err
		}
		val, err := tree.ParseDatum(d.Value)
		if err != nil {
			return nil, err
		}
		return tree.NewComparison(op, ref, val), nil
	}

	switch d.Op {
	case "and":
		args, err := buildArgs(-1)
		if err != nil {
			return nil, err
		}
		if len(args) < 2 {
			return nil, errors.Newf("and wants at least 2 args")
		}
		res := args[0]
		for _, arg := range args[1:] {
			res = &tree.AndExpr{Left: res, Right: arg}
		}
		return res, nil

	case "or":
		args, err := buildArgs(2)
		if err != nil {
			return nil, err
		}
		return &tree.OrExpr{Left: args[0], Right: args[1]}, nil

	case "not":
		args, err := buildArgs(1)
		if err != nil {
			return nil, err
		}
		return &tree.NotExpr{Expr: args[0]}, nil

	case "is-null", "is-not-null":
		ref, err := colRef()
		if err != nil {
			return nil, err
		}
		return &tree.IsNullExpr{Expr: ref, Negated: d.Op == "is-not-null"}, nil

	case "col":
		return colRef()

	case "const":
		return tree.ParseDatum(d.Value)

	case "call":
		args, err := buildArgs(-1)
		if err != nil {
			return nil, err
		}
		return &tree.FuncExpr{Name: d.Func, Args: args}, nil

	default:
		return nil, errors.Newf("unknown expression op %q", d.Op)
	}
}
