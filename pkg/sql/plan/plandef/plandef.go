// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package plandef builds plan trees from YAML definitions. It exists for the
// explain CLI and for tests that want to describe an input plan without
// constructing nodes by hand. A definition looks like:
//
//	types: {status: string}
//	plan:
//	  op: aggregate
//	  group_by: [custkey]
//	  aggs:
//	    - {output: cnt, func: count}
//	  input:
//	    op: filter
//	    predicate: {op: "=", col: status, value: open}
//	    input: {op: scan, table: orders}
//
// Columns are referred to by name. A scan registers its columns under both
// the bare name and "table.name"; when two scans expose the same bare name it
// becomes ambiguous and must be qualified.
package plandef

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ricdong/presto-sub000/pkg/sql/catalog/testcat"
	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/plan"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/tree"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/types"
	yaml "gopkg.in/yaml.v2"
)

// Result is a built plan together with the metadata its columns live in.
type Result struct {
	Root     plan.Node
	Metadata *opt.Metadata
}

type fileDef struct {
	Types map[string]string `yaml:"types"`
	Plan  *nodeDef          `yaml:"plan"`
}

type nodeDef struct {
	Op string `yaml:"op"`

	// scan
	Table   string   `yaml:"table"`
	Columns []string `yaml:"columns"`

	// filter
	Predicate *testcat.ExprDef `yaml:"predicate"`

	// project
	Items []projectItemDef `yaml:"items"`

	// aggregate
	GroupBy []string `yaml:"group_by"`
	Aggs    []aggDef `yaml:"aggs"`

	// join
	Type    string   `yaml:"type"`
	LeftEq  []string `yaml:"left_eq"`
	RightEq []string `yaml:"right_eq"`
	Left    *nodeDef `yaml:"left"`
	Right   *nodeDef `yaml:"right"`

	// sort, topn
	OrderBy []string `yaml:"order_by"`

	// topn, limit
	Count int64 `yaml:"count"`

	// union
	Inputs []nodeDef `yaml:"inputs"`

	Input *nodeDef `yaml:"input"`
}

type projectItemDef struct {
	Name string          `yaml:"name"`
	Expr testcat.ExprDef `yaml:"expr"`
}

type aggDef struct {
	Output string `yaml:"output"`
	Func   string `yaml:"func"`
	Arg    string `yaml:"arg"`
	Mask   string `yaml:"mask"`
}

// Build parses a plan definition and constructs the plan tree against the
// given catalog.
func Build(cat *testcat.Catalog, data []byte) (*Result, error) {
	var def fileDef
	if err := yaml.UnmarshalStrict(data, &def); err != nil {
		return nil, errors.Wrap(err, "parsing plan definition")
	}
	if def.Plan == nil {
		return nil, errors.New("definition has no plan")
	}

	b := &builder{
		cat:      cat,
		colTypes: def.Types,
		cols:     make(map[string]opt.ColumnID),
	}
	root, err := b.build(def.Plan)
	if err != nil {
		return nil, err
	}
	return &Result{Root: root, Metadata: &b.md}, nil
}

type builder struct {
	cat      *testcat.Catalog
	md       opt.Metadata
	alloc    plan.IDAllocator
	colTypes map[string]string

	// cols maps both bare and table-qualified column names to metadata IDs.
	// A bare name claimed by two scans maps to 0 and must be qualified.
	cols map[string]opt.ColumnID
}

func (b *builder) build(def *nodeDef) (plan.Node, error) {
	switch def.Op {
	case "scan":
		return b.buildScan(def)
	case "filter":
		return b.buildFilter(def)
	case "project":
		return b.buildProject(def)
	case "aggregate":
		return b.buildAggregate(def)
	case "join":
		return b.buildJoin(def)
	case "sort":
		return b.buildSort(def)
	case "topn":
		return b.buildTopN(def)
	case "limit":
		return b.buildLimit(def)
	case "union":
		return b.buildUnion(def)
	case "output":
		return b.buildOutput(def)
	default:
		return nil, errors.Newf("unknown plan op %q", def.Op)
	}
}

func (b *builder) input(def *nodeDef) (plan.Node, error) {
	if def.Input == nil {
		return nil, errors.Newf("op %q needs an input", def.Op)
	}
	return b.build(def.Input)
}

func (b *builder) colType(name string) types.T {
	if tn, ok := b.colTypes[name]; ok {
		if t, ok := types.FromName(tn); ok {
			return t
		}
	}
	return types.Int
}

func (b *builder) register(key string, id opt.ColumnID) {
	if _, taken := b.cols[key]; taken {
		b.cols[key] = 0
	} else {
		b.cols[key] = id
	}
}

func (b *builder) resolve(name string) (opt.ColumnID, error) {
	id, ok := b.cols[name]
	if !ok {
		return 0, errors.Newf("unknown column %q", name)
	}
	if id == 0 {
		return 0, errors.Newf("ambiguous column %q; qualify it as table.column", name)
	}
	return id, nil
}

func (b *builder) resolveList(names []string) (opt.ColList, error) {
	cols := make(opt.ColList, len(names))
	for i, name := range names {
		var err error
		if cols[i], err = b.resolve(name); err != nil {
			return nil, err
		}
	}
	return cols, nil
}

// scope returns the column mapping visible to expressions, for ExprDef
// resolution.
func (b *builder) scope() map[string]opt.ColumnID {
	res := make(map[string]opt.ColumnID, len(b.cols))
	for name, id := range b.cols {
		if id != 0 {
			res[name] = id
		}
	}
	return res
}

func (b *builder) buildScan(def *nodeDef) (plan.Node, error) {
	tabCols, ok := b.cat.Table(def.Table)
	if !ok {
		return nil, errors.Newf("unknown table %q", def.Table)
	}
	names := def.Columns
	if len(names) == 0 {
		names = tabCols
	}

	cols := make(opt.ColList, len(names))
	ordinals := make([]int, len(names))
	for i, name := range names {
		ord := -1
		for j, tc := range tabCols {
			if tc == name {
				ord = j
				break
			}
		}
		if ord < 0 {
			return nil, errors.Newf("table %q has no column %q", def.Table, name)
		}
		id := b.md.AddColumn(name, b.colType(name))
		b.register(name, id)
		b.register(def.Table+"."+name, id)
		cols[i] = id
		ordinals[i] = ord
	}
	return &plan.Scan{
		NodeID:   b.alloc.NextID(),
		Table:    def.Table,
		Cols:     cols,
		Ordinals: ordinals,
	}, nil
}

func (b *builder) buildFilter(def *nodeDef) (plan.Node, error) {
	input, err := b.input(def)
	if err != nil {
		return nil, err
	}
	if def.Predicate == nil {
		return nil, errors.New("filter needs a predicate")
	}
	pred, err := def.Predicate.Build(b.scope())
	if err != nil {
		return nil, err
	}
	return &plan.Filter{NodeID: b.alloc.NextID(), Input: input, Predicate: pred}, nil
}

func (b *builder) buildProject(def *nodeDef) (plan.Node, error) {
	input, err := b.input(def)
	if err != nil {
		return nil, err
	}
	items := make([]plan.ProjectItem, len(def.Items))
	for i, item := range def.Items {
		expr, err := item.Expr.Build(b.scope())
		if err != nil {
			return nil, err
		}
		// An identity projection keeps its column id so passthrough
		// properties survive; anything else gets a fresh column.
		var col opt.ColumnID
		if ref, ok := expr.(*tree.ColumnRef); ok && ref.Name == item.Name {
			col = ref.Col
		} else {
			col = b.md.AddColumn(item.Name, b.colType(item.Name))
			b.register(item.Name, col)
		}
		items[i] = plan.ProjectItem{Col: col, Expr: expr}
	}
	return &plan.Project{NodeID: b.alloc.NextID(), Input: input, Items: items}, nil
}

func (b *builder) buildAggregate(def *nodeDef) (plan.Node, error) {
	input, err := b.input(def)
	if err != nil {
		return nil, err
	}
	groupCols, err := b.resolveList(def.GroupBy)
	if err != nil {
		return nil, err
	}
	aggs := make([]plan.Aggregation, len(def.Aggs))
	for i, a := range def.Aggs {
		agg := plan.Aggregation{Func: a.Func}
		if a.Arg != "" {
			arg, err := b.resolve(a.Arg)
			if err != nil {
				return nil, err
			}
			agg.Args = opt.ColList{arg}
		}
		if a.Mask != "" {
			if agg.Mask, err = b.resolve(a.Mask); err != nil {
				return nil, err
			}
		}
		typ := types.Int
		if adef, ok := tree.LookupAggregate(a.Func); ok && adef.ReturnType != types.Unknown {
			typ = adef.ReturnType
		} else if len(agg.Args) == 1 {
			typ = b.md.ColumnType(agg.Args[0])
		}
		agg.Output = b.md.AddColumn(a.Output, typ)
		b.register(a.Output, agg.Output)
		aggs[i] = agg
	}
	return &plan.Aggregate{
		NodeID:       b.alloc.NextID(),
		Input:        input,
		Step:         plan.SingleStep,
		GroupingCols: groupCols,
		Aggs:         aggs,
	}, nil
}

var joinTypes = map[string]plan.JoinType{
	"":      plan.InnerJoin,
	"inner": plan.InnerJoin,
	"left":  plan.LeftOuterJoin,
	"right": plan.RightOuterJoin,
	"full":  plan.FullOuterJoin,
}

func (b *builder) buildJoin(def *nodeDef) (plan.Node, error) {
	if def.Left == nil || def.Right == nil {
		return nil, errors.New("join needs left and right inputs")
	}
	left, err := b.build(def.Left)
	if err != nil {
		return nil, err
	}
	right, err := b.build(def.Right)
	if err != nil {
		return nil, err
	}
	jt, ok := joinTypes[def.Type]
	if !ok {
		return nil, errors.Newf("unknown join type %q", def.Type)
	}
	leftEq, err := b.resolveList(def.LeftEq)
	if err != nil {
		return nil, err
	}
	rightEq, err := b.resolveList(def.RightEq)
	if err != nil {
		return nil, err
	}
	if len(leftEq) != len(rightEq) || len(leftEq) == 0 {
		return nil, errors.New("join needs matching left_eq and right_eq lists")
	}
	return &plan.Join{
		NodeID:      b.alloc.NextID(),
		Type:        jt,
		Left:        left,
		Right:       right,
		LeftEqCols:  leftEq,
		RightEqCols: rightEq,
	}, nil
}

func (b *builder) ordering(names []string) (opt.ColumnOrdering, error) {
	ord := make(opt.ColumnOrdering, len(names))
	for i, spec := range names {
		name := spec
		dir := opt.Ascending
		if s := strings.TrimSuffix(spec, " desc"); s != spec {
			name, dir = s, opt.Descending
		} else if s := strings.TrimSuffix(spec, " asc"); s != spec {
			name = s
		}
		col, err := b.resolve(name)
		if err != nil {
			return nil, err
		}
		ord[i] = opt.ColumnOrderInfo{Col: col, Direction: dir}
	}
	return ord, nil
}

func (b *builder) buildSort(def *nodeDef) (plan.Node, error) {
	input, err := b.input(def)
	if err != nil {
		return nil, err
	}
	ord, err := b.ordering(def.OrderBy)
	if err != nil {
		return nil, err
	}
	return &plan.Sort{NodeID: b.alloc.NextID(), Input: input, Ordering: ord}, nil
}

func (b *builder) buildTopN(def *nodeDef) (plan.Node, error) {
	input, err := b.input(def)
	if err != nil {
		return nil, err
	}
	ord, err := b.ordering(def.OrderBy)
	if err != nil {
		return nil, err
	}
	return &plan.TopN{
		NodeID: b.alloc.NextID(), Input: input, N: def.Count, Ordering: ord,
	}, nil
}

func (b *builder) buildLimit(def *nodeDef) (plan.Node, error) {
	input, err := b.input(def)
	if err != nil {
		return nil, err
	}
	return &plan.Limit{NodeID: b.alloc.NextID(), Input: input, Count: def.Count}, nil
}

func (b *builder) buildUnion(def *nodeDef) (plan.Node, error) {
	if len(def.Inputs) < 2 {
		return nil, errors.New("union needs at least 2 inputs")
	}
	inputs := make([]plan.Node, len(def.Inputs))
	inputCols := make([]opt.ColList, len(def.Inputs))
	for i := range def.Inputs {
		var err error
		if inputs[i], err = b.build(&def.Inputs[i]); err != nil {
			return nil, err
		}
		inputCols[i] = inputs[i].OutputCols()
		if i > 0 && len(inputCols[i]) != len(inputCols[0]) {
			return nil, errors.Newf("union input %d has %d columns, want %d",
				i, len(inputCols[i]), len(inputCols[0]))
		}
	}

	// The union's output columns are fresh, named after the first input's.
	cols := make(opt.ColList, len(inputCols[0]))
	for i, in := range inputCols[0] {
		name := b.md.ColumnName(in)
		cols[i] = b.md.AddColumn(name, b.md.ColumnType(in))
		b.register(name, cols[i])
	}
	return &plan.Union{
		NodeID:    b.alloc.NextID(),
		Inputs:    inputs,
		Cols:      cols,
		InputCols: inputCols,
	}, nil
}

func (b *builder) buildOutput(def *nodeDef) (plan.Node, error) {
	input, err := b.input(def)
	if err != nil {
		return nil, err
	}
	cols := input.OutputCols()
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = b.md.ColumnName(col)
	}
	return &plan.Output{
		NodeID: b.alloc.NextID(), Input: input, Cols: cols, Names: names,
	}, nil
}
