// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package plan defines the physical plan tree. The node set is a closed
// union: every planner pass dispatches with an exhaustive type switch, and
// an unhandled node is an assertion failure rather than a silently skipped
// subtree. Nodes are never mutated after construction; rewrites build new
// nodes around reused children.
package plan

import (
	"github.com/ricdong/presto-sub000/pkg/sql/catalog"
	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/opt/constraint"
	"github.com/ricdong/presto-sub000/pkg/sql/opt/physical"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/tree"
)

// NodeID identifies a node within one plan tree.
type NodeID int32

// IDAllocator hands out node IDs for one plan tree. Not safe for concurrent
// use; each planning invocation gets its own.
type IDAllocator struct {
	next NodeID
}

// NextID returns a fresh node ID.
func (a *IDAllocator) NextID() NodeID {
	a.next++
	return a.next
}

// NewIDAllocator returns an allocator whose IDs follow every ID already used
// in the given tree.
func NewIDAllocator(root Node) *IDAllocator {
	return &IDAllocator{next: maxID(root)}
}

func maxID(n Node) NodeID {
	max := n.ID()
	for _, child := range n.Children() {
		if m := maxID(child); m > max {
			max = m
		}
	}
	return max
}

// Node is a physical plan node.
type Node interface {
	ID() NodeID
	Children() []Node
	// OutputCols returns the columns the node produces, in output order.
	OutputCols() opt.ColList

	// node restricts the implementations to this package.
	node()
}

// Scan reads a table through a chosen layout. Before layout selection the
// Layout field is empty and Partitioning is the zero value.
type Scan struct {
	NodeID   NodeID
	Table    string
	Cols     opt.ColList
	Ordinals []int

	// Constraint is the domain enforced by the chosen layout (or pinned on
	// the scan before selection).
	Constraint constraint.Domain

	Layout       catalog.LayoutID
	Partitioning physical.Partitioning
}

func (s *Scan) ID() NodeID              { return s.NodeID }
func (s *Scan) Children() []Node        { return nil }
func (s *Scan) OutputCols() opt.ColList { return s.Cols }
func (s *Scan) node()                   {}

// Values produces a fixed set of rows. With no rows it is the definite-empty
// result, which is what a fully pruned scan collapses to.
type Values struct {
	NodeID NodeID
	Cols   opt.ColList
	Rows   [][]tree.Datum
}

func (v *Values) ID() NodeID              { return v.NodeID }
func (v *Values) Children() []Node        { return nil }
func (v *Values) OutputCols() opt.ColList { return v.Cols }
func (v *Values) node()                   {}

// Filter discards rows for which the predicate does not evaluate to TRUE.
type Filter struct {
	NodeID    NodeID
	Input     Node
	Predicate tree.Expr
}

func (f *Filter) ID() NodeID              { return f.NodeID }
func (f *Filter) Children() []Node        { return []Node{f.Input} }
func (f *Filter) OutputCols() opt.ColList { return f.Input.OutputCols() }
func (f *Filter) node()                   {}

// ProjectItem computes one output column.
type ProjectItem struct {
	Col  opt.ColumnID
	Expr tree.Expr
}

// Project computes a new column list from its input.
type Project struct {
	NodeID NodeID
	Input  Node
	Items  []ProjectItem
}

func (p *Project) ID() NodeID       { return p.NodeID }
func (p *Project) Children() []Node { return []Node{p.Input} }

func (p *Project) OutputCols() opt.ColList {
	cols := make(opt.ColList, len(p.Items))
	for i, item := range p.Items {
		cols[i] = item.Col
	}
	return cols
}

func (p *Project) node() {}

// PassthroughCols returns the input columns that flow through unchanged
// under the same ID. Local properties survive a projection only on these.
func (p *Project) PassthroughCols() opt.ColSet {
	var s opt.ColSet
	for _, item := range p.Items {
		if ref, ok := item.Expr.(*tree.ColumnRef); ok && ref.Col == item.Col {
			s.Add(item.Col)
		}
	}
	return s
}

// AggStep is the role of an aggregation node in a (possibly split) pipeline.
type AggStep int

const (
	// SingleStep computes final results directly from input rows.
	SingleStep AggStep = iota
	// PartialStep computes per-group intermediate state.
	PartialStep
	// FinalStep combines intermediate state into final results.
	FinalStep
)

// SafeValue implements the redact.SafeValue interface.
func (s AggStep) SafeValue() {}

func (s AggStep) String() string {
	switch s {
	case PartialStep:
		return "partial"
	case FinalStep:
		return "final"
	default:
		return "single"
	}
}

// Aggregation is one aggregate function computed by an Aggregate node.
type Aggregation struct {
	// Output is the result column.
	Output opt.ColumnID
	// Func is the aggregate function name.
	Func string
	// Args are the input columns (empty for count(*)).
	Args opt.ColList
	// Mask, when nonzero, is a boolean column selecting the rows that
	// contribute to this aggregate. Only valid on single and partial steps.
	Mask opt.ColumnID
}

// Aggregate groups its input on GroupingCols and computes Aggs per group. An
// empty GroupingCols list means global aggregation over all rows.
type Aggregate struct {
	NodeID       NodeID
	Input        Node
	Step         AggStep
	GroupingCols opt.ColList
	Aggs         []Aggregation
}

func (a *Aggregate) ID() NodeID       { return a.NodeID }
func (a *Aggregate) Children() []Node { return []Node{a.Input} }

func (a *Aggregate) OutputCols() opt.ColList {
	cols := make(opt.ColList, 0, len(a.GroupingCols)+len(a.Aggs))
	cols = append(cols, a.GroupingCols...)
	for _, agg := range a.Aggs {
		cols = append(cols, agg.Output)
	}
	return cols
}

func (a *Aggregate) node() {}

// JoinType is the join variant.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
)

// SafeValue implements the redact.SafeValue interface.
func (t JoinType) SafeValue() {}

func (t JoinType) String() string {
	switch t {
	case LeftOuterJoin:
		return "left outer"
	case RightOuterJoin:
		return "right outer"
	case FullOuterJoin:
		return "full outer"
	default:
		return "inner"
	}
}

// Join is an equi-join. LeftEqCols and RightEqCols are parallel lists of
// join key columns; OnExtra is an optional residual condition applied after
// key equality.
type Join struct {
	NodeID      NodeID
	Type        JoinType
	Left, Right Node
	LeftEqCols  opt.ColList
	RightEqCols opt.ColList
	OnExtra     tree.Expr
}

func (j *Join) ID() NodeID       { return j.NodeID }
func (j *Join) Children() []Node { return []Node{j.Left, j.Right} }

func (j *Join) OutputCols() opt.ColList {
	left := j.Left.OutputCols()
	right := j.Right.OutputCols()
	cols := make(opt.ColList, 0, len(left)+len(right))
	cols = append(cols, left...)
	cols = append(cols, right...)
	return cols
}

func (j *Join) node() {}

// SemiJoin marks each source row with whether its key appears in the
// filtering side. MatchCol is the produced boolean column.
type SemiJoin struct {
	NodeID       NodeID
	Source       Node
	Filtering    Node
	SourceKey    opt.ColumnID
	FilteringKey opt.ColumnID
	MatchCol     opt.ColumnID
}

func (s *SemiJoin) ID() NodeID       { return s.NodeID }
func (s *SemiJoin) Children() []Node { return []Node{s.Source, s.Filtering} }

func (s *SemiJoin) OutputCols() opt.ColList {
	cols := s.Source.OutputCols()
	res := make(opt.ColList, 0, len(cols)+1)
	res = append(res, cols...)
	res = append(res, s.MatchCol)
	return res
}

func (s *SemiJoin) node() {}

// WindowFunction is one window function computed by a Window node.
type WindowFunction struct {
	Output opt.ColumnID
	Func   string
	Args   opt.ColList
}

// Window computes window functions over partitions of its input.
// PrePartitionedCols and PreSortedPrefix are streaming hints recorded by the
// exchange planner: partition columns that were already colocated without an
// explicit exchange, and the length of the ordering prefix the input already
// satisfies.
type Window struct {
	NodeID        NodeID
	Input         Node
	PartitionCols opt.ColList
	Ordering      opt.ColumnOrdering
	Functions     []WindowFunction

	PrePartitionedCols opt.ColSet
	PreSortedPrefix    int
}

func (w *Window) ID() NodeID       { return w.NodeID }
func (w *Window) Children() []Node { return []Node{w.Input} }

func (w *Window) OutputCols() opt.ColList {
	cols := w.Input.OutputCols()
	res := make(opt.ColList, 0, len(cols)+len(w.Functions))
	res = append(res, cols...)
	for _, f := range w.Functions {
		res = append(res, f.Output)
	}
	return res
}

func (w *Window) node() {}

// RowNumber numbers rows within each partition. PrePartitionedCols is the
// same streaming hint Window carries.
type RowNumber struct {
	NodeID        NodeID
	Input         Node
	PartitionCols opt.ColList
	RowNumberCol  opt.ColumnID

	PrePartitionedCols opt.ColSet
}

func (r *RowNumber) ID() NodeID       { return r.NodeID }
func (r *RowNumber) Children() []Node { return []Node{r.Input} }

func (r *RowNumber) OutputCols() opt.ColList {
	cols := r.Input.OutputCols()
	res := make(opt.ColList, 0, len(cols)+1)
	res = append(res, cols...)
	res = append(res, r.RowNumberCol)
	return res
}

func (r *RowNumber) node() {}

// Sort fully orders its input.
type Sort struct {
	NodeID   NodeID
	Input    Node
	Ordering opt.ColumnOrdering
}

func (s *Sort) ID() NodeID              { return s.NodeID }
func (s *Sort) Children() []Node        { return []Node{s.Input} }
func (s *Sort) OutputCols() opt.ColList { return s.Input.OutputCols() }
func (s *Sort) node()                   {}

// TopN keeps the first N rows under the ordering. A Partial TopN runs
// per-node before a gather to shrink the data crossing the wire; a final
// TopN re-applies the limit after merging.
type TopN struct {
	NodeID   NodeID
	Input    Node
	Ordering opt.ColumnOrdering
	N        int64
	Partial  bool
}

func (t *TopN) ID() NodeID              { return t.NodeID }
func (t *TopN) Children() []Node        { return []Node{t.Input} }
func (t *TopN) OutputCols() opt.ColList { return t.Input.OutputCols() }
func (t *TopN) node()                   {}

// Limit keeps the first Count rows. Partial has the same meaning as for
// TopN.
type Limit struct {
	NodeID  NodeID
	Input   Node
	Count   int64
	Partial bool
}

func (l *Limit) ID() NodeID              { return l.NodeID }
func (l *Limit) Children() []Node        { return []Node{l.Input} }
func (l *Limit) OutputCols() opt.ColList { return l.Input.OutputCols() }
func (l *Limit) node()                   {}

// Union concatenates its inputs (UNION ALL semantics). InputCols[i][j] is
// input i's column feeding output column j.
type Union struct {
	NodeID    NodeID
	Inputs    []Node
	Cols      opt.ColList
	InputCols []opt.ColList
}

func (u *Union) ID() NodeID              { return u.NodeID }
func (u *Union) Children() []Node        { return u.Inputs }
func (u *Union) OutputCols() opt.ColList { return u.Cols }
func (u *Union) node()                   {}

// Output is the query result sink; it requires a single gathered stream.
type Output struct {
	NodeID NodeID
	Input  Node
	Cols   opt.ColList
	Names  []string
}

func (o *Output) ID() NodeID              { return o.NodeID }
func (o *Output) Children() []Node        { return []Node{o.Input} }
func (o *Output) OutputCols() opt.ColList { return o.Cols }
func (o *Output) node()                   {}

// TableWriter writes its input rows to a table and emits a per-fragment row
// count.
type TableWriter struct {
	NodeID      NodeID
	Input       Node
	Table       string
	Cols        opt.ColList
	RowCountCol opt.ColumnID
}

func (t *TableWriter) ID() NodeID              { return t.NodeID }
func (t *TableWriter) Children() []Node        { return []Node{t.Input} }
func (t *TableWriter) OutputCols() opt.ColList { return opt.ColList{t.RowCountCol} }
func (t *TableWriter) node()                   {}

// TableFinish commits a write pipeline and emits the total row count. It is
// a commit-style sink and always runs on a single stream.
type TableFinish struct {
	NodeID      NodeID
	Input       Node
	RowCountCol opt.ColumnID
}

func (t *TableFinish) ID() NodeID              { return t.NodeID }
func (t *TableFinish) Children() []Node        { return []Node{t.Input} }
func (t *TableFinish) OutputCols() opt.ColList { return opt.ColList{t.RowCountCol} }
func (t *TableFinish) node()                   {}

// Delete removes the rows identified by RowIDCol from a table. Plans feeding
// a Delete must keep rows colocated with the data being deleted, which
// restricts the exchanges allowed underneath.
type Delete struct {
	NodeID      NodeID
	Input       Node
	Table       string
	RowIDCol    opt.ColumnID
	RowCountCol opt.ColumnID
}

func (d *Delete) ID() NodeID              { return d.NodeID }
func (d *Delete) Children() []Node        { return []Node{d.Input} }
func (d *Delete) OutputCols() opt.ColList { return opt.ColList{d.RowCountCol} }
func (d *Delete) node()                   {}
