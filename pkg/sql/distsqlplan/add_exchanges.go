// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package distsqlplan

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/ricdong/presto-sub000/pkg/sql/catalog"
	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/opt/physical"
	"github.com/ricdong/presto-sub000/pkg/sql/plan"
	"github.com/ricdong/presto-sub000/pkg/util/log"
)

// AddExchanges distributes a physical plan: it chooses scan layouts, splits
// aggregations, and inserts exchange operators wherever a node's required
// distribution differs from what its input provides. The input tree is not
// modified; reusable subtrees are shared with the result.
//
// The catalog is wrapped in a per-invocation layout memo, so two concurrent
// calls never share cached layout state.
func AddExchanges(
	ctx context.Context,
	cat catalog.Catalog,
	md *opt.Metadata,
	flags SessionFlags,
	root plan.Node,
) (plan.Node, error) {
	ctx = logtags.AddTag(ctx, "addexchanges", nil)
	p := &planner{
		catalog: catalog.WithLayoutMemo(cat),
		md:      md,
		flags:   flags,
		alloc:   *plan.NewIDAllocator(root),
	}
	result, _, err := p.rebuild(ctx, root, requirements{})
	return result, err
}

type planner struct {
	catalog catalog.Catalog
	md      *opt.Metadata
	flags   SessionFlags
	alloc   plan.IDAllocator
}

// requirements is the top-down traversal context. It is immutable; the
// with* constructors return updated copies, so a parent's requirements are
// never clobbered by what it passes to one child.
type requirements struct {
	// preferred is what the parent would like from this subtree. It is a
	// hint, unlike the hard placement rules the planner enforces per node.
	preferred physical.PreferredProperties

	// preserveDeleteColocation is set underneath a Delete: rows must stay on
	// the node holding the data they identify, which rules out exchanges
	// that move source rows.
	preserveDeleteColocation bool
}

func (r requirements) withPreferred(pref physical.PreferredProperties) requirements {
	r.preferred = pref
	return r
}

func (r requirements) withDeleteColocation() requirements {
	r.preserveDeleteColocation = true
	return r
}

func (p *planner) rebuild(
	ctx context.Context, n plan.Node, req requirements,
) (plan.Node, physical.ActualProperties, error) {
	if err := ctx.Err(); err != nil {
		return nil, physical.ActualProperties{}, err
	}

	switch t := n.(type) {
	case *plan.Scan:
		return p.pickLayout(ctx, t, nil, req.preferred)

	case *plan.Filter:
		if scan, ok := t.Input.(*plan.Scan); ok {
			return p.pickLayout(ctx, scan, t.Predicate, req.preferred)
		}
		child, props, err := p.rebuild(ctx, t.Input, req)
		if err != nil {
			return nil, physical.ActualProperties{}, err
		}
		result := &plan.Filter{NodeID: t.NodeID, Input: child, Predicate: t.Predicate}
		return result, props, nil

	case *plan.Values:
		return t, undistributedProps(), nil

	case *plan.Project:
		return p.rebuildProject(ctx, t, req)

	case *plan.Aggregate:
		return p.rebuildAggregate(ctx, t, req)

	case *plan.Window:
		return p.rebuildWindow(ctx, t, req)

	case *plan.RowNumber:
		return p.rebuildRowNumber(ctx, t, req)

	case *plan.Join:
		return p.rebuildJoin(ctx, t, req)

	case *plan.SemiJoin:
		return p.rebuildSemiJoin(ctx, t, req)

	case *plan.Sort:
		return p.rebuildSort(ctx, t, req)

	case *plan.TopN:
		return p.rebuildTopN(ctx, t, req)

	case *plan.Limit:
		return p.rebuildLimit(ctx, t, req)

	case *plan.Union:
		return p.rebuildUnion(ctx, t, req)

	case *plan.Exchange:
		return p.rebuildExchange(ctx, t, req)

	case *plan.Output:
		child, props, err := p.gatheredChild(ctx, t.Input, req)
		if err != nil {
			return nil, physical.ActualProperties{}, err
		}
		result := &plan.Output{NodeID: t.NodeID, Input: child, Cols: t.Cols, Names: t.Names}
		return result, props, nil

	case *plan.TableWriter:
		return p.rebuildTableWriter(ctx, t, req)

	case *plan.TableFinish:
		child, props, err := p.gatheredChild(ctx, t.Input, req)
		if err != nil {
			return nil, physical.ActualProperties{}, err
		}
		result := &plan.TableFinish{NodeID: t.NodeID, Input: child, RowCountCol: t.RowCountCol}
		return result, DeriveProperties(result, []physical.ActualProperties{props}), nil

	case *plan.Delete:
		child, props, err := p.rebuild(ctx, t.Input, req.withDeleteColocation().withPreferred(physical.Any()))
		if err != nil {
			return nil, physical.ActualProperties{}, err
		}
		result := &plan.Delete{
			NodeID: t.NodeID, Input: child, Table: t.Table,
			RowIDCol: t.RowIDCol, RowCountCol: t.RowCountCol,
		}
		return result, DeriveProperties(result, []physical.ActualProperties{props}), nil

	default:
		return nil, physical.ActualProperties{},
			errors.AssertionFailedf("unhandled node type %T", n)
	}
}

// gatheredChild rebuilds a child that must arrive as a single stream,
// inserting a gather exchange if it comes back distributed.
func (p *planner) gatheredChild(
	ctx context.Context, child plan.Node, req requirements,
) (plan.Node, physical.ActualProperties, error) {
	rebuilt, props, err := p.rebuild(ctx, child, req.withPreferred(physical.PreferUndistributed()))
	if err != nil {
		return nil, physical.ActualProperties{}, err
	}
	return p.gatherIfDistributed(ctx, rebuilt, props)
}

func (p *planner) gatherIfDistributed(
	ctx context.Context, n plan.Node, props physical.ActualProperties,
) (plan.Node, physical.ActualProperties, error) {
	if !props.Partitioning.IsDistributed() {
		return n, props, nil
	}
	log.VInfof(ctx, 1, "inserting gather above node %d", n.ID())
	exch := plan.GatherExchange(&p.alloc, n)
	return exch, exchangeProps(exch), nil
}

func (p *planner) rebuildProject(
	ctx context.Context, t *plan.Project, req requirements,
) (plan.Node, physical.ActualProperties, error) {
	passthrough := t.PassthroughCols()

	// Push the parent's wishes down only insofar as they survive the
	// projection.
	childPref := req.preferred
	if g := childPref.Global; g != nil && !g.PartitioningCols.SubsetOf(passthrough) {
		childPref.Global = &physical.GlobalPreference{Distributed: g.Distributed}
	}
	childPref.Local = physical.TranslateLocal(childPref.Local, passthrough)

	child, childProps, err := p.rebuild(ctx, t.Input, req.withPreferred(childPref))
	if err != nil {
		return nil, physical.ActualProperties{}, err
	}
	result := &plan.Project{NodeID: t.NodeID, Input: child, Items: t.Items}
	return result, DeriveProperties(result, []physical.ActualProperties{childProps}), nil
}

func (p *planner) rebuildAggregate(
	ctx context.Context, t *plan.Aggregate, req requirements,
) (plan.Node, physical.ActualProperties, error) {
	if t.Step != plan.SingleStep {
		// Partial/final pairs are only produced by this pass; feeding one
		// back in means idempotent replanning, so leave its input alone.
		child, childProps, err := p.rebuild(ctx, t.Input, req.withPreferred(physical.Any()))
		if err != nil {
			return nil, physical.ActualProperties{}, err
		}
		result := &plan.Aggregate{
			NodeID: t.NodeID, Input: child, Step: t.Step,
			GroupingCols: t.GroupingCols, Aggs: t.Aggs,
		}
		return result, DeriveProperties(result, []physical.ActualProperties{childProps}), nil
	}

	groupCols := t.GroupingCols.ToSet()
	var childPref physical.PreferredProperties
	if len(t.GroupingCols) == 0 {
		childPref = physical.PreferUndistributed()
	} else {
		childPref = physical.PreferPartitioned(groupCols)
		if p.flags.PreferStreamingOperators {
			childPref = childPref.WithLocal([]physical.LocalProperty{physical.GroupedOn(groupCols)})
		}
	}

	child, childProps, err := p.rebuild(ctx, t.Input, req.withPreferred(childPref))
	if err != nil {
		return nil, physical.ActualProperties{}, err
	}

	satisfied := childProps.Partitioning.IsPartitionedOn(groupCols)
	if len(t.GroupingCols) == 0 {
		satisfied = !childProps.Partitioning.IsDistributed()
	}
	if satisfied {
		result := &plan.Aggregate{
			NodeID: t.NodeID, Input: child, Step: plan.SingleStep,
			GroupingCols: t.GroupingCols, Aggs: t.Aggs,
		}
		return result, DeriveProperties(result, []physical.ActualProperties{childProps}), nil
	}

	if decomposable(t) {
		log.VInfof(ctx, 1, "splitting aggregation node %d", t.NodeID)
		result, err := p.splitAggregation(t, child)
		if err != nil {
			return nil, physical.ActualProperties{}, err
		}
		return result, p.deriveTree(result), nil
	}

	// Not splittable: materialize the right distribution ahead of a single
	// aggregation step.
	var exch plan.Node
	if len(t.GroupingCols) == 0 {
		exch = plan.GatherExchange(&p.alloc, child)
	} else {
		exch = plan.RepartitionExchange(&p.alloc, child, t.GroupingCols)
	}
	log.VInfof(ctx, 1, "forcing exchange under non-decomposable aggregation node %d", t.NodeID)
	result := &plan.Aggregate{
		NodeID: t.NodeID, Input: exch, Step: plan.SingleStep,
		GroupingCols: t.GroupingCols, Aggs: t.Aggs,
	}
	return result, DeriveProperties(result, []physical.ActualProperties{exchangeProps(exch.(*plan.Exchange))}), nil
}

// windowDesiredLocal is the local-property wish of a window or row-number
// node: grouped on the partition columns, then sorted per the ordering.
func windowDesiredLocal(partitionCols opt.ColList, ordering opt.ColumnOrdering) []physical.LocalProperty {
	var desired []physical.LocalProperty
	if len(partitionCols) > 0 {
		desired = append(desired, physical.GroupedOn(partitionCols.ToSet()))
	}
	for _, o := range ordering {
		desired = append(desired, physical.SortedBy(o.Col, o.Direction))
	}
	return desired
}

// partitionedChild rebuilds a child that must be partitioned on the given
// columns, repartitioning it when needed (gathering when the column list is
// empty). exchanged reports whether an exchange had to be inserted; the
// returned properties reflect it.
func (p *planner) partitionedChild(
	ctx context.Context,
	child plan.Node,
	req requirements,
	partitionCols opt.ColList,
	desiredLocal []physical.LocalProperty,
) (_ plan.Node, _ physical.ActualProperties, exchanged bool, _ error) {
	if len(partitionCols) == 0 {
		rebuilt, props, err := p.rebuild(ctx, child, req.withPreferred(physical.PreferUndistributed()))
		if err != nil {
			return nil, physical.ActualProperties{}, false, err
		}
		if !props.Partitioning.IsDistributed() {
			return rebuilt, props, false, nil
		}
		gathered, gatheredProps, err := p.gatherIfDistributed(ctx, rebuilt, props)
		return gathered, gatheredProps, true, err
	}

	childPref := physical.PreferPartitioned(partitionCols.ToSet())
	if p.flags.PreferStreamingOperators {
		childPref = childPref.WithLocal(desiredLocal)
	}
	rebuilt, props, err := p.rebuild(ctx, child, req.withPreferred(childPref))
	if err != nil {
		return nil, physical.ActualProperties{}, false, err
	}
	if props.Partitioning.IsPartitionedOn(partitionCols.ToSet()) {
		return rebuilt, props, false, nil
	}
	log.VInfof(ctx, 1, "repartitioning node %d on %s", rebuilt.ID(), partitionCols)
	exch := plan.RepartitionExchange(&p.alloc, rebuilt, partitionCols)
	return exch, exchangeProps(exch), true, nil
}

func (p *planner) rebuildWindow(
	ctx context.Context, t *plan.Window, req requirements,
) (plan.Node, physical.ActualProperties, error) {
	desired := windowDesiredLocal(t.PartitionCols, t.Ordering)
	child, childProps, exchanged, err := p.partitionedChild(ctx, t.Input, req, t.PartitionCols, desired)
	if err != nil {
		return nil, physical.ActualProperties{}, err
	}

	// Streaming hints. Partition columns count as pre-partitioned when the
	// rows were already colocated without an inserted exchange; the sorted
	// prefix comes from the local properties the input still guarantees.
	var prePartitioned opt.ColSet
	if len(t.PartitionCols) > 0 && !exchanged {
		prePartitioned = t.PartitionCols.ToSet()
	}
	match := physical.MatchLocal(childProps.Local, desired)
	count := physical.SatisfiedCount(match)
	sortedPrefix := count
	if len(t.PartitionCols) > 0 {
		if count > 0 {
			sortedPrefix = count - 1
		} else {
			sortedPrefix = 0
		}
	}

	result := &plan.Window{
		NodeID:             t.NodeID,
		Input:              child,
		PartitionCols:      t.PartitionCols,
		Ordering:           t.Ordering,
		Functions:          t.Functions,
		PrePartitionedCols: prePartitioned,
		PreSortedPrefix:    sortedPrefix,
	}
	return result, DeriveProperties(result, []physical.ActualProperties{childProps}), nil
}

func (p *planner) rebuildRowNumber(
	ctx context.Context, t *plan.RowNumber, req requirements,
) (plan.Node, physical.ActualProperties, error) {
	desired := windowDesiredLocal(t.PartitionCols, nil)
	child, childProps, exchanged, err := p.partitionedChild(ctx, t.Input, req, t.PartitionCols, desired)
	if err != nil {
		return nil, physical.ActualProperties{}, err
	}

	var prePartitioned opt.ColSet
	if len(t.PartitionCols) > 0 && !exchanged {
		prePartitioned = t.PartitionCols.ToSet()
	}

	result := &plan.RowNumber{
		NodeID:             t.NodeID,
		Input:              child,
		PartitionCols:      t.PartitionCols,
		RowNumberCol:       t.RowNumberCol,
		PrePartitionedCols: prePartitioned,
	}
	return result, DeriveProperties(result, []physical.ActualProperties{childProps}), nil
}

func (p *planner) rebuildSort(
	ctx context.Context, t *plan.Sort, req requirements,
) (plan.Node, physical.ActualProperties, error) {
	child, childProps, err := p.gatheredChild(ctx, t.Input, req)
	if err != nil {
		return nil, physical.ActualProperties{}, err
	}
	result := &plan.Sort{NodeID: t.NodeID, Input: child, Ordering: t.Ordering}
	return result, DeriveProperties(result, []physical.ActualProperties{childProps}), nil
}

func (p *planner) rebuildTopN(
	ctx context.Context, t *plan.TopN, req requirements,
) (plan.Node, physical.ActualProperties, error) {
	child, childProps, err := p.rebuild(ctx, t.Input, req.withPreferred(physical.PreferUndistributed()))
	if err != nil {
		return nil, physical.ActualProperties{}, err
	}
	if childProps.Partitioning.IsDistributed() && !t.Partial {
		// Shrink each stream before the gather; the final step re-applies
		// the limit after the merge.
		partial := &plan.TopN{
			NodeID: p.alloc.NextID(), Input: child,
			Ordering: t.Ordering, N: t.N, Partial: true,
		}
		var gathered plan.Node
		gathered, childProps, err = p.gatherIfDistributed(ctx, partial, childProps)
		if err != nil {
			return nil, physical.ActualProperties{}, err
		}
		child = gathered
	}
	result := &plan.TopN{
		NodeID: t.NodeID, Input: child, Ordering: t.Ordering, N: t.N, Partial: t.Partial,
	}
	return result, DeriveProperties(result, []physical.ActualProperties{childProps}), nil
}

func (p *planner) rebuildLimit(
	ctx context.Context, t *plan.Limit, req requirements,
) (plan.Node, physical.ActualProperties, error) {
	child, childProps, err := p.rebuild(ctx, t.Input, req.withPreferred(physical.PreferUndistributed()))
	if err != nil {
		return nil, physical.ActualProperties{}, err
	}
	if childProps.Partitioning.IsDistributed() && !t.Partial {
		partial := &plan.Limit{
			NodeID: p.alloc.NextID(), Input: child, Count: t.Count, Partial: true,
		}
		var gathered plan.Node
		gathered, childProps, err = p.gatherIfDistributed(ctx, partial, childProps)
		if err != nil {
			return nil, physical.ActualProperties{}, err
		}
		child = gathered
	}
	result := &plan.Limit{NodeID: t.NodeID, Input: child, Count: t.Count, Partial: t.Partial}
	return result, DeriveProperties(result, []physical.ActualProperties{childProps}), nil
}

func (p *planner) rebuildExchange(
	ctx context.Context, t *plan.Exchange, req requirements,
) (plan.Node, physical.ActualProperties, error) {
	// An exchange already in the input marks a distribution decision that
	// stands; only its inputs are replanned.
	inputs := make([]plan.Node, len(t.Inputs))
	for i, input := range t.Inputs {
		rebuilt, _, err := p.rebuild(ctx, input, req.withPreferred(physical.Any()))
		if err != nil {
			return nil, physical.ActualProperties{}, err
		}
		inputs[i] = rebuilt
	}
	result := &plan.Exchange{
		NodeID: t.NodeID, Kind: t.Kind, Inputs: inputs,
		Cols: t.Cols, InputCols: t.InputCols,
		PartitionCols: t.PartitionCols, NullReplicated: t.NullReplicated,
	}
	return result, exchangeProps(result), nil
}

func (p *planner) rebuildTableWriter(
	ctx context.Context, t *plan.TableWriter, req requirements,
) (plan.Node, physical.ActualProperties, error) {
	child, childProps, err := p.rebuild(ctx, t.Input, req.withPreferred(physical.Any()))
	if err != nil {
		return nil, physical.ActualProperties{}, err
	}
	if p.flags.RedistributeWrites && !req.preserveDeleteColocation &&
		childProps.Partitioning.Kind() != physical.Arbitrary {
		// Round-robin redistribution evens out write skew regardless of how
		// the rows were produced.
		log.VInfof(ctx, 1, "redistributing writes to %s", t.Table)
		exch := plan.RepartitionExchange(&p.alloc, child, nil)
		child, childProps = exch, exchangeProps(exch)
	}
	result := &plan.TableWriter{
		NodeID: t.NodeID, Input: child, Table: t.Table,
		Cols: t.Cols, RowCountCol: t.RowCountCol,
	}
	return result, DeriveProperties(result, []physical.ActualProperties{childProps}), nil
}

// deriveTree recomputes properties bottom-up for a freshly built subtree.
func (p *planner) deriveTree(n plan.Node) physical.ActualProperties {
	children := n.Children()
	inputProps := make([]physical.ActualProperties, len(children))
	for i, child := range children {
		inputProps[i] = p.deriveTree(child)
	}
	return DeriveProperties(n, inputProps)
}
