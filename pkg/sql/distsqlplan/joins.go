// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package distsqlplan

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/opt/physical"
	"github.com/ricdong/presto-sub000/pkg/sql/plan"
	"github.com/ricdong/presto-sub000/pkg/util/log"
)

func (p *planner) rebuildJoin(
	ctx context.Context, t *plan.Join, req requirements,
) (plan.Node, physical.ActualProperties, error) {
	leftSet := t.LeftEqCols.ToSet()
	rightSet := t.RightEqCols.ToSet()

	left, leftProps, err := p.rebuild(ctx, t.Left,
		req.withPreferred(physical.PreferPartitioned(leftSet)))
	if err != nil {
		return nil, physical.ActualProperties{}, err
	}
	right, rightProps, err := p.rebuild(ctx, t.Right,
		req.withPreferred(physical.PreferPartitioned(rightSet)))
	if err != nil {
		return nil, physical.ActualProperties{}, err
	}

	// FULL and RIGHT joins cannot broadcast the right side: an unmatched
	// right row must surface exactly once, which only a partitioned plan
	// guarantees.
	partitionedMode := p.flags.DistributedJoins ||
		t.Type == plan.FullOuterJoin || t.Type == plan.RightOuterJoin

	if partitionedMode {
		left, right, leftProps, rightProps, err =
			p.partitionBothSides(ctx, t, left, right, leftProps, rightProps)
		if err != nil {
			return nil, physical.ActualProperties{}, err
		}
	} else {
		switch {
		case !leftProps.Partitioning.IsDistributed() && rightProps.Partitioning.IsDistributed():
			// One undistributed side: bring the distributed one to it.
			right, rightProps, err = p.gatherIfDistributed(ctx, right, rightProps)
		case leftProps.Partitioning.IsDistributed() && !rightProps.Partitioning.IsDistributed():
			left, leftProps, err = p.gatherIfDistributed(ctx, left, leftProps)
		case leftProps.Partitioning.IsDistributed() && rightProps.Partitioning.IsDistributed():
			if rightProps.Partitioning.Kind() != physical.Replicated &&
				!sidesAligned(t, leftProps, rightProps) {
				// Broadcasting one side is cheaper than repartitioning both.
				log.VInfof(ctx, 1, "replicating build side of join node %d", t.NodeID)
				exch := plan.ReplicateExchange(&p.alloc, right, false)
				right, rightProps = exch, exchangeProps(exch)
			}
		}
		if err != nil {
			return nil, physical.ActualProperties{}, err
		}
	}

	result := &plan.Join{
		NodeID: t.NodeID, Type: t.Type, Left: left, Right: right,
		LeftEqCols: t.LeftEqCols, RightEqCols: t.RightEqCols, OnExtra: t.OnExtra,
	}
	props := DeriveProperties(result, []physical.ActualProperties{leftProps, rightProps})
	return result, props, nil
}

// partitionBothSides forces both join inputs into positionally aligned hash
// partitionings on their equi-join columns. An already suitable left
// partitioning is kept, and the right side is brought to the matching
// columns.
func (p *planner) partitionBothSides(
	ctx context.Context,
	t *plan.Join,
	left, right plan.Node,
	leftProps, rightProps physical.ActualProperties,
) (plan.Node, plan.Node, physical.ActualProperties, physical.ActualProperties, error) {
	leftCols := t.LeftEqCols
	if hashPartitionedOn(leftProps.Partitioning, t.LeftEqCols.ToSet()) {
		leftCols = leftProps.Partitioning.Columns()
	} else {
		log.VInfof(ctx, 1, "repartitioning probe side of join node %d", t.NodeID)
		exch := plan.RepartitionExchange(&p.alloc, left, t.LeftEqCols)
		left, leftProps = exch, exchangeProps(exch)
	}

	rightCols, err := correspondingCols(leftCols, t.LeftEqCols, t.RightEqCols)
	if err != nil {
		return nil, nil, physical.ActualProperties{}, physical.ActualProperties{}, err
	}
	if !(rightProps.Partitioning.Kind() == physical.Hash &&
		rightProps.Partitioning.Columns().Equals(rightCols)) {
		log.VInfof(ctx, 1, "repartitioning build side of join node %d", t.NodeID)
		exch := plan.RepartitionExchange(&p.alloc, right, rightCols)
		right, rightProps = exch, exchangeProps(exch)
	}
	return left, right, leftProps, rightProps, nil
}

// sidesAligned reports whether both sides are hash-partitioned such that
// matching join keys land on the same node.
func sidesAligned(
	t *plan.Join, leftProps, rightProps physical.ActualProperties,
) bool {
	if !hashPartitionedOn(leftProps.Partitioning, t.LeftEqCols.ToSet()) {
		return false
	}
	rightCols, err := correspondingCols(
		leftProps.Partitioning.Columns(), t.LeftEqCols, t.RightEqCols)
	if err != nil {
		return false
	}
	return rightProps.Partitioning.Kind() == physical.Hash &&
		rightProps.Partitioning.Columns().Equals(rightCols)
}

func hashPartitionedOn(part physical.Partitioning, cols opt.ColSet) bool {
	return part.Kind() == physical.Hash && part.IsPartitionedOn(cols)
}

// correspondingCols maps each column through the positional correspondence
// of two parallel equi-join column lists.
func correspondingCols(cols, from, to opt.ColList) (opt.ColList, error) {
	res := make(opt.ColList, len(cols))
	for i, c := range cols {
		found := false
		for j, f := range from {
			if f == c {
				res[i] = to[j]
				found = true
				break
			}
		}
		if !found {
			return nil, errors.AssertionFailedf("column %d is not an equi-join column", c)
		}
	}
	return res, nil
}

func (p *planner) rebuildSemiJoin(
	ctx context.Context, t *plan.SemiJoin, req requirements,
) (plan.Node, physical.ActualProperties, error) {
	sourceKey := opt.MakeColSet(t.SourceKey)
	source, sourceProps, err := p.rebuild(ctx, t.Source,
		req.withPreferred(physical.PreferPartitioned(sourceKey)))
	if err != nil {
		return nil, physical.ActualProperties{}, err
	}
	filtering, filteringProps, err := p.rebuild(ctx, t.Filtering,
		req.withPreferred(physical.Any()))
	if err != nil {
		return nil, physical.ActualProperties{}, err
	}

	if p.flags.DistributedJoins && !req.preserveDeleteColocation {
		// Partition the source on its key and broadcast the filtering side
		// with NULL keys replicated everywhere, so every partition can
		// distinguish "no match" from "matched NULL" (NOT IN semantics).
		if !hashPartitionedOn(sourceProps.Partitioning, sourceKey) {
			exch := plan.RepartitionExchange(&p.alloc, source, opt.ColList{t.SourceKey})
			source, sourceProps = exch, exchangeProps(exch)
		}
		log.VInfof(ctx, 1, "null-replicating filtering side of semi-join node %d", t.NodeID)
		exch := plan.ReplicateExchange(&p.alloc, filtering, true)
		filtering, filteringProps = exch, exchangeProps(exch)
	} else {
		switch {
		case sourceProps.Partitioning.IsDistributed():
			exch := plan.ReplicateExchange(&p.alloc, filtering, false)
			filtering, filteringProps = exch, exchangeProps(exch)
		case filteringProps.Partitioning.IsDistributed():
			filtering, filteringProps, err = p.gatherIfDistributed(ctx, filtering, filteringProps)
			if err != nil {
				return nil, physical.ActualProperties{}, err
			}
		}
	}

	result := &plan.SemiJoin{
		NodeID: t.NodeID, Source: source, Filtering: filtering,
		SourceKey: t.SourceKey, FilteringKey: t.FilteringKey, MatchCol: t.MatchCol,
	}
	props := DeriveProperties(result, []physical.ActualProperties{sourceProps, filteringProps})
	return result, props, nil
}
