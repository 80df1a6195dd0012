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

func (p *planner) rebuildUnion(
	ctx context.Context, t *plan.Union, req requirements,
) (plan.Node, physical.ActualProperties, error) {
	if g := req.preferred.Global; g != nil && g.Distributed && !g.PartitioningCols.Empty() {
		return p.rebuildPartitionedUnion(ctx, t, req, g.PartitioningCols)
	}

	rebuilt := make([]plan.Node, len(t.Inputs))
	props := make([]physical.ActualProperties, len(t.Inputs))
	for i, input := range t.Inputs {
		var err error
		rebuilt[i], props[i], err = p.rebuild(ctx, input, req.withPreferred(physical.Any()))
		if err != nil {
			return nil, physical.ActualProperties{}, err
		}
	}

	// Split the children into single-stream ones and distributed ones; the
	// distributed group funnels through one shared gather so the union
	// itself runs as a local concatenation.
	var localChildren []plan.Node
	var localInputCols []opt.ColList
	var distChildren []plan.Node
	var distInputCols []opt.ColList
	for i := range rebuilt {
		if props[i].Partitioning.IsDistributed() {
			distChildren = append(distChildren, rebuilt[i])
			distInputCols = append(distInputCols, t.InputCols[i])
		} else {
			localChildren = append(localChildren, rebuilt[i])
			localInputCols = append(localInputCols, t.InputCols[i])
		}
	}

	if len(distChildren) == 0 {
		result := &plan.Union{
			NodeID: t.NodeID, Inputs: rebuilt, Cols: t.Cols, InputCols: t.InputCols,
		}
		return result, undistributedProps(), nil
	}

	log.VInfof(ctx, 1, "gathering %d distributed inputs of union node %d",
		len(distChildren), t.NodeID)
	gather := &plan.Exchange{
		NodeID:    p.alloc.NextID(),
		Kind:      plan.Gather,
		Inputs:    distChildren,
		Cols:      t.Cols,
		InputCols: distInputCols,
	}
	if len(localChildren) == 0 {
		// Nothing to concatenate locally; the gather is the whole union.
		return gather, exchangeProps(gather), nil
	}

	inputs := append(localChildren, gather)
	inputCols := append(localInputCols, t.Cols)
	result := &plan.Union{
		NodeID: t.NodeID, Inputs: inputs, Cols: t.Cols, InputCols: inputCols,
	}
	return result, undistributedProps(), nil
}

// rebuildPartitionedUnion keeps the union distributed: every child is
// repartitioned on the columns the parent asked for, so downstream operators
// can consume the union without a merge step.
func (p *planner) rebuildPartitionedUnion(
	ctx context.Context, t *plan.Union, req requirements, partitionCols opt.ColSet,
) (plan.Node, physical.ActualProperties, error) {
	// Order the requested columns by their position in the union's output.
	var outCols opt.ColList
	for _, col := range t.Cols {
		if partitionCols.Contains(col) {
			outCols = append(outCols, col)
		}
	}
	if len(outCols) != partitionCols.Len() {
		return nil, physical.ActualProperties{},
			errors.AssertionFailedf("requested partitioning %s not covered by union output %s",
				partitionCols, t.Cols)
	}

	inputs := make([]plan.Node, len(t.Inputs))
	for i, input := range t.Inputs {
		childCols, err := correspondingCols(outCols, t.Cols, t.InputCols[i])
		if err != nil {
			return nil, physical.ActualProperties{}, err
		}
		rebuilt, props, err := p.rebuild(ctx, input,
			req.withPreferred(physical.PreferPartitioned(childCols.ToSet())))
		if err != nil {
			return nil, physical.ActualProperties{}, err
		}
		if !(props.Partitioning.Kind() == physical.Hash &&
			props.Partitioning.Columns().Equals(childCols)) {
			rebuilt = plan.RepartitionExchange(&p.alloc, rebuilt, childCols)
		}
		inputs[i] = rebuilt
	}

	result := &plan.Union{
		NodeID: t.NodeID, Inputs: inputs, Cols: t.Cols, InputCols: t.InputCols,
	}
	props := physical.ActualProperties{
		Partitioning: physical.HashPartitioned(outCols),
	}
	return result, props, nil
}
