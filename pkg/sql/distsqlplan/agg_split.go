// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package distsqlplan

import (
	"github.com/cockroachdb/errors"
	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/plan"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/tree"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/types"
)

// decomposable reports whether every aggregate of the node can be split
// into a partial and a final step.
func decomposable(agg *plan.Aggregate) bool {
	for _, a := range agg.Aggs {
		def, ok := tree.LookupAggregate(a.Func)
		if !ok || !def.Decomposable {
			return false
		}
	}
	return true
}

// splitAggregation rewrites a single-step aggregation over a distributed
// input into partial aggregation, an exchange, and final aggregation:
//
//	final agg (original output columns)
//	  exchange (repartition on grouping cols, or gather when ungrouped)
//	    partial agg (intermediate state columns)
//	      input
//
// Row-level masks apply only in the partial step; the final step sees
// already-filtered intermediate state. The final step reproduces the
// original output columns in identity and order.
func (p *planner) splitAggregation(agg *plan.Aggregate, input plan.Node) (plan.Node, error) {
	if agg.Step != plan.SingleStep {
		return nil, errors.AssertionFailedf("splitting a %s aggregation", agg.Step)
	}

	partialAggs := make([]plan.Aggregation, len(agg.Aggs))
	finalAggs := make([]plan.Aggregation, len(agg.Aggs))
	for i, a := range agg.Aggs {
		def, ok := tree.LookupAggregate(a.Func)
		if !ok {
			return nil, errors.AssertionFailedf("unknown aggregate %s", a.Func)
		}
		if !def.Decomposable {
			return nil, errors.AssertionFailedf("splitting non-decomposable aggregate %s", a.Func)
		}
		interType := def.IntermediateType
		if interType == types.Unknown {
			interType = p.md.ColumnType(a.Output)
		}
		interCol := p.md.AddColumn(p.md.ColumnName(a.Output)+"_partial", interType)
		partialAggs[i] = plan.Aggregation{
			Output: interCol,
			Func:   def.PartialFunc,
			Args:   a.Args,
			Mask:   a.Mask,
		}
		finalAggs[i] = plan.Aggregation{
			Output: a.Output,
			Func:   def.FinalFunc,
			Args:   opt.ColList{interCol},
		}
	}

	partial := &plan.Aggregate{
		NodeID:       p.alloc.NextID(),
		Input:        input,
		Step:         plan.PartialStep,
		GroupingCols: agg.GroupingCols,
		Aggs:         partialAggs,
	}

	var exchange plan.Node
	if len(agg.GroupingCols) == 0 {
		exchange = plan.GatherExchange(&p.alloc, partial)
	} else {
		exchange = plan.RepartitionExchange(&p.alloc, partial, agg.GroupingCols)
	}

	return &plan.Aggregate{
		NodeID:       p.alloc.NextID(),
		Input:        exchange,
		Step:         plan.FinalStep,
		GroupingCols: agg.GroupingCols,
		Aggs:         finalAggs,
	}, nil
}
