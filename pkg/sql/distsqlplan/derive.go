// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package distsqlplan

import (
	"github.com/cockroachdb/errors"
	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/opt/physical"
	"github.com/ricdong/presto-sub000/pkg/sql/plan"
)

// DeriveProperties computes the physical properties of a node's output from
// the properties of its inputs. inputProps is parallel to node.Children().
// The function is pure; it consults no session state.
func DeriveProperties(
	node plan.Node, inputProps []physical.ActualProperties,
) physical.ActualProperties {
	switch t := node.(type) {
	case *plan.Scan:
		return physical.ActualProperties{Partitioning: t.Partitioning}

	case *plan.Values:
		return physical.ActualProperties{Partitioning: physical.Undistributed()}

	case *plan.Filter, *plan.Limit:
		return inputProps[0]

	case *plan.TopN:
		if t.Partial {
			return inputProps[0]
		}
		return sortedProps(inputProps[0], t.Ordering)

	case *plan.Project:
		return projectProps(t, inputProps[0])

	case *plan.Aggregate:
		return aggregateProps(t, inputProps[0])

	case *plan.Join:
		// The probe (left) side drives placement for every join type; for
		// FULL/RIGHT the planner has already forced both sides into
		// compatible hash partitionings.
		return physical.ActualProperties{
			Partitioning: inputProps[0].Partitioning,
			Local:        inputProps[0].Local,
		}

	case *plan.SemiJoin:
		return inputProps[0]

	case *plan.Window:
		return inputProps[0]

	case *plan.RowNumber:
		return inputProps[0]

	case *plan.Sort:
		return sortedProps(inputProps[0], t.Ordering)

	case *plan.Union:
		return unionProps(inputProps)

	case *plan.Exchange:
		return exchangeProps(t)

	case *plan.Output:
		return inputProps[0]

	case *plan.TableWriter:
		// Row counts carry none of the input's properties.
		return physical.ActualProperties{Partitioning: countPartitioning(inputProps[0])}

	case *plan.TableFinish:
		return physical.ActualProperties{Partitioning: physical.CoordinatorOnly()}

	case *plan.Delete:
		return physical.ActualProperties{Partitioning: countPartitioning(inputProps[0])}

	default:
		panic(errors.AssertionFailedf("unhandled node type %T", node))
	}
}

func sortedProps(
	input physical.ActualProperties, ordering opt.ColumnOrdering,
) physical.ActualProperties {
	local := make([]physical.LocalProperty, len(ordering))
	for i, o := range ordering {
		local[i] = physical.SortedBy(o.Col, o.Direction)
	}
	return physical.ActualProperties{Partitioning: input.Partitioning, Local: local}
}

func projectProps(t *plan.Project, input physical.ActualProperties) physical.ActualProperties {
	passthrough := t.PassthroughCols()

	part := input.Partitioning
	switch part.Kind() {
	case physical.Hash, physical.Range:
		// A partitioning column replaced by a computed expression leaves the
		// placement real but unnameable.
		if !part.Columns().ToSet().SubsetOf(passthrough) {
			part = physical.ArbitraryDistribution()
		}
	}

	return physical.ActualProperties{
		Partitioning: part,
		Local:        physical.TranslateLocal(input.Local, passthrough),
	}
}

func aggregateProps(t *plan.Aggregate, input physical.ActualProperties) physical.ActualProperties {
	props := physical.ActualProperties{Partitioning: input.Partitioning}
	if len(t.GroupingCols) > 0 {
		props.Local = []physical.LocalProperty{
			physical.GroupedOn(t.GroupingCols.ToSet()),
		}
	}
	return props
}

func unionProps(inputProps []physical.ActualProperties) physical.ActualProperties {
	anyDistributed := false
	for _, p := range inputProps {
		if p.Partitioning.IsDistributed() {
			anyDistributed = true
		}
	}
	if !anyDistributed {
		return physical.ActualProperties{Partitioning: physical.Undistributed()}
	}
	// Concatenation scrambles any per-input placement guarantee.
	return physical.ActualProperties{Partitioning: physical.ArbitraryDistribution()}
}

func exchangeProps(t *plan.Exchange) physical.ActualProperties {
	switch t.Kind {
	case plan.Gather:
		return physical.ActualProperties{Partitioning: physical.Undistributed()}
	case plan.Repartition:
		return physical.ActualProperties{
			Partitioning: physical.HashPartitioned(t.PartitionCols),
		}
	case plan.Replicate:
		return physical.ActualProperties{
			Partitioning: physical.ReplicatedCopy(t.NullReplicated),
		}
	default:
		panic(errors.AssertionFailedf("unhandled exchange kind %v", t.Kind))
	}
}

// countPartitioning is the partitioning of per-fragment row counts: one
// count row per stream of the input.
func countPartitioning(input physical.ActualProperties) physical.Partitioning {
	if input.Partitioning.IsDistributed() {
		return physical.ArbitraryDistribution()
	}
	return physical.Undistributed()
}
