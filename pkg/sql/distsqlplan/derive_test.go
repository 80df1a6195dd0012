// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package distsqlplan

import (
	"testing"

	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/opt/physical"
	"github.com/ricdong/presto-sub000/pkg/sql/plan"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/tree"
	"github.com/stretchr/testify/require"
)

func hashProps(cols ...opt.ColumnID) physical.ActualProperties {
	return physical.ActualProperties{Partitioning: physical.HashPartitioned(cols)}
}

func TestDeriveProject(t *testing.T) {
	a, b := opt.ColumnID(1), opt.ColumnID(2)

	passthrough := &plan.Project{Items: []plan.ProjectItem{
		{Col: a, Expr: tree.NewColumnRef(a, "a")},
		{Col: b, Expr: tree.NewColumnRef(b, "b")},
	}}
	input := physical.ActualProperties{
		Partitioning: physical.HashPartitioned(opt.ColList{a}),
		Local:        []physical.LocalProperty{physical.GroupedOn(opt.MakeColSet(a))},
	}
	props := DeriveProperties(passthrough, []physical.ActualProperties{input})
	require.Equal(t, physical.Hash, props.Partitioning.Kind())
	require.Len(t, props.Local, 1)

	// Replacing the partitioning column with a computed expression degrades
	// the placement to arbitrary and drops the local property.
	computed := &plan.Project{Items: []plan.ProjectItem{
		{Col: b, Expr: tree.NewColumnRef(b, "b")},
		{Col: 3, Expr: &tree.FuncExpr{Name: "length", Args: []tree.Expr{tree.NewColumnRef(a, "a")}}},
	}}
	props = DeriveProperties(computed, []physical.ActualProperties{input})
	require.Equal(t, physical.Arbitrary, props.Partitioning.Kind())
	require.Empty(t, props.Local)
}

func TestDeriveSortAndAggregate(t *testing.T) {
	a := opt.ColumnID(1)

	sorted := &plan.Sort{Ordering: opt.ColumnOrdering{{Col: a, Direction: opt.Descending}}}
	props := DeriveProperties(sorted, []physical.ActualProperties{hashProps(a)})
	require.Equal(t, physical.Hash, props.Partitioning.Kind())
	require.Equal(t, []physical.LocalProperty{physical.SortedBy(a, opt.Descending)}, props.Local)

	grouped := &plan.Aggregate{GroupingCols: opt.ColList{a}}
	props = DeriveProperties(grouped, []physical.ActualProperties{hashProps(a)})
	require.Equal(t, []physical.LocalProperty{physical.GroupedOn(opt.MakeColSet(a))}, props.Local)

	ungrouped := &plan.Aggregate{}
	props = DeriveProperties(ungrouped, []physical.ActualProperties{hashProps(a)})
	require.Empty(t, props.Local)
}

func TestDeriveExchange(t *testing.T) {
	a := opt.ColumnID(1)

	gather := &plan.Exchange{Kind: plan.Gather}
	require.False(t,
		DeriveProperties(gather, nil).Partitioning.IsDistributed())

	repart := &plan.Exchange{Kind: plan.Repartition, PartitionCols: opt.ColList{a}}
	props := DeriveProperties(repart, nil)
	require.Equal(t, physical.Hash, props.Partitioning.Kind())
	require.Equal(t, opt.ColList{a}, props.Partitioning.Columns())

	repl := &plan.Exchange{Kind: plan.Replicate, NullReplicated: true}
	props = DeriveProperties(repl, nil)
	require.Equal(t, physical.Replicated, props.Partitioning.Kind())
	require.True(t, props.Partitioning.NullReplicated())
}

func TestDeriveUnion(t *testing.T) {
	a := opt.ColumnID(1)
	u := &plan.Union{}

	local := physical.ActualProperties{Partitioning: physical.Undistributed()}
	props := DeriveProperties(u, []physical.ActualProperties{local, local})
	require.False(t, props.Partitioning.IsDistributed())

	props = DeriveProperties(u, []physical.ActualProperties{local, hashProps(a)})
	require.Equal(t, physical.Arbitrary, props.Partitioning.Kind())
}

func TestDeriveWriters(t *testing.T) {
	a := opt.ColumnID(1)

	writer := &plan.TableWriter{}
	props := DeriveProperties(writer, []physical.ActualProperties{hashProps(a)})
	require.Equal(t, physical.Arbitrary, props.Partitioning.Kind())

	props = DeriveProperties(writer, []physical.ActualProperties{
		{Partitioning: physical.Undistributed()},
	})
	require.False(t, props.Partitioning.IsDistributed())

	finish := &plan.TableFinish{}
	props = DeriveProperties(finish, []physical.ActualProperties{hashProps(a)})
	require.Equal(t, physical.Coordinator, props.Partitioning.Kind())
}

func TestScorePreference(t *testing.T) {
	a, b := opt.ColumnID(1), opt.ColumnID(2)

	preferred := physical.PreferPartitioned(opt.MakeColSet(a)).
		WithLocal([]physical.LocalProperty{physical.GroupedOn(opt.MakeColSet(a))})

	matching := physical.ActualProperties{
		Partitioning: physical.HashPartitioned(opt.ColList{a}),
		Local:        []physical.LocalProperty{physical.GroupedOn(opt.MakeColSet(a))},
	}
	mismatched := physical.ActualProperties{
		Partitioning: physical.HashPartitioned(opt.ColList{b}),
	}

	best := scorePreference(matching, preferred)
	worst := scorePreference(mismatched, preferred)
	require.True(t, best.firstLocalSatisfied)
	require.True(t, best.globalSatisfied)
	require.True(t, best.betterThan(worst))
	require.False(t, worst.betterThan(best))

	// Local satisfaction outranks global satisfaction.
	localOnly := scorePreference(physical.ActualProperties{
		Partitioning: physical.Undistributed(),
		Local:        []physical.LocalProperty{physical.GroupedOn(opt.MakeColSet(a))},
	}, preferred)
	globalOnly := scorePreference(physical.ActualProperties{
		Partitioning: physical.HashPartitioned(opt.ColList{a}),
	}, preferred)
	require.True(t, localOnly.betterThan(globalOnly))

	// No preference at all: everything scores as satisfied.
	neutral := scorePreference(mismatched, physical.Any())
	require.True(t, neutral.firstLocalSatisfied)
	require.True(t, neutral.globalSatisfied)
}
