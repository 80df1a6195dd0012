// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package distsqlplan

import (
	"testing"

	"github.com/ricdong/presto-sub000/pkg/sql/catalog"
	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/opt/physical"
	"github.com/ricdong/presto-sub000/pkg/sql/catalog/testcat"
	"github.com/ricdong/presto-sub000/pkg/sql/plan"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/tree"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/types"
	"github.com/stretchr/testify/require"
)

// Scenario: a filter the chosen layout enforces exactly leaves no residual
// filter above the scan.
func TestFullyEnforcedFilterDisappears(t *testing.T) {
	h := newHarness(t)
	scan := h.scan("tagged")
	pred := tree.NewComparison(tree.EQ,
		tree.NewColumnRef(h.col("tagged.tag"), "tag"), tree.DString("hot"))
	filter := &plan.Filter{NodeID: h.alloc.NextID(), Input: scan, Predicate: pred}

	result := h.plan(SessionFlags{}, filter)

	planned, ok := result.(*plan.Scan)
	require.True(t, ok, "plan:\n%s", h.format(result))
	require.Equal(t, catalog.LayoutID("by_tag"), planned.Layout)
	bindings := planned.Constraint.Bindings()
	require.Equal(t, tree.DString("hot"), bindings[h.col("tagged.tag")])
}

// A constraint the layout cannot enforce is re-checked by a filter above
// the scan, together with any non-translatable residual.
func TestUnenforcedConstraintRechecked(t *testing.T) {
	h := newHarness(t)
	scan := h.scan("orders")
	pred := &tree.AndExpr{
		Left: tree.NewComparison(tree.GT,
			tree.NewColumnRef(h.col("orders.totalprice"), "totalprice"), tree.DInt(100)),
		Right: &tree.FuncExpr{Name: "random"},
	}
	filter := &plan.Filter{NodeID: h.alloc.NextID(), Input: scan, Predicate: pred}

	result := h.plan(SessionFlags{}, filter)

	planned, ok := result.(*plan.Filter)
	require.True(t, ok, "plan:\n%s", h.format(result))
	require.IsType(t, &plan.Scan{}, planned.Input)
	// Both the untranslatable volatile conjunct and the unenforced range
	// survive in the recheck predicate.
	refs := tree.ReferencedCols(planned.Predicate)
	require.True(t, refs.Contains(h.col("orders.totalprice")))
	require.Contains(t, planned.Predicate.String(), "random")
}

// A provably false predicate replaces the scan with an empty result.
func TestContradictionBecomesEmptyValues(t *testing.T) {
	h := newHarness(t)
	scan := h.scan("orders")
	col := tree.NewColumnRef(h.col("orders.totalprice"), "totalprice")
	pred := &tree.AndExpr{
		Left:  tree.NewComparison(tree.GT, col, tree.DInt(100)),
		Right: tree.NewComparison(tree.LT, col, tree.DInt(50)),
	}
	filter := &plan.Filter{NodeID: h.alloc.NextID(), Input: scan, Predicate: pred}

	result := h.plan(SessionFlags{}, filter)

	values, ok := result.(*plan.Values)
	require.True(t, ok, "plan:\n%s", h.format(result))
	require.Empty(t, values.Rows)
	require.Equal(t, scan.Cols, values.Cols)
}

// A comparison against NULL never matches, so the scan is empty.
func TestComparisonToNullBecomesEmpty(t *testing.T) {
	h := newHarness(t)
	scan := h.scan("orders")
	pred := tree.NewComparison(tree.EQ,
		tree.NewColumnRef(h.col("orders.custkey"), "custkey"), tree.DNull)
	filter := &plan.Filter{NodeID: h.alloc.NextID(), Input: scan, Predicate: pred}

	result := h.plan(SessionFlags{}, filter)
	require.IsType(t, &plan.Values{}, result)
}

// A candidate whose prune predicate folds to FALSE under the constraint's
// pinned values never appears in the plan.
func TestPrunePredicateSkipsLayout(t *testing.T) {
	h := newHarness(t)
	scan := h.scan("events")
	pred := tree.NewComparison(tree.EQ,
		tree.NewColumnRef(h.col("events.region"), "region"), tree.DString("closed"))
	filter := &plan.Filter{NodeID: h.alloc.NextID(), Input: scan, Predicate: pred}

	result := h.plan(SessionFlags{}, filter)

	// by_region would be preferred for a region constraint, but its prune
	// predicate (region != 'closed') folds to FALSE; by_day remains, with
	// the constraint rechecked above it.
	scanNode := findNode(result, func(n plan.Node) bool {
		_, ok := n.(*plan.Scan)
		return ok
	})
	require.NotNil(t, scanNode, "plan:\n%s", h.format(result))
	require.Equal(t, catalog.LayoutID("by_day"), scanNode.(*plan.Scan).Layout)
}

// With every candidate pruned the scan is provably empty.
func TestAllLayoutsPruned(t *testing.T) {
	h := newHarness(t)
	cat, err := testcat.Load([]byte(`
tables:
  - name: shards
    columns: [shard, payload]
    layouts:
      - id: live
        columns: [shard, payload]
        partitioning: {kind: arbitrary}
        enforce: [shard]
        prune: {op: "<", col: shard, value: 100}
`))
	require.NoError(t, err)
	h.cat = cat
	shardCol := h.addCol("shards.shard", types.Int)
	payloadCol := h.addCol("shards.payload", types.Int)
	scan := &plan.Scan{
		NodeID:   h.alloc.NextID(),
		Table:    "shards",
		Cols:     opt.ColList{shardCol, payloadCol},
		Ordinals: []int{0, 1},
	}
	pred := tree.NewComparison(tree.EQ,
		tree.NewColumnRef(shardCol, "shard"), tree.DInt(500))
	filter := &plan.Filter{NodeID: h.alloc.NextID(), Input: scan, Predicate: pred}

	result := h.plan(SessionFlags{}, filter)
	require.IsType(t, &plan.Values{}, result, "plan:\n%s", h.format(result))
}

// The streaming preference tie-break picks the candidate whose partitioning
// matches the parent's wish; ties keep the catalog's order.
func TestLayoutPreference(t *testing.T) {
	h := newHarness(t)
	scan := h.scan("events")
	countCol := h.addCol("cnt", types.Int)

	agg := &plan.Aggregate{
		NodeID:       h.alloc.NextID(),
		Input:        scan,
		Step:         plan.SingleStep,
		GroupingCols: opt.ColList{h.col("events.region")},
		Aggs:         []plan.Aggregation{{Output: countCol, Func: "count"}},
	}

	result := h.plan(SessionFlags{}, agg)

	// by_region satisfies the grouped aggregation's partitioning wish, so
	// the aggregation needs no split and no exchange.
	planned, ok := result.(*plan.Aggregate)
	require.True(t, ok, "plan:\n%s", h.format(result))
	require.Equal(t, plan.SingleStep, planned.Step)
	scanNode := planned.Input.(*plan.Scan)
	require.Equal(t, catalog.LayoutID("by_region"), scanNode.Layout)
	require.Equal(t, physical.Hash, scanNode.Partitioning.Kind())

	// Without a preference the catalog's first layout wins.
	h2 := newHarness(t)
	plain := h2.plan(SessionFlags{}, h2.scan("events"))
	require.Equal(t, catalog.LayoutID("by_day"), plain.(*plan.Scan).Layout)
}

// Scenario: grouped count over data not partitioned on the group column
// splits into partial, repartition, final.
func TestScenarioGroupedCountSplits(t *testing.T) {
	h := newHarness(t)
	scan := h.scan("events")
	countCol := h.addCol("cnt", types.Int)

	agg := &plan.Aggregate{
		NodeID:       h.alloc.NextID(),
		Input:        scan,
		Step:         plan.SingleStep,
		GroupingCols: opt.ColList{h.col("events.day")},
		Aggs:         []plan.Aggregation{{Output: countCol, Func: "count"}},
	}

	result := h.plan(SessionFlags{}, agg)

	final := result.(*plan.Aggregate)
	require.Equal(t, plan.FinalStep, final.Step)
	exch := final.Input.(*plan.Exchange)
	require.Equal(t, plan.Repartition, exch.Kind)
	require.Equal(t, opt.ColList{h.col("events.day")}, exch.PartitionCols)
	partial := exch.Inputs[0].(*plan.Aggregate)
	require.Equal(t, plan.PartialStep, partial.Step)
}
