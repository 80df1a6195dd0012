// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package distsqlplan

import (
	"context"
	"strings"
	"testing"

	"github.com/ricdong/presto-sub000/pkg/sql/catalog/testcat"
	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/plan"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/types"
	"github.com/stretchr/testify/require"
)

// testCatalog backs most planner tests: orders and lineitem are
// hash-distributed, nation lives on a single node, tagged enforces its tag
// column, and events has two layouts to exercise preference and pruning.
const testCatalog = `
tables:
  - name: orders
    columns: [orderkey, custkey, totalprice, status]
    layouts:
      - id: primary
        columns: [orderkey, custkey, totalprice, status]
        partitioning: {kind: hash, columns: [orderkey]}
        enforce: [orderkey]
  - name: lineitem
    columns: [orderkey, partkey, quantity]
    layouts:
      - id: primary
        columns: [orderkey, partkey, quantity]
        partitioning: {kind: hash, columns: [orderkey]}
        enforce: [orderkey]
  - name: nation
    columns: [nationkey, name]
    layouts:
      - id: primary
        columns: [nationkey, name]
        partitioning: {kind: single}
  - name: tagged
    columns: [id, tag]
    layouts:
      - id: by_tag
        columns: [id, tag]
        partitioning: {kind: hash, columns: [tag]}
        enforce: [tag]
  - name: events
    columns: [day, region, value]
    layouts:
      - id: by_day
        columns: [day, region, value]
        partitioning: {kind: arbitrary}
        enforce: [day]
      - id: by_region
        columns: [day, region, value]
        partitioning: {kind: hash, columns: [region]}
        enforce: [region]
        prune: {op: "!=", col: region, value: closed}
`

var columnTypes = map[string]types.T{
	"status": types.String,
	"name":   types.String,
	"tag":    types.String,
	"region": types.String,
}

type harness struct {
	t     *testing.T
	md    opt.Metadata
	cat   *testcat.Catalog
	alloc plan.IDAllocator
	cols  map[string]opt.ColumnID
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cat, err := testcat.Load([]byte(testCatalog))
	require.NoError(t, err)
	return &harness{t: t, cat: cat, cols: make(map[string]opt.ColumnID)}
}

// col returns the metadata ID of a column previously added by scan or
// addCol, keyed as "table.column".
func (h *harness) col(key string) opt.ColumnID {
	id, ok := h.cols[key]
	require.True(h.t, ok, "column %s not registered", key)
	return id
}

func (h *harness) addCol(key string, typ types.T) opt.ColumnID {
	name := key
	if i := strings.IndexByte(key, '.'); i >= 0 {
		name = key[i+1:]
	}
	id := h.md.AddColumn(name, typ)
	h.cols[key] = id
	return id
}

// scan builds a scan node over the named table columns, registering
// metadata columns for them.
func (h *harness) scan(table string, colNames ...string) *plan.Scan {
	h.t.Helper()
	tabCols, ok := h.cat.Table(table)
	require.True(h.t, ok, "unknown table %s", table)
	if len(colNames) == 0 {
		colNames = tabCols
	}

	cols := make(opt.ColList, len(colNames))
	ordinals := make([]int, len(colNames))
	for i, name := range colNames {
		ord := -1
		for j, tc := range tabCols {
			if tc == name {
				ord = j
				break
			}
		}
		require.GreaterOrEqual(h.t, ord, 0, "table %s has no column %s", table, name)
		typ, ok := columnTypes[name]
		if !ok {
			typ = types.Int
		}
		cols[i] = h.addCol(table+"."+name, typ)
		ordinals[i] = ord
	}
	return &plan.Scan{
		NodeID:   h.alloc.NextID(),
		Table:    table,
		Cols:     cols,
		Ordinals: ordinals,
	}
}

func (h *harness) plan(flags SessionFlags, root plan.Node) plan.Node {
	h.t.Helper()
	result, err := AddExchanges(context.Background(), h.cat, &h.md, flags, root)
	require.NoError(h.t, err)
	return result
}

func (h *harness) format(n plan.Node) string {
	return plan.Format(&h.md, n)
}

// exchanges collects every exchange in the tree in pre-order.
func exchanges(n plan.Node) []*plan.Exchange {
	var res []*plan.Exchange
	var walk func(plan.Node)
	walk = func(n plan.Node) {
		if e, ok := n.(*plan.Exchange); ok {
			res = append(res, e)
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(n)
	return res
}

// findNode returns the first node in pre-order matching the predicate.
func findNode(n plan.Node, pred func(plan.Node) bool) plan.Node {
	if pred(n) {
		return n
	}
	for _, c := range n.Children() {
		if found := findNode(c, pred); found != nil {
			return found
		}
	}
	return nil
}
