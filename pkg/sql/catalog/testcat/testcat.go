// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package testcat implements a Catalog backed by a YAML definition, used by
// tests and the explain CLI. A definition looks like:
//
//	tables:
//	  - name: orders
//	    columns: [orderkey, custkey, totalprice, status]
//	    layouts:
//	      - id: primary
//	        columns: [orderkey, custkey, totalprice, status]
//	        partitioning: {kind: hash, columns: [orderkey]}
//	        enforce: [orderkey]
//	      - id: by_status
//	        columns: [orderkey, status]
//	        partitioning: {kind: single}
//	        enforce: [status]
//	        prune: {op: "!=", col: status, value: dead}
//
// Layout order in the file is the preference order reported to the planner.
package testcat

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ricdong/presto-sub000/pkg/sql/catalog"
	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/opt/constraint"
	"github.com/ricdong/presto-sub000/pkg/sql/opt/physical"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/tree"
	yaml "gopkg.in/yaml.v2"
)

// Catalog is a YAML-defined catalog.
type Catalog struct {
	tables map[string]*tableDef
}

var _ catalog.Catalog = (*Catalog)(nil)

type defFile struct {
	Tables []tableDef `yaml:"tables"`
}

type tableDef struct {
	Name    string      `yaml:"name"`
	Columns []string    `yaml:"columns"`
	Layouts []layoutDef `yaml:"layouts"`
}

type layoutDef struct {
	ID           string          `yaml:"id"`
	Columns      []string        `yaml:"columns"`
	Partitioning partitioningDef `yaml:"partitioning"`
	Enforce      []string        `yaml:"enforce"`
	Prune        *ExprDef        `yaml:"prune"`
}

type partitioningDef struct {
	Kind    string   `yaml:"kind"`
	Columns []string `yaml:"columns"`
}

// Load parses a YAML catalog definition.
func Load(data []byte) (*Catalog, error) {
	var def defFile
	if err := yaml.UnmarshalStrict(data, &def); err != nil {
		return nil, errors.Wrap(err, "parsing catalog definition")
	}
	c := &Catalog{tables: make(map[string]*tableDef, len(def.Tables))}
	for i := range def.Tables {
		tab := &def.Tables[i]
		if len(tab.Layouts) == 0 {
			return nil, errors.Newf("table %q has no layouts", tab.Name)
		}
		if _, ok := c.tables[tab.Name]; ok {
			return nil, errors.Newf("duplicate table %q", tab.Name)
		}
		c.tables[tab.Name] = tab
	}
	return c, nil
}

// Table returns the column names of a table, in ordinal order.
func (c *Catalog) Table(name string) ([]string, bool) {
	tab, ok := c.tables[name]
	if !ok {
		return nil, false
	}
	return tab.Columns, true
}

// Layouts implements the catalog.Catalog interface.
func (c *Catalog) Layouts(
	ctx context.Context, req catalog.LayoutRequest,
) ([]catalog.Layout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tab, ok := c.tables[req.Table]
	if !ok {
		return nil, errors.Newf("unknown table %q", req.Table)
	}

	// Map the table's column names to the scan's metadata IDs.
	colID := make(map[string]opt.ColumnID, len(req.Cols))
	for i, col := range req.Cols {
		ord := req.Ordinals[i]
		if ord < 0 || ord >= len(tab.Columns) {
			return nil, errors.Newf("table %q has no column ordinal %d", req.Table, ord)
		}
		colID[tab.Columns[ord]] = col
	}

	result := make([]catalog.Layout, 0, len(tab.Layouts))
	for i := range tab.Layouts {
		def := &tab.Layouts[i]
		layout, err := c.buildLayout(def, colID, req)
		if err != nil {
			return nil, err
		}
		result = append(result, layout)
	}
	return result, nil
}

func (c *Catalog) buildLayout(
	def *layoutDef, colID map[string]opt.ColumnID, req catalog.LayoutRequest,
) (catalog.Layout, error) {
	var cols opt.ColSet
	for _, name := range def.Columns {
		if id, ok := colID[name]; ok {
			cols.Add(id)
		}
	}

	// Split the requested constraint into the part this layout enforces
	// itself and the remainder the planner must re-check.
	enforceable := make(map[opt.ColumnID]bool, len(def.Enforce))
	for _, name := range def.Enforce {
		if id, ok := colID[name]; ok {
			enforceable[id] = true
		}
	}
	enforced, unenforced := constraint.All(), constraint.All()
	if req.Constraint.IsNone() {
		enforced = constraint.None()
	} else {
		for _, col := range req.Constraint.ConstrainedColumns() {
			cd, _ := req.Constraint.Column(col)
			part := constraint.ForColumn(col, cd)
			if enforceable[col] {
				enforced = enforced.Intersect(part)
			} else {
				unenforced = unenforced.Intersect(part)
			}
		}
	}

	part, err := c.buildPartitioning(def.Partitioning, colID)
	if err != nil {
		return catalog.Layout{}, errors.Wrapf(err, "layout %q", def.ID)
	}

	var prune tree.Expr
	if def.Prune != nil {
		prune, err = def.Prune.Build(colID)
		if err != nil {
			return catalog.Layout{}, errors.Wrapf(err, "layout %q prune predicate", def.ID)
		}
	}

	return catalog.Layout{
		ID:             catalog.LayoutID(def.ID),
		Enforced:       enforced,
		Unenforced:     unenforced,
		Columns:        cols,
		Partitioning:   part,
		PrunePredicate: prune,
	}, nil
}

func (c *Catalog) buildPartitioning(
	def partitioningDef, colID map[string]opt.ColumnID,
) (physical.Partitioning, error) {
	mapCols := func() (opt.ColList, bool) {
		cols := make(opt.ColList, len(def.Columns))
		for i, name := range def.Columns {
			id, ok := colID[name]
			if !ok {
				return nil, false
			}
			cols[i] = id
		}
		return cols, true
	}
	switch def.Kind {
	case "", "single":
		return physical.Undistributed(), nil
	case "coordinator":
		return physical.CoordinatorOnly(), nil
	case "hash":
		if cols, ok := mapCols(); ok {
			return physical.HashPartitioned(cols), nil
		}
		// A partitioning column outside the scanned set cannot back any
		// colocation guarantee the planner could check.
		return physical.ArbitraryDistribution(), nil
	case "range":
		if cols, ok := mapCols(); ok {
			return physical.RangePartitioned(cols), nil
		}
		return physical.ArbitraryDistribution(), nil
	case "replicated":
		return physical.ReplicatedCopy(false), nil
	case "arbitrary":
		return physical.ArbitraryDistribution(), nil
	default:
		return physical.Partitioning{}, errors.Newf("unknown partitioning kind %q", def.Kind)
	}
}
