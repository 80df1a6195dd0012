// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package catalog defines the interface between the physical planner and
// table metadata providers: which access-path layouts exist for a table,
// what constraints each layout can enforce on its own, and how each
// layout's data is distributed across nodes.
package catalog

import (
	"context"

	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/opt/constraint"
	"github.com/ricdong/presto-sub000/pkg/sql/opt/physical"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/tree"
)

// LayoutID identifies one access-path layout of a table.
type LayoutID string

// Layout is one candidate access path for a scan. All column references are
// in terms of the requesting scan's metadata column IDs.
type Layout struct {
	ID LayoutID

	// Enforced is the part of the requested constraint the layout applies
	// itself; rows violating it never leave the source.
	Enforced constraint.Domain

	// Unenforced is the remainder the caller must re-check with a filter.
	Unenforced constraint.Domain

	// Columns are the columns this layout can produce.
	Columns opt.ColSet

	// Partitioning is how the layout's data is spread across nodes.
	Partitioning physical.Partitioning

	// PrunePredicate, when non-nil, is a deterministic expression over the
	// scanned columns. A candidate whose predicate folds to FALSE or NULL
	// under the constraint's pinned values cannot produce rows.
	PrunePredicate tree.Expr
}

// LayoutRequest describes a scan asking for its candidate layouts.
type LayoutRequest struct {
	// Table is the table name.
	Table string

	// Cols are the scan's metadata column IDs, parallel to Ordinals.
	Cols opt.ColList

	// Ordinals are the table column positions backing each entry of Cols.
	Ordinals []int

	// Constraint is the domain already established on the scan, in metadata
	// column IDs.
	Constraint constraint.Domain

	// Required are the columns the plan above the scan needs.
	Required opt.ColSet
}

// Catalog enumerates candidate layouts for a scan. The order of the
// returned slice is the provider's preference order; callers breaking ties
// must keep it stable. An error fails planning; there is no silent
// fallback.
type Catalog interface {
	Layouts(ctx context.Context, req LayoutRequest) ([]Layout, error)
}
