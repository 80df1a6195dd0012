// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package distsqlplan

import (
	"context"

	"github.com/ricdong/presto-sub000/pkg/sql/catalog"
	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/opt/constraint"
	"github.com/ricdong/presto-sub000/pkg/sql/opt/physical"
	"github.com/ricdong/presto-sub000/pkg/sql/plan"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/eval"
	"github.com/ricdong/presto-sub000/pkg/sql/sem/tree"
	"github.com/ricdong/presto-sub000/pkg/util/log"
)

type layoutCandidate struct {
	layout catalog.Layout
	props  physical.ActualProperties
}

// pickLayout chooses an access path for a scan, folding an optional filter
// predicate into the scan's constraint. The result is the configured scan,
// possibly wrapped in a residual filter, or an empty Values node when the
// combined constraint or layout pruning proves the scan returns no rows.
func (p *planner) pickLayout(
	ctx context.Context, scan *plan.Scan, pred tree.Expr, preferred physical.PreferredProperties,
) (plan.Node, physical.ActualProperties, error) {
	domain := scan.Constraint
	var residual tree.Expr
	if pred != nil {
		var d constraint.Domain
		d, residual = constraint.DecomposePredicate(pred)
		domain = domain.Intersect(d)
	}

	if domain.IsNone() {
		log.Infof(ctx, "scan of %s is provably empty", scan.Table)
		return p.emptyResult(scan), undistributedProps(), nil
	}

	required := scan.Cols.ToSet()
	if residual != nil {
		required = required.Union(tree.ReferencedCols(residual))
	}

	// The enumerate call can reach out to a remote metadata service; bail
	// out first if the query is already dead.
	if err := ctx.Err(); err != nil {
		return nil, physical.ActualProperties{}, err
	}
	layouts, err := p.catalog.Layouts(ctx, catalog.LayoutRequest{
		Table:      scan.Table,
		Cols:       scan.Cols,
		Ordinals:   scan.Ordinals,
		Constraint: domain,
		Required:   required,
	})
	if err != nil {
		return nil, physical.ActualProperties{}, err
	}

	bindings := domain.Bindings()
	candidates := make([]layoutCandidate, 0, len(layouts))
	for _, l := range layouts {
		if !required.SubsetOf(l.Columns) {
			continue
		}
		if l.PrunePredicate != nil && pruned(l.PrunePredicate, bindings) {
			log.VInfof(ctx, 1, "layout %s of %s pruned by predicate", l.ID, scan.Table)
			continue
		}
		candidates = append(candidates, layoutCandidate{
			layout: l,
			props:  physical.ActualProperties{Partitioning: l.Partitioning},
		})
	}
	if len(candidates) == 0 {
		log.Infof(ctx, "no layout of %s can produce rows", scan.Table)
		return p.emptyResult(scan), undistributedProps(), nil
	}

	sortByPreference(candidates, preferred)
	chosen := candidates[0].layout

	partitioning := chosen.Partitioning
	if p.flags.OptimizeMetadataQueries &&
		scan.Cols.ToSet().SubsetOf(domain.SingleValueCols()) {
		// Every output column has exactly one possible value, so the scan is
		// answerable from metadata on the coordinator.
		partitioning = physical.CoordinatorOnly()
	}

	var result plan.Node = &plan.Scan{
		NodeID:       p.alloc.NextID(),
		Table:        scan.Table,
		Cols:         scan.Cols,
		Ordinals:     scan.Ordinals,
		Constraint:   chosen.Enforced,
		Layout:       chosen.ID,
		Partitioning: partitioning,
	}
	props := physical.ActualProperties{Partitioning: partitioning}

	// Re-check whatever the layout does not enforce itself.
	recheck := tree.CombineConjuncts(chosen.Unenforced.ToPredicate(p.md), residual)
	if recheck != nil {
		result = &plan.Filter{NodeID: p.alloc.NextID(), Input: result, Predicate: recheck}
	}
	return result, props, nil
}

// pruned reports whether the predicate folds to a definite FALSE or NULL
// under the given bindings. An unresolved or erroring predicate keeps the
// candidate.
func pruned(pred tree.Expr, bindings map[opt.ColumnID]tree.Datum) bool {
	value, isNull, residual := eval.FoldPredicate(pred, bindings)
	if residual != nil {
		return false
	}
	return isNull || !value
}

func (p *planner) emptyResult(scan *plan.Scan) plan.Node {
	return &plan.Values{NodeID: p.alloc.NextID(), Cols: scan.Cols}
}

func undistributedProps() physical.ActualProperties {
	return physical.ActualProperties{Partitioning: physical.Undistributed()}
}
