// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package tree

import (
	"strings"

	"github.com/ricdong/presto-sub000/pkg/sql/sem/types"
)

// AggregateDefinition describes an aggregate function and how (or whether)
// it decomposes into a partial stage producing intermediate state and a
// final stage merging that state.
//
// The model is deliberately restricted to aggregates with a single
// intermediate slot; functions that need several (such as avg, which needs a
// running sum and a running count) are declared non-decomposable and force a
// materializing exchange ahead of a single aggregation instead.
type AggregateDefinition struct {
	Name string

	// Decomposable is set if the aggregate can be split into a partial and a
	// final stage.
	Decomposable bool

	// PartialFunc is the function computed in the partial stage over raw
	// input rows.
	PartialFunc string

	// FinalFunc is the function computed in the final stage over the partial
	// stage's intermediate state. The two stages must agree on the
	// intermediate representation, which is IntermediateType.
	FinalFunc string

	// IntermediateType is the type of the per-group state produced by the
	// partial stage.
	IntermediateType types.T

	// ReturnType is the type of the aggregate's result. types.Unknown means
	// "same as the argument type".
	ReturnType types.T
}

var aggDefs = map[string]*AggregateDefinition{
	"count": {
		Name:             "count",
		Decomposable:     true,
		PartialFunc:      "count",
		FinalFunc:        "sum",
		IntermediateType: types.Int,
		ReturnType:       types.Int,
	},
	"sum": {
		Name:         "sum",
		Decomposable: true,
		PartialFunc:  "sum",
		FinalFunc:    "sum",
	},
	"min": {
		Name:         "min",
		Decomposable: true,
		PartialFunc:  "min",
		FinalFunc:    "min",
	},
	"max": {
		Name:         "max",
		Decomposable: true,
		PartialFunc:  "max",
		FinalFunc:    "max",
	},
	"avg": {
		Name:       "avg",
		ReturnType: types.Float,
	},
	"array_agg": {
		Name:       "array_agg",
		ReturnType: types.String,
	},
}

// LookupAggregate resolves an aggregate function by name.
func LookupAggregate(name string) (*AggregateDefinition, bool) {
	def, ok := aggDefs[strings.ToLower(name)]
	return def, ok
}
