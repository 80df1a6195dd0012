// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package plan

import (
	"github.com/ricdong/presto-sub000/pkg/sql/opt"
)

// ExchangeKind is the data movement an Exchange performs.
type ExchangeKind int

const (
	// Gather merges all input streams into one.
	Gather ExchangeKind = iota
	// Repartition redistributes rows by a hash of PartitionCols; with no
	// PartitionCols rows are spread round-robin.
	Repartition
	// Replicate sends every row to every node.
	Replicate
)

// SafeValue implements the redact.SafeValue interface.
func (k ExchangeKind) SafeValue() {}

func (k ExchangeKind) String() string {
	switch k {
	case Repartition:
		return "repartition"
	case Replicate:
		return "replicate"
	default:
		return "gather"
	}
}

// Exchange moves rows between nodes. It accepts multiple inputs so a
// distributed union can feed a single exchange; InputCols[i][j] is input i's
// column feeding output column j.
type Exchange struct {
	NodeID    NodeID
	Kind      ExchangeKind
	Inputs    []Node
	Cols      opt.ColList
	InputCols []opt.ColList

	// PartitionCols are the hash columns for Repartition.
	PartitionCols opt.ColList

	// NullReplicated directs a Replicate exchange to also broadcast rows
	// whose key is NULL, preserving NOT IN semantics for semi-joins.
	NullReplicated bool
}

func (e *Exchange) ID() NodeID              { return e.NodeID }
func (e *Exchange) Children() []Node        { return e.Inputs }
func (e *Exchange) OutputCols() opt.ColList { return e.Cols }
func (e *Exchange) node()                   {}

// identityInputCols builds the InputCols mapping for a single-input exchange
// that passes columns through unchanged.
func identityInputCols(cols opt.ColList) []opt.ColList {
	return []opt.ColList{cols}
}

// GatherExchange merges the input's streams into a single stream.
func GatherExchange(alloc *IDAllocator, input Node) *Exchange {
	cols := input.OutputCols()
	return &Exchange{
		NodeID:    alloc.NextID(),
		Kind:      Gather,
		Inputs:    []Node{input},
		Cols:      cols,
		InputCols: identityInputCols(cols),
	}
}

// RepartitionExchange redistributes the input by a hash of the given
// columns. An empty column list means round-robin redistribution.
func RepartitionExchange(alloc *IDAllocator, input Node, partitionCols opt.ColList) *Exchange {
	cols := input.OutputCols()
	return &Exchange{
		NodeID:        alloc.NextID(),
		Kind:          Repartition,
		Inputs:        []Node{input},
		Cols:          cols,
		InputCols:     identityInputCols(cols),
		PartitionCols: partitionCols,
	}
}

// ReplicateExchange broadcasts the input to every node.
func ReplicateExchange(alloc *IDAllocator, input Node, nullReplicated bool) *Exchange {
	cols := input.OutputCols()
	return &Exchange{
		NodeID:         alloc.NextID(),
		Kind:           Replicate,
		Inputs:         []Node{input},
		Cols:           cols,
		InputCols:      identityInputCols(cols),
		NullReplicated: nullReplicated,
	}
}
