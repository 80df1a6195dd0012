// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package physical describes the physical shape of the row stream produced
// by a plan node: how rows are distributed across worker nodes, and what
// ordering or grouping guarantees hold within each node's stream. The
// exchange planner compares desired properties against actual ones and
// inserts exchanges where they diverge.
package physical

import (
	"bytes"
	"fmt"

	"github.com/ricdong/presto-sub000/pkg/sql/opt"
)

// PartitioningKind classifies how a stream is spread across worker nodes.
type PartitioningKind int

const (
	// Single means the whole stream is materialized on one (any) node.
	Single PartitioningKind = iota
	// Coordinator means the whole stream is on the coordinator node.
	Coordinator
	// Hash means rows are distributed by a hash of the partitioning columns.
	Hash
	// Range means rows are distributed by contiguous ranges of the
	// partitioning columns.
	Range
	// Arbitrary means rows are distributed with no usable placement
	// guarantee (e.g. round-robin for write balancing, or a distribution
	// whose columns were projected away).
	Arbitrary
	// Replicated means every node holds a full copy of the stream.
	Replicated
)

// SafeValue implements the redact.SafeValue interface.
func (k PartitioningKind) SafeValue() {}

func (k PartitioningKind) String() string {
	switch k {
	case Single:
		return "single"
	case Coordinator:
		return "coordinator"
	case Hash:
		return "hash"
	case Range:
		return "range"
	case Arbitrary:
		return "arbitrary"
	case Replicated:
		return "replicated"
	default:
		return fmt.Sprintf("<kind %d>", int(k))
	}
}

// Partitioning describes the cross-node distribution of a stream. The zero
// value is the single-node (undistributed) partitioning.
type Partitioning struct {
	kind PartitioningKind

	// cols are the partitioning columns for Hash and Range.
	cols opt.ColList

	// nullReplicated is set on a Replicated partitioning when rows with
	// NULL partitioning keys were additionally sent to every node. Needed
	// for NOT IN / anti-join NULL semantics.
	nullReplicated bool
}

// Undistributed returns the single-node partitioning.
func Undistributed() Partitioning {
	return Partitioning{kind: Single}
}

// CoordinatorOnly returns the coordinator-only partitioning.
func CoordinatorOnly() Partitioning {
	return Partitioning{kind: Coordinator}
}

// HashPartitioned returns a hash partitioning on the given columns. An empty
// column list means the distribution carries no placement guarantee and
// degrades to Arbitrary.
func HashPartitioned(cols opt.ColList) Partitioning {
	if len(cols) == 0 {
		return ArbitraryDistribution()
	}
	return Partitioning{kind: Hash, cols: cols}
}

// RangePartitioned returns a range partitioning on the given columns.
func RangePartitioned(cols opt.ColList) Partitioning {
	if len(cols) == 0 {
		return ArbitraryDistribution()
	}
	return Partitioning{kind: Range, cols: cols}
}

// ArbitraryDistribution returns a distributed partitioning with no placement
// guarantee.
func ArbitraryDistribution() Partitioning {
	return Partitioning{kind: Arbitrary}
}

// ReplicatedCopy returns the replicated (broadcast) partitioning.
func ReplicatedCopy(nullReplicated bool) Partitioning {
	return Partitioning{kind: Replicated, nullReplicated: nullReplicated}
}

// Kind returns the partitioning kind.
func (p Partitioning) Kind() PartitioningKind { return p.kind }

// Columns returns the partitioning columns (Hash and Range only).
func (p Partitioning) Columns() opt.ColList { return p.cols }

// NullReplicated reports whether NULL keys were broadcast (Replicated only).
func (p Partitioning) NullReplicated() bool { return p.nullReplicated }

// IsDistributed reports whether the stream exists on more than one node.
func (p Partitioning) IsDistributed() bool {
	switch p.kind {
	case Hash, Range, Arbitrary, Replicated:
		return true
	default:
		return false
	}
}

// IsPartitionedOn reports whether rows that agree on the given columns are
// guaranteed to be colocated on one node. This holds when the actual
// partitioning columns are a subset of the given set: redistributing on a
// superset of the partitioning columns still keeps any subset colocated.
// Single-node streams are trivially colocated on anything; replicated and
// arbitrary streams guarantee nothing.
func (p Partitioning) IsPartitionedOn(cols opt.ColSet) bool {
	switch p.kind {
	case Single, Coordinator:
		return true
	case Hash, Range:
		return p.cols.ToSet().SubsetOf(cols)
	default:
		return false
	}
}

// Equals reports whether two partitionings are identical.
func (p Partitioning) Equals(other Partitioning) bool {
	return p.kind == other.kind &&
		p.cols.Equals(other.cols) &&
		p.nullReplicated == other.nullReplicated
}

func (p Partitioning) String() string {
	var buf bytes.Buffer
	buf.WriteString(p.kind.String())
	if len(p.cols) > 0 {
		buf.WriteString(p.cols.String())
	}
	if p.nullReplicated {
		buf.WriteString("+nulls")
	}
	return buf.String()
}
