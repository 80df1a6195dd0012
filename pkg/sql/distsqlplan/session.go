// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package distsqlplan turns a single-node physical plan into a distributed
// one by inserting exchange operators, choosing table layouts, and splitting
// aggregations into partial and final steps.
package distsqlplan

// SessionFlags are the session settings the exchange planner consults. Each
// is read as a plain boolean at planning time.
type SessionFlags struct {
	// DistributedJoins forces equi-joins and semi-joins to hash-partition
	// both sides instead of broadcasting one.
	DistributedJoins bool

	// RedistributeWrites spreads rows round-robin ahead of table writers to
	// even out write skew.
	RedistributeWrites bool

	// PreferStreamingOperators biases layout and exchange choices toward
	// plans whose inputs already arrive grouped or sorted.
	PreferStreamingOperators bool

	// OptimizeMetadataQueries plans scans whose every column is pinned to a
	// single constraint value as coordinator-only work.
	OptimizeMetadataQueries bool
}
