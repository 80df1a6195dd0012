// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package physical

import (
	"bytes"
	"fmt"

	"github.com/ricdong/presto-sub000/pkg/sql/opt"
)

// LocalKind discriminates the two kinds of intra-stream properties.
type LocalKind int

const (
	// Grouping means rows that agree on a column set arrive contiguously.
	Grouping LocalKind = iota
	// Sorting means rows arrive ordered on a single column.
	Sorting
)

// SafeValue implements the redact.SafeValue interface.
func (k LocalKind) SafeValue() {}

// LocalProperty describes one guarantee about the row order within each
// node's stream: either a grouping on a set of columns or a sort on one
// column. A list of local properties reads left to right, each property
// holding within the groups established by the properties before it.
type LocalProperty struct {
	Kind LocalKind

	// GroupCols is set for Grouping.
	GroupCols opt.ColSet

	// SortCol and Direction are set for Sorting.
	SortCol   opt.ColumnID
	Direction opt.Direction
}

// GroupedOn returns a grouping property on the given columns.
func GroupedOn(cols opt.ColSet) LocalProperty {
	return LocalProperty{Kind: Grouping, GroupCols: cols}
}

// SortedBy returns a sort property on the given column.
func SortedBy(col opt.ColumnID, dir opt.Direction) LocalProperty {
	return LocalProperty{Kind: Sorting, SortCol: col, Direction: dir}
}

// Cols returns the columns the property refers to.
func (lp LocalProperty) Cols() opt.ColSet {
	if lp.Kind == Grouping {
		return lp.GroupCols
	}
	return opt.MakeColSet(lp.SortCol)
}

// Equals reports whether two local properties are identical.
func (lp LocalProperty) Equals(other LocalProperty) bool {
	if lp.Kind != other.Kind {
		return false
	}
	if lp.Kind == Grouping {
		return lp.GroupCols.Equals(other.GroupCols)
	}
	return lp.SortCol == other.SortCol && lp.Direction == other.Direction
}

func (lp LocalProperty) String() string {
	if lp.Kind == Grouping {
		return fmt.Sprintf("grouped%s", lp.GroupCols)
	}
	return fmt.Sprintf("sorted(%d %s)", lp.SortCol, lp.Direction)
}

// ActualProperties is the physical shape a plan node's output actually has:
// its cross-node partitioning plus the local properties each stream carries.
type ActualProperties struct {
	Partitioning Partitioning
	Local        []LocalProperty
}

func (p ActualProperties) String() string {
	var buf bytes.Buffer
	buf.WriteString(p.Partitioning.String())
	for _, lp := range p.Local {
		buf.WriteByte(' ')
		buf.WriteString(lp.String())
	}
	return buf.String()
}

// GlobalPreference is a parent's wish for the cross-node distribution of a
// child's output. An empty PartitioningCols set means any hash partitioning
// will do.
type GlobalPreference struct {
	Distributed      bool
	PartitioningCols opt.ColSet
}

// Satisfies reports whether the actual partitioning meets the preference.
func (g GlobalPreference) Satisfies(p Partitioning) bool {
	if !g.Distributed {
		return !p.IsDistributed()
	}
	if !p.IsDistributed() {
		return false
	}
	if p.Kind() == Replicated || p.Kind() == Arbitrary {
		return g.PartitioningCols.Empty()
	}
	if g.PartitioningCols.Empty() {
		return true
	}
	return p.IsPartitionedOn(g.PartitioningCols)
}

// PreferredProperties is what a parent asks of a child. Both parts are
// optional: a nil Global means no distribution wish, an empty Local list
// means no ordering wish. Preferences are hints; the exchange planner is
// free to ignore them, unlike the hard requirements it enforces itself.
type PreferredProperties struct {
	Global *GlobalPreference
	Local  []LocalProperty
}

// Any returns the empty preference.
func Any() PreferredProperties {
	return PreferredProperties{}
}

// PreferUndistributed asks for a single-node stream.
func PreferUndistributed() PreferredProperties {
	return PreferredProperties{Global: &GlobalPreference{}}
}

// PreferPartitioned asks for a distributed stream partitioned on the given
// columns (any partitioning when the set is empty).
func PreferPartitioned(cols opt.ColSet) PreferredProperties {
	return PreferredProperties{Global: &GlobalPreference{Distributed: true, PartitioningCols: cols}}
}

// WithLocal returns a copy of the preference with the local wish replaced.
func (p PreferredProperties) WithLocal(local []LocalProperty) PreferredProperties {
	p.Local = local
	return p
}

// TranslateLocal maps local properties through a projection described as an
// identity-passthrough column set: properties referring only to columns that
// survive the projection unchanged are kept, and the list is cut at the
// first property that does not survive, since later properties only hold
// within the groups established by earlier ones.
func TranslateLocal(local []LocalProperty, passthrough opt.ColSet) []LocalProperty {
	var res []LocalProperty
	for _, lp := range local {
		if !lp.Cols().SubsetOf(passthrough) {
			break
		}
		res = append(res, lp)
	}
	return res
}
