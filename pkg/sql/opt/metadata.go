// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package opt

import (
	"fmt"

	"github.com/ricdong/presto-sub000/pkg/sql/sem/types"
)

// ColumnMeta stores information about one of the columns used by a query
// plan, including its name and type.
type ColumnMeta struct {
	// MetaID is the identifier for this column that is unique within the
	// context of a particular metadata instance.
	MetaID ColumnID

	// Name is the alias assigned by the analyzer ("symbol" name).
	Name string

	// Type is the scalar type of the column.
	Type types.T
}

// Metadata assigns unique ids to the columns used within the scope of a
// single query plan. It is produced by the analyzer together with the logical
// plan, and extended by the optimizer when it introduces new columns (such as
// intermediate aggregation state).
//
// Column ids are 1-based; 0 is reserved so the zero ColumnID can mean "no
// column".
type Metadata struct {
	cols []ColumnMeta
}

// AddColumn assigns a new unique id to a column and records its name and
// type.
func (md *Metadata) AddColumn(name string, typ types.T) ColumnID {
	id := ColumnID(len(md.cols) + 1)
	md.cols = append(md.cols, ColumnMeta{MetaID: id, Name: name, Type: typ})
	return id
}

// NumColumns returns the count of columns added to the metadata.
func (md *Metadata) NumColumns() int {
	return len(md.cols)
}

// ColumnMeta looks up the metadata for the column with the given id.
func (md *Metadata) ColumnMeta(id ColumnID) *ColumnMeta {
	if id < 1 || int(id) > len(md.cols) {
		panic(fmt.Sprintf("invalid column id %d", id))
	}
	return &md.cols[id-1]
}

// ColumnName returns the name of the given column.
func (md *Metadata) ColumnName(id ColumnID) string {
	return md.ColumnMeta(id).Name
}

// ColumnType returns the type of the given column.
func (md *Metadata) ColumnType(id ColumnID) types.T {
	return md.ColumnMeta(id).Type
}
