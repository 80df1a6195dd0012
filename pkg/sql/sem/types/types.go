// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package types defines the column types understood by the planner. Scalar
// semantics live with the datums in sem/tree; this package only names the
// types so that plan metadata and function signatures can refer to them.
package types

// T identifies a column type.
type T int

const (
	// Unknown is the type of NULL literals and of columns whose type could
	// not be resolved.
	Unknown T = iota
	// Bool is the boolean type.
	Bool
	// Int is the 64-bit signed integer type.
	Int
	// Float is the 64-bit floating point type.
	Float
	// Decimal is the arbitrary-precision decimal type.
	Decimal
	// String is the variable-length string type.
	String
	// Timestamp is the microsecond-precision timestamp type.
	Timestamp
)

// SafeValue implements the redact.SafeValue interface.
func (t T) SafeValue() {}

func (t T) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Decimal:
		return "decimal"
	case String:
		return "string"
	case Timestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// FromName maps a type name to a T, for catalog and test definitions.
func FromName(name string) (T, bool) {
	switch name {
	case "bool":
		return Bool, true
	case "int":
		return Int, true
	case "float":
		return Float, true
	case "decimal":
		return Decimal, true
	case "string":
		return String, true
	case "timestamp":
		return Timestamp, true
	default:
		return Unknown, false
	}
}
