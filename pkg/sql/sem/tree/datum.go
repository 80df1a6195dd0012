// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package tree

import (
	"math"
	"strconv"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"

	"github.com/ricdong/presto-sub000/pkg/sql/sem/types"
)

var (
	// DBoolTrue is the true boolean datum.
	DBoolTrue = MakeDBool(true)
	// DBoolFalse is the false boolean datum.
	DBoolFalse = MakeDBool(false)
	// DNull is the NULL datum.
	DNull Datum = dNull{}
)

// DecimalCtx is the decimal context used for datum arithmetic and
// comparisons.
var DecimalCtx = apd.BaseContext.WithPrecision(20)

// Datum represents a SQL value.
type Datum interface {
	Expr

	// ResolvedType returns the type of the datum.
	ResolvedType() types.T

	// Compare returns -1 if the receiver is less than other, 0 if receiver is
	// equal to other and +1 if receiver is greater than other. It returns an
	// error if the two datums are not comparable. NULL compares less than any
	// non-NULL value.
	Compare(other Datum) (int, error)

	// Next returns the next datum in the type's total order, if the type
	// supports it (used to normalize exclusive range bounds).
	Next() (Datum, bool)

	// IsNull reports whether the datum is NULL.
	IsNull() bool
}

// Datums is a slice of datums.
type Datums []Datum

// DBool is the boolean datum.
type DBool bool

// MakeDBool converts a bool to the shared datum instances.
func MakeDBool(b bool) Datum {
	if b {
		return dBoolTrue
	}
	return dBoolFalse
}

var dBoolTrue Datum = DBool(true)
var dBoolFalse Datum = DBool(false)

// GetBool extracts the boolean value from a datum. NULL maps to (false,
// isNull=true).
func GetBool(d Datum) (b bool, isNull bool, _ error) {
	if d == DNull {
		return false, true, nil
	}
	if v, ok := d.(DBool); ok {
		return bool(v), false, nil
	}
	return false, false, errors.AssertionFailedf("cannot convert %s to bool", d.ResolvedType())
}

// ResolvedType implements the Datum interface.
func (d DBool) ResolvedType() types.T { return types.Bool }

// Compare implements the Datum interface.
func (d DBool) Compare(other Datum) (int, error) {
	if other == DNull {
		return 1, nil
	}
	v, ok := other.(DBool)
	if !ok {
		return 0, makeUnsupportedComparisonError(d, other)
	}
	if d == v {
		return 0, nil
	}
	if !d {
		return -1, nil
	}
	return 1, nil
}

// Next implements the Datum interface.
func (d DBool) Next() (Datum, bool) {
	if !d {
		return DBoolTrue, true
	}
	return nil, false
}

// IsNull implements the Datum interface.
func (d DBool) IsNull() bool { return false }

func (d DBool) String() string { return strconv.FormatBool(bool(d)) }

// DInt is the int datum.
type DInt int64

// NewDInt returns a new DInt.
func NewDInt(v int64) Datum { return DInt(v) }

// ResolvedType implements the Datum interface.
func (d DInt) ResolvedType() types.T { return types.Int }

// Compare implements the Datum interface.
func (d DInt) Compare(other Datum) (int, error) {
	if other == DNull {
		return 1, nil
	}
	v, ok := other.(DInt)
	if !ok {
		return 0, makeUnsupportedComparisonError(d, other)
	}
	if d < v {
		return -1, nil
	}
	if d > v {
		return 1, nil
	}
	return 0, nil
}

// Next implements the Datum interface.
func (d DInt) Next() (Datum, bool) {
	if d == math.MaxInt64 {
		return nil, false
	}
	return d + 1, true
}

// IsNull implements the Datum interface.
func (d DInt) IsNull() bool { return false }

func (d DInt) String() string { return strconv.FormatInt(int64(d), 10) }

// DFloat is the float datum.
type DFloat float64

// ResolvedType implements the Datum interface.
func (d DFloat) ResolvedType() types.T { return types.Float }

// Compare implements the Datum interface.
func (d DFloat) Compare(other Datum) (int, error) {
	if other == DNull {
		return 1, nil
	}
	v, ok := other.(DFloat)
	if !ok {
		return 0, makeUnsupportedComparisonError(d, other)
	}
	if d < v {
		return -1, nil
	}
	if d > v {
		return 1, nil
	}
	return 0, nil
}

// Next implements the Datum interface. Floats have no useful successor.
func (d DFloat) Next() (Datum, bool) { return nil, false }

// IsNull implements the Datum interface.
func (d DFloat) IsNull() bool { return false }

func (d DFloat) String() string { return strconv.FormatFloat(float64(d), 'g', -1, 64) }

// DDecimal is the decimal datum, backed by an arbitrary-precision decimal.
type DDecimal struct {
	apd.Decimal
}

// NewDDecimalFromString parses a decimal datum from its string form.
func NewDDecimalFromString(s string) (Datum, error) {
	d := &DDecimal{}
	if _, _, err := d.SetString(s); err != nil {
		return nil, errors.Wrapf(err, "could not parse %q as decimal", s)
	}
	return d, nil
}

// ResolvedType implements the Datum interface.
func (d *DDecimal) ResolvedType() types.T { return types.Decimal }

// Compare implements the Datum interface.
func (d *DDecimal) Compare(other Datum) (int, error) {
	if other == DNull {
		return 1, nil
	}
	v, ok := other.(*DDecimal)
	if !ok {
		return 0, makeUnsupportedComparisonError(d, other)
	}
	return d.Cmp(&v.Decimal), nil
}

// Next implements the Datum interface. Decimals have no successor.
func (d *DDecimal) Next() (Datum, bool) { return nil, false }

// IsNull implements the Datum interface.
func (d *DDecimal) IsNull() bool { return false }

func (d *DDecimal) String() string { return d.Decimal.String() }

// DString is the string datum.
type DString string

// NewDString returns a new DString.
func NewDString(s string) Datum { return DString(s) }

// ResolvedType implements the Datum interface.
func (d DString) ResolvedType() types.T { return types.String }

// Compare implements the Datum interface.
func (d DString) Compare(other Datum) (int, error) {
	if other == DNull {
		return 1, nil
	}
	v, ok := other.(DString)
	if !ok {
		return 0, makeUnsupportedComparisonError(d, other)
	}
	if d < v {
		return -1, nil
	}
	if d > v {
		return 1, nil
	}
	return 0, nil
}

// Next implements the Datum interface. The successor of a string appends a
// zero byte.
func (d DString) Next() (Datum, bool) {
	return DString(string(d) + "\x00"), true
}

// IsNull implements the Datum interface.
func (d DString) IsNull() bool { return false }

func (d DString) String() string { return strconv.Quote(string(d)) }

// dNull is the NULL datum.
type dNull struct{}

// ResolvedType implements the Datum interface.
func (dNull) ResolvedType() types.T { return types.Unknown }

// Compare implements the Datum interface.
func (dNull) Compare(other Datum) (int, error) {
	if other == DNull {
		return 0, nil
	}
	return -1, nil
}

// Next implements the Datum interface.
func (dNull) Next() (Datum, bool) { return nil, false }

// IsNull implements the Datum interface.
func (dNull) IsNull() bool { return true }

func (dNull) String() string { return "NULL" }

func makeUnsupportedComparisonError(left, right Datum) error {
	return errors.AssertionFailedf(
		"unsupported comparison: %s to %s", left.ResolvedType(), right.ResolvedType(),
	)
}

// ParseDatum converts a scalar decoded from YAML or a test definition to a
// datum. Supported inputs: nil, bool, int, int64, float64, string.
func ParseDatum(v interface{}) (Datum, error) {
	switch t := v.(type) {
	case nil:
		return DNull, nil
	case bool:
		return MakeDBool(t), nil
	case int:
		return DInt(t), nil
	case int64:
		return DInt(t), nil
	case float64:
		return DFloat(t), nil
	case string:
		return DString(t), nil
	default:
		return nil, errors.Newf("unsupported literal %v (%T)", v, v)
	}
}
