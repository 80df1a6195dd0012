// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package tree

import (
	"math/rand"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ricdong/presto-sub000/pkg/sql/sem/types"
)

// Volatility indicates whether the result of a function call can change
// between evaluations with the same arguments.
type Volatility int

const (
	// VolatilityImmutable means the function always returns the same result
	// for the same arguments; calls with constant arguments can be folded at
	// plan time.
	VolatilityImmutable Volatility = iota
	// VolatilityStable means the result is fixed within a single query
	// execution but not across executions (e.g. now()). Stable calls are not
	// folded by this planner.
	VolatilityStable
	// VolatilityVolatile means the result can change on every call (e.g.
	// random()). Volatile calls are never folded and their containing
	// conjuncts are never pushed into scan constraints.
	VolatilityVolatile
)

// SafeValue implements the redact.SafeValue interface.
func (v Volatility) SafeValue() {}

func (v Volatility) String() string {
	switch v {
	case VolatilityImmutable:
		return "immutable"
	case VolatilityStable:
		return "stable"
	default:
		return "volatile"
	}
}

// FunctionDefinition describes a scalar builtin.
type FunctionDefinition struct {
	Name       string
	Volatility Volatility
	ReturnType types.T

	// Fn evaluates the call. It is only invoked on non-null constant
	// arguments; all builtins are strict (a NULL argument yields NULL
	// without calling Fn).
	Fn func(args Datums) (Datum, error)
}

// funDefs is the scalar function registry, keyed by lower-case name.
var funDefs = map[string]*FunctionDefinition{
	"length": {
		Name:       "length",
		Volatility: VolatilityImmutable,
		ReturnType: types.Int,
		Fn: func(args Datums) (Datum, error) {
			s, ok := args[0].(DString)
			if !ok {
				return nil, errors.Newf("length: unsupported argument %s", args[0])
			}
			return DInt(len(s)), nil
		},
	},
	"upper": {
		Name:       "upper",
		Volatility: VolatilityImmutable,
		ReturnType: types.String,
		Fn: func(args Datums) (Datum, error) {
			s, ok := args[0].(DString)
			if !ok {
				return nil, errors.Newf("upper: unsupported argument %s", args[0])
			}
			return DString(strings.ToUpper(string(s))), nil
		},
	},
	"lower": {
		Name:       "lower",
		Volatility: VolatilityImmutable,
		ReturnType: types.String,
		Fn: func(args Datums) (Datum, error) {
			s, ok := args[0].(DString)
			if !ok {
				return nil, errors.Newf("lower: unsupported argument %s", args[0])
			}
			return DString(strings.ToLower(string(s))), nil
		},
	},
	"abs": {
		Name:       "abs",
		Volatility: VolatilityImmutable,
		ReturnType: types.Int,
		Fn: func(args Datums) (Datum, error) {
			switch v := args[0].(type) {
			case DInt:
				if v < 0 {
					return -v, nil
				}
				return v, nil
			case DFloat:
				if v < 0 {
					return -v, nil
				}
				return v, nil
			default:
				return nil, errors.Newf("abs: unsupported argument %s", args[0])
			}
		},
	},
	"mod": {
		Name:       "mod",
		Volatility: VolatilityImmutable,
		ReturnType: types.Int,
		Fn: func(args Datums) (Datum, error) {
			a, aok := args[0].(DInt)
			b, bok := args[1].(DInt)
			if !aok || !bok {
				return nil, errors.Newf("mod: unsupported arguments")
			}
			if b == 0 {
				return nil, errors.New("mod: division by zero")
			}
			return a % b, nil
		},
	},
	"now": {
		Name:       "now",
		Volatility: VolatilityStable,
		ReturnType: types.Timestamp,
		Fn: func(args Datums) (Datum, error) {
			return DInt(time.Now().UnixMicro()), nil
		},
	},
	"random": {
		Name:       "random",
		Volatility: VolatilityVolatile,
		ReturnType: types.Float,
		Fn: func(args Datums) (Datum, error) {
			return DFloat(rand.Float64()), nil
		},
	},
}

// LookupFunction resolves a scalar function by name.
func LookupFunction(name string) (*FunctionDefinition, bool) {
	def, ok := funDefs[strings.ToLower(name)]
	return def, ok
}
