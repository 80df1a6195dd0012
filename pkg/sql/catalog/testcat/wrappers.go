// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package testcat

import (
	"context"

	"github.com/ricdong/presto-sub000/pkg/sql/catalog"
)

// Failing returns a catalog whose Layouts call always fails with the given
// error. Planning over it must fail; there is no silent fallback path.
func Failing(err error) catalog.Catalog {
	return failingCatalog{err: err}
}

type failingCatalog struct {
	err error
}

func (f failingCatalog) Layouts(
	ctx context.Context, req catalog.LayoutRequest,
) ([]catalog.Layout, error) {
	return nil, f.err
}

// Counting wraps a catalog and counts Layouts calls that reach the wrapped
// provider. Used to verify memoization.
type Counting struct {
	Wrapped catalog.Catalog
	Calls   int
}

func (c *Counting) Layouts(
	ctx context.Context, req catalog.LayoutRequest,
) ([]catalog.Layout, error) {
	c.Calls++
	return c.Wrapped.Layouts(ctx, req)
}
