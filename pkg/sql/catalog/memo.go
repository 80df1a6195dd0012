// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package catalog

import (
	"context"
	"fmt"
)

// WithLayoutMemo wraps a catalog so that repeated Layouts calls with the
// same request hit a cache. The cache belongs to one planning invocation;
// callers create a fresh wrapper per plan and discard it afterwards, so
// concurrent plans never share layout state. Not safe for concurrent use.
func WithLayoutMemo(c Catalog) Catalog {
	return &layoutMemo{wrapped: c, cache: make(map[string][]Layout)}
}

type layoutMemo struct {
	wrapped Catalog
	cache   map[string][]Layout
}

func (m *layoutMemo) Layouts(ctx context.Context, req LayoutRequest) ([]Layout, error) {
	key := memoKey(req)
	if layouts, ok := m.cache[key]; ok {
		return layouts, nil
	}
	layouts, err := m.wrapped.Layouts(ctx, req)
	if err != nil {
		// Errors are not cached; a retry sees the provider again.
		return nil, err
	}
	m.cache[key] = layouts
	return layouts, nil
}

func memoKey(req LayoutRequest) string {
	return fmt.Sprintf("%s|%s|%v|%s|%s",
		req.Table, req.Cols, req.Ordinals, req.Constraint, req.Required)
}
