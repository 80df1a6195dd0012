// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package plan

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ricdong/presto-sub000/pkg/sql/opt"
)

// Format renders the plan as an indented tree. The output is consumed by
// tests and the explain CLI, so details that planning decisions hinge on
// (partitioning, layout, aggregation step, streaming hints) are all shown.
func Format(md *opt.Metadata, root Node) string {
	var buf bytes.Buffer
	formatNode(&buf, md, root, 0)
	return buf.String()
}

func formatNode(buf *bytes.Buffer, md *opt.Metadata, n Node, level int) {
	buf.WriteString(strings.Repeat("  ", level))
	buf.WriteString(describe(md, n))
	buf.WriteByte('\n')
	for _, child := range n.Children() {
		formatNode(buf, md, child, level+1)
	}
}

func describe(md *opt.Metadata, n Node) string {
	switch t := n.(type) {
	case *Scan:
		s := fmt.Sprintf("scan %s cols=%s", t.Table, colNames(md, t.Cols))
		if t.Layout != "" {
			s += fmt.Sprintf(" layout=%s", t.Layout)
		}
		s += fmt.Sprintf(" [%s]", t.Partitioning)
		if !t.Constraint.IsAll() {
			s += fmt.Sprintf(" constraint=%s", t.Constraint)
		}
		return s

	case *Values:
		if len(t.Rows) == 0 {
			return fmt.Sprintf("values (empty) cols=%s", colNames(md, t.Cols))
		}
		return fmt.Sprintf("values (%d rows) cols=%s", len(t.Rows), colNames(md, t.Cols))

	case *Filter:
		return fmt.Sprintf("filter %s", t.Predicate)

	case *Project:
		var items []string
		for _, item := range t.Items {
			items = append(items, fmt.Sprintf("%s=%s", md.ColumnName(item.Col), item.Expr))
		}
		return fmt.Sprintf("project %s", strings.Join(items, ", "))

	case *Aggregate:
		var aggs []string
		for _, agg := range t.Aggs {
			s := fmt.Sprintf("%s=%s(%s)", md.ColumnName(agg.Output), agg.Func,
				strings.Trim(colNames(md, agg.Args), "()"))
			if agg.Mask != 0 {
				s += fmt.Sprintf(" mask=%s", md.ColumnName(agg.Mask))
			}
			aggs = append(aggs, s)
		}
		return fmt.Sprintf("aggregate (%s) group by %s: %s",
			t.Step, colNames(md, t.GroupingCols), strings.Join(aggs, ", "))

	case *Join:
		return fmt.Sprintf("join (%s) on %s=%s",
			t.Type, colNames(md, t.LeftEqCols), colNames(md, t.RightEqCols))

	case *SemiJoin:
		return fmt.Sprintf("semi-join on %s=%s match=%s",
			md.ColumnName(t.SourceKey), md.ColumnName(t.FilteringKey), md.ColumnName(t.MatchCol))

	case *Window:
		s := fmt.Sprintf("window partition by %s order by %s",
			colNames(md, t.PartitionCols), t.Ordering)
		if !t.PrePartitionedCols.Empty() {
			s += fmt.Sprintf(" pre-partitioned=%s", t.PrePartitionedCols)
		}
		if t.PreSortedPrefix > 0 {
			s += fmt.Sprintf(" pre-sorted-prefix=%d", t.PreSortedPrefix)
		}
		return s

	case *RowNumber:
		s := fmt.Sprintf("row-number partition by %s", colNames(md, t.PartitionCols))
		if !t.PrePartitionedCols.Empty() {
			s += fmt.Sprintf(" pre-partitioned=%s", t.PrePartitionedCols)
		}
		return s

	case *Sort:
		return fmt.Sprintf("sort %s", t.Ordering)

	case *TopN:
		if t.Partial {
			return fmt.Sprintf("top-n (partial) %d %s", t.N, t.Ordering)
		}
		return fmt.Sprintf("top-n %d %s", t.N, t.Ordering)

	case *Limit:
		if t.Partial {
			return fmt.Sprintf("limit (partial) %d", t.Count)
		}
		return fmt.Sprintf("limit %d", t.Count)

	case *Union:
		return fmt.Sprintf("union cols=%s", colNames(md, t.Cols))

	case *Exchange:
		s := fmt.Sprintf("exchange (%s)", t.Kind)
		if t.Kind == Repartition {
			if len(t.PartitionCols) == 0 {
				s += " round-robin"
			} else {
				s += fmt.Sprintf(" on %s", colNames(md, t.PartitionCols))
			}
		}
		if t.NullReplicated {
			s += " null-replicated"
		}
		return s

	case *Output:
		return fmt.Sprintf("output %s", colNames(md, t.Cols))

	case *TableWriter:
		return fmt.Sprintf("write %s cols=%s", t.Table, colNames(md, t.Cols))

	case *TableFinish:
		return "finish"

	case *Delete:
		return fmt.Sprintf("delete %s", t.Table)

	default:
		panic(errors.AssertionFailedf("unhandled node type %T", n))
	}
}

func colNames(md *opt.Metadata, cols opt.ColList) string {
	var buf bytes.Buffer
	buf.WriteByte('(')
	for i, col := range cols {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(md.ColumnName(col))
	}
	buf.WriteByte(')')
	return buf.String()
}
