// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// planexplain runs the exchange planner over a YAML-defined catalog and plan
// and prints the resulting distributed plan.
//
// Usage:
//
//	planexplain explain --catalog cat.yaml --plan plan.yaml --distributed-joins
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kr/pretty"
	"github.com/olekukonko/tablewriter"
	"github.com/ricdong/presto-sub000/pkg/sql/catalog/testcat"
	"github.com/ricdong/presto-sub000/pkg/sql/distsqlplan"
	"github.com/ricdong/presto-sub000/pkg/sql/opt"
	"github.com/ricdong/presto-sub000/pkg/sql/plan"
	"github.com/ricdong/presto-sub000/pkg/sql/plan/plandef"
	"github.com/ricdong/presto-sub000/pkg/util/log"
	"github.com/spf13/cobra"
)

var (
	catalogFile string
	planFile    string
	flags       distsqlplan.SessionFlags
	verbosity   int
	raw         bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "planexplain",
		Short:         "explain distributed plans",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	explainCmd := &cobra.Command{
		Use:   "explain",
		Short: "plan exchanges for a YAML-defined plan and print the result",
		RunE:  runExplain,
	}
	explainCmd.Flags().StringVar(&catalogFile, "catalog", "", "catalog definition file")
	explainCmd.Flags().StringVar(&planFile, "plan", "", "plan definition file")
	explainCmd.Flags().BoolVar(&flags.DistributedJoins, "distributed-joins", false,
		"hash-partition both sides of joins")
	explainCmd.Flags().BoolVar(&flags.RedistributeWrites, "redistribute-writes", false,
		"round-robin rows ahead of table writers")
	explainCmd.Flags().BoolVar(&flags.PreferStreamingOperators, "prefer-streaming", false,
		"ask layouts for orderings that let aggregations stream")
	explainCmd.Flags().BoolVar(&flags.OptimizeMetadataQueries, "optimize-metadata-queries", false,
		"answer fully-pinned scans from coordinator metadata")
	explainCmd.Flags().IntVarP(&verbosity, "verbosity", "v", 0, "log verbosity")
	explainCmd.Flags().BoolVar(&raw, "raw", false, "also dump the raw plan tree")
	_ = explainCmd.MarkFlagRequired("catalog")
	_ = explainCmd.MarkFlagRequired("plan")
	rootCmd.AddCommand(explainCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runExplain(cmd *cobra.Command, args []string) error {
	log.SetOutput(os.Stderr)
	log.SetVModule(verbosity)

	catData, err := os.ReadFile(catalogFile)
	if err != nil {
		return err
	}
	cat, err := testcat.Load(catData)
	if err != nil {
		return err
	}
	planData, err := os.ReadFile(planFile)
	if err != nil {
		return err
	}
	def, err := plandef.Build(cat, planData)
	if err != nil {
		return err
	}

	fmt.Println("input plan:")
	fmt.Print(plan.Format(def.Metadata, def.Root))

	planned, err := distsqlplan.AddExchanges(
		context.Background(), cat, def.Metadata, flags, def.Root)
	if err != nil {
		return err
	}

	fmt.Println("\ndistributed plan:")
	fmt.Print(plan.Format(def.Metadata, planned))

	if exchs := collectExchanges(planned); len(exchs) > 0 {
		fmt.Println()
		printExchangeSummary(def.Metadata, exchs)
	}

	if raw {
		fmt.Println()
		pretty.Println(planned)
	}
	return nil
}

func collectExchanges(root plan.Node) []*plan.Exchange {
	var res []*plan.Exchange
	var walk func(plan.Node)
	walk = func(n plan.Node) {
		if e, ok := n.(*plan.Exchange); ok {
			res = append(res, e)
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(root)
	return res
}

func printExchangeSummary(md *opt.Metadata, exchs []*plan.Exchange) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Kind", "Partition Columns", "Inputs"})
	for _, e := range exchs {
		var partCols string
		switch {
		case e.Kind != plan.Repartition:
			partCols = "-"
		case len(e.PartitionCols) == 0:
			partCols = "round-robin"
		default:
			for i, col := range e.PartitionCols {
				if i > 0 {
					partCols += ", "
				}
				partCols += md.ColumnName(col)
			}
		}
		table.Append([]string{
			fmt.Sprintf("%d", e.NodeID),
			e.Kind.String(),
			partCols,
			fmt.Sprintf("%d", len(e.Inputs)),
		})
	}
	table.Render()
}
