package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/viant/facevec/facestore"
)

type statsResult struct {
	Backend   string  `json:"backend"`
	Count     int     `json:"count"`
	Dimension int     `json:"dimension"`
	Threshold float64 `json:"threshold"`
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show table size, descriptor length and threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(_ context.Context, s *facestore.Store) error {
				res := statsResult{
					Backend:   a.cfg.Backend.Driver,
					Count:     s.Len(),
					Dimension: s.Dim(),
					Threshold: s.Threshold(),
				}
				if a.jsonOut {
					return writeJSON(cmd.OutOrStdout(), res)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "backend\t%s\n", res.Backend)
				fmt.Fprintf(tw, "count\t%d\n", res.Count)
				fmt.Fprintf(tw, "dimension\t%d\n", res.Dimension)
				fmt.Fprintf(tw, "threshold\t%g\n", res.Threshold)
				return tw.Flush()
			})
		},
	}
}
