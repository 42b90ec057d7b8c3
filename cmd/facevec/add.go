package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/facevec/facestore"
)

type addResult struct {
	Index uint64 `json:"index"`
}

func newAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [descriptor]",
		Short: "Append a descriptor and print its index",
		Long: `Append a descriptor to the table unconditionally and print the index it
was assigned. No matching is done; use "match" to recognize before enrolling.

Examples:
  facevec add '[0.12, -0.03, 0.25]'
  facevec add --file face.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDescriptor(cmd, args)
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s *facestore.Store) error {
				idx, err := s.Add(ctx, d)
				if err != nil {
					return err
				}
				if a.jsonOut {
					return writeJSON(cmd.OutOrStdout(), addResult{Index: idx})
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), idx)
				return err
			})
		},
	}
	addInputFlags(cmd)
	return cmd
}
