package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/facevec/facestore"
	"github.com/viant/facevec/vector"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every stored descriptor in insertion order",
		Long: `Print every stored descriptor in insertion order, one per line prefixed by
its index. With --json the whole table is printed as an array of arrays.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *facestore.Store) error {
				descs, err := s.List(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if a.jsonOut {
					if descs == nil {
						descs = []vector.Descriptor{}
					}
					return writeJSON(out, descs)
				}
				for i, d := range descs {
					fmt.Fprintf(out, "%d\t%s\n", i, formatDescriptor(d))
				}
				return nil
			})
		},
	}
}
