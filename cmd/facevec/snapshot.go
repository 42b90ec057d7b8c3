package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/viant/facevec/facestore"
	"github.com/viant/facevec/snapshot"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the table as a compressed snapshot",
		Long: `Write every stored descriptor, in order, as a zstd-compressed snapshot to
--out or stdout.

Examples:
  facevec export --out faces.fvz
  facevec export --backend postgres --dsn "$DATABASE_URL" > faces.fvz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := mustGetString(cmd, "out")
			return a.withStore(cmd, func(ctx context.Context, s *facestore.Store) (err error) {
				var w io.Writer = cmd.OutOrStdout()
				if path != "" && path != "-" {
					f, ferr := os.Create(path)
					if ferr != nil {
						return fmt.Errorf("creating %s: %w", path, ferr)
					}
					defer func() {
						if cerr := f.Close(); cerr != nil && err == nil {
							err = cerr
						}
					}()
					w = f
				}
				n, err := snapshot.Export(ctx, w, s)
				a.logger.LogSnapshot(ctx, "export", n, err)
				if err != nil {
					return err
				}
				if path != "" && path != "-" {
					fmt.Fprintf(cmd.ErrOrStderr(), "exported %d descriptors to %s\n", n, path)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	return cmd
}

type importResult struct {
	Imported int `json:"imported"`
}

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a snapshot into an empty table",
		Long: `Append every descriptor of a snapshot, in order, to an empty table. Indexes
are preserved. Importing into a table that already holds descriptors fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := mustGetString(cmd, "in")
			var r io.Reader = cmd.InOrStdin()
			if path != "" && path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("opening %s: %w", path, err)
				}
				defer f.Close()
				r = f
			}
			return a.withStore(cmd, func(ctx context.Context, s *facestore.Store) error {
				n, err := snapshot.Import(ctx, r, s)
				a.logger.LogSnapshot(ctx, "import", n, err)
				if err != nil {
					return err
				}
				if a.jsonOut {
					return writeJSON(cmd.OutOrStdout(), importResult{Imported: n})
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d descriptors\n", n)
				return err
			})
		},
	}
	cmd.Flags().StringP("in", "i", "", "Input file (default stdin)")
	return cmd
}
