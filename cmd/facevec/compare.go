package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/facevec/config"
	"github.com/viant/facevec/facestore"
	"github.com/viant/facevec/vector"
)

type compareResult struct {
	Matched  bool     `json:"matched"`
	Index    *uint64  `json:"index,omitempty"`
	Nearest  *uint64  `json:"nearest,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}

func newCompareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [descriptor]",
		Short: "Print the index of the stored descriptor matching the given one",
		Long: `Find the stored descriptor closest to the given one by Euclidean distance.
Its index is printed when the distance is within --threshold; otherwise
"none" is printed. Ties resolve to the lowest index. The table is not changed.

Use --verbose to also report the nearest entry and its distance.
Use --pushdown (sqlite only) to run the scan inside SQLite instead of loading
the table into memory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDescriptor(cmd, args)
			if err != nil {
				return err
			}
			verbose := mustGetBool(cmd, "verbose")
			if mustGetBool(cmd, "pushdown") {
				return a.comparePushdown(cmd, d, verbose)
			}
			return a.withStore(cmd, func(ctx context.Context, s *facestore.Store) error {
				var res compareResult
				idx, ok, err := s.Compare(ctx, d)
				if err != nil {
					return err
				}
				if ok {
					res.Matched, res.Index = true, &idx
				}
				if verbose {
					n, found, err := s.Nearest(ctx, d)
					if err != nil {
						return err
					}
					if found {
						res.Nearest, res.Distance = &n.Position, &n.Distance
					}
				}
				return a.printCompare(cmd, res)
			})
		},
	}
	addInputFlags(cmd)
	cmd.Flags().BoolP("verbose", "v", false, "Also report the nearest entry and its distance")
	cmd.Flags().Bool("pushdown", false, "Scan inside SQLite with vec_l2 (sqlite backend only)")
	return cmd
}

func (a *app) comparePushdown(cmd *cobra.Command, d vector.Descriptor, verbose bool) error {
	if a.cfg.Backend.Driver != config.DriverSQLite {
		return fmt.Errorf("--pushdown requires the sqlite backend, not %s", a.cfg.Backend.Driver)
	}
	table, err := a.openSQLiteTable()
	if err != nil {
		return err
	}
	defer table.Close()

	pos, dist, found, err := table.Nearest(commandContext(cmd), d)
	if err != nil {
		return err
	}
	var res compareResult
	if found && dist <= a.cfg.Threshold {
		res.Matched, res.Index = true, &pos
	}
	if verbose && found {
		res.Nearest, res.Distance = &pos, &dist
	}
	return a.printCompare(cmd, res)
}

func (a *app) printCompare(cmd *cobra.Command, res compareResult) error {
	out := cmd.OutOrStdout()
	if a.jsonOut {
		return writeJSON(out, res)
	}
	if res.Matched {
		fmt.Fprintln(out, *res.Index)
	} else {
		fmt.Fprintln(out, "none")
	}
	if res.Nearest != nil {
		fmt.Fprintf(out, "nearest %d at distance %g\n", *res.Nearest, *res.Distance)
	}
	return nil
}
