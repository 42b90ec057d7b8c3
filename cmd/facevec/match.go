package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/facevec/facestore"
)

type matchResult struct {
	Index   uint64 `json:"index"`
	Face    uint64 `json:"face"`
	Matched bool   `json:"matched"`
}

func newMatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match [descriptor]",
		Short: "Recognize a descriptor, enrolling it when it is new",
		Long: `Compare the descriptor against the table and, when nothing is within the
threshold, add it. Faces are reported 1-based ("face #1" is index 0).

By default this is a compare followed by an add, so two concurrent callers
may both enroll the same face. --atomic does both under one lock.

Examples:
  facevec match '[0.12, -0.03, 0.25]'
  facevec match --atomic --file face.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDescriptor(cmd, args)
			if err != nil {
				return err
			}
			atomic := mustGetBool(cmd, "atomic")
			return a.withStore(cmd, func(ctx context.Context, s *facestore.Store) error {
				var (
					idx     uint64
					matched bool
				)
				if atomic {
					idx, matched, err = s.FindOrAdd(ctx, d)
				} else {
					idx, matched, err = s.Compare(ctx, d)
					if err == nil && !matched {
						idx, err = s.Add(ctx, d)
					}
				}
				if err != nil {
					return err
				}
				res := matchResult{Index: idx, Face: idx + 1, Matched: matched}
				if a.jsonOut {
					return writeJSON(cmd.OutOrStdout(), res)
				}
				if matched {
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "Face recognized! This is face #%d\n", res.Face)
				} else {
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "New face detected! This is face #%d\n", res.Face)
				}
				return err
			})
		},
	}
	addInputFlags(cmd)
	cmd.Flags().Bool("atomic", false, "Compare and add under a single lock")
	return cmd
}
