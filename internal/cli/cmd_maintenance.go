package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tgienger/refurb/internal/db"
)

func newClearCommand(deps commandDeps) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every record in every collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return usageErrorf("clear deletes everything permanently; pass --yes to confirm")
			}
			return withStore(cmd.Context(), deps, func(ctx context.Context, s *session) error {
				total := 0
				for _, c := range db.Collections {
					n, err := s.store.Count(ctx, c)
					if err != nil {
						return err
					}
					total += n
				}
				if err := s.store.ClearAll(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintf(deps.out, "all data cleared (%d records)\n", total)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting all data")
	return cmd
}

func newSweepCommand(deps commandDeps) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove orphaned photos and unlink parts and tasks from deleted projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return usageErrorf("sweep modifies records; pass --yes to confirm")
			}
			return withStore(cmd.Context(), deps, func(ctx context.Context, s *session) error {
				res, err := s.store.SweepOrphans(ctx)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, res)
				}
				_, err = fmt.Fprintf(deps.out, "removed %d photos, detached %d parts and %d tasks\n",
					res.PhotosRemoved, res.PartsDetached, res.TasksDetached)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the sweep")
	return cmd
}
