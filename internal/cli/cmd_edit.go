package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tgienger/refurb/internal/db"
	"github.com/tgienger/refurb/internal/projection"
)

var removeTargets = map[string]db.Collection{
	"project": db.Projects,
	"part":    db.Parts,
	"task":    db.Tasks,
	"photo":   db.Photos,
}

// newRemoveCommand deletes one record by id. Nothing cascades: parts and
// tasks of a removed project stay, shown as unassigned.
func newRemoveCommand(deps commandDeps, kind string) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: fmt.Sprintf("Remove a %s", kind),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("%s rm requires exactly one id", kind)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return usageErrorf("%s rm is permanent; pass --yes to confirm", kind)
			}
			return withStore(cmd.Context(), deps, func(ctx context.Context, s *session) error {
				if err := s.store.Remove(ctx, removeTargets[kind], args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(deps.out, "removed %s %s\n", kind, args[0])
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the removal")
	return cmd
}

func newAdvanceCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Move a part or task to its next status",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "part <id>",
			Short: "needed → ordered → received → installed → needed",
			Args:  exactlyOneID("advance part"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd.Context(), deps, func(ctx context.Context, s *session) error {
					p, err := s.store.GetPart(ctx, args[0])
					if err != nil {
						return err
					}
					next := projection.AdvancePart(p)
					if err := s.store.ReplacePart(ctx, next); err != nil {
						return err
					}
					return printAdvanced(deps, next.ID, string(p.Status), string(next.Status))
				})
			},
		},
		&cobra.Command{
			Use:   "task <id>",
			Short: "todo → doing → done → todo",
			Args:  exactlyOneID("advance task"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd.Context(), deps, func(ctx context.Context, s *session) error {
					t, err := s.store.GetTask(ctx, args[0])
					if err != nil {
						return err
					}
					next := projection.AdvanceTask(t)
					if err := s.store.ReplaceTask(ctx, next); err != nil {
						return err
					}
					return printAdvanced(deps, next.ID, string(t.Status), string(next.Status))
				})
			},
		},
	)
	return cmd
}

func exactlyOneID(name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return usageErrorf("%s requires exactly one id", name)
		}
		return nil
	}
}

func printAdvanced(deps commandDeps, id, from, to string) error {
	if deps.globals.JSON {
		return printJSON(deps.out, map[string]string{"id": id, "from": from, "to": to})
	}
	_, err := fmt.Fprintf(deps.out, "%s: %s → %s\n", id, from, to)
	return err
}
