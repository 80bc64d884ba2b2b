package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tgienger/refurb/internal/db"
)

func newSettingsCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and change preferences (currency, bizName)",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print a preference, or its default when unset",
			Args:  exactlyOneKey("settings get"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd.Context(), deps, func(ctx context.Context, s *session) error {
					v, err := s.store.GetSetting(ctx, args[0])
					if err != nil {
						return err
					}
					if deps.globals.JSON {
						return printJSON(deps.out, map[string]string{"id": args[0], "value": v})
					}
					_, err = fmt.Fprintln(deps.out, v)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Store a preference",
			Args: func(cmd *cobra.Command, args []string) error {
				if len(args) != 2 {
					return usageErrorf("settings set requires a key and a value")
				}
				return nil
			},
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd.Context(), deps, func(ctx context.Context, s *session) error {
					if err := s.store.SetSetting(ctx, args[0], args[1]); err != nil {
						return err
					}
					_, err := fmt.Fprintf(deps.out, "%s = %s\n", args[0], args[1])
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "Print every stored preference",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd.Context(), deps, func(ctx context.Context, s *session) error {
					settings, err := s.store.ListSettings(ctx)
					if err != nil {
						return err
					}
					if deps.globals.JSON {
						return printJSON(deps.out, settings)
					}
					for _, st := range settings {
						if _, err := fmt.Fprintf(deps.out, "%s = %s\n", st.ID, db.SettingString(st.Value)); err != nil {
							return err
						}
					}
					return nil
				})
			},
		},
	)
	return cmd
}

func exactlyOneKey(name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return usageErrorf("%s requires exactly one key", name)
		}
		return nil
	}
}
