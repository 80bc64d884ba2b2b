package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tgienger/refurb/internal/snapshot"
)

func newExportCommand(deps commandDeps) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every record to a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), deps, func(ctx context.Context, s *session) error {
				if output == "-" {
					data, err := snapshot.Export(ctx, s.store)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(deps.out, string(data))
					return err
				}
				if err := snapshot.ExportFile(ctx, s.store, output); err != nil {
					return err
				}
				s.log.Info("snapshot exported", "file", output)
				if deps.globals.JSON {
					return printJSON(deps.out, map[string]any{"output_path": output})
				}
				_, err := fmt.Fprintf(deps.out, "exported to %s\n", output)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", snapshot.DefaultFilename(), "Output file, - for stdout")
	return cmd
}

func newImportCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a JSON snapshot into the database",
		Long: "Every record in the snapshot overwrites the record with the same id. " +
			"Records not named in the snapshot are left alone.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("import requires exactly one snapshot file")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), deps, func(ctx context.Context, s *session) error {
				res, err := snapshot.ImportFile(ctx, s.store, args[0])
				if err != nil {
					return err
				}
				s.log.Info("snapshot imported", "file", args[0], "records", res.Total())
				if deps.globals.JSON {
					return printJSON(deps.out, res)
				}
				_, err = fmt.Fprintf(deps.out,
					"imported %d projects, %d parts, %d tasks, %d settings, %d photos\n",
					res.Projects, res.Parts, res.Tasks, res.Settings, res.Photos)
				return err
			})
		},
	}
}
