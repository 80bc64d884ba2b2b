package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tgienger/refurb/internal/ui"
)

type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// GlobalOptions are the persistent flags shared by every command. Empty
// values leave the config file (or its defaults) in charge.
type GlobalOptions struct {
	DBPath     string
	ConfigPath string
	LogLevel   string
	LogFile    string
	JSON       bool
}

var runTUIFn = func(ctx context.Context, s *session) error {
	return ui.Run(ctx, s.store, ui.Options{
		Month:  s.cfg.UI.Month,
		Logger: s.log,
	})
}

func NewRootCommand(out io.Writer, build BuildInfo) *cobra.Command {
	globals := &GlobalOptions{}
	deps := commandDeps{out: out, globals: globals}

	cmd := &cobra.Command{
		Use:           "refurb",
		Short:         "Track vehicle restoration projects, parts, tasks and photos",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), deps, runTUIFn)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%w", err)
	})

	flags := cmd.PersistentFlags()
	flags.StringVar(&globals.DBPath, "db", "", "Database file (overrides database.path)")
	flags.StringVar(&globals.ConfigPath, "config", "", "Config file (default: search $REFURB_CONFIG, ./refurb.yaml, ~/.config/refurb/config.yaml)")
	flags.StringVar(&globals.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&globals.LogFile, "log-file", "", "Log file (overrides log.file)")
	flags.BoolVar(&globals.JSON, "json", false, "Print JSON output")

	cmd.AddCommand(
		newVersionCommand(deps, build),
		newExportCommand(deps),
		newImportCommand(deps),
		newPartsCommand(deps),
		newTasksCommand(deps),
		newCalendarCommand(deps),
		newProjectCommand(deps),
		newPartCommand(deps),
		newTaskCommand(deps),
		newPhotoCommand(deps),
		newAdvanceCommand(deps),
		newSettingsCommand(deps),
		newClearCommand(deps),
		newSweepCommand(deps),
		newConfigCommand(deps),
	)
	return cmd
}

func newVersionCommand(deps commandDeps, build BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.globals.JSON {
				return printJSON(deps.out, build)
			}
			_, err := fmt.Fprintf(deps.out, "refurb %s (commit: %s, built: %s)\n", build.Version, build.Commit, build.BuildTime)
			return err
		},
	}
}
