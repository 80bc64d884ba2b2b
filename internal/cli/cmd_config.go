package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tgienger/refurb/internal/config"
	"gopkg.in/yaml.v3"
)

func newConfigCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the config file",
	}
	cmd.AddCommand(newConfigShowCommand(deps), newConfigInitCommand(deps))
	return cmd
}

func newConfigShowCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(deps.globals)
			if err != nil {
				return err
			}
			if deps.globals.JSON {
				return printJSON(deps.out, cfg)
			}
			enc := yaml.NewEncoder(deps.out)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	}
}

func newConfigInitCommand(deps commandDeps) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file holding the defaults",
		Long:  "Write a config file holding the defaults, plus any --db, --log-level or --log-file overrides. The file goes to --config when given, otherwise ~/.config/refurb/config.yaml.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := deps.globals.ConfigPath
			if path == "" {
				var err error
				if path, err = config.DefaultPath(); err != nil {
					return mapCommandError(err)
				}
			}
			if _, err := os.Stat(path); err == nil && !force {
				return usageErrorf("%s already exists; pass --force to overwrite", path)
			}

			cfg := config.DefaultConfig()
			applyOverrides(cfg, deps.globals)
			if err := cfg.Save(path); err != nil {
				return mapCommandError(err)
			}
			_, err := fmt.Fprintf(deps.out, "wrote %s\n", path)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
