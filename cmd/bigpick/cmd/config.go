package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bigpick/bigpick/configs"
	"github.com/bigpick/bigpick/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage the bigpick configuration file.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. Config file (--config or ~/.config/bigpick/config.yaml)
  3. Environment variables (BIGPICK_*)`,
		Example: `  # Create a config file from the annotated template
  bigpick config init

  # Show effective configuration (merged from all sources)
  bigpick config show

  # Print config file path
  bigpick config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigExampleCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create configuration file from template",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.UserConfigPath()
			if config.UserConfigExists() && !force {
				return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", path)
			}

			if err := os.MkdirAll(config.UserConfigDir(), 0o755); err != nil {
				return fmt.Errorf("creating config directory: %w", err)
			}
			if err := os.WriteFile(path, []byte(configs.ConfigTemplate), 0o644); err != nil {
				return fmt.Errorf("writing config file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long: `Show the effective configuration after merging defaults, the config
file, and BIGPICK_* environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configPath
			if path == "" && config.UserConfigExists() {
				path = config.UserConfigPath()
			}

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.UserConfigPath())
			return nil
		},
	}
}

func newConfigExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Print the annotated configuration template",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), configs.ConfigTemplate)
			return err
		},
	}
}
