// Package cmd provides the CLI commands for BigPick.
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bigpick/bigpick/internal/config"
	"github.com/bigpick/bigpick/internal/logging"
	"github.com/bigpick/bigpick/internal/ui"
	"github.com/bigpick/bigpick/pkg/version"
)

// Debug logging flag
var (
	debugMode      bool
	loggingCleanup func()
)

// lineRecords adapts stdin lines to the record collection interface.
type lineRecords []string

func (r lineRecords) Len() int          { return len(r) }
func (r lineRecords) Text(i int) string { return r[i] }

// NewRootCmd creates the root command for the bigpick CLI.
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		query      string
		filterOnly bool
		multi      bool
		noColor    bool
		header     string
		matcher    string
	)

	cmd := &cobra.Command{
		Use:   "bigpick",
		Short: "Fast fuzzy picker for huge line streams",
		Long: `BigPick reads lines on stdin and opens an interactive picker over
them: type to filter, move with the arrow keys, accept with enter.

The filter index handles millions of rows; typing stays responsive
because stale search results are discarded, never applied.

Picked lines are written to stdout, so bigpick composes with pipes:

  git ls-files | bigpick --multi | xargs wc -l`,
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Help()
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if matcher != "" {
				cfg.Search.Matcher = matcher
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			records, err := readRecords(cmd.InOrStdin())
			if err != nil {
				return err
			}

			// Plain one-shot mode evaluates the query and prints every
			// match. The interactive widget renders on stderr so picked
			// lines compose with pipes.
			if filterOnly || !ui.Interactive(ui.NewOptions(os.Stderr)) {
				_, err := ui.RunPlain(cmd.OutOrStdout(), cfg, records, query)
				return err
			}

			return runPicker(cmd, cfg, records,
				ui.WithMulti(multi),
				ui.WithNoColor(noColor),
				ui.WithInitialQuery(query),
				ui.WithHeader(header),
			)
		},
	}

	cmd.SetVersionTemplate("bigpick version {{.Version}}\n")

	cmd.Flags().StringVarP(&query, "query", "q", "", "Initial filter query")
	cmd.Flags().BoolVar(&filterOnly, "filter", false, "Print matches for --query and exit (no UI)")
	cmd.Flags().BoolVarP(&multi, "multi", "m", false, "Allow selecting multiple lines with tab")
	cmd.Flags().StringVar(&header, "header", "", "Title line shown above the prompt")
	cmd.Flags().StringVar(&matcher, "matcher", "", "Matcher strategy: substring or fuzzy")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.bigpick/logs/")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newDemoCmd())
	cmd.AddCommand(newBenchCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// readRecords reads newline-delimited records from in.
func readRecords(in io.Reader) (lineRecords, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines lineRecords
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return lines, nil
}

// runPicker runs the interactive widget and prints the accepted lines.
func runPicker(cmd *cobra.Command, cfg *config.Config, records lineRecords, opts ...ui.Option) error {
	widget, err := ui.NewWidget(cfg, records, ui.NewOptions(os.Stderr, opts...))
	if err != nil {
		return err
	}

	res, err := widget.Run(cmd.Context())
	if err != nil {
		return err
	}
	if res.Aborted {
		return fmt.Errorf("aborted")
	}

	for _, text := range res.Texts {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), text); err != nil {
			return err
		}
	}
	return nil
}

// startLogging starts debug logging if the flag is set.
func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}

	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("Debug logging enabled",
		slog.String("log_file", logging.DefaultLogPath()))
	return nil
}

// stopLogging stops debug logging.
func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		slog.Info("Debug logging stopped")
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
