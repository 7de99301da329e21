package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigpick/bigpick/internal/config"
	"github.com/bigpick/bigpick/internal/dataset"
	"github.com/bigpick/bigpick/internal/ui"
)

// newDemoCmd creates the demo command: an interactive picker over a
// generated dataset, no stdin required.
func newDemoCmd() *cobra.Command {
	var (
		size    int
		seed    int64
		multi   bool
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the picker over a generated dataset",
		Long: `Demo generates a deterministic labeled dataset and opens the picker
over it. Useful for trying out navigation and filtering at scale:

  bigpick demo --size 1000000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()

			gen, err := dataset.NewGenerator(4, cfg.List.MaxDatasetSize)
			if err != nil {
				return err
			}
			data, err := gen.Generate(size, seed)
			if err != nil {
				return err
			}

			opts := ui.NewOptions(cmd.OutOrStdout(),
				ui.WithMulti(multi),
				ui.WithNoColor(noColor),
				ui.WithHeader(fmt.Sprintf("bigpick demo · %d rows (seed %d)", size, seed)),
			)
			if !ui.Interactive(opts) {
				n, err := ui.RunPlain(cmd.OutOrStdout(), cfg, data, "")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.ErrOrStderr(), "%d rows\n", n)
				return err
			}

			widget, err := ui.NewWidget(cfg, data, opts)
			if err != nil {
				return err
			}
			res, err := widget.Run(cmd.Context())
			if err != nil {
				return err
			}
			if res.Aborted {
				return nil
			}
			for _, text := range res.Texts {
				fmt.Fprintln(cmd.OutOrStdout(), text)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", 100_000, "Number of generated rows")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Generator seed")
	cmd.Flags().BoolVarP(&multi, "multi", "m", false, "Allow selecting multiple rows with tab")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")

	return cmd
}
