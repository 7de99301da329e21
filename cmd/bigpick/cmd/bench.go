package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bigpick/bigpick/internal/config"
	"github.com/bigpick/bigpick/internal/dataset"
	"github.com/bigpick/bigpick/internal/telemetry"
	"github.com/bigpick/bigpick/pkg/listcore"
)

// benchQueries simulates a typing burst: each prefix of a narrowing query,
// then a backspace back to a broader one. Substring prefixes exercise the
// refinement fast path; the final broadening forces a full re-evaluation.
var benchQueries = []string{
	"a", "am", "amb", "ambe", "amber",
	"amber h", "amber ha", "amber harbor",
	"amber ha", "amber",
	"zephyr", "",
}

// newBenchCmd creates the bench command: it replays a query burst against
// a generated dataset and reports latency and outcome counts.
func newBenchCmd() *cobra.Command {
	var (
		size       int
		seed       int64
		rounds     int
		matcher    string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark filtering over a generated dataset",
		Long: `Bench generates a deterministic dataset and replays a typing burst
against it, reporting search latency buckets and outcome counts:

  bigpick bench --size 1000000 --rounds 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			cfg.Search.DebounceWindow = 0
			cfg.Search.Workers = 0
			if matcher != "" {
				cfg.Search.Matcher = matcher
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			gen, err := dataset.NewGenerator(4, cfg.List.MaxDatasetSize)
			if err != nil {
				return err
			}
			data, err := gen.Generate(size, seed)
			if err != nil {
				return err
			}

			list, err := listcore.New(cfg, func() *struct{} { return &struct{}{} })
			if err != nil {
				return err
			}
			if err := list.SetRecords(data); err != nil {
				return err
			}

			start := time.Now()
			for r := 0; r < rounds; r++ {
				for _, q := range benchQueries {
					list.Submit(q)
					resp := <-list.Responses()
					if _, err := list.Apply(resp); err != nil {
						return err
					}
				}
			}
			elapsed := time.Since(start)

			snap := list.Metrics().Snapshot()
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}
			printBenchReport(cmd, size, rounds, elapsed, snap)
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", 1_000_000, "Number of generated rows")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Generator seed")
	cmd.Flags().IntVar(&rounds, "rounds", 3, "Times to replay the query burst")
	cmd.Flags().StringVar(&matcher, "matcher", "", "Matcher strategy: substring or fuzzy")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the metrics snapshot as JSON")

	return cmd
}

func printBenchReport(cmd *cobra.Command, size, rounds int, elapsed time.Duration, snap telemetry.Snapshot) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "bench: %d rows, %d rounds, %d queries in %s\n",
		size, rounds, snap.TotalSearches, elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "outcomes: %d applied, %d superseded, %d failed\n",
		snap.Applied, snap.Superseded, snap.Failed)

	fmt.Fprintln(out, "latency:")
	buckets := []telemetry.LatencyBucket{
		telemetry.BucketSub1, telemetry.BucketSub10, telemetry.BucketSub50,
		telemetry.BucketSub250, telemetry.BucketSlow,
	}
	for _, b := range buckets {
		fmt.Fprintf(out, "  %-8s %d\n", b, snap.Latency[b])
	}
}
