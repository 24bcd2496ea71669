package cmd

import (
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/mandrykarina/GC/internal/bench"
	"github.com/mandrykarina/GC/internal/gc"
	"github.com/mandrykarina/GC/internal/scenario"
	"github.com/mandrykarina/GC/pkg/model"
)

var (
	benchSizes      string
	benchGraphs     string
	benchCollectors string
	benchObjectSize uint64
	benchWorkers    int
	benchName       string
	benchOutput     string
)

// benchCmd times reclamation over a sweep of graph sizes.
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Time each collector reclaiming graphs of increasing size",
	Long: `Build linear, cycle and tree graphs of each size, drop their roots, and
time how long each collector takes to reclaim them.

Unset flags fall back to the bench section of the configuration. With --name
the results are exported to the configured storage.`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	binName := BinName()
	benchCmd.Example = `  # Sweep the configured sizes
  ` + binName + ` bench

  # Cycles only, four workers, exported as "cycles"
  ` + binName + ` bench --sizes 1000,10000,100000 --graphs cycle --workers 4 --name cycles`

	benchCmd.Flags().StringVar(&benchSizes, "sizes", "", "Comma-separated object counts")
	benchCmd.Flags().StringVar(&benchGraphs, "graphs", "", "Comma-separated graph shapes: linear,cycle,tree")
	benchCmd.Flags().StringVar(&benchCollectors, "collectors", "", "Comma-separated collectors (default: reference_counting,mark_sweep)")
	benchCmd.Flags().Uint64Var(&benchObjectSize, "object-size", 0, "Size of each object in bytes")
	benchCmd.Flags().IntVarP(&benchWorkers, "workers", "w", 0, "Number of cases measured in parallel")
	benchCmd.Flags().StringVar(&benchName, "name", "", "Export the results under this name")
	benchCmd.Flags().StringVarP(&benchOutput, "output", "o", "", "Write the results as JSON to this file")
}

func runBench(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := benchConfig()
	if err != nil {
		return err
	}

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	cases, err := svc.Bench(ctx, cfg, benchName)
	if err != nil {
		return err
	}

	reports.Format(cases, GetLogger())
	return writeJSONOutput[[]model.BenchCase](benchOutput, cases)
}

// benchConfig merges the flags over the configured sweep.
func benchConfig() (bench.Config, error) {
	cfg, err := bench.FromConfig(&GetConfig().Bench)
	if err != nil {
		return bench.Config{}, err
	}

	if benchSizes != "" {
		if cfg.Sizes, err = parseInts(benchSizes); err != nil {
			return bench.Config{}, err
		}
	}
	if benchGraphs != "" {
		cfg.Graphs = nil
		for _, name := range splitList(benchGraphs) {
			kind, err := scenario.ParseGraphKind(name)
			if err != nil {
				return bench.Config{}, err
			}
			cfg.Graphs = append(cfg.Graphs, kind)
		}
		cfg.Graphs = lo.Uniq(cfg.Graphs)
	}
	if benchCollectors != "" {
		cfg.Collectors = nil
		for _, name := range splitList(benchCollectors) {
			kind, _, err := gc.ParseKind(name)
			if err != nil {
				return bench.Config{}, err
			}
			cfg.Collectors = append(cfg.Collectors, kind)
		}
		cfg.Collectors = lo.Uniq(cfg.Collectors)
	}
	if benchObjectSize != 0 {
		cfg.ObjectSize = benchObjectSize
	}
	if benchWorkers != 0 {
		cfg.Workers = benchWorkers
	}
	return cfg, cfg.Validate()
}
