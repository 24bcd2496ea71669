package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mandrykarina/GC/internal/formatter"
	"github.com/mandrykarina/GC/internal/scenario"
	"github.com/mandrykarina/GC/internal/service"
	"github.com/mandrykarina/GC/internal/simulation"
	"github.com/mandrykarina/GC/pkg/model"
)

var (
	compareFile       string
	compareDir        string
	comparePreset     string
	compareObjects    int
	compareObjectSize uint64
	compareHeap       uint64
	compareCollectors string
	compareSave       bool
	compareStatsBlock bool
	compareOutput     string
)

// compareCmd replays one scenario against several collectors.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare collectors on a scenario file or a generated scenario",
	Long: `Replay the same scenario against several collectors and report how much
memory each one reclaimed.

The scenario is read from --file, or generated from --preset (linear, cycle,
tree, or the aliases basic, cycle_leak and cascade). With --dir every
scenario file in the directory is compared in turn. Generated parameters
default to the simulation section of the configuration.

With --save the run is stored in the run history database and its report is
exported to the configured storage.`,
	Args: cobra.NoArgs,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	binName := BinName()
	compareCmd.Example = `  # Reference counting leaks a cycle, mark-sweep does not
  ` + binName + ` compare --preset cycle_leak -n 100 -s 64

  # Replay a file against all three collectors and keep it in history
  ` + binName + ` compare -f ./scenarios/tree.json --collectors reference_counting,mark_sweep,cascade --save

  # Compare every scenario in a directory, including .json.gz and .json.zst files
  ` + binName + ` compare -d ./scenarios --stats-block

  # Print stats blocks for scripts
  ` + binName + ` compare --preset tree -n 31 --stats-block`

	compareCmd.Flags().StringVarP(&compareFile, "file", "f", "", "Scenario file")
	compareCmd.Flags().StringVarP(&compareDir, "dir", "d", "", "Compare every scenario file in this directory")
	compareCmd.Flags().StringVar(&comparePreset, "preset", "", "Generated scenario: linear, cycle, tree, basic, cycle_leak or cascade")
	compareCmd.Flags().IntVarP(&compareObjects, "objects", "n", 0, "Number of generated objects")
	compareCmd.Flags().Uint64VarP(&compareObjectSize, "size", "s", 0, "Size of each generated object in bytes")
	compareCmd.Flags().Uint64Var(&compareHeap, "heap", 0, "Heap limit of the generated scenario in bytes")
	compareCmd.Flags().StringVar(&compareCollectors, "collectors", "", "Comma-separated collectors (default: reference_counting,mark_sweep)")
	compareCmd.Flags().BoolVar(&compareSave, "save", false, "Store the run in history and export its report")
	compareCmd.Flags().BoolVar(&compareStatsBlock, "stats-block", false, "Print one stats block per collector")
	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", "", "Write the comparison as JSON to this file")
	compareCmd.MarkFlagsMutuallyExclusive("file", "preset", "dir")
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := GetLogger()
	collectors := splitList(compareCollectors)

	if compareDir != "" {
		return compareDirectory(cmd, collectors)
	}

	var cmp *model.Comparison
	if compareSave {
		svc, err := newService(ctx)
		if err != nil {
			return err
		}
		defer svc.Stop()

		if compareFile != "" {
			sc, err := scenario.LoadFile(compareFile)
			if err != nil {
				return err
			}
			cmp, err = svc.RunScenario(ctx, sc, collectors...)
			if err != nil {
				return err
			}
		} else {
			cmp, err = svc.Simulate(ctx, service.SimulateRequest{
				HeapSize:     compareHeap,
				NumObjects:   compareObjects,
				ObjectSize:   compareObjectSize,
				ScenarioType: comparePreset,
				Collectors:   collectors,
			})
			if err != nil {
				return err
			}
		}
		log.Info("Run %s saved", cmp.RunID)
	} else {
		sc, err := loadOrGenerate()
		if err != nil {
			return err
		}
		cfg := GetConfig()
		runner := simulation.NewRunner(simulation.Config{
			LogSteps: cfg.Simulation.LogSteps,
			Snapshot: cfg.Simulation.Snapshot,
		}, simulation.WithLogger(log))
		cmp, err = runner.Compare(ctx, sc, collectors...)
		if err != nil {
			return err
		}
	}

	if compareStatsBlock {
		if err := formatter.WriteStatsBlocks(cmd.OutOrStdout(), cmp); err != nil {
			return err
		}
	} else {
		reports.Format(cmp, log)
	}
	return writeJSONOutput(compareOutput, cmp)
}

// loadOrGenerate reads --file, or generates --preset with the flag values
// filled in from the simulation defaults.
func loadOrGenerate() (*model.Scenario, error) {
	if compareFile != "" {
		return scenario.LoadFile(compareFile)
	}

	cfg := GetConfig()
	def := cfg.Simulation
	name := comparePreset
	if name == "" {
		name = def.Scenario
	}
	n := compareObjects
	if n == 0 {
		n = def.NumObjects
	}
	size := compareObjectSize
	if size == 0 {
		size = def.ObjectSize
	}
	heap := compareHeap
	if heap == 0 {
		heap = def.HeapSize
	}

	kind, err := scenario.ParseGraphKind(name)
	if err != nil {
		return nil, err
	}
	gen := scenario.GenerateConfig{Kind: kind, NumObjects: n, ObjectSize: size, HeapSize: heap}
	if err := gen.Validate(&cfg.Limits); err != nil {
		return nil, fmt.Errorf("invalid scenario parameters: %w", err)
	}
	return scenario.Preset(name, n, size, heap)
}

// compareDirectory compares every scenario file in --dir. Files that fail
// to load are skipped by the loader.
func compareDirectory(cmd *cobra.Command, collectors []string) error {
	ctx := cmd.Context()
	log := GetLogger()

	scenarios, err := scenario.LoadDir(compareDir, log)
	if err != nil {
		return err
	}

	run := func(sc *model.Scenario) (*model.Comparison, error) {
		cfg := GetConfig()
		return simulation.NewRunner(simulation.Config{
			LogSteps: cfg.Simulation.LogSteps,
			Snapshot: cfg.Simulation.Snapshot,
		}, simulation.WithLogger(log)).Compare(ctx, sc, collectors...)
	}
	if compareSave {
		svc, err := newService(ctx)
		if err != nil {
			return err
		}
		defer svc.Stop()
		run = func(sc *model.Scenario) (*model.Comparison, error) {
			return svc.RunScenario(ctx, sc, collectors...)
		}
	}

	results := make([]*model.Comparison, 0, len(scenarios))
	for _, sc := range scenarios {
		cmp, err := run(sc)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		if compareStatsBlock {
			if err := formatter.WriteStatsBlocks(cmd.OutOrStdout(), cmp); err != nil {
				return err
			}
		} else {
			reports.Format(cmp, log)
		}
		results = append(results, cmp)
	}
	log.Info("Compared %d scenarios from %s", len(results), compareDir)
	return writeJSONOutput(compareOutput, results)
}
