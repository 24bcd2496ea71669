package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mandrykarina/GC/pkg/model"
)

var (
	historyLimit  int
	historyDelete bool
	historyOutput string
)

// historyCmd lists stored runs or shows one of them.
var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List stored comparison runs, or show or delete one",
	Long: `List the most recent comparison runs from the run history database.

With a run id the full comparison is printed. Runs missing from the database
are read back from their exported report.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	binName := BinName()
	historyCmd.Example = `  # Last 10 runs
  ` + binName + ` history --limit 10

  # Show one run
  ` + binName + ` history 0b6f4c2e-8d0a-4a57-9f57-3c1c2a9f1e10

  # Delete one run and its exported files
  ` + binName + ` history 0b6f4c2e-8d0a-4a57-9f57-3c1c2a9f1e10 --delete`

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 0, "Number of runs to list (default: simulation.history_size)")
	historyCmd.Flags().BoolVar(&historyDelete, "delete", false, "Delete the given run")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "", "Write the runs as JSON to this file")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := GetLogger()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	if len(args) == 1 {
		runID := args[0]
		if historyDelete {
			if err := svc.DeleteRun(ctx, runID); err != nil {
				return err
			}
			log.Info("Run %s deleted", runID)
			return nil
		}
		cmp, err := svc.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		reports.Format(cmp, log)
		return writeJSONOutput(historyOutput, cmp)
	}

	runs, err := svc.History(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		log.Info("No runs recorded")
		return nil
	}

	log.Info("  %-36s  %-12s  %10s  %-6s  %s", "RUN ID", "SCENARIO", "OPERATIONS", "AGREE", "CREATED")
	for _, r := range runs {
		log.Info("  %-36s  %-12s  %10d  %-6v  %s",
			r.RunID, r.ScenarioName, r.Operations, r.Agree, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return writeJSONOutput[[]*model.Comparison](historyOutput, runs)
}
