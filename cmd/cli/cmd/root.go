package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mandrykarina/GC/pkg/config"
	"github.com/mandrykarina/GC/pkg/pprof"
	"github.com/mandrykarina/GC/pkg/telemetry"
	"github.com/mandrykarina/GC/pkg/utils"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	logger    utils.Logger
	appConfig *config.Config

	// Pprof flags
	pprofEnabled  bool
	pprofDir      string
	pprofProfiles string
	pprofCPURate  int

	pprofCollector    *pprof.Collector
	telemetryShutdown telemetry.ShutdownFunc
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gcsim",
	Short: "A garbage collection simulator",
	Long: `gcsim replays heap scenarios against a reference counting collector and a
mark-sweep collector and reports how much memory each one reclaims.

Scenarios are JSON files of allocate, root, reference and collect operations,
or are generated from linear, cycle and tree object graphs. Results can be
compared side by side, benchmarked across graph sizes, stored in a run
history database and served over an HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		output, err := utils.OpenLogOutput(cfg.Log.OutputPath)
		if err != nil {
			return err
		}
		logger = utils.NewLogger(level, cfg.Log.Format, output)
		utils.SetGlobalLogger(logger)

		shutdown, err := telemetry.Init(cmd.Context())
		if err != nil {
			logger.Warn("Telemetry disabled: %v", err)
		}
		telemetryShutdown = shutdown

		if pprofEnabled {
			profiles, err := pprof.ParseProfileTypes(pprofProfiles)
			if err != nil {
				return err
			}
			collector, err := pprof.NewCollector(&pprof.Config{
				OutputDir:     pprofDir,
				Profiles:      profiles,
				CPURate:       pprofCPURate,
				BlockRate:     1,
				MutexFraction: 1,
			})
			if err != nil {
				return err
			}
			if err := collector.Start(); err != nil {
				return err
			}
			pprofCollector = collector
			logger.Info("pprof collection started (dir: %s)", pprofDir)
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if pprofCollector != nil {
			logger.Info("Stopping pprof collection...")
			paths, err := pprofCollector.Stop()
			if err != nil {
				logger.Warn("Failed to write profiles: %v", err)
			}
			for _, p := range paths {
				logger.Info("pprof data saved to: %s", p)
			}
		}
		if telemetryShutdown != nil {
			if err := telemetryShutdown(context.Background()); err != nil {
				logger.Warn("Failed to flush traces: %v", err)
			}
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default: ./config.yaml, ./configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	// Pprof flags
	rootCmd.PersistentFlags().BoolVar(&pprofEnabled, "pprof", false, "Profile the simulator while the command runs")
	rootCmd.PersistentFlags().StringVar(&pprofDir, "pprof-dir", "./pprof", "Output directory for pprof data")
	rootCmd.PersistentFlags().StringVar(&pprofProfiles, "pprof-profiles", "cpu,heap", "Comma-separated profile types: cpu,heap,allocs,goroutine,block,mutex")
	rootCmd.PersistentFlags().IntVar(&pprofCPURate, "pprof-cpu-rate", 0, "CPU profiling rate in Hz (0 keeps the runtime default)")

	// Set dynamic example using actual binary name
	binName := BinName()
	rootCmd.Example = `  # Replay a scenario file against both collectors
  ` + binName + ` compare -f ./scenarios/cycle.json

  # Compare the collectors on a generated cycle of 100 objects
  ` + binName + ` compare --preset cycle_leak -n 100 -s 64

  # Write a generated tree scenario to a file
  ` + binName + ` generate --type tree -n 31 -o tree.json

  # Time reclamation for growing graphs, with CPU and heap profiles
  ` + binName + ` bench --sizes 1000,10000 --pprof

  # Serve the HTTP API
  ` + binName + ` serve -p 8080`
}

// GetLogger returns the configured logger
func GetLogger() utils.Logger {
	if logger == nil {
		return &utils.NullLogger{}
	}
	return logger
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	if appConfig == nil {
		return config.Default()
	}
	return appConfig
}

// BinName returns the base name of the current executable
func BinName() string {
	return filepath.Base(os.Args[0])
}
