package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"compound-sim/internal/admin"
	"compound-sim/internal/config"
	"compound-sim/internal/logging"
	"compound-sim/internal/process"
	"compound-sim/internal/sim"
)

var (
	exploreConfigPath string
	exploreSchemaPath string
	exploreSeed       uint64
	exploreLogFile    string
	exploreAdminAddr  string
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Run the interactive TUI lab",
	Long:  "explore opens the terminal UI: adjust lambda, mu, T and the Monte Carlo size, then trigger resimulations and watch the path and the terminal-value histogram.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(exploreConfigPath, exploreSchemaPath)
		if err != nil {
			return err
		}

		tui := sim.NewTUIWriter(cfg)
		defer tui.Close()

		var runWriter sim.RunWriter = tui
		var pathWriter sim.PathWriter = tui
		var histWriter sim.HistogramWriter = tui
		cleanup := func() {}
		if exploreLogFile != "" {
			fw, err := sim.NewFileWriter(exploreLogFile, exploreLogFile+".path", exploreLogFile+".hist")
			if err != nil {
				return err
			}
			cleanup = func() { fw.Close() }
			mw := sim.NewMultiWriter(
				[]sim.RunWriter{tui, fw},
				[]sim.PathWriter{tui, fw},
				[]sim.HistogramWriter{tui, fw},
			)
			runWriter, pathWriter, histWriter = mw, mw, mw
		}
		defer cleanup()
		if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" {
			gw, err := sim.NewGreptimeDBWriter(endpoint, greptimeDatabase())
			if err != nil {
				return err
			}
			runWriter = sim.NewMultiWriter(
				[]sim.RunWriter{runWriter, gw},
				[]sim.PathWriter{pathWriter},
				[]sim.HistogramWriter{histWriter},
			)
		}

		var rng *process.PartitionedRNG
		if exploreSeed != 0 {
			rng = process.NewPartitionedRNG(exploreSeed)
		}
		simulator := sim.NewSimulator(labID(), cfg, runWriter, pathWriter, histWriter, rng)

		// The alternate screen owns the terminal; keep slog off it.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		ctx = logging.NewContext(ctx, logging.Discard())

		tui.SetTrigger(func(p process.Params) {
			if _, err := simulator.SetParams(p); err != nil {
				return
			}
			_, _ = simulator.Resimulate(ctx)
		})

		if exploreAdminAddr != "" {
			srv := admin.NewServer(simulator)
			go func() {
				_ = srv.Start(ctx, exploreAdminAddr)
			}()
			tui.SetAdminStatus(true)
		}

		// First picture before any user input.
		if _, err := simulator.Resimulate(ctx); err != nil {
			return err
		}

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		cancel()
		return nil
	},
}

func labID() string {
	if id := os.Getenv("LAB_ID"); id != "" {
		return id
	}
	return "lab-01"
}

func greptimeDatabase() string {
	if db := os.Getenv("GREPTIMEDB_DATABASE"); db != "" {
		return db
	}
	return "public"
}

// loadConfig loads and validates the YAML config, or falls back to the
// built-in defaults when no path is given.
func loadConfig(configPath, schemaPath string) (*config.LabConfig, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath, schemaPath)
}

func init() {
	exploreCmd.Flags().StringVar(&exploreConfigPath, "config", "", "Path to lab configuration YAML (defaults built in)")
	exploreCmd.Flags().StringVar(&exploreSchemaPath, "schema", "schemas/lab.cue", "Path to CUE schema file")
	exploreCmd.Flags().Uint64Var(&exploreSeed, "seed", 0, "Master random seed (0 = seed from the clock)")
	exploreCmd.Flags().StringVar(&exploreLogFile, "log-file", "", "Path to export run/path/histogram logs (JSONL)")
	exploreCmd.Flags().StringVar(&exploreAdminAddr, "admin-addr", ":8080", "Admin UI listen address (empty disables)")
}
