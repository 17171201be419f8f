package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"aether-sim/internal/admin"
	"aether-sim/internal/logging"
	"aether-sim/internal/observability"
	"aether-sim/internal/scenario"
	"aether-sim/internal/sim"
)

var (
	runScenario  string
	runInterval  time.Duration
	runOutput    string
	runLogFile   string
	runGreptime  bool
	runAdminAddr string
	runTrace     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the decision engine over a scenario",
	Long:  "run feeds each round of a scenario file or built-in scenario through the decision pipeline and emits the per-cluster decisions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sc, err := resolveScenario(runScenario)
		if err != nil {
			return err
		}
		snaps, err := sc.Snapshots()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		logger := logging.FromContext(ctx)

		tcfg := observability.TracingConfigFromEnv()
		if runTrace != "" {
			tcfg.Enabled = true
			tcfg.Exporter = runTrace
		}
		shutdown, err := observability.InitTracing(ctx, tcfg, logger)
		if err != nil {
			return err
		}
		defer observability.ShutdownWithTimeout(context.Background(), shutdown, logger)

		writer, cleanup, err := newWriters(cfg, runOutput, runLogFile, runGreptime)
		if err != nil {
			return err
		}
		defer cleanup()

		collector, err := observability.NewDecisionCollector(prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}
		p, err := sim.NewPipeline(cfg, sim.WithWriter(writer), sim.WithMetrics(collector))
		if err != nil {
			return err
		}
		logger.Info("starting run", "run_id", p.RunID(), "scenario", sc.Name, "rounds", len(snaps), "profile", cfg.Profile)

		if runAdminAddr != "" {
			srv := admin.NewServer(p, collector.Handler())
			go func() {
				if err := srv.Start(ctx, runAdminAddr); err != nil {
					log.Printf("[Main] Admin server failed: %v", err)
				}
			}()
		}

		n, err := p.Run(ctx, snaps, runInterval)
		logger.Info("run finished", "run_id", p.RunID(), "rounds", n)
		if err != nil && ctx.Err() == nil {
			return err
		}
		if (runAdminAddr != "" || runOutput == "tui") && ctx.Err() == nil {
			log.Println("[Main] Scenario complete; press q or send SIGINT to exit.")
			<-ctx.Done()
		}
		return nil
	},
}

// resolveScenario accepts a built-in scenario name or a path to a YAML file.
func resolveScenario(ref string) (*scenario.Scenario, error) {
	if sc, ok := scenario.BuiltIn()[ref]; ok {
		return &sc, nil
	}
	if _, err := os.Stat(ref); err != nil {
		return nil, fmt.Errorf("scenario %q is neither built in nor a readable file: %w", ref, err)
	}
	return scenario.Load(ref)
}

func init() {
	runCmd.Flags().StringVar(&runScenario, "scenario", "corridor", "Built-in scenario name or path to a scenario YAML")
	runCmd.Flags().DurationVar(&runInterval, "interval", 0, "Delay between rounds (e.g. 500ms, 2s); 0 runs as fast as possible")
	runCmd.Flags().StringVar(&runOutput, "output", "auto", "Console output: auto, json, color or tui")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "Path to export decisions (JSONL); summaries go to <path>.summary")
	runCmd.Flags().BoolVar(&runGreptime, "greptime", false, "Also write rows to GreptimeDB at GREPTIMEDB_ENDPOINT")
	runCmd.Flags().StringVar(&runAdminAddr, "admin-addr", "", "Serve /latest, /metrics and /healthz on this address")
	runCmd.Flags().StringVar(&runTrace, "trace", "", "Enable tracing with the given exporter (stdout or otlp)")
}
