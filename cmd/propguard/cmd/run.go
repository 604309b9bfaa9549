package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rustyeddy/propguard/engine"
	"github.com/rustyeddy/propguard/internal/logger"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run decision cycles against the configured broker",
	Long: `Run decision cycles using settings from a configuration file.

With the paper broker, cycles replay the candle file bar by bar as fast as
possible unless --interval is given. With OANDA, one cycle runs every
--interval until interrupted.

Example:
  propguard run -f propguard.yaml --once
  propguard run -f propguard.yaml --interval 5m --metrics-addr :9090`,
	RunE: runRun,
}

var (
	runConfigPath  string
	runInterval    time.Duration
	runOnce        bool
	runPaper       bool
	runDryRun      bool
	runMetricsAddr string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().DurationVar(&runInterval, "interval", 5*time.Minute, "time between cycles")
	runCmd.Flags().BoolVar(&runOnce, "once", false, "run a single cycle and exit")
	runCmd.Flags().BoolVar(&runPaper, "paper", false, "force the paper broker")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "report order intents without placing them")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runPaper {
		cfg.Broker.Type = "paper"
	}
	if runMetricsAddr != "" {
		cfg.MetricsAddr = runMetricsAddr
	}

	a, err := build(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux(a), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("metrics server: %v", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
		logger.Infof("metrics on %s/metrics", cfg.MetricsAddr)
	}

	out := cmd.OutOrStdout()
	r := &engine.Runner{
		Orchestrator: a.orch,
		Interval:     runInterval,
		OnOutcome: func(o engine.Outcome) {
			fmt.Fprintf(out, "%s %s\n", o.Time.UTC().Format(time.RFC3339), o)
		},
	}
	if !runDryRun {
		r.Executor = a.broker
	}
	if a.paper != nil {
		r.Clock = a.paper.Now
		r.Step = a.paper.Advance
		if !cmd.Flags().Changed("interval") {
			r.Interval = 0
		}
	}
	if runOnce {
		r.Interval = 0
		r.Step = func() bool { return false }
	}

	logger.Infof("running %s on %s %s (broker %s)", cfg.Strategy.Name, cfg.Strategy.Symbol, cfg.Strategy.Timeframe, cfg.Broker.Type)
	if err := r.Run(ctx); err != nil {
		return err
	}

	if a.paper != nil {
		eq, _ := a.paper.FetchEquity(ctx)
		fmt.Fprintf(out, "paper: %d trades, equity %.2f\n", len(a.paper.Trades()), eq)
	}
	return nil
}

func metricsMux(a *app) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	return mux
}
