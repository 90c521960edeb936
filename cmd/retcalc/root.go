package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/utkarsh5026/parmap/config"
	"github.com/utkarsh5026/parmap/metrics"
	"github.com/utkarsh5026/parmap/pool"
	"github.com/utkarsh5026/parmap/returns"
)

const shutdownTimeout = 5 * time.Second

var (
	configFile string
	logLevel   string
	workers    int
	executor   string
	progress   bool
	symbols    int
	days       int
	seed       uint64
	startDate  string
	linger     time.Duration
)

// env is built by the root command before any subcommand runs.
var env *app

type app struct {
	cfg     *config.Config
	log     *log.Entry
	reg     *prometheus.Registry
	metrics *metrics.Collector
	server  *http.Server
	data    dataset
}

var rootCmd = &cobra.Command{
	Use:               "retcalc",
	Short:             "compute forward and monthly returns in parallel",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level, overrides the config")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "worker count, overrides the config")
	rootCmd.PersistentFlags().StringVar(&executor, "executor", "", "'os-thread' or 'goroutine', overrides the config")
	rootCmd.PersistentFlags().BoolVar(&progress, "progress", false, "show a progress bar")
	rootCmd.PersistentFlags().IntVar(&symbols, "symbols", 50, "number of synthetic symbols")
	rootCmd.PersistentFlags().IntVar(&days, "days", 500, "number of trading days")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 1, "random seed of the synthetic market")
	rootCmd.PersistentFlags().StringVar(&startDate, "start", "2020-01-01", "first calendar date")
	rootCmd.PersistentFlags().DurationVar(&linger, "linger", 0, "keep the metrics endpoint up this long after the run")

	rootCmd.AddCommand(monthlyCmd, forwardCmd, benchCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.New(configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("workers") {
		cfg.Pool.Workers = workers
	}
	if flags.Changed("executor") {
		cfg.Pool.Executor = executor
	}
	if flags.Changed("progress") {
		cfg.Pool.Progress = progress
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if symbols < 1 || days < 1 {
		return fmt.Errorf("invalid flag value: need --symbols >= 1 and --days >= 1")
	}
	start, err := time.Parse(time.DateOnly, startDate)
	if err != nil {
		return fmt.Errorf("invalid flag value --start %s: %w", startDate, err)
	}

	logger := log.New()
	logger.SetOutput(os.Stderr)
	cfg.Logging.Apply(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	env = &app{
		cfg:     cfg,
		log:     logger.WithField("run-id", uuid.NewString()),
		reg:     reg,
		metrics: metrics.NewCollector(reg, cfg.Prometheus.Namespace),
		data:    synthesize(symbols, days, start, seed),
	}
	env.log.WithFields(log.Fields{
		"symbols":      symbols,
		"observations": len(env.data.obs),
		"days":         env.data.cal.Len(),
	}).Debug("synthetic market generated")

	if addr := cfg.Prometheus.Address; addr != "" {
		env.serveMetrics(addr)
	}
	return nil
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(a.reg))
	a.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.log.WithField("address", addr).Info("metrics endpoint started")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.WithError(err).Error("metrics endpoint failed")
		}
	}()
}

func teardown(cmd *cobra.Command, _ []string) {
	if env == nil {
		return
	}

	if env.server != nil {
		if linger > 0 {
			env.log.WithField("linger", linger).Info("holding metrics endpoint")
			select {
			case <-time.After(linger):
			case <-cmd.Context().Done():
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := env.server.Shutdown(ctx); err != nil {
			env.log.WithError(err).Warn("metrics endpoint shutdown")
		}
	}

	if err := pool.DefaultRegistry().Shutdown(shutdownTimeout); err != nil {
		env.log.WithError(err).Warn("executor shutdown")
	}
}

// poolOptions are the config's pool options plus the run's logger and metrics hook.
func (a *app) poolOptions(extra ...pool.Option) []pool.Option {
	opts := append(a.cfg.PoolOptions(),
		pool.WithLogger(a.log),
		pool.WithTaskHook(a.metrics.Hook()),
	)
	return append(opts, extra...)
}

func (a *app) calculator(extra ...pool.Option) *returns.Calculator {
	return returns.NewCalculator(a.data.obs, a.data.cal,
		returns.WithPoolOptions(a.poolOptions(extra...)...),
		returns.WithLogger(a.log),
	)
}
