package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samuelfneumann/autolearn/config"
	"github.com/samuelfneumann/autolearn/experiment"
	"github.com/samuelfneumann/autolearn/writer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd() *cobra.Command {
	var (
		parallelism int
		quiet       bool
		restore     string
		eval        bool
	)

	cmd := &cobra.Command{
		Use:   "run <experiment.yaml>",
		Short: "Run every agent of an experiment on every environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("parallelism") {
				c.Parallelism = parallelism
			}
			if cmd.Flags().Changed("quiet") {
				c.Options.Quiet = quiet
			}
			if cmd.Flags().Changed("restore") {
				c.Options.Restore = restore
			}
			if cmd.Flags().Changed("eval") {
				c.Options.Eval = eval
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt,
				syscall.SIGTERM)
			defer stop()
			return run(ctx, c)
		},
	}
	cmd.Flags().IntVarP(&parallelism, "parallelism", "p", 1,
		"maximum number of runs executing at once")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false,
		"do not log completed episodes")
	cmd.Flags().StringVar(&restore, "restore", "",
		"restore agents from the checkpoints of an earlier experiment dir")
	cmd.Flags().BoolVar(&eval, "eval", false,
		"follow greedy policies without learning")
	return cmd
}

func run(ctx context.Context, c *config.Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	logger, err := c.Logger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	jobs, err := c.Jobs(logger)
	if err != nil {
		return err
	}
	opts := c.ExperimentOptions(logger)

	if c.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		shutdown := serveMetrics(c.Metrics.Addr, reg, logger)
		defer shutdown()

		namespace := c.Metrics.Namespace
		opts.NewWriter = func(run, dir string) (writer.Writer, error) {
			file, err := writer.NewFile(dir)
			if err != nil {
				return nil, err
			}
			prom, err := writer.NewPrometheus(reg, namespace, dir, dir)
			if err != nil {
				file.Close()
				return nil, err
			}
			return writer.NewMulti(file, prom), nil
		}
	}

	logger.Info("starting experiment", zap.Int("jobs", len(jobs)),
		zap.Int("parallelism", c.Parallelism))

	results, err := experiment.RunJobs(ctx, jobs, c.Parallelism, opts)
	for _, r := range results {
		logger.Info("result", zap.String("agent", r.Agent),
			zap.String("environment", r.Environment),
			zap.String("state", string(r.State)), zap.Int("frames", r.Frames),
			zap.Int("episodes", r.Episodes),
			zap.Float64("mean_return_last_100", r.Mean),
			zap.Float64("std_return_last_100", r.StdDev))
	}
	if err != nil {
		return fmt.Errorf("experiment failed: %w", err)
	}
	return nil
}

// serveMetrics serves the metrics of reg at addr until the returned
// function is called
func serveMetrics(addr string, reg *prometheus.Registry,
	logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux,
		ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("could not shut down metrics server", zap.Error(err))
		}
	}
}
