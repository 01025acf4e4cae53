package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fluxionai/fluxion-oss/pkg/config"
	"github.com/fluxionai/fluxion-oss/pkg/domain"
	"github.com/fluxionai/fluxion-oss/pkg/engine"
	"github.com/fluxionai/fluxion-oss/pkg/metrics"
	"github.com/fluxionai/fluxion-oss/pkg/storage"
	"github.com/fluxionai/fluxion-oss/pkg/telemetry"
	"github.com/fluxionai/fluxion-oss/pkg/tool"
)

const shutdownTimeout = 10 * time.Second

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <document>",
		Short: "Watch a document, hot-reload its pipelines, and serve metrics",
		Long: `Watch keeps a pipeline document loaded, re-reading it whenever the file
changes. Loaded pipelines are versioned in an in-memory store. When --pipeline
is set, that pipeline is re-run on every successful reload.

Prometheus metrics for reloads and runs are served on --listen.`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().String("listen", ":9090", "Address for the /metrics endpoint")
	cmd.Flags().StringP("pipeline", "p", "", "Pipeline to run on every reload (empty = load only)")
	cmd.Flags().StringArrayP("input", "i", nil, "Pipeline input as key=value (repeatable)")
	cmd.Flags().Int("timeout-ms", 0, "Deadline for each triggered run in milliseconds (0 = none)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger, shutdown, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	listen, _ := cmd.Flags().GetString("listen")
	pipelineName, _ := cmd.Flags().GetString("pipeline")
	pairs, _ := cmd.Flags().GetStringArray("input")
	timeoutMS, _ := cmd.Flags().GetInt("timeout-ms")

	inputs, err := parseInputs(pairs)
	if err != nil {
		return err
	}

	provider, err := config.NewFileProvider(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = provider.Close() }()

	store := storage.NewMemoryPipelineStore()
	defer func() { _ = store.Close() }()

	m := metrics.NewMetrics()
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Serving metrics", "addr", listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
			stop()
		}
	}()

	rt := engine.New(engine.Config{Tools: tool.Default(), Logger: logger})
	w := &watcher{
		runtime:  rt,
		store:    store,
		metrics:  m,
		logger:   logger,
		pipeline: pipelineName,
		inputs:   inputs,
		options:  engine.Options{TimeoutMS: timeoutMS},
	}

	updates := provider.Subscribe()
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("Error during shutdown", "error", err)
			}
			logger.Info("Watch stopped")
			return nil
		case program := <-updates:
			w.handleReload(ctx, program)
		}
	}
}

// watcher reacts to document reloads: it versions pipelines into the store
// and optionally triggers a run of one pipeline.
type watcher struct {
	runtime  *engine.Runtime
	store    storage.PipelineStore
	metrics  *metrics.Metrics
	logger   *slog.Logger
	pipeline string
	inputs   map[string]any
	options  engine.Options
}

func (w *watcher) handleReload(ctx context.Context, program *domain.Program) {
	if len(program.Errors) > 0 {
		w.metrics.RecordDocumentReload("invalid")
		for _, d := range program.Errors {
			w.logger.Warn("Document diagnostic", "diagnostic", d.String())
		}
		return
	}

	w.metrics.RecordDocumentReload("ok")
	w.metrics.SetPipelinesLoaded(len(program.Pipelines))
	for i := range program.Pipelines {
		if err := w.store.SavePipeline(ctx, &program.Pipelines[i]); err != nil {
			w.logger.Error("Failed to store pipeline", "pipeline", program.Pipelines[i].Name, "error", err)
		}
	}
	w.logger.Info("Document loaded", "pipelines", len(program.Pipelines))

	if w.pipeline == "" {
		return
	}
	if err := w.runOnce(ctx); err != nil {
		w.logger.Error("Triggered run failed", "pipeline", w.pipeline, "error", err)
	}
}

func (w *watcher) runOnce(ctx context.Context) error {
	pipeline, err := w.store.LatestPipeline(ctx, w.pipeline)
	if err != nil {
		return err
	}
	compiled, err := w.runtime.Compile(pipeline)
	if err != nil {
		return err
	}
	out, err := compiled.Run(w.inputs, w.options)
	if err != nil {
		return err
	}

	start := time.Now()
	emissions := 0
	outcome := telemetry.OutcomeCompleted
	var runErr error
	for item := range out.Subscribe(ctx) {
		if item.Err != nil {
			outcome = telemetry.OutcomeFailed
			if errors.Is(item.Err, domain.ErrTimeout) {
				outcome = telemetry.OutcomeTimeout
			}
			runErr = item.Err
			continue
		}
		emissions++
	}
	w.metrics.RecordRun(pipeline.Name, outcome, emissions, time.Since(start))
	if runErr != nil {
		return runErr
	}
	w.logger.Info("Run finished", "pipeline", pipeline.Name, "emissions", emissions)
	return nil
}
