package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driving"
	"github.com/parkerlabs/revpipe/internal/core/services"
	"github.com/parkerlabs/revpipe/internal/logger"
	"github.com/parkerlabs/revpipe/internal/metrics"
)

// DefaultMetricsAddr is where the daemon serves its scrape endpoint
// unless metrics.listen is configured.
const DefaultMetricsAddr = ":9090"

// Scheduled sync cadences. The hourly pass picks up fresh data from the
// cursors; the nightly pass re-reads yesterday to catch late reports
// and corrections.
const (
	hourlySchedule  = "@hourly"
	nightlySchedule = "30 0 * * *"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled syncs as a daemon",
	Long: `Run syncs on a schedule: an hourly incremental pass that advances
cursors, and a nightly re-read of yesterday that folds in late reports.
Prometheus metrics are served over HTTP while the daemon runs.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	rt.metrics = metrics.NewRecorder(registry)

	if err := rt.config.Watch(func() {
		logger.Info("configuration reloaded; next scheduled run picks it up")
	}); err != nil {
		return fmt.Errorf("watching config: %w", err)
	}

	// Scheduled passes never overlap; a slow hourly run delays the
	// nightly one rather than racing it on the same cursors.
	var runMu sync.Mutex
	scheduled := func(name string, opts func() driving.RunOptions) func() {
		return func() {
			runMu.Lock()
			defer runMu.Unlock()
			logger.Section(name + " sync")
			if err := runScheduled(ctx, rt, opts()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s sync: %v\n", name, err)
			}
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(hourlySchedule, scheduled("hourly", func() driving.RunOptions {
		return driving.RunOptions{
			FallbackSpan:   services.HourlyFallbackSpan,
			AdvanceCursors: true,
		}
	})); err != nil {
		return fmt.Errorf("scheduling hourly sync: %w", err)
	}
	if _, err := scheduler.AddFunc(nightlySchedule, scheduled("nightly", func() driving.RunOptions {
		window := domain.Yesterday(time.Now().UTC())
		return driving.RunOptions{Window: &window}
	})); err != nil {
		return fmt.Errorf("scheduling nightly sync: %w", err)
	}

	addr := rt.config.GetString("metrics.listen")
	if addr == "" {
		addr = DefaultMetricsAddr
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := &http.Server{Addr: addr, Handler: mux}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	scheduler.Start()
	cmd.Printf("Serving metrics on %s; hourly and nightly syncs scheduled\n", addr)

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		scheduler.Stop()
		return fmt.Errorf("metrics server: %w", err)
	}

	// Let an in-flight run finish before tearing the stores down.
	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: shutting down metrics server: %v\n", err)
	}
	return nil
}

// runScheduled builds a service from the current config, runs it and
// records the outcome. Provider credentials are re-read each trigger so
// config edits apply without restarting the daemon.
func runScheduled(ctx context.Context, rt *runtime, opts driving.RunOptions) error {
	service, err := rt.service()
	if err != nil {
		return err
	}

	report, err := service.Run(ctx, opts)
	if err != nil {
		return err
	}

	if recordErr := rt.runs.Record(ctx, report); recordErr != nil {
		logger.Warn("recording run history: %v", recordErr)
	}

	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d source(s) failed", len(failed))
	}
	return nil
}
