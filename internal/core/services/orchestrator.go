package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
	"github.com/parkerlabs/revpipe/internal/core/ports/driving"
	"github.com/parkerlabs/revpipe/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.SyncService = (*Orchestrator)(nil)

// defaultBatchSize is the number of rows buffered before a sink flush.
const defaultBatchSize = 500

// Orchestrator runs a set of sources against resolved windows. Each
// source is an independent state machine
// (pending -> running -> succeeded|failed|skipped): one source's
// failure never prevents the remaining sources from running, and only
// succeeded sources have their cursor advanced.
type Orchestrator struct {
	registry  driven.PipelineRegistry
	sink      driven.Sink
	cursors   driven.CursorStore
	resolver  *RangeResolver
	metrics   driven.MetricsRecorder
	batchSize int
}

// NewOrchestrator creates an orchestrator. The metrics recorder is
// optional and may be nil.
func NewOrchestrator(
	registry driven.PipelineRegistry,
	sink driven.Sink,
	cursors driven.CursorStore,
	resolver *RangeResolver,
	metrics driven.MetricsRecorder,
) *Orchestrator {
	return &Orchestrator{
		registry:  registry,
		sink:      sink,
		cursors:   cursors,
		resolver:  resolver,
		metrics:   metrics,
		batchSize: defaultBatchSize,
	}
}

// Run synchronises the requested sources and returns the per-source
// report. Sources run concurrently; within a source, pages are
// processed strictly in pagination order. Run errors only on
// invocation problems, never on individual source failures.
func (o *Orchestrator) Run(ctx context.Context, opts driving.RunOptions) (*domain.RunReport, error) {
	sources := opts.Sources
	if len(sources) == 0 {
		sources = o.registry.Sources()
	}
	for _, src := range sources {
		if _, err := o.registry.Provider(src); err != nil {
			return nil, err
		}
	}

	windows, err := o.resolver.Resolve(ctx, sources, opts.Window, opts.FallbackSpan)
	if err != nil {
		return nil, fmt.Errorf("resolve windows: %w", err)
	}

	report := &domain.RunReport{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
		Results: make(map[domain.SourceID]domain.SyncResult, len(sources)),
	}
	logger.Info("Run %s: %d source(s)", report.RunID, len(sources))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, src := range sources {
		wg.Add(1)
		go func(src domain.SourceID) {
			defer wg.Done()
			result := o.syncSource(ctx, src, windows[src], opts.AdvanceCursors)
			mu.Lock()
			report.Results[src] = result
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	logger.Info("Run %s complete: %d rows written, %d source(s) failed",
		report.RunID, report.TotalRows(), len(report.Failed()))
	return report, nil
}

// syncSource runs one source's fetch-normalise-upsert cycle and
// converts any error into a failed result rather than propagating.
func (o *Orchestrator) syncSource(
	ctx context.Context,
	src domain.SourceID,
	window domain.SyncWindow,
	advance bool,
) domain.SyncResult {
	started := time.Now()
	result := domain.SyncResult{Source: src, State: domain.StateRunning, Window: window}

	// Registration was validated in Run.
	provider, _ := o.registry.Provider(src)
	normaliser, _ := o.registry.Normaliser(src)

	if !provider.Enabled() {
		logger.Info("Source %s: disabled (missing configuration), skipping", src)
		result.State = domain.StateSkipped
		result.Elapsed = time.Since(started)
		o.observe(result)
		return result
	}

	logger.Info("Source %s: syncing %s", src, window)
	written, recordErrs, err := o.pipe(ctx, provider, normaliser, window)
	result.Rows = written
	result.RecordErrors = recordErrs

	if err == nil && advance {
		if cursorErr := o.cursors.Set(ctx, src, window.Until); cursorErr != nil {
			// Rows are safely upserted, but without the cursor the
			// success invariant does not hold; report failure so the
			// next run replays the window.
			err = fmt.Errorf("advance cursor: %w", cursorErr)
		}
	}

	result.Elapsed = time.Since(started)
	if err != nil {
		logger.Warn("Source %s: failed after %d rows: %v", src, written, err)
		result.State = domain.StateFailed
		result.Err = err.Error()
	} else {
		logger.Info("Source %s: %d rows written (%d record errors)", src, written, recordErrs)
		result.State = domain.StateSucceeded
	}
	o.observe(result)
	return result
}

// pipe consumes the provider's record stream, normalises each record
// and flushes batches to the sink. Individual records that fail to
// normalise are skipped and counted; provider and sink errors abort
// the source.
func (o *Orchestrator) pipe(
	ctx context.Context,
	provider driven.Provider,
	normaliser driven.Normaliser,
	window domain.SyncWindow,
) (written, recordErrs int, err error) {
	// The fetch goroutine blocks on channel sends; cancelling on every
	// return path, sink failures included, lets it exit instead of
	// leaking.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	recCh, errCh := provider.Fetch(ctx, window)
	spec := normaliser.Collection()

	buf := make([]domain.Row, 0, o.batchSize)
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		n, upsertErr := o.sink.Upsert(ctx, domain.SinkBatch{Spec: spec, Rows: buf})
		if upsertErr != nil {
			return fmt.Errorf("upsert %s: %w", spec.Name, upsertErr)
		}
		written += n
		buf = buf[:0]
		return nil
	}

records:
	for {
		select {
		case <-ctx.Done():
			return written, recordErrs, ctx.Err()

		case provErr, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if provErr != nil {
				return written, recordErrs, provErr
			}

		case raw, ok := <-recCh:
			if !ok {
				break records
			}
			row, normErr := normaliser.Normalise(raw)
			if normErr != nil {
				recordErrs++
				logger.Debug("Source %s: skipping record: %v", provider.Source(), normErr)
				continue
			}
			buf = append(buf, row)
			if len(buf) >= o.batchSize {
				if flushErr := flush(); flushErr != nil {
					return written, recordErrs, flushErr
				}
			}
		}
	}

	// The record channel closed; surface any trailing provider error
	// before declaring the source complete.
	if errCh != nil {
		for provErr := range errCh {
			if provErr != nil {
				return written, recordErrs, provErr
			}
		}
	}

	if flushErr := flush(); flushErr != nil {
		return written, recordErrs, flushErr
	}
	return written, recordErrs, nil
}

func (o *Orchestrator) observe(result domain.SyncResult) {
	if o.metrics != nil {
		o.metrics.ObserveSync(result)
	}
}
