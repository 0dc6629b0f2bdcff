package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/parkerlabs/revpipe/internal/adapters/driven/storage/memory"
	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
	"github.com/parkerlabs/revpipe/internal/core/ports/driving"
	"github.com/parkerlabs/revpipe/internal/logger"
)

var (
	syncSinceFlag     string
	syncUntilFlag     string
	syncDaysFlag      int
	syncNoAdvanceFlag bool
	syncDryRunFlag    bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [sources...]",
	Short: "Synchronise sources into the sink",
	Long: `Synchronise the named sources, or all configured sources when none
are given. Without --since each source resumes from its stored cursor;
with an explicit window the run is a backfill and cursors are left
untouched.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncSinceFlag, "since", "", "window start (YYYY-MM-DD or RFC 3339)")
	syncCmd.Flags().StringVar(&syncUntilFlag, "until", "", "window end (YYYY-MM-DD or RFC 3339, default now)")
	syncCmd.Flags().IntVar(&syncDaysFlag, "days", 0, "cursor-mode fallback span in days (default 30)")
	syncCmd.Flags().BoolVar(&syncNoAdvanceFlag, "no-advance", false, "do not advance cursors after a successful run")
	syncCmd.Flags().BoolVar(&syncDryRunFlag, "dry-run", false, "fetch and normalise against in-memory stores, persisting nothing")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sources := make([]domain.SourceID, 0, len(args))
	for _, arg := range args {
		id, err := domain.ParseSourceID(arg)
		if err != nil {
			return err
		}
		sources = append(sources, id)
	}

	opts := driving.RunOptions{
		Sources:        sources,
		FallbackSpan:   time.Duration(syncDaysFlag) * 24 * time.Hour,
		AdvanceCursors: !syncNoAdvanceFlag,
	}

	if syncSinceFlag != "" || syncUntilFlag != "" {
		window, err := parseWindow(syncSinceFlag, syncUntilFlag)
		if err != nil {
			return err
		}
		opts.Window = &window
		// Explicit windows are backfills; they never move cursors.
		opts.AdvanceCursors = false
	}

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if syncDryRunFlag {
		// Swap in memory-backed stores seeded with the real cursors, so
		// the run resolves the same windows but persists nothing.
		mem := memory.NewCursorStore()
		stored, err := rt.cursors.All(ctx)
		if err != nil {
			return fmt.Errorf("loading cursors: %w", err)
		}
		for _, cur := range stored {
			if err := mem.Set(ctx, cur.Source, cur.Since); err != nil {
				return err
			}
		}
		rt.cursors = mem
		rt.sink = func() (driven.Sink, error) { return memory.NewSink(), nil }
	}

	service, err := rt.service()
	if err != nil {
		return err
	}

	report, err := service.Run(ctx, opts)
	if err != nil {
		return err
	}

	if syncDryRunFlag {
		cmd.Println("Dry run: nothing persisted")
	} else if recordErr := rt.runs.Record(ctx, report); recordErr != nil {
		logger.Warn("recording run history: %v", recordErr)
	}

	printReport(cmd, report)

	// Failed sources are part of the report, not an invocation error;
	// the exit code stays zero so partial failures do not mask the
	// sources that did land.
	if failed := report.Failed(); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, id := range failed {
			names = append(names, id.String())
		}
		cmd.Printf("Warning: %d source(s) failed: %s\n", len(failed), strings.Join(names, ", "))
	}
	return nil
}

// parseWindow builds the explicit sync window from the flag values. An
// empty until means now.
func parseWindow(since, until string) (domain.SyncWindow, error) {
	start, err := parseWhen(since)
	if err != nil {
		return domain.SyncWindow{}, fmt.Errorf("invalid --since: %w", err)
	}

	end := time.Now().UTC()
	if until != "" {
		end, err = parseWhen(until)
		if err != nil {
			return domain.SyncWindow{}, fmt.Errorf("invalid --until: %w", err)
		}
	}
	return domain.NewSyncWindow(start, end)
}

// parseWhen accepts a bare date or a full RFC 3339 timestamp.
func parseWhen(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func printReport(cmd *cobra.Command, report *domain.RunReport) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	for _, id := range domain.AllSources() {
		res, ok := report.Results[id]
		if !ok {
			continue
		}
		detail := ""
		switch res.State {
		case domain.StateSucceeded:
			detail = fmt.Sprintf("%d rows in %s", res.Rows, res.Elapsed.Round(time.Millisecond))
			if res.RecordErrors > 0 {
				detail += fmt.Sprintf(" (%d record errors)", res.RecordErrors)
			}
		case domain.StateFailed:
			detail = res.Err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", id, res.State, detail)
	}
	w.Flush()
	cmd.Printf("Total: %d rows written\n", report.TotalRows())
}
