package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/parkerlabs/revpipe/internal/core/domain"
)

var cursorClearAllFlag bool

var cursorCmd = &cobra.Command{
	Use:   "cursor",
	Short: "Inspect and adjust per-source cursors",
}

var cursorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored cursors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		cursors, err := rt.cursors.All(ctx)
		if err != nil {
			return fmt.Errorf("listing cursors: %w", err)
		}
		stored := make(map[domain.SourceID]time.Time, len(cursors))
		for _, cur := range cursors {
			stored[cur.Source] = cur.Since
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		for _, id := range domain.AllSources() {
			if since, ok := stored[id]; ok {
				fmt.Fprintf(w, "%s\t%s\n", id, since.Format(time.RFC3339))
			} else {
				fmt.Fprintf(w, "%s\t(none)\n", id)
			}
		}
		return w.Flush()
	},
}

var cursorSetCmd = &cobra.Command{
	Use:   "set <source> <timestamp>",
	Short: "Set a source's cursor",
	Long: `Set the cursor for one source. The next cursor-mode sync resumes
from this instant. Accepts a date (YYYY-MM-DD) or an RFC 3339 timestamp.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		source, err := domain.ParseSourceID(args[0])
		if err != nil {
			return err
		}
		since, err := parseWhen(args[1])
		if err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.cursors.Set(ctx, source, since); err != nil {
			return fmt.Errorf("setting cursor: %w", err)
		}
		cmd.Printf("Cursor for %s set to %s\n", source, since.Format(time.RFC3339))
		return nil
	},
}

var cursorClearCmd = &cobra.Command{
	Use:   "clear [source]",
	Short: "Clear cursors so the next sync starts from the fallback span",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if len(args) == 0 && !cursorClearAllFlag {
			return fmt.Errorf("specify a source or --all")
		}

		sources := domain.AllSources()
		if len(args) == 1 {
			source, err := domain.ParseSourceID(args[0])
			if err != nil {
				return err
			}
			sources = []domain.SourceID{source}
		}

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		for _, source := range sources {
			if err := rt.cursors.Delete(ctx, source); err != nil {
				return fmt.Errorf("clearing cursor for %s: %w", source, err)
			}
			cmd.Printf("Cursor for %s cleared\n", source)
		}
		return nil
	},
}

func init() {
	cursorClearCmd.Flags().BoolVar(&cursorClearAllFlag, "all", false, "clear every source's cursor")
	cursorCmd.AddCommand(cursorListCmd, cursorSetCmd, cursorClearCmd)
	rootCmd.AddCommand(cursorCmd)
}
