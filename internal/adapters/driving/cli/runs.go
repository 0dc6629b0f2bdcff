package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var runsLimitFlag int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent sync run history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		records, err := rt.runs.Recent(ctx, runsLimitFlag)
		if err != nil {
			return fmt.Errorf("loading run history: %w", err)
		}
		if len(records) == 0 {
			cmd.Println("No runs recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tSOURCE\tSTATE\tROWS\tELAPSED\tERROR")
		for _, rec := range records {
			errMsg := rec.Err
			if len(errMsg) > 60 {
				errMsg = errMsg[:57] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
				rec.Started.Local().Format("2006-01-02 15:04:05"),
				rec.Source,
				rec.State,
				rec.Rows,
				rec.Elapsed.Round(time.Millisecond),
				errMsg,
			)
		}
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimitFlag, "limit", 25, "maximum records to show")
	rootCmd.AddCommand(runsCmd)
}
