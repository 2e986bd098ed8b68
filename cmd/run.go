package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/relloyd/psvexport/actions"
	"github.com/spf13/cobra"
)

var runCfg = actions.ExtractConfig{}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Export every dataset in a table map to PSV files",
	Long: `Export each dataset in the table map by reading the whole source table, removing 
the delimiter from every field value and writing a PSV file per dataset.
Datasets with fewer than min-rows rows are treated as empty: an error is logged
and, depending on the empty-result-policy, the export continues or halts.

The command exits non-zero if the export could not start, if it halted, or if
fail-on-error is set and any dataset failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runExtract()
	},
}

func runExtract() error {
	c, err := getConnectionLoader()
	if err != nil {
		return err
	}
	runCfg.Connections = c
	runCfg.StackDumpOnPanic = stackDumpOnPanic
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return actions.RunExtract(ctx, &runCfg)
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().SortFlags = false
	addExtractFlags(runCmd, &runCfg)
}
