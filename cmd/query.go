package cmd

import (
	"context"
	"os"

	"github.com/relloyd/psvexport/actions"
	"github.com/spf13/cobra"
)

const queryArgsDefinitionTxt string = "<connection> [<schema>.]<table>"

var queryCmd = &cobra.Command{
	Use:   "query " + queryArgsDefinitionTxt,
	Short: "Print the contents of a single table as PSV",
	Long: `Read a whole table using a configured connection and print it to STDOUT
in the same format as the files written by the run command. 
You can use a dry-run to see the SQL that would be executed.`,
	Args: getConnectionTableArgsFunc(&queryCfg.ConnectionName, &queryCfg.Table, ""),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getConnectionLoader()
		if err != nil {
			return err
		}
		queryCfg.Connections = c
		queryCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunQuery(context.Background(), &queryCfg, os.Stdout)
	},
}

var queryCfg = actions.QueryConfig{
	LogLevel: "error",
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().SortFlags = false
	queryCmd.SilenceUsage = true // avoid dumping command help when a SQL error occurs.
	switches.addFlag(queryCmd, &queryCfg.LogLevel, "log-level", "error", false, "")
	switches.addFlag(queryCmd, &queryCfg.DryRun, "dry-run", "false", false, "")
	switches.addFlag(queryCmd, &queryCfg.PrintHeader, "print-header", "false", false, "")
	switches.addFlag(queryCmd, &queryCfg.Delimiter, "delimiter", "", false, "")
	switches.addFlag(queryCmd, &queryCfg.QuoteAll, "quote-all", "false", false, "")
}
