package cmd

import (
	"context"
	"net"

	"github.com/relloyd/psvexport/actions"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a web service that runs exports on request",
	Long: `Start a web service that runs the export described by the flags on request:

  GET  /health          health check
  POST /runs            start an export in the background and return its runId
  GET  /runs/{runId}    status, per-dataset stats and the report of an export
  GET  /stop            cancel any export in progress and stop the server`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runServe()
	},
}

var serveExtractCfg = actions.ExtractConfig{}

var serveConfig = actions.WebServerConfig{
	Extract: &serveExtractCfg,
	Scheme:  "http",
	Addr:    net.IP{0, 0, 0, 0},
	Port:    8080,
}

func runServe() error {
	c, err := getConnectionLoader()
	if err != nil {
		return err
	}
	serveExtractCfg.Connections = c
	serveExtractCfg.StackDumpOnPanic = stackDumpOnPanic
	return actions.RunWebServer(context.Background(), &serveConfig)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().SortFlags = false
	serveCmd.Flags().IPVarP(&serveConfig.Addr, "address", "a", net.IP{0, 0, 0, 0}, "Address to listen on")
	switches.addFlag(serveCmd, &serveConfig.Port, "port", "8080", false, "")
	addExtractFlags(serveCmd, &serveExtractCfg)
}
