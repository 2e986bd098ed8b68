package cmd

import (
	"fmt"
	"os"

	"github.com/relloyd/psvexport/actions"
	"github.com/spf13/cobra"
)

var connRemoveCfg = actions.ConnectionConfig{}

var configConnRemoveCmd = &cobra.Command{
	Use:     "remove",
	Aliases: []string{"rm", "del", "delete"},
	Short:   "Remove a connection",
	Long:    fmt.Sprintf("Remove a connection from config file %q", connectionsFilePath()),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := getConnectionGetterSetter()
		if err != nil {
			return err
		}
		connRemoveCfg.ConfigFile = f
		return actions.RunConnectionRemove(&connRemoveCfg, os.Stdout)
	},
}

func initConnRemove() {
	configConnCmd.AddCommand(configConnRemoveCmd)
	switches.addFlag(configConnRemoveCmd, &connRemoveCfg.LogicalName, "connection-name", "", true, "")
	configConnRemoveCmd.SilenceUsage = true
}
