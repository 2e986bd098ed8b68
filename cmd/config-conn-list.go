package cmd

import (
	"fmt"
	"os"

	"github.com/relloyd/psvexport/actions"
	"github.com/spf13/cobra"
)

var configConnListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all connections",
	Long: fmt.Sprintf(`List connections stored in config store %q 
by printing them all to STDOUT with passwords redacted`,
		connectionsFilePath()),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := getConnectionGetterSetter()
		if err != nil {
			return err
		}
		return actions.RunConnectionList(f, os.Stdout)
	},
}

func initConnList() {
	configConnCmd.AddCommand(configConnListCmd)
}
