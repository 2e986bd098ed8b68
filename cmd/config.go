package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/relloyd/psvexport/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure connections",
	Long: fmt.Sprintf(`Configure connections where:

- Connections are stored in file %q
`, connectionsFilePath()),
}

// connectionsFilePath returns the path of the connections file for use in help text.
func connectionsFilePath() string {
	dir, err := config.GetConfigHomeDir()
	if err != nil {
		dir = filepath.Join("~", config.MainDir)
	}
	return filepath.Join(dir, config.ConnectionsConfigFileFullName)
}

func init() {
	rootCmd.AddCommand(configCmd)
}
