package cmd

import (
	"fmt"
	"os"

	"github.com/relloyd/psvexport/actions"
	"github.com/relloyd/psvexport/rdbms"
	"github.com/spf13/cobra"
)

var configConnAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a connection",
	Long:  `Add a logical database connection for use with the run, query and serve commands.`,
}

var connAddDsnExamples = map[string]string{
	"sqlserver": "sqlserver://<user>:<pass>@<host>[:<port>][?database=<dbname>&<opt1>=<value1>&...]",
	"postgres":  "postgres://<user>:<pass>@<host>[:<port>]/<dbname>[?sslmode=disable&...]",
	"mysql":     "mysql://<user>:<pass>@<host>[:<port>]/<dbname>",
	"netezza":   "netezza://<user>:<pass>@<host>[:<port>]/<dbname>[?sslmode=disable]",
	"snowflake": "snowflake://<user>:<pass>@<account>/<dbname>[/<schema>][?warehouse=<wh>&role=<role>]",
	"sqlite":    "sqlite:<path to database file>",
}

// newConnAddCommand returns a command that adds a connection of type connectionType.
func newConnAddCommand(connectionType string) *cobra.Command {
	cfg := &actions.ConnectionConfig{Type: connectionType}
	c := &cobra.Command{
		Use:   connectionType,
		Short: fmt.Sprintf("Add a %v connection", connectionType),
		Long: fmt.Sprintf(`Add a %v database connection to the config store %q
by providing a DSN of the form: 

%v

or by supplying the host, port, user, password and database flags.
`, connectionType, connectionsFilePath(), connAddDsnExamples[connectionType]),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			f, err := getConnectionGetterSetter()
			if err != nil {
				return err
			}
			cfg.ConfigFile = f
			return actions.RunConnectionAdd(cfg, os.Stdout)
		},
	}
	c.Flags().SortFlags = false
	switches.addFlag(c, &cfg.LogicalName, "connection-name", "", true, "")
	switches.addFlag(c, &cfg.Force, "force-connection", "", false, "")
	switches.addFlag(c, &cfg.Dsn, "dsn", "", false, "")
	switches.addFlag(c, &cfg.Host, "host", "", false, "")
	switches.addFlag(c, &cfg.Port, "connection-port", "", false, "")
	switches.addFlag(c, &cfg.User, "user", "", false, "")
	switches.addFlag(c, &cfg.Password, "password", "", false, "")
	switches.addFlag(c, &cfg.Database, "database", "", false, "")
	return c
}

func initConnAdd() {
	configConnCmd.AddCommand(configConnAddCmd)
	for _, t := range rdbms.SupportedConnectionTypes() { // for each connection type...
		configConnAddCmd.AddCommand(newConnAddCommand(t))
	}
}
