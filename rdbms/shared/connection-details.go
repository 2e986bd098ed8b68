package shared

import (
	"fmt"
	"sort"
	"strings"
)

// Keys used in ConnectionDetails.Data.
var DefaultConnectionKeyNames = struct {
	Dsn      string
	Host     string
	Port     string
	User     string
	Password string
	Database string
}{
	Dsn:      "dsn",
	Host:     "host",
	Port:     "port",
	User:     "user",
	Password: "password",
	Database: "database",
}

// ConnectionDetails is intended to hold credentials for a logical database connection.
// Data holds either a "dsn" or the individual host, port, user, password and database values.
type ConnectionDetails struct {
	Type        string            `json:"type" errorTxt:"database type" mandatory:"yes" yaml:"type" mapstructure:"type"`
	LogicalName string            `json:"logicalName" errorTxt:"database logical name" mandatory:"yes" yaml:"logicalName" mapstructure:"logicalName"`
	Data        map[string]string `json:"data" yaml:"data" mapstructure:"data"`
}

// String redacts passwords and pretty-prints the contents of ConnectionDetails.
func (c ConnectionDetails) String() string {
	x := make([]string, 0, len(c.Data)+1)
	x = append(x, fmt.Sprintf("  type = %v", c.Type))
	if v, ok := c.Data[DefaultConnectionKeyNames.Dsn]; ok { // if there's a DSN...
		x = append(x, fmt.Sprintf("  dsn = %v", RedactDsn(c.Type, v)))
		return strings.Join(x, "\n")
	}
	keys := make([]string, 0, len(c.Data))
	for k := range c.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := c.Data[k]
		if k == DefaultConnectionKeyNames.Password {
			v = "xxxxx"
		}
		x = append(x, fmt.Sprintf("  %v = %v", k, v))
	}
	return strings.Join(x, "\n")
}

// GetDsn returns the DSN held in Data or builds one from the individual connection values.
func (c ConnectionDetails) GetDsn() (string, error) {
	if v := c.Data[DefaultConnectionKeyNames.Dsn]; v != "" {
		return v, nil
	}
	return BuildDsn(c.Type,
		c.Data[DefaultConnectionKeyNames.Host],
		c.Data[DefaultConnectionKeyNames.Port],
		c.Data[DefaultConnectionKeyNames.User],
		c.Data[DefaultConnectionKeyNames.Password],
		c.Data[DefaultConnectionKeyNames.Database])
}

// DBConnections maps connection names to their details.
type DBConnections map[string]ConnectionDetails

// LoadConnection will load the supplied connectionName, which is expected to be in c, using the interface
// to do the actual loading.
func (c *DBConnections) LoadConnection(i ConnectionGetter, connectionName string) error {
	conn := (*c)[connectionName]
	d, err := i.LoadConnection(conn.LogicalName) // fetch new ConnectionDetails from config using the logicalName, not the connectionName!
	if err != nil {
		return err
	}
	(*c)[connectionName] = d // replace the connection with the loaded version
	return nil
}
