package config

import (
	"fmt"
	"strings"

	"github.com/relloyd/psvexport/constants"
	"github.com/relloyd/psvexport/helper"
	"github.com/relloyd/psvexport/rdbms/shared"
)

// GetConnectionDetails fetches generic connection details from the File c using the connectionName to do the lookup.
// If the connection is not found the an error is produced.
func (c *File) GetConnectionDetails(connectionName string) (*shared.ConnectionDetails, error) {
	genericConn := &shared.ConnectionDetails{}
	if err := c.Get(connectionName, genericConn); err != nil {
		return nil, err
	}
	if genericConn.Type == "" { // if the connection was not found...
		return nil, fmt.Errorf("connection %q is not configured: use 'config connections add' command to create it", connectionName)
	}
	return genericConn, nil
}

// LoadConnection implements shared.ConnectionGetter.
func (c *File) LoadConnection(connectionName string) (shared.ConnectionDetails, error) {
	d, err := c.GetConnectionDetails(connectionName)
	if err != nil {
		return shared.ConnectionDetails{}, err
	}
	return *d, nil
}

// SetConnection validates and saves d under connectionName.
func (c *File) SetConnection(connectionName string, d shared.ConnectionDetails) error {
	if d.LogicalName == "" {
		d.LogicalName = connectionName
	}
	if err := helper.ValidateStructIsPopulated(d); err != nil {
		return err
	}
	if _, err := d.GetDsn(); err != nil {
		return err
	}
	return c.Set(connectionName, d)
}

// EnvConnections loads connections from environment variables of the form PX_<NAME>_DSN.
// The connection type is taken from the DSN scheme.
type EnvConnections struct{}

// LoadConnection implements shared.ConnectionGetter.
func (e EnvConnections) LoadConnection(connectionName string) (shared.ConnectionDetails, error) {
	envVar := helper.GetDsnEnvVarName(connectionName)
	dsn, err := helper.GetEnvVar(envVar, true)
	if err != nil {
		return shared.ConnectionDetails{}, err
	}
	connType, err := ConnectionTypeFromDsn(dsn)
	if err != nil {
		return shared.ConnectionDetails{}, fmt.Errorf("env var %v: %w", envVar, err)
	}
	return shared.ConnectionDetails{
		Type:        connType,
		LogicalName: connectionName,
		Data:        map[string]string{shared.DefaultConnectionKeyNames.Dsn: dsn},
	}, nil
}

var schemeAliases = map[string]string{
	"mssql":      constants.ConnectionTypeSqlServer,
	"sqlserver":  constants.ConnectionTypeSqlServer,
	"postgres":   constants.ConnectionTypePostgres,
	"postgresql": constants.ConnectionTypePostgres,
	"pg":         constants.ConnectionTypePostgres,
	"mysql":      constants.ConnectionTypeMySql,
	"my":         constants.ConnectionTypeMySql,
	"netezza":    constants.ConnectionTypeNetezza,
	"snowflake":  constants.ConnectionTypeSnowflake,
	"sqlite":     constants.ConnectionTypeSqlite,
}

// ConnectionTypeFromDsn returns the connection type for the scheme of dsn.
func ConnectionTypeFromDsn(dsn string) (string, error) {
	i := strings.Index(dsn, ":")
	if i <= 0 {
		return "", fmt.Errorf("unable to find a scheme in the DSN")
	}
	if t, ok := schemeAliases[strings.ToLower(dsn[:i])]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unsupported DSN scheme %q", dsn[:i])
}
