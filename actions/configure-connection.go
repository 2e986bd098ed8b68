package actions

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/relloyd/psvexport/config"
	"github.com/relloyd/psvexport/helper"
	"github.com/relloyd/psvexport/rdbms"
	"github.com/relloyd/psvexport/rdbms/shared"
)

type ConnectionConfig struct {
	ConfigFile  ConnectionGetterSetter
	LogicalName string `errorTxt:"connection name" mandatory:"yes"`
	Type        string
	Dsn         string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	Force       bool
}

func RunConnectionAdd(cfg *ConnectionConfig, out io.Writer) error {
	connection := shared.ConnectionDetails{
		LogicalName: cfg.LogicalName,
		Type:        strings.ToLower(cfg.Type),
		Data:        make(map[string]string),
	}
	if connection.Type == "" && cfg.Dsn != "" { // if the type can come from the DSN...
		t, err := config.ConnectionTypeFromDsn(cfg.Dsn)
		if err != nil {
			return err
		}
		connection.Type = t
	}
	if err := helper.ValidateStructIsPopulated(connection); err != nil { // if the basics were not supplied...
		return err
	}
	if !isSupportedConnectionType(connection.Type) {
		return fmt.Errorf("unsupported connection type %q, please use one of: %v", connection.Type, strings.Join(rdbms.SupportedConnectionTypes(), ", "))
	}
	// Save either the DSN or its parts.
	k := shared.DefaultConnectionKeyNames
	if cfg.Dsn != "" {
		connection.Data[k.Dsn] = cfg.Dsn
	} else {
		for key, val := range map[string]string{k.Host: cfg.Host, k.Port: cfg.Port, k.User: cfg.User, k.Password: cfg.Password, k.Database: cfg.Database} {
			if val != "" {
				connection.Data[key] = val
			}
		}
	}
	// Check for an existing saved connection.
	_, err := cfg.ConfigFile.LoadConnection(cfg.LogicalName)
	var notFound config.KeyNotFoundError
	if err == nil && !cfg.Force { // if the connection exists, but we are not allowed to overwrite it...
		return fmt.Errorf("connection exists, use force to update the connection or remove it first")
	} else if err != nil && !errors.As(err, &notFound) { // else if the error is real...
		return err
	}
	// Set config (creates the file if missing).
	if err = cfg.ConfigFile.SetConnection(cfg.LogicalName, connection); err != nil {
		return fmt.Errorf("error writing connections config file after adding: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Connection %q added\n", cfg.LogicalName)
	return nil
}

func RunConnectionRemove(cfg *ConnectionConfig, out io.Writer) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	if err := cfg.ConfigFile.Delete(cfg.LogicalName); err != nil {
		return fmt.Errorf("unable to delete connection %q from config: %w", cfg.LogicalName, err)
	}
	_, _ = fmt.Fprintf(out, "Connection %q removed\n", cfg.LogicalName)
	return nil
}

// RunConnectionList prints every connection with passwords redacted.
func RunConnectionList(c ConnectionGetterSetter, out io.Writer) error {
	keys, err := c.GetAllKeys()
	if err != nil {
		return err
	}
	for _, k := range keys { // for each connection name...
		conn, err := c.LoadConnection(k)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "%v:\n%v\n", k, conn)
	}
	return nil
}

func isSupportedConnectionType(t string) bool {
	for _, v := range rdbms.SupportedConnectionTypes() {
		if v == t {
			return true
		}
	}
	return false
}
