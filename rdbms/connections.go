package rdbms

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/IBM/nzgo/v12"
	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/relloyd/psvexport/constants"
	"github.com/relloyd/psvexport/logger"
	"github.com/relloyd/psvexport/rdbms/shared"
	_ "github.com/snowflakedb/gosnowflake"
	_ "modernc.org/sqlite"
)

const connectTimeout = 30 * time.Second

// supportedDsnConnectionTypes is a map where keys are the connection types opened via a dburl DSN.
// Netezza, Snowflake and SQLite connections are handled explicitly so do not need to be here.
var supportedDsnConnectionTypes = map[string]struct{}{
	constants.ConnectionTypeSqlServer: {},
	constants.ConnectionTypePostgres:  {},
	constants.ConnectionTypeMySql:     {},
}

// isSupportedConnection returns true if it can look up the supplied connection type in map
// supportedDsnConnectionTypes.
func isSupportedConnection(connectionType string) bool {
	_, ok := supportedDsnConnectionTypes[connectionType]
	return ok
}

// SupportedConnectionTypes lists every connection type that OpenDbConnection understands.
func SupportedConnectionTypes() []string {
	return []string{
		constants.ConnectionTypeSqlServer,
		constants.ConnectionTypePostgres,
		constants.ConnectionTypeMySql,
		constants.ConnectionTypeNetezza,
		constants.ConnectionTypeSnowflake,
		constants.ConnectionTypeSqlite,
	}
}

// OpenDbConnection opens a database connection using the supplied ConnectionDetails struct in c.
// The connection is tested before it is returned.
func OpenDbConnection(ctx context.Context, log logger.Logger, c shared.ConnectionDetails) (db shared.Connector, err error) {
	log.Debug("opening connection type ", c.Type, " with logicalName ", c.LogicalName) // don't log password details in c.Data!
	dsn, err := c.GetDsn()
	if err != nil {
		return nil, err
	}
	switch c.Type {
	case constants.ConnectionTypeNetezza:
		n := shared.NetezzaConnectionDetails{Dsn: dsn}
		var connStr string
		if connStr, err = n.GetNzgoConnectionString(); err != nil {
			return nil, err
		}
		db, err = NewConnectionWithDriver(ctx, log, constants.ConnectionTypeNetezza, "nzgo", connStr)
	case constants.ConnectionTypeSnowflake:
		db, err = NewConnectionWithDriver(ctx, log, constants.ConnectionTypeSnowflake, "snowflake", strings.TrimPrefix(dsn, "snowflake://"))
	case constants.ConnectionTypeSqlite:
		db, err = NewConnectionWithDriver(ctx, log, constants.ConnectionTypeSqlite, "sqlite", strings.TrimPrefix(dsn, "sqlite:"))
	default:
		if isSupportedConnection(c.Type) { // if the connection type is supported...
			db, err = newConnectionWithDsn(ctx, log, c.Type, &shared.DsnConnectionDetails{Dsn: dsn})
		} else { // else we have an unsupported database...
			err = fmt.Errorf("unsupported database type, %q", c.Type)
		}
	}
	return
}

func newConnectionWithDsn(ctx context.Context, log logger.Logger, connectionType string, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	u, err := d.Parse()
	if err != nil { // if the DSN could not be parsed...
		return nil, errors.Wrapf(err, "error parsing DSN for %v connection", connectionType)
	}
	log.Info("Opening database connection: ", d)
	return NewConnectionWithDriver(ctx, log, connectionType, u.Driver, u.DSN)
}

// NewConnectionWithDriver opens sql.DB using driverName and dsn and pings it.
func NewConnectionWithDriver(ctx context.Context, log logger.Logger, connectionType string, driverName string, dsn string) (shared.Connector, error) {
	conn := &shared.HpConnection{DbType: connectionType}
	var err error
	conn.DbSql, err = sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %v connection", connectionType)
	}
	// Test the connection.
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err = conn.DbSql.PingContext(pingCtx); err != nil {
		_ = conn.DbSql.Close()
		return nil, errors.Wrapf(err, "unable to connect to %v database", connectionType)
	}
	log.Info("Successful database connection to ", connectionType)
	return conn, nil
}
