package shared

import (
	"context"
	"database/sql"
)

// Connector abstracts the Go SQL functionality used to read tables.
type Connector interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PingContext(ctx context.Context) error
	Close() error
	// GetType returns the connection type e.g. sqlserver, used to pick identifier quoting.
	GetType() string
}

// SqlResultHandler receives the header and rows of a query as they are scanned.
type SqlResultHandler interface {
	HandleHeader(i []interface{}) error
	HandleRow(i []interface{}) error
}

type ConnectionGetter interface {
	LoadConnection(name string) (ConnectionDetails, error)
}
