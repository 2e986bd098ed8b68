package shared

import (
	"context"
	"database/sql"
	"errors"
)

// HpConnection is a wrapper around the Go native sql.DB that records the connection type.
type HpConnection struct {
	DbSql  *sql.DB
	DbType string
}

func (c *HpConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if c.DbSql == nil {
		return nil, errors.New("HpConnection was not configured correctly: DbSql is missing")
	}
	return c.DbSql.QueryContext(ctx, query, args...)
}

func (c *HpConnection) PingContext(ctx context.Context) error {
	if c.DbSql == nil {
		return errors.New("HpConnection was not configured correctly: DbSql is missing")
	}
	return c.DbSql.PingContext(ctx)
}

func (c *HpConnection) Close() error {
	if c.DbSql == nil {
		return nil
	}
	return c.DbSql.Close()
}

func (c *HpConnection) GetType() string {
	return c.DbType
}
