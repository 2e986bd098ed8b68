package rdbms

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/relloyd/psvexport/logger"
	"github.com/relloyd/psvexport/rdbms/shared"
	"github.com/relloyd/psvexport/stream"
)

// TableReader fetches the full contents of tables using a read-only SELECT.
type TableReader struct {
	Db  shared.Connector
	Log logger.Logger
}

// NewTableReader returns a TableReader for the connection db.
func NewTableReader(log logger.Logger, db shared.Connector) *TableReader {
	return &TableReader{Db: db, Log: log}
}

// rowSetHandler collects query results into a RowSet.
type rowSetHandler struct {
	rs stream.RowSet
}

func (h *rowSetHandler) HandleHeader(i []interface{}) error {
	cols := make([]string, len(i))
	for idx, v := range i {
		cols[idx] = fmt.Sprintf("%v", v)
	}
	h.rs = stream.NewRowSet(cols)
	return nil
}

func (h *rowSetHandler) HandleRow(i []interface{}) error {
	h.rs.Rows = append(h.rs.Rows, i) // SqlQuery supplies a new slice per row.
	return nil
}

// SelectSql returns the SQL used to read table, after validating the table identifier.
func (r *TableReader) SelectSql(table string) (string, error) {
	st, err := NewSchemaTable(table)
	if err != nil {
		return "", err
	}
	return st.SelectAllSql(r.Db.GetType()), nil
}

// ReadTable executes SELECT * against table and returns every row in the order the database supplies them.
// No rows is not an error here; callers decide what an empty result means.
func (r *TableReader) ReadTable(ctx context.Context, table string) (stream.RowSet, error) {
	sqltext, err := r.SelectSql(table)
	if err != nil {
		return stream.RowSet{}, err
	}
	r.Log.Debug("reading table using SQL: ", sqltext)
	h := &rowSetHandler{}
	if err = SqlQuery(ctx, r.Log, r.Db, sqltext, h); err != nil {
		return stream.RowSet{}, errors.Wrapf(err, "error reading table %v", table)
	}
	return h.rs, nil
}
