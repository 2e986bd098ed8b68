package rdbms

import (
	"context"

	"github.com/pkg/errors"
	"github.com/relloyd/psvexport/logger"
	"github.com/relloyd/psvexport/rdbms/shared"
)

// SqlQuery executes sqltext and sends the column names then each row to the handler in i.
// Raw bytes are converted to strings so values are safe to keep after the next Scan.
func SqlQuery(ctx context.Context, log logger.Logger, db shared.Connector, sqltext string, i shared.SqlResultHandler) error {
	rows, err := db.QueryContext(ctx, sqltext)
	if err != nil {
		return errors.Wrapf(err, "error during database query using SQL: '%v'", sqltext)
	}
	defer func() {
		_ = rows.Close()
	}()
	// Set up column types for Scan(...)
	log.Debug("fetching column types...")
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return errors.Wrap(err, "error fetching column types")
	}
	for _, v := range colTypes {
		log.Trace("column ", v.Name(), " scan type = ", v.ScanType())
	}
	// Scan the values dynamically.
	lenColTypes := len(colTypes)
	scanPtrs := make([]interface{}, lenColTypes)
	scanVals := make([]interface{}, lenColTypes)
	for idx := 0; idx < lenColTypes; idx++ { // for each column...
		scanPtrs[idx] = &scanVals[idx] // save the value.
	}
	// Build and send the header.
	header := make([]interface{}, lenColTypes)
	for idx := range colTypes {
		header[idx] = colTypes[idx].Name()
	}
	if err = i.HandleHeader(header); err != nil {
		return err
	}
	// Send the rows via callback interface.
	for rows.Next() {
		if err = ctx.Err(); err != nil { // quit if asked to...
			return errors.Wrap(err, "query cancelled")
		}
		if err = rows.Scan(scanPtrs...); err != nil {
			return errors.Wrap(err, "error scanning row")
		}
		// Make a new row.
		row := make([]interface{}, lenColTypes)
		for idx, v := range scanVals { // for each value...
			if b, ok := v.([]byte); ok {
				row[idx] = string(b)
			} else {
				row[idx] = v
			}
		}
		// Send the row.
		if err = i.HandleRow(row); err != nil {
			return err
		}
	}
	if err = rows.Err(); err != nil {
		return errors.Wrap(err, "error fetching rows")
	}
	return nil
}
