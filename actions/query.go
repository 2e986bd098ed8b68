package actions

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relloyd/psvexport/constants"
	"github.com/relloyd/psvexport/file"
	"github.com/relloyd/psvexport/helper"
	"github.com/relloyd/psvexport/logger"
	"github.com/relloyd/psvexport/rdbms"
	"github.com/relloyd/psvexport/stream"
)

type QueryConfig struct {
	Connections      ConnectionLoader
	ConnectionName   string `errorTxt:"connection name" mandatory:"yes"`
	Table            string `errorTxt:"table name" mandatory:"yes"`
	PrintHeader      bool
	DryRun           bool
	Delimiter        string
	QuoteAll         bool
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	StackDumpOnPanic bool
}

// RunQuery reads a single table and writes it to out as PSV.
// With DryRun set it only prints the SQL that would be executed.
func RunQuery(ctx context.Context, cfg *QueryConfig, out io.Writer) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	delimiter, err := ParseDelimiter(cfg.Delimiter)
	if err != nil {
		return err
	}
	conn, err := cfg.Connections.LoadConnection(cfg.ConnectionName)
	if err != nil {
		return err
	}
	st, err := rdbms.NewSchemaTable(cfg.Table)
	if err != nil {
		return err
	}
	if cfg.DryRun {
		_, err = fmt.Fprintln(out, st.SelectAllSql(conn.Type))
		return err
	}
	log := logger.NewLogger(constants.ServiceName, cfg.LogLevel, cfg.StackDumpOnPanic)
	// Connect to database.
	db, err := rdbms.OpenDbConnection(ctx, log, conn)
	if err != nil {
		return err
	}
	defer db.Close()
	// Create context.
	ctx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()
	// Handle interrupts.
	chanQuit := make(chan os.Signal, 2)
	signal.Notify(chanQuit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(chanQuit)
	// Start the SQL.
	type result struct {
		rows stream.RowSet
		err  error
	}
	chanSql := make(chan result, 1)
	go func() {
		rows, err := rdbms.NewTableReader(log, db).ReadTable(ctx, cfg.Table)
		chanSql <- result{rows: rows, err: err}
	}()
	// Wait for SQL or interrupt.
	var res result
	select {
	case <-chanQuit: // if we were interrupted...
		_, _ = fmt.Fprintln(os.Stderr, "\nUser abort. Stopping SQL execution...")
		cancelFn() // cancel the SQL.
		select {
		case <-time.After(5 * time.Second): // timeout.
			_, _ = fmt.Fprintln(os.Stderr, "Timeout waiting for SQL to end - aborted")
		case <-chanSql: // sql ended.
		}
		return nil
	case res = <-chanSql: // SQL ended.
	}
	if res.err != nil {
		return res.err
	}
	// Sanitize and print.
	res.rows.Sanitize(delimiter)
	if cfg.PrintHeader {
		res.rows.SanitizeColumns(delimiter)
	}
	w, err := file.NewPSVWriter(out, cfg.Table, delimiter, cfg.QuoteAll)
	if err != nil {
		return err
	}
	if err = w.WriteRowSet(res.rows, cfg.PrintHeader); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	log.Debug("printed ", w.RowCount(), " rows from table ", cfg.Table)
	return nil
}
