package actions

import (
	"context"
	"io"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/relloyd/psvexport/aws/s3"
	c "github.com/relloyd/psvexport/constants"
	"github.com/relloyd/psvexport/helper"
	"github.com/relloyd/psvexport/logger"
	"github.com/relloyd/psvexport/notify"
	"github.com/relloyd/psvexport/pipeline"
	"github.com/relloyd/psvexport/rdbms"
	"github.com/relloyd/psvexport/rdbms/shared"
	"github.com/relloyd/psvexport/stats"
	"github.com/relloyd/psvexport/tablemap"
	"github.com/rs/xid"
)

var (
	ErrRunHalted      = errors.New("run halted after an empty result")
	ErrDatasetsFailed = errors.New("one or more datasets failed")
)

type ExtractConfig struct {
	Connections       ConnectionLoader
	ConnectionName    string `errorTxt:"source connection name" mandatory:"yes"`
	TableMapFile      string `errorTxt:"table map file" mandatory:"yes"`
	Datasets          string // CSV of dataset names to run, blank for all
	OutputDir         string `errorTxt:"output directory" mandatory:"yes"`
	LogDir            string
	LogLevel          string // defaults to info
	Delimiter         string
	QuoteAll          bool
	Header            bool
	MinRows           int
	EmptyResultPolicy string
	Parallelism       int
	FailOnError       bool
	S3Bucket          string
	S3Region          string
	SmtpHost          string
	SmtpPort          int
	SmtpUser          string
	SmtpPassword      string
	SmtpEncryption    string
	NotifyFrom        string
	NotifyTo          string // CSV of email addresses
	StackDumpOnPanic  bool
	Notifier          notify.Notifier  // built from the SMTP settings when nil
	Now               func() time.Time // used for the run date and log file name; defaults to time.Now
}

// ParseDelimiter returns the single character in s, or the default field terminator if s is empty.
func ParseDelimiter(s string) (rune, error) {
	if s == "" {
		return c.FieldTerminator, nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, errors.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// Extractor holds everything a run needs after startup has succeeded.
type Extractor struct {
	cfg       *ExtractConfig
	log       logger.Logger
	logCloser io.Closer
	notifier  notify.Notifier
	tm        *tablemap.TableMap
	db        shared.Connector
	publisher pipeline.Publisher
	pipeCfg   pipeline.Config
}

// NewExtractor sets up logging and notifications, loads the table map, opens the source connection and
// prepares the optional S3 publisher. Any failure is notified and returned.
func NewExtractor(ctx context.Context, cfg *ExtractConfig) (e *Extractor, err error) {
	if cfg == nil {
		return nil, errors.New("nil pointer to extract config supplied")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	// Log to stderr until the log file is open so that notifications can be sent for any failure.
	e = &Extractor{cfg: cfg, log: logger.NewLogger(c.ServiceName, cfg.LogLevel, cfg.StackDumpOnPanic)}
	// Notifications.
	e.notifier = cfg.Notifier
	if e.notifier == nil {
		e.notifier, err = notify.NewNotifier(e.log, notify.SmtpConfig{
			Host:       cfg.SmtpHost,
			Port:       cfg.SmtpPort,
			User:       cfg.SmtpUser,
			Password:   cfg.SmtpPassword,
			Encryption: cfg.SmtpEncryption,
			From:       cfg.NotifyFrom,
			To:         helper.CsvToStringSliceTrimSpaces(cfg.NotifyTo),
		})
		if err != nil {
			e.log.Error("unable to configure notifications: ", err)
			return nil, err
		}
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("startup panicked: %v", r)
		}
		if err != nil { // if startup failed...
			e.log.Error(err)
			notify.NotifyError(e.log, e.notifier, c.ServiceName, err)
			_ = e.Close()
			e = nil
		}
	}()
	if err = e.openLogFile(); err != nil {
		return e, err
	}
	if err = e.setup(ctx); err != nil {
		return e, err
	}
	return e, nil
}

// openLogFile switches logging to stderr plus a dated file in LogDir, when LogDir is set.
func (e *Extractor) openLogFile() error {
	if e.cfg.LogDir == "" {
		return nil
	}
	l, err := logger.NewLoggerWithLogDir(c.ServiceName, e.cfg.LogLevel, e.cfg.StackDumpOnPanic, e.cfg.LogDir, e.cfg.Now())
	if err != nil {
		return err
	}
	e.log, e.logCloser = l, l
	return nil
}

func (e *Extractor) setup(ctx context.Context) (err error) {
	cfg := e.cfg
	if err = helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if cfg.Connections == nil {
		return errors.New("no connection loader supplied")
	}
	delimiter, err := ParseDelimiter(cfg.Delimiter)
	if err != nil {
		return err
	}
	e.pipeCfg = pipeline.Config{
		OutputDir:         cfg.OutputDir,
		Delimiter:         delimiter,
		QuoteAll:          cfg.QuoteAll,
		Header:            cfg.Header,
		MinRows:           cfg.MinRows,
		EmptyResultPolicy: cfg.EmptyResultPolicy,
		Parallelism:       cfg.Parallelism,
	}
	// Table map.
	if e.tm, err = tablemap.Load(cfg.TableMapFile); err != nil {
		return err
	}
	if names := helper.CsvToStringSliceTrimSpaces(cfg.Datasets); len(names) > 0 { // if we should run a subset...
		if e.tm, err = e.tm.Filter(names); err != nil {
			return err
		}
	}
	e.log.Info("loaded ", e.tm.Len(), " datasets from table map ", cfg.TableMapFile)
	// Publisher.
	if cfg.S3Bucket != "" {
		bucket, err := s3.ParseDSN(cfg.S3Bucket, cfg.S3Region)
		if err != nil {
			return err
		}
		if e.publisher, err = s3.NewFilePublisher(e.log, bucket); err != nil {
			return err
		}
	}
	// Source connection.
	conn, err := cfg.Connections.LoadConnection(cfg.ConnectionName)
	if err != nil {
		return err
	}
	e.db, err = rdbms.OpenDbConnection(ctx, e.log, conn)
	return err
}

// Log returns the logger used by the Extractor.
func (e *Extractor) Log() logger.Logger {
	return e.log
}

// Run executes the pipeline for every dataset once. Progress is recorded into s if it is not nil.
// A run-level panic is notified and returned as an error.
func (e *Extractor) Run(ctx context.Context, runId string, s *stats.RunStats) (*pipeline.Report, error) {
	pipeCfg := e.pipeCfg
	pipeCfg.RunDate = e.cfg.Now()
	if s == nil {
		s = stats.NewRunStats(e.log)
	}
	opts := []pipeline.Option{pipeline.WithStats(s)}
	if e.publisher != nil {
		opts = append(opts, pipeline.WithPublisher(e.publisher))
	}
	d, err := pipeline.NewDriver(e.log, rdbms.NewTableReader(e.log, e.db), pipeCfg, opts...)
	if err != nil {
		return nil, err
	}
	report, err := d.RunWithId(ctx, runId, e.tm)
	if err != nil {
		notify.NotifyError(e.log, e.notifier, c.ServiceName, err)
	}
	return report, err
}

// Close releases the database connection and log file.
func (e *Extractor) Close() error {
	var err error
	if e.db != nil {
		err = e.db.Close()
		e.db = nil
	}
	if e.logCloser != nil {
		if errLog := e.logCloser.Close(); err == nil {
			err = errLog
		}
		e.logCloser = nil
	}
	return err
}

// RunExtract sets up an Extractor, runs every dataset once and returns an error if the run should exit non-zero.
func RunExtract(ctx context.Context, cfg *ExtractConfig) error {
	e, err := NewExtractor(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = e.Close()
	}()
	report, err := e.Run(ctx, xid.New().String(), nil)
	if err != nil {
		return err
	}
	return ExitError(report, cfg.FailOnError)
}

// ExitError returns the error the process should exit with for report.
func ExitError(report *pipeline.Report, failOnError bool) error {
	if report.Halted {
		return ErrRunHalted
	}
	if failed := report.Failed(); failOnError && len(failed) > 0 {
		return errors.Wrapf(ErrDatasetsFailed, "%v of %v datasets", len(failed), len(report.Outcomes))
	}
	return nil
}
