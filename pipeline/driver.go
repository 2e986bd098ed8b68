package pipeline

//go:generate mockgen -destination=mocks/mock_pipeline.go -package=mocks github.com/relloyd/psvexport/pipeline TableReader,Publisher

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/psvexport/constants"
	"github.com/relloyd/psvexport/file"
	"github.com/relloyd/psvexport/helper"
	"github.com/relloyd/psvexport/logger"
	"github.com/relloyd/psvexport/stats"
	"github.com/relloyd/psvexport/stream"
	"github.com/relloyd/psvexport/tablemap"
	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"
)

// TableReader fetches every row of a table.
type TableReader interface {
	ReadTable(ctx context.Context, table string) (stream.RowSet, error)
}

// Publisher ships a verified file somewhere else, e.g. to S3.
type Publisher interface {
	Publish(ctx context.Context, fileName string, folder string) error
}

// Config holds the run settings for the Driver.
type Config struct {
	OutputDir         string    `errorTxt:"output directory" mandatory:"yes"`
	Delimiter         rune      // defaults to constants.FieldTerminator
	QuoteAll          bool      // wrap every field in quotes
	Header            bool      // write the column names as the first line
	MinRows           int       // result sets smaller than this are empty; defaults to constants.MinDatasetRowsDefault
	EmptyResultPolicy string    // constants.EmptyResultPolicySkip or constants.EmptyResultPolicyHalt
	Parallelism       int       // number of datasets processed at once
	RunDate           time.Time // date used in output file names; defaults to now
}

// setDefaults fills in zero values.
func (c *Config) setDefaults() {
	if c.Delimiter == 0 {
		c.Delimiter = constants.FieldTerminator
	}
	if c.MinRows <= 0 {
		c.MinRows = constants.MinDatasetRowsDefault
	}
	if c.EmptyResultPolicy == "" {
		c.EmptyResultPolicy = constants.EmptyResultPolicySkip
	}
	if c.Parallelism <= 0 {
		c.Parallelism = constants.ParallelismDefault
	}
	if c.RunDate.IsZero() {
		c.RunDate = time.Now()
	}
}

// Validate checks the Config after defaults have been applied.
func (c *Config) Validate() error {
	if err := helper.ValidateStructIsPopulated(c); err != nil {
		return err
	}
	switch c.EmptyResultPolicy {
	case constants.EmptyResultPolicySkip, constants.EmptyResultPolicyHalt:
	default:
		return errors.Errorf("unsupported empty result policy %q: use %v or %v", c.EmptyResultPolicy, constants.EmptyResultPolicySkip, constants.EmptyResultPolicyHalt)
	}
	if c.Delimiter == constants.FieldQuote || c.Delimiter == '\n' || c.Delimiter == '\r' {
		return errors.Errorf("unsupported delimiter %q", c.Delimiter)
	}
	return nil
}

// Driver runs each dataset of a table map through query, sanitize, write and verify.
type Driver struct {
	cfg       Config
	log       logger.Logger
	reader    TableReader
	publisher Publisher
	stats     *stats.RunStats
	verify    func(fileName string) error
}

// Option configures optional Driver dependencies.
type Option func(d *Driver)

// WithPublisher publishes each verified file using p.
func WithPublisher(p Publisher) Option {
	return func(d *Driver) {
		d.publisher = p
	}
}

// WithStats records progress into s.
func WithStats(s *stats.RunStats) Option {
	return func(d *Driver) {
		d.stats = s
	}
}

// NewDriver validates cfg and returns a Driver that reads tables using reader.
func NewDriver(log logger.Logger, reader TableReader, cfg Config, opts ...Option) (*Driver, error) {
	if reader == nil {
		return nil, errors.New("missing table reader")
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Driver{cfg: cfg, log: log, reader: reader, verify: file.VerifyFile}
	for _, o := range opts {
		o(d)
	}
	return d, nil
}

// Config returns the settings in use after defaults were applied.
func (d *Driver) Config() Config {
	return d.cfg
}

// Run processes every dataset in tm and returns a Report with one Outcome per dataset in table map order.
// Failures of individual datasets are recorded in the Report and never stop the run, except for an empty
// result with the halt policy, which stops any further datasets from starting.
// The returned error is only set when the run itself panicked.
func (d *Driver) Run(ctx context.Context, tm *tablemap.TableMap) (report *Report, err error) {
	return d.RunWithId(ctx, xid.New().String(), tm)
}

// RunWithId is the same as Run but uses the supplied run id.
func (d *Driver) RunWithId(ctx context.Context, runId string, tm *tablemap.TableMap) (report *Report, err error) {
	log := d.log.WithField("runId", runId)
	datasets := tm.Datasets()
	report = &Report{RunId: runId, StartTime: time.Now(), Outcomes: make([]Outcome, len(datasets))}
	for idx, ds := range datasets { // for each dataset...
		report.Outcomes[idx] = Outcome{Dataset: ds.Name, Table: ds.Table, State: StatePending}
		if d.stats != nil {
			d.stats.AddDataset(ds.Name, ds.Table)
		}
	}
	log.Info("run started: ", len(datasets), " datasets, parallelism ", d.cfg.Parallelism, ", empty result policy ", d.cfg.EmptyResultPolicy)
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("run panicked: %v", r)
			log.Error(err, "\n", string(debug.Stack()))
		}
		report.EndTime = time.Now()
		if d.stats != nil {
			d.stats.LogStats()
		}
		log.Info("run complete: ", report.Verified(), " verified, ", len(report.Failed()), " failed, ", report.Pending(), " not processed")
	}()
	if d.cfg.Parallelism > 1 {
		d.runParallel(ctx, log, datasets, report)
	} else {
		d.runSequential(ctx, log, datasets, report)
	}
	return report, nil
}

func (d *Driver) runSequential(ctx context.Context, log logger.Logger, datasets []tablemap.DatasetSpec, report *Report) {
	for idx, ds := range datasets { // for each dataset in table map order...
		if ctx.Err() != nil { // if we were asked to stop...
			log.Warn("run cancelled before dataset ", ds.Name)
			report.Cancelled = true
			return
		}
		report.Outcomes[idx] = d.processDataset(ctx, log, ds)
		if d.isHalt(report.Outcomes[idx].Err) {
			log.Error("halting run after empty result for dataset ", ds.Name)
			report.Halted = true
			return
		}
	}
}

func (d *Driver) runParallel(ctx context.Context, log logger.Logger, datasets []tablemap.DatasetSpec, report *Report) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Parallelism)
	for idx, ds := range datasets {
		if gctx.Err() != nil { // if a halt or cancellation happened...
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil { // if we were cancelled while waiting for a worker...
				return nil
			}
			o := d.processDataset(gctx, log, ds)
			report.Outcomes[idx] = o // each worker owns its own index.
			if d.isHalt(o.Err) {
				return o.Err // cancel the remaining datasets.
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("halting run after empty result: ", err)
		report.Halted = true
		return
	}
	if ctx.Err() != nil {
		log.Warn("run cancelled")
		report.Cancelled = true
	}
}

// isHalt returns true if err should stop the run.
func (d *Driver) isHalt(err error) bool {
	var e *EmptyResultError
	return d.cfg.EmptyResultPolicy == constants.EmptyResultPolicyHalt && errors.As(err, &e)
}

// processDataset moves a single dataset through each State and returns the Outcome.
// Panics are recovered into a FAILED Outcome.
func (d *Driver) processDataset(ctx context.Context, runLog logger.Logger, ds tablemap.DatasetSpec) (o Outcome) {
	log := runLog.WithField("dataset", ds.Name)
	o = Outcome{Dataset: ds.Name, Table: ds.Table, State: StatePending}
	start := time.Now()
	if d.stats != nil {
		d.stats.Start(ds.Name)
	}
	defer func() {
		if r := recover(); r != nil {
			o = d.fail(log, o, errors.Errorf("panic processing dataset %q: %v", ds.Name, r))
			log.Debug(string(debug.Stack()))
		}
		o.Duration = time.Since(start)
		if d.stats == nil {
			return
		}
		if o.State == StatePending { // if the dataset was interrupted...
			d.stats.SetStatus(ds.Name, o.State.String())
		} else {
			d.stats.Finish(ds.Name, o.State.String(), o.FileName, o.RowCount, o.Err)
		}
	}()
	// Query.
	log.Info("reading table ", ds.Table)
	rows, err := d.reader.ReadTable(ctx, ds.Table)
	if err != nil && ctx.Err() != nil { // if a halt or cancellation interrupted the read...
		log.Warn("read of table ", ds.Table, " interrupted: ", err)
		return o
	}
	if err != nil {
		return d.fail(log, o, &QueryError{Dataset: ds.Name, Table: ds.Table, Err: err})
	}
	o.RowCount = rows.Len()
	o.State = d.setState(ds.Name, StateQueried)
	if rows.IsEmpty(d.cfg.MinRows) {
		return d.fail(log, o, &EmptyResultError{Dataset: ds.Name, Table: ds.Table, RowCount: rows.Len(), MinRows: d.cfg.MinRows})
	}
	// Sanitize.
	rows.Sanitize(d.cfg.Delimiter)
	if d.cfg.Header {
		rows.SanitizeColumns(d.cfg.Delimiter)
	}
	o.State = d.setState(ds.Name, StateSanitized)
	// Write.
	o.FileName = file.OutputPath(d.cfg.OutputDir, ds.Folder, ds.Name, d.cfg.RunDate)
	if err = file.WritePSV(log, o.FileName, rows, d.cfg.Delimiter, d.cfg.QuoteAll, d.cfg.Header); err != nil {
		return d.fail(log, o, &WriteError{Dataset: ds.Name, FileName: o.FileName, Err: err})
	}
	o.State = d.setState(ds.Name, StateWritten)
	// Verify.
	if err = d.verify(o.FileName); err != nil {
		return d.fail(log, o, &VerificationError{Dataset: ds.Name, FileName: o.FileName, Err: err})
	}
	o.State = d.setState(ds.Name, StateVerified)
	log.Info("wrote ", o.RowCount, " rows to file ", o.FileName)
	// Publish.
	if d.publisher != nil {
		if err = d.publisher.Publish(ctx, o.FileName, ds.Folder); err != nil {
			log.Error("unable to publish file ", o.FileName, ": ", err)
			if d.stats != nil {
				d.stats.PublishFailed(ds.Name, err)
			}
		} else if d.stats != nil {
			d.stats.Published(ds.Name)
		}
	}
	return o
}

func (d *Driver) setState(name string, s State) State {
	if d.stats != nil {
		d.stats.SetStatus(name, s.String())
	}
	return s
}

func (d *Driver) fail(log logger.Logger, o Outcome, err error) Outcome {
	log.Error(err)
	o.State = StateFailed
	o.Err = err
	o.ErrorText = err.Error()
	return o
}
