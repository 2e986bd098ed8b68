package stats

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cevaris/ordered_map"
	c "github.com/relloyd/psvexport/constants"
	"github.com/relloyd/psvexport/logger"
)

// StatsFetcher is used by the web server to render progress of a run.
type StatsFetcher interface {
	GetStats() []Stats
	Summary() Summary
}

// Stats holds the outcome of a single dataset.
type Stats struct {
	Dataset        string `json:"dataset"`
	Table          string `json:"table"`
	FileName       string `json:"fileName,omitempty"`
	StatusText     string `json:"statusText"`
	StatusEmoji    string `json:"statusEmoji"`
	RowCount       int    `json:"rowCount"`
	ElapsedTimeSec int    `json:"elapsedTimeSec"`
	Published      bool   `json:"published"`
	ErrorText      string `json:"errorText,omitempty"`
	startTime      time.Time
	done           bool
	failed         bool
}

func (s Stats) String() string {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("%v %v rows=%v", s.Dataset, s.StatusText, s.RowCount)
	}
	return string(b)
}

// Summary totals the stats of all datasets in a run.
type Summary struct {
	Datasets       int `json:"datasets"`
	Succeeded      int `json:"succeeded"`
	Failed         int `json:"failed"`
	Pending        int `json:"pending"`
	PublishErrors  int `json:"publishErrors"`
	TotalRows      int `json:"totalRows"`
	ElapsedTimeSec int `json:"elapsedTimeSec"`
}

// RunStats records the progress of each dataset in a run.
// It is safe for concurrent use by the pipeline workers.
type RunStats struct {
	mu            sync.Mutex
	log           logger.Logger
	startTime     time.Time
	publishErrors int
	mapStats      *ordered_map.OrderedMap // dataset name -> *Stats in the order datasets were added.
}

// NewRunStats creates a new RunStats. Supply log to have stats logged by LogStats().
func NewRunStats(log logger.Logger) *RunStats {
	return &RunStats{log: log, startTime: time.Now(), mapStats: ordered_map.NewOrderedMap()}
}

// AddDataset registers a dataset as pending.
func (r *RunStats) AddDataset(name string, table string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mapStats.Set(name, &Stats{Dataset: name, Table: table, StatusText: "pending"})
}

// Start marks the dataset as running and starts its clock.
func (r *RunStats) Start(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(name)
	s.startTime = time.Now()
	s.StatusText = "running"
	s.StatusEmoji = c.EmojiRunning
}

// SetStatus saves the latest state reached by the dataset.
func (r *RunStats) SetStatus(name string, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(name).StatusText = status
}

// Finish records the final outcome of the dataset.
// A non-nil err marks the dataset as failed.
func (r *RunStats) Finish(name string, status string, fileName string, rowCount int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(name)
	s.StatusText = status
	s.FileName = fileName
	s.RowCount = rowCount
	s.done = true
	if !s.startTime.IsZero() {
		s.ElapsedTimeSec = int(time.Since(s.startTime).Seconds())
	}
	if err != nil {
		s.failed = true
		s.ErrorText = err.Error()
		s.StatusEmoji = c.EmojiBang
	} else {
		s.StatusEmoji = c.EmojiTick
	}
}

// Published records a successful upload of the dataset file.
func (r *RunStats) Published(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(name).Published = true
}

// PublishFailed counts a failed upload; the dataset outcome is unchanged.
func (r *RunStats) PublishFailed(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publishErrors++
	if r.log != nil {
		r.log.Warn("publish failed for dataset ", name, ": ", err)
	}
}

// get returns the stats for name, adding them if they are missing. The caller must hold the lock.
func (r *RunStats) get(name string) *Stats {
	v, ok := r.mapStats.Get(name)
	if !ok {
		s := &Stats{Dataset: name, StatusText: "pending"}
		r.mapStats.Set(name, s)
		return s
	}
	return v.(*Stats)
}

// GetStats implements interface StatsFetcher{}.
func (r *RunStats) GetStats() []Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	statsList := make([]Stats, 0, r.mapStats.Len())
	iter := r.mapStats.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() { // for each dataset...
		statsList = append(statsList, *kv.Value.(*Stats))
	}
	return statsList
}

// Summary implements interface StatsFetcher{}.
func (r *RunStats) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := Summary{PublishErrors: r.publishErrors, ElapsedTimeSec: int(time.Since(r.startTime).Seconds())}
	iter := r.mapStats.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		s := kv.Value.(*Stats)
		sum.Datasets++
		sum.TotalRows += s.RowCount
		switch {
		case !s.done:
			sum.Pending++
		case s.failed:
			sum.Failed++
		default:
			sum.Succeeded++
		}
	}
	return sum
}

// LogStats writes one line per dataset followed by the summary.
func (r *RunStats) LogStats() {
	if r.log == nil {
		return
	}
	for _, s := range r.GetStats() {
		r.log.Info(s.String())
	}
	sum := r.Summary()
	r.log.Info(fmt.Sprintf("datasets=%v succeeded=%v failed=%v pending=%v rows=%v publishErrors=%v",
		sum.Datasets, sum.Succeeded, sum.Failed, sum.Pending, sum.TotalRows, sum.PublishErrors))
}
