package actions

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/psvexport/logger"
	"github.com/relloyd/psvexport/pipeline"
	"github.com/relloyd/psvexport/stats"
	"github.com/rs/xid"
)

var ErrRunInProgress = errors.New("a run is already in progress")

// Launcher executes a single run, recording progress into s.
type Launcher func(ctx context.Context, runId string, s *stats.RunStats) (*pipeline.Report, error)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusComplete  RunStatus = "complete"
	RunStatusHalted    RunStatus = "halted"
	RunStatusCancelled RunStatus = "cancelled"
	RunStatusFailed    RunStatus = "failed"
)

// RunInfo describes a run launched by the RunRegistry.
type RunInfo struct {
	RunId     string           `json:"runId"`
	Status    RunStatus        `json:"status"`
	StartTime time.Time        `json:"startTime"`
	EndTime   time.Time        `json:"endTime,omitempty"`
	Error     string           `json:"error,omitempty"`
	Report    *pipeline.Report `json:"report,omitempty"`
	stats     *stats.RunStats
	cancel    context.CancelFunc
	done      chan struct{}
}

// RunRegistry launches runs in the background, one at a time, and remembers their outcomes.
type RunRegistry struct {
	mu       sync.Mutex
	log      logger.Logger
	launch   Launcher
	runs     map[string]*RunInfo
	activeId string
}

func NewRunRegistry(log logger.Logger, launch Launcher) *RunRegistry {
	return &RunRegistry{log: log, launch: launch, runs: make(map[string]*RunInfo)}
}

// Start launches a new run unless one is already active and returns its id.
func (r *RunRegistry) Start() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.activeId != "" {
		return r.activeId, ErrRunInProgress
	}
	ctx, cancel := context.WithCancel(context.Background())
	ri := &RunInfo{
		RunId:     xid.New().String(),
		Status:    RunStatusRunning,
		StartTime: time.Now(),
		stats:     stats.NewRunStats(r.log),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	r.runs[ri.RunId] = ri
	r.activeId = ri.RunId
	go r.execute(ctx, ri)
	return ri.RunId, nil
}

func (r *RunRegistry) execute(ctx context.Context, ri *RunInfo) {
	var (
		report *pipeline.Report
		err    error
	)
	defer func() {
		if p := recover(); p != nil {
			err = errors.New("run panicked")
			r.log.Error("run ", ri.RunId, " panicked: ", p)
		}
		r.mu.Lock()
		ri.EndTime = time.Now()
		ri.Report = report
		switch {
		case err != nil:
			ri.Status = RunStatusFailed
			ri.Error = err.Error()
		case report != nil && report.Halted:
			ri.Status = RunStatusHalted
		case report != nil && report.Cancelled:
			ri.Status = RunStatusCancelled
		default:
			ri.Status = RunStatusComplete
		}
		if r.activeId == ri.RunId {
			r.activeId = ""
		}
		r.mu.Unlock()
		ri.cancel()
		close(ri.done)
		r.log.Info("run ", ri.RunId, " ended with status ", ri.Status)
	}()
	report, err = r.launch(ctx, ri.RunId, ri.stats)
}

// RunView is a point in time copy of a RunInfo plus its stats.
type RunView struct {
	RunInfo
	Summary stats.Summary `json:"summary"`
	Stats   []stats.Stats `json:"datasets"`
}

// Get returns a snapshot of the run with id runId.
func (r *RunRegistry) Get(runId string) (RunView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ri, ok := r.runs[runId]
	if !ok {
		return RunView{}, false
	}
	v := RunView{RunInfo: *ri, Summary: ri.stats.Summary(), Stats: ri.stats.GetStats()}
	return v, true
}

// ActiveRunId returns the id of the run in progress, if any.
func (r *RunRegistry) ActiveRunId() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeId, r.activeId != ""
}

// StopAll cancels the active run and waits up to timeout for it to end.
func (r *RunRegistry) StopAll(timeout time.Duration) {
	r.mu.Lock()
	ri, ok := r.runs[r.activeId]
	r.mu.Unlock()
	if !ok {
		return
	}
	r.log.Info("cancelling run ", ri.RunId)
	ri.cancel()
	select {
	case <-ri.done:
	case <-time.After(timeout):
		r.log.Warn("timeout waiting for run ", ri.RunId, " to stop")
	}
}

// Wait blocks until the run with id runId has ended.
func (r *RunRegistry) Wait(runId string) {
	r.mu.Lock()
	ri, ok := r.runs[runId]
	r.mu.Unlock()
	if ok {
		<-ri.done
	}
}
