package pipeline

import (
	"time"
)

// Outcome is the result of processing a single dataset.
type Outcome struct {
	Dataset   string        `json:"dataset"`
	Table     string        `json:"table"`
	FileName  string        `json:"fileName,omitempty"`
	State     State         `json:"state"`
	RowCount  int           `json:"rowCount"`
	Err       error         `json:"-"`
	ErrorText string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Report is the result of a run. Outcomes are in table map order.
type Report struct {
	RunId     string    `json:"runId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Outcomes  []Outcome `json:"outcomes"`
	Halted    bool      `json:"halted"`
	Cancelled bool      `json:"cancelled"`
}

// Failed returns the outcomes that ended in StateFailed.
func (r *Report) Failed() []Outcome {
	retval := make([]Outcome, 0)
	for _, o := range r.Outcomes {
		if o.State == StateFailed {
			retval = append(retval, o)
		}
	}
	return retval
}

// Verified returns the number of datasets whose files were written and verified.
func (r *Report) Verified() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == StateVerified {
			n++
		}
	}
	return n
}

// Pending returns the number of datasets that were never processed, e.g. after a halt.
func (r *Report) Pending() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == StatePending {
			n++
		}
	}
	return n
}
