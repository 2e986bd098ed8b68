package pipeline

import "fmt"

// State is the progress of a single dataset through the pipeline.
// Entries move PENDING -> QUERIED -> SANITIZED -> WRITTEN -> VERIFIED, or to FAILED from any of them.
type State int

const (
	StatePending State = iota
	StateQueried
	StateSanitized
	StateWritten
	StateVerified
	StateFailed
)

var stateNames = map[State]string{
	StatePending:   "PENDING",
	StateQueried:   "QUERIED",
	StateSanitized: "SANITIZED",
	StateWritten:   "WRITTEN",
	StateVerified:  "VERIFIED",
	StateFailed:    "FAILED",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// IsTerminal returns true if the entry can make no further progress.
func (s State) IsTerminal() bool {
	return s == StateVerified || s == StateFailed
}

// MarshalText renders the state name in JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name produced by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	for k, v := range stateNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", string(b))
}
