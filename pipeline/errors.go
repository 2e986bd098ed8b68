package pipeline

import "fmt"

// QueryError is returned when a table could not be read.
type QueryError struct {
	Dataset string
	Table   string
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed for dataset %q using table %v: %v", e.Dataset, e.Table, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// EmptyResultError is returned when a table yields fewer than the minimum number of rows.
type EmptyResultError struct {
	Dataset  string
	Table    string
	RowCount int
	MinRows  int
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no data returned for dataset %q using table %v: got %v rows, need at least %v", e.Dataset, e.Table, e.RowCount, e.MinRows)
}

// WriteError is returned when the output file could not be written.
type WriteError struct {
	Dataset  string
	FileName string
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("unable to write file %v for dataset %q: %v", e.FileName, e.Dataset, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// VerificationError is returned when the written file is missing or empty.
type VerificationError struct {
	Dataset  string
	FileName string
	Err      error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed for file %v of dataset %q: %v", e.FileName, e.Dataset, e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}
