package pipeline

import (
	"errors"
	"fmt"
)

// Stage names one of the three AI operations of a run
type Stage string

const (
	StageTranscribe Stage = "transcribe"
	StageSummarize  Stage = "summarize"
	StageExtract    Stage = "extract"
)

// ErrMeetingNotFound aborts a run before any state change
var ErrMeetingNotFound = errors.New("pipeline: meeting not found")

// StageError is a failed, timed out or malformed stage call
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// PersistenceError is a storage failure while reading inputs or writing results
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
