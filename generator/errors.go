package generator

import "errors"

// Error kinds surfaced by the orchestrators. Messages are user facing.
var (
	ErrEmptyInput         = errors.New("please enter an app description")
	ErrEmptyFeedback      = errors.New("please describe what to fix")
	ErrNoDocument         = errors.New("no code available to improve")
	ErrBackend            = errors.New("backend error")
	ErrIncompleteDocument = errors.New("generated code may be incomplete or malformed")
	ErrBusy               = errors.New("a request for this document is already in progress")
)

// Op names an orchestrator run.
type Op string

const (
	OpGenerate Op = "generate"
	OpRectify  Op = "rectify"
	// OpRestore loads an existing document without a backend call.
	OpRestore Op = "restore"
)

// RunError is returned by a failed generation or rectification run.
type RunError struct {
	Op  Op
	Err error
}

func (e *RunError) Error() string {
	switch e.Op {
	case OpRectify:
		return "Failed to refine code: " + e.Err.Error()
	case OpRestore:
		return "Failed to load code: " + e.Err.Error()
	default:
		return "Failed to generate app: " + e.Err.Error()
	}
}

func (e *RunError) Unwrap() error { return e.Err }
