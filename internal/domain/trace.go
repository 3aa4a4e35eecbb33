package domain

import "time"

// ApplyErrorKind is a high-level classification of apply-time errors.
type ApplyErrorKind string

const (
	ApplyErrorUnknown  ApplyErrorKind = "unknown"
	ApplyErrorBounds   ApplyErrorKind = "out_of_bounds"
	ApplyErrorType     ApplyErrorKind = "type_mismatch"
	ApplyErrorVar      ApplyErrorKind = "missing_variable"
	ApplyErrorCanceled ApplyErrorKind = "canceled"
)

// ApplyError represents a structured error produced by the engine.
type ApplyError struct {
	Kind    ApplyErrorKind
	Message string
}

// NewApplyError classifies err into an ApplyError.
func NewApplyError(err error) *ApplyError {
	if err == nil {
		return nil
	}

	kind := ApplyErrorUnknown
	switch {
	case IsKind(err, KindOutOfBounds):
		kind = ApplyErrorBounds
	case IsKind(err, KindTypeMismatch):
		kind = ApplyErrorType
	case IsKind(err, KindMissingVar):
		kind = ApplyErrorVar
	}

	return &ApplyError{Kind: kind, Message: err.Error()}
}

// CheckResult is the output of a single post-condition check.
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
}

// ValueSummary is a bounded, human-readable view of a document value.
// Keep it small so traces stay readable and artifacts stay lean.
type ValueSummary struct {
	Kind      string // "sequence", "record", "string", "number", "bool", "null"
	Length    int    // for sequences and records
	Preview   string // rendered head of the value
	Truncated bool
}

// StepResult records the outcome of one pipeline step.
type StepResult struct {
	Name string
	Op   StepOp

	Before ValueSummary
	After  ValueSummary

	// Plucked holds vars added by a pluck step (nil otherwise).
	Plucked Vars

	DurationUS int64
	Error      *ApplyError
}

// ApplyResult represents the result of applying one pipeline to one document.
type ApplyResult struct {
	PipelineName string
	PipelinePath string
	DocumentPath string
	VarSetName   string

	StartedAt time.Time
	EndedAt   time.Time

	Steps  []StepResult
	Checks []CheckResult

	// Output is the final document value (deep-cloned, safe to hold).
	Output any

	Error *ApplyError
}

// ApplyArtifact represents a persisted apply for reproducibility.
type ApplyArtifact struct {
	ID string

	PipelineName string
	PipelinePath string
	DocumentPath string
	VarSetName   string

	StartedAt time.Time
	EndedAt   time.Time

	Steps  []StepResult
	Checks []CheckResult
	Output any
}
