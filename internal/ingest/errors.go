package ingest

import (
	"errors"
	"fmt"
)

// Stage identifies where in the pipeline a request currently is.
type Stage string

const (
	StageValidating   Stage = "validating"
	StageFetching     Stage = "fetching"
	StageTranscribing Stage = "transcribing"
	StageSummarizing  Stage = "summarizing"
	StagePersisting   Stage = "persisting"
)

// Kind classifies pipeline failures. Kinds drive logging and metrics only;
// callers receive a uniform generic failure for everything except validation.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindTransfer   Kind = "transfer"
	KindProvider   Kind = "provider"
	KindSummary    Kind = "summary"
	KindStore      Kind = "store"
)

// Error is a pipeline failure annotated with the stage it occurred in.
type Error struct {
	Stage Stage
	Kind  Kind
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind, defaulting to provider for foreign errors.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindProvider
}
