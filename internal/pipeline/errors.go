package pipeline

import (
	"errors"
	"fmt"
)

// Stage names recorded in logs, history, and StageError.
const (
	StageStage      = "stage"
	StageExtract    = "extract"
	StageTranscribe = "transcribe"
	StageTranslate  = "translate"
	StageFormat     = "format"
	StageBundle     = "bundle"
	StagePublish    = "publish"
)

var (
	// ErrUnsupportedUpload is returned for files outside the upload whitelist.
	ErrUnsupportedUpload = errors.New("unsupported upload type")
	// ErrNoAudio is returned when the probe finds no audio stream.
	ErrNoAudio = errors.New("no audio stream")
	// ErrNotConfigured is returned when a request needs a service the
	// runner was built without.
	ErrNotConfigured = errors.New("not configured")
)

// StageError records the pipeline step that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded in err, or "" when err did not
// come from a pipeline step.
func FailedStage(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}

func stageErr(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
