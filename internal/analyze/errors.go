package analyze

import (
	"errors"
	"fmt"
)

// ErrAnalysisFailed is wrapped by every failure of an analyze round trip:
// transport, non-2xx status and malformed response alike.
var ErrAnalysisFailed = errors.New("analysis failed")

// FailureMessage is shown to the user when no more specific message exists.
const FailureMessage = "Analysis failed"

// AnalysisError is a transport or status failure talking to the scorer.
type AnalysisError struct {
	StatusCode int
	// Message is the scorer's own explanation, when it sent one.
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("analysis failed: scorer returned %d: %s", e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("analysis failed: scorer returned %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("analysis failed: %v", e.Err)
	}
	return "analysis failed"
}

func (e *AnalysisError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAnalysisFailed}
	}
	return []error{ErrAnalysisFailed, e.Err}
}

// ShapeError reports a response body that does not have the expected structure.
type ShapeError struct {
	Path   string
	Reason string
	Detail string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("analysis failed: response %s: %s", e.Path, e.Reason)
}

func (e *ShapeError) Unwrap() error { return ErrAnalysisFailed }

// UserMessage collapses any analyze failure into the single message the user
// sees. Only an explicit scorer message survives.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *AnalysisError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return FailureMessage
}
