package extraction

import (
	"context"
	"errors"
	"fmt"
)

// ExtractionError wraps any backend-level fault: timeout, malformed response,
// quota or auth failure.
//
//nolint:revive // the package-qualified name reads as intended at call sites
type ExtractionError struct {
	PostID  string // set by the orchestrator once the post is known
	Message string
	Model   string
	Cause   error
}

func (e *ExtractionError) Error() string {
	msg := "extraction error"
	if e.Model != "" {
		msg = fmt.Sprintf("extraction error (%s)", e.Model)
	}
	if e.PostID != "" {
		msg = fmt.Sprintf("%s for post %s", msg, e.PostID)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", msg, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", msg, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the error came from the per-call deadline.
func (e *ExtractionError) Timeout() bool {
	return errors.Is(e.Cause, context.DeadlineExceeded)
}
