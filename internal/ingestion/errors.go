// Package ingestion loads social-post exports and converts them into the posts JSON artifact.
package ingestion

import "fmt"

// FormatError represents a malformed or missing input table
type FormatError struct {
	Path    string
	Message string
	Cause   error
}

func (e *FormatError) Error() string {
	prefix := "format error"
	if e.Path != "" {
		prefix = fmt.Sprintf("format error in %s", e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *FormatError) Unwrap() error {
	return e.Cause
}
