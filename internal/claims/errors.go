package claims

import "fmt"

// SerializationError reports a claim value or artifact that could not be written.
// Per-field errors carry ClaimIndex and Field; whole-file errors carry only Path.
type SerializationError struct {
	Path       string
	ClaimIndex int
	Field      string
	Message    string
	Cause      error
}

func (e *SerializationError) Error() string {
	where := ""
	switch {
	case e.Field != "":
		where = fmt.Sprintf(" (claim %d, %s)", e.ClaimIndex, e.Field)
	case e.Path != "":
		where = fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("serialization error%s: %s: %v", where, e.Message, e.Cause)
	}
	return fmt.Sprintf("serialization error%s: %s", where, e.Message)
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}
