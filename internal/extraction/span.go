// Package extraction turns a post's text into labeled claim spans by calling a
// statistical extraction backend with an instruction and worked examples.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/claimhound/internal/types"
)

// Extractor is the extraction capability. Implementations must be safe for
// concurrent use when the orchestrator runs with concurrency > 1.
type Extractor interface {
	Extract(ctx context.Context, req Request) ([]Span, error)
}

// Request is one extraction call.
type Request struct {
	Text        string
	Instruction string
	Examples    []Example
	Model       string // backend identifier, empty for the extractor's default
}

// Example is a worked input/output pair that steers the backend.
type Example struct {
	Text        string              `json:"text"`
	Extractions []ExampleExtraction `json:"extractions"`
}

// ExampleExtraction is one expected span in an Example.
type ExampleExtraction struct {
	Class      string         `json:"extraction_class"`
	Text       string         `json:"extraction_text"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Span is one claim returned by the backend, aligned against the source text.
type Span struct {
	Class      string
	Text       string
	Interval   *types.CharInterval
	Status     types.AlignmentStatus
	Attributes Attributes
}

// Attributes is the open key/value mapping returned by the backend.
// Keys may be missing or renamed; reads never fail.
type Attributes map[string]any

// Get returns the attribute as a string, "" when missing or null.
// Non-string values are rendered as JSON text.
func (a Attributes) Get(key string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return val.String()
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprint(v)
}

// Without returns a copy of the mapping without the given keys, or nil when nothing is left.
func (a Attributes) Without(keys ...string) map[string]any {
	skip := make(map[string]bool, len(keys))
	for _, k := range keys {
		skip[k] = true
	}

	var out map[string]any
	for k, v := range a {
		if skip[k] {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}
