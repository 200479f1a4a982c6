// Package types provides type definitions for structured data used throughout the claimhound system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "unicode/utf8"

// AlignmentStatus records how an extracted span was located in the source post.
type AlignmentStatus string

const (
	// AlignmentExact means the span is a verbatim substring of the post body
	AlignmentExact AlignmentStatus = "MATCH_EXACT"
	// AlignmentFuzzy means the span matched after case and whitespace folding
	AlignmentFuzzy AlignmentStatus = "MATCH_FUZZY"
	// AlignmentUnmatched means the span could not be located; any interval is untrusted
	AlignmentUnmatched AlignmentStatus = "UNMATCHED"
)

// CharInterval is a half-open [Start, End) range of character (code point) offsets.
type CharInterval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Within reports whether the interval satisfies 0 <= start <= end <= length.
func (c CharInterval) Within(length int) bool {
	return c.Start >= 0 && c.Start <= c.End && c.End <= length
}

// Claim is one extracted assertion derived from exactly one post.
// Claims are self-contained and never mutated after creation.
type Claim struct {
	Class           string          `json:"extraction_class"`
	Text            string          `json:"extraction_text"`
	Interval        *CharInterval   `json:"charInterval"`
	AlignmentStatus AlignmentStatus `json:"alignmentStatus"`
	ExtractionIndex int             `json:"extractionIndex"`

	Location      string `json:"location"`
	Prediction    string `json:"prediction"`
	Justification string `json:"justification"`

	// Attributes holds backend attributes beyond location/prediction/justification.
	Attributes map[string]any `json:"attributes,omitempty"`

	// Reviewer flags, set outside the pipeline.
	Validated bool  `json:"validated,omitempty"`
	Outcome   *bool `json:"outcome,omitempty"`

	Post PostSnapshot `json:"original_tweet"`
}

// EffectiveInterval returns the interval to use for display. Unaligned claims
// fall back to (0, len(extraction_text)).
func (c Claim) EffectiveInterval() CharInterval {
	if c.Interval == nil || c.AlignmentStatus == AlignmentUnmatched {
		return CharInterval{Start: 0, End: utf8.RuneCountInString(c.Text)}
	}
	return *c.Interval
}

// Aligned reports whether the claim carries a trusted interval into its post body.
func (c Claim) Aligned() bool {
	return c.Interval != nil && c.AlignmentStatus != AlignmentUnmatched &&
		c.Interval.Within(utf8.RuneCountInString(c.Post.Text))
}
