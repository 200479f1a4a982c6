// Package claims turns extracted spans into self-contained Claim records and
// reads and writes the claims artifact.
package claims

import (
	"unicode/utf8"

	"github.com/jonathan/claimhound/internal/extraction"
	"github.com/jonathan/claimhound/internal/types"
)

// Normalize builds the Claim for one span of post. index is the 1-based
// position of the span among the post's extractions.
func Normalize(span extraction.Span, post types.Post, fields types.FieldMap, index int) types.Claim {
	fields = fields.WithDefaults()
	snapshot := fields.Snapshot(post)

	var interval *types.CharInterval
	if span.Interval != nil {
		iv := *span.Interval
		interval = &iv
	}

	return types.Claim{
		Class:           span.Class,
		Text:            span.Text,
		Interval:        interval,
		AlignmentStatus: resolveStatus(span.Status, interval, utf8.RuneCountInString(snapshot.Text)),
		ExtractionIndex: index,
		Location:        span.Attributes.Get(extraction.AttrLocation),
		Prediction:      span.Attributes.Get(extraction.AttrPrediction),
		Justification:   span.Attributes.Get(extraction.AttrJustification),
		Attributes: span.Attributes.Without(
			extraction.AttrLocation,
			extraction.AttrPrediction,
			extraction.AttrJustification,
		),
		Post: snapshot,
	}
}

// resolveStatus never lets an interval that falls outside the body pass as aligned.
func resolveStatus(status types.AlignmentStatus, interval *types.CharInterval, bodyLen int) types.AlignmentStatus {
	if interval == nil {
		return types.AlignmentUnmatched
	}
	if !interval.Within(bodyLen) {
		return types.AlignmentUnmatched
	}
	if status == "" {
		return types.AlignmentExact
	}
	return status
}

// NormalizeAll normalizes every span of one post in extraction order.
func NormalizeAll(spans []extraction.Span, post types.Post, fields types.FieldMap) []types.Claim {
	out := make([]types.Claim, 0, len(spans))
	for i, span := range spans {
		out = append(out, Normalize(span, post, fields, i+1))
	}
	return out
}
