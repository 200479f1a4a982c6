package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/claimhound/internal/pipeline"
	"github.com/jonathan/claimhound/internal/types"
)

func sampleClaims() []types.Claim {
	yes, no := true, false
	return []types.Claim{
		{Class: "economics", Text: "rates will rise", Location: "US", AlignmentStatus: types.AlignmentExact, Validated: true, Outcome: &yes, Post: types.PostSnapshot{Author: "Ann"}},
		{Class: "economics", Text: "gold will rally", AlignmentStatus: types.AlignmentFuzzy, Validated: true, Outcome: &no},
		{Class: "technology", Text: "AI replaces search", Location: "EU", AlignmentStatus: types.AlignmentUnmatched},
	}
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunSummary(RunSummary{
		Total:     4,
		Processed: 4,
		Errors:    1,
		Duration:  1500 * time.Millisecond,
		Claims:    sampleClaims(),
		Output:    "predictions.json",
		RunID:     "5f0c",
	})
	output := buf.String()

	assert.Contains(t, output, "EXTRACTION SUMMARY")
	assert.Contains(t, output, "4/4 processed")
	assert.Contains(t, output, "Errors:     1")
	assert.Contains(t, output, "Claims:     3")
	assert.Contains(t, output, "1.5s")
	assert.Contains(t, output, "predictions.json")
	assert.Contains(t, output, "Run ID:     5f0c")
	assert.Contains(t, output, "Top classes")
	assert.Contains(t, output, "economics")
	assert.Contains(t, output, "unknown")
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintStats(sampleClaims())
	output := buf.String()

	assert.Contains(t, output, "RUN STATISTICS")
	assert.Contains(t, output, "Total:       3")
	assert.Contains(t, output, "Validated:   2")
	assert.Contains(t, output, "Correct:     1")
	assert.Contains(t, output, "Incorrect:   1")
	assert.Contains(t, output, "Accuracy:    50.0%")
	assert.Contains(t, output, "technology")
}

func TestPrintStats_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintStats(nil)
	assert.Contains(t, buf.String(), "Accuracy:    0.0%")
	assert.NotContains(t, buf.String(), "Classes")
}

func TestPrintClaims(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	claims := sampleClaims()
	for i := 0; i < 4; i++ {
		claims = append(claims, types.Claim{Class: "misc", Text: "filler", AlignmentStatus: types.AlignmentExact})
	}
	p.PrintClaims(claims)
	output := buf.String()

	assert.Contains(t, output, "EXTRACTED CLAIMS")
	assert.Contains(t, output, "[economics] rates will rise")
	assert.Contains(t, output, "UNMATCHED")
	assert.Contains(t, output, "... and 2 more claims")
}

func TestPrintClaims_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintClaims(nil)
	assert.Empty(t, buf.String())
}

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProgress(pipeline.ProgressEvent{Step: pipeline.StepStart, Message: "Extracting claims from 2 posts"})
	p.PrintProgress(pipeline.ProgressEvent{Step: pipeline.StepPost, Message: "Post 1/2: 1 claims"})
	p.PrintProgress(pipeline.ProgressEvent{Step: pipeline.StepPostError, PostID: "42", Message: "backend call failed"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Extracting claims from 2 posts")
	assert.Contains(t, lines[1], "Post 1/2")
	assert.Contains(t, lines[2], "post 42: backend call failed")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "ééé...", truncate("éééééééé", 6))
}
