package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaim_JSONFieldNames(t *testing.T) {
	outcome := true
	claim := Claim{
		Class:           "economics",
		Text:            "dollar",
		Interval:        &CharInterval{Start: 4, End: 10},
		AlignmentStatus: AlignmentExact,
		ExtractionIndex: 1,
		Location:        "global",
		Prediction:      "The dollar will weaken",
		Validated:       true,
		Outcome:         &outcome,
		Post:            PostSnapshot{ID: "42", Text: "the dollar falls", URL: "https://x.com/a/status/42"},
	}

	jsonBytes, err := json.MarshalIndent(claim, "", "  ")
	require.NoError(t, err)
	out := string(jsonBytes)
	assert.Contains(t, out, `"extraction_class": "economics"`)
	assert.Contains(t, out, `"extraction_text": "dollar"`)
	assert.Contains(t, out, `"charInterval": {`)
	assert.Contains(t, out, `"alignmentStatus": "MATCH_EXACT"`)
	assert.Contains(t, out, `"extractionIndex": 1`)
	assert.Contains(t, out, `"original_tweet": {`)
	assert.Contains(t, out, `"created_at": ""`)
	assert.NotContains(t, out, `"attributes"`)

	var decoded Claim
	require.NoError(t, json.Unmarshal(jsonBytes, &decoded))
	assert.Equal(t, claim, decoded)
}

func TestClaim_NilIntervalMarshalsNull(t *testing.T) {
	jsonBytes, err := json.Marshal(Claim{Text: "x", AlignmentStatus: AlignmentUnmatched})
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"charInterval":null`)
}

func TestClaim_EffectiveInterval(t *testing.T) {
	tests := []struct {
		name     string
		claim    Claim
		expected CharInterval
	}{
		{
			name:     "no interval falls back to extraction text length",
			claim:    Claim{Text: "twelve chars", AlignmentStatus: AlignmentUnmatched},
			expected: CharInterval{Start: 0, End: 12},
		},
		{
			name:     "aligned interval is used as is",
			claim:    Claim{Text: "dollar", Interval: &CharInterval{Start: 4, End: 10}, AlignmentStatus: AlignmentExact},
			expected: CharInterval{Start: 4, End: 10},
		},
		{
			name:     "unmatched interval is not trusted",
			claim:    Claim{Text: "abc", Interval: &CharInterval{Start: 50, End: 53}, AlignmentStatus: AlignmentUnmatched},
			expected: CharInterval{Start: 0, End: 3},
		},
		{
			name:     "length counts characters not bytes",
			claim:    Claim{Text: "💥 déjà", AlignmentStatus: AlignmentUnmatched},
			expected: CharInterval{Start: 0, End: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.claim.EffectiveInterval())
		})
	}
}

func TestCharInterval_Within(t *testing.T) {
	assert.True(t, CharInterval{Start: 0, End: 0}.Within(0))
	assert.True(t, CharInterval{Start: 2, End: 5}.Within(5))
	assert.False(t, CharInterval{Start: -1, End: 2}.Within(5))
	assert.False(t, CharInterval{Start: 3, End: 2}.Within(5))
	assert.False(t, CharInterval{Start: 0, End: 6}.Within(5))
}

func TestClaim_Aligned(t *testing.T) {
	post := PostSnapshot{Text: "the dollar falls"}
	assert.True(t, Claim{Interval: &CharInterval{Start: 4, End: 10}, AlignmentStatus: AlignmentFuzzy, Post: post}.Aligned())
	assert.False(t, Claim{Interval: &CharInterval{Start: 4, End: 40}, AlignmentStatus: AlignmentExact, Post: post}.Aligned())
	assert.False(t, Claim{AlignmentStatus: AlignmentExact, Post: post}.Aligned())
}

func TestFieldMap_Snapshot(t *testing.T) {
	post := Post{
		"id":          "1",
		"tweetText":   "text",
		"tweetAuthor": "Jane",
		"tweetURL":    "https://example.com/1",
		"extra":       "ignored",
	}

	snap := DefaultFieldMap().Snapshot(post)
	assert.Equal(t, PostSnapshot{ID: "1", Text: "text", Author: "Jane", URL: "https://example.com/1"}, snap)
}

func TestFieldMap_WithDefaults(t *testing.T) {
	f := FieldMap{Text: "body"}.WithDefaults()
	assert.Equal(t, "body", f.Text)
	assert.Equal(t, "id", f.ID)
	assert.Equal(t, "tweetURL", f.URL)
}

func TestPost_GetNil(t *testing.T) {
	var p Post
	assert.Equal(t, "", p.Get("id"))
}

func TestRunStats_Unvalidated(t *testing.T) {
	assert.Equal(t, 3, RunStats{Total: 5, Validated: 2}.Unvalidated())
}
