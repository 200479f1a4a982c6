package extraction

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/claimhound/internal/llm"
	"github.com/jonathan/claimhound/internal/types"
)

type fakeClient struct {
	response string
	err      error
	wait     bool
	prompts  []string
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateJSON(ctx, prompt, tier)
}

func (f *fakeClient) GenerateJSON(ctx context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.wait {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.response, f.err
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }

func (f *fakeClient) Close() error { return nil }

func TestLLMExtractor_Extract(t *testing.T) {
	client := &fakeClient{response: `{"extractions": [
		{"extraction_class": "economics", "extraction_text": "dollar",
		 "attributes": {"location": "global", "prediction": "The dollar will weaken", "confidence": 0.8}},
		{"extraction_class": "politics", "extraction_text": "made up phrase"}
	]}`}
	e := NewLLMExtractor(client)

	spans, err := e.Extract(context.Background(), Request{
		Text:        "Nations are dumping the dollar.",
		Instruction: "Extract predictions.",
		Examples:    DefaultExamples(),
	})
	require.NoError(t, err)
	require.Len(t, spans, 2)

	assert.Equal(t, "economics", spans[0].Class)
	assert.Equal(t, types.AlignmentExact, spans[0].Status)
	assert.Equal(t, &types.CharInterval{Start: 24, End: 30}, spans[0].Interval)
	assert.Equal(t, "global", spans[0].Attributes.Get("location"))
	assert.Equal(t, "0.8", spans[0].Attributes.Get("confidence"))

	assert.Equal(t, types.AlignmentUnmatched, spans[1].Status)
	assert.Nil(t, spans[1].Interval)
	assert.Equal(t, "", spans[1].Attributes.Get("location"))

	require.Len(t, client.prompts, 1)
	prompt := client.prompts[0]
	assert.True(t, strings.HasPrefix(prompt, "Extract predictions."))
	assert.Contains(t, prompt, "electric vehicles")
	assert.Contains(t, prompt, "Nations are dumping the dollar.")
}

func TestLLMExtractor_DefaultInstruction(t *testing.T) {
	client := &fakeClient{response: `{"extractions": []}`}
	e := NewLLMExtractor(client)

	spans, err := e.Extract(context.Background(), Request{Text: "hello"})
	require.NoError(t, err)
	assert.Empty(t, spans)
	assert.Contains(t, client.prompts[0], DefaultInstruction())
}

func TestLLMExtractor_Errors(t *testing.T) {
	backendErr := errors.New("quota exceeded")

	tests := []struct {
		name    string
		client  *fakeClient
		req     Request
		timeout time.Duration
		check   func(t *testing.T, err *ExtractionError)
	}{
		{
			name:   "backend failure",
			client: &fakeClient{err: backendErr},
			check: func(t *testing.T, err *ExtractionError) {
				assert.ErrorIs(t, err, backendErr)
				assert.False(t, err.Timeout())
			},
		},
		{
			name:    "timeout",
			client:  &fakeClient{wait: true},
			timeout: 10 * time.Millisecond,
			check: func(t *testing.T, err *ExtractionError) {
				assert.True(t, err.Timeout())
				assert.Contains(t, err.Error(), "timed out")
			},
		},
		{
			name:   "malformed response",
			client: &fakeClient{response: "I could not find any predictions."},
			check: func(t *testing.T, err *ExtractionError) {
				assert.Contains(t, err.Error(), "unusable backend response")
			},
		},
		{
			name:   "unknown model",
			client: &fakeClient{response: `[]`},
			req:    Request{Model: "other-model"},
			check: func(t *testing.T, err *ExtractionError) {
				assert.Equal(t, "fake-model", err.Model)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewLLMExtractor(tt.client, WithTimeout(tt.timeout))
			req := tt.req
			req.Text = "some post"

			spans, err := e.Extract(context.Background(), req)
			assert.Nil(t, spans)

			var extractionErr *ExtractionError
			require.ErrorAs(t, err, &extractionErr)
			tt.check(t, extractionErr)
		})
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{name: "envelope", raw: `{"extractions": [{"extraction_class": "war", "extraction_text": "ceasefire"}]}`, want: []string{"ceasefire"}},
		{name: "bare array", raw: `[{"extraction_class": "war", "extraction_text": "ceasefire"}]`, want: []string{"ceasefire"}},
		{name: "fenced", raw: "```json\n{\"extractions\": [{\"class\": \"war\", \"text\": \"ceasefire\"}]}\n```", want: []string{"ceasefire"}},
		{name: "empty list", raw: `{"extractions": []}`, want: []string{}},
		{name: "null list means no claims", raw: `{"extractions": null}`, want: []string{}},
		{name: "drops items without text", raw: `[{"extraction_class": "war"}, {"extraction_text": "x"}]`, want: []string{"x"}},
		{name: "missing field", raw: `{"results": []}`, wantErr: true},
		{name: "empty", raw: "  ", wantErr: true},
		{name: "prose", raw: "no json here", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans, err := ParseResponse(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			texts := make([]string, 0, len(spans))
			for _, s := range spans {
				texts = append(texts, s.Text)
			}
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestParseResponse_CountsDropped(t *testing.T) {
	spans, dropped, err := parseResponse(`[{"extraction_class": "war"}, {"extraction_text": "  "}, {"extraction_text": "x"}]`)
	require.NoError(t, err)
	assert.Len(t, spans, 1)
	assert.Equal(t, 2, dropped)
}

func TestLLMExtractor_NullExtractionsIsZeroClaims(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := &fakeClient{response: `{"extractions": null}`}

	spans, err := NewLLMExtractor(client, WithLogger(logger)).Extract(context.Background(), Request{Text: "nothing here"})
	require.NoError(t, err)
	assert.Empty(t, spans)

	client.response = `[{"extraction_class": "war"}]`
	spans, err = NewLLMExtractor(client, WithLogger(logger)).Extract(context.Background(), Request{Text: "war"})
	require.NoError(t, err)
	assert.Empty(t, spans)
	assert.Contains(t, logs.String(), "dropped extractions without text")
}

func TestAttributesGet(t *testing.T) {
	attrs := Attributes{
		"location": "Europe",
		"empty":    nil,
		"year":     2030,
		"tags":     []any{"a", "b"},
	}

	assert.Equal(t, "Europe", attrs.Get("location"))
	assert.Equal(t, "", attrs.Get("empty"))
	assert.Equal(t, "", attrs.Get("missing"))
	assert.Equal(t, "2030", attrs.Get("year"))
	assert.Equal(t, `["a","b"]`, attrs.Get("tags"))

	var nilAttrs Attributes
	assert.Equal(t, "", nilAttrs.Get("location"))
}

func TestAttributesWithout(t *testing.T) {
	attrs := Attributes{"location": "x", "prediction": "y", "certainty": true}

	assert.Equal(t, map[string]any{"certainty": true}, attrs.Without(AttrLocation, AttrPrediction))
	assert.Nil(t, Attributes{"location": "x"}.Without(AttrLocation))
}

func TestDefaultExamplesRender(t *testing.T) {
	rendered, err := promptExamples(DefaultExamples())
	require.NoError(t, err)
	require.Len(t, rendered, 2)
	assert.Contains(t, rendered[1].Output, `"extraction_text": "two bucket theory"`)
	assert.Contains(t, rendered[1].Output, `"extraction_text": "dollar"`)
}
