package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jonathan/claimhound/internal/llm"
)

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 60 * time.Second

// LLMExtractor implements Extractor on top of an llm.Client.
type LLMExtractor struct {
	client  llm.Client
	tier    llm.ModelTier
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures an LLMExtractor.
type Option func(*LLMExtractor)

// WithTier selects the model tier used for extraction calls.
func WithTier(tier llm.ModelTier) Option {
	return func(e *LLMExtractor) { e.tier = tier }
}

// WithTimeout sets the per-call deadline; 0 disables it.
func WithTimeout(d time.Duration) Option {
	return func(e *LLMExtractor) { e.timeout = d }
}

// WithLogger sets the logger for per-call diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *LLMExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewLLMExtractor creates an extractor over client.
func NewLLMExtractor(client llm.Client, opts ...Option) *LLMExtractor {
	e := &LLMExtractor{
		client:  client,
		tier:    llm.TierLite,
		timeout: DefaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Model returns the backend model name used for calls.
func (e *LLMExtractor) Model() string {
	return e.client.GetModel(e.tier)
}

// Extract sends one post's text to the backend and returns the aligned spans.
func (e *LLMExtractor) Extract(ctx context.Context, req Request) ([]Span, error) {
	model := e.Model()
	if req.Model != "" && req.Model != model {
		return nil, &ExtractionError{
			Message: fmt.Sprintf("model %q is not served by this extractor", req.Model),
			Model:   model,
		}
	}

	examples, err := promptExamples(req.Examples)
	if err != nil {
		return nil, &ExtractionError{Message: "failed to render examples", Model: model, Cause: err}
	}
	instruction := req.Instruction
	if instruction == "" {
		instruction = DefaultInstruction()
	}
	prompt := llm.BuildExtractionPrompt(ClaimSchema(instruction), examples, req.Text)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	raw, err := e.client.GenerateJSON(ctx, prompt, e.tier)
	if err != nil {
		msg := "backend call failed"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			msg = "backend call timed out"
			if !errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
			}
		}
		return nil, &ExtractionError{Message: msg, Model: model, Cause: err}
	}

	spans, dropped, err := parseResponse(raw)
	if err != nil {
		return nil, &ExtractionError{Message: "unusable backend response", Model: model, Cause: err}
	}
	if dropped > 0 {
		e.logger.Debug("dropped extractions without text", "model", model, "dropped", dropped, "kept", len(spans))
	}
	return Align(req.Text, spans), nil
}

type rawExtraction struct {
	Class      string         `json:"extraction_class"`
	Text       string         `json:"extraction_text"`
	Attributes map[string]any `json:"attributes"`

	// Aliases some models use despite the instruction.
	AltClass string `json:"class"`
	AltText  string `json:"text"`
}

// ParseResponse decodes {"extractions": [...]} or a bare array of extractions.
// A null extractions list means no claims. Items without text are dropped
// since they cannot be aligned or reviewed.
func ParseResponse(raw string) ([]Span, error) {
	spans, _, err := parseResponse(raw)
	return spans, err
}

// parseResponse is ParseResponse that also reports how many items were dropped.
func parseResponse(raw string) ([]Span, int, error) {
	raw = strings.TrimSpace(llm.CleanJSONBlock(raw))
	if raw == "" {
		return nil, 0, fmt.Errorf("empty response")
	}

	var items []rawExtraction
	if strings.HasPrefix(raw, "[") {
		if err := decode(raw, &items); err != nil {
			return nil, 0, err
		}
	} else {
		var fields map[string]any
		if err := decode(raw, &fields); err != nil {
			return nil, 0, err
		}
		value, ok := fields["extractions"]
		if !ok {
			return nil, 0, fmt.Errorf("response has no extractions field")
		}
		if value != nil {
			var envelope struct {
				Extractions []rawExtraction `json:"extractions"`
			}
			if err := decode(raw, &envelope); err != nil {
				return nil, 0, err
			}
			items = envelope.Extractions
		}
	}

	spans := make([]Span, 0, len(items))
	dropped := 0
	for _, item := range items {
		class, text := item.Class, item.Text
		if class == "" {
			class = item.AltClass
		}
		if text == "" {
			text = item.AltText
		}
		if strings.TrimSpace(text) == "" {
			dropped++
			continue
		}
		spans = append(spans, Span{
			Class:      class,
			Text:       text,
			Attributes: Attributes(item.Attributes),
		})
	}
	return spans, dropped, nil
}

func decode(raw string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode extractions: %w", err)
	}
	return nil
}
