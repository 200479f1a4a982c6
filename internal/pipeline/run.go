// Package pipeline drives claim extraction over a batch of posts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jonathan/claimhound/internal/claims"
	"github.com/jonathan/claimhound/internal/extraction"
	"github.com/jonathan/claimhound/internal/types"
)

// Progress steps reported through ProgressCallback.
const (
	StepStart     = "start"
	StepPost      = "post"
	StepPostError = "post_error"
	StepComplete  = "complete"
	StepCancelled = "cancelled"
)

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	PostID  string `json:"post_id,omitempty"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Claims  int    `json:"claims"`
}

// ProgressCallback is called when run progress occurs. Calls are serialized.
type ProgressCallback func(event ProgressEvent)

// Options holds configuration for a Runner
type Options struct {
	// Concurrency is the number of posts extracted in parallel; values below 2 run sequentially.
	Concurrency int
	// RateLimit caps backend calls per second; 0 disables limiting.
	RateLimit float64
	// Burst is the limiter bucket size, at least 1 when RateLimit is set.
	Burst int

	Model       string
	Instruction string
	Examples    []extraction.Example // nil selects extraction.DefaultExamples
	Fields      types.FieldMap

	Logger     *slog.Logger
	OnProgress ProgressCallback
}

// Result is the outcome of a run.
type Result struct {
	Claims         []types.Claim
	ProcessedCount int
	ErrorCount     int
	Duration       time.Duration
}

// Extracted returns the number of claims produced.
func (r *Result) Extracted() int {
	return len(r.Claims)
}

// Runner runs an Extractor over posts and normalizes the spans into claims.
type Runner struct {
	extractor extraction.Extractor
	opts      Options
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewRunner creates a Runner. A nil logger discards output.
func NewRunner(extractor extraction.Extractor, opts Options) *Runner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Instruction == "" {
		opts.Instruction = extraction.DefaultInstruction()
	}
	if opts.Examples == nil {
		opts.Examples = extraction.DefaultExamples()
	}
	opts.Fields = opts.Fields.WithDefaults()

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Runner{
		extractor: extractor,
		opts:      opts,
		limiter:   limiter,
		logger:    logger,
	}
}

// run holds the state shared by the workers of one Run call.
type run struct {
	mu        sync.Mutex
	total     int
	slots     [][]types.Claim
	processed int
	errors    int
}

// Run extracts claims from every post in order. A failing post is logged and
// counted, never fatal. When ctx is cancelled, posts not yet started are
// skipped and the partial result is returned together with ctx.Err().
func (r *Runner) Run(ctx context.Context, posts []types.Post) (*Result, error) {
	start := time.Now()
	state := &run{
		total: len(posts),
		slots: make([][]types.Claim, len(posts)),
	}

	r.emit(state, ProgressEvent{
		Step:    StepStart,
		Message: fmt.Sprintf("Extracting claims from %d posts", len(posts)),
		Total:   len(posts),
	})

	if r.opts.Concurrency == 1 {
		for i := range posts {
			if ctx.Err() != nil {
				break
			}
			r.processPost(ctx, state, i, posts[i])
		}
	} else {
		var g errgroup.Group
		g.SetLimit(r.opts.Concurrency)
		for i := range posts {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				r.processPost(ctx, state, i, posts[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	result := &Result{
		ProcessedCount: state.processed,
		ErrorCount:     state.errors,
		Duration:       time.Since(start),
	}
	for _, slot := range state.slots {
		result.Claims = append(result.Claims, slot...)
	}
	if result.Claims == nil {
		result.Claims = []types.Claim{}
	}

	if err := ctx.Err(); err != nil {
		r.logger.Warn("extraction run cancelled",
			"processed", result.ProcessedCount,
			"total", len(posts),
			"error", err)
		r.emit(state, ProgressEvent{
			Step:    StepCancelled,
			Message: fmt.Sprintf("Cancelled after %d of %d posts", result.ProcessedCount, len(posts)),
			Total:   len(posts),
			Claims:  result.Extracted(),
		})
		return result, err
	}

	r.logger.Info("extraction run complete",
		"processed", result.ProcessedCount,
		"errors", result.ErrorCount,
		"claims", result.Extracted(),
		"duration", result.Duration)
	r.emit(state, ProgressEvent{
		Step:    StepComplete,
		Message: fmt.Sprintf("Extracted %d claims from %d posts (%d errors)", result.Extracted(), result.ProcessedCount, result.ErrorCount),
		Total:   len(posts),
		Claims:  result.Extracted(),
	})
	return result, nil
}

func (r *Runner) processPost(ctx context.Context, state *run, index int, post types.Post) {
	postID := post.Get(r.opts.Fields.ID)

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				// cancelled while waiting for a token: the post was never started
				return
			}
			// The deadline falls before the next token; the post cannot run.
			state.mu.Lock()
			state.processed++
			state.mu.Unlock()
			r.recordFailure(state, index, postID, &extraction.ExtractionError{
				PostID:  postID,
				Message: "rate limit wait exceeds the run deadline",
				Model:   r.opts.Model,
				Cause:   err,
			})
			return
		}
	}

	state.mu.Lock()
	state.processed++
	state.mu.Unlock()

	spans, err := r.extractor.Extract(ctx, extraction.Request{
		Text:        post.Get(r.opts.Fields.Text),
		Instruction: r.opts.Instruction,
		Examples:    r.opts.Examples,
		Model:       r.opts.Model,
	})
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			r.logger.Debug("extraction interrupted by cancellation", "post_id", postID, "index", index)
			return
		}

		var extractionErr *extraction.ExtractionError
		if errors.As(err, &extractionErr) && extractionErr.PostID == "" {
			extractionErr.PostID = postID
		}
		r.recordFailure(state, index, postID, err)
		return
	}

	postClaims := claims.NormalizeAll(spans, post, r.opts.Fields)

	state.mu.Lock()
	state.slots[index] = postClaims
	state.mu.Unlock()

	r.logger.Debug("post processed", "post_id", postID, "index", index, "claims", len(postClaims))
	r.emit(state, ProgressEvent{
		Step:    StepPost,
		Message: fmt.Sprintf("Post %d/%d: %d claims", index+1, state.total, len(postClaims)),
		PostID:  postID,
		Index:   index,
		Total:   state.total,
		Claims:  len(postClaims),
	})
}

// recordFailure counts a failed post and reports it.
func (r *Runner) recordFailure(state *run, index int, postID string, err error) {
	state.mu.Lock()
	state.errors++
	state.mu.Unlock()

	r.logger.Warn("extraction failed", "post_id", postID, "index", index, "error", err)
	r.emit(state, ProgressEvent{
		Step:    StepPostError,
		Message: err.Error(),
		PostID:  postID,
		Index:   index,
		Total:   state.total,
	})
}

// emit calls the progress callback if configured, one event at a time.
func (r *Runner) emit(state *run, event ProgressEvent) {
	if r.opts.OnProgress == nil {
		return
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	r.opts.OnProgress(event)
}
