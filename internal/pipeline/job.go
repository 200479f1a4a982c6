package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/claimhound/internal/claims"
	"github.com/jonathan/claimhound/internal/db"
	"github.com/jonathan/claimhound/internal/ingestion"
	"github.com/jonathan/claimhound/internal/schemas"
	"github.com/jonathan/claimhound/internal/types"
)

// Persister records runs and their claims. *db.DB satisfies it.
type Persister interface {
	CreateRun(ctx context.Context, in db.RunInput) (uuid.UUID, error)
	SaveClaims(ctx context.Context, runID uuid.UUID, claims []types.Claim) error
	CompleteRun(ctx context.Context, runID uuid.UUID, out db.RunOutcome) error
}

// Job describes a file-to-file extraction run.
type Job struct {
	PostsFile  string
	ClaimsFile string
	Provider   string
	// Store is optional. Persistence failures are logged and never fail the job.
	Store Persister
}

// JobResult is the outcome of RunJob.
type JobResult struct {
	*Result
	Total    int
	RunID    uuid.UUID // uuid.Nil when the run was not persisted
	Warnings []*claims.SerializationError
}

// RunJob loads the posts artifact, runs extraction, writes and validates the
// claims artifact and, when a store is configured, records the run.
// A cancelled run leaves the claims file untouched.
func (r *Runner) RunJob(ctx context.Context, job Job) (*JobResult, error) {
	posts, err := ingestion.LoadPostsJSON(job.PostsFile)
	if err != nil {
		return nil, err
	}

	out := &JobResult{Total: len(posts)}
	out.RunID = r.startRecord(ctx, job, len(posts))

	result, err := r.Run(ctx, posts)
	out.Result = result
	if err != nil {
		r.finishRecord(ctx, job.Store, out, db.RunStatusCancelled)
		return out, err
	}

	warnings, err := claims.WriteClaimsJSON(job.ClaimsFile, result.Claims)
	out.Warnings = warnings
	for _, w := range warnings {
		r.logger.Warn("claim attribute sanitized", "index", w.ClaimIndex, "field", w.Field, "error", w.Message)
	}
	if err != nil {
		r.finishRecord(ctx, job.Store, out, db.RunStatusFailed)
		return out, err
	}

	if err := schemas.ValidateClaimsFile(job.ClaimsFile); err != nil {
		r.finishRecord(ctx, job.Store, out, db.RunStatusFailed)
		return out, fmt.Errorf("claims artifact failed validation: %w", err)
	}

	if job.Store != nil && out.RunID != uuid.Nil {
		if err := job.Store.SaveClaims(ctx, out.RunID, result.Claims); err != nil {
			r.logger.Warn("failed to persist claims", "run_id", out.RunID, "error", err)
			r.finishRecord(ctx, job.Store, out, db.RunStatusFailed)
			return out, nil
		}
	}

	r.finishRecord(ctx, job.Store, out, db.RunStatusCompleted)
	return out, nil
}

func (r *Runner) startRecord(ctx context.Context, job Job, total int) uuid.UUID {
	if job.Store == nil {
		return uuid.Nil
	}
	id, err := job.Store.CreateRun(ctx, db.RunInput{
		Source:     job.PostsFile,
		Provider:   job.Provider,
		Model:      r.opts.Model,
		TotalPosts: total,
	})
	if err != nil {
		r.logger.Warn("continuing without database persistence", "error", err)
		return uuid.Nil
	}
	r.logger.Debug("run recorded", "run_id", id)
	return id
}

func (r *Runner) finishRecord(ctx context.Context, store Persister, out *JobResult, status string) {
	if store == nil || out.RunID == uuid.Nil {
		return
	}
	outcome := db.RunOutcome{Status: status}
	if out.Result != nil {
		outcome.Processed = out.ProcessedCount
		outcome.Errors = out.ErrorCount
		outcome.Claims = out.Extracted()
	}
	// The run row is closed even when ctx was cancelled.
	if err := store.CompleteRun(context.WithoutCancel(ctx), out.RunID, outcome); err != nil {
		r.logger.Warn("failed to complete run record", "run_id", out.RunID, "error", err)
	}
}
