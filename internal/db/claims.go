package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/claimhound/internal/analytics"
	"github.com/jonathan/claimhound/internal/types"
)

const insertClaimSQL = `INSERT INTO claims (
	run_id, position, extraction_class, extraction_text, char_start, char_end,
	alignment_status, extraction_index, location, prediction, justification,
	attributes, validated, outcome, post_id, post_author, post
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

// SaveClaims stores the claims of a run in one transaction, keeping their order.
func (db *DB) SaveClaims(ctx context.Context, runID uuid.UUID, claims []types.Claim) error {
	if len(claims) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, c := range claims {
		args, err := claimArgs(runID, i, c)
		if err != nil {
			return err
		}
		batch.Queue(insertClaimSQL, args...)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save claims: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit claims: %w", err)
	}
	return nil
}

// ListClaims returns the claims of a run in their original order
func (db *DB) ListClaims(ctx context.Context, runID uuid.UUID, filters ClaimFilters) ([]types.Claim, error) {
	query := `SELECT extraction_class, extraction_text, char_start, char_end, alignment_status,
		extraction_index, location, prediction, justification, attributes, validated, outcome, post
		FROM claims WHERE run_id = $1`
	args := []any{runID}
	argNum := 2

	if filters.Category != "" {
		query += fmt.Sprintf(" AND extraction_class = $%d", argNum)
		args = append(args, filters.Category)
		argNum++
	}
	switch filters.Location {
	case "":
	case analytics.UnknownLocation:
		query += fmt.Sprintf(" AND (location = $%d OR location = '')", argNum)
		args = append(args, filters.Location)
		argNum++
	default:
		query += fmt.Sprintf(" AND location = $%d", argNum)
		args = append(args, filters.Location)
		argNum++
	}
	if filters.Author != "" {
		query += fmt.Sprintf(" AND post_author = $%d", argNum)
		args = append(args, filters.Author)
		argNum++
	}
	query += " ORDER BY position ASC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	claims := []types.Claim{}
	for rows.Next() {
		var (
			row             claimRow
			attrs, postJSON []byte
		)
		if err := rows.Scan(&row.Class, &row.Text, &row.Start, &row.End, &row.Status,
			&row.Index, &row.Location, &row.Prediction, &row.Justification,
			&attrs, &row.Validated, &row.Outcome, &postJSON); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claim, err := row.toClaim(attrs, postJSON)
		if err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	return claims, nil
}

// claimRow holds the scalar columns of a claims row.
type claimRow struct {
	Class         string
	Text          string
	Start, End    *int
	Status        string
	Index         int
	Location      string
	Prediction    string
	Justification string
	Validated     bool
	Outcome       *bool
}

func claimArgs(runID uuid.UUID, position int, c types.Claim) ([]any, error) {
	var start, end *int
	if c.Interval != nil {
		s, e := c.Interval.Start, c.Interval.End
		start, end = &s, &e
	}

	var attrs []byte
	if len(c.Attributes) > 0 {
		b, err := json.Marshal(c.Attributes)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal attributes of claim %d: %w", position, err)
		}
		attrs = b
	}

	post, err := json.Marshal(c.Post)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal post of claim %d: %w", position, err)
	}

	return []any{
		runID, position, c.Class, c.Text, start, end,
		string(c.AlignmentStatus), c.ExtractionIndex, c.Location, c.Prediction, c.Justification,
		attrs, c.Validated, c.Outcome, c.Post.ID, c.Post.Author, post,
	}, nil
}

func (r claimRow) toClaim(attrs, postJSON []byte) (types.Claim, error) {
	claim := types.Claim{
		Class:           r.Class,
		Text:            r.Text,
		AlignmentStatus: types.AlignmentStatus(r.Status),
		ExtractionIndex: r.Index,
		Location:        r.Location,
		Prediction:      r.Prediction,
		Justification:   r.Justification,
		Validated:       r.Validated,
		Outcome:         r.Outcome,
	}
	if r.Start != nil && r.End != nil {
		claim.Interval = &types.CharInterval{Start: *r.Start, End: *r.End}
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &claim.Attributes); err != nil {
			return types.Claim{}, fmt.Errorf("failed to decode claim attributes: %w", err)
		}
	}
	if err := json.Unmarshal(postJSON, &claim.Post); err != nil {
		return types.Claim{}, fmt.Errorf("failed to decode claim post: %w", err)
	}
	return claim, nil
}
