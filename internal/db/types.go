package db

import (
	"time"

	"github.com/google/uuid"
)

// Run status values
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusCancelled = "cancelled"
	RunStatusFailed    = "failed"
)

// Run represents an extraction run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Source      string     `json:"source"`
	Provider    string     `json:"provider"`
	Model       string     `json:"model"`
	Status      string     `json:"status"`
	TotalPosts  int        `json:"total_posts"`
	Processed   int        `json:"processed"`
	Errors      int        `json:"errors"`
	Claims      int        `json:"claims"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunInput describes a run when it starts
type RunInput struct {
	Source     string
	Provider   string
	Model      string
	TotalPosts int
}

// RunOutcome holds the counters recorded when a run finishes
type RunOutcome struct {
	Status    string
	Processed int
	Errors    int
	Claims    int
}

// ClaimFilters holds optional filters for listing claims
type ClaimFilters struct {
	Category string
	Location string
	Author   string
	Limit    int
}
