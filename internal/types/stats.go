// Package types provides type definitions for structured data used throughout the claimhound system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// RunStats is the review summary derived from a claim collection.
type RunStats struct {
	Total     int     `json:"total"`
	Validated int     `json:"validated"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Accuracy  float64 `json:"accuracy"` // percent, 0 when nothing is validated
}

// Unvalidated returns the number of claims still awaiting review.
func (s RunStats) Unvalidated() int {
	return s.Total - s.Validated
}
