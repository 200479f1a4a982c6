// Package analytics computes summary statistics over extracted claims.
// Every function is pure; empty input yields empty maps and zero stats.
package analytics

import (
	"sort"

	"github.com/jonathan/claimhound/internal/types"
)

// UnknownLocation is the bucket for claims without a location.
const UnknownLocation = "unknown"

// CountByCategory counts claims per extraction class.
func CountByCategory(claims []types.Claim) map[string]int {
	counts := make(map[string]int)
	for _, c := range claims {
		counts[c.Class]++
	}
	return counts
}

// CountByLocation counts claims per location. An empty location counts as UnknownLocation.
func CountByLocation(claims []types.Claim) map[string]int {
	counts := make(map[string]int)
	for _, c := range claims {
		loc := c.Location
		if loc == "" {
			loc = UnknownLocation
		}
		counts[loc]++
	}
	return counts
}

// ComputeStats derives validation statistics. Accuracy is correct/validated*100,
// or 0 when nothing has been validated.
func ComputeStats(claims []types.Claim) types.RunStats {
	stats := types.RunStats{Total: len(claims)}
	for _, c := range claims {
		if !c.Validated {
			continue
		}
		stats.Validated++
		if c.Outcome == nil {
			continue
		}
		if *c.Outcome {
			stats.Correct++
		} else {
			stats.Incorrect++
		}
	}
	if stats.Validated > 0 {
		stats.Accuracy = float64(stats.Correct) / float64(stats.Validated) * 100
	}
	return stats
}

// Count is one key of a count map.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// TopN returns the n largest counts, ordered by count descending then key.
// n <= 0 returns every entry.
func TopN(counts map[string]int, n int) []Count {
	out := make([]Count, 0, len(counts))
	for k, v := range counts {
		out = append(out, Count{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
