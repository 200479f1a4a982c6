package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/jonathan/claimhound/internal/types"
)

// timestampLayouts are the post timestamp formats seen in exports, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.RubyDate, // Twitter API: Mon Jan 02 15:04:05 -0700 2006
	"January 2, 2006 at 03:04 PM",
	"2006-01-02",
	"01/02/2006",
}

// ParseTimestamp parses a post timestamp in any known layout.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TimelinePoint is the number of claims whose post was created on Date.
type TimelinePoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Timeline buckets claims by the day their post was created, in UTC, sorted by
// date. Claims with a missing or unparseable timestamp are skipped.
func Timeline(claims []types.Claim) []TimelinePoint {
	buckets := make(map[string]int)
	for _, c := range claims {
		t, ok := ParseTimestamp(c.Post.CreatedAt)
		if !ok {
			continue
		}
		buckets[t.UTC().Format(time.DateOnly)]++
	}

	out := make([]TimelinePoint, 0, len(buckets))
	for date, n := range buckets {
		out = append(out, TimelinePoint{Date: date, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
