package analytics

import (
	"sort"

	"github.com/jonathan/claimhound/internal/types"
)

// Filter selects claims by exact field match. Empty fields match anything.
type Filter struct {
	Category string `json:"category,omitempty"`
	Location string `json:"location,omitempty"`
	Author   string `json:"author,omitempty"`
}

// Empty reports whether the filter matches every claim.
func (f Filter) Empty() bool {
	return f == Filter{}
}

// Match reports whether c passes the filter. A Location of UnknownLocation
// matches claims with no location.
func (f Filter) Match(c types.Claim) bool {
	if f.Category != "" && c.Class != f.Category {
		return false
	}
	if f.Location != "" {
		loc := c.Location
		if loc == "" {
			loc = UnknownLocation
		}
		if loc != f.Location {
			return false
		}
	}
	if f.Author != "" && c.Post.Author != f.Author {
		return false
	}
	return true
}

// Apply returns the claims matching f, preserving order.
func Apply(claims []types.Claim, f Filter) []types.Claim {
	out := make([]types.Claim, 0, len(claims))
	for _, c := range claims {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// Options lists the distinct values present for each filter field, sorted.
type Options struct {
	Categories []string `json:"categories"`
	Locations  []string `json:"locations"`
	Authors    []string `json:"authors"`
}

// FilterOptions collects the values a dashboard can offer for filtering.
func FilterOptions(claims []types.Claim) Options {
	authors := make(map[string]int)
	for _, c := range claims {
		if c.Post.Author != "" {
			authors[c.Post.Author]++
		}
	}
	return Options{
		Categories: sortedKeys(CountByCategory(claims)),
		Locations:  sortedKeys(CountByLocation(claims)),
		Authors:    sortedKeys(authors),
	}
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
