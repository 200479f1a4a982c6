// Package types provides type definitions for structured data used throughout the claimhound system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Post is one social-media item as exported, keyed by the source column names.
// Values are kept verbatim; numeric and date parsing is left to consumers.
type Post map[string]string

// Get returns the value of a column, or "" when the column is absent.
func (p Post) Get(column string) string {
	if p == nil {
		return ""
	}
	return p[column]
}

// FieldMap names the source columns that carry the well-known post fields.
type FieldMap struct {
	ID        string `json:"id" yaml:"id" mapstructure:"id"`
	Text      string `json:"text" yaml:"text" mapstructure:"text"`
	Author    string `json:"author" yaml:"author" mapstructure:"author"`
	Handle    string `json:"handle" yaml:"handle" mapstructure:"handle"`
	CreatedAt string `json:"created_at" yaml:"created_at" mapstructure:"created_at"`
	URL       string `json:"url" yaml:"url" mapstructure:"url"`
	Likes     string `json:"likes" yaml:"likes" mapstructure:"likes"`
	Retweets  string `json:"retweets" yaml:"retweets" mapstructure:"retweets"`
	Views     string `json:"views" yaml:"views" mapstructure:"views"`
}

// DefaultFieldMap returns the column names used by the common tweet export format.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		ID:        "id",
		Text:      "tweetText",
		Author:    "tweetAuthor",
		Handle:    "handle",
		CreatedAt: "createdAt",
		URL:       "tweetURL",
		Likes:     "likeCount",
		Retweets:  "retweetCount",
		Views:     "views",
	}
}

// WithDefaults fills any empty column name from DefaultFieldMap.
func (f FieldMap) WithDefaults() FieldMap {
	d := DefaultFieldMap()
	if f.ID == "" {
		f.ID = d.ID
	}
	if f.Text == "" {
		f.Text = d.Text
	}
	if f.Author == "" {
		f.Author = d.Author
	}
	if f.Handle == "" {
		f.Handle = d.Handle
	}
	if f.CreatedAt == "" {
		f.CreatedAt = d.CreatedAt
	}
	if f.URL == "" {
		f.URL = d.URL
	}
	if f.Likes == "" {
		f.Likes = d.Likes
	}
	if f.Retweets == "" {
		f.Retweets = d.Retweets
	}
	if f.Views == "" {
		f.Views = d.Views
	}
	return f
}

// Snapshot copies the well-known fields of a post into a self-contained PostSnapshot.
// Missing columns become empty strings.
func (f FieldMap) Snapshot(p Post) PostSnapshot {
	return PostSnapshot{
		ID:        p.Get(f.ID),
		Text:      p.Get(f.Text),
		Author:    p.Get(f.Author),
		Handle:    p.Get(f.Handle),
		CreatedAt: p.Get(f.CreatedAt),
		URL:       p.Get(f.URL),
		Likes:     p.Get(f.Likes),
		Retweets:  p.Get(f.Retweets),
		Views:     p.Get(f.Views),
	}
}

// PostSnapshot is the fixed-shape copy of a post embedded in every claim.
type PostSnapshot struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author"`
	Handle    string `json:"handle"`
	CreatedAt string `json:"created_at"`
	URL       string `json:"url"`
	Likes     string `json:"likes"`
	Retweets  string `json:"retweets"`
	Views     string `json:"views"`
}
