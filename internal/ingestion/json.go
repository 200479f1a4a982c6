package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/claimhound/internal/fsutil"
	"github.com/jonathan/claimhound/internal/types"
)

// LoadPostsJSON reads the posts artifact. Non-string scalar values written by
// other tools are converted to their JSON text so every field stays a string.
func LoadPostsJSON(path string) ([]types.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FormatError{Path: path, Message: "posts file not found", Cause: err}
		}
		return nil, fmt.Errorf("failed to read posts file: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, &FormatError{Path: path, Message: "posts file is not a JSON array of objects", Cause: err}
	}

	posts := make([]types.Post, 0, len(raw))
	for _, obj := range raw {
		post := make(types.Post, len(obj))
		for k, v := range obj {
			post[k] = stringify(v)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// WritePostsJSON writes posts as an indented JSON array, replacing path atomically.
func WritePostsJSON(path string, posts []types.Post) error {
	if posts == nil {
		posts = []types.Post{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(posts); err != nil {
		return fmt.Errorf("failed to marshal posts: %w", err)
	}

	return fsutil.WriteFileAtomic(path, buf.Bytes())
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
