// Package prompts provides a loader for externalized LLM prompt templates.
// Prompts are stored as JSON files of key → template and embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// ExtractionFile holds the claim extraction instructions.
const ExtractionFile = "extraction.json"

var placeholderPattern = regexp.MustCompile(`\{\{\.([A-Za-z0-9_]+)\}\}`)

// Store loads prompt files from a filesystem and caches the parsed contents.
type Store struct {
	fsys fs.FS

	mu    sync.RWMutex
	cache map[string]map[string]string
}

// NewStore creates a Store over fsys. Tests can pass an fstest.MapFS.
func NewStore(fsys fs.FS) *Store {
	return &Store{fsys: fsys, cache: make(map[string]map[string]string)}
}

var defaultStore = NewStore(promptFiles)

// Get retrieves a prompt by filename and key from the embedded prompts.
func Get(filename, key string) (string, error) {
	return defaultStore.Get(filename, key)
}

// MustGet retrieves a prompt by filename and key, panicking if not found.
// Use this for prompts that are required at initialization time.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// List returns the sorted prompt keys of an embedded file.
func List(filename string) ([]string, error) {
	return defaultStore.List(filename)
}

// ClearCache clears the embedded prompt cache. Useful for testing.
func ClearCache() {
	defaultStore.Clear()
}

// Get retrieves a prompt by filename and key.
func (s *Store) Get(filename, key string) (string, error) {
	prompts, err := s.load(filename)
	if err != nil {
		return "", err
	}

	prompt, exists := prompts[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// List returns the sorted prompt keys in a file.
func (s *Store) List(filename string) ([]string, error) {
	prompts, err := s.load(filename)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(prompts))
	for key := range prompts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear drops all cached files.
func (s *Store) Clear() {
	s.mu.Lock()
	s.cache = make(map[string]map[string]string)
	s.mu.Unlock()
}

func (s *Store) load(filename string) (map[string]string, error) {
	s.mu.RLock()
	prompts, exists := s.cache[filename]
	s.mu.RUnlock()
	if exists {
		return prompts, nil
	}

	data, err := fs.ReadFile(s.fsys, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	s.mu.Lock()
	s.cache[filename] = prompts
	s.mu.Unlock()

	return prompts, nil
}

// Format replaces template placeholders in the form {{.Key}} with values from data.
// Placeholders without a value are left in place.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		result = strings.ReplaceAll(result, "{{."+key+"}}", value)
	}
	return result
}

// Placeholders returns the distinct placeholder names used by a template, in order of appearance.
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
