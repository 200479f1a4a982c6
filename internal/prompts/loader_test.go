package prompts

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ClaimInstruction(t *testing.T) {
	ClearCache()

	prompt, err := Get(ExtractionFile, "claim-instruction")
	require.NoError(t, err)
	assert.Contains(t, prompt, "location")
	assert.Contains(t, prompt, "prediction")
	assert.Contains(t, prompt, "justification")
}

func TestGet_StrictInstructionHasYearPlaceholder(t *testing.T) {
	prompt, err := Get(ExtractionFile, "claim-instruction-strict")
	require.NoError(t, err)
	assert.Equal(t, []string{"Year"}, Placeholders(prompt))
	assert.Contains(t, Format(prompt, map[string]string{"Year": "2025"}), "(2025)")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(ExtractionFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestList_Sorted(t *testing.T) {
	keys, err := List(ExtractionFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"claim-instruction", "claim-instruction-strict"}, keys)
}

func TestStore_CachesParsedFile(t *testing.T) {
	fsys := fstest.MapFS{
		"p.json": {Data: []byte(`{"a": "first"}`)},
	}
	store := NewStore(fsys)

	got, err := store.Get("p.json", "a")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	// Changing the file is invisible until the cache is cleared
	fsys["p.json"] = &fstest.MapFile{Data: []byte(`{"a": "second"}`)}
	got, _ = store.Get("p.json", "a")
	assert.Equal(t, "first", got)

	store.Clear()
	got, _ = store.Get("p.json", "a")
	assert.Equal(t, "second", got)
}

func TestStore_InvalidJSON(t *testing.T) {
	store := NewStore(fstest.MapFS{"bad.json": {Data: []byte(`not json`)}})
	_, err := store.Get("bad.json", "a")
	assert.ErrorContains(t, err, "failed to parse prompt file")
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", Format(template, data))
	assert.Equal(t, "Hello {{.Name}}", Format("Hello {{.Name}}", nil))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, Placeholders("{{.A}} {{.B}} {{.A}}"))
	assert.Empty(t, Placeholders("none"))
}
