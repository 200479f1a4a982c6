package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validClaims = `[
  {
    "extraction_class": "economics",
    "extraction_text": "dollar",
    "charInterval": {"start": 4, "end": 10},
    "alignmentStatus": "MATCH_EXACT",
    "extractionIndex": 1,
    "location": "global",
    "prediction": "The dollar weakens",
    "justification": "",
    "attributes": {"yearExpected": "2030"},
    "original_tweet": {"id": "1", "text": "The dollar is done", "url": "https://x.com/a/status/1"}
  },
  {
    "extraction_class": "other",
    "extraction_text": "vibes",
    "charInterval": null,
    "alignmentStatus": "UNMATCHED",
    "location": "",
    "prediction": "",
    "justification": "",
    "validated": true,
    "outcome": false,
    "original_tweet": {"id": "2", "text": "", "url": ""}
  }
]`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artifact.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateClaimsFile(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantField string
	}{
		{name: "valid", content: validClaims},
		{name: "empty array", content: `[]`},
		{
			name:      "bad alignment status",
			content:   `[{"extraction_class": "a", "extraction_text": "b", "alignmentStatus": "MAYBE", "location": "", "prediction": "", "justification": "", "original_tweet": {"id": "1", "text": "", "url": ""}}]`,
			wantField: "0.alignmentStatus",
		},
		{
			name:      "missing snapshot",
			content:   `[{"extraction_class": "a", "extraction_text": "b", "alignmentStatus": "UNMATCHED", "location": "", "prediction": "", "justification": ""}]`,
			wantField: "0",
		},
		{
			name:      "not an array",
			content:   `{"claims": []}`,
			wantField: "(root)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateClaimsFile(writeTemp(t, tt.content))
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			fields := make([]string, 0, len(validationErr.Errors))
			for _, fe := range validationErr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestValidatePostsFile(t *testing.T) {
	assert.NoError(t, ValidatePostsFile(writeTemp(t, `[{"id": "1", "tweetText": "hi"}, {}]`)))

	err := ValidatePostsFile(writeTemp(t, `[{"id": 1}]`))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestValidateFile_NotFound(t *testing.T) {
	err := ValidateClaimsFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateFile_UnknownSchema(t *testing.T) {
	err := ValidateFile("nope.schema.json", writeTemp(t, `[]`))

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "nope.schema.json", loadErr.Path)
}

func TestValidateBytes(t *testing.T) {
	assert.NoError(t, ValidateBytes(ClaimsSchema, []byte(validClaims)))
	assert.Error(t, ValidateBytes(ClaimsSchema, []byte(`[{"extraction_class": 3}]`)))
}

func TestValidateFile_MalformedJSON(t *testing.T) {
	err := ValidateClaimsFile(writeTemp(t, "{ invalid json }"))
	require.Error(t, err)
}

func TestValidateJSON_Files(t *testing.T) {
	schemaPath := writeTemp(t, `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {"name": {"type": "string"}}
	}`)
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"name": "x"}`), 0644))
	require.NoError(t, os.WriteFile(bad, []byte(`{"name": 1}`), 0644))

	assert.NoError(t, ValidateJSON(schemaPath, good))

	var validationErr *ValidationError
	require.ErrorAs(t, ValidateJSON(schemaPath, bad), &validationErr)

	err := ValidateJSON(filepath.Join(dir, "nonexistent_schema.json"), good)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSONString_Valid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`
	jsonContent := `{"name": "test"}`

	err := ValidateJSONString(schemaContent, jsonContent)
	assert.NoError(t, err)
}

func TestValidateJSONString_Invalid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`
	jsonContent := `{"age": 30}`

	err := ValidateJSONString(schemaContent, jsonContent)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "name")
	assert.Contains(t, errorMsg, "age")
}
