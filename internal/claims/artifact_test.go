package claims

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/claimhound/internal/types"
)

func TestWriteAndLoadClaims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.json")
	outcome := true
	claims := []types.Claim{
		{
			Class:           "economics",
			Text:            "dollar <crash>",
			Interval:        &types.CharInterval{Start: 4, End: 10},
			AlignmentStatus: types.AlignmentExact,
			ExtractionIndex: 1,
			Validated:       true,
			Outcome:         &outcome,
			Post:            types.PostSnapshot{ID: "1", Text: "The dollar <crash>"},
		},
		{
			Class:           "other",
			Text:            "unaligned",
			AlignmentStatus: types.AlignmentUnmatched,
			ExtractionIndex: 1,
			Post:            types.PostSnapshot{ID: "2"},
		},
	}

	warnings, err := WriteClaimsJSON(path, claims)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"dollar <crash>"`, "HTML must not be escaped")
	assert.Contains(t, string(raw), `"charInterval": null`)

	loaded, err := LoadClaimsJSON(path)
	require.NoError(t, err)
	assert.Equal(t, claims, loaded)
}

func TestWriteClaimsJSON_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	_, err := WriteClaimsJSON(path, nil)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))

	loaded, err := LoadClaimsJSON(path)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestWriteClaimsJSON_SanitizesAttributes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.json")
	claims := []types.Claim{
		{Class: "a", Text: "x", Attributes: map[string]any{"score": math.NaN(), "ok": "fine"}},
	}

	warnings, err := WriteClaimsJSON(path, claims)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "attributes.score", warnings[0].Field)
	assert.Equal(t, 0, warnings[0].ClaimIndex)

	loaded, err := LoadClaimsJSON(path)
	require.NoError(t, err)
	assert.Equal(t, "NaN", loaded[0].Attributes["score"])
	assert.Equal(t, "fine", loaded[0].Attributes["ok"])

	// input is left untouched
	assert.True(t, math.IsNaN(claims[0].Attributes["score"].(float64)))
}

func TestWriteClaimsJSON_FileError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := WriteClaimsJSON(filepath.Join(blocker, "out.json"), nil)

	var serr *SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, filepath.Join(blocker, "out.json"), serr.Path)
}

func TestLoadClaimsJSON_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not": "an array"}`), 0644))

	_, err := LoadClaimsJSON(bad)
	assert.Error(t, err)

	_, err = LoadClaimsJSON(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestSanitizeAttributes(t *testing.T) {
	out, replaced := SanitizeAttributes(nil)
	assert.Nil(t, out)
	assert.Nil(t, replaced)

	ch := make(chan int)
	out, replaced = SanitizeAttributes(map[string]any{"ch": ch, "n": 1})
	assert.Equal(t, []string{"ch"}, replaced)
	assert.IsType(t, "", out["ch"])
	assert.Equal(t, 1, out["n"])
}
