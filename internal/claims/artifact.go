package claims

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/claimhound/internal/fsutil"
	"github.com/jonathan/claimhound/internal/types"
)

// SanitizeAttributes replaces attribute values that cannot be marshalled to
// JSON with their fmt string form. It returns the cleaned copy and the keys
// that were replaced.
func SanitizeAttributes(attrs map[string]any) (map[string]any, []string) {
	if attrs == nil {
		return nil, nil
	}

	out := make(map[string]any, len(attrs))
	var replaced []string
	for k, v := range attrs {
		if _, err := json.Marshal(v); err != nil {
			out[k] = fmt.Sprint(v)
			replaced = append(replaced, k)
			continue
		}
		out[k] = v
	}
	return out, replaced
}

// EncodeClaims renders claims as an indented JSON array. Unmarshallable
// attribute values are replaced and reported as per-field errors; the
// returned bytes are still complete.
func EncodeClaims(claims []types.Claim) ([]byte, []*SerializationError, error) {
	if claims == nil {
		claims = []types.Claim{}
	}

	var fieldErrs []*SerializationError
	clean := make([]types.Claim, len(claims))
	for i, c := range claims {
		clean[i] = c
		attrs, replaced := SanitizeAttributes(c.Attributes)
		clean[i].Attributes = attrs
		for _, key := range replaced {
			fieldErrs = append(fieldErrs, &SerializationError{
				ClaimIndex: i,
				Field:      "attributes." + key,
				Message:    "value is not JSON serializable, stored as text",
			})
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(clean); err != nil {
		return nil, fieldErrs, &SerializationError{Message: "failed to encode claims", Cause: err}
	}
	return buf.Bytes(), fieldErrs, nil
}

// WriteClaimsJSON writes the claims artifact atomically. Field-level problems
// are returned as warnings alongside a nil error.
func WriteClaimsJSON(path string, claims []types.Claim) ([]*SerializationError, error) {
	data, warnings, err := EncodeClaims(claims)
	if err != nil {
		var serr *SerializationError
		if errors.As(err, &serr) {
			serr.Path = path
		}
		return warnings, err
	}

	if err := fsutil.WriteFileAtomic(path, data); err != nil {
		return warnings, &SerializationError{Path: path, Message: "failed to write claims file", Cause: err}
	}
	return warnings, nil
}

// LoadClaimsJSON reads a claims artifact.
func LoadClaimsJSON(path string) ([]types.Claim, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read claims file: %w", err)
	}

	var claims []types.Claim
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims file %s: %w", path, err)
	}
	if claims == nil {
		claims = []types.Claim{}
	}
	return claims, nil
}
