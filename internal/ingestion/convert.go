package ingestion

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonathan/claimhound/internal/types"
)

// ConvertOptions controls optional post-processing during CSV conversion.
type ConvertOptions struct {
	// StripHTMLColumn, when set, names a column whose markup is converted to plain text.
	StripHTMLColumn string
}

// ConvertCSVToJSON loads a CSV export and writes it as the posts JSON artifact.
// It returns the number of posts written.
func ConvertCSVToJSON(csvPath, jsonPath string, opts ConvertOptions) (int, error) {
	posts, err := LoadCSVFile(csvPath)
	if err != nil {
		return 0, err
	}
	return writeConverted(posts, jsonPath, opts)
}

// ConvertCSVReaderToJSON is ConvertCSVToJSON over an already opened export,
// such as a download. source names it in errors.
func ConvertCSVReaderToJSON(r io.Reader, source, jsonPath string, opts ConvertOptions) (int, error) {
	posts, err := LoadCSV(r)
	if err != nil {
		var formatErr *FormatError
		if errors.As(err, &formatErr) {
			formatErr.Path = source
		}
		return 0, err
	}
	return writeConverted(posts, jsonPath, opts)
}

func writeConverted(posts []types.Post, jsonPath string, opts ConvertOptions) (int, error) {
	if opts.StripHTMLColumn != "" {
		posts = StripHTMLColumn(posts, opts.StripHTMLColumn)
	}

	if err := WritePostsJSON(jsonPath, posts); err != nil {
		return 0, err
	}
	return len(posts), nil
}

// ListCSVFiles returns the names of the .csv files in folder, sorted.
func ListCSVFiles(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read input folder %s: %w", folder, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
