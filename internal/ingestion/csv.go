package ingestion

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/claimhound/internal/types"
)

// utf8BOM is stripped from the first header cell, matching exports saved by spreadsheet tools.
const utf8BOM = "\ufeff"

// LoadCSV reads a tabular export and returns one post per data row, keyed by header name.
// All values are kept as plain strings; no row content is filtered or validated.
func LoadCSV(r io.Reader) ([]types.Post, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1 // ragged rows are tolerated, see rowToPost
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &FormatError{Message: "missing header row"}
		}
		return nil, &FormatError{Message: "failed to read header row", Cause: err}
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	if headerIsEmpty(header) {
		return nil, &FormatError{Message: "header row is empty"}
	}

	posts := make([]types.Post, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &FormatError{Message: fmt.Sprintf("failed to read row %d", line), Cause: err}
		}
		posts = append(posts, rowToPost(header, record))
	}

	return posts, nil
}

// LoadCSVFile opens path and loads it with LoadCSV.
func LoadCSVFile(path string) ([]types.Post, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FormatError{Path: path, Message: "file not found", Cause: err}
		}
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	posts, err := LoadCSV(f)
	if err != nil {
		var formatErr *FormatError
		if errors.As(err, &formatErr) {
			formatErr.Path = path
		}
		return nil, err
	}
	return posts, nil
}

// rowToPost maps a record onto the header. Missing trailing cells read as ""
// and surplus cells are kept under positional column_N keys.
func rowToPost(header, record []string) types.Post {
	post := make(types.Post, len(header))
	for i, name := range header {
		if i < len(record) {
			post[name] = record[i]
		} else {
			post[name] = ""
		}
	}
	for i := len(header); i < len(record); i++ {
		post[fmt.Sprintf("column_%d", i+1)] = record[i]
	}
	return post
}

func headerIsEmpty(header []string) bool {
	for _, name := range header {
		if strings.TrimSpace(name) != "" {
			return false
		}
	}
	return true
}
