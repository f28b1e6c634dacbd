package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"airbnb-dashboard/models"
)

// CSVSource reads listings from a delimited text file with a header row.
type CSVSource struct {
	path  string
	comma rune
}

// NewCSVSource creates a source for the file at path. A zero delimiter means ','.
func NewCSVSource(path string, delimiter rune) *CSVSource {
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVSource{path: path, comma: delimiter}
}

// Key returns the absolute file path so that different spellings of the
// same file share one cache entry.
func (s *CSVSource) Key() string {
	if abs, err := filepath.Abs(s.path); err == nil {
		return "csv:" + abs
	}
	return "csv:" + s.path
}

// ReadRaw opens the file and decodes every record.
func (s *CSVSource) ReadRaw(ctx context.Context) ([]*models.RawListing, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: csv: open %q: %w", models.ErrDataLoad, s.path, err)
	}
	defer f.Close()

	return ReadCSV(ctx, f, s.comma)
}

// ReadCSV decodes records from r, projecting each row to RequiredColumns.
// Extra columns are ignored; a missing required column is a format error.
func ReadCSV(ctx context.Context, r io.Reader, comma rune) ([]*models.RawListing, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: csv: file has no header row", models.ErrDataFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: csv: read header: %w", models.ErrDataLoad, err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var out []*models.RawListing
	values := make([]string, len(RequiredColumns))
	// Row numbers count data rows from 1, so row 1 is the line after the header.
	for row := 1; ; row++ {
		if row%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv: read row %d: %w", models.ErrDataLoad, row, err)
		}

		for i, col := range index {
			if col < len(record) {
				values[i] = strings.TrimSpace(record[col])
			} else {
				values[i] = ""
			}
		}
		out = append(out, rawFromColumns(row, values))
	}

	return out, nil
}

// columnIndex maps each required column to its position in header.
func columnIndex(header []string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		name := strings.ToLower(strings.TrimSpace(h))
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}

	index := make([]int, len(RequiredColumns))
	var missing []string
	for i, name := range RequiredColumns {
		col, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		index[i] = col
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: csv: missing required columns: %s",
			models.ErrDataFormat, strings.Join(missing, ", "))
	}
	return index, nil
}
