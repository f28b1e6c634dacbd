package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"airbnb-dashboard/models"
)

// ExportColumns is the header written by the CSV and XLSX exporters.
var ExportColumns = []string{
	"id", "name", "neighbourhood", "room_type", "price", "number_of_reviews",
	"availability_365", "last_review", "reviews_per_month", "latitude", "longitude",
}

// CSVWriter writes filtered listings as CSV. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	closer io.Closer
	writer *csv.Writer
}

// NewCSVWriter wraps w and writes the header row.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	return &CSVWriter{writer: cw}, nil
}

// CreateCSVFile creates (or truncates) the file at path and writes the header
// row. Intermediate directories are created automatically.
func CreateCSVFile(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w, err := NewCSVWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// Write appends every listing of view.
func (c *CSVWriter) Write(view models.View) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range view {
		if err := c.writer.Write(exportRow(l)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and, for files, closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	if c.closer != nil {
		return c.closer.Close()
	}
	return c.writer.Error()
}

func exportRow(l models.Listing) []string {
	lastReview := ""
	if l.LastReview != nil {
		lastReview = l.LastReview.Format("2006-01-02")
	}
	return []string{
		strconv.FormatInt(l.ID, 10),
		l.Name,
		l.Neighbourhood,
		l.RoomType,
		strconv.FormatFloat(l.Price, 'f', 2, 64),
		strconv.Itoa(l.NumberOfReviews),
		strconv.Itoa(l.Availability365),
		lastReview,
		strconv.FormatFloat(l.ReviewsPerMonth, 'f', -1, 64),
		strconv.FormatFloat(l.Latitude, 'f', -1, 64),
		strconv.FormatFloat(l.Longitude, 'f', -1, 64),
	}
}
