package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"airbnb-dashboard/models"
)

const loaderCSV = `id,name,neighbourhood,room_type,price,latitude,longitude,number_of_reviews,availability_365,last_review,reviews_per_month
1,Loft,Downtown,Entire home/apt,"$1,250.00",49.28,-123.10,12,200,2024-05-01,0.8
2,Room,Kitsilano,Private room,$80.00,49.26,-123.16,3,10,,0.1
3,Broken,Kitsilano,Private room,,49.26,-123.16,3,10,,0.1
`

type countingSource struct {
	key   string
	reads int
	raw   []*models.RawListing
	err   error
}

func (s *countingSource) Key() string { return s.key }

func (s *countingSource) ReadRaw(context.Context) ([]*models.RawListing, error) {
	s.reads++
	return s.raw, s.err
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listings.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoaderLoadFile(t *testing.T) {
	l := NewLoader(newTestLogger())
	ds, err := l.LoadFile(context.Background(), writeCSV(t, loaderCSV))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("Len: got %d, want 2 (row with empty price dropped)", ds.Len())
	}
	if ds.At(0).Price != 1250 {
		t.Errorf("price normalisation: got %.2f, want 1250", ds.At(0).Price)
	}

	c := ds.DefaultCriteria()
	if c.Price.Min != 80 || c.Price.Max != 1250 {
		t.Errorf("default price range: got %+v", c.Price)
	}
	if strings.Join(c.Neighbourhoods, ",") != "Downtown,Kitsilano" {
		t.Errorf("default neighbourhoods: got %v", c.Neighbourhoods)
	}
}

func TestLoaderMemoizes(t *testing.T) {
	path := writeCSV(t, loaderCSV)
	l := NewLoader(newTestLogger())

	first, err := l.LoadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	second, err := l.LoadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("second load should hit the cache: %v", err)
	}
	if first != second {
		t.Error("expected the same *Dataset for the same path")
	}
}

func TestLoaderDoesNotCacheFailures(t *testing.T) {
	src := &countingSource{key: "flaky", err: models.ErrDataLoad}
	l := NewLoader(newTestLogger())

	if _, err := l.Load(context.Background(), src); !errors.Is(err, models.ErrDataLoad) {
		t.Fatalf("expected ErrDataLoad, got %v", err)
	}

	src.err = nil
	src.raw = []*models.RawListing{rawRow(1, "1", "$10")}
	ds, err := l.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if _, err := l.Load(context.Background(), src); err != nil {
		t.Fatal(err)
	}
	if src.reads != 2 || ds.Len() != 1 {
		t.Errorf("reads: got %d, want 2; len %d", src.reads, ds.Len())
	}
}

func TestLoaderErrors(t *testing.T) {
	l := NewLoader(newTestLogger())

	_, err := l.LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, models.ErrDataLoad) {
		t.Errorf("missing file: got %v, want ErrDataLoad", err)
	}

	noPrice := strings.Replace(loaderCSV, "room_type,price,", "room_type,", 1)
	_, err = l.LoadFile(context.Background(), writeCSV(t, noPrice))
	if !errors.Is(err, models.ErrDataFormat) {
		t.Errorf("missing price column: got %v, want ErrDataFormat", err)
	}

	badPrice := strings.Replace(loaderCSV, "$80.00", "eighty", 1)
	_, err = l.LoadFile(context.Background(), writeCSV(t, badPrice))
	if !errors.Is(err, models.ErrDataFormat) {
		t.Errorf("unparseable price: got %v, want ErrDataFormat", err)
	}
}
