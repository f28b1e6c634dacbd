package models

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewDatasetDefaults(t *testing.T) {
	ds := NewDataset("test", []Listing{
		{ID: 1, Neighbourhood: "B", RoomType: "Private room", Price: 120, Availability365: 10, ReviewsPerMonth: 0.5},
		{ID: 2, Neighbourhood: "A", RoomType: "Private room", Price: 60, Availability365: 365, ReviewsPerMonth: 2},
		{ID: 3, Neighbourhood: "B", RoomType: "Shared room", Price: 80, Availability365: 0, ReviewsPerMonth: 1},
	})

	if ds.Len() != 3 {
		t.Fatalf("Len = %d, want 3", ds.Len())
	}
	if got := ds.Neighbourhoods(); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Errorf("Neighbourhoods = %v", got)
	}
	if got := ds.RoomTypes(); !reflect.DeepEqual(got, []string{"Private room", "Shared room"}) {
		t.Errorf("RoomTypes = %v", got)
	}

	c := ds.DefaultCriteria()
	if c.Price != (Range{60, 120}) {
		t.Errorf("Price = %+v", c.Price)
	}
	if c.Availability != (Range{0, 365}) {
		t.Errorf("Availability = %+v", c.Availability)
	}
	if c.ReviewsPerMonth != (Range{0.5, 2}) {
		t.Errorf("ReviewsPerMonth = %+v", c.ReviewsPerMonth)
	}
}

func TestDatasetReturnsCopies(t *testing.T) {
	ds := NewDataset("test", []Listing{{ID: 1, Neighbourhood: "A", RoomType: "Private room"}})

	ds.Listings()[0].ID = 99
	ds.Neighbourhoods()[0] = "Z"
	c := ds.DefaultCriteria()
	c.RoomTypes[0] = "Z"

	if ds.At(0).ID != 1 {
		t.Error("Listings() aliases the dataset")
	}
	if ds.Neighbourhoods()[0] != "A" {
		t.Error("Neighbourhoods() aliases the dataset")
	}
	if ds.DefaultCriteria().RoomTypes[0] != "Private room" {
		t.Error("DefaultCriteria() aliases the dataset")
	}
}

func TestRangeContains(t *testing.T) {
	tests := []struct {
		r    Range
		v    float64
		want bool
	}{
		{Range{0, 100}, 0, true},
		{Range{0, 100}, 100, true},
		{Range{0, 100}, 100.01, false},
		{Range{50, 10}, 20, false},
	}
	for _, tt := range tests {
		if got := tt.r.Contains(tt.v); got != tt.want {
			t.Errorf("%+v.Contains(%v) = %v, want %v", tt.r, tt.v, got, tt.want)
		}
	}
}

func TestFormatErrorUnwraps(t *testing.T) {
	cause := errors.New("bad number")
	err := &FormatError{Row: 4, Column: "price", Value: "abc", Err: cause}

	if !errors.Is(err, ErrDataFormat) {
		t.Error("FormatError should match ErrDataFormat")
	}
	if !errors.Is(err, cause) {
		t.Error("FormatError should match its cause")
	}
}
