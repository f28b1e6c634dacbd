package storage

import (
	"context"

	"airbnb-dashboard/models"
)

// RequiredColumns is the fixed column set every source must provide.
var RequiredColumns = []string{
	"id", "name", "neighbourhood", "room_type", "price", "latitude", "longitude",
	"number_of_reviews", "availability_365", "last_review", "reviews_per_month",
}

// ListingSource is the interface any dataset backend must satisfy.
type ListingSource interface {
	// Key identifies the source for memoization; equal keys mean equal data.
	Key() string
	// ReadRaw returns every record projected to RequiredColumns, in source order.
	ReadRaw(ctx context.Context) ([]*models.RawListing, error)
}

// ListingWriter is the interface for exporting a filtered view.
type ListingWriter interface {
	Write(view models.View) error
	Close() error
}

// rawFromColumns builds a RawListing from values ordered like RequiredColumns.
func rawFromColumns(row int, v []string) *models.RawListing {
	return &models.RawListing{
		Row:             row,
		ID:              v[0],
		Name:            v[1],
		Neighbourhood:   v[2],
		RoomType:        v[3],
		Price:           v[4],
		Latitude:        v[5],
		Longitude:       v[6],
		NumberOfReviews: v[7],
		Availability365: v[8],
		LastReview:      v[9],
		ReviewsPerMonth: v[10],
	}
}
