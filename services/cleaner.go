package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

// priceStripper removes the currency symbol and thousands separators.
var priceStripper = strings.NewReplacer("$", "", ",", "")

// reviewDateLayouts are tried in order when parsing last_review.
var reviewDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
}

// Cleaner transforms RawListings into typed Listings.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean drops rows with a missing required value, then parses the rest.
// The first unparseable value aborts the whole load with a *models.FormatError.
func (c *Cleaner) Clean(raw []*models.RawListing) ([]models.Listing, error) {
	result := make([]models.Listing, 0, len(raw))
	seen := make(map[int64]int)
	dropped := 0

	for _, r := range raw {
		if col := firstMissing(r); col != "" {
			c.logger.Debug("[cleaner] Dropping row %d: missing %s", r.Row, col)
			dropped++
			continue
		}

		listing, err := parseListing(r)
		if err != nil {
			return nil, err
		}

		if prev, dup := seen[listing.ID]; dup {
			c.logger.Warn("[cleaner] Duplicate id %d on rows %d and %d", listing.ID, prev, r.Row)
		} else {
			seen[listing.ID] = r.Row
		}

		result = append(result, listing)
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d incomplete)",
		len(raw), len(result), dropped)
	return result, nil
}

// firstMissing names the first required value column that is empty.
// last_review is nullable and never causes a drop.
func firstMissing(r *models.RawListing) string {
	fields := []struct {
		name  string
		value string
	}{
		{"id", r.ID},
		{"name", r.Name},
		{"neighbourhood", r.Neighbourhood},
		{"room_type", r.RoomType},
		{"price", r.Price},
		{"latitude", r.Latitude},
		{"longitude", r.Longitude},
		{"number_of_reviews", r.NumberOfReviews},
		{"availability_365", r.Availability365},
		{"reviews_per_month", r.ReviewsPerMonth},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return f.name
		}
	}
	return ""
}

func parseListing(r *models.RawListing) (models.Listing, error) {
	var (
		l   models.Listing
		err error
	)

	if l.ID, err = parseInt(r.ID); err != nil {
		return l, formatErr(r.Row, "id", r.ID, err)
	}
	if l.Price, err = ParsePrice(r.Price); err != nil {
		return l, formatErr(r.Row, "price", r.Price, err)
	}
	if l.Latitude, err = parseFloat(r.Latitude); err != nil {
		return l, formatErr(r.Row, "latitude", r.Latitude, err)
	}
	if l.Longitude, err = parseFloat(r.Longitude); err != nil {
		return l, formatErr(r.Row, "longitude", r.Longitude, err)
	}
	reviews, err := parseInt(r.NumberOfReviews)
	if err != nil {
		return l, formatErr(r.Row, "number_of_reviews", r.NumberOfReviews, err)
	}
	availability, err := parseInt(r.Availability365)
	if err != nil {
		return l, formatErr(r.Row, "availability_365", r.Availability365, err)
	}
	if l.ReviewsPerMonth, err = parseFloat(r.ReviewsPerMonth); err != nil {
		return l, formatErr(r.Row, "reviews_per_month", r.ReviewsPerMonth, err)
	}
	if r.LastReview != "" {
		d, err := ParseReviewDate(r.LastReview)
		if err != nil {
			return l, formatErr(r.Row, "last_review", r.LastReview, err)
		}
		l.LastReview = &d
	}

	l.NumberOfReviews = int(reviews)
	l.Availability365 = int(availability)
	l.Name = normaliseText(r.Name)
	l.Neighbourhood = strings.TrimSpace(r.Neighbourhood)
	l.RoomType = strings.TrimSpace(r.RoomType)
	return l, nil
}

// ParsePrice strips the currency symbol and thousands separators and parses
// the remainder. Examples:
//
//	"$1,250.00" → 1250
//	"80"        → 80
//	"$ 99.5"    → 99.5
func ParsePrice(raw string) (float64, error) {
	cleaned := strings.TrimSpace(priceStripper.Replace(raw))
	if cleaned == "" {
		return 0, fmt.Errorf("no digits left after stripping currency formatting")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("price is not finite")
	}
	if v < 0 {
		return 0, fmt.Errorf("price is negative")
	}
	return v, nil
}

// ParseReviewDate parses a calendar date in any of the accepted layouts and
// truncates it to midnight UTC.
func ParseReviewDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range reviewDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("not a date in YYYY-MM-DD form")
}

// parseInt accepts plain integers and integral floats such as "12.0",
// which some exports write for integer columns.
func parseInt(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer")
	}
	return int64(f), nil
}

func parseFloat(raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not finite")
	}
	return f, nil
}

func formatErr(row int, column, value string, err error) error {
	return &models.FormatError{Row: row, Column: column, Value: value, Err: err}
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
