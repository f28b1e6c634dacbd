package models

import "time"

// Dataset is the loaded, read-only set of listings. It is safe to share
// between goroutines because nothing mutates it after NewDataset returns.
type Dataset struct {
	source         string
	loadedAt       time.Time
	listings       []Listing
	neighbourhoods []string
	roomTypes      []string
	defaults       FilterCriteria
}

// NewDataset takes ownership of listings and precomputes the observed
// categories and the default criteria.
func NewDataset(source string, listings []Listing) *Dataset {
	d := &Dataset{
		source:   source,
		loadedAt: time.Now(),
		listings: listings,
	}

	seenHood := make(map[string]struct{})
	seenRoom := make(map[string]struct{})
	for i, l := range listings {
		if _, ok := seenHood[l.Neighbourhood]; !ok {
			seenHood[l.Neighbourhood] = struct{}{}
			d.neighbourhoods = append(d.neighbourhoods, l.Neighbourhood)
		}
		if _, ok := seenRoom[l.RoomType]; !ok {
			seenRoom[l.RoomType] = struct{}{}
			d.roomTypes = append(d.roomTypes, l.RoomType)
		}

		if i == 0 {
			d.defaults.Price = Range{l.Price, l.Price}
			d.defaults.Availability = Range{float64(l.Availability365), float64(l.Availability365)}
			d.defaults.ReviewsPerMonth = Range{l.ReviewsPerMonth, l.ReviewsPerMonth}
			continue
		}
		widen(&d.defaults.Price, l.Price)
		widen(&d.defaults.Availability, float64(l.Availability365))
		widen(&d.defaults.ReviewsPerMonth, l.ReviewsPerMonth)
	}

	d.defaults.Neighbourhoods = d.neighbourhoods
	d.defaults.RoomTypes = d.roomTypes
	return d
}

func widen(r *Range, v float64) {
	if v < r.Min {
		r.Min = v
	}
	if v > r.Max {
		r.Max = v
	}
}

// Source is the key the dataset was loaded from.
func (d *Dataset) Source() string { return d.source }

// LoadedAt is when the dataset was built.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Len returns the number of listings.
func (d *Dataset) Len() int { return len(d.listings) }

// At returns a copy of the i-th listing in source order.
func (d *Dataset) At(i int) Listing { return d.listings[i] }

// Listings returns a copy of all listings in source order.
func (d *Dataset) Listings() View {
	out := make(View, len(d.listings))
	copy(out, d.listings)
	return out
}

// Neighbourhoods returns the observed neighbourhoods in order of first appearance.
func (d *Dataset) Neighbourhoods() []string {
	return append([]string(nil), d.neighbourhoods...)
}

// RoomTypes returns the observed room types in order of first appearance.
func (d *Dataset) RoomTypes() []string {
	return append([]string(nil), d.roomTypes...)
}

// DefaultCriteria selects every observed category and the full observed
// range of each interval column, so applying it keeps every listing.
func (d *Dataset) DefaultCriteria() FilterCriteria {
	return d.defaults.Clone()
}
