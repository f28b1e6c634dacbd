package services

import "airbnb-dashboard/models"

// predicate is a FilterCriteria with its category lists turned into sets.
type predicate struct {
	neighbourhoods  map[string]struct{}
	roomTypes       map[string]struct{}
	price           models.Range
	availability    models.Range
	reviewsPerMonth models.Range
}

func newPredicate(c models.FilterCriteria) predicate {
	return predicate{
		neighbourhoods:  toSet(c.Neighbourhoods),
		roomTypes:       toSet(c.RoomTypes),
		price:           c.Price,
		availability:    c.Availability,
		reviewsPerMonth: c.ReviewsPerMonth,
	}
}

// match ANDs the five column predicates. An empty category set matches nothing.
func (p predicate) match(l *models.Listing) bool {
	if _, ok := p.neighbourhoods[l.Neighbourhood]; !ok {
		return false
	}
	if _, ok := p.roomTypes[l.RoomType]; !ok {
		return false
	}
	return p.price.Contains(l.Price) &&
		p.availability.Contains(float64(l.Availability365)) &&
		p.reviewsPerMonth.Contains(l.ReviewsPerMonth)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Apply returns the listings of ds that satisfy c, in dataset order. The
// result is never nil and never aliases the dataset's storage.
func Apply(ds *models.Dataset, c models.FilterCriteria) models.View {
	p := newPredicate(c)
	out := make(models.View, 0)
	for i := 0; i < ds.Len(); i++ {
		l := ds.At(i)
		if p.match(&l) {
			out = append(out, l)
		}
	}
	return out
}

// ApplyView narrows an existing view with c, keeping its order.
func ApplyView(view models.View, c models.FilterCriteria) models.View {
	p := newPredicate(c)
	out := make(models.View, 0)
	for i := range view {
		if p.match(&view[i]) {
			out = append(out, view[i])
		}
	}
	return out
}
