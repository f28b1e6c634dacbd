package services

import (
	"bytes"
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"airbnb-dashboard/models"
)

func day(y int) *time.Time {
	d := time.Date(y, 6, 1, 0, 0, 0, 0, time.UTC)
	return &d
}

func sampleView() models.View {
	return models.View{
		{ID: 1, Name: "Villa A", Neighbourhood: "Downtown", RoomType: "Entire home/apt", Price: 200, NumberOfReviews: 10, Availability365: 100, ReviewsPerMonth: 1.0, Latitude: 49.0, Longitude: -123.0, LastReview: day(2023)},
		{ID: 2, Name: "Studio B", Neighbourhood: "Downtown", RoomType: "Private room", Price: 50, NumberOfReviews: 4, Availability365: 300, ReviewsPerMonth: 0.5, Latitude: 49.2, Longitude: -123.2, LastReview: day(2024)},
		{ID: 3, Name: "Loft C", Neighbourhood: "Kitsilano", RoomType: "Entire home/apt", Price: 120, NumberOfReviews: 0, Availability365: 0, ReviewsPerMonth: 0, Latitude: 49.4, Longitude: -123.4},
		{ID: 4, Name: "Cabin D", Neighbourhood: "Riley Park", RoomType: "Shared room", Price: 50, NumberOfReviews: 6, Availability365: 50, ReviewsPerMonth: 2.5, Latitude: 49.6, Longitude: -123.6, LastReview: day(2024)},
		{ID: 5, Name: "Flat E", Neighbourhood: "Kitsilano", RoomType: "Private room", Price: 80, NumberOfReviews: 5, Availability365: 10, ReviewsPerMonth: 1.0, Latitude: 49.8, Longitude: -123.8, LastReview: day(2019)},
	}
}

func TestScalarAggregates(t *testing.T) {
	v := sampleView()

	if got := Count(v); got != 5 {
		t.Errorf("Count: got %d, want 5", got)
	}
	if got, _ := MeanPrice(v); got != 100 {
		t.Errorf("MeanPrice: got %.2f, want 100", got)
	}
	if got, _ := MeanReviews(v); got != 5 {
		t.Errorf("MeanReviews: got %.2f, want 5", got)
	}
	if got, _ := MeanReviewsPerMonth(v); got != 1 {
		t.Errorf("MeanReviewsPerMonth: got %.2f, want 1", got)
	}
	if got, _ := MeanAvailability(v); got != 92 {
		t.Errorf("MeanAvailability: got %.2f, want 92", got)
	}
	r, _ := PriceRange(v)
	if r.Min != 50 || r.Max != 200 {
		t.Errorf("PriceRange: got %+v, want [50, 200]", r)
	}
}

func TestScalarAggregatesOnEmptyView(t *testing.T) {
	funcs := map[string]func(models.View) (float64, error){
		"MeanPrice":           MeanPrice,
		"MeanReviews":         MeanReviews,
		"MeanReviewsPerMonth": MeanReviewsPerMonth,
		"MeanAvailability":    MeanAvailability,
	}
	for name, fn := range funcs {
		if _, err := fn(models.View{}); !errors.Is(err, models.ErrEmptyView) {
			t.Errorf("%s(empty): got %v, want ErrEmptyView", name, err)
		}
	}
	if _, _, err := MeanLocation(nil); !errors.Is(err, models.ErrEmptyView) {
		t.Errorf("MeanLocation(nil): got %v, want ErrEmptyView", err)
	}
	if Count(nil) != 0 {
		t.Error("Count(nil) should be 0")
	}
}

func TestMeanPriceByRoomType(t *testing.T) {
	got := MeanPriceByRoomType(sampleView())

	want := []models.RoomTypePrice{
		{RoomType: "Shared room", AveragePrice: 50, NumListings: 1},
		{RoomType: "Private room", AveragePrice: 65, NumListings: 2},
		{RoomType: "Entire home/apt", AveragePrice: 160, NumListings: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MeanPriceByRoomType:\n got %+v\nwant %+v", got, want)
	}

	seen := make(map[string]bool)
	for i, rt := range got {
		if seen[rt.RoomType] {
			t.Errorf("duplicate room type %q", rt.RoomType)
		}
		seen[rt.RoomType] = true
		if i > 0 && got[i-1].AveragePrice > rt.AveragePrice {
			t.Errorf("not ascending at %d", i)
		}
	}
}

func TestMeanPriceByRoomTypeTiesKeepFirstSeen(t *testing.T) {
	v := models.View{
		{RoomType: "Private room", Price: 70},
		{RoomType: "Hotel room", Price: 70},
		{RoomType: "Entire home/apt", Price: 70},
	}
	got := MeanPriceByRoomType(v)
	order := []string{got[0].RoomType, got[1].RoomType, got[2].RoomType}
	if !reflect.DeepEqual(order, []string{"Private room", "Hotel room", "Entire home/apt"}) {
		t.Errorf("tie order: got %v", order)
	}
}

func TestCheapest(t *testing.T) {
	v := sampleView()

	got := Cheapest(v, 3)
	if !reflect.DeepEqual(ids(got), []int64{2, 4, 5}) {
		t.Errorf("Cheapest(3): got %v, want [2 4 5] (ties in view order)", ids(got))
	}

	all := Cheapest(v, 10)
	if len(all) != len(v) {
		t.Fatalf("Cheapest(10): got %d listings, want %d", len(all), len(v))
	}
	if !sort.SliceIsSorted(all, func(i, j int) bool { return all[i].Price < all[j].Price }) {
		t.Error("Cheapest(n >= len) is not sorted by price")
	}
	for n := 0; n <= len(v); n++ {
		if prefix := Cheapest(v, n); !reflect.DeepEqual(ids(prefix), ids(all[:n])) {
			t.Errorf("Cheapest(%d) is not a prefix of the full ordering: %v", n, ids(prefix))
		}
	}

	if ids(v)[0] != 1 {
		t.Error("Cheapest reordered its input")
	}
	if got := Cheapest(v, -1); len(got) != 0 {
		t.Errorf("Cheapest(-1): got %d listings", len(got))
	}
}

func TestNeighbourhoodSummaries(t *testing.T) {
	v := sampleView()
	got := NeighbourhoodSummaries(v)

	names := make([]string, len(got))
	total := 0
	for i, s := range got {
		names[i] = s.Neighbourhood
		total += s.NumListings
	}
	if !reflect.DeepEqual(names, []string{"Downtown", "Kitsilano", "Riley Park"}) {
		t.Errorf("order: got %v", names)
	}
	if total != len(v) {
		t.Errorf("counts sum to %d, want %d", total, len(v))
	}
	if got[0].AveragePrice != 125 || got[0].AverageAvailability != 200 || got[0].AverageReviewsPerMonth != 0.75 {
		t.Errorf("Downtown summary: got %+v", got[0])
	}
}

func TestNeighbourhoodSummariesTieBreakByName(t *testing.T) {
	v := models.View{
		{Neighbourhood: "Zeta", Price: 100},
		{Neighbourhood: "Alpha", Price: 100},
		{Neighbourhood: "Mid", Price: 150},
	}
	got := NeighbourhoodSummaries(v)
	names := []string{got[0].Neighbourhood, got[1].Neighbourhood, got[2].Neighbourhood}
	if !reflect.DeepEqual(names, []string{"Mid", "Alpha", "Zeta"}) {
		t.Errorf("order: got %v", names)
	}
}

func TestLastReviewYearHistogram(t *testing.T) {
	got := LastReviewYearHistogram(sampleView())
	want := map[int]int{2019: 1, 2023: 1, 2024: 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPriceHistogram(t *testing.T) {
	got := PriceHistogram(sampleView(), 3)
	if len(got) != 3 {
		t.Fatalf("bins: got %d, want 3", len(got))
	}
	counts := []int{got[0].Count, got[1].Count, got[2].Count}
	if !reflect.DeepEqual(counts, []int{3, 1, 1}) {
		t.Errorf("counts: got %v, want [3 1 1]", counts)
	}
	if got[0].Lower != 50 || got[2].Upper != 200 {
		t.Errorf("edges: got [%.2f, %.2f]", got[0].Lower, got[2].Upper)
	}

	single := PriceHistogram(models.View{{Price: 80}, {Price: 80}}, 2)
	if single[0].Lower != 79.5 || single[1].Upper != 80.5 || single[0].Count+single[1].Count != 2 {
		t.Errorf("degenerate range: got %+v", single)
	}

	if PriceHistogram(nil, 30) != nil {
		t.Error("empty view should have no bins")
	}
}

func TestInsightGenerate(t *testing.T) {
	svc := NewInsightService(newTestLogger(), 2, 5)
	r := svc.Generate(sampleView())

	if r.Empty || r.TotalListings != 5 {
		t.Errorf("TotalListings: got %d (empty=%v)", r.TotalListings, r.Empty)
	}
	if r.AveragePrice != 100 || r.MinPrice != 50 || r.MaxPrice != 200 {
		t.Errorf("prices: got avg %.2f min %.2f max %.2f", r.AveragePrice, r.MinPrice, r.MaxPrice)
	}
	if len(r.Cheapest) != 2 || len(r.PriceHistogram) != 5 {
		t.Errorf("sizes: cheapest %d, bins %d", len(r.Cheapest), len(r.PriceHistogram))
	}
	if r.CenterLatitude < 49.39 || r.CenterLatitude > 49.41 {
		t.Errorf("CenterLatitude: got %.4f, want 49.4", r.CenterLatitude)
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger(), 10, 30)
	r := svc.Generate(nil)
	if !r.Empty || r.TotalListings != 0 || r.AveragePrice != 0 {
		t.Errorf("expected an empty report, got %+v", r)
	}
	if len(r.Neighbourhoods) != 0 || len(r.Cheapest) != 0 {
		t.Error("expected no groupings for empty input")
	}
}

func TestInsightPrint(t *testing.T) {
	svc := NewInsightService(newTestLogger(), 3, 5)
	var buf bytes.Buffer
	svc.Fprint(&buf, svc.Generate(sampleView()))

	out := buf.String()
	for _, want := range []string{"Total listings  : 5", "Average price   : $100.00", "Studio B", "Riley Park"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	svc.Fprint(&buf, svc.Generate(nil))
	if !strings.Contains(buf.String(), "No listings match") {
		t.Errorf("empty report output: %s", buf.String())
	}
}
