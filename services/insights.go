package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

// Count returns the number of listings in view.
func Count(view models.View) int {
	return len(view)
}

func mean(view models.View, field func(*models.Listing) float64) (float64, error) {
	if len(view) == 0 {
		return 0, models.ErrEmptyView
	}
	var total float64
	for i := range view {
		total += field(&view[i])
	}
	return total / float64(len(view)), nil
}

// MeanPrice returns the average price, or ErrEmptyView.
func MeanPrice(view models.View) (float64, error) {
	return mean(view, func(l *models.Listing) float64 { return l.Price })
}

// MeanReviews returns the average number_of_reviews, or ErrEmptyView.
func MeanReviews(view models.View) (float64, error) {
	return mean(view, func(l *models.Listing) float64 { return float64(l.NumberOfReviews) })
}

// MeanReviewsPerMonth returns the average reviews_per_month, or ErrEmptyView.
func MeanReviewsPerMonth(view models.View) (float64, error) {
	return mean(view, func(l *models.Listing) float64 { return l.ReviewsPerMonth })
}

// MeanAvailability returns the average availability_365, or ErrEmptyView.
func MeanAvailability(view models.View) (float64, error) {
	return mean(view, func(l *models.Listing) float64 { return float64(l.Availability365) })
}

// PriceRange returns the lowest and highest price, or ErrEmptyView.
func PriceRange(view models.View) (models.Range, error) {
	if len(view) == 0 {
		return models.Range{}, models.ErrEmptyView
	}
	r := models.Range{Min: view[0].Price, Max: view[0].Price}
	for _, l := range view[1:] {
		if l.Price < r.Min {
			r.Min = l.Price
		}
		if l.Price > r.Max {
			r.Max = l.Price
		}
	}
	return r, nil
}

// MeanLocation returns the mean latitude and longitude, used to centre the map.
func MeanLocation(view models.View) (lat, lon float64, err error) {
	if lat, err = mean(view, func(l *models.Listing) float64 { return l.Latitude }); err != nil {
		return 0, 0, err
	}
	lon, err = mean(view, func(l *models.Listing) float64 { return l.Longitude })
	return lat, lon, err
}

// MeanPriceByRoomType returns one entry per room type, ascending by mean
// price. Equal means keep the order in which the room types first appear.
func MeanPriceByRoomType(view models.View) []models.RoomTypePrice {
	index := make(map[string]int)
	var groups []models.RoomTypePrice
	var totals []float64

	for _, l := range view {
		i, ok := index[l.RoomType]
		if !ok {
			i = len(groups)
			index[l.RoomType] = i
			groups = append(groups, models.RoomTypePrice{RoomType: l.RoomType})
			totals = append(totals, 0)
		}
		groups[i].NumListings++
		totals[i] += l.Price
	}

	for i := range groups {
		groups[i].AveragePrice = totals[i] / float64(groups[i].NumListings)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].AveragePrice < groups[j].AveragePrice
	})
	return groups
}

// Cheapest returns the n lowest-priced listings, ascending by price with
// equal prices kept in view order. view itself is not reordered.
func Cheapest(view models.View, n int) models.View {
	if n <= 0 {
		return models.View{}
	}
	sorted := make(models.View, len(view))
	copy(sorted, view)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price < sorted[j].Price
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// NeighbourhoodSummaries groups view by neighbourhood, sorted descending by
// mean price and then by name.
func NeighbourhoodSummaries(view models.View) []models.NeighbourhoodSummary {
	type acc struct {
		price, availability, rpm float64
		count                    int
	}
	groups := make(map[string]*acc)
	for _, l := range view {
		g, ok := groups[l.Neighbourhood]
		if !ok {
			g = &acc{}
			groups[l.Neighbourhood] = g
		}
		g.count++
		g.price += l.Price
		g.availability += float64(l.Availability365)
		g.rpm += l.ReviewsPerMonth
	}

	out := make([]models.NeighbourhoodSummary, 0, len(groups))
	for name, g := range groups {
		n := float64(g.count)
		out = append(out, models.NeighbourhoodSummary{
			Neighbourhood:          name,
			AveragePrice:           g.price / n,
			NumListings:            g.count,
			AverageAvailability:    g.availability / n,
			AverageReviewsPerMonth: g.rpm / n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AveragePrice == out[j].AveragePrice {
			return out[i].Neighbourhood < out[j].Neighbourhood
		}
		return out[i].AveragePrice > out[j].AveragePrice
	})
	return out
}

// LastReviewYearHistogram counts listings per last_review year. Listings
// without a last review are left out.
func LastReviewYearHistogram(view models.View) map[int]int {
	hist := make(map[int]int)
	for _, l := range view {
		if l.LastReview != nil {
			hist[l.LastReview.Year()]++
		}
	}
	return hist
}

// PriceHistogram splits [min, max] price into equal-width bins; the last bin
// includes max. A single distinct price is widened to [p-0.5, p+0.5].
func PriceHistogram(view models.View, bins int) []models.HistogramBin {
	if bins <= 0 || len(view) == 0 {
		return nil
	}
	r, _ := PriceRange(view)
	lo, hi := r.Min, r.Max
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width := (hi - lo) / float64(bins)

	out := make([]models.HistogramBin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, l := range view {
		i := int((l.Price - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		if i < 0 {
			i = 0
		}
		out[i].Count++
	}
	return out
}

// InsightService bundles the aggregates the dashboard shows for a view.
type InsightService struct {
	logger    *utils.Logger
	cheapestN int
	bins      int
}

// NewInsightService creates an InsightService listing cheapestN listings in
// the cheapest table and splitting prices into bins histogram bins.
func NewInsightService(logger *utils.Logger, cheapestN, bins int) *InsightService {
	return &InsightService{logger: logger, cheapestN: cheapestN, bins: bins}
}

// Generate computes the full report. An empty view yields Empty=true with
// zero scalars and empty groupings.
func (s *InsightService) Generate(view models.View) *models.InsightReport {
	return s.GenerateWith(view, s.cheapestN, s.bins)
}

// GenerateWith is Generate with explicit table and histogram sizes.
func (s *InsightService) GenerateWith(view models.View, cheapestN, bins int) *models.InsightReport {
	report := &models.InsightReport{
		TotalListings:   Count(view),
		PriceByRoomType: MeanPriceByRoomType(view),
		Cheapest:        Cheapest(view, cheapestN),
		Neighbourhoods:  NeighbourhoodSummaries(view),
		LastReviewYears: LastReviewYearHistogram(view),
		PriceHistogram:  PriceHistogram(view, bins),
	}

	if len(view) == 0 {
		report.Empty = true
		s.logger.Debug("[insights] Empty view, scalar aggregates left at zero")
		return report
	}

	report.AveragePrice, _ = MeanPrice(view)
	report.AverageReviews, _ = MeanReviews(view)
	report.AverageReviewsPerMonth, _ = MeanReviewsPerMonth(view)
	report.CenterLatitude, report.CenterLongitude, _ = MeanLocation(view)
	r, _ := PriceRange(view)
	report.MinPrice, report.MaxPrice = r.Min, r.Max
	return report
}

// Print writes the report summary to stdout.
func (s *InsightService) Print(r *models.InsightReport) {
	s.Fprint(os.Stdout, r)
}

// Fprint writes the report summary to w.
func (s *InsightService) Fprint(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n%s\n", sep)
	fmt.Fprintf(w, "  📊 AIRBNB LISTINGS OVERVIEW\n")
	fmt.Fprintf(w, "%s\n\n", sep)

	fmt.Fprintf(w, "  Overview\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total listings  : %d\n", r.TotalListings)
	if r.Empty {
		fmt.Fprintf(w, "  No listings match the current filters\n")
		fmt.Fprintf(w, "\n%s\n\n", sep)
		return
	}
	fmt.Fprintf(w, "  Average price   : $%.2f\n", r.AveragePrice)
	fmt.Fprintf(w, "  Price range     : $%.2f - $%.2f\n", r.MinPrice, r.MaxPrice)
	fmt.Fprintf(w, "  Average reviews : %.1f\n", r.AverageReviews)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Average Price by Room Type\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, rt := range r.PriceByRoomType {
		fmt.Fprintf(w, "  %-30s $%8.2f (%d)\n", truncate(rt.RoomType, 28), rt.AveragePrice, rt.NumListings)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Top %d Cheapest Listings\n", len(r.Cheapest))
	fmt.Fprintf(w, "  %s\n", thin)
	for i, l := range r.Cheapest {
		fmt.Fprintf(w, "  %2d. %-38s $%.2f\n", i+1, truncate(l.Name, 38), l.Price)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Listings by Neighbourhood\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, n := range r.Neighbourhoods {
		fmt.Fprintf(w, "  %-30s %5d  avg $%.2f\n", truncate(n.Neighbourhood, 28), n.NumListings, n.AveragePrice)
	}

	fmt.Fprintf(w, "\n%s\n\n", sep)
}

func truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	return string([]rune(s)[:max-3]) + "..."
}
