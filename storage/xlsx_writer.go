package storage

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"airbnb-dashboard/models"
)

const (
	listingsSheet       = "Listings"
	neighbourhoodsSheet = "Neighbourhoods"
)

// WriteXLSX writes view to a workbook with a Listings sheet and, when
// summaries is non-empty, a Neighbourhoods sheet.
func WriteXLSX(w io.Writer, view models.View, summaries []models.NeighbourhoodSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", listingsSheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	header := make([]any, len(ExportColumns))
	for i, c := range ExportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(listingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}

	for i, l := range view {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: cell name: %w", err)
		}
		lastReview := ""
		if l.LastReview != nil {
			lastReview = l.LastReview.Format("2006-01-02")
		}
		row := []any{
			l.ID, l.Name, l.Neighbourhood, l.RoomType, l.Price, l.NumberOfReviews,
			l.Availability365, lastReview, l.ReviewsPerMonth, l.Latitude, l.Longitude,
		}
		if err := f.SetSheetRow(listingsSheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: write row %d: %w", i+1, err)
		}
	}

	if len(summaries) > 0 {
		if _, err := f.NewSheet(neighbourhoodsSheet); err != nil {
			return fmt.Errorf("xlsx: add sheet: %w", err)
		}
		head := []any{"neighbourhood", "average_price", "num_listings", "average_availability", "average_reviews_per_month"}
		if err := f.SetSheetRow(neighbourhoodsSheet, "A1", &head); err != nil {
			return fmt.Errorf("xlsx: write header: %w", err)
		}
		for i, s := range summaries {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return fmt.Errorf("xlsx: cell name: %w", err)
			}
			row := []any{s.Neighbourhood, s.AveragePrice, s.NumListings, s.AverageAvailability, s.AverageReviewsPerMonth}
			if err := f.SetSheetRow(neighbourhoodsSheet, cell, &row); err != nil {
				return fmt.Errorf("xlsx: write summary %d: %w", i+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write workbook: %w", err)
	}
	return nil
}
