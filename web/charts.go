package web

import (
	"fmt"
	"sort"

	"airbnb-dashboard/models"
)

// Chart geometry in SVG user units.
const (
	chartWidth  = 640.0
	chartHeight = 260.0
	chartPad    = 24.0
)

var roomTypeColors = []string{"coral", "lightblue", "green"}

// Marker is one map pin.
type Marker struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Reviews int     `json:"reviews"`
	Color   string  `json:"color"`
	Popup   string  `json:"popup"`
}

// BuildMarkers places one marker per listing, blue below threshold and red
// at or above it.
func BuildMarkers(view models.View, threshold float64) []Marker {
	out := make([]Marker, 0, len(view))
	for _, l := range view {
		color := "red"
		if l.Price < threshold {
			color = "blue"
		}
		out = append(out, Marker{
			Lat:     l.Latitude,
			Lon:     l.Longitude,
			Name:    l.Name,
			Price:   l.Price,
			Reviews: l.NumberOfReviews,
			Color:   color,
			Popup:   fmt.Sprintf("%s - $%.2f\nReviews: %d", l.Name, l.Price, l.NumberOfReviews),
		})
	}
	return out
}

// svgBar is one pre-computed rectangle of a bar chart.
type svgBar struct {
	X, Y, Width, Height float64
	Label               string
	Value               string
	Color               string
}

// barChart lays values out left to right, scaled to the tallest bar.
func barChart(values []float64, labels, display []string, colors []string) []svgBar {
	if len(values) == 0 {
		return nil
	}
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	slot := (chartWidth - 2*chartPad) / float64(len(values))
	usable := chartHeight - 2*chartPad

	bars := make([]svgBar, len(values))
	for i, v := range values {
		h := 0.0
		if max > 0 {
			h = v / max * usable
		}
		bars[i] = svgBar{
			X:      chartPad + float64(i)*slot + slot*0.05,
			Y:      chartHeight - chartPad - h,
			Width:  slot * 0.9,
			Height: h,
			Label:  labels[i],
			Value:  display[i],
			Color:  colors[i%len(colors)],
		}
	}
	return bars
}

func histogramBars(bins []models.HistogramBin) []svgBar {
	values := make([]float64, len(bins))
	labels := make([]string, len(bins))
	display := make([]string, len(bins))
	for i, b := range bins {
		values[i] = float64(b.Count)
		labels[i] = fmt.Sprintf("$%.0f–$%.0f", b.Lower, b.Upper)
		display[i] = fmt.Sprintf("%d", b.Count)
	}
	return barChart(values, labels, display, []string{"royalblue"})
}

func roomTypeBars(groups []models.RoomTypePrice) []svgBar {
	values := make([]float64, len(groups))
	labels := make([]string, len(groups))
	display := make([]string, len(groups))
	for i, g := range groups {
		values[i] = g.AveragePrice
		labels[i] = g.RoomType
		display[i] = fmt.Sprintf("$%.2f", g.AveragePrice)
	}
	return barChart(values, labels, display, roomTypeColors)
}

func yearBars(hist map[int]int) []svgBar {
	years := make([]int, 0, len(hist))
	for y := range hist {
		years = append(years, y)
	}
	sort.Ints(years)

	values := make([]float64, len(years))
	labels := make([]string, len(years))
	display := make([]string, len(years))
	for i, y := range years {
		values[i] = float64(hist[y])
		labels[i] = fmt.Sprintf("%d", y)
		display[i] = fmt.Sprintf("%d", hist[y])
	}
	return barChart(values, labels, display, []string{"slategray"})
}
