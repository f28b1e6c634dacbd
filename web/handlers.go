package web

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/storage"
)

type choice struct {
	Value    string
	Selected bool
}

type dashboardData struct {
	Title          string
	Criteria       models.FilterCriteria
	Bounds         models.FilterCriteria
	Neighbourhoods []choice
	RoomTypes      []choice
	Report         *models.InsightReport
	Markers        []Marker
	PriceBars      []svgBar
	RoomBars       []svgBar
	YearBars       []svgBar
	ChartWidth     float64
	ChartHeight    float64
	ExportCSV      template.URL
	ExportXLSX     template.URL
}

type optionsResponse struct {
	Source         string                `json:"source"`
	LoadedAt       time.Time             `json:"loaded_at"`
	TotalListings  int                   `json:"total_listings"`
	Neighbourhoods []string              `json:"neighbourhoods"`
	RoomTypes      []string              `json:"room_types"`
	Defaults       models.FilterCriteria `json:"defaults"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		s.logger.Error("[http] %s %s: %v", r.Method, r.URL.Path, err)
		apiErr = errInternal("internal server error")
	}
	_ = render.Render(w, r, apiErr)
}

// view parses the request criteria and filters the dataset.
func (s *Server) view(r *http.Request) (models.FilterCriteria, models.View, error) {
	c, err := ParseCriteria(r.URL.Query(), s.defaults)
	if err != nil {
		return c, nil, err
	}
	start := time.Now()
	v := services.Apply(s.ds, c)
	s.metrics.ObserveFilter(time.Since(start), len(v))
	return c, v, nil
}

func (s *Server) displayOptions(r *http.Request) (DisplayOptions, error) {
	return ParseDisplayOptions(r.URL.Query(), DisplayOptions{
		Top:  s.opts.CheapestLimit,
		Bins: s.opts.HistogramBins,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	c, v, err := s.view(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts, err := s.displayOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	report := s.insights.GenerateWith(v, opts.Top, opts.Bins)
	query := EncodeCriteria(c).Encode()
	data := dashboardData{
		Title:          s.opts.Title,
		Criteria:       c,
		Bounds:         s.defaults,
		Neighbourhoods: choices(s.ds.Neighbourhoods(), c.Neighbourhoods),
		RoomTypes:      choices(s.ds.RoomTypes(), c.RoomTypes),
		Report:         report,
		Markers:        BuildMarkers(v, s.opts.MarkerPriceThreshold),
		PriceBars:      histogramBars(report.PriceHistogram),
		RoomBars:       roomTypeBars(report.PriceByRoomType),
		YearBars:       yearBars(report.LastReviewYears),
		ChartWidth:     chartWidth,
		ChartHeight:    chartHeight,
		ExportCSV:      template.URL("/export/listings.csv?" + query),
		ExportXLSX:     template.URL("/export/listings.xlsx?" + query),
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, optionsResponse{
		Source:         s.ds.Source(),
		LoadedAt:       s.ds.LoadedAt(),
		TotalListings:  s.ds.Len(),
		Neighbourhoods: s.ds.Neighbourhoods(),
		RoomTypes:      s.ds.RoomTypes(),
		Defaults:       s.defaults,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	_, v, err := s.view(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts, err := s.displayOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, s.insights.GenerateWith(v, opts.Top, opts.Bins))
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	_, v, err := s.view(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, v)
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	_, v, err := s.view(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, BuildMarkers(v, s.opts.MarkerPriceThreshold))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	_, v, err := s.view(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	cw, err := storage.NewCSVWriter(&buf)
	if err == nil {
		err = cw.Write(v)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="listings.csv"`)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	_, v, err := s.view(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := storage.WriteXLSX(&buf, v, services.NeighbourhoodSummaries(v)); err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="listings.xlsx"`)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":   "ok",
		"listings": s.ds.Len(),
	})
}

func choices(all, selected []string) []choice {
	set := make(map[string]struct{}, len(selected))
	for _, v := range selected {
		set[v] = struct{}{}
	}
	out := make([]choice, len(all))
	for i, v := range all {
		_, ok := set[v]
		out[i] = choice{Value: v, Selected: ok}
	}
	return out
}
