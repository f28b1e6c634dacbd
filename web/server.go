package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options configures the presentation of the dashboard.
type Options struct {
	Title                string
	CheapestLimit        int
	HistogramBins        int
	MarkerPriceThreshold float64
}

// Server renders the dashboard and its JSON API over one shared, read-only
// dataset. Every request derives its own criteria and view.
type Server struct {
	ds       *models.Dataset
	defaults models.FilterCriteria
	insights *services.InsightService
	logger   *utils.Logger
	metrics  *Metrics
	opts     Options
	tmpl     *template.Template
}

// NewServer parses the templates and prepares the default criteria once.
func NewServer(ds *models.Dataset, insights *services.InsightService, logger *utils.Logger, metrics *Metrics, opts Options) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	metrics.SetDatasetSize(ds.Len())

	return &Server{
		ds:       ds,
		defaults: ds.DefaultCriteria(),
		insights: insights,
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
		tmpl:     tmpl,
	}, nil
}

// Routes returns the HTTP handler with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID)
	r.Use(middleware.RealIP)
	r.Use(WithLogging(s.logger))
	r.Use(s.metrics.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleDashboard)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Get("/report", s.handleReport)
		r.Get("/listings", s.handleListings)
		r.Get("/markers", s.handleMarkers)
	})

	r.Route("/export", func(r chi.Router) {
		r.Get("/listings.csv", s.handleExportCSV)
		r.Get("/listings.xlsx", s.handleExportXLSX)
	})

	return r
}
