package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/county-home-values/internal/adapter/render"
	"github.com/couchcryptid/county-home-values/internal/adapter/xlsx"
	"github.com/couchcryptid/county-home-values/internal/dashboard"
	"github.com/couchcryptid/county-home-values/internal/domain"
	"github.com/couchcryptid/county-home-values/internal/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the dashboard API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	registry   *dashboard.Registry
	images     *render.Cache
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server over registry. Rendered PNGs are kept in
// images.
func NewServer(addr string, ready ReadinessChecker, registry *dashboard.Registry, images *render.Cache, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      AccessMiddleware(logger)(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		registry: registry,
		images:   images,
		metrics:  metrics,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/controls", s.handleControls)
	mux.HandleFunc("GET /api/charts/{control}", s.handleChart)
	mux.HandleFunc("GET /api/charts/dropdown_ts.png", s.handleTimeSeriesPNG)
	mux.HandleFunc("GET /api/rankings", s.handleRankings)
	mux.HandleFunc("GET /api/rankings/{file}", s.handleRankingPNG)
	mux.HandleFunc("GET /api/export.xlsx", s.handleExport)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleControls(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Overview())
}

// render recomputes a chart and records the outcome.
func (s *Server) render(id dashboard.ControlID, sel dashboard.Selection) (dashboard.ChartData, error) {
	data, err := s.registry.Render(id, sel)
	switch {
	case errors.Is(err, dashboard.ErrUnknownControl):
		s.metrics.SelectionRequests.WithLabelValues("unknown", "unknown").Inc()
	case err != nil:
		s.metrics.SelectionRequests.WithLabelValues(string(id), "invalid").Inc()
	default:
		s.metrics.SelectionRequests.WithLabelValues(string(id), "ok").Inc()
		s.metrics.SelectionRows.WithLabelValues(string(id)).Observe(float64(data.Len()))
	}
	return data, err
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	id := dashboard.ControlID(r.PathValue("control"))
	data, err := s.render(id, selection(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleTimeSeriesPNG(w http.ResponseWriter, r *http.Request) {
	sel := selection(r)
	data, err := s.render(dashboard.ControlTimeSeries, sel)
	if err != nil {
		writeError(w, err)
		return
	}

	var title string
	for _, c := range s.registry.Controls() {
		if c.ID == dashboard.ControlTimeSeries {
			title = c.Title
		}
	}
	points, _ := data.Rows.([]domain.TimeSeriesPoint)

	key := "ts:" + strings.Join(normalize(sel), ",")
	png, err := s.image("ts", key, func(w io.Writer) error {
		return render.TimeSeries(w, title, points)
	})
	if err != nil {
		s.logger.Error("render time series failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
		return
	}
	writePNG(w, png)
}

func (s *Server) handleRankings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Rankings())
}

func (s *Server) handleRankingPNG(w http.ResponseWriter, r *http.Request) {
	date, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok {
		http.NotFound(w, r)
		return
	}
	rk, ok := s.registry.Snapshot().Ranking(date)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no ranking for " + date})
		return
	}

	png, err := s.image("ranking", "ranking:"+date, func(w io.Writer) error {
		return render.RankingPie(w, rk)
	})
	if err != nil {
		if errors.Is(err, render.ErrNoData) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		s.logger.Error("render ranking failed", "date", date, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
		return
	}
	writePNG(w, png)
}

// image serves a PNG from the render cache, drawing it on a miss.
func (s *Server) image(chart, key string, draw render.DrawFunc) ([]byte, error) {
	png, hit, err := s.images.Get(key, draw)
	if err != nil {
		return nil, err
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	s.metrics.RenderCache.WithLabelValues(chart, result).Inc()
	return png, nil
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := xlsx.Write(&buf, s.registry.Snapshot()); err != nil {
		s.logger.Error("export workbook failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="county-home-values.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

// selection reads repeated value parameters; a single value may also be a
// comma-separated list.
func selection(r *http.Request) dashboard.Selection {
	var sel dashboard.Selection
	for _, v := range r.URL.Query()["value"] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				sel = append(sel, part)
			}
		}
	}
	return sel
}

// normalize sorts and dedupes a selection so equivalent requests share a
// cache key.
func normalize(sel dashboard.Selection) []string {
	out := slices.Clone(sel)
	slices.Sort(out)
	return slices.Compact(out)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dashboard.ErrUnknownControl):
		status = http.StatusNotFound
	case errors.Is(err, dashboard.ErrInvalidSelection):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writePNG(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(b) //nolint:errcheck // client went away
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
