package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/parking-tariff-etl/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds a consolidation request.
const maxBodyBytes = 1 << 20

// Consolidator builds a zone schedule on demand. The error explains why the
// schedule would not be published.
type Consolidator interface {
	Evaluate(ctx context.Context, zone domain.ZoneTariffs) (domain.ZoneSchedule, error)
}

// Server exposes health, readiness, metrics and consolidation HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and, when
// consolidator is non-nil, POST /v1/consolidate.
func NewServer(addr string, ready sharedobs.ReadinessChecker, consolidator Consolidator, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	if consolidator != nil {
		mux.HandleFunc("POST /v1/consolidate", s.handleConsolidate(consolidator))
	}

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

// consolidateResponse reports the schedule together with the publication verdict.
type consolidateResponse struct {
	Schedule     domain.ZoneSchedule `json:"schedule"`
	Publishable  bool                `json:"publishable"`
	FilterReason string              `json:"filter_reason,omitempty"`
	Violations   []string            `json:"violations,omitempty"`
}

func (s *Server) handleConsolidate(c Consolidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sharedobs.WriteJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
			return
		}
		if err != nil {
			sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "read body: " + err.Error()})
			return
		}
		zone, err := domain.ParseZoneTariffs(domain.RawEvent{Value: body})
		if err != nil {
			sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		schedule, err := c.Evaluate(r.Context(), zone)
		resp := consolidateResponse{Schedule: schedule, Publishable: err == nil}

		var filtered *domain.FilteredError
		var integrity *domain.IntegrityError
		switch {
		case err == nil:
		case errors.As(err, &filtered):
			resp.FilterReason = filtered.Reason
		case errors.As(err, &integrity):
			for _, v := range integrity.Violations {
				resp.Violations = append(resp.Violations, v.String())
			}
		default:
			s.logger.Error("consolidate request failed", "zone_id", zone.ZoneID, "error", err)
			sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		sharedobs.WriteJSON(w, http.StatusOK, resp)
	}
}
