// Package httpapi serves the engine over JSON/HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/roach88/stockroom/internal/engine"
	"github.com/roach88/stockroom/internal/timeline"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// API holds the handler dependencies.
type API struct {
	eng      *engine.Engine
	timeline *timeline.Orchestrator
	health   Pinger
	logger   *slog.Logger
	now      func() time.Time
}

// New creates an API. A nil logger means slog.Default().
func New(eng *engine.Engine, tl *timeline.Orchestrator, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		eng:      eng,
		timeline: tl,
		health:   eng.Store(),
		logger:   logger,
		now:      time.Now,
	}
}

// Handler returns the routed handler wrapped in request logging.
func (a *API) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(a.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(a.methodNotAllowed)

	r.HandleFunc("/healthz", a.healthz).Methods(http.MethodGet)

	r.HandleFunc("/orders", a.snapshot).Methods(http.MethodGet)
	r.HandleFunc("/orders", a.createOrder).Methods(http.MethodPost)
	r.HandleFunc("/orders/{orderID}", a.getOrder).Methods(http.MethodGet)
	r.HandleFunc("/orders/{orderID}", a.updateOrder).Methods(http.MethodPatch)
	r.HandleFunc("/orders/{orderID}", a.deleteOrder).Methods(http.MethodDelete)

	r.HandleFunc("/products", a.listProducts).Methods(http.MethodGet)

	r.HandleFunc("/positions", a.addPosition).Methods(http.MethodPost)
	// Registered before /positions/{positionID} so "move" is not taken as an id.
	r.HandleFunc("/positions/move", a.movePosition).Methods(http.MethodPatch)
	r.HandleFunc("/positions/{positionID}", a.updatePosition).Methods(http.MethodPatch)
	r.HandleFunc("/positions/{positionID}", a.deletePosition).Methods(http.MethodDelete)

	r.HandleFunc("/warehouse/daily-update", a.dailyUpdate).Methods(http.MethodPost)

	return a.logRequests(r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (a *API) logRequests(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		a.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
