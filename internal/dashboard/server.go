package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"CycleWatch/internal/indicator"
	"CycleWatch/internal/model"
	"CycleWatch/internal/store"
	"CycleWatch/internal/updater"
)

// Server renders the risk dashboard and exposes the JSON API. It reads
// the store and the calculator only; its single mutating surface is the
// manual refresh trigger, which delegates to the updater.
type Server struct {
	httpServer *http.Server
	reader     store.Reader
	calc       *indicator.Calculator
	updater    *updater.Updater
	overall    indicator.OverallThresholds
	refreshing atomic.Bool
}

// New creates the dashboard server.
func New(listen string, reader store.Reader, calc *indicator.Calculator, upd *updater.Updater, overall indicator.OverallThresholds) *Server {
	s := &Server{
		reader:  reader,
		calc:    calc,
		updater: upd,
		overall: overall,
	}
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleIndex).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/indicators", s.handleIndicators).Methods("GET")
	api.HandleFunc("/series/{metric}", s.handleSeries).Methods("GET")
	api.HandleFunc("/refresh", s.handleRefresh).Methods("POST")

	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	return r
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	log.Printf("[INFO] dashboard listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("[INFO] shutting down dashboard")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "cyclewatch"})
}

// indicatorsPayload is the shared shape of the index page and the API.
type indicatorsPayload struct {
	Overall    model.RiskLevel         `json:"overall"`
	Indicators []model.IndicatorResult `json:"indicators"`
	ComputedAt time.Time               `json:"computed_at"`
}

func (s *Server) computePayload() (*indicatorsPayload, error) {
	results, err := s.calc.ComputeAll()
	if err != nil {
		return nil, err
	}
	return &indicatorsPayload{
		Overall:    indicator.Overall(results, s.overall),
		Indicators: results,
		ComputedAt: time.Now(),
	}, nil
}

func (s *Server) handleIndicators(w http.ResponseWriter, _ *http.Request) {
	payload, err := s.computePayload()
	if err != nil {
		log.Printf("[ERROR] compute indicators: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	metric := mux.Vars(r)["metric"]

	var from, to model.Date
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = model.ParseDate(v); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = model.ParseDate(v); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	points, err := s.reader.Range(metric, from, to)
	if err != nil {
		log.Printf("[ERROR] range %s: %v", metric, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"metric": metric, "points": points})
}

// handleRefresh is the manual "fetch now" trigger. The run happens in the
// background (upstream calls are rate limited and can take minutes for a
// cold backfill); concurrent triggers are rejected.
func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	if s.updater == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "refresh not available"})
		return
	}
	if !s.refreshing.CompareAndSwap(false, true) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "refresh already running"})
		return
	}
	go func() {
		defer s.refreshing.Store(false)
		s.updater.Run(context.Background())
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh started"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[INFO] %s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[ERROR] panic serving %s: %v", r.URL.Path, rec)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
