package panel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/glassbreakers/glasspanel/internal/hostapi"
	"github.com/glassbreakers/glasspanel/internal/mounts"
)

const (
	maxRequestBody  = 64 << 10
	shutdownTimeout = 5 * time.Second
)

// Server exposes an App over HTTP. A request is the user's confirmation,
// so destructive routes do not ask again.
type Server struct {
	app    *App
	logger *slog.Logger
	router *mux.Router
}

// Result is the body of every action route
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Status  string `json:"status,omitempty"`
}

// NewServer creates the panel server and its routes
func NewServer(app *App, logger *slog.Logger) *Server {
	s := &Server{app: app, logger: logger, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.logRequests)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/document", s.handleDocument).Methods(http.MethodGet)

	api.HandleFunc("/mounts/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/mounts/default", s.handleSelectDefault).Methods(http.MethodPost)
	api.HandleFunc("/mounts/cycle/{direction}", s.handleCycle).Methods(http.MethodPost)
	api.HandleFunc("/mounts", s.handleCreate).Methods(http.MethodPost)
	api.HandleFunc("/mounts/{id}/select", s.handleSelect).Methods(http.MethodPost)
	api.HandleFunc("/mounts/{id}", s.handleRename).Methods(http.MethodPatch)
	api.HandleFunc("/mounts/{id}", s.handleDelete).Methods(http.MethodDelete)

	api.HandleFunc("/settings/{group}/{name}", s.handleSetting).Methods(http.MethodPost)
	api.HandleFunc("/language/{code}", s.handleLanguage).Methods(http.MethodPost)
	api.HandleFunc("/streamer/reset", s.handleReset).Methods(http.MethodPost)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on addr and runs the map poller until ctx is canceled, then
// shuts the server down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()
	go s.app.Poller().Run(pollCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("panel listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("panel server failed: %w", err)
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down panel")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("panel shutdown failed: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(hostapi.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(hostapi.RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.logger.Debug("panel request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.code,
			"duration", time.Since(start),
			"request_id", id,
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// respond writes the outcome of an action along with the status line
func (s *Server) respond(w http.ResponseWriter, message string, err error) {
	line, _ := s.app.Status()
	if err == nil {
		writeJSON(w, http.StatusOK, Result{OK: true, Message: message, Status: line})
		return
	}
	writeJSON(w, errorCode(err), Result{Error: err.Error(), Status: line})
}

func errorCode(err error) int {
	var status *hostapi.StatusError
	var transport *hostapi.TransportError
	var decode *hostapi.DecodeError
	switch {
	case errors.Is(err, ErrUnknownSetting):
		return http.StatusNotFound
	case errors.Is(err, mounts.ErrRefreshInProgress):
		return http.StatusConflict
	case errors.As(err, &transport), errors.As(err, &status), errors.As(err, &decode):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func readBody(r *http.Request) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Document())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.app.Directory().Refresh(r.Context())
	if err != nil {
		s.respond(w, "", err)
		return
	}
	s.respond(w, fmt.Sprintf("%d camera mounts", snap.Len()), nil)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	confirmation, err := s.app.Directory().Create(r.Context())
	s.respond(w, confirmation, err)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := s.app.Directory().Lookup(r.Context(), mux.Vars(r)["id"])
	s.respond(w, "", s.app.Directory().Select(r.Context(), id))
}

func (s *Server) handleSelectDefault(w http.ResponseWriter, r *http.Request) {
	s.respond(w, "", s.app.Directory().SelectDefault(r.Context()))
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	id := s.app.Directory().Lookup(r.Context(), mux.Vars(r)["id"])
	name, err := readBody(r)
	if err != nil {
		s.respond(w, "", err)
		return
	}
	s.respond(w, "", s.app.Directory().Rename(r.Context(), id, name))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := s.app.Directory().Lookup(r.Context(), mux.Vars(r)["id"])
	err := s.app.Directory().Delete(r.Context(), id, func(string) bool { return true })
	s.respond(w, "", err)
}

func (s *Server) handleCycle(w http.ResponseWriter, r *http.Request) {
	dir, err := hostapi.ParseDirection(mux.Vars(r)["direction"])
	if err != nil {
		s.respond(w, "", err)
		return
	}
	s.respond(w, "", s.app.Directory().Cycle(r.Context(), dir))
}

func (s *Server) handleSetting(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	raw, err := readBody(r)
	if err != nil {
		s.respond(w, "", err)
		return
	}
	key := vars["group"] + "/" + vars["name"]
	s.respond(w, "", s.app.UpdateSetting(r.Context(), key, raw))
}

func (s *Server) handleLanguage(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if err := s.app.SetLanguage(r.Context(), code); err != nil {
		s.respond(w, "", err)
		return
	}
	s.respond(w, s.app.Catalog().Code(), nil)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	_, err := s.app.Reset(r.Context(), func(string) bool { return true })
	s.respond(w, "", err)
}
