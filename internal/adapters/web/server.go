// Package web exposes the current state over HTTP and streams Changes to
// observers over a websocket.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/darkwatt/internal/broadcast"
	"github.com/quentinrf/darkwatt/internal/messaging"
)

const (
	httpReadTimeout    = 5 * time.Second
	httpWriteTimeout   = 21 * time.Second
	httpMaxHeaderBytes = 60000
)

// Dispatcher handles one request; *messaging.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req messaging.Request) (messaging.Response, error)
}

// Server serves the HTTP and websocket observer surface.
type Server struct {
	dispatcher Dispatcher
	hub        *broadcast.Hub
	srv        *http.Server
}

// NewServer wires the routes.
func NewServer(dispatcher Dispatcher, hub *broadcast.Hub) *Server {
	s := &Server{dispatcher: dispatcher, hub: hub}
	s.srv = &http.Server{
		ReadTimeout:    httpReadTimeout,
		WriteTimeout:   httpWriteTimeout,
		MaxHeaderBytes: httpMaxHeaderBytes,
		Handler:        s.Router(),
	}
	return s
}

// Router returns the route table, usable on its own in tests.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/data", s.handleData).Methods(http.MethodGet)
	r.HandleFunc("/api/tracked-sites", s.handleTrackedSites).Methods(http.MethodGet)
	r.HandleFunc("/api/changes", s.handleChanges).Methods(http.MethodGet)
	return r
}

// Serve blocks until the listener fails or Shutdown is called.
func (s *Server) Serve(lis net.Listener) error {
	log.Info().Str("addr", lis.Addr().String()).Msg("http server listening")
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
// Websocket streams end when the hub is closed.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, messaging.GetData{})
}

func (s *Server) handleTrackedSites(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, messaging.GetTotalTrackedSites{})
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, req messaging.Request) {
	resp, err := s.dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}
