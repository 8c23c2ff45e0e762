// Package http exposes flow definitions over a stateless JSON API.
//
// The server holds only definitions; the flow state travels in the
// request and response bodies, so any number of clients can drive the
// same flows without server-side sessions.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nmbl-labs/formpath/internal/presentation/graph"
	"github.com/nmbl-labs/formpath/internal/runtime"
	"github.com/nmbl-labs/formpath/pkg/domain"
)

// Server serves navigation and inspection endpoints for a set of flow
// definitions.
type Server struct {
	flows  map[string]*domain.FlowDefinition
	logger *slog.Logger
}

// NewHandler builds the HTTP handler for the given definitions.
func NewHandler(defs []*domain.FlowDefinition, logger *slog.Logger) http.Handler {
	flows := make(map[string]*domain.FlowDefinition, len(defs))
	for _, def := range defs {
		flows[def.ID] = def
	}
	s := &Server{flows: flows, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/flows", s.listFlows)
	r.Route("/flows/{flowID}", func(r chi.Router) {
		r.Get("/graph", s.getGraph)
		r.Post("/path", s.postPath)
		r.Post("/full-path", s.postFullPath)
		r.Post("/next", s.postNext)
		r.Post("/back", s.postBack)
		r.Post("/goto", s.postGoTo)
		r.Post("/reset", s.postReset)
	})
	return r
}

type pathRequest struct {
	Data domain.Data `json:"data"`
}

type pathResponse struct {
	Path []domain.StepID `json:"path"`
}

type navigateRequest struct {
	State  *domain.FlowState `json:"state"`
	Input  any               `json:"input,omitempty"`
	Target domain.StepID     `json:"target,omitempty"`
}

type navigateResponse struct {
	State       *domain.FlowState `json:"state"`
	Moved       bool              `json:"moved"`
	FieldErrors []string          `json:"fieldErrors,omitempty"`
}

type resetRequest struct {
	InitialData domain.Data `json:"initialData,omitempty"`
}

func (s *Server) listFlows(w http.ResponseWriter, r *http.Request) {
	ids := make([]string, 0, len(s.flows))
	for id := range s.flows {
		ids = append(ids, id)
	}
	writeJSON(w, s.logger, map[string]any{"flows": ids})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	def, ok := s.flow(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(graph.Mermaid(def, nil))); err != nil {
		s.logger.Warn("graph write failed", "err", err)
	}
}

func (s *Server) postPath(w http.ResponseWriter, r *http.Request) {
	s.servePath(w, r, runtime.CalculatePath)
}

func (s *Server) postFullPath(w http.ResponseWriter, r *http.Request) {
	s.servePath(w, r, runtime.CalculateFullPath)
}

func (s *Server) servePath(w http.ResponseWriter, r *http.Request, calc func(*domain.FlowDefinition, domain.Data, *slog.Logger) []domain.StepID) {
	def, ok := s.flow(w, r)
	if !ok {
		return
	}
	var body pathRequest
	if !decodeBody(w, r, &body) {
		return
	}
	writeJSON(w, s.logger, pathResponse{Path: calc(def, body.Data, s.logger)})
}

func (s *Server) postNext(w http.ResponseWriter, r *http.Request) {
	def, ok := s.flow(w, r)
	if !ok {
		return
	}
	var body navigateRequest
	if !decodeBody(w, r, &body) {
		return
	}
	engine := s.engineFor(def, body.State)

	advanced, err := engine.Next(r.Context(), body.Input)
	if err != nil {
		if errors.Is(err, r.Context().Err()) {
			http.Error(w, "request canceled", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	resp := navigateResponse{State: engine.State(), Moved: advanced}
	for _, fe := range engine.FieldErrors() {
		resp.FieldErrors = append(resp.FieldErrors, fe.Error())
	}
	writeJSON(w, s.logger, resp)
}

func (s *Server) postBack(w http.ResponseWriter, r *http.Request) {
	def, ok := s.flow(w, r)
	if !ok {
		return
	}
	var body navigateRequest
	if !decodeBody(w, r, &body) {
		return
	}
	engine := s.engineFor(def, body.State)
	moved := engine.Back()
	writeJSON(w, s.logger, navigateResponse{State: engine.State(), Moved: moved})
}

func (s *Server) postGoTo(w http.ResponseWriter, r *http.Request) {
	def, ok := s.flow(w, r)
	if !ok {
		return
	}
	var body navigateRequest
	if !decodeBody(w, r, &body) {
		return
	}
	engine := s.engineFor(def, body.State)
	moved := engine.GoTo(body.Target)
	writeJSON(w, s.logger, navigateResponse{State: engine.State(), Moved: moved})
}

func (s *Server) postReset(w http.ResponseWriter, r *http.Request) {
	def, ok := s.flow(w, r)
	if !ok {
		return
	}
	var body resetRequest
	if !decodeBody(w, r, &body) {
		return
	}
	engine := runtime.NewEngine(def, runtime.WithLogger(s.logger))
	engine.Reset(body.InitialData)
	writeJSON(w, s.logger, navigateResponse{State: engine.State(), Moved: true})
}

// flow resolves the {flowID} route parameter, writing a 404 on miss.
func (s *Server) flow(w http.ResponseWriter, r *http.Request) (*domain.FlowDefinition, bool) {
	id := chi.URLParam(r, "flowID")
	def, ok := s.flows[id]
	if !ok {
		http.Error(w, "unknown flow", http.StatusNotFound)
		return nil, false
	}
	return def, true
}

// engineFor rebuilds a state machine around the client-supplied state.
// A missing state means a fresh flow at the initial step.
func (s *Server) engineFor(def *domain.FlowDefinition, state *domain.FlowState) *runtime.Engine {
	engine := runtime.NewEngine(def, runtime.WithLogger(s.logger))
	if state != nil {
		engine.SetState(state)
	}
	return engine
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("response encode failed", "err", err)
	}
}
