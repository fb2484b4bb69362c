// Package server exposes the manifold explorer's HTTP surface: the legacy
// demo endpoints plus the particle database and methodical search API.
package server

import (
	"encoding/json"
	"log"
	"net/http"
)

// Server routes JSON requests to the topology, search and particle packages.
// Handlers always answer with a JSON body, on failure {"error": "..."}.
type Server struct {
	mux    *http.ServeMux
	logger *log.Logger
}

func New(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /compute_evolution", s.handleComputeEvolution)
	s.mux.HandleFunc("POST /compute_topological_compatibility", s.handleCompatibility)
	s.mux.HandleFunc("POST /validate_hadron", s.handleValidateHadron)
	s.mux.HandleFunc("POST /get_topological_invariants", s.handleManifoldInvariants)
	s.mux.HandleFunc("GET /api/particles/{name}", s.handleParticle)
	s.mux.HandleFunc("GET /api/particle/all", s.handleAllParticles)
	s.mux.HandleFunc("POST /api/methodical-search/generate-params", s.handleGenerateParams)
	s.mux.HandleFunc("POST /api/methodical-search/run", s.handleRunSearch)
	s.mux.HandleFunc("POST /api/methodical-search/iterative", s.handleIterativeSearch)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
