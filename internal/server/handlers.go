package server

import (
	"fmt"
	"math"
	"net/http"

	"github.com/jbcupps/Wireframe-sub000/internal/model"
	"github.com/jbcupps/Wireframe-sub000/internal/search"
	"github.com/jbcupps/Wireframe-sub000/internal/topology"
)

const maxEvolutionBatch = 10

// handleComputeEvolution advances each posted parameter set one demo step:
// the spatial twists drift by fixed increments and wrap into [0, 5).
func (s *Server) handleComputeEvolution(w http.ResponseWriter, r *http.Request) {
	var batch []map[string]float64
	if err := decodeBody(r, &batch); err != nil {
		s.writeError(w, http.StatusBadRequest, "input must be a list of numeric parameter sets")
		return
	}
	if len(batch) > maxEvolutionBatch {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("too many parameter sets, maximum is %d", maxEvolutionBatch))
		return
	}

	for _, params := range batch {
		params["twist_x"] = wrapTwist(params["twist_x"] + 0.1)
		params["twist_y"] = wrapTwist(params["twist_y"] + 0.2)
		params["twist_z"] = wrapTwist(params["twist_z"] - 0.1)
	}
	s.writeJSON(w, http.StatusOK, batch)
}

// wrapTwist folds a twist into [0, 5), mapping negatives like a modulus that
// always returns a non-negative remainder.
func wrapTwist(v float64) float64 {
	v = math.Mod(v, 5)
	if v < 0 {
		v += 5
	}
	return v
}

type compatibilityRequest struct {
	SKB1 *model.Params `json:"skb1"`
	SKB2 *model.Params `json:"skb2"`
}

type compatibilityResponse struct {
	LinkingNumber int                 `json:"linking_number"`
	Compatibility string              `json:"compatibility"`
	Report        topology.PairReport `json:"report"`
}

// handleCompatibility reports the linking number of two parameter sets and
// the even-linking compatibility verdict, plus the per-check pair report.
func (s *Server) handleCompatibility(w http.ResponseWriter, r *http.Request) {
	var req compatibilityRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "input must be an object with skb1 and skb2")
		return
	}
	if req.SKB1 == nil || req.SKB2 == nil {
		s.writeError(w, http.StatusBadRequest, "both skb1 and skb2 are required")
		return
	}

	linking := topology.LinkingNumber(*req.SKB1, *req.SKB2)
	verdict := "Incompatible"
	if linking%2 == 0 {
		verdict = "Compatible"
	}
	s.writeJSON(w, http.StatusOK, compatibilityResponse{
		LinkingNumber: linking,
		Compatibility: verdict,
		Report:        topology.ComparePair(*req.SKB1, *req.SKB2),
	})
}

type manifoldInvariantsRequest struct {
	ManifoldType string `json:"manifold_type"`
}

// handleManifoldInvariants looks up the invariant table entry for a named
// manifold type.
func (s *Server) handleManifoldInvariants(w http.ResponseWriter, r *http.Request) {
	var req manifoldInvariantsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "input must be an object with manifold_type")
		return
	}
	if req.ManifoldType == "" {
		s.writeError(w, http.StatusBadRequest, "manifold_type is required")
		return
	}
	inv, err := topology.InvariantsFor(req.ManifoldType)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, inv)
}

type validateHadronResponse struct {
	Result topology.HadronValidation `json:"result"`
}

func (s *Server) handleValidateHadron(w http.ResponseWriter, r *http.Request) {
	var params model.Params
	if err := decodeBody(r, &params); err != nil {
		s.writeError(w, http.StatusBadRequest, "input must be a parameter object")
		return
	}
	s.writeJSON(w, http.StatusOK, validateHadronResponse{Result: topology.ValidateHadron(params)})
}

func (s *Server) handleParticle(w http.ResponseWriter, r *http.Request) {
	particle, err := search.ParticleByName(r.PathValue("name"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, particle)
}

func (s *Server) handleAllParticles(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, search.AllParticles())
}

type generateParamsRequest struct {
	search.GridParams
	Parameters []search.Parameter `json:"parameters"`
}

// handleGenerateParams enumerates the grid a search request would sweep.
// Grid fields absent from the request keep their defaults; a request
// carrying a generic parameter list describes that space instead.
func (s *Server) handleGenerateParams(w http.ResponseWriter, r *http.Request) {
	req := generateParamsRequest{GridParams: search.DefaultGridParams()}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "input must be a grid parameter object")
		return
	}
	if len(req.Parameters) > 0 {
		space := search.Space{Parameters: req.Parameters}
		s.writeJSON(w, http.StatusOK, space.Summarize())
		return
	}
	summary, err := req.GridParams.Summarize()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

// handleIterativeSearch sweeps a generic parameter space against the
// theoretical targets of a particle class.
func (s *Server) handleIterativeSearch(w http.ResponseWriter, r *http.Request) {
	var req search.IterativeParams
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "input must be an iterative search request object")
		return
	}
	report, err := search.RunIterative(req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

type runSearchRequest struct {
	ParticleName string             `json:"particleName"`
	Parameters   *search.GridParams `json:"parameters"`
	Metric       search.Metric      `json:"metric"`
}

func (s *Server) handleRunSearch(w http.ResponseWriter, r *http.Request) {
	var req runSearchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "input must be a search request object")
		return
	}
	if req.ParticleName == "" {
		s.writeError(w, http.StatusBadRequest, "particleName is required")
		return
	}
	params := search.DefaultGridParams()
	if req.Parameters != nil {
		params = *req.Parameters
	}

	report, err := search.Run(req.ParticleName, params, req.Metric)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}
