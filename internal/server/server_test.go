package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jbcupps/Wireframe-sub000/internal/search"
)

func doJSON(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("%s %s content type %q", method, path, ct)
	}
	var decoded map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("%s %s bad response body %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func TestComputeEvolutionAdvancesTwists(t *testing.T) {
	s := New(nil)

	body := `[{"twist_x": 4.95, "twist_y": 0, "twist_z": 0}]`
	req := httptest.NewRequest(http.MethodPost, "/compute_evolution", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var batch []map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &batch); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(batch) != 1 {
		t.Fatalf("batch length %d", len(batch))
	}
	got := batch[0]
	// 4.95 + 0.1 wraps past 5; -0.1 wraps up into [0, 5).
	if diff := got["twist_x"] - 0.05; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("twist_x %v, want 0.05", got["twist_x"])
	}
	if got["twist_y"] != 0.2 {
		t.Errorf("twist_y %v, want 0.2", got["twist_y"])
	}
	if got["twist_z"] != 4.9 {
		t.Errorf("twist_z %v, want 4.9", got["twist_z"])
	}
}

func TestComputeEvolutionRejectsBadInput(t *testing.T) {
	s := New(nil)

	oversized := strings.Repeat(`{"twist_x": 0},`, 10) + `{"twist_x": 0}`
	cases := []struct {
		name string
		body string
	}{
		{"not a list", `{"twist_x": 1}`},
		{"non-numeric values", `[{"twist_x": "fast"}]`},
		{"too many entries", "[" + oversized + "]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, decoded := doJSON(t, s, http.MethodPost, "/compute_evolution", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status %d, want 400", rec.Code)
			}
			if decoded["error"] == nil {
				t.Fatal("error body missing")
			}
		})
	}
}

func TestCompatibilityVerdictFollowsLinkingParity(t *testing.T) {
	s := New(nil)

	// |1.5| + |1.5| + 0 = 3, odd linking number.
	rec, decoded := doJSON(t, s, http.MethodPost, "/compute_topological_compatibility",
		`{"skb1": {"tx": 1.5, "ty": 1.5}, "skb2": {"tx": 0, "ty": 0}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %v", rec.Code, decoded)
	}
	if decoded["linking_number"] != float64(3) {
		t.Errorf("linking number %v, want 3", decoded["linking_number"])
	}
	if decoded["compatibility"] != "Incompatible" {
		t.Errorf("verdict %v, want Incompatible", decoded["compatibility"])
	}

	rec, decoded = doJSON(t, s, http.MethodPost, "/compute_topological_compatibility",
		`{"skb1": {"tx": 1}, "skb2": {"tx": -1}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %v", rec.Code, decoded)
	}
	if decoded["linking_number"] != float64(2) || decoded["compatibility"] != "Compatible" {
		t.Errorf("even linking response %v", decoded)
	}
	if decoded["report"] == nil {
		t.Error("pair report missing")
	}
}

func TestCompatibilityRequiresBothOperands(t *testing.T) {
	s := New(nil)

	rec, decoded := doJSON(t, s, http.MethodPost, "/compute_topological_compatibility",
		`{"skb1": {"tx": 1}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if decoded["error"] == nil {
		t.Fatal("error body missing")
	}
}

func TestValidateHadronEndpoint(t *testing.T) {
	s := New(nil)

	rec, decoded := doJSON(t, s, http.MethodPost, "/validate_hadron",
		`{"tx": 1, "ty": 1, "tz": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %v", rec.Code, decoded)
	}
	result, ok := decoded["result"].(map[string]any)
	if !ok {
		t.Fatalf("result missing: %v", decoded)
	}
	if result["is_valid"] != true || result["hadron_type"] != "baryon" {
		t.Errorf("validation %v", result)
	}
}

func TestManifoldInvariantsEndpoint(t *testing.T) {
	s := New(nil)

	rec, decoded := doJSON(t, s, http.MethodPost, "/get_topological_invariants",
		`{"manifold_type": "torus"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %v", rec.Code, decoded)
	}
	if decoded["euler_characteristic"] != float64(0) || decoded["genus"] != "1" {
		t.Errorf("invariants %v", decoded)
	}

	rec, decoded = doJSON(t, s, http.MethodPost, "/get_topological_invariants", `{}`)
	if rec.Code != http.StatusBadRequest || decoded["error"] == nil {
		t.Fatalf("missing type response %d %v", rec.Code, decoded)
	}

	rec, decoded = doJSON(t, s, http.MethodPost, "/get_topological_invariants",
		`{"manifold_type": "mobius_doughnut"}`)
	if rec.Code != http.StatusBadRequest || decoded["error"] == nil {
		t.Fatalf("unknown type response %d %v", rec.Code, decoded)
	}
}

func TestParticleLookup(t *testing.T) {
	s := New(nil)

	rec, decoded := doJSON(t, s, http.MethodGet, "/api/particles/proton", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %v", rec.Code, decoded)
	}
	if decoded["display_name"] != "Proton" || decoded["mass_mev"] != 938.272 {
		t.Errorf("particle %v", decoded)
	}

	rec, decoded = doJSON(t, s, http.MethodGet, "/api/particles/axion", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
	if decoded["error"] == nil {
		t.Fatal("error body missing")
	}
}

func TestAllParticlesEndpoint(t *testing.T) {
	s := New(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/particle/all", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var particles []search.Particle
	if err := json.Unmarshal(rec.Body.Bytes(), &particles); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(particles) != len(search.AllParticles()) {
		t.Fatalf("particle count %d", len(particles))
	}
}

func TestGenerateParamsDefaultsAndOverrides(t *testing.T) {
	s := New(nil)

	rec, decoded := doJSON(t, s, http.MethodPost, "/api/methodical-search/generate-params", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %v", rec.Code, decoded)
	}
	if decoded["combination_count"] != float64(63) {
		t.Errorf("default combination count %v, want 63", decoded["combination_count"])
	}

	rec, decoded = doJSON(t, s, http.MethodPost, "/api/methodical-search/generate-params",
		`{"twist_min": 0, "twist_max": 1, "twist_step": 0.5, "link_min": 0, "link_max": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %v", rec.Code, decoded)
	}
	if decoded["combination_count"] != float64(6) {
		t.Errorf("override combination count %v, want 6", decoded["combination_count"])
	}

	rec, decoded = doJSON(t, s, http.MethodPost, "/api/methodical-search/generate-params",
		`{"twist_step": -1}`)
	if rec.Code != http.StatusBadRequest || decoded["error"] == nil {
		t.Fatalf("invalid step response %d %v", rec.Code, decoded)
	}
}

func TestGenerateParamsAcceptsParameterSpace(t *testing.T) {
	s := New(nil)

	rec, decoded := doJSON(t, s, http.MethodPost, "/api/methodical-search/generate-params",
		`{"parameters": [
			{"name": "twist_x", "min": -1, "max": 1, "steps": 3},
			{"name": "loop_factor", "min": 0.5, "max": 1.5, "steps": 2}
		]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %v", rec.Code, decoded)
	}
	if decoded["combination_count"] != float64(6) {
		t.Errorf("combination count %v, want 6", decoded["combination_count"])
	}
	axes, ok := decoded["axes"].(map[string]any)
	if !ok || len(axes) != 2 {
		t.Errorf("axes %v", decoded["axes"])
	}
}

func TestIterativeSearchEndpoint(t *testing.T) {
	s := New(nil)

	rec, decoded := doJSON(t, s, http.MethodPost, "/api/methodical-search/iterative",
		`{
			"parameter_space": {"parameters": [
				{"name": "twist_x", "min": -1, "max": 1, "steps": 3},
				{"name": "loop_factor", "min": 0.5, "max": 1.5, "steps": 3}
			]},
			"target_type": "lepton",
			"max_targets": 2
		}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %v", rec.Code, decoded)
	}
	if decoded["combinations_evaluated"] != float64(9) {
		t.Errorf("combinations evaluated %v, want 9", decoded["combinations_evaluated"])
	}
	outcomes, ok := decoded["results"].([]any)
	if !ok || len(outcomes) != 2 {
		t.Fatalf("results missing: %v", decoded)
	}
	first, ok := outcomes[0].(map[string]any)
	if !ok || first["best_configuration"] == nil {
		t.Errorf("best configuration missing: %v", outcomes[0])
	}

	rec, decoded = doJSON(t, s, http.MethodPost, "/api/methodical-search/iterative",
		`{"target_type": "lepton"}`)
	if rec.Code != http.StatusBadRequest || decoded["error"] == nil {
		t.Fatalf("empty space response %d %v", rec.Code, decoded)
	}
}

func TestRunSearchEndpoint(t *testing.T) {
	s := New(nil)

	rec, decoded := doJSON(t, s, http.MethodPost, "/api/methodical-search/run",
		`{"particleName": "electron", "metric": "weighted"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %v", rec.Code, decoded)
	}
	results, ok := decoded["results"].([]any)
	if !ok || len(results) == 0 {
		t.Fatalf("results missing: %v", decoded)
	}
	target, ok := decoded["target"].(map[string]any)
	if !ok || target["name"] != "Electron" {
		t.Errorf("target %v", decoded["target"])
	}

	rec, decoded = doJSON(t, s, http.MethodPost, "/api/methodical-search/run", `{}`)
	if rec.Code != http.StatusBadRequest || decoded["error"] == nil {
		t.Fatalf("missing particle response %d %v", rec.Code, decoded)
	}

	rec, decoded = doJSON(t, s, http.MethodPost, "/api/methodical-search/run",
		`{"particleName": "unobtainium"}`)
	if rec.Code != http.StatusBadRequest || decoded["error"] == nil {
		t.Fatalf("unknown particle response %d %v", rec.Code, decoded)
	}
}
