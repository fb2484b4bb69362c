package search

import "fmt"

// Particle is one Standard Model entry in the target database.
type Particle struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	MassMeV     float64  `json:"mass_mev"`
	Charge      float64  `json:"charge"`
	Structure   string   `json:"structure"`
	SubSKBs     []string `json:"sub_skbs"`
}

var particleOrder = []string{
	"proton", "neutron", "pion+", "pion0", "electron",
	"up-quark", "down-quark",
	"muon", "tau", "electron-neutrino", "muon-neutrino", "tau-neutrino",
	"charm-quark", "strange-quark", "top-quark", "bottom-quark",
	"photon", "z-boson", "w-boson", "gluon", "higgs",
	"kaon+", "lambda",
}

var particles = map[string]Particle{
	"proton": {
		Name: "proton", DisplayName: "Proton", MassMeV: 938.272, Charge: 1.0,
		Structure: "3 Sub-SKBs", SubSKBs: []string{"Up Quark", "Up Quark", "Down Quark"},
	},
	"neutron": {
		Name: "neutron", DisplayName: "Neutron", MassMeV: 939.565, Charge: 0.0,
		Structure: "3 Sub-SKBs", SubSKBs: []string{"Up Quark", "Down Quark", "Down Quark"},
	},
	"pion+": {
		Name: "pion+", DisplayName: "Pion+ (π+)", MassMeV: 139.570, Charge: 1.0,
		Structure: "2 Sub-SKBs", SubSKBs: []string{"Up Quark", "Anti-Down Quark"},
	},
	"pion0": {
		Name: "pion0", DisplayName: "Pion0 (π0)", MassMeV: 134.977, Charge: 0.0,
		Structure: "2 Sub-SKBs", SubSKBs: []string{"Up Quark", "Anti-Up Quark"},
	},
	"electron": {
		Name: "electron", DisplayName: "Electron", MassMeV: 0.511, Charge: -1.0,
		Structure: "1 Sub-SKB", SubSKBs: []string{"Electron"},
	},
	"up-quark": {
		Name: "up-quark", DisplayName: "Up Quark", MassMeV: 2.16, Charge: 2.0 / 3.0,
		Structure: "1 Sub-SKB", SubSKBs: []string{"Up Quark"},
	},
	"down-quark": {
		Name: "down-quark", DisplayName: "Down Quark", MassMeV: 4.67, Charge: -1.0 / 3.0,
		Structure: "1 Sub-SKB", SubSKBs: []string{"Down Quark"},
	},
	"muon": {
		Name: "muon", DisplayName: "Muon", MassMeV: 105.66, Charge: -1.0,
		Structure: "1 Sub-SKB", SubSKBs: []string{"Muon"},
	},
	"tau": {
		Name: "tau", DisplayName: "Tau", MassMeV: 1776.8, Charge: -1.0,
		Structure: "1 Sub-SKB", SubSKBs: []string{"Tau"},
	},
	"electron-neutrino": {
		Name: "electron-neutrino", DisplayName: "Electron Neutrino", MassMeV: 0.0000022, Charge: 0.0,
		Structure: "1 Sub-SKB", SubSKBs: []string{"Electron Neutrino"},
	},
	"muon-neutrino": {
		Name: "muon-neutrino", DisplayName: "Muon Neutrino", MassMeV: 0.17, Charge: 0.0,
		Structure: "1 Sub-SKB", SubSKBs: []string{"Muon Neutrino"},
	},
	"tau-neutrino": {
		Name: "tau-neutrino", DisplayName: "Tau Neutrino", MassMeV: 15.5, Charge: 0.0,
		Structure: "1 Sub-SKB", SubSKBs: []string{"Tau Neutrino"},
	},
	"charm-quark": {
		Name: "charm-quark", DisplayName: "Charm Quark", MassMeV: 1270.0, Charge: 2.0 / 3.0,
		Structure: "1 Sub-SKB", SubSKBs: []string{"Charm Quark"},
	},
	"strange-quark": {
		Name: "strange-quark", DisplayName: "Strange Quark", MassMeV: 93.4, Charge: -1.0 / 3.0,
		Structure: "1 Sub-SKB", SubSKBs: []string{"Strange Quark"},
	},
	"top-quark": {
		Name: "top-quark", DisplayName: "Top Quark", MassMeV: 172500.0, Charge: 2.0 / 3.0,
		Structure: "1 Sub-SKB", SubSKBs: []string{"Top Quark"},
	},
	"bottom-quark": {
		Name: "bottom-quark", DisplayName: "Bottom Quark", MassMeV: 4180.0, Charge: -1.0 / 3.0,
		Structure: "1 Sub-SKB", SubSKBs: []string{"Bottom Quark"},
	},
	"photon": {
		Name: "photon", DisplayName: "Photon", MassMeV: 0.0, Charge: 0.0,
		Structure: "1 Sub-SKB", SubSKBs: []string{"Photon"},
	},
	"z-boson": {
		Name: "z-boson", DisplayName: "Z Boson", MassMeV: 91188.0, Charge: 0.0,
		Structure: "1 Sub-SKB", SubSKBs: []string{"Z Boson"},
	},
	"w-boson": {
		Name: "w-boson", DisplayName: "W Boson", MassMeV: 80379.0, Charge: 1.0,
		Structure: "1 Sub-SKB", SubSKBs: []string{"W Boson"},
	},
	"gluon": {
		Name: "gluon", DisplayName: "Gluon", MassMeV: 0.0, Charge: 0.0,
		Structure: "1 Sub-SKB", SubSKBs: []string{"Gluon"},
	},
	"higgs": {
		Name: "higgs", DisplayName: "Higgs Boson", MassMeV: 125180.0, Charge: 0.0,
		Structure: "1 Sub-SKB", SubSKBs: []string{"Higgs Boson"},
	},
	"kaon+": {
		Name: "kaon+", DisplayName: "Kaon+ (K+)", MassMeV: 493.68, Charge: 1.0,
		Structure: "2 Sub-SKBs", SubSKBs: []string{"Up Quark", "Anti-Strange Quark"},
	},
	"lambda": {
		Name: "lambda", DisplayName: "Lambda (Λ)", MassMeV: 1115.68, Charge: 0.0,
		Structure: "3 Sub-SKBs", SubSKBs: []string{"Up Quark", "Down Quark", "Strange Quark"},
	},
}

// ParticleByName looks up one particle by its database key.
func ParticleByName(name string) (Particle, error) {
	p, ok := particles[name]
	if !ok {
		return Particle{}, fmt.Errorf("particle %q not found", name)
	}
	return p, nil
}

// AllParticles returns every database entry in a stable order.
func AllParticles() []Particle {
	out := make([]Particle, 0, len(particleOrder))
	for _, name := range particleOrder {
		out = append(out, particles[name])
	}
	return out
}

var categories = []struct {
	Name    string
	Members []string
}{
	{"Hadrons", []string{"proton", "neutron", "pion+", "pion0", "kaon+", "lambda"}},
	{"Leptons", []string{"electron", "muon", "tau", "electron-neutrino", "muon-neutrino", "tau-neutrino"}},
	{"Quarks", []string{"up-quark", "down-quark", "charm-quark", "strange-quark", "top-quark", "bottom-quark"}},
	{"Bosons", []string{"photon", "z-boson", "w-boson", "gluon", "higgs"}},
}

// ParticlesByCategory groups the database for presentation.
func ParticlesByCategory() map[string][]Particle {
	out := make(map[string][]Particle, len(categories))
	for _, c := range categories {
		group := make([]Particle, 0, len(c.Members))
		for _, name := range c.Members {
			if p, ok := particles[name]; ok {
				group = append(group, p)
			}
		}
		out[c.Name] = group
	}
	return out
}
