package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jbcupps/Wireframe-sub000/pkg/skbevo"
)

// runFileConfig is the on-disk run configuration. Field names match the
// artifact run.json vocabulary where both exist.
type runFileConfig struct {
	RunID         string  `json:"run_id"`
	Population    int     `json:"population"`
	Generations   int     `json:"generations"`
	Seed          int64   `json:"seed"`
	MutationRate  float64 `json:"mutation_rate"`
	CrossoverRate float64 `json:"crossover_rate"`
	Tournament    int     `json:"tournament"`
	WeightW1      float64 `json:"w1"`
	WeightEuler   float64 `json:"euler"`
	WeightQ       float64 `json:"q"`
	WeightTwist   float64 `json:"twist"`
	WeightCTC     float64 `json:"ctc"`
	Sigma         float64 `json:"sigma"`
	Epsilon       float64 `json:"epsilon"`
	SkipExport    bool    `json:"skip_export"`
}

func loadOrDefaultRunRequest(path string) (skbevo.RunRequest, error) {
	if path == "" {
		return skbevo.RunRequest{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return skbevo.RunRequest{}, err
	}
	var cfg runFileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return skbevo.RunRequest{}, fmt.Errorf("parse run config %s: %w", path, err)
	}
	return skbevo.RunRequest{
		RunID:         cfg.RunID,
		Population:    cfg.Population,
		Generations:   cfg.Generations,
		Seed:          cfg.Seed,
		MutationRate:  cfg.MutationRate,
		CrossoverRate: cfg.CrossoverRate,
		Tournament:    cfg.Tournament,
		WeightW1:      cfg.WeightW1,
		WeightEuler:   cfg.WeightEuler,
		WeightQ:       cfg.WeightQ,
		WeightTwist:   cfg.WeightTwist,
		WeightCTC:     cfg.WeightCTC,
		Sigma:         cfg.Sigma,
		Epsilon:       cfg.Epsilon,
		SkipExport:    cfg.SkipExport,
	}, nil
}

type flagValues map[string]any

// overrideFromFlags applies explicitly-set command line flags on top of a
// config-file request. Unset flags leave the config values alone.
func overrideFromFlags(req *skbevo.RunRequest, set map[string]bool, values flagValues) {
	for name, value := range values {
		if !set[name] {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = value.(string)
		case "pop":
			req.Population = value.(int)
		case "gens":
			req.Generations = value.(int)
		case "seed":
			req.Seed = value.(int64)
		case "mutation-rate":
			req.MutationRate = value.(float64)
		case "crossover-rate":
			req.CrossoverRate = value.(float64)
		case "tournament":
			req.Tournament = value.(int)
		case "w-w1":
			req.WeightW1 = value.(float64)
		case "w-euler":
			req.WeightEuler = value.(float64)
		case "w-q":
			req.WeightQ = value.(float64)
		case "w-twist":
			req.WeightTwist = value.(float64)
		case "w-ctc":
			req.WeightCTC = value.(float64)
		case "sigma":
			req.Sigma = value.(float64)
		case "epsilon":
			req.Epsilon = value.(float64)
		case "no-export":
			req.SkipExport = value.(bool)
		}
	}
}
