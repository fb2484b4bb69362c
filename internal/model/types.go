package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Dimension is fixed for every sub-SKB; the search never mutates it.
const Dimension = 4

// Intersection form labels used by the invariant derivation and the scorer.
const (
	FormPositiveDefinite = "Positive Definite"
	FormNegativeDefinite = "Negative Definite"
	FormIndefinite       = "Indefinite"
)

// Params holds the genetic parameters of a sub-SKB. Spatial twists are
// bounded to [-5, 5], the time twist to [-1, 1], curvature to [0, 2] and
// genus to {0, 1, 2}.
type Params struct {
	Tx         float64 `json:"tx"`
	Ty         float64 `json:"ty"`
	Tz         float64 `json:"tz"`
	Tt         float64 `json:"tt"`
	Curvature  float64 `json:"curvature"`
	Genus      int     `json:"genus"`
	Orientable bool    `json:"orientable"`
	Dimension  int     `json:"dimension"`
}

// Invariants are derived deterministically from Params and recomputed on
// every construction, never patched in place.
type Invariants struct {
	OrientabilityClass       string `json:"orientability_class"`
	EulerCharacteristic      int    `json:"euler_characteristic"`
	FundamentalGroup         string `json:"fundamental_group"`
	IntersectionForm         string `json:"intersection_form"`
	SmoothabilityObstruction bool   `json:"smoothability_obstruction"`
}

// SubSKB is one candidate in the evolutionary search. Fitness and
// CompatibleCount are population-relative: they are only meaningful after an
// evaluation pass over the population that contains this individual, and
// Evaluated reports whether such a pass has happened.
type SubSKB struct {
	ID              int        `json:"id"`
	Params          Params     `json:"params"`
	Invariants      Invariants `json:"invariants"`
	Fitness         float64    `json:"fitness"`
	CompatibleCount int        `json:"compatible_count"`
	Evaluated       bool       `json:"evaluated"`
}

// HadronRecord is the immutable result of a successful triplet discovery.
// Slots are population slot indices at discovery time; pair scores are
// ordered (a,b), (a,c), (b,c).
type HadronRecord struct {
	VersionedRecord
	Slots                   [3]int     `json:"slots"`
	MemberIDs               [3]int     `json:"member_ids"`
	PairScores              [3]float64 `json:"pair_scores"`
	Score                   float64    `json:"score"`
	CTCStable               bool       `json:"ctc_stable"`
	TwistBalanced           bool       `json:"twist_balanced"`
	TopologicallyCompatible bool       `json:"topologically_compatible"`
	Generation              int        `json:"generation"`
}

type PopulationRecord struct {
	VersionedRecord
	ID          string   `json:"id"`
	Generation  int      `json:"generation"`
	Members     []SubSKB `json:"members"`
	FrozenSlots []int    `json:"frozen_slots"`
}

type GenerationDiagnostics struct {
	Generation      int     `json:"generation"`
	BestFitness     float64 `json:"best_fitness"`
	MeanFitness     float64 `json:"mean_fitness"`
	MinFitness      float64 `json:"min_fitness"`
	FitnessStdDev   float64 `json:"fitness_std_dev"`
	CompatiblePairs int     `json:"compatible_pairs"`
	FrozenCount     int     `json:"frozen_count"`
	HadronCount     int     `json:"hadron_count"`
}

type RunRecord struct {
	VersionedRecord
	ID               string  `json:"id"`
	CreatedAtUTC     string  `json:"created_at_utc"`
	Seed             int64   `json:"seed"`
	PopulationSize   int     `json:"population_size"`
	Generations      int     `json:"generations"`
	MutationRate     float64 `json:"mutation_rate"`
	FinalBestFitness float64 `json:"final_best_fitness"`
	HadronCount      int     `json:"hadron_count"`
}
