package search

import "fmt"

// Parameter is one axis of a generic search space.
type Parameter struct {
	Name  string  `json:"name"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Steps int     `json:"steps"`
}

// Values returns Steps evenly spaced samples from Min to Max inclusive.
// Steps < 2 collapses the axis to its minimum.
func (p Parameter) Values() []float64 {
	if p.Steps < 2 {
		return []float64{p.Min}
	}
	values := make([]float64, p.Steps)
	delta := (p.Max - p.Min) / float64(p.Steps-1)
	for i := range values {
		values[i] = p.Min + float64(i)*delta
	}
	return values
}

// Space is a cartesian product of named parameter axes.
type Space struct {
	Parameters []Parameter `json:"parameters"`
}

// Size returns the number of combinations without materializing them.
func (s Space) Size() int {
	if len(s.Parameters) == 0 {
		return 0
	}
	n := 1
	for _, p := range s.Parameters {
		n *= len(p.Values())
	}
	return n
}

// SpaceOverview describes the points a generic space would enumerate.
type SpaceOverview struct {
	Axes             map[string][]float64 `json:"axes"`
	CombinationCount int                  `json:"combination_count"`
	EstimatedTime    string               `json:"estimated_time"`
}

// Summarize lists the axis samples and estimates the sweep cost.
func (s Space) Summarize() SpaceOverview {
	axes := make(map[string][]float64, len(s.Parameters))
	for _, p := range s.Parameters {
		axes[p.Name] = p.Values()
	}
	count := s.Size()
	return SpaceOverview{
		Axes:             axes,
		CombinationCount: count,
		EstimatedTime:    fmt.Sprintf("~%.1f seconds", float64(count)*secondsPerGridPoint),
	}
}

// Combinations enumerates every point of the space as a name-to-value map,
// in row-major order over the axes as listed.
func (s Space) Combinations() []map[string]float64 {
	if len(s.Parameters) == 0 {
		return nil
	}
	axes := make([][]float64, len(s.Parameters))
	for i, p := range s.Parameters {
		axes[i] = p.Values()
	}

	combos := make([]map[string]float64, 0, s.Size())
	indices := make([]int, len(axes))
	for {
		point := make(map[string]float64, len(axes))
		for i, p := range s.Parameters {
			point[p.Name] = axes[i][indices[i]]
		}
		combos = append(combos, point)

		// Advance the odometer, last axis fastest.
		i := len(indices) - 1
		for ; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(axes[i]) {
				break
			}
			indices[i] = 0
		}
		if i < 0 {
			return combos
		}
	}
}
