package stats

import (
	"fmt"
	"os"

	"github.com/wcharczuk/go-chart/v2"
)

// RenderFitnessChart writes a best-fitness-by-generation line chart as PNG.
func RenderFitnessChart(path string, best []float64) error {
	if len(best) == 0 {
		return fmt.Errorf("no fitness history to plot")
	}

	xs := make([]float64, len(best))
	ys := make([]float64, len(best))
	for i, fitness := range best {
		xs[i] = float64(i + 1)
		ys[i] = fitness
	}

	graph := chart.Chart{
		Title: "Best fitness by generation",
		XAxis: chart.XAxis{
			Name:  "Generation",
			Style: chart.Style{FontSize: 10.0},
		},
		YAxis: chart.YAxis{
			Name:  "Fitness",
			Style: chart.Style{FontSize: 10.0},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "best",
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2.0},
			},
		},
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}
