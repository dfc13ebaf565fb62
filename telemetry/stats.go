package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats summarizes one stats window for logging and CSV output.
type WindowStats struct {
	WindowEndTick int     `csv:"window_end"`
	Population    int     `csv:"population"`
	Clashes       int     `csv:"clashes"`
	Deaths        int     `csv:"deaths"`
	Bounces       int     `csv:"bounces"`
	TotalDamage   float64 `csv:"total_damage"`
	MeanDamage    float64 `csv:"mean_damage"`
	StdDevDamage  float64 `csv:"stddev_damage"`
	P50Damage     float64 `csv:"p50_damage"`
	P90Damage     float64 `csv:"p90_damage"`
	MeanEnergy    float64 `csv:"mean_energy"`
}

// computeWindowStats aggregates tick stats and the per-clash damage sample.
func computeWindowStats(ticks []TickStats, damages []float64) WindowStats {
	var ws WindowStats
	if len(ticks) == 0 {
		return ws
	}

	last := ticks[len(ticks)-1]
	ws.WindowEndTick = last.Tick
	ws.Population = last.Population

	energies := make([]float64, 0, len(ticks))
	for _, t := range ticks {
		ws.Clashes += t.Clashes
		ws.Deaths += t.Deaths
		ws.Bounces += t.Bounces
		ws.TotalDamage += t.TotalDamage
		energies = append(energies, t.MeanEnergy)
	}
	ws.MeanEnergy = stat.Mean(energies, nil)

	if len(damages) > 0 {
		sorted := make([]float64, len(damages))
		copy(sorted, damages)
		sort.Float64s(sorted)

		ws.MeanDamage = stat.Mean(sorted, nil)
		ws.StdDevDamage = stat.StdDev(sorted, nil)
		ws.P50Damage = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		ws.P90Damage = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	}

	return ws
}
