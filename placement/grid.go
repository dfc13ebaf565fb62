package placement

import (
	"math/rand"

	"github.com/m-rossini/beans/components"
	"github.com/m-rossini/beans/config"
)

// GridStrategy enumerates evenly spaced positions row by row. The spacing
// equals the minimum separation, so accepted positions never overlap by
// construction and no collision check is needed.
type GridStrategy struct {
	cfg config.PlacementConfig
}

// Name returns the config name of the strategy.
func (s *GridStrategy) Name() string { return "grid" }

// Place generates up to req.Count positions. The rng is unused: grid layout
// is fully deterministic.
func (s *GridStrategy) Place(req Request, _ *rand.Rand) []components.Position {
	if req.Count <= 0 {
		return nil
	}
	b, ok := placementBounds(req)
	if !ok || !feasible(req, s.cfg.PackingGrid) {
		return nil
	}

	minSep := req.minSeparation()
	cols := int((b.maxX-b.minX)/minSep) + 1
	rows := int((b.maxY-b.minY)/minSep) + 1

	positions := make([]components.Position, 0, req.Count)
	for row := 0; row < rows && len(positions) < req.Count; row++ {
		for col := 0; col < cols && len(positions) < req.Count; col++ {
			positions = append(positions, components.Position{
				X: b.minX + float64(col)*minSep,
				Y: b.minY + float64(row)*minSep,
			})
		}
	}

	return finish(s.Name(), req, s.cfg, positions)
}
