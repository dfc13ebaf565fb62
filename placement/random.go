package placement

import (
	"math/rand"

	"github.com/m-rossini/beans/components"
	"github.com/m-rossini/beans/config"
	"github.com/m-rossini/beans/systems"
)

// RandomStrategy draws uniform candidates and accepts any that keep the
// minimum separation from every earlier acceptance. Each slot has a bounded
// retry budget; a run of exhausted slots marks the world saturated.
type RandomStrategy struct {
	cfg config.PlacementConfig
}

// Name returns the config name of the strategy.
func (s *RandomStrategy) Name() string { return "random" }

// Place generates up to req.Count positions.
func (s *RandomStrategy) Place(req Request, rng *rand.Rand) []components.Position {
	if req.Count <= 0 {
		return nil
	}
	b, ok := placementBounds(req)
	if !ok || !feasible(req, s.cfg.PackingRandom) {
		return nil
	}

	minSep := req.minSeparation()
	hash := systems.NewSpatialHash(minSep)
	tracker := newFailureTracker(s.cfg.FailureThreshold)
	positions := make([]components.Position, 0, req.Count)

	for i := 0; i < req.Count; i++ {
		placed := false
		for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
			x := clamp(snapHalf(b.minX+rng.Float64()*(b.maxX-b.minX)), b.minX, b.maxX)
			y := clamp(snapHalf(b.minY+rng.Float64()*(b.maxY-b.minY)), b.minY, b.maxY)

			if collides(hash, x, y, minSep) {
				continue
			}
			positions = append(positions, components.Position{X: x, Y: y})
			hash.Insert(i, x, y)
			tracker.placed()
			placed = true
			break
		}
		if !placed {
			tracker.failed()
			if tracker.saturated() {
				break
			}
		}
	}

	return finish(s.Name(), req, s.cfg, positions)
}

func clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
