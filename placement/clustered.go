package placement

import (
	"math"
	"math/rand"

	"github.com/m-rossini/beans/components"
	"github.com/m-rossini/beans/config"
	"github.com/m-rossini/beans/systems"
)

// ClusteredStrategy scatters a handful of cluster centers, then places each
// bean at an angle-and-radius offset from a randomly chosen center. The same
// separation check and retry budget as the random strategy apply, so beans
// never overlap - they just bunch.
type ClusteredStrategy struct {
	cfg config.PlacementConfig
}

// Name returns the config name of the strategy.
func (s *ClusteredStrategy) Name() string { return "clustered" }

// beansPerCluster controls how many beans share one cluster center on
// average.
const beansPerCluster = 16

// Place generates up to req.Count positions.
func (s *ClusteredStrategy) Place(req Request, rng *rand.Rand) []components.Position {
	if req.Count <= 0 {
		return nil
	}
	b, ok := placementBounds(req)
	if !ok || !feasible(req, s.cfg.PackingClustered) {
		return nil
	}

	minSep := req.minSeparation()

	numClusters := req.Count / beansPerCluster
	if numClusters < 1 {
		numClusters = 1
	}
	perCluster := (req.Count + numClusters - 1) / numClusters
	// Radius sized so perCluster separation discs roughly fit one cluster.
	clusterRadius := minSep * math.Sqrt(float64(perCluster))

	// Inset centers so a cluster disc is not clipped by the walls; small
	// worlds fall back to the midpoint.
	insetX := math.Min(clusterRadius, (b.maxX-b.minX)/2)
	insetY := math.Min(clusterRadius, (b.maxY-b.minY)/2)

	type center struct{ x, y float64 }
	centers := make([]center, numClusters)
	for i := range centers {
		centers[i] = center{
			x: b.minX + insetX + rng.Float64()*(b.maxX-b.minX-2*insetX),
			y: b.minY + insetY + rng.Float64()*(b.maxY-b.minY-2*insetY),
		}
	}

	hash := systems.NewSpatialHash(minSep)
	tracker := newFailureTracker(s.cfg.FailureThreshold)
	positions := make([]components.Position, 0, req.Count)

	for i := 0; i < req.Count; i++ {
		placed := false
		for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
			c := centers[rng.Intn(len(centers))]
			angle := rng.Float64() * 2 * math.Pi
			// sqrt keeps samples uniform over the cluster disc.
			radius := clusterRadius * math.Sqrt(rng.Float64())

			x := clamp(snapHalf(c.x+math.Cos(angle)*radius), b.minX, b.maxX)
			y := clamp(snapHalf(c.y+math.Sin(angle)*radius), b.minY, b.maxY)

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
