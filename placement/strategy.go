// Package placement generates non-overlapping initial bean layouts using
// pluggable strategies over a spatial hash.
package placement

import (
	"log/slog"
	"math"
	"math/rand"
	"strings"

	"github.com/m-rossini/beans/components"
	"github.com/m-rossini/beans/config"
	"github.com/m-rossini/beans/systems"
)

// Request describes one placement call.
type Request struct {
	Count     int
	Width     float64
	Height    float64
	Size      float64 // Bean diameter in pixels
	Clearance float64 // Wall and neighbor surface buffer
}

// minSeparation is the required center distance between any two accepted
// positions.
func (r Request) minSeparation() float64 {
	return r.Size + r.Clearance
}

// Strategy produces up to Count non-overlapping positions. An empty result
// means the request could not be satisfied at the configured success
// threshold; that is a normal outcome, not an error.
type Strategy interface {
	Name() string
	Place(req Request, rng *rand.Rand) []components.Position
}

// FromName returns the strategy for a config name string, defaulting to
// random for unknown names.
func FromName(name string, cfg config.PlacementConfig) Strategy {
	switch strings.ToLower(name) {
	case "random":
		return &RandomStrategy{cfg: cfg}
	case "grid":
		return &GridStrategy{cfg: cfg}
	case "clustered", "cluster":
		return &ClusteredStrategy{cfg: cfg}
	default:
		slog.Debug("unknown placement strategy, defaulting to random", "name", name)
		return &RandomStrategy{cfg: cfg}
	}
}

// bounds is the valid coordinate range for bean centers: inset from each
// wall by the clearance plus the bean's own radius.
type bounds struct {
	minX, maxX float64
	minY, maxY float64
}

func placementBounds(req Request) (bounds, bool) {
	inset := req.Clearance + req.Size/2
	b := bounds{
		minX: inset,
		maxX: req.Width - inset,
		minY: inset,
		maxY: req.Height - inset,
	}
	return b, b.minX <= b.maxX && b.minY <= b.maxY
}

// feasible estimates whether count beans can plausibly fit before any
// candidate is generated: available area times the strategy's achievable
// packing fraction must cover the discs' total footprint.
func feasible(req Request, packing float64) bool {
	if req.Width <= 0 || req.Height <= 0 {
		return false
	}
	sep := req.minSeparation()
	areaPerBean := math.Pi * (sep / 2) * (sep / 2)
	return req.Width*req.Height*packing >= float64(req.Count)*areaPerBean
}

// finish applies the success threshold: a result below the configured
// fraction of the requested count is discarded entirely so callers never
// silently run a severely under-populated world.
func finish(name string, req Request, cfg config.PlacementConfig, positions []components.Position) []components.Position {
	if float64(len(positions)) < cfg.SuccessThreshold*float64(req.Count) {
		slog.Warn("placement below success threshold, discarding",
			"strategy", name,
			"placed", len(positions),
			"requested", req.Count,
			"threshold", cfg.SuccessThreshold,
		)
		return nil
	}
	slog.Info("placement complete", "strategy", name, "placed", len(positions), "requested", req.Count)
	return positions
}

// snapHalf rounds to the nearest half pixel for pixel-perfect rendering.
func snapHalf(v float64) float64 {
	return math.Round(v*2) / 2
}

// collides reports whether a candidate is within minSep of any accepted
// position. The hash query is a superset; the exact distance check decides.
func collides(hash *systems.SpatialHash, x, y, minSep float64) bool {
	for _, n := range hash.Neighbors(x, y, minSep) {
		dx := x - n.X
		dy := y - n.Y
		if dx*dx+dy*dy < minSep*minSep {
			return true
		}
	}
	return false
}

// failureTracker detects saturation by counting consecutive slots that
// exhausted their retry budget.
type failureTracker struct {
	threshold   int
	consecutive int
}

func newFailureTracker(threshold int) *failureTracker {
	if threshold < 1 {
		threshold = 1
	}
	return &failureTracker{threshold: threshold}
}

func (t *failureTracker) placed() {
	t.consecutive = 0
}

func (t *failureTracker) failed() {
	t.consecutive++
}

func (t *failureTracker) saturated() bool {
	return t.consecutive >= t.threshold
}
