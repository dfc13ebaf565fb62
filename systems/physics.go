package systems

import (
	"math"

	"github.com/m-rossini/beans/config"
)

// Bounds represents the simulation bounds in pixels.
type Bounds struct {
	Width, Height float64
}

// MovementSystem advances a bean along its heading and reflects it off the
// world walls. It produces proposed positions for the collision resolver;
// it never writes entity state itself.
type MovementSystem struct {
	bounds Bounds
	cfg    config.PhysicsConfig
}

// MoveResult is the outcome of one movement step.
type MoveResult struct {
	X, Y    float64 // Proposed position
	Heading float64 // Heading after any wall reflection
	Bounces int     // Wall contacts this step (0, 1 or 2)
}

// NewMovementSystem creates a movement system for the given bounds.
func NewMovementSystem(bounds Bounds, cfg config.PhysicsConfig) *MovementSystem {
	return &MovementSystem{bounds: bounds, cfg: cfg}
}

// Step moves a bean of the given radius one tick from (x, y) and reflects
// at walls. Each bounce flips the heading across the wall axis; the caller
// debits bounce energy from its ledger.
func (s *MovementSystem) Step(x, y, radius, speed, heading float64) MoveResult {
	px := speed * s.cfg.PixelsPerUnitSpeed
	nx := x + math.Cos(heading)*px
	ny := y + math.Sin(heading)*px

	bounces := 0

	// Horizontal walls
	if nx-radius < 0 {
		nx = radius
		heading = normalizeHeading(math.Pi - heading)
		bounces++
	} else if nx+radius > s.bounds.Width {
		nx = s.bounds.Width - radius
		heading = normalizeHeading(math.Pi - heading)
		bounces++
	}

	// Vertical walls
	if ny-radius < 0 {
		ny = radius
		heading = normalizeHeading(-heading)
		bounces++
	} else if ny+radius > s.bounds.Height {
		ny = s.bounds.Height - radius
		heading = normalizeHeading(-heading)
		bounces++
	}

	return MoveResult{X: nx, Y: ny, Heading: normalizeHeading(heading), Bounces: bounces}
}
