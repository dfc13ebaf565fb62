// Package components defines ECS components for the simulation.
package components

import "math"

// Sex is the bean's category, used as a damage multiplier lookup key.
type Sex uint8

const (
	Female Sex = iota
	Male
)

// String returns a human-readable sex name.
func (s Sex) String() string {
	if s == Female {
		return "female"
	}
	return "male"
}

// Position represents an entity's world position in pixels.
type Position struct {
	X, Y float64
}

// Velocity represents an entity's velocity as a speed magnitude and a
// heading in radians.
type Velocity struct {
	Speed   float64
	Heading float64
}

// Vector returns the velocity as cartesian components.
func (v Velocity) Vector() (vx, vy float64) {
	return v.Speed * math.Cos(v.Heading), v.Speed * math.Sin(v.Heading)
}

// VelocityFromVector converts cartesian components back to speed and heading.
// A near-zero vector keeps the fallback heading so direction is never lost.
func VelocityFromVector(vx, vy, fallbackHeading float64) Velocity {
	speed := math.Hypot(vx, vy)
	if speed < 1e-12 {
		return Velocity{Speed: 0, Heading: fallbackHeading}
	}
	return Velocity{Speed: speed, Heading: math.Atan2(vy, vx)}
}

// Bean holds bean-specific state.
// Mass is never stored: it is derived as Radius squared wherever physics
// needs it.
type Bean struct {
	ID     int
	Radius float64
	Sex    Sex
	Energy float64
	Alive  bool
}
