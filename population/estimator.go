// Package population turns world area and density configuration into target
// bean counts.
package population

import (
	"log/slog"
	"math"
	"strings"
)

// Estimator decides how many beans should exist for a world of the given
// dimensions. Implementations never error: degenerate inputs clamp to zero.
type Estimator interface {
	Estimate(width, height, density float64) int
}

// FromName returns the estimator for a config name string, defaulting to
// density for unknown names. softLogReference is the count above which the
// soft_log variant dampens growth.
func FromName(name string, softLogReference int) Estimator {
	switch strings.ToLower(name) {
	case "density", "default":
		return DensityEstimator{}
	case "soft_log", "softlog", "soft-log":
		return SoftLogEstimator{Reference: softLogReference}
	default:
		slog.Debug("unknown population estimator, defaulting to density", "name", name)
		return DensityEstimator{}
	}
}

// DensityEstimator scales the count linearly with world area.
type DensityEstimator struct{}

// Estimate returns floor(width * height * density), clamped to zero for
// degenerate inputs.
func (DensityEstimator) Estimate(width, height, density float64) int {
	if width <= 0 || height <= 0 || density <= 0 {
		return 0
	}
	return int(width * height * density)
}

// SoftLogEstimator grows linearly up to a reference count, then dampens the
// raw density estimate logarithmically so large worlds do not produce
// runaway populations.
type SoftLogEstimator struct {
	Reference int
}

// Estimate returns the dampened count, clamped to zero for degenerate
// inputs.
func (e SoftLogEstimator) Estimate(width, height, density float64) int {
	if width <= 0 || height <= 0 || density <= 0 {
		return 0
	}
	raw := width * height * density
	ref := float64(e.Reference)
	if ref < 1 {
		ref = 1
	}
	if raw <= ref {
		return int(raw)
	}
	return int(ref * (1 + math.Log1p((raw-ref)/ref)))
}

// SplitSexes divides a total count into male and female by the configured
// male/female ratio: male fraction = ratio / (1 + ratio).
func SplitSexes(total int, maleFemaleRatio float64) (male, female int) {
	if total <= 0 {
		return 0, 0
	}
	if maleFemaleRatio < 0 {
		maleFemaleRatio = 0
	}
	maleFraction := maleFemaleRatio / (1 + maleFemaleRatio)
	male = int(float64(total) * maleFraction)
	female = total - male
	return male, female
}
