package systems

import "math"

// clampFloat clamps a value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// normalizeHeading wraps a heading to [0, 2*Pi).
func normalizeHeading(h float64) float64 {
	const twoPi = 2 * math.Pi
	h = math.Mod(h, twoPi)
	if h < 0 {
		h += twoPi
	}
	return h
}

// distanceSq returns the squared distance between two points.
func distanceSq(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// LensArea returns the area shared by two overlapping circles of radius r
// and R whose centers are d apart, via the closed-form two-circle formula.
// Returns 0 when the circles are disjoint and the full area of the smaller
// circle when one contains the other.
func LensArea(d, r, R float64) float64 {
	if d >= r+R {
		return 0
	}
	if d <= math.Abs(R-r) {
		m := math.Min(r, R)
		return math.Pi * m * m
	}
	d2 := d * d
	r2 := r * r
	R2 := R * R
	// Clamp acos arguments: near-tangent geometry can drift past 1.0.
	a1 := r2 * math.Acos(clampFloat((d2+r2-R2)/(2*d*r), -1, 1))
	a2 := R2 * math.Acos(clampFloat((d2+R2-r2)/(2*d*R), -1, 1))
	tri := 0.5 * math.Sqrt(math.Max(0, (-d+r+R)*(d+r-R)*(d-r+R)*(d+r+R)))
	return a1 + a2 - tri
}
