package systems

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/m-rossini/beans/components"
	"github.com/m-rossini/beans/config"
)

func testCollisionConfig() config.CollisionConfig {
	return config.CollisionConfig{
		Enable:             true,
		CellSizeMultiplier: 2.0,
		BaseDamage:         5.0,
		MinDamage:          0.5,
		DamageSpeedFactor:  0.05,
		MinClashArea:       2.0,
		SexDamageFactors:   config.SexDamageFactors{Female: 1.0, Male: 1.0},
	}
}

func TestLensArea(t *testing.T) {
	tests := []struct {
		name    string
		d, r, R float64
		want    float64
	}{
		{"disjoint", 11, 5, 5, 0},
		{"tangent", 10, 5, 5, 0},
		{"contained", 1, 2, 5, math.Pi * 4},
		{"coincident", 0, 3, 3, math.Pi * 9},
		// 50*acos(0.8) - 24 for equal radius 5 circles 8 apart.
		{"equal circles 8 apart", 8, 5, 5, 8.175055},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := LensArea(tc.d, tc.r, tc.R)
			if math.Abs(got-tc.want) > 1e-5 {
				t.Errorf("LensArea(%v, %v, %v) = %v, want %v", tc.d, tc.r, tc.R, got, tc.want)
			}
			// Symmetric in the radii.
			if sym := LensArea(tc.d, tc.R, tc.r); math.Abs(sym-got) > 1e-12 {
				t.Errorf("LensArea not symmetric: %v vs %v", got, sym)
			}
		})
	}
}

// TestResolveHeadOnPair is the canonical scenario: two equal beans closing
// head-on at combined relative speed 4 along the line of centers.
func TestResolveHeadOnPair(t *testing.T) {
	r := NewResolver(testCollisionConfig())

	bodies := []Body{
		{ID: 0, X: 0, Y: 0, Radius: 5, Speed: 2, Heading: 0},
		{ID: 1, X: 8, Y: 0, Radius: 5, Speed: 2, Heading: math.Pi},
	}
	res := r.Resolve(bodies)

	if res.Clashes != 1 {
		t.Fatalf("Clashes = %d, want 1", res.Clashes)
	}

	// relative speed 4 -> damage = max(5*4*0.05, 0.5) = 1.0, equal shares.
	if math.Abs(res.Damage[0]-0.5) > 1e-9 {
		t.Errorf("Damage[0] = %v, want 0.5", res.Damage[0])
	}
	if math.Abs(res.Damage[1]-0.5) > 1e-9 {
		t.Errorf("Damage[1] = %v, want 0.5", res.Damage[1])
	}

	a, b := res.Bodies[0], res.Bodies[1]

	// Equal masses: velocities reverse along the normal.
	if math.Abs(a.Speed-2) > 1e-9 || math.Abs(normalizeHeading(a.Heading)-math.Pi) > 1e-9 {
		t.Errorf("body 0 velocity = (%v, %v), want speed 2 heading pi", a.Speed, a.Heading)
	}
	if math.Abs(b.Speed-2) > 1e-9 || math.Abs(normalizeHeading(b.Heading)) > 1e-9 {
		t.Errorf("body 1 velocity = (%v, %v), want speed 2 heading 0", b.Speed, b.Heading)
	}

	// Position correction: separated to at least the sum of radii.
	dist := math.Sqrt(distanceSq(a.X, a.Y, b.X, b.Y))
	if dist < 10 {
		t.Errorf("post-resolution distance = %v, want >= 10", dist)
	}
}

func TestResolveConservation(t *testing.T) {
	r := NewResolver(testCollisionConfig())

	bodies := []Body{
		{ID: 0, X: 0, Y: 0, Radius: 3, Speed: 2, Heading: 0.3},
		{ID: 1, X: 5, Y: 1, Radius: 5, Speed: 1.5, Heading: -2.0},
	}

	momentum := func(bs []Body) (px, py float64) {
		for _, b := range bs {
			m := b.Radius * b.Radius
			vx, vy := components.Velocity{Speed: b.Speed, Heading: b.Heading}.Vector()
			px += m * vx
			py += m * vy
		}
		return px, py
	}
	kinetic := func(bs []Body) float64 {
		var ke float64
		for _, b := range bs {
			ke += 0.5 * b.Radius * b.Radius * b.Speed * b.Speed
		}
		return ke
	}

	pxBefore, pyBefore := momentum(bodies)
	keBefore := kinetic(bodies)

	res := r.Resolve(bodies)
	if res.Clashes != 1 {
		t.Fatalf("Clashes = %d, want 1", res.Clashes)
	}

	pxAfter, pyAfter := momentum(res.Bodies)
	keAfter := kinetic(res.Bodies)

	if math.Abs(pxAfter-pxBefore) > 1e-9 || math.Abs(pyAfter-pyBefore) > 1e-9 {
		t.Errorf("momentum not conserved: (%v, %v) -> (%v, %v)", pxBefore, pyBefore, pxAfter, pyAfter)
	}
	if math.Abs(keAfter-keBefore) > 1e-9*math.Max(1, keBefore) {
		t.Errorf("kinetic energy not conserved: %v -> %v", keBefore, keAfter)
	}
}

func TestDamageSizeSplit(t *testing.T) {
	r := NewResolver(testCollisionConfig())

	t.Run("smaller bean absorbs the larger share", func(t *testing.T) {
		bodies := []Body{
			{ID: 0, X: 0, Y: 0, Radius: 2, Speed: 3, Heading: 0},
			{ID: 1, X: 4, Y: 0, Radius: 6, Speed: 3, Heading: math.Pi},
		}
		res := r.Resolve(bodies)
		if res.Clashes != 1 {
			t.Fatalf("Clashes = %d, want 1", res.Clashes)
		}
		if res.Damage[0] <= res.Damage[1] {
			t.Errorf("small share %v not greater than large share %v", res.Damage[0], res.Damage[1])
		}
		// share_small = damage * large/(small+large) = 6/8 of the total.
		total := res.Damage[0] + res.Damage[1]
		if math.Abs(res.Damage[0]-total*0.75) > 1e-9 {
			t.Errorf("small share = %v, want %v", res.Damage[0], total*0.75)
		}
	})

	t.Run("equal sizes split evenly", func(t *testing.T) {
		bodies := []Body{
			{ID: 0, X: 0, Y: 0, Radius: 4, Speed: 3, Heading: 0},
			{ID: 1, X: 5, Y: 0, Radius: 4, Speed: 3, Heading: math.Pi},
		}
		res := r.Resolve(bodies)
		if math.Abs(res.Damage[0]-res.Damage[1]) > 1e-9 {
			t.Errorf("shares differ: %v vs %v", res.Damage[0], res.Damage[1])
		}
	})
}

func TestDamageMonotonicity(t *testing.T) {
	r := NewResolver(testCollisionConfig())

	totalDamage := func(speed float64) float64 {
		bodies := []Body{
			{ID: 0, X: 0, Y: 0, Radius: 5, Speed: speed, Heading: 0},
			{ID: 1, X: 8, Y: 0, Radius: 5, Speed: speed, Heading: math.Pi},
		}
		res := r.Resolve(bodies)
		return res.Damage[0] + res.Damage[1]
	}

	// Above the floor, total damage strictly increases with relative speed.
	prev := totalDamage(4)
	for _, speed := range []float64{6, 8, 12} {
		got := totalDamage(speed)
		if got <= prev {
			t.Errorf("damage at speed %v = %v, not greater than %v", speed, got, prev)
		}
		prev = got
	}

	// Below the floor both collapse to the configured minimum.
	slow := totalDamage(0.2)
	slower := totalDamage(0.1)
	if math.Abs(slow-0.5) > 1e-9 || math.Abs(slower-0.5) > 1e-9 {
		t.Errorf("min damage floor not applied: %v, %v, want 0.5", slow, slower)
	}
}

func TestSexDamageFactors(t *testing.T) {
	cfg := testCollisionConfig()
	cfg.SexDamageFactors = config.SexDamageFactors{Female: 1.05, Male: 1.0}
	r := NewResolver(cfg)

	bodies := []Body{
		{ID: 0, X: 0, Y: 0, Radius: 5, Sex: components.Female, Speed: 2, Heading: 0},
		{ID: 1, X: 8, Y: 0, Radius: 5, Sex: components.Male, Speed: 2, Heading: math.Pi},
	}
	res := r.Resolve(bodies)

	// Equal shares before the per-sex multiplier: 0.5 each.
	if math.Abs(res.Damage[0]-0.5*1.05) > 1e-9 {
		t.Errorf("female damage = %v, want %v", res.Damage[0], 0.5*1.05)
	}
	if math.Abs(res.Damage[1]-0.5) > 1e-9 {
		t.Errorf("male damage = %v, want 0.5", res.Damage[1])
	}
}

func TestGrazeBelowAreaThreshold(t *testing.T) {
	r := NewResolver(testCollisionConfig())

	// Overlapping by ~0.1px: lens area ~0.1, under the 2.0 threshold.
	bodies := []Body{
		{ID: 0, X: 0, Y: 0, Radius: 5, Speed: 2, Heading: 0},
		{ID: 1, X: 9.9, Y: 0, Radius: 5, Speed: 2, Heading: math.Pi},
	}
	res := r.Resolve(bodies)

	if res.Clashes != 0 {
		t.Errorf("Clashes = %d, want 0", res.Clashes)
	}
	if len(res.Damage) != 0 {
		t.Errorf("Damage = %v, want empty", res.Damage)
	}
	if !reflect.DeepEqual(res.Bodies, bodies) {
		t.Errorf("bodies changed on a graze: %v", res.Bodies)
	}
}

func TestCoincidentCenters(t *testing.T) {
	r := NewResolver(testCollisionConfig())

	// Exactly coincident centers: the fallback normal is the +X axis. This
	// is an arbitrary deterministic tie-break, pinned here on purpose.
	bodies := []Body{
		{ID: 0, X: 40, Y: 40, Radius: 5, Speed: 0, Heading: 0},
		{ID: 1, X: 40, Y: 40, Radius: 5, Speed: 0, Heading: 0},
	}
	res := r.Resolve(bodies)

	if res.Clashes != 1 {
		t.Fatalf("Clashes = %d, want 1", res.Clashes)
	}

	a, b := res.Bodies[0], res.Bodies[1]
	if a.Y != 40 || b.Y != 40 {
		t.Errorf("separation not along the +X axis: a=(%v,%v) b=(%v,%v)", a.X, a.Y, b.X, b.Y)
	}
	if a.X >= b.X {
		t.Errorf("lower ID should move in -X: a.X=%v b.X=%v", a.X, b.X)
	}
	if dist := math.Sqrt(distanceSq(a.X, a.Y, b.X, b.Y)); dist < 10 {
		t.Errorf("post-resolution distance = %v, want >= 10", dist)
	}
}

func TestSeparatingPairKeepsVelocity(t *testing.T) {
	r := NewResolver(testCollisionConfig())

	// Deep overlap but already moving apart: damage and correction apply,
	// the impulse does not (a second reversal would glue the pair together).
	bodies := []Body{
		{ID: 0, X: 0, Y: 0, Radius: 5, Speed: 2, Heading: math.Pi},
		{ID: 1, X: 6, Y: 0, Radius: 5, Speed: 2, Heading: 0},
	}
	res := r.Resolve(bodies)

	if res.Clashes != 1 {
		t.Fatalf("Clashes = %d, want 1", res.Clashes)
	}
	if len(res.Damage) != 2 {
		t.Errorf("expected damage for both bodies, got %v", res.Damage)
	}
	a, b := res.Bodies[0], res.Bodies[1]
	if a.Speed != 2 || a.Heading != math.Pi || b.Speed != 2 || b.Heading != 0 {
		t.Errorf("velocities changed on separating pair: %+v %+v", a, b)
	}
	if dist := math.Sqrt(distanceSq(a.X, a.Y, b.X, b.Y)); dist < 10 {
		t.Errorf("post-resolution distance = %v, want >= 10", dist)
	}
}

func TestResolveDisabled(t *testing.T) {
	cfg := testCollisionConfig()
	cfg.Enable = false
	r := NewResolver(cfg)

	bodies := []Body{
		{ID: 0, X: 0, Y: 0, Radius: 5, Speed: 2, Heading: 0},
		{ID: 1, X: 4, Y: 0, Radius: 5, Speed: 2, Heading: math.Pi},
	}
	res := r.Resolve(bodies)

	if res.Clashes != 0 || len(res.Damage) != 0 {
		t.Errorf("disabled resolver produced clashes: %+v", res)
	}
	if !reflect.DeepEqual(res.Bodies, bodies) {
		t.Errorf("disabled resolver changed bodies")
	}
}

func TestResolveReproducibility(t *testing.T) {
	r := NewResolver(testCollisionConfig())
	rng := rand.New(rand.NewSource(99))

	bodies := make([]Body, 0, 30)
	for i := 0; i < 30; i++ {
		bodies = append(bodies, Body{
			ID:      i,
			X:       rng.Float64() * 120,
			Y:       rng.Float64() * 120,
			Radius:  3 + rng.Float64()*4,
			Speed:   rng.Float64() * 3,
			Heading: rng.Float64() * 2 * math.Pi,
		})
	}

	first := r.Resolve(append([]Body(nil), bodies...))
	for run := 0; run < 5; run++ {
		again := r.Resolve(append([]Body(nil), bodies...))
		if !reflect.DeepEqual(again.Bodies, first.Bodies) {
			t.Fatalf("run %d: bodies differ", run)
		}
		if !reflect.DeepEqual(again.Damage, first.Damage) {
			t.Fatalf("run %d: ledger differs", run)
		}
		if again.Clashes != first.Clashes {
			t.Fatalf("run %d: clash count differs", run)
		}
	}
}

func TestResolveUntouchedBodiesKeepProposedPositions(t *testing.T) {
	r := NewResolver(testCollisionConfig())

	bodies := []Body{
		{ID: 0, X: 0, Y: 0, Radius: 5, Speed: 2, Heading: 0},
		{ID: 1, X: 8, Y: 0, Radius: 5, Speed: 2, Heading: math.Pi},
		{ID: 2, X: 100, Y: 100, Radius: 5, Speed: 1, Heading: 1},
	}
	res := r.Resolve(bodies)

	if res.Bodies[2] != bodies[2] {
		t.Errorf("uninvolved body changed: %+v", res.Bodies[2])
	}
	if _, hit := res.Damage[2]; hit {
		t.Errorf("uninvolved body took damage")
	}
}
