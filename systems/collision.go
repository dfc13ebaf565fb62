package systems

import (
	"math"
	"sort"

	"github.com/m-rossini/beans/components"
	"github.com/m-rossini/beans/config"
)

// Body is the per-tick snapshot of one bean handed to the resolver: its
// proposed position from the movement step plus the physical state needed
// for damage and impulse exchange.
type Body struct {
	ID      int
	X, Y    float64 // Proposed position
	Radius  float64
	Sex     components.Sex
	Speed   float64
	Heading float64 // Radians
}

// mass derives the collision mass from the radius. Mass is never stored.
func (b Body) mass() float64 {
	return b.Radius * b.Radius
}

// Resolution is the outcome of one resolver pass: bodies with corrected
// positions and post-impulse velocities (input order preserved), and the
// damage ledger keyed by bean ID. Bodies involved in no clash keep their
// proposed position and velocity.
type Resolution struct {
	Bodies  []Body
	Damage  map[int]float64
	Clashes int
}

// Resolver detects overlapping bean pairs and resolves them physically and
// economically. It is stateless between ticks: each Resolve call builds its
// own spatial hash over the input snapshot and discards it.
type Resolver struct {
	cfg config.CollisionConfig
}

// NewResolver creates a collision resolver.
func NewResolver(cfg config.CollisionConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// pair is a canonical candidate pair, as indices into the body slice with
// ascending IDs.
type pair struct {
	a, b int
}

// Resolve runs one collision pass over the proposed positions.
//
// Pairs are canonicalized by ascending ID and processed in sorted ID order,
// independent of hash-bucket iteration, so results are reproducible for a
// given input snapshot.
func (r *Resolver) Resolve(bodies []Body) Resolution {
	out := make([]Body, len(bodies))
	copy(out, bodies)
	res := Resolution{Bodies: out, Damage: make(map[int]float64)}

	if !r.cfg.Enable || len(bodies) < 2 {
		return res
	}

	maxRadius := 0.0
	for _, b := range bodies {
		if b.Radius > maxRadius {
			maxRadius = b.Radius
		}
	}
	if maxRadius <= 0 {
		return res
	}

	// Neighbor queries reach radius_a + maxRadius <= 2*maxRadius, and the
	// 3x3 scan is only complete when the query radius fits one cell.
	cellSize := r.cfg.CellSizeMultiplier * maxRadius
	if cellSize < 2*maxRadius {
		cellSize = 2 * maxRadius
	}

	hash := NewSpatialHash(cellSize)
	byID := make(map[int]int, len(bodies))
	for i, b := range bodies {
		hash.Insert(b.ID, b.X, b.Y)
		byID[b.ID] = i
	}

	pairs := r.candidatePairs(hash, bodies, byID, maxRadius)

	for _, p := range pairs {
		r.resolvePair(&res, &out[p.a], &out[p.b])
	}

	return res
}

// candidatePairs gathers deduplicated candidate pairs from the spatial hash,
// sorted by ascending (low ID, high ID).
func (r *Resolver) candidatePairs(hash *SpatialHash, bodies []Body, byID map[int]int, maxRadius float64) []pair {
	var pairs []pair
	seen := make(map[int64]struct{})
	var scratch []Entry

	for i, b := range bodies {
		scratch = hash.NeighborsInto(scratch[:0], b.X, b.Y, b.Radius+maxRadius)
		for _, n := range scratch {
			if n.ID == b.ID {
				continue
			}
			lo, hi := b.ID, n.ID
			if lo > hi {
				lo, hi = hi, lo
			}
			key := int64(lo)<<32 | int64(uint32(hi))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			j := byID[n.ID]
			a, c := i, j
			if bodies[a].ID > bodies[c].ID {
				a, c = c, a
			}
			pairs = append(pairs, pair{a: a, b: c})
		}
	}

	sort.Slice(pairs, func(x, y int) bool {
		if bodies[pairs[x].a].ID != bodies[pairs[y].a].ID {
			return bodies[pairs[x].a].ID < bodies[pairs[y].a].ID
		}
		return bodies[pairs[x].b].ID < bodies[pairs[y].b].ID
	})
	return pairs
}

// resolvePair applies the clash test, damage split, elastic impulse and
// position correction to one candidate pair in place.
func (r *Resolver) resolvePair(res *Resolution, a, b *Body) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	sumRadii := a.Radius + b.Radius
	distSq := dx*dx + dy*dy
	if distSq >= sumRadii*sumRadii {
		return
	}
	dist := math.Sqrt(distSq)

	// Edge grazes below the area threshold never count as clashes.
	if LensArea(dist, a.Radius, b.Radius) < r.cfg.MinClashArea {
		return
	}
	res.Clashes++

	// Collision normal from a to b. Exactly coincident centers leave the
	// normal undefined; the fixed +X axis is the documented tie-break.
	var nx, ny float64
	if dist > 0 {
		nx, ny = dx/dist, dy/dist
	} else {
		nx, ny = 1, 0
	}

	avx, avy := components.Velocity{Speed: a.Speed, Heading: a.Heading}.Vector()
	bvx, bvy := components.Velocity{Speed: b.Speed, Heading: b.Heading}.Vector()

	r.applyDamage(res, a, b, bvx-avx, bvy-avy)

	// Elastic impulse, restitution 1, mass = radius^2. Skipped when the pair
	// is already separating so a resolved pair is not re-reversed.
	ma := a.mass()
	mb := b.mass()
	velAlongNormal := (bvx-avx)*nx + (bvy-avy)*ny
	if velAlongNormal < 0 {
		j := -2 * velAlongNormal / (1/ma + 1/mb)
		avx -= j * nx / ma
		avy -= j * ny / ma
		bvx += j * nx / mb
		bvy += j * ny / mb

		av := components.VelocityFromVector(avx, avy, a.Heading)
		bv := components.VelocityFromVector(bvx, bvy, b.Heading)
		a.Speed, a.Heading = av.Speed, av.Heading
		b.Speed, b.Heading = bv.Speed, bv.Heading
	}

	// Position correction: push the pair apart along the normal until the
	// centers are at least sumRadii apart, split by inverse mass so the
	// smaller bean moves further. The slop absorbs floating-point undershoot.
	const slop = 1e-6
	overlap := sumRadii - dist + slop
	moveA := overlap * mb / (ma + mb)
	moveB := overlap - moveA
	a.X -= nx * moveA
	a.Y -= ny * moveA
	b.X += nx * moveB
	b.Y += ny * moveB
}

// applyDamage records both damage shares in the ledger. The total scales
// with relative speed and is split inversely by size, so the smaller bean
// absorbs the larger share; each share then takes that bean's sex factor.
func (r *Resolver) applyDamage(res *Resolution, a, b *Body, rvx, rvy float64) {
	relSpeed := math.Hypot(rvx, rvy)
	damage := r.cfg.BaseDamage * relSpeed * r.cfg.DamageSpeedFactor
	if damage < r.cfg.MinDamage {
		damage = r.cfg.MinDamage
	}

	small, large := a, b
	if small.Radius > large.Radius {
		small, large = large, small
	}
	shareSmall := damage * large.Radius / (small.Radius + large.Radius)
	shareLarge := damage - shareSmall

	res.Damage[small.ID] += shareSmall * r.sexFactor(small.Sex)
	res.Damage[large.ID] += shareLarge * r.sexFactor(large.Sex)
}

// sexFactor returns the damage multiplier for a sex.
func (r *Resolver) sexFactor(s components.Sex) float64 {
	if s == components.Female {
		return r.cfg.SexDamageFactors.Female
	}
	return r.cfg.SexDamageFactors.Male
}
