// Package game orchestrates the simulation world: initial population and
// placement, the per-tick movement/collision/energy loop, and death
// bookkeeping.
package game

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/m-rossini/beans/components"
	"github.com/m-rossini/beans/config"
	"github.com/m-rossini/beans/placement"
	"github.com/m-rossini/beans/population"
	"github.com/m-rossini/beans/systems"
	"github.com/m-rossini/beans/telemetry"
)

// DeadBeanRecord remembers a removed bean and why it died.
type DeadBeanRecord struct {
	ID     int
	Sex    components.Sex
	Tick   int
	Reason string
}

// World owns the authoritative bean state. The movement and collision
// systems are pure transforms over snapshots; only World mutates entities,
// after the resolver returns its ledger and adjusted positions.
type World struct {
	world *ecs.World
	rng   *rand.Rand
	cfg   *config.Config

	mapper *ecs.Map3[components.Position, components.Velocity, components.Bean]
	filter *ecs.Filter3[components.Position, components.Velocity, components.Bean]

	movement  *systems.MovementSystem
	resolver  *systems.Resolver
	collector *telemetry.Collector

	tick       int
	aliveCount int
	dead       []DeadBeanRecord
}

// NewWorld builds a world from config: estimates the population, places it
// with the configured strategy, and spawns the beans. Placement returning an
// empty layout for a nonzero request is reported as an error here - the
// world cannot start severely under-populated.
func NewWorld(cfg *config.Config, seed int64) (*World, error) {
	rng := rand.New(rand.NewSource(seed))
	world := ecs.NewWorld()

	w := &World{
		world:  world,
		rng:    rng,
		cfg:    cfg,
		mapper: ecs.NewMap3[components.Position, components.Velocity, components.Bean](world),
		filter: ecs.NewFilter3[components.Position, components.Velocity, components.Bean](world),
		movement: systems.NewMovementSystem(
			systems.Bounds{Width: cfg.World.Width, Height: cfg.World.Height},
			cfg.Physics,
		),
		resolver:  systems.NewResolver(cfg.Collision),
		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindow),
	}

	if err := w.spawnInitialPopulation(); err != nil {
		return nil, err
	}
	return w, nil
}

// spawnInitialPopulation estimates, places and creates the starting beans.
func (w *World) spawnInitialPopulation() error {
	cfg := w.cfg
	estimator := population.FromName(cfg.World.PopulationEstimator, cfg.World.SoftLogReference)
	total := estimator.Estimate(cfg.World.Width, cfg.World.Height, cfg.World.PopulationDensity)
	male, _ := population.SplitSexes(total, cfg.World.MaleFemaleRatio)

	if total == 0 {
		slog.Warn("population estimate is zero, starting empty world")
		return nil
	}

	strategy := placement.FromName(cfg.World.PlacementStrategy, cfg.Placement)
	positions := strategy.Place(placement.Request{
		Count:     total,
		Width:     cfg.World.Width,
		Height:    cfg.World.Height,
		Size:      cfg.Beans.InitialSize,
		Clearance: cfg.Placement.WallClearance,
	}, w.rng)
	if len(positions) == 0 {
		return fmt.Errorf("placement: strategy %q could not fit %d beans in %gx%g world",
			strategy.Name(), total, cfg.World.Width, cfg.World.Height)
	}

	for i, p := range positions {
		sex := components.Female
		if i < male {
			sex = components.Male
		}
		w.spawnBean(i, p, sex)
	}
	w.aliveCount = len(positions)

	slog.Info("initial population spawned",
		"strategy", strategy.Name(),
		"estimator", cfg.World.PopulationEstimator,
		"requested", total,
		"placed", len(positions),
	)
	return nil
}

// spawnBean creates one bean entity at the given position.
func (w *World) spawnBean(id int, p components.Position, sex components.Sex) ecs.Entity {
	pos := p
	vel := components.Velocity{
		Speed:   w.cfg.Beans.InitialSpeed,
		Heading: w.rng.Float64() * 2 * math.Pi,
	}
	bean := components.Bean{
		ID:     id,
		Radius: w.cfg.Beans.InitialSize / 2,
		Sex:    sex,
		Energy: w.cfg.Beans.InitialEnergy,
		Alive:  true,
	}
	return w.mapper.NewEntity(&pos, &vel, &bean)
}

// Step advances the simulation one tick and returns the tick's stats.
func (w *World) Step() telemetry.TickStats {
	w.tick++

	bodies, bounceLoss, totalBounces := w.moveBeans()
	res := w.resolver.Resolve(bodies)
	deaths, meanEnergy := w.applyResolution(res, bounceLoss)
	w.cleanupDead()

	var totalDamage float64
	for _, d := range res.Damage {
		totalDamage += d
		w.collector.RecordClashDamage(d)
	}

	stats := telemetry.TickStats{
		Tick:        w.tick,
		Population:  w.aliveCount,
		Clashes:     res.Clashes,
		TotalDamage: totalDamage,
		Bounces:     totalBounces,
		Deaths:      deaths,
		MeanEnergy:  meanEnergy,
	}
	w.collector.RecordTick(stats)
	return stats
}

// moveBeans runs the movement step for every living bean and returns the
// resolver snapshot sorted by ID, the per-bean bounce energy debits and the
// total bounce count.
func (w *World) moveBeans() ([]systems.Body, map[int]float64, int) {
	bodies := make([]systems.Body, 0, w.aliveCount)
	bounceLoss := make(map[int]float64)
	totalBounces := 0

	query := w.filter.Query()
	for query.Next() {
		pos, vel, bean := query.Get()
		if !bean.Alive {
			continue
		}

		mv := w.movement.Step(pos.X, pos.Y, bean.Radius, vel.Speed, vel.Heading)
		if mv.Bounces > 0 {
			totalBounces += mv.Bounces
			bounceLoss[bean.ID] = float64(mv.Bounces) * w.cfg.Physics.EnergyLossOnBounce
		}

		bodies = append(bodies, systems.Body{
			ID:      bean.ID,
			X:       mv.X,
			Y:       mv.Y,
			Radius:  bean.Radius,
			Sex:     bean.Sex,
			Speed:   vel.Speed,
			Heading: mv.Heading,
		})
	}

	// Snapshot order must not depend on storage iteration order.
	sort.Slice(bodies, func(i, j int) bool { return bodies[i].ID < bodies[j].ID })
	return bodies, bounceLoss, totalBounces
}

// applyResolution commits adjusted positions and velocities, debits the
// damage ledger and bounce losses from energy, and marks depleted beans
// dead. Returns the number of deaths and the mean post-tick energy.
func (w *World) applyResolution(res systems.Resolution, bounceLoss map[int]float64) (deaths int, meanEnergy float64) {
	resolved := make(map[int]systems.Body, len(res.Bodies))
	for _, b := range res.Bodies {
		resolved[b.ID] = b
	}

	var energySum float64
	var living int

	query := w.filter.Query()
	for query.Next() {
		pos, vel, bean := query.Get()
		if !bean.Alive {
			continue
		}
		body, ok := resolved[bean.ID]
		if !ok {
			continue
		}

		pos.X = body.X
		pos.Y = body.Y
		vel.Speed = body.Speed
		vel.Heading = body.Heading

		bean.Energy -= res.Damage[bean.ID] + bounceLoss[bean.ID]
		if bean.Energy <= 0 {
			bean.Alive = false
			deaths++
			w.dead = append(w.dead, DeadBeanRecord{
				ID:     bean.ID,
				Sex:    bean.Sex,
				Tick:   w.tick,
				Reason: "energy_depleted",
			})
			continue
		}
		energySum += bean.Energy
		living++
	}

	if living > 0 {
		meanEnergy = energySum / float64(living)
	}
	return deaths, meanEnergy
}

// cleanupDead removes dead bean entities after query iteration completes.
func (w *World) cleanupDead() {
	var toRemove []ecs.Entity

	query := w.filter.Query()
	for query.Next() {
		_, _, bean := query.Get()
		if !bean.Alive {
			toRemove = append(toRemove, query.Entity())
		}
	}

	for _, e := range toRemove {
		w.mapper.Remove(e)
		w.aliveCount--
	}
}

// Tick returns the current tick number.
func (w *World) Tick() int {
	return w.tick
}

// AliveCount returns the number of living beans.
func (w *World) AliveCount() int {
	return w.aliveCount
}

// DeadBeans returns the records of every bean that has died.
func (w *World) DeadBeans() []DeadBeanRecord {
	return w.dead
}

// Collector returns the telemetry collector.
func (w *World) Collector() *telemetry.Collector {
	return w.collector
}
