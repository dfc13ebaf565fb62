// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Beans     BeansConfig     `yaml:"beans"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Placement PlacementConfig `yaml:"placement"`
	Collision CollisionConfig `yaml:"collision"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// WorldConfig holds world dimensions and population parameters.
type WorldConfig struct {
	Width               float64 `yaml:"width"`
	Height              float64 `yaml:"height"`
	PopulationDensity   float64 `yaml:"population_density"`   // Beans per square pixel
	MaleFemaleRatio     float64 `yaml:"male_female_ratio"`    // male = ratio / (1 + ratio)
	PlacementStrategy   string  `yaml:"placement_strategy"`   // random, grid, clustered
	PopulationEstimator string  `yaml:"population_estimator"` // density, soft_log
	SoftLogReference    int     `yaml:"soft_log_reference"`   // Count above which soft_log dampens growth
}

// BeansConfig holds bean creation parameters.
type BeansConfig struct {
	InitialSize   float64 `yaml:"initial_size"` // Diameter in pixels
	InitialEnergy float64 `yaml:"initial_energy"`
	InitialSpeed  float64 `yaml:"initial_speed"`
}

// PhysicsConfig holds movement parameters.
type PhysicsConfig struct {
	PixelsPerUnitSpeed float64 `yaml:"pixels_per_unit_speed"`
	EnergyLossOnBounce float64 `yaml:"energy_loss_on_bounce"` // Energy lost per wall bounce
}

// PlacementConfig holds placement strategy parameters.
type PlacementConfig struct {
	MaxRetries       int     `yaml:"max_retries"`       // Candidate draws per slot
	FailureThreshold int     `yaml:"failure_threshold"` // Consecutive failed slots before saturation
	SuccessThreshold float64 `yaml:"success_threshold"` // Fraction of requested count that must place
	WallClearance    float64 `yaml:"wall_clearance"`    // Gap between a bean surface and any wall
	PackingRandom    float64 `yaml:"packing_random"`    // Achievable area fraction, random strategy
	PackingGrid      float64 `yaml:"packing_grid"`
	PackingClustered float64 `yaml:"packing_clustered"`
}

// SexDamageFactors holds the per-sex collision damage multipliers.
type SexDamageFactors struct {
	Female float64 `yaml:"female"`
	Male   float64 `yaml:"male"`
}

// CollisionConfig holds collision detection and damage parameters.
type CollisionConfig struct {
	Enable             bool             `yaml:"enable"`
	CellSizeMultiplier float64          `yaml:"cell_size_multiplier"` // Grid cell size as a multiple of the largest radius
	BaseDamage         float64          `yaml:"base_damage"`
	MinDamage          float64          `yaml:"min_damage"`
	DamageSpeedFactor  float64          `yaml:"damage_speed_factor"`
	MinClashArea       float64          `yaml:"min_clash_area"` // Square pixels of overlap below which a graze is ignored
	SexDamageFactors   SexDamageFactors `yaml:"sex_damage_factors"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Ticks per stats window
}

var global *Config

// Init loads configuration and sets the package-level instance.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the package-level config. Init must be called first.
func Cfg() *Config {
	if global == nil {
		panic("config.Cfg called before config.Init")
	}
	return global
}

// Load reads configuration from the embedded defaults, overlaying the user
// file at path when one is given.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects parameter combinations the simulation cannot run with.
func (c *Config) Validate() error {
	if c.Beans.InitialSize <= 0 {
		return fmt.Errorf("beans.initial_size must be > 0, got %v", c.Beans.InitialSize)
	}
	if c.Physics.EnergyLossOnBounce < 0 {
		return fmt.Errorf("physics.energy_loss_on_bounce must be >= 0, got %v", c.Physics.EnergyLossOnBounce)
	}
	if c.Placement.SuccessThreshold <= 0 || c.Placement.SuccessThreshold > 1 {
		return fmt.Errorf("placement.success_threshold must be in (0, 1], got %v", c.Placement.SuccessThreshold)
	}
	if c.Placement.MaxRetries < 1 {
		return fmt.Errorf("placement.max_retries must be >= 1, got %v", c.Placement.MaxRetries)
	}
	if c.Placement.WallClearance < 0 {
		return fmt.Errorf("placement.wall_clearance must be >= 0, got %v", c.Placement.WallClearance)
	}
	for name, p := range map[string]float64{
		"packing_random":    c.Placement.PackingRandom,
		"packing_grid":      c.Placement.PackingGrid,
		"packing_clustered": c.Placement.PackingClustered,
	} {
		if p <= 0 || p > 1 {
			return fmt.Errorf("placement.%s must be in (0, 1], got %v", name, p)
		}
	}
	if c.Collision.BaseDamage < 0 || c.Collision.MinDamage < 0 || c.Collision.DamageSpeedFactor < 0 {
		return fmt.Errorf("collision damage constants must be >= 0, got base=%v min=%v speed_factor=%v",
			c.Collision.BaseDamage, c.Collision.MinDamage, c.Collision.DamageSpeedFactor)
	}
	if c.Collision.MinClashArea < 0 {
		return fmt.Errorf("collision.min_clash_area must be >= 0, got %v", c.Collision.MinClashArea)
	}
	if c.Collision.SexDamageFactors.Female < 0 || c.Collision.SexDamageFactors.Male < 0 {
		return fmt.Errorf("collision.sex_damage_factors must be >= 0, got female=%v male=%v",
			c.Collision.SexDamageFactors.Female, c.Collision.SexDamageFactors.Male)
	}
	if c.Collision.CellSizeMultiplier < 1 {
		return fmt.Errorf("collision.cell_size_multiplier must be >= 1, got %v", c.Collision.CellSizeMultiplier)
	}
	return nil
}

// WriteYAML saves the current configuration to a file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
