package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/m-rossini/beans/config"
	"github.com/m-rossini/beans/game"
	"github.com/m-rossini/beans/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 1000, "Stop after N ticks (0 = run until extinction)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logTicks := flag.Bool("log-ticks", false, "Log every tick via slog")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
		os.Exit(1)
	}

	w, err := game.NewWorld(cfg, rngSeed)
	if err != nil {
		slog.Error("failed to initialize world", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"max_ticks", *maxTicks,
		"population", w.AliveCount(),
	)

	for *maxTicks <= 0 || w.Tick() < *maxTicks {
		stats := w.Step()

		if *logTicks {
			slog.Info("tick",
				"tick", stats.Tick,
				"population", stats.Population,
				"clashes", stats.Clashes,
				"damage", stats.TotalDamage,
				"deaths", stats.Deaths,
			)
		}
		if err := output.WriteTick(stats); err != nil {
			slog.Error("failed to write tick stats", "error", err)
			os.Exit(1)
		}

		if w.Collector().WindowReady() {
			ws := w.Collector().Flush()
			slog.Info("window stats",
				"window_end", ws.WindowEndTick,
				"population", ws.Population,
				"clashes", ws.Clashes,
				"deaths", ws.Deaths,
				"mean_damage", ws.MeanDamage,
				"mean_energy", ws.MeanEnergy,
			)
			if err := output.WriteWindowStats(ws); err != nil {
				slog.Error("failed to write window stats", "error", err)
				os.Exit(1)
			}
		}

		if w.AliveCount() == 0 {
			slog.Info("population extinct", "tick", w.Tick())
			break
		}
	}

	slog.Info("simulation finished",
		"ticks", w.Tick(),
		"alive", w.AliveCount(),
		"total_clashes", w.Collector().TotalClashes(),
		"total_deaths", w.Collector().TotalDeaths(),
	)
}
