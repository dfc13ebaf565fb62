// Package telemetry accumulates per-tick simulation events and produces
// windowed statistics and CSV output.
package telemetry

// TickStats is one tick's worth of simulation events.
type TickStats struct {
	Tick        int     `csv:"tick"`
	Population  int     `csv:"population"`
	Clashes     int     `csv:"clashes"`
	TotalDamage float64 `csv:"total_damage"`
	Bounces     int     `csv:"bounces"`
	Deaths      int     `csv:"deaths"`
	MeanEnergy  float64 `csv:"mean_energy"`
}

// Collector accumulates tick stats within fixed-size windows.
type Collector struct {
	windowTicks int
	ticks       []TickStats
	damages     []float64 // Per-clash damage totals in the current window

	// Lifetime counters
	totalClashes int
	totalDeaths  int
}

// NewCollector creates a collector with the given window size in ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: windowTicks}
}

// RecordTick adds one tick's stats to the current window.
func (c *Collector) RecordTick(stats TickStats) {
	c.ticks = append(c.ticks, stats)
	c.totalClashes += stats.Clashes
	c.totalDeaths += stats.Deaths
}

// RecordClashDamage adds one clash's total damage to the window sample.
func (c *Collector) RecordClashDamage(damage float64) {
	c.damages = append(c.damages, damage)
}

// WindowReady reports whether a full window has accumulated.
func (c *Collector) WindowReady() bool {
	return len(c.ticks) >= c.windowTicks
}

// Flush computes stats over the accumulated window and resets it.
func (c *Collector) Flush() WindowStats {
	stats := computeWindowStats(c.ticks, c.damages)
	c.ticks = c.ticks[:0]
	c.damages = c.damages[:0]
	return stats
}

// TotalClashes returns the lifetime clash count.
func (c *Collector) TotalClashes() int {
	return c.totalClashes
}

// TotalDeaths returns the lifetime death count.
func (c *Collector) TotalDeaths() int {
	return c.totalDeaths
}
