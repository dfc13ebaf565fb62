// Package systems provides the spatial index, movement and collision
// resolution systems for the simulation.
package systems

import "math"

// Entry is one occupant of a spatial hash cell.
type Entry struct {
	ID   int
	X, Y float64
}

// SpatialHash provides O(1) average-case proximity queries over a dynamic
// set of 2D points. Cells are keyed by packed integer coordinates so the
// grid needs no fixed extent.
//
// A hash instance is built fresh for each placement call or resolver tick
// and discarded afterward; it is never shared across ticks.
type SpatialHash struct {
	cellSize float64
	cells    map[int64][]Entry
}

// NewSpatialHash creates a spatial hash with the given cell size.
// Correctness contract: cellSize must be >= the largest radius ever passed
// to Neighbors on this instance, otherwise the 3x3 cell scan can miss true
// neighbors.
func NewSpatialHash(cellSize float64) *SpatialHash {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &SpatialHash{
		cellSize: cellSize,
		cells:    make(map[int64][]Entry),
	}
}

// CellSize returns the configured cell size.
func (h *SpatialHash) CellSize() float64 {
	return h.cellSize
}

// Insert adds an entry at the given position.
func (h *SpatialHash) Insert(id int, x, y float64) {
	key := h.cellKey(x, y)
	h.cells[key] = append(h.cells[key], Entry{ID: id, X: x, Y: y})
}

// Neighbors returns every entry in the 3x3 cell neighborhood centered on the
// query position. The result is a superset filter: callers must apply an
// exact distance check, and the scan is only guaranteed complete when
// radius <= cell size. Entries are returned in fixed cell-scan order, then
// insertion order within a cell, so iteration is deterministic.
func (h *SpatialHash) Neighbors(x, y, radius float64) []Entry {
	return h.NeighborsInto(nil, x, y, radius)
}

// NeighborsInto appends the 3x3 neighborhood entries to dst and returns the
// updated slice. Reuse dst across calls to avoid allocations.
func (h *SpatialHash) NeighborsInto(dst []Entry, x, y, radius float64) []Entry {
	cx := int32(math.Floor(x / h.cellSize))
	cy := int32(math.Floor(y / h.cellSize))

	for dc := int32(-1); dc <= 1; dc++ {
		for dr := int32(-1); dr <= 1; dr++ {
			if bucket, ok := h.cells[packCell(cx+dc, cy+dr)]; ok {
				dst = append(dst, bucket...)
			}
		}
	}
	return dst
}

// cellKey returns the packed key for the cell containing a world position.
func (h *SpatialHash) cellKey(x, y float64) int64 {
	return packCell(int32(math.Floor(x/h.cellSize)), int32(math.Floor(y/h.cellSize)))
}

// packCell packs signed cell coordinates into a single map key.
func packCell(cx, cy int32) int64 {
	return int64(cx)<<32 | int64(uint32(cy))
}
