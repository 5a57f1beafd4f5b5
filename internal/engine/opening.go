package engine

import (
	"sort"

	"github.com/rackplan/rackplan/backend-go/internal/document"
)

// OpeningBounds is the validated placement of an opening along its wall:
// start/end distances from the wall start and the vertical [sill, top] band.
type OpeningBounds struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Sill  float64 `json:"sill"`
	Top   float64 `json:"top"`
}

// Margins applied when clamping openings into their wall.
const (
	minOpeningWidth   = 150.0
	wallEndMargin     = 50.0
	minOpeningHeight  = 100.0
	maxSillFromTopGap = 100.0
)

// ResolveOpeningBounds clamps a raw opening into valid bounds on its wall.
// The clamp is idempotent: any input, however far out of range, maps to
// bounds with at least 50mm of wall on either side, at least 100mm of
// opening height, and a top at or below the room height. Overlap between
// openings on the same wall is not rejected here; WallRuns tolerates it.
func ResolveOpeningBounds(o document.Opening, wall Wall, room document.Room) OpeningBounds {
	room = room.Normalized()

	width := clamp(o.Width, minOpeningWidth, wall.Length-2*wallEndMargin)
	start := clamp(o.Offset, wallEndMargin, wall.Length-width-wallEndMargin)
	sill := clamp(o.SillHeight, 0, room.Height-maxSillFromTopGap)
	top := clamp(sill+o.Height, sill+minOpeningHeight, room.Height)

	return OpeningBounds{
		Start: start,
		End:   start + width,
		Sill:  sill,
		Top:   top,
	}
}

// WallRun is a solid stretch of wall between openings, as distances from the
// wall start.
type WallRun struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

// WallRuns carves a wall into solid runs around the given opening bounds.
// Bounds are walked sorted by start; the cursor only ever advances, so
// overlapping openings coalesce into one gap and no run has negative length.
func WallRuns(wall Wall, bounds []OpeningBounds) []WallRun {
	sorted := make([]OpeningBounds, len(bounds))
	copy(sorted, bounds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	runs := make([]WallRun, 0, len(sorted)+1)
	cursor := 0.0
	for _, b := range sorted {
		if b.Start > cursor {
			runs = append(runs, WallRun{From: cursor, To: b.Start})
		}
		cursor = max(cursor, b.End)
	}
	if cursor < wall.Length {
		runs = append(runs, WallRun{From: cursor, To: wall.Length})
	}
	return runs
}

// OpeningsOnWall collects the resolved bounds of every opening on one wall,
// in draw order.
func OpeningsOnWall(l *document.Layout, wall Wall) []OpeningBounds {
	var bounds []OpeningBounds
	for _, id := range l.OpeningOrder {
		o, ok := l.Openings[id]
		if !ok || o.WallIndex != wall.Index {
			continue
		}
		bounds = append(bounds, ResolveOpeningBounds(o, wall, l.Room))
	}
	return bounds
}
