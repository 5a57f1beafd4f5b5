package engine

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/rackplan/rackplan/backend-go/internal/document"
)

// PlanPadding is the pixel margin kept around the footprint on the canvas.
const PlanPadding = 60.0

// Bounds is an axis-aligned world-space box.
type Bounds struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// PlanProjection maps world coordinates to top-down canvas pixels and back.
// The footprint is uniformly scaled into the padded canvas and the Y axis is
// flipped: world north is up, screen Y grows downward. Project and Unproject
// are exact inverses, which is what keeps pointer drags tracking the cursor.
type PlanProjection struct {
	Bounds  Bounds  `json:"bounds"`
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`

	canvasHeight float64
}

// NewPlanProjection fits the room footprint into a canvas of the given pixel
// size.
func NewPlanProjection(room document.Room, canvasWidth, canvasHeight float64) PlanProjection {
	corners := Footprint(room)

	b := Bounds{MinX: corners[0].X, MinY: corners[0].Y, MaxX: corners[0].X, MaxY: corners[0].Y}
	for _, c := range corners[1:] {
		b.MinX = min(b.MinX, c.X)
		b.MinY = min(b.MinY, c.Y)
		b.MaxX = max(b.MaxX, c.X)
		b.MaxY = max(b.MaxY, c.Y)
	}

	extent := max(b.Width(), b.Height())
	scale := min(canvasWidth-2*PlanPadding, canvasHeight-2*PlanPadding) / extent

	return PlanProjection{
		Bounds:       b,
		Scale:        scale,
		OffsetX:      (canvasWidth - b.Width()*scale) / 2,
		OffsetY:      (canvasHeight - b.Height()*scale) / 2,
		canvasHeight: canvasHeight,
	}
}

// Project maps a world point to canvas pixels.
func (p PlanProjection) Project(w r2.Vec) r2.Vec {
	return r2.Vec{
		X: p.OffsetX + (w.X-p.Bounds.MinX)*p.Scale,
		Y: p.canvasHeight - p.OffsetY - (w.Y-p.Bounds.MinY)*p.Scale,
	}
}

// Unproject maps canvas pixels back to world coordinates. It is the exact
// inverse of Project.
func (p PlanProjection) Unproject(s r2.Vec) r2.Vec {
	return r2.Vec{
		X: p.Bounds.MinX + (s.X-p.OffsetX)/p.Scale,
		Y: p.Bounds.MinY + (p.canvasHeight-p.OffsetY-s.Y)/p.Scale,
	}
}
