package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestNewPlanProjectionFitsCanvas(t *testing.T) {
	room := rectRoom() // 8000 x 6000
	proj := NewPlanProjection(room, 1200, 800)

	// The limiting axis is the canvas height: (800 - 120) / 8000.
	assert.InDelta(t, 680.0/8000.0, proj.Scale, 1e-12)

	for _, c := range Footprint(room) {
		s := proj.Project(c)
		assert.GreaterOrEqual(t, s.X, PlanPadding-1e-9)
		assert.LessOrEqual(t, s.X, 1200-PlanPadding+1e-9)
		assert.GreaterOrEqual(t, s.Y, PlanPadding-1e-9)
		assert.LessOrEqual(t, s.Y, 800-PlanPadding+1e-9)
	}
}

func TestPlanProjectionCentersFootprint(t *testing.T) {
	room := rectRoom()
	proj := NewPlanProjection(room, 1200, 800)

	left := proj.Project(r2.Vec{X: 0, Y: 0}).X
	right := proj.Project(r2.Vec{X: 8000, Y: 0}).X
	assert.InDelta(t, 1200-right, left, 1e-9, "horizontal margins match")

	top := proj.Project(r2.Vec{X: 0, Y: 6000}).Y
	bottom := proj.Project(r2.Vec{X: 0, Y: 0}).Y
	assert.InDelta(t, 800-bottom, top, 1e-9, "vertical margins match")
}

func TestPlanProjectionFlipsY(t *testing.T) {
	proj := NewPlanProjection(rectRoom(), 1200, 800)

	south := proj.Project(r2.Vec{X: 4000, Y: 0})
	north := proj.Project(r2.Vec{X: 4000, Y: 6000})
	assert.Less(t, north.Y, south.Y, "world north is up on screen")
}

func TestPlanProjectionRoundTrip(t *testing.T) {
	room := rectRoom()
	room.SouthTiltDeg = 12
	room.EastTiltDeg = -8
	proj := NewPlanProjection(room, 1200, 800)

	points := []r2.Vec{
		{X: 0, Y: 0},
		{X: 8000, Y: 6000},
		{X: 1234.5, Y: 987.6},
		{X: -500, Y: 7000}, // outside the footprint still round-trips
	}

	for _, w := range points {
		got := proj.Unproject(proj.Project(w))
		assert.InDelta(t, w.X, got.X, 1e-9)
		assert.InDelta(t, w.Y, got.Y, 1e-9)
	}

	screens := []r2.Vec{{X: 0, Y: 0}, {X: 600, Y: 400}, {X: 1200, Y: 800}}
	for _, s := range screens {
		got := proj.Project(proj.Unproject(s))
		assert.InDelta(t, s.X, got.X, 1e-9)
		assert.InDelta(t, s.Y, got.Y, 1e-9)
	}
}

func TestPlanProjectionSkewedBounds(t *testing.T) {
	room := rectRoom()
	room.SouthTiltDeg = 20

	proj := NewPlanProjection(room, 1200, 800)
	corners := Footprint(room)

	assert.Equal(t, 0.0, proj.Bounds.MinX)
	assert.Equal(t, 0.0, proj.Bounds.MinY)
	assert.Equal(t, corners[1].X, proj.Bounds.MaxX)
	assert.Equal(t, corners[2].Y, proj.Bounds.MaxY, "the skew extends the bounding box")
}
