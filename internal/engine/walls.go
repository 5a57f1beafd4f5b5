package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/rackplan/rackplan/backend-go/internal/document"
)

// Wall indices in footprint winding order.
const (
	WallSouth = 0
	WallEast  = 1
	WallNorth = 2
	WallWest  = 3
)

// Wall is one derived edge of the room footprint. Walls are recomputed from
// the room on every read and never stored.
type Wall struct {
	Index  int
	Start  r2.Vec
	End    r2.Vec
	Length float64
	Dir    r2.Vec // unit direction from Start to End
	Angle  float64
}

// Footprint derives the four corners of the (possibly skewed) floor polygon.
// Corner 0 is the origin; the south wall runs along +X skewed by the south
// tilt, the east wall along +Y skewed by the east tilt. Tilt clamping in
// Room.Normalized keeps every edge longer than zero.
func Footprint(room document.Room) [4]r2.Vec {
	room = room.Normalized()

	southRise := room.Width * math.Tan(degToRad(room.SouthTiltDeg))
	eastRun := room.Length * math.Tan(degToRad(room.EastTiltDeg))

	c0 := r2.Vec{X: 0, Y: 0}
	c1 := r2.Vec{X: room.Width, Y: southRise}
	c2 := r2.Vec{X: room.Width + eastRun, Y: southRise + room.Length}
	c3 := r2.Vec{X: eastRun, Y: room.Length}

	return [4]r2.Vec{c0, c1, c2, c3}
}

// Walls decomposes the footprint into four ordered wall segments forming a
// closed polygon: the end of wall i is the start of wall (i+1) mod 4.
func Walls(room document.Room) [4]Wall {
	corners := Footprint(room)

	var walls [4]Wall
	for i := range walls {
		start := corners[i]
		end := corners[(i+1)%4]
		d := r2.Sub(end, start)
		length := r2.Norm(d)

		walls[i] = Wall{
			Index:  i,
			Start:  start,
			End:    end,
			Length: length,
			Dir:    r2.Scale(1/length, d),
			Angle:  math.Atan2(d.Y, d.X),
		}
	}
	return walls
}

// PointAlongWall returns the world point at the given distance from the wall
// start. The distance is clamped to [0, wall.Length]; a wall never
// extrapolates past its corners.
func PointAlongWall(w Wall, distance float64) r2.Vec {
	distance = clamp(distance, 0, w.Length)
	return r2.Add(w.Start, r2.Scale(distance, w.Dir))
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
