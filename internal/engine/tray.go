package engine

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rackplan/rackplan/backend-go/internal/document"
)

// Segment is a straight 3D run of a tray.
type Segment struct {
	Start r3.Vec `json:"start"`
	End   r3.Vec `json:"end"`
}

// DirectionVector maps a tray direction to its unit vector in the floor
// plane.
func DirectionVector(d document.TrayDirection) r2.Vec {
	switch d {
	case document.DirXMinus:
		return r2.Vec{X: -1, Y: 0}
	case document.DirYPlus:
		return r2.Vec{X: 0, Y: 1}
	case document.DirYMinus:
		return r2.Vec{X: 0, Y: -1}
	default:
		return r2.Vec{X: 1, Y: 0}
	}
}

// turnVector rotates the primary direction a quarter turn: left is +90°,
// right is -90°.
func turnVector(dir r2.Vec, turn document.TrayTurn) r2.Vec {
	switch turn {
	case document.TurnLeft:
		return r2.Vec{X: -dir.Y, Y: dir.X}
	case document.TurnRight:
		return r2.Vec{X: dir.Y, Y: -dir.X}
	default:
		return dir
	}
}

// TraySegments expands a tray into one or two axis-aligned segments at the
// tray's constant elevation.
func TraySegments(t document.Tray) []Segment {
	dir := DirectionVector(t.Direction)
	start := r3.Vec{X: t.X, Y: t.Y, Z: t.Z}
	end := r3.Vec{
		X: t.X + dir.X*t.LengthA,
		Y: t.Y + dir.Y*t.LengthA,
		Z: t.Z,
	}

	segments := []Segment{{Start: start, End: end}}

	if t.Turn != document.TurnNone && t.Turn != "" && t.LengthB > 0 {
		perp := turnVector(dir, t.Turn)
		segments = append(segments, Segment{
			Start: end,
			End: r3.Vec{
				X: end.X + perp.X*t.LengthB,
				Y: end.Y + perp.Y*t.LengthB,
				Z: t.Z,
			},
		})
	}

	return segments
}

// TrayAnchor is the cable attachment point of a tray: the midpoint of its
// first segment at the tray elevation.
func TrayAnchor(t document.Tray) r3.Vec {
	segs := TraySegments(t)
	first := segs[0]
	return r3.Vec{
		X: (first.Start.X + first.End.X) / 2,
		Y: (first.Start.Y + first.End.Y) / 2,
		Z: t.Z,
	}
}
