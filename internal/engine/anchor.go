package engine

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rackplan/rackplan/backend-go/internal/document"
)

// EffectivePosition resolves where an equipment item actually stands. A
// floor-standing item owns its position; a rack-mounted item inherits the
// position and rotation of its parent cabinet. ok is false when the parent
// cabinet no longer exists.
func EffectivePosition(item document.Equipment, l *document.Layout) (x, y, rotationDeg float64, ok bool) {
	if item.Placement.Mode != document.PlacementRack {
		return item.Placement.X, item.Placement.Y, item.Placement.RotationDeg, true
	}

	cab, found := l.Equipment[item.Placement.CabinetID]
	if !found || cab.Kind != document.KindCabinet {
		return 0, 0, 0, false
	}
	return cab.Placement.X, cab.Placement.Y, cab.Placement.RotationDeg, true
}

// MountedElevation returns the bottom z of a rack-mounted item: base
// clearance plus the slots below it.
func MountedElevation(rackStart int) float64 {
	return RackBaseClearance + float64(rackStart-1)*RackUnit
}

// ConnectionAnchor resolves the 3D point a cable end attaches to, or nil for
// a dangling reference. It never fails hard: callers treat nil as
// "connection not drawable".
//
// Tray refs anchor at the midpoint of the first segment. Floor-standing
// equipment anchors at the top of the unit. Rack-mounted equipment anchors at
// the cabinet's floor position, at the vertical centre of its slot run.
func ConnectionAnchor(ref document.EndpointRef, l *document.Layout) *r3.Vec {
	switch ref.Kind {
	case document.RefTray:
		t, ok := l.Trays[ref.ID]
		if !ok {
			return nil
		}
		a := TrayAnchor(t)
		return &a

	case document.RefEquipment:
		eq, ok := l.Equipment[ref.ID]
		if !ok {
			return nil
		}

		x, y, _, ok := EffectivePosition(eq, l)
		if !ok {
			return nil
		}

		if eq.Placement.Mode == document.PlacementRack {
			height := float64(max(eq.Units, 1)) * RackUnit
			z := float64(eq.Placement.RackStart-1)*RackUnit + height/2 + RackBaseClearance
			return &r3.Vec{X: x, Y: y, Z: z}
		}
		return &r3.Vec{X: x, Y: y, Z: eq.Height}
	}

	return nil
}

// ConnectionRoute expands a connection into its dog-leg polyline: from
// anchor, up to the route height through the control point, down to the to
// anchor. The control point defaults to (to.x, from.y) when the user has not
// placed one. Returns nil when either anchor is dangling.
func ConnectionRoute(c document.Connection, l *document.Layout) []r3.Vec {
	from := ConnectionAnchor(c.From, l)
	to := ConnectionAnchor(c.To, l)
	if from == nil || to == nil {
		return nil
	}

	control := document.Point{X: to.X, Y: from.Y}
	if c.Control != nil {
		control = *c.Control
	}

	return []r3.Vec{
		*from,
		{X: control.X, Y: control.Y, Z: c.RouteHeight},
		*to,
	}
}
