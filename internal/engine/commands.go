package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/rackplan/rackplan/backend-go/internal/document"
)

// XY is a canvas-space point.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DrawCommand is one painting operation for the 2D plan canvas. The frontend
// executes these in order on a Canvas2D context; styling is keyed off Kind
// and the entity's color.
type DrawCommand struct {
	Op          string  `json:"op"` // "polygon" or "polyline"
	ObjectID    string  `json:"objectId,omitempty"`
	Kind        string  `json:"kind"`
	Points      []XY    `json:"points"`
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Selected    bool    `json:"selected,omitempty"`
}

// CompilePlan generates the 2D plan command buffer in painter's order: floor
// grid, walls with opening cut-outs, trays, floor-standing equipment, cable
// routes. Rack-mounted equipment is not drawn in plan — it lives inside its
// cabinet's footprint.
func CompilePlan(l *document.Layout, proj PlanProjection, sel Selection) []DrawCommand {
	var commands []DrawCommand

	commands = append(commands, gridCommands(l.Room, proj)...)
	commands = append(commands, wallCommands(l, proj, sel)...)
	commands = append(commands, trayCommands(l, proj, sel)...)
	commands = append(commands, equipmentCommands(l, proj, sel)...)
	commands = append(commands, connectionCommands(l, proj, sel)...)

	return commands
}

func gridCommands(room document.Room, proj PlanProjection) []DrawCommand {
	room = room.Normalized()
	b := proj.Bounds

	var commands []DrawCommand
	line := func(a, bb r2.Vec) {
		commands = append(commands, DrawCommand{
			Op:          "polyline",
			Kind:        "grid",
			Points:      projectPoints(proj, []r2.Vec{a, bb}),
			Stroke:      "grid",
			StrokeWidth: 1,
		})
	}

	for x := b.MinX; x <= b.MaxX; x += room.TileSize {
		line(r2.Vec{X: x, Y: b.MinY}, r2.Vec{X: x, Y: b.MaxY})
	}
	for y := b.MinY; y <= b.MaxY; y += room.TileSize {
		line(r2.Vec{X: b.MinX, Y: y}, r2.Vec{X: b.MaxX, Y: y})
	}
	return commands
}

func wallCommands(l *document.Layout, proj PlanProjection, sel Selection) []DrawCommand {
	var commands []DrawCommand

	for _, wall := range Walls(l.Room) {
		bounds := OpeningsOnWall(l, wall)
		for _, run := range WallRuns(wall, bounds) {
			commands = append(commands, DrawCommand{
				Op:   "polyline",
				Kind: "wall",
				Points: projectPoints(proj, []r2.Vec{
					PointAlongWall(wall, run.From),
					PointAlongWall(wall, run.To),
				}),
				Stroke:      "wall",
				StrokeWidth: 6,
			})
		}

		for _, id := range l.OpeningOrder {
			o, ok := l.Openings[id]
			if !ok || o.WallIndex != wall.Index {
				continue
			}
			ob := ResolveOpeningBounds(o, wall, l.Room)
			commands = append(commands, DrawCommand{
				Op:       "polyline",
				ObjectID: id,
				Kind:     "opening." + string(o.Kind),
				Points: projectPoints(proj, []r2.Vec{
					PointAlongWall(wall, ob.Start),
					PointAlongWall(wall, ob.End),
				}),
				Stroke:      string(o.Kind),
				StrokeWidth: 4,
				Selected:    sel.Is("opening", id),
			})
		}
	}
	return commands
}

func trayCommands(l *document.Layout, proj PlanProjection, sel Selection) []DrawCommand {
	var commands []DrawCommand
	for _, id := range l.TrayOrder {
		t, ok := l.Trays[id]
		if !ok {
			continue
		}

		var pts []r2.Vec
		for i, seg := range TraySegments(t) {
			if i == 0 {
				pts = append(pts, r2.Vec{X: seg.Start.X, Y: seg.Start.Y})
			}
			pts = append(pts, r2.Vec{X: seg.End.X, Y: seg.End.Y})
		}

		commands = append(commands, DrawCommand{
			Op:          "polyline",
			ObjectID:    id,
			Kind:        "tray",
			Points:      projectPoints(proj, pts),
			Stroke:      "tray",
			StrokeWidth: t.Width * proj.Scale,
			Selected:    sel.Is("tray", id),
		})
	}
	return commands
}

func equipmentCommands(l *document.Layout, proj PlanProjection, sel Selection) []DrawCommand {
	var commands []DrawCommand
	for _, id := range l.EquipmentOrder {
		eq, ok := l.Equipment[id]
		if !ok || eq.Placement.Mode == document.PlacementRack {
			continue
		}

		corners := FootprintCorners(eq.Placement.X, eq.Placement.Y, eq.Width, eq.Depth, eq.Placement.RotationDeg)
		commands = append(commands, DrawCommand{
			Op:       "polygon",
			ObjectID: id,
			Kind:     "equipment." + string(eq.Kind),
			Points:   projectPoints(proj, corners[:]),
			Fill:     eq.ColorKey,
			Stroke:   "outline",
			Selected: sel.Is("equipment", id),
		})
	}
	return commands
}

func connectionCommands(l *document.Layout, proj PlanProjection, sel Selection) []DrawCommand {
	var commands []DrawCommand
	for _, id := range l.ConnectionOrder {
		c, ok := l.Connections[id]
		if !ok {
			continue
		}
		route := ConnectionRoute(c, l)
		if route == nil {
			// Dangling endpoint: the connection is not drawable.
			continue
		}

		pts := make([]r2.Vec, len(route))
		for i, p := range route {
			pts[i] = r2.Vec{X: p.X, Y: p.Y}
		}
		commands = append(commands, DrawCommand{
			Op:          "polyline",
			ObjectID:    id,
			Kind:        "connection",
			Points:      projectPoints(proj, pts),
			Stroke:      c.Color,
			StrokeWidth: 2,
			Selected:    sel.Is("connection", id),
		})
	}
	return commands
}

func projectPoints(proj PlanProjection, pts []r2.Vec) []XY {
	out := make([]XY, len(pts))
	for i, p := range pts {
		s := proj.Project(p)
		out[i] = XY{X: s.X, Y: s.Y}
	}
	return out
}

// FootprintCorners returns the four corners of a rotated rectangle centered
// at (cx, cy), in winding order starting at the local front-left corner.
func FootprintCorners(cx, cy, width, depth, rotationDeg float64) [4]r2.Vec {
	sin, cos := math.Sincos(degToRad(rotationDeg))
	local := [4]r2.Vec{
		{X: -width / 2, Y: -depth / 2},
		{X: width / 2, Y: -depth / 2},
		{X: width / 2, Y: depth / 2},
		{X: -width / 2, Y: depth / 2},
	}

	var corners [4]r2.Vec
	for i, p := range local {
		corners[i] = r2.Vec{
			X: cx + p.X*cos - p.Y*sin,
			Y: cy + p.X*sin + p.Y*cos,
		}
	}
	return corners
}

// Selection is the current edit target: an entity kind plus ID, or nothing.
type Selection struct {
	Kind string `json:"kind,omitempty"`
	ID   string `json:"id,omitempty"`
}

func (s Selection) Is(kind, id string) bool {
	return s.Kind == kind && s.ID == id
}

func (s Selection) Empty() bool {
	return s.Kind == "" && s.ID == ""
}

// hit-test threshold in canvas pixels for line-like targets.
const hitThresholdPx = 8.0

// HitTestPlan resolves a canvas click to the topmost entity under it.
// Priority order: equipment, then trays and cables, then openings; within a
// class the last-added entity wins ties, matching draw order.
func HitTestPlan(l *document.Layout, proj PlanProjection, screenX, screenY float64) Selection {
	world := proj.Unproject(r2.Vec{X: screenX, Y: screenY})
	threshold := hitThresholdPx / proj.Scale

	for i := len(l.EquipmentOrder) - 1; i >= 0; i-- {
		id := l.EquipmentOrder[i]
		eq, ok := l.Equipment[id]
		if !ok || eq.Placement.Mode == document.PlacementRack {
			continue
		}
		if pointInRotatedRect(world, eq.Placement.X, eq.Placement.Y, eq.Width, eq.Depth, eq.Placement.RotationDeg) {
			return Selection{Kind: "equipment", ID: id}
		}
	}

	for i := len(l.TrayOrder) - 1; i >= 0; i-- {
		id := l.TrayOrder[i]
		t, ok := l.Trays[id]
		if !ok {
			continue
		}
		for _, seg := range TraySegments(t) {
			a := r2.Vec{X: seg.Start.X, Y: seg.Start.Y}
			b := r2.Vec{X: seg.End.X, Y: seg.End.Y}
			if pointSegmentDistance(world, a, b) <= threshold+t.Width/2 {
				return Selection{Kind: "tray", ID: id}
			}
		}
	}

	for i := len(l.ConnectionOrder) - 1; i >= 0; i-- {
		id := l.ConnectionOrder[i]
		c, ok := l.Connections[id]
		if !ok {
			continue
		}
		route := ConnectionRoute(c, l)
		for j := 0; j+1 < len(route); j++ {
			a := r2.Vec{X: route[j].X, Y: route[j].Y}
			b := r2.Vec{X: route[j+1].X, Y: route[j+1].Y}
			if pointSegmentDistance(world, a, b) <= threshold {
				return Selection{Kind: "connection", ID: id}
			}
		}
	}

	walls := Walls(l.Room)
	for i := len(l.OpeningOrder) - 1; i >= 0; i-- {
		id := l.OpeningOrder[i]
		o, ok := l.Openings[id]
		if !ok {
			continue
		}
		wall := walls[((o.WallIndex%4)+4)%4]
		ob := ResolveOpeningBounds(o, wall, l.Room)
		a := PointAlongWall(wall, ob.Start)
		b := PointAlongWall(wall, ob.End)
		if pointSegmentDistance(world, a, b) <= threshold {
			return Selection{Kind: "opening", ID: id}
		}
	}

	return Selection{}
}

// pointInRotatedRect tests containment by rotating the point into the rect's
// local frame.
func pointInRotatedRect(p r2.Vec, cx, cy, width, depth, rotationDeg float64) bool {
	sin, cos := math.Sincos(-degToRad(rotationDeg))
	dx := p.X - cx
	dy := p.Y - cy
	lx := dx*cos - dy*sin
	ly := dx*sin + dy*cos
	return math.Abs(lx) <= width/2 && math.Abs(ly) <= depth/2
}

// pointSegmentDistance is the distance from p to the closest point of
// segment ab.
func pointSegmentDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := clamp(r2.Dot(r2.Sub(p, a), ab)/lenSq, 0, 1)
	closest := r2.Add(a, r2.Scale(t, ab))
	return r2.Norm(r2.Sub(p, closest))
}
