package engine

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rackplan/rackplan/backend-go/internal/document"
)

// SceneMetrics derives the camera orbit center for a room: the footprint
// centroid at half the room height.
func SceneMetrics(room document.Room, canvasWidth, canvasHeight float64) CameraMetrics {
	room = room.Normalized()
	corners := Footprint(room)

	var cx, cy float64
	for _, c := range corners {
		cx += c.X
		cy += c.Y
	}

	return CameraMetrics{
		Center: r3.Vec{
			X: cx / 4,
			Y: cy / 4,
			Z: room.FloorElevation + room.Height/2,
		},
		CanvasWidth:  canvasWidth,
		CanvasHeight: canvasHeight,
	}
}

// CompileScene builds the depth-sorted 3D face buffer: floor slab, wall
// panels carved around openings, equipment boxes (including derived
// rack-mounted boxes and removable cabinet panels), tray boxes and cable
// polylines.
func CompileScene(l *document.Layout, m CameraMetrics, view ViewState, sel Selection) []Face {
	room := l.Room.Normalized()
	project := func(v r3.Vec) ScreenPoint { return ProjectVertex(v, m, view) }

	var faces []Face
	faces = append(faces, floorFace(room, project))
	faces = append(faces, wallFaces(l, room, project)...)
	faces = append(faces, sceneEquipmentFaces(l, room, project, sel)...)
	faces = append(faces, sceneTrayFaces(l, project, sel)...)
	faces = append(faces, sceneConnectionFaces(l, project, sel)...)

	SortFaces(faces)
	return faces
}

type projectFunc func(r3.Vec) ScreenPoint

func floorFace(room document.Room, project projectFunc) Face {
	corners := Footprint(room)
	pts := make([]ScreenPoint, 4)
	for i, c := range corners {
		pts[i] = project(r3.Vec{X: c.X, Y: c.Y, Z: room.FloorElevation})
	}
	return Face{Kind: "floor", Points: pts, Fill: "floor", Closed: true}
}

// wallFaces emits one full-height quad per solid wall run, plus sill and
// lintel quads under and over each opening.
func wallFaces(l *document.Layout, room document.Room, project projectFunc) []Face {
	z0 := room.FloorElevation
	z1 := room.FloorElevation + room.Height

	var faces []Face
	quad := func(wall Wall, from, to, lo, hi float64) Face {
		a := PointAlongWall(wall, from)
		b := PointAlongWall(wall, to)
		return Face{
			Kind: "wall",
			Points: []ScreenPoint{
				project(r3.Vec{X: a.X, Y: a.Y, Z: lo}),
				project(r3.Vec{X: b.X, Y: b.Y, Z: lo}),
				project(r3.Vec{X: b.X, Y: b.Y, Z: hi}),
				project(r3.Vec{X: a.X, Y: a.Y, Z: hi}),
			},
			Fill:   "wall",
			Closed: true,
		}
	}

	for _, wall := range Walls(room) {
		bounds := OpeningsOnWall(l, wall)
		for _, run := range WallRuns(wall, bounds) {
			faces = append(faces, quad(wall, run.From, run.To, z0, z1))
		}
		for _, b := range bounds {
			if b.Sill > 0 {
				faces = append(faces, quad(wall, b.Start, b.End, z0, z0+b.Sill))
			}
			if z0+b.Top < z1 {
				faces = append(faces, quad(wall, b.Start, b.End, z0+b.Top, z1))
			}
		}
	}
	return faces
}

func sceneEquipmentFaces(l *document.Layout, room document.Room, project projectFunc, sel Selection) []Face {
	var faces []Face
	for _, id := range l.EquipmentOrder {
		eq, ok := l.Equipment[id]
		if !ok {
			continue
		}
		x, y, rot, ok := EffectivePosition(eq, l)
		if !ok {
			continue
		}

		if eq.Placement.Mode == document.PlacementRack {
			cab := l.Equipment[eq.Placement.CabinetID]
			w, d, h := MountedDimensions(eq, cab)
			z0 := room.FloorElevation + MountedElevation(eq.Placement.RackStart)
			corners := FootprintCorners(x, y, w, d, rot)
			faces = append(faces, boxFaces(project, id, "equipment."+string(eq.Kind), corners, z0, z0+h, eq.ColorKey, sel.Is("equipment", id), nil)...)
			continue
		}

		corners := FootprintCorners(x, y, eq.Width, eq.Depth, rot)
		z0 := room.FloorElevation
		var skip []int
		if eq.Kind == document.KindCabinet {
			// Side 0 is the local front, side 2 the rear; a removed panel
			// leaves the rack interior visible.
			if !eq.FrontPanel {
				skip = append(skip, 0)
			}
			if !eq.RearPanel {
				skip = append(skip, 2)
			}
		}
		faces = append(faces, boxFaces(project, id, "equipment."+string(eq.Kind), corners, z0, z0+eq.Height, eq.ColorKey, sel.Is("equipment", id), skip)...)
	}
	return faces
}

// boxFaces emits the four side quads and the top of a box. Sides listed in
// skipSides are omitted; side i joins corner i to corner i+1.
func boxFaces(project projectFunc, objectID, kind string, corners [4]r2.Vec, z0, z1 float64, fill string, selected bool, skipSides []int) []Face {
	skipped := func(i int) bool {
		for _, s := range skipSides {
			if s == i {
				return true
			}
		}
		return false
	}

	var faces []Face
	for i := 0; i < 4; i++ {
		if skipped(i) {
			continue
		}
		a := corners[i]
		b := corners[(i+1)%4]
		faces = append(faces, Face{
			ObjectID: objectID,
			Kind:     kind,
			Points: []ScreenPoint{
				project(r3.Vec{X: a.X, Y: a.Y, Z: z0}),
				project(r3.Vec{X: b.X, Y: b.Y, Z: z0}),
				project(r3.Vec{X: b.X, Y: b.Y, Z: z1}),
				project(r3.Vec{X: a.X, Y: a.Y, Z: z1}),
			},
			Fill:     fill,
			Closed:   true,
			Selected: selected,
		})
	}

	top := make([]ScreenPoint, 4)
	for i, c := range corners {
		top[i] = project(r3.Vec{X: c.X, Y: c.Y, Z: z1})
	}
	faces = append(faces, Face{
		ObjectID: objectID,
		Kind:     kind,
		Points:   top,
		Fill:     fill,
		Closed:   true,
		Selected: selected,
	})
	return faces
}

func sceneTrayFaces(l *document.Layout, project projectFunc, sel Selection) []Face {
	var faces []Face
	for _, id := range l.TrayOrder {
		t, ok := l.Trays[id]
		if !ok {
			continue
		}
		for _, seg := range TraySegments(t) {
			corners := segmentCorners(seg, t.Width)
			faces = append(faces, boxFaces(project, id, "tray", corners, t.Z, t.Z+t.Depth, "tray", sel.Is("tray", id), nil)...)
		}
	}
	return faces
}

// segmentCorners expands an axis-aligned segment into its plan rectangle.
func segmentCorners(seg Segment, width float64) [4]r2.Vec {
	dir := r2.Vec{X: seg.End.X - seg.Start.X, Y: seg.End.Y - seg.Start.Y}
	n := r2.Norm(dir)
	if n == 0 {
		dir = r2.Vec{X: 1, Y: 0}
	} else {
		dir = r2.Scale(1/n, dir)
	}
	perp := r2.Scale(width/2, r2.Vec{X: -dir.Y, Y: dir.X})

	a := r2.Vec{X: seg.Start.X, Y: seg.Start.Y}
	b := r2.Vec{X: seg.End.X, Y: seg.End.Y}
	return [4]r2.Vec{
		r2.Sub(a, perp),
		r2.Sub(b, perp),
		r2.Add(b, perp),
		r2.Add(a, perp),
	}
}

func sceneConnectionFaces(l *document.Layout, project projectFunc, sel Selection) []Face {
	var faces []Face
	for _, id := range l.ConnectionOrder {
		c, ok := l.Connections[id]
		if !ok {
			continue
		}
		route := ConnectionRoute(c, l)
		if route == nil {
			continue
		}

		pts := make([]ScreenPoint, len(route))
		for i, p := range route {
			pts[i] = project(p)
		}
		faces = append(faces, Face{
			ObjectID: id,
			Kind:     "connection",
			Points:   pts,
			Stroke:   c.Color,
			Closed:   false,
			Selected: sel.Is("connection", id),
		})
	}
	return faces
}
