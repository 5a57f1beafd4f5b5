package engine

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// ViewState is the orbit camera: yaw spins the room, pitch tips it, zoom is
// world-mm to pixel scale.
type ViewState struct {
	YawDeg   float64 `json:"yawDeg"`
	PitchDeg float64 `json:"pitchDeg"`
	Zoom     float64 `json:"zoom"`
}

// DefaultView is a three-quarter view of the room.
func DefaultView() ViewState {
	return ViewState{YawDeg: -30, PitchDeg: 55, Zoom: 0.08}
}

// CameraMetrics fixes the scene center the camera orbits and the canvas the
// projection lands on.
type CameraMetrics struct {
	Center       r3.Vec  `json:"center"`
	CanvasWidth  float64 `json:"canvasWidth"`
	CanvasHeight float64 `json:"canvasHeight"`
}

// verticalAnchor places the scene center at 72% of the canvas height, leaving
// headroom for tall racks above it.
const verticalAnchor = 0.72

// ScreenPoint is a projected vertex. Depth is the camera-space Y after
// rotation: larger is farther from the viewer. It is only a painter's sort
// key, not a perspective divide.
type ScreenPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Depth float64 `json:"depth"`
}

// ProjectVertex applies the yaw rotation, then the pitch rotation, around the
// scene center, and drops the result onto the canvas. The projection is
// oblique/orthographic: sufficient for a schematic 3D view.
func ProjectVertex(v r3.Vec, m CameraMetrics, view ViewState) ScreenPoint {
	dx := v.X - m.Center.X
	dy := v.Y - m.Center.Y
	dz := v.Z - m.Center.Z

	yaw := degToRad(view.YawDeg)
	sinYaw, cosYaw := math.Sin(yaw), math.Cos(yaw)
	rx := dx*cosYaw - dy*sinYaw
	ry := dx*sinYaw + dy*cosYaw

	pitch := degToRad(view.PitchDeg)
	sinPitch, cosPitch := math.Sin(pitch), math.Cos(pitch)
	depth := ry*cosPitch - dz*sinPitch
	rz := ry*sinPitch + dz*cosPitch

	return ScreenPoint{
		X:     m.CanvasWidth/2 + rx*view.Zoom,
		Y:     m.CanvasHeight*verticalAnchor - rz*view.Zoom,
		Depth: depth,
	}
}

// Face is one paintable scene element: a filled polygon (walls, floor,
// equipment sides) or an open polyline (cables, tray edges).
type Face struct {
	ObjectID string        `json:"objectId,omitempty"`
	Kind     string        `json:"kind"`
	Points   []ScreenPoint `json:"points"`
	Fill     string        `json:"fill,omitempty"`
	Stroke   string        `json:"stroke,omitempty"`
	Closed   bool          `json:"closed"`
	Selected bool          `json:"selected,omitempty"`
	Depth    float64       `json:"depth"`
}

// SortFaces orders faces for the painter's algorithm: farther faces first,
// by mean vertex depth. The sort is stable so equal-depth faces keep build
// order.
func SortFaces(faces []Face) {
	for i := range faces {
		faces[i].Depth = meanDepth(faces[i].Points)
	}
	sort.SliceStable(faces, func(i, j int) bool {
		return faces[i].Depth > faces[j].Depth
	})
}

func meanDepth(points []ScreenPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range points {
		sum += p.Depth
	}
	return sum / float64(len(points))
}
