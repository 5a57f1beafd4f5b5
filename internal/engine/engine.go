package engine

import (
	"encoding/json"
	"fmt"

	"github.com/rackplan/rackplan/backend-go/internal/document"
	"github.com/rackplan/rackplan/backend-go/internal/typeid"
)

// Engine owns the layout document and everything derived from it: the plan
// projection, the 2D command buffer and the 3D face buffer. All derived state
// is recomputed from the current snapshot whenever the document or the canvas
// changes; nothing derived is ever edited in place.
type Engine struct {
	layout *document.Layout

	canvasWidth  float64
	canvasHeight float64
	view         ViewState
	selection    Selection

	// Cached derivations, valid while dirty is false.
	plan  PlanProjection
	dirty bool
}

// NewEngine creates an engine with an empty layout and default view.
func NewEngine() *Engine {
	return &Engine{
		layout:       document.NewEmptyLayout(),
		canvasWidth:  1200,
		canvasHeight: 800,
		view:         DefaultView(),
		dirty:        true,
	}
}

// --- Commands (frontend → backend) ---

// LoadLayout replaces the document from JSON and resets selection.
func (e *Engine) LoadLayout(jsonData string) error {
	var l document.Layout
	if err := json.Unmarshal([]byte(jsonData), &l); err != nil {
		return err
	}
	normalize(&l)

	e.layout = &l
	e.selection = Selection{}
	e.dirty = true
	return nil
}

// UpdateLayout replaces the document from JSON while preserving the current
// selection and view.
func (e *Engine) UpdateLayout(jsonData string) error {
	var l document.Layout
	if err := json.Unmarshal([]byte(jsonData), &l); err != nil {
		return err
	}
	normalize(&l)

	e.layout = &l
	if !e.selectionExists() {
		e.selection = Selection{}
	}
	e.dirty = true
	return nil
}

// LoadSampleLayout loads the built-in sample machine room.
func (e *Engine) LoadSampleLayout() {
	e.layout = document.NewSampleLayout()
	e.selection = Selection{}
	e.dirty = true
}

// ApplyOperation applies one document mutation. Create operations without an
// entity ID get one assigned. equipment.mount with a zero RackStart allocates
// the lowest free contiguous slot run first and rejects the placement when
// the cabinet has no capacity for it.
func (e *Engine) ApplyOperation(op document.Operation) error {
	assignID(&op)

	if op.Type == document.OpEquipmentMount {
		if err := e.resolveMountSlot(&op); err != nil {
			return err
		}
	}

	if err := e.layout.Apply(op); err != nil {
		return err
	}

	if !e.selectionExists() {
		e.selection = Selection{}
	}
	e.dirty = true
	return nil
}

func (e *Engine) resolveMountSlot(op *document.Operation) error {
	cab, ok := e.layout.Equipment[op.CabinetID]
	if !ok || cab.Kind != document.KindCabinet {
		return fmt.Errorf("cabinet not found: %s", op.CabinetID)
	}
	item, ok := e.layout.Equipment[op.EntityID]
	if !ok {
		return fmt.Errorf("equipment not found: %s", op.EntityID)
	}

	units := max(item.Units, 1)
	occupied := occupiedSlotsExcluding(e.layout, op.CabinetID, op.EntityID)

	slot := op.RackStart
	if slot == 0 {
		slot = NextFreeSlot(occupied, units)
	}
	if !Fits(slot, units, cab.RackCapacity) {
		return fmt.Errorf("no rack capacity in %s for %d units", op.CabinetID, units)
	}
	// Mounted slot ranges within one cabinet never overlap; an explicit slot
	// must be checked against the existing runs.
	for _, occ := range occupied {
		if slot <= occ.End && occ.Start <= slot+units-1 {
			return fmt.Errorf("rack slots %d-%d in %s are already occupied", occ.Start, occ.End, op.CabinetID)
		}
	}

	op.RackStart = slot
	return nil
}

// SetSelection sets the selected entity, or clears it with empty arguments.
func (e *Engine) SetSelection(kind, id string) {
	e.selection = Selection{Kind: kind, ID: id}
}

// SetView updates the 3D orbit camera.
func (e *Engine) SetView(yawDeg, pitchDeg, zoom float64) {
	e.view = ViewState{YawDeg: yawDeg, PitchDeg: pitchDeg, Zoom: zoom}
}

// SetCanvas updates the target canvas pixel size for both projections.
func (e *Engine) SetCanvas(width, height float64) {
	if width <= 2*PlanPadding || height <= 2*PlanPadding {
		return
	}
	if width != e.canvasWidth || height != e.canvasHeight {
		e.canvasWidth = width
		e.canvasHeight = height
		e.dirty = true
	}
}

// MoveSelection drags the selected floor entity to a world position, snapped
// to the 50mm grid. Rack-mounted equipment, openings and connections have no
// free position and are ignored.
func (e *Engine) MoveSelection(worldX, worldY float64) error {
	if e.selection.Empty() {
		return nil
	}

	var op document.Operation
	switch e.selection.Kind {
	case "equipment":
		op = document.Operation{Type: document.OpEquipmentMove, EntityID: e.selection.ID, X: &worldX, Y: &worldY}
	case "tray":
		op = document.Operation{Type: document.OpTrayMove, EntityID: e.selection.ID, X: &worldX, Y: &worldY}
	default:
		return nil
	}
	return e.ApplyOperation(op)
}

// --- Queries (frontend ← backend) ---

// Render compiles the 2D plan command buffer and returns it as JSON.
func (e *Engine) Render() string {
	e.refresh()
	commands := CompilePlan(e.layout, e.plan, e.selection)
	data, _ := json.Marshal(commands)
	return string(data)
}

// RenderScene compiles the depth-sorted 3D face buffer and returns it as
// JSON.
func (e *Engine) RenderScene() string {
	e.refresh()
	metrics := SceneMetrics(e.layout.Room, e.canvasWidth, e.canvasHeight)
	faces := CompileScene(e.layout, metrics, e.view, e.selection)
	data, _ := json.Marshal(faces)
	return string(data)
}

// HitTest resolves a plan canvas click to an entity reference and returns it
// as JSON; an empty selection means the click hit the floor.
func (e *Engine) HitTest(screenX, screenY float64) string {
	e.refresh()
	sel := HitTestPlan(e.layout, e.plan, screenX, screenY)
	data, _ := json.Marshal(sel)
	return string(data)
}

// Plan returns the current plan projection parameters as JSON, so the
// frontend can place cursors and guides without reimplementing the mapping.
func (e *Engine) Plan() string {
	e.refresh()
	data, _ := json.Marshal(e.plan)
	return string(data)
}

// GetLayout returns the full document as JSON.
func (e *Engine) GetLayout() string {
	data, _ := json.Marshal(e.layout)
	return string(data)
}

// GetSelection returns the current selection as JSON.
func (e *Engine) GetSelection() string {
	data, _ := json.Marshal(e.selection)
	return string(data)
}

// Layout exposes the document for collaborating packages. Callers must apply
// mutations through ApplyOperation, never directly.
func (e *Engine) Layout() *document.Layout {
	return e.layout
}

// View returns the current camera state.
func (e *Engine) View() ViewState {
	return e.view
}

func (e *Engine) refresh() {
	if !e.dirty {
		return
	}
	e.plan = NewPlanProjection(e.layout.Room, e.canvasWidth, e.canvasHeight)
	e.dirty = false
}

func (e *Engine) selectionExists() bool {
	switch e.selection.Kind {
	case "equipment":
		_, ok := e.layout.Equipment[e.selection.ID]
		return ok
	case "tray":
		_, ok := e.layout.Trays[e.selection.ID]
		return ok
	case "opening":
		_, ok := e.layout.Openings[e.selection.ID]
		return ok
	case "connection":
		_, ok := e.layout.Connections[e.selection.ID]
		return ok
	}
	return false
}

func assignID(op *document.Operation) {
	switch op.Type {
	case document.OpOpeningCreate:
		if op.Opening != nil && op.Opening.ID == "" {
			op.Opening.ID = typeid.NewOpeningID()
		}
	case document.OpEquipmentCreate:
		if op.Equipment != nil && op.Equipment.ID == "" {
			op.Equipment.ID = typeid.NewEquipmentID()
		}
	case document.OpTrayCreate:
		if op.Tray != nil && op.Tray.ID == "" {
			op.Tray.ID = typeid.NewTrayID()
		}
	case document.OpConnectionCreate:
		if op.Connection != nil && op.Connection.ID == "" {
			op.Connection.ID = typeid.NewConnectionID()
		}
	}
}

// normalize repairs a freshly decoded layout: nil maps become empty and the
// room is clamped into range.
func normalize(l *document.Layout) {
	l.Room = l.Room.Normalized()
	if l.Openings == nil {
		l.Openings = map[string]document.Opening{}
	}
	if l.Equipment == nil {
		l.Equipment = map[string]document.Equipment{}
	}
	if l.Trays == nil {
		l.Trays = map[string]document.Tray{}
	}
	if l.Connections == nil {
		l.Connections = map[string]document.Connection{}
	}
}
