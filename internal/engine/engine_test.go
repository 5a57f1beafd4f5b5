package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rackplan/rackplan/backend-go/internal/document"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine()

	ops := []document.Operation{
		{Type: document.OpEquipmentCreate, Equipment: &document.Equipment{
			ID: "eq_cab", Kind: document.KindCabinet, Width: 600, Depth: 1000, Height: 2000,
			RackCapacity: 42, FrontPanel: true, RearPanel: true,
			Placement: document.Placement{Mode: document.PlacementFloor, X: 1200, Y: 1800},
		}},
		{Type: document.OpEquipmentCreate, Equipment: &document.Equipment{
			ID: "eq_sw", Kind: document.KindSwitch, Width: 440, Depth: 400, Units: 1,
			Placement: document.Placement{Mode: document.PlacementFloor, X: 3000, Y: 3000},
		}},
		{Type: document.OpEquipmentCreate, Equipment: &document.Equipment{
			ID: "eq_pdu", Kind: document.KindPDU, Width: 440, Depth: 300, Units: 2,
			Placement: document.Placement{Mode: document.PlacementFloor, X: 3500, Y: 3000},
		}},
	}
	for _, op := range ops {
		require.NoError(t, e.ApplyOperation(op))
	}
	return e
}

func TestEngineAssignsIDsOnCreate(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.ApplyOperation(document.Operation{
		Type: document.OpTrayCreate,
		Tray: &document.Tray{X: 0, Y: 0, Z: 2600, LengthA: 1000},
	}))

	require.Len(t, e.Layout().TrayOrder, 1)
	id := e.Layout().TrayOrder[0]
	assert.Contains(t, id, "tray", "generated IDs carry the entity prefix")
	assert.Contains(t, e.Layout().Trays, id)
}

func TestEngineMountAllocatesLowestFreeSlot(t *testing.T) {
	e := newTestEngine(t)

	// RackStart 0 asks the engine to allocate.
	require.NoError(t, e.ApplyOperation(document.Operation{
		Type: document.OpEquipmentMount, EntityID: "eq_sw", CabinetID: "eq_cab",
	}))
	assert.Equal(t, 1, e.Layout().Equipment["eq_sw"].Placement.RackStart)

	require.NoError(t, e.ApplyOperation(document.Operation{
		Type: document.OpEquipmentMount, EntityID: "eq_pdu", CabinetID: "eq_cab",
	}))
	assert.Equal(t, 2, e.Layout().Equipment["eq_pdu"].Placement.RackStart,
		"the two-unit PDU lands directly above the switch")
}

func TestEngineMountExplicitSlot(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.ApplyOperation(document.Operation{
		Type: document.OpEquipmentMount, EntityID: "eq_sw", CabinetID: "eq_cab", RackStart: 10,
	}))
	assert.Equal(t, 10, e.Layout().Equipment["eq_sw"].Placement.RackStart)
}

func TestEngineMountExplicitSlotRejectsOverlap(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.ApplyOperation(document.Operation{
		Type: document.OpEquipmentMount, EntityID: "eq_sw", CabinetID: "eq_cab", RackStart: 3,
	}))

	// Same slot.
	err := e.ApplyOperation(document.Operation{
		Type: document.OpEquipmentMount, EntityID: "eq_pdu", CabinetID: "eq_cab", RackStart: 3,
	})
	assert.ErrorContains(t, err, "already occupied")

	// The two-unit PDU at slot 2 would span 2-3, still colliding.
	err = e.ApplyOperation(document.Operation{
		Type: document.OpEquipmentMount, EntityID: "eq_pdu", CabinetID: "eq_cab", RackStart: 2,
	})
	assert.ErrorContains(t, err, "already occupied")
	assert.Equal(t, document.PlacementFloor, e.Layout().Equipment["eq_pdu"].Placement.Mode,
		"a rejected mount leaves the item on the floor")

	require.NoError(t, e.ApplyOperation(document.Operation{
		Type: document.OpEquipmentMount, EntityID: "eq_pdu", CabinetID: "eq_cab", RackStart: 4,
	}))
	assert.ElementsMatch(t, []SlotRange{{Start: 3, End: 3}, {Start: 4, End: 5}},
		OccupiedSlots(e.Layout(), "eq_cab"))
}

func TestEngineRemountIgnoresOwnSlots(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.ApplyOperation(document.Operation{
		Type: document.OpEquipmentMount, EntityID: "eq_pdu", CabinetID: "eq_cab", RackStart: 3,
	}))

	// Shifting the PDU down one slot overlaps only its own old span.
	require.NoError(t, e.ApplyOperation(document.Operation{
		Type: document.OpEquipmentMount, EntityID: "eq_pdu", CabinetID: "eq_cab", RackStart: 4,
	}))
	assert.Equal(t, 4, e.Layout().Equipment["eq_pdu"].Placement.RackStart)
}

func TestEngineMountRejectsOverCapacity(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.ApplyOperation(document.Operation{
		Type: document.OpEquipmentCreate,
		Equipment: &document.Equipment{
			ID: "eq_cab", Kind: document.KindCabinet, RackCapacity: 2,
			Placement: document.Placement{Mode: document.PlacementFloor},
		},
	}))
	require.NoError(t, e.ApplyOperation(document.Operation{
		Type: document.OpEquipmentCreate,
		Equipment: &document.Equipment{
			ID: "eq_ups", Kind: document.KindUPS, Units: 4,
			Placement: document.Placement{Mode: document.PlacementFloor, X: 4000, Y: 1000},
		},
	}))

	err := e.ApplyOperation(document.Operation{
		Type: document.OpEquipmentMount, EntityID: "eq_ups", CabinetID: "eq_cab",
	})
	assert.ErrorContains(t, err, "no rack capacity")
	assert.Equal(t, document.PlacementFloor, e.Layout().Equipment["eq_ups"].Placement.Mode,
		"a failed mount leaves the item on the floor")
}

func TestEngineMountRejectsMissingCabinet(t *testing.T) {
	e := newTestEngine(t)
	err := e.ApplyOperation(document.Operation{
		Type: document.OpEquipmentMount, EntityID: "eq_sw", CabinetID: "eq_nope",
	})
	assert.ErrorContains(t, err, "cabinet not found")
}

func TestEngineSelectionClearedOnDelete(t *testing.T) {
	e := newTestEngine(t)
	e.SetSelection("equipment", "eq_sw")

	require.NoError(t, e.ApplyOperation(document.Operation{
		Type: document.OpEquipmentDelete, EntityID: "eq_sw",
	}))

	var sel Selection
	require.NoError(t, json.Unmarshal([]byte(e.GetSelection()), &sel))
	assert.True(t, sel.Empty())
}

func TestEngineMoveSelectionSnaps(t *testing.T) {
	e := newTestEngine(t)
	e.SetSelection("equipment", "eq_sw")

	require.NoError(t, e.MoveSelection(2012, 2087))
	p := e.Layout().Equipment["eq_sw"].Placement
	assert.Equal(t, 2000.0, p.X)
	assert.Equal(t, 2100.0, p.Y)
}

func TestEngineMoveSelectionIgnoresNonMovable(t *testing.T) {
	e := newTestEngine(t)

	// No selection: a drag is a no-op, not an error.
	require.NoError(t, e.MoveSelection(100, 100))

	require.NoError(t, e.ApplyOperation(document.Operation{
		Type:    document.OpOpeningCreate,
		Opening: &document.Opening{ID: "open_1", WallIndex: 0, Offset: 1000, Width: 900, Height: 2100},
	}))
	e.SetSelection("opening", "open_1")
	require.NoError(t, e.MoveSelection(100, 100), "openings have no free position")
}

func TestEngineHitTestRoundTrip(t *testing.T) {
	e := newTestEngine(t)

	var proj PlanProjection
	require.NoError(t, json.Unmarshal([]byte(e.Plan()), &proj))

	sx := proj.OffsetX + (1200-proj.Bounds.MinX)*proj.Scale
	sy := 800 - proj.OffsetY - (1800-proj.Bounds.MinY)*proj.Scale

	var sel Selection
	require.NoError(t, json.Unmarshal([]byte(e.HitTest(sx, sy)), &sel))
	assert.Equal(t, Selection{Kind: "equipment", ID: "eq_cab"}, sel)
}

func TestEngineRenderIsValidJSON(t *testing.T) {
	e := newTestEngine(t)

	var cmds []DrawCommand
	require.NoError(t, json.Unmarshal([]byte(e.Render()), &cmds))
	assert.NotEmpty(t, cmds)

	var faces []Face
	require.NoError(t, json.Unmarshal([]byte(e.RenderScene()), &faces))
	assert.NotEmpty(t, faces)
}

func TestEngineLoadLayoutRepairsNilMaps(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.LoadLayout(`{"room":{"width":5000,"length":4000,"height":2800}}`))

	l := e.Layout()
	assert.NotNil(t, l.Equipment)
	assert.NotNil(t, l.Openings)
	assert.NotNil(t, l.Trays)
	assert.NotNil(t, l.Connections)
	assert.Equal(t, 600.0, l.Room.TileSize, "missing tile size falls back to the default")
}

func TestEngineLoadLayoutRejectsBadJSON(t *testing.T) {
	e := NewEngine()
	assert.Error(t, e.LoadLayout(`{"room":`))
}

func TestEngineLoadSampleLayout(t *testing.T) {
	e := NewEngine()
	e.LoadSampleLayout()

	l := e.Layout()
	assert.NotEmpty(t, l.Equipment)
	assert.NotEmpty(t, l.Trays)
	assert.NotEmpty(t, l.Connections)

	// Sample mounts must sit inside their cabinets.
	for _, id := range l.EquipmentOrder {
		eq := l.Equipment[id]
		if eq.Placement.Mode != document.PlacementRack {
			continue
		}
		cab, ok := l.Equipment[eq.Placement.CabinetID]
		require.True(t, ok, "sample mount %s references a real cabinet", id)
		assert.True(t, Fits(eq.Placement.RackStart, max(eq.Units, 1), cab.RackCapacity))
	}
}

func TestEngineSetCanvasRejectsTiny(t *testing.T) {
	e := newTestEngine(t)
	before := e.Plan()

	e.SetCanvas(50, 50) // smaller than the padding alone
	assert.Equal(t, before, e.Plan())

	e.SetCanvas(1600, 900)
	assert.NotEqual(t, before, e.Plan())
}

func TestEngineViewState(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, DefaultView(), e.View())

	e.SetView(45, 30, 0.12)
	assert.Equal(t, ViewState{YawDeg: 45, PitchDeg: 30, Zoom: 0.12}, e.View())
}
