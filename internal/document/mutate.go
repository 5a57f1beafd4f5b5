package document

import (
	"fmt"
	"math"
	"slices"
)

// GridSnap is the pointer-drag snap increment for floor positions.
const GridSnap = 50.0

// Operation is a single document mutation, the shared codec between the
// HTTP API and the live socket. Exactly the fields named by the Type are
// consulted; the rest stay zero.
type Operation struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	// Target entity for update/delete/move/mount ops.
	EntityID string `json:"entityId,omitempty"`

	// Entity payloads for create/update ops.
	Room       *Room       `json:"room,omitempty"`
	Opening    *Opening    `json:"opening,omitempty"`
	Equipment  *Equipment  `json:"equipment,omitempty"`
	Tray       *Tray       `json:"tray,omitempty"`
	Connection *Connection `json:"connection,omitempty"`

	// Target position for move ops (world mm, snapped on apply).
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`

	// Mount parameters for equipment.mount. RackStart 0 means "allocate the
	// lowest free slot" and is resolved by the engine before apply.
	CabinetID string `json:"cabinetId,omitempty"`
	RackStart int    `json:"rackStart,omitempty"`
}

const (
	OpRoomUpdate = "room.update"

	OpOpeningCreate = "opening.create"
	OpOpeningUpdate = "opening.update"
	OpOpeningDelete = "opening.delete"

	OpEquipmentCreate = "equipment.create"
	OpEquipmentUpdate = "equipment.update"
	OpEquipmentDelete = "equipment.delete"
	OpEquipmentMove   = "equipment.move"
	OpEquipmentMount  = "equipment.mount"

	OpTrayCreate = "tray.create"
	OpTrayUpdate = "tray.update"
	OpTrayDelete = "tray.delete"
	OpTrayMove   = "tray.move"

	OpConnectionCreate = "connection.create"
	OpConnectionUpdate = "connection.update"
	OpConnectionDelete = "connection.delete"
)

// Apply mutates the layout according to op. Errors leave the layout
// unchanged. References held by other entities are never rewritten: deleting
// an entity may leave connections dangling, which render as nothing.
func (l *Layout) Apply(op Operation) error {
	switch op.Type {
	case OpRoomUpdate:
		if op.Room == nil {
			return fmt.Errorf("room.update: missing room")
		}
		l.Room = op.Room.Normalized()
		return nil

	case OpOpeningCreate:
		if op.Opening == nil || op.Opening.ID == "" {
			return fmt.Errorf("opening.create: missing opening")
		}
		o := *op.Opening
		o.WallIndex = ((o.WallIndex % 4) + 4) % 4
		l.Openings[o.ID] = o
		l.OpeningOrder = append(l.OpeningOrder, o.ID)
		return nil

	case OpOpeningUpdate:
		if op.Opening == nil {
			return fmt.Errorf("opening.update: missing opening")
		}
		if _, ok := l.Openings[op.EntityID]; !ok {
			return fmt.Errorf("opening not found: %s", op.EntityID)
		}
		o := *op.Opening
		o.ID = op.EntityID
		o.WallIndex = ((o.WallIndex % 4) + 4) % 4
		l.Openings[op.EntityID] = o
		return nil

	case OpOpeningDelete:
		if _, ok := l.Openings[op.EntityID]; !ok {
			return fmt.Errorf("opening not found: %s", op.EntityID)
		}
		delete(l.Openings, op.EntityID)
		l.OpeningOrder = removeID(l.OpeningOrder, op.EntityID)
		return nil

	case OpEquipmentCreate:
		if op.Equipment == nil || op.Equipment.ID == "" {
			return fmt.Errorf("equipment.create: missing equipment")
		}
		eq := *op.Equipment
		if eq.Kind == KindCabinet && eq.RackCapacity <= 0 {
			eq.RackCapacity = DefaultRackCapacity
		}
		if eq.Placement.Mode == "" {
			eq.Placement.Mode = PlacementFloor
		}
		l.Equipment[eq.ID] = eq
		l.EquipmentOrder = append(l.EquipmentOrder, eq.ID)
		return nil

	case OpEquipmentUpdate:
		if op.Equipment == nil {
			return fmt.Errorf("equipment.update: missing equipment")
		}
		if _, ok := l.Equipment[op.EntityID]; !ok {
			return fmt.Errorf("equipment not found: %s", op.EntityID)
		}
		eq := *op.Equipment
		eq.ID = op.EntityID
		l.Equipment[op.EntityID] = eq
		return nil

	case OpEquipmentDelete:
		return l.deleteEquipment(op.EntityID)

	case OpEquipmentMove:
		eq, ok := l.Equipment[op.EntityID]
		if !ok {
			return fmt.Errorf("equipment not found: %s", op.EntityID)
		}
		if eq.Placement.Mode != PlacementFloor {
			return fmt.Errorf("equipment %s is rack-mounted and cannot be moved directly", op.EntityID)
		}
		if op.X == nil || op.Y == nil {
			return fmt.Errorf("equipment.move: missing position")
		}
		eq.Placement.X = Snap(*op.X)
		eq.Placement.Y = Snap(*op.Y)
		l.Equipment[op.EntityID] = eq
		return nil

	case OpEquipmentMount:
		eq, ok := l.Equipment[op.EntityID]
		if !ok {
			return fmt.Errorf("equipment not found: %s", op.EntityID)
		}
		if !eq.Kind.Mountable() {
			return fmt.Errorf("equipment kind %s is not rack-mountable", eq.Kind)
		}
		cab, ok := l.Equipment[op.CabinetID]
		if !ok || cab.Kind != KindCabinet {
			return fmt.Errorf("cabinet not found: %s", op.CabinetID)
		}
		if op.RackStart < 1 {
			return fmt.Errorf("equipment.mount: invalid rack slot %d", op.RackStart)
		}
		if eq.Units <= 0 {
			eq.Units = 1
		}
		eq.Placement = Placement{
			Mode:      PlacementRack,
			CabinetID: op.CabinetID,
			RackStart: op.RackStart,
		}
		l.Equipment[op.EntityID] = eq
		return nil

	case OpTrayCreate:
		if op.Tray == nil || op.Tray.ID == "" {
			return fmt.Errorf("tray.create: missing tray")
		}
		t := *op.Tray
		if t.Direction == "" {
			t.Direction = DirXPlus
		}
		if t.Turn == "" {
			t.Turn = TurnNone
		}
		l.Trays[t.ID] = t
		l.TrayOrder = append(l.TrayOrder, t.ID)
		return nil

	case OpTrayUpdate:
		if op.Tray == nil {
			return fmt.Errorf("tray.update: missing tray")
		}
		if _, ok := l.Trays[op.EntityID]; !ok {
			return fmt.Errorf("tray not found: %s", op.EntityID)
		}
		t := *op.Tray
		t.ID = op.EntityID
		l.Trays[op.EntityID] = t
		return nil

	case OpTrayDelete:
		if _, ok := l.Trays[op.EntityID]; !ok {
			return fmt.Errorf("tray not found: %s", op.EntityID)
		}
		delete(l.Trays, op.EntityID)
		l.TrayOrder = removeID(l.TrayOrder, op.EntityID)
		return nil

	case OpTrayMove:
		t, ok := l.Trays[op.EntityID]
		if !ok {
			return fmt.Errorf("tray not found: %s", op.EntityID)
		}
		if op.X == nil || op.Y == nil {
			return fmt.Errorf("tray.move: missing position")
		}
		t.X = Snap(*op.X)
		t.Y = Snap(*op.Y)
		l.Trays[op.EntityID] = t
		return nil

	case OpConnectionCreate:
		if op.Connection == nil || op.Connection.ID == "" {
			return fmt.Errorf("connection.create: missing connection")
		}
		c := *op.Connection
		l.Connections[c.ID] = c
		l.ConnectionOrder = append(l.ConnectionOrder, c.ID)
		return nil

	case OpConnectionUpdate:
		if op.Connection == nil {
			return fmt.Errorf("connection.update: missing connection")
		}
		if _, ok := l.Connections[op.EntityID]; !ok {
			return fmt.Errorf("connection not found: %s", op.EntityID)
		}
		c := *op.Connection
		c.ID = op.EntityID
		l.Connections[op.EntityID] = c
		return nil

	case OpConnectionDelete:
		if _, ok := l.Connections[op.EntityID]; !ok {
			return fmt.Errorf("connection not found: %s", op.EntityID)
		}
		delete(l.Connections, op.EntityID)
		l.ConnectionOrder = removeID(l.ConnectionOrder, op.EntityID)
		return nil

	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
}

// deleteEquipment removes one equipment item. Deleting a cabinet cascades to
// its rack-mounted children, which have no position of their own to fall back
// to. Connections referencing the deleted items are left in place and resolve
// to nil anchors.
func (l *Layout) deleteEquipment(id string) error {
	eq, ok := l.Equipment[id]
	if !ok {
		return fmt.Errorf("equipment not found: %s", id)
	}

	delete(l.Equipment, id)
	l.EquipmentOrder = removeID(l.EquipmentOrder, id)

	if eq.Kind != KindCabinet {
		return nil
	}
	for childID, child := range l.Equipment {
		if child.Placement.Mode == PlacementRack && child.Placement.CabinetID == id {
			delete(l.Equipment, childID)
			l.EquipmentOrder = removeID(l.EquipmentOrder, childID)
		}
	}
	return nil
}

// MountedIn returns the IDs of items rack-mounted in the given cabinet, in
// draw order.
func (l *Layout) MountedIn(cabinetID string) []string {
	var ids []string
	for _, id := range l.EquipmentOrder {
		eq, ok := l.Equipment[id]
		if !ok {
			continue
		}
		if eq.Placement.Mode == PlacementRack && eq.Placement.CabinetID == cabinetID {
			ids = append(ids, id)
		}
	}
	return ids
}

// Snap rounds a coordinate to the drag grid.
func Snap(v float64) float64 {
	return math.Round(v/GridSnap) * GridSnap
}

func removeID(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}
