package engine

import (
	"sort"

	"github.com/rackplan/rackplan/backend-go/internal/document"
)

// Rack geometry constants (mm).
const (
	// RackUnit is the standard vertical slot increment.
	RackUnit = 44.45
	// RackBaseClearance is the gap between the cabinet floor and slot 1.
	RackBaseClearance = 40.0
	// Interior allowance: mounted footprints may not exceed the cabinet
	// width minus rails and depth minus door/cable space.
	rackWidthAllowance = 120.0
	rackDepthAllowance = 180.0
)

// SlotRange is an inclusive occupied run of rack units.
type SlotRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NextFreeSlot returns the lowest 1-based slot at which a run of the given
// units fits between the occupied ranges. Capacity is the caller's concern:
// the result may exceed the cabinet when nothing fits below it, and the
// caller rejects the placement via Fits.
func NextFreeSlot(occupied []SlotRange, units int) int {
	if units < 1 {
		units = 1
	}

	sorted := make([]SlotRange, len(occupied))
	copy(sorted, occupied)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	cursor := 1
	for _, occ := range sorted {
		if occ.End < cursor {
			continue
		}
		if cursor+units-1 < occ.Start {
			return cursor
		}
		cursor = occ.End + 1
	}
	return cursor
}

// Fits reports whether a run starting at slot stays within the cabinet.
func Fits(slot, units, capacity int) bool {
	return slot >= 1 && slot+units-1 <= capacity
}

// OccupiedSlots collects the slot ranges of every item mounted in the given
// cabinet.
func OccupiedSlots(l *document.Layout, cabinetID string) []SlotRange {
	return occupiedSlotsExcluding(l, cabinetID, "")
}

// occupiedSlotsExcluding skips one item's own range, so a remount can shift
// an item within its cabinet without colliding with itself.
func occupiedSlotsExcluding(l *document.Layout, cabinetID, excludeID string) []SlotRange {
	var occupied []SlotRange
	for _, id := range l.MountedIn(cabinetID) {
		if id == excludeID {
			continue
		}
		eq := l.Equipment[id]
		units := max(eq.Units, 1)
		occupied = append(occupied, SlotRange{
			Start: eq.Placement.RackStart,
			End:   eq.Placement.RackStart + units - 1,
		})
	}
	return occupied
}

// MountedDimensions returns the effective size of a rack-mounted item: its
// footprint clamped to the cabinet interior and its height fixed by its rack
// units.
func MountedDimensions(item, cabinet document.Equipment) (width, depth, height float64) {
	width = min(item.Width, cabinet.Width-rackWidthAllowance)
	depth = min(item.Depth, cabinet.Depth-rackDepthAllowance)
	height = float64(max(item.Units, 1)) * RackUnit
	return width, depth, height
}
