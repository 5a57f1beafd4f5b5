package document

import (
	"github.com/rackplan/rackplan/backend-go/internal/typeid"
)

// NewSampleLayout builds a small machine-room layout that exercises every
// entity kind: a cabinet with three rack-mounted items, a CRAC unit, a
// floor-standing UPS, two trays with a turn between them, a door, a window
// and two cable connections.
func NewSampleLayout() *Layout {
	cabinetID := typeid.NewEquipmentID()
	switchID := typeid.NewEquipmentID()
	pduID := typeid.NewEquipmentID()
	upsRackID := typeid.NewEquipmentID()
	cracID := typeid.NewEquipmentID()
	upsFloorID := typeid.NewEquipmentID()
	trayMainID := typeid.NewTrayID()
	trayDropID := typeid.NewTrayID()
	doorID := typeid.NewOpeningID()
	windowID := typeid.NewOpeningID()
	uplinkID := typeid.NewConnectionID()
	powerID := typeid.NewConnectionID()

	return &Layout{
		Room: Room{
			Width:    8000,
			Length:   6000,
			Height:   3000,
			TileSize: 600,
		},
		Openings: map[string]Opening{
			doorID: {
				ID:        doorID,
				Kind:      OpeningDoor,
				WallIndex: 0,
				Offset:    1200,
				Width:     1000,
				Height:    2100,
			},
			windowID: {
				ID:         windowID,
				Kind:       OpeningWindow,
				WallIndex:  2,
				Offset:     2400,
				Width:      1600,
				Height:     900,
				SillHeight: 1100,
			},
		},
		Equipment: map[string]Equipment{
			cabinetID: {
				ID:           cabinetID,
				Kind:         KindCabinet,
				Label:        "Rack A1",
				Width:        600,
				Depth:        1000,
				Height:       2000,
				ColorKey:     "cabinet",
				RackCapacity: DefaultRackCapacity,
				FrontPanel:   true,
				RearPanel:    false,
				Placement:    Placement{Mode: PlacementFloor, X: 1200, Y: 1800},
			},
			switchID: {
				ID:        switchID,
				Kind:      KindSwitch,
				Label:     "Core SW",
				Width:     480,
				Depth:     400,
				Height:    44.45,
				ColorKey:  "switch",
				Units:     1,
				Placement: Placement{Mode: PlacementRack, CabinetID: cabinetID, RackStart: 5},
			},
			pduID: {
				ID:        pduID,
				Kind:      KindPDU,
				Label:     "PDU A",
				Width:     480,
				Depth:     300,
				Height:    88.9,
				ColorKey:  "pdu",
				Units:     2,
				Placement: Placement{Mode: PlacementRack, CabinetID: cabinetID, RackStart: 1},
			},
			upsRackID: {
				ID:        upsRackID,
				Kind:      KindUPS,
				Label:     "UPS A",
				Width:     480,
				Depth:     600,
				Height:    177.8,
				ColorKey:  "ups",
				Units:     4,
				Placement: Placement{Mode: PlacementRack, CabinetID: cabinetID, RackStart: 8},
			},
			cracID: {
				ID:        cracID,
				Kind:      KindCRAC,
				Label:     "CRAC 1",
				Width:     900,
				Depth:     900,
				Height:    1950,
				ColorKey:  "crac",
				Placement: Placement{Mode: PlacementFloor, X: 6500, Y: 900, RotationDeg: 90},
			},
			upsFloorID: {
				ID:        upsFloorID,
				Kind:      KindUPS,
				Label:     "Room UPS",
				Width:     800,
				Depth:     850,
				Height:    1400,
				ColorKey:  "ups",
				Placement: Placement{Mode: PlacementFloor, X: 4200, Y: 4600},
			},
		},
		Trays: map[string]Tray{
			trayMainID: {
				ID:        trayMainID,
				X:         900,
				Y:         1200,
				Z:         2600,
				Width:     300,
				Depth:     100,
				LengthA:   4800,
				Direction: DirXPlus,
				Turn:      TurnLeft,
				LengthB:   2400,
			},
			trayDropID: {
				ID:        trayDropID,
				X:         5700,
				Y:         3600,
				Z:         2600,
				Width:     200,
				Depth:     100,
				LengthA:   1500,
				Direction: DirYPlus,
				Turn:      TurnNone,
			},
		},
		Connections: map[string]Connection{
			uplinkID: {
				ID:          uplinkID,
				Label:       "core uplink",
				From:        EndpointRef{Kind: RefEquipment, ID: switchID},
				To:          EndpointRef{Kind: RefTray, ID: trayMainID},
				Color:       "#4cc9f0",
				RouteHeight: 2600,
			},
			powerID: {
				ID:          powerID,
				Label:       "ups feed",
				From:        EndpointRef{Kind: RefEquipment, ID: upsFloorID},
				To:          EndpointRef{Kind: RefEquipment, ID: cabinetID},
				Color:       "#f72585",
				RouteHeight: 2400,
			},
		},
		OpeningOrder:    []string{doorID, windowID},
		EquipmentOrder:  []string{cabinetID, pduID, switchID, upsRackID, cracID, upsFloorID},
		TrayOrder:       []string{trayMainID, trayDropID},
		ConnectionOrder: []string{uplinkID, powerID},
	}
}
