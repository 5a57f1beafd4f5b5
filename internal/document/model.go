package document

// Layout is the editable object graph for one machine room: the room shell,
// wall openings, floor/rack equipment, cable trays and point-to-point cable
// connections. Every entity is keyed by a stable opaque ID; the *Order slices
// define draw order (and therefore hit-test tie breaking: last added wins).
type Layout struct {
	Room        Room                  `json:"room"`
	Openings    map[string]Opening    `json:"openings"`
	Equipment   map[string]Equipment  `json:"equipment"`
	Trays       map[string]Tray       `json:"trays"`
	Connections map[string]Connection `json:"connections"`

	OpeningOrder    []string `json:"openingOrder"`
	EquipmentOrder  []string `json:"equipmentOrder"`
	TrayOrder       []string `json:"trayOrder"`
	ConnectionOrder []string `json:"connectionOrder"`
}

// Point is a 2D world coordinate in millimetres.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Room describes the room shell. All lengths are millimetres, angles degrees.
// The footprint may be a skewed quadrilateral: SouthTiltDeg skews the south
// wall, EastTiltDeg the east wall. A Room is replaced wholesale on any edit.
type Room struct {
	Width          float64 `json:"width"`
	Length         float64 `json:"length"`
	Height         float64 `json:"height"`
	SouthTiltDeg   float64 `json:"southTiltDeg"`
	EastTiltDeg    float64 `json:"eastTiltDeg"`
	FloorElevation float64 `json:"floorElevation"`
	TileSize       float64 `json:"tileSize"`
}

const (
	MinRoomSide   = 1000.0
	MinRoomHeight = 2200.0
	MaxWallTilt   = 20.0
)

// Normalized returns a copy of the room with all fields clamped into their
// valid ranges. Tilt clamping to ±20° is what keeps the derived wall segments
// non-degenerate.
func (r Room) Normalized() Room {
	out := r
	out.Width = max(out.Width, MinRoomSide)
	out.Length = max(out.Length, MinRoomSide)
	out.Height = max(out.Height, MinRoomHeight)
	out.SouthTiltDeg = clamp(out.SouthTiltDeg, -MaxWallTilt, MaxWallTilt)
	out.EastTiltDeg = clamp(out.EastTiltDeg, -MaxWallTilt, MaxWallTilt)
	if out.TileSize <= 0 {
		out.TileSize = 600
	}
	return out
}

// DefaultRoom returns the room used for a fresh layout.
func DefaultRoom() Room {
	return Room{
		Width:    8000,
		Length:   6000,
		Height:   3000,
		TileSize: 600,
	}
}

type OpeningKind string

const (
	OpeningDoor   OpeningKind = "door"
	OpeningWindow OpeningKind = "window"
)

// Opening is a door or window cut into one wall, identified by wall index
// (0=south, 1=east, 2=north, 3=west). Offset is the distance of the opening
// start from the wall start. Raw values may be out of range; the engine clamps
// them when deriving bounds.
type Opening struct {
	ID         string      `json:"id"`
	Kind       OpeningKind `json:"kind"`
	WallIndex  int         `json:"wallIndex"`
	Offset     float64     `json:"offset"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	SillHeight float64     `json:"sillHeight"`
}

type EquipmentKind string

const (
	KindCabinet EquipmentKind = "cabinet"
	KindCRAC    EquipmentKind = "crac"
	KindSwitch  EquipmentKind = "switch"
	KindUPS     EquipmentKind = "ups"
	KindPDU     EquipmentKind = "pdu"
)

// Mountable reports whether equipment of this kind may be rack-mounted in a
// cabinet. Cabinets and CRAC units are always floor-standing.
func (k EquipmentKind) Mountable() bool {
	switch k {
	case KindSwitch, KindUPS, KindPDU:
		return true
	}
	return false
}

type PlacementMode string

const (
	PlacementFloor PlacementMode = "floor"
	PlacementRack  PlacementMode = "rack"
)

// Placement is a tagged variant: a floor-standing item owns its position and
// rotation, a rack-mounted item derives both from its parent cabinet and only
// keeps the 1-based rack slot it starts at. The two field groups are mutually
// exclusive by Mode.
type Placement struct {
	Mode PlacementMode `json:"mode"`

	X           float64 `json:"x,omitempty"`
	Y           float64 `json:"y,omitempty"`
	RotationDeg float64 `json:"rotationDeg,omitempty"`

	CabinetID string `json:"cabinetId,omitempty"`
	RackStart int    `json:"rackStart,omitempty"`
}

// Equipment is a cabinet, CRAC, switch, UPS or PDU. RackCapacity and the panel
// flags are meaningful for cabinets only; Units (height in rack units) is
// meaningful for mountable kinds only.
type Equipment struct {
	ID       string        `json:"id"`
	Kind     EquipmentKind `json:"kind"`
	Label    string        `json:"label"`
	Width    float64       `json:"width"`
	Depth    float64       `json:"depth"`
	Height   float64       `json:"height"`
	ColorKey string        `json:"colorKey"`

	RackCapacity int  `json:"rackCapacity,omitempty"`
	FrontPanel   bool `json:"frontPanel,omitempty"`
	RearPanel    bool `json:"rearPanel,omitempty"`

	Units int `json:"units,omitempty"`

	Placement Placement `json:"placement"`
}

const DefaultRackCapacity = 42

type TrayDirection string

const (
	DirXPlus  TrayDirection = "x+"
	DirXMinus TrayDirection = "x-"
	DirYPlus  TrayDirection = "y+"
	DirYMinus TrayDirection = "y-"
)

type TrayTurn string

const (
	TurnNone  TrayTurn = "none"
	TurnLeft  TrayTurn = "left"
	TurnRight TrayTurn = "right"
)

// Tray is an elevated cable tray: a straight run of LengthA along Direction
// from (X, Y) at height Z, optionally followed by a single 90° turn of
// LengthB. Width is the lateral tray width, Depth its vertical thickness.
type Tray struct {
	ID        string        `json:"id"`
	X         float64       `json:"x"`
	Y         float64       `json:"y"`
	Z         float64       `json:"z"`
	Width     float64       `json:"width"`
	Depth     float64       `json:"depth"`
	LengthA   float64       `json:"lengthA"`
	Direction TrayDirection `json:"direction"`
	Turn      TrayTurn      `json:"turn"`
	LengthB   float64       `json:"lengthB"`
}

type RefKind string

const (
	RefEquipment RefKind = "equipment"
	RefTray      RefKind = "tray"
)

// EndpointRef points a connection end at a piece of equipment or a tray.
// A ref may dangle after a deletion; anchor resolution then returns nil and
// the connection is simply not drawable.
type EndpointRef struct {
	Kind RefKind `json:"kind"`
	ID   string  `json:"id"`
}

// Connection is a cable routed between two anchors through one intermediate
// control point, elevated to RouteHeight. Control nil means the dog-leg
// corner is derived from the endpoints as (to.x, from.y).
type Connection struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	From        EndpointRef `json:"from"`
	To          EndpointRef `json:"to"`
	Color       string      `json:"color"`
	RouteHeight float64     `json:"routeHeight"`
	Control     *Point      `json:"control,omitempty"`
}

// NewEmptyLayout creates a layout containing only the default room.
func NewEmptyLayout() *Layout {
	return &Layout{
		Room:            DefaultRoom(),
		Openings:        map[string]Opening{},
		Equipment:       map[string]Equipment{},
		Trays:           map[string]Tray{},
		Connections:     map[string]Connection{},
		OpeningOrder:    []string{},
		EquipmentOrder:  []string{},
		TrayOrder:       []string{},
		ConnectionOrder: []string{},
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
