package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rackplan/rackplan/backend-go/internal/document"
)

func TestResolveOpeningBounds(t *testing.T) {
	room := rectRoom() // south wall length 8000, height 3000
	wall := Walls(room)[WallSouth]

	tests := []struct {
		name    string
		opening document.Opening
		want    OpeningBounds
	}{
		{
			name:    "door in range",
			opening: document.Opening{Kind: document.OpeningDoor, Offset: 1000, Width: 900, Height: 2100},
			want:    OpeningBounds{Start: 1000, End: 1900, Sill: 0, Top: 2100},
		},
		{
			name:    "window with sill",
			opening: document.Opening{Kind: document.OpeningWindow, Offset: 3000, Width: 1200, Height: 1000, SillHeight: 900},
			want:    OpeningBounds{Start: 3000, End: 4200, Sill: 900, Top: 1900},
		},
		{
			name:    "width clamps to wall minus end margins",
			opening: document.Opening{Offset: 0, Width: 10000, Height: 2000},
			want:    OpeningBounds{Start: 50, End: 7950, Sill: 0, Top: 2000},
		},
		{
			name:    "offset pushed back from the far corner",
			opening: document.Opening{Offset: 7800, Width: 900, Height: 2000},
			want:    OpeningBounds{Start: 7050, End: 7950, Sill: 0, Top: 2000},
		},
		{
			name:    "negative offset pulled to the near margin",
			opening: document.Opening{Offset: -400, Width: 900, Height: 2000},
			want:    OpeningBounds{Start: 50, End: 950, Sill: 0, Top: 2000},
		},
		{
			name:    "tiny width grows to the minimum",
			opening: document.Opening{Offset: 2000, Width: 10, Height: 2000},
			want:    OpeningBounds{Start: 2000, End: 2150, Sill: 0, Top: 2000},
		},
		{
			name:    "sill clamps below the ceiling band",
			opening: document.Opening{Offset: 1000, Width: 900, Height: 500, SillHeight: 5000},
			want:    OpeningBounds{Start: 1000, End: 1900, Sill: 2900, Top: 3000},
		},
		{
			name:    "height never below the minimum",
			opening: document.Opening{Offset: 1000, Width: 900, Height: 10, SillHeight: 500},
			want:    OpeningBounds{Start: 1000, End: 1900, Sill: 500, Top: 600},
		},
		{
			name:    "top capped at room height",
			opening: document.Opening{Offset: 1000, Width: 900, Height: 9999},
			want:    OpeningBounds{Start: 1000, End: 1900, Sill: 0, Top: 3000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveOpeningBounds(tt.opening, wall, room)
			assert.InDelta(t, tt.want.Start, got.Start, 1e-9)
			assert.InDelta(t, tt.want.End, got.End, 1e-9)
			assert.InDelta(t, tt.want.Sill, got.Sill, 1e-9)
			assert.InDelta(t, tt.want.Top, got.Top, 1e-9)
		})
	}
}

func TestResolveOpeningBoundsIdempotent(t *testing.T) {
	room := rectRoom()
	wall := Walls(room)[WallSouth]

	o := document.Opening{Offset: -2000, Width: 30000, Height: 9000, SillHeight: -50}
	first := ResolveOpeningBounds(o, wall, room)

	// Feed the resolved bounds back through as a raw opening.
	o2 := document.Opening{Offset: first.Start, Width: first.End - first.Start, Height: first.Top - first.Sill, SillHeight: first.Sill}
	second := ResolveOpeningBounds(o2, wall, room)
	assert.Equal(t, first, second)
}

func TestWallRuns(t *testing.T) {
	wall := Walls(rectRoom())[WallSouth] // length 8000

	tests := []struct {
		name   string
		bounds []OpeningBounds
		want   []WallRun
	}{
		{
			name:   "no openings is one solid run",
			bounds: nil,
			want:   []WallRun{{From: 0, To: 8000}},
		},
		{
			name:   "single opening splits the wall",
			bounds: []OpeningBounds{{Start: 1000, End: 1900}},
			want:   []WallRun{{From: 0, To: 1000}, {From: 1900, To: 8000}},
		},
		{
			name: "two openings out of order",
			bounds: []OpeningBounds{
				{Start: 3000, End: 4000},
				{Start: 1000, End: 1900},
			},
			want: []WallRun{{From: 0, To: 1000}, {From: 1900, To: 3000}, {From: 4000, To: 8000}},
		},
		{
			name: "overlapping openings coalesce into one gap",
			bounds: []OpeningBounds{
				{Start: 1000, End: 2500},
				{Start: 2000, End: 3000},
			},
			want: []WallRun{{From: 0, To: 1000}, {From: 3000, To: 8000}},
		},
		{
			name: "nested opening swallowed entirely",
			bounds: []OpeningBounds{
				{Start: 1000, End: 4000},
				{Start: 2000, End: 3000},
			},
			want: []WallRun{{From: 0, To: 1000}, {From: 4000, To: 8000}},
		},
		{
			name:   "opening flush with the wall end",
			bounds: []OpeningBounds{{Start: 7100, End: 8000}},
			want:   []WallRun{{From: 0, To: 7100}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WallRuns(wall, tt.bounds)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i].From, got[i].From, 1e-9)
				assert.InDelta(t, tt.want[i].To, got[i].To, 1e-9)
			}
			for _, run := range got {
				assert.Greater(t, run.To, run.From, "runs never have negative length")
			}
		})
	}
}

func TestOpeningsOnWall(t *testing.T) {
	l := document.NewEmptyLayout()
	l.Room = rectRoom()
	require.NoError(t, l.Apply(document.Operation{
		Type:    document.OpOpeningCreate,
		Opening: &document.Opening{ID: "open_a", WallIndex: 0, Offset: 1000, Width: 900, Height: 2100},
	}))
	require.NoError(t, l.Apply(document.Operation{
		Type:    document.OpOpeningCreate,
		Opening: &document.Opening{ID: "open_b", WallIndex: 2, Offset: 500, Width: 1200, Height: 1000},
	}))

	walls := Walls(l.Room)
	assert.Len(t, OpeningsOnWall(l, walls[WallSouth]), 1)
	assert.Len(t, OpeningsOnWall(l, walls[WallNorth]), 1)
	assert.Empty(t, OpeningsOnWall(l, walls[WallEast]))
}
