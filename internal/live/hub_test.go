package live

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rackplan/rackplan/backend-go/internal/document"
	"github.com/rackplan/rackplan/backend-go/internal/engine"
)

func newTestHub() *Hub {
	eng := engine.NewEngine()
	eng.LoadSampleLayout()
	return NewHub(eng)
}

// recvMessage drains one queued frame from a client's send buffer.
func recvMessage(t *testing.T, c *Client) *Message {
	t.Helper()
	select {
	case data := <-c.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	default:
		t.Fatal("no message queued")
		return nil
	}
}

func trayOp(id string) document.Operation {
	return document.Operation{
		Type: document.OpTrayCreate,
		Tray: &document.Tray{ID: id, X: 500, Y: 500, Z: 2600, Width: 300, LengthA: 2000},
	}
}

func TestAddClientReceivesWelcomeAndRender(t *testing.T) {
	h := newTestHub()
	c := NewClient(h, nil, "client-1")

	h.addClient(c)

	welcome := recvMessage(t, c)
	assert.Equal(t, TypeWelcome, welcome.Type)

	var wp WelcomePayload
	require.NoError(t, json.Unmarshal(welcome.Payload, &wp))
	assert.Equal(t, "client-1", wp.ClientID)
	assert.NotEmpty(t, wp.Layout)

	render := recvMessage(t, c)
	assert.Equal(t, TypeRenderUpdate, render.Type)

	var rp RenderPayload
	require.NoError(t, json.Unmarshal(render.Payload, &rp))
	assert.NotEmpty(t, rp.Plan)
	assert.NotEmpty(t, rp.Scene)
}

func TestOpSubmitAckAndBroadcast(t *testing.T) {
	h := newTestHub()
	sender := NewClient(h, nil, "client-1")
	other := NewClient(h, nil, "client-2")
	h.addClient(sender)
	h.addClient(other)

	// Drain the join messages.
	recvMessage(t, sender)
	recvMessage(t, sender)
	recvMessage(t, other)
	recvMessage(t, other)

	payload, _ := json.Marshal(OpSubmitPayload{Operation: trayOp("tray_test")})
	h.handleMessage(sender, &Message{Type: TypeOpSubmit, Payload: payload})

	ack := recvMessage(t, sender)
	assert.Equal(t, TypeOpAck, ack.Type)
	assert.Equal(t, int64(1), ack.Seq)

	// Both clients, sender included, get the canonical state back.
	for _, c := range []*Client{sender, other} {
		syncMsg := recvMessage(t, c)
		assert.Equal(t, TypeLayoutSync, syncMsg.Type)

		var l document.Layout
		require.NoError(t, json.Unmarshal(syncMsg.Payload, &l))
		assert.Contains(t, l.Trays, "tray_test")

		render := recvMessage(t, c)
		assert.Equal(t, TypeRenderUpdate, render.Type)
	}
}

func TestOpSubmitNackOnRejectedOp(t *testing.T) {
	h := newTestHub()
	sender := NewClient(h, nil, "client-1")
	h.addClient(sender)
	recvMessage(t, sender)
	recvMessage(t, sender)

	payload, _ := json.Marshal(OpSubmitPayload{Operation: document.Operation{
		ID: "op-1", Type: document.OpEquipmentDelete, EntityID: "eq_missing",
	}})
	h.handleMessage(sender, &Message{Type: TypeOpSubmit, Payload: payload})

	nack := recvMessage(t, sender)
	assert.Equal(t, TypeOpNack, nack.Type)

	var np OpNackPayload
	require.NoError(t, json.Unmarshal(nack.Payload, &np))
	assert.Equal(t, "op-1", np.OperationID)
	assert.Contains(t, np.Reason, "not found")
}

func TestOpSubmitNackOnGarbagePayload(t *testing.T) {
	h := newTestHub()
	sender := NewClient(h, nil, "client-1")
	h.addClient(sender)
	recvMessage(t, sender)
	recvMessage(t, sender)

	h.handleMessage(sender, &Message{Type: TypeOpSubmit, Payload: json.RawMessage(`{"operation":`)})

	nack := recvMessage(t, sender)
	assert.Equal(t, TypeOpNack, nack.Type)
}

func TestApplySequencesOperations(t *testing.T) {
	h := newTestHub()

	seq1, err := h.Apply(trayOp("tray_a"))
	require.NoError(t, err)
	seq2, err := h.Apply(trayOp("tray_b"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), seq1)
	assert.Equal(t, int64(2), seq2)

	_, err = h.Apply(document.Operation{Type: "bogus"})
	assert.Error(t, err)

	seq3, err := h.Apply(trayOp("tray_c"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), seq3, "rejected operations do not consume a sequence number")
}

func TestReplaceLayoutRejectsBadJSON(t *testing.T) {
	h := newTestHub()
	before := h.LayoutJSON()

	assert.Error(t, h.ReplaceLayout(`{"room":`))
	assert.Equal(t, before, h.LayoutJSON(), "a rejected replace leaves the document alone")
}

func TestUnknownMessageTypeGetsErrorFrame(t *testing.T) {
	h := newTestHub()
	c := NewClient(h, nil, "client-1")
	h.addClient(c)
	recvMessage(t, c)
	recvMessage(t, c)

	h.handleMessage(c, &Message{Type: "presence.update"})

	errMsg := recvMessage(t, c)
	assert.Equal(t, TypeError, errMsg.Type)

	var ep ErrorPayload
	require.NoError(t, json.Unmarshal(errMsg.Payload, &ep))
	assert.Contains(t, ep.Reason, "presence.update")
}

// Broadcasters re-derive geometry through the engine, which mutates its
// cached projection, and clients come and go while broadcasts are in flight.
// The whole mix has to be race-free; run this under -race.
func TestConcurrentBroadcastAndChurn(t *testing.T) {
	h := newTestHub()

	listener := NewClient(h, nil, "listener")
	h.addClient(listener)

	var before document.Layout
	require.NoError(t, json.Unmarshal([]byte(h.LayoutJSON()), &before))

	const workers = 8
	const opsPerWorker = 25

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range opsPerWorker {
				_, err := h.ApplyAndBroadcast(trayOp(fmt.Sprintf("tray_%d_%d", w, i)))
				assert.NoError(t, err)
			}
		}(w)
	}

	// Join/leave churn racing the broadcasts above.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 50 {
			c := NewClient(h, nil, fmt.Sprintf("churn-%d", i))
			h.addClient(c)
			h.removeClient(c)
		}
	}()

	wg.Wait()

	var l document.Layout
	require.NoError(t, json.Unmarshal([]byte(h.LayoutJSON()), &l))
	assert.Equal(t, len(before.Trays)+workers*opsPerWorker, len(l.Trays),
		"every concurrent operation landed exactly once")
}

func TestRemoveClientClosesSend(t *testing.T) {
	h := newTestHub()
	c := NewClient(h, nil, "client-1")
	h.addClient(c)

	h.removeClient(c)
	// Channel is drained then closed; pending join messages come first.
	for range 2 {
		<-c.send
	}
	_, open := <-c.send
	assert.False(t, open)

	// Removing twice is a no-op.
	h.removeClient(c)
}
