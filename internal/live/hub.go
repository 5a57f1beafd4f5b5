package live

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rackplan/rackplan/backend-go/internal/document"
	"github.com/rackplan/rackplan/backend-go/internal/engine"
)

// Hub owns the single layout engine and fans its derived geometry out to
// every connected client. All mutations — from the socket or from HTTP
// handlers — funnel through the hub's mutex, which is the one logical owner
// the object graph needs.
type Hub struct {
	mu  sync.RWMutex
	eng *engine.Engine
	seq int64

	clientsMu  sync.RWMutex
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(eng *engine.Engine) *Hub {
	return &Hub{
		eng:        eng,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) addClient(client *Client) {
	payload, _ := json.Marshal(WelcomePayload{
		ClientID: client.ClientID,
		Layout:   json.RawMessage(h.LayoutJSON()),
	})
	welcome := &Message{Type: TypeWelcome, Payload: payload}
	render := h.renderMessage()

	// Sends happen under clientsMu so removeClient cannot close the send
	// channel mid-send.
	h.clientsMu.Lock()
	h.clients[client.ClientID] = client
	client.Send(welcome)
	client.Send(render)
	h.clientsMu.Unlock()

	slog.Info("client joined", "client", client.ClientID)
}

func (h *Hub) removeClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client.ClientID]; !ok {
		h.clientsMu.Unlock()
		return
	}
	delete(h.clients, client.ClientID)
	close(client.send)
	h.clientsMu.Unlock()

	slog.Info("client left", "client", client.ClientID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
		payload, _ := json.Marshal(ErrorPayload{
			Reason: fmt.Sprintf("unknown message type %q", msg.Type),
		})
		sender.Send(&Message{Type: TypeError, Payload: payload})
	}
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var payload OpSubmitPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.nack(sender, "", fmt.Sprintf("invalid payload: %v", err))
		return
	}

	seq, err := h.Apply(payload.Operation)
	if err != nil {
		h.nack(sender, payload.Operation.ID, err.Error())
		return
	}

	ackPayload, _ := json.Marshal(OpAckPayload{
		OperationID: payload.Operation.ID,
		ServerSeq:   seq,
	})
	sender.Send(&Message{Type: TypeOpAck, Seq: seq, Payload: ackPayload})

	h.broadcastState(seq)
}

func (h *Hub) nack(client *Client, opID, reason string) {
	payload, _ := json.Marshal(OpNackPayload{OperationID: opID, Reason: reason})
	client.Send(&Message{Type: TypeOpNack, Payload: payload})
}

// broadcastState pushes the document and the re-derived geometry to every
// client, sender included — the canonical state comes back from the hub.
func (h *Hub) broadcastState(seq int64) {
	sync := &Message{Type: TypeLayoutSync, Seq: seq, Payload: json.RawMessage(h.LayoutJSON())}
	render := h.renderMessage()

	// Send is buffered and never blocks, so holding the read lock across the
	// fan-out is cheap — and it excludes removeClient from closing a send
	// channel under us.
	h.clientsMu.RLock()
	for _, c := range h.clients {
		c.Send(sync)
		c.Send(render)
	}
	h.clientsMu.RUnlock()
}

func (h *Hub) renderMessage() *Message {
	// Render and RenderScene refresh the engine's cached projection, which is
	// a write, so the read lock is not enough here.
	h.mu.Lock()
	plan := h.eng.Render()
	scene := h.eng.RenderScene()
	h.mu.Unlock()

	payload, _ := json.Marshal(RenderPayload{
		Plan:  json.RawMessage(plan),
		Scene: json.RawMessage(scene),
	})
	return &Message{Type: TypeRenderUpdate, Payload: payload}
}

// --- Thread-safe engine access for HTTP handlers ---

// Apply applies one operation and returns the new server sequence.
func (h *Hub) Apply(op document.Operation) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.eng.ApplyOperation(op); err != nil {
		return 0, err
	}
	h.seq++
	return h.seq, nil
}

// ApplyAndBroadcast applies an operation on behalf of an HTTP caller and
// pushes the resulting state to all socket clients.
func (h *Hub) ApplyAndBroadcast(op document.Operation) (int64, error) {
	seq, err := h.Apply(op)
	if err != nil {
		return 0, err
	}
	h.broadcastState(seq)
	return seq, nil
}

// ReplaceLayout swaps in a whole document and pushes it to all clients.
func (h *Hub) ReplaceLayout(jsonData string) error {
	h.mu.Lock()
	err := h.eng.LoadLayout(jsonData)
	if err == nil {
		h.seq++
	}
	seq := h.seq
	h.mu.Unlock()

	if err != nil {
		return err
	}
	h.broadcastState(seq)
	return nil
}

// LayoutJSON returns the current document as JSON.
func (h *Hub) LayoutJSON() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.eng.GetLayout()
}

// RenderPlan derives the 2D plan command buffer for an arbitrary canvas size
// without touching engine state.
func (h *Hub) RenderPlan(canvasWidth, canvasHeight float64) string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	l := h.eng.Layout()
	proj := engine.NewPlanProjection(l.Room, canvasWidth, canvasHeight)
	commands := engine.CompilePlan(l, proj, engine.Selection{})
	data, _ := json.Marshal(commands)
	return string(data)
}

// RenderScene derives the 3D face buffer for an arbitrary camera without
// touching engine state.
func (h *Hub) RenderScene(view engine.ViewState, canvasWidth, canvasHeight float64) string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	l := h.eng.Layout()
	metrics := engine.SceneMetrics(l.Room, canvasWidth, canvasHeight)
	faces := engine.CompileScene(l, metrics, view, engine.Selection{})
	data, _ := json.Marshal(faces)
	return string(data)
}
