package live

import (
	"encoding/json"

	"github.com/rackplan/rackplan/backend-go/internal/document"
)

// Message is the envelope for every frame on the live socket.
type Message struct {
	Type     string          `json:"type"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Document sync: full layout JSON pushed on join and after every
	// applied operation.
	TypeLayoutSync = "layout.sync"

	// Derived geometry pushed after every applied operation, so thin
	// painters never recompute anything.
	TypeRenderUpdate = "render.update"

	// Operation messages
	TypeOpSubmit = "op.submit"
	TypeOpAck    = "op.ack"
	TypeOpNack   = "op.nack"
)

// ErrorPayload reports a protocol-level failure not tied to an operation,
// such as an unknown message type.
type ErrorPayload struct {
	Reason string `json:"reason"`
}

// WelcomePayload greets a new client with its ID and the current state.
type WelcomePayload struct {
	ClientID string          `json:"clientId"`
	Layout   json.RawMessage `json:"layout"`
}

// OpSubmitPayload carries a client-submitted document mutation.
type OpSubmitPayload struct {
	Operation document.Operation `json:"operation"`
}

// OpAckPayload confirms an applied operation.
type OpAckPayload struct {
	OperationID string `json:"operationId"`
	ServerSeq   int64  `json:"serverSeq"`
}

// OpNackPayload rejects an operation.
type OpNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// RenderPayload is the re-derived geometry for both views.
type RenderPayload struct {
	Plan  json.RawMessage `json:"plan"`
	Scene json.RawMessage `json:"scene"`
}
