package layout

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rackplan/rackplan/backend-go/internal/document"
	"github.com/rackplan/rackplan/backend-go/internal/engine"
	"github.com/rackplan/rackplan/backend-go/internal/live"
)

// Handler serves the layout document and its derived geometry over HTTP.
// Every request goes through the hub, which serializes access to the engine.
type Handler struct {
	hub *live.Hub
}

func NewHandler(hub *live.Hub) *Handler {
	return &Handler{hub: hub}
}

// Get returns the current layout document.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	writeRawJSON(w, http.StatusOK, h.hub.LayoutJSON())
}

// Replace swaps in a whole layout document.
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.hub.ReplaceLayout(string(body)); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeRawJSON(w, http.StatusOK, h.hub.LayoutJSON())
}

type opRequest struct {
	Operation document.Operation `json:"operation"`
}

// ApplyOp applies a single document operation, the same codec the socket
// uses.
func (h *Handler) ApplyOp(w http.ResponseWriter, r *http.Request) {
	var req opRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Operation.Type == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "operation type is required"})
		return
	}

	seq, err := h.hub.ApplyAndBroadcast(req.Operation)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "serverSeq": seq})
}

// Plan returns the 2D command buffer for the requested canvas size.
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	width := queryFloat(r, "width", 1200)
	height := queryFloat(r, "height", 800)
	if width <= 2*engine.PlanPadding || height <= 2*engine.PlanPadding {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "canvas too small"})
		return
	}

	writeRawJSON(w, http.StatusOK, h.hub.RenderPlan(width, height))
}

// Scene returns the depth-sorted 3D face buffer for the requested camera.
func (h *Handler) Scene(w http.ResponseWriter, r *http.Request) {
	width := queryFloat(r, "width", 1200)
	height := queryFloat(r, "height", 800)

	view := engine.DefaultView()
	view.YawDeg = queryFloat(r, "yaw", view.YawDeg)
	view.PitchDeg = queryFloat(r, "pitch", view.PitchDeg)
	view.Zoom = queryFloat(r, "zoom", view.Zoom)
	if view.Zoom <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "zoom must be positive"})
		return
	}

	writeRawJSON(w, http.StatusOK, h.hub.RenderScene(view, width, height))
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

func writeRawJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, body); err != nil {
		slog.Error("write response", "error", err)
	}
}
