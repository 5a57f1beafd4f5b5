package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/rackplan/rackplan/backend-go/internal/config"
	"github.com/rackplan/rackplan/backend-go/internal/engine"
	"github.com/rackplan/rackplan/backend-go/internal/layout"
	"github.com/rackplan/rackplan/backend-go/internal/live"
	mw "github.com/rackplan/rackplan/backend-go/internal/middleware"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	eng := engine.NewEngine()
	eng.SetCanvas(float64(cfg.CanvasWidth), float64(cfg.CanvasHeight))
	eng.LoadSampleLayout()

	hub := live.NewHub(eng)
	go hub.Run()

	layoutHandler := layout.NewHandler(hub)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.AllowedOrigins))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/layout", layoutHandler.Get).Methods("GET")
	api.HandleFunc("/layout", layoutHandler.Replace).Methods("POST", "OPTIONS")
	api.HandleFunc("/layout/ops", layoutHandler.ApplyOp).Methods("POST", "OPTIONS")
	api.HandleFunc("/layout/plan", layoutHandler.Plan).Methods("GET")
	api.HandleFunc("/layout/scene", layoutHandler.Scene).Methods("GET")

	// WebSocket endpoint
	r.HandleFunc("/ws/layout", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, cfg)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *live.Hub, cfg *config.Config) {
	var patterns []string
	for _, origin := range strings.Split(cfg.AllowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		origin = strings.TrimPrefix(origin, "http://")
		origin = strings.TrimPrefix(origin, "https://")
		if origin != "" {
			patterns = append(patterns, origin)
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: patterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := live.NewClient(hub, conn, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
