package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/hdhradio/internal/logging"
)

// APIServer exposes the bridge's control actions over HTTP. Handlers only
// read snapshots or enqueue work for the loop; they never mutate bridge
// state directly.
type APIServer struct {
	Addr   string
	bridge *Bridge
}

// NewAPIServer creates a control API server for a bridge
func NewAPIServer(addr string, b *Bridge) *APIServer {
	return &APIServer{Addr: addr, bridge: b}
}

// routes builds the control API routing table.
func (s *APIServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /devices", s.handleDevices)
	mux.HandleFunc("GET /channels", s.handleChannels)
	mux.HandleFunc("GET /streams/active", s.handleActiveStreams)
	mux.HandleFunc("GET /play/{tag}", s.handlePlayURL)
	mux.HandleFunc("POST /discover", s.handleDiscover)
	mux.HandleFunc("POST /refresh", s.handleRefresh)
	return mux
}

// Serve runs the control API until the context is cancelled.
func (s *APIServer) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logging.Info("Control API listening", zap.String("addr", s.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *APIServer) handleDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": s.bridge.Devices(),
	})
}

func (s *APIServer) handleChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"channels": s.bridge.Channels(),
	})
}

func (s *APIServer) handleActiveStreams(w http.ResponseWriter, r *http.Request) {
	active := s.bridge.ActiveStreams()
	writeJSON(w, http.StatusOK, map[string]any{
		"active_streams": active,
		"count":          len(active),
	})
}

func (s *APIServer) handlePlayURL(w http.ResponseWriter, r *http.Request) {
	tag := r.PathValue("tag")
	url, ok := s.bridge.ChannelURL(tag)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": "channel " + tag + " not found",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tag": tag,
		"url": url,
	})
}

func (s *APIServer) handleDiscover(w http.ResponseWriter, r *http.Request) {
	s.bridge.TriggerDiscovery()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":  "discovery scheduled",
		"devices": s.bridge.Devices(),
	})
}

func (s *APIServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.bridge.TriggerRefresh()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "refresh scheduled",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Warn("Failed to encode API response", zap.Error(err))
	}
}
