package host

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/hdhradio/internal/logging"
	"github.com/muurk/hdhradio/internal/stream"
)

// Sink delivers PCM chunks to the host's WebSocket ingest endpoint.
//
// One connection is held per source instance, dialed lazily on the first
// write. The PCM format is announced once per connection as a JSON text
// message; every subsequent chunk is a binary frame. A failed write drops
// the connection so the next write re-dials.
type Sink struct {
	// IngestURL is the host's ingest endpoint (e.g., "ws://127.0.0.1:8085/api/ingest")
	IngestURL string

	// Dialer is the WebSocket dialer, defaulting to the package default
	Dialer *websocket.Dialer

	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

// NewSink creates a sink for the given ingest endpoint
func NewSink(ingestURL string) *Sink {
	return &Sink{
		IngestURL: ingestURL,
		Dialer:    websocket.DefaultDialer,
		conns:     make(map[string]*websocket.Conn),
	}
}

// hello announces the instance and its fixed PCM format on a fresh
// connection, before any binary frames.
type hello struct {
	InstanceID string `json:"instance_id"`
	Channels   int    `json:"channels"`
	SampleRate int    `json:"sample_rate"`
	BitDepth   int    `json:"bit_depth"`
	Layout     string `json:"layout"`
}

// Write delivers one PCM chunk for a source instance.
func (s *Sink) Write(instanceID string, pcm []byte, format stream.Format) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.connLocked(instanceID, format)
	if err != nil {
		return err
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, pcm); err != nil {
		// Drop the broken connection; the next write re-dials.
		s.dropLocked(instanceID)
		return fmt.Errorf("sink write failed: %w", err)
	}
	return nil
}

// CloseInstance closes the connection held for a source instance, if any.
// Safe to call for instances that never wrote.
func (s *Sink) CloseInstance(instanceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked(instanceID)
}

// Close closes every held connection. Used at shutdown.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for instanceID := range s.conns {
		s.dropLocked(instanceID)
	}
}

// connLocked returns the instance's connection, dialing and announcing
// the format when none is held. Caller holds s.mu.
func (s *Sink) connLocked(instanceID string, format stream.Format) (*websocket.Conn, error) {
	if conn, ok := s.conns[instanceID]; ok {
		return conn, nil
	}

	endpoint := fmt.Sprintf("%s?instance=%s", s.IngestURL, url.QueryEscape(instanceID))
	conn, _, err := s.Dialer.Dial(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("sink dial failed: %w", err)
	}

	if err := conn.WriteJSON(hello{
		InstanceID: instanceID,
		Channels:   format.Channels,
		SampleRate: format.SampleRate,
		BitDepth:   format.BitDepth,
		Layout:     format.Layout,
	}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("sink handshake failed: %w", err)
	}

	logging.Debug("Sink connection established",
		zap.String("instance_id", instanceID),
		zap.String("endpoint", s.IngestURL),
	)

	s.conns[instanceID] = conn
	return conn, nil
}

// dropLocked closes and forgets an instance's connection. Caller holds s.mu.
func (s *Sink) dropLocked(instanceID string) {
	if conn, ok := s.conns[instanceID]; ok {
		_ = conn.Close()
		delete(s.conns, instanceID)
	}
}
