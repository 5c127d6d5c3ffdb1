package bridge

import (
	"context"

	"github.com/muurk/hdhradio/internal/stream"
)

// The bridge core never talks to the audio host directly; it depends on
// these narrow contracts so it can be constructed independently of the
// host for testing.

// SourceDescription is what the bridge registers with the host for a
// channel that becomes eligible for routing.
type SourceDescription struct {
	Name string `json:"name"`
	Tag  string `json:"tag"`
}

// Route is one entry of the host's active-routes view.
type Route struct {
	// Source is the route's source identity: a channel tag when the
	// host can supply one, otherwise the synthesized display name
	Source string `json:"source"`

	// Enabled marks the route as currently in use
	Enabled bool `json:"enabled"`
}

// AudioSink accepts decoded PCM chunks for a registered source instance.
type AudioSink interface {
	Write(instanceID string, pcm []byte, format stream.Format) error
}

// SourceRegistry registers and unregisters temporary sources with the
// host. A registration failure means no stream session may be created.
type SourceRegistry interface {
	RegisterSource(desc SourceDescription) (string, error)
	UnregisterSource(instanceID string) error
}

// RouteSource exposes the host's view of which routes are active.
// Errors mean "no change": the caller keeps its current active set.
type RouteSource interface {
	ActiveRoutes(ctx context.Context) ([]Route, error)
}

// SessionManager is the slice of the stream supervisor the bridge drives.
// *stream.Supervisor satisfies it; tests substitute fakes.
type SessionManager interface {
	Start(tag, url string) error
	Stop(tag string)
	Has(tag string) bool
	Running() []string
	Count() int
	ChunkSize() int
	Poll(tag string, maxBytes int) stream.PollResult
}
