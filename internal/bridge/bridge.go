package bridge

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/hdhradio/internal/discovery"
	"github.com/muurk/hdhradio/internal/hdhr"
	"github.com/muurk/hdhradio/internal/logging"
	"github.com/muurk/hdhradio/internal/stream"
)

// Intervals and cadences of the polling loop.
const (
	// DefaultDiscoveryInterval is how often devices are re-discovered
	DefaultDiscoveryInterval = 5 * time.Minute

	// DefaultRefreshInterval is how often lineups are refreshed
	DefaultRefreshInterval = time.Hour

	// DefaultReconcileInterval is the route reconciliation cadence
	DefaultReconcileInterval = time.Second

	// DefaultIdleSleep is how long the loop sleeps when no sessions
	// are running, to avoid busy-spinning
	DefaultIdleSleep = time.Second
)

// Config carries the tunable intervals of the bridge loop. Zero values
// take the defaults above.
type Config struct {
	MDNSTimeout       time.Duration
	DiscoveryInterval time.Duration
	RefreshInterval   time.Duration
	ReconcileInterval time.Duration
	IdleSleep         time.Duration
}

func (c *Config) applyDefaults() {
	if c.DiscoveryInterval == 0 {
		c.DiscoveryInterval = DefaultDiscoveryInterval
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	if c.ReconcileInterval == 0 {
		c.ReconcileInterval = DefaultReconcileInterval
	}
	if c.IdleSleep == 0 {
		c.IdleSleep = DefaultIdleSleep
	}
}

// Bridge owns the device map, the channel registry, and the session
// table, and runs the single loop that mutates them.
//
// Steady-state mutation happens only on the loop goroutine. Request-
// triggered paths never touch state directly: they enqueue work through
// buffered channels (TriggerDiscovery, TriggerRefresh) and read through
// snapshot accessors guarded by the read lock.
type Bridge struct {
	cfg Config

	probe        *hdhr.Client
	orchestrator *discovery.Orchestrator
	sessions     SessionManager
	sink         AudioSink
	registry     SourceRegistry
	routes       RouteSource
	format       stream.Format

	mu        sync.RWMutex
	devices   map[string]string       // ip -> friendly name, permanent until restart
	channels  map[string]hdhr.Channel // tag -> channel, rebuilt on every refresh
	names     map[string]string       // tag -> synthesized display name
	nameIndex map[string]string       // display name -> tag (best-effort reverse lookup)
	instances map[string]string       // tag -> host instance ID while registered

	discoverReq chan struct{}
	refreshReq  chan struct{}

	// Loop-owned; only read/written on the Run goroutine
	lastDiscovery time.Time
	lastRefresh   time.Time
	lastReconcile time.Time
}

// New constructs a bridge from its collaborators.
func New(cfg Config, probe *hdhr.Client, sessions SessionManager, sink AudioSink, registry SourceRegistry, routes RouteSource) *Bridge {
	cfg.applyDefaults()

	return &Bridge{
		cfg:          cfg,
		probe:        probe,
		orchestrator: discovery.NewOrchestrator(probe, cfg.MDNSTimeout),
		sessions:     sessions,
		sink:         sink,
		registry:     registry,
		routes:       routes,
		format:       stream.DefaultFormat(),
		devices:      make(map[string]string),
		channels:     make(map[string]hdhr.Channel),
		names:        make(map[string]string),
		nameIndex:    make(map[string]string),
		instances:    make(map[string]string),
		discoverReq:  make(chan struct{}, 1),
		refreshReq:   make(chan struct{}, 1),
	}
}

// Run executes the bridge loop until the context is cancelled. Each tick:
// periodic discovery and lineup refresh (tracked via last-run timestamps),
// route reconciliation, then one non-blocking poll-and-forward cycle per
// running session. The 10ms pipe polls pace the loop while sessions run;
// with none running it sleeps to avoid spinning.
func (b *Bridge) Run(ctx context.Context) {
	logging.Info("Bridge loop started")

	for {
		select {
		case <-ctx.Done():
			b.shutdown()
			return
		case <-b.discoverReq:
			b.discoverDevices(ctx)
		case <-b.refreshReq:
			b.refreshLineups()
		default:
		}

		now := time.Now()
		if now.Sub(b.lastDiscovery) > b.cfg.DiscoveryInterval {
			b.discoverDevices(ctx)
		}
		if now.Sub(b.lastRefresh) > b.cfg.RefreshInterval {
			b.refreshLineups()
		}
		if now.Sub(b.lastReconcile) >= b.cfg.ReconcileInterval {
			b.Reconcile(ctx)
			b.lastReconcile = now
		}

		b.pumpSessions()

		if b.sessions.Count() == 0 {
			select {
			case <-ctx.Done():
				b.shutdown()
				return
			case <-b.discoverReq:
				b.discoverDevices(ctx)
			case <-b.refreshReq:
				b.refreshLineups()
			case <-time.After(b.cfg.IdleSleep):
			}
		}
	}
}

// TriggerDiscovery asks the loop to run a discovery pass. Non-blocking;
// coalesces with an already-pending request.
func (b *Bridge) TriggerDiscovery() {
	select {
	case b.discoverReq <- struct{}{}:
	default:
	}
}

// TriggerRefresh asks the loop to refresh all lineups. Non-blocking.
func (b *Bridge) TriggerRefresh() {
	select {
	case b.refreshReq <- struct{}{}:
	default:
	}
}

// discoverDevices runs a full discovery pass and ingests lineups from any
// device seen for the first time. Known devices are never removed.
func (b *Bridge) discoverDevices(ctx context.Context) {
	logging.Info("Running device discovery")
	found := b.orchestrator.DiscoverAll(ctx)

	for ip, name := range found {
		b.mu.RLock()
		_, known := b.devices[ip]
		b.mu.RUnlock()
		if known {
			continue
		}

		b.mu.Lock()
		b.devices[ip] = name
		b.mu.Unlock()

		logging.Info("Added new device", zap.String("ip", ip), zap.String("name", name))
		b.ingestLineup(ip, name)
	}

	b.lastDiscovery = time.Now()
}

// refreshLineups re-fetches the lineup of every known device.
func (b *Bridge) refreshLineups() {
	logging.Info("Refreshing all lineups")

	b.mu.RLock()
	devices := make(map[string]string, len(b.devices))
	for ip, name := range b.devices {
		devices[ip] = name
	}
	b.mu.RUnlock()

	for ip, name := range devices {
		b.ingestLineup(ip, name)
	}
	b.lastRefresh = time.Now()
}

// ingestLineup fetches one device's lineup and registers its radio
// channels under their derived tags.
func (b *Bridge) ingestLineup(ip, deviceName string) {
	device := &hdhr.Device{IP: ip, FriendlyName: deviceName}
	lineup := b.probe.FetchLineup(device)
	if len(lineup) == 0 {
		logging.Warn("No channels found on device", zap.String("ip", ip))
		return
	}

	logging.Info("Processing lineup",
		zap.String("device", deviceName),
		zap.Int("entries", len(lineup)),
	)

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range lineup {
		if !hdhr.IsLikelyRadio(ch.GuideNumber, ch.GuideName) {
			continue
		}

		tag := ch.Tag()
		display := ch.DisplayName(deviceName)

		if existing, clash := b.nameIndex[display]; clash && existing != tag {
			// Name-based route matching is best-effort; a collision
			// makes the name ambiguous and the last writer wins.
			logging.Warn("Display name collision",
				zap.String("name", display),
				zap.String("tag", tag),
				zap.String("existing_tag", existing),
			)
		}

		b.channels[tag] = ch
		b.names[tag] = display
		b.nameIndex[display] = tag

		logging.Debug("Registered channel",
			zap.String("tag", tag),
			zap.String("name", display),
			zap.String("url", ch.URL),
		)
	}
}

// pumpSessions performs one poll-and-forward cycle for every running
// session. Only exact-chunk-size reads are forwarded; partial reads are
// logged and discarded so the host's sample framing never desynchronizes.
func (b *Bridge) pumpSessions() {
	chunkSize := b.sessions.ChunkSize()

	for _, tag := range b.sessions.Running() {
		result := b.sessions.Poll(tag, chunkSize)

		switch result.Status {
		case stream.PollNoData:
			// Skip policy: retry next cycle.

		case stream.PollEOF:
			// The supervisor already tore the session down. Release
			// the host registration; if the route is still active the
			// next reconcile tick restarts the channel cleanly.
			b.releaseInstance(tag)

		case stream.PollData:
			if len(result.Data) != chunkSize {
				logging.Warn("Partial chunk discarded",
					zap.String("tag", tag),
					zap.Int("bytes", len(result.Data)),
					zap.Int("chunk_size", chunkSize),
				)
				continue
			}

			b.mu.RLock()
			instanceID, ok := b.instances[tag]
			b.mu.RUnlock()
			if !ok {
				continue
			}

			if err := b.sink.Write(instanceID, result.Data, b.format); err != nil {
				logging.Error("Sink write failed",
					zap.String("tag", tag),
					zap.Error(err),
				)
			}
		}
	}
}

// releaseInstance unregisters the host source held for a tag, if any.
func (b *Bridge) releaseInstance(tag string) {
	b.mu.Lock()
	instanceID, ok := b.instances[tag]
	if ok {
		delete(b.instances, tag)
	}
	b.mu.Unlock()

	if !ok {
		return
	}
	if err := b.registry.UnregisterSource(instanceID); err != nil {
		logging.Warn("Failed to unregister source",
			zap.String("tag", tag),
			zap.String("instance_id", instanceID),
			zap.Error(err),
		)
	}
}

// shutdown stops every session and releases every host registration.
// Called once when the loop context is cancelled.
func (b *Bridge) shutdown() {
	logging.Info("Bridge loop stopping, cleaning up streams")

	for _, tag := range b.sessions.Running() {
		b.sessions.Stop(tag)
		b.releaseInstance(tag)
	}

	logging.Info("Bridge loop stopped")
}

// Snapshot accessors for request-triggered paths. Each returns a copy;
// callers never observe loop-internal state directly.

// Devices returns the current ip -> friendlyName device map.
func (b *Bridge) Devices() map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]string, len(b.devices))
	for ip, name := range b.devices {
		out[ip] = name
	}
	return out
}

// Channels returns the current tag -> streamURL map.
func (b *Bridge) Channels() map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]string, len(b.channels))
	for tag, ch := range b.channels {
		out[tag] = ch.URL
	}
	return out
}

// ChannelURL returns the stream URL registered under a tag.
func (b *Bridge) ChannelURL(tag string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ch, ok := b.channels[tag]
	if !ok {
		return "", false
	}
	return ch.URL, true
}

// ActiveStreams returns the tags of all running sessions.
func (b *Bridge) ActiveStreams() []string {
	return b.sessions.Running()
}
