package bridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/muurk/hdhradio/internal/logging"
)

// Reconcile converges the running sessions onto the host's active routes.
//
// Each active route is mapped back to a channel tag, by exact tag match
// first and by the display-name reverse index as a best-effort fallback.
// Channels in the active set without a session are started; sessions
// whose tag left the active set are stopped. Repeated calls with an
// unchanged active set issue no further start or stop calls.
//
// A failed routes query means "no change": the current session set is
// kept rather than torn down.
func (b *Bridge) Reconcile(ctx context.Context) {
	routes, err := b.routes.ActiveRoutes(ctx)
	if err != nil {
		logging.Debug("Routes query failed, keeping current sessions", zap.Error(err))
		return
	}

	active := b.activeTags(routes)

	for tag := range active {
		if !b.sessions.Has(tag) {
			b.startChannel(tag)
		}
	}

	for _, tag := range b.sessions.Running() {
		if _, stillActive := active[tag]; !stillActive {
			b.stopChannel(tag)
		}
	}
}

// activeTags maps the enabled routes to the channel tags they reference.
// Route sources that match neither a tag nor a display name are ignored.
func (b *Bridge) activeTags(routes []Route) map[string]struct{} {
	b.mu.RLock()
	defer b.mu.RUnlock()

	active := make(map[string]struct{})
	for _, route := range routes {
		if !route.Enabled {
			continue
		}

		if _, ok := b.channels[route.Source]; ok {
			active[route.Source] = struct{}{}
			continue
		}
		if tag, ok := b.nameIndex[route.Source]; ok {
			active[tag] = struct{}{}
		}
	}
	return active
}

// startChannel registers a host source for the tag and starts its decode
// session. Registration failure means no session is created; a failed
// session start rolls the registration back.
func (b *Bridge) startChannel(tag string) {
	b.mu.RLock()
	ch, known := b.channels[tag]
	display := b.names[tag]
	b.mu.RUnlock()

	if !known {
		logging.Warn("Cannot start unknown channel", zap.String("tag", tag))
		return
	}

	instanceID, err := b.registry.RegisterSource(SourceDescription{
		Name: display,
		Tag:  tag,
	})
	if err != nil {
		logging.Error("Source registration failed",
			zap.String("tag", tag),
			zap.Error(err),
		)
		return
	}

	if err := b.sessions.Start(tag, ch.URL); err != nil {
		logging.Error("Failed to start stream",
			zap.String("tag", tag),
			zap.Error(err),
		)
		if uerr := b.registry.UnregisterSource(instanceID); uerr != nil {
			logging.Warn("Failed to roll back registration",
				zap.String("instance_id", instanceID),
				zap.Error(uerr),
			)
		}
		return
	}

	b.mu.Lock()
	b.instances[tag] = instanceID
	b.mu.Unlock()

	logging.Info("Channel activated",
		zap.String("tag", tag),
		zap.String("instance_id", instanceID),
	)
}

// stopChannel stops the tag's session and releases its host registration.
func (b *Bridge) stopChannel(tag string) {
	b.sessions.Stop(tag)
	b.releaseInstance(tag)
	logging.Info("Channel deactivated", zap.String("tag", tag))
}
