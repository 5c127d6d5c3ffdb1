package discovery

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/hdhradio/internal/logging"
)

// Verifier confirms that a candidate IP hosts a tuner and names it.
// Implementations must be total: probing failures are a negative result.
type Verifier interface {
	Verify(ip string) bool
	DeviceName(ip string) string
}

// Strategy is a single discovery method producing verified devices as an
// ip -> friendlyName map. Strategies never return errors; a failing
// strategy contributes an empty map.
type Strategy interface {
	Discover(ctx context.Context) map[string]string
}

// Orchestrator composes the discovery strategies in priority order.
//
// The primary strategies always run; the fallback strategies run only when
// the primaries found nothing. The subnet sweep lives in the fallback tier
// because probing 250 hosts is the most expensive and network-intrusive
// method available.
type Orchestrator struct {
	// Primary strategies run on every pass, in order
	Primary []Strategy

	// Fallback strategies run only when the merged primary result is empty
	Fallback []Strategy
}

// NewOrchestrator wires the standard strategy order: mDNS, then UDP
// broadcast, with the subnet sweep as fallback.
func NewOrchestrator(verifier Verifier, mdnsTimeout time.Duration) *Orchestrator {
	mdns := NewMDNSScanner(verifier)
	if mdnsTimeout > 0 {
		mdns.Timeout = mdnsTimeout
	}

	return &Orchestrator{
		Primary: []Strategy{
			mdns,
			NewBroadcastScanner(verifier),
		},
		Fallback: []Strategy{
			NewSubnetSweeper(verifier),
		},
	}
}

// DiscoverAll runs the strategies and merges their results.
//
// Merging is first-writer-wins: a later strategy never overwrites the name
// an earlier strategy reported for the same IP. Never returns an error;
// with no devices on the network the result is simply empty.
func (o *Orchestrator) DiscoverAll(ctx context.Context) map[string]string {
	devices := make(map[string]string)

	for _, strategy := range o.Primary {
		merge(devices, strategy.Discover(ctx))
	}

	if len(devices) == 0 {
		logging.Info("No devices found by primary strategies, trying fallback")
		for _, strategy := range o.Fallback {
			merge(devices, strategy.Discover(ctx))
		}
	}

	logging.Info("Discovery pass complete", zap.Int("devices", len(devices)))
	return devices
}

// merge copies src entries into dst without overwriting existing keys.
func merge(dst, src map[string]string) {
	for ip, name := range src {
		if _, exists := dst[ip]; !exists {
			dst[ip] = name
		}
	}
}
