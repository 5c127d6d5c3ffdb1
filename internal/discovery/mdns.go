package discovery

import (
	"context"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/hdhradio/internal/logging"
)

const (
	// ServiceType is the mDNS service type HDHomeRun tuners advertise
	ServiceType = "_hdhomerun._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default window for mDNS discovery
	DefaultScanTimeout = 10 * time.Second
)

// MDNSScanner discovers tuners by listening for their service
// announcements on the local network.
type MDNSScanner struct {
	// Timeout is the listening window for announcements
	Timeout time.Duration

	// Verifier confirms candidate IPs before they are accepted
	Verifier Verifier
}

// NewMDNSScanner creates an mDNS scanner with the default window
func NewMDNSScanner(verifier Verifier) *MDNSScanner {
	return &MDNSScanner{
		Timeout:  DefaultScanTimeout,
		Verifier: verifier,
	}
}

// Discover listens for HDHomeRun service announcements for the configured
// window and returns verified devices as an ip -> friendlyName map.
//
// Zero announcements is a normal outcome (empty map). Resolver failures
// are logged and yield an empty map; discovery strategies never raise.
func (s *MDNSScanner) Discover(ctx context.Context) map[string]string {
	logging.Info("Starting mDNS discovery", zap.Duration("timeout", s.Timeout))

	devices := make(map[string]string)

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		logging.Error("Failed to create mDNS resolver", zap.Error(err))
		return devices
	}

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})

	// Drain announcements as they arrive; zeroconf closes the channel
	// when the browse context expires.
	go func() {
		defer close(done)
		for entry := range entries {
			ip := candidateIP(entry)
			if ip == "" {
				continue
			}
			if _, seen := devices[ip]; seen {
				continue
			}
			if !s.Verifier.Verify(ip) {
				// Unverified candidates are silently dropped
				continue
			}
			name := s.Verifier.DeviceName(ip)
			devices[ip] = name
			logging.LogDiscovery("mdns", ip, name)
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		logging.Error("Failed to browse for mDNS services", zap.Error(err))
		return devices
	}

	<-ctx.Done()
	<-done

	logging.Info("mDNS discovery finished", zap.Int("devices", len(devices)))
	return devices
}

// candidateIP extracts the address to probe from a service entry,
// preferring IPv4. Returns "" when the entry carries no usable address.
func candidateIP(entry *zeroconf.ServiceEntry) string {
	for _, addr := range entry.AddrIPv4 {
		if ip := addr.To4(); ip != nil {
			return ip.String()
		}
	}
	return ""
}
