package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/hdhradio/internal/logging"
)

const (
	// SweepWorkers bounds the number of concurrent subnet probes.
	// Worst-case wall clock is ceil(250/50) probe timeouts.
	SweepWorkers = 50

	// sweepFirstHost and sweepLastHost bound the probed host range
	// within the /24 (network, gateway, and broadcast-adjacent
	// addresses are skipped).
	sweepFirstHost = 2
	sweepLastHost  = 252
)

// SubnetSweeper discovers tuners by probing every host of the local /24.
// This is the slowest and most intrusive strategy; the orchestrator only
// runs it when the cheaper strategies found nothing.
type SubnetSweeper struct {
	// Workers is the probe pool size
	Workers int

	// Verifier confirms candidate IPs; each probe is one Verify call
	// bounded by the verifier's own timeout
	Verifier Verifier

	// localIP overrides outbound-interface detection in tests
	localIP func() (net.IP, error)
}

// NewSubnetSweeper creates a sweeper with the default pool size
func NewSubnetSweeper(verifier Verifier) *SubnetSweeper {
	return &SubnetSweeper{
		Workers:  SweepWorkers,
		Verifier: verifier,
		localIP:  localOutboundIP,
	}
}

// Discover probes hosts .2 through .252 of the local /24 in parallel and
// returns verified devices as an ip -> friendlyName map.
//
// One slow probe only costs its own timeout; the pool keeps the rest of
// the sweep moving. Failure to determine the local subnet is logged and
// yields an empty map.
func (s *SubnetSweeper) Discover(ctx context.Context) map[string]string {
	devices := make(map[string]string)

	local, err := s.localIP()
	if err != nil {
		logging.Error("Failed to determine local IP for subnet sweep", zap.Error(err))
		return devices
	}

	base, err := subnetBase(local)
	if err != nil {
		logging.Error("Subnet sweep skipped", zap.Error(err))
		return devices
	}

	logging.Info("Starting subnet sweep",
		zap.String("subnet", base+".0/24"),
		zap.Int("workers", s.Workers),
	)

	jobs := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < s.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ip := range jobs {
				if !s.Verifier.Verify(ip) {
					continue
				}
				name := s.Verifier.DeviceName(ip)
				mu.Lock()
				devices[ip] = name
				mu.Unlock()
				logging.LogDiscovery("sweep", ip, name)
			}
		}()
	}

	for host := sweepFirstHost; host <= sweepLastHost; host++ {
		jobs <- fmt.Sprintf("%s.%d", base, host)
	}
	close(jobs)
	wg.Wait()

	logging.Info("Subnet sweep finished", zap.Int("devices", len(devices)))
	return devices
}

// localOutboundIP determines the local interface address used for
// outbound traffic by opening a throwaway UDP socket toward a public
// address. UDP dial sends nothing; it only selects a route.
func localOutboundIP() (net.IP, error) {
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err != nil {
		return nil, fmt.Errorf("failed to determine outbound interface: %w", err)
	}
	defer func() { _ = conn.Close() }()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return nil, fmt.Errorf("unexpected local address type %T", conn.LocalAddr())
	}
	return addr.IP, nil
}

// subnetBase returns the first three octets of an IPv4 address
// ("192.168.1" for 192.168.1.37).
func subnetBase(ip net.IP) (string, error) {
	ip4 := ip.To4()
	if ip4 == nil {
		return "", fmt.Errorf("not an IPv4 address: %s", ip)
	}
	return fmt.Sprintf("%d.%d.%d", ip4[0], ip4[1], ip4[2]), nil
}
