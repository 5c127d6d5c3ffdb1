package discovery

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/muurk/hdhradio/internal/logging"
	"github.com/muurk/hdhradio/internal/protocol"
)

const (
	// BroadcastAddr is the limited broadcast address the discover
	// request is sent to
	BroadcastAddr = "255.255.255.255"

	// BroadcastWindow bounds both the total collection time and the
	// idle read timeout for replies
	BroadcastWindow = 3 * time.Second
)

// BroadcastScanner discovers tuners by sending the wire-format discover
// datagram to the local broadcast address and collecting replies.
type BroadcastScanner struct {
	// Window is the reply collection window
	Window time.Duration

	// Verifier confirms responder IPs before they are accepted
	Verifier Verifier
}

// NewBroadcastScanner creates a broadcast scanner with the default window
func NewBroadcastScanner(verifier Verifier) *BroadcastScanner {
	return &BroadcastScanner{
		Window:   BroadcastWindow,
		Verifier: verifier,
	}
}

// Discover sends one discover request and collects verified responders
// for the configured window as an ip -> friendlyName map.
//
// An idle timeout ends the receive loop early; that is the normal exit,
// not an error. Socket failures are logged and yield whatever was
// collected so far.
func (s *BroadcastScanner) Discover(ctx context.Context) map[string]string {
	logging.Info("Starting UDP broadcast discovery", zap.Duration("window", s.Window))

	devices := make(map[string]string)

	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		logging.Error("Failed to open broadcast socket", zap.Error(err))
		return devices
	}
	defer func() { _ = conn.Close() }()

	if err := enableBroadcast(conn); err != nil {
		logging.Error("Failed to set SO_BROADCAST", zap.Error(err))
		return devices
	}

	packet := protocol.BuildDiscoverRequest()
	logging.LogRawBytes("Discover request datagram", packet)

	dest := &net.UDPAddr{
		IP:   net.ParseIP(BroadcastAddr),
		Port: protocol.DiscoverPort,
	}
	if _, err := conn.WriteTo(packet, dest); err != nil {
		logging.Error("Failed to send discover request", zap.Error(err))
		return devices
	}

	deadline := time.Now().Add(s.Window)
	buf := make([]byte, 1024)

	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)

		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			// Idle timeout terminates the loop; anything else is
			// equally non-fatal for a discovery pass.
			if netErr, ok := err.(net.Error); !ok || !netErr.Timeout() {
				logging.Warn("Broadcast receive error", zap.Error(err))
			}
			break
		}

		udpAddr, ok := addr.(*net.UDPAddr)
		if !ok {
			continue
		}
		ip := udpAddr.IP.String()

		logging.LogRawBytes("Discover reply datagram", buf[:n])
		if !protocol.IsDiscoverReply(buf[:n]) {
			continue
		}
		if _, seen := devices[ip]; seen {
			continue
		}
		if !s.Verifier.Verify(ip) {
			continue
		}

		name := s.Verifier.DeviceName(ip)
		devices[ip] = name
		logging.LogDiscovery("broadcast", ip, name)
	}

	logging.Info("Broadcast discovery finished", zap.Int("devices", len(devices)))
	return devices
}

// enableBroadcast sets SO_BROADCAST on the underlying socket. Sending to
// the limited broadcast address is refused by the kernel without it.
func enableBroadcast(conn net.PacketConn) error {
	udpConn, ok := conn.(*net.UDPConn)
	if !ok {
		return nil
	}

	raw, err := udpConn.SyscallConn()
	if err != nil {
		return err
	}

	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	}); err != nil {
		return err
	}
	return sockErr
}
