package hdhr

import (
	"fmt"
	"time"
)

// Device represents a verified HDHomeRun tuner on the network.
// Identity is the IP address; a Device is immutable once created and is
// only ever dropped by a process restart.
type Device struct {
	// IP is the IPv4 address (e.g., "192.168.1.100")
	IP string

	// FriendlyName is the device's advertised name, or a synthesized
	// "HDHomeRun at {ip}" when the device does not report one
	FriendlyName string

	// DeviceID is the Silicondust device identifier (e.g., "1040A1B2")
	DeviceID string

	// ModelNumber is the hardware model (e.g., "HDHR5-4US")
	ModelNumber string

	// FirmwareVersion is the reported firmware version, if any
	FirmwareVersion string

	// DiscoveredAt is when the device was first verified
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("HDHomeRun %s (%s) at %s", d.FriendlyName, d.ModelNumber, d.IP)
}

// BaseURL returns the HTTP base URL for the device
func (d *Device) BaseURL() string {
	return fmt.Sprintf("http://%s", d.IP)
}
