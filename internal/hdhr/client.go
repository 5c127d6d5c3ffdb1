package hdhr

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/hdhradio/internal/logging"
)

const (
	// DiscoverTimeout is the HTTP timeout for the /discover.json probe.
	// Probes run in bulk during subnet sweeps, so this stays short.
	DiscoverTimeout = 2 * time.Second

	// LineupTimeout is the HTTP timeout for the /lineup.json request.
	LineupTimeout = 5 * time.Second
)

// discoverResponse is the device descriptor returned by GET /discover.json.
type discoverResponse struct {
	DeviceID        string `json:"DeviceID"`
	ModelNumber     string `json:"ModelNumber"`
	FriendlyName    string `json:"FriendlyName"`
	FirmwareVersion string `json:"FirmwareVersion"`
}

// lineupEntry is a single element of the array returned by GET /lineup.json.
type lineupEntry struct {
	GuideNumber string `json:"GuideNumber"`
	GuideName   string `json:"GuideName"`
	URL         string `json:"URL"`
}

// Client probes HDHomeRun devices over HTTP.
//
// Every method is total: network errors, timeouts, and malformed bodies are
// logged and reported as a negative result, never as an error value. The
// discovery and reconciliation layers above depend on that.
type Client struct {
	// HTTPClient is the underlying HTTP client. Per-request timeouts are
	// set on each call, so the client itself carries none.
	HTTPClient *http.Client
}

// NewClient creates a probe client with default settings
func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{},
	}
}

// Verify reports whether an HDHomeRun device answers at the given IP.
// True iff /discover.json returns a JSON object carrying both a DeviceID
// and a ModelNumber.
func (c *Client) Verify(ip string) bool {
	info, ok := c.fetchDescriptor(ip)
	if !ok {
		return false
	}
	return info.DeviceID != "" && info.ModelNumber != ""
}

// Describe fetches the full device descriptor from the given IP.
// Returns (nil, false) on any failure. FriendlyName falls back to a
// synthesized "HDHomeRun at {ip}" when the device does not report one.
func (c *Client) Describe(ip string) (*Device, bool) {
	info, ok := c.fetchDescriptor(ip)
	if !ok {
		return nil, false
	}

	name := info.FriendlyName
	if name == "" {
		name = fmt.Sprintf("HDHomeRun at %s", ip)
	}

	return &Device{
		IP:              ip,
		FriendlyName:    name,
		DeviceID:        info.DeviceID,
		ModelNumber:     info.ModelNumber,
		FirmwareVersion: info.FirmwareVersion,
		DiscoveredAt:    time.Now(),
	}, true
}

// DeviceName returns the device's friendly name, or the synthesized
// fallback when the device cannot be described at all.
func (c *Client) DeviceName(ip string) string {
	if device, ok := c.Describe(ip); ok {
		return device.FriendlyName
	}
	return fmt.Sprintf("HDHomeRun at %s", ip)
}

// FetchLineup retrieves the published channel lineup from a device.
// Entries without a stream URL are skipped. Any failure yields an empty
// slice; lineup problems are never fatal to the caller.
func (c *Client) FetchLineup(device *Device) []Channel {
	client := *c.HTTPClient
	client.Timeout = LineupTimeout

	resp, err := client.Get(device.BaseURL() + "/lineup.json")
	if err != nil {
		logging.Warn("Lineup fetch failed",
			zap.String("ip", device.IP),
			zap.Error(err),
		)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		logging.Warn("Lineup fetch returned unexpected status",
			zap.String("ip", device.IP),
			zap.Int("status", resp.StatusCode),
		)
		return nil
	}

	var lineup []lineupEntry
	if err := json.NewDecoder(resp.Body).Decode(&lineup); err != nil {
		logging.Warn("Lineup response malformed",
			zap.String("ip", device.IP),
			zap.Error(err),
		)
		return nil
	}

	channels := make([]Channel, 0, len(lineup))
	for _, entry := range lineup {
		if entry.URL == "" {
			continue
		}
		channels = append(channels, Channel{
			GuideNumber: entry.GuideNumber,
			GuideName:   entry.GuideName,
			URL:         entry.URL,
			DeviceIP:    device.IP,
		})
	}

	logging.Debug("Lineup fetched",
		zap.String("ip", device.IP),
		zap.Int("entries", len(lineup)),
		zap.Int("channels", len(channels)),
	)

	return channels
}

// fetchDescriptor issues the short-timeout /discover.json probe.
func (c *Client) fetchDescriptor(ip string) (*discoverResponse, bool) {
	client := *c.HTTPClient
	client.Timeout = DiscoverTimeout

	resp, err := client.Get(fmt.Sprintf("http://%s/discover.json", ip))
	if err != nil {
		return nil, false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}

	var info discoverResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, false
	}

	return &info, true
}
