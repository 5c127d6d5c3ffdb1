package hdhr

import (
	"fmt"
	"strconv"
	"strings"
)

// radioKeywords are guide-name fragments that mark a channel as a radio
// station regardless of its guide number.
var radioKeywords = []string{
	"radio", "fm", "am", "music", "npr", "jazz",
	"classical", "rock", "news radio", "talk radio",
}

// Channel is a single lineup entry served by a device. Channels are
// recomputed on every lineup refresh; the derived tag is their stable
// identity across refreshes.
type Channel struct {
	// GuideNumber is the channel number as published (e.g., "95.5" or "95.5-1")
	GuideNumber string

	// GuideName is the channel's display name (e.g., "Jazz FM")
	GuideName string

	// URL is the live stream URL served by the tuner
	URL string

	// DeviceIP is the IP of the device that published this channel
	DeviceIP string
}

// Tag returns the stable external identity for this channel.
func (ch Channel) Tag() string {
	return TagFor(ch.DeviceIP, ch.GuideNumber)
}

// DisplayName synthesizes the name shown to the host for this channel.
func (ch Channel) DisplayName(deviceName string) string {
	return fmt.Sprintf("HDHomeRun [%s]: %s (%s)", deviceName, ch.GuideName, ch.GuideNumber)
}

// TagFor derives the stable channel tag from a device IP and guide number.
// Dots are replaced with underscores in both parts, so the result is
// deterministic and collision-free across devices:
//
//	TagFor("192.168.1.100", "95.5") == "hdhomerun_192_168_1_100_95_5"
func TagFor(ip, guideNumber string) string {
	return fmt.Sprintf("hdhomerun_%s_%s",
		strings.ReplaceAll(ip, ".", "_"),
		strings.ReplaceAll(guideNumber, ".", "_"))
}

// IsLikelyRadio reports whether a lineup entry looks like a radio station.
//
// The numeric prefix of the guide number (the part before any "-") is
// parsed as a decimal; values in the FM band [88.0, 108.0] are radio.
// Otherwise the guide name is matched case-insensitively against a fixed
// keyword set.
func IsLikelyRadio(guideNumber, guideName string) bool {
	prefix := strings.SplitN(guideNumber, "-", 2)[0]
	if num, err := strconv.ParseFloat(prefix, 64); err == nil {
		if num >= 88.0 && num <= 108.0 {
			return true
		}
	}

	nameLower := strings.ToLower(guideName)
	for _, keyword := range radioKeywords {
		if strings.Contains(nameLower, keyword) {
			return true
		}
	}
	return false
}
