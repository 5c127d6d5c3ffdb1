package protocol

import (
	"encoding/binary"
	"fmt"
)

// Packet constructor library for building HDHomeRun control datagrams.
// The wire format is the documented Silicondust UDP control protocol as
// observed on port 65001.

const (
	// DiscoverPort is the UDP port HDHomeRun devices listen on for
	// discovery datagrams.
	DiscoverPort = 65001

	// Packet types
	PacketTypeDiscoverRequest = 0x0002 // sent by us to the broadcast address
	PacketTypeDiscoverReply   = 0x0003 // sent back by each device

	// TLV tags carried in the discover payload
	TagDeviceID   = 0x01
	TagDeviceType = 0x02

	// WildcardValue matches any device ID or device type.
	WildcardValue = 0xFFFFFFFF

	// headerSize is the fixed [type:u16][length:u16] prefix.
	headerSize = 4

	// tagValueSize is the length of each wildcard TLV value.
	tagValueSize = 4
)

// Packet is a decoded HDHomeRun control datagram header plus payload.
// Replies carry a trailing CRC which is not verified here; responders are
// confirmed over HTTP before they are trusted.
type Packet struct {
	Type    uint16
	Payload []byte
}

// BuildDiscoverRequest constructs the fixed 16-byte discovery datagram.
//
// Wire layout (all multi-byte fields big-endian):
//
//	[0-1]   0x0002       Packet type: discover request
//	[2-3]   0x000c       Payload length (12 bytes)
//	[4]     0x01         Tag: device ID
//	[5]     0x04         Value length
//	[6-9]   0xffffffff   Device ID wildcard
//	[10]    0x02         Tag: device type
//	[11]    0x04         Value length
//	[12-15] 0xffffffff   Device type wildcard
//
// The layout is a compatibility requirement: devices match it byte for byte.
func BuildDiscoverRequest() []byte {
	payloadLen := 2 * (2 + tagValueSize) // two TLV blocks
	packet := make([]byte, headerSize+payloadLen)

	binary.BigEndian.PutUint16(packet[0:2], PacketTypeDiscoverRequest)
	binary.BigEndian.PutUint16(packet[2:4], uint16(payloadLen))

	packet[4] = TagDeviceID
	packet[5] = tagValueSize
	binary.BigEndian.PutUint32(packet[6:10], WildcardValue)

	packet[10] = TagDeviceType
	packet[11] = tagValueSize
	binary.BigEndian.PutUint32(packet[12:16], WildcardValue)

	return packet
}

// ParsePacket decodes the header of a received datagram.
//
// Trailing bytes beyond the declared payload length (the reply CRC) are
// ignored. Returns an error if the datagram is shorter than its header
// declares.
func ParsePacket(data []byte) (*Packet, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("packet too small: %d bytes (minimum %d)", len(data), headerSize)
	}

	packetType := binary.BigEndian.Uint16(data[0:2])
	payloadLen := int(binary.BigEndian.Uint16(data[2:4]))

	if len(data) < headerSize+payloadLen {
		return nil, fmt.Errorf("packet size %d smaller than header + payload (%d)", len(data), headerSize+payloadLen)
	}

	return &Packet{
		Type:    packetType,
		Payload: data[headerSize : headerSize+payloadLen],
	}, nil
}

// IsDiscoverReply reports whether a received datagram parses as a discover
// reply. Malformed datagrams are simply not replies.
func IsDiscoverReply(data []byte) bool {
	packet, err := ParsePacket(data)
	if err != nil {
		return false
	}
	return packet.Type == PacketTypeDiscoverReply
}

// Tag is a single tag-length-value block from a discover payload.
type Tag struct {
	ID    uint8
	Value []byte
}

// ParseTags splits a discover payload into its TLV blocks.
func ParseTags(payload []byte) ([]Tag, error) {
	var tags []Tag
	for offset := 0; offset < len(payload); {
		if len(payload)-offset < 2 {
			return nil, fmt.Errorf("truncated tag header at offset %d", offset)
		}
		id := payload[offset]
		length := int(payload[offset+1])
		offset += 2

		if len(payload)-offset < length {
			return nil, fmt.Errorf("tag 0x%02x declares %d value bytes, %d remain", id, length, len(payload)-offset)
		}
		tags = append(tags, Tag{ID: id, Value: payload[offset : offset+length]})
		offset += length
	}
	return tags, nil
}
