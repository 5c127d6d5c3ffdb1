// Package protocol implements the HDHomeRun UDP control wire format.
//
// This package handles construction and parsing of the binary discovery
// datagrams exchanged with HDHomeRun tuners on UDP port 65001. Only the
// discovery subset of the protocol is implemented; everything else the
// bridge needs from a device is served over plain HTTP.
//
// # Datagram Overview
//
// Control datagrams have this structure:
//   - Packet type: 2 bytes (big-endian)
//   - Payload length: 2 bytes (big-endian)
//   - Payload: tag-length-value blocks
//
// A discover request carries two wildcard TLV blocks (device ID and device
// type, both 0xFFFFFFFF) so every tuner on the segment answers.
//
// # Usage Example
//
//	packet := protocol.BuildDiscoverRequest()
//	conn.WriteTo(packet, broadcastAddr)
//
//	n, addr, _ := conn.ReadFrom(buf)
//	if protocol.IsDiscoverReply(buf[:n]) {
//	    // addr hosts a candidate device
//	}
//
// # Thread Safety
//
// All construction and parsing functions are stateless and safe for
// concurrent use.
package protocol
