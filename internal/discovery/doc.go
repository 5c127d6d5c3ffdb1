// Package discovery locates HDHomeRun tuners on the local network.
//
// Three independent strategies are implemented, each producing a verified
// ip -> friendlyName map:
//
//  1. mDNS: listen for "_hdhomerun._tcp" service announcements for a
//     bounded window.
//  2. UDP broadcast: send the wire-format discover datagram to the
//     broadcast address on port 65001 and collect replies.
//  3. Subnet sweep: probe every host of the local /24 with a bounded
//     worker pool.
//
// The Orchestrator runs them in that priority order and merges results
// first-writer-wins; the sweep only runs when the cheaper strategies found
// nothing.
//
// Every candidate IP is confirmed through the Verifier (an HTTP probe of
// the device descriptor) before it is accepted, so a stray responder on
// the discovery port cannot enter the device map.
//
// # Error Handling
//
// Strategies never return errors. Resolver failures, socket errors, and
// unreachable candidates are logged and contribute an empty result;
// discovery as a whole must keep working across arbitrary individual
// failures.
//
// # Network Requirements
//
//   - mDNS needs multicast support (UDP port 5353)
//   - Broadcast discovery needs SO_BROADCAST and UDP port 65001
//   - Devices must be on the same local network segment
package discovery
