// Package host implements the clients for the audio host's collaborator
// contracts: temporary source registration and the active-routes view
// over HTTP, and PCM delivery over WebSocket.
//
// The bridge core only sees the interfaces declared in internal/bridge;
// this package provides the concrete wire implementations and is the only
// place that knows the host's endpoint shapes.
package host
