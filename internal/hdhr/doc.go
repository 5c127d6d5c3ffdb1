// Package hdhr talks to HDHomeRun tuners over their HTTP API.
//
// It covers the two requests the bridge needs: the /discover.json probe
// that verifies a candidate IP actually hosts a tuner, and the
// /lineup.json request that yields the channel lineup. It also carries the
// radio-station heuristic and the tag derivation that gives every channel
// a stable identity across lineup refreshes.
//
// # Probing
//
//	client := hdhr.NewClient()
//	if client.Verify("192.168.1.100") {
//	    device, _ := client.Describe("192.168.1.100")
//	    channels := client.FetchLineup(device)
//	}
//
// # Error Handling
//
// Probe and lineup failures are expected during discovery (most subnet
// hosts are not tuners), so every method reports failure as a negative
// result instead of an error. Callers never need to recover.
package hdhr
