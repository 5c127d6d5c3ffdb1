// Package logging provides structured logging for the HDHomeRun radio bridge.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the bridge. It provides both general logging
// functions and specialized functions for discovery and streaming events.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (hex dumps of discovery datagrams, pipe reads)
//   - Info: Normal operations (devices found, streams started/stopped)
//   - Warn: Non-fatal issues (partial PCM reads, unreachable devices)
//   - Error: Fatal issues (startup failures, decoder launch errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Channel registered",
//	    zap.String("tag", "hdhomerun_192_168_1_100_95_5"),
//	    zap.String("name", "Jazz FM"),
//	)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When no level is configured (flag or HDHRADIO_LOG_LEVEL), logging is
// silent so CLI command output stays clean.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
