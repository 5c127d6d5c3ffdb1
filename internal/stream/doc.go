// Package stream supervises the decode processes behind active channels.
//
// Each active channel tag owns one Session: an external decoder (ffmpeg)
// reading the channel's live stream URL at native rate and writing raw
// interleaved PCM to an OS pipe. The Supervisor starts sessions on demand,
// serves bounded non-blocking reads from the pipe, detects process death
// and end-of-stream, and tears sessions down idempotently.
//
// # Polling Model
//
// Poll never blocks longer than 10ms. The caller's loop performs one poll
// per session per tick, so a stuck decoder costs other sessions nothing
// beyond that window. Reads are capped to one chunk of the fixed PCM
// format; chunk framing integrity is the caller's concern (only
// exact-size reads are forwarded).
//
// # Lifecycle
//
//	Idle -> Starting -> Running -> Idle        (clean stop or EOF)
//	                           \-> Restarting  (reconciler restarts a dead
//	                                            session that is still routed)
//
// Stop is idempotent and safe from any goroutine: double-stop,
// double-close, and stop-of-nonexistent-session are no-ops.
package stream
