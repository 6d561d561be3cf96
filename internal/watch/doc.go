// Package watch holds the alert detection state for a single log file.
//
// # Overview
//
// A State remembers three numbers about the monitored file: the size seen on
// the last tick (lastOffset), the offset up to which the user acknowledged
// alerts (ackOffset), and whether an unacknowledged marker is pending
// (hasAlert). Every transition reads the file size once, scans at most the
// bytes that are new, and closes the file before returning.
//
// # Transitions
//
//	Rescan       startup and path change: scan [ackOffset, size)
//	Tick         periodic: scan [lastOffset, size) only
//	Acknowledge  ackOffset = lastOffset, clear the alert
//	SetPath      persist the new path, ackOffset = 0, Rescan
//
// Alert lifecycle per file incarnation:
//
//	NO_ALERT      --marker in new bytes-->  ALERT_PENDING
//	ALERT_PENDING --Acknowledge-->          NO_ALERT
//	ALERT_PENDING --file shrank-->          NO_ALERT  (not acknowledged)
//	NO_ALERT      --file missing-->         NO_ALERT  (lastOffset reset)
//
// An unchanged size causes no transition and no I/O beyond the size read.
//
// # Rotation
//
// When the size drops below lastOffset the file is treated as a new
// incarnation: lastOffset returns to 0, the pending alert is dropped, and
// ackOffset is clamped to 0 if it now points past the end. The next Tick
// scans the new contents from byte 0.
//
// # Failures
//
// Nothing in this package returns an error for expected conditions. Each
// call returns a Result whose Outcome says what happened. A failed seek or
// read leaves lastOffset where it was so the same range is scanned again on
// the next tick. Persistence failures are logged and the in-memory state
// stays authoritative.
//
// # Concurrency
//
// State does no locking. The scheduler goroutine owns it; other goroutines
// see it only through Snapshot values.
package watch
