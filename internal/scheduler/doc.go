// Package scheduler drives the watch state machine from a single goroutine.
//
// Run owns the watch.State for its whole lifetime. Scan ticks, blink ticks,
// file-change hints and user commands are all handled by one select loop, so
// the state never needs a lock. Other goroutines talk to the loop through the
// command methods and read state from published Snapshots.
package scheduler
