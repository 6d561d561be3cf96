// Package instance keeps a single watcher running per user and lets other
// invocations reach it.
package instance
