// Package notify holds the non-interactive presentation of the watch state:
// a logging sink for headless runs and the icon projection shared with the
// terminal UI.
package notify
