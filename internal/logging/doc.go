// Package logging builds the zap logger shared by all logbeacon components.
//
// The level comes from the --log-level flag, falling back to the
// LOGBEACON_LOG_LEVEL environment variable, then INFO. The terminal UI writes
// logs to a file so they never land on the screen; headless mode writes to
// stderr.
package logging
