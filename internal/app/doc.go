// Package app is the composition root for logbeacon.
//
// Run wires the pieces together and blocks:
//
//	instance.Acquire()      single-instance pid file
//	config.Open()           ~/.config/logbeacon/logbeacon.toml
//	  LoadSettings()        defaults substituted and written back
//	watch.New()             detection state, persisted through the config store
//	scheduler.New().Run()   one goroutine owning the state
//	ui.Run()                Bubble Tea front end (or wait for ctx when headless)
//
// In TUI mode the watch state reports to both a state.Store, which the UI
// polls, and a notify.LogSink writing to the log file. Headless runs use the
// LogSink alone.
//
// On Unix a running instance acknowledges when it receives SIGUSR1, which is
// what the ack subcommand sends. Scan and Acknowledge are the offline
// counterparts used by the CLI when no instance is running.
//
// Configuration and lock failures are returned from Run before monitoring
// starts. Once monitoring runs, persistence failures are logged and ignored.
package app
