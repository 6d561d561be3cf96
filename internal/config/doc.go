// Package config persists logbeacon settings in a small TOML file.
//
// # Overview
//
// The file holds string key/value pairs grouped into sections. Store exposes
// them through LoadString and SaveString; LoadSettings layers validation on
// top and returns typed Settings.
//
// # File Format
//
// Default location: ~/.config/logbeacon/logbeacon.toml
//
//	[watcher]
//	log_path = '/opt/backrest/backrest.log'
//	monitor_interval_ms = '1500'
//	ack_popup_seconds = '2.500'
//	ack_offset = '0'
//
//	[ui]
//	theme = 'Nightfox'
//
// Values are written as strings. Numbers typed by hand without quotes are
// read back as their decimal text, so either form works.
//
// # Validation
//
//   - log_path: empty means backrest.log next to the executable
//   - monitor_interval_ms: default 1500, floor 500
//   - ack_popup_seconds: default 2.5, clamped to [0.5, 30]
//   - ack_offset: default 0
//   - theme: default Nightfox
//
// A value that is missing or does not parse is replaced by its default and
// written back at once. A value outside its range is clamped and written
// back. The popup duration is only rewritten when clamping moved it by more
// than half a millisecond.
//
// # Error Handling
//
// A missing file is an empty store. A file that is not valid TOML is an error
// ("parse config: ..."). Writes go through a temporary file and a rename so a
// crash never leaves a half-written config.
package config
