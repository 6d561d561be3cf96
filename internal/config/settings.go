package config

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Section and key names of the persisted configuration.
const (
	SectionWatcher = "watcher"
	SectionUI      = "ui"

	KeyLogPath         = "log_path"
	KeyMonitorInterval = "monitor_interval_ms"
	KeyAckPopupSeconds = "ack_popup_seconds"
	KeyAckOffset       = "ack_offset"
	KeyTheme           = "theme"
)

// Limits and defaults.
const (
	DefaultInterval      = 1500 * time.Millisecond
	MinInterval          = 500 * time.Millisecond
	MaxInterval          = time.Duration(math.MaxUint32) * time.Millisecond
	DefaultPopupDuration = 2500 * time.Millisecond
	MinPopupDuration     = 500 * time.Millisecond
	MaxPopupDuration     = 30 * time.Second
	DefaultTheme         = "Nightfox"
	DefaultLogFileName   = "backrest.log"
)

// popupTolerance is how far a stored duration may drift from its clamped value
// before it is rewritten.
const popupTolerance = 0.0005

// Settings are the validated values the watcher runs with.
type Settings struct {
	LogPath       string
	Interval      time.Duration
	PopupDuration time.Duration
	AckOffset     uint64
	Theme         string
}

// DefaultLogPath returns backrest.log next to the running executable.
func DefaultLogPath() string {
	exe, err := os.Executable()
	if err != nil {
		return mustExpand(DefaultLogFileName)
	}
	return filepath.Join(filepath.Dir(exe), DefaultLogFileName)
}

// LoadSettings reads every setting, replacing absent or malformed values with
// defaults and clamping out-of-range values. The log path has a leading ~
// expanded and is made absolute. Corrected values are written
// back immediately. The returned error reports a failed write; the settings
// are usable regardless.
func (s *Store) LoadSettings(defaultLogPath string) (Settings, error) {
	var firstErr error
	save := func(section, key, value string) {
		if err := s.SaveString(section, key, value); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	var out Settings

	rawPath := strings.TrimSpace(s.LoadString(SectionWatcher, KeyLogPath, ""))
	if rawPath == "" {
		out.LogPath = mustExpand(defaultLogPath)
		save(SectionWatcher, KeyLogPath, out.LogPath)
	} else {
		out.LogPath = mustExpand(rawPath)
		if out.LogPath != rawPath {
			save(SectionWatcher, KeyLogPath, out.LogPath)
		}
	}

	rawInterval := s.LoadString(SectionWatcher, KeyMonitorInterval, "")
	ms, err := strconv.ParseUint(strings.TrimSpace(rawInterval), 10, 64)
	switch {
	case err != nil:
		out.Interval = DefaultInterval
		save(SectionWatcher, KeyMonitorInterval, formatMillis(out.Interval))
	default:
		out.Interval = ClampInterval(millis(ms))
		if out.Interval != millis(ms) {
			save(SectionWatcher, KeyMonitorInterval, formatMillis(out.Interval))
		}
	}

	rawPopup := strings.TrimSpace(s.LoadString(SectionWatcher, KeyAckPopupSeconds, ""))
	seconds, err := strconv.ParseFloat(rawPopup, 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		out.PopupDuration = DefaultPopupDuration
		save(SectionWatcher, KeyAckPopupSeconds, FormatSeconds(out.PopupDuration))
	} else {
		clamped := math.Max(MinPopupDuration.Seconds(), math.Min(seconds, MaxPopupDuration.Seconds()))
		out.PopupDuration = ClampPopupDuration(time.Duration(math.Round(clamped*1000)) * time.Millisecond)
		if math.Abs(clamped-seconds) > popupTolerance {
			save(SectionWatcher, KeyAckPopupSeconds, FormatSeconds(out.PopupDuration))
		}
	}

	rawOffset := strings.TrimSpace(s.LoadString(SectionWatcher, KeyAckOffset, ""))
	offset, err := strconv.ParseUint(rawOffset, 10, 64)
	if err != nil {
		offset = 0
		save(SectionWatcher, KeyAckOffset, "0")
	}
	out.AckOffset = offset

	out.Theme = strings.TrimSpace(s.LoadString(SectionUI, KeyTheme, ""))
	if out.Theme == "" {
		out.Theme = DefaultTheme
		save(SectionUI, KeyTheme, out.Theme)
	}

	return out, firstErr
}

// SaveAckOffset persists the acknowledged offset.
func (s *Store) SaveAckOffset(offset uint64) error {
	return s.SaveString(SectionWatcher, KeyAckOffset, strconv.FormatUint(offset, 10))
}

// SaveLogPath persists the monitored file path.
func (s *Store) SaveLogPath(path string) error {
	return s.SaveString(SectionWatcher, KeyLogPath, path)
}

// SaveInterval persists the scan interval after clamping it.
func (s *Store) SaveInterval(d time.Duration) error {
	return s.SaveString(SectionWatcher, KeyMonitorInterval, formatMillis(ClampInterval(d)))
}

// SaveTheme persists the UI theme name.
func (s *Store) SaveTheme(name string) error {
	return s.SaveString(SectionUI, KeyTheme, name)
}

// ClampInterval enforces the polling floor and the timer ceiling.
func ClampInterval(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}
	if d > MaxInterval {
		return MaxInterval
	}
	return d
}

// ClampPopupDuration keeps the acknowledgment popup between 0.5s and 30s.
func ClampPopupDuration(d time.Duration) time.Duration {
	if d < MinPopupDuration {
		return MinPopupDuration
	}
	if d > MaxPopupDuration {
		return MaxPopupDuration
	}
	return d
}

// FormatSeconds renders d as decimal seconds with millisecond precision.
func FormatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

// millis maps values past the ceiling just beyond it so that ClampInterval
// changes them and they get rewritten.
func millis(ms uint64) time.Duration {
	if ms > uint64(MaxInterval/time.Millisecond) {
		return MaxInterval + time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

func formatMillis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}
