package notify

import (
	"sync"

	"go.uber.org/zap"
)

// IconState is the icon a front end should currently show.
type IconState int

const (
	IconNormal IconState = iota
	IconAlert
)

func (i IconState) String() string {
	if i == IconAlert {
		return "alert"
	}
	return "normal"
}

// Icon projects the alert flag and blink phase onto an icon. The alert icon
// shows only on the "on" half of the blink cycle.
func Icon(hasAlert, blinkPhase bool) IconState {
	if hasAlert && blinkPhase {
		return IconAlert
	}
	return IconNormal
}

// LogSink reports state changes through a zap logger. Repeated refreshes
// with an unchanged alert flag are logged at debug level only.
type LogSink struct {
	logger *zap.Logger

	mu      sync.Mutex
	known   bool
	alert   bool
	tooltip string
	acks    int
}

// NewLogSink returns a sink writing to logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// OnStateChanged implements watch.Sink.
func (s *LogSink) OnStateChanged(hasAlert bool, tooltip string) {
	s.mu.Lock()
	repeat := s.known && s.alert == hasAlert
	s.known = true
	s.alert = hasAlert
	s.tooltip = tooltip
	s.mu.Unlock()

	if repeat {
		s.logger.Debug("state refreshed", zap.Bool("alert", hasAlert))
		return
	}
	if hasAlert {
		s.logger.Warn("alert raised", zap.String("status", tooltip))
		return
	}
	s.logger.Info("status ok", zap.String("status", tooltip))
}

// OnAcknowledged implements watch.Sink.
func (s *LogSink) OnAcknowledged() {
	s.mu.Lock()
	s.acks++
	s.mu.Unlock()
	s.logger.Info("Acknowledged. Monitoring continues from current log position.")
}

// Tooltip returns the most recent status text.
func (s *LogSink) Tooltip() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tooltip
}

// Acknowledgments returns how many acknowledgments have been reported.
func (s *LogSink) Acknowledgments() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acks
}
