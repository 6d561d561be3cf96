package ui

import "time"

// Layout thresholds.
const (
	// LayoutCompactWidth is the width below which the header drops offsets.
	LayoutCompactWidth = 90

	// headerLines is the number of rows used by header and footer together.
	headerLines = 3
)

// Preview limits.
const (
	// PreviewLines is how many trailing log lines the preview keeps.
	PreviewLines = 500
)

// Timing constants.
const (
	// DefaultRefresh is how often the UI pulls a new snapshot. It is shorter
	// than the blink period so the alert icon visibly flashes.
	DefaultRefresh = 250 * time.Millisecond

	// CommandTimeout bounds a single request to the scheduler.
	CommandTimeout = 2 * time.Second
)
