package watch

// Outcome classifies what a tick or rescan observed. Missing files, shrinking
// files and unmatched scans are ordinary outcomes, not errors.
type Outcome int

const (
	// OutcomeUnchanged means the file size matched the last tick.
	OutcomeUnchanged Outcome = iota
	// OutcomeGrew means new bytes were scanned.
	OutcomeGrew
	// OutcomeRotated means the file shrank and tracking restarted.
	OutcomeRotated
	// OutcomeMissing means the file could not be opened.
	OutcomeMissing
	// OutcomeStatFailed means the file opened but its size could not be read.
	OutcomeStatFailed
	// OutcomeScanFailed means a seek or read failed mid-scan; the range is
	// retried on the next tick.
	OutcomeScanFailed
	// OutcomeRescanned means a full rescan of the unacknowledged tail completed.
	OutcomeRescanned
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeGrew:
		return "grew"
	case OutcomeRotated:
		return "rotated"
	case OutcomeMissing:
		return "missing"
	case OutcomeStatFailed:
		return "stat-failed"
	case OutcomeScanFailed:
		return "scan-failed"
	case OutcomeRescanned:
		return "rescanned"
	default:
		return "unknown"
	}
}

// Result reports one Tick or Rescan.
type Result struct {
	Outcome Outcome
	Scanned uint64 // bytes read by the scanner
	Size    uint64 // file size observed, when known
	Raised  bool   // an alert was newly raised
}
