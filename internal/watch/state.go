package watch

import (
	"io"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/five82/logbeacon/internal/scan"
)

// Product name shown in tooltips.
const productName = "logbeacon"

// File is the subset of *os.File the state machine needs.
type File interface {
	io.ReadSeeker
	io.Closer
	Stat() (fs.FileInfo, error)
}

// OpenFunc opens the monitored file for one scan.
type OpenFunc func(path string) (File, error)

// OpenFile opens path read-only. It is the default OpenFunc.
func OpenFile(path string) (File, error) {
	return os.Open(path)
}

// Sink receives presentation updates.
type Sink interface {
	OnStateChanged(hasAlert bool, tooltip string)
	OnAcknowledged()
}

// Persister stores the parts of the state that survive a restart.
type Persister interface {
	SaveAckOffset(offset uint64) error
	SaveLogPath(path string) error
}

// Options configure a State.
type Options struct {
	Path      string
	AckOffset uint64
	Scanner   *scan.Scanner
	Open      OpenFunc
	Persister Persister
	Sink      Sink
	Logger    *zap.Logger
}

// Snapshot is a value copy of the detection state.
type Snapshot struct {
	Path         string
	LastOffset   uint64
	AckOffset    uint64
	HasAlert     bool
	BlinkPhase   bool
	BytesScanned uint64
}

// Tooltip returns the status text for the snapshot.
func (s Snapshot) Tooltip() string {
	return Tooltip(s.HasAlert)
}

// Tooltip returns the status line for the given alert flag.
func Tooltip(hasAlert bool) string {
	if hasAlert {
		return productName + ": ALERT"
	}
	return productName + ": OK"
}

// State tracks one monitored file. It is owned by a single goroutine and
// does no locking.
type State struct {
	path       string
	lastOffset uint64
	ackOffset  uint64
	hasAlert   bool
	blinkPhase bool
	scanned    uint64

	scanner *scan.Scanner
	open    OpenFunc
	persist Persister
	sink    Sink
	logger  *zap.Logger
}

// New builds a State from persisted values. Call Rescan before the first Tick.
func New(opts Options) *State {
	s := &State{
		path:       opts.Path,
		ackOffset:  opts.AckOffset,
		blinkPhase: true,
		scanner:    opts.Scanner,
		open:       opts.Open,
		persist:    opts.Persister,
		sink:       opts.Sink,
		logger:     opts.Logger,
	}
	if s.scanner == nil {
		s.scanner = scan.Default()
	}
	if s.open == nil {
		s.open = OpenFile
	}
	if s.sink == nil {
		s.sink = nopSink{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Path:         s.path,
		LastOffset:   s.lastOffset,
		AckOffset:    s.ackOffset,
		HasAlert:     s.hasAlert,
		BlinkPhase:   s.blinkPhase,
		BytesScanned: s.scanned,
	}
}

// Path returns the monitored file path.
func (s *State) Path() string { return s.path }

// HasAlert reports whether an unacknowledged marker is pending.
func (s *State) HasAlert() bool { return s.hasAlert }

// Rescan recomputes the alert flag from the unacknowledged tail of the file.
// It runs at startup and after a path change.
func (s *State) Rescan() Result {
	s.lastOffset = 0
	s.hasAlert = false
	s.blinkPhase = true
	defer s.refresh()

	f, err := s.open(s.path)
	if err != nil {
		s.logger.Debug("log file unavailable", zap.String("path", s.path), zap.Error(err))
		return Result{Outcome: OutcomeMissing}
	}
	defer func() { _ = f.Close() }()

	size, err := fileSize(f)
	if err != nil {
		s.logger.Warn("read log size failed", zap.String("path", s.path), zap.Error(err))
		s.lastOffset = s.ackOffset
		return Result{Outcome: OutcomeStatFailed}
	}

	if s.ackOffset > size {
		s.logger.Info("acknowledged offset beyond file size, rescanning from start",
			zap.Uint64("ack_offset", s.ackOffset),
			zap.Uint64("size", size))
		s.setAckOffset(0)
	}

	res := s.scanner.Scan(f, s.ackOffset, size)
	s.scanned += res.Scanned
	if res.Err != nil {
		s.logger.Warn("rescan failed", zap.String("path", s.path), zap.Error(res.Err))
		s.lastOffset = s.ackOffset
		return Result{Outcome: OutcomeScanFailed, Scanned: res.Scanned, Size: size}
	}

	s.hasAlert = res.Found
	s.lastOffset = size
	return Result{Outcome: OutcomeRescanned, Scanned: res.Scanned, Size: size, Raised: res.Found}
}

// Tick scans only the bytes appended since the previous tick.
func (s *State) Tick() Result {
	f, err := s.open(s.path)
	if err != nil {
		if s.hasAlert {
			s.hasAlert = false
			s.blinkPhase = true
			s.refresh()
		}
		s.lastOffset = 0
		return Result{Outcome: OutcomeMissing}
	}
	defer func() { _ = f.Close() }()

	size, err := fileSize(f)
	if err != nil {
		s.logger.Warn("read log size failed", zap.String("path", s.path), zap.Error(err))
		return Result{Outcome: OutcomeStatFailed}
	}

	switch {
	case size < s.lastOffset:
		s.logger.Info("log file shrank, treating as rotation",
			zap.String("path", s.path),
			zap.Uint64("last_offset", s.lastOffset),
			zap.Uint64("size", size))
		if s.ackOffset > size {
			s.setAckOffset(0)
		}
		s.lastOffset = 0
		s.hasAlert = false
		s.blinkPhase = true
		s.refresh()
		return Result{Outcome: OutcomeRotated, Size: size}

	case size > s.lastOffset:
		res := s.scanner.Scan(f, s.lastOffset, size)
		s.scanned += res.Scanned
		if res.Err != nil {
			s.logger.Warn("scan failed, retrying next tick",
				zap.String("path", s.path),
				zap.Uint64("from", s.lastOffset),
				zap.Error(res.Err))
			return Result{Outcome: OutcomeScanFailed, Scanned: res.Scanned, Size: size}
		}
		raised := false
		if res.Found && !s.hasAlert {
			s.hasAlert = true
			s.blinkPhase = true
			raised = true
		}
		s.lastOffset = size
		if raised {
			s.refresh()
		}
		return Result{Outcome: OutcomeGrew, Scanned: res.Scanned, Size: size, Raised: raised}

	default:
		return Result{Outcome: OutcomeUnchanged, Size: size}
	}
}

// Acknowledge marks everything scanned so far as seen.
func (s *State) Acknowledge() {
	s.setAckOffset(s.lastOffset)
	s.hasAlert = false
	s.blinkPhase = true
	s.refresh()
	s.sink.OnAcknowledged()
}

// SetPath switches to a new file, discarding the previous acknowledgment, and
// rescans it from the beginning.
func (s *State) SetPath(path string) Result {
	s.path = path
	if s.persist != nil {
		if err := s.persist.SaveLogPath(path); err != nil {
			s.logger.Warn("persist log path failed", zap.String("path", path), zap.Error(err))
		}
	}
	s.setAckOffset(0)
	return s.Rescan()
}

// ToggleBlink advances the presentation blink phase. While no alert is
// pending the phase rests at true. It reports whether the phase changed.
func (s *State) ToggleBlink() bool {
	if s.hasAlert {
		s.blinkPhase = !s.blinkPhase
		return true
	}
	if !s.blinkPhase {
		s.blinkPhase = true
		return true
	}
	return false
}

func (s *State) setAckOffset(offset uint64) {
	s.ackOffset = offset
	if s.persist == nil {
		return
	}
	if err := s.persist.SaveAckOffset(offset); err != nil {
		s.logger.Warn("persist acknowledged offset failed", zap.Uint64("offset", offset), zap.Error(err))
	}
}

func (s *State) refresh() {
	s.sink.OnStateChanged(s.hasAlert, Tooltip(s.hasAlert))
}

func fileSize(f File) (uint64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if info.Size() < 0 {
		return 0, nil
	}
	return uint64(info.Size()), nil
}

type nopSink struct{}

func (nopSink) OnStateChanged(bool, string) {}
func (nopSink) OnAcknowledged()             {}
