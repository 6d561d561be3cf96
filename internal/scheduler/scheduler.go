package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/five82/logbeacon/internal/config"
	"github.com/five82/logbeacon/internal/watch"
)

// DefaultBlinkInterval is the period of the presentation blink toggle.
const DefaultBlinkInterval = 500 * time.Millisecond

// ErrStopped is returned by command methods once Run has returned.
var ErrStopped = errors.New("scheduler stopped")

// IntervalSaver persists the scan interval.
type IntervalSaver interface {
	SaveInterval(d time.Duration) error
}

// Snapshot is the state published after every event.
type Snapshot struct {
	watch.Snapshot
	Interval time.Duration
}

// Options configure a Scheduler.
type Options struct {
	State         *watch.State
	Interval      time.Duration
	BlinkInterval time.Duration
	Clock         Clock
	IntervalSaver IntervalSaver
	// Observer receives a Snapshot after each event. It runs on the scheduler
	// goroutine and must not block.
	Observer func(Snapshot)
	// Hints enables file-system notifications as an early trigger for ticks.
	Hints  bool
	Logger *zap.Logger
}

type commandKind int

const (
	cmdSnapshot commandKind = iota
	cmdAcknowledge
	cmdSetPath
	cmdSetInterval
)

type command struct {
	kind     commandKind
	path     string
	interval time.Duration
	reply    chan Snapshot
}

// Scheduler runs scan and blink timers against a watch.State.
type Scheduler struct {
	state    *watch.State
	interval time.Duration
	blink    time.Duration
	clock    Clock
	saver    IntervalSaver
	observer func(Snapshot)
	useHints bool
	logger   *zap.Logger

	// limiter keeps hint-triggered ticks at or below the polling floor.
	limiter *rate.Limiter
	scanT   Ticker
	hints   *hintWatcher

	cmds chan command
	done chan struct{}
}

// New builds a Scheduler. Run must be called to start it.
func New(opts Options) *Scheduler {
	s := &Scheduler{
		state:    opts.State,
		interval: config.ClampInterval(opts.Interval),
		blink:    opts.BlinkInterval,
		clock:    opts.Clock,
		saver:    opts.IntervalSaver,
		observer: opts.Observer,
		useHints: opts.Hints,
		logger:   opts.Logger,
		limiter:  rate.NewLimiter(rate.Every(config.MinInterval), 1),
		cmds:     make(chan command),
		done:     make(chan struct{}),
	}
	if opts.Interval <= 0 {
		s.interval = config.DefaultInterval
	}
	if s.blink <= 0 {
		s.blink = DefaultBlinkInterval
	}
	if s.clock == nil {
		s.clock = RealClock()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Run performs the startup rescan and then services ticks and commands until
// ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	defer close(s.done)

	s.logResult("startup rescan", s.state.Rescan())
	s.publish()

	s.scanT = s.clock.NewTicker(s.interval)
	defer s.scanT.Stop()
	blinkT := s.clock.NewTicker(s.blink)
	defer blinkT.Stop()

	if s.useHints {
		hw, err := newHintWatcher(s.state.Path())
		if err != nil {
			s.logger.Warn("file notifications unavailable, polling only", zap.Error(err))
		} else {
			s.hints = hw
			defer func() { _ = hw.close() }()
		}
	}

	s.logger.Info("monitoring started",
		zap.String("path", s.state.Path()),
		zap.Duration("interval", s.interval))

	for {
		hintEvents, hintErrs := s.hintChannels()
		select {
		case <-ctx.Done():
			s.logger.Info("monitoring stopped")
			return nil

		case <-s.scanT.C():
			s.tick("tick")

		case <-blinkT.C():
			if s.state.ToggleBlink() {
				s.publish()
			}

		case ev, ok := <-hintEvents:
			if !ok {
				s.hints = nil
				continue
			}
			if s.hints.relevant(ev) && s.limiter.Allow() {
				s.tick("file event")
			}

		case err, ok := <-hintErrs:
			if !ok {
				s.hints = nil
				continue
			}
			s.logger.Warn("file notification error", zap.Error(err))

		case cmd := <-s.cmds:
			s.handle(cmd)
		}
	}
}

// Acknowledge marks everything scanned so far as seen.
func (s *Scheduler) Acknowledge(ctx context.Context) (Snapshot, error) {
	return s.send(ctx, command{kind: cmdAcknowledge})
}

// SetPath switches the monitored file and rescans it from the start.
func (s *Scheduler) SetPath(ctx context.Context, path string) (Snapshot, error) {
	return s.send(ctx, command{kind: cmdSetPath, path: path})
}

// SetInterval reprograms the scan ticker. The value is clamped to the
// polling floor and persisted. Detection state is kept.
func (s *Scheduler) SetInterval(ctx context.Context, d time.Duration) (Snapshot, error) {
	return s.send(ctx, command{kind: cmdSetInterval, interval: d})
}

// Snapshot returns the current state.
func (s *Scheduler) Snapshot(ctx context.Context) (Snapshot, error) {
	return s.send(ctx, command{kind: cmdSnapshot})
}

// Done is closed when Run returns.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

func (s *Scheduler) send(ctx context.Context, cmd command) (Snapshot, error) {
	cmd.reply = make(chan Snapshot, 1)
	select {
	case s.cmds <- cmd:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-s.done:
		return Snapshot{}, ErrStopped
	}
	select {
	case snap := <-cmd.reply:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (s *Scheduler) handle(cmd command) {
	switch cmd.kind {
	case cmdAcknowledge:
		s.state.Acknowledge()
		s.logger.Info("alert acknowledged", zap.Uint64("ack_offset", s.state.Snapshot().AckOffset))
		s.publish()

	case cmdSetPath:
		s.logger.Info("log path changed", zap.String("path", cmd.path))
		s.logResult("path change rescan", s.state.SetPath(cmd.path))
		if s.hints != nil {
			if err := s.hints.retarget(cmd.path); err != nil {
				s.logger.Warn("file notifications unavailable for new path", zap.Error(err))
			}
		}
		s.publish()

	case cmdSetInterval:
		s.interval = config.ClampInterval(cmd.interval)
		s.scanT.Reset(s.interval)
		if s.saver != nil {
			if err := s.saver.SaveInterval(s.interval); err != nil {
				s.logger.Warn("persist interval failed", zap.Error(err))
			}
		}
		s.logger.Info("scan interval changed", zap.Duration("interval", s.interval))
		s.publish()
	}
	cmd.reply <- s.snapshot()
}

func (s *Scheduler) tick(trigger string) {
	s.logResult(trigger, s.state.Tick())
	s.publish()
}

func (s *Scheduler) logResult(trigger string, res watch.Result) {
	fields := []zap.Field{
		zap.String("trigger", trigger),
		zap.Stringer("outcome", res.Outcome),
		zap.Uint64("scanned", res.Scanned),
		zap.Uint64("size", res.Size),
	}
	if res.Raised {
		s.logger.Info("alert marker found", fields...)
		return
	}
	s.logger.Debug("scan complete", fields...)
}

func (s *Scheduler) hintChannels() (<-chan fsnotify.Event, <-chan error) {
	if s.hints == nil {
		return nil, nil
	}
	return s.hints.events(), s.hints.errs()
}

func (s *Scheduler) snapshot() Snapshot {
	return Snapshot{Snapshot: s.state.Snapshot(), Interval: s.interval}
}

func (s *Scheduler) publish() {
	if s.observer != nil {
		s.observer(s.snapshot())
	}
}
