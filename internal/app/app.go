package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/logbeacon/internal/config"
	"github.com/five82/logbeacon/internal/instance"
	"github.com/five82/logbeacon/internal/notify"
	"github.com/five82/logbeacon/internal/scan"
	"github.com/five82/logbeacon/internal/scheduler"
	"github.com/five82/logbeacon/internal/state"
	"github.com/five82/logbeacon/internal/ui"
	"github.com/five82/logbeacon/internal/watch"
)

// Options configure a logbeacon run.
type Options struct {
	ConfigPath string // empty uses ~/.config/logbeacon/logbeacon.toml
	PIDPath    string // empty uses instance.DefaultPath()

	// LogPath and Interval override the persisted values and are saved.
	LogPath  string
	Interval time.Duration

	Headless     bool
	DisableHints bool
	Logger       *zap.Logger

	// Clock and Observer are used by tests and embedders.
	Clock    scheduler.Clock
	Observer func(scheduler.Snapshot)
}

// Run acquires the single-instance lock and monitors the log until ctx is
// cancelled or, in TUI mode, the user quits.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Subscribe before the pid file exists so an early acknowledge request
	// cannot hit the default signal action.
	ackSignals := make(chan os.Signal, 1)
	if sigs := instance.AcknowledgeSignals(); len(sigs) > 0 {
		signal.Notify(ackSignals, sigs...)
		defer signal.Stop(ackSignals)
	}

	pidPath := opts.PIDPath
	if pidPath == "" {
		pidPath = instance.DefaultPath()
	}
	lock, err := instance.Acquire(pidPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release pid file failed", zap.Error(err))
		}
	}()

	store, settings, err := loadSettings(opts.ConfigPath, logger)
	if err != nil {
		return err
	}
	settings = applyOverrides(store, settings, opts, logger)

	var (
		uiStore *state.Store
		sink    watch.Sink
	)
	logSink := notify.NewLogSink(logger.Named("notify"))
	if opts.Headless {
		sink = logSink
	} else {
		uiStore = &state.Store{}
		sink = fanout{uiStore, logSink}
	}

	ws := watch.New(watch.Options{
		Path:      settings.LogPath,
		AckOffset: settings.AckOffset,
		Scanner:   scan.Default(),
		Persister: store,
		Sink:      sink,
		Logger:    logger.Named("watch"),
	})

	observer := opts.Observer
	if uiStore != nil {
		observer = chainObservers(uiStore.Update, opts.Observer)
	}
	sched := scheduler.New(scheduler.Options{
		State:         ws,
		Interval:      settings.Interval,
		Clock:         opts.Clock,
		IntervalSaver: store,
		Observer:      observer,
		Hints:         !opts.DisableHints,
		Logger:        logger.Named("scheduler"),
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	schedErr := make(chan error, 1)
	go func() { schedErr <- sched.Run(runCtx) }()
	go acknowledgeOnSignal(runCtx, ackSignals, sched, logger)

	if opts.Headless {
		<-runCtx.Done()
		return <-schedErr
	}

	uiErr := ui.Run(ui.Options{
		Context:       runCtx,
		Controller:    sched,
		Store:         uiStore,
		Marker:        scan.DefaultMarker,
		PopupDuration: settings.PopupDuration,
		ThemeName:     settings.Theme,
		ThemeSaver:    store,
		Logger:        logger.Named("ui"),
	})
	cancel()
	err = <-schedErr
	if uiErr != nil && !(errors.Is(uiErr, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return fmt.Errorf("run ui: %w", uiErr)
	}
	return err
}

// Scan performs one full rescan from the persisted state without starting
// the scheduler. The rescan only writes the acknowledged offset when it
// exceeds the file size.
func Scan(opts Options) (watch.Snapshot, watch.Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store, settings, err := loadSettings(opts.ConfigPath, logger)
	if err != nil {
		return watch.Snapshot{}, watch.Result{}, err
	}
	wopts := watch.Options{
		Path:      settings.LogPath,
		AckOffset: settings.AckOffset,
		Persister: store,
		Logger:    logger.Named("watch"),
	}
	if path := overridePath(opts.LogPath); path != "" && path != settings.LogPath {
		// A one-off file has no acknowledgment of its own.
		wopts.Path = path
		wopts.AckOffset = 0
		wopts.Persister = nil
	}
	ws := watch.New(wopts)
	res := ws.Rescan()
	return ws.Snapshot(), res, nil
}

// AckResult describes how an acknowledge request was carried out.
type AckResult struct {
	// RemotePID is the instance that was signalled, or zero when the
	// acknowledgment was applied directly to the persisted state.
	RemotePID int
	Snapshot  watch.Snapshot
}

// Acknowledge asks a running instance to acknowledge, or rescans and
// acknowledges the persisted state when none is running.
func Acknowledge(opts Options) (AckResult, error) {
	pidPath := opts.PIDPath
	if pidPath == "" {
		pidPath = instance.DefaultPath()
	}
	if pid, ok := instance.Running(pidPath); ok {
		if err := instance.RequestAcknowledge(pid); err != nil {
			return AckResult{}, fmt.Errorf("acknowledge running instance: %w", err)
		}
		return AckResult{RemotePID: pid}, nil
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store, settings, err := loadSettings(opts.ConfigPath, logger)
	if err != nil {
		return AckResult{}, err
	}
	ws := watch.New(watch.Options{
		Path:      settings.LogPath,
		AckOffset: settings.AckOffset,
		Persister: store,
		Logger:    logger.Named("watch"),
	})
	ws.Rescan()
	ws.Acknowledge()
	return AckResult{Snapshot: ws.Snapshot()}, nil
}

func loadSettings(path string, logger *zap.Logger) (*config.Store, config.Settings, error) {
	store, err := config.Open(path)
	if err != nil {
		return nil, config.Settings{}, fmt.Errorf("load config: %w", err)
	}
	settings, err := store.LoadSettings(config.DefaultLogPath())
	if err != nil {
		logger.Warn("persist default settings failed", zap.String("path", store.Path()), zap.Error(err))
	}
	return store, settings, nil
}

// applyOverrides persists command-line overrides the way the interactive
// commands would.
func applyOverrides(store *config.Store, s config.Settings, opts Options, logger *zap.Logger) config.Settings {
	if path := overridePath(opts.LogPath); path != "" && path != s.LogPath {
		s.LogPath = path
		s.AckOffset = 0
		if err := store.SaveLogPath(path); err != nil {
			logger.Warn("persist log path failed", zap.Error(err))
		}
		if err := store.SaveAckOffset(0); err != nil {
			logger.Warn("persist acknowledged offset failed", zap.Error(err))
		}
	}
	if opts.Interval > 0 {
		s.Interval = config.ClampInterval(opts.Interval)
		if err := store.SaveInterval(s.Interval); err != nil {
			logger.Warn("persist interval failed", zap.Error(err))
		}
	}
	return s
}

// overridePath expands a command-line path the same way persisted paths are
// expanded, so both compare equal when they name the same file.
func overridePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if expanded, err := config.ExpandPath(path); err == nil {
		return expanded
	}
	return path
}

// acknowledgeOnSignal turns acknowledge signals into scheduler commands
// until ctx is cancelled.
func acknowledgeOnSignal(ctx context.Context, ch <-chan os.Signal, sched *scheduler.Scheduler, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-ch:
			logger.Info("acknowledge requested", zap.Stringer("signal", sig))
			if _, err := sched.Acknowledge(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("acknowledge failed", zap.Error(err))
			}
		}
	}
}

// fanout forwards presentation updates to several sinks.
type fanout []watch.Sink

func (f fanout) OnStateChanged(hasAlert bool, tooltip string) {
	for _, s := range f {
		s.OnStateChanged(hasAlert, tooltip)
	}
}

func (f fanout) OnAcknowledged() {
	for _, s := range f {
		s.OnAcknowledged()
	}
}

func chainObservers(fns ...func(scheduler.Snapshot)) func(scheduler.Snapshot) {
	return func(s scheduler.Snapshot) {
		for _, fn := range fns {
			if fn != nil {
				fn(s)
			}
		}
	}
}
