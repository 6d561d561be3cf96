package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/logbeacon/internal/config"
	"github.com/five82/logbeacon/internal/logtail"
	"github.com/five82/logbeacon/internal/scan"
	"github.com/five82/logbeacon/internal/scheduler"
	"github.com/five82/logbeacon/internal/state"
)

// Controller is the part of the scheduler the UI drives.
type Controller interface {
	Acknowledge(ctx context.Context) (scheduler.Snapshot, error)
	SetPath(ctx context.Context, path string) (scheduler.Snapshot, error)
	SetInterval(ctx context.Context, d time.Duration) (scheduler.Snapshot, error)
}

// ThemeSaver persists the selected theme name.
type ThemeSaver interface {
	SaveTheme(name string) error
}

// Options configures the UI.
type Options struct {
	Context       context.Context
	Controller    Controller
	Store         *state.Store
	Marker        []byte
	PopupDuration time.Duration
	Refresh       time.Duration
	ThemeName     string
	ThemeSaver    ThemeSaver
	Logger        *zap.Logger
}

// previewKey identifies the file contents a preview was read from.
type previewKey struct {
	path string
	size uint64
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	ctrl       Controller
	store      *state.Store
	marker     []byte
	popup      time.Duration
	refresh    time.Duration
	themeSaver ThemeSaver
	logger     *zap.Logger
	now        func() time.Time

	// UI state
	keys     keyMap
	help     help.Model
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	prompt   *prompt

	// Data state
	snapshot state.Snapshot

	// Preview state
	preview      viewport.Model
	previewKey   previewKey
	previewLines []string
	previewErr   error
	loading      bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	popup := opts.PopupDuration
	if popup <= 0 {
		popup = config.DefaultPopupDuration
	}
	marker := opts.Marker
	if len(marker) == 0 {
		marker = scan.DefaultMarker
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = config.DefaultTheme
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return Model{
		ctx:        ctx,
		ctrl:       opts.Controller,
		store:      opts.Store,
		marker:     marker,
		popup:      popup,
		refresh:    refresh,
		themeSaver: opts.ThemeSaver,
		logger:     logger,
		now:        time.Now,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		theme:      GetTheme(themeName),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.refresh)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.preview = viewport.New(msg.Width, m.bodyHeight())
		}
		m.ready = true
		m.preview.Width = msg.Width
		m.preview.Height = m.bodyHeight()
		m.updatePreview(false)
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.refresh)}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, m.maybeRefreshPreview()

	case previewMsg:
		m.loading = false
		m.previewKey = msg.key
		m.previewErr = msg.err
		if msg.err == nil {
			m.previewLines = msg.lines
		}
		m.updatePreview(true)
		return m, nil

	case commandMsg:
		var err error
		if msg.err != nil {
			err = fmt.Errorf("%s failed: %w", msg.action, msg.err)
			m.logger.Warn("command failed", zap.String("action", msg.action), zap.Error(msg.err))
		}
		// Kept locally too so the footer updates before the next refresh.
		m.snapshot.LastError = err
		if m.store != nil {
			m.store.SetError(err)
			return m, fetchSnapshotCmd(m.store)
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.popupVisible() {
		b.WriteString(m.renderPopup())
	} else {
		b.WriteString(m.preview.View())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.prompt != nil {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.themeSaver != nil {
			if err := m.themeSaver.SaveTheme(m.theme.Name); err != nil {
				m.logger.Warn("persist theme failed", zap.Error(err))
			}
		}
		m.updatePreview(false)
		return m, nil

	case key.Matches(msg, m.keys.Acknowledge):
		return m, m.acknowledgeCmd()

	case key.Matches(msg, m.keys.SetPath):
		m.prompt = newPathPrompt(m.snapshot.Status.Path)
		return m, m.prompt.input.Focus()

	case key.Matches(msg, m.keys.SetInterval):
		m.prompt = newIntervalPrompt(m.currentInterval())
		return m, m.prompt.input.Focus()

	case key.Matches(msg, m.keys.OpenFile):
		return m, m.openFileCmd()

	case key.Matches(msg, m.keys.OpenFolder):
		return m, m.openFolderCmd()

	case key.Matches(msg, m.keys.Top):
		m.preview.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.preview.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

func (m Model) currentInterval() time.Duration {
	if m.snapshot.HasStatus && m.snapshot.Status.Interval > 0 {
		return m.snapshot.Status.Interval
	}
	return config.DefaultInterval
}

func (m Model) bodyHeight() int {
	h := m.height - headerLines
	if h < 1 {
		return 1
	}
	return h
}

func (m Model) popupVisible() bool {
	return m.snapshot.PopupVisible(m.now(), m.popup)
}

// maybeRefreshPreview schedules a preview read when the monitored file
// changed size or path since the last read.
func (m *Model) maybeRefreshPreview() tea.Cmd {
	if !m.snapshot.HasStatus || m.loading {
		return nil
	}
	k := previewKey{path: m.snapshot.Status.Path, size: m.snapshot.Status.LastOffset}
	if k == m.previewKey && m.previewLines != nil {
		return nil
	}
	m.loading = true
	return fetchPreviewCmd(k)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type previewMsg struct {
	key   previewKey
	lines []string
	err   error
}

type commandMsg struct {
	action string
	err    error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func fetchPreviewCmd(k previewKey) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(k.path, PreviewLines)
		if lines == nil && err == nil {
			lines = []string{}
		}
		return previewMsg{key: k, lines: lines, err: err}
	}
}

func (m Model) acknowledgeCmd() tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		cctx, cancel := context.WithTimeout(ctx, CommandTimeout)
		defer cancel()
		_, err := ctrl.Acknowledge(cctx)
		return commandMsg{action: "acknowledge", err: err}
	}
}

func (m Model) setPathCmd(path string) tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		cctx, cancel := context.WithTimeout(ctx, CommandTimeout)
		defer cancel()
		_, err := ctrl.SetPath(cctx, path)
		return commandMsg{action: "set path", err: err}
	}
}

func (m Model) setIntervalCmd(d time.Duration) tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		cctx, cancel := context.WithTimeout(ctx, CommandTimeout)
		defer cancel()
		_, err := ctrl.SetInterval(cctx, d)
		return commandMsg{action: "set interval", err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	m := New(opts)
	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, progOpts...)
	_, err := p.Run()
	return err
}
