package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/logbeacon/internal/scheduler"
	"github.com/five82/logbeacon/internal/state"
	"github.com/five82/logbeacon/internal/watch"
)

type fakeController struct {
	acks      int
	paths     []string
	intervals []time.Duration
	err       error
}

func (f *fakeController) Acknowledge(context.Context) (scheduler.Snapshot, error) {
	f.acks++
	return scheduler.Snapshot{}, f.err
}

func (f *fakeController) SetPath(_ context.Context, path string) (scheduler.Snapshot, error) {
	f.paths = append(f.paths, path)
	return scheduler.Snapshot{}, f.err
}

func (f *fakeController) SetInterval(_ context.Context, d time.Duration) (scheduler.Snapshot, error) {
	f.intervals = append(f.intervals, d)
	return scheduler.Snapshot{}, f.err
}

type themeRecorder struct{ names []string }

func (r *themeRecorder) SaveTheme(name string) error {
	r.names = append(r.names, name)
	return nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return out, cmd
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	return m
}

func TestAcknowledgeKey_CallsController(t *testing.T) {
	ctrl := &fakeController{}
	store := &state.Store{}
	m := sized(t, New(Options{Controller: ctrl, Store: store}))

	m, cmd := update(t, m, runes("a"))
	if cmd == nil {
		t.Fatal("acknowledge key returned no command")
	}
	msg := cmd()
	if ctrl.acks != 1 {
		t.Fatalf("acks = %d, want 1", ctrl.acks)
	}
	if _, ok := msg.(commandMsg); !ok {
		t.Fatalf("command produced %T, want commandMsg", msg)
	}

	ctrl.err = errors.New("scheduler stopped")
	_, cmd = update(t, m, runes("a"))
	m, _ = update(t, m, cmd())
	if err := m.snapshot.LastError; err == nil || !strings.Contains(err.Error(), "acknowledge failed") {
		t.Fatalf("LastError = %v, want acknowledge failure", err)
	}
	if !errors.Is(store.Snapshot().LastError, ctrl.err) {
		t.Fatalf("store LastError = %v, want %v", store.Snapshot().LastError, ctrl.err)
	}
	if !strings.Contains(m.renderFooter(), "scheduler stopped") {
		t.Fatalf("footer does not show the error: %q", m.renderFooter())
	}

	ctrl.err = nil
	_, cmd = update(t, m, runes("a"))
	m, _ = update(t, m, cmd())
	if m.snapshot.LastError != nil || store.Snapshot().LastError != nil {
		t.Fatal("a successful command should clear the error")
	}
}

func TestIntervalPrompt_RejectsTooShort(t *testing.T) {
	ctrl := &fakeController{}
	m := sized(t, New(Options{Controller: ctrl}))

	m, _ = update(t, m, runes("i"))
	if m.prompt == nil || m.prompt.kind != promptInterval {
		t.Fatal("interval prompt not opened")
	}
	m.prompt.input.SetValue("0.1")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Fatal("invalid interval should not produce a command")
	}
	if m.prompt == nil || m.prompt.err == "" {
		t.Fatal("expected the prompt to stay open with an error")
	}
	if len(ctrl.intervals) != 0 {
		t.Fatalf("SetInterval called with %v", ctrl.intervals)
	}
}

func TestIntervalPrompt_MinutesUnit(t *testing.T) {
	ctrl := &fakeController{}
	m := sized(t, New(Options{Controller: ctrl}))

	m, _ = update(t, m, runes("i"))
	if m.prompt.unit.String() != "seconds" {
		t.Fatalf("default unit = %s, want seconds", m.prompt.unit)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.prompt.unit.String() != "minutes" {
		t.Fatalf("unit after tab = %s, want minutes", m.prompt.unit)
	}
	if !strings.Contains(m.prompt.input.Prompt, "minutes") {
		t.Fatalf("prompt label = %q, want minutes", m.prompt.input.Prompt)
	}

	m.prompt.input.SetValue("2")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.prompt != nil {
		t.Fatal("prompt should close after a valid interval")
	}
	cmd()
	if len(ctrl.intervals) != 1 || ctrl.intervals[0] != 2*time.Minute {
		t.Fatalf("intervals = %v, want [2m]", ctrl.intervals)
	}
}

func TestPathPrompt_SubmitAndCancel(t *testing.T) {
	ctrl := &fakeController{}
	m := sized(t, New(Options{Controller: ctrl}))

	m, _ = update(t, m, runes("p"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.prompt != nil {
		t.Fatal("esc should close the prompt")
	}

	m, _ = update(t, m, runes("p"))
	m.prompt.input.SetValue("   ")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.prompt == nil || m.prompt.err == "" {
		t.Fatal("empty path should be rejected")
	}

	target := filepath.Join(t.TempDir(), "app.log")
	m.prompt.input.SetValue(target)
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("valid path produced no command")
	}
	cmd()
	if len(ctrl.paths) != 1 || ctrl.paths[0] != target {
		t.Fatalf("paths = %v, want [%s]", ctrl.paths, target)
	}
}

func TestPromptSwallowsGlobalKeys(t *testing.T) {
	m := sized(t, New(Options{Controller: &fakeController{}}))
	m, _ = update(t, m, runes("p"))

	m, cmd := update(t, m, runes("q"))
	if m.prompt == nil {
		t.Fatal("q inside a prompt should be typed, not quit")
	}
	if cmd != nil {
		if _, quit := cmd().(tea.QuitMsg); quit {
			t.Fatal("q inside a prompt returned tea.Quit")
		}
	}
}

func TestCycleTheme_Persists(t *testing.T) {
	saver := &themeRecorder{}
	m := sized(t, New(Options{ThemeSaver: saver}))
	if m.theme.Name != "Nightfox" {
		t.Fatalf("default theme = %s, want Nightfox", m.theme.Name)
	}

	m, _ = update(t, m, runes("T"))
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %s, want Kanagawa", m.theme.Name)
	}
	if len(saver.names) != 1 || saver.names[0] != "Kanagawa" {
		t.Fatalf("saved = %v, want [Kanagawa]", saver.names)
	}
}

func TestHelpOverlay(t *testing.T) {
	m := sized(t, New(Options{}))
	m, _ = update(t, m, runes("?"))
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatal("help overlay not shown")
	}
	for _, name := range ThemeNames() {
		if !strings.Contains(m.View(), name) {
			t.Errorf("help overlay does not list theme %q", name)
		}
	}
	m, _ = update(t, m, runes("x"))
	if m.showHelp {
		t.Fatal("any key should close help")
	}
}

func TestPopup_ShownForConfiguredDuration(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	m := sized(t, New(Options{PopupDuration: 2500 * time.Millisecond}))
	m.now = func() time.Time { return now }

	m, _ = update(t, m, snapshotMsg(state.Snapshot{
		HasStatus:        true,
		Acknowledgments:  1,
		LastAcknowledged: now.Add(-time.Second),
	}))
	if !strings.Contains(m.View(), ackMessage) {
		t.Fatal("popup not shown right after acknowledgment")
	}

	m.now = func() time.Time { return now.Add(2 * time.Second) }
	if strings.Contains(m.View(), ackMessage) {
		t.Fatal("popup still shown after its duration")
	}
}

func TestSnapshot_RefreshesPreviewOnGrowth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backrest.log")
	content := "{\"level\":\"info\"}\n{\"logger\":\"repo\",\"msg\":\"boom\"}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m := sized(t, New(Options{}))
	snap := state.Snapshot{
		HasStatus: true,
		Status: scheduler.Snapshot{
			Snapshot: watch.Snapshot{Path: path, LastOffset: uint64(len(content)), HasAlert: true},
		},
	}

	m, cmd := update(t, m, snapshotMsg(snap))
	if cmd == nil {
		t.Fatal("first snapshot should schedule a preview read")
	}
	m, _ = update(t, m, cmd())
	if len(m.previewLines) != 2 {
		t.Fatalf("preview lines = %v, want 2", m.previewLines)
	}

	_, cmd = update(t, m, snapshotMsg(snap))
	if cmd != nil {
		t.Fatal("unchanged snapshot should not reread the preview")
	}

	snap.Status.LastOffset += 10
	_, cmd = update(t, m, snapshotMsg(snap))
	if cmd == nil {
		t.Fatal("grown file should schedule a preview read")
	}
}

func TestRenderPreviewLine_HighlightsMarker(t *testing.T) {
	m := sized(t, New(Options{Marker: []byte("ERR")}))
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.SurfaceAlt)

	plain := m.renderPreviewLine("all good", styles, bg)
	marked := m.renderPreviewLine("an ERR here", styles, bg)

	if !strings.Contains(marked, "ERR") {
		t.Fatalf("marked line lost the marker: %q", marked)
	}
	if !strings.Contains(plain, "all") || !strings.Contains(plain, "good") {
		t.Fatalf("plain line lost text: %q", plain)
	}
}

func TestHeader_ShowsStatus(t *testing.T) {
	m := sized(t, New(Options{}))
	m, _ = update(t, m, snapshotMsg(state.Snapshot{
		HasStatus:   true,
		Tooltip:     watch.Tooltip(true),
		LastUpdated: time.Date(2024, 5, 1, 9, 30, 15, 0, time.Local),
		Status: scheduler.Snapshot{
			Snapshot: watch.Snapshot{Path: "/var/log/backrest.log", LastOffset: 1234, AckOffset: 1000, HasAlert: true, BlinkPhase: true},
			Interval: 1500 * time.Millisecond,
		},
	}))

	header := m.renderHeader()
	for _, want := range []string{"ALERT", "logbeacon", "1.500", "1234", "1000", "updated 09:30:15", glyphAlert} {
		if !strings.Contains(header, want) {
			t.Errorf("header missing %q", want)
		}
	}
}
