package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/logbeacon/internal/config"
)

type promptKind int

const (
	promptPath promptKind = iota
	promptInterval
)

// prompt is the single-line input shown in the footer for path and interval
// changes.
type prompt struct {
	kind  promptKind
	input textinput.Model
	unit  config.Unit
	err   string
}

func newPathPrompt(current string) *prompt {
	ti := textinput.New()
	ti.Prompt = "Log path: "
	ti.Placeholder = "/path/to/backrest.log"
	ti.CharLimit = 4096
	ti.SetValue(current)
	ti.CursorEnd()
	return &prompt{kind: promptPath, input: ti}
}

func newIntervalPrompt(current time.Duration) *prompt {
	value, unit := config.FormatInterval(current)
	ti := textinput.New()
	ti.Placeholder = "1.5"
	ti.CharLimit = 32
	ti.SetValue(value)
	ti.CursorEnd()
	p := &prompt{kind: promptInterval, input: ti, unit: unit}
	p.syncLabel()
	return p
}

func (p *prompt) syncLabel() {
	if p.kind == promptInterval {
		p.input.Prompt = "Interval (" + p.unit.String() + "): "
	}
}

// handlePromptKey routes keys to the open prompt.
func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.prompt

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.prompt = nil
		return m, nil

	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case p.kind == promptInterval && key.Matches(msg, m.keys.ToggleUnit):
		if p.unit == config.Seconds {
			p.unit = config.Minutes
		} else {
			p.unit = config.Seconds
		}
		p.syncLabel()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		return m.submitPrompt()
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.err = ""
	return m, cmd
}

func (m Model) submitPrompt() (tea.Model, tea.Cmd) {
	p := m.prompt
	value := strings.TrimSpace(p.input.Value())

	switch p.kind {
	case promptPath:
		if value == "" {
			p.err = "path must not be empty"
			return m, nil
		}
		expanded, err := config.ExpandPath(value)
		if err != nil {
			p.err = err.Error()
			return m, nil
		}
		m.prompt = nil
		return m, m.setPathCmd(expanded)

	case promptInterval:
		d, err := config.ParseInterval(value, p.unit)
		if err != nil {
			p.err = err.Error()
			return m, nil
		}
		m.prompt = nil
		return m, m.setIntervalCmd(d)
	}
	return m, nil
}
