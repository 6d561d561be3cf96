package ui

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var errNoLogPath = errors.New("no log file configured")

// viewerCommand returns the program used to open a log file in the terminal:
// $VISUAL, then $EDITOR, then $PAGER, then less.
func viewerCommand(getenv func(string) string, path string) []string {
	for _, env := range []string{"VISUAL", "EDITOR", "PAGER"} {
		if fields := strings.Fields(getenv(env)); len(fields) > 0 {
			return append(fields, path)
		}
	}
	return []string{"less", "+G", path}
}

// folderCommand returns the desktop command that reveals path. When the file
// exists it is selected where the platform supports that; otherwise its
// folder is opened.
func folderCommand(goos, path string, exists bool) []string {
	dir := filepath.Dir(path)
	switch goos {
	case "windows":
		if exists {
			return []string{"explorer.exe", "/select," + path}
		}
		return []string{"explorer.exe", dir}
	case "darwin":
		if exists {
			return []string{"open", "-R", path}
		}
		return []string{"open", dir}
	default:
		return []string{"xdg-open", dir}
	}
}

// openFileCmd suspends the UI while the log file is open in a viewer.
func (m Model) openFileCmd() tea.Cmd {
	path := m.snapshot.Status.Path
	if path == "" {
		return func() tea.Msg { return commandMsg{action: "open log file", err: errNoLogPath} }
	}
	argv := viewerCommand(os.Getenv, path)
	c := exec.Command(argv[0], argv[1:]...)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return commandMsg{action: "open log file", err: err}
	})
}

// openFolderCmd starts the desktop file manager without waiting for it.
func (m Model) openFolderCmd() tea.Cmd {
	path := m.snapshot.Status.Path
	return func() tea.Msg {
		if path == "" {
			return commandMsg{action: "open log folder", err: errNoLogPath}
		}
		_, statErr := os.Stat(path)
		argv := folderCommand(runtime.GOOS, path, statErr == nil)
		c := exec.Command(argv[0], argv[1:]...)
		if err := c.Start(); err != nil {
			return commandMsg{action: "open log folder", err: err}
		}
		go func() { _ = c.Wait() }()
		return commandMsg{action: "open log folder"}
	}
}
