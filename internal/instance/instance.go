package instance

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/process"
)

// ErrAlreadyRunning is returned by Acquire when a live process holds the lock.
var ErrAlreadyRunning = errors.New("logbeacon is already running")

// ErrSignalUnsupported is returned where acknowledge requests cannot be sent
// to another process.
var ErrSignalUnsupported = errors.New("acknowledge signal not supported on this platform")

const pidFileName = "logbeacon.pid"

// DefaultPath returns the pid file location under the user state directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), pidFileName)
	}
	return filepath.Join(home, ".local", "state", "logbeacon", pidFileName)
}

// Lock is a held pid file.
type Lock struct {
	path string
	pid  int
}

// held records the pid files this process has acquired, keyed by cleaned
// path, so that a file naming our own pid can be told apart from one left by
// an earlier process that happened to get the same pid.
var (
	heldMu sync.Mutex
	held   = make(map[string]bool)
)

// Acquire writes the current pid to path. If the file names another live
// process, or this process already holds it, the result wraps
// ErrAlreadyRunning; a stale file is replaced.
//
// The pid is written to a temporary file first and hard-linked into place,
// so other processes never see a partially written pid file.
func Acquire(path string) (*Lock, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create pid dir: %w", err)
	}
	self := os.Getpid()

	heldMu.Lock()
	defer heldMu.Unlock()

	for attempt := 0; attempt < 3; attempt++ {
		err := publishPID(path, self)
		if err == nil {
			held[path] = true
			return &Lock{path: path, pid: self}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}

		raw, rerr := os.ReadFile(path)
		if errors.Is(rerr, os.ErrNotExist) {
			continue
		}
		if pid, ok := parsePID(raw); ok {
			if pid == self && held[path] {
				return nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
			}
			if pid != self && alive(pid) {
				return nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
			}
		}
		if err := removeIfUnchanged(path, raw); err != nil {
			return nil, fmt.Errorf("remove stale pid file: %w", err)
		}
	}
	return nil, fmt.Errorf("%w: pid file %s keeps reappearing", ErrAlreadyRunning, path)
}

// publishPID writes pid to a temporary file beside path and links it to
// path. It fails with os.ErrExist when path is already present.
func publishPID(path string, pid int) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create pid file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, werr := tmp.WriteString(strconv.Itoa(pid) + "\n")
	if err := errors.Join(werr, tmp.Close()); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	if err := os.Link(tmp.Name(), path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return err
		}
		return fmt.Errorf("create pid file: %w", err)
	}
	return nil
}

// removeIfUnchanged deletes path only while it still holds the contents that
// were judged stale. A file another process published meanwhile is kept.
func removeIfUnchanged(path string, judged []byte) error {
	current, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !bytes.Equal(current, judged) {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Path returns the pid file path.
func (l *Lock) Path() string { return l.path }

// Release removes the pid file if it still names this process.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	heldMu.Lock()
	delete(held, l.path)
	heldMu.Unlock()

	pid, ok := readPID(l.path)
	if !ok || pid != l.pid {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove pid file: %w", err)
	}
	return nil
}

// Running returns the pid of a live instance recorded at path, if any.
func Running(path string) (int, bool) {
	pid, ok := readPID(path)
	if !ok || pid == os.Getpid() || !alive(pid) {
		return 0, false
	}
	return pid, true
}

// RequestAcknowledge asks the instance with the given pid to acknowledge.
func RequestAcknowledge(pid int) error {
	return signalAcknowledge(pid)
}

// AcknowledgeSignals lists the signals a running instance should treat as
// acknowledge requests. It is empty where signalling is unsupported.
func AcknowledgeSignals() []os.Signal {
	return ackSignals()
}

func readPID(path string) (int, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	return parsePID(b)
}

func parsePID(b []byte) (int, bool) {
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func alive(pid int) bool {
	ok, err := process.PidExists(int32(pid))
	return err == nil && ok
}
