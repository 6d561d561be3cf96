package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/five82/logbeacon/internal/config"
	"github.com/five82/logbeacon/internal/instance"
	"github.com/five82/logbeacon/internal/scheduler"
	"github.com/five82/logbeacon/internal/watch"
)

const markerLine = `{"level":"error","logger":"repo","msg":"backup failed"}` + "\n"

type paths struct {
	dir    string
	log    string
	config string
	pid    string
}

func newPaths(t *testing.T) paths {
	t.Helper()
	dir := t.TempDir()
	return paths{
		dir:    dir,
		log:    filepath.Join(dir, "backrest.log"),
		config: filepath.Join(dir, "config", "logbeacon.toml"),
		pid:    filepath.Join(dir, "run", "logbeacon.pid"),
	}
}

func writeConfig(t *testing.T, p paths, ack uint64) {
	t.Helper()
	store, err := config.Open(p.config)
	require.NoError(t, err)
	require.NoError(t, store.SaveLogPath(p.log))
	require.NoError(t, store.SaveAckOffset(ack))
}

func loadConfig(t *testing.T, p paths) *config.Store {
	t.Helper()
	store, err := config.Open(p.config)
	require.NoError(t, err)
	return store
}

func appendText(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(text)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func nopLogger() *zap.Logger { return zap.NewNop() }

// startHeadless runs the watcher in the background. current reports the most
// recent published snapshot; stop cancels the run and returns its error.
func startHeadless(t *testing.T, p paths) (current func() scheduler.Snapshot, stop func() error) {
	t.Helper()
	latest := make(chan scheduler.Snapshot, 1)
	observer := func(s scheduler.Snapshot) {
		select {
		case <-latest:
		default:
		}
		latest <- s
	}

	var last scheduler.Snapshot
	current = func() scheduler.Snapshot {
		select {
		case s := <-latest:
			last = s
		default:
		}
		return last
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- Run(ctx, Options{
			ConfigPath:   p.config,
			PIDPath:      p.pid,
			LogPath:      p.log,
			Interval:     config.MinInterval,
			Headless:     true,
			DisableHints: true,
			Observer:     observer,
		})
	}()

	var (
		once   sync.Once
		result error
	)
	stop = func() error {
		once.Do(func() {
			cancel()
			select {
			case result = <-errc:
			case <-time.After(5 * time.Second):
				result = errors.New("Run did not return after cancel")
			}
		})
		return result
	}
	t.Cleanup(func() { _ = stop() })
	return current, stop
}

func TestRun_HeadlessDetectsMarkerAndReleasesLock(t *testing.T) {
	p := newPaths(t)
	appendText(t, p.log, "starting\n")

	current, stop := startHeadless(t, p)

	require.Eventually(t, func() bool {
		return current().LastOffset == uint64(len("starting\n"))
	}, 5*time.Second, 20*time.Millisecond)
	assert.False(t, current().HasAlert)

	_, err := os.Stat(p.pid)
	require.NoError(t, err, "pid file should exist while running")

	appendText(t, p.log, markerLine)
	require.Eventually(t, func() bool {
		return current().HasAlert
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, stop())

	_, err = os.Stat(p.pid)
	assert.True(t, os.IsNotExist(err), "pid file should be removed on exit")

	store := loadConfig(t, p)
	assert.Equal(t, p.log, store.LoadString(config.SectionWatcher, config.KeyLogPath, ""))
	assert.Equal(t, "500", store.LoadString(config.SectionWatcher, config.KeyMonitorInterval, ""))
}

func TestRun_RefusesSecondInstance(t *testing.T) {
	ppid := os.Getppid()
	if ppid <= 1 {
		t.Skip("no live parent process to stand in for another instance")
	}
	p := newPaths(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(p.pid), 0o755))
	require.NoError(t, os.WriteFile(p.pid, []byte(strconv.Itoa(ppid)), 0o644))

	err := Run(context.Background(), Options{ConfigPath: p.config, PIDPath: p.pid, Headless: true})
	assert.ErrorIs(t, err, instance.ErrAlreadyRunning)
}

func TestRun_BadConfigIsFatal(t *testing.T) {
	p := newPaths(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(p.config), 0o755))
	require.NoError(t, os.WriteFile(p.config, []byte("[watcher\n"), 0o644))

	err := Run(context.Background(), Options{ConfigPath: p.config, PIDPath: p.pid, Headless: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")

	_, statErr := os.Stat(p.pid)
	assert.True(t, os.IsNotExist(statErr), "pid file should be released")
}

func TestScan_ReportsPendingAlert(t *testing.T) {
	p := newPaths(t)
	appendText(t, p.log, "clean line\n")
	acked := uint64(len("clean line\n"))
	writeConfig(t, p, acked)

	snap, res, err := Scan(Options{ConfigPath: p.config})
	require.NoError(t, err)
	assert.False(t, snap.HasAlert)
	assert.Equal(t, watch.OutcomeRescanned, res.Outcome)

	appendText(t, p.log, markerLine)
	snap, res, err = Scan(Options{ConfigPath: p.config})
	require.NoError(t, err)
	assert.True(t, snap.HasAlert)
	assert.True(t, res.Raised)
	assert.Equal(t, acked, snap.AckOffset)
}

func TestScan_OneOffPathLeavesConfigAlone(t *testing.T) {
	p := newPaths(t)
	appendText(t, p.log, "x\n")
	writeConfig(t, p, 2)

	other := filepath.Join(p.dir, "other.log")
	appendText(t, other, markerLine)

	snap, _, err := Scan(Options{ConfigPath: p.config, LogPath: other})
	require.NoError(t, err)
	assert.True(t, snap.HasAlert)
	assert.Equal(t, other, snap.Path)

	store := loadConfig(t, p)
	assert.Equal(t, p.log, store.LoadString(config.SectionWatcher, config.KeyLogPath, ""))
	assert.Equal(t, "2", store.LoadString(config.SectionWatcher, config.KeyAckOffset, ""))
}

func TestScan_ExpandsHomeInConfiguredPath(t *testing.T) {
	p := newPaths(t)
	t.Setenv("HOME", p.dir)
	appendText(t, p.log, "clean line\n"+markerLine)
	store, err := config.Open(p.config)
	require.NoError(t, err)
	require.NoError(t, store.SaveLogPath("~/backrest.log"))
	require.NoError(t, store.SaveAckOffset(uint64(len("clean line\n"))))

	snap, res, err := Scan(Options{ConfigPath: p.config})
	require.NoError(t, err)
	assert.Equal(t, p.log, snap.Path)
	assert.True(t, res.Raised)
	assert.True(t, snap.HasAlert)

	// The same file named with ~ on the command line keeps the stored ack.
	snap, _, err = Scan(Options{ConfigPath: p.config, LogPath: "~/backrest.log"})
	require.NoError(t, err)
	assert.Equal(t, uint64(len("clean line\n")), snap.AckOffset)
}

func TestAcknowledge_OfflinePersistsOffset(t *testing.T) {
	p := newPaths(t)
	appendText(t, p.log, "a\n"+markerLine)
	writeConfig(t, p, 0)

	res, err := Acknowledge(Options{ConfigPath: p.config, PIDPath: p.pid})
	require.NoError(t, err)
	assert.Zero(t, res.RemotePID)
	assert.False(t, res.Snapshot.HasAlert)

	size := uint64(len("a\n" + markerLine))
	assert.Equal(t, size, res.Snapshot.AckOffset)
	assert.Equal(t, strconv.FormatUint(size, 10),
		loadConfig(t, p).LoadString(config.SectionWatcher, config.KeyAckOffset, ""))

	snap, _, err := Scan(Options{ConfigPath: p.config})
	require.NoError(t, err)
	assert.False(t, snap.HasAlert)
}

func TestApplyOverrides_PathResetsAck(t *testing.T) {
	p := newPaths(t)
	writeConfig(t, p, 99)
	store := loadConfig(t, p)

	in := config.Settings{LogPath: p.log, AckOffset: 99, Interval: time.Second}
	out := applyOverrides(store, in, Options{LogPath: filepath.Join(p.dir, "new.log"), Interval: time.Millisecond}, nopLogger())

	assert.True(t, strings.HasSuffix(out.LogPath, "new.log"))
	assert.Zero(t, out.AckOffset)
	assert.Equal(t, config.MinInterval, out.Interval)
	assert.Equal(t, "0", store.LoadString(config.SectionWatcher, config.KeyAckOffset, ""))

	same := applyOverrides(store, out, Options{LogPath: out.LogPath}, nopLogger())
	assert.Equal(t, out, same)
}

type recordingSink struct {
	alerts []bool
	acks   int
}

func (r *recordingSink) OnStateChanged(hasAlert bool, _ string) {
	r.alerts = append(r.alerts, hasAlert)
}

func (r *recordingSink) OnAcknowledged() {
	r.acks++
}

func TestFanout_ForwardsToAllSinks(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	f := fanout{a, b}
	f.OnStateChanged(true, "x")
	f.OnAcknowledged()

	for _, s := range []*recordingSink{a, b} {
		assert.Equal(t, []bool{true}, s.alerts)
		assert.Equal(t, 1, s.acks)
	}
}
