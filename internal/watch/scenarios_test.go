package watch_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/five82/logbeacon/internal/scan"
	"github.com/five82/logbeacon/internal/watch"
)

type offsetRecorder struct {
	ack  uint64
	path string
}

func (o *offsetRecorder) SaveAckOffset(offset uint64) error {
	o.ack = offset
	return nil
}

func (o *offsetRecorder) SaveLogPath(path string) error {
	o.path = path
	return nil
}

var _ = Describe("Log file alert detection", func() {
	var (
		logPath  string
		recorder *offsetRecorder
		scanner  *scan.Scanner
	)

	appendLog := func(content string) {
		f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		Expect(err).NotTo(HaveOccurred())
		_, err = f.WriteString(content)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Close()).To(Succeed())
	}

	newState := func(ackOffset uint64) *watch.State {
		return watch.New(watch.Options{
			Path:      logPath,
			AckOffset: ackOffset,
			Scanner:   scanner,
			Persister: recorder,
		})
	}

	BeforeEach(func() {
		logPath = filepath.Join(GinkgoT().TempDir(), "backrest.log")
		recorder = &offsetRecorder{}
		var err error
		scanner, err = scan.New([]byte("X"), 2)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("incremental ticks", func() {
		Context("when the marker arrives one byte after the first tick's data", func() {
			It("raises the alert only on the second tick", func() {
				Expect(os.WriteFile(logPath, nil, 0o644)).To(Succeed())
				state := newState(0)
				state.Rescan()

				appendLog("...")
				state.Tick()
				Expect(state.HasAlert()).To(BeFalse())

				appendLog("X")
				state.Tick()
				Expect(state.HasAlert()).To(BeTrue())
			})
		})

		Context("when the file only grows", func() {
			It("reads every appended byte exactly once", func() {
				Expect(os.WriteFile(logPath, []byte("start"), 0o644)).To(Succeed())
				state := newState(0)
				state.Rescan()
				initial := state.Snapshot()

				for i := 0; i < 25; i++ {
					appendLog(strings.Repeat("-", i%7+1))
					state.Tick()
					snap := state.Snapshot()
					Expect(snap.AckOffset).To(BeNumerically("<=", snap.LastOffset))
				}

				final := state.Snapshot()
				Expect(final.BytesScanned - initial.BytesScanned).To(Equal(final.LastOffset - initial.LastOffset))
			})
		})
	})

	Describe("rotation", func() {
		Context("when a 1000 byte file with ack offset 500 is truncated to 200 bytes", func() {
			It("clears the alert and resets both offsets", func() {
				content := strings.Repeat(".", 700) + "X" + strings.Repeat(".", 299)
				Expect(os.WriteFile(logPath, []byte(content), 0o644)).To(Succeed())
				state := newState(500)
				state.Rescan()
				Expect(state.HasAlert()).To(BeTrue())

				Expect(os.WriteFile(logPath, []byte(strings.Repeat(".", 200)), 0o644)).To(Succeed())
				res := state.Tick()

				Expect(res.Outcome).To(Equal(watch.OutcomeRotated))
				snap := state.Snapshot()
				Expect(snap.AckOffset).To(BeZero())
				Expect(snap.LastOffset).To(BeZero())
				Expect(snap.HasAlert).To(BeFalse())
				Expect(recorder.ack).To(BeZero())
			})
		})
	})

	Describe("acknowledgment", func() {
		It("moves the ack offset to the last offset regardless of alert state", func() {
			Expect(os.WriteFile(logPath, []byte("..X.."), 0o644)).To(Succeed())
			state := newState(0)
			state.Rescan()
			Expect(state.HasAlert()).To(BeTrue())

			state.Acknowledge()
			Expect(state.Snapshot().AckOffset).To(Equal(uint64(5)))
			Expect(state.HasAlert()).To(BeFalse())

			appendLog("...")
			state.Tick()
			state.Acknowledge()
			Expect(state.Snapshot().AckOffset).To(Equal(uint64(8)))
			Expect(recorder.ack).To(Equal(uint64(8)))
			Expect(state.HasAlert()).To(BeFalse())
		})

		It("is not re-raised after a restart", func() {
			Expect(os.WriteFile(logPath, []byte("X"), 0o644)).To(Succeed())
			state := newState(0)
			state.Rescan()
			state.Acknowledge()

			restarted := newState(recorder.ack)
			restarted.Rescan()
			Expect(restarted.HasAlert()).To(BeFalse())
		})
	})

	Describe("path change", func() {
		It("rescans the new file from byte zero", func() {
			Expect(os.WriteFile(logPath, []byte("....."), 0o644)).To(Succeed())
			state := newState(3)
			state.Rescan()

			other := filepath.Join(filepath.Dir(logPath), "other.log")
			Expect(os.WriteFile(other, []byte("X"), 0o644)).To(Succeed())
			state.SetPath(other)

			Expect(state.HasAlert()).To(BeTrue())
			Expect(recorder.path).To(Equal(other))
			Expect(recorder.ack).To(BeZero())
		})
	})
})
