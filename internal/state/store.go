package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/logbeacon/internal/scheduler"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Status      scheduler.Snapshot
	HasStatus   bool
	Tooltip     string
	LastUpdated time.Time
	LastError   error

	// Acknowledgments counts OnAcknowledged calls; LastAcknowledged is when
	// the most recent one arrived. PopupVisible measures the popup from
	// LastAcknowledged.
	Acknowledgments  int
	LastAcknowledged time.Time
}

// PopupVisible reports whether an acknowledgment popup started at
// LastAcknowledged should still be on screen at now.
func (s Snapshot) PopupVisible(now time.Time, d time.Duration) bool {
	if s.Acknowledgments == 0 {
		return false
	}
	return now.Sub(s.LastAcknowledged) < d
}

// Store coordinates the scheduler goroutine publishing state with the UI
// reading it. It implements watch.Sink and serves as the scheduler observer.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	now      func() time.Time
}

// Update replaces the stored scheduler snapshot.
func (s *Store) Update(snap scheduler.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Status = snap
	s.snapshot.HasStatus = true
	s.snapshot.LastUpdated = s.clock()
}

// SetError records the last failed UI command. A nil err clears it.
func (s *Store) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastError = err
}

// OnStateChanged implements watch.Sink.
func (s *Store) OnStateChanged(hasAlert bool, tooltip string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Status.HasAlert = hasAlert
	s.snapshot.Tooltip = tooltip
}

// OnAcknowledged implements watch.Sink.
func (s *Store) OnAcknowledged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Acknowledgments++
	s.snapshot.LastAcknowledged = s.clock()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
