// Package state is the hand-off point between the scheduler goroutine and the
// terminal UI.
//
// The scheduler owns the watch state and never shares it. After each event it
// publishes a value Snapshot through Store.Update, and the watch state machine
// reports presentation changes through the watch.Sink methods. The UI polls
// Store.Snapshot on its own refresh tick.
//
//	Scheduler goroutine:            UI goroutine:
//	  Observer -> store.Update()      store.Snapshot() -> render
//	  Sink     -> store.OnAcknowledged()
//
// Store uses a sync.RWMutex and is ready to use as a zero value. Snapshot
// returns a copy, and the error the UI records through SetError is re-wrapped
// so callers never share the stored instance.
//
// The acknowledgment popup is timed from LastAcknowledged; see
// Snapshot.PopupVisible.
package state
