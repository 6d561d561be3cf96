package scheduler

import "time"

// Ticker delivers periodic ticks. It mirrors *time.Ticker behind an interface
// so tests can drive ticks by hand.
type Ticker interface {
	C() <-chan time.Time
	Stop()
	Reset(d time.Duration)
}

// Clock creates tickers.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// RealClock returns a Clock backed by time.NewTicker.
func RealClock() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) NewTicker(d time.Duration) Ticker {
	return realTicker{ticker: time.NewTicker(d)}
}

type realTicker struct {
	ticker *time.Ticker
}

func (r realTicker) C() <-chan time.Time   { return r.ticker.C }
func (r realTicker) Stop()                 { r.ticker.Stop() }
func (r realTicker) Reset(d time.Duration) { r.ticker.Reset(d) }
