package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Unit selects how user-entered interval values are interpreted.
type Unit int

const (
	Seconds Unit = iota
	Minutes
)

func (u Unit) String() string {
	if u == Minutes {
		return "minutes"
	}
	return "seconds"
}

// ErrInvalidInterval is wrapped by every ParseInterval failure.
var ErrInvalidInterval = errors.New("invalid interval")

// ParseInterval validates an interval typed by the user. The value must be a
// finite number of at least half a second and must fit the timer range.
func ParseInterval(text string, unit Unit) (time.Duration, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: enter a numeric interval", ErrInvalidInterval)
	}
	seconds := value
	if unit == Minutes {
		seconds = value * 60
	}
	if math.IsInf(seconds, 0) || seconds < MinInterval.Seconds() {
		return 0, fmt.Errorf("%w: value must be at least %s seconds", ErrInvalidInterval, strconv.FormatFloat(MinInterval.Seconds(), 'f', -1, 64))
	}
	if seconds > MaxInterval.Seconds() {
		return 0, fmt.Errorf("%w: value exceeds the timer limit", ErrInvalidInterval)
	}
	return time.Duration(math.Round(seconds*1000)) * time.Millisecond, nil
}

// FormatInterval renders d in the unit the interval prompt would preselect:
// whole minutes when d is a multiple of a minute, seconds otherwise.
func FormatInterval(d time.Duration) (string, Unit) {
	if d >= time.Minute && d%time.Minute == 0 {
		return strconv.FormatFloat(d.Minutes(), 'f', 3, 64), Minutes
	}
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64), Seconds
}
