//go:build windows

package instance

import "os"

func ackSignals() []os.Signal { return nil }

func signalAcknowledge(int) error { return ErrSignalUnsupported }
