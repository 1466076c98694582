package runnable

import (
	"os"
	"os/signal"
	"syscall"
)

// SignalSource delivers process signals to a running app
type SignalSource interface {
	// Subscribe starts delivery; stop ends it and must be safe to call once
	Subscribe() (signals <-chan os.Signal, stop func())
}

// OSSignals subscribes to operating system signals
type OSSignals struct {
	// Signals defaults to SIGINT and SIGTERM
	Signals []os.Signal
}

// Subscribe implements SignalSource
func (s OSSignals) Subscribe() (<-chan os.Signal, func()) {
	sigs := s.Signals
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	return ch, func() { signal.Stop(ch) }
}

// ManualSignals is a SignalSource driven by Send, for tests and embedders
type ManualSignals struct {
	ch chan os.Signal
}

// NewManualSignals creates a manual source
func NewManualSignals() *ManualSignals {
	return &ManualSignals{ch: make(chan os.Signal, 1)}
}

// Subscribe implements SignalSource
func (m *ManualSignals) Subscribe() (<-chan os.Signal, func()) {
	return m.ch, func() {}
}

// Send delivers sig to the subscriber without blocking
func (m *ManualSignals) Send(sig os.Signal) {
	select {
	case m.ch <- sig:
	default:
	}
}
