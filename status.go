package buvette

import (
	"sync"
	"time"
)

// StatusKind classifies a status message.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarning
	StatusError
)

// statusRevertDelay is how long a warning or error stays up before the
// line reverts to the idle prompt.
const statusRevertDelay = 10 * time.Second

// StatusLine publishes transient status messages to a display
// callback. Warnings and errors revert to the idle prompt after a
// delay; a new message cancels any pending reversion and installs its
// own (cancel-and-replace). The reversion is the only background task
// in the whole application.
type StatusLine struct {
	notify func(StatusKind, string)
	idle   string
	delay  time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewStatusLine creates a status line publishing through notify.
func NewStatusLine(notify func(StatusKind, string)) *StatusLine {
	return &StatusLine{
		notify: notify,
		idle:   "Ready to scan",
		delay:  statusRevertDelay,
	}
}

// Set publishes a message, cancelling any pending reversion. Warnings
// and errors schedule a reversion to the idle prompt.
func (s *StatusLine) Set(kind StatusKind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.notify(kind, message)
	if kind == StatusWarning || kind == StatusError {
		s.timer = time.AfterFunc(s.delay, func() {
			s.mu.Lock()
			s.timer = nil
			s.mu.Unlock()
			s.notify(StatusInfo, s.idle)
		})
	}
}

// Stop cancels any pending reversion without publishing anything.
func (s *StatusLine) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
