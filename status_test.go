package buvette

import (
	"sync"
	"testing"
	"time"
)

type statusRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *statusRecorder) record(kind StatusKind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *statusRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func TestStatusLineRevertsAfterWarning(t *testing.T) {
	rec := &statusRecorder{}
	s := NewStatusLine(rec.record)
	s.delay = 10 * time.Millisecond
	defer s.Stop()

	s.Set(StatusWarning, "unknown barcode")

	deadline := time.After(time.Second)
	for {
		got := rec.snapshot()
		if len(got) == 2 {
			if got[0] != "unknown barcode" || got[1] != "Ready to scan" {
				t.Fatalf("messages = %q", got)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("no reversion, messages = %q", got)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestStatusLineInfoDoesNotRevert(t *testing.T) {
	rec := &statusRecorder{}
	s := NewStatusLine(rec.record)
	s.delay = 5 * time.Millisecond
	defer s.Stop()

	s.Set(StatusInfo, "Member: Alice")
	s.Set(StatusSuccess, "Recorded 3.00")

	time.Sleep(30 * time.Millisecond)
	got := rec.snapshot()
	if len(got) != 2 {
		t.Fatalf("messages = %q, info and success must not schedule a reversion", got)
	}
}

func TestStatusLineCancelAndReplace(t *testing.T) {
	rec := &statusRecorder{}
	s := NewStatusLine(rec.record)
	s.delay = 20 * time.Millisecond
	defer s.Stop()

	s.Set(StatusWarning, "first")
	time.Sleep(5 * time.Millisecond)
	// The second message cancels the first reversion and installs its own.
	s.Set(StatusWarning, "second")

	time.Sleep(60 * time.Millisecond)
	got := rec.snapshot()
	want := []string{"first", "second", "Ready to scan"}
	if len(got) != len(want) {
		t.Fatalf("messages = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("messages = %q, want %q", got, want)
		}
	}
}

func TestStatusLineStopCancelsReversion(t *testing.T) {
	rec := &statusRecorder{}
	s := NewStatusLine(rec.record)
	s.delay = 5 * time.Millisecond

	s.Set(StatusError, "broken")
	s.Stop()

	time.Sleep(30 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 1 {
		t.Fatalf("messages = %q, Stop must cancel the pending reversion", got)
	}
}
