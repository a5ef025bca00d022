package syncchannel

import (
	"sync"
	"time"

	"github.com/weiawesome/wes-io-canvas/internal/protocol"
	"github.com/weiawesome/wes-io-canvas/pkg/log"
)

// Throttler forwards at most one message per interval. A message submitted
// inside the window replaces any earlier pending one and is delivered when
// the window closes, so the latest value is never lost. Flush bypasses the
// window.
type Throttler struct {
	mu       sync.Mutex
	interval time.Duration
	clock    Clock
	send     func(protocol.Message) error

	last       time.Time
	sentOnce   bool
	pending    protocol.Message
	timer      Timer
	generation uint64
}

// NewThrottler creates a throttler delivering to send. send is called with
// the throttler's lock held and must not call back into it.
func NewThrottler(interval time.Duration, clock Clock, send func(protocol.Message) error) *Throttler {
	if clock == nil {
		clock = realClock{}
	}
	return &Throttler{interval: interval, clock: clock, send: send}
}

// Submit delivers msg now if the window is open, otherwise keeps it as the
// trailing value.
func (t *Throttler) Submit(msg protocol.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	if t.timer == nil && (!t.sentOnce || now.Sub(t.last) >= t.interval) {
		t.deliverLogged(msg, now)
		return
	}

	t.pending = msg
	if t.timer == nil {
		gen := t.generation
		t.timer = t.clock.AfterFunc(t.last.Add(t.interval).Sub(now), func() { t.fire(gen) })
	}
}

// Flush drops any pending value and delivers msg immediately.
func (t *Throttler) Flush(msg protocol.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stop()
	return t.deliver(msg, t.clock.Now())
}

// Cancel drops any pending value.
func (t *Throttler) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stop()
}

func (t *Throttler) fire(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.generation {
		return
	}
	t.timer = nil
	if t.pending != nil {
		msg := t.pending
		t.pending = nil
		t.deliverLogged(msg, t.clock.Now())
	}
}

func (t *Throttler) stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.generation++
	t.pending = nil
}

func (t *Throttler) deliver(msg protocol.Message, now time.Time) error {
	t.last = now
	t.sentOnce = true
	return t.send(msg)
}

func (t *Throttler) deliverLogged(msg protocol.Message, now time.Time) {
	if err := t.deliver(msg, now); err != nil {
		l := log.L()
		l.Debug().Err(err).Str(log.FieldMessageType, msg.Type()).Msg("throttled message dropped")
	}
}
