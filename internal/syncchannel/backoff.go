package syncchannel

import "time"

// Backoff yields reconnect delays that start at Base and double after
// each consecutive failure up to Max.
type Backoff struct {
	Base time.Duration
	Max  time.Duration

	next time.Duration
}

// NewBackoff creates a backoff positioned at base.
func NewBackoff(base, max time.Duration) *Backoff {
	return &Backoff{Base: base, Max: max, next: base}
}

// Next returns the delay to wait now and advances the sequence.
func (b *Backoff) Next() time.Duration {
	if b.next <= 0 {
		b.next = b.Base
	}
	d := b.next
	if d > b.Max {
		d = b.Max
	}
	if b.next < b.Max {
		b.next *= 2
	}
	return d
}

// Reset rewinds the sequence to Base after a successful connection.
func (b *Backoff) Reset() {
	b.next = b.Base
}
