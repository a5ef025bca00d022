package syncchannel

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
	"github.com/weiawesome/wes-io-canvas/internal/protocol"
)

func cursorAt(x float64) protocol.Message {
	return &protocol.CursorMove{BoardID: "b", Point: domain.Point{X: x}}
}

func xs(msgs []protocol.Message) []float64 {
	out := make([]float64, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.(*protocol.CursorMove).Point.X)
	}
	return out
}

func TestThrottlerTrailingValue(t *testing.T) {
	clock := newFakeClock()
	var sent []protocol.Message
	th := NewThrottler(50*time.Millisecond, clock, func(m protocol.Message) error {
		sent = append(sent, m)
		return nil
	})

	th.Submit(cursorAt(1))
	assert.Equal(t, []float64{1}, xs(sent))

	clock.Advance(10 * time.Millisecond)
	th.Submit(cursorAt(2))
	clock.Advance(10 * time.Millisecond)
	th.Submit(cursorAt(3))
	assert.Equal(t, []float64{1}, xs(sent), "updates inside the window are held back")

	clock.Advance(30 * time.Millisecond)
	assert.Equal(t, []float64{1, 3}, xs(sent), "only the latest pending value is delivered")

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, []float64{1, 3}, xs(sent))

	th.Submit(cursorAt(4))
	assert.Equal(t, []float64{1, 3, 4}, xs(sent), "window reopened")
}

func TestThrottlerFlushBypassesWindow(t *testing.T) {
	clock := newFakeClock()
	var sent []protocol.Message
	th := NewThrottler(50*time.Millisecond, clock, func(m protocol.Message) error {
		sent = append(sent, m)
		return nil
	})

	th.Submit(cursorAt(1))
	clock.Advance(5 * time.Millisecond)
	th.Submit(cursorAt(2))

	assert.NoError(t, th.Flush(cursorAt(99)))
	assert.Equal(t, []float64{1, 99}, xs(sent))

	clock.Advance(time.Second)
	assert.Equal(t, []float64{1, 99}, xs(sent), "pending value dropped by flush")
}

func TestThrottlerCancel(t *testing.T) {
	clock := newFakeClock()
	var sent []protocol.Message
	th := NewThrottler(50*time.Millisecond, clock, func(m protocol.Message) error {
		sent = append(sent, m)
		return nil
	})

	th.Submit(cursorAt(1))
	th.Submit(cursorAt(2))
	th.Cancel()
	clock.Advance(time.Second)
	assert.Equal(t, []float64{1}, xs(sent))
}

func TestThrottlerFlushReturnsSendError(t *testing.T) {
	boom := errors.New("boom")
	th := NewThrottler(time.Millisecond, newFakeClock(), func(protocol.Message) error { return boom })
	assert.ErrorIs(t, th.Flush(cursorAt(1)), boom)
}
