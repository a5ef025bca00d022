package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardRelayChannelRoundTrip(t *testing.T) {
	ch := BoardRelayChannel("b1")
	assert.Equal(t, "canvas:board:b1:relay", ch)

	id, err := BoardIDFromChannel(ch)
	require.NoError(t, err)
	assert.Equal(t, "b1", id)

	for _, bad := range []string{"", "canvas:board::relay", "signal:room:x:to_media", "canvas:board:x"} {
		_, err := BoardIDFromChannel(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewEventPayload(t *testing.T) {
	ev, err := NewEvent(EventBoardMutation, "b1", "inst-1", RelayPayload{Envelope: []byte(`{"type":"x"}`)})
	require.NoError(t, err)
	assert.Equal(t, "b1", ev.BoardID)
	assert.Equal(t, "inst-1", ev.Origin)

	var p RelayPayload
	require.NoError(t, ev.UnmarshalPayload(&p))
	assert.JSONEq(t, `{"type":"x"}`, string(p.Envelope))
}

func receive(t *testing.T, ch <-chan *Event) *Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestMemoryPubSubChannelAndPattern(t *testing.T) {
	ps := NewMemoryPubSub()
	defer ps.Close()
	ctx := context.Background()

	direct, err := ps.Subscribe(ctx, BoardRelayChannel("b1"))
	require.NoError(t, err)
	all, err := ps.SubscribePattern(ctx, PatternBoardRelay)
	require.NoError(t, err)

	ev := &Event{Type: EventCursorMove, BoardID: "b2"}
	require.NoError(t, ps.Publish(ctx, BoardRelayChannel("b2"), ev))
	assert.Same(t, ev, receive(t, all))

	select {
	case got := <-direct:
		t.Fatalf("unexpected event for b1: %+v", got)
	default:
	}

	ev1 := &Event{Type: EventBoardMutation, BoardID: "b1"}
	require.NoError(t, ps.Publish(ctx, BoardRelayChannel("b1"), ev1))
	assert.Same(t, ev1, receive(t, direct))
	assert.Same(t, ev1, receive(t, all))
}

func TestMemoryPubSubUnsubscribeClosesChannel(t *testing.T) {
	ps := NewMemoryPubSub()
	ctx := context.Background()

	ch, err := ps.Subscribe(ctx, "c")
	require.NoError(t, err)
	require.NoError(t, ps.Unsubscribe(ctx, "c"))

	_, open := <-ch
	assert.False(t, open)

	require.NoError(t, ps.Close())
	assert.Error(t, ps.Publish(ctx, "c", &Event{}))
	_, err = ps.Subscribe(ctx, "c")
	assert.Error(t, err)
}

func TestMemoryPubSubContextCancel(t *testing.T) {
	ps := NewMemoryPubSub()
	defer ps.Close()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := ps.Subscribe(ctx, "c")
	require.NoError(t, err)
	cancel()

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after cancel")
	}
}

func TestNewPubSubDrivers(t *testing.T) {
	ps, err := NewPubSub(Config{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryPubSub{}, ps)
	require.NoError(t, ps.Close())

	_, err = NewPubSub(Config{Driver: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestSanitizeGroupID(t *testing.T) {
	assert.Equal(t, "canvas-board-b1-relay", sanitizeGroupID("canvas:board:b1:relay"))
}
