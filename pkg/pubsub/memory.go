package pubsub

import (
	"context"
	"fmt"
	"path"
	"sync"
)

type memorySubscription struct {
	pattern bool
	ch      chan *Event
	cancel  context.CancelFunc
}

// MemoryPubSub is an in-process PubSub used when a single server instance
// runs alone and by tests. Patterns use path.Match syntax, which agrees with
// Redis glob patterns for the '*' wildcard used by relay channels.
type MemoryPubSub struct {
	mu     sync.RWMutex
	subs   map[string]*memorySubscription
	closed bool
}

// NewMemoryPubSub creates an empty in-process PubSub.
func NewMemoryPubSub() *MemoryPubSub {
	return &MemoryPubSub{subs: make(map[string]*memorySubscription)}
}

// Publish delivers event to every matching subscription. Full subscriber
// buffers drop the event, matching the other drivers.
func (m *MemoryPubSub) Publish(ctx context.Context, channel string, event *Event) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("pubsub closed")
	}

	for key, sub := range m.subs {
		if !matches(key, sub.pattern, channel) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

func matches(key string, pattern bool, channel string) bool {
	if !pattern {
		return key == channel
	}
	ok, err := path.Match(key, channel)
	return err == nil && ok
}

// Subscribe subscribes to a specific channel.
func (m *MemoryPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	return m.add(ctx, channel, false)
}

// SubscribePattern subscribes to channels matching a pattern.
func (m *MemoryPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return m.add(ctx, pattern, true)
}

func (m *MemoryPubSub) add(ctx context.Context, key string, pattern bool) (<-chan *Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("pubsub closed")
	}
	if existing, ok := m.subs[key]; ok {
		m.drop(key, existing)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &memorySubscription{pattern: pattern, ch: make(chan *Event, 100), cancel: cancel}
	m.subs[key] = sub

	go func() {
		<-subCtx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.subs[key] == sub {
			m.drop(key, sub)
		}
	}()

	return sub.ch, nil
}

// drop must be called with mu held.
func (m *MemoryPubSub) drop(key string, sub *memorySubscription) {
	delete(m.subs, key)
	sub.cancel()
	close(sub.ch)
}

// Unsubscribe removes the subscription registered under channel.
func (m *MemoryPubSub) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub, ok := m.subs[channel]; ok {
		m.drop(channel, sub)
	}
	return nil
}

// Close removes every subscription.
func (m *MemoryPubSub) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, sub := range m.subs {
		m.drop(key, sub)
	}
	m.closed = true
	return nil
}
