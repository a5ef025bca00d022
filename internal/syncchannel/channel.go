// Package syncchannel is the client side of the realtime protocol: it
// keeps a connection to the server alive, performs the join handshake on
// every connect, throttles outbound drag traffic and applies inbound
// mutations to the element store.
package syncchannel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
	"github.com/weiawesome/wes-io-canvas/internal/protocol"
	"github.com/weiawesome/wes-io-canvas/internal/store"
	"github.com/weiawesome/wes-io-canvas/pkg/log"
)

var (
	// ErrNotConnected is returned by Send while no connection is up.
	// Messages are dropped, not queued for replay.
	ErrNotConnected = errors.New("sync channel not connected")
	// ErrSendBufferFull is returned when the outbound queue is full.
	ErrSendBufferFull = errors.New("sync channel send buffer full")
)

// Config configures a Channel.
type Config struct {
	URL              string
	BoardID          string
	User             *domain.Identity
	ThrottleInterval time.Duration
	BackoffBase      time.Duration
	BackoffMax       time.Duration
	WriteWait        time.Duration
	PongWait         time.Duration
	PingInterval     time.Duration
	MaxMessageSize   int64
	SendBuffer       int
}

// DefaultConfig returns the standard timings.
func DefaultConfig() Config {
	return Config{
		ThrottleInterval: 50 * time.Millisecond,
		BackoffBase:      250 * time.Millisecond,
		BackoffMax:       5 * time.Second,
		WriteWait:        10 * time.Second,
		PongWait:         60 * time.Second,
		PingInterval:     30 * time.Second,
		MaxMessageSize:   1 << 20,
		SendBuffer:       256,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ThrottleInterval <= 0 {
		c.ThrottleInterval = d.ThrottleInterval
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = d.BackoffBase
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = d.BackoffMax
	}
	if c.WriteWait <= 0 {
		c.WriteWait = d.WriteWait
	}
	if c.PongWait <= 0 {
		c.PongWait = d.PongWait
	}
	if c.PingInterval <= 0 || c.PingInterval >= c.PongWait {
		c.PingInterval = c.PongWait * 9 / 10
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = d.SendBuffer
	}
	return c
}

// Channel is one client's connection to a board room.
type Channel struct {
	cfg     Config
	dialer  Dialer
	store   *store.ElementStore
	backoff *Backoff
	clock   Clock
	sleep   func(ctx context.Context, d time.Duration) error

	updates *Throttler
	cursor  *Throttler

	onMessage func(protocol.Message)
	onConnect func()

	mu     sync.RWMutex
	send   chan []byte
	joined bool
}

// Option configures a Channel.
type Option func(*Channel)

// WithClock replaces the clock used for throttling.
func WithClock(clock Clock) Option {
	return func(c *Channel) { c.clock = clock }
}

// WithSleep replaces the function used to wait between reconnects.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Channel) { c.sleep = sleep }
}

// WithOnMessage registers a callback invoked after every inbound message
// has been applied to the store.
func WithOnMessage(fn func(protocol.Message)) Option {
	return func(c *Channel) { c.onMessage = fn }
}

// WithOnConnect registers a callback invoked when a connection is up and
// the joinBoard message is queued.
func WithOnConnect(fn func()) Option {
	return func(c *Channel) { c.onConnect = fn }
}

// New creates a channel. Run must be called to connect.
func New(cfg Config, dialer Dialer, s *store.ElementStore, opts ...Option) *Channel {
	cfg = cfg.withDefaults()
	c := &Channel{
		cfg:     cfg,
		dialer:  dialer,
		store:   s,
		backoff: NewBackoff(cfg.BackoffBase, cfg.BackoffMax),
		clock:   realClock{},
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.updates = NewThrottler(cfg.ThrottleInterval, c.clock, c.Send)
	c.cursor = NewThrottler(cfg.ThrottleInterval, c.clock, c.Send)
	return c
}

// BoardID returns the board this channel joins.
func (c *Channel) BoardID() string { return c.cfg.BoardID }

// Connected reports whether a connection is up.
func (c *Channel) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.send != nil
}

// Joined reports whether the server acknowledged the join on the current
// connection.
func (c *Channel) Joined() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.joined
}

// Run connects and keeps reconnecting with backoff until ctx is done.
func (c *Channel) Run(ctx context.Context) error {
	l := log.Ctx(ctx)
	for {
		conn, err := c.dialer.Dial(ctx, c.cfg.URL)
		if err == nil {
			c.backoff.Reset()
			l.Info().Str(log.FieldBoardID, c.cfg.BoardID).Msg("sync channel connected")
			err = c.session(ctx, conn)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := c.backoff.Next()
		l.Warn().Err(err).Dur("retry_in", delay).Msg("sync channel disconnected")
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func (c *Channel) session(ctx context.Context, conn Conn) error {
	join, err := protocol.Encode(&protocol.JoinBoard{BoardID: c.cfg.BoardID, User: c.cfg.User})
	if err != nil {
		conn.Close()
		return err
	}

	send := make(chan []byte, c.cfg.SendBuffer)
	send <- join

	c.mu.Lock()
	c.send = send
	c.joined = false
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.send = nil
		c.joined = false
		c.mu.Unlock()
		c.updates.Cancel()
		c.cursor.Cancel()
	}()

	if c.onConnect != nil {
		c.onConnect()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readPump(conn) })
	g.Go(func() error { return c.writePump(gctx, conn, send) })
	g.Go(func() error {
		<-gctx.Done()
		conn.Close()
		return nil
	})
	return g.Wait()
}

func (c *Channel) readPump(conn Conn) error {
	conn.SetReadLimit(c.cfg.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	l := log.L()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))

		msg, err := protocol.Parse(data)
		if err != nil {
			l.Warn().Err(err).Msg("sync channel: dropping inbound message")
			continue
		}
		c.apply(msg)
	}
}

// apply routes an inbound message through the same store operations local
// edits use.
func (c *Channel) apply(msg protocol.Message) {
	l := log.L()

	if b, ok := msg.(protocol.BoardScoped); ok && b.Board() != c.cfg.BoardID {
		l.Warn().Str(log.FieldBoardID, b.Board()).Str(log.FieldMessageType, msg.Type()).Msg("sync channel: message for another board")
		return
	}

	switch m := msg.(type) {
	case *protocol.JoinAck:
		if m.BoardID == c.cfg.BoardID {
			c.mu.Lock()
			c.joined = m.OK
			c.mu.Unlock()
		}
	case *protocol.ElementUpdate:
		c.store.Upsert(m.Element)
	case *protocol.ElementsUpdate:
		c.store.UpsertMany(m.Elements)
	case *protocol.ElementsDelete:
		c.store.RemoveMany(m.IDs)
	case *protocol.Error:
		l.Warn().Str("code", m.Code).Str("message", m.Message).Msg("sync channel: server error")
	}

	if c.onMessage != nil {
		c.onMessage(msg)
	}
}

func (c *Channel) writePump(ctx context.Context, conn Conn, send <-chan []byte) error {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return ctx.Err()

		case data := <-send:
			conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return fmt.Errorf("write: %w", err)
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}

// Send queues msg immediately. While disconnected it returns
// ErrNotConnected and the message is dropped.
func (c *Channel) Send(msg protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.send == nil {
		return ErrNotConnected
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// SendThrottled sends an intermediate update through the throttle window.
func (c *Channel) SendThrottled(msg protocol.Message) {
	c.updates.Submit(msg)
}

// SendFinal cancels any pending throttled update and sends msg now.
func (c *Channel) SendFinal(msg protocol.Message) error {
	return c.updates.Flush(msg)
}

// MoveCursor reports the local pointer position, throttled.
func (c *Channel) MoveCursor(p domain.Point) {
	c.cursor.Submit(&protocol.CursorMove{BoardID: c.cfg.BoardID, Point: p, User: c.cfg.User})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
