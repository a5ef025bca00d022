package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/weiawesome/wes-io-canvas/internal/config"
	"github.com/weiawesome/wes-io-canvas/internal/domain"
	"github.com/weiawesome/wes-io-canvas/pkg/log"
)

// Conn is the part of *websocket.Conn a Client uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// DisconnectHandler is called once when a client's read loop ends.
type DisconnectHandler func(*Client)

// Client is a websocket connection served by the realtime server.
type Client struct {
	id                string
	session           *domain.Session
	conn              Conn
	cfg               config.WebSocketConfig
	send              chan []byte
	limiter           *rate.Limiter
	disconnectHandler DisconnectHandler

	mu     sync.Mutex
	closed bool
}

// NewClient wraps conn. The read and write pumps must be started by the
// caller.
func NewClient(id string, conn Conn, cfg config.WebSocketConfig) *Client {
	buf := cfg.SendBuffer
	if buf <= 0 {
		buf = 256
	}
	c := &Client{
		id:      id,
		session: domain.NewSession(id),
		conn:    conn,
		cfg:     cfg,
		send:    make(chan []byte, buf),
	}
	if cfg.MessageRate > 0 {
		burst := cfg.MessageBurst
		if burst < 1 {
			burst = int(cfg.MessageRate) + 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.MessageRate), burst)
	}
	return c
}

func (c *Client) ID() string { return c.id }

// Session returns the connection's protocol state.
func (c *Client) Session() *domain.Session { return c.session }

// Allow reports whether one more inbound message fits the connection's
// rate limit.
func (c *Client) Allow() bool {
	return c.limiter == nil || c.limiter.Allow()
}

// SetDisconnectHandler sets the handler to be called on disconnect.
func (c *Client) SetDisconnectHandler(handler DisconnectHandler) {
	c.disconnectHandler = handler
}

// Send queues data without blocking.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close stops the write pump, which sends a close frame and closes the
// connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

// ReadPump delivers inbound messages to handler one at a time until the
// connection fails, then runs the disconnect handler.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer func() {
		if c.disconnectHandler != nil {
			c.disconnectHandler(c)
		}
		c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				l := log.L()
				l.Warn().Err(err).Str(log.FieldClientID, c.id).Msg("websocket error")
			}
			return
		}

		c.session.UpdateActivity()
		handler(c, message)
	}
}

// WritePump writes queued messages and keepalive pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
