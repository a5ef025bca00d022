package hub

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-canvas/internal/config"
)

type frame struct {
	kind int
	data []byte
}

// scriptConn replays inbound messages, then fails reads.
type scriptConn struct {
	mu      sync.Mutex
	inbound [][]byte
	written []frame
	closed  bool
}

func (c *scriptConn) ReadMessage() (int, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.inbound) == 0 {
		return 0, nil, errors.New("read: connection reset")
	}
	msg := c.inbound[0]
	c.inbound = c.inbound[1:]
	return websocket.TextMessage, msg, nil
}

func (c *scriptConn) WriteMessage(kind int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, frame{kind, data})
	return nil
}

func (c *scriptConn) frames() []frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]frame(nil), c.written...)
}

func (c *scriptConn) SetReadDeadline(time.Time) error   { return nil }
func (c *scriptConn) SetWriteDeadline(time.Time) error  { return nil }
func (c *scriptConn) SetReadLimit(int64)                {}
func (c *scriptConn) SetPongHandler(func(string) error) {}
func (c *scriptConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestClientSendAfterClose(t *testing.T) {
	cfg := config.DefaultWebSocket()
	cfg.SendBuffer = 1
	c := NewClient("c", &scriptConn{}, cfg)

	require.NoError(t, c.Send([]byte("a")))
	assert.ErrorIs(t, c.Send([]byte("b")), ErrSendBufferFull)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Send([]byte("c")), websocket.ErrCloseSent)
}

func TestClientWritePumpDrainsThenCloses(t *testing.T) {
	conn := &scriptConn{}
	c := NewClient("c", conn, config.DefaultWebSocket())

	require.NoError(t, c.Send([]byte("one")))
	require.NoError(t, c.Send([]byte("two")))
	c.Close()

	done := make(chan struct{})
	go func() {
		c.WritePump()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("write pump did not stop")
	}

	frames := conn.frames()
	require.Len(t, frames, 3)
	assert.Equal(t, "one", string(frames[0].data))
	assert.Equal(t, "two", string(frames[1].data))
	assert.Equal(t, websocket.CloseMessage, frames[2].kind)
}

func TestClientReadPumpDispatchesAndDisconnects(t *testing.T) {
	conn := &scriptConn{inbound: [][]byte{[]byte("a"), []byte("b")}}
	c := NewClient("c", conn, config.DefaultWebSocket())

	var got []string
	var disconnected int
	c.SetDisconnectHandler(func(*Client) { disconnected++ })
	c.ReadPump(func(_ *Client, data []byte) { got = append(got, string(data)) })

	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, disconnected)
	assert.True(t, conn.closed)
	assert.ErrorIs(t, c.Send([]byte("x")), websocket.ErrCloseSent)
}

func TestClientRateLimit(t *testing.T) {
	cfg := config.DefaultWebSocket()
	cfg.MessageRate = 1
	cfg.MessageBurst = 2
	c := NewClient("c", &scriptConn{}, cfg)

	assert.True(t, c.Allow())
	assert.True(t, c.Allow())
	assert.False(t, c.Allow())

	cfg.MessageRate = 0
	unlimited := NewClient("u", &scriptConn{}, cfg)
	for i := 0; i < 1000; i++ {
		require.True(t, unlimited.Allow())
	}
}
