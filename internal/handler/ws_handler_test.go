package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-canvas/internal/config"
	"github.com/weiawesome/wes-io-canvas/internal/domain"
	"github.com/weiawesome/wes-io-canvas/internal/hub"
	"github.com/weiawesome/wes-io-canvas/internal/protocol"
	"github.com/weiawesome/wes-io-canvas/internal/service"
	"github.com/weiawesome/wes-io-canvas/internal/store"
	"github.com/weiawesome/wes-io-canvas/internal/syncchannel"
)

func newTestServer(t *testing.T, cfg config.WebSocketConfig) (*httptest.Server, *hub.Registry) {
	t.Helper()
	reg := hub.NewRegistry()
	h := NewWSHandler(reg, service.NewCanvasService(reg, nil, cfg.MaxUnjoinedStrikes), cfg)
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, reg
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

type recorder struct {
	mu   sync.Mutex
	msgs []protocol.Message
}

func (r *recorder) add(msg protocol.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) mutations() []protocol.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []protocol.Message
	for _, m := range r.msgs {
		if _, ok := m.(protocol.Mutation); ok {
			out = append(out, m)
		}
	}
	return out
}

func startChannel(t *testing.T, ctx context.Context, url, boardID string, s *store.ElementStore, rec *recorder) *syncchannel.Channel {
	t.Helper()
	ch := syncchannel.New(syncchannel.Config{URL: url, BoardID: boardID}, syncchannel.NewWebsocketDialer(time.Second), s,
		syncchannel.WithOnMessage(rec.add))
	go ch.Run(ctx)
	require.Eventually(t, ch.Joined, 2*time.Second, 10*time.Millisecond)
	return ch
}

func TestTwoClientsShareBoard(t *testing.T) {
	srv, reg := newTestServer(t, config.DefaultWebSocket())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storeA, storeB := store.New(), store.New()
	recA, recB := &recorder{}, &recorder{}
	chA := startChannel(t, ctx, wsURL(srv), "42", storeA, recA)
	chB := startChannel(t, ctx, wsURL(srv), "42", storeB, recB)
	assert.Equal(t, 2, reg.RoomSize("42"))

	s1 := domain.Element{ID: "s1", Type: domain.ElementNote, X: 100, Y: 100}
	storeA.Upsert(s1)
	require.NoError(t, chA.SendFinal(&protocol.ElementsUpdate{BoardID: "42", Elements: []domain.Element{s1}}))

	require.Eventually(t, func() bool { return storeB.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	got, ok := storeB.Get("s1")
	require.True(t, ok)
	assert.Equal(t, 100.0, got.X)
	assert.Equal(t, 100.0, got.Y)

	// B's delete reaches A after anything the server queued for A before it.
	require.NoError(t, chB.SendFinal(&protocol.ElementsDelete{BoardID: "42", IDs: []string{"s1"}}))
	require.Eventually(t, func() bool { return storeA.Len() == 0 }, 2*time.Second, 10*time.Millisecond)

	mutA := recA.mutations()
	require.Len(t, mutA, 1, "sender must not receive its own update")
	assert.Equal(t, protocol.TypeElementsDelete, mutA[0].Type())
	assert.Len(t, recB.mutations(), 1)
}

func TestBoardsAreIsolated(t *testing.T) {
	srv, _ := newTestServer(t, config.DefaultWebSocket())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storeA, storeB, storeC := store.New(), store.New(), store.New()
	chA := startChannel(t, ctx, wsURL(srv), "1", storeA, &recorder{})
	startChannel(t, ctx, wsURL(srv), "2", storeB, &recorder{})
	startChannel(t, ctx, wsURL(srv), "1", storeC, &recorder{})

	el := domain.Element{ID: "n", Type: domain.ElementNote}
	require.NoError(t, chA.SendFinal(&protocol.ElementUpdate{BoardID: "1", Element: el}))

	require.Eventually(t, func() bool { return storeC.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, storeB.Len())
}

func dialRaw(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) protocol.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	msg, err := protocol.Parse(data)
	require.NoError(t, err)
	return msg
}

func TestMutationBeforeJoin(t *testing.T) {
	srv, reg := newTestServer(t, config.DefaultWebSocket())
	conn := dialRaw(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, protocol.MustEncode(&protocol.ElementsDelete{BoardID: "42", IDs: []string{"x"}})))
	msg := readMessage(t, conn)
	e, ok := msg.(*protocol.Error)
	require.True(t, ok)
	assert.Equal(t, protocol.CodeNotJoined, e.Code)
	assert.Equal(t, 0, reg.Stats().Rooms)

	// Malformed input is answered and the connection stays usable.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"nope","payload":{}}`)))
	e, ok = readMessage(t, conn).(*protocol.Error)
	require.True(t, ok)
	assert.Equal(t, protocol.CodeBadRequest, e.Code)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, protocol.MustEncode(&protocol.JoinBoard{BoardID: "42"})))
	ack, ok := readMessage(t, conn).(*protocol.JoinAck)
	require.True(t, ok)
	assert.True(t, ack.OK)
}

func TestUnjoinedAbuseDisconnects(t *testing.T) {
	cfg := config.DefaultWebSocket()
	cfg.MaxUnjoinedStrikes = 2
	srv, _ := newTestServer(t, cfg)
	conn := dialRaw(t, srv)

	mutation := protocol.MustEncode(&protocol.ElementsDelete{BoardID: "42", IDs: []string{"x"}})
	for i := 0; i < 2; i++ {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, mutation))
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var err error
	for err == nil {
		_, _, err = conn.ReadMessage()
	}
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) || strings.Contains(err.Error(), "close"), "got %v", err)
}

func TestStatsAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, config.DefaultWebSocket())
	conn := dialRaw(t, srv)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, protocol.MustEncode(&protocol.JoinBoard{BoardID: "42"})))
	readMessage(t, conn)

	resp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	var stats hub.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.Rooms)
	assert.Equal(t, 1, stats.Members)
	assert.Equal(t, 1, stats.ByBoard["42"])

	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestCheckOrigin(t *testing.T) {
	cfg := config.DefaultWebSocket()
	cfg.AllowedOrigins = []string{"canvas.example.com"}
	h := NewWSHandler(hub.NewRegistry(), nil, cfg)

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "https://canvas.example.com")
	assert.True(t, h.checkOrigin(r))

	r.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, h.checkOrigin(r))
}

func TestRateLimitedMessagesAreRejected(t *testing.T) {
	cfg := config.DefaultWebSocket()
	cfg.MessageRate = 0.001
	cfg.MessageBurst = 1
	srv, reg := newTestServer(t, cfg)
	conn := dialRaw(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, protocol.MustEncode(&protocol.JoinBoard{BoardID: "42"})))
	_, ok := readMessage(t, conn).(*protocol.JoinAck)
	require.True(t, ok)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, protocol.MustEncode(&protocol.JoinBoard{BoardID: "7"})))
	e, ok := readMessage(t, conn).(*protocol.Error)
	require.True(t, ok)
	assert.Equal(t, protocol.CodeBadRequest, e.Code)
	assert.Equal(t, "rate limit exceeded", e.Message)
	assert.Equal(t, 1, reg.RoomSize("42"))
}
