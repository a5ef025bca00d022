package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/weiawesome/wes-io-canvas/internal/config"
	"github.com/weiawesome/wes-io-canvas/internal/hub"
	"github.com/weiawesome/wes-io-canvas/internal/protocol"
	"github.com/weiawesome/wes-io-canvas/internal/service"
	"github.com/weiawesome/wes-io-canvas/pkg/log"
)

// WSHandler upgrades connections on /ws and routes their messages to the
// canvas service.
type WSHandler struct {
	registry *hub.Registry
	service  service.CanvasService
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WebSocket handler.
func NewWSHandler(registry *hub.Registry, svc service.CanvasService, cfg config.WebSocketConfig) *WSHandler {
	h := &WSHandler{
		registry: registry,
		service:  svc,
		cfg:      cfg,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin accepts every origin when no allow list is configured.
func (h *WSHandler) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) || strings.EqualFold(allowed, u.Host) {
			return true
		}
	}
	return false
}

// HandleWebSocket handles WebSocket upgrade and message routing.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	l := log.L()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), conn, h.cfg)
	client.SetDisconnectHandler(func(c *hub.Client) {
		if err := h.service.HandleDisconnect(context.Background(), c); err != nil {
			l.Error().Err(err).Str(log.FieldClientID, c.ID()).Msg("disconnect handler error")
		}
		l.Debug().Str(log.FieldClientID, c.ID()).Msg("client disconnected")
	})

	l.Debug().Str(log.FieldClientID, client.ID()).Str(log.FieldClientIP, r.RemoteAddr).Msg("client connected")

	go client.WritePump()
	go client.ReadPump(h.handleMessage)
}

func (h *WSHandler) handleMessage(client *hub.Client, data []byte) {
	l := log.L().With().Str(log.FieldClientID, client.ID()).Logger()
	ctx := log.WithLogger(context.Background(), l)

	if !client.Allow() {
		h.service.HandleInvalid(ctx, client, hub.ErrRateLimited)
		return
	}

	msg, err := protocol.Parse(data)
	if err != nil {
		h.service.HandleInvalid(ctx, client, err)
		return
	}

	switch m := msg.(type) {
	case *protocol.JoinBoard:
		if err := h.service.HandleJoin(ctx, client, m); err != nil {
			l.Error().Err(err).Str(log.FieldBoardID, m.BoardID).Msg("join board failed")
		}

	case *protocol.ElementUpdate, *protocol.ElementsUpdate, *protocol.ElementsDelete:
		err := h.service.HandleMutation(ctx, client, m.(protocol.Mutation))
		if errors.Is(err, service.ErrProtocolAbuse) {
			l.Warn().Msg("closed unjoined client after repeated mutations")
		} else if err != nil && !isRejection(err) {
			l.Error().Err(err).Str(log.FieldMessageType, m.Type()).Msg("mutation failed")
		}

	case *protocol.CursorMove:
		if err := h.service.HandleCursor(ctx, client, m); err != nil && !isRejection(err) {
			l.Error().Err(err).Msg("cursor move failed")
		}

	default:
		// joinAck and error only flow server to client.
		h.service.HandleInvalid(ctx, client, protocol.ErrUnknownType)
	}
}

// isRejection reports errors already answered with an error message.
func isRejection(err error) bool {
	return errors.Is(err, service.ErrNotJoined) || errors.Is(err, service.ErrBoardMismatch)
}

// HandleHealth reports liveness.
func (h *WSHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// HandleStats reports live rooms and connections.
func (h *WSHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.registry.Stats())
}

// RegisterRoutes registers the realtime routes.
func (h *WSHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws", h.HandleWebSocket)
	router.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)
	router.HandleFunc("/stats", h.HandleStats).Methods(http.MethodGet)
}
