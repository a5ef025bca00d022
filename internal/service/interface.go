package service

import (
	"context"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
	"github.com/weiawesome/wes-io-canvas/internal/protocol"
)

// Conn is a realtime connection as seen by the service.
type Conn interface {
	ID() string
	Send(data []byte) error
	Close() error
	Session() *domain.Session
}

// RelayPublisher forwards accepted traffic to other server instances.
type RelayPublisher interface {
	Publish(ctx context.Context, eventType, boardID string, envelope []byte) error
}

// CanvasService implements the server side of the realtime protocol.
type CanvasService interface {
	// HandleJoin puts the connection in the board's room, leaving any
	// previous room, and acknowledges.
	HandleJoin(ctx context.Context, c Conn, msg *protocol.JoinBoard) error

	// HandleMutation relays an element mutation to the other members of
	// the sender's room.
	HandleMutation(ctx context.Context, c Conn, msg protocol.Mutation) error

	// HandleCursor relays a cursor position.
	HandleCursor(ctx context.Context, c Conn, msg *protocol.CursorMove) error

	// HandleInvalid answers a message that failed validation.
	HandleInvalid(ctx context.Context, c Conn, err error) error

	// HandleDisconnect removes the connection from its room.
	HandleDisconnect(ctx context.Context, c Conn) error
}
