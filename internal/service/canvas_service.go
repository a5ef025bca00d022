package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/weiawesome/wes-io-canvas/internal/hub"
	"github.com/weiawesome/wes-io-canvas/internal/protocol"
	"github.com/weiawesome/wes-io-canvas/pkg/log"
	"github.com/weiawesome/wes-io-canvas/pkg/pubsub"
)

var (
	// ErrNotJoined is returned when a connection mutates before joinBoard.
	ErrNotJoined = errors.New("connection has not joined a board")
	// ErrBoardMismatch is returned when a message targets another board
	// than the one joined.
	ErrBoardMismatch = errors.New("message board does not match joined board")
	// ErrProtocolAbuse is returned when an unjoined connection is closed
	// for sending too many mutations.
	ErrProtocolAbuse = errors.New("too many mutations before join")
)

type canvasService struct {
	registry   *hub.Registry
	relay      RelayPublisher
	maxStrikes int
}

// NewCanvasService creates the realtime service. relay may be nil.
// maxStrikes is the number of rejected mutations an unjoined connection
// may send before it is closed; zero disables the limit.
func NewCanvasService(registry *hub.Registry, relay RelayPublisher, maxStrikes int) CanvasService {
	return &canvasService{
		registry:   registry,
		relay:      relay,
		maxStrikes: maxStrikes,
	}
}

func (s *canvasService) HandleJoin(ctx context.Context, c Conn, msg *protocol.JoinBoard) error {
	prev := s.registry.Join(c, msg.BoardID)
	c.Session().Join(msg.BoardID, msg.User)

	l := log.Ctx(ctx)
	if prev != "" && prev != msg.BoardID {
		l.Info().Str(log.FieldClientID, c.ID()).Str("previous_board_id", prev).Str(log.FieldBoardID, msg.BoardID).Msg("client switched board")
	}

	return send(c, &protocol.JoinAck{BoardID: msg.BoardID, OK: true})
}

// authorize checks the join handshake and board match. It replies with an
// error message and returns a non-nil error when the message must be
// dropped.
func (s *canvasService) authorize(c Conn, msg protocol.BoardScoped, strike bool) error {
	sess := c.Session()
	joined := sess.BoardID()

	if joined == "" {
		if err := send(c, protocol.NewError(protocol.CodeNotJoined, "join a board before sending "+msg.Type())); err != nil {
			return err
		}
		if strike && s.maxStrikes > 0 && sess.Strike() >= s.maxStrikes {
			send(c, protocol.NewError(protocol.CodeBadRequest, "too many messages before join, closing"))
			c.Close()
			return ErrProtocolAbuse
		}
		return ErrNotJoined
	}

	if msg.Board() != joined {
		if err := send(c, protocol.NewError(protocol.CodeBoardMismatch, fmt.Sprintf("joined board %s, message targets %s", joined, msg.Board()))); err != nil {
			return err
		}
		return ErrBoardMismatch
	}
	return nil
}

func (s *canvasService) HandleMutation(ctx context.Context, c Conn, msg protocol.Mutation) error {
	if err := s.authorize(c, msg, true); err != nil {
		return err
	}
	return s.fanOut(ctx, c, msg, pubsub.EventBoardMutation)
}

func (s *canvasService) HandleCursor(ctx context.Context, c Conn, msg *protocol.CursorMove) error {
	if err := s.authorize(c, msg, false); err != nil {
		return err
	}
	return s.fanOut(ctx, c, msg, pubsub.EventCursorMove)
}

// fanOut re-encodes the validated message and relays it to every other
// member of the room, then to other instances.
func (s *canvasService) fanOut(ctx context.Context, c Conn, msg protocol.BoardScoped, eventType string) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		send(c, protocol.NewError(protocol.CodeInternalError, "failed to encode message"))
		return err
	}

	boardID := msg.Board()
	n := s.registry.Broadcast(boardID, data, c.ID())

	l := log.Ctx(ctx)
	l.Debug().Str(log.FieldClientID, c.ID()).Str(log.FieldBoardID, boardID).Str(log.FieldMessageType, msg.Type()).Int("delivered", n).Msg("relayed")

	if s.relay != nil {
		if err := s.relay.Publish(ctx, eventType, boardID, data); err != nil {
			l.Error().Err(err).Str(log.FieldBoardID, boardID).Msg("cross-instance relay failed")
		}
	}
	return nil
}

func (s *canvasService) HandleInvalid(ctx context.Context, c Conn, err error) error {
	l := log.Ctx(ctx)
	l.Debug().Err(err).Str(log.FieldClientID, c.ID()).Msg("rejected message")

	msg := "invalid message"
	switch {
	case errors.Is(err, protocol.ErrUnknownType):
		msg = "unknown message type"
	case errors.Is(err, hub.ErrRateLimited):
		msg = "rate limit exceeded"
	}
	return send(c, protocol.NewError(protocol.CodeBadRequest, msg))
}

func (s *canvasService) HandleDisconnect(ctx context.Context, c Conn) error {
	s.registry.Leave(c)
	c.Session().Leave()
	return nil
}

func send(c Conn, msg protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	return c.Send(data)
}
