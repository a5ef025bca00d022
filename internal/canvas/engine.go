// Package canvas connects the interaction controller of a client view to
// the realtime channel and the persistence gateway.
package canvas

import (
	"context"
	"sync"
	"time"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
	"github.com/weiawesome/wes-io-canvas/internal/interaction"
	"github.com/weiawesome/wes-io-canvas/internal/protocol"
	"github.com/weiawesome/wes-io-canvas/internal/store"
	"github.com/weiawesome/wes-io-canvas/pkg/log"
)

// DefaultPersistTimeout bounds one persistence call.
const DefaultPersistTimeout = 10 * time.Second

// Sender is the outbound side of the realtime channel.
type Sender interface {
	SendThrottled(msg protocol.Message)
	SendFinal(msg protocol.Message) error
}

// Gateway persists elements.
type Gateway interface {
	ListElements(ctx context.Context, boardID string) ([]domain.Element, error)
	CreateElement(ctx context.Context, boardID string, el domain.Element) error
	BatchUpdate(ctx context.Context, boardID string, els []domain.Element) error
	BatchDelete(ctx context.Context, boardID string, ids []string) error
}

// Engine turns controller mutations into realtime messages and
// persistence calls. Persistence is fire-and-forget: failures are logged
// and never undo what peers already received.
type Engine struct {
	boardID        string
	sender         Sender
	gateway        Gateway
	persistTimeout time.Duration

	wg sync.WaitGroup
}

// NewEngine creates an engine for boardID. gateway may be nil to skip
// persistence.
func NewEngine(boardID string, sender Sender, gateway Gateway) *Engine {
	return &Engine{
		boardID:        boardID,
		sender:         sender,
		gateway:        gateway,
		persistTimeout: DefaultPersistTimeout,
	}
}

// Hydrate loads the board's elements into s. It must run before the
// realtime channel starts applying remote traffic.
func (e *Engine) Hydrate(ctx context.Context, s *store.ElementStore) error {
	if e.gateway == nil {
		return nil
	}
	els, err := e.gateway.ListElements(ctx, e.boardID)
	if err != nil {
		return err
	}
	s.Reset(els)

	l := log.Ctx(ctx)
	l.Info().Str(log.FieldBoardID, e.boardID).Int("elements", len(els)).Msg("board hydrated")
	return nil
}

// Emit implements interaction.Emitter.
func (e *Engine) Emit(m interaction.Mutation) {
	msg := e.message(m)
	if msg == nil {
		return
	}

	if !m.Final {
		e.sender.SendThrottled(msg)
		return
	}

	if err := e.sender.SendFinal(msg); err != nil {
		l := log.L()
		l.Warn().Err(err).Str(log.FieldBoardID, e.boardID).Str("mutation", m.Kind.String()).Msg("mutation not sent")
	}
	e.persist(m)
}

func (e *Engine) message(m interaction.Mutation) protocol.Message {
	switch m.Kind {
	case interaction.MutationCreate, interaction.MutationUpdate:
		switch len(m.Elements) {
		case 0:
			return nil
		case 1:
			return &protocol.ElementUpdate{BoardID: e.boardID, Element: m.Elements[0]}
		default:
			return &protocol.ElementsUpdate{BoardID: e.boardID, Elements: m.Elements}
		}
	case interaction.MutationDelete:
		if len(m.IDs) == 0 {
			return nil
		}
		return &protocol.ElementsDelete{BoardID: e.boardID, IDs: m.IDs}
	}
	return nil
}

func (e *Engine) persist(m interaction.Mutation) {
	if e.gateway == nil {
		return
	}

	var call func(ctx context.Context) error
	switch m.Kind {
	case interaction.MutationCreate:
		el := m.Elements[0]
		call = func(ctx context.Context) error { return e.gateway.CreateElement(ctx, e.boardID, el) }
	case interaction.MutationUpdate:
		els := m.Elements
		call = func(ctx context.Context) error { return e.gateway.BatchUpdate(ctx, e.boardID, els) }
	case interaction.MutationDelete:
		ids := m.IDs
		call = func(ctx context.Context) error { return e.gateway.BatchDelete(ctx, e.boardID, ids) }
	default:
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), e.persistTimeout)
		defer cancel()

		if err := call(ctx); err != nil {
			l := log.L()
			l.Error().Err(err).Str(log.FieldBoardID, e.boardID).Str("mutation", m.Kind.String()).Msg("failed to persist mutation")
		}
	}()
}

// Wait blocks until in-flight persistence calls have finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}
