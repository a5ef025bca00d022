package canvas

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
	"github.com/weiawesome/wes-io-canvas/pkg/log"
)

// BoardGateway looks up and creates boards.
type BoardGateway interface {
	GetBoard(ctx context.Context, boardID string) (*domain.Board, error)
	CreateBoard(ctx context.Context, title string) (*domain.Board, error)
}

// Resolver finds the board a client opens, creating one when no id is
// given. Concurrent calls share one in-flight request, so a double
// invocation cannot create two boards.
type Resolver struct {
	gateway BoardGateway
	group   singleflight.Group

	mu      sync.Mutex
	created *domain.Board
}

// NewResolver creates a resolver.
func NewResolver(gateway BoardGateway) *Resolver {
	return &Resolver{gateway: gateway}
}

// Resolve returns the board with boardID, or creates a board titled title
// when boardID is empty. Once created, the same board is returned for
// later empty ids.
func (r *Resolver) Resolve(ctx context.Context, boardID, title string) (*domain.Board, error) {
	if boardID != "" {
		v, err, _ := r.group.Do("get:"+boardID, func() (interface{}, error) {
			return r.gateway.GetBoard(ctx, boardID)
		})
		if err != nil {
			return nil, err
		}
		return v.(*domain.Board), nil
	}

	v, err, shared := r.group.Do("create", func() (interface{}, error) {
		r.mu.Lock()
		created := r.created
		r.mu.Unlock()
		if created != nil {
			return created, nil
		}

		board, err := r.gateway.CreateBoard(ctx, title)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.created = board
		r.mu.Unlock()

		l := log.Ctx(ctx)
		l.Info().Str(log.FieldBoardID, board.ID).Msg("board created")
		return board, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		l := log.Ctx(ctx)
		l.Debug().Msg("board resolution shared an in-flight request")
	}
	return v.(*domain.Board), nil
}
