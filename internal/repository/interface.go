package repository

import (
	"context"
	"errors"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
)

var (
	ErrBoardNotFound   = domain.ErrBoardNotFound
	ErrElementExists   = errors.New("element already exists")
	ErrElementNotFound = errors.New("element not found")
)

// BoardRepository defines the interface for board persistence.
type BoardRepository interface {
	Create(ctx context.Context, board *domain.Board) error
	GetByID(ctx context.Context, id string) (*domain.Board, error)
	List(ctx context.Context, page, pageSize int) ([]domain.Board, int, error)
}

// ElementRepository defines the interface for element persistence. Every
// operation is scoped to one board.
type ElementRepository interface {
	Create(ctx context.Context, boardID string, el domain.Element) error
	Upsert(ctx context.Context, boardID string, els []domain.Element) error
	Delete(ctx context.Context, boardID string, ids []string) (int, error)
	List(ctx context.Context, boardID string) ([]domain.Element, error)
}
