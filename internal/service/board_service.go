package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/weiawesome/wes-io-canvas/internal/audit"
	"github.com/weiawesome/wes-io-canvas/internal/cache"
	"github.com/weiawesome/wes-io-canvas/internal/domain"
	"github.com/weiawesome/wes-io-canvas/internal/repository"
	"github.com/weiawesome/wes-io-canvas/pkg/log"
)

// DefaultBoardTitle names boards created without a title.
const DefaultBoardTitle = "Untitled board"

var (
	ErrBoardNotFound = repository.ErrBoardNotFound
	ErrElementExists = repository.ErrElementExists
)

// BoardService backs the persistence gateway API.
type BoardService interface {
	CreateBoard(ctx context.Context, title string) (*domain.Board, error)
	GetBoard(ctx context.Context, boardID string) (*domain.Board, error)
	ListBoards(ctx context.Context, page, pageSize int) (*domain.ListBoardsResponse, error)

	ListElements(ctx context.Context, boardID string) ([]domain.Element, error)
	CreateElement(ctx context.Context, boardID string, el domain.Element) error
	UpsertElements(ctx context.Context, boardID string, els []domain.Element) error
	DeleteElements(ctx context.Context, boardID string, ids []string) (int, error)
}

type boardServiceImpl struct {
	boards   repository.BoardRepository
	elements repository.ElementRepository
	cache    cache.ElementCache
}

// NewBoardService creates the gateway service. elementCache may be nil.
func NewBoardService(boards repository.BoardRepository, elements repository.ElementRepository, elementCache cache.ElementCache) BoardService {
	return &boardServiceImpl{
		boards:   boards,
		elements: elements,
		cache:    elementCache,
	}
}

func (s *boardServiceImpl) CreateBoard(ctx context.Context, title string) (*domain.Board, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultBoardTitle
	}

	board := &domain.Board{Title: title}
	if err := s.boards.Create(ctx, board); err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.ActionCreateBoard, board.ID, "board created")
	return board, nil
}

func (s *boardServiceImpl) GetBoard(ctx context.Context, boardID string) (*domain.Board, error) {
	return s.boards.GetByID(ctx, boardID)
}

func (s *boardServiceImpl) ListBoards(ctx context.Context, page, pageSize int) (*domain.ListBoardsResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	boards, total, err := s.boards.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	return &domain.ListBoardsResponse{
		Boards:     boards,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// ListElements reads through the cache. Cache failures fall back to the
// database.
func (s *boardServiceImpl) ListElements(ctx context.Context, boardID string) ([]domain.Element, error) {
	l := log.Ctx(ctx)

	if s.cache != nil {
		els, err := s.cache.Get(ctx, boardID)
		if err == nil {
			return els, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			l.Warn().Err(err).Str(log.FieldBoardID, boardID).Msg("element cache read failed")
		}
	}

	els, err := s.elements.List(ctx, boardID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, boardID, els); err != nil {
			l.Warn().Err(err).Str(log.FieldBoardID, boardID).Msg("element cache write failed")
		}
	}
	return els, nil
}

func (s *boardServiceImpl) CreateElement(ctx context.Context, boardID string, el domain.Element) error {
	if err := el.Validate(); err != nil {
		return err
	}
	if err := s.elements.Create(ctx, boardID, el); err != nil {
		return err
	}

	s.invalidate(ctx, boardID)
	audit.Log(ctx, audit.ActionCreateElement, boardID, "element created")
	return nil
}

func (s *boardServiceImpl) UpsertElements(ctx context.Context, boardID string, els []domain.Element) error {
	for i, el := range els {
		if err := el.Validate(); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	if err := s.elements.Upsert(ctx, boardID, els); err != nil {
		return err
	}

	s.invalidate(ctx, boardID)
	audit.LogCount(ctx, audit.ActionUpdateElements, boardID, len(els), "elements updated")
	return nil
}

func (s *boardServiceImpl) DeleteElements(ctx context.Context, boardID string, ids []string) (int, error) {
	for _, id := range ids {
		if id == "" {
			return 0, fmt.Errorf("%w: empty id", domain.ErrInvalidElement)
		}
	}
	if _, err := s.boards.GetByID(ctx, boardID); err != nil {
		return 0, err
	}

	n, err := s.elements.Delete(ctx, boardID, ids)
	if err != nil {
		return 0, err
	}

	s.invalidate(ctx, boardID)
	audit.LogCount(ctx, audit.ActionDeleteElements, boardID, n, "elements deleted")
	return n, nil
}

func (s *boardServiceImpl) invalidate(ctx context.Context, boardID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, boardID); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldBoardID, boardID).Msg("element cache invalidation failed")
	}
}
