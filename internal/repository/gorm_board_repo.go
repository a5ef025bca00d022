package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
	"github.com/weiawesome/wes-io-canvas/pkg/log"
)

// GormBoardRepository implements BoardRepository using GORM.
type GormBoardRepository struct {
	db *gorm.DB
}

// NewGormBoardRepository creates a new GORM-based board repository.
func NewGormBoardRepository(db *gorm.DB) *GormBoardRepository {
	return &GormBoardRepository{db: db}
}

// Create stores a new board. An empty id is replaced by a generated one.
func (r *GormBoardRepository) Create(ctx context.Context, board *domain.Board) error {
	l := log.Ctx(ctx)

	if board.ID == "" {
		board.ID = uuid.New().String()
	}

	model := &BoardModel{ID: board.ID, Title: board.Title}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Msg("failed to create board in db")
		return err
	}

	board.CreatedAt = model.CreatedAt
	board.UpdatedAt = model.UpdatedAt
	l.Debug().Str(log.FieldBoardID, board.ID).Msg("board created in db")
	return nil
}

// GetByID retrieves a board by ID.
func (r *GormBoardRepository) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	l := log.Ctx(ctx)

	var model BoardModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		l.Error().Err(result.Error).Str(log.FieldBoardID, id).Msg("failed to get board by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// List retrieves boards, newest first.
func (r *GormBoardRepository) List(ctx context.Context, page, pageSize int) ([]domain.Board, int, error) {
	l := log.Ctx(ctx)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query := r.db.WithContext(ctx).Model(&BoardModel{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("failed to count boards")
		return nil, 0, err
	}

	var models []BoardModel
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&models).Error; err != nil {
		l.Error().Err(err).Msg("failed to list boards from db")
		return nil, 0, err
	}

	boards := make([]domain.Board, len(models))
	for i, model := range models {
		boards[i] = *model.ToDomain()
	}
	return boards, int(total), nil
}
