package repository

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
	"github.com/weiawesome/wes-io-canvas/pkg/log"
)

// GormElementRepository implements ElementRepository using GORM.
type GormElementRepository struct {
	db *gorm.DB
}

// NewGormElementRepository creates a new GORM-based element repository.
func NewGormElementRepository(db *gorm.DB) *GormElementRepository {
	return &GormElementRepository{db: db}
}

// Create stores one new element on top of the board.
func (r *GormElementRepository) Create(ctx context.Context, boardID string, el domain.Element) error {
	l := log.Ctx(ctx)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := boardExists(tx, boardID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&ElementModel{}).Where("board_id = ? AND id = ?", boardID, el.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrElementExists
		}

		next, err := nextPosition(tx, boardID)
		if err != nil {
			return err
		}
		model := ElementToModel(boardID, el)
		model.Position = next
		return tx.Create(model).Error
	})
	if err != nil {
		if !errors.Is(err, ErrBoardNotFound) && !errors.Is(err, ErrElementExists) {
			l.Error().Err(err).Str(log.FieldBoardID, boardID).Str(log.FieldElementID, el.ID).Msg("failed to create element in db")
		}
		return err
	}

	l.Debug().Str(log.FieldBoardID, boardID).Str(log.FieldElementID, el.ID).Msg("element created in db")
	return nil
}

// Upsert creates or replaces elements. Existing elements keep their
// position; new ones are stacked on top in slice order. Last write wins.
func (r *GormElementRepository) Upsert(ctx context.Context, boardID string, els []domain.Element) error {
	if len(els) == 0 {
		return nil
	}
	l := log.Ctx(ctx)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := boardExists(tx, boardID); err != nil {
			return err
		}

		ids := make([]string, len(els))
		for i, el := range els {
			ids[i] = el.ID
		}
		var existing []string
		if err := tx.Model(&ElementModel{}).Where("board_id = ? AND id IN ?", boardID, ids).Pluck("id", &existing).Error; err != nil {
			return err
		}
		known := make(map[string]bool, len(existing))
		for _, id := range existing {
			known[id] = true
		}

		next, err := nextPosition(tx, boardID)
		if err != nil {
			return err
		}

		models := make([]*ElementModel, 0, len(els))
		seen := make(map[string]int, len(els))
		for _, el := range els {
			model := ElementToModel(boardID, el)
			if i, dup := seen[el.ID]; dup {
				model.Position = models[i].Position
				models[i] = model
				continue
			}
			if !known[el.ID] {
				model.Position = next
				next++
			}
			seen[el.ID] = len(models)
			models = append(models, model)
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "board_id"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"type", "x", "y", "text", "size", "font_size", "color", "style", "updated_at"}),
		}).Create(&models).Error
	})
	if err != nil {
		if !errors.Is(err, ErrBoardNotFound) {
			l.Error().Err(err).Str(log.FieldBoardID, boardID).Int("count", len(els)).Msg("failed to upsert elements in db")
		}
		return err
	}

	l.Debug().Str(log.FieldBoardID, boardID).Int("count", len(els)).Msg("elements upserted in db")
	return nil
}

// Delete removes elements by id and returns how many existed.
func (r *GormElementRepository) Delete(ctx context.Context, boardID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	l := log.Ctx(ctx)

	result := r.db.WithContext(ctx).Where("board_id = ? AND id IN ?", boardID, ids).Delete(&ElementModel{})
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldBoardID, boardID).Msg("failed to delete elements from db")
		return 0, result.Error
	}

	l.Debug().Str(log.FieldBoardID, boardID).Int64("deleted", result.RowsAffected).Msg("elements deleted from db")
	return int(result.RowsAffected), nil
}

// List returns a board's elements bottom to top.
func (r *GormElementRepository) List(ctx context.Context, boardID string) ([]domain.Element, error) {
	l := log.Ctx(ctx)

	if err := boardExists(r.db.WithContext(ctx), boardID); err != nil {
		return nil, err
	}

	var models []ElementModel
	if err := r.db.WithContext(ctx).Where("board_id = ?", boardID).Order("position ASC").Find(&models).Error; err != nil {
		l.Error().Err(err).Str(log.FieldBoardID, boardID).Msg("failed to list elements from db")
		return nil, err
	}

	els := make([]domain.Element, len(models))
	for i := range models {
		els[i] = models[i].ToDomain()
	}
	return els, nil
}

func boardExists(tx *gorm.DB, boardID string) error {
	var count int64
	if err := tx.Model(&BoardModel{}).Where("id = ?", boardID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrBoardNotFound
	}
	return nil
}

func nextPosition(tx *gorm.DB, boardID string) (int64, error) {
	var max sql.NullInt64
	if err := tx.Model(&ElementModel{}).Where("board_id = ?", boardID).Select("MAX(position)").Row().Scan(&max); err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Int64 + 1, nil
}
