package repository

import (
	"time"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
	"github.com/weiawesome/wes-io-canvas/pkg/database"
)

// BoardModel is the GORM model for the boards table.
type BoardModel struct {
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	Title     string    `gorm:"type:varchar(200);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (BoardModel) TableName() string {
	return "boards"
}

func (m *BoardModel) ToDomain() *domain.Board {
	return &domain.Board{
		ID:        m.ID,
		Title:     m.Title,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ElementModel is the GORM model for the elements table. Position keeps
// insertion order, which is the board's z-order.
type ElementModel struct {
	BoardID   string  `gorm:"type:varchar(64);primaryKey"`
	ID        string  `gorm:"type:varchar(64);primaryKey"`
	Position  int64   `gorm:"index;not null"`
	Type      string  `gorm:"type:varchar(16);not null"`
	X         float64 `gorm:"not null"`
	Y         float64 `gorm:"not null"`
	Text      string  `gorm:"type:text"`
	Size      float64
	FontSize  float64
	Color     string             `gorm:"type:varchar(32)"`
	Style     database.StringMap `gorm:"type:text"`
	CreatedAt time.Time          `gorm:"autoCreateTime"`
	UpdatedAt time.Time          `gorm:"autoUpdateTime"`
}

func (ElementModel) TableName() string {
	return "elements"
}

func (m *ElementModel) ToDomain() domain.Element {
	return domain.Element{
		ID:       m.ID,
		Type:     domain.ElementType(m.Type),
		X:        m.X,
		Y:        m.Y,
		Text:     m.Text,
		Size:     m.Size,
		FontSize: m.FontSize,
		Color:    m.Color,
		Style:    map[string]string(m.Style),
	}
}

// ElementToModel converts a domain element of boardID to its model. The
// position is assigned by the repository.
func ElementToModel(boardID string, el domain.Element) *ElementModel {
	return &ElementModel{
		BoardID:  boardID,
		ID:       el.ID,
		Type:     string(el.Type),
		X:        el.X,
		Y:        el.Y,
		Text:     el.Text,
		Size:     el.Size,
		FontSize: el.FontSize,
		Color:    el.Color,
		Style:    database.StringMap(el.Style),
	}
}

// Models lists every model for AutoMigrate.
func Models() []interface{} {
	return []interface{}{&BoardModel{}, &ElementModel{}}
}
