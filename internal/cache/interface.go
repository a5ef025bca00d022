package cache

import (
	"context"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
)

// ElementCache caches the element list of a board. Writes to a board must
// invalidate its entry.
type ElementCache interface {
	Get(ctx context.Context, boardID string) ([]domain.Element, error)
	Set(ctx context.Context, boardID string, els []domain.Element) error
	Invalidate(ctx context.Context, boardIDs ...string) error
	Close() error
}
