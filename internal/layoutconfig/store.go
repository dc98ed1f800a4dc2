package layoutconfig

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bankfiles/internal/entity"
)

// Store persists layout configurations.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.LayoutConfiguration, error)
	GetDefault(ctx context.Context, bankID string) (*entity.LayoutConfiguration, error)
	Upsert(ctx context.Context, cfg *entity.LayoutConfiguration) (*entity.LayoutConfiguration, error)
	List(ctx context.Context, bankID string) ([]*entity.LayoutConfiguration, error)
}
