package out

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/booking-link-engine/internal/core/domain"
)

// CachePort - кэш рассчитанных слотов доступности
// Ответы из кэша могут быть устаревшими, это допустимо:
// авторитетная проверка выполняется заново при создании брони
type CachePort interface {
	GetSlots(ctx context.Context, linkID uuid.UUID, start, end time.Time, timezone string) ([]domain.Slot, bool)
	StoreSlots(ctx context.Context, linkID uuid.UUID, assigneeIDs []uuid.UUID, start, end time.Time, timezone string, slots []domain.Slot)
	InvalidateLink(ctx context.Context, linkID uuid.UUID)
	InvalidateOwner(ctx context.Context, ownerID uuid.UUID)
	InvalidateAll(ctx context.Context)
}
