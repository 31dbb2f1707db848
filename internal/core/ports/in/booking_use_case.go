package in

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/booking-link-engine/internal/core/domain"
)

// AvailabilityQuery - запрос свободных слотов по ссылке бронирования
type AvailabilityQuery struct {
	LinkID    uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	Timezone  string
}

type AvailabilityUseCase interface {
	// GetAvailableSlots возвращает упорядоченный список свободных слотов
	// Пустой список - валидный ответ, означает отсутствие доступности
	GetAvailableSlots(ctx context.Context, query AvailabilityQuery) ([]domain.Slot, []domain.DebugInfo, error)

	// Инвалидация кэша слотов, вызывается слушателем изменений календаря
	InvalidateLinkCache(ctx context.Context, linkID uuid.UUID)
	InvalidateOwnerCache(ctx context.Context, ownerID uuid.UUID)
	InvalidateAllCache(ctx context.Context)
}

// BookingRequest - попытка гостя забронировать выбранный слот
type BookingRequest struct {
	LinkID     uuid.UUID
	Start      time.Time
	End        time.Time
	GuestName  string
	GuestEmail string
	GuestNotes string
}

// BookingResult - созданная бронь
// Degraded = true, если бронь подтверждена, но побочные эффекты не удались
type BookingResult struct {
	Booking  *domain.Booking
	Degraded bool
}

type BookingUseCase interface {
	CreateBooking(ctx context.Context, req BookingRequest) (*BookingResult, error)
}
