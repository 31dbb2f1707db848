package out

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/booking-link-engine/internal/core/domain"
)

// StoragePort - контракт персистентного хранилища
type StoragePort interface {
	// Конфигурация ссылок бронирования
	GetLinkConfig(ctx context.Context, linkID uuid.UUID) (*domain.BookingLinkConfig, error)
	MarkLinkExpired(ctx context.Context, linkID uuid.UUID) error

	// Исключение из недельного шаблона для конкретной даты, nil если его нет
	GetDateOverride(ctx context.Context, ownerID uuid.UUID, date time.Time) (*domain.DateOverride, error)

	// Занятые интервалы: события календаря, блокировки времени, подтвержденные брони
	GetBusyIntervals(ctx context.Context, assigneeIDs []uuid.UUID, start, end time.Time) ([]domain.BusyInterval, error)

	// Брони
	// CreateBooking атомарно сохраняет бронь и, если markExpired = true,
	// в той же транзакции помечает одноразовую ссылку исчерпанной
	CreateBooking(ctx context.Context, booking *domain.Booking, markExpired bool) error
	CountBookings(ctx context.Context, linkID uuid.UUID, start, end time.Time) (int, error)
	CountBookingsByMember(ctx context.Context, linkID uuid.UUID, memberIDs []uuid.UUID) (map[uuid.UUID]int, error)

	// WithBookingLock выполняет fn под advisory-блокировкой ссылки,
	// сериализуя конкурирующие попытки бронирования по одной ссылке
	WithBookingLock(ctx context.Context, linkID uuid.UUID, fn func(ctx context.Context) error) error
}
