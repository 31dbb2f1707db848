package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/suchimauz/booking-link-engine/internal/core/domain"
)

type StoragePort struct {
	mock.Mock
}

func NewStoragePort(t interface {
	mock.TestingT
	Cleanup(func())
}) *StoragePort {
	m := &StoragePort{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *StoragePort) GetLinkConfig(ctx context.Context, linkID uuid.UUID) (*domain.BookingLinkConfig, error) {
	ret := m.Called(ctx, linkID)

	var r0 *domain.BookingLinkConfig
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.BookingLinkConfig)
	}
	return r0, ret.Error(1)
}

func (m *StoragePort) MarkLinkExpired(ctx context.Context, linkID uuid.UUID) error {
	ret := m.Called(ctx, linkID)
	return ret.Error(0)
}

func (m *StoragePort) GetDateOverride(ctx context.Context, ownerID uuid.UUID, date time.Time) (*domain.DateOverride, error) {
	ret := m.Called(ctx, ownerID, date)

	var r0 *domain.DateOverride
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.DateOverride)
	}
	return r0, ret.Error(1)
}

func (m *StoragePort) GetBusyIntervals(ctx context.Context, assigneeIDs []uuid.UUID, start, end time.Time) ([]domain.BusyInterval, error) {
	ret := m.Called(ctx, assigneeIDs, start, end)

	var r0 []domain.BusyInterval
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.BusyInterval)
	}
	return r0, ret.Error(1)
}

func (m *StoragePort) CreateBooking(ctx context.Context, booking *domain.Booking, markExpired bool) error {
	ret := m.Called(ctx, booking, markExpired)
	return ret.Error(0)
}

func (m *StoragePort) CountBookings(ctx context.Context, linkID uuid.UUID, start, end time.Time) (int, error) {
	ret := m.Called(ctx, linkID, start, end)
	return ret.Int(0), ret.Error(1)
}

func (m *StoragePort) CountBookingsByMember(ctx context.Context, linkID uuid.UUID, memberIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	ret := m.Called(ctx, linkID, memberIDs)

	var r0 map[uuid.UUID]int
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[uuid.UUID]int)
	}
	return r0, ret.Error(1)
}

// WithBookingLock в моке не берет никаких блокировок:
// при отсутствии настроенной ошибки просто выполняет fn
func (m *StoragePort) WithBookingLock(ctx context.Context, linkID uuid.UUID, fn func(ctx context.Context) error) error {
	ret := m.Called(ctx, linkID)
	if err := ret.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}
