package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/suchimauz/booking-link-engine/internal/core/domain"
	"github.com/suchimauz/booking-link-engine/internal/core/ports/out"
)

type MeetingLinkPort struct {
	mock.Mock
}

func NewMeetingLinkPort(t interface {
	mock.TestingT
	Cleanup(func())
}) *MeetingLinkPort {
	m := &MeetingLinkPort{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MeetingLinkPort) CreateMeetingLink(ctx context.Context, ownerID uuid.UUID, req out.MeetingLinkRequest) (string, error) {
	ret := m.Called(ctx, ownerID, req)
	return ret.String(0), ret.Error(1)
}

type CachePort struct {
	mock.Mock
}

func NewCachePort(t interface {
	mock.TestingT
	Cleanup(func())
}) *CachePort {
	m := &CachePort{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *CachePort) GetSlots(ctx context.Context, linkID uuid.UUID, start, end time.Time, timezone string) ([]domain.Slot, bool) {
	ret := m.Called(ctx, linkID, start, end, timezone)

	var r0 []domain.Slot
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Slot)
	}
	return r0, ret.Bool(1)
}

func (m *CachePort) StoreSlots(ctx context.Context, linkID uuid.UUID, assigneeIDs []uuid.UUID, start, end time.Time, timezone string, slots []domain.Slot) {
	m.Called(ctx, linkID, assigneeIDs, start, end, timezone, slots)
}

func (m *CachePort) InvalidateLink(ctx context.Context, linkID uuid.UUID) {
	m.Called(ctx, linkID)
}

func (m *CachePort) InvalidateOwner(ctx context.Context, ownerID uuid.UUID) {
	m.Called(ctx, ownerID)
}

func (m *CachePort) InvalidateAll(ctx context.Context) {
	m.Called(ctx)
}

type NotifierPort struct {
	mock.Mock
}

func NewNotifierPort(t interface {
	mock.TestingT
	Cleanup(func())
}) *NotifierPort {
	m := &NotifierPort{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *NotifierPort) Notify(ctx context.Context, event out.NotificationEvent, payload interface{}) bool {
	ret := m.Called(ctx, event, payload)
	return ret.Bool(0)
}
