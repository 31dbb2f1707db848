package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/suchimauz/booking-link-engine/internal/config"
	"github.com/suchimauz/booking-link-engine/internal/core/domain"
	"github.com/suchimauz/booking-link-engine/internal/core/json_types"
	"github.com/suchimauz/booking-link-engine/internal/core/ports/in"
	"github.com/suchimauz/booking-link-engine/internal/core/ports/mocks"
	"github.com/suchimauz/booking-link-engine/internal/core/ports/out"
)

func newBookingService(storage *mocks.StoragePort, cfg *config.Config) *BookingService {
	cfg.Booking.SideEffectTimeoutSeconds = 5
	return &BookingService{
		storage: storage,
		logger:  mocks.NopLogger{},
		cfg:     cfg,
		now:     func() time.Time { return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC) },
	}
}

// bookingRequest - корректная попытка на слот 10:00-10:30 тестового понедельника
func bookingRequest(link *domain.BookingLinkConfig) in.BookingRequest {
	return in.BookingRequest{
		LinkID:     link.ID,
		Start:      time.Date(2024, time.January, 8, 10, 0, 0, 0, time.UTC),
		End:        time.Date(2024, time.January, 8, 10, 30, 0, 0, time.UTC),
		GuestName:  "Анна Петрова",
		GuestEmail: "anna@example.com",
	}
}

func expectRecheck(storage *mocks.StoragePort, link *domain.BookingLinkConfig, busy []domain.BusyInterval) {
	storage.On("GetLinkConfig", mock.Anything, link.ID).Return(link, nil)
	storage.On("WithBookingLock", mock.Anything, link.ID).Return(nil)
	storage.On("GetDateOverride", mock.Anything, link.OwnerID, mock.Anything).Return(nil, nil)
	storage.On("GetBusyIntervals", mock.Anything, link.Assignees(), mock.Anything, mock.Anything).
		Return(busy, nil)
}

func TestCreateBooking_Success(t *testing.T) {
	link := testLink()
	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())

	expectRecheck(storage, link, nil)
	storage.On("CreateBooking", mock.Anything, mock.Anything, false).Return(nil)

	result, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	require.NoError(t, err)
	require.NotNil(t, result.Booking)
	assert.Equal(t, link.OwnerID, result.Booking.AssignedUserID)
	assert.Equal(t, domain.BookingStatusConfirmed, result.Booking.Status)
	assert.NotEqual(t, uuid.Nil, result.Booking.ID)
	assert.False(t, result.Degraded)
}

func TestCreateBooking_MissingGuestFields(t *testing.T) {
	link := testLink()
	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())

	storage.On("GetLinkConfig", mock.Anything, link.ID).Return(link, nil)

	req := bookingRequest(link)
	req.GuestEmail = ""
	_, err := svc.CreateBooking(context.Background(), req)

	bookingErr, ok := domain.AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, domain.BookingErrorValidation, bookingErr.Kind)
	storage.AssertNotCalled(t, "WithBookingLock", mock.Anything, mock.Anything)
}

func TestCreateBooking_DurationMismatch(t *testing.T) {
	link := testLink()
	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())

	storage.On("GetLinkConfig", mock.Anything, link.ID).Return(link, nil)

	req := bookingRequest(link)
	req.End = req.Start.Add(45 * time.Minute)
	_, err := svc.CreateBooking(context.Background(), req)

	bookingErr, ok := domain.AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, domain.BookingErrorValidation, bookingErr.Kind)
}

func TestCreateBooking_LeadTimeViolation(t *testing.T) {
	link := testLink()
	link.LeadTimeMinutes = 240
	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())
	// За 3 часа до слота при минимуме в 4 часа
	svc.now = func() time.Time { return time.Date(2024, time.January, 8, 7, 0, 0, 0, time.UTC) }

	storage.On("GetLinkConfig", mock.Anything, link.ID).Return(link, nil)

	_, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	bookingErr, ok := domain.AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, domain.BookingErrorLeadTimeViolation, bookingErr.Kind)
	assert.Equal(t, 240, bookingErr.Details["minLeadTimeMinutes"])
}

func TestCreateBooking_ConsumedOneOffLink(t *testing.T) {
	link := testLink()
	link.IsOneOff = true
	link.IsExpired = true
	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())

	storage.On("GetLinkConfig", mock.Anything, link.ID).Return(link, nil)

	_, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	bookingErr, ok := domain.AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, domain.BookingErrorLinkExpired, bookingErr.Kind)
	storage.AssertNotCalled(t, "WithBookingLock", mock.Anything, mock.Anything)
}

func TestCreateBooking_OneOffExpiredUnderLock(t *testing.T) {
	link := testLink()
	link.IsOneOff = true
	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())

	// Конкурирующая бронь исчерпала ссылку между первой проверкой и блокировкой
	expired := *link
	expired.IsExpired = true
	storage.On("GetLinkConfig", mock.Anything, link.ID).Return(link, nil).Once()
	storage.On("GetLinkConfig", mock.Anything, link.ID).Return(&expired, nil).Once()
	storage.On("WithBookingLock", mock.Anything, link.ID).Return(nil)

	_, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	bookingErr, ok := domain.AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, domain.BookingErrorLinkExpired, bookingErr.Kind)
	storage.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBooking_MisalignedSlot(t *testing.T) {
	link := testLink()
	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())

	storage.On("GetLinkConfig", mock.Anything, link.ID).Return(link, nil)
	storage.On("WithBookingLock", mock.Anything, link.ID).Return(nil)
	storage.On("GetDateOverride", mock.Anything, link.OwnerID, mock.Anything).Return(nil, nil)

	// 10:15 не лежит на сетке из 30-минутных шагов от 09:00
	req := bookingRequest(link)
	req.Start = time.Date(2024, time.January, 8, 10, 15, 0, 0, time.UTC)
	req.End = req.Start.Add(30 * time.Minute)
	_, err := svc.CreateBooking(context.Background(), req)

	bookingErr, ok := domain.AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, domain.BookingErrorValidation, bookingErr.Kind)
}

func TestCreateBooking_DayClosedUnderLock(t *testing.T) {
	link := testLink()
	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())

	override := &domain.DateOverride{
		OwnerID:     link.OwnerID,
		Date:        json_types.Date{Date: testMonday},
		IsAvailable: false,
	}
	storage.On("GetLinkConfig", mock.Anything, link.ID).Return(link, nil)
	storage.On("WithBookingLock", mock.Anything, link.ID).Return(nil)
	storage.On("GetDateOverride", mock.Anything, link.OwnerID, mock.Anything).Return(override, nil)

	_, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	bookingErr, ok := domain.AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, domain.BookingErrorSlotConflict, bookingErr.Kind)
}

func TestCreateBooking_CapacityExceeded(t *testing.T) {
	link := testLink()
	link.MaxBookingsPerDay = 2
	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())

	storage.On("GetLinkConfig", mock.Anything, link.ID).Return(link, nil)
	storage.On("WithBookingLock", mock.Anything, link.ID).Return(nil)
	storage.On("GetDateOverride", mock.Anything, link.OwnerID, mock.Anything).Return(nil, nil)
	storage.On("CountBookings", mock.Anything, link.ID, testMonday, testMonday.AddDate(0, 0, 1)).
		Return(2, nil)

	_, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	bookingErr, ok := domain.AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, domain.BookingErrorCapacityExceeded, bookingErr.Kind)
	assert.Equal(t, "day", bookingErr.Details["period"])
	assert.Equal(t, 2, bookingErr.Details["max"])
	storage.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBooking_WeeklyCapacityExceeded(t *testing.T) {
	link := testLink()
	link.MaxBookingsPerWeek = 5
	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())

	storage.On("GetLinkConfig", mock.Anything, link.ID).Return(link, nil)
	storage.On("WithBookingLock", mock.Anything, link.ID).Return(nil)
	storage.On("GetDateOverride", mock.Anything, link.OwnerID, mock.Anything).Return(nil, nil)
	// Недельное окно начинается с понедельника слота
	storage.On("CountBookings", mock.Anything, link.ID, testMonday, testMonday.AddDate(0, 0, 7)).
		Return(5, nil)

	_, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	bookingErr, ok := domain.AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, domain.BookingErrorCapacityExceeded, bookingErr.Kind)
	assert.Equal(t, "week", bookingErr.Details["period"])
}

func TestCreateBooking_MonthlyCapacityExceeded(t *testing.T) {
	link := testLink()
	link.MaxBookingsPerWeek = 5
	link.MaxBookingsPerMonth = 10
	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())

	storage.On("GetLinkConfig", mock.Anything, link.ID).Return(link, nil)
	storage.On("WithBookingLock", mock.Anything, link.ID).Return(nil)
	storage.On("GetDateOverride", mock.Anything, link.OwnerID, mock.Anything).Return(nil, nil)
	// Неделя еще не исчерпана, месяц - уже
	storage.On("CountBookings", mock.Anything, link.ID, testMonday, testMonday.AddDate(0, 0, 7)).
		Return(3, nil)
	monthStart := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	storage.On("CountBookings", mock.Anything, link.ID, monthStart, monthStart.AddDate(0, 1, 0)).
		Return(10, nil)

	_, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	bookingErr, ok := domain.AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, domain.BookingErrorCapacityExceeded, bookingErr.Kind)
	assert.Equal(t, "month", bookingErr.Details["period"])
	assert.Equal(t, 10, bookingErr.Details["max"])
}

func TestCreateBooking_SlotTakenUnderLock(t *testing.T) {
	link := testLink()
	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())

	expectRecheck(storage, link, []domain.BusyInterval{busyAt(link.OwnerID, 10, 0, 10, 30)})

	_, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	bookingErr, ok := domain.AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, domain.BookingErrorSlotConflict, bookingErr.Kind)
}

func TestCreateBooking_PooledSkipsBusyMember(t *testing.T) {
	link := testLink()
	memberA := uuid.New()
	memberB := uuid.New()
	link.IsTeamBooking = true
	link.TeamMemberIDs = []uuid.UUID{memberA, memberB}
	link.AssignmentMethod = domain.AssignmentMethodPooled

	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())

	expectRecheck(storage, link, []domain.BusyInterval{busyAt(memberA, 10, 0, 10, 30)})
	storage.On("CreateBooking", mock.Anything, mock.Anything, false).Return(nil)

	result, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	require.NoError(t, err)
	assert.Equal(t, memberB, result.Booking.AssignedUserID)
}

func TestCreateBooking_SpecificMemberBusy(t *testing.T) {
	link := testLink()
	member := uuid.New()
	link.IsTeamBooking = true
	link.TeamMemberIDs = []uuid.UUID{member, uuid.New()}
	link.AssignmentMethod = domain.AssignmentMethodSpecific
	link.SpecificMemberID = member

	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())

	// Свободные коллеги не в счет: молчаливого переназначения нет
	expectRecheck(storage, link, []domain.BusyInterval{busyAt(member, 10, 0, 10, 30)})

	_, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	bookingErr, ok := domain.AsBookingError(err)
	require.True(t, ok)
	assert.Equal(t, domain.BookingErrorNoMemberAvailable, bookingErr.Kind)
}

func TestCreateBooking_RoundRobinPicksLeastLoaded(t *testing.T) {
	link := testLink()
	memberA := uuid.New()
	memberB := uuid.New()
	link.IsTeamBooking = true
	link.TeamMemberIDs = []uuid.UUID{memberA, memberB}
	link.AssignmentMethod = domain.AssignmentMethodRoundRobin

	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())

	expectRecheck(storage, link, nil)
	storage.On("CountBookingsByMember", mock.Anything, link.ID, link.TeamMemberIDs).
		Return(map[uuid.UUID]int{memberA: 3, memberB: 1}, nil)
	storage.On("CreateBooking", mock.Anything, mock.Anything, false).Return(nil)

	result, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	require.NoError(t, err)
	assert.Equal(t, memberB, result.Booking.AssignedUserID)
}

func TestCreateBooking_RoundRobinSkipsBusyLeastLoaded(t *testing.T) {
	link := testLink()
	memberA := uuid.New()
	memberB := uuid.New()
	link.IsTeamBooking = true
	link.TeamMemberIDs = []uuid.UUID{memberA, memberB}
	link.AssignmentMethod = domain.AssignmentMethodRoundRobin

	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())

	// Наименее загруженный занят в этом слоте, бронь уходит следующему
	expectRecheck(storage, link, []domain.BusyInterval{busyAt(memberB, 10, 0, 10, 30)})
	storage.On("CountBookingsByMember", mock.Anything, link.ID, link.TeamMemberIDs).
		Return(map[uuid.UUID]int{memberA: 3, memberB: 1}, nil)
	storage.On("CreateBooking", mock.Anything, mock.Anything, false).Return(nil)

	result, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	require.NoError(t, err)
	assert.Equal(t, memberA, result.Booking.AssignedUserID)
}

func TestCreateBooking_RoundRobinCounterFailureFallsBackToOwner(t *testing.T) {
	link := testLink()
	link.IsTeamBooking = true
	link.TeamMemberIDs = []uuid.UUID{uuid.New(), uuid.New()}
	link.AssignmentMethod = domain.AssignmentMethodRoundRobin

	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())

	expectRecheck(storage, link, nil)
	storage.On("CountBookingsByMember", mock.Anything, link.ID, link.TeamMemberIDs).
		Return(nil, errors.New("connection refused"))
	storage.On("CreateBooking", mock.Anything, mock.Anything, false).Return(nil)

	result, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	require.NoError(t, err)
	assert.Equal(t, link.OwnerID, result.Booking.AssignedUserID)
}

func TestCreateBooking_MeetingLinkAttached(t *testing.T) {
	link := testLink()
	storage := mocks.NewStoragePort(t)
	meeting := mocks.NewMeetingLinkPort(t)
	svc := newBookingService(storage, testConfig())
	svc.meeting = meeting

	expectRecheck(storage, link, nil)
	storage.On("CreateBooking", mock.Anything, mock.Anything, false).Return(nil)
	meeting.On("CreateMeetingLink", mock.Anything, link.OwnerID, mock.Anything).
		Return("https://meet.example.com/abc", nil)

	result, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	require.NoError(t, err)
	assert.Equal(t, "https://meet.example.com/abc", result.Booking.MeetingURL)
	assert.False(t, result.Degraded)
}

func TestCreateBooking_MeetingLinkFailureDegrades(t *testing.T) {
	link := testLink()
	storage := mocks.NewStoragePort(t)
	meeting := mocks.NewMeetingLinkPort(t)
	svc := newBookingService(storage, testConfig())
	svc.meeting = meeting

	expectRecheck(storage, link, nil)
	storage.On("CreateBooking", mock.Anything, mock.Anything, false).Return(nil)
	meeting.On("CreateMeetingLink", mock.Anything, link.OwnerID, mock.Anything).
		Return("", errors.New("provider unavailable"))

	result, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	// Бронь подтверждена несмотря на отказ провайдера встреч
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Empty(t, result.Booking.MeetingURL)
}

func TestCreateBooking_NotifiesAfterConfirmation(t *testing.T) {
	link := testLink()
	storage := mocks.NewStoragePort(t)
	notifier := mocks.NewNotifierPort(t)
	svc := newBookingService(storage, testConfig())
	svc.notifier = notifier

	expectRecheck(storage, link, nil)
	storage.On("CreateBooking", mock.Anything, mock.Anything, false).Return(nil)

	notified := make(chan struct{})
	notifier.On("Notify", mock.Anything, out.NotificationEventBookingConfirmed, mock.Anything).
		Run(func(mock.Arguments) { close(notified) }).
		Return(true)

	_, err := svc.CreateBooking(context.Background(), bookingRequest(link))
	require.NoError(t, err)

	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not published")
	}
}

func TestCreateBooking_InvalidatesSlotsCache(t *testing.T) {
	link := testLink()
	storage := mocks.NewStoragePort(t)
	cache := mocks.NewCachePort(t)
	svc := newBookingService(storage, testConfigWithCache())
	svc.cache = cache

	expectRecheck(storage, link, nil)
	storage.On("CreateBooking", mock.Anything, mock.Anything, false).Return(nil)
	cache.On("InvalidateLink", mock.Anything, link.ID).Return()

	_, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	require.NoError(t, err)
}

func TestCreateBooking_OneOffMarksLinkExpired(t *testing.T) {
	link := testLink()
	link.IsOneOff = true
	storage := mocks.NewStoragePort(t)
	svc := newBookingService(storage, testConfig())

	expectRecheck(storage, link, nil)
	storage.On("CreateBooking", mock.Anything, mock.Anything, true).Return(nil)

	_, err := svc.CreateBooking(context.Background(), bookingRequest(link))

	require.NoError(t, err)
}
