package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/booking-link-engine/internal/config"
	"github.com/suchimauz/booking-link-engine/internal/core/domain"
	"github.com/suchimauz/booking-link-engine/internal/core/ports/in"
	"github.com/suchimauz/booking-link-engine/internal/core/ports/out"
	"github.com/suchimauz/booking-link-engine/internal/utils"
)

// BookingService - координатор транзакции бронирования.
// Перепроверка доступности, назначение и сохранение выполняются
// под advisory-блокировкой ссылки: два гостя, претендующие на один слот,
// не могут преуспеть оба
type BookingService struct {
	storage  out.StoragePort
	meeting  out.MeetingLinkPort
	notifier out.NotifierPort
	cache    out.CachePort
	logger   out.LoggerPort
	cfg      *config.Config
	now      func() time.Time
}

func NewBookingService(
	storage out.StoragePort,
	meeting out.MeetingLinkPort,
	notifier out.NotifierPort,
	cache out.CachePort,
	logger out.LoggerPort,
	cfg *config.Config,
) *BookingService {
	return &BookingService{
		storage:  storage,
		meeting:  meeting,
		notifier: notifier,
		cache:    cache,
		logger:   logger.WithModule("BookingService"),
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, req in.BookingRequest) (*in.BookingResult, error) {
	s.logger.Info("booking.create.started", out.LogFields{
		"linkId": req.LinkID,
		"start":  req.Start,
	})

	link, err := s.storage.GetLinkConfig(ctx, req.LinkID)
	if err != nil {
		s.logger.Error("booking.link.fetch_failed", out.LogFields{
			"linkId": req.LinkID,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("booking.link.fetch_failed: %w", err)
	}

	if err := s.validateRequest(link, req); err != nil {
		s.logger.Info("booking.create.rejected", out.LogFields{
			"linkId": req.LinkID,
			"reason": err.Error(),
		})
		return nil, err
	}

	booking := &domain.Booking{
		ID:         uuid.New(),
		LinkID:     link.ID,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		GuestNotes: req.GuestNotes,
		StartTime:  req.Start,
		EndTime:    req.End,
		Status:     domain.BookingStatusConfirmed,
		CreatedAt:  s.now(),
	}

	// Перепроверка, назначение и сохранение - единый атомарный блок
	// относительно конкурирующих попыток по той же ссылке
	err = s.storage.WithBookingLock(ctx, link.ID, func(ctx context.Context) error {
		return s.recheckAndPersist(ctx, link, req, booking)
	})
	if err != nil {
		if _, ok := domain.AsBookingError(err); ok {
			s.logger.Info("booking.create.rejected", out.LogFields{
				"linkId": req.LinkID,
				"reason": err.Error(),
			})
			return nil, err
		}
		s.logger.Error("booking.create.failed", out.LogFields{
			"linkId": req.LinkID,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("booking.create.failed: %w", err)
	}

	if s.cache != nil && s.cfg.Cache.Enabled {
		s.cache.InvalidateLink(ctx, link.ID)
	}

	// Побочные эффекты после сохранения - best-effort с собственным бюджетом
	// времени, их отказ никогда не откатывает бронь
	degraded := s.runSideEffects(link, booking)

	s.logger.Info("booking.create.confirmed", out.LogFields{
		"linkId":         link.ID,
		"bookingId":      booking.ID,
		"assignedUserId": booking.AssignedUserID,
		"degraded":       degraded,
	})

	return &in.BookingResult{
		Booking:  booking,
		Degraded: degraded,
	}, nil
}

// validateRequest - проверки, не требующие блокировки:
// обязательные поля, длительность, минимальный срок уведомления, исчерпанность
func (s *BookingService) validateRequest(link *domain.BookingLinkConfig, req in.BookingRequest) error {
	if req.GuestName == "" || req.GuestEmail == "" {
		return domain.NewBookingError(domain.BookingErrorValidation,
			"guest name and email are required")
	}

	if !req.End.After(req.Start) {
		return domain.NewBookingError(domain.BookingErrorValidation,
			"slot end must be after slot start")
	}

	if req.End.Sub(req.Start) != link.Duration() {
		return domain.NewBookingError(domain.BookingErrorValidation,
			"slot duration must be exactly %d minutes", link.DurationMinutes)
	}

	if link.IsOneOff && link.IsExpired {
		return domain.NewBookingError(domain.BookingErrorLinkExpired,
			"one-off link is already consumed")
	}

	minutesUntilMeeting := req.Start.Sub(s.now())
	if minutesUntilMeeting < link.LeadTime() {
		return domain.NewBookingError(domain.BookingErrorLeadTimeViolation,
			"slot starts sooner than the minimum lead time allows").
			WithDetail("minLeadTimeMinutes", link.LeadTimeMinutes)
	}

	return nil
}

// recheckAndPersist выполняется под блокировкой ссылки:
// кэшированному клиентом результату доступности доверять нельзя
func (s *BookingService) recheckAndPersist(ctx context.Context, link *domain.BookingLinkConfig, req in.BookingRequest, booking *domain.Booking) error {
	// Перечитываем конфигурацию под блокировкой: одноразовая ссылка могла
	// быть исчерпана конкурирующей бронью после первой проверки
	fresh, err := s.storage.GetLinkConfig(ctx, link.ID)
	if err != nil {
		return fmt.Errorf("booking.link.refetch_failed: %w", err)
	}
	if fresh.IsExpired {
		return domain.NewBookingError(domain.BookingErrorLinkExpired,
			"one-off link is already consumed")
	}

	loc, err := time.LoadLocation(link.Timezone)
	if err != nil {
		return fmt.Errorf("booking.link.timezone_invalid: %w", err)
	}

	slot := domain.Slot{StartTime: req.Start, EndTime: req.End}

	if err := s.recheckCandidate(ctx, link, loc, slot); err != nil {
		return err
	}

	if err := s.checkCapacity(ctx, link, loc, slot); err != nil {
		return err
	}

	padding := link.BufferBefore() + link.BufferAfter()
	busy, err := s.storage.GetBusyIntervals(ctx, link.Assignees(), slot.StartTime.Add(-padding), slot.EndTime.Add(padding))
	if err != nil {
		return fmt.Errorf("booking.busy.fetch_failed: %w", err)
	}

	assignee, err := s.resolveBookingAssignee(ctx, link, slot, busy)
	if err != nil {
		return err
	}
	booking.AssignedUserID = assignee

	if err := s.storage.CreateBooking(ctx, booking, link.IsOneOff); err != nil {
		return fmt.Errorf("booking.persist.failed: %w", err)
	}

	return nil
}

// recheckCandidate проверяет, что запрошенный слот совпадает с одним из
// кандидатов, порождаемых шаблоном и исключениями для этого дня
func (s *BookingService) recheckCandidate(ctx context.Context, link *domain.BookingLinkConfig, loc *time.Location, slot domain.Slot) error {
	dayStart := utils.StartCurrentDay(slot.StartTime.In(loc))

	override, err := s.storage.GetDateOverride(ctx, link.OwnerID, dayStart)
	if err != nil {
		return fmt.Errorf("booking.override.fetch_failed: %w", err)
	}

	window, open := resolveDayWindow(link, override, dayStart)
	if !open {
		// День успел закрыться исключением или правкой шаблона - гонка, не ошибка клиента
		return domain.NewBookingError(domain.BookingErrorSlotConflict,
			"the requested day is no longer available")
	}

	for _, candidate := range generateDaySlots(link, dayStart, window) {
		if candidate.StartTime.Equal(slot.StartTime) && candidate.EndTime.Equal(slot.EndTime) {
			return nil
		}
	}

	return domain.NewBookingError(domain.BookingErrorValidation,
		"slot is not aligned with the link's availability grid")
}

// checkCapacity проверяет настроенные лимиты броней на день, неделю и месяц.
// Окна считаются в таймзоне владельца, привязаны к началу запрошенного слота
func (s *BookingService) checkCapacity(ctx context.Context, link *domain.BookingLinkConfig, loc *time.Location, slot domain.Slot) error {
	localStart := slot.StartTime.In(loc)

	type capacityWindow struct {
		period string
		max    int
		start  time.Time
		end    time.Time
	}

	windows := []capacityWindow{
		{
			period: "day",
			max:    link.MaxBookingsPerDay,
			start:  utils.StartCurrentDay(localStart),
			end:    utils.StartNextDay(localStart),
		},
		{
			period: "week",
			max:    link.MaxBookingsPerWeek,
			start:  utils.StartOfWeek(localStart),
			end:    utils.StartOfWeek(localStart).AddDate(0, 0, 7),
		},
		{
			period: "month",
			max:    link.MaxBookingsPerMonth,
			start:  utils.StartOfMonth(localStart),
			end:    utils.StartOfMonth(localStart).AddDate(0, 1, 0),
		},
	}

	for _, window := range windows {
		if window.max <= 0 {
			continue
		}

		count, err := s.storage.CountBookings(ctx, link.ID, window.start, window.end)
		if err != nil {
			return fmt.Errorf("booking.capacity.count_failed: %w", err)
		}
		if count+1 > window.max {
			return domain.NewBookingError(domain.BookingErrorCapacityExceeded,
				"per-%s booking limit of %d is reached", window.period, window.max).
				WithDetail("period", window.period).
				WithDetail("max", window.max)
		}
	}

	return nil
}

// resolveBookingAssignee определяет ответственного за бронь.
// Для индивидуальной ссылки это владелец, его занятость проверяется здесь же
func (s *BookingService) resolveBookingAssignee(ctx context.Context, link *domain.BookingLinkConfig, slot domain.Slot, busy []domain.BusyInterval) (uuid.UUID, error) {
	if !link.IsTeamBooking {
		if !isSlotFree(link, slot, busy, link.OwnerID) {
			return uuid.Nil, domain.NewBookingError(domain.BookingErrorSlotConflict,
				"the requested slot is no longer free")
		}
		return link.OwnerID, nil
	}

	return s.resolveAssignee(ctx, link, slot, busy)
}

// runSideEffects выполняет необязательные действия после подтверждения:
// создание ссылки на встречу и исходящее уведомление
func (s *BookingService) runSideEffects(link *domain.BookingLinkConfig, booking *domain.Booking) bool {
	degraded := false

	if s.meeting != nil {
		meetingCtx, cancel := context.WithTimeout(context.Background(), s.cfg.SideEffectTimeout())
		defer cancel()

		url, err := s.meeting.CreateMeetingLink(meetingCtx, booking.AssignedUserID, out.MeetingLinkRequest{
			Title:         link.Title,
			Start:         booking.StartTime,
			End:           booking.EndTime,
			AttendeeName:  booking.GuestName,
			AttendeeEmail: booking.GuestEmail,
		})
		if err != nil || url == "" {
			degraded = true
			s.logger.Warn("booking.side_effects.meeting_link_failed", out.LogFields{
				"bookingId": booking.ID,
				"error":     fmt.Sprintf("%v", err),
			})
		} else {
			booking.MeetingURL = url
		}
	}

	if s.notifier != nil {
		go func() {
			notifyCtx, cancel := context.WithTimeout(context.Background(), s.cfg.SideEffectTimeout())
			defer cancel()

			if ok := s.notifier.Notify(notifyCtx, out.NotificationEventBookingConfirmed, booking); !ok {
				s.logger.Warn("booking.side_effects.notify_failed", out.LogFields{
					"bookingId": booking.ID,
				})
			}
		}()
	}

	return degraded
}
