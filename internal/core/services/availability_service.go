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

type availabilityDebug struct {
	data []domain.DebugInfo
}

func (d *availabilityDebug) AddDebugInfo(info domain.DebugInfo) {
	d.data = append(d.data, info)
}

type AvailabilityService struct {
	storage out.StoragePort
	cache   out.CachePort
	logger  out.LoggerPort
	cfg     *config.Config
	now     func() time.Time
}

func NewAvailabilityService(
	storage out.StoragePort,
	cache out.CachePort,
	logger out.LoggerPort,
	cfg *config.Config,
) *AvailabilityService {
	return &AvailabilityService{
		storage: storage,
		cache:   cache,
		logger:  logger.WithModule("AvailabilityService"),
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *AvailabilityService) GetAvailableSlots(ctx context.Context, query in.AvailabilityQuery) ([]domain.Slot, []domain.DebugInfo, error) {
	debugInfo := availabilityDebug{
		data: make([]domain.DebugInfo, 0),
	}
	s.logger.Info("availability.query.started", out.LogFields{
		"linkId":   query.LinkID,
		"timezone": query.Timezone,
	})

	get_link_debug := domain.DebugInfo{
		Event: "availability.link.fetch",
	}
	get_link_debug.Start()

	link, err := s.storage.GetLinkConfig(ctx, query.LinkID)
	if err != nil {
		s.logger.Error("availability.link.fetch_failed", out.LogFields{
			"linkId": query.LinkID,
			"error":  err.Error(),
		})
		return nil, nil, fmt.Errorf("availability.link.fetch_failed: %w", err)
	}
	get_link_debug.Elapse()
	debugInfo.AddDebugInfo(get_link_debug)

	// Исчерпанная одноразовая ссылка доступности не имеет
	if link.IsExpired {
		return []domain.Slot{}, debugInfo.data, nil
	}

	// Таймзона запроса, по дефолту - предпочтительная таймзона владельца
	timezone := query.Timezone
	if timezone == "" {
		timezone = link.Timezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, nil, domain.NewBookingError(domain.BookingErrorValidation,
			"unknown timezone %q", timezone)
	}

	// Проверяем кэш только если он включен
	if s.cache != nil && s.cfg.Cache.Enabled {
		if slots, exists := s.cache.GetSlots(ctx, query.LinkID, query.StartDate, query.EndDate, timezone); exists {
			s.logger.Debug("availability.cache.hit", out.LogFields{
				"linkId":     query.LinkID,
				"slotsCount": len(slots),
			})
			return s.dropLeadTimeViolations(link, slots), debugInfo.data, nil
		}
	}

	s.logger.Debug("availability.cache.miss", out.LogFields{
		"linkId": query.LinkID,
	})

	generate_slots_debug := domain.DebugInfo{
		Event: "availability.slots.generate",
	}
	generate_slots_debug.Start()

	candidates, err := s.candidateSlots(ctx, link, loc, query.StartDate, query.EndDate)
	if err != nil {
		return nil, nil, err
	}
	generate_slots_debug.Elapse()
	generate_slots_debug.AddOption("candidates", fmt.Sprintf("%d", len(candidates)))
	debugInfo.AddDebugInfo(generate_slots_debug)

	filter_conflicts_debug := domain.DebugInfo{
		Event: "availability.conflicts.filter",
	}
	filter_conflicts_debug.Start()

	slots, err := s.dropConflictingSlots(ctx, link, candidates, query.StartDate, query.EndDate)
	if err != nil {
		return nil, nil, err
	}
	filter_conflicts_debug.Elapse()
	filter_conflicts_debug.AddOption("free", fmt.Sprintf("%d", len(slots)))
	debugInfo.AddDebugInfo(filter_conflicts_debug)

	// Сохраняем в кэш только если он включен
	// Фильтр по минимальному сроку уведомления в кэш не попадает,
	// потому что зависит от текущего момента
	if s.cache != nil && s.cfg.Cache.Enabled {
		s.cache.StoreSlots(ctx, query.LinkID, link.Assignees(), query.StartDate, query.EndDate, timezone, slots)
	}

	return s.dropLeadTimeViolations(link, slots), debugInfo.data, nil
}

// candidateSlots строит кандидатов по недельному шаблону и исключениям по датам.
// Дни диапазона перебираются в целевой таймзоне, а не в UTC, чтобы слоты
// не оказывались на неверном локальном дне
func (s *AvailabilityService) candidateSlots(ctx context.Context, link *domain.BookingLinkConfig, loc *time.Location, start, end time.Time) ([]domain.Slot, error) {
	slots := make([]domain.Slot, 0)

	for dayStart := utils.StartCurrentDay(start.In(loc)); dayStart.Before(end); dayStart = utils.StartNextDay(dayStart) {
		override, err := s.storage.GetDateOverride(ctx, link.OwnerID, dayStart)
		if err != nil {
			s.logger.Error("availability.override.fetch_failed", out.LogFields{
				"linkId": link.ID,
				"date":   dayStart.Format("2006-01-02"),
				"error":  err.Error(),
			})
			return nil, fmt.Errorf("availability.override.fetch_failed: %w", err)
		}

		window, open := resolveDayWindow(link, override, dayStart)
		if !open {
			continue
		}

		for _, slot := range generateDaySlots(link, dayStart, window) {
			// Обрезаем по запрошенному диапазону
			if slot.StartTime.Before(start) || !slot.StartTime.Before(end) {
				continue
			}
			slots = append(slots, slot)
		}
	}

	return slots, nil
}

// dropConflictingSlots убирает кандидатов, пересекающихся с занятостью
// кандидатов на назначение. Диапазон выборки занятости расширен на буферы,
// чтобы не пропустить интервалы, задевающие слот только буферным окном
func (s *AvailabilityService) dropConflictingSlots(ctx context.Context, link *domain.BookingLinkConfig, slots []domain.Slot, start, end time.Time) ([]domain.Slot, error) {
	if len(slots) == 0 {
		return slots, nil
	}

	padding := link.BufferBefore() + link.BufferAfter()
	busy, err := s.storage.GetBusyIntervals(ctx, link.Assignees(), start.Add(-padding), end.Add(padding))
	if err != nil {
		s.logger.Error("availability.busy.fetch_failed", out.LogFields{
			"linkId": link.ID,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("availability.busy.fetch_failed: %w", err)
	}

	return filterConflictingSlots(link, slots, busy), nil
}

// dropLeadTimeViolations убирает слоты, начинающиеся раньше, чем через
// минимальный срок уведомления: гость не должен видеть незабронируемые слоты
func (s *AvailabilityService) dropLeadTimeViolations(link *domain.BookingLinkConfig, slots []domain.Slot) []domain.Slot {
	earliest := s.now().Add(link.LeadTime())

	filtered := make([]domain.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.StartTime.Before(earliest) {
			continue
		}
		filtered = append(filtered, slot)
	}
	return filtered
}

func (s *AvailabilityService) InvalidateLinkCache(ctx context.Context, linkID uuid.UUID) {
	if s.cache != nil && s.cfg.Cache.Enabled {
		s.cache.InvalidateLink(ctx, linkID)
	}
}

func (s *AvailabilityService) InvalidateOwnerCache(ctx context.Context, ownerID uuid.UUID) {
	if s.cache != nil && s.cfg.Cache.Enabled {
		s.cache.InvalidateOwner(ctx, ownerID)
	}
}

func (s *AvailabilityService) InvalidateAllCache(ctx context.Context) {
	if s.cache != nil && s.cfg.Cache.Enabled {
		s.cache.InvalidateAll(ctx)
	}
}
