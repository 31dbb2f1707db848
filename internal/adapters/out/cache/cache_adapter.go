package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/suchimauz/booking-link-engine/internal/config"
	"github.com/suchimauz/booking-link-engine/internal/core/domain"
	"github.com/suchimauz/booking-link-engine/internal/core/ports/out"
)

type slotsCacheEntry struct {
	AssigneeIDs []uuid.UUID
	Slots       []domain.Slot
	StartDate   time.Time
	EndDate     time.Time
	Timezone    string
}

// CacheAdapter - LRU-кэш рассчитанных слотов доступности по ссылкам.
// Ответ из кэша может быть устаревшим, это допустимо: авторитетная перепроверка
// выполняется при создании брони и кэш не использует
type CacheAdapter struct {
	slotsCache *lru.Cache[uuid.UUID, *slotsCacheEntry]
	mu         sync.RWMutex
	logger     out.LoggerPort
}

func NewCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*CacheAdapter, error) {
	if !cfg.Cache.Enabled {
		logger.Info("cache.disabled", out.LogFields{
			"message": "Cache is disabled",
		})
		return nil, nil
	}

	lruSlotsCache, err := lru.New[uuid.UUID, *slotsCacheEntry](cfg.Cache.SlotsSize)
	if err != nil {
		logger.Error("cache.slots.init.failed", out.LogFields{
			"error": err.Error(),
			"size":  cfg.Cache.SlotsSize,
		})
		return nil, err
	}

	return &CacheAdapter{
		slotsCache: lruSlotsCache,
		logger:     logger.WithModule("CacheAdapter"),
	}, nil
}

func (c *CacheAdapter) GetSlots(ctx context.Context, linkID uuid.UUID, start, end time.Time, timezone string) ([]domain.Slot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.slotsCache.Get(linkID)
	if !exists {
		c.logger.Debug("cache.slots.get.miss", out.LogFields{
			"linkId": linkID,
		})
		return nil, false
	}

	// Запрошенный диапазон должен полностью попадать в закэшированный,
	// и таймзона должна совпадать: сетка слотов зависит от неё
	if start.Before(entry.StartDate) || end.After(entry.EndDate) || timezone != entry.Timezone {
		c.logger.Debug("cache.slots.get.range_mismatch", out.LogFields{
			"linkId":         linkID,
			"requestedStart": start,
			"requestedEnd":   end,
			"cachedStart":    entry.StartDate,
			"cachedEnd":      entry.EndDate,
		})
		return nil, false
	}

	// Отдаем только слоты из запрошенного поддиапазона
	slots := make([]domain.Slot, 0, len(entry.Slots))
	for _, slot := range entry.Slots {
		if slot.StartTime.Before(start) || !slot.StartTime.Before(end) {
			continue
		}
		slots = append(slots, slot)
	}

	c.logger.Debug("cache.slots.get.hit", out.LogFields{
		"linkId":     linkID,
		"slotsCount": len(slots),
	})
	return slots, true
}

func (c *CacheAdapter) StoreSlots(ctx context.Context, linkID uuid.UUID, assigneeIDs []uuid.UUID, start, end time.Time, timezone string, slots []domain.Slot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("cache.slots.store", out.LogFields{
		"linkId":     linkID,
		"slotsCount": len(slots),
	})

	c.slotsCache.Add(linkID, &slotsCacheEntry{
		AssigneeIDs: assigneeIDs,
		Slots:       slots,
		StartDate:   start,
		EndDate:     end,
		Timezone:    timezone,
	})
}

func (c *CacheAdapter) InvalidateLink(ctx context.Context, linkID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slotsCache.Remove(linkID)
}

// InvalidateOwner сбрасывает кэш всех ссылок, где владелец календаря -
// кандидат на назначение: изменение его календаря задевает каждую из них
func (c *CacheAdapter) InvalidateOwner(ctx context.Context, ownerID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, linkID := range c.slotsCache.Keys() {
		entry, exists := c.slotsCache.Peek(linkID)
		if !exists {
			continue
		}
		for _, assigneeID := range entry.AssigneeIDs {
			if assigneeID == ownerID {
				c.slotsCache.Remove(linkID)
				break
			}
		}
	}
}

func (c *CacheAdapter) InvalidateAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slotsCache.Purge()
}
