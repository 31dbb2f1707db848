package services

import (
	"github.com/google/uuid"
	"github.com/suchimauz/booking-link-engine/internal/core/domain"
)

// isSlotFree - проверка одного кандидата на назначение (assignment-time mode):
// смотрим только занятые интервалы этого кандидата
func isSlotFree(link *domain.BookingLinkConfig, slot domain.Slot, busy []domain.BusyInterval, assigneeID uuid.UUID) bool {
	for _, interval := range busy {
		if interval.OwnerID != assigneeID {
			continue
		}
		if slot.BufferedOverlaps(interval, link.BufferBefore(), link.BufferAfter()) {
			return false
		}
	}
	return true
}

// isSlotCommonlyFree - режим общей доступности: слот остается, только если
// ни у одного из кандидатов нет пересекающегося занятого интервала.
// Для индивидуальной ссылки "все кандидаты" вырождаются в одного владельца
func isSlotCommonlyFree(link *domain.BookingLinkConfig, slot domain.Slot, busy []domain.BusyInterval) bool {
	for _, interval := range busy {
		if slot.BufferedOverlaps(interval, link.BufferBefore(), link.BufferAfter()) {
			return false
		}
	}
	return true
}

// filterConflictingSlots убирает кандидатов, чей буферный интервал пересекается
// хотя бы с одним занятым интервалом любого из кандидатов на назначение
func filterConflictingSlots(link *domain.BookingLinkConfig, slots []domain.Slot, busy []domain.BusyInterval) []domain.Slot {
	free := make([]domain.Slot, 0, len(slots))
	for _, slot := range slots {
		if isSlotCommonlyFree(link, slot, busy) {
			free = append(free, slot)
		}
	}
	return free
}
