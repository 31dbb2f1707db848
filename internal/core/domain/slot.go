package domain

import "time"

// Slot - кандидат на бронирование, всегда ровно длительности ссылки,
// всегда выровнен по инкременту от начала локального окна дня
type Slot struct {
	StartTime time.Time `json:"start"`
	EndTime   time.Time `json:"end"`
}

// BufferedOverlaps проверяет пересечение слота с занятым интервалом с учетом буферов.
// Буферы применяются к обоим интервалам: инвариант требует, чтобы буферные окна
// [start-bufferBefore, end+bufferAfter) были попарно непересекающимися, поэтому
// встреча сразу после занятого интервала тоже конфликтует, если буфер её задевает
func (s Slot) BufferedOverlaps(busy BusyInterval, bufferBefore, bufferAfter time.Duration) bool {
	slotStart := s.StartTime.Add(-bufferBefore)
	slotEnd := s.EndTime.Add(bufferAfter)
	busyStart := busy.Start.Add(-bufferBefore)
	busyEnd := busy.End.Add(bufferAfter)

	return busyStart.Before(slotEnd) && slotStart.Before(busyEnd)
}
