package out

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type MeetingLinkRequest struct {
	Title         string    `json:"title"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	AttendeeName  string    `json:"attendeeName"`
	AttendeeEmail string    `json:"attendeeEmail"`
}

// MeetingLinkPort - внешний провайдер ссылок на встречи (видеозвонки)
// Вызывается только после успешного сохранения брони, best-effort:
// при ошибке возвращается пустая строка, бронь остается подтвержденной
type MeetingLinkPort interface {
	CreateMeetingLink(ctx context.Context, ownerID uuid.UUID, req MeetingLinkRequest) (string, error)
}
