package out

import "context"

type NotificationEvent string

const (
	NotificationEventBookingConfirmed NotificationEvent = "booking.confirmed"
)

// NotifierPort - исходящие уведомления о событиях движка
// Best-effort: ошибки доставки только логируются и никогда не откатывают бронь
type NotifierPort interface {
	Notify(ctx context.Context, event NotificationEvent, payload interface{}) bool
}
