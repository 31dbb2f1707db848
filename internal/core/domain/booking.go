package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking - подтвержденная бронь, неизменяемая после создания
// кроме переходов статуса (отмена обрабатывается вне ядра)
type Booking struct {
	ID             uuid.UUID     `json:"id"`
	LinkID         uuid.UUID     `json:"linkId"`
	AssignedUserID uuid.UUID     `json:"assignedUserId"`
	GuestName      string        `json:"guestName"`
	GuestEmail     string        `json:"guestEmail"`
	GuestNotes     string        `json:"guestNotes,omitempty"`
	StartTime      time.Time     `json:"start"`
	EndTime        time.Time     `json:"end"`
	Status         BookingStatus `json:"status"`
	MeetingURL     string        `json:"meetingUrl,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
}
