package domain

import (
	"errors"
	"fmt"
)

type BookingErrorKind string

const (
	BookingErrorValidation        BookingErrorKind = "validation_error"
	BookingErrorLeadTimeViolation BookingErrorKind = "lead_time_violation"
	BookingErrorCapacityExceeded  BookingErrorKind = "capacity_exceeded"
	BookingErrorSlotConflict      BookingErrorKind = "slot_conflict"
	BookingErrorNoMemberAvailable BookingErrorKind = "no_member_available"
	BookingErrorLinkExpired       BookingErrorKind = "link_expired"
)

// BookingError - ошибка попытки бронирования с конкретным видом из таксономии
// Все такие ошибки возникают до персистенции, состояние не меняется
type BookingError struct {
	Kind    BookingErrorKind       `json:"kind"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewBookingError(kind BookingErrorKind, format string, args ...interface{}) *BookingError {
	return &BookingError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *BookingError) WithDetail(key string, value interface{}) *BookingError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// AsBookingError возвращает BookingError из цепочки ошибок, если он там есть
func AsBookingError(err error) (*BookingError, bool) {
	var bookingErr *BookingError
	if errors.As(err, &bookingErr) {
		return bookingErr, true
	}
	return nil, false
}
