package domain

import (
	"github.com/google/uuid"
	"github.com/suchimauz/booking-link-engine/internal/core/json_types"
)

// DateOverride - исключение из недельного шаблона для одной конкретной даты
// Если дата закрыта, то IsAvailable = false, часы игнорируются
// Если дата открыта, но часы не заданы, то берутся часы из шаблона для этого дня недели
type DateOverride struct {
	OwnerID     uuid.UUID            `json:"ownerId"`
	Date        json_types.Date      `json:"date"`
	IsAvailable bool                 `json:"isAvailable"`
	Open        json_types.LocalTime `json:"open"`
	Close       json_types.LocalTime `json:"close"`
}

// HasHours сообщает, задано ли у исключения собственное окно времени
func (o *DateOverride) HasHours() bool {
	return !o.Open.IsZero() || !o.Close.IsZero()
}
