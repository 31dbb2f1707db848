package services

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/suchimauz/booking-link-engine/internal/core/domain"
	"github.com/suchimauz/booking-link-engine/internal/core/ports/out"
)

// resolveAssignee выбирает участника команды, который получит подтвержденную бронь.
// Вызывается только для командных ссылок в момент бронирования, когда запрошенный
// слот уже прошел проверку доступности. busy содержит занятые интервалы всех
// кандидатов на момент перепроверки
func (s *BookingService) resolveAssignee(ctx context.Context, link *domain.BookingLinkConfig, slot domain.Slot, busy []domain.BusyInterval) (uuid.UUID, error) {
	switch link.AssignmentMethod {
	case domain.AssignmentMethodSpecific:
		// Заранее выбранный участник: движок никогда молча не переназначает
		if !isSlotFree(link, slot, busy, link.SpecificMemberID) {
			return uuid.Nil, domain.NewBookingError(domain.BookingErrorNoMemberAvailable,
				"configured member is not available at the requested slot")
		}
		return link.SpecificMemberID, nil

	case domain.AssignmentMethodPooled:
		// Первый свободный в настроенном порядке участников
		for _, memberID := range link.TeamMemberIDs {
			if isSlotFree(link, slot, busy, memberID) {
				return memberID, nil
			}
		}
		return uuid.Nil, domain.NewBookingError(domain.BookingErrorNoMemberAvailable,
			"no team member is available at the requested slot")

	case domain.AssignmentMethodRoundRobin:
		return s.resolveRoundRobin(ctx, link, slot, busy)
	}

	return uuid.Nil, domain.NewBookingError(domain.BookingErrorNoMemberAvailable,
		"unknown assignment method %q", link.AssignmentMethod)
}

// resolveRoundRobin выбирает участника с наименьшим числом подтвержденных броней
// по этой ссылке, при равенстве - с наименьшим id. Это инвариант справедливости
// на счетчиках, а не вращающийся указатель: после ручного переназначения
// или удаления броней распределение выравнивается само
func (s *BookingService) resolveRoundRobin(ctx context.Context, link *domain.BookingLinkConfig, slot domain.Slot, busy []domain.BusyInterval) (uuid.UUID, error) {
	counts, err := s.storage.CountBookingsByMember(ctx, link.ID, link.TeamMemberIDs)
	if err != nil {
		// Деградация при отказе инфраструктуры: явный, залогированный
		// фолбэк на владельца ссылки, а не тихое переназначение
		s.logger.Warn("booking.assign.round_robin.degraded", out.LogFields{
			"linkId": link.ID,
			"error":  err.Error(),
		})
		return link.OwnerID, nil
	}

	ordered := make([]uuid.UUID, len(link.TeamMemberIDs))
	copy(ordered, link.TeamMemberIDs)
	sort.Slice(ordered, func(i, j int) bool {
		if counts[ordered[i]] != counts[ordered[j]] {
			return counts[ordered[i]] < counts[ordered[j]]
		}
		return ordered[i].String() < ordered[j].String()
	})

	for _, memberID := range ordered {
		if isSlotFree(link, slot, busy, memberID) {
			return memberID, nil
		}
	}

	return uuid.Nil, domain.NewBookingError(domain.BookingErrorNoMemberAvailable,
		"no team member is available at the requested slot")
}
