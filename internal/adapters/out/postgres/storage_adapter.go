package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/suchimauz/booking-link-engine/internal/core/domain"
	"github.com/suchimauz/booking-link-engine/internal/core/ports/out"
)

// StorageAdapter - реализация StoragePort поверх Postgres
type StorageAdapter struct {
	db     *sql.DB
	logger out.LoggerPort
}

func NewStorageAdapter(db *sql.DB, logger out.LoggerPort) *StorageAdapter {
	return &StorageAdapter{
		db:     db,
		logger: logger.WithModule("StorageAdapter"),
	}
}

func (a *StorageAdapter) GetLinkConfig(ctx context.Context, linkID uuid.UUID) (*domain.BookingLinkConfig, error) {
	query := `
	SELECT id, owner_id, title, timezone,
	       duration_minutes, buffer_before_minutes, buffer_after_minutes,
	       lead_time_minutes, slot_increment_minutes,
	       availability_template,
	       max_bookings_per_day, max_bookings_per_week, max_bookings_per_month,
	       is_team_booking, team_member_ids, assignment_method, specific_member_id,
	       is_one_off, is_expired
	FROM booking_links
	WHERE id = $1
	`

	var link domain.BookingLinkConfig
	var templateRaw []byte
	var teamMembersRaw []byte
	var assignmentMethod sql.NullString
	var specificMemberID sql.NullString

	err := a.db.QueryRowContext(ctx, query, linkID).Scan(
		&link.ID, &link.OwnerID, &link.Title, &link.Timezone,
		&link.DurationMinutes, &link.BufferBeforeMinutes, &link.BufferAfterMinutes,
		&link.LeadTimeMinutes, &link.SlotIncrementMinutes,
		&templateRaw,
		&link.MaxBookingsPerDay, &link.MaxBookingsPerWeek, &link.MaxBookingsPerMonth,
		&link.IsTeamBooking, &teamMembersRaw, &assignmentMethod, &specificMemberID,
		&link.IsOneOff, &link.IsExpired,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.link.fetch_failed: %w", err)
	}

	// Слабо типизированные JSON-поля конфигурации превращаются
	// в строго типизированные структуры на границе хранилища:
	// битая конфигурация отвергается при загрузке, а не в каждой точке чтения
	if err := json.Unmarshal(templateRaw, &link.Template); err != nil {
		return nil, fmt.Errorf("storage.link.template_invalid: %w", err)
	}
	if len(teamMembersRaw) > 0 {
		if err := json.Unmarshal(teamMembersRaw, &link.TeamMemberIDs); err != nil {
			return nil, fmt.Errorf("storage.link.team_members_invalid: %w", err)
		}
	}
	if assignmentMethod.Valid {
		link.AssignmentMethod = domain.AssignmentMethod(assignmentMethod.String)
	}
	if specificMemberID.Valid {
		memberID, err := uuid.Parse(specificMemberID.String)
		if err != nil {
			return nil, fmt.Errorf("storage.link.specific_member_invalid: %w", err)
		}
		link.SpecificMemberID = memberID
	}

	if err := link.Validate(); err != nil {
		return nil, fmt.Errorf("storage.link.config_invalid: %w", err)
	}

	return &link, nil
}

func (a *StorageAdapter) MarkLinkExpired(ctx context.Context, linkID uuid.UUID) error {
	_, err := a.db.ExecContext(ctx, `UPDATE booking_links SET is_expired = true WHERE id = $1`, linkID)
	if err != nil {
		return fmt.Errorf("storage.link.mark_expired_failed: %w", err)
	}
	return nil
}

func (a *StorageAdapter) GetDateOverride(ctx context.Context, ownerID uuid.UUID, date time.Time) (*domain.DateOverride, error) {
	query := `
	SELECT is_available, open_time, close_time
	FROM date_overrides
	WHERE owner_id = $1 AND override_date = $2
	`

	var override domain.DateOverride
	var openTime, closeTime sql.NullString

	err := a.db.QueryRowContext(ctx, query, ownerID, date.Format("2006-01-02")).
		Scan(&override.IsAvailable, &openTime, &closeTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage.override.fetch_failed: %w", err)
	}

	override.OwnerID = ownerID
	if openTime.Valid && closeTime.Valid {
		open, err := parseLocalTime(openTime.String)
		if err != nil {
			return nil, fmt.Errorf("storage.override.open_time_invalid: %w", err)
		}
		closeT, err := parseLocalTime(closeTime.String)
		if err != nil {
			return nil, fmt.Errorf("storage.override.close_time_invalid: %w", err)
		}
		override.Open = open
		override.Close = closeT
	}

	return &override, nil
}

// GetBusyIntervals собирает занятость кандидатов из трех источников:
// события календаря, блокировки времени и подтвержденные брони
func (a *StorageAdapter) GetBusyIntervals(ctx context.Context, assigneeIDs []uuid.UUID, start, end time.Time) ([]domain.BusyInterval, error) {
	ids := uuidStrings(assigneeIDs)
	intervals := make([]domain.BusyInterval, 0)

	events, err := a.busyFromCalendarEvents(ctx, ids, start, end)
	if err != nil {
		return nil, err
	}
	intervals = append(intervals, events...)

	blocks, err := a.busyFromTimeBlocks(ctx, ids, start, end)
	if err != nil {
		return nil, err
	}
	intervals = append(intervals, blocks...)

	bookings, err := a.busyFromBookings(ctx, ids, start, end)
	if err != nil {
		return nil, err
	}
	intervals = append(intervals, bookings...)

	return intervals, nil
}

func (a *StorageAdapter) busyFromCalendarEvents(ctx context.Context, ids []string, start, end time.Time) ([]domain.BusyInterval, error) {
	query := `
	SELECT owner_id, start_time, end_time
	FROM calendar_events
	WHERE owner_id = ANY($1) AND start_time < $3 AND end_time > $2
	`

	rows, err := a.db.QueryContext(ctx, query, pq.Array(ids), start, end)
	if err != nil {
		return nil, fmt.Errorf("storage.busy.calendar_events_failed: %w", err)
	}
	defer rows.Close()

	var intervals []domain.BusyInterval
	for rows.Next() {
		interval := domain.BusyInterval{Source: domain.BusySourceCalendarEvent}
		if err := rows.Scan(&interval.OwnerID, &interval.Start, &interval.End); err != nil {
			return nil, fmt.Errorf("storage.busy.calendar_events_failed: %w", err)
		}
		intervals = append(intervals, interval)
	}

	return intervals, rows.Err()
}

// busyFromTimeBlocks читает блокировки времени из унаследованной таблицы
// с текстовыми колонками даты и времени. Строки с битыми полями отбрасываются
// с записью в лог, а не роняют весь расчет доступности
func (a *StorageAdapter) busyFromTimeBlocks(ctx context.Context, ids []string, start, end time.Time) ([]domain.BusyInterval, error) {
	query := `
	SELECT id, owner_id, block_date, start_time, end_time, timezone
	FROM time_blocks
	WHERE owner_id = ANY($1)
	`

	rows, err := a.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("storage.busy.time_blocks_failed: %w", err)
	}
	defer rows.Close()

	var intervals []domain.BusyInterval
	for rows.Next() {
		var blockID string
		var ownerID uuid.UUID
		var blockDate, startTime, endTime, timezone sql.NullString

		if err := rows.Scan(&blockID, &ownerID, &blockDate, &startTime, &endTime, &timezone); err != nil {
			return nil, fmt.Errorf("storage.busy.time_blocks_failed: %w", err)
		}

		interval, err := parseTimeBlock(ownerID, blockDate, startTime, endTime, timezone)
		if err != nil {
			a.logger.Warn("storage.busy.time_block_dropped", out.LogFields{
				"blockId": blockID,
				"error":   err.Error(),
			})
			continue
		}

		if interval.Overlaps(start, end) {
			intervals = append(intervals, interval)
		}
	}

	return intervals, rows.Err()
}

func (a *StorageAdapter) busyFromBookings(ctx context.Context, ids []string, start, end time.Time) ([]domain.BusyInterval, error) {
	query := `
	SELECT assigned_user_id, start_time, end_time
	FROM bookings
	WHERE assigned_user_id = ANY($1) AND status = 'confirmed'
	  AND start_time < $3 AND end_time > $2
	`

	rows, err := a.db.QueryContext(ctx, query, pq.Array(ids), start, end)
	if err != nil {
		return nil, fmt.Errorf("storage.busy.bookings_failed: %w", err)
	}
	defer rows.Close()

	var intervals []domain.BusyInterval
	for rows.Next() {
		interval := domain.BusyInterval{Source: domain.BusySourceBooking}
		if err := rows.Scan(&interval.OwnerID, &interval.Start, &interval.End); err != nil {
			return nil, fmt.Errorf("storage.busy.bookings_failed: %w", err)
		}
		intervals = append(intervals, interval)
	}

	return intervals, rows.Err()
}

// CreateBooking сохраняет бронь и, если ссылка одноразовая,
// в той же транзакции помечает её исчерпанной: всё или ничего
func (a *StorageAdapter) CreateBooking(ctx context.Context, booking *domain.Booking, markExpired bool) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.booking.begin_failed: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO bookings (id, link_id, assigned_user_id, guest_name, guest_email, guest_notes,
	                      start_time, end_time, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = tx.ExecContext(ctx, query,
		booking.ID, booking.LinkID, booking.AssignedUserID,
		booking.GuestName, booking.GuestEmail, booking.GuestNotes,
		booking.StartTime, booking.EndTime, booking.Status, booking.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("storage.booking.insert_failed: %w", err)
	}

	if markExpired {
		_, err = tx.ExecContext(ctx, `UPDATE booking_links SET is_expired = true WHERE id = $1`, booking.LinkID)
		if err != nil {
			return fmt.Errorf("storage.booking.mark_expired_failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.booking.commit_failed: %w", err)
	}

	return nil
}

func (a *StorageAdapter) CountBookings(ctx context.Context, linkID uuid.UUID, start, end time.Time) (int, error) {
	query := `
	SELECT COUNT(*)
	FROM bookings
	WHERE link_id = $1 AND status = 'confirmed'
	  AND start_time >= $2 AND start_time < $3
	`

	var count int
	err := a.db.QueryRowContext(ctx, query, linkID, start, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("storage.booking.count_failed: %w", err)
	}

	return count, nil
}

func (a *StorageAdapter) CountBookingsByMember(ctx context.Context, linkID uuid.UUID, memberIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	query := `
	SELECT assigned_user_id, COUNT(*)
	FROM bookings
	WHERE link_id = $1 AND status = 'confirmed' AND assigned_user_id = ANY($2)
	GROUP BY assigned_user_id
	`

	rows, err := a.db.QueryContext(ctx, query, linkID, pq.Array(uuidStrings(memberIDs)))
	if err != nil {
		return nil, fmt.Errorf("storage.booking.count_by_member_failed: %w", err)
	}
	defer rows.Close()

	// Участники без броней тоже должны попасть в счетчики
	counts := make(map[uuid.UUID]int, len(memberIDs))
	for _, memberID := range memberIDs {
		counts[memberID] = 0
	}

	for rows.Next() {
		var memberID uuid.UUID
		var count int
		if err := rows.Scan(&memberID, &count); err != nil {
			return nil, fmt.Errorf("storage.booking.count_by_member_failed: %w", err)
		}
		counts[memberID] = count
	}

	return counts, rows.Err()
}

// WithBookingLock сериализует конкурирующие попытки бронирования по одной
// ссылке advisory-блокировкой уровня транзакции. Запись брони внутри fn
// коммитится собственной транзакцией до снятия блокировки, поэтому следующая
// попытка увидит её при перепроверке
func (a *StorageAdapter) WithBookingLock(ctx context.Context, linkID uuid.UUID, fn func(ctx context.Context) error) error {
	conn, err := a.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("storage.lock.conn_failed: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.lock.begin_failed: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, linkID.String())
	if err != nil {
		return fmt.Errorf("storage.lock.acquire_failed: %w", err)
	}

	if err := fn(ctx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.lock.release_failed: %w", err)
	}

	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return strs
}
