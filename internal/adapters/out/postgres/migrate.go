package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS booking_links (
	id                     UUID PRIMARY KEY,
	owner_id               UUID NOT NULL,
	title                  TEXT NOT NULL DEFAULT '',
	timezone               TEXT NOT NULL DEFAULT 'UTC',
	duration_minutes       INT  NOT NULL,
	buffer_before_minutes  INT  NOT NULL DEFAULT 0,
	buffer_after_minutes   INT  NOT NULL DEFAULT 0,
	lead_time_minutes      INT  NOT NULL DEFAULT 0,
	slot_increment_minutes INT  NOT NULL DEFAULT 30,
	availability_template  JSONB NOT NULL,
	max_bookings_per_day   INT  NOT NULL DEFAULT 0,
	max_bookings_per_week  INT  NOT NULL DEFAULT 0,
	max_bookings_per_month INT  NOT NULL DEFAULT 0,
	is_team_booking        BOOLEAN NOT NULL DEFAULT FALSE,
	team_member_ids        JSONB,
	assignment_method      TEXT,
	specific_member_id     UUID,
	is_one_off             BOOLEAN NOT NULL DEFAULT FALSE,
	is_expired             BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS date_overrides (
	owner_id      UUID NOT NULL,
	override_date DATE NOT NULL,
	is_available  BOOLEAN NOT NULL,
	open_time     TEXT,
	close_time    TEXT,
	PRIMARY KEY (owner_id, override_date)
);

CREATE TABLE IF NOT EXISTS calendar_events (
	id         UUID PRIMARY KEY,
	owner_id   UUID NOT NULL,
	start_time TIMESTAMPTZ NOT NULL,
	end_time   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_calendar_events_owner_range
	ON calendar_events (owner_id, start_time, end_time);

-- Унаследованная таблица блокировок времени с текстовыми колонками,
-- строки с битыми значениями отбрасываются при чтении
CREATE TABLE IF NOT EXISTS time_blocks (
	id         UUID PRIMARY KEY,
	owner_id   UUID NOT NULL,
	block_date TEXT,
	start_time TEXT,
	end_time   TEXT,
	timezone   TEXT
);
CREATE INDEX IF NOT EXISTS idx_time_blocks_owner ON time_blocks (owner_id);

CREATE TABLE IF NOT EXISTS bookings (
	id               UUID PRIMARY KEY,
	link_id          UUID NOT NULL REFERENCES booking_links (id),
	assigned_user_id UUID NOT NULL,
	guest_name       TEXT NOT NULL,
	guest_email      TEXT NOT NULL,
	guest_notes      TEXT NOT NULL DEFAULT '',
	start_time       TIMESTAMPTZ NOT NULL,
	end_time         TIMESTAMPTZ NOT NULL,
	status           TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bookings_assignee_range
	ON bookings (assigned_user_id, start_time, end_time);
CREATE INDEX IF NOT EXISTS idx_bookings_link_start
	ON bookings (link_id, start_time);
`

// Migrate создает схему, если её еще нет
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("storage.migrate.failed: %w", err)
	}
	return nil
}
