package postgres

// migrations are applied in order on every start and must stay idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS opening_hours (
		weekday         SMALLINT PRIMARY KEY CHECK (weekday BETWEEN 0 AND 6),
		morning_start   TIME,
		morning_end     TIME,
		afternoon_start TIME,
		afternoon_end   TIME,
		slot_step_min   INTEGER CHECK (slot_step_min >= 5)
	)`,

	`CREATE TABLE IF NOT EXISTS promo_rules (
		id           BIGSERIAL PRIMARY KEY,
		weekday      SMALLINT NOT NULL CHECK (weekday BETWEEN 0 AND 6),
		start_time   TIME NOT NULL,
		end_time     TIME NOT NULL,
		discount_pct INTEGER NOT NULL CHECK (discount_pct BETWEEN 0 AND 100)
	)`,

	`CREATE TABLE IF NOT EXISTS appointments (
		id             BIGSERIAL PRIMARY KEY,
		start_datetime TIMESTAMPTZ NOT NULL,
		end_datetime   TIMESTAMPTZ NOT NULL,
		status         TEXT NOT NULL DEFAULT 'booked'
	)`,

	`CREATE INDEX IF NOT EXISTS appointments_start_idx ON appointments (start_datetime)`,

	`CREATE TABLE IF NOT EXISTS availability_blocks (
		id               BIGSERIAL PRIMARY KEY,
		type             TEXT NOT NULL,
		title            TEXT NOT NULL DEFAULT '',
		start_datetime   TIMESTAMPTZ NOT NULL,
		end_datetime     TIMESTAMPTZ NOT NULL,
		recurrence_rule  TEXT,
		recurrence_until TIMESTAMPTZ,
		color            TEXT,
		notes            TEXT,
		created_by       BIGINT,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (end_datetime > start_datetime)
	)`,

	`ALTER TABLE availability_blocks ADD COLUMN IF NOT EXISTS kind TEXT NOT NULL DEFAULT 'calendar_closure'`,

	`UPDATE availability_blocks SET kind = 'slot_toggle'
	WHERE notes = 'slot_toggle' AND kind <> 'slot_toggle'`,

	// Older deployments could hold duplicate toggles for one slot.
	`DELETE FROM availability_blocks a
	USING availability_blocks b
	WHERE a.kind = 'slot_toggle' AND b.kind = 'slot_toggle'
		AND a.start_datetime = b.start_datetime
		AND a.end_datetime = b.end_datetime
		AND a.id > b.id`,

	`CREATE UNIQUE INDEX IF NOT EXISTS availability_blocks_slot_toggle_uq
	ON availability_blocks (start_datetime, end_datetime)
	WHERE kind = 'slot_toggle'`,

	`CREATE INDEX IF NOT EXISTS availability_blocks_window_idx
	ON availability_blocks (start_datetime, end_datetime)`,
}
