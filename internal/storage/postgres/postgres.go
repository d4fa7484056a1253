package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"shop-schedule/internal/models"
	"shop-schedule/pkg/response"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	for i, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: step %d: %w", op, i, err)
		}
	}

	return nil
}

// #### opening hours ####

const openingHoursColumns = `weekday,
	to_char(morning_start, 'HH24:MI'),
	to_char(morning_end, 'HH24:MI'),
	to_char(afternoon_start, 'HH24:MI'),
	to_char(afternoon_end, 'HH24:MI'),
	slot_step_min`

func (s *Storage) ListOpeningHours(ctx context.Context) ([]models.OpeningHours, error) {
	const op = "storage.postgres.ListOpeningHours"

	rows, err := s.db.QueryContext(ctx, `SELECT `+openingHoursColumns+` FROM opening_hours ORDER BY weekday`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var result []models.OpeningHours
	for rows.Next() {
		hours, err := scanOpeningHours(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		result = append(result, *hours)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (s *Storage) GetOpeningHours(ctx context.Context, weekday time.Weekday) (*models.OpeningHours, error) {
	const op = "storage.postgres.GetOpeningHours"

	row := s.db.QueryRowContext(ctx, `SELECT `+openingHoursColumns+` FROM opening_hours WHERE weekday=$1`, int(weekday))

	hours, err := scanOpeningHours(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return hours, nil
}

func (s *Storage) UpsertOpeningHours(ctx context.Context, hours *models.OpeningHours) error {
	const op = "storage.postgres.UpsertOpeningHours"

	var step sql.NullInt64
	if hours.SlotStepMin != nil {
		step = sql.NullInt64{Int64: int64(*hours.SlotStepMin), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO opening_hours
		(weekday, morning_start, morning_end, afternoon_start, afternoon_end, slot_step_min)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (weekday)
		DO UPDATE
		SET morning_start = EXCLUDED.morning_start,
			morning_end = EXCLUDED.morning_end,
			afternoon_start = EXCLUDED.afternoon_start,
			afternoon_end = EXCLUDED.afternoon_end,
			slot_step_min = EXCLUDED.slot_step_min`,
		int(hours.Weekday),
		timeParam(hours.MorningStart),
		timeParam(hours.MorningEnd),
		timeParam(hours.AfternoonStart),
		timeParam(hours.AfternoonEnd),
		step,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}

	return nil
}

// #### promo rules ####

func (s *Storage) ListPromoRules(ctx context.Context) ([]models.PromoRule, error) {
	const op = "storage.postgres.ListPromoRules"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, weekday, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), discount_pct
		FROM promo_rules ORDER BY weekday, id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var result []models.PromoRule
	for rows.Next() {
		var (
			rule       models.PromoRule
			weekday    int
			start, end string
		)

		if err := rows.Scan(&rule.ID, &weekday, &start, &end, &rule.DiscountPct); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		rule.Weekday = time.Weekday(weekday)
		if rule.Start, err = models.ParseTimeOfDay(start); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if rule.End, err = models.ParseTimeOfDay(end); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		result = append(result, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// #### appointments ####

// ListOccupyingAppointments returns appointments starting inside [from, to)
// whose status holds the calendar.
func (s *Storage) ListOccupyingAppointments(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	const op = "storage.postgres.ListOccupyingAppointments"

	statuses := make([]string, 0, len(models.OccupyingStatuses))
	for _, st := range models.OccupyingStatuses {
		statuses = append(statuses, string(st))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, start_datetime, end_datetime, status
		FROM appointments
		WHERE status = ANY($1) AND start_datetime >= $2 AND start_datetime < $3
		ORDER BY start_datetime`,
		pq.Array(statuses), from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var result []models.Appointment
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(&a.ID, &a.Start, &a.End, &a.Status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// #### availability blocks ####

const blockColumns = `id, type, kind, title, start_datetime, end_datetime,
	recurrence_rule, recurrence_until, color, notes, created_by`

// overlapClause matches rows starting inside, ending inside, or spanning
// the window bound to $1 and $2.
const overlapClause = `((start_datetime >= $1 AND start_datetime < $2)
	OR (end_datetime > $1 AND end_datetime <= $2)
	OR (start_datetime <= $1 AND end_datetime >= $2))`

func (s *Storage) ListBlocks(ctx context.Context, from, to time.Time, includeOpen bool) ([]models.AvailabilityBlock, error) {
	const op = "storage.postgres.ListBlocks"

	query := `SELECT ` + blockColumns + ` FROM availability_blocks WHERE ` + overlapClause
	if !includeOpen {
		query += ` AND type <> 'open'`
	}
	query += ` ORDER BY start_datetime, id`

	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var result []models.AvailabilityBlock
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		result = append(result, *block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (s *Storage) GetBlock(ctx context.Context, id int64) (*models.AvailabilityBlock, error) {
	const op = "storage.postgres.GetBlock"

	block, err := scanBlock(s.db.QueryRowContext(ctx, `SELECT `+blockColumns+` FROM availability_blocks WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return block, nil
}

func (s *Storage) CreateBlock(ctx context.Context, block *models.AvailabilityBlock) (int64, error) {
	const op = "storage.postgres.CreateBlock"

	var id int64

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO availability_blocks
		(type, kind, title, start_datetime, end_datetime, recurrence_rule, recurrence_until, color, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		string(block.Type),
		string(block.Kind),
		block.Title,
		block.Start,
		block.End,
		block.RecurrenceRule,
		block.RecurrenceUntil,
		block.Color,
		block.Notes,
		block.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}

	return id, nil
}

func (s *Storage) DeleteBlock(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteBlock"

	res, err := s.db.ExecContext(ctx, `DELETE FROM availability_blocks WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// #### slot toggles ####

func (s *Storage) SlotToggleExists(ctx context.Context, start, end time.Time) (bool, error) {
	const op = "storage.postgres.SlotToggleExists"

	var exists bool

	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM availability_blocks
			WHERE kind = 'slot_toggle' AND start_datetime = $1 AND end_datetime = $2
		)`,
		start, end,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// InsertSlotToggle creates the toggle row for [start, end). created is false
// when a toggle with the same bounds already exists.
func (s *Storage) InsertSlotToggle(ctx context.Context, start, end time.Time) (int64, bool, error) {
	const op = "storage.postgres.InsertSlotToggle"

	var id int64

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO availability_blocks
		(type, kind, title, start_datetime, end_datetime, notes)
		VALUES ($1, $2, '', $3, $4, $5)
		ON CONFLICT (start_datetime, end_datetime) WHERE kind = 'slot_toggle'
		DO NOTHING
		RETURNING id`,
		string(models.BlockClosed),
		string(models.KindSlotToggle),
		start,
		end,
		models.SlotToggleNote,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}

		return 0, false, fmt.Errorf("%s: %w", op, mapError(err))
	}

	return id, true, nil
}

func (s *Storage) DeleteSlotToggle(ctx context.Context, id int64) (int64, error) {
	const op = "storage.postgres.DeleteSlotToggle"

	res, err := s.db.ExecContext(ctx, `DELETE FROM availability_blocks WHERE id=$1 AND kind = 'slot_toggle'`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

func (s *Storage) DeleteSlotTogglesOverlapping(ctx context.Context, start, end time.Time) (int64, error) {
	const op = "storage.postgres.DeleteSlotTogglesOverlapping"

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM availability_blocks WHERE kind = 'slot_toggle' AND `+overlapClause,
		start, end,
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

// #### helpers ####

type scanner interface {
	Scan(dest ...any) error
}

func scanOpeningHours(row scanner) (*models.OpeningHours, error) {
	var (
		weekday                      int
		morningStart, morningEnd     sql.NullString
		afternoonStart, afternoonEnd sql.NullString
		step                         sql.NullInt64
	)

	if err := row.Scan(&weekday, &morningStart, &morningEnd, &afternoonStart, &afternoonEnd, &step); err != nil {
		return nil, err
	}

	hours := &models.OpeningHours{Weekday: time.Weekday(weekday)}

	for _, f := range []struct {
		src sql.NullString
		dst **models.TimeOfDay
	}{
		{morningStart, &hours.MorningStart},
		{morningEnd, &hours.MorningEnd},
		{afternoonStart, &hours.AfternoonStart},
		{afternoonEnd, &hours.AfternoonEnd},
	} {
		if !f.src.Valid {
			continue
		}

		t, err := models.ParseTimeOfDay(f.src.String)
		if err != nil {
			return nil, err
		}
		*f.dst = &t
	}

	if step.Valid {
		v := int(step.Int64)
		hours.SlotStepMin = &v
	}

	return hours, nil
}

func scanBlock(row scanner) (*models.AvailabilityBlock, error) {
	var (
		b         models.AvailabilityBlock
		rule      sql.NullString
		until     sql.NullTime
		color     sql.NullString
		notes     sql.NullString
		createdBy sql.NullInt64
	)

	err := row.Scan(
		&b.ID,
		&b.Type,
		&b.Kind,
		&b.Title,
		&b.Start,
		&b.End,
		&rule,
		&until,
		&color,
		&notes,
		&createdBy,
	)
	if err != nil {
		return nil, err
	}

	if rule.Valid {
		b.RecurrenceRule = &rule.String
	}
	if until.Valid {
		b.RecurrenceUntil = &until.Time
	}
	if color.Valid {
		b.Color = &color.String
	}
	if notes.Valid {
		b.Notes = &notes.String
	}
	if createdBy.Valid {
		b.CreatedBy = &createdBy.Int64
	}

	return &b, nil
}

func timeParam(t *models.TimeOfDay) any {
	if t == nil {
		return nil
	}

	return t.String()
}

// mapError turns constraint violations into response sentinels.
func mapError(err error) error {
	sqlErr, ok := err.(*pq.Error)
	if !ok {
		return err
	}

	switch sqlErr.Code {
	case "23505":
		return response.ErrConflict
	case "23514", "22007", "22008":
		return fmt.Errorf("%w: %s", response.ErrValidation, sqlErr.Message)
	}

	return err
}
