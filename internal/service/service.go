package service

import (
	"context"
	"log/slog"
	"time"

	"shop-schedule/internal/lock"
	"shop-schedule/internal/models"
	"shop-schedule/pkg/response"
)

const (
	dateLayout = "2006-01-02"

	defaultDays        = 7
	defaultDurationMin = 60
	defaultLockTTL     = 5 * time.Second
	lockRetryInterval  = 50 * time.Millisecond
)

// localLayouts are accepted in addition to RFC3339 and are read in the
// configured zone.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

type Store interface {
	// Opening hours
	ListOpeningHours(ctx context.Context) ([]models.OpeningHours, error)
	GetOpeningHours(ctx context.Context, weekday time.Weekday) (*models.OpeningHours, error)
	UpsertOpeningHours(ctx context.Context, hours *models.OpeningHours) error

	// Promotions
	ListPromoRules(ctx context.Context) ([]models.PromoRule, error)

	// Appointments
	ListOccupyingAppointments(ctx context.Context, from, to time.Time) ([]models.Appointment, error)

	// Availability blocks
	ListBlocks(ctx context.Context, from, to time.Time, includeOpen bool) ([]models.AvailabilityBlock, error)
	GetBlock(ctx context.Context, id int64) (*models.AvailabilityBlock, error)
	CreateBlock(ctx context.Context, block *models.AvailabilityBlock) (int64, error)
	DeleteBlock(ctx context.Context, id int64) error

	// Slot toggles
	SlotToggleExists(ctx context.Context, start, end time.Time) (bool, error)
	InsertSlotToggle(ctx context.Context, start, end time.Time) (int64, bool, error)
	DeleteSlotToggle(ctx context.Context, id int64) (int64, error)
	DeleteSlotTogglesOverlapping(ctx context.Context, start, end time.Time) (int64, error)
}

type Settings struct {
	Location           *time.Location
	Now                func() time.Time
	LockTTL            time.Duration
	DefaultDays        int
	DefaultDurationMin int
}

type Service struct {
	log    *slog.Logger
	store  Store
	locker lock.Locker
	loc    *time.Location
	now    func() time.Time

	lockTTL            time.Duration
	defaultDays        int
	defaultDurationMin int
}

// NewService wires the engine. locker may be nil, in which case toggles rely
// on the storage unique index alone.
func NewService(log *slog.Logger, store Store, locker lock.Locker, settings Settings) *Service {
	s := &Service{
		log:                log,
		store:              store,
		locker:             locker,
		loc:                settings.Location,
		now:                settings.Now,
		lockTTL:            settings.LockTTL,
		defaultDays:        settings.DefaultDays,
		defaultDurationMin: settings.DefaultDurationMin,
	}

	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.lockTTL <= 0 {
		s.lockTTL = defaultLockTTL
	}
	if s.defaultDays <= 0 {
		s.defaultDays = defaultDays
	}
	if s.defaultDurationMin <= 0 {
		s.defaultDurationMin = defaultDurationMin
	}

	return s
}

// parseDateTime reads RFC3339 or a zone-less local layout in the configured
// zone and returns the instant in that zone.
func (s *Service) parseDateTime(field, value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(s.loc), nil
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, s.loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, response.NewFieldError(field, "must be an RFC3339 datetime")
}

func (s *Service) formatDateTime(t time.Time) string {
	return t.In(s.loc).Format(time.RFC3339)
}
