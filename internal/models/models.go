package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time expressed in minutes since midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay accepts "HH:MM" and "HH:MM:SS" (as returned for TIME columns).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time of day: %q", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}

	return NewTimeOfDay(hour, minute), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On places t on the calendar day of date, in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.In(loc).Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc)
}

// Period is one open interval of a business day.
type Period struct {
	Start TimeOfDay
	End   TimeOfDay
}

// OpeningHours is the weekly template row for one weekday (Sunday = 0).
type OpeningHours struct {
	Weekday        time.Weekday `db:"weekday"`
	MorningStart   *TimeOfDay   `db:"morning_start"`
	MorningEnd     *TimeOfDay   `db:"morning_end"`
	AfternoonStart *TimeOfDay   `db:"afternoon_start"`
	AfternoonEnd   *TimeOfDay   `db:"afternoon_end"`
	SlotStepMin    *int         `db:"slot_step_min"`
}

// Periods returns the configured open periods in day order.
// A half-defined or inverted pair is ignored.
func (h *OpeningHours) Periods() []Period {
	if h == nil {
		return nil
	}

	var periods []Period
	for _, p := range [][2]*TimeOfDay{
		{h.MorningStart, h.MorningEnd},
		{h.AfternoonStart, h.AfternoonEnd},
	} {
		if p[0] == nil || p[1] == nil || *p[1] <= *p[0] {
			continue
		}
		periods = append(periods, Period{Start: *p[0], End: *p[1]})
	}

	return periods
}

// PromoRule is a weekday discount window.
type PromoRule struct {
	ID          int64        `db:"id"`
	Weekday     time.Weekday `db:"weekday"`
	Start       TimeOfDay    `db:"start_time"`
	End         TimeOfDay    `db:"end_time"`
	DiscountPct int          `db:"discount_pct"`
}

type BlockType string

const (
	BlockOpen        BlockType = "open"
	BlockClosed      BlockType = "closed"
	BlockMaintenance BlockType = "maintenance"
	BlockOffsite     BlockType = "offsite"
)

func (t BlockType) Valid() bool {
	switch t {
	case BlockOpen, BlockClosed, BlockMaintenance, BlockOffsite:
		return true
	}
	return false
}

// BlockKind separates operator-declared closures from single-step closures
// made from the slot grid. Only slot toggles can be reopened from the grid.
type BlockKind string

const (
	KindCalendarClosure BlockKind = "calendar_closure"
	KindSlotToggle      BlockKind = "slot_toggle"
)

// SlotToggleNote is still written to notes for readers that predate Kind.
const SlotToggleNote = "slot_toggle"

type AvailabilityBlock struct {
	ID              int64      `db:"id"`
	Type            BlockType  `db:"type"`
	Kind            BlockKind  `db:"kind"`
	Title           string     `db:"title"`
	Start           time.Time  `db:"start_datetime"`
	End             time.Time  `db:"end_datetime"`
	RecurrenceRule  *string    `db:"recurrence_rule"`
	RecurrenceUntil *time.Time `db:"recurrence_until"`
	Color           *string    `db:"color"`
	Notes           *string    `db:"notes"`
	CreatedBy       *int64     `db:"created_by"`
}

func (b *AvailabilityBlock) IsSlotToggle() bool {
	return b.Kind == KindSlotToggle
}

// Overlaps reports whether the block intersects [start, end).
func (b *AvailabilityBlock) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && b.End.After(start)
}

type AppointmentStatus string

const (
	AppointmentBooked     AppointmentStatus = "booked"
	AppointmentConfirmed  AppointmentStatus = "confirmed"
	AppointmentInProgress AppointmentStatus = "in_progress"
	AppointmentDone       AppointmentStatus = "done"
	AppointmentCancelled  AppointmentStatus = "cancelled"
	AppointmentNoShow     AppointmentStatus = "no_show"
)

// OccupyingStatuses are the appointment states that hold a calendar interval.
var OccupyingStatuses = []AppointmentStatus{
	AppointmentBooked,
	AppointmentConfirmed,
	AppointmentInProgress,
}

func (s AppointmentStatus) Occupies() bool {
	for _, o := range OccupyingStatuses {
		if s == o {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID     int64             `db:"id"`
	Start  time.Time         `db:"start_datetime"`
	End    time.Time         `db:"end_datetime"`
	Status AppointmentStatus `db:"status"`
}
