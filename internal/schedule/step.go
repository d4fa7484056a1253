package schedule

import (
	"time"

	"shop-schedule/internal/models"
)

const (
	DefaultStepMinutes = 30
	MinStepMinutes     = 5
)

// ResolveStepMinutes picks the slot step: an explicit override of at least
// MinStepMinutes wins, then the configured step floored to MinStepMinutes,
// then DefaultStepMinutes.
func ResolveStepMinutes(hours *models.OpeningHours, override *int) int {
	if override != nil && *override >= MinStepMinutes {
		return *override
	}

	if hours == nil || hours.SlotStepMin == nil || *hours.SlotStepMin <= 0 {
		return DefaultStepMinutes
	}

	return max(MinStepMinutes, *hours.SlotStepMin)
}

// ClampSlotEnd returns start+step, cut down to the end of the configured
// period containing start. A start outside every period is not clamped.
func ClampSlotEnd(start time.Time, step int, hours *models.OpeningHours, loc *time.Location) time.Time {
	end := start.Add(time.Duration(step) * time.Minute)

	for _, p := range hours.Periods() {
		periodStart := p.Start.On(start, loc)
		periodEnd := p.End.On(start, loc)

		if start.Before(periodStart) || !start.Before(periodEnd) {
			continue
		}
		if end.After(periodEnd) {
			end = periodEnd
		}
		break
	}

	return end
}

// ToggleEnd is ClampSlotEnd with a fallback to start+step when the
// configuration would produce an empty interval.
func ToggleEnd(start time.Time, step int, hours *models.OpeningHours, loc *time.Location) time.Time {
	end := ClampSlotEnd(start, step, hours, loc)
	if !end.After(start) {
		end = start.Add(time.Duration(step) * time.Minute)
	}
	return end
}

// TruncateMinute drops seconds and below.
func TruncateMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}
