// Package schedule turns opening hours, promotions, bookings and availability
// blocks into the bookable slot grid of a day. It has no side effects and no
// clock of its own: the caller supplies "now" and the civil time zone.
package schedule

import (
	"time"

	"shop-schedule/internal/models"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusClosed    Status = "closed"
	StatusBooked    Status = "booked"
	StatusPast      Status = "past"
)

type Interval struct {
	Start time.Time
	End   time.Time
}

// Slot is a derived, never persisted candidate start time.
type Slot struct {
	Time        string
	Start       time.Time
	End         time.Time
	ToggleEnd   time.Time
	Status      Status
	Toggleable  bool
	BlockID     *int64
	Discount    int
	StepMinutes int
}

// Day is everything the generator needs for one calendar day.
type Day struct {
	Date   time.Time
	Hours  *models.OpeningHours
	Promos []models.PromoRule
	Booked []Interval
	Blocks []models.AvailabilityBlock
}

type Options struct {
	Duration time.Duration
	Lead     time.Duration
	Now      time.Time
	Location *time.Location
}

// Generate builds the ordered slot sequence for one day. A day without
// opening hours yields no slots.
func Generate(day Day, opts Options) []Slot {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	periods := day.Hours.Periods()
	if len(periods) == 0 {
		return nil
	}

	stepMin := ResolveStepMinutes(day.Hours, nil)
	step := time.Duration(stepMin) * time.Minute
	earliest := opts.Now.Add(opts.Lead)

	toggles, calendar := partitionBlocks(day.Blocks)
	weekday := day.Date.In(loc).Weekday()

	var slots []Slot
	for _, p := range periods {
		periodStart := p.Start.On(day.Date, loc)
		periodEnd := p.End.On(day.Date, loc)

		for slotStart := periodStart; slotStart.Before(periodEnd); slotStart = slotStart.Add(step) {
			slotEnd := slotStart.Add(opts.Duration)
			if slotEnd.After(periodEnd) {
				break
			}

			toggleEnd := slotStart.Add(step)
			if toggleEnd.After(periodEnd) {
				toggleEnd = periodEnd
			}

			slot := Slot{
				Time:        slotStart.Format("15:04"),
				Start:       slotStart,
				End:         slotEnd,
				ToggleEnd:   toggleEnd,
				Status:      StatusAvailable,
				StepMinutes: stepMin,
				Discount:    discountFor(day.Promos, weekday, slotStart, slotEnd, loc),
			}

			resolveStatus(&slot, earliest, day.Booked, toggles, calendar)
			slots = append(slots, slot)
		}
	}

	return slots
}

// resolveStatus applies, first match wins: past, booked, slot toggle,
// calendar block, available.
func resolveStatus(slot *Slot, earliest time.Time, booked []Interval, toggles map[int64]models.AvailabilityBlock, calendar []models.AvailabilityBlock) {
	if slot.Start.Before(earliest) || !slot.End.After(slot.Start) {
		slot.Status = StatusPast
		return
	}

	for _, b := range booked {
		if slot.Start.Before(b.End) && slot.End.After(b.Start) {
			slot.Status = StatusBooked
			return
		}
	}

	if block, ok := toggles[slot.Start.Unix()]; ok {
		id := block.ID
		slot.Status = StatusClosed
		slot.Toggleable = true
		slot.BlockID = &id
		return
	}

	for _, block := range calendar {
		if block.Overlaps(slot.Start, slot.End) {
			id := block.ID
			slot.Status = StatusClosed
			slot.BlockID = &id
			return
		}
	}

	slot.Toggleable = true
}

// partitionBlocks indexes slot toggles by exact start and keeps the rest as
// calendar closures. Explicit "open" blocks never close anything.
func partitionBlocks(blocks []models.AvailabilityBlock) (map[int64]models.AvailabilityBlock, []models.AvailabilityBlock) {
	toggles := make(map[int64]models.AvailabilityBlock)
	var calendar []models.AvailabilityBlock

	for _, b := range blocks {
		if b.Type == models.BlockOpen {
			continue
		}
		if b.IsSlotToggle() {
			if _, seen := toggles[b.Start.Unix()]; !seen {
				toggles[b.Start.Unix()] = b
			}
			continue
		}
		calendar = append(calendar, b)
	}

	return toggles, calendar
}

// discountFor returns the first promo of the weekday whose window fully
// contains [start, end).
func discountFor(promos []models.PromoRule, weekday time.Weekday, start, end time.Time, loc *time.Location) int {
	for _, p := range promos {
		if p.Weekday != weekday {
			continue
		}
		promoStart := p.Start.On(start, loc)
		promoEnd := p.End.On(start, loc)
		if !start.Before(promoStart) && !end.After(promoEnd) {
			return p.DiscountPct
		}
	}
	return 0
}
