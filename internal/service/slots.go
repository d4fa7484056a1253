package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"shop-schedule/api"
	"shop-schedule/internal/metrics"
	"shop-schedule/internal/models"
	"shop-schedule/internal/schedule"
	"shop-schedule/pkg/response"
	"shop-schedule/pkg/sl"
)

// GetSlots computes the slot grid for q.Start and the following days. Any
// source failing fails the whole request.
func (s *Service) GetSlots(ctx context.Context, q *api.SlotsQuery) ([]api.DaySlots, error) {
	const op = "service.GetSlots"

	date, err := time.ParseInLocation(dateLayout, q.Start, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.NewFieldError("start", "must be a date in YYYY-MM-DD format"))
	}

	days := s.defaultDays
	if q.Days != nil {
		days = *q.Days
	}
	durationMin := s.defaultDurationMin
	if q.DurationMin != nil {
		durationMin = *q.DurationMin
	}
	leadMin := 0
	if q.LeadMin != nil {
		leadMin = *q.LeadMin
	}

	from := date
	to := date.AddDate(0, 0, days)

	hours, err := s.store.ListOpeningHours(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: opening hours: %w", op, err)
	}

	promos, err := s.store.ListPromoRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: promo rules: %w", op, err)
	}

	appointments, err := s.store.ListOccupyingAppointments(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: appointments: %w", op, err)
	}

	blocks, err := s.store.ListBlocks(ctx, from, to, false)
	if err != nil {
		return nil, fmt.Errorf("%s: blocks: %w", op, err)
	}

	hoursByDay := make(map[time.Weekday]*models.OpeningHours, len(hours))
	for i := range hours {
		hoursByDay[hours[i].Weekday] = &hours[i]
	}

	promosByDay := make(map[time.Weekday][]models.PromoRule)
	for _, p := range promos {
		promosByDay[p.Weekday] = append(promosByDay[p.Weekday], p)
	}

	opts := schedule.Options{
		Duration: time.Duration(durationMin) * time.Minute,
		Lead:     time.Duration(leadMin) * time.Minute,
		Now:      s.now().In(s.loc),
		Location: s.loc,
	}

	counts := make(map[schedule.Status]int)
	result := make([]api.DaySlots, 0, days)

	for i := 0; i < days; i++ {
		dayStart := from.AddDate(0, 0, i)
		dayEnd := from.AddDate(0, 0, i+1)
		weekday := dayStart.Weekday()

		day := schedule.Day{
			Date:   dayStart,
			Hours:  hoursByDay[weekday],
			Promos: promosByDay[weekday],
		}

		for _, a := range appointments {
			if a.Start.Before(dayEnd) && a.End.After(dayStart) {
				day.Booked = append(day.Booked, schedule.Interval{Start: a.Start, End: a.End})
			}
		}

		for _, b := range blocks {
			if b.Overlaps(dayStart, dayEnd) {
				day.Blocks = append(day.Blocks, b)
			}
		}

		slots := schedule.Generate(day, opts)

		out := api.DaySlots{
			Date:  dayStart.Format(dateLayout),
			Slots: make([]api.SlotResponse, 0, len(slots)),
		}
		for _, slot := range slots {
			counts[slot.Status]++
			out.Slots = append(out.Slots, s.slotResponse(slot))
		}

		result = append(result, out)
	}

	for status, n := range counts {
		metrics.AddSlotsGenerated(string(status), n)
	}

	return result, nil
}

func (s *Service) slotResponse(slot schedule.Slot) api.SlotResponse {
	return api.SlotResponse{
		Time:        slot.Time,
		Start:       s.formatDateTime(slot.Start),
		End:         s.formatDateTime(slot.End),
		ToggleEnd:   s.formatDateTime(slot.ToggleEnd),
		Status:      string(slot.Status),
		Toggleable:  slot.Toggleable,
		BlockID:     slot.BlockID,
		Discount:    slot.Discount,
		StepMinutes: slot.StepMinutes,
	}
}

// ToggleSlot closes one slot step (creating a slot-toggle block) or reopens
// a span (deleting every slot-toggle block overlapping it). Both directions
// are idempotent.
func (s *Service) ToggleSlot(ctx context.Context, req *api.ToggleRequest) error {
	const op = "service.ToggleSlot"

	if req.MakeAvailable == nil {
		return fmt.Errorf("%s: %w", op, response.NewFieldError("make_available", "field is required"))
	}

	start, err := s.parseDateTime("start", req.Start)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	start = schedule.TruncateMinute(start)

	var end *time.Time
	if req.End != nil {
		e, err := s.parseDateTime("end", *req.End)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		e = schedule.TruncateMinute(e)
		if !e.After(start) {
			return fmt.Errorf("%s: %w", op, response.NewFieldError("end", "must be after start"))
		}
		end = &e
	}

	var hinted *models.AvailabilityBlock
	if req.BlockID != nil {
		hinted, err = s.store.GetBlock(ctx, *req.BlockID)
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.NewFieldError("block_id", "availability block does not exist"))
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	hours, err := s.store.GetOpeningHours(ctx, start.Weekday())
	if err != nil && !errors.Is(err, response.ErrNotFound) {
		return fmt.Errorf("%s: opening hours: %w", op, err)
	}

	step := schedule.ResolveStepMinutes(hours, req.StepMinutes)
	toggleEnd := schedule.ToggleEnd(start, step, hours, s.loc)

	unlock := s.lockSlot(ctx, start)
	defer unlock()

	if *req.MakeAvailable {
		if end == nil {
			end = &toggleEnd
		}
		if err := s.reopenSlots(ctx, start, *end, hinted); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	if err := s.closeSlot(ctx, start, toggleEnd); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) closeSlot(ctx context.Context, start, end time.Time) error {
	exists, err := s.store.SlotToggleExists(ctx, start, end)
	if err != nil {
		return err
	}
	if exists {
		metrics.IncSlotToggle(metrics.ActionCloseNoop)
		return nil
	}

	id, created, err := s.store.InsertSlotToggle(ctx, start, end)
	if err != nil {
		return err
	}
	if !created {
		metrics.IncSlotToggle(metrics.ActionCloseNoop)
		return nil
	}

	metrics.IncSlotToggle(metrics.ActionClose)
	s.log.Info("slot closed",
		slog.Int64("block_id", id),
		slog.String("start", s.formatDateTime(start)),
		slog.String("end", s.formatDateTime(end)),
	)

	return nil
}

func (s *Service) reopenSlots(ctx context.Context, start, end time.Time, hinted *models.AvailabilityBlock) error {
	var deleted int64

	if hinted != nil && hinted.IsSlotToggle() {
		n, err := s.store.DeleteSlotToggle(ctx, hinted.ID)
		if err != nil {
			return err
		}
		deleted += n
	}

	n, err := s.store.DeleteSlotTogglesOverlapping(ctx, start, end)
	if err != nil {
		return err
	}
	deleted += n

	metrics.IncSlotToggle(metrics.ActionReopen)
	metrics.AddToggleBlocksDeleted(deleted)
	s.log.Info("slots reopened",
		slog.Int64("deleted", deleted),
		slog.String("start", s.formatDateTime(start)),
		slog.String("end", s.formatDateTime(end)),
	)

	return nil
}

// lockSlot serializes toggles of one slot start across processes. It waits
// at most lockTTL; on timeout or lock failure the toggle proceeds and the
// unique index on slot-toggle bounds keeps closes idempotent.
func (s *Service) lockSlot(ctx context.Context, start time.Time) func() {
	if s.locker == nil {
		return func() {}
	}

	key := "slot_toggle:" + strconv.FormatInt(start.Unix(), 10)
	deadline := time.Now().Add(s.lockTTL)

	for {
		token, ok, err := s.locker.Lock(ctx, key, s.lockTTL)
		if err != nil {
			s.log.Warn("slot lock unavailable", slog.String("key", key), sl.Err(err))
			return func() {}
		}

		if ok {
			return func() {
				if err := s.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
					s.log.Warn("failed to release slot lock", slog.String("key", key), sl.Err(err))
				}
			}
		}

		if time.Now().After(deadline) {
			s.log.Warn("slot lock wait timed out", slog.String("key", key))
			return func() {}
		}

		select {
		case <-ctx.Done():
			return func() {}
		case <-time.After(lockRetryInterval):
		}
	}
}
