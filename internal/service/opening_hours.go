package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"shop-schedule/api"
	"shop-schedule/internal/models"
	"shop-schedule/internal/schedule"
	"shop-schedule/pkg/response"
)

func (s *Service) ListOpeningHours(ctx context.Context) ([]*api.OpeningHoursResponse, error) {
	const op = "service.ListOpeningHours"

	rows, err := s.store.ListOpeningHours(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Weekday < rows[j].Weekday })

	result := make([]*api.OpeningHoursResponse, 0, len(rows))
	for i := range rows {
		result = append(result, openingHoursResponse(&rows[i]))
	}

	return result, nil
}

// UpdateOpeningHours replaces the template row of one weekday. Each period
// must be given as a full pair with end after start; omitting both clears it.
func (s *Service) UpdateOpeningHours(ctx context.Context, weekday int, req *api.OpeningHoursRequest) (*api.OpeningHoursResponse, error) {
	const op = "service.UpdateOpeningHours"

	if weekday < 0 || weekday > 6 {
		return nil, fmt.Errorf("%s: %w", op, response.NewFieldError("weekday", "must be between 0 (Sunday) and 6"))
	}

	morningStart, morningEnd, err := parsePeriod("morning", req.MorningStart, req.MorningEnd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	afternoonStart, afternoonEnd, err := parsePeriod("afternoon", req.AfternoonStart, req.AfternoonEnd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if morningEnd != nil && afternoonStart != nil && *afternoonStart < *morningEnd {
		return nil, fmt.Errorf("%s: %w", op, response.NewFieldError("afternoon_start", "must not be before morning_end"))
	}

	hours := &models.OpeningHours{
		Weekday:        time.Weekday(weekday),
		MorningStart:   morningStart,
		MorningEnd:     morningEnd,
		AfternoonStart: afternoonStart,
		AfternoonEnd:   afternoonEnd,
		SlotStepMin:    req.SlotStepMin,
	}

	if err := s.store.UpsertOpeningHours(ctx, hours); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return openingHoursResponse(hours), nil
}

func parsePeriod(name string, start, end *string) (*models.TimeOfDay, *models.TimeOfDay, error) {
	if start == nil && end == nil {
		return nil, nil, nil
	}
	if start == nil {
		return nil, nil, response.NewFieldError(name+"_start", "required when "+name+"_end is set")
	}
	if end == nil {
		return nil, nil, response.NewFieldError(name+"_end", "required when "+name+"_start is set")
	}

	s, err := models.ParseTimeOfDay(*start)
	if err != nil {
		return nil, nil, response.NewFieldError(name+"_start", "must be HH:MM")
	}

	e, err := models.ParseTimeOfDay(*end)
	if err != nil {
		return nil, nil, response.NewFieldError(name+"_end", "must be HH:MM")
	}

	if e <= s {
		return nil, nil, response.NewFieldError(name+"_end", "must be after "+name+"_start")
	}

	return &s, &e, nil
}

func openingHoursResponse(h *models.OpeningHours) *api.OpeningHoursResponse {
	return &api.OpeningHoursResponse{
		Weekday:        int(h.Weekday),
		MorningStart:   todString(h.MorningStart),
		MorningEnd:     todString(h.MorningEnd),
		AfternoonStart: todString(h.AfternoonStart),
		AfternoonEnd:   todString(h.AfternoonEnd),
		SlotStepMin:    schedule.ResolveStepMinutes(h, nil),
	}
}

func todString(t *models.TimeOfDay) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}
