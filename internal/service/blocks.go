package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-schedule/api"
	"shop-schedule/internal/models"
	"shop-schedule/pkg/response"
)

const defaultBlockWindow = 7 * 24 * time.Hour

// Availability blocks

func (s *Service) CreateBlock(ctx context.Context, req *api.BlockRequest) (*api.BlockResponse, error) {
	const op = "service.CreateBlock"

	blockType := models.BlockType(req.Type)
	if !blockType.Valid() {
		return nil, fmt.Errorf("%s: %w", op, response.NewFieldError("type", "must be one of open, closed, maintenance, offsite"))
	}

	start, err := s.parseDateTime("start_datetime", req.Start)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	end, err := s.parseDateTime("end_datetime", req.End)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !end.After(start) {
		return nil, fmt.Errorf("%s: %w", op, response.NewFieldError("end_datetime", "must be after start_datetime"))
	}

	if req.Notes != nil && *req.Notes == models.SlotToggleNote {
		return nil, fmt.Errorf("%s: %w", op, response.NewFieldError("notes", "value is reserved for slot toggles"))
	}

	var until *time.Time
	if req.RecurrenceUntil != nil {
		u, err := s.parseDateTime("recurrence_until", *req.RecurrenceUntil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		until = &u
	}

	block := &models.AvailabilityBlock{
		Type:            blockType,
		Kind:            models.KindCalendarClosure,
		Title:           req.Title,
		Start:           start,
		End:             end,
		RecurrenceRule:  req.RecurrenceRule,
		RecurrenceUntil: until,
		Color:           req.Color,
		Notes:           req.Notes,
		CreatedBy:       req.CreatedBy,
	}

	id, err := s.store.CreateBlock(ctx, block)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetBlock(ctx, id)
}

func (s *Service) GetBlock(ctx context.Context, id int64) (*api.BlockResponse, error) {
	const op = "service.GetBlock"

	block, err := s.store.GetBlock(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.blockResponse(block), nil
}

// ListBlocks returns every block, open ones included, overlapping
// [from, to). Missing bounds default to the coming week.
func (s *Service) ListBlocks(ctx context.Context, from, to *time.Time) ([]*api.BlockResponse, error) {
	const op = "service.ListBlocks"

	var windowStart, windowEnd time.Time
	switch {
	case from != nil && to != nil:
		windowStart, windowEnd = *from, *to
	case from != nil:
		windowStart, windowEnd = *from, from.Add(defaultBlockWindow)
	case to != nil:
		windowStart, windowEnd = to.Add(-defaultBlockWindow), *to
	default:
		windowStart = s.now().In(s.loc)
		windowEnd = windowStart.Add(defaultBlockWindow)
	}

	if !windowEnd.After(windowStart) {
		return nil, fmt.Errorf("%s: %w", op, response.NewFieldError("to", "must be after from"))
	}

	blocks, err := s.store.ListBlocks(ctx, windowStart, windowEnd, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.BlockResponse, 0, len(blocks))
	for i := range blocks {
		result = append(result, s.blockResponse(&blocks[i]))
	}

	return result, nil
}

func (s *Service) DeleteBlock(ctx context.Context, id int64) error {
	const op = "service.DeleteBlock"

	err := s.store.DeleteBlock(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) blockResponse(b *models.AvailabilityBlock) *api.BlockResponse {
	resp := &api.BlockResponse{
		ID:             b.ID,
		Type:           string(b.Type),
		Kind:           string(b.Kind),
		Title:          b.Title,
		Start:          s.formatDateTime(b.Start),
		End:            s.formatDateTime(b.End),
		RecurrenceRule: b.RecurrenceRule,
		Color:          b.Color,
		Notes:          b.Notes,
		CreatedBy:      b.CreatedBy,
		Toggleable:     b.IsSlotToggle(),
	}

	if b.RecurrenceUntil != nil {
		until := s.formatDateTime(*b.RecurrenceUntil)
		resp.RecurrenceUntil = &until
	}

	return resp
}
