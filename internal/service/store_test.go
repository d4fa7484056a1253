package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"shop-schedule/internal/models"
	"shop-schedule/pkg/response"
)

// memStore is an in-memory Store with the same semantics as the Postgres
// one, including the unique bounds of slot toggles.
type memStore struct {
	mu sync.Mutex

	hours        map[time.Weekday]models.OpeningHours
	promos       []models.PromoRule
	appointments []models.Appointment
	blocks       map[int64]models.AvailabilityBlock
	nextID       int64

	failOn string
}

func newMemStore() *memStore {
	return &memStore{
		hours:  make(map[time.Weekday]models.OpeningHours),
		blocks: make(map[int64]models.AvailabilityBlock),
		nextID: 1,
	}
}

var errStoreDown = &storeError{"store unavailable"}

type storeError struct{ msg string }

func (e *storeError) Error() string { return e.msg }

func (m *memStore) fail(op string) error {
	if m.failOn == op {
		return errStoreDown
	}
	return nil
}

func (m *memStore) addBlock(b models.AvailabilityBlock) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	b.ID = m.nextID
	m.nextID++
	m.blocks[b.ID] = b
	return b.ID
}

func (m *memStore) slotToggles() []models.AvailabilityBlock {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.AvailabilityBlock
	for _, b := range m.blocks {
		if b.IsSlotToggle() {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func (m *memStore) ListOpeningHours(ctx context.Context) ([]models.OpeningHours, error) {
	if err := m.fail("ListOpeningHours"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.OpeningHours, 0, len(m.hours))
	for _, h := range m.hours {
		out = append(out, h)
	}
	return out, nil
}

func (m *memStore) GetOpeningHours(ctx context.Context, weekday time.Weekday) (*models.OpeningHours, error) {
	if err := m.fail("GetOpeningHours"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.hours[weekday]
	if !ok {
		return nil, response.ErrNotFound
	}
	return &h, nil
}

func (m *memStore) UpsertOpeningHours(ctx context.Context, hours *models.OpeningHours) error {
	if err := m.fail("UpsertOpeningHours"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hours[hours.Weekday] = *hours
	return nil
}

func (m *memStore) ListPromoRules(ctx context.Context) ([]models.PromoRule, error) {
	if err := m.fail("ListPromoRules"); err != nil {
		return nil, err
	}
	return m.promos, nil
}

func (m *memStore) ListOccupyingAppointments(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	if err := m.fail("ListOccupyingAppointments"); err != nil {
		return nil, err
	}

	var out []models.Appointment
	for _, a := range m.appointments {
		if a.Status.Occupies() && !a.Start.Before(from) && a.Start.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) ListBlocks(ctx context.Context, from, to time.Time, includeOpen bool) ([]models.AvailabilityBlock, error) {
	if err := m.fail("ListBlocks"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.AvailabilityBlock
	for _, b := range m.blocks {
		if !includeOpen && b.Type == models.BlockOpen {
			continue
		}
		if threeWayOverlap(b, from, to) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetBlock(ctx context.Context, id int64) (*models.AvailabilityBlock, error) {
	if err := m.fail("GetBlock"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.blocks[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	return &b, nil
}

func (m *memStore) CreateBlock(ctx context.Context, block *models.AvailabilityBlock) (int64, error) {
	if err := m.fail("CreateBlock"); err != nil {
		return 0, err
	}
	return m.addBlock(*block), nil
}

func (m *memStore) DeleteBlock(ctx context.Context, id int64) error {
	if err := m.fail("DeleteBlock"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blocks[id]; !ok {
		return response.ErrNotFound
	}
	delete(m.blocks, id)
	return nil
}

func (m *memStore) SlotToggleExists(ctx context.Context, start, end time.Time) (bool, error) {
	if err := m.fail("SlotToggleExists"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.blocks {
		if b.IsSlotToggle() && b.Start.Equal(start) && b.End.Equal(end) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) InsertSlotToggle(ctx context.Context, start, end time.Time) (int64, bool, error) {
	if err := m.fail("InsertSlotToggle"); err != nil {
		return 0, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.blocks {
		if b.IsSlotToggle() && b.Start.Equal(start) && b.End.Equal(end) {
			return 0, false, nil
		}
	}

	note := models.SlotToggleNote
	id := m.nextID
	m.nextID++
	m.blocks[id] = models.AvailabilityBlock{
		ID:    id,
		Type:  models.BlockClosed,
		Kind:  models.KindSlotToggle,
		Start: start,
		End:   end,
		Notes: &note,
	}
	return id, true, nil
}

func (m *memStore) DeleteSlotToggle(ctx context.Context, id int64) (int64, error) {
	if err := m.fail("DeleteSlotToggle"); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.blocks[id]
	if !ok || !b.IsSlotToggle() {
		return 0, nil
	}
	delete(m.blocks, id)
	return 1, nil
}

func (m *memStore) DeleteSlotTogglesOverlapping(ctx context.Context, start, end time.Time) (int64, error) {
	if err := m.fail("DeleteSlotTogglesOverlapping"); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, b := range m.blocks {
		if b.IsSlotToggle() && threeWayOverlap(b, start, end) {
			delete(m.blocks, id)
			n++
		}
	}
	return n, nil
}

func threeWayOverlap(b models.AvailabilityBlock, start, end time.Time) bool {
	startInside := !b.Start.Before(start) && b.Start.Before(end)
	endInside := b.End.After(start) && !b.End.After(end)
	contains := !b.Start.After(start) && !b.End.Before(end)
	return startInside || endInside || contains
}
