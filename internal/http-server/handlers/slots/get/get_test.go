package get

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-schedule/api"
	"shop-schedule/pkg/response"
)

type fakeGetter struct {
	got  *api.SlotsQuery
	days []api.DaySlots
	err  error
}

func (f *fakeGetter) GetSlots(ctx context.Context, q *api.SlotsQuery) ([]api.DaySlots, error) {
	f.got = q
	return f.days, f.err
}

type body struct {
	Success bool                    `json:"success"`
	Error   *response.ResponseError `json:"error"`
	Data    []api.DaySlots          `json:"data"`
}

func serve(t *testing.T, getter SlotGetter, target string) (int, body) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := httptest.NewRecorder()

	New(log, getter).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var b body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	return rec.Code, b
}

func TestGetSlots(t *testing.T) {
	blockID := int64(4)
	getter := &fakeGetter{days: []api.DaySlots{{
		Date: "2025-06-02",
		Slots: []api.SlotResponse{
			{Time: "09:00", Status: "available", Toggleable: true, StepMinutes: 30},
			{Time: "09:30", Status: "closed", Toggleable: true, BlockID: &blockID, StepMinutes: 30},
		},
	}}}

	code, b := serve(t, getter, "/schedule/slots?start=2025-06-02&days=1&duration_min=30&lead_min=0")

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, b.Success)
	require.Len(t, b.Data, 1)
	require.Len(t, b.Data[0].Slots, 2)
	assert.Equal(t, &blockID, b.Data[0].Slots[1].BlockID)

	require.NotNil(t, getter.got)
	assert.Equal(t, "2025-06-02", getter.got.Start)
	assert.Equal(t, 1, *getter.got.Days)
	assert.Equal(t, 30, *getter.got.DurationMin)
	assert.Equal(t, 0, *getter.got.LeadMin)
}

func TestGetSlots_OptionalParamsOmitted(t *testing.T) {
	getter := &fakeGetter{days: []api.DaySlots{}}

	code, _ := serve(t, getter, "/schedule/slots?start=2025-06-02")

	assert.Equal(t, http.StatusOK, code)
	assert.Nil(t, getter.got.Days)
	assert.Nil(t, getter.got.DurationMin)
	assert.Nil(t, getter.got.LeadMin)
}

func TestGetSlots_InvalidQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{name: "missing start", query: "", field: "start"},
		{name: "bad start", query: "start=06/02/2025", field: "start"},
		{name: "days not a number", query: "start=2025-06-02&days=abc", field: "days"},
		{name: "days too large", query: "start=2025-06-02&days=15", field: "days"},
		{name: "duration too small", query: "start=2025-06-02&duration_min=4", field: "duration_min"},
		{name: "negative lead", query: "start=2025-06-02&lead_min=-5", field: "lead_min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getter := &fakeGetter{}

			code, b := serve(t, getter, "/schedule/slots?"+tt.query)

			assert.Equal(t, http.StatusBadRequest, code)
			assert.False(t, b.Success)
			require.NotNil(t, b.Error)
			assert.Equal(t, string(response.VALIDATION_FAILED), b.Error.Code)
			assert.Contains(t, b.Error.Fields, tt.field)
			assert.Nil(t, getter.got, "service must not be called")
		})
	}
}

func TestGetSlots_ServiceErrors(t *testing.T) {
	t.Run("field error", func(t *testing.T) {
		code, b := serve(t, &fakeGetter{err: response.NewFieldError("start", "must be a date")}, "/schedule/slots?start=2025-06-02")

		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "must be a date", b.Error.Fields["start"])
	})

	t.Run("store failure", func(t *testing.T) {
		code, b := serve(t, &fakeGetter{err: errors.New("db down")}, "/schedule/slots?start=2025-06-02")

		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, string(response.FAILED_REQUEST), b.Error.Code)
		assert.Nil(t, b.Data)
	})
}
