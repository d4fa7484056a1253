package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "09:00", want: NewTimeOfDay(9, 0)},
		{in: "17:30:00", want: NewTimeOfDay(17, 30)},
		{in: " 00:05 ", want: 5},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayOn(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	date := time.Date(2025, 6, 2, 23, 30, 0, 0, time.UTC) // 02:30 on June 3rd in loc

	got := NewTimeOfDay(9, 15).On(date, loc)

	assert.Equal(t, time.Date(2025, 6, 3, 9, 15, 0, 0, loc), got)
	assert.Equal(t, "09:15", NewTimeOfDay(9, 15).String())
}

func TestOpeningHoursPeriods(t *testing.T) {
	tod := func(h, m int) *TimeOfDay {
		v := NewTimeOfDay(h, m)
		return &v
	}

	tests := []struct {
		name  string
		hours *OpeningHours
		want  []Period
	}{
		{name: "nil row", hours: nil, want: nil},
		{name: "no periods", hours: &OpeningHours{}, want: nil},
		{
			name: "morning and afternoon",
			hours: &OpeningHours{
				MorningStart: tod(9, 0), MorningEnd: tod(12, 0),
				AfternoonStart: tod(14, 0), AfternoonEnd: tod(18, 0),
			},
			want: []Period{
				{Start: NewTimeOfDay(9, 0), End: NewTimeOfDay(12, 0)},
				{Start: NewTimeOfDay(14, 0), End: NewTimeOfDay(18, 0)},
			},
		},
		{
			name:  "half defined afternoon ignored",
			hours: &OpeningHours{MorningStart: tod(9, 0), MorningEnd: tod(12, 0), AfternoonStart: tod(14, 0)},
			want:  []Period{{Start: NewTimeOfDay(9, 0), End: NewTimeOfDay(12, 0)}},
		},
		{
			name:  "inverted pair ignored",
			hours: &OpeningHours{MorningStart: tod(12, 0), MorningEnd: tod(9, 0)},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.hours.Periods())
		})
	}
}

func TestAppointmentStatusOccupies(t *testing.T) {
	assert.True(t, AppointmentBooked.Occupies())
	assert.True(t, AppointmentConfirmed.Occupies())
	assert.True(t, AppointmentInProgress.Occupies())
	assert.False(t, AppointmentDone.Occupies())
	assert.False(t, AppointmentCancelled.Occupies())
	assert.False(t, AppointmentNoShow.Occupies())
}

func TestBlockOverlaps(t *testing.T) {
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	b := AvailabilityBlock{Start: base, End: base.Add(time.Hour)}

	assert.True(t, b.Overlaps(base.Add(30*time.Minute), base.Add(90*time.Minute)))
	assert.True(t, b.Overlaps(base.Add(-time.Hour), base.Add(2*time.Hour)))
	assert.False(t, b.Overlaps(base.Add(time.Hour), base.Add(2*time.Hour)))
	assert.False(t, b.Overlaps(base.Add(-time.Hour), base))
}
