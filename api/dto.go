package api

// Slots

type SlotsQuery struct {
	Start       string `json:"start" validate:"required,datetime=2006-01-02"`
	Days        *int   `json:"days" validate:"omitempty,min=1,max=14"`
	DurationMin *int   `json:"duration_min" validate:"omitempty,min=5,max=480"`
	LeadMin     *int   `json:"lead_min" validate:"omitempty,min=0,max=1440"`
}

type SlotResponse struct {
	Time        string `json:"time"`
	Start       string `json:"start"`
	End         string `json:"end"`
	ToggleEnd   string `json:"toggle_end"`
	Status      string `json:"status"`
	Toggleable  bool   `json:"toggleable"`
	BlockID     *int64 `json:"block_id"`
	Discount    int    `json:"discount"`
	StepMinutes int    `json:"step_minutes"`
}

type DaySlots struct {
	Date  string         `json:"date"`
	Slots []SlotResponse `json:"slots"`
}

type ToggleRequest struct {
	Start         string  `json:"start" validate:"required"`
	End           *string `json:"end,omitempty"`
	MakeAvailable *bool   `json:"make_available" validate:"required"`
	BlockID       *int64  `json:"block_id,omitempty" validate:"omitempty,min=1"`
	StepMinutes   *int    `json:"step_minutes,omitempty" validate:"omitempty,min=5,max=480"`
}

// Opening hours

type OpeningHoursRequest struct {
	MorningStart   *string `json:"morning_start" validate:"omitempty,datetime=15:04"`
	MorningEnd     *string `json:"morning_end" validate:"omitempty,datetime=15:04"`
	AfternoonStart *string `json:"afternoon_start" validate:"omitempty,datetime=15:04"`
	AfternoonEnd   *string `json:"afternoon_end" validate:"omitempty,datetime=15:04"`
	SlotStepMin    *int    `json:"slot_step_min" validate:"omitempty,min=5,max=480"`
}

type OpeningHoursResponse struct {
	Weekday        int     `json:"weekday"`
	MorningStart   *string `json:"morning_start"`
	MorningEnd     *string `json:"morning_end"`
	AfternoonStart *string `json:"afternoon_start"`
	AfternoonEnd   *string `json:"afternoon_end"`
	SlotStepMin    int     `json:"slot_step_min"`
}

// Availability blocks

type BlockRequest struct {
	Type            string  `json:"type" validate:"required,oneof=open closed maintenance offsite"`
	Title           string  `json:"title" validate:"max=255"`
	Start           string  `json:"start_datetime" validate:"required"`
	End             string  `json:"end_datetime" validate:"required"`
	RecurrenceRule  *string `json:"recurrence_rule,omitempty" validate:"omitempty,max=512"`
	RecurrenceUntil *string `json:"recurrence_until,omitempty"`
	Color           *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Notes           *string `json:"notes,omitempty"`
	CreatedBy       *int64  `json:"created_by,omitempty" validate:"omitempty,min=1"`
}

type BlockResponse struct {
	ID              int64   `json:"id"`
	Type            string  `json:"type"`
	Kind            string  `json:"kind"`
	Title           string  `json:"title"`
	Start           string  `json:"start_datetime"`
	End             string  `json:"end_datetime"`
	RecurrenceRule  *string `json:"recurrence_rule"`
	RecurrenceUntil *string `json:"recurrence_until"`
	Color           *string `json:"color"`
	Notes           *string `json:"notes"`
	CreatedBy       *int64  `json:"created_by"`
	Toggleable      bool    `json:"toggleable"`
}
