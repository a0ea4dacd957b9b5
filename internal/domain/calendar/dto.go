package calendar

import (
	"github.com/ue-andes/nomina-backend-go/internal/pkg/validator"
)

// CreateCalendarRequest creates a secondary calendar for a course or
// an employee schedule.
type CreateCalendarRequest struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

func (r *CreateCalendarRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Summary) {
		errs = append(errs, validator.ValidationError{Field: "summary", Message: "summary is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RecurringEventRequest adds a weekly class slot to a calendar. Times
// are local wall-clock values ("2025-09-01T07:30:00"); Until is the
// last calendar day of the recurrence ("20251220").
type RecurringEventRequest struct {
	Summary  string `json:"summary"`
	Location string `json:"location"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Until    string `json:"until"`
}

func (r *RecurringEventRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Summary) {
		errs = append(errs, validator.ValidationError{Field: "summary", Message: "summary is required"})
	}
	if validator.IsEmpty(r.Start) {
		errs = append(errs, validator.ValidationError{Field: "start", Message: "start is required"})
	}
	if validator.IsEmpty(r.End) {
		errs = append(errs, validator.ValidationError{Field: "end", Message: "end is required"})
	}
	if validator.IsEmpty(r.Until) {
		errs = append(errs, validator.ValidationError{Field: "until", Message: "until is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CalendarResponse is a calendar summary for listings.
type CalendarResponse struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	TimeZone    string `json:"timeZone"`
}

// EventResponse is a calendar event for listings.
type EventResponse struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	Location string `json:"location"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Status   string `json:"status"`
}

// ShareResponse reports the ACL rule created when a calendar is
// shared with an employee.
type ShareResponse struct {
	CalendarID string `json:"calendarId"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}
