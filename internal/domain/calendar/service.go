package calendar

import "context"

// CalendarService wraps the institution's Google Calendar surface.
type CalendarService interface {
	Create(ctx context.Context, req CreateCalendarRequest) (CalendarResponse, error)
	List(ctx context.Context) ([]CalendarResponse, error)
	GetByID(ctx context.Context, calendarID string) (CalendarResponse, error)
	Delete(ctx context.Context, calendarID string) error

	AddRecurringEvent(ctx context.Context, calendarID string, req RecurringEventRequest) (EventResponse, error)
	ListEvents(ctx context.Context, calendarID string) ([]EventResponse, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error

	// ShareWithEmployee grants the employee read access to the
	// calendar. Sharing twice with the same address is a no-op.
	ShareWithEmployee(ctx context.Context, calendarID, email string) (ShareResponse, error)
}
