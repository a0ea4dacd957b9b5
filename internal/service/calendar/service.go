package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/ue-andes/nomina-backend-go/internal/domain/calendar"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/dateutil"
)

type Service struct {
	client *gcal.Service
}

// NewCalendarService wraps the Calendar API client. A nil client
// marks the integration as disabled; every call then fails with
// ErrWorkspaceDisabled.
func NewCalendarService(client *gcal.Service) *Service {
	return &Service{client: client}
}

func (s *Service) enabled() error {
	if s.client == nil {
		return calendar.ErrWorkspaceDisabled
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == 404
}

func (s *Service) Create(ctx context.Context, req calendar.CreateCalendarRequest) (calendar.CalendarResponse, error) {
	if err := s.enabled(); err != nil {
		return calendar.CalendarResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return calendar.CalendarResponse{}, err
	}

	created, err := s.client.Calendars.Insert(&gcal.Calendar{
		Summary:     req.Summary,
		Description: req.Description,
		TimeZone:    dateutil.Location().String(),
	}).Context(ctx).Do()
	if err != nil {
		return calendar.CalendarResponse{}, fmt.Errorf("failed to create calendar: %w", err)
	}
	return calendar.CalendarResponse{
		ID:          created.Id,
		Summary:     created.Summary,
		Description: created.Description,
		TimeZone:    created.TimeZone,
	}, nil
}

func (s *Service) List(ctx context.Context) ([]calendar.CalendarResponse, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}

	var calendars []calendar.CalendarResponse
	pageToken := ""
	for {
		call := s.client.CalendarList.List().Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		page, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list calendars: %w", err)
		}
		for _, entry := range page.Items {
			calendars = append(calendars, calendar.CalendarResponse{
				ID:          entry.Id,
				Summary:     entry.Summary,
				Description: entry.Description,
				TimeZone:    entry.TimeZone,
			})
		}
		if page.NextPageToken == "" {
			return calendars, nil
		}
		pageToken = page.NextPageToken
	}
}

func (s *Service) GetByID(ctx context.Context, calendarID string) (calendar.CalendarResponse, error) {
	if err := s.enabled(); err != nil {
		return calendar.CalendarResponse{}, err
	}

	found, err := s.client.Calendars.Get(calendarID).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return calendar.CalendarResponse{}, calendar.ErrCalendarNotFound
		}
		return calendar.CalendarResponse{}, fmt.Errorf("failed to get calendar: %w", err)
	}
	return calendar.CalendarResponse{
		ID:          found.Id,
		Summary:     found.Summary,
		Description: found.Description,
		TimeZone:    found.TimeZone,
	}, nil
}

func (s *Service) Delete(ctx context.Context, calendarID string) error {
	if err := s.enabled(); err != nil {
		return err
	}
	if err := s.client.Calendars.Delete(calendarID).Context(ctx).Do(); err != nil {
		if isNotFound(err) {
			return calendar.ErrCalendarNotFound
		}
		return fmt.Errorf("failed to delete calendar: %w", err)
	}
	return nil
}

// AddRecurringEvent inserts a weekly class slot that repeats until
// the end of the school term.
func (s *Service) AddRecurringEvent(ctx context.Context, calendarID string, req calendar.RecurringEventRequest) (calendar.EventResponse, error) {
	if err := s.enabled(); err != nil {
		return calendar.EventResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return calendar.EventResponse{}, err
	}

	timeZone := dateutil.Location().String()
	until := strings.NewReplacer("-", "", ":", "").Replace(req.Until)
	event := &gcal.Event{
		Summary:  req.Summary,
		Location: req.Location,
		Start:    &gcal.EventDateTime{DateTime: req.Start, TimeZone: timeZone},
		End:      &gcal.EventDateTime{DateTime: req.End, TimeZone: timeZone},
		Recurrence: []string{
			fmt.Sprintf("RRULE:FREQ=WEEKLY;UNTIL=%sT235959Z", until),
		},
	}

	created, err := s.client.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return calendar.EventResponse{}, calendar.ErrCalendarNotFound
		}
		return calendar.EventResponse{}, fmt.Errorf("failed to create event: %w", err)
	}
	return toEventResponse(created), nil
}

func (s *Service) ListEvents(ctx context.Context, calendarID string) ([]calendar.EventResponse, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}

	var events []calendar.EventResponse
	pageToken := ""
	for {
		call := s.client.Events.List(calendarID).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		page, err := call.Do()
		if err != nil {
			if isNotFound(err) {
				return nil, calendar.ErrCalendarNotFound
			}
			return nil, fmt.Errorf("failed to list events: %w", err)
		}
		for _, item := range page.Items {
			events = append(events, toEventResponse(item))
		}
		if page.NextPageToken == "" {
			return events, nil
		}
		pageToken = page.NextPageToken
	}
}

func (s *Service) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := s.enabled(); err != nil {
		return err
	}
	if err := s.client.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		if isNotFound(err) {
			return calendar.ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func (s *Service) ShareWithEmployee(ctx context.Context, calendarID, email string) (calendar.ShareResponse, error) {
	if err := s.enabled(); err != nil {
		return calendar.ShareResponse{}, err
	}

	acl, err := s.client.Acl.List(calendarID).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return calendar.ShareResponse{}, calendar.ErrCalendarNotFound
		}
		return calendar.ShareResponse{}, fmt.Errorf("failed to list calendar access: %w", err)
	}
	for _, rule := range acl.Items {
		if rule.Scope != nil && rule.Scope.Value == email {
			return calendar.ShareResponse{CalendarID: calendarID, Email: email, Role: rule.Role}, nil
		}
	}

	rule, err := s.client.Acl.Insert(calendarID, &gcal.AclRule{
		Role:  "reader",
		Scope: &gcal.AclRuleScope{Type: "user", Value: email},
	}).Context(ctx).Do()
	if err != nil {
		return calendar.ShareResponse{}, fmt.Errorf("failed to share calendar: %w", err)
	}
	return calendar.ShareResponse{CalendarID: calendarID, Email: email, Role: rule.Role}, nil
}

func toEventResponse(event *gcal.Event) calendar.EventResponse {
	resp := calendar.EventResponse{
		ID:       event.Id,
		Summary:  event.Summary,
		Location: event.Location,
		Status:   event.Status,
	}
	if event.Start != nil {
		resp.Start = eventTime(event.Start)
	}
	if event.End != nil {
		resp.End = eventTime(event.End)
	}
	return resp
}

func eventTime(t *gcal.EventDateTime) string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}
