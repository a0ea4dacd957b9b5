package googleapi

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	admin "google.golang.org/api/admin/directory/v1"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Clients bundles the Google Workspace services the backend talks to:
// the Admin Directory for teacher listings and the Calendar API for
// academic schedules.
type Clients struct {
	Directory *admin.Service
	Calendar  *calendar.Service
}

// NewClients builds Workspace clients from a service-account key file,
// impersonating the given admin subject (domain-wide delegation).
func NewClients(ctx context.Context, credentialsFile, subject string) (*Clients, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read google credentials: %w", err)
	}

	config, err := google.JWTConfigFromJSON(data,
		admin.AdminDirectoryUserReadonlyScope,
		calendar.CalendarScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	config.Subject = subject

	ts := config.TokenSource(ctx)

	directory, err := admin.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create directory client: %w", err)
	}

	cal, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create calendar client: %w", err)
	}

	return &Clients{Directory: directory, Calendar: cal}, nil
}
