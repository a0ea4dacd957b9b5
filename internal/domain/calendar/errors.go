package calendar

import "errors"

var (
	ErrCalendarNotFound  = errors.New("calendar not found")
	ErrEventNotFound     = errors.New("event not found")
	ErrWorkspaceDisabled = errors.New("google workspace integration is not configured")
)
