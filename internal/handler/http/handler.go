package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ue-andes/nomina-backend-go/internal/domain/calendar"
	"github.com/ue-andes/nomina-backend-go/internal/domain/employee"
	"github.com/ue-andes/nomina-backend-go/internal/domain/payroll"
	"github.com/ue-andes/nomina-backend-go/internal/service/directory"
	"github.com/ue-andes/nomina-backend-go/internal/service/document"
)

// Handler answers the action-dispatch endpoints. Reads arrive as GET
// query parameters, writes as a JSON body with an "action" field.
type Handler struct {
	payrollService   payroll.PayrollService
	employeeService  employee.EmployeeService
	documentService  *document.Service
	directoryService *directory.Service
	calendarService  calendar.CalendarService
}

func NewHandler(
	payrollService payroll.PayrollService,
	employeeService employee.EmployeeService,
	documentService *document.Service,
	directoryService *directory.Service,
	calendarService calendar.CalendarService,
) *Handler {
	return &Handler{
		payrollService:   payrollService,
		employeeService:  employeeService,
		documentService:  documentService,
		directoryService: directoryService,
		calendarService:  calendarService,
	}
}

// actionRequest is the write envelope. Domain payloads stay raw until
// the action is known.
type actionRequest struct {
	Action       string          `json:"action"`
	EmployeeID   string          `json:"employeeId"`
	PayrollID    string          `json:"payrollId"`
	AdminID      string          `json:"adminId"`
	CalendarID   string          `json:"calendarId"`
	EventID      string          `json:"eventId"`
	Summary      string          `json:"summary"`
	Recipient    string          `json:"recipient"`
	Picture      string          `json:"picture"`
	PayrollMonth any             `json:"payrollMonth"`
	PayrollData  json.RawMessage `json:"payrollData"`
	EmployeeData json.RawMessage `json:"employeeData"`
	CalendarData json.RawMessage `json:"calendarData"`
	EventData    json.RawMessage `json:"eventData"`
}

func decodePayload[T any](raw json.RawMessage) (T, error) {
	var payload T
	if len(raw) == 0 {
		return payload, errMissingPayload
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, errMalformedPayload
	}
	return payload, nil
}

// decodePicture accepts raw base64 with or without a data-URI prefix.
func decodePicture(encoded string) ([]byte, error) {
	if i := strings.IndexByte(encoded, ','); i >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[i+1:]
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func queryParam(r *http.Request, key string) string {
	return r.URL.Query().Get(key)
}
