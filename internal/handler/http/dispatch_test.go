package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ue-andes/nomina-backend-go/internal/domain/calendar"
	"github.com/ue-andes/nomina-backend-go/internal/domain/employee"
	"github.com/ue-andes/nomina-backend-go/internal/domain/payroll"
)

type stubPayrollService struct {
	submitted  map[string]payroll.SubmitPayrollRequest
	updated    map[string]payroll.SubmitPayrollRequest
	deleted    []string
	latestHits int
}

func newStubPayrollService() *stubPayrollService {
	return &stubPayrollService{
		submitted: make(map[string]payroll.SubmitPayrollRequest),
		updated:   make(map[string]payroll.SubmitPayrollRequest),
	}
}

func (s *stubPayrollService) Submit(_ context.Context, employeeID string, req payroll.SubmitPayrollRequest) (payroll.SubmitPayrollResponse, error) {
	if employeeID == "missing" {
		return payroll.SubmitPayrollResponse{}, employee.ErrEmployeeNotFound
	}
	s.submitted[employeeID] = req
	return payroll.SubmitPayrollResponse{PayrollID: "pay-1", Result: "create"}, nil
}

func (s *stubPayrollService) Update(_ context.Context, _, payrollID string, req payroll.SubmitPayrollRequest) (payroll.SubmitPayrollResponse, error) {
	if payrollID == "" {
		return payroll.SubmitPayrollResponse{}, payroll.ErrInvalidPayrollID
	}
	s.updated[payrollID] = req
	return payroll.SubmitPayrollResponse{PayrollID: payrollID, Result: "update"}, nil
}

func (s *stubPayrollService) Exists(_ context.Context, _ string, _ any) (payroll.ExistsResponse, error) {
	return payroll.ExistsResponse{Exists: true, PayrollID: "pay-1"}, nil
}

func (s *stubPayrollService) Delete(_ context.Context, _, payrollID string) error {
	s.deleted = append(s.deleted, payrollID)
	return nil
}

func (s *stubPayrollService) DeleteAllByEmployee(_ context.Context, _ string) error { return nil }

func (s *stubPayrollService) GetAll(_ context.Context) ([]payroll.PayrollResponse, error) {
	return []payroll.PayrollResponse{{ID: "pay-1"}}, nil
}

func (s *stubPayrollService) GetByID(_ context.Context, _, payrollID string) (payroll.PayrollResponse, error) {
	if payrollID != "pay-1" {
		return payroll.PayrollResponse{}, payroll.ErrPayrollNotFound
	}
	return payroll.PayrollResponse{ID: "pay-1"}, nil
}

func (s *stubPayrollService) ListByEmployee(_ context.Context, _ string) ([]payroll.PayrollResponse, error) {
	return nil, nil
}

func (s *stubPayrollService) ListByAdmin(_ context.Context, _ string) ([]payroll.PayrollResponse, error) {
	return nil, nil
}

func (s *stubPayrollService) Latest(_ context.Context, _ string) (payroll.PayrollResponse, error) {
	s.latestHits++
	return payroll.PayrollResponse{ID: "pay-1", Volatile: true}, nil
}

func (s *stubPayrollService) Download(_ context.Context, _, _ string) (payroll.DownloadResponse, error) {
	return payroll.DownloadResponse{DownloadURL: "http://localhost/files/doc.html"}, nil
}

func (s *stubPayrollService) ThirteenthTotal(_ context.Context, _ string) (decimal.Decimal, error) {
	return decimal.NewFromFloat(50), nil
}

func (s *stubPayrollService) ThirteenthByMonth(_ context.Context, _ string) (payroll.MonthlyThirteenth, error) {
	return payroll.MonthlyThirteenth{}, nil
}

func (s *stubPayrollService) ThirteenthReport(_ context.Context) ([]payroll.ThirteenthReportEntry, error) {
	return nil, nil
}

func (s *stubPayrollService) Fourteenth(_ context.Context, _ string) (payroll.FourteenthResponse, error) {
	return payroll.FourteenthResponse{}, nil
}

type stubEmployeeService struct {
	created []employee.SaveEmployeeRequest
	deleted []string
}

func (s *stubEmployeeService) Create(_ context.Context, req employee.SaveEmployeeRequest) (employee.EmployeeResponse, error) {
	s.created = append(s.created, req)
	return employee.EmployeeResponse{ID: "emp-1"}, nil
}

func (s *stubEmployeeService) Update(_ context.Context, id string, _ employee.SaveEmployeeRequest) (employee.EmployeeResponse, error) {
	return employee.EmployeeResponse{ID: id}, nil
}

func (s *stubEmployeeService) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubEmployeeService) GetByID(_ context.Context, id string) (employee.EmployeeResponse, error) {
	if id != "emp-1" {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}
	return employee.EmployeeResponse{ID: "emp-1", InstitutionalEmail: "maria@andes.edu.ec"}, nil
}

func (s *stubEmployeeService) GetByAdminID(_ context.Context, _ string) (employee.EmployeeResponse, error) {
	return employee.EmployeeResponse{ID: "emp-1"}, nil
}

func (s *stubEmployeeService) GetAll(_ context.Context) ([]employee.EmployeeResponse, error) {
	return []employee.EmployeeResponse{{ID: "emp-1"}}, nil
}

func (s *stubEmployeeService) SetProfilePicture(_ context.Context, id string, _ []byte) (employee.ProfilePictureResponse, error) {
	return employee.ProfilePictureResponse{EmployeeID: id}, nil
}

func (s *stubEmployeeService) GetProfilePicture(_ context.Context, id string) (employee.ProfilePictureResponse, error) {
	return employee.ProfilePictureResponse{EmployeeID: id}, nil
}

type stubCalendarService struct{}

func (s *stubCalendarService) Create(_ context.Context, req calendar.CreateCalendarRequest) (calendar.CalendarResponse, error) {
	return calendar.CalendarResponse{ID: "cal-1", Summary: req.Summary}, nil
}

func (s *stubCalendarService) List(_ context.Context) ([]calendar.CalendarResponse, error) {
	return []calendar.CalendarResponse{{ID: "cal-1"}}, nil
}

func (s *stubCalendarService) GetByID(_ context.Context, id string) (calendar.CalendarResponse, error) {
	return calendar.CalendarResponse{ID: id}, nil
}

func (s *stubCalendarService) Delete(_ context.Context, _ string) error { return nil }

func (s *stubCalendarService) AddRecurringEvent(_ context.Context, _ string, req calendar.RecurringEventRequest) (calendar.EventResponse, error) {
	return calendar.EventResponse{ID: "evt-1", Summary: req.Summary}, nil
}

func (s *stubCalendarService) ListEvents(_ context.Context, _ string) ([]calendar.EventResponse, error) {
	return []calendar.EventResponse{{ID: "evt-1"}}, nil
}

func (s *stubCalendarService) DeleteEvent(_ context.Context, _, _ string) error { return nil }

func (s *stubCalendarService) ShareWithEmployee(_ context.Context, calendarID, email string) (calendar.ShareResponse, error) {
	return calendar.ShareResponse{CalendarID: calendarID, Email: email, Role: "reader"}, nil
}

func newTestHandler() (*Handler, *stubPayrollService, *stubEmployeeService) {
	payrollService := newStubPayrollService()
	employeeService := &stubEmployeeService{}
	return NewHandler(payrollService, employeeService, nil, nil, &stubCalendarService{}), payrollService, employeeService
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (bool, map[string]any, string) {
	t.Helper()
	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
		Error   string         `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Success, envelope.Data, envelope.Error
}

func TestDispatchGETUnknownAction(t *testing.T) {
	handler, _, _ := newTestHandler()

	rec := httptest.NewRecorder()
	handler.DispatchGET(rec, httptest.NewRequest(http.MethodGet, "/api/v1/actions?action=nope", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	success, _, errMsg := decodeEnvelope(t, rec)
	assert.False(t, success)
	assert.Contains(t, errMsg, "nope")
}

func TestDispatchGETLatestPayroll(t *testing.T) {
	handler, payrollService, _ := newTestHandler()

	rec := httptest.NewRecorder()
	handler.DispatchGET(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/actions?action=getLatestPayroll&employeeId=emp-1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	success, data, _ := decodeEnvelope(t, rec)
	assert.True(t, success)
	assert.Equal(t, "pay-1", data["id"])
	assert.Equal(t, 1, payrollService.latestHits)
}

func TestDispatchGETPayrollExists(t *testing.T) {
	handler, _, _ := newTestHandler()

	rec := httptest.NewRecorder()
	handler.DispatchGET(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/actions?action=payrollExists&employeeId=emp-1&payrollMonth=2025-03-01", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	success, data, _ := decodeEnvelope(t, rec)
	assert.True(t, success)
	assert.Equal(t, true, data["exists"])
}

func TestDispatchPOSTCreatePayroll(t *testing.T) {
	handler, payrollService, _ := newTestHandler()

	body := `{
		"action": "createPayroll",
		"employeeId": "emp-1",
		"payrollData": {
			"earnings": [{"description": "Sueldo", "amount": 600}],
			"payrollMonth": "2025-03-01"
		}
	}`
	rec := httptest.NewRecorder()
	handler.DispatchPOST(rec, httptest.NewRequest(http.MethodPost, "/api/v1/actions", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	success, data, _ := decodeEnvelope(t, rec)
	assert.True(t, success)
	assert.Equal(t, "create", data["result"])

	req, ok := payrollService.submitted["emp-1"]
	require.True(t, ok)
	require.Len(t, req.Earnings, 1)
	assert.Equal(t, "Sueldo", req.Earnings[0].Description)
}

func TestDispatchPOSTUpdatePayrollTargetsRecord(t *testing.T) {
	handler, payrollService, _ := newTestHandler()

	body := `{
		"action": "updatePayroll",
		"employeeId": "emp-1",
		"payrollId": "pay-7",
		"payrollData": {
			"earnings": [{"description": "Sueldo", "amount": 650}],
			"deductions": [],
			"payrollDate": "2025-01-31",
			"type": "Decimotercer"
		}
	}`
	rec := httptest.NewRecorder()
	handler.DispatchPOST(rec, httptest.NewRequest(http.MethodPost, "/api/v1/actions", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	success, data, _ := decodeEnvelope(t, rec)
	assert.True(t, success)
	assert.Equal(t, "update", data["result"])
	assert.Equal(t, "pay-7", data["payrollId"])

	// The named record is updated; nothing goes through Submit.
	req, ok := payrollService.updated["pay-7"]
	require.True(t, ok)
	assert.Equal(t, "Decimotercer", req.Type)
	assert.Empty(t, payrollService.submitted)
}

func TestDispatchPOSTUpdatePayrollWithoutID(t *testing.T) {
	handler, _, _ := newTestHandler()

	body := `{
		"action": "updatePayroll",
		"employeeId": "emp-1",
		"payrollData": {
			"earnings": [{"description": "Sueldo", "amount": 650}],
			"deductions": [],
			"payrollDate": "2025-01-31"
		}
	}`
	rec := httptest.NewRecorder()
	handler.DispatchPOST(rec, httptest.NewRequest(http.MethodPost, "/api/v1/actions", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDispatchPOSTMissingPayload(t *testing.T) {
	handler, _, _ := newTestHandler()

	body := `{"action": "createPayroll", "employeeId": "emp-1"}`
	rec := httptest.NewRecorder()
	handler.DispatchPOST(rec, httptest.NewRequest(http.MethodPost, "/api/v1/actions", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDispatchPOSTUnknownEmployeeMapsTo404(t *testing.T) {
	handler, _, _ := newTestHandler()

	body := `{
		"action": "createPayroll",
		"employeeId": "missing",
		"payrollData": {"earnings": [{"description": "Sueldo", "amount": 600}]}
	}`
	rec := httptest.NewRecorder()
	handler.DispatchPOST(rec, httptest.NewRequest(http.MethodPost, "/api/v1/actions", strings.NewReader(body)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	success, _, errMsg := decodeEnvelope(t, rec)
	assert.False(t, success)
	assert.NotEmpty(t, errMsg)
}

func TestDispatchPOSTMalformedBody(t *testing.T) {
	handler, _, _ := newTestHandler()

	rec := httptest.NewRecorder()
	handler.DispatchPOST(rec, httptest.NewRequest(http.MethodPost, "/api/v1/actions", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDispatchPOSTSyncDisabled(t *testing.T) {
	handler, _, _ := newTestHandler()

	body := `{"action": "syncNewDocentes"}`
	rec := httptest.NewRecorder()
	handler.DispatchPOST(rec, httptest.NewRequest(http.MethodPost, "/api/v1/actions", strings.NewReader(body)))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDispatchPOSTDeleteEmployee(t *testing.T) {
	handler, _, employeeService := newTestHandler()

	body := `{"action": "deleteEmployee", "employeeId": "emp-1"}`
	rec := httptest.NewRecorder()
	handler.DispatchPOST(rec, httptest.NewRequest(http.MethodPost, "/api/v1/actions", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"emp-1"}, employeeService.deleted)
}

func TestDispatchPOSTSendCalendarToEmployee(t *testing.T) {
	handler, _, _ := newTestHandler()

	body := `{"action": "sendCalendarToEmployee", "employeeId": "emp-1", "calendarId": "cal-1"}`
	rec := httptest.NewRecorder()
	handler.DispatchPOST(rec, httptest.NewRequest(http.MethodPost, "/api/v1/actions", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	success, data, _ := decodeEnvelope(t, rec)
	assert.True(t, success)
	assert.Equal(t, "maria@andes.edu.ec", data["email"])
}
