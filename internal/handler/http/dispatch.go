package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ue-andes/nomina-backend-go/internal/domain/calendar"
	"github.com/ue-andes/nomina-backend-go/internal/domain/employee"
	"github.com/ue-andes/nomina-backend-go/internal/domain/payroll"
	"github.com/ue-andes/nomina-backend-go/internal/handler/http/response"
	"github.com/ue-andes/nomina-backend-go/internal/service/document"
)

// Action identifies one dispatchable operation. The set is closed:
// anything not listed here is rejected before it reaches a service.
type Action string

const (
	// Read actions
	ActionGetAllPayrolls           Action = "getAllPayrolls"
	ActionGetPayrollByID           Action = "getPayrollById"
	ActionGetAllPayrollsByEmployee Action = "getAllPayrollsByEmployee"
	ActionGetLatestPayroll         Action = "getLatestPayroll"
	ActionDownloadPayroll          Action = "downloadPayroll"
	ActionGetPayrollsByAdmin       Action = "getPayrollsByAdmin"
	ActionPayrollExists            Action = "payrollExists"
	ActionGetAllEmployees          Action = "getAllEmployees"
	ActionGetEmployeeByID          Action = "getEmployeeById"
	ActionGetEmployeeByAdminID     Action = "getEmployeeByAdminId"
	ActionGetProfilePicture        Action = "getProfilePicture"
	ActionGetThirteenthReport      Action = "getEmployees13erSueldo"
	ActionGetThirteenthByEmployee  Action = "get13erSueldoByEmployeeId"
	ActionGetFourteenthMonths      Action = "getMonthsFor14Sueldo"
	ActionListCalendars            Action = "listCalendars"
	ActionGetCalendarByID          Action = "getCalendarById"
	ActionListEvents               Action = "listEvents"
	ActionGetAllEvents             Action = "getAllEvents"

	// Write actions
	ActionCreatePayroll          Action = "createPayroll"
	ActionUpdatePayroll          Action = "updatePayroll"
	ActionDeletePayroll          Action = "deletePayroll"
	ActionSetPayrollTemplate     Action = "setPayrollTemplate"
	ActionCreateEmployee         Action = "createEmployee"
	ActionUpdateEmployee         Action = "updateEmployee"
	ActionDeleteEmployee         Action = "deleteEmployee"
	ActionSetProfilePicture      Action = "setProfilePicture"
	ActionSyncNewDocentes        Action = "syncNewDocentes"
	ActionCreateCalendar         Action = "createCalendar"
	ActionDeleteCalendar         Action = "deleteCalendar"
	ActionAddRecurringEvent      Action = "addRecurringEvent"
	ActionDeleteEvent            Action = "deleteEvent"
	ActionSendCalendarToEmployee Action = "sendCalendarToEmployee"
)

var (
	errMissingPayload   = errors.New("missing payload for action")
	errMalformedPayload = errors.New("malformed payload for action")
)

// DispatchGET answers the read actions.
func (h *Handler) DispatchGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	action := Action(queryParam(r, "action"))

	var (
		data any
		err  error
	)
	switch action {
	case ActionGetAllPayrolls:
		data, err = h.payrollService.GetAll(ctx)
	case ActionGetPayrollByID:
		data, err = h.payrollService.GetByID(ctx, queryParam(r, "employeeId"), queryParam(r, "payrollId"))
	case ActionGetAllPayrollsByEmployee:
		data, err = h.payrollService.ListByEmployee(ctx, queryParam(r, "employeeId"))
	case ActionGetLatestPayroll:
		data, err = h.payrollService.Latest(ctx, queryParam(r, "employeeId"))
	case ActionDownloadPayroll:
		data, err = h.payrollService.Download(ctx, queryParam(r, "employeeId"), queryParam(r, "payrollId"))
	case ActionGetPayrollsByAdmin:
		data, err = h.payrollService.ListByAdmin(ctx, queryParam(r, "adminId"))
	case ActionPayrollExists:
		data, err = h.payrollExists(ctx, r)
	case ActionGetAllEmployees:
		data, err = h.employeeService.GetAll(ctx)
	case ActionGetEmployeeByID:
		data, err = h.employeeService.GetByID(ctx, queryParam(r, "employeeId"))
	case ActionGetEmployeeByAdminID:
		data, err = h.employeeService.GetByAdminID(ctx, queryParam(r, "adminId"))
	case ActionGetProfilePicture:
		data, err = h.employeeService.GetProfilePicture(ctx, queryParam(r, "employeeId"))
	case ActionGetThirteenthReport:
		data, err = h.payrollService.ThirteenthReport(ctx)
	case ActionGetThirteenthByEmployee:
		data, err = h.payrollService.ThirteenthByMonth(ctx, queryParam(r, "employeeId"))
	case ActionGetFourteenthMonths:
		data, err = h.payrollService.Fourteenth(ctx, queryParam(r, "employeeId"))
	case ActionListCalendars:
		data, err = h.calendarService.List(ctx)
	case ActionGetCalendarByID:
		data, err = h.calendarService.GetByID(ctx, queryParam(r, "calendarId"))
	case ActionListEvents:
		data, err = h.calendarService.ListEvents(ctx, queryParam(r, "calendarId"))
	case ActionGetAllEvents:
		data, err = h.allEvents(ctx)
	default:
		response.Error(w, http.StatusBadRequest, fmt.Sprintf("unsupported action %q", action))
		return
	}

	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, data)
}

// DispatchPOST answers the write actions.
func (h *Handler) DispatchPOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}

	var (
		data any
		err  error
	)
	switch Action(req.Action) {
	case ActionCreatePayroll:
		data, err = h.submitPayroll(ctx, req)
	case ActionUpdatePayroll:
		data, err = h.updatePayroll(ctx, req)
	case ActionDeletePayroll:
		err = h.payrollService.Delete(ctx, req.EmployeeID, req.PayrollID)
	case ActionSetPayrollTemplate:
		data, err = h.documentService.RenderPayroll(ctx, document.RenderRequest{
			EmployeeID: req.EmployeeID,
			PayrollID:  req.PayrollID,
			Summary:    req.Summary,
			Recipient:  req.Recipient,
		})
	case ActionCreateEmployee:
		data, err = h.saveEmployee(ctx, req, "")
	case ActionUpdateEmployee:
		data, err = h.saveEmployee(ctx, req, req.EmployeeID)
	case ActionDeleteEmployee:
		err = h.employeeService.Delete(ctx, req.EmployeeID)
	case ActionSetProfilePicture:
		data, err = h.setProfilePicture(ctx, req)
	case ActionSyncNewDocentes:
		data, err = h.syncNewDocentes(ctx)
	case ActionCreateCalendar:
		data, err = h.createCalendar(ctx, req)
	case ActionDeleteCalendar:
		err = h.calendarService.Delete(ctx, req.CalendarID)
	case ActionAddRecurringEvent:
		data, err = h.addRecurringEvent(ctx, req)
	case ActionDeleteEvent:
		err = h.calendarService.DeleteEvent(ctx, req.CalendarID, req.EventID)
	case ActionSendCalendarToEmployee:
		data, err = h.sendCalendarToEmployee(ctx, req)
	default:
		response.Error(w, http.StatusBadRequest, fmt.Sprintf("unsupported action %q", req.Action))
		return
	}

	if err != nil {
		if errors.Is(err, errMissingPayload) || errors.Is(err, errMalformedPayload) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		response.HandleError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, data)
}

func (h *Handler) payrollExists(ctx context.Context, r *http.Request) (any, error) {
	var month any
	if value := queryParam(r, "payrollMonth"); value != "" {
		month = value
	}
	return h.payrollService.Exists(ctx, queryParam(r, "employeeId"), month)
}

type calendarEvents struct {
	CalendarID string                   `json:"calendarId"`
	Summary    string                   `json:"summary"`
	Events     []calendar.EventResponse `json:"events"`
}

func (h *Handler) allEvents(ctx context.Context) (any, error) {
	calendars, err := h.calendarService.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]calendarEvents, 0, len(calendars))
	for _, cal := range calendars {
		events, err := h.calendarService.ListEvents(ctx, cal.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, calendarEvents{CalendarID: cal.ID, Summary: cal.Summary, Events: events})
	}
	return result, nil
}

func (h *Handler) submitPayroll(ctx context.Context, req actionRequest) (any, error) {
	payload, err := decodePayload[payroll.SubmitPayrollRequest](req.PayrollData)
	if err != nil {
		return nil, err
	}
	return h.payrollService.Submit(ctx, req.EmployeeID, payload)
}

func (h *Handler) updatePayroll(ctx context.Context, req actionRequest) (any, error) {
	payload, err := decodePayload[payroll.SubmitPayrollRequest](req.PayrollData)
	if err != nil {
		return nil, err
	}
	return h.payrollService.Update(ctx, req.EmployeeID, req.PayrollID, payload)
}

func (h *Handler) saveEmployee(ctx context.Context, req actionRequest, employeeID string) (any, error) {
	payload, err := decodePayload[employee.SaveEmployeeRequest](req.EmployeeData)
	if err != nil {
		return nil, err
	}
	if employeeID == "" {
		return h.employeeService.Create(ctx, payload)
	}
	return h.employeeService.Update(ctx, employeeID, payload)
}

func (h *Handler) setProfilePicture(ctx context.Context, req actionRequest) (any, error) {
	picture, err := decodePicture(req.Picture)
	if err != nil {
		return nil, employee.ErrInvalidImageType
	}
	return h.employeeService.SetProfilePicture(ctx, req.EmployeeID, picture)
}

func (h *Handler) syncNewDocentes(ctx context.Context) (any, error) {
	if h.directoryService == nil {
		return nil, calendar.ErrWorkspaceDisabled
	}
	return h.directoryService.SyncNew(ctx)
}

func (h *Handler) createCalendar(ctx context.Context, req actionRequest) (any, error) {
	payload, err := decodePayload[calendar.CreateCalendarRequest](req.CalendarData)
	if err != nil {
		return nil, err
	}
	return h.calendarService.Create(ctx, payload)
}

func (h *Handler) addRecurringEvent(ctx context.Context, req actionRequest) (any, error) {
	payload, err := decodePayload[calendar.RecurringEventRequest](req.EventData)
	if err != nil {
		return nil, err
	}
	return h.calendarService.AddRecurringEvent(ctx, req.CalendarID, payload)
}

// sendCalendarToEmployee shares a calendar with an employee's
// institutional address. With no explicit calendar id the employee's
// own schedule calendar is shared.
func (h *Handler) sendCalendarToEmployee(ctx context.Context, req actionRequest) (any, error) {
	emp, err := h.employeeService.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	calendarID := req.CalendarID
	if calendarID == "" {
		calendarID = emp.CalendarID
	}
	if calendarID == "" {
		return nil, calendar.ErrCalendarNotFound
	}
	return h.calendarService.ShareWithEmployee(ctx, calendarID, emp.InstitutionalEmail)
}
