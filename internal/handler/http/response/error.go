package response

import (
	"errors"
	"net/http"

	"github.com/ue-andes/nomina-backend-go/internal/domain/calendar"
	"github.com/ue-andes/nomina-backend-go/internal/domain/employee"
	"github.com/ue-andes/nomina-backend-go/internal/domain/payroll"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/dateutil"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/validator"
)

// HandleError maps service errors onto HTTP statuses. Every failure
// keeps the uniform envelope; the message is the error text.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		Error(w, http.StatusUnprocessableEntity, validationErrs.Error())
		return
	}

	switch {
	case errors.Is(err, dateutil.ErrInvalidDate),
		errors.Is(err, employee.ErrInvalidImageType),
		errors.Is(err, payroll.ErrInvalidPayrollID):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrProfilePictureNotFound),
		errors.Is(err, payroll.ErrPayrollNotFound),
		errors.Is(err, payroll.ErrDocumentMissing),
		errors.Is(err, calendar.ErrCalendarNotFound),
		errors.Is(err, calendar.ErrEventNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, employee.ErrEmployeeAlreadyExists):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, calendar.ErrWorkspaceDisabled):
		Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		Error(w, http.StatusInternalServerError, err.Error())
	}
}
