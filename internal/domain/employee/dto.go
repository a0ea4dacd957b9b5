package employee

import (
	"github.com/ue-andes/nomina-backend-go/internal/pkg/dateutil"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/validator"
)

// WorkPeriodRequest is a work period as submitted by the client. Date
// fields accept any supported input shape; EndDate additionally
// accepts the open-ended sentinel.
type WorkPeriodRequest struct {
	JobPosition string `json:"jobPosition"`
	StartDate   any    `json:"startDate"`
	EndDate     any    `json:"endDate"`
}

// SaveEmployeeRequest is the payload for creating or updating an
// employee.
type SaveEmployeeRequest struct {
	AdminID            string              `json:"adminId"`
	FirstName          string              `json:"firstName"`
	LastName           string              `json:"lastName"`
	NationalID         string              `json:"nationalId"`
	BirthDate          any                 `json:"birthDate"`
	InstitutionalEmail string              `json:"institutionalEmail"`
	Suspended          bool                `json:"suspended"`
	CalendarID         string              `json:"calendarId"`
	WorkPeriods        []WorkPeriodRequest `json:"workPeriods"`
}

func (r *SaveEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FirstName) {
		errs = append(errs, validator.ValidationError{Field: "firstName", Message: "firstName is required"})
	}
	if validator.IsEmpty(r.LastName) {
		errs = append(errs, validator.ValidationError{Field: "lastName", Message: "lastName is required"})
	}
	if validator.IsEmpty(r.NationalID) {
		errs = append(errs, validator.ValidationError{Field: "nationalId", Message: "nationalId is required"})
	}
	if !validator.IsEmpty(r.InstitutionalEmail) && !validator.IsValidEmail(r.InstitutionalEmail) {
		errs = append(errs, validator.ValidationError{Field: "institutionalEmail", Message: "institutionalEmail is not a valid address"})
	}
	if r.BirthDate != nil && r.BirthDate != "" {
		if _, err := dateutil.NormalizeToISO(r.BirthDate); err != nil {
			errs = append(errs, validator.ValidationError{Field: "birthDate", Message: "birthDate is not a valid date"})
		}
	}

	for _, w := range r.WorkPeriods {
		if validator.IsEmpty(w.JobPosition) {
			errs = append(errs, validator.ValidationError{Field: "workPeriods", Message: "every work period needs a jobPosition"})
			break
		}
		if w.StartDate == nil {
			errs = append(errs, validator.ValidationError{Field: "workPeriods", Message: "every work period needs a startDate"})
			break
		}
		if _, err := dateutil.NormalizeToISO(w.StartDate); err != nil {
			errs = append(errs, validator.ValidationError{Field: "workPeriods", Message: "work period startDate is not a valid date"})
			break
		}
		if w.EndDate != nil && w.EndDate != dateutil.CurrentlyEmployed {
			if _, err := dateutil.NormalizeToISO(w.EndDate); err != nil {
				errs = append(errs, validator.ValidationError{Field: "workPeriods", Message: "work period endDate is not a valid date"})
				break
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Normalize converts a validated request into an entity with all
// dates in canonical form. A missing or sentinel end date stays open.
func (r *SaveEmployeeRequest) Normalize() (Employee, error) {
	e := Employee{
		AdminID:            r.AdminID,
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		NationalID:         r.NationalID,
		InstitutionalEmail: r.InstitutionalEmail,
		Suspended:          r.Suspended,
		CalendarID:         r.CalendarID,
	}

	if r.BirthDate != nil && r.BirthDate != "" {
		iso, err := dateutil.NormalizeToISO(r.BirthDate)
		if err != nil {
			return Employee{}, err
		}
		e.BirthDate = iso
	}

	for _, w := range r.WorkPeriods {
		period := WorkPeriod{JobPosition: w.JobPosition, EndDate: dateutil.CurrentlyEmployed}
		start, err := dateutil.NormalizeToISO(w.StartDate)
		if err != nil {
			return Employee{}, err
		}
		period.StartDate = start
		if w.EndDate != nil && w.EndDate != dateutil.CurrentlyEmployed {
			end, err := dateutil.NormalizeToISO(w.EndDate)
			if err != nil {
				return Employee{}, err
			}
			period.EndDate = end
		}
		e.WorkPeriods = append(e.WorkPeriods, period)
	}

	return e, nil
}

// WorkPeriodResponse is a work period with dates reduced to local
// calendar days for display.
type WorkPeriodResponse struct {
	JobPosition string `json:"jobPosition"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// EmployeeResponse is an employee record formatted for display.
type EmployeeResponse struct {
	ID                 string               `json:"id"`
	AdminID            string               `json:"adminId"`
	FirstName          string               `json:"firstName"`
	LastName           string               `json:"lastName"`
	NationalID         string               `json:"nationalId"`
	BirthDate          string               `json:"birthDate"`
	InstitutionalEmail string               `json:"institutionalEmail"`
	Suspended          bool                 `json:"suspended"`
	CalendarID         string               `json:"calendarId"`
	DriveFolderID      string               `json:"driveFolderId"`
	WorkPeriods        []WorkPeriodResponse `json:"workPeriods"`
}

// NewEmployeeResponse formats a stored employee for display. Dates
// are shown as UTC calendar days; the open-ended sentinel passes
// through untouched.
func NewEmployeeResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:                 e.ID,
		AdminID:            e.AdminID,
		FirstName:          e.FirstName,
		LastName:           e.LastName,
		NationalID:         e.NationalID,
		BirthDate:          e.BirthDate,
		InstitutionalEmail: e.InstitutionalEmail,
		Suspended:          e.Suspended,
		CalendarID:         e.CalendarID,
		DriveFolderID:      e.DriveFolderID,
	}
	if formatted, err := dateutil.FormatDay(e.BirthDate); err == nil {
		resp.BirthDate = formatted
	}
	for _, w := range e.WorkPeriods {
		p := WorkPeriodResponse{JobPosition: w.JobPosition, StartDate: w.StartDate, EndDate: w.EndDate}
		if formatted, err := dateutil.FormatDay(w.StartDate); err == nil {
			p.StartDate = formatted
		}
		if !w.Active() {
			if formatted, err := dateutil.FormatDay(w.EndDate); err == nil {
				p.EndDate = formatted
			}
		}
		resp.WorkPeriods = append(resp.WorkPeriods, p)
	}
	return resp
}

// ProfilePictureResponse carries the public URL of an employee's
// profile picture.
type ProfilePictureResponse struct {
	EmployeeID string `json:"employeeId"`
	URL        string `json:"url"`
}
