package employee

import (
	"time"

	"github.com/ue-andes/nomina-backend-go/internal/pkg/dateutil"
)

// WorkPeriod is one employment stretch. EndDate is either a canonical
// UTC instant or the open-ended sentinel dateutil.CurrentlyEmployed.
type WorkPeriod struct {
	JobPosition string `json:"jobPosition"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// Active reports whether the period is still open.
func (w WorkPeriod) Active() bool {
	return w.EndDate == dateutil.CurrentlyEmployed
}

// Employee is a stored employee record. Date fields hold canonical
// UTC instants.
type Employee struct {
	ID                 string       `json:"id"`
	AdminID            string       `json:"adminId"`
	FirstName          string       `json:"firstName"`
	LastName           string       `json:"lastName"`
	NationalID         string       `json:"nationalId"`
	BirthDate          string       `json:"birthDate"`
	InstitutionalEmail string       `json:"institutionalEmail"`
	Suspended          bool         `json:"suspended"`
	CalendarID         string       `json:"calendarId"`
	DriveFolderID      string       `json:"driveFolderId"`
	WorkPeriods        []WorkPeriod `json:"workPeriods"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// FullName joins first and last name for display and file naming.
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// CurrentJobPosition returns the position of the open work period, or
// an empty string when no period is open.
func (e Employee) CurrentJobPosition() string {
	for _, w := range e.WorkPeriods {
		if w.Active() {
			return w.JobPosition
		}
	}
	return ""
}
