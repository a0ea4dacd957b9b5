package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ue-andes/nomina-backend-go/internal/pkg/dateutil"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/validator"
)

// TransactionRequest is an earning or deduction line as submitted by
// the client. Amount is a pointer so a missing amount can be told
// apart from zero.
type TransactionRequest struct {
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
}

// SubmitPayrollRequest is the payload for creating or updating a
// payroll record. Date fields accept any of the supported input
// shapes and are normalized before persistence.
type SubmitPayrollRequest struct {
	Earnings     []TransactionRequest `json:"earnings"`
	Deductions   []TransactionRequest `json:"deductions"`
	PayrollDate  any                  `json:"payrollDate"`
	PayrollMonth any                  `json:"payrollMonth"`
	Volatile     bool                 `json:"volatile"`
	DriveID      string               `json:"driveId"`
	Type         string               `json:"type"`
}

func (r *SubmitPayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	// Both lists must be present; an empty list is fine.
	if r.Earnings == nil {
		errs = append(errs, validator.ValidationError{Field: "earnings", Message: "earnings must be a list"})
	}
	if r.Deductions == nil {
		errs = append(errs, validator.ValidationError{Field: "deductions", Message: "deductions must be a list"})
	}
	validateTransactions(&errs, "earnings", r.Earnings)
	validateTransactions(&errs, "deductions", r.Deductions)

	switch r.Type {
	case "", string(TypeMensual), string(TypeDecimotercer), string(TypeDecimocuarto):
	default:
		errs = append(errs, validator.ValidationError{Field: "type", Message: "type must be Mensual, Decimotercer or Decimocuarto"})
	}

	if r.PayrollDate == nil {
		errs = append(errs, validator.ValidationError{Field: "payrollDate", Message: "payrollDate is required"})
	} else if _, err := dateutil.NormalizeToISO(r.PayrollDate); err != nil {
		errs = append(errs, validator.ValidationError{Field: "payrollDate", Message: "payrollDate is not a valid date"})
	}
	if r.PayrollMonth != nil {
		if _, err := dateutil.NormalizeToISO(r.PayrollMonth); err != nil {
			errs = append(errs, validator.ValidationError{Field: "payrollMonth", Message: "payrollMonth is not a valid date"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateTransactions(errs *validator.ValidationErrors, field string, lines []TransactionRequest) {
	for _, line := range lines {
		if validator.IsEmpty(line.Description) {
			*errs = append(*errs, validator.ValidationError{Field: field, Message: "every line needs a description"})
			return
		}
		if line.Amount == nil {
			*errs = append(*errs, validator.ValidationError{Field: field, Message: "every line needs a numeric amount"})
			return
		}
	}
}

// Normalize converts a validated request into a record ready for
// persistence, filling the documented defaults.
func (r *SubmitPayrollRequest) Normalize(employeeID string, now time.Time) (Payroll, error) {
	p := Payroll{
		EmployeeID: employeeID,
		Volatile:   r.Volatile,
		DriveID:    r.DriveID,
		Type:       Type(r.Type),
	}
	if p.Type == "" {
		p.Type = TypeMensual
	}

	for _, line := range r.Earnings {
		p.Earnings = append(p.Earnings, Transaction{Description: line.Description, Amount: *line.Amount})
	}
	for _, line := range r.Deductions {
		p.Deductions = append(p.Deductions, Transaction{Description: line.Description, Amount: *line.Amount})
	}

	var err error
	if r.PayrollDate == nil {
		p.PayrollDate = now.UTC().Format(dateutil.ISOLayout)
	} else if p.PayrollDate, err = dateutil.NormalizeToISO(r.PayrollDate); err != nil {
		return Payroll{}, err
	}
	if r.PayrollMonth == nil {
		p.PayrollMonth = now.UTC().Format(dateutil.ISOLayout)
	} else if p.PayrollMonth, err = dateutil.NormalizeToISO(r.PayrollMonth); err != nil {
		return Payroll{}, err
	}

	return p, nil
}

// PayrollResponse is a payroll record with its dates rendered in the
// institution's timezone for display.
type PayrollResponse struct {
	ID           string        `json:"id"`
	EmployeeID   string        `json:"employeeId"`
	Earnings     []Transaction `json:"earnings"`
	Deductions   []Transaction `json:"deductions"`
	PayrollDate  string        `json:"payrollDate"`
	PayrollMonth string        `json:"payrollMonth"`
	Volatile     bool          `json:"volatile"`
	DriveID      string        `json:"driveId"`
	Type         Type          `json:"type"`
}

// NewPayrollResponse formats a stored record for display.
// payrollDate keeps its time of day, payrollMonth is reduced to the
// year and month.
func NewPayrollResponse(p Payroll) PayrollResponse {
	resp := PayrollResponse{
		ID:           p.ID,
		EmployeeID:   p.EmployeeID,
		Earnings:     p.Earnings,
		Deductions:   p.Deductions,
		PayrollDate:  p.PayrollDate,
		PayrollMonth: p.PayrollMonth,
		Volatile:     p.Volatile,
		DriveID:      p.DriveID,
		Type:         p.EffectiveType(),
	}
	if formatted, err := dateutil.FormatLocal(p.PayrollDate, "2006-01-02 15:04:05"); err == nil {
		resp.PayrollDate = formatted
	}
	if formatted, err := dateutil.FormatLocal(p.PayrollMonth, "2006-01"); err == nil {
		resp.PayrollMonth = formatted
	}
	return resp
}

// SubmitPayrollResponse reports the outcome of a payroll submission.
// Result is "create" when a new record was stored and "update" when a
// monthly record for the same month was overwritten in place.
type SubmitPayrollResponse struct {
	PayrollID string `json:"payrollId"`
	DriveID   string `json:"driveId"`
	Result    string `json:"result"`
}

// ExistsResponse answers whether a monthly payroll already covers the
// given month.
type ExistsResponse struct {
	Exists    bool   `json:"exists"`
	PayrollID string `json:"payrollId,omitempty"`
}

// DownloadResponse carries the link to a rendered payslip artifact.
type DownloadResponse struct {
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
}

// MonthAmount is one month's share of the thirteenth salary. Months
// with no payroll serialize as the literal "---".
type MonthAmount struct {
	Known  bool
	Amount decimal.Decimal
}

func (a MonthAmount) MarshalJSON() ([]byte, error) {
	if !a.Known {
		return []byte(`"---"`), nil
	}
	return []byte(a.Amount.StringFixed(2)), nil
}

// MonthlyThirteenth maps Spanish month labels ("diciembre de 2024")
// to that month's accrued share, in accrual-window order.
type MonthlyThirteenth struct {
	Months []MonthShare    `json:"months"`
	Total  decimal.Decimal `json:"total"`
}

// MonthShare pairs a month label with its accrued amount.
type MonthShare struct {
	Month  string      `json:"month"`
	Amount MonthAmount `json:"amount"`
}

// ThirteenthReportEntry is one row of the all-employee thirteenth
// salary report.
type ThirteenthReportEntry struct {
	EmployeeID string          `json:"employeeId"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	NationalID string          `json:"nationalId"`
	Total      decimal.Decimal `json:"total"`
}

// FourteenthResponse reports the months accrued toward the fourteenth
// salary and the proportional amount at the configured minimum wage.
type FourteenthResponse struct {
	Months       []string        `json:"months"`
	MonthCount   int             `json:"monthCount"`
	Proportional decimal.Decimal `json:"proportional"`
}
