package payroll

import (
	"context"

	"github.com/shopspring/decimal"
)

// PayrollService is the payroll lifecycle and entitlement surface.
type PayrollService interface {
	// Submit stores a payroll record. A non-volatile monthly record
	// for a month that already has one replaces it in place.
	Submit(ctx context.Context, employeeID string, req SubmitPayrollRequest) (SubmitPayrollResponse, error)
	// Update overwrites the identified record with the submitted data,
	// keeping its id.
	Update(ctx context.Context, employeeID, payrollID string, req SubmitPayrollRequest) (SubmitPayrollResponse, error)
	// Exists reports whether a non-volatile monthly record already
	// covers the month of the given date.
	Exists(ctx context.Context, employeeID string, payrollMonth any) (ExistsResponse, error)
	Delete(ctx context.Context, employeeID, payrollID string) error
	DeleteAllByEmployee(ctx context.Context, employeeID string) error

	GetAll(ctx context.Context) ([]PayrollResponse, error)
	GetByID(ctx context.Context, employeeID, payrollID string) (PayrollResponse, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]PayrollResponse, error)
	ListByAdmin(ctx context.Context, adminID string) ([]PayrollResponse, error)
	// Latest returns the most recent monthly record, or a volatile
	// placeholder at the configured minimum wage when the employee
	// has none yet.
	Latest(ctx context.Context, employeeID string) (PayrollResponse, error)
	Download(ctx context.Context, employeeID, payrollID string) (DownloadResponse, error)

	ThirteenthTotal(ctx context.Context, employeeID string) (decimal.Decimal, error)
	ThirteenthByMonth(ctx context.Context, employeeID string) (MonthlyThirteenth, error)
	ThirteenthReport(ctx context.Context) ([]ThirteenthReportEntry, error)
	Fourteenth(ctx context.Context, employeeID string) (FourteenthResponse, error)
}
