package payroll

import "context"

// PayrollRepository persists payroll records. Records are always
// addressed through their owning employee.
type PayrollRepository interface {
	Create(ctx context.Context, p Payroll) (Payroll, error)
	ListAll(ctx context.Context) ([]Payroll, error)
	GetByID(ctx context.Context, employeeID, payrollID string) (Payroll, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Payroll, error)
	Update(ctx context.Context, p Payroll) error
	SetDriveID(ctx context.Context, employeeID, payrollID, driveID string) error
	Delete(ctx context.Context, employeeID, payrollID string) error
}
