package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type classifies a payroll record. The monthly payroll is the
// default; the thirteenth and fourteenth salary settlements are kept
// as separate record types so they never feed back into the
// entitlement accruals.
type Type string

const (
	TypeMensual      Type = "Mensual"
	TypeDecimotercer Type = "Decimotercer"
	TypeDecimocuarto Type = "Decimocuarto"
)

// ReserveFundDescription is the earning line excluded from the
// thirteenth salary accrual.
const ReserveFundDescription = "Fondo de reserva"

// Transaction is a single earning or deduction line.
type Transaction struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Payroll is a stored payroll record. Date fields hold canonical UTC
// instants in ISO 8601 with milliseconds.
type Payroll struct {
	ID           string        `json:"id"`
	EmployeeID   string        `json:"employeeId"`
	Earnings     []Transaction `json:"earnings"`
	Deductions   []Transaction `json:"deductions"`
	PayrollDate  string        `json:"payrollDate"`
	PayrollMonth string        `json:"payrollMonth"`
	Volatile     bool          `json:"volatile"`
	DriveID      string        `json:"driveId"`
	Type         Type          `json:"type"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// EffectiveType treats records persisted without a type as monthly.
func (p Payroll) EffectiveType() Type {
	if p.Type == "" {
		return TypeMensual
	}
	return p.Type
}

// CountsTowardEntitlements reports whether the record accrues into
// the thirteenth and fourteenth salary computations. Volatile records
// and settlement records do not.
func (p Payroll) CountsTowardEntitlements() bool {
	if p.Volatile {
		return false
	}
	t := p.EffectiveType()
	return t != TypeDecimotercer && t != TypeDecimocuarto
}

// TotalEarnings sums all earning lines.
func (p Payroll) TotalEarnings() decimal.Decimal {
	total := decimal.Zero
	for _, t := range p.Earnings {
		total = total.Add(t.Amount)
	}
	return total
}

// TotalDeductions sums all deduction lines.
func (p Payroll) TotalDeductions() decimal.Decimal {
	total := decimal.Zero
	for _, t := range p.Deductions {
		total = total.Add(t.Amount)
	}
	return total
}

// NetPay is total earnings minus total deductions.
func (p Payroll) NetPay() decimal.Decimal {
	return p.TotalEarnings().Sub(p.TotalDeductions())
}

// AccruableEarnings is the earnings total with the reserve fund line
// excluded. This is the base for the thirteenth salary.
func (p Payroll) AccruableEarnings() decimal.Decimal {
	total := decimal.Zero
	for _, t := range p.Earnings {
		if t.Description == ReserveFundDescription {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total
}
