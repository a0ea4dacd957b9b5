package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ue-andes/nomina-backend-go/internal/domain/payroll"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/dateutil"
)

var twelve = decimal.NewFromInt(12)

// EntitlementCalculator computes the Ecuadorian thirteenth and
// fourteenth salary accruals from an employee's payroll history. It
// is pure: callers pass the records and the reference instant.
type EntitlementCalculator struct{}

func NewEntitlementCalculator() *EntitlementCalculator {
	return &EntitlementCalculator{}
}

// thirteenthWindow is the accrual period ending Nov 30 of the base
// year. When the reference instant falls in December the accrual has
// rolled over to the next base year.
func (c *EntitlementCalculator) thirteenthWindow(now time.Time) (start, end time.Time) {
	loc := dateutil.Location()
	local := now.In(loc)
	baseYear := local.Year()
	if local.Month() == time.December {
		baseYear++
	}
	start = time.Date(baseYear-1, time.December, 1, 0, 0, 0, 0, loc)
	end = time.Date(baseYear, time.November, 30, 23, 59, 59, 0, loc)
	return start, end
}

// fourteenthWindow is the accrual period ending Jul 31 of the base
// year, rolling over in August.
func (c *EntitlementCalculator) fourteenthWindow(now time.Time) (start, end time.Time) {
	loc := dateutil.Location()
	local := now.In(loc)
	baseYear := local.Year()
	if local.Month() >= time.August {
		baseYear++
	}
	start = time.Date(baseYear-1, time.August, 1, 0, 0, 0, 0, loc)
	end = time.Date(baseYear, time.July, 31, 23, 59, 59, 0, loc)
	return start, end
}

func withinWindow(p payroll.Payroll, start, end time.Time) bool {
	t, err := dateutil.ParseISO(p.PayrollDate)
	if err != nil {
		return false
	}
	return !t.Before(start) && !t.After(end)
}

func (c *EntitlementCalculator) qualifyingThirteenth(records []payroll.Payroll, now time.Time) []payroll.Payroll {
	start, end := c.thirteenthWindow(now)
	var qualifying []payroll.Payroll
	for _, p := range records {
		if p.CountsTowardEntitlements() && withinWindow(p, start, end) {
			qualifying = append(qualifying, p)
		}
	}
	return qualifying
}

// ThirteenthTotal is one twelfth of the accruable earnings inside the
// current window, rounded to cents once at the end.
func (c *EntitlementCalculator) ThirteenthTotal(records []payroll.Payroll, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, p := range c.qualifyingThirteenth(records, now) {
		total = total.Add(p.AccruableEarnings())
	}
	return total.Div(twelve).Round(2)
}

// ThirteenthByMonth breaks the accrual down into the twelve window
// months. Months without a payroll stay unknown and serialize as
// "---". Records are bucketed by the calendar month of their payroll
// month field, read in UTC.
func (c *EntitlementCalculator) ThirteenthByMonth(records []payroll.Payroll, now time.Time) payroll.MonthlyThirteenth {
	start, _ := c.thirteenthWindow(now)

	type bucket struct {
		year  int
		month time.Month
	}
	shares := make(map[bucket]decimal.Decimal)
	for _, p := range c.qualifyingThirteenth(records, now) {
		t, err := dateutil.ParseISO(p.PayrollMonth)
		if err != nil {
			continue
		}
		utc := t.UTC()
		shares[bucket{utc.Year(), utc.Month()}] = p.AccruableEarnings().Div(twelve).Round(2)
	}

	result := payroll.MonthlyThirteenth{Total: c.ThirteenthTotal(records, now)}
	cursor := start
	for i := 0; i < 12; i++ {
		share := payroll.MonthShare{Month: dateutil.MonthYearLabel(cursor.Month(), cursor.Year())}
		if amount, ok := shares[bucket{cursor.Year(), cursor.Month()}]; ok {
			share.Amount = payroll.MonthAmount{Known: true, Amount: amount}
		}
		result.Months = append(result.Months, share)
		cursor = cursor.AddDate(0, 1, 0)
	}
	return result
}

// FourteenthMonths lists the window months that have at least one
// qualifying payroll, bucketed by the local calendar month of the
// payroll date.
func (c *EntitlementCalculator) FourteenthMonths(records []payroll.Payroll, now time.Time) []string {
	start, end := c.fourteenthWindow(now)
	loc := dateutil.Location()

	type bucket struct {
		year  int
		month time.Month
	}
	seen := make(map[bucket]bool)
	for _, p := range records {
		if !p.CountsTowardEntitlements() || !withinWindow(p, start, end) {
			continue
		}
		t, err := dateutil.ParseISO(p.PayrollDate)
		if err != nil {
			continue
		}
		local := t.In(loc)
		seen[bucket{local.Year(), local.Month()}] = true
	}

	var months []string
	cursor := start
	for i := 0; i < 12; i++ {
		if seen[bucket{cursor.Year(), cursor.Month()}] {
			months = append(months, dateutil.MonthYearLabel(cursor.Month(), cursor.Year()))
		}
		cursor = cursor.AddDate(0, 1, 0)
	}
	return months
}

// ProportionalFourteenth prorates the statutory wage over the months
// worked.
func (c *EntitlementCalculator) ProportionalFourteenth(monthCount int, wage decimal.Decimal) decimal.Decimal {
	return wage.Mul(decimal.NewFromInt(int64(monthCount))).Div(twelve).Round(2)
}
