package payroll

import "errors"

var (
	ErrPayrollNotFound  = errors.New("payroll record not found")
	ErrDocumentMissing  = errors.New("payroll has no rendered document")
	ErrInvalidPayrollID = errors.New("invalid payroll id")
)
