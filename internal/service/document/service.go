package document

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ue-andes/nomina-backend-go/internal/domain/employee"
	"github.com/ue-andes/nomina-backend-go/internal/domain/payroll"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/dateutil"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/renderer"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/storage"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/validator"
)

// PayslipMailer is the slice of the mail service the renderer needs.
type PayslipMailer interface {
	SendPayslip(to, subject, body string, attachment []byte, filename string) error
}

// RenderRequest asks for a payroll document to be (re)built.
// Recipient overrides the employee's institutional address; an empty
// Summary falls back to a standard declaration.
type RenderRequest struct {
	EmployeeID string `json:"employeeId"`
	PayrollID  string `json:"payrollId"`
	Summary    string `json:"summary"`
	Recipient  string `json:"recipient"`
}

func (r *RenderRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employeeId", Message: "employeeId is required"})
	}
	if validator.IsEmpty(r.PayrollID) {
		errs = append(errs, validator.ValidationError{Field: "payrollId", Message: "payrollId is required"})
	}
	if !validator.IsEmpty(r.Recipient) && !validator.IsValidEmail(r.Recipient) {
		errs = append(errs, validator.ValidationError{Field: "recipient", Message: "recipient is not a valid address"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RenderResponse reports the stored artifact.
type RenderResponse struct {
	PayrollID string `json:"payrollId"`
	DriveID   string `json:"driveId"`
	FileName  string `json:"fileName"`
	Emailed   bool   `json:"emailed"`
}

type Service struct {
	employeeRepo employee.EmployeeRepository
	payrollRepo  payroll.PayrollRepository
	fileStorage  storage.FileStorage
	renderer     renderer.Renderer
	mailer       PayslipMailer
}

func NewDocumentService(
	employeeRepo employee.EmployeeRepository,
	payrollRepo payroll.PayrollRepository,
	fileStorage storage.FileStorage,
	payslipRenderer renderer.Renderer,
	mailer PayslipMailer,
) *Service {
	return &Service{
		employeeRepo: employeeRepo,
		payrollRepo:  payrollRepo,
		fileStorage:  fileStorage,
		renderer:     payslipRenderer,
		mailer:       mailer,
	}
}

// RenderPayroll builds the payslip document for a payroll record,
// stores it under the employee's folder and emails it. A previous
// artifact is trashed first; email delivery is best effort.
func (s *Service) RenderPayroll(ctx context.Context, req RenderRequest) (RenderResponse, error) {
	if err := req.Validate(); err != nil {
		return RenderResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return RenderResponse{}, err
	}
	record, err := s.payrollRepo.GetByID(ctx, req.EmployeeID, req.PayrollID)
	if err != nil {
		return RenderResponse{}, err
	}

	if record.DriveID != "" {
		if err := s.fileStorage.Trash(ctx, record.DriveID); err != nil {
			slog.Warn("failed to trash previous payslip",
				"payrollId", record.ID, "driveId", record.DriveID, "error", err)
		}
	}

	fields, err := payslipFields(emp, record, req.Summary)
	if err != nil {
		return RenderResponse{}, err
	}
	content, err := s.renderer.Render(ctx, fields)
	if err != nil {
		return RenderResponse{}, fmt.Errorf("failed to render payslip: %w", err)
	}

	fileName, err := documentTitle(emp, record)
	if err != nil {
		return RenderResponse{}, err
	}
	fileName += ".html"

	path := fileName
	if emp.DriveFolderID != "" {
		path = emp.DriveFolderID + "/" + fileName
	}
	driveID, err := s.fileStorage.Upload(ctx, bytes.NewReader(content), path, "text/html")
	if err != nil {
		return RenderResponse{}, fmt.Errorf("failed to store payslip: %w", err)
	}
	if err := s.payrollRepo.SetDriveID(ctx, emp.ID, record.ID, driveID); err != nil {
		return RenderResponse{}, err
	}

	resp := RenderResponse{PayrollID: record.ID, DriveID: driveID, FileName: fileName}

	recipient := req.Recipient
	if recipient == "" {
		recipient = emp.InstitutionalEmail
	}
	if recipient != "" {
		monthLabel, _ := dateutil.MonthYearDisplay(record.PayrollMonth)
		subject := fmt.Sprintf("Rol de Pagos - %s - %s", monthLabel, emp.FullName())
		body := fmt.Sprintf("Adjunto encontrará el Rol de Pagos correspondiente al mes de %s.", monthLabel)
		if err := s.mailer.SendPayslip(recipient, subject, body, content, fileName); err != nil {
			slog.Warn("failed to email payslip",
				"payrollId", record.ID, "recipient", recipient, "error", err)
		} else {
			resp.Emailed = true
		}
	}

	return resp, nil
}

// documentTitle is "<prefix>_<MesYear>_<nationalId>_<names>" where the
// prefix encodes the record type.
func documentTitle(emp employee.Employee, record payroll.Payroll) (string, error) {
	prefix := "RP"
	switch record.EffectiveType() {
	case payroll.TypeDecimotercer:
		prefix = "RP_Decimotercer"
	case payroll.TypeDecimocuarto:
		prefix = "RP_Decimocuarto"
	}

	monthLabel, err := dateutil.MonthYearCompact(record.PayrollMonth)
	if err != nil {
		return "", err
	}
	names := strings.ReplaceAll(emp.FullName(), " ", "")
	return fmt.Sprintf("%s_%s_%s_%s", prefix, monthLabel, emp.NationalID, names), nil
}

func payslipFields(emp employee.Employee, record payroll.Payroll, summary string) (map[string]string, error) {
	payrollDate, err := dateutil.FormatLocal(record.PayrollDate, "02/01/2006")
	if err != nil {
		return nil, err
	}
	monthLabel, err := dateutil.MonthYearDisplay(record.PayrollMonth)
	if err != nil {
		return nil, err
	}

	if summary == "" {
		summary = fmt.Sprintf(
			"Yo, %s, con cédula de identidad %s, declaro haber recibido conforme el valor neto detallado en este rol de pagos.",
			emp.FullName(), emp.NationalID)
	}

	earningDescriptions, earningAmounts := transactionColumns(record.Earnings)
	deductionDescriptions, deductionAmounts := transactionColumns(record.Deductions)

	return map[string]string{
		renderer.FieldEmployeeName:    emp.FullName(),
		renderer.FieldNationalID:      emp.NationalID,
		renderer.FieldJobPosition:     emp.CurrentJobPosition(),
		renderer.FieldPayrollDate:     payrollDate,
		renderer.FieldPayrollMonth:    monthLabel,
		renderer.FieldSummary:         summary,
		renderer.FieldEarningsDesc:    earningDescriptions,
		renderer.FieldEarningsAmt:     earningAmounts,
		renderer.FieldDeductionsDesc:  deductionDescriptions,
		renderer.FieldDeductionsAmt:   deductionAmounts,
		renderer.FieldTotalEarnings:   money(record.TotalEarnings()),
		renderer.FieldTotalDeductions: money(record.TotalDeductions()),
		renderer.FieldNetPay:          money(record.NetPay()),
	}, nil
}

func transactionColumns(lines []payroll.Transaction) (descriptions, amounts string) {
	descs := make([]string, 0, len(lines))
	values := make([]string, 0, len(lines))
	for _, line := range lines {
		descs = append(descs, line.Description)
		values = append(values, money(line.Amount))
	}
	return strings.Join(descs, "\n"), strings.Join(values, "\n")
}

func money(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
