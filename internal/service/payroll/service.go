package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ue-andes/nomina-backend-go/internal/domain/employee"
	"github.com/ue-andes/nomina-backend-go/internal/domain/payroll"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/database"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/dateutil"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/storage"
	"github.com/ue-andes/nomina-backend-go/internal/repository/postgresql"
)

// Default placeholder returned when an employee has no payroll yet.
// The amounts mirror the standard teaching contract.
var (
	defaultWage        = decimal.NewFromFloat(470.0)
	defaultReserveFund = decimal.NewFromFloat(38.32)
	defaultIESSShare   = decimal.NewFromFloat(43.47)
)

const downloadURLExpiry = 15 * time.Minute

type Service struct {
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	fileStorage  storage.FileStorage
	calculator   *EntitlementCalculator
	minimumWage  decimal.Decimal
	transact     func(ctx context.Context, fn func(context.Context) error) error
	now          func() time.Time
}

func NewPayrollService(
	db *database.DB,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	fileStorage storage.FileStorage,
	minimumWage decimal.Decimal,
) *Service {
	return &Service{
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		fileStorage:  fileStorage,
		calculator:   NewEntitlementCalculator(),
		minimumWage:  minimumWage,
		transact: func(ctx context.Context, fn func(context.Context) error) error {
			return postgresql.WithTransaction(ctx, db, fn)
		},
		now: time.Now,
	}
}

func (s *Service) Submit(ctx context.Context, employeeID string, req payroll.SubmitPayrollRequest) (payroll.SubmitPayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SubmitPayrollResponse{}, err
	}
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return payroll.SubmitPayrollResponse{}, err
	}

	record, err := req.Normalize(employeeID, s.now())
	if err != nil {
		return payroll.SubmitPayrollResponse{}, err
	}

	var resp payroll.SubmitPayrollResponse
	err = s.transact(ctx, func(ctx context.Context) error {
		// Settlement records never replace anything.
		if record.Type == payroll.TypeMensual {
			existing, found, err := s.findMonthlyForMonth(ctx, employeeID, record.PayrollMonth)
			if err != nil {
				return err
			}
			if found {
				// The overwrite takes the submitted fields as-is; the
				// response carries the previous artifact link so the
				// caller can re-render against it.
				record.ID = existing.ID
				if err := s.payrollRepo.Update(ctx, record); err != nil {
					return err
				}
				resp = payroll.SubmitPayrollResponse{
					PayrollID: existing.ID,
					DriveID:   existing.DriveID,
					Result:    "update",
				}
				return nil
			}
		}

		created, err := s.payrollRepo.Create(ctx, record)
		if err != nil {
			return err
		}
		resp = payroll.SubmitPayrollResponse{
			PayrollID: created.ID,
			DriveID:   created.DriveID,
			Result:    "create",
		}
		return nil
	})
	if err != nil {
		return payroll.SubmitPayrollResponse{}, err
	}
	return resp, nil
}

// Update overwrites the identified record. Unlike Submit it never
// consults the month index, so settlement and out-of-month records
// can be corrected in place.
func (s *Service) Update(ctx context.Context, employeeID, payrollID string, req payroll.SubmitPayrollRequest) (payroll.SubmitPayrollResponse, error) {
	if payrollID == "" {
		return payroll.SubmitPayrollResponse{}, payroll.ErrInvalidPayrollID
	}
	if err := req.Validate(); err != nil {
		return payroll.SubmitPayrollResponse{}, err
	}
	record, err := req.Normalize(employeeID, s.now())
	if err != nil {
		return payroll.SubmitPayrollResponse{}, err
	}

	var resp payroll.SubmitPayrollResponse
	err = s.transact(ctx, func(ctx context.Context) error {
		existing, err := s.payrollRepo.GetByID(ctx, employeeID, payrollID)
		if err != nil {
			return err
		}
		record.ID = existing.ID
		if err := s.payrollRepo.Update(ctx, record); err != nil {
			return err
		}
		resp = payroll.SubmitPayrollResponse{
			PayrollID: existing.ID,
			DriveID:   existing.DriveID,
			Result:    "update",
		}
		return nil
	})
	if err != nil {
		return payroll.SubmitPayrollResponse{}, err
	}
	return resp, nil
}

func (s *Service) Exists(ctx context.Context, employeeID string, payrollMonth any) (payroll.ExistsResponse, error) {
	if payrollMonth == nil {
		return payroll.ExistsResponse{}, fmt.Errorf("payrollMonth is required: %w", dateutil.ErrInvalidDate)
	}
	month, err := dateutil.NormalizeToISO(payrollMonth)
	if err != nil {
		return payroll.ExistsResponse{}, err
	}

	existing, found, err := s.findMonthlyForMonth(ctx, employeeID, month)
	if err != nil {
		return payroll.ExistsResponse{}, err
	}
	if !found {
		return payroll.ExistsResponse{Exists: false}, nil
	}
	return payroll.ExistsResponse{Exists: true, PayrollID: existing.ID}, nil
}

// findMonthlyForMonth locates the non-volatile monthly record whose
// payroll month falls in the same UTC calendar month as the given
// instant.
func (s *Service) findMonthlyForMonth(ctx context.Context, employeeID, monthISO string) (payroll.Payroll, bool, error) {
	target, err := dateutil.ParseISO(monthISO)
	if err != nil {
		return payroll.Payroll{}, false, err
	}
	records, err := s.payrollRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return payroll.Payroll{}, false, err
	}

	targetUTC := target.UTC()
	for _, p := range records {
		if p.Volatile || p.Type != payroll.TypeMensual {
			continue
		}
		month, err := dateutil.ParseISO(p.PayrollMonth)
		if err != nil {
			continue
		}
		utc := month.UTC()
		if utc.Year() == targetUTC.Year() && utc.Month() == targetUTC.Month() {
			return p, true, nil
		}
	}
	return payroll.Payroll{}, false, nil
}

func (s *Service) Delete(ctx context.Context, employeeID, payrollID string) error {
	record, err := s.payrollRepo.GetByID(ctx, employeeID, payrollID)
	if err != nil {
		return err
	}
	if record.DriveID != "" {
		if err := s.fileStorage.Trash(ctx, record.DriveID); err != nil {
			slog.Warn("failed to trash payslip artifact",
				"payrollId", payrollID, "driveId", record.DriveID, "error", err)
		}
	}
	return s.payrollRepo.Delete(ctx, employeeID, payrollID)
}

// DeleteAllByEmployee removes every payroll record of an employee.
// Individual failures are logged and skipped so an employee removal
// can still proceed.
func (s *Service) DeleteAllByEmployee(ctx context.Context, employeeID string) error {
	records, err := s.payrollRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	return s.transact(ctx, func(ctx context.Context) error {
		for _, record := range records {
			if err := s.Delete(ctx, employeeID, record.ID); err != nil {
				slog.Warn("failed to delete payroll during employee cleanup",
					"employeeId", employeeID, "payrollId", record.ID, "error", err)
			}
		}
		return nil
	})
}

func (s *Service) GetAll(ctx context.Context) ([]payroll.PayrollResponse, error) {
	records, err := s.payrollRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(records), nil
}

func (s *Service) GetByID(ctx context.Context, employeeID, payrollID string) (payroll.PayrollResponse, error) {
	record, err := s.payrollRepo.GetByID(ctx, employeeID, payrollID)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	return payroll.NewPayrollResponse(record), nil
}

func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]payroll.PayrollResponse, error) {
	records, err := s.payrollRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return toResponses(records), nil
}

// ListByAdmin lists an employee's records by their directory account
// id. Volatile records are internal and stay hidden here.
func (s *Service) ListByAdmin(ctx context.Context, adminID string) ([]payroll.PayrollResponse, error) {
	emp, err := s.employeeRepo.GetByAdminID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	records, err := s.payrollRepo.ListByEmployee(ctx, emp.ID)
	if err != nil {
		return nil, err
	}
	visible := records[:0]
	for _, p := range records {
		if !p.Volatile {
			visible = append(visible, p)
		}
	}
	return toResponses(visible), nil
}

// Latest returns the newest monthly record. Employees with no
// history get a volatile placeholder so the payroll form can be
// prefilled.
func (s *Service) Latest(ctx context.Context, employeeID string) (payroll.PayrollResponse, error) {
	records, err := s.payrollRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	for _, p := range records {
		if p.EffectiveType() == payroll.TypeMensual {
			return payroll.NewPayrollResponse(p), nil
		}
	}

	now := s.now().UTC().Format(dateutil.ISOLayout)
	placeholder := payroll.Payroll{
		EmployeeID: employeeID,
		Earnings: []payroll.Transaction{
			{Description: "Sueldo", Amount: defaultWage},
			{Description: payroll.ReserveFundDescription, Amount: defaultReserveFund},
		},
		Deductions: []payroll.Transaction{
			{Description: "Aporte personal", Amount: defaultIESSShare},
		},
		PayrollDate:  now,
		PayrollMonth: now,
		Volatile:     true,
		Type:         payroll.TypeMensual,
	}
	return payroll.NewPayrollResponse(placeholder), nil
}

func (s *Service) Download(ctx context.Context, employeeID, payrollID string) (payroll.DownloadResponse, error) {
	record, err := s.payrollRepo.GetByID(ctx, employeeID, payrollID)
	if err != nil {
		return payroll.DownloadResponse{}, err
	}
	if record.DriveID == "" {
		return payroll.DownloadResponse{}, payroll.ErrDocumentMissing
	}
	url, err := s.fileStorage.GetURL(ctx, record.DriveID, downloadURLExpiry)
	if err != nil {
		return payroll.DownloadResponse{}, fmt.Errorf("failed to resolve download url: %w", err)
	}
	return payroll.DownloadResponse{DownloadURL: url, FileName: path.Base(record.DriveID)}, nil
}

func (s *Service) ThirteenthTotal(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	records, err := s.payrollRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.calculator.ThirteenthTotal(records, s.now()), nil
}

func (s *Service) ThirteenthByMonth(ctx context.Context, employeeID string) (payroll.MonthlyThirteenth, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return payroll.MonthlyThirteenth{}, err
	}
	records, err := s.payrollRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return payroll.MonthlyThirteenth{}, err
	}
	return s.calculator.ThirteenthByMonth(records, s.now()), nil
}

func (s *Service) ThirteenthReport(ctx context.Context) ([]payroll.ThirteenthReportEntry, error) {
	employees, err := s.employeeRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]payroll.ThirteenthReportEntry, 0, len(employees))
	for _, emp := range employees {
		records, err := s.payrollRepo.ListByEmployee(ctx, emp.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, payroll.ThirteenthReportEntry{
			EmployeeID: emp.ID,
			FirstName:  emp.FirstName,
			LastName:   emp.LastName,
			NationalID: emp.NationalID,
			Total:      s.calculator.ThirteenthTotal(records, s.now()),
		})
	}
	return entries, nil
}

func (s *Service) Fourteenth(ctx context.Context, employeeID string) (payroll.FourteenthResponse, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return payroll.FourteenthResponse{}, err
	}
	records, err := s.payrollRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return payroll.FourteenthResponse{}, err
	}
	months := s.calculator.FourteenthMonths(records, s.now())
	return payroll.FourteenthResponse{
		Months:       months,
		MonthCount:   len(months),
		Proportional: s.calculator.ProportionalFourteenth(len(months), s.minimumWage),
	}, nil
}

func toResponses(records []payroll.Payroll) []payroll.PayrollResponse {
	responses := make([]payroll.PayrollResponse, 0, len(records))
	for _, p := range records {
		responses = append(responses, payroll.NewPayrollResponse(p))
	}
	return responses
}
