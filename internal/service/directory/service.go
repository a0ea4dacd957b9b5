package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	admin "google.golang.org/api/admin/directory/v1"

	"github.com/ue-andes/nomina-backend-go/internal/config"
	"github.com/ue-andes/nomina-backend-go/internal/domain/employee"
	"github.com/ue-andes/nomina-backend-go/internal/domain/payroll"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/dateutil"
)

const (
	defaultNationalID  = "0123456789"
	defaultJobPosition = "Profesor titular"
	placeholderBirth   = "1900-01-01T00:00:00Z"
	placeholderEnd     = "1900-01-02T00:00:00Z"
)

// TeacherAccount is the slice of a Workspace user the sync needs.
type TeacherAccount struct {
	AdminID     string
	Email       string
	FullName    string
	NationalID  string
	Suspended   bool
	OrgUnitPath string
	LastLogin   string
	Created     string
}

// DirectoryClient lists the teacher accounts of the institution.
type DirectoryClient interface {
	ListTeachers(ctx context.Context) ([]TeacherAccount, error)
}

// EmployeeWriter is the slice of the employee service the sync needs.
type EmployeeWriter interface {
	GetAll(ctx context.Context) ([]employee.EmployeeResponse, error)
	Create(ctx context.Context, req employee.SaveEmployeeRequest) (employee.EmployeeResponse, error)
}

// PayrollSeeder creates the placeholder payroll of a new employee.
type PayrollSeeder interface {
	Submit(ctx context.Context, employeeID string, req payroll.SubmitPayrollRequest) (payroll.SubmitPayrollResponse, error)
}

// SyncResponse summarizes a directory sync run.
type SyncResponse struct {
	Created []string `json:"created"`
	Skipped int      `json:"skipped"`
	Failed  []string `json:"failed"`
}

type Service struct {
	directory       DirectoryClient
	employeeService EmployeeWriter
	payrollService  PayrollSeeder
	orgUnit         string
	exOrgUnit       string
	minimumWage     decimal.Decimal
}

func NewDirectoryService(
	directory DirectoryClient,
	employeeService EmployeeWriter,
	payrollService PayrollSeeder,
	cfg config.GoogleConfig,
	minimumWage decimal.Decimal,
) *Service {
	return &Service{
		directory:       directory,
		employeeService: employeeService,
		payrollService:  payrollService,
		orgUnit:         cfg.OrgUnitPath,
		exOrgUnit:       cfg.ExOrgUnitPath,
		minimumWage:     minimumWage,
	}
}

// SyncNew creates employee records for teacher accounts that do not
// have one yet, each seeded with a placeholder payroll so the payroll
// form has something to prefill. Individual account failures are
// logged and reported without aborting the run.
func (s *Service) SyncNew(ctx context.Context) (SyncResponse, error) {
	accounts, err := s.directory.ListTeachers(ctx)
	if err != nil {
		return SyncResponse{}, fmt.Errorf("failed to list teacher accounts: %w", err)
	}

	existing, err := s.employeeService.GetAll(ctx)
	if err != nil {
		return SyncResponse{}, err
	}
	known := make(map[string]bool, len(existing))
	for _, e := range existing {
		known[e.AdminID] = true
	}

	resp := SyncResponse{Created: []string{}, Failed: []string{}}
	for _, account := range accounts {
		if known[account.AdminID] {
			resp.Skipped++
			continue
		}

		created, err := s.employeeService.Create(ctx, s.toEmployeeRequest(account))
		if err != nil {
			slog.Warn("failed to sync teacher account", "email", account.Email, "error", err)
			resp.Failed = append(resp.Failed, account.Email)
			continue
		}
		if _, err := s.payrollService.Submit(ctx, created.ID, s.placeholderPayroll()); err != nil {
			slog.Warn("failed to seed placeholder payroll", "email", account.Email, "error", err)
		}
		resp.Created = append(resp.Created, account.Email)
	}
	return resp, nil
}

func (s *Service) toEmployeeRequest(account TeacherAccount) employee.SaveEmployeeRequest {
	firstName, lastName := SplitFullName(account.FullName)
	nationalID := account.NationalID
	if nationalID == "" {
		nationalID = defaultNationalID
	}

	startDate := any(account.Created)
	if account.Created == "" {
		startDate = placeholderBirth
	}

	return employee.SaveEmployeeRequest{
		AdminID:            account.AdminID,
		FirstName:          firstName,
		LastName:           lastName,
		NationalID:         nationalID,
		BirthDate:          placeholderBirth,
		InstitutionalEmail: account.Email,
		Suspended:          account.Suspended,
		WorkPeriods: []employee.WorkPeriodRequest{{
			JobPosition: defaultJobPosition,
			StartDate:   startDate,
			EndDate:     s.endDateFor(account),
		}},
	}
}

// endDateFor infers the employment end from the account's org unit:
// current teachers stay open, former teachers end at their last
// login, anything else gets a placeholder the staff must correct.
func (s *Service) endDateFor(account TeacherAccount) any {
	switch account.OrgUnitPath {
	case s.orgUnit:
		return dateutil.CurrentlyEmployed
	case s.exOrgUnit:
		if account.LastLogin != "" {
			return account.LastLogin
		}
		return placeholderEnd
	default:
		return placeholderEnd
	}
}

// Seed deduction for synced accounts, adjusted on the first real run.
var seedIESSShare = decimal.NewFromFloat(43.47)

func (s *Service) placeholderPayroll() payroll.SubmitPayrollRequest {
	wage := s.minimumWage
	iess := seedIESSShare
	return payroll.SubmitPayrollRequest{
		Earnings:    []payroll.TransactionRequest{{Description: "Sueldo", Amount: &wage}},
		Deductions:  []payroll.TransactionRequest{{Description: "Aporte personal", Amount: &iess}},
		PayrollDate: time.Now().UTC(),
		Volatile:    true,
	}
}

// SplitFullName separates a directory display name. Compound
// Spanish surnames keep their two final tokens together.
func SplitFullName(fullName string) (firstName, lastName string) {
	tokens := strings.Fields(fullName)
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return tokens[0], ""
	case 2:
		return tokens[0], tokens[1]
	default:
		return strings.Join(tokens[:len(tokens)-2], " "), strings.Join(tokens[len(tokens)-2:], " ")
	}
}

// GoogleDirectory lists teacher accounts through the Admin SDK.
type GoogleDirectory struct {
	service    *admin.Service
	customerID string
	orgUnit    string
}

func NewGoogleDirectory(service *admin.Service, cfg config.GoogleConfig) *GoogleDirectory {
	return &GoogleDirectory{
		service:    service,
		customerID: cfg.CustomerID,
		orgUnit:    cfg.OrgUnitPath,
	}
}

func (d *GoogleDirectory) ListTeachers(ctx context.Context) ([]TeacherAccount, error) {
	var accounts []TeacherAccount
	pageToken := ""
	for {
		call := d.service.Users.List().
			Customer(d.customerID).
			Query(fmt.Sprintf("orgUnitPath='%s'", d.orgUnit)).
			OrderBy("familyName").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		page, err := call.Do()
		if err != nil {
			return nil, err
		}

		for _, user := range page.Users {
			accounts = append(accounts, toTeacherAccount(user))
		}
		if page.NextPageToken == "" {
			return accounts, nil
		}
		pageToken = page.NextPageToken
	}
}

func toTeacherAccount(user *admin.User) TeacherAccount {
	account := TeacherAccount{
		AdminID:     user.Id,
		Email:       user.PrimaryEmail,
		Suspended:   user.Suspended,
		OrgUnitPath: user.OrgUnitPath,
		LastLogin:   user.LastLoginTime,
		Created:     user.CreationTime,
		NationalID:  organizationExternalID(user.ExternalIds),
	}
	if user.Name != nil {
		account.FullName = user.Name.FullName
	}
	return account
}

// organizationExternalID digs the national id out of the untyped
// external id list the Admin SDK returns.
func organizationExternalID(raw any) string {
	items, ok := raw.([]any)
	if !ok {
		return ""
	}
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if entry["type"] == "organization" {
			if value, ok := entry["value"].(string); ok {
				return value
			}
		}
	}
	return ""
}
