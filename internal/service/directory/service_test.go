package directory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ue-andes/nomina-backend-go/internal/config"
	"github.com/ue-andes/nomina-backend-go/internal/domain/employee"
	"github.com/ue-andes/nomina-backend-go/internal/domain/payroll"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/dateutil"
)

func TestMain(m *testing.M) {
	if err := dateutil.SetLocation("America/Guayaquil"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type stubDirectory struct {
	accounts []TeacherAccount
	err      error
}

func (d *stubDirectory) ListTeachers(_ context.Context) ([]TeacherAccount, error) {
	return d.accounts, d.err
}

type stubEmployees struct {
	existing  []employee.EmployeeResponse
	created   []employee.SaveEmployeeRequest
	failEmail string
	nextID    int
}

func (s *stubEmployees) GetAll(_ context.Context) ([]employee.EmployeeResponse, error) {
	return s.existing, nil
}

func (s *stubEmployees) Create(_ context.Context, req employee.SaveEmployeeRequest) (employee.EmployeeResponse, error) {
	if req.InstitutionalEmail == s.failEmail {
		return employee.EmployeeResponse{}, errors.New("create failed")
	}
	s.nextID++
	s.created = append(s.created, req)
	return employee.EmployeeResponse{ID: fmt.Sprintf("emp-%d", s.nextID), AdminID: req.AdminID}, nil
}

type stubSeeder struct {
	seeded []string
	reqs   []payroll.SubmitPayrollRequest
	err    error
}

func (s *stubSeeder) Submit(_ context.Context, employeeID string, req payroll.SubmitPayrollRequest) (payroll.SubmitPayrollResponse, error) {
	if s.err != nil {
		return payroll.SubmitPayrollResponse{}, s.err
	}
	s.seeded = append(s.seeded, employeeID)
	s.reqs = append(s.reqs, req)
	return payroll.SubmitPayrollResponse{PayrollID: "pay-1", Result: "create"}, nil
}

func googleConfig() config.GoogleConfig {
	return config.GoogleConfig{
		OrgUnitPath:   "/Docentes",
		ExOrgUnitPath: "/Docentes/Ex-Empleados",
	}
}

func teacherAccount(id, email, fullName string) TeacherAccount {
	return TeacherAccount{
		AdminID:     id,
		Email:       email,
		FullName:    fullName,
		NationalID:  "1712345678",
		OrgUnitPath: "/Docentes",
		Created:     "2023-09-01T14:00:00.000Z",
	}
}

func newTestService(dir *stubDirectory) (*Service, *stubEmployees, *stubSeeder) {
	employees := &stubEmployees{}
	seeder := &stubSeeder{}
	svc := NewDirectoryService(dir, employees, seeder, googleConfig(), decimal.NewFromInt(460))
	return svc, employees, seeder
}

func TestSyncNewCreatesMissingTeachers(t *testing.T) {
	dir := &stubDirectory{accounts: []TeacherAccount{
		teacherAccount("u1", "ana.perez@andes.edu.ec", "Ana Perez Gomez"),
	}}
	svc, employees, seeder := newTestService(dir)

	resp, err := svc.SyncNew(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"ana.perez@andes.edu.ec"}, resp.Created)
	assert.Zero(t, resp.Skipped)
	assert.Empty(t, resp.Failed)

	require.Len(t, employees.created, 1)
	req := employees.created[0]
	assert.Equal(t, "Ana", req.FirstName)
	assert.Equal(t, "Perez Gomez", req.LastName)
	assert.Equal(t, "1712345678", req.NationalID)
	require.Len(t, req.WorkPeriods, 1)
	assert.Equal(t, "Profesor titular", req.WorkPeriods[0].JobPosition)
	assert.Equal(t, dateutil.CurrentlyEmployed, req.WorkPeriods[0].EndDate)

	require.Len(t, seeder.seeded, 1)
	placeholder := seeder.reqs[0]
	assert.True(t, placeholder.Volatile)
	require.Len(t, placeholder.Earnings, 1)
	assert.Equal(t, "Sueldo", placeholder.Earnings[0].Description)
	assert.Equal(t, "460", placeholder.Earnings[0].Amount.String())
	require.Len(t, placeholder.Deductions, 1)
	assert.Equal(t, "Aporte personal", placeholder.Deductions[0].Description)
	assert.NotNil(t, placeholder.PayrollDate)
	assert.NoError(t, placeholder.Validate())
}

func TestSyncNewSkipsKnownAccounts(t *testing.T) {
	dir := &stubDirectory{accounts: []TeacherAccount{
		teacherAccount("u1", "ana.perez@andes.edu.ec", "Ana Perez"),
	}}
	svc, employees, _ := newTestService(dir)
	employees.existing = []employee.EmployeeResponse{{ID: "emp-9", AdminID: "u1"}}

	resp, err := svc.SyncNew(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Skipped)
	assert.Empty(t, resp.Created)
	assert.Empty(t, employees.created)
}

func TestSyncNewContinuesPastFailures(t *testing.T) {
	dir := &stubDirectory{accounts: []TeacherAccount{
		teacherAccount("u1", "bad@andes.edu.ec", "Bad Account"),
		teacherAccount("u2", "ana.perez@andes.edu.ec", "Ana Perez"),
	}}
	svc, employees, _ := newTestService(dir)
	employees.failEmail = "bad@andes.edu.ec"

	resp, err := svc.SyncNew(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"bad@andes.edu.ec"}, resp.Failed)
	assert.Equal(t, []string{"ana.perez@andes.edu.ec"}, resp.Created)
}

func TestSyncNewDefaultsMissingNationalID(t *testing.T) {
	account := teacherAccount("u1", "ana.perez@andes.edu.ec", "Ana Perez")
	account.NationalID = ""
	dir := &stubDirectory{accounts: []TeacherAccount{account}}
	svc, employees, _ := newTestService(dir)

	_, err := svc.SyncNew(context.Background())
	require.NoError(t, err)
	require.Len(t, employees.created, 1)
	assert.Equal(t, "0123456789", employees.created[0].NationalID)
}

func TestEndDateFor(t *testing.T) {
	svc, _, _ := newTestService(&stubDirectory{})

	current := teacherAccount("u1", "a@b.c", "A B")
	assert.Equal(t, dateutil.CurrentlyEmployed, svc.endDateFor(current))

	former := current
	former.OrgUnitPath = "/Docentes/Ex-Empleados"
	former.LastLogin = "2024-06-30T12:00:00.000Z"
	assert.Equal(t, "2024-06-30T12:00:00.000Z", svc.endDateFor(former))

	former.LastLogin = ""
	assert.Equal(t, "1900-01-02T00:00:00Z", svc.endDateFor(former))

	other := current
	other.OrgUnitPath = "/Administrativos"
	assert.Equal(t, "1900-01-02T00:00:00Z", svc.endDateFor(other))
}

func TestSplitFullName(t *testing.T) {
	tests := []struct {
		fullName  string
		firstName string
		lastName  string
	}{
		{"Ana Perez", "Ana", "Perez"},
		{"Ana Perez Gomez", "Ana", "Perez Gomez"},
		{"Ana Maria Perez Gomez", "Ana Maria", "Perez Gomez"},
		{"Ana", "Ana", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.fullName, func(t *testing.T) {
			first, last := SplitFullName(tt.fullName)
			assert.Equal(t, tt.firstName, first)
			assert.Equal(t, tt.lastName, last)
		})
	}
}
