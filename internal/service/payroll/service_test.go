package payroll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ue-andes/nomina-backend-go/internal/domain/employee"
	"github.com/ue-andes/nomina-backend-go/internal/domain/payroll"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/dateutil"
)

type memPayrollRepo struct {
	records map[string]payroll.Payroll
	nextID  int
}

func newMemPayrollRepo() *memPayrollRepo {
	return &memPayrollRepo{records: make(map[string]payroll.Payroll)}
}

func (r *memPayrollRepo) Create(_ context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	r.nextID++
	p.ID = fmt.Sprintf("pay-%d", r.nextID)
	r.records[p.ID] = p
	return p, nil
}

func (r *memPayrollRepo) ListAll(_ context.Context) ([]payroll.Payroll, error) {
	var all []payroll.Payroll
	for _, p := range r.records {
		all = append(all, p)
	}
	sortByDateDesc(all)
	return all, nil
}

func (r *memPayrollRepo) GetByID(_ context.Context, employeeID, payrollID string) (payroll.Payroll, error) {
	p, ok := r.records[payrollID]
	if !ok || p.EmployeeID != employeeID {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	return p, nil
}

func (r *memPayrollRepo) ListByEmployee(_ context.Context, employeeID string) ([]payroll.Payroll, error) {
	var records []payroll.Payroll
	for _, p := range r.records {
		if p.EmployeeID == employeeID {
			records = append(records, p)
		}
	}
	sortByDateDesc(records)
	return records, nil
}

func (r *memPayrollRepo) Update(_ context.Context, p payroll.Payroll) error {
	if _, ok := r.records[p.ID]; !ok {
		return payroll.ErrPayrollNotFound
	}
	r.records[p.ID] = p
	return nil
}

func (r *memPayrollRepo) SetDriveID(_ context.Context, employeeID, payrollID, driveID string) error {
	p, ok := r.records[payrollID]
	if !ok || p.EmployeeID != employeeID {
		return payroll.ErrPayrollNotFound
	}
	p.DriveID = driveID
	r.records[payrollID] = p
	return nil
}

func (r *memPayrollRepo) Delete(_ context.Context, employeeID, payrollID string) error {
	p, ok := r.records[payrollID]
	if !ok || p.EmployeeID != employeeID {
		return payroll.ErrPayrollNotFound
	}
	delete(r.records, payrollID)
	return nil
}

func sortByDateDesc(records []payroll.Payroll) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].PayrollDate > records[j].PayrollDate
	})
}

type memEmployeeRepo struct {
	employees map[string]employee.Employee
}

func newMemEmployeeRepo(employees ...employee.Employee) *memEmployeeRepo {
	r := &memEmployeeRepo{employees: make(map[string]employee.Employee)}
	for _, e := range employees {
		r.employees[e.ID] = e
	}
	return r
}

func (r *memEmployeeRepo) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	r.employees[e.ID] = e
	return e, nil
}

func (r *memEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *memEmployeeRepo) GetByAdminID(_ context.Context, adminID string) (employee.Employee, error) {
	for _, e := range r.employees {
		if e.AdminID == adminID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *memEmployeeRepo) GetAll(_ context.Context) ([]employee.Employee, error) {
	var all []employee.Employee
	for _, e := range r.employees {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (r *memEmployeeRepo) Update(_ context.Context, e employee.Employee) error {
	if _, ok := r.employees[e.ID]; !ok {
		return employee.ErrEmployeeNotFound
	}
	r.employees[e.ID] = e
	return nil
}

func (r *memEmployeeRepo) SetDriveFolderID(_ context.Context, id, folderID string) error {
	e, ok := r.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.DriveFolderID = folderID
	r.employees[id] = e
	return nil
}

func (r *memEmployeeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.employees[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	delete(r.employees, id)
	return nil
}

type memStorage struct {
	trashed  []string
	trashErr error
}

func (s *memStorage) Upload(_ context.Context, _ io.Reader, path string, _ string) (string, error) {
	return path, nil
}

func (s *memStorage) Download(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (s *memStorage) Delete(_ context.Context, _ string) error { return nil }

func (s *memStorage) Trash(_ context.Context, path string) error {
	if s.trashErr != nil {
		return s.trashErr
	}
	s.trashed = append(s.trashed, path)
	return nil
}

func (s *memStorage) GetURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "http://localhost:8080/files/" + path, nil
}

func (s *memStorage) Exists(_ context.Context, _ string) (bool, error) { return true, nil }

func (s *memStorage) CreateFolder(_ context.Context, name string) (string, error) {
	return name, nil
}

func (s *memStorage) RenameFolder(_ context.Context, _ string, newName string) (string, error) {
	return newName, nil
}

func newTestService(t *testing.T) (*Service, *memPayrollRepo, *memStorage) {
	t.Helper()
	payrollRepo := newMemPayrollRepo()
	employeeRepo := newMemEmployeeRepo(employee.Employee{
		ID:         "emp-1",
		AdminID:    "admin-1",
		FirstName:  "Maria",
		LastName:   "Andrade",
		NationalID: "1712345678",
	})
	fileStorage := &memStorage{}
	svc := NewPayrollService(nil, payrollRepo, employeeRepo, fileStorage, decimal.NewFromInt(460))
	svc.transact = func(ctx context.Context, fn func(context.Context) error) error {
		return fn(ctx)
	}
	svc.now = func() time.Time {
		return time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc, payrollRepo, fileStorage
}

func submitRequest(month string) payroll.SubmitPayrollRequest {
	amount := decimal.NewFromFloat(600)
	deduction := decimal.NewFromFloat(56.7)
	return payroll.SubmitPayrollRequest{
		Earnings:     []payroll.TransactionRequest{{Description: "Sueldo", Amount: &amount}},
		Deductions:   []payroll.TransactionRequest{{Description: "Aporte personal", Amount: &deduction}},
		PayrollDate:  month,
		PayrollMonth: month,
	}
}

func TestSubmitCreatesFirstMonthlyRecord(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Submit(ctx, "emp-1", submitRequest("2025-03-01T12:00:00Z"))
	require.NoError(t, err)

	assert.Equal(t, "create", resp.Result)
	assert.NotEmpty(t, resp.PayrollID)
	assert.Empty(t, resp.DriveID)

	stored := repo.records[resp.PayrollID]
	assert.Equal(t, payroll.TypeMensual, stored.Type)
	assert.Equal(t, "2025-03-01T12:00:00.000Z", stored.PayrollMonth)
}

func TestSubmitSameMonthUpdatesInPlace(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, "emp-1", submitRequest("2025-03-01T12:00:00Z"))
	require.NoError(t, err)
	require.NoError(t, repo.SetDriveID(ctx, "emp-1", first.PayrollID, "docs/march.pdf"))

	second, err := svc.Submit(ctx, "emp-1", submitRequest("2025-03-20T12:00:00Z"))
	require.NoError(t, err)

	assert.Equal(t, "update", second.Result)
	assert.Equal(t, first.PayrollID, second.PayrollID)

	// The response carries the previous artifact link, but the stored
	// record takes the submitted fields as-is until a re-render.
	assert.Equal(t, "docs/march.pdf", second.DriveID)
	assert.Len(t, repo.records, 1)
	assert.Empty(t, repo.records[first.PayrollID].DriveID)
}

func TestUpdateOverwritesByID(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	req := submitRequest("2025-01-31T12:00:00Z")
	req.Type = string(payroll.TypeDecimotercer)
	created, err := svc.Submit(ctx, "emp-1", req)
	require.NoError(t, err)
	require.NoError(t, repo.SetDriveID(ctx, "emp-1", created.PayrollID, "docs/decimotercer.html"))

	corrected := submitRequest("2025-01-31T12:00:00Z")
	corrected.Type = string(payroll.TypeDecimotercer)
	amount := decimal.NewFromFloat(650)
	corrected.Earnings = []payroll.TransactionRequest{{Description: "Sueldo", Amount: &amount}}

	resp, err := svc.Update(ctx, "emp-1", created.PayrollID, corrected)
	require.NoError(t, err)

	assert.Equal(t, "update", resp.Result)
	assert.Equal(t, created.PayrollID, resp.PayrollID)
	assert.Equal(t, "docs/decimotercer.html", resp.DriveID)

	// No duplicate was created and the amounts changed in place.
	assert.Len(t, repo.records, 1)
	stored := repo.records[created.PayrollID]
	assert.Equal(t, payroll.TypeDecimotercer, stored.Type)
	assert.Equal(t, "650", stored.Earnings[0].Amount.String())
}

func TestUpdateRequiresPayrollID(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Update(context.Background(), "emp-1", "", submitRequest("2025-01-31T12:00:00Z"))
	assert.ErrorIs(t, err, payroll.ErrInvalidPayrollID)
}

func TestUpdateUnknownRecord(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Update(context.Background(), "emp-1", "missing", submitRequest("2025-01-31T12:00:00Z"))
	assert.ErrorIs(t, err, payroll.ErrPayrollNotFound)
}

func TestSubmitDifferentMonthCreates(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "emp-1", submitRequest("2025-03-01T12:00:00Z"))
	require.NoError(t, err)
	resp, err := svc.Submit(ctx, "emp-1", submitRequest("2025-04-01T12:00:00Z"))
	require.NoError(t, err)

	assert.Equal(t, "create", resp.Result)
	assert.Len(t, repo.records, 2)
}

func TestSubmitSettlementAlwaysCreates(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "emp-1", submitRequest("2025-03-01T12:00:00Z"))
	require.NoError(t, err)

	req := submitRequest("2025-03-01T12:00:00Z")
	req.Type = string(payroll.TypeDecimotercer)
	resp, err := svc.Submit(ctx, "emp-1", req)
	require.NoError(t, err)

	assert.Equal(t, "create", resp.Result)
	assert.Len(t, repo.records, 2)
}

func TestSubmitUnknownEmployee(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), "missing", submitRequest("2025-03-01T12:00:00Z"))
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestSubmitRejectsMissingEarnings(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := submitRequest("2025-03-01T12:00:00Z")
	req.Earnings = nil
	_, err := svc.Submit(context.Background(), "emp-1", req)
	assert.Error(t, err)
}

func TestSubmitAcceptsEmptyEarnings(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := submitRequest("2025-03-01T12:00:00Z")
	req.Earnings = []payroll.TransactionRequest{}
	_, err := svc.Submit(context.Background(), "emp-1", req)
	assert.NoError(t, err)
}

func TestSubmitRequiresPayrollDate(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := submitRequest("2025-03-01T12:00:00Z")
	req.PayrollDate = nil
	_, err := svc.Submit(context.Background(), "emp-1", req)
	assert.Error(t, err)
}

func TestSubmitDefaultsMonthToNow(t *testing.T) {
	svc, repo, _ := newTestService(t)

	req := submitRequest("2025-03-01T12:00:00Z")
	req.PayrollMonth = nil
	resp, err := svc.Submit(context.Background(), "emp-1", req)
	require.NoError(t, err)

	stored := repo.records[resp.PayrollID]
	assert.Equal(t, "2025-03-01T12:00:00.000Z", stored.PayrollDate)
	assert.Equal(t, "2025-03-15T12:00:00.000Z", stored.PayrollMonth)
}

func TestExists(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Exists(ctx, "emp-1", "2025-03-05T12:00:00Z")
	require.NoError(t, err)
	assert.False(t, resp.Exists)

	created, err := svc.Submit(ctx, "emp-1", submitRequest("2025-03-01T12:00:00Z"))
	require.NoError(t, err)

	resp, err = svc.Exists(ctx, "emp-1", "2025-03-28T12:00:00Z")
	require.NoError(t, err)
	assert.True(t, resp.Exists)
	assert.Equal(t, created.PayrollID, resp.PayrollID)

	// The month is mandatory.
	_, err = svc.Exists(ctx, "emp-1", nil)
	assert.ErrorIs(t, err, dateutil.ErrInvalidDate)
}

func TestDeleteTrashesArtifact(t *testing.T) {
	svc, repo, fileStorage := newTestService(t)
	ctx := context.Background()

	created, err := svc.Submit(ctx, "emp-1", submitRequest("2025-03-01T12:00:00Z"))
	require.NoError(t, err)
	require.NoError(t, repo.SetDriveID(ctx, "emp-1", created.PayrollID, "docs/march.pdf"))

	require.NoError(t, svc.Delete(ctx, "emp-1", created.PayrollID))

	assert.Equal(t, []string{"docs/march.pdf"}, fileStorage.trashed)
	assert.Empty(t, repo.records)
}

func TestDeleteSurvivesTrashFailure(t *testing.T) {
	svc, repo, fileStorage := newTestService(t)
	fileStorage.trashErr = errors.New("storage unavailable")
	ctx := context.Background()

	created, err := svc.Submit(ctx, "emp-1", submitRequest("2025-03-01T12:00:00Z"))
	require.NoError(t, err)
	require.NoError(t, repo.SetDriveID(ctx, "emp-1", created.PayrollID, "docs/march.pdf"))

	require.NoError(t, svc.Delete(ctx, "emp-1", created.PayrollID))
	assert.Empty(t, repo.records)
}

func TestLatestPrefersNewestMonthly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "emp-1", submitRequest("2025-01-31T12:00:00Z"))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "emp-1", submitRequest("2025-02-28T12:00:00Z"))
	require.NoError(t, err)

	settlement := submitRequest("2025-03-10T12:00:00Z")
	settlement.Type = string(payroll.TypeDecimocuarto)
	_, err = svc.Submit(ctx, "emp-1", settlement)
	require.NoError(t, err)

	latest, err := svc.Latest(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "2025-02", latest.PayrollMonth)
	assert.False(t, latest.Volatile)
}

func TestLatestReturnsPlaceholderWhenEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)

	latest, err := svc.Latest(context.Background(), "emp-1")
	require.NoError(t, err)

	assert.True(t, latest.Volatile)
	assert.Empty(t, latest.ID)
	require.Len(t, latest.Earnings, 2)
	assert.Equal(t, "Sueldo", latest.Earnings[0].Description)
	assert.Equal(t, "470", latest.Earnings[0].Amount.String())
	require.Len(t, latest.Deductions, 1)
	assert.Equal(t, "Aporte personal", latest.Deductions[0].Description)
}

func TestListByAdmin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "emp-1", submitRequest("2025-03-01T12:00:00Z"))
	require.NoError(t, err)

	records, err := svc.ListByAdmin(ctx, "admin-1")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = svc.ListByAdmin(ctx, "nobody")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestListByAdminHidesVolatileRecords(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	seed := submitRequest("2025-01-13T10:15:00Z")
	seed.Volatile = true
	_, err := svc.Submit(ctx, "emp-1", seed)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "emp-1", submitRequest("2025-03-01T12:00:00Z"))
	require.NoError(t, err)

	records, err := svc.ListByAdmin(ctx, "admin-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Volatile)
	assert.Equal(t, "2025-03", records[0].PayrollMonth)
}

func TestDownload(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Submit(ctx, "emp-1", submitRequest("2025-03-01T12:00:00Z"))
	require.NoError(t, err)

	_, err = svc.Download(ctx, "emp-1", created.PayrollID)
	assert.ErrorIs(t, err, payroll.ErrDocumentMissing)

	require.NoError(t, repo.SetDriveID(ctx, "emp-1", created.PayrollID, "docs/march.pdf"))
	resp, err := svc.Download(ctx, "emp-1", created.PayrollID)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/docs/march.pdf", resp.DownloadURL)
	assert.Equal(t, "march.pdf", resp.FileName)
}

func TestDeleteAllByEmployee(t *testing.T) {
	svc, repo, fileStorage := newTestService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, "emp-1", submitRequest("2025-01-31T12:00:00Z"))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "emp-1", submitRequest("2025-02-28T12:00:00Z"))
	require.NoError(t, err)
	require.NoError(t, repo.SetDriveID(ctx, "emp-1", first.PayrollID, "docs/january.pdf"))

	require.NoError(t, svc.DeleteAllByEmployee(ctx, "emp-1"))

	assert.Empty(t, repo.records)
	assert.Equal(t, []string{"docs/january.pdf"}, fileStorage.trashed)
}

func TestFourteenth(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "emp-1", submitRequest("2025-01-31T12:00:00Z"))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "emp-1", submitRequest("2025-02-28T12:00:00Z"))
	require.NoError(t, err)

	resp, err := svc.Fourteenth(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.MonthCount)
	assert.Equal(t, "76.67", resp.Proportional.StringFixed(2))
}

func TestThirteenthReport(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "emp-1", submitRequest("2025-01-31T12:00:00Z"))
	require.NoError(t, err)

	entries, err := svc.ThirteenthReport(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "emp-1", entries[0].EmployeeID)
	assert.Equal(t, "50.00", entries[0].Total.StringFixed(2))
}
