package employee

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ue-andes/nomina-backend-go/internal/domain/employee"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/storage"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

const pictureURLExpiry = time.Hour

// PayrollCleaner is the slice of the payroll service the employee
// cascade needs.
type PayrollCleaner interface {
	DeleteAllByEmployee(ctx context.Context, employeeID string) error
}

type Service struct {
	employeeRepo   employee.EmployeeRepository
	payrollService PayrollCleaner
	fileStorage    storage.FileStorage
	rootFolder     string
}

func NewEmployeeService(
	employeeRepo employee.EmployeeRepository,
	payrollService PayrollCleaner,
	fileStorage storage.FileStorage,
	rootFolder string,
) *Service {
	return &Service{
		employeeRepo:   employeeRepo,
		payrollService: payrollService,
		fileStorage:    fileStorage,
		rootFolder:     rootFolder,
	}
}

// ComputeFolderName is the document folder name for an employee. It
// is deterministic so a rename after an identity change lands on the
// same folder the next computation produces.
func ComputeFolderName(rootFolder string, e employee.Employee) string {
	return fmt.Sprintf("%s/%s %s/%s", rootFolder, e.FirstName, e.LastName, e.NationalID)
}

// ResolveCurrentWorkPeriods reconciles an updated period list so at
// most one period stays open. When an update leaves several open
// periods, the one the client just changed wins: any open period that
// does not match the previously open one is preferred over the one
// that does. Displaced open periods are closed with the start date of
// the period that follows them.
func ResolveCurrentWorkPeriods(previous, updated []employee.WorkPeriod) []employee.WorkPeriod {
	periods := make([]employee.WorkPeriod, len(updated))
	copy(periods, updated)
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].StartDate < periods[j].StartDate
	})

	var actives []int
	for i, p := range periods {
		if p.Active() {
			actives = append(actives, i)
		}
	}
	if len(actives) <= 1 {
		return periods
	}

	keeper := pickKeeper(periods, actives, previousActive(previous))
	for _, i := range actives {
		if i == keeper || i == len(periods)-1 {
			continue
		}
		periods[i].EndDate = periods[i+1].StartDate
	}
	return periods
}

func previousActive(previous []employee.WorkPeriod) *employee.WorkPeriod {
	for _, p := range previous {
		if p.Active() {
			return &p
		}
	}
	return nil
}

// pickKeeper returns the index of the open period that stays open.
func pickKeeper(periods []employee.WorkPeriod, actives []int, prev *employee.WorkPeriod) int {
	candidates := actives
	if prev != nil {
		var changed []int
		for _, i := range actives {
			if periods[i].JobPosition != prev.JobPosition || periods[i].StartDate != prev.StartDate {
				changed = append(changed, i)
			}
		}
		if len(changed) > 0 {
			candidates = changed
		}
	}

	keeper := candidates[0]
	for _, i := range candidates[1:] {
		if periods[i].StartDate > periods[keeper].StartDate {
			keeper = i
		}
	}
	return keeper
}

func (s *Service) Create(ctx context.Context, req employee.SaveEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	e, err := req.Normalize()
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	e.WorkPeriods = ResolveCurrentWorkPeriods(nil, e.WorkPeriods)

	// A directory account maps to at most one employee record.
	if e.AdminID != "" {
		if _, err := s.employeeRepo.GetByAdminID(ctx, e.AdminID); err == nil {
			return employee.EmployeeResponse{}, employee.ErrEmployeeAlreadyExists
		} else if !errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.EmployeeResponse{}, err
		}
	}

	created, err := s.employeeRepo.Create(ctx, e)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	// The document folder is provisioned opportunistically; the
	// record stands on its own if the storage provider is down.
	folderID, err := s.fileStorage.CreateFolder(ctx, ComputeFolderName(s.rootFolder, created))
	if err != nil {
		slog.Warn("failed to create employee folder", "employeeId", created.ID, "error", err)
	} else if err := s.employeeRepo.SetDriveFolderID(ctx, created.ID, folderID); err != nil {
		slog.Warn("failed to record employee folder", "employeeId", created.ID, "error", err)
	} else {
		created.DriveFolderID = folderID
	}

	return employee.NewEmployeeResponse(created), nil
}

func (s *Service) Update(ctx context.Context, id string, req employee.SaveEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	existing, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	updated, err := req.Normalize()
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	updated.ID = existing.ID
	updated.DriveFolderID = existing.DriveFolderID
	updated.WorkPeriods = ResolveCurrentWorkPeriods(existing.WorkPeriods, updated.WorkPeriods)

	if err := s.employeeRepo.Update(ctx, updated); err != nil {
		return employee.EmployeeResponse{}, err
	}

	newName := ComputeFolderName(s.rootFolder, updated)
	if existing.DriveFolderID != "" && newName != ComputeFolderName(s.rootFolder, existing) {
		folderID, err := s.fileStorage.RenameFolder(ctx, existing.DriveFolderID, newName)
		if err != nil {
			slog.Warn("failed to rename employee folder", "employeeId", id, "error", err)
		} else if err := s.employeeRepo.SetDriveFolderID(ctx, id, folderID); err != nil {
			slog.Warn("failed to record renamed folder", "employeeId", id, "error", err)
		} else {
			updated.DriveFolderID = folderID
		}
	}

	return employee.NewEmployeeResponse(updated), nil
}

// Delete removes the employee, their payroll records and their
// document folder. Payroll and folder cleanup are best effort; the
// employee record itself must go.
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.payrollService.DeleteAllByEmployee(ctx, id); err != nil {
		slog.Warn("failed to clean up payrolls", "employeeId", id, "error", err)
	}
	if existing.DriveFolderID != "" {
		if err := s.fileStorage.Trash(ctx, existing.DriveFolderID); err != nil {
			slog.Warn("failed to trash employee folder", "employeeId", id, "error", err)
		}
	}

	return s.employeeRepo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	e, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(e), nil
}

func (s *Service) GetByAdminID(ctx context.Context, adminID string) (employee.EmployeeResponse, error) {
	e, err := s.employeeRepo.GetByAdminID(ctx, adminID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(e), nil
}

func (s *Service) GetAll(ctx context.Context) ([]employee.EmployeeResponse, error) {
	employees, err := s.employeeRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, employee.NewEmployeeResponse(e))
	}
	return responses, nil
}

func (s *Service) SetProfilePicture(ctx context.Context, id string, picture []byte) (employee.ProfilePictureResponse, error) {
	if _, err := s.employeeRepo.GetByID(ctx, id); err != nil {
		return employee.ProfilePictureResponse{}, err
	}
	if !bytes.HasPrefix(picture, pngMagic) {
		return employee.ProfilePictureResponse{}, employee.ErrInvalidImageType
	}

	path := profilePicturePath(id)
	if _, err := s.fileStorage.Upload(ctx, bytes.NewReader(picture), path, "image/png"); err != nil {
		return employee.ProfilePictureResponse{}, fmt.Errorf("failed to store profile picture: %w", err)
	}
	url, err := s.fileStorage.GetURL(ctx, path, pictureURLExpiry)
	if err != nil {
		return employee.ProfilePictureResponse{}, fmt.Errorf("failed to resolve picture url: %w", err)
	}
	return employee.ProfilePictureResponse{EmployeeID: id, URL: url}, nil
}

func (s *Service) GetProfilePicture(ctx context.Context, id string) (employee.ProfilePictureResponse, error) {
	if _, err := s.employeeRepo.GetByID(ctx, id); err != nil {
		return employee.ProfilePictureResponse{}, err
	}

	path := profilePicturePath(id)
	exists, err := s.fileStorage.Exists(ctx, path)
	if err != nil {
		return employee.ProfilePictureResponse{}, fmt.Errorf("failed to check profile picture: %w", err)
	}
	if !exists {
		return employee.ProfilePictureResponse{}, employee.ErrProfilePictureNotFound
	}
	url, err := s.fileStorage.GetURL(ctx, path, pictureURLExpiry)
	if err != nil {
		return employee.ProfilePictureResponse{}, fmt.Errorf("failed to resolve picture url: %w", err)
	}
	return employee.ProfilePictureResponse{EmployeeID: id, URL: url}, nil
}

func profilePicturePath(id string) string {
	return "profile-pictures/" + id + ".png"
}
