package employee

import "context"

// EmployeeRepository persists employee records.
type EmployeeRepository interface {
	Create(ctx context.Context, e Employee) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByAdminID(ctx context.Context, adminID string) (Employee, error)
	GetAll(ctx context.Context) ([]Employee, error)
	Update(ctx context.Context, e Employee) error
	SetDriveFolderID(ctx context.Context, id, folderID string) error
	Delete(ctx context.Context, id string) error
}
