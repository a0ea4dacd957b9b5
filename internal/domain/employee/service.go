package employee

import "context"

// EmployeeService is the employee administration surface.
type EmployeeService interface {
	Create(ctx context.Context, req SaveEmployeeRequest) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req SaveEmployeeRequest) (EmployeeResponse, error)
	// Delete removes the employee together with their payroll records
	// and stored documents. Document cleanup is best effort.
	Delete(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	GetByAdminID(ctx context.Context, adminID string) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)

	SetProfilePicture(ctx context.Context, id string, picture []byte) (ProfilePictureResponse, error)
	GetProfilePicture(ctx context.Context, id string) (ProfilePictureResponse, error)
}
