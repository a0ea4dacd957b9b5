package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ue-andes/nomina-backend-go/internal/domain/employee"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/database"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/dateutil"
)

type EmployeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `id, admin_id, first_name, last_name, national_id, birth_date,
	institutional_email, suspended, calendar_id, drive_folder_id, work_periods,
	created_at, updated_at`

func (r *EmployeeRepository) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	querier := GetQuerier(ctx, r.db)

	birthDate, err := nullableInstant(e.BirthDate)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("invalid birth date: %w", err)
	}
	periods, err := json.Marshal(e.WorkPeriods)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to encode work periods: %w", err)
	}

	query := `
		INSERT INTO employees (admin_id, first_name, last_name, national_id, birth_date,
			institutional_email, suspended, calendar_id, drive_folder_id, work_periods)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + employeeColumns

	row := querier.QueryRow(ctx, query,
		e.AdminID, e.FirstName, e.LastName, e.NationalID, birthDate,
		e.InstitutionalEmail, e.Suspended, e.CalendarID, e.DriveFolderID, periods,
	)
	created, err := scanEmployee(row)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return created, nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	querier := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	e, err := scanEmployee(querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

func (r *EmployeeRepository) GetByAdminID(ctx context.Context, adminID string) (employee.Employee, error) {
	querier := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE admin_id = $1`
	e, err := scanEmployee(querier.QueryRow(ctx, query, adminID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by admin id: %w", err)
	}
	return e, nil
}

func (r *EmployeeRepository) GetAll(ctx context.Context) ([]employee.Employee, error) {
	querier := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY last_name, first_name`
	rows, err := querier.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *EmployeeRepository) Update(ctx context.Context, e employee.Employee) error {
	querier := GetQuerier(ctx, r.db)

	birthDate, err := nullableInstant(e.BirthDate)
	if err != nil {
		return fmt.Errorf("invalid birth date: %w", err)
	}
	periods, err := json.Marshal(e.WorkPeriods)
	if err != nil {
		return fmt.Errorf("failed to encode work periods: %w", err)
	}

	query := `
		UPDATE employees
		SET admin_id = $2, first_name = $3, last_name = $4, national_id = $5,
			birth_date = $6, institutional_email = $7, suspended = $8,
			calendar_id = $9, work_periods = $10, updated_at = NOW()
		WHERE id = $1`

	tag, err := querier.Exec(ctx, query,
		e.ID, e.AdminID, e.FirstName, e.LastName, e.NationalID,
		birthDate, e.InstitutionalEmail, e.Suspended, e.CalendarID, periods,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) SetDriveFolderID(ctx context.Context, id, folderID string) error {
	querier := GetQuerier(ctx, r.db)

	query := `UPDATE employees SET drive_folder_id = $2, updated_at = NOW() WHERE id = $1`
	tag, err := querier.Exec(ctx, query, id, folderID)
	if err != nil {
		return fmt.Errorf("failed to set drive folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	querier := GetQuerier(ctx, r.db)

	tag, err := querier.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	var birthDate *time.Time
	var periods []byte

	err := row.Scan(
		&e.ID, &e.AdminID, &e.FirstName, &e.LastName, &e.NationalID, &birthDate,
		&e.InstitutionalEmail, &e.Suspended, &e.CalendarID, &e.DriveFolderID, &periods,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return employee.Employee{}, err
	}

	if birthDate != nil {
		e.BirthDate = birthDate.UTC().Format(dateutil.ISOLayout)
	}
	if len(periods) > 0 {
		if err := json.Unmarshal(periods, &e.WorkPeriods); err != nil {
			return employee.Employee{}, fmt.Errorf("failed to decode work periods: %w", err)
		}
	}
	return e, nil
}

// nullableInstant parses a canonical instant, mapping the empty
// string to NULL.
func nullableInstant(iso string) (*time.Time, error) {
	if iso == "" {
		return nil, nil
	}
	t, err := dateutil.ParseISO(iso)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
