package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ue-andes/nomina-backend-go/internal/domain/payroll"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/database"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/dateutil"
)

type PayrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &PayrollRepository{db: db}
}

const payrollColumns = `id, employee_id, earnings, deductions, payroll_date, payroll_month,
	volatile, drive_id, type, created_at, updated_at`

func (r *PayrollRepository) Create(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	querier := GetQuerier(ctx, r.db)

	params, err := payrollParams(p)
	if err != nil {
		return payroll.Payroll{}, err
	}

	query := `
		INSERT INTO payrolls (employee_id, earnings, deductions, payroll_date, payroll_month,
			volatile, drive_id, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + payrollColumns

	row := querier.QueryRow(ctx, query,
		p.EmployeeID, params.earnings, params.deductions, params.payrollDate,
		params.payrollMonth, p.Volatile, p.DriveID, string(p.Type),
	)
	created, err := scanPayroll(row)
	if err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to create payroll: %w", err)
	}
	return created, nil
}

func (r *PayrollRepository) GetByID(ctx context.Context, employeeID, payrollID string) (payroll.Payroll, error) {
	querier := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollColumns + ` FROM payrolls WHERE id = $1 AND employee_id = $2`
	p, err := scanPayroll(querier.QueryRow(ctx, query, payrollID, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to get payroll: %w", err)
	}
	return p, nil
}

func (r *PayrollRepository) ListAll(ctx context.Context) ([]payroll.Payroll, error) {
	query := `SELECT ` + payrollColumns + ` FROM payrolls ORDER BY payroll_date DESC`
	return r.list(ctx, query)
}

func (r *PayrollRepository) ListByEmployee(ctx context.Context, employeeID string) ([]payroll.Payroll, error) {
	query := `SELECT ` + payrollColumns + ` FROM payrolls WHERE employee_id = $1 ORDER BY payroll_date DESC`
	return r.list(ctx, query, employeeID)
}

func (r *PayrollRepository) list(ctx context.Context, query string, args ...any) ([]payroll.Payroll, error) {
	querier := GetQuerier(ctx, r.db)

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls: %w", err)
	}
	defer rows.Close()

	var payrolls []payroll.Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll: %w", err)
		}
		payrolls = append(payrolls, p)
	}
	return payrolls, rows.Err()
}

func (r *PayrollRepository) Update(ctx context.Context, p payroll.Payroll) error {
	querier := GetQuerier(ctx, r.db)

	params, err := payrollParams(p)
	if err != nil {
		return err
	}

	query := `
		UPDATE payrolls
		SET earnings = $3, deductions = $4, payroll_date = $5, payroll_month = $6,
			volatile = $7, drive_id = $8, type = $9, updated_at = NOW()
		WHERE id = $1 AND employee_id = $2`

	tag, err := querier.Exec(ctx, query,
		p.ID, p.EmployeeID, params.earnings, params.deductions, params.payrollDate,
		params.payrollMonth, p.Volatile, p.DriveID, string(p.Type),
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

func (r *PayrollRepository) SetDriveID(ctx context.Context, employeeID, payrollID, driveID string) error {
	querier := GetQuerier(ctx, r.db)

	query := `UPDATE payrolls SET drive_id = $3, updated_at = NOW() WHERE id = $1 AND employee_id = $2`
	tag, err := querier.Exec(ctx, query, payrollID, employeeID, driveID)
	if err != nil {
		return fmt.Errorf("failed to set drive id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

func (r *PayrollRepository) Delete(ctx context.Context, employeeID, payrollID string) error {
	querier := GetQuerier(ctx, r.db)

	tag, err := querier.Exec(ctx, `DELETE FROM payrolls WHERE id = $1 AND employee_id = $2`, payrollID, employeeID)
	if err != nil {
		return fmt.Errorf("failed to delete payroll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

type payrollRowParams struct {
	earnings     []byte
	deductions   []byte
	payrollDate  time.Time
	payrollMonth time.Time
}

func payrollParams(p payroll.Payroll) (payrollRowParams, error) {
	var params payrollRowParams
	var err error

	if params.earnings, err = json.Marshal(p.Earnings); err != nil {
		return params, fmt.Errorf("failed to encode earnings: %w", err)
	}
	if params.deductions, err = json.Marshal(p.Deductions); err != nil {
		return params, fmt.Errorf("failed to encode deductions: %w", err)
	}
	if params.payrollDate, err = dateutil.ParseISO(p.PayrollDate); err != nil {
		return params, fmt.Errorf("invalid payroll date: %w", err)
	}
	if params.payrollMonth, err = dateutil.ParseISO(p.PayrollMonth); err != nil {
		return params, fmt.Errorf("invalid payroll month: %w", err)
	}
	return params, nil
}

func scanPayroll(row pgx.Row) (payroll.Payroll, error) {
	var p payroll.Payroll
	var earnings, deductions []byte
	var payrollDate, payrollMonth time.Time

	err := row.Scan(
		&p.ID, &p.EmployeeID, &earnings, &deductions, &payrollDate, &payrollMonth,
		&p.Volatile, &p.DriveID, &p.Type, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return payroll.Payroll{}, err
	}

	if len(earnings) > 0 {
		if err := json.Unmarshal(earnings, &p.Earnings); err != nil {
			return payroll.Payroll{}, fmt.Errorf("failed to decode earnings: %w", err)
		}
	}
	if len(deductions) > 0 {
		if err := json.Unmarshal(deductions, &p.Deductions); err != nil {
			return payroll.Payroll{}, fmt.Errorf("failed to decode deductions: %w", err)
		}
	}
	p.PayrollDate = payrollDate.UTC().Format(dateutil.ISOLayout)
	p.PayrollMonth = payrollMonth.UTC().Format(dateutil.ISOLayout)
	return p, nil
}
