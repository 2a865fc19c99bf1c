package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"warehouse-service/internal/models"
	"warehouse-service/internal/service"
)

const employeeColumns = `id, name, email, role, status, presence_status,
	presence_updated_at, presence_updated_by, password_hash, created_at`

// CreateEmployee inserts a new employee account. A duplicate email
// surfaces as service.ErrConflict.
func (s *Store) CreateEmployee(ctx context.Context, e *models.Employee) error {
	query := `
		INSERT INTO employees (id, name, email, role, status, presence_status,
			presence_updated_at, presence_updated_by, password_hash, created_at)
		VALUES (:id, :name, :email, :role, :status, :presence_status,
			:presence_updated_at, :presence_updated_by, :password_hash, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, e); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("employee email %s: %w", e.Email, service.ErrConflict)
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

// EmployeeByID fetches an employee by id.
func (s *Store) EmployeeByID(ctx context.Context, id string) (*models.Employee, error) {
	var e models.Employee
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE id = $1`, employeeColumns)
	if err := s.db.GetContext(ctx, &e, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("employee %s: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &e, nil
}

// EmployeeByEmail fetches an employee by email.
func (s *Store) EmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	var e models.Employee
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE email = $1`, employeeColumns)
	if err := s.db.GetContext(ctx, &e, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("employee %s: %w", email, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &e, nil
}

// ListEmployees lists all employees, oldest first.
func (s *Store) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	employees := []models.Employee{}
	query := fmt.Sprintf(`SELECT %s FROM employees ORDER BY created_at`, employeeColumns)
	if err := s.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

// DeleteEmployee removes an employee account.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return requireRow(result, fmt.Sprintf("employee %s", id))
}

// SetEmployeeStatus writes the account status.
func (s *Store) SetEmployeeStatus(ctx context.Context, id, status string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE employees SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to set employee status: %w", err)
	}
	return requireRow(result, fmt.Sprintf("employee %s", id))
}

// SetEmployeePresence writes the presence status and who changed it.
func (s *Store) SetEmployeePresence(ctx context.Context, id, status, updatedBy string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE employees SET presence_status = $1, presence_updated_at = $2, presence_updated_by = $3
		WHERE id = $4`, status, at, updatedBy, id)
	if err != nil {
		return fmt.Errorf("failed to set presence: %w", err)
	}
	return requireRow(result, fmt.Sprintf("employee %s", id))
}

// AppendPresenceLog records one presence change.
func (s *Store) AppendPresenceLog(ctx context.Context, entry *models.PresenceLog) error {
	query := `
		INSERT INTO presence_logs (id, employee_id, employee_name, previous_status, new_status,
			changed_by, changed_by_name, timestamp)
		VALUES (:id, :employee_id, :employee_name, :previous_status, :new_status,
			:changed_by, :changed_by_name, :timestamp)`
	if _, err := s.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("failed to append presence log: %w", err)
	}
	return nil
}

// PresenceLogs lists recent presence changes, newest first.
func (s *Store) PresenceLogs(ctx context.Context, limit int) ([]models.PresenceLog, error) {
	logs := []models.PresenceLog{}
	err := s.db.SelectContext(ctx, &logs, `
		SELECT id, employee_id, employee_name, previous_status, new_status,
			changed_by, changed_by_name, timestamp
		FROM presence_logs
		ORDER BY timestamp DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list presence logs: %w", err)
	}
	return logs, nil
}
