package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"warehouse-service/internal/models"
	"warehouse-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// EmployeeService manages warehouse user accounts and presence
// tracking. All mutations are admin only.
type EmployeeService struct {
	repo   Repository
	logger *zap.Logger
}

// NewEmployeeService creates a new employee service.
func NewEmployeeService(repo Repository) *EmployeeService {
	return &EmployeeService{
		repo:   repo,
		logger: util.GetLogger(),
	}
}

// CreateEmployeeRequest is the payload for creating an employee.
type CreateEmployeeRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Role     string `json:"role" binding:"required,oneof=admin staff"`
	Password string `json:"password" binding:"required"`
}

// Create adds an employee account with a bcrypt-hashed password.
// Duplicate emails are rejected with ErrConflict.
func (s *EmployeeService) Create(ctx context.Context, req *CreateEmployeeRequest, actor models.Actor) (*models.Employee, error) {
	ctx, span := util.StartSpan(ctx, "EmployeeService.Create")
	defer span.End()

	if !actor.IsAdmin() {
		return nil, fmt.Errorf("admin access required: %w", ErrForbidden)
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleStaff {
		return nil, fmt.Errorf("role must be admin or staff: %w", ErrInvalidInput)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.EmployeeByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email %s already exists: %w", email, ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	employee := &models.Employee{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(req.Name),
		Email:          email,
		Role:           req.Role,
		Status:         models.EmployeeStatusActive,
		PresenceStatus: models.PresencePresent,
		PasswordHash:   string(hash),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.CreateEmployee(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	s.logger.Info("Employee created",
		zap.String("employee_id", employee.ID),
		zap.String("role", employee.Role))
	return employee, nil
}

// List returns all employees with the presence-updater name resolved.
func (s *EmployeeService) List(ctx context.Context, actor models.Actor) ([]models.EmployeeView, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("admin access required: %w", ErrForbidden)
	}
	return s.listWithPresence(ctx)
}

// StaffPresence returns the presence board shown on the dashboard.
// Available to any authenticated user.
func (s *EmployeeService) StaffPresence(ctx context.Context) ([]models.EmployeeView, error) {
	return s.listWithPresence(ctx)
}

func (s *EmployeeService) listWithPresence(ctx context.Context) ([]models.EmployeeView, error) {
	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]models.EmployeeView, 0, len(employees))
	for _, emp := range employees {
		view := models.EmployeeView{Employee: emp}
		if emp.PresenceUpdatedBy != "" {
			if updater, err := s.repo.EmployeeByID(ctx, emp.PresenceUpdatedBy); err == nil {
				view.PresenceUpdatedByName = updater.Name
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// Delete removes an employee account. Self-deletion is rejected.
func (s *EmployeeService) Delete(ctx context.Context, employeeID string, actor models.Actor) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("admin access required: %w", ErrForbidden)
	}
	if actor.ID == employeeID {
		return fmt.Errorf("cannot delete yourself: %w", ErrInvalidInput)
	}
	return s.repo.DeleteEmployee(ctx, employeeID)
}

// ToggleStatus flips an account between active and inactive and returns
// the new status.
func (s *EmployeeService) ToggleStatus(ctx context.Context, employeeID string, actor models.Actor) (string, error) {
	if !actor.IsAdmin() {
		return "", fmt.Errorf("admin access required: %w", ErrForbidden)
	}

	employee, err := s.repo.EmployeeByID(ctx, employeeID)
	if err != nil {
		return "", err
	}

	newStatus := models.EmployeeStatusInactive
	if employee.Status == models.EmployeeStatusInactive {
		newStatus = models.EmployeeStatusActive
	}
	if err := s.repo.SetEmployeeStatus(ctx, employeeID, newStatus); err != nil {
		return "", err
	}
	return newStatus, nil
}

var presenceStatuses = map[string]bool{
	models.PresencePresent:    true,
	models.PresencePermission: true,
	models.PresenceOnField:    true,
	models.PresenceAbsent:     true,
	models.PresenceOnLeave:    true,
}

// UpdatePresence sets a staff presence status and records the change in
// the presence log.
func (s *EmployeeService) UpdatePresence(ctx context.Context, employeeID, status string, actor models.Actor) error {
	ctx, span := util.StartSpan(ctx, "EmployeeService.UpdatePresence")
	defer span.End()

	if !actor.IsAdmin() {
		return fmt.Errorf("admin access required: %w", ErrForbidden)
	}
	if !presenceStatuses[status] {
		return fmt.Errorf("invalid presence status %q: %w", status, ErrInvalidInput)
	}

	employee, err := s.repo.EmployeeByID(ctx, employeeID)
	if err != nil {
		return err
	}

	previous := employee.PresenceStatus
	now := time.Now().UTC()
	if err := s.repo.SetEmployeePresence(ctx, employeeID, status, actor.ID, now); err != nil {
		return err
	}

	return s.repo.AppendPresenceLog(ctx, &models.PresenceLog{
		ID:             uuid.New().String(),
		EmployeeID:     employeeID,
		EmployeeName:   employee.Name,
		PreviousStatus: previous,
		NewStatus:      status,
		ChangedBy:      actor.ID,
		ChangedByName:  actor.Name,
		Timestamp:      now,
	})
}

// PresenceLog lists recent presence changes, newest first.
func (s *EmployeeService) PresenceLog(ctx context.Context, limit int, actor models.Actor) ([]models.PresenceLog, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("admin access required: %w", ErrForbidden)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.PresenceLogs(ctx, limit)
}

// EnsureDefaultAdmin seeds the bootstrap admin account if no employee
// with the given email exists yet.
func (s *EmployeeService) EnsureDefaultAdmin(ctx context.Context, name, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.repo.EmployeeByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	admin := &models.Employee{
		ID:             uuid.New().String(),
		Name:           name,
		Email:          email,
		Role:           models.RoleAdmin,
		Status:         models.EmployeeStatusActive,
		PresenceStatus: models.PresencePresent,
		PasswordHash:   string(hash),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.CreateEmployee(ctx, admin); err != nil {
		return fmt.Errorf("failed to seed default admin: %w", err)
	}

	s.logger.Info("Default admin created", zap.String("email", email))
	return nil
}
