package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"warehouse-service/internal/auth"
	"warehouse-service/internal/models"
	"warehouse-service/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates employees and issues bearer tokens.
type AuthService struct {
	repo   Repository
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(repo Repository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		repo:   repo,
		tokens: tokens,
		logger: util.GetLogger(),
	}
}

// Login verifies credentials and returns a signed token plus the
// employee record. Unknown emails, wrong passwords and inactive
// accounts all fail with ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.Employee, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	employee, err := s.repo.EmployeeByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}

	if employee.Status != models.EmployeeStatusActive {
		return "", nil, fmt.Errorf("account is inactive: %w", ErrUnauthorized)
	}

	token, err := s.tokens.Generate(employee)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("Employee logged in",
		zap.String("employee_id", employee.ID),
		zap.String("role", employee.Role))
	return token, employee, nil
}

// Me returns the employee record behind an authenticated actor.
func (s *AuthService) Me(ctx context.Context, actor models.Actor) (*models.Employee, error) {
	return s.repo.EmployeeByID(ctx, actor.ID)
}
