package service

import (
	"context"
	"errors"
	"testing"

	"warehouse-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeService_Create(t *testing.T) {
	store := newMemStore()
	svc := NewEmployeeService(store)
	ctx := context.Background()
	admin := adminActor()

	req := &CreateEmployeeRequest{
		Name:     "Ravi Kumar",
		Email:    "  Ravi@Example.COM ",
		Role:     models.RoleStaff,
		Password: "secret123",
	}
	employee, err := svc.Create(ctx, req, admin)
	require.NoError(t, err)
	assert.Equal(t, "ravi@example.com", employee.Email)
	assert.Equal(t, models.EmployeeStatusActive, employee.Status)
	assert.Equal(t, models.PresencePresent, employee.PresenceStatus)
	assert.NotEqual(t, "secret123", employee.PasswordHash)

	_, err = svc.Create(ctx, req, admin)
	assert.True(t, errors.Is(err, ErrConflict))

	_, err = svc.Create(ctx, &CreateEmployeeRequest{
		Name: "X", Email: "x@example.com", Role: "manager", Password: "pw",
	}, admin)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = svc.Create(ctx, req, staffActor())
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestEmployeeService_DeleteSelfRejected(t *testing.T) {
	store := newMemStore()
	svc := NewEmployeeService(store)
	ctx := context.Background()
	admin := adminActor()

	employee, err := svc.Create(ctx, &CreateEmployeeRequest{
		Name: "Staff", Email: "staff@example.com", Role: models.RoleStaff, Password: "pw",
	}, admin)
	require.NoError(t, err)

	err = svc.Delete(ctx, admin.ID, admin)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	require.NoError(t, svc.Delete(ctx, employee.ID, admin))
}

func TestEmployeeService_ToggleStatus(t *testing.T) {
	store := newMemStore()
	svc := NewEmployeeService(store)
	ctx := context.Background()
	admin := adminActor()

	employee, err := svc.Create(ctx, &CreateEmployeeRequest{
		Name: "Staff", Email: "staff@example.com", Role: models.RoleStaff, Password: "pw",
	}, admin)
	require.NoError(t, err)

	status, err := svc.ToggleStatus(ctx, employee.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, models.EmployeeStatusInactive, status)

	status, err = svc.ToggleStatus(ctx, employee.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, models.EmployeeStatusActive, status)
}

func TestEmployeeService_UpdatePresence(t *testing.T) {
	store := newMemStore()
	svc := NewEmployeeService(store)
	ctx := context.Background()
	admin := adminActor()

	employee, err := svc.Create(ctx, &CreateEmployeeRequest{
		Name: "Staff", Email: "staff@example.com", Role: models.RoleStaff, Password: "pw",
	}, admin)
	require.NoError(t, err)

	err = svc.UpdatePresence(ctx, employee.ID, "vacationing", admin)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	require.NoError(t, svc.UpdatePresence(ctx, employee.ID, models.PresenceOnField, admin))

	stored, err := store.EmployeeByID(ctx, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PresenceOnField, stored.PresenceStatus)
	assert.Equal(t, admin.ID, stored.PresenceUpdatedBy)

	logs, err := svc.PresenceLog(ctx, 10, admin)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.PresencePresent, logs[0].PreviousStatus)
	assert.Equal(t, models.PresenceOnField, logs[0].NewStatus)
}

func TestEmployeeService_EnsureDefaultAdmin(t *testing.T) {
	store := newMemStore()
	svc := NewEmployeeService(store)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaultAdmin(ctx, "Admin", "admin@warehouse.local", "admin123"))
	require.NoError(t, svc.EnsureDefaultAdmin(ctx, "Admin", "admin@warehouse.local", "admin123"))

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, models.RoleAdmin, employees[0].Role)
}
