package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pharmalog/elogbook-api/internal/models"
	"github.com/pharmalog/elogbook-api/internal/repository"
)

// UserService manages operator accounts. Accounts are deactivated, never
// deleted, so the audit trail keeps a valid actor for every historical row.
// Every mutation commits in one transaction with its audit row.
type UserService struct {
	repo repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// CreateUserInput carries the fields for a new account
type CreateUserInput struct {
	Username   string  `json:"username" binding:"required"`
	Password   string  `json:"password" binding:"required"`
	FullName   string  `json:"full_name" binding:"required"`
	Email      *string `json:"email"`
	Role       string  `json:"role" binding:"required"`
	Department *string `json:"department"`
}

// UpdateUserInput carries the admin-editable fields of an account. Nil
// fields are left unchanged.
type UpdateUserInput struct {
	FullName   *string `json:"full_name"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
}

// Create registers a new account and audits it. The password hash and the
// audit snapshot never contain the plaintext password.
func (s *UserService) Create(ctx context.Context, input *CreateUserInput, actorID uint, ip, userAgent string) (*models.User, error) {
	role := models.Role(input.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, input.Role)
	}
	if len(input.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:          strings.ToLower(strings.TrimSpace(input.Username)),
		EncryptedPassword: hashed,
		FullName:          input.FullName,
		Email:             input.Email,
		Role:              role,
		Department:        input.Department,
		IsActive:          true,
	}

	audit := &models.AuditTrail{
		UserID:     actorID,
		Action:     models.AuditActionCreate,
		EntityType: "User",
		NewValue:   Snapshot(user.ToResponse()),
		IPAddress:  ip,
		UserAgent:  userAgent,
	}

	if err := s.repo.Create(ctx, user, audit); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username %s is taken", ErrValidation, user.Username)
		}
		return nil, err
	}

	return user, nil
}

// Update applies partial changes to an account and audits the change
func (s *UserService) Update(ctx context.Context, id uint, input *UpdateUserInput, actorID uint, ip, userAgent string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	before := user.ToResponse()

	if input.Role != nil {
		role := models.Role(*input.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, *input.Role)
		}
		user.Role = role
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Email != nil {
		user.Email = input.Email
	}
	if input.Department != nil {
		user.Department = input.Department
	}

	audit := &models.AuditTrail{
		UserID:     actorID,
		Action:     models.AuditActionUpdate,
		EntityType: "User",
		EntityID:   user.ID,
		OldValue:   Snapshot(before),
		NewValue:   Snapshot(user.ToResponse()),
		IPAddress:  ip,
		UserAgent:  userAgent,
	}

	if err := s.repo.Update(ctx, user, audit); err != nil {
		return nil, err
	}

	return user, nil
}

// Deactivate disables an account. Admins cannot deactivate themselves so the
// system always keeps a working administrator.
func (s *UserService) Deactivate(ctx context.Context, id, actorID uint, ip, userAgent string) error {
	if id == actorID {
		return fmt.Errorf("%w: cannot deactivate your own account", ErrValidation)
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if !user.IsActive {
		return nil
	}

	before := user.ToResponse()
	now := time.Now()
	user.IsActive = false
	user.DeactivatedAt = &now

	reason := "Account deactivated"
	return s.repo.Update(ctx, user, &models.AuditTrail{
		UserID:     actorID,
		Action:     models.AuditActionUpdate,
		EntityType: "User",
		EntityID:   user.ID,
		OldValue:   Snapshot(before),
		NewValue:   Snapshot(user.ToResponse()),
		Reason:     &reason,
		IPAddress:  ip,
		UserAgent:  userAgent,
	})
}

// Activate re-enables a deactivated account
func (s *UserService) Activate(ctx context.Context, id, actorID uint, ip, userAgent string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if user.IsActive {
		return nil
	}

	before := user.ToResponse()
	user.IsActive = true
	user.DeactivatedAt = nil

	reason := "Account reactivated"
	return s.repo.Update(ctx, user, &models.AuditTrail{
		UserID:     actorID,
		Action:     models.AuditActionUpdate,
		EntityType: "User",
		EntityID:   user.ID,
		OldValue:   Snapshot(before),
		NewValue:   Snapshot(user.ToResponse()),
		Reason:     &reason,
		IPAddress:  ip,
		UserAgent:  userAgent,
	})
}

// FindByID returns a single account
func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// List returns accounts matching the query
func (s *UserService) List(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	return s.repo.List(ctx, query)
}
