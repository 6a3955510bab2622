package services

import (
	"context"
	"errors"
	"testing"

	"github.com/pharmalog/elogbook-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Create_RejectsUnknownRole(t *testing.T) {
	service := NewUserService(&mockUserRepo{})

	_, err := service.Create(context.Background(), &CreateUserInput{
		Username: "newuser",
		Password: "password123",
		FullName: "New User",
		Role:     "Superuser",
	}, 1, "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_Create_RejectsShortPassword(t *testing.T) {
	service := NewUserService(&mockUserRepo{})

	_, err := service.Create(context.Background(), &CreateUserInput{
		Username: "newuser",
		Password: "abc",
		FullName: "New User",
		Role:     string(models.RoleOperator),
	}, 1, "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_Deactivate_SelfIsRejected(t *testing.T) {
	service := NewUserService(&mockUserRepo{})

	err := service.Deactivate(context.Background(), 5, 5, "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_Create_PassesAuditToRepository(t *testing.T) {
	var gotAudit *models.AuditTrail
	mockRepo := &mockUserRepo{
		mockCreate: func(ctx context.Context, user *models.User, audit *models.AuditTrail) error {
			gotAudit = audit
			return nil
		},
	}
	service := NewUserService(mockRepo)

	_, err := service.Create(context.Background(), &CreateUserInput{
		Username: "newuser",
		Password: "password123",
		FullName: "New User",
		Role:     string(models.RoleOperator),
	}, 7, "10.0.0.1", "test")
	require.NoError(t, err)

	require.NotNil(t, gotAudit, "account creation must carry its audit row into the repository")
	assert.Equal(t, uint(7), gotAudit.UserID)
	assert.Equal(t, models.AuditActionCreate, gotAudit.Action)
	assert.Equal(t, "User", gotAudit.EntityType)
	assert.NotNil(t, gotAudit.NewValue)
}

func TestUserService_Deactivate_SurfacesRepositoryError(t *testing.T) {
	repoErr := errors.New("tx rolled back")
	mockRepo := &mockUserRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Role: models.RoleOperator, IsActive: true}, nil
		},
		mockUpdate: func(ctx context.Context, user *models.User, audit *models.AuditTrail) error {
			return repoErr
		},
	}
	service := NewUserService(mockRepo)

	err := service.Deactivate(context.Background(), 5, 1, "10.0.0.1", "test")
	assert.ErrorIs(t, err, repoErr)
}

func TestUserService_Update_RejectsUnknownRole(t *testing.T) {
	mockRepo := &mockUserRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Role: models.RoleOperator}, nil
		},
	}
	service := NewUserService(mockRepo)

	badRole := "root"
	_, err := service.Update(context.Background(), 2, &UpdateUserInput{Role: &badRole}, 1, "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrValidation)
}
