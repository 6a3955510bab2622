package services

import (
	"context"
	"testing"

	"github.com/pharmalog/elogbook-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquipmentService_Create_RejectsUnknownStatus(t *testing.T) {
	service := NewEquipmentService(&mockEquipRepo{})

	_, err := service.Create(context.Background(), &EquipmentInput{
		EquipmentCode: "eq-001",
		Name:          "Autoclave",
		Type:          "Sterilizer",
		Location:      "Room 101",
		Status:        "Broken",
	}, 1, "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEquipmentService_Create_PassesAuditToRepository(t *testing.T) {
	var gotAudit *models.AuditTrail
	mockRepo := &mockEquipRepo{
		mockCreate: func(ctx context.Context, eq *models.Equipment, audit *models.AuditTrail) error {
			gotAudit = audit
			return nil
		},
	}
	service := NewEquipmentService(mockRepo)

	eq, err := service.Create(context.Background(), &EquipmentInput{
		EquipmentCode: "eq-001",
		Name:          "Autoclave",
		Type:          "Sterilizer",
		Location:      "Room 101",
	}, 3, "10.0.0.1", "test")
	require.NoError(t, err)
	assert.Equal(t, "EQ-001", eq.EquipmentCode)

	require.NotNil(t, gotAudit, "equipment creation must carry its audit row into the repository")
	assert.Equal(t, uint(3), gotAudit.UserID)
	assert.Equal(t, models.AuditActionCreate, gotAudit.Action)
	assert.Equal(t, "Equipment", gotAudit.EntityType)
	assert.NotNil(t, gotAudit.NewValue)
}

func TestEquipmentService_Delete_AuditsSnapshot(t *testing.T) {
	var gotAudit *models.AuditTrail
	mockRepo := &mockEquipRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Equipment, error) {
			return &models.Equipment{ID: id, EquipmentCode: "EQ-002", Name: "pH Meter"}, nil
		},
		mockDelete: func(ctx context.Context, eq *models.Equipment, audit *models.AuditTrail) error {
			gotAudit = audit
			return nil
		},
	}
	service := NewEquipmentService(mockRepo)

	err := service.Delete(context.Background(), 2, 3, "10.0.0.1", "test")
	require.NoError(t, err)

	require.NotNil(t, gotAudit)
	assert.Equal(t, models.AuditActionDelete, gotAudit.Action)
	assert.Equal(t, uint(2), gotAudit.EntityID)
	assert.NotNil(t, gotAudit.OldValue, "the deleted record must survive as an audit snapshot")
}
