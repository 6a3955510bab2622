package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pharmalog/elogbook-api/internal/models"
	"github.com/pharmalog/elogbook-api/internal/repository"
)

// EquipmentService manages the equipment registry. Every mutation commits in
// one transaction with an audit row carrying before and after snapshots.
type EquipmentService struct {
	repo repository.EquipmentRepository
}

// NewEquipmentService creates a new equipment service
func NewEquipmentService(repo repository.EquipmentRepository) *EquipmentService {
	return &EquipmentService{repo: repo}
}

// EquipmentInput carries the editable fields of an equipment record
type EquipmentInput struct {
	EquipmentCode       string  `json:"equipment_code" binding:"required"`
	Name                string  `json:"name" binding:"required"`
	Type                string  `json:"type" binding:"required"`
	Manufacturer        *string `json:"manufacturer"`
	Model               *string `json:"model"`
	SerialNumber        *string `json:"serial_number"`
	Location            string  `json:"location" binding:"required"`
	Status              string  `json:"status"`
	QualificationStatus *string `json:"qualification_status"`
	Description         *string `json:"description"`
}

func validEquipmentStatus(s string) bool {
	switch s {
	case models.EquipmentStatusOperational, models.EquipmentStatusInUse,
		models.EquipmentStatusMaintenance, models.EquipmentStatusOffline:
		return true
	}
	return false
}

// Create registers a new piece of equipment
func (s *EquipmentService) Create(ctx context.Context, input *EquipmentInput, actorID uint, ip, userAgent string) (*models.Equipment, error) {
	status := input.Status
	if status == "" {
		status = models.EquipmentStatusOperational
	}
	if !validEquipmentStatus(status) {
		return nil, fmt.Errorf("%w: unknown equipment status %q", ErrValidation, status)
	}

	eq := &models.Equipment{
		EquipmentCode:       strings.ToUpper(strings.TrimSpace(input.EquipmentCode)),
		Name:                input.Name,
		Type:                input.Type,
		Manufacturer:        input.Manufacturer,
		Model:               input.Model,
		SerialNumber:        input.SerialNumber,
		Location:            input.Location,
		Status:              status,
		QualificationStatus: input.QualificationStatus,
		Description:         input.Description,
	}

	audit := &models.AuditTrail{
		UserID:     actorID,
		Action:     models.AuditActionCreate,
		EntityType: "Equipment",
		NewValue:   Snapshot(eq),
		IPAddress:  ip,
		UserAgent:  userAgent,
	}

	if err := s.repo.Create(ctx, eq, audit); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: equipment code %s is taken", ErrValidation, eq.EquipmentCode)
		}
		return nil, err
	}

	return eq, nil
}

// Update replaces the editable fields of an equipment record
func (s *EquipmentService) Update(ctx context.Context, id uint, input *EquipmentInput, actorID uint, ip, userAgent string) (*models.Equipment, error) {
	eq, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if input.Status != "" && !validEquipmentStatus(input.Status) {
		return nil, fmt.Errorf("%w: unknown equipment status %q", ErrValidation, input.Status)
	}

	before := *eq
	eq.EquipmentCode = strings.ToUpper(strings.TrimSpace(input.EquipmentCode))
	eq.Name = input.Name
	eq.Type = input.Type
	eq.Manufacturer = input.Manufacturer
	eq.Model = input.Model
	eq.SerialNumber = input.SerialNumber
	eq.Location = input.Location
	if input.Status != "" {
		eq.Status = input.Status
	}
	eq.QualificationStatus = input.QualificationStatus
	eq.Description = input.Description

	audit := &models.AuditTrail{
		UserID:     actorID,
		Action:     models.AuditActionUpdate,
		EntityType: "Equipment",
		EntityID:   eq.ID,
		OldValue:   Snapshot(before),
		NewValue:   Snapshot(eq),
		IPAddress:  ip,
		UserAgent:  userAgent,
	}

	if err := s.repo.Update(ctx, eq, audit); err != nil {
		return nil, err
	}

	return eq, nil
}

// Delete removes an equipment record. The snapshot of the deleted record
// survives in the audit trail.
func (s *EquipmentService) Delete(ctx context.Context, id, actorID uint, ip, userAgent string) error {
	eq, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	return s.repo.Delete(ctx, eq, &models.AuditTrail{
		UserID:     actorID,
		Action:     models.AuditActionDelete,
		EntityType: "Equipment",
		EntityID:   eq.ID,
		OldValue:   Snapshot(eq),
		IPAddress:  ip,
		UserAgent:  userAgent,
	})
}

// FindByID returns one equipment record
func (s *EquipmentService) FindByID(ctx context.Context, id uint) (*models.Equipment, error) {
	eq, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return eq, nil
}

// List returns equipment matching the query
func (s *EquipmentService) List(ctx context.Context, query *repository.ListQuery) ([]models.Equipment, int64, error) {
	return s.repo.List(ctx, query)
}
