package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pharmalog/elogbook-api/internal/models"
	"github.com/pharmalog/elogbook-api/internal/repository"
	"github.com/pharmalog/elogbook-api/pkg/logger"
)

// PMScheduleService manages preventive maintenance schedules and the
// background scan that flags overdue tasks. Actor-driven mutations commit in
// one transaction with their audit row.
type PMScheduleService struct {
	repo            repository.PMScheduleRepository
	equipmentRepo   repository.EquipmentRepository
	notificationSvc *NotificationService
}

// NewPMScheduleService creates a new PM schedule service
func NewPMScheduleService(
	repo repository.PMScheduleRepository,
	equipmentRepo repository.EquipmentRepository,
	notificationSvc *NotificationService,
) *PMScheduleService {
	return &PMScheduleService{
		repo:            repo,
		equipmentRepo:   equipmentRepo,
		notificationSvc: notificationSvc,
	}
}

// PMScheduleInput carries the editable fields of a PM schedule
type PMScheduleInput struct {
	EquipmentID uint      `json:"equipment_id" binding:"required"`
	TaskName    string    `json:"task_name" binding:"required"`
	Frequency   string    `json:"frequency" binding:"required"`
	NextDue     time.Time `json:"next_due" binding:"required"`
}

// Create registers a new maintenance schedule
func (s *PMScheduleService) Create(ctx context.Context, input *PMScheduleInput, actorID uint, ip, userAgent string) (*models.PMSchedule, error) {
	if !models.ValidPMFrequency(input.Frequency) {
		return nil, fmt.Errorf("%w: unknown frequency %q", ErrValidation, input.Frequency)
	}
	if _, err := s.equipmentRepo.FindByID(ctx, input.EquipmentID); err != nil {
		return nil, fmt.Errorf("%w: equipment %d", ErrNotFound, input.EquipmentID)
	}

	pm := &models.PMSchedule{
		EquipmentID: input.EquipmentID,
		TaskName:    input.TaskName,
		Frequency:   input.Frequency,
		NextDue:     input.NextDue,
		Status:      models.PMStatusScheduled,
	}

	audit := &models.AuditTrail{
		UserID:     actorID,
		Action:     models.AuditActionCreate,
		EntityType: "PMSchedule",
		NewValue:   Snapshot(pm),
		IPAddress:  ip,
		UserAgent:  userAgent,
	}

	if err := s.repo.Create(ctx, pm, audit); err != nil {
		return nil, err
	}

	return pm, nil
}

// Update replaces the editable fields of a schedule
func (s *PMScheduleService) Update(ctx context.Context, id uint, input *PMScheduleInput, actorID uint, ip, userAgent string) (*models.PMSchedule, error) {
	pm, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if !models.ValidPMFrequency(input.Frequency) {
		return nil, fmt.Errorf("%w: unknown frequency %q", ErrValidation, input.Frequency)
	}

	before := *pm
	pm.EquipmentID = input.EquipmentID
	pm.TaskName = input.TaskName
	pm.Frequency = input.Frequency
	pm.NextDue = input.NextDue

	audit := &models.AuditTrail{
		UserID:     actorID,
		Action:     models.AuditActionUpdate,
		EntityType: "PMSchedule",
		EntityID:   pm.ID,
		OldValue:   Snapshot(before),
		NewValue:   Snapshot(pm),
		IPAddress:  ip,
		UserAgent:  userAgent,
	}

	if err := s.repo.Update(ctx, pm, audit); err != nil {
		return nil, err
	}

	return pm, nil
}

// Complete marks a task performed now and rolls the due date forward by the
// schedule's frequency.
func (s *PMScheduleService) Complete(ctx context.Context, id, actorID uint, ip, userAgent string) (*models.PMSchedule, error) {
	pm, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	before := *pm
	now := time.Now()
	pm.LastPerformed = &now
	pm.NextDue = pm.NextDueAfter(now)
	pm.Status = models.PMStatusScheduled

	reason := "Maintenance task completed"
	audit := &models.AuditTrail{
		UserID:     actorID,
		Action:     models.AuditActionUpdate,
		EntityType: "PMSchedule",
		EntityID:   pm.ID,
		OldValue:   Snapshot(before),
		NewValue:   Snapshot(pm),
		Reason:     &reason,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}

	if err := s.repo.Update(ctx, pm, audit); err != nil {
		return nil, err
	}

	return pm, nil
}

// FindByID returns one schedule
func (s *PMScheduleService) FindByID(ctx context.Context, id uint) (*models.PMSchedule, error) {
	pm, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return pm, nil
}

// List returns schedules matching the query, soonest due first
func (s *PMScheduleService) List(ctx context.Context, query *repository.ListQuery) ([]models.PMSchedule, int64, error) {
	return s.repo.List(ctx, query)
}

// MarkOverdueScan flips past-due Scheduled tasks to Overdue and notifies
// the engineers. Runs periodically from the worker.
func (s *PMScheduleService) MarkOverdueScan(ctx context.Context) error {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	due, err := s.repo.FindDueBefore(ctx, today)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	var flipped int
	for i := range due {
		pm := &due[i]
		pm.Status = models.PMStatusOverdue
		if err := s.repo.Update(ctx, pm, nil); err != nil {
			logger.Error(fmt.Sprintf("Failed to mark PM schedule %d overdue: %v", pm.ID, err))
			continue
		}
		flipped++

		title := fmt.Sprintf("Maintenance overdue: %s", pm.TaskName)
		message := fmt.Sprintf("Task %q for equipment %d was due %s",
			pm.TaskName, pm.EquipmentID, pm.NextDue.Format("2006-01-02"))
		if err := s.notificationSvc.NotifyEngineers(ctx, title, message, models.NotificationTypePMOverdue); err != nil {
			logger.Error(fmt.Sprintf("Failed to notify engineers about PM schedule %d: %v", pm.ID, err))
		}
	}

	logger.Info("PM overdue scan finished", "flagged", flipped)
	return nil
}
