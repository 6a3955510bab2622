package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pharmalog/elogbook-api/internal/jobs"
	"github.com/pharmalog/elogbook-api/internal/models"
	"github.com/pharmalog/elogbook-api/internal/policy"
	"github.com/pharmalog/elogbook-api/internal/repository"
	"github.com/pharmalog/elogbook-api/internal/statemachine"
	"github.com/pharmalog/elogbook-api/pkg/logger"
	"gorm.io/gorm"
)

// LogEntryService owns the log entry lifecycle. Every transition out of
// Draft is an electronic signature: the actor re-authenticates with their
// password, states a reason, and the status change commits atomically with
// its audit row.
type LogEntryService struct {
	repo            repository.LogEntryRepository
	equipmentRepo   repository.EquipmentRepository
	userRepo        repository.UserRepository
	notificationSvc *NotificationService
	emailSvc        *EmailService
	worker          *jobs.Worker
}

// NewLogEntryService creates a new log entry service
func NewLogEntryService(
	repo repository.LogEntryRepository,
	equipmentRepo repository.EquipmentRepository,
	userRepo repository.UserRepository,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	worker *jobs.Worker,
) *LogEntryService {
	return &LogEntryService{
		repo:            repo,
		equipmentRepo:   equipmentRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		worker:          worker,
	}
}

// LogEntryInput carries the author-editable fields of a log entry. The
// lifecycle fields (status, signatures, timestamps) are never client-settable.
type LogEntryInput struct {
	EquipmentID  uint       `json:"equipment_id" binding:"required"`
	ActivityType string     `json:"activity_type" binding:"required"`
	StartTime    time.Time  `json:"start_time" binding:"required"`
	EndTime      *time.Time `json:"end_time"`
	Description  string     `json:"description" binding:"required"`
	BatchNumber  *string    `json:"batch_number"`
	Readings     *string    `json:"readings"`
}

func (s *LogEntryService) validateInput(ctx context.Context, input *LogEntryInput) error {
	if !models.ValidActivityType(input.ActivityType) {
		return fmt.Errorf("%w: unknown activity type %q", ErrValidation, input.ActivityType)
	}
	if input.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if input.EndTime != nil && input.EndTime.Before(input.StartTime) {
		return fmt.Errorf("%w: end time before start time", ErrValidation)
	}
	if _, err := s.equipmentRepo.FindByID(ctx, input.EquipmentID); err != nil {
		return fmt.Errorf("%w: equipment %d", ErrNotFound, input.EquipmentID)
	}
	return nil
}

// Create records a new Draft entry for the acting user. The log code is
// allocated and the CREATE audit row written in the same transaction.
func (s *LogEntryService) Create(ctx context.Context, input *LogEntryInput, actorID uint, ip, userAgent string) (*models.LogEntry, error) {
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	entry := &models.LogEntry{
		EquipmentID:  input.EquipmentID,
		ActivityType: input.ActivityType,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		Description:  input.Description,
		BatchNumber:  input.BatchNumber,
		Readings:     input.Readings,
		Status:       models.LogStatusDraft,
		CreatedBy:    actorID,
	}

	audit := &models.AuditTrail{
		UserID:     actorID,
		Action:     models.AuditActionCreate,
		EntityType: "LogEntry",
		NewValue:   Snapshot(entry),
		IPAddress:  ip,
		UserAgent:  userAgent,
	}

	if err := s.repo.Create(ctx, entry, audit); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateDraft edits a Draft entry's content. Only the author may edit, and
// only while the entry has not been submitted.
func (s *LogEntryService) UpdateDraft(ctx context.Context, id uint, input *LogEntryInput, actorID uint, ip, userAgent string) (*models.LogEntry, error) {
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if entry.CreatedBy != actorID {
		return nil, fmt.Errorf("%w: only the author can edit a draft", ErrForbidden)
	}
	if !entry.IsEditable() {
		return nil, fmt.Errorf("%w: entry %s is %s", ErrInvalidState, entry.LogCode, entry.Status)
	}

	before := *entry
	entry.EquipmentID = input.EquipmentID
	entry.ActivityType = input.ActivityType
	entry.StartTime = input.StartTime
	entry.EndTime = input.EndTime
	entry.Description = input.Description
	entry.BatchNumber = input.BatchNumber
	entry.Readings = input.Readings

	audit := &models.AuditTrail{
		UserID:     actorID,
		Action:     models.AuditActionUpdate,
		EntityType: "LogEntry",
		EntityID:   entry.ID,
		OldValue:   Snapshot(before),
		NewValue:   Snapshot(entry),
		IPAddress:  ip,
		UserAgent:  userAgent,
	}

	if err := s.repo.UpdateDraft(ctx, entry, audit); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, fmt.Errorf("%w: entry %s is no longer a draft", ErrInvalidState, entry.LogCode)
		}
		return nil, err
	}
	return entry, nil
}

// reauthenticate verifies the signing actor's password. A failed check
// leaves the entry untouched; every signature starts here.
func (s *LogEntryService) reauthenticate(ctx context.Context, actorID uint, password string) (*models.User, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required to sign", ErrValidation)
	}
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if !actor.IsActive {
		return nil, ErrUnauthenticated
	}
	if !VerifyPassword(password, actor.EncryptedPassword) {
		return nil, ErrInvalidCredentials
	}
	return actor, nil
}

// Submit signs a Draft entry into review. Only the author may submit, the
// signature requires their password and a stated reason, and a failed
// re-authentication leaves the entry in Draft.
func (s *LogEntryService) Submit(ctx context.Context, entryID, actorID uint, password, reason, ip, userAgent string) (*models.LogEntry, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: a reason is required to sign", ErrValidation)
	}
	actor, err := s.reauthenticate(ctx, actorID, password)
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if entry.CreatedBy != actor.ID {
		return nil, fmt.Errorf("%w: only the author can submit this entry", ErrForbidden)
	}

	before := *entry
	machine := statemachine.NewLogEntryFSM(entry)
	if err := machine.Submit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	now := time.Now()
	entry.SubmittedAt = &now

	auditReason := signatureReason("Submitted", reason)
	audit := &models.AuditTrail{
		UserID:     actor.ID,
		Action:     models.AuditActionUpdate,
		EntityType: "LogEntry",
		EntityID:   entry.ID,
		OldValue:   Snapshot(before),
		NewValue:   Snapshot(entry),
		Reason:     &auditReason,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}

	if err := s.repo.Transition(ctx, entry, models.LogStatusDraft, audit); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, fmt.Errorf("%w: entry %s was already submitted", ErrInvalidState, entry.LogCode)
		}
		return nil, err
	}

	s.notifyReviewers(*entry, actor.FullName)
	return entry, nil
}

// Approve countersigns a Submitted entry. Only QA and Admin may approve,
// never the entry's own author, and the reviewer signs with their password.
func (s *LogEntryService) Approve(ctx context.Context, entryID, actorID uint, password, reason, ip, userAgent string) (*models.LogEntry, error) {
	return s.countersign(ctx, entryID, actorID, password, reason, ip, userAgent, true)
}

// Reject returns a Submitted entry to its author with a mandatory reason.
// The same role and dual-control rules apply as for approval.
func (s *LogEntryService) Reject(ctx context.Context, entryID, actorID uint, password, reason, ip, userAgent string) (*models.LogEntry, error) {
	return s.countersign(ctx, entryID, actorID, password, reason, ip, userAgent, false)
}

func (s *LogEntryService) countersign(ctx context.Context, entryID, actorID uint, password, reason, ip, userAgent string, approve bool) (*models.LogEntry, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: a reason is required to sign", ErrValidation)
	}
	actor, err := s.reauthenticate(ctx, actorID, password)
	if err != nil {
		return nil, err
	}

	if !policy.Allows(actor.Role, policy.OpCountersignEntry) {
		return nil, fmt.Errorf("%w: role %s cannot countersign entries", ErrForbidden, actor.Role)
	}

	entry, err := s.repo.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Dual control: the reviewer signature must come from a second person
	if entry.CreatedBy == actor.ID {
		return nil, fmt.Errorf("%w: authors cannot countersign their own entries", ErrForbidden)
	}

	before := *entry
	machine := statemachine.NewLogEntryFSM(entry)
	now := time.Now()

	var action string
	var auditReason string
	if approve {
		if err := machine.Approve(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		entry.ApprovedBy = &actor.ID
		entry.ApprovedAt = &now
		action = models.AuditActionApprove
		auditReason = signatureReason("Approved", reason)
	} else {
		if err := machine.Reject(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		entry.RejectedBy = &actor.ID
		entry.RejectedAt = &now
		entry.RejectionReason = &reason
		action = models.AuditActionReject
		auditReason = signatureReason("Rejected", reason)
	}

	audit := &models.AuditTrail{
		UserID:     actor.ID,
		Action:     action,
		EntityType: "LogEntry",
		EntityID:   entry.ID,
		OldValue:   Snapshot(before),
		NewValue:   Snapshot(entry),
		Reason:     &auditReason,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}

	if err := s.repo.Transition(ctx, entry, models.LogStatusSubmitted, audit); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, fmt.Errorf("%w: entry %s was already decided", ErrInvalidState, entry.LogCode)
		}
		return nil, err
	}

	s.notifyAuthor(*entry, actor.FullName, approve, reason)
	return entry, nil
}

func signatureReason(verdict, reason string) string {
	if reason == "" {
		return verdict
	}
	return fmt.Sprintf("%s: %s", verdict, reason)
}

// notifyReviewers fans out to every active QA and Admin user off the request
// path. Notification failures are logged, never surfaced to the signer.
func (s *LogEntryService) notifyReviewers(entry models.LogEntry, authorName string) {
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		reviewers, err := s.userRepo.FindActiveByRoles(ctx, models.RoleQA, models.RoleAdmin)
		if err != nil {
			return fmt.Errorf("failed to load reviewers for %s: %w", entry.LogCode, err)
		}
		title := fmt.Sprintf("Log entry %s submitted", entry.LogCode)
		message := fmt.Sprintf("%s submitted %s for review", authorName, entry.LogCode)
		for i := range reviewers {
			reviewer := &reviewers[i]
			if err := s.notificationSvc.NotifyUser(ctx, reviewer.ID, title, message, models.NotificationTypeEntrySubmitted); err != nil {
				logger.Error(fmt.Sprintf("Failed to notify reviewer %d about %s: %v", reviewer.ID, entry.LogCode, err))
			}
			if err := s.emailSvc.SendEntrySubmitted(ctx, reviewer, &entry); err != nil {
				logger.Error(fmt.Sprintf("Failed to email reviewer %d about %s: %v", reviewer.ID, entry.LogCode, err))
			}
		}
		return nil
	})
}

func (s *LogEntryService) notifyAuthor(entry models.LogEntry, reviewerName string, approved bool, reason string) {
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		author, err := s.userRepo.FindByID(ctx, entry.CreatedBy)
		if err != nil {
			return fmt.Errorf("failed to load author of %s: %w", entry.LogCode, err)
		}

		verdict := "approved"
		notificationType := models.NotificationTypeEntryApproved
		if !approved {
			verdict = "rejected"
			notificationType = models.NotificationTypeEntryRejected
		}
		title := fmt.Sprintf("Log entry %s %s", entry.LogCode, verdict)
		message := fmt.Sprintf("%s %s your entry %s", reviewerName, verdict, entry.LogCode)
		if reason != "" {
			message = fmt.Sprintf("%s: %s", message, reason)
		}

		if err := s.notificationSvc.NotifyUser(ctx, author.ID, title, message, notificationType); err != nil {
			logger.Error(fmt.Sprintf("Failed to notify author of %s: %v", entry.LogCode, err))
		}
		if err := s.emailSvc.SendEntryDecision(ctx, author, &entry, approved, reason); err != nil {
			logger.Error(fmt.Sprintf("Failed to email author of %s: %v", entry.LogCode, err))
		}
		return nil
	})
}

// FindByID returns one entry with its equipment, creator and approver loaded
func (s *LogEntryService) FindByID(ctx context.Context, id uint) (*models.LogEntry, error) {
	entry, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

// List returns entries matching the query, newest first
func (s *LogEntryService) List(ctx context.Context, query *repository.LogEntryQuery) ([]models.LogEntry, int64, error) {
	return s.repo.List(ctx, query)
}
