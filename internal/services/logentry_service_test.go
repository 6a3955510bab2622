package services

import (
	"context"
	"testing"
	"time"

	"github.com/pharmalog/elogbook-api/internal/config"
	"github.com/pharmalog/elogbook-api/internal/jobs"
	"github.com/pharmalog/elogbook-api/internal/models"
	"github.com/pharmalog/elogbook-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEntryRepo struct {
	repository.LogEntryRepository
	mockFindByID   func(ctx context.Context, id uint) (*models.LogEntry, error)
	mockCreate     func(ctx context.Context, entry *models.LogEntry, audit *models.AuditTrail) error
	mockUpdate     func(ctx context.Context, entry *models.LogEntry, audit *models.AuditTrail) error
	mockTransition func(ctx context.Context, entry *models.LogEntry, fromStatus string, audit *models.AuditTrail) error
}

func (m *mockEntryRepo) FindByID(ctx context.Context, id uint) (*models.LogEntry, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockEntryRepo) Create(ctx context.Context, entry *models.LogEntry, audit *models.AuditTrail) error {
	return m.mockCreate(ctx, entry, audit)
}

func (m *mockEntryRepo) UpdateDraft(ctx context.Context, entry *models.LogEntry, audit *models.AuditTrail) error {
	return m.mockUpdate(ctx, entry, audit)
}

func (m *mockEntryRepo) Transition(ctx context.Context, entry *models.LogEntry, fromStatus string, audit *models.AuditTrail) error {
	return m.mockTransition(ctx, entry, fromStatus, audit)
}

type mockEquipRepo struct {
	repository.EquipmentRepository
	mockFindByID func(ctx context.Context, id uint) (*models.Equipment, error)
	mockCreate   func(ctx context.Context, eq *models.Equipment, audit *models.AuditTrail) error
	mockUpdate   func(ctx context.Context, eq *models.Equipment, audit *models.AuditTrail) error
	mockDelete   func(ctx context.Context, eq *models.Equipment, audit *models.AuditTrail) error
}

func (m *mockEquipRepo) FindByID(ctx context.Context, id uint) (*models.Equipment, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockEquipRepo) Create(ctx context.Context, eq *models.Equipment, audit *models.AuditTrail) error {
	return m.mockCreate(ctx, eq, audit)
}

func (m *mockEquipRepo) Update(ctx context.Context, eq *models.Equipment, audit *models.AuditTrail) error {
	return m.mockUpdate(ctx, eq, audit)
}

func (m *mockEquipRepo) Delete(ctx context.Context, eq *models.Equipment, audit *models.AuditTrail) error {
	return m.mockDelete(ctx, eq, audit)
}

type mockSignerRepo struct {
	repository.UserRepository
	mockFindByID func(ctx context.Context, id uint) (*models.User, error)
}

func (m *mockSignerRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockSignerRepo) FindActiveByRoles(ctx context.Context, roles ...models.Role) ([]models.User, error) {
	return []models.User{}, nil
}

type mockNotifRepo struct {
	repository.NotificationRepository
}

func (m *mockNotifRepo) Create(ctx context.Context, n *models.Notification) error {
	return nil
}

const signerPassword = "correct-horse"

var signerHash, _ = HashPassword(signerPassword)

func newTestLogEntryService(t *testing.T, entryRepo *mockEntryRepo, userRepo *mockSignerRepo) *LogEntryService {
	t.Helper()

	equipRepo := &mockEquipRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Equipment, error) {
			return &models.Equipment{ID: id}, nil
		},
	}

	cfg := &config.Config{Environment: "test"}
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)

	notificationSvc := NewNotificationService(&mockNotifRepo{}, userRepo)
	emailSvc := NewEmailService(cfg)

	return NewLogEntryService(entryRepo, equipRepo, userRepo, notificationSvc, emailSvc, worker)
}

func activeSigner(id uint, role models.Role) *models.User {
	return &models.User{
		ID:                id,
		Username:          "signer",
		FullName:          "Test Signer",
		EncryptedPassword: signerHash,
		Role:              role,
		IsActive:          true,
	}
}

func draftEntry(id, author uint) *models.LogEntry {
	return &models.LogEntry{
		ID:        id,
		LogCode:   "LOG-2026-001",
		Status:    models.LogStatusDraft,
		CreatedBy: author,
	}
}

func submittedEntry(id, author uint) *models.LogEntry {
	e := draftEntry(id, author)
	e.Status = models.LogStatusSubmitted
	return e
}

func TestLogEntryService_Create_InvalidActivityType(t *testing.T) {
	svc := newTestLogEntryService(t, &mockEntryRepo{}, &mockSignerRepo{})

	input := &LogEntryInput{
		EquipmentID:  1,
		ActivityType: "Disassembly",
		StartTime:    time.Now(),
		Description:  "took it apart",
	}
	_, err := svc.Create(context.Background(), input, 1, "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLogEntryService_Create_WritesAuditSnapshot(t *testing.T) {
	var capturedAudit *models.AuditTrail
	entryRepo := &mockEntryRepo{
		mockCreate: func(ctx context.Context, entry *models.LogEntry, audit *models.AuditTrail) error {
			entry.ID = 42
			capturedAudit = audit
			return nil
		},
	}
	svc := newTestLogEntryService(t, entryRepo, &mockSignerRepo{})

	input := &LogEntryInput{
		EquipmentID:  1,
		ActivityType: models.ActivityCleaning,
		StartTime:    time.Now(),
		Description:  "CIP cycle",
	}
	entry, err := svc.Create(context.Background(), input, 7, "10.0.0.1", "test")
	require.NoError(t, err)

	assert.Equal(t, models.LogStatusDraft, entry.Status)
	assert.Equal(t, uint(7), entry.CreatedBy)
	require.NotNil(t, capturedAudit)
	assert.Equal(t, models.AuditActionCreate, capturedAudit.Action)
	assert.Equal(t, "LogEntry", capturedAudit.EntityType)
	assert.Equal(t, uint(7), capturedAudit.UserID)
	assert.NotNil(t, capturedAudit.NewValue)
	assert.Equal(t, "10.0.0.1", capturedAudit.IPAddress)
}

func TestLogEntryService_UpdateDraft_OnlyAuthor(t *testing.T) {
	entryRepo := &mockEntryRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.LogEntry, error) {
			return draftEntry(id, 7), nil
		},
	}
	svc := newTestLogEntryService(t, entryRepo, &mockSignerRepo{})

	input := &LogEntryInput{
		EquipmentID:  1,
		ActivityType: models.ActivityCleaning,
		StartTime:    time.Now(),
		Description:  "edited",
	}
	_, err := svc.UpdateDraft(context.Background(), 1, input, 99, "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLogEntryService_UpdateDraft_SubmittedEntryIsFrozen(t *testing.T) {
	entryRepo := &mockEntryRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.LogEntry, error) {
			return submittedEntry(id, 7), nil
		},
	}
	svc := newTestLogEntryService(t, entryRepo, &mockSignerRepo{})

	input := &LogEntryInput{
		EquipmentID:  1,
		ActivityType: models.ActivityCleaning,
		StartTime:    time.Now(),
		Description:  "edited",
	}
	_, err := svc.UpdateDraft(context.Background(), 1, input, 7, "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestLogEntryService_Submit_WrongPasswordLeavesEntryAlone(t *testing.T) {
	transitionCalled := false
	entryRepo := &mockEntryRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.LogEntry, error) {
			return draftEntry(id, 7), nil
		},
		mockTransition: func(ctx context.Context, entry *models.LogEntry, fromStatus string, audit *models.AuditTrail) error {
			transitionCalled = true
			return nil
		},
	}
	userRepo := &mockSignerRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return activeSigner(id, models.RoleOperator), nil
		},
	}
	svc := newTestLogEntryService(t, entryRepo, userRepo)

	_, err := svc.Submit(context.Background(), 1, 7, "wrong-password", "shift complete", "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, transitionCalled)
}

func TestLogEntryService_Submit_MissingPassword(t *testing.T) {
	svc := newTestLogEntryService(t, &mockEntryRepo{}, &mockSignerRepo{})

	_, err := svc.Submit(context.Background(), 1, 7, "", "shift complete", "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLogEntryService_Submit_RequiresReason(t *testing.T) {
	transitionCalled := false
	entryRepo := &mockEntryRepo{
		mockTransition: func(ctx context.Context, entry *models.LogEntry, fromStatus string, audit *models.AuditTrail) error {
			transitionCalled = true
			return nil
		},
	}
	svc := newTestLogEntryService(t, entryRepo, &mockSignerRepo{})

	_, err := svc.Submit(context.Background(), 1, 7, signerPassword, "", "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, transitionCalled)
}

func TestLogEntryService_Approve_RequiresReason(t *testing.T) {
	transitionCalled := false
	entryRepo := &mockEntryRepo{
		mockTransition: func(ctx context.Context, entry *models.LogEntry, fromStatus string, audit *models.AuditTrail) error {
			transitionCalled = true
			return nil
		},
	}
	svc := newTestLogEntryService(t, entryRepo, &mockSignerRepo{})

	_, err := svc.Approve(context.Background(), 1, 9, signerPassword, "", "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, transitionCalled)
}

func TestLogEntryService_Submit_OnlyAuthor(t *testing.T) {
	entryRepo := &mockEntryRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.LogEntry, error) {
			return draftEntry(id, 7), nil
		},
	}
	userRepo := &mockSignerRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return activeSigner(id, models.RoleOperator), nil
		},
	}
	svc := newTestLogEntryService(t, entryRepo, userRepo)

	_, err := svc.Submit(context.Background(), 1, 99, signerPassword, "shift complete", "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLogEntryService_Submit_Success(t *testing.T) {
	var capturedFrom string
	var capturedAudit *models.AuditTrail
	entryRepo := &mockEntryRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.LogEntry, error) {
			return draftEntry(id, 7), nil
		},
		mockTransition: func(ctx context.Context, entry *models.LogEntry, fromStatus string, audit *models.AuditTrail) error {
			capturedFrom = fromStatus
			capturedAudit = audit
			return nil
		},
	}
	userRepo := &mockSignerRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return activeSigner(id, models.RoleOperator), nil
		},
	}
	svc := newTestLogEntryService(t, entryRepo, userRepo)

	entry, err := svc.Submit(context.Background(), 1, 7, signerPassword, "shift complete", "10.0.0.1", "test")
	require.NoError(t, err)

	assert.Equal(t, models.LogStatusSubmitted, entry.Status)
	assert.NotNil(t, entry.SubmittedAt)
	assert.Equal(t, models.LogStatusDraft, capturedFrom)
	require.NotNil(t, capturedAudit)
	assert.Equal(t, models.AuditActionUpdate, capturedAudit.Action)
	require.NotNil(t, capturedAudit.Reason)
	assert.Equal(t, "Submitted: shift complete", *capturedAudit.Reason)
	assert.NotNil(t, capturedAudit.OldValue)
	assert.NotNil(t, capturedAudit.NewValue)
}

func TestLogEntryService_Submit_AlreadySubmitted(t *testing.T) {
	entryRepo := &mockEntryRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.LogEntry, error) {
			return submittedEntry(id, 7), nil
		},
	}
	userRepo := &mockSignerRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return activeSigner(id, models.RoleOperator), nil
		},
	}
	svc := newTestLogEntryService(t, entryRepo, userRepo)

	_, err := svc.Submit(context.Background(), 1, 7, signerPassword, "shift complete", "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestLogEntryService_Approve_RoleGate(t *testing.T) {
	userRepo := &mockSignerRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return activeSigner(id, models.RoleSupervisor), nil
		},
	}
	svc := newTestLogEntryService(t, &mockEntryRepo{}, userRepo)

	_, err := svc.Approve(context.Background(), 1, 9, signerPassword, "looks good", "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLogEntryService_Approve_DualControl(t *testing.T) {
	entryRepo := &mockEntryRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.LogEntry, error) {
			// The QA reviewer is also the author
			return submittedEntry(id, 9), nil
		},
	}
	userRepo := &mockSignerRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return activeSigner(id, models.RoleQA), nil
		},
	}
	svc := newTestLogEntryService(t, entryRepo, userRepo)

	_, err := svc.Approve(context.Background(), 1, 9, signerPassword, "looks good", "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLogEntryService_Approve_Success(t *testing.T) {
	var capturedFrom string
	var capturedAudit *models.AuditTrail
	entryRepo := &mockEntryRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.LogEntry, error) {
			return submittedEntry(id, 7), nil
		},
		mockTransition: func(ctx context.Context, entry *models.LogEntry, fromStatus string, audit *models.AuditTrail) error {
			capturedFrom = fromStatus
			capturedAudit = audit
			return nil
		},
	}
	userRepo := &mockSignerRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return activeSigner(id, models.RoleQA), nil
		},
	}
	svc := newTestLogEntryService(t, entryRepo, userRepo)

	entry, err := svc.Approve(context.Background(), 1, 9, signerPassword, "verified readings", "10.0.0.1", "test")
	require.NoError(t, err)

	assert.Equal(t, models.LogStatusApproved, entry.Status)
	require.NotNil(t, entry.ApprovedBy)
	assert.Equal(t, uint(9), *entry.ApprovedBy)
	assert.NotNil(t, entry.ApprovedAt)
	assert.Equal(t, models.LogStatusSubmitted, capturedFrom)
	require.NotNil(t, capturedAudit)
	assert.Equal(t, models.AuditActionApprove, capturedAudit.Action)
	require.NotNil(t, capturedAudit.Reason)
	assert.Equal(t, "Approved: verified readings", *capturedAudit.Reason)
}

func TestLogEntryService_Approve_LostRaceIsConflict(t *testing.T) {
	entryRepo := &mockEntryRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.LogEntry, error) {
			return submittedEntry(id, 7), nil
		},
		mockTransition: func(ctx context.Context, entry *models.LogEntry, fromStatus string, audit *models.AuditTrail) error {
			return repository.ErrStaleStatus
		},
	}
	userRepo := &mockSignerRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return activeSigner(id, models.RoleQA), nil
		},
	}
	svc := newTestLogEntryService(t, entryRepo, userRepo)

	_, err := svc.Approve(context.Background(), 1, 9, signerPassword, "ok", "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestLogEntryService_Reject_RequiresReason(t *testing.T) {
	svc := newTestLogEntryService(t, &mockEntryRepo{}, &mockSignerRepo{})

	_, err := svc.Reject(context.Background(), 1, 9, signerPassword, "", "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLogEntryService_Reject_Success(t *testing.T) {
	var capturedAudit *models.AuditTrail
	entryRepo := &mockEntryRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.LogEntry, error) {
			return submittedEntry(id, 7), nil
		},
		mockTransition: func(ctx context.Context, entry *models.LogEntry, fromStatus string, audit *models.AuditTrail) error {
			capturedAudit = audit
			return nil
		},
	}
	userRepo := &mockSignerRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return activeSigner(id, models.RoleAdmin), nil
		},
	}
	svc := newTestLogEntryService(t, entryRepo, userRepo)

	entry, err := svc.Reject(context.Background(), 1, 9, signerPassword, "readings out of range", "10.0.0.1", "test")
	require.NoError(t, err)

	assert.Equal(t, models.LogStatusRejected, entry.Status)
	require.NotNil(t, entry.RejectionReason)
	assert.Equal(t, "readings out of range", *entry.RejectionReason)
	require.NotNil(t, entry.RejectedBy)
	assert.Equal(t, uint(9), *entry.RejectedBy)
	require.NotNil(t, capturedAudit)
	assert.Equal(t, models.AuditActionReject, capturedAudit.Action)
}

func TestLogEntryService_InactiveSignerCannotSign(t *testing.T) {
	userRepo := &mockSignerRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			signer := activeSigner(id, models.RoleQA)
			signer.IsActive = false
			return signer, nil
		},
	}
	svc := newTestLogEntryService(t, &mockEntryRepo{}, userRepo)

	_, err := svc.Approve(context.Background(), 1, 9, signerPassword, "ok", "10.0.0.1", "test")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
