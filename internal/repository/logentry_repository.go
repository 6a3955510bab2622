package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pharmalog/elogbook-api/internal/models"
	"gorm.io/gorm"
)

// ErrStaleStatus is returned when a conditional status update matched no row:
// either the entry vanished or a concurrent transition won the race. Callers
// map it to their invalid-state error.
var ErrStaleStatus = errors.New("log entry status changed concurrently")

// LogEntryQuery extends ListQuery with log-entry specific filters
type LogEntryQuery struct {
	*ListQuery
	Status      string
	EquipmentID uint
	CreatedBy   uint
}

// LogEntryRepository defines the interface for log entry data access. Writes
// that represent lifecycle transitions are transactional: the status mutation
// and its audit row commit together or not at all.
type LogEntryRepository interface {
	FindByID(ctx context.Context, id uint) (*models.LogEntry, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.LogEntry, error)
	List(ctx context.Context, query *LogEntryQuery) ([]models.LogEntry, int64, error)
	Create(ctx context.Context, entry *models.LogEntry, audit *models.AuditTrail) error
	UpdateDraft(ctx context.Context, entry *models.LogEntry, audit *models.AuditTrail) error
	Transition(ctx context.Context, entry *models.LogEntry, fromStatus string, audit *models.AuditTrail) error
}

type logEntryRepository struct {
	db *gorm.DB
}

// NewLogEntryRepository creates a new log entry repository
func NewLogEntryRepository(db *gorm.DB) LogEntryRepository {
	return &logEntryRepository{db: db}
}

func (r *logEntryRepository) FindByID(ctx context.Context, id uint) (*models.LogEntry, error) {
	var entry models.LogEntry
	err := r.db.WithContext(ctx).First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *logEntryRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.LogEntry, error) {
	var entry models.LogEntry
	err := r.db.WithContext(ctx).
		Preload("Equipment").
		Preload("Creator").
		Preload("Approver").
		First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *logEntryRepository) List(ctx context.Context, query *LogEntryQuery) ([]models.LogEntry, int64, error) {
	var entries []models.LogEntry
	var total int64

	db := r.db.WithContext(ctx).Model(&models.LogEntry{})

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.EquipmentID != 0 {
		db = db.Where("equipment_id = ?", query.EquipmentID)
	}
	if query.CreatedBy != 0 {
		db = db.Where("created_by = ?", query.CreatedBy)
	}
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("log_code ILIKE ? OR description ILIKE ? OR batch_number ILIKE ?",
			search, search, search)
	}

	db.Count(&total)

	db = db.Preload("Equipment").Preload("Creator").Order("created_at DESC")

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&entries).Error
	return entries, total, err
}

// Create allocates the entry's LOG-<year>-<seq> code from the per-year
// counter, inserts the entry and its CREATE audit row in one transaction.
// The counter upsert is atomic under concurrent writers.
func (r *logEntryRepository) Create(ctx context.Context, entry *models.LogEntry, audit *models.AuditTrail) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		year := time.Now().Year()
		var seq int
		err := tx.Raw(`INSERT INTO log_counters (year, value) VALUES (?, 1)
			ON CONFLICT (year) DO UPDATE SET value = log_counters.value + 1
			RETURNING value`, year).Scan(&seq).Error
		if err != nil {
			return fmt.Errorf("failed to allocate log code: %w", err)
		}
		entry.LogCode = fmt.Sprintf("LOG-%d-%03d", year, seq)

		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		audit.EntityID = entry.ID
		return tx.Create(audit).Error
	})
}

// UpdateDraft persists content edits to a Draft entry. The update is
// conditional on the entry still being in Draft so an edit cannot land after
// a concurrent submission.
func (r *logEntryRepository) UpdateDraft(ctx context.Context, entry *models.LogEntry, audit *models.AuditTrail) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.LogEntry{}).
			Where("id = ? AND status = ?", entry.ID, models.LogStatusDraft).
			Select("EquipmentID", "ActivityType", "StartTime", "EndTime",
				"Description", "BatchNumber", "Readings").
			Updates(entry)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}
		return tx.Create(audit).Error
	})
}

// Transition applies a lifecycle mutation with compare-and-set semantics: the
// update only matches while the entry is still in fromStatus, and the audit
// row commits in the same transaction. A lost race rolls everything back and
// surfaces ErrStaleStatus, so two concurrent approvals cannot both succeed
// and no transition is ever visible without its audit record.
func (r *logEntryRepository) Transition(ctx context.Context, entry *models.LogEntry, fromStatus string, audit *models.AuditTrail) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.LogEntry{}).
			Where("id = ? AND status = ?", entry.ID, fromStatus).
			Select("Status", "SubmittedAt", "ApprovedBy", "ApprovedAt",
				"RejectedBy", "RejectedAt", "RejectionReason").
			Updates(entry)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}
		return tx.Create(audit).Error
	})
}
