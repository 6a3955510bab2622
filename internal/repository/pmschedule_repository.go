package repository

import (
	"context"
	"time"

	"github.com/pharmalog/elogbook-api/internal/models"
	"gorm.io/gorm"
)

// PMScheduleRepository defines the interface for PM schedule data access.
// Mutations commit together with their audit row; a nil audit skips the
// append (background status flips have no acting user).
type PMScheduleRepository interface {
	FindByID(ctx context.Context, id uint) (*models.PMSchedule, error)
	List(ctx context.Context, query *ListQuery) ([]models.PMSchedule, int64, error)
	Create(ctx context.Context, pm *models.PMSchedule, audit *models.AuditTrail) error
	Update(ctx context.Context, pm *models.PMSchedule, audit *models.AuditTrail) error
	FindDueBefore(ctx context.Context, cutoff time.Time) ([]models.PMSchedule, error)
}

type pmScheduleRepository struct {
	db *gorm.DB
}

// NewPMScheduleRepository creates a new PM schedule repository
func NewPMScheduleRepository(db *gorm.DB) PMScheduleRepository {
	return &pmScheduleRepository{db: db}
}

func (r *pmScheduleRepository) FindByID(ctx context.Context, id uint) (*models.PMSchedule, error) {
	var pm models.PMSchedule
	err := r.db.WithContext(ctx).Preload("Equipment").First(&pm, id).Error
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

func (r *pmScheduleRepository) List(ctx context.Context, query *ListQuery) ([]models.PMSchedule, int64, error) {
	var schedules []models.PMSchedule
	var total int64

	db := r.db.WithContext(ctx).Model(&models.PMSchedule{})

	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}
	if query.Filters["equipment_id"] != "" {
		db = db.Where("equipment_id = ?", query.Filters["equipment_id"])
	}

	db.Count(&total)

	db = db.Preload("Equipment").Order("next_due ASC")

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&schedules).Error
	return schedules, total, err
}

func (r *pmScheduleRepository) Create(ctx context.Context, pm *models.PMSchedule, audit *models.AuditTrail) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(pm).Error; err != nil {
			return err
		}
		if audit == nil {
			return nil
		}
		audit.EntityID = pm.ID
		return tx.Create(audit).Error
	})
}

func (r *pmScheduleRepository) Update(ctx context.Context, pm *models.PMSchedule, audit *models.AuditTrail) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(pm).Error; err != nil {
			return err
		}
		if audit == nil {
			return nil
		}
		return tx.Create(audit).Error
	})
}

// FindDueBefore returns schedules still marked Scheduled whose due date has
// passed the cutoff. Used by the overdue scan.
func (r *pmScheduleRepository) FindDueBefore(ctx context.Context, cutoff time.Time) ([]models.PMSchedule, error) {
	var schedules []models.PMSchedule
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_due < ?", models.PMStatusScheduled, cutoff).
		Find(&schedules).Error
	return schedules, err
}
