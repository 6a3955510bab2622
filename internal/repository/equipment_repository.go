package repository

import (
	"context"
	"fmt"

	"github.com/pharmalog/elogbook-api/internal/models"
	"gorm.io/gorm"
)

// EquipmentRepository defines the interface for equipment data access.
// Mutations commit together with their audit row.
type EquipmentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Equipment, error)
	FindByCode(ctx context.Context, code string) (*models.Equipment, error)
	List(ctx context.Context, query *ListQuery) ([]models.Equipment, int64, error)
	Create(ctx context.Context, eq *models.Equipment, audit *models.AuditTrail) error
	Update(ctx context.Context, eq *models.Equipment, audit *models.AuditTrail) error
	Delete(ctx context.Context, eq *models.Equipment, audit *models.AuditTrail) error
}

type equipmentRepository struct {
	db *gorm.DB
}

// NewEquipmentRepository creates a new equipment repository
func NewEquipmentRepository(db *gorm.DB) EquipmentRepository {
	return &equipmentRepository{db: db}
}

func (r *equipmentRepository) FindByID(ctx context.Context, id uint) (*models.Equipment, error) {
	var eq models.Equipment
	err := r.db.WithContext(ctx).First(&eq, id).Error
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *equipmentRepository) FindByCode(ctx context.Context, code string) (*models.Equipment, error) {
	var eq models.Equipment
	err := r.db.WithContext(ctx).
		Where("equipment_code = ?", code).
		First(&eq).Error
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *equipmentRepository) List(ctx context.Context, query *ListQuery) ([]models.Equipment, int64, error) {
	var equipment []models.Equipment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Equipment{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("equipment_code ILIKE ? OR name ILIKE ? OR location ILIKE ?",
			search, search, search)
	}

	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}
	if query.Filters["type"] != "" {
		db = db.Where("type = ?", query.Filters["type"])
	}

	db.Count(&total)

	db = db.Order("created_at DESC")

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&equipment).Error
	return equipment, total, err
}

func (r *equipmentRepository) Create(ctx context.Context, eq *models.Equipment, audit *models.AuditTrail) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(eq).Error; err != nil {
			if isDuplicateKeyError(err, "idx_equipment_equipment_code") {
				return fmt.Errorf("%w: equipment code", ErrDuplicate)
			}
			return err
		}
		if audit == nil {
			return nil
		}
		audit.EntityID = eq.ID
		return tx.Create(audit).Error
	})
}

func (r *equipmentRepository) Update(ctx context.Context, eq *models.Equipment, audit *models.AuditTrail) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(eq).Error; err != nil {
			return err
		}
		if audit == nil {
			return nil
		}
		return tx.Create(audit).Error
	})
}

func (r *equipmentRepository) Delete(ctx context.Context, eq *models.Equipment, audit *models.AuditTrail) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Equipment{}, eq.ID).Error; err != nil {
			return err
		}
		if audit == nil {
			return nil
		}
		return tx.Create(audit).Error
	})
}
