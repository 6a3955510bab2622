package services

import (
	"context"
	"encoding/json"

	"github.com/pharmalog/elogbook-api/internal/models"
	"gorm.io/gorm"
)

// AuditService appends and reads the audit trail. Audit rows are append-only;
// no update or delete operation exists.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Log records an audit entry
func (s *AuditService) Log(ctx context.Context, entry *models.AuditTrail) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// List retrieves audit entries ordered newest-first, capped at limit
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]models.AuditTrail, int64, error) {
	var entries []models.AuditTrail
	var total int64

	if err := s.db.WithContext(ctx).Model(&models.AuditTrail{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := s.db.WithContext(ctx).
		Preload("User").
		Order("timestamp DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries)
	return entries, total, result.Error
}

// Snapshot serializes a record for the old_value / new_value audit columns.
// Returns nil when the value is nil so the column stays NULL.
func Snapshot(v any) *string {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}
