package models

import (
	"time"
)

// Equipment status constants
const (
	EquipmentStatusOperational = "Operational"
	EquipmentStatusInUse       = "In Use"
	EquipmentStatusMaintenance = "Maintenance"
	EquipmentStatusOffline     = "Offline"
)

// Equipment represents a qualified asset that log entries reference
type Equipment struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	EquipmentCode       string    `gorm:"column:equipment_code;uniqueIndex;not null" json:"equipment_code"` // e.g. EQ-BIO-001
	Name                string    `gorm:"not null" json:"name"`
	Type                string    `gorm:"not null" json:"type"`
	Manufacturer        *string   `json:"manufacturer"`
	Model               *string   `json:"model"`
	SerialNumber        *string   `json:"serial_number"`
	Location            string    `gorm:"not null" json:"location"`
	Status              string    `gorm:"not null;default:Operational" json:"status"`
	QualificationStatus *string   `json:"qualification_status"` // IQ/OQ/PQ
	Description         *string   `json:"description"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName specifies the table name for Equipment
func (Equipment) TableName() string {
	return "equipment"
}
