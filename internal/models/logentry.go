package models

import (
	"time"
)

// Log entry lifecycle states. Transitions between them go exclusively through
// the statemachine package; nothing else writes Status.
const (
	LogStatusDraft     = "Draft"
	LogStatusSubmitted = "Submitted"
	LogStatusApproved  = "Approved"
	LogStatusRejected  = "Rejected"
)

// Activity type constants
const (
	ActivityOperation   = "Operation"
	ActivityMaintenance = "Maintenance"
	ActivityCalibration = "Calibration"
	ActivityCleaning    = "Cleaning"
	ActivitySampling    = "Sampling"
)

// ValidActivityType reports whether t is a known activity type.
func ValidActivityType(t string) bool {
	switch t {
	case ActivityOperation, ActivityMaintenance, ActivityCalibration, ActivityCleaning, ActivitySampling:
		return true
	}
	return false
}

// LogEntry is the central audited record. Status, SubmittedAt, ApprovedBy,
// ApprovedAt, RejectedBy and RejectedAt are owned by the lifecycle engine.
type LogEntry struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	LogCode         string     `gorm:"column:log_code;uniqueIndex;not null" json:"log_code"` // e.g. LOG-2026-001
	EquipmentID     uint       `gorm:"not null;index" json:"equipment_id"`
	ActivityType    string     `gorm:"not null" json:"activity_type"`
	StartTime       time.Time  `gorm:"not null" json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	Description     string     `gorm:"type:text;not null" json:"description"`
	BatchNumber     *string    `json:"batch_number"`
	Readings        *string    `gorm:"type:text" json:"readings"` // JSON payload (temp, pH, ...)
	Status          string     `gorm:"not null;default:Draft;index" json:"status"`
	CreatedBy       uint       `gorm:"not null;index" json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	SubmittedAt     *time.Time `json:"submitted_at"`
	ApprovedBy      *uint      `json:"approved_by"`
	ApprovedAt      *time.Time `json:"approved_at"`
	RejectedBy      *uint      `json:"rejected_by"`
	RejectedAt      *time.Time `json:"rejected_at"`
	RejectionReason *string    `json:"rejection_reason"`

	// Associations
	Equipment Equipment `gorm:"foreignKey:EquipmentID" json:"equipment,omitempty"`
	Creator   User      `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Approver  *User     `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
}

// TableName specifies the table name for LogEntry
func (LogEntry) TableName() string {
	return "log_entries"
}

// MaySubmit returns true if the entry can be submitted for review
func (e *LogEntry) MaySubmit() bool {
	return e.Status == LogStatusDraft
}

// MayApprove returns true if the entry can be approved
func (e *LogEntry) MayApprove() bool {
	return e.Status == LogStatusSubmitted
}

// MayReject returns true if the entry can be rejected
func (e *LogEntry) MayReject() bool {
	return e.Status == LogStatusSubmitted
}

// IsEditable returns true while the entry content may still change. Once an
// entry leaves Draft its content is frozen; only lifecycle transitions apply.
func (e *LogEntry) IsEditable() bool {
	return e.Status == LogStatusDraft
}

// LogCounter backs the per-year LOG-<year>-<seq> code allocation. Rows are
// incremented atomically inside the entry creation transaction.
type LogCounter struct {
	Year  int `gorm:"primaryKey"`
	Value int `gorm:"not null"`
}

// TableName specifies the table name for LogCounter
func (LogCounter) TableName() string {
	return "log_counters"
}
