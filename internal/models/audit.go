package models

import (
	"time"
)

// Audit action constants
const (
	AuditActionCreate  = "CREATE"
	AuditActionUpdate  = "UPDATE"
	AuditActionDelete  = "DELETE"
	AuditActionLogin   = "LOGIN"
	AuditActionLogout  = "LOGOUT"
	AuditActionApprove = "APPROVE"
	AuditActionReject  = "REJECT"
)

// AuditTrail is an immutable fact record. Rows are only ever inserted; no
// update or delete code path exists anywhere in the repository.
type AuditTrail struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Timestamp  time.Time `gorm:"not null;index;autoCreateTime" json:"timestamp"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Action     string    `gorm:"size:20;not null" json:"action"`      // CREATE, UPDATE, DELETE, LOGIN, LOGOUT, APPROVE, REJECT
	EntityType string    `gorm:"size:50;not null" json:"entity_type"` // LogEntry, Equipment, User, PMSchedule
	EntityID   uint      `gorm:"index" json:"entity_id"`              // 0 when the action has no target record
	OldValue   *string   `gorm:"type:text" json:"old_value"`          // JSON snapshot
	NewValue   *string   `gorm:"type:text" json:"new_value"`          // JSON snapshot
	Reason     *string   `gorm:"type:text" json:"reason"`
	IPAddress  string    `gorm:"size:45" json:"ip_address"`
	UserAgent  string    `gorm:"size:255" json:"user_agent"`

	// Associations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for AuditTrail
func (AuditTrail) TableName() string {
	return "audit_trail"
}
