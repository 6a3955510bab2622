package models

import (
	"time"
)

// PM schedule status constants
const (
	PMStatusScheduled = "Scheduled"
	PMStatusOverdue   = "Overdue"
	PMStatusCompleted = "Completed"
)

// PM frequency constants
const (
	PMFrequencyDaily     = "Daily"
	PMFrequencyWeekly    = "Weekly"
	PMFrequencyMonthly   = "Monthly"
	PMFrequencyQuarterly = "Quarterly"
)

// ValidPMFrequency reports whether f is a known frequency.
func ValidPMFrequency(f string) bool {
	switch f {
	case PMFrequencyDaily, PMFrequencyWeekly, PMFrequencyMonthly, PMFrequencyQuarterly:
		return true
	}
	return false
}

// PMSchedule is a preventive maintenance due-date record
type PMSchedule struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	EquipmentID   uint       `gorm:"not null;index" json:"equipment_id"`
	TaskName      string     `gorm:"not null" json:"task_name"`
	Frequency     string     `gorm:"not null" json:"frequency"`
	LastPerformed *time.Time `json:"last_performed"`
	NextDue       time.Time  `gorm:"not null;index" json:"next_due"`
	Status        string     `gorm:"not null;default:Scheduled" json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Associations
	Equipment Equipment `gorm:"foreignKey:EquipmentID" json:"equipment,omitempty"`
}

// TableName specifies the table name for PMSchedule
func (PMSchedule) TableName() string {
	return "pm_schedules"
}

// IsOverdue returns true if the next due date is before the start of today.
func (p *PMSchedule) IsOverdue(now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return p.NextDue.Before(today)
}

// NextDueAfter computes the due date following a completion at the given time.
func (p *PMSchedule) NextDueAfter(completed time.Time) time.Time {
	switch p.Frequency {
	case PMFrequencyDaily:
		return completed.AddDate(0, 0, 1)
	case PMFrequencyWeekly:
		return completed.AddDate(0, 0, 7)
	case PMFrequencyMonthly:
		return completed.AddDate(0, 1, 0)
	case PMFrequencyQuarterly:
		return completed.AddDate(0, 3, 0)
	}
	return completed.AddDate(0, 1, 0)
}
