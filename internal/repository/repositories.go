package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrDuplicate is returned when an insert collides with a unique constraint
// (usernames, equipment codes). Services translate it into a validation error.
var ErrDuplicate = errors.New("record already exists")

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Equipment    EquipmentRepository
	LogEntry     LogEntryRepository
	PMSchedule   PMScheduleRepository
	Notification NotificationRepository
	RefreshToken RefreshTokenRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Equipment:    NewEquipmentRepository(db),
		LogEntry:     NewLogEntryRepository(db),
		PMSchedule:   NewPMScheduleRepository(db),
		Notification: NewNotificationRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
	}
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}
