package services

import (
	"github.com/pharmalog/elogbook-api/internal/config"
	"github.com/pharmalog/elogbook-api/internal/jobs"
	"github.com/pharmalog/elogbook-api/internal/repository"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	User         *UserService
	Equipment    *EquipmentService
	LogEntry     *LogEntryService
	PMSchedule   *PMScheduleService
	Notification *NotificationService
	Audit        *AuditService
	Email        *EmailService
	Export       *ExportService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, cfg *config.Config, db *gorm.DB) *Services {
	auditSvc := NewAuditService(db)
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	emailSvc := NewEmailService(cfg)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.RefreshToken, auditSvc, cfg),
		User:         NewUserService(repos.User),
		Equipment:    NewEquipmentService(repos.Equipment),
		LogEntry:     NewLogEntryService(repos.LogEntry, repos.Equipment, repos.User, notificationSvc, emailSvc, worker),
		PMSchedule:   NewPMScheduleService(repos.PMSchedule, repos.Equipment, notificationSvc),
		Notification: notificationSvc,
		Audit:        auditSvc,
		Email:        emailSvc,
		Export:       NewExportService(auditSvc),
	}
}
