package services

import (
	"context"
	"fmt"

	"github.com/pharmalog/elogbook-api/internal/config"
	"github.com/pharmalog/elogbook-api/internal/models"
	"github.com/pharmalog/elogbook-api/pkg/logger"
	"github.com/resend/resend-go/v2"
)

// EmailService sends notification mail through Resend. When no API key is
// configured sends become no-ops and are logged instead.
type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

func (s *EmailService) enabled() bool {
	return s.config.ResendAPIKey != "" && s.config.FromEmail != ""
}

// SendEntrySubmitted notifies a reviewer that an entry awaits their signature
func (s *EmailService) SendEntrySubmitted(ctx context.Context, reviewer *models.User, entry *models.LogEntry) error {
	subject := fmt.Sprintf("Log entry %s awaiting review", entry.LogCode)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Log entry <strong>%s</strong> (%s) has been submitted and is awaiting review.</p>",
		reviewer.FullName, entry.LogCode, entry.ActivityType)
	return s.send(reviewer, subject, body)
}

// SendEntryDecision notifies the author that their entry was approved or rejected
func (s *EmailService) SendEntryDecision(ctx context.Context, author *models.User, entry *models.LogEntry, approved bool, reason string) error {
	verdict := "approved"
	if !approved {
		verdict = "rejected"
	}
	subject := fmt.Sprintf("Log entry %s %s", entry.LogCode, verdict)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your log entry <strong>%s</strong> has been %s.</p><p>Reason: %s</p>",
		author.FullName, entry.LogCode, verdict, reason)
	return s.send(author, subject, body)
}

func (s *EmailService) send(user *models.User, subject, body string) error {
	if !s.enabled() {
		logger.Debug("Email disabled, skipping send", "subject", subject, "user", user.Username)
		return nil
	}
	if user.Email == nil || *user.Email == "" {
		logger.Debug("User has no email address, skipping send", "subject", subject, "user", user.Username)
		return nil
	}

	to := *user.Email
	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", to, err))
		return err
	}
	return nil
}
