package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pharmalog/elogbook-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportService_LogEntryPDF_RequiresApproval(t *testing.T) {
	svc := NewExportService(nil)

	entry := draftEntry(1, 7)
	_, _, err := svc.ExportLogEntryPDF(context.Background(), entry)
	assert.ErrorIs(t, err, ErrInvalidState)

	entry = submittedEntry(1, 7)
	_, _, err = svc.ExportLogEntryPDF(context.Background(), entry)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestExportService_LogEntryPDF_ApprovedEntry(t *testing.T) {
	svc := NewExportService(nil)

	now := time.Now()
	approverID := uint(9)
	entry := submittedEntry(1, 7)
	entry.Status = models.LogStatusApproved
	entry.ActivityType = models.ActivityCleaning
	entry.StartTime = now.Add(-time.Hour)
	entry.Description = "CIP cycle on bioreactor"
	entry.SubmittedAt = &now
	entry.ApprovedBy = &approverID
	entry.ApprovedAt = &now
	entry.Equipment = models.Equipment{Name: "Bioreactor 3", EquipmentCode: "EQ-BIO-003"}
	entry.Creator = models.User{Username: "operator1", FullName: "Op One"}
	entry.Approver = &models.User{Username: "qa1", FullName: "QA One"}

	data, filename, err := svc.ExportLogEntryPDF(context.Background(), entry)
	require.NoError(t, err)

	assert.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
	assert.True(t, strings.HasPrefix(filename, "LOG-2026-001_"))
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
}
