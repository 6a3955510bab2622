package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/pharmalog/elogbook-api/internal/models"
	"github.com/xuri/excelize/v2"
)

// ExportService renders audit trail spreadsheets and log entry PDF records
// for offline review and regulatory inspection.
type ExportService struct {
	auditSvc *AuditService
}

// NewExportService creates a new export service
func NewExportService(auditSvc *AuditService) *ExportService {
	return &ExportService{auditSvc: auditSvc}
}

const auditExportLimit = 10000

// ExportAuditXLSX renders the newest audit rows into a spreadsheet.
func (s *ExportService) ExportAuditXLSX(ctx context.Context) ([]byte, string, error) {
	entries, _, err := s.auditSvc.List(ctx, auditExportLimit, 0)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Audit Trail"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"Timestamp", "User", "Action", "Entity", "Entity ID", "Reason", "IP Address"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, entry := range entries {
		username := fmt.Sprintf("user %d", entry.UserID)
		if entry.User.ID != 0 {
			username = entry.User.Username
		}
		reason := ""
		if entry.Reason != nil {
			reason = *entry.Reason
		}

		values := []any{
			entry.Timestamp.Format(time.RFC3339),
			username,
			entry.Action,
			entry.EntityType,
			entry.EntityID,
			reason,
			entry.IPAddress,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("audit_trail_%s_%s.xlsx",
		time.Now().Format("2006-01-02"), uuid.NewString()[:8])
	return buf.Bytes(), filename, nil
}

// ExportLogEntryPDF renders an approved log entry as a printable record with
// its signature block. The entry must already carry its associations. Entries
// that have not completed review cannot be exported.
func (s *ExportService) ExportLogEntryPDF(ctx context.Context, entry *models.LogEntry) ([]byte, string, error) {
	if entry.Status != models.LogStatusApproved {
		return nil, "", fmt.Errorf("%w: entry %s is not approved", ErrInvalidState, entry.LogCode)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Log Entry %s", entry.LogCode))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Activity")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	writeField := func(label, value string) {
		pdf.Cell(60, 10, label+":")
		pdf.Cell(100, 10, value)
		pdf.Ln(6)
	}

	writeField("Equipment", fmt.Sprintf("%s (%s)", entry.Equipment.Name, entry.Equipment.EquipmentCode))
	writeField("Activity Type", entry.ActivityType)
	writeField("Start Time", entry.StartTime.Format(time.RFC3339))
	if entry.EndTime != nil {
		writeField("End Time", entry.EndTime.Format(time.RFC3339))
	}
	if entry.BatchNumber != nil {
		writeField("Batch Number", *entry.BatchNumber)
	}
	writeField("Status", entry.Status)
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Description")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(180, 6, entry.Description, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Signatures")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)

	writeField("Author", fmt.Sprintf("%s (%s)", entry.Creator.FullName, entry.Creator.Username))
	if entry.SubmittedAt != nil {
		writeField("Submitted At", entry.SubmittedAt.Format(time.RFC3339))
	}
	if entry.Approver != nil && entry.ApprovedAt != nil {
		writeField("Approved By", fmt.Sprintf("%s (%s)", entry.Approver.FullName, entry.Approver.Username))
		writeField("Approved At", entry.ApprovedAt.Format(time.RFC3339))
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(40, 10, fmt.Sprintf("Generated %s", time.Now().Format(time.RFC3339)))

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("%s_%s.pdf", entry.LogCode, uuid.NewString()[:8])
	return buf.Bytes(), filename, nil
}
