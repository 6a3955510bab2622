package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pharmalog/elogbook-api/internal/middleware"
	"github.com/pharmalog/elogbook-api/internal/models"
	"github.com/pharmalog/elogbook-api/internal/repository"
	"github.com/pharmalog/elogbook-api/internal/services"
)

type LogEntryHandler struct {
	logEntryService *services.LogEntryService
	exportService   *services.ExportService
}

func NewLogEntryHandler(logEntryService *services.LogEntryService, exportService *services.ExportService) *LogEntryHandler {
	return &LogEntryHandler{
		logEntryService: logEntryService,
		exportService:   exportService,
	}
}

// SignatureRequest is the electronic signature payload. The password
// re-authenticates the signer; the reason is recorded in the audit trail.
type SignatureRequest struct {
	Password string `json:"password" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

// @Summary List Log Entries
// @Description Lists log entries with filters and pagination
// @Tags LogEntries
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by code, description or batch"
// @Param status query string false "Filter by status"
// @Param equipment_id query int false "Filter by equipment"
// @Param created_by query int false "Filter by author"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /logs [get]
func (h *LogEntryHandler) Index(c *gin.Context) {
	query := &repository.LogEntryQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Status = c.Query("status")

	if v, err := strconv.ParseUint(c.Query("equipment_id"), 10, 32); err == nil {
		query.EquipmentID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("created_by"), 10, 32); err == nil {
		query.CreatedBy = uint(v)
	}

	entries, total, err := h.logEntryService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"log_entries": entries,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Log Entry
// @Description Get a log entry with its equipment, author and approver
// @Tags LogEntries
// @Produce json
// @Param id path int true "Log Entry ID"
// @Success 200 {object} models.LogEntry
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /logs/{id} [get]
func (h *LogEntryHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)
	entry, err := h.logEntryService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"log_entry": entry})
}

// @Summary Create Log Entry
// @Description Creates a new draft log entry for the authenticated user
// @Tags LogEntries
// @Accept json
// @Produce json
// @Param request body services.LogEntryInput true "Log Entry"
// @Success 201 {object} models.LogEntry
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /logs [post]
func (h *LogEntryHandler) Create(c *gin.Context) {
	var input services.LogEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.logEntryService.Create(c.Request.Context(), &input,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"log_entry": entry})
}

// @Summary Update Log Entry
// @Description Updates a draft log entry. Only the author may edit, and only before submission.
// @Tags LogEntries
// @Accept json
// @Produce json
// @Param id path int true "Log Entry ID"
// @Param request body services.LogEntryInput true "Log Entry"
// @Success 200 {object} models.LogEntry
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /logs/{id} [put]
func (h *LogEntryHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	var input services.LogEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.logEntryService.UpdateDraft(c.Request.Context(), uint(id), &input,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"log_entry": entry})
}

// @Summary Submit Log Entry
// @Description Signs a draft entry into review. Requires the author's password.
// @Tags LogEntries
// @Accept json
// @Produce json
// @Param id path int true "Log Entry ID"
// @Param request body SignatureRequest true "Electronic Signature"
// @Success 200 {object} models.LogEntry
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /logs/{id}/submit [post]
func (h *LogEntryHandler) Submit(c *gin.Context) {
	h.sign(c, h.logEntryService.Submit)
}

// @Summary Approve Log Entry
// @Description Countersigns a submitted entry. QA or Admin only, never the author.
// @Tags LogEntries
// @Accept json
// @Produce json
// @Param id path int true "Log Entry ID"
// @Param request body SignatureRequest true "Electronic Signature"
// @Success 200 {object} models.LogEntry
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /logs/{id}/approve [post]
func (h *LogEntryHandler) Approve(c *gin.Context) {
	h.sign(c, h.logEntryService.Approve)
}

// @Summary Reject Log Entry
// @Description Rejects a submitted entry with a mandatory reason. QA or Admin only, never the author.
// @Tags LogEntries
// @Accept json
// @Produce json
// @Param id path int true "Log Entry ID"
// @Param request body SignatureRequest true "Electronic Signature"
// @Success 200 {object} models.LogEntry
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /logs/{id}/reject [post]
func (h *LogEntryHandler) Reject(c *gin.Context) {
	h.sign(c, h.logEntryService.Reject)
}

type signFunc func(ctx context.Context, entryID, actorID uint, password, reason, ip, userAgent string) (*models.LogEntry, error)

func (h *LogEntryHandler) sign(c *gin.Context, fn signFunc) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	var req SignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password and reason are required to sign"})
		return
	}

	entry, err := fn(c.Request.Context(), uint(id), middleware.GetUserID(c),
		req.Password, req.Reason, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"log_entry": entry})
}

// @Summary Export Log Entry PDF
// @Description Downloads an approved log entry as a printable PDF record
// @Tags LogEntries
// @Produce application/pdf
// @Param id path int true "Log Entry ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /logs/{id}/export [get]
func (h *LogEntryHandler) Export(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	entry, err := h.logEntryService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	data, filename, err := h.exportService.ExportLogEntryPDF(c.Request.Context(), entry)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
