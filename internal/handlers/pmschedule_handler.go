package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pharmalog/elogbook-api/internal/middleware"
	"github.com/pharmalog/elogbook-api/internal/repository"
	"github.com/pharmalog/elogbook-api/internal/services"
)

type PMScheduleHandler struct {
	pmService *services.PMScheduleService
}

func NewPMScheduleHandler(pmService *services.PMScheduleService) *PMScheduleHandler {
	return &PMScheduleHandler{pmService: pmService}
}

// @Summary List PM Schedules
// @Description Lists preventive maintenance schedules, soonest due first
// @Tags PMSchedules
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param equipment_id query int false "Filter by equipment"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /pm-schedules [get]
func (h *PMScheduleHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["status"] = c.Query("status")
	query.Filters["equipment_id"] = c.Query("equipment_id")

	schedules, total, err := h.pmService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pm_schedules": schedules,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get PM Schedule
// @Description Get a maintenance schedule by ID
// @Tags PMSchedules
// @Produce json
// @Param id path int true "PM Schedule ID"
// @Success 200 {object} models.PMSchedule
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /pm-schedules/{id} [get]
func (h *PMScheduleHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)
	pm, err := h.pmService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pm_schedule": pm})
}

// @Summary Create PM Schedule
// @Description Registers a new maintenance schedule
// @Tags PMSchedules
// @Accept json
// @Produce json
// @Param request body services.PMScheduleInput true "PM Schedule"
// @Success 201 {object} models.PMSchedule
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /pm-schedules [post]
func (h *PMScheduleHandler) Create(c *gin.Context) {
	var input services.PMScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pm, err := h.pmService.Create(c.Request.Context(), &input,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"pm_schedule": pm})
}

// @Summary Update PM Schedule
// @Description Updates a maintenance schedule
// @Tags PMSchedules
// @Accept json
// @Produce json
// @Param id path int true "PM Schedule ID"
// @Param request body services.PMScheduleInput true "PM Schedule"
// @Success 200 {object} models.PMSchedule
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /pm-schedules/{id} [put]
func (h *PMScheduleHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	var input services.PMScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pm, err := h.pmService.Update(c.Request.Context(), uint(id), &input,
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pm_schedule": pm})
}

// @Summary Complete PM Task
// @Description Marks a maintenance task performed and rolls its due date forward
// @Tags PMSchedules
// @Produce json
// @Param id path int true "PM Schedule ID"
// @Success 200 {object} models.PMSchedule
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /pm-schedules/{id}/complete [post]
func (h *PMScheduleHandler) Complete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	pm, err := h.pmService.Complete(c.Request.Context(), uint(id),
		middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pm_schedule": pm})
}
