package schedule

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vaxtrack/reminder-api/internal/middleware"
	"github.com/vaxtrack/reminder-api/internal/model"
	"github.com/vaxtrack/reminder-api/internal/service/schedule"
	"github.com/vaxtrack/reminder-api/pkg/errors"
)

type Handler struct {
	service *schedule.Service
}

func NewHandler(service *schedule.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	schedules := r.Group("/schedules")
	{
		schedules.GET("", h.ListSchedules)
		schedules.POST("/sync", h.SyncSchedules)
		schedules.PUT("/refresh", h.RefreshFeed)
	}
}

func (h *Handler) ListSchedules(c *gin.Context) {
	schedules, err := h.service.ListSchedules(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": schedules})
}

func (h *Handler) SyncSchedules(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing identity"})
		return
	}

	var req model.SyncSchedulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	referenceDate := time.Now()
	if req.ReferenceDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ReferenceDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid reference_date"})
			return
		}
		referenceDate = parsed
	}

	ids := make([]uuid.UUID, 0, len(req.ScheduleIDs))
	for _, raw := range req.ScheduleIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid schedule ID: " + raw})
			return
		}
		ids = append(ids, id)
	}

	result, err := h.service.Sync(c.Request.Context(), userID, ids, referenceDate)
	if err != nil {
		respondError(c, err)
		return
	}

	// Partial failures still return the reminders that were created.
	status := http.StatusOK
	if len(result.Failed) > 0 && len(result.Created) == 0 {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"status": "success", "data": result})
}

func (h *Handler) RefreshFeed(c *gin.Context) {
	var schedules []*model.GovernmentVaccineSchedule
	if err := c.ShouldBindJSON(&schedules); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if err := h.service.RefreshFeed(c.Request.Context(), schedules); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"count": len(schedules)}})
}

func respondError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		c.JSON(appErr.StatusCode(), gin.H{"status": "error", "message": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
}
