package reminder

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vaxtrack/reminder-api/internal/middleware"
	"github.com/vaxtrack/reminder-api/internal/model"
	"github.com/vaxtrack/reminder-api/internal/service/notification"
	"github.com/vaxtrack/reminder-api/internal/service/reminder"
	"github.com/vaxtrack/reminder-api/pkg/errors"
)

type Handler struct {
	service  *reminder.Service
	notifSvc *notification.Service
}

func NewHandler(service *reminder.Service, notifSvc *notification.Service) *Handler {
	return &Handler{service: service, notifSvc: notifSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reminders := r.Group("/reminders")
	{
		reminders.POST("", h.CreateReminder)
		reminders.GET("", h.ListReminders)
		reminders.GET("/upcoming", h.GetUpcoming)
		reminders.GET("/overdue", h.GetOverdue)
		reminders.GET("/:id", h.GetReminder)
		reminders.PUT("/:id", h.UpdateReminder)
		reminders.DELETE("/:id", h.DeleteReminder)
		reminders.POST("/:id/complete", h.CompleteReminder)
		reminders.GET("/:id/dispatches", h.GetDispatches)
	}
}

func (h *Handler) CreateReminder(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing identity"})
		return
	}

	var req model.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	created, err := h.service.CreateReminder(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": created})
}

func (h *Handler) GetReminder(c *gin.Context) {
	r, ok := h.ownedReminder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": r})
}

func (h *Handler) ListReminders(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing identity"})
		return
	}

	reminders, err := h.service.ListReminders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": reminders})
}

func (h *Handler) UpdateReminder(c *gin.Context) {
	r, ok := h.ownedReminder(c)
	if !ok {
		return
	}

	var req model.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	updated, err := h.service.UpdateReminder(c.Request.Context(), r.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": updated})
}

func (h *Handler) CompleteReminder(c *gin.Context) {
	r, ok := h.ownedReminder(c)
	if !ok {
		return
	}

	completed, err := h.service.CompleteReminder(c.Request.Context(), r.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": completed})
}

func (h *Handler) DeleteReminder(c *gin.Context) {
	r, ok := h.ownedReminder(c)
	if !ok {
		return
	}

	if err := h.service.DeleteReminder(c.Request.Context(), r.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) GetUpcoming(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing identity"})
		return
	}

	days := 0
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid days parameter"})
			return
		}
		days = parsed
	}

	upcoming, err := h.service.GetUpcoming(c.Request.Context(), userID, days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": upcoming})
}

func (h *Handler) GetOverdue(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing identity"})
		return
	}

	overdue, err := h.service.GetOverdue(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": overdue})
}

func (h *Handler) GetDispatches(c *gin.Context) {
	r, ok := h.ownedReminder(c)
	if !ok {
		return
	}

	pending := h.notifSvc.PendingDispatches(c.Request.Context(), r)
	history, err := h.notifSvc.History(c.Request.Context(), r)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{
		"pending": pending,
		"history": history,
	}})
}

// ownedReminder loads the path reminder and enforces that it belongs to the
// authenticated user. One user exclusively owns all reminders they create.
func (h *Handler) ownedReminder(c *gin.Context) (*model.Reminder, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing identity"})
		return nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid reminder ID"})
		return nil, false
	}

	r, err := h.service.GetReminder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if r.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "reminder not found"})
		return nil, false
	}
	return r, true
}

func respondError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		c.JSON(appErr.StatusCode(), gin.H{"status": "error", "message": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
}
