package calendar

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vaxtrack/reminder-api/internal/middleware"
	"github.com/vaxtrack/reminder-api/internal/model"
	"github.com/vaxtrack/reminder-api/internal/service/calendar"
	"github.com/vaxtrack/reminder-api/internal/service/stats"
	"github.com/vaxtrack/reminder-api/pkg/errors"
)

type Handler struct {
	calendarSvc *calendar.Service
	statsSvc    *stats.Service
}

func NewHandler(calendarSvc *calendar.Service, statsSvc *stats.Service) *Handler {
	return &Handler{calendarSvc: calendarSvc, statsSvc: statsSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/calendar", h.GetCalendar)
	r.GET("/stats", h.GetStats)
}

func (h *Handler) GetCalendar(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing identity"})
		return
	}

	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid start date"})
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid end date"})
		return
	}

	mode := model.CalendarMode(c.DefaultQuery("mode", string(model.CalendarModeMonth)))

	view, err := h.calendarSvc.GetCalendarView(c.Request.Context(), userID, start, end, mode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": view})
}

func (h *Handler) GetStats(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing identity"})
		return
	}

	result, err := h.statsSvc.GetStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": result})
}

func respondError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		c.JSON(appErr.StatusCode(), gin.H{"status": "error", "message": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
}
