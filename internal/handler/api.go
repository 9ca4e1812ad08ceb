package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"farm-assistant/internal/export"
	"farm-assistant/internal/models"
	"farm-assistant/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClientHeader identifies the client whose requests supersede each other
const ClientHeader = "X-Client-ID"

const defaultClient = "default"

// Handler handles HTTP requests
type Handler struct {
	logbook   *service.Logbook
	chat      *service.Chat
	community *service.Community
	insights  *service.Insights
	location  *time.Location
	logger    *zap.Logger
}

// NewHandler creates a new API handler. Calendar days in logbook queries
// are read in location.
func NewHandler(
	logbook *service.Logbook,
	chat *service.Chat,
	community *service.Community,
	insights *service.Insights,
	location *time.Location,
	logger *zap.Logger,
) *Handler {
	if location == nil {
		location = time.Local
	}
	return &Handler{
		logbook:   logbook,
		chat:      chat,
		community: community,
		insights:  insights,
		location:  location,
		logger:    logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		// Generative operations
		api.POST("/identify", h.Identify)
		api.POST("/diagnose", h.Diagnose)
		api.POST("/video/analyze", h.AnalyzeVideo)
		api.POST("/alerts/weather", h.WeatherAlerts)
		api.POST("/calendar", h.CropCalendar)
		api.POST("/briefing", h.FieldBriefing)

		// Calculators
		api.POST("/calculators/spray", h.SprayCalculator)
		api.POST("/calculators/irrigation", h.IrrigationCalculator)

		// Logbook
		api.GET("/logbook", h.ListEntries)
		api.GET("/logbook/:id", h.GetEntry)
		api.GET("/logbook/:id/timeline", h.GetTimeline)
		api.DELETE("/logbook/:id", h.DeleteEntry)
		api.POST("/logbook/:id/logs", h.AddManualLog)
		api.POST("/logbook/:id/followups", h.AddFollowUp)
		api.GET("/stats", h.GetStats)

		// Export
		api.GET("/export/logbook/csv", h.ExportCSV)
		api.GET("/export/logbook/json", h.ExportJSON)
		api.GET("/export/logbook/xlsx", h.ExportXLSX)

		// Chat
		api.GET("/chats", h.ListSessions)
		api.POST("/chats", h.CreateSession)
		api.PUT("/chats/:id/select", h.SelectSession)
		api.DELETE("/chats/:id", h.DeleteSession)
		api.POST("/chats/:id/messages", h.SendMessage)

		// Community
		api.GET("/community/posts", h.ListPosts)
		api.POST("/community/posts", h.CreatePost)
		api.POST("/community/posts/:id/like", h.LikePost)
		api.POST("/community/posts/:id/comments", h.CommentPost)
	}

	// Health check
	r.GET("/health", h.HealthCheck)
}

// clientSlot is the caller's id for superseding in-flight requests
func clientSlot(c *gin.Context) string {
	if id := c.GetHeader(ClientHeader); id != "" {
		return id
	}
	return defaultClient
}

// Identify handles plant identification
func (h *Handler) Identify(c *gin.Context) {
	var req ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.logbook.Identify(c.Request.Context(), clientSlot(c), req.Image)
	if err != nil {
		h.writeError(c, "identify", err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// Diagnose handles plant disease diagnosis
func (h *Handler) Diagnose(c *gin.Context) {
	var req ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.logbook.Diagnose(c.Request.Context(), clientSlot(c), req.Image)
	if err != nil {
		h.writeError(c, "diagnose", err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) AnalyzeVideo(c *gin.Context) {
	var req VideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.insights.AnalyzeVideo(c.Request.Context(), clientSlot(c), req.Video)
	if err != nil {
		h.writeError(c, "video analysis", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) WeatherAlerts(c *gin.Context) {
	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pos, err := req.Position()
	if err != nil {
		h.writeError(c, "weather alerts", err)
		return
	}

	alerts, err := h.insights.WeatherAlerts(c.Request.Context(), pos)
	if err != nil {
		h.writeError(c, "weather alerts", err)
		return
	}

	c.JSON(http.StatusOK, alerts)
}

func (h *Handler) CropCalendar(c *gin.Context) {
	var req CalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pos, err := req.Position()
	if err != nil {
		h.writeError(c, "crop calendar", err)
		return
	}

	calendar, err := h.insights.CropCalendar(c.Request.Context(), req.Crop, req.PlantingDate, pos)
	if err != nil {
		h.writeError(c, "crop calendar", err)
		return
	}

	c.JSON(http.StatusOK, calendar)
}

// FieldBriefing returns weather alerts and a crop calendar in one call
func (h *Handler) FieldBriefing(c *gin.Context) {
	var req CalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pos, err := req.Position()
	if err != nil {
		h.writeError(c, "field briefing", err)
		return
	}

	briefing, err := h.insights.FieldBriefing(c.Request.Context(), pos, req.Crop, req.PlantingDate)
	if err != nil {
		h.writeError(c, "field briefing", err)
		return
	}

	c.JSON(http.StatusOK, briefing)
}

// parseDay reads an optional YYYY-MM-DD query parameter
func (h *Handler) parseDay(c *gin.Context, name string) (*time.Time, error) {
	value := c.Query(name)
	if value == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation(time.DateOnly, value, h.location)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", service.ErrValidation, name)
	}
	return &day, nil
}

// filteredEntries applies the from/to query parameters
func (h *Handler) filteredEntries(c *gin.Context) ([]models.Entry, error) {
	from, err := h.parseDay(c, "from")
	if err != nil {
		return nil, err
	}
	to, err := h.parseDay(c, "to")
	if err != nil {
		return nil, err
	}
	return h.logbook.Filter(from, to)
}

// ListEntries returns the logbook, optionally limited to a day range
func (h *Handler) ListEntries(c *gin.Context) {
	entries, err := h.filteredEntries(c)
	if err != nil {
		h.writeError(c, "list logbook", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}

func (h *Handler) GetEntry(c *gin.Context) {
	entry, err := h.logbook.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, "get entry", err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) GetTimeline(c *gin.Context) {
	events, err := h.logbook.Timeline(c.Param("id"))
	if err != nil {
		h.writeError(c, "timeline", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *Handler) DeleteEntry(c *gin.Context) {
	if err := h.logbook.Delete(c.Param("id")); err != nil {
		h.writeError(c, "delete entry", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddManualLog(c *gin.Context) {
	var req ManualLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.logbook.AddManualLog(c.Param("id"), req.ActionType, req.Notes)
	if err != nil {
		h.writeError(c, "manual log", err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) AddFollowUp(c *gin.Context) {
	var req ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.logbook.AddFollowUp(c.Request.Context(), c.Param("id"), req.Image)
	if err != nil {
		h.writeError(c, "follow-up", err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GetStats returns logbook statistics
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.logbook.Stats())
}

// ExportCSV exports the logbook as CSV
func (h *Handler) ExportCSV(c *gin.Context) {
	h.export(c, "csv", "text/csv", export.WriteCSV)
}

// ExportJSON exports the logbook as JSON
func (h *Handler) ExportJSON(c *gin.Context) {
	h.export(c, "json", "application/json", export.WriteJSON)
}

// ExportXLSX exports the logbook as an Excel workbook
func (h *Handler) ExportXLSX(c *gin.Context) {
	h.export(c, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.WriteXLSX)
}

func (h *Handler) export(c *gin.Context, ext, contentType string, write func(w io.Writer, entries []models.Entry) error) {
	entries, err := h.filteredEntries(c)
	if err != nil {
		h.writeError(c, "export", err)
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=logbook.%s", ext))

	if err := write(c.Writer, entries); err != nil {
		h.logger.Error("Failed to export logbook", zap.String("format", ext), zap.Error(err))
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "farm-assistant",
		"version": "1.0.0",
	})
}
