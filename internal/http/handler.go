package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/amana-asso/delivery-service/internal/service"
)

type Handler struct {
	assignments *service.AssignmentService
	status      *service.StatusService
	notifier    *service.NotificationService
	exporter    *service.ExportService
	sectors     *service.SectorService
	log         zerolog.Logger
}

func NewHandler(assignments *service.AssignmentService, status *service.StatusService, notifier *service.NotificationService, exporter *service.ExportService, sectors *service.SectorService, log zerolog.Logger) *Handler {
	return &Handler{
		assignments: assignments,
		status:      status,
		notifier:    notifier,
		exporter:    exporter,
		sectors:     sectors,
		log:         log,
	}
}

func (h *Handler) Register(router *gin.Engine, sharedToken, authMiddleware gin.HandlerFunc) {
	// Public status API: the contract QR codes and printed links
	// depend on. Works over GET and POST.
	api := router.Group("/api")
	api.Use(sharedToken)
	api.GET("", h.handleStatusAPI)
	api.POST("", h.handleStatusAPI)

	protected := router.Group("/deliveries")
	protected.Use(authMiddleware)
	protected.POST("/assign", h.assignDeliveries)
	protected.POST("/notify", h.notifyDrivers)
	protected.GET("/inventory", h.inventoryNeeds)
	protected.POST("/export", h.exportWorkbook)
	protected.POST("/export/pdf", h.exportPDF)
	protected.POST("/sectors/resolve", h.resolveSectors)
}

// ---- public status API ----

func (h *Handler) handleStatusAPI(c *gin.Context) {
	switch param(c, "action", "a") {
	case "update_status":
		h.updateDeliveryStatus(c)
	case "get_status":
		h.getDeliveryStatus(c)
	case "batch_update":
		h.batchUpdateStatus(c)
	default:
		h.apiJSON(c, http.StatusBadRequest, gin.H{"success": false, "error": "unknown action"})
	}
}

func (h *Handler) updateDeliveryStatus(c *gin.Context) {
	familyID, _ := strconv.ParseInt(param(c, "family_id", "fid"), 10, 64)
	occasion := param(c, "occasion", "occ")
	dateRaw := param(c, "date", "d")
	status := param(c, "status", "s")

	if familyID == 0 || occasion == "" || dateRaw == "" || status == "" {
		h.apiJSON(c, http.StatusBadRequest, gin.H{"success": false, "error": "missing parameters"})
		return
	}
	if !service.ValidStatus(status) {
		h.apiJSON(c, http.StatusBadRequest, gin.H{"success": false, "error": "invalid status"})
		return
	}

	date, err := time.Parse("2006-01-02", dateRaw)
	if err != nil {
		h.apiJSON(c, http.StatusBadRequest, gin.H{"success": false, "error": "invalid date"})
		return
	}

	if err := h.status.UpdateStatus(c.Request.Context(), familyID, occasion, date, status); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.apiJSON(c, http.StatusNotFound, gin.H{"success": false, "error": "delivery not found"})
			return
		}
		h.log.Error().Err(err).Msg("status update failed")
		h.apiJSON(c, http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
		return
	}

	h.apiJSON(c, http.StatusOK, gin.H{
		"success": true,
		"message": "status updated",
		"data": gin.H{
			"family_id":  familyID,
			"occasion":   occasion,
			"date":       dateRaw,
			"status":     status,
			"updated_at": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (h *Handler) getDeliveryStatus(c *gin.Context) {
	familyID, _ := strconv.ParseInt(param(c, "family_id", "fid"), 10, 64)
	occasion := param(c, "occasion", "occ")
	dateRaw := param(c, "date", "d")

	if familyID == 0 || occasion == "" || dateRaw == "" {
		h.apiJSON(c, http.StatusBadRequest, gin.H{"success": false, "error": "missing parameters"})
		return
	}

	date, err := time.Parse("2006-01-02", dateRaw)
	if err != nil {
		h.apiJSON(c, http.StatusBadRequest, gin.H{"success": false, "error": "invalid date"})
		return
	}

	view, err := h.status.GetStatus(c.Request.Context(), familyID, occasion, date)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.apiJSON(c, http.StatusNotFound, gin.H{"success": false, "error": "delivery not found"})
			return
		}
		h.log.Error().Err(err).Msg("status lookup failed")
		h.apiJSON(c, http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
		return
	}

	h.apiJSON(c, http.StatusOK, gin.H{"success": true, "data": view})
}

type batchUpdateRequest struct {
	Updates []service.StatusUpdate `json:"updates" binding:"required"`
}

func (h *Handler) batchUpdateStatus(c *gin.Context) {
	var req batchUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Updates) == 0 {
		h.apiJSON(c, http.StatusBadRequest, gin.H{"success": false, "error": "array \"updates\" required"})
		return
	}

	results := h.status.BatchUpdate(c.Request.Context(), req.Updates)
	h.apiJSON(c, http.StatusOK, gin.H{"success": true, "results": results})
}

// ---- admin API ----

type assignRequest struct {
	Occasion             string `json:"occasion" binding:"required"`
	Date                 string `json:"date" binding:"required"`
	MaxFamiliesPerDriver int    `json:"max_families_per_driver"`
}

func (h *Handler) assignDeliveries(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	result, err := h.assignments.AssignDeliveries(c.Request.Context(), req.Occasion, date, req.MaxFamiliesPerDriver)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

type notifyRequest struct {
	Occasion string `json:"occasion" binding:"required"`
	Date     string `json:"date" binding:"required"`
	DriverID *int64 `json:"driver_id"`
}

func (h *Handler) notifyDrivers(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	if req.DriverID != nil {
		if err := h.notifier.NotifyDriver(c.Request.Context(), *req.DriverID, req.Occasion, date); err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	result, err := h.notifier.NotifyAllDrivers(c.Request.Context(), req.Occasion, date)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "results": result})
}

func (h *Handler) inventoryNeeds(c *gin.Context) {
	occasion := c.Query("occasion")
	date, err := parseDate(c.Query("date"))
	if occasion == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "occasion and date are required"})
		return
	}

	needs, err := h.assignments.InventoryNeeds(c.Request.Context(), occasion, date)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_families":     needs.TotalFamilies,
		"total_parts":        needs.TotalParts,
		"total_toy_kits":     needs.TotalToyKits,
		"total_hygiene_kits": needs.TotalHygieneKits,
	})
}

type exportRequest struct {
	Occasion string `json:"occasion" binding:"required"`
	Date     string `json:"date" binding:"required"`
}

func (h *Handler) exportWorkbook(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	result, err := h.exporter.ExportWorkbook(c.Request.Context(), req.Occasion, date)
	if err != nil {
		h.handleError(c, err)
		return
	}

	const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, mimeXLSX, result.Content)
}

func (h *Handler) exportPDF(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	result, err := h.exporter.ExportPDF(c.Request.Context(), req.Occasion, date)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) resolveSectors(c *gin.Context) {
	result, err := h.sectors.ResolveMissingSectors(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoDriversAvailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// apiJSON writes the status-API envelope. Non-200 responses echo the
// code in the body; link-following clients cannot always read the
// real status line.
func (h *Handler) apiJSON(c *gin.Context, status int, payload gin.H) {
	if status != http.StatusOK {
		payload["http_status"] = status
	}
	c.JSON(status, payload)
}

func param(c *gin.Context, name, alias string) string {
	value := c.Query(name)
	if value == "" {
		value = c.Query(alias)
	}
	if value == "" {
		value = c.PostForm(name)
	}
	if value == "" {
		value = c.PostForm(alias)
	}
	return strings.TrimSpace(value)
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			y, m, d := parsed.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
