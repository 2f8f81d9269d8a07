package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"roadsafety-service/internal/config"
	"roadsafety-service/internal/domain/violation"
	"roadsafety-service/internal/service"
)

type Handler struct {
	violationService *service.ViolationService
	config           *config.Config
	log              zerolog.Logger
}

func NewHandler(
	violationService *service.ViolationService,
	cfg *config.Config,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		violationService: violationService,
		config:           cfg,
		log:              log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	// Public endpoints
	public := r.Group("/api/v1")
	{
		public.POST("/frames/classify", h.classifyFrame)
		public.POST("/videos/summary", h.summarizeVideo)
		public.GET("/violations", h.listViolations)
		public.GET("/vehicles/:plate/offenses", h.getOffenses)
		public.GET("/stats", h.getStats)
	}

	// Confirmation writes offense history; it requires a token.
	protected := r.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.POST("/violations/confirm", h.confirmViolation)
	}
}

func (h *Handler) classifyFrame(c *gin.Context) {
	var payload violation.FramePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.violationService.ClassifyFrame(payload)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) summarizeVideo(c *gin.Context) {
	var batch violation.VideoBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	summary, err := h.violationService.ProcessVideoBatch(c.Request.Context(), batch)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(summary))
}

func (h *Handler) confirmViolation(c *gin.Context) {
	var req violation.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.violationService.ConfirmViolation(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":      "ok",
		"record_id":   result.RecordID,
		"challan_ref": result.ChallanRef,
		"vehicle_no":  result.VehicleNo,
		"fine_amount": result.FineAmount,
	})
}

func (h *Handler) listViolations(c *gin.Context) {
	var vehicleQuery *string
	if v := strings.TrimSpace(c.Query("vehicle")); v != "" {
		vehicleQuery = &v
	}

	var violationType *string
	if t := strings.TrimSpace(c.Query("type")); t != "" {
		violationType = &t
	}

	var from, to *string
	if f := strings.TrimSpace(c.Query("from")); f != "" {
		from = &f
	}
	if t := strings.TrimSpace(c.Query("to")); t != "" {
		to = &t
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := parseInt(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	offset := 0
	if o := c.Query("offset"); o != "" {
		if parsed, err := parseInt(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	records, err := h.violationService.FindViolations(c.Request.Context(), vehicleQuery, violationType, from, to, limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(records))
}

func (h *Handler) getOffenses(c *gin.Context) {
	plateQuery := strings.TrimSpace(c.Param("plate"))
	if plateQuery == "" {
		c.JSON(http.StatusBadRequest, errorResponse("plate parameter is required"))
		return
	}

	normalized, count, err := h.violationService.GetOffenseCount(c.Request.Context(), plateQuery)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{
		"vehicle_no":    normalized,
		"offense_count": count,
	}))
}

func (h *Handler) getStats(c *gin.Context) {
	stats, err := h.violationService.GetStats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(stats))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}
