package handler

import (
	"net/http"

	"github.com/ergosit/posture-auth/internal/dto"
	"github.com/ergosit/posture-auth/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DetectionHandler stores posture detections. Devices post with an API key
// and name the user; apps post with a bearer token for themselves.
type DetectionHandler struct {
	detectionService service.DetectionService
	logger           *zap.Logger
}

func NewDetectionHandler(detectionService service.DetectionService, logger *zap.Logger) *DetectionHandler {
	return &DetectionHandler{detectionService: detectionService, logger: logger}
}

// Create records a detection.
// @Summary Record a posture detection
// @Tags detections
// @Security BearerAuth
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.DetectionRequest true "Detection"
// @Success 201 {object} dto.DetectionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /detections [post]
func (h *DetectionHandler) Create(c *gin.Context) {
	var req dto.DetectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	userID := currentUserID(c)
	if c.GetString(ctxAuthSource) == string(service.SourceAPIKey) {
		if req.UserID == "" {
			respondError(c, h.logger, &service.ValidationError{Fields: map[string]string{"user_id": "is required"}})
			return
		}
		userID = req.UserID
	}

	detection, err := h.detectionService.Record(c.Request.Context(), userID, req.Posture, *req.Angle)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewDetectionResponse(detection))
}

func (h *DetectionHandler) List(c *gin.Context) {
	detections, err := h.detectionService.History(c.Request.Context(), currentUserID(c), queryLimit(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewDetectionList(detections))
}

func (h *DetectionHandler) Clear(c *gin.Context) {
	deleted, err := h.detectionService.Clear(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.DeletedResponse{
		Message: "Detection history cleared",
		Deleted: deleted,
	})
}
