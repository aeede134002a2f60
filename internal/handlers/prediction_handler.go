package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pronostix/internal/auth"
	"pronostix/internal/models"
	"pronostix/internal/services"
)

// PredictionHandler handles prediction endpoints including settlement
type PredictionHandler struct {
	predictionService *services.PredictionService
	settlementService *services.SettlementService
}

// NewPredictionHandler creates a new PredictionHandler
func NewPredictionHandler(predictionService *services.PredictionService, settlementService *services.SettlementService) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
		settlementService: settlementService,
	}
}

// GetPredictions returns predictions with optional filtering
func (h *PredictionHandler) GetPredictions(c *gin.Context) {
	status := c.Query("status")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	authorID, _ := strconv.Atoi(c.DefaultQuery("author_id", "0"))

	predictions, err := h.predictionService.ListPredictions(c.Request.Context(), status, uint(authorID), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    predictions,
		"count":   len(predictions),
	})
}

// GetPredictionByID returns a specific prediction
func (h *PredictionHandler) GetPredictionByID(c *gin.Context) {
	predictionID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	prediction, err := h.predictionService.GetPrediction(c.Request.Context(), predictionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    prediction,
	})
}

// CreatePrediction creates a new prediction
func (h *PredictionHandler) CreatePrediction(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreatePredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prediction, err := h.predictionService.CreatePrediction(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    prediction,
	})
}

// UpdatePrediction applies the author's partial edit
func (h *PredictionHandler) UpdatePrediction(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	predictionID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	var req models.UpdatePredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, _ := auth.GetRole(c)
	prediction, err := h.predictionService.UpdatePrediction(c.Request.Context(), predictionID, userID, role == models.RoleAdmin, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    prediction,
	})
}

// DeletePrediction removes an unsettled prediction, refunding all stakes
func (h *PredictionHandler) DeletePrediction(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	predictionID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	role, _ := auth.GetRole(c)
	if err := h.predictionService.DeletePrediction(c.Request.Context(), predictionID, userID, role == models.RoleAdmin); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Prediction deleted",
	})
}

// ValidatePrediction settles a prediction with a winning option. Only the
// author or an admin may settle.
func (h *PredictionHandler) ValidatePrediction(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	predictionID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	var req struct {
		WinningOption string `json:"winning_option" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prediction, err := h.predictionService.GetPrediction(c.Request.Context(), predictionID)
	if err != nil {
		respondError(c, err)
		return
	}

	role, _ := auth.GetRole(c)
	if prediction.AuthorID != userID && role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author or an admin can settle a prediction"})
		return
	}

	result, err := h.settlementService.Validate(c.Request.Context(), predictionID, req.WinningOption)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// InvalidatePrediction cancels a prediction and refunds all stakes (admin only)
func (h *PredictionHandler) InvalidatePrediction(c *gin.Context) {
	predictionID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	if err := h.settlementService.Invalidate(c.Request.Context(), predictionID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Prediction invalidated, stakes refunded",
	})
}

// parseUintParam parses a numeric path parameter, writing a 400 on failure
func parseUintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, err
	}
	return uint(value), nil
}
