package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pronostix/internal/auth"
	"pronostix/internal/models"
	"pronostix/internal/services"
)

// VoteHandler handles vote endpoints
type VoteHandler struct {
	voteService *services.VoteService
}

// NewVoteHandler creates a new VoteHandler
func NewVoteHandler(voteService *services.VoteService) *VoteHandler {
	return &VoteHandler{voteService: voteService}
}

// CreateVote places a new wager
func (h *VoteHandler) CreateVote(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vote, err := h.voteService.CreateVote(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    vote,
	})
}

// UpsertVote creates or updates a vote under the caller-supplied id
func (h *VoteHandler) UpsertVote(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vote id"})
		return
	}

	var req models.UpsertVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vote, err := h.voteService.UpsertVote(c.Request.Context(), voteID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    vote,
	})
}

// DeleteVote removes a vote and refunds its stake. A missing vote is not an
// error; the response reports found=false.
func (h *VoteHandler) DeleteVote(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vote id"})
		return
	}

	role, _ := auth.GetRole(c)
	vote, err := h.voteService.DeleteVote(c.Request.Context(), voteID, userID, role == models.RoleAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	if vote == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"found":   false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"found":   true,
		"data":    vote,
	})
}

// GetMyVotes returns the caller's votes
func (h *VoteHandler) GetMyVotes(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	votes, err := h.voteService.GetUserVotes(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    votes,
		"count":   len(votes),
	})
}

// GetPredictionVotes returns every vote on a prediction
func (h *VoteHandler) GetPredictionVotes(c *gin.Context) {
	predictionID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	votes, err := h.voteService.GetPredictionVotes(c.Request.Context(), predictionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    votes,
		"count":   len(votes),
	})
}
