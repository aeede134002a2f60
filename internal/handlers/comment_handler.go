package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pronostix/internal/auth"
	"pronostix/internal/models"
	"pronostix/internal/services"
)

// CommentHandler handles comment endpoints
type CommentHandler struct {
	commentService *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CreateComment posts a comment on a prediction
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	predictionID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), predictionID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    comment,
	})
}

// GetComments returns the comment thread of a prediction
func (h *CommentHandler) GetComments(c *gin.Context) {
	predictionID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	comments, err := h.commentService.GetPredictionComments(c.Request.Context(), predictionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    comments,
		"count":   len(comments),
	})
}

// UpdateComment edits a comment's body
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	commentID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	var req models.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.UpdateComment(c.Request.Context(), commentID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    comment,
	})
}

// DeleteComment removes a comment and its replies
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	commentID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	role, _ := auth.GetRole(c)
	if err := h.commentService.DeleteComment(c.Request.Context(), commentID, userID, role == models.RoleAdmin); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Comment deleted",
	})
}
