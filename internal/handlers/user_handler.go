package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pronostix/internal/auth"
	"pronostix/internal/services"
)

// UserHandler handles user-related endpoints
type UserHandler struct {
	userService   *services.UserService
	ledgerService *services.LedgerService
	shopService   *services.ShopService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService, ledgerService *services.LedgerService, shopService *services.ShopService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		ledgerService: ledgerService,
		shopService:   shopService,
	}
}

// GetProfile returns the current user's profile with equipped cosmetics
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	items, err := h.shopService.GetUserItems(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user.ToResponse(),
		"items":   items,
	})
}

// GetTransactions returns the current user's point transaction journal
func (h *UserHandler) GetTransactions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.ledgerService.GetTransactions(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
		"count":   len(entries),
	})
}

// GetLeaderboard returns users ranked by points
func (h *UserHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, err := h.userService.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
		"count":   len(users),
	})
}

// PromoteToAdmin grants admin rights to a user (admin only)
func (h *UserHandler) PromoteToAdmin(c *gin.Context) {
	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.PromoteToAdmin(c.Request.Context(), req.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User promoted to admin",
	})
}
