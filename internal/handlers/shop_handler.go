package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pronostix/internal/auth"
	"pronostix/internal/models"
	"pronostix/internal/services"
)

// ShopHandler handles the cosmetic shop endpoints
type ShopHandler struct {
	shopService *services.ShopService
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(shopService *services.ShopService) *ShopHandler {
	return &ShopHandler{shopService: shopService}
}

// GetItems returns the catalogue
func (h *ShopHandler) GetItems(c *gin.Context) {
	items, err := h.shopService.ListItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"count":   len(items),
	})
}

// CreateItem adds a catalogue item (admin only)
func (h *ShopHandler) CreateItem(c *gin.Context) {
	var req models.CreateShopItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.shopService.CreateItem(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    item,
	})
}

// BuyItem purchases a cosmetic with points
func (h *ShopHandler) BuyItem(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	itemID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	owned, err := h.shopService.BuyItem(c.Request.Context(), userID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    owned,
	})
}

// EquipItem equips an owned cosmetic
func (h *ShopHandler) EquipItem(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	itemID, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	if err := h.shopService.EquipItem(c.Request.Context(), userID, itemID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Item equipped",
	})
}

// GetUserItems returns the caller's cosmetics
func (h *ShopHandler) GetUserItems(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	items, err := h.shopService.GetUserItems(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"count":   len(items),
	})
}
