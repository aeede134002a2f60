package models

import (
	"time"
)

// Shop item categories
const (
	ItemCategoryAvatarFrame   = "avatar_frame"
	ItemCategoryUsernameColor = "username_color"
	ItemCategoryBadge         = "badge"
)

// ShopItem represents a cosmetic customization purchasable with points
type ShopItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Category  string    `gorm:"size:50;not null;index" json:"category"`
	Price     int64     `gorm:"not null;check:price >= 0" json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for ShopItem model
func (ShopItem) TableName() string {
	return "shop_items"
}

// UserItem represents a cosmetic owned by a user
type UserItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_user_item,unique" json:"user_id"`
	ItemID    uint      `gorm:"not null;index:idx_user_item,unique" json:"item_id"`
	Item      *ShopItem `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Equipped  bool      `gorm:"not null;default:false" json:"equipped"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for UserItem model
func (UserItem) TableName() string {
	return "user_items"
}

// CreateShopItemRequest represents the admin payload to add a catalogue item
type CreateShopItemRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Category string `json:"category" binding:"required,oneof=avatar_frame username_color badge"`
	Price    int64  `json:"price" binding:"required,min=0"`
}
