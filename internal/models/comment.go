package models

import (
	"time"
)

// Comment represents a threaded comment under a prediction
type Comment struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	PredictionID uint       `gorm:"not null;index" json:"prediction_id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	User         *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ParentID     *uint      `gorm:"index" json:"parent_id,omitempty"`
	Body         string     `gorm:"type:text;not null" json:"body"`
	Replies      []Comment  `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Comment model
func (Comment) TableName() string {
	return "comments"
}

// CreateCommentRequest represents the payload to post a comment
type CreateCommentRequest struct {
	Body     string `json:"body" binding:"required"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

// UpdateCommentRequest represents the payload to edit a comment
type UpdateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}
