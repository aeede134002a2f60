package models

import (
	"time"

	"github.com/google/uuid"
)

// Vote represents a user's point wager on one option of a prediction
type Vote struct {
	ID           uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uint        `gorm:"not null;index" json:"user_id"`
	User         *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PredictionID uint        `gorm:"not null;index" json:"prediction_id"`
	Prediction   *Prediction `gorm:"foreignKey:PredictionID" json:"prediction,omitempty"`
	Option       string      `gorm:"size:100;not null" json:"option"`
	Amount       int64       `gorm:"not null;check:amount >= 1" json:"amount"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName specifies the table name for Vote model
func (Vote) TableName() string {
	return "votes"
}

// CreateVoteRequest represents the payload to place a vote
type CreateVoteRequest struct {
	PredictionID uint   `json:"prediction_id" binding:"required"`
	Option       string `json:"option" binding:"required"`
	Amount       int64  `json:"amount" binding:"required,min=1"`
}

// UpsertVoteRequest represents the create-or-update payload keyed by the
// caller-supplied vote id. Absent fields keep their existing values on the
// update path.
type UpsertVoteRequest struct {
	PredictionID *uint   `json:"prediction_id,omitempty"`
	Option       *string `json:"option,omitempty"`
	Amount       *int64  `json:"amount,omitempty"`
}

// VoteResponse is the normalized view of a vote with plain identifier fields
type VoteResponse struct {
	ID           string    `json:"id"`
	UserID       uint      `json:"user_id"`
	PredictionID uint      `json:"prediction_id"`
	Option       string    `json:"option"`
	Amount       int64     `json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToResponse converts a Vote to its normalized representation
func (v *Vote) ToResponse() VoteResponse {
	return VoteResponse{
		ID:           v.ID.String(),
		UserID:       v.UserID,
		PredictionID: v.PredictionID,
		Option:       v.Option,
		Amount:       v.Amount,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}
