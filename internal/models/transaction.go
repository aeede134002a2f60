package models

import (
	"time"
)

// Point transaction types
const (
	TransactionTypeSignupBonus        = "signup_bonus"
	TransactionTypeVotePlaced         = "vote_placed"
	TransactionTypeVoteUpdate         = "vote_update"
	TransactionTypeVoteRefund         = "vote_refund"
	TransactionTypePayout             = "payout"
	TransactionTypePurchase           = "purchase"
	TransactionTypeInvalidationRefund = "invalidation_refund"
)

// PointTransaction journals a single change to a user's point balance
type PointTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type        string    `gorm:"size:50;not null;index" json:"type"`
	Amount      int64     `gorm:"not null" json:"amount"` // signed delta in points
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for PointTransaction model
func (PointTransaction) TableName() string {
	return "point_transactions"
}
