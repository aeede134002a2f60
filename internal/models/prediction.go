package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Prediction statuses
const (
	PredictionStatusWaiting = "waiting"
	PredictionStatusValid   = "valid"
	PredictionStatusInvalid = "invalid"
)

// Prediction represents a crowd-created prediction users wager points on.
// Options holds the accumulated point total per outcome as a JSONB map;
// the key set is fixed at creation time.
type Prediction struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:500;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	AuthorID    uint           `gorm:"index;not null" json:"author_id"`
	Author      *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Deadline    time.Time      `gorm:"not null" json:"deadline"`
	Status      string         `gorm:"size:20;not null;default:waiting;index" json:"status"`
	Options     datatypes.JSON `gorm:"type:jsonb;not null" json:"options"`
	Result      *string        `gorm:"size:100" json:"result,omitempty"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName specifies the table name for Prediction model
func (Prediction) TableName() string {
	return "predictions"
}

// OptionTotals decodes the Options column into a map of option name to
// accumulated points.
func (p *Prediction) OptionTotals() (map[string]int64, error) {
	totals := make(map[string]int64)
	if len(p.Options) == 0 {
		return totals, nil
	}
	if err := json.Unmarshal(p.Options, &totals); err != nil {
		return nil, err
	}
	return totals, nil
}

// SetOptionTotals encodes the given map into the Options column.
func (p *Prediction) SetOptionTotals(totals map[string]int64) error {
	raw, err := json.Marshal(totals)
	if err != nil {
		return err
	}
	p.Options = datatypes.JSON(raw)
	return nil
}

// IsOpen reports whether the prediction still accepts vote mutations
func (p *Prediction) IsOpen(now time.Time) bool {
	return p.Status == PredictionStatusWaiting && p.Result == nil && now.Before(p.Deadline)
}

// CreatePredictionRequest represents the payload to create a prediction
type CreatePredictionRequest struct {
	Title       string    `json:"title" binding:"required,max=500"`
	Description string    `json:"description"`
	Options     []string  `json:"options" binding:"required,min=2"`
	Deadline    time.Time `json:"deadline" binding:"required"`
}

// UpdatePredictionRequest represents the author's partial update payload
type UpdatePredictionRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}
