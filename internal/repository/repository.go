package repository

import (
	"context"

	"pronostix/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository wraps the persistence layer for users, predictions and votes.
// Multi-step mutations run it against a transaction handle via WithTx.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a Repository bound to the given transaction
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// DB exposes the underlying handle for starting transactions
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser persists a new user
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// IncrementUserPoints applies a signed delta to a user's point balance with
// a single atomic update. Returns gorm.ErrRecordNotFound when no row matched.
func (r *Repository) IncrementUserPoints(ctx context.Context, userID uint, delta int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("points", gorm.Expr("points + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetPredictionByID retrieves a prediction by ID
func (r *Repository) GetPredictionByID(ctx context.Context, predictionID uint) (*models.Prediction, error) {
	var prediction models.Prediction
	err := r.db.WithContext(ctx).First(&prediction, predictionID).Error
	if err != nil {
		return nil, err
	}
	return &prediction, nil
}

// GetPredictionForUpdate retrieves a prediction under a row lock. Mutating
// transactions load through this so the deadline/status check and the tally
// read-modify-write cannot race a concurrent vote or settlement; without the
// lock two READ COMMITTED transactions read the same tally snapshot and the
// later write silently drops the earlier increment.
func (r *Repository) GetPredictionForUpdate(ctx context.Context, predictionID uint) (*models.Prediction, error) {
	var prediction models.Prediction
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&prediction, predictionID).Error
	if err != nil {
		return nil, err
	}
	return &prediction, nil
}

// CreatePrediction persists a new prediction
func (r *Repository) CreatePrediction(ctx context.Context, prediction *models.Prediction) error {
	return r.db.WithContext(ctx).Create(prediction).Error
}

// SavePrediction persists all fields of a prediction, including the option
// tallies and status/result transitions.
func (r *Repository) SavePrediction(ctx context.Context, prediction *models.Prediction) error {
	return r.db.WithContext(ctx).Save(prediction).Error
}

// DeletePrediction removes a prediction record
func (r *Repository) DeletePrediction(ctx context.Context, predictionID uint) error {
	return r.db.WithContext(ctx).Delete(&models.Prediction{}, predictionID).Error
}

// AddToOptionTally applies a signed delta to one option tally of a
// prediction. The caller must have loaded the prediction via
// GetPredictionForUpdate inside the same transaction; the row lock is what
// keeps the read-modify-write atomic.
func (r *Repository) AddToOptionTally(ctx context.Context, prediction *models.Prediction, option string, delta int64) error {
	totals, err := prediction.OptionTotals()
	if err != nil {
		return err
	}
	totals[option] += delta
	if err := prediction.SetOptionTotals(totals); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(prediction).
		Update("options", prediction.Options).Error
}

// GetVoteByID retrieves a vote by ID
func (r *Repository) GetVoteByID(ctx context.Context, voteID uuid.UUID) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).Where("id = ?", voteID).First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// GetVotesByPrediction retrieves every vote referencing a prediction
func (r *Repository) GetVotesByPrediction(ctx context.Context, predictionID uint) ([]models.Vote, error) {
	var votes []models.Vote
	err := r.db.WithContext(ctx).
		Where("prediction_id = ?", predictionID).
		Order("created_at ASC").
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

// GetVotesByUser retrieves every vote placed by a user
func (r *Repository) GetVotesByUser(ctx context.Context, userID uint) ([]models.Vote, error) {
	var votes []models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

// SaveVote persists a vote (insert or full update)
func (r *Repository) SaveVote(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Save(vote).Error
}

// DeleteVote removes a vote record
func (r *Repository) DeleteVote(ctx context.Context, voteID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", voteID).Delete(&models.Vote{}).Error
}

// CreateTransaction appends a point transaction journal entry
func (r *Repository) CreateTransaction(ctx context.Context, tx *models.PointTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}
