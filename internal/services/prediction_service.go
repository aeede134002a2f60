package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pronostix/internal/models"
	"pronostix/internal/repository"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PredictionService handles prediction CRUD. The option key set is fixed at
// creation and never grows; votes referencing unknown keys are rejected at
// the vote boundary.
type PredictionService struct {
	db     *gorm.DB
	repo   *repository.Repository
	ledger *LedgerService
}

// NewPredictionService creates a new PredictionService
func NewPredictionService(db *gorm.DB) *PredictionService {
	repo := repository.NewRepository(db)
	return &PredictionService{
		db:     db,
		repo:   repo,
		ledger: NewLedgerService(repo),
	}
}

// CreatePrediction creates a prediction with a closed set of at least two
// options, all tallies starting at zero.
func (s *PredictionService) CreatePrediction(ctx context.Context, authorID uint, req *models.CreatePredictionRequest) (*models.Prediction, error) {
	if len(req.Options) < 2 {
		return nil, ErrNotEnoughOptions
	}
	if !req.Deadline.After(time.Now()) {
		return nil, ErrDeadlineInPast
	}

	totals := make(map[string]int64, len(req.Options))
	for _, option := range req.Options {
		if option == "" {
			return nil, ErrInvalidOption
		}
		if _, exists := totals[option]; exists {
			return nil, ErrDuplicateOption
		}
		totals[option] = 0
	}

	prediction := &models.Prediction{
		Title:       req.Title,
		Description: req.Description,
		AuthorID:    authorID,
		Deadline:    req.Deadline,
		Status:      models.PredictionStatusWaiting,
	}
	if err := prediction.SetOptionTotals(totals); err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	if err := s.repo.CreatePrediction(ctx, prediction); err != nil {
		return nil, fmt.Errorf("failed to create prediction: %w", err)
	}

	log.WithFields(log.Fields{
		"prediction_id": prediction.ID,
		"author_id":     authorID,
		"options":       len(totals),
	}).Info("prediction created")

	return prediction, nil
}

// GetPrediction returns a prediction by id
func (s *PredictionService) GetPrediction(ctx context.Context, predictionID uint) (*models.Prediction, error) {
	prediction, err := s.repo.GetPredictionByID(ctx, predictionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPredictionNotFound
		}
		return nil, fmt.Errorf("failed to load prediction: %w", err)
	}
	return prediction, nil
}

// ListPredictions returns predictions filtered by status and author
func (s *PredictionService) ListPredictions(ctx context.Context, status string, authorID uint, limit, offset int) ([]models.Prediction, error) {
	var predictions []models.Prediction
	query := s.db.WithContext(ctx).Model(&models.Prediction{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if authorID != 0 {
		query = query.Where("author_id = ?", authorID)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&predictions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch predictions: %w", err)
	}
	return predictions, nil
}

// UpdatePrediction applies the author's partial edit while the prediction is
// still waiting. The option set is immutable.
func (s *PredictionService) UpdatePrediction(ctx context.Context, predictionID, userID uint, isAdmin bool, req *models.UpdatePredictionRequest) (*models.Prediction, error) {
	prediction, err := s.GetPrediction(ctx, predictionID)
	if err != nil {
		return nil, err
	}

	if prediction.AuthorID != userID && !isAdmin {
		return nil, ErrNotOwner
	}
	if prediction.Status != models.PredictionStatusWaiting {
		return nil, ErrPredictionResolved
	}

	if req.Title != nil {
		prediction.Title = *req.Title
	}
	if req.Description != nil {
		prediction.Description = *req.Description
	}
	if req.Deadline != nil {
		if !req.Deadline.After(time.Now()) {
			return nil, ErrDeadlineInPast
		}
		prediction.Deadline = *req.Deadline
	}

	if err := s.repo.SavePrediction(ctx, prediction); err != nil {
		return nil, fmt.Errorf("failed to update prediction: %w", err)
	}
	return prediction, nil
}

// DeletePrediction removes a still-unsettled prediction with its votes and
// comments, refunding every stake. All steps run in one transaction; any
// failed compensating step aborts the whole deletion.
func (s *PredictionService) DeletePrediction(ctx context.Context, predictionID, userID uint, isAdmin bool) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txLedger := s.ledger.WithTx(tx)

		prediction, err := txRepo.GetPredictionForUpdate(ctx, predictionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPredictionNotFound
			}
			return fmt.Errorf("failed to load prediction: %w", err)
		}

		if prediction.AuthorID != userID && !isAdmin {
			return ErrNotOwner
		}
		if prediction.Status != models.PredictionStatusWaiting {
			return ErrPredictionResolved
		}

		votes, err := txRepo.GetVotesByPrediction(ctx, predictionID)
		if err != nil {
			return fmt.Errorf("failed to load votes: %w", err)
		}

		for _, vote := range votes {
			if err := txLedger.AdjustBalance(ctx, vote.UserID, vote.Amount, models.TransactionTypeVoteRefund,
				fmt.Sprintf("Refund for deleted prediction %d", predictionID)); err != nil {
				return err
			}
			if err := txRepo.DeleteVote(ctx, vote.ID); err != nil {
				return fmt.Errorf("failed to delete vote %s: %w", vote.ID, err)
			}
		}

		if err := tx.WithContext(ctx).
			Where("prediction_id = ?", predictionID).
			Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}

		if err := txRepo.DeletePrediction(ctx, predictionID); err != nil {
			return fmt.Errorf("failed to delete prediction: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.WithField("prediction_id", predictionID).Info("prediction deleted")
	return nil
}
