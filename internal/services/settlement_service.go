package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pronostix/internal/models"
	"pronostix/internal/repository"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SettlementService resolves predictions pari-mutuel: the full pool is
// redistributed to winning voters proportionally to their stakes. The mutex
// serializes settlements so two admins cannot resolve concurrently.
type SettlementService struct {
	db     *gorm.DB
	repo   *repository.Repository
	ledger *LedgerService
	mu     sync.Mutex
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(db *gorm.DB) *SettlementService {
	repo := repository.NewRepository(db)
	return &SettlementService{
		db:     db,
		repo:   repo,
		ledger: NewLedgerService(repo),
	}
}

// Validate resolves a prediction by declaring winningOption the result and
// crediting every winning voter floor(amount * totalPoints/winningPoints)
// points. The transition waiting -> valid is terminal and happens exactly
// once. Residual points lost to flooring are not redistributed.
func (s *SettlementService) Validate(ctx context.Context, predictionID uint, winningOption string) (*models.SettlementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result models.SettlementResult

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

		if prediction.Status != models.PredictionStatusWaiting || prediction.Result != nil {
			return ErrPredictionResolved
		}

		totals, err := prediction.OptionTotals()
		if err != nil {
			return fmt.Errorf("failed to decode option totals: %w", err)
		}

		winningPoints, ok := totals[winningOption]
		if !ok {
			return ErrInvalidOption
		}
		if winningPoints == 0 {
			return ErrNoStakeOnWinner
		}

		var totalPoints int64
		for _, points := range totals {
			totalPoints += points
		}

		ratio := decimal.NewFromInt(totalPoints).Div(decimal.NewFromInt(winningPoints))

		votes, err := txRepo.GetVotesByPrediction(ctx, predictionID)
		if err != nil {
			return fmt.Errorf("failed to load votes: %w", err)
		}

		rewards := make([]models.Reward, 0)
		for _, vote := range votes {
			if vote.Option != winningOption {
				continue
			}
			gain := decimal.NewFromInt(vote.Amount).Mul(ratio).Floor().IntPart()
			if err := txLedger.AdjustBalance(ctx, vote.UserID, gain, models.TransactionTypePayout,
				fmt.Sprintf("Payout for prediction %d (%s)", predictionID, winningOption)); err != nil {
				return err
			}
			rewards = append(rewards, models.Reward{UserID: vote.UserID, Gain: gain})
		}

		now := time.Now()
		prediction.Status = models.PredictionStatusValid
		prediction.Result = &winningOption
		prediction.ResolvedAt = &now
		if err := txRepo.SavePrediction(ctx, prediction); err != nil {
			return fmt.Errorf("failed to persist resolution: %w", err)
		}

		result = models.SettlementResult{
			PredictionID:  predictionID,
			WinningOption: winningOption,
			Ratio:         ratio.InexactFloat64(),
			TotalPoints:   totalPoints,
			WinningPoints: winningPoints,
			Rewards:       rewards,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"prediction_id":  predictionID,
		"winning_option": winningOption,
		"ratio":          result.Ratio,
		"winners":        len(result.Rewards),
	}).Info("prediction settled")

	return &result, nil
}

// Invalidate cancels a waiting prediction administratively: every live stake
// is refunded at face value and the prediction transitions to invalid.
func (s *SettlementService) Invalidate(ctx context.Context, predictionID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

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

		if prediction.Status != models.PredictionStatusWaiting {
			return ErrPredictionResolved
		}

		votes, err := txRepo.GetVotesByPrediction(ctx, predictionID)
		if err != nil {
			return fmt.Errorf("failed to load votes: %w", err)
		}

		for _, vote := range votes {
			if err := txLedger.AdjustBalance(ctx, vote.UserID, vote.Amount, models.TransactionTypeInvalidationRefund,
				fmt.Sprintf("Refund for invalidated prediction %d", predictionID)); err != nil {
				return err
			}
		}

		now := time.Now()
		prediction.Status = models.PredictionStatusInvalid
		prediction.ResolvedAt = &now
		if err := txRepo.SavePrediction(ctx, prediction); err != nil {
			return fmt.Errorf("failed to persist invalidation: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.WithField("prediction_id", predictionID).Info("prediction invalidated")
	return nil
}
