package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pronostix/internal/models"
	"pronostix/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// VoteService handles the vote lifecycle: create, create-or-update and
// delete. Every multi-step mutation (vote record, user balance, option
// tally) runs inside a single database transaction so the ledger and the
// tallies cannot drift apart.
type VoteService struct {
	db     *gorm.DB
	repo   *repository.Repository
	ledger *LedgerService
}

// NewVoteService creates a new VoteService
func NewVoteService(db *gorm.DB) *VoteService {
	repo := repository.NewRepository(db)
	return &VoteService{
		db:     db,
		repo:   repo,
		ledger: NewLedgerService(repo),
	}
}

// CreateVote places a new wager for the user.
//
// Preconditions: the user and prediction exist, the prediction is still
// open, the option is one of the prediction's keys, amount >= 1 and the
// user's balance covers it.
func (s *VoteService) CreateVote(ctx context.Context, userID uint, req *models.CreateVoteRequest) (*models.VoteResponse, error) {
	if req.Amount < 1 {
		return nil, ErrInvalidAmount
	}

	var created models.Vote
	err := s.db.Transaction(func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txLedger := s.ledger.WithTx(tx)

		user, err := txRepo.GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to load user: %w", err)
		}

		prediction, err := txRepo.GetPredictionForUpdate(ctx, req.PredictionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPredictionNotFound
			}
			return fmt.Errorf("failed to load prediction: %w", err)
		}

		if !prediction.IsOpen(time.Now()) {
			return ErrPredictionClosed
		}

		totals, err := prediction.OptionTotals()
		if err != nil {
			return fmt.Errorf("failed to decode option totals: %w", err)
		}
		if _, ok := totals[req.Option]; !ok {
			return ErrInvalidOption
		}

		if user.Points < req.Amount {
			return ErrInsufficientPoints
		}

		created = models.Vote{
			ID:           uuid.New(),
			UserID:       userID,
			PredictionID: req.PredictionID,
			Option:       req.Option,
			Amount:       req.Amount,
		}
		if err := txRepo.SaveVote(ctx, &created); err != nil {
			return fmt.Errorf("failed to save vote: %w", err)
		}

		if err := txLedger.AdjustBalance(ctx, userID, -req.Amount, models.TransactionTypeVotePlaced,
			fmt.Sprintf("Vote on prediction %d (%s)", req.PredictionID, req.Option)); err != nil {
			return err
		}

		if err := txRepo.AddToOptionTally(ctx, prediction, req.Option, req.Amount); err != nil {
			return fmt.Errorf("failed to update option tally: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"vote_id":       created.ID,
		"user_id":       userID,
		"prediction_id": req.PredictionID,
		"option":        req.Option,
		"amount":        req.Amount,
	}).Info("vote created")

	resp := created.ToResponse()
	return &resp, nil
}

// UpsertVote creates or updates a vote under the caller-supplied id.
//
// On update, fields absent from the request keep their existing values and
// the user is debited only the delta between the new and old amount; the
// stake is moved between option tallies when the option changes. A vote
// never moves to another prediction: a mismatched prediction_id is rejected
// rather than ignored. On create, the behavior matches CreateVote with the
// supplied id.
func (s *VoteService) UpsertVote(ctx context.Context, voteID uuid.UUID, userID uint, req *models.UpsertVoteRequest) (*models.VoteResponse, error) {
	var saved models.Vote
	err := s.db.Transaction(func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txLedger := s.ledger.WithTx(tx)

		existing, err := txRepo.GetVoteByID(ctx, voteID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load vote: %w", err)
		}

		if existing == nil {
			return s.insertWithID(ctx, txRepo, txLedger, voteID, userID, req, &saved)
		}

		if existing.UserID != userID {
			return ErrNotOwner
		}

		if req.PredictionID != nil && *req.PredictionID != existing.PredictionID {
			return ErrPredictionMismatch
		}

		prediction, err := txRepo.GetPredictionForUpdate(ctx, existing.PredictionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPredictionNotFound
			}
			return fmt.Errorf("failed to load prediction: %w", err)
		}
		if !prediction.IsOpen(time.Now()) {
			return ErrPredictionClosed
		}

		totals, err := prediction.OptionTotals()
		if err != nil {
			return fmt.Errorf("failed to decode option totals: %w", err)
		}

		oldAmount := existing.Amount
		oldOption := existing.Option

		newAmount := oldAmount
		if req.Amount != nil {
			newAmount = *req.Amount
		}
		if newAmount < 1 {
			return ErrInvalidAmount
		}

		newOption := oldOption
		if req.Option != nil {
			newOption = *req.Option
		}
		if _, ok := totals[newOption]; !ok {
			return ErrInvalidOption
		}

		delta := newAmount - oldAmount
		if delta > 0 {
			user, err := txRepo.GetUserByID(ctx, userID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrUserNotFound
				}
				return fmt.Errorf("failed to load user: %w", err)
			}
			if user.Points < delta {
				return ErrInsufficientPoints
			}
		}

		existing.Amount = newAmount
		existing.Option = newOption
		if err := txRepo.SaveVote(ctx, existing); err != nil {
			return fmt.Errorf("failed to save vote: %w", err)
		}

		if delta != 0 {
			if err := txLedger.AdjustBalance(ctx, userID, -delta, models.TransactionTypeVoteUpdate,
				fmt.Sprintf("Vote %s updated on prediction %d", voteID, existing.PredictionID)); err != nil {
				return err
			}
		}

		// Move the stake between tallies: remove the old stake, add the new
		if newOption != oldOption {
			if err := txRepo.AddToOptionTally(ctx, prediction, oldOption, -oldAmount); err != nil {
				return fmt.Errorf("failed to update option tally: %w", err)
			}
			if err := txRepo.AddToOptionTally(ctx, prediction, newOption, newAmount); err != nil {
				return fmt.Errorf("failed to update option tally: %w", err)
			}
		} else if delta != 0 {
			if err := txRepo.AddToOptionTally(ctx, prediction, newOption, delta); err != nil {
				return fmt.Errorf("failed to update option tally: %w", err)
			}
		}

		saved = *existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"vote_id": voteID,
		"user_id": userID,
	}).Info("vote upserted")

	resp := saved.ToResponse()
	return &resp, nil
}

// insertWithID is the create branch of UpsertVote: a brand-new vote stored
// under the caller-supplied id.
func (s *VoteService) insertWithID(ctx context.Context, txRepo *repository.Repository, txLedger *LedgerService, voteID uuid.UUID, userID uint, req *models.UpsertVoteRequest, out *models.Vote) error {
	if req.PredictionID == nil {
		return ErrPredictionNotFound
	}
	if req.Option == nil {
		return ErrInvalidOption
	}
	if req.Amount == nil || *req.Amount < 1 {
		return ErrInvalidAmount
	}

	user, err := txRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	prediction, err := txRepo.GetPredictionForUpdate(ctx, *req.PredictionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPredictionNotFound
		}
		return fmt.Errorf("failed to load prediction: %w", err)
	}
	if !prediction.IsOpen(time.Now()) {
		return ErrPredictionClosed
	}

	totals, err := prediction.OptionTotals()
	if err != nil {
		return fmt.Errorf("failed to decode option totals: %w", err)
	}
	if _, ok := totals[*req.Option]; !ok {
		return ErrInvalidOption
	}

	if user.Points < *req.Amount {
		return ErrInsufficientPoints
	}

	vote := models.Vote{
		ID:           voteID,
		UserID:       userID,
		PredictionID: *req.PredictionID,
		Option:       *req.Option,
		Amount:       *req.Amount,
	}
	if err := txRepo.SaveVote(ctx, &vote); err != nil {
		return fmt.Errorf("failed to save vote: %w", err)
	}

	if err := txLedger.AdjustBalance(ctx, userID, -*req.Amount, models.TransactionTypeVotePlaced,
		fmt.Sprintf("Vote on prediction %d (%s)", *req.PredictionID, *req.Option)); err != nil {
		return err
	}

	if err := txRepo.AddToOptionTally(ctx, prediction, *req.Option, *req.Amount); err != nil {
		return fmt.Errorf("failed to update option tally: %w", err)
	}

	*out = vote
	return nil
}

// DeleteVote removes a vote, credits the owner's balance back and decrements
// the option tally. Returns (nil, nil) when no vote exists under id.
func (s *VoteService) DeleteVote(ctx context.Context, voteID uuid.UUID, userID uint, isAdmin bool) (*models.VoteResponse, error) {
	var deleted models.Vote
	found := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txLedger := s.ledger.WithTx(tx)

		vote, err := txRepo.GetVoteByID(ctx, voteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // absent vote is not an error on delete
			}
			return fmt.Errorf("failed to load vote: %w", err)
		}

		if vote.UserID != userID && !isAdmin {
			return ErrNotOwner
		}

		prediction, err := txRepo.GetPredictionForUpdate(ctx, vote.PredictionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPredictionNotFound
			}
			return fmt.Errorf("failed to load prediction: %w", err)
		}
		if !prediction.IsOpen(time.Now()) {
			return ErrPredictionClosed
		}

		if err := txRepo.DeleteVote(ctx, voteID); err != nil {
			return fmt.Errorf("failed to delete vote: %w", err)
		}

		if err := txLedger.AdjustBalance(ctx, vote.UserID, vote.Amount, models.TransactionTypeVoteRefund,
			fmt.Sprintf("Vote %s removed from prediction %d", voteID, vote.PredictionID)); err != nil {
			return err
		}

		if err := txRepo.AddToOptionTally(ctx, prediction, vote.Option, -vote.Amount); err != nil {
			return fmt.Errorf("failed to update option tally: %w", err)
		}

		deleted = *vote
		found = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	log.WithFields(log.Fields{
		"vote_id": voteID,
		"user_id": deleted.UserID,
	}).Info("vote deleted")

	resp := deleted.ToResponse()
	return &resp, nil
}

// GetUserVotes returns the caller's votes, newest first
func (s *VoteService) GetUserVotes(ctx context.Context, userID uint) ([]models.VoteResponse, error) {
	votes, err := s.repo.GetVotesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch votes: %w", err)
	}
	responses := make([]models.VoteResponse, len(votes))
	for i := range votes {
		responses[i] = votes[i].ToResponse()
	}
	return responses, nil
}

// GetPredictionVotes returns every vote on a prediction
func (s *VoteService) GetPredictionVotes(ctx context.Context, predictionID uint) ([]models.VoteResponse, error) {
	if _, err := s.repo.GetPredictionByID(ctx, predictionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPredictionNotFound
		}
		return nil, fmt.Errorf("failed to load prediction: %w", err)
	}

	votes, err := s.repo.GetVotesByPrediction(ctx, predictionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch votes: %w", err)
	}
	responses := make([]models.VoteResponse, len(votes))
	for i := range votes {
		responses[i] = votes[i].ToResponse()
	}
	return responses, nil
}
