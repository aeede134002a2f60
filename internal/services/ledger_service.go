package services

import (
	"context"
	"errors"
	"fmt"

	"pronostix/internal/models"
	"pronostix/internal/repository"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LedgerService applies signed point deltas to user balances and journals
// every change. It does not enforce non-negativity; callers pre-check before
// debiting.
type LedgerService struct {
	repo *repository.Repository
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(repo *repository.Repository) *LedgerService {
	return &LedgerService{repo: repo}
}

// WithTx returns a LedgerService bound to the given transaction
func (s *LedgerService) WithTx(tx *gorm.DB) *LedgerService {
	return &LedgerService{repo: s.repo.WithTx(tx)}
}

// AdjustBalance applies delta to the user's point balance and appends a
// journal entry. Fails with ErrUserNotFound when the user does not exist.
func (s *LedgerService) AdjustBalance(ctx context.Context, userID uint, delta int64, txType, description string) error {
	if err := s.repo.IncrementUserPoints(ctx, userID, delta); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update user balance: %w", err)
	}

	entry := &models.PointTransaction{
		UserID:      userID,
		Type:        txType,
		Amount:      delta,
		Description: description,
	}
	if err := s.repo.CreateTransaction(ctx, entry); err != nil {
		return fmt.Errorf("failed to journal balance change: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"delta":   delta,
		"type":    txType,
	}).Debug("balance adjusted")

	return nil
}

// GetTransactions returns the journal entries for a user, newest first
func (s *LedgerService) GetTransactions(ctx context.Context, userID uint, limit int) ([]models.PointTransaction, error) {
	var entries []models.PointTransaction
	query := s.repo.DB().WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return entries, nil
}
