package services

import (
	"context"
	"errors"
	"fmt"

	"pronostix/internal/models"
	"pronostix/internal/repository"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles registration and login
type AuthService struct {
	db             *gorm.DB
	ledger         *LedgerService
	initialBalance int64
}

// NewAuthService creates a new AuthService. initialBalance is credited to
// every new account as a signup bonus.
func NewAuthService(db *gorm.DB, initialBalance int64) *AuthService {
	return &AuthService{
		db:             db,
		ledger:         NewLedgerService(repository.NewRepository(db)),
		initialBalance: initialBalance,
	}
}

// Register creates a new account with the starting point balance
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.WithContext(ctx).Model(&models.User{}).
			Where("username = ?", req.Username).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if count > 0 {
			return ErrUsernameTaken
		}

		if err := tx.WithContext(ctx).Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		if s.initialBalance > 0 {
			if err := s.ledger.WithTx(tx).AdjustBalance(ctx, user.ID, s.initialBalance,
				models.TransactionTypeSignupBonus, "Welcome bonus"); err != nil {
				return err
			}
			user.Points = s.initialBalance
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("user registered")

	return user, nil
}

// Login verifies the credentials and returns the user
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}
