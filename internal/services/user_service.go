package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pronostix/internal/models"
)

// UserService handles user-related business logic
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new UserService
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// GetLeaderboard returns users ordered by point balance
func (s *UserService) GetLeaderboard(ctx context.Context, limit int) ([]models.UserResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Order("points DESC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}

	responses := make([]models.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}
	return responses, nil
}

// PromoteToAdmin grants the admin role to a user
func (s *UserService) PromoteToAdmin(ctx context.Context, userID uint) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("role", models.RoleAdmin)
	if result.Error != nil {
		return fmt.Errorf("failed to promote user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
