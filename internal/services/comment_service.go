package services

import (
	"context"
	"errors"
	"fmt"

	"pronostix/internal/models"

	"gorm.io/gorm"
)

// CommentService handles threaded comments under predictions
type CommentService struct {
	db *gorm.DB
}

// NewCommentService creates a new CommentService
func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// CreateComment posts a comment on a prediction, optionally as a reply
func (s *CommentService) CreateComment(ctx context.Context, predictionID, userID uint, req *models.CreateCommentRequest) (*models.Comment, error) {
	var prediction models.Prediction
	if err := s.db.WithContext(ctx).First(&prediction, predictionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPredictionNotFound
		}
		return nil, fmt.Errorf("failed to load prediction: %w", err)
	}

	if req.ParentID != nil {
		var parent models.Comment
		if err := s.db.WithContext(ctx).
			Where("id = ? AND prediction_id = ?", *req.ParentID, predictionID).
			First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCommentNotFound
			}
			return nil, fmt.Errorf("failed to load parent comment: %w", err)
		}
	}

	comment := &models.Comment{
		PredictionID: predictionID,
		UserID:       userID,
		ParentID:     req.ParentID,
		Body:         req.Body,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// GetPredictionComments returns the top-level comments of a prediction with
// one level of replies preloaded.
func (s *CommentService) GetPredictionComments(ctx context.Context, predictionID uint) ([]models.Comment, error) {
	var comments []models.Comment
	if err := s.db.WithContext(ctx).
		Where("prediction_id = ? AND parent_id IS NULL", predictionID).
		Preload("Replies").
		Preload("Replies.User").
		Preload("User").
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}
	return comments, nil
}

// UpdateComment edits a comment's body; only the owner may edit
func (s *CommentService) UpdateComment(ctx context.Context, commentID, userID uint, req *models.UpdateCommentRequest) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}

	if comment.UserID != userID {
		return nil, ErrNotOwner
	}

	comment.Body = req.Body
	if err := s.db.WithContext(ctx).Save(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return &comment, nil
}

// DeleteComment removes a comment and its direct replies
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID uint, isAdmin bool) error {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to load comment: %w", err)
	}

	if comment.UserID != userID && !isAdmin {
		return ErrNotOwner
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", commentID).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete replies: %w", err)
		}
		if err := tx.Delete(&comment).Error; err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}
		return nil
	})
}
