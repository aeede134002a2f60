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

// ShopService handles the cosmetic catalogue: buying items with points and
// equipping them. A purchase debits the balance and grants ownership in one
// transaction.
type ShopService struct {
	db     *gorm.DB
	ledger *LedgerService
}

// NewShopService creates a new ShopService
func NewShopService(db *gorm.DB) *ShopService {
	return &ShopService{
		db:     db,
		ledger: NewLedgerService(repository.NewRepository(db)),
	}
}

// ListItems returns the full catalogue
func (s *ShopService) ListItems(ctx context.Context) ([]models.ShopItem, error) {
	var items []models.ShopItem
	if err := s.db.WithContext(ctx).Order("category, price").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch shop items: %w", err)
	}
	return items, nil
}

// CreateItem adds a catalogue item (admin)
func (s *ShopService) CreateItem(ctx context.Context, req *models.CreateShopItemRequest) (*models.ShopItem, error) {
	item := &models.ShopItem{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create shop item: %w", err)
	}
	return item, nil
}

// BuyItem purchases a cosmetic for the user, debiting its price
func (s *ShopService) BuyItem(ctx context.Context, userID, itemID uint) (*models.UserItem, error) {
	var owned models.UserItem

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item models.ShopItem
		if err := tx.WithContext(ctx).First(&item, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("failed to load shop item: %w", err)
		}

		var user models.User
		if err := tx.WithContext(ctx).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to load user: %w", err)
		}

		var count int64
		if err := tx.WithContext(ctx).Model(&models.UserItem{}).
			Where("user_id = ? AND item_id = ?", userID, itemID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check ownership: %w", err)
		}
		if count > 0 {
			return ErrItemAlreadyOwned
		}

		if user.Points < item.Price {
			return ErrInsufficientPoints
		}

		if err := s.ledger.WithTx(tx).AdjustBalance(ctx, userID, -item.Price, models.TransactionTypePurchase,
			fmt.Sprintf("Purchased %s", item.Name)); err != nil {
			return err
		}

		owned = models.UserItem{
			UserID: userID,
			ItemID: itemID,
		}
		if err := tx.WithContext(ctx).Create(&owned).Error; err != nil {
			return fmt.Errorf("failed to grant item: %w", err)
		}
		owned.Item = &item
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"item_id": itemID,
	}).Info("shop item purchased")

	return &owned, nil
}

// EquipItem marks one owned item as equipped, unequipping any other item of
// the same category.
func (s *ShopService) EquipItem(ctx context.Context, userID, itemID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var owned models.UserItem
		if err := tx.WithContext(ctx).
			Where("user_id = ? AND item_id = ?", userID, itemID).
			Preload("Item").
			First(&owned).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotOwned
			}
			return fmt.Errorf("failed to load owned item: %w", err)
		}

		// Unequip everything else of the same category
		if err := tx.WithContext(ctx).Model(&models.UserItem{}).
			Where("user_id = ? AND item_id IN (?)",
				userID,
				tx.Model(&models.ShopItem{}).Select("id").Where("category = ?", owned.Item.Category),
			).
			Update("equipped", false).Error; err != nil {
			return fmt.Errorf("failed to unequip items: %w", err)
		}

		if err := tx.WithContext(ctx).Model(&owned).Update("equipped", true).Error; err != nil {
			return fmt.Errorf("failed to equip item: %w", err)
		}
		return nil
	})
}

// GetUserItems returns every cosmetic owned by the user
func (s *ShopService) GetUserItems(ctx context.Context, userID uint) ([]models.UserItem, error) {
	var items []models.UserItem
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Item").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch user items: %w", err)
	}
	return items, nil
}
