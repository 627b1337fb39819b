package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-progression/internal/models"
)

// ShopItemFilter narrows the catalog listing.
type ShopItemFilter struct {
	Category   string
	Rarity     string
	ActiveOnly bool
}

// ShopRepository persists the catalog, ownership and equipment.
type ShopRepository interface {
	GetItem(ctx context.Context, id uint) (models.ShopItem, error)
	ListItems(ctx context.Context, filter ShopItemFilter) ([]models.ShopItem, error)
	// DecrementStock takes one unit of a limited item. It reports false when
	// nothing was left. Unlimited items always succeed without a write.
	DecrementStock(ctx context.Context, item models.ShopItem) (bool, error)
	// CreatePurchase fails with gorm.ErrDuplicatedKey when the item is already owned.
	CreatePurchase(ctx context.Context, purchase *models.StudentPurchase) error
	IsOwned(ctx context.Context, studentID, itemID uint) (bool, error)
	ListPurchases(ctx context.Context, studentID uint) ([]models.StudentPurchase, error)
	UpsertEquipment(ctx context.Context, equipment *models.StudentEquipment) error
	DeleteEquipment(ctx context.Context, studentID uint, slot string) (bool, error)
	ListEquipment(ctx context.Context, studentID uint) ([]models.StudentEquipment, error)
}

type shopRepository struct {
	db *gorm.DB
}

// NewShopRepository constructs a shop repository.
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

func (r *shopRepository) GetItem(ctx context.Context, id uint) (models.ShopItem, error) {
	var item models.ShopItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return models.ShopItem{}, err
	}
	return item, nil
}

func (r *shopRepository) ListItems(ctx context.Context, filter ShopItemFilter) ([]models.ShopItem, error) {
	query := r.db.WithContext(ctx).Model(&models.ShopItem{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Rarity != "" {
		query = query.Where("rarity = ?", filter.Rarity)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var items []models.ShopItem
	if err := query.Order("price ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *shopRepository) DecrementStock(ctx context.Context, item models.ShopItem) (bool, error) {
	if item.Stock == nil {
		return true, nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.ShopItem{}).
		Where("id = ? AND stock > 0", item.ID).
		Update("stock", gorm.Expr("stock - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *shopRepository) CreatePurchase(ctx context.Context, purchase *models.StudentPurchase) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(purchase).Error
}

func (r *shopRepository) IsOwned(ctx context.Context, studentID, itemID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StudentPurchase{}).
		Where("student_id = ? AND item_id = ?", studentID, itemID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *shopRepository) ListPurchases(ctx context.Context, studentID uint) ([]models.StudentPurchase, error) {
	var purchases []models.StudentPurchase
	if err := r.db.WithContext(ctx).
		Preload("Item").
		Where("student_id = ?", studentID).
		Order("purchased_at DESC, id DESC").
		Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *shopRepository) UpsertEquipment(ctx context.Context, equipment *models.StudentEquipment) error {
	if equipment.EquippedAt.IsZero() {
		equipment.EquippedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "slot"}},
			DoUpdates: clause.AssignmentColumns([]string{"item_id", "equipped_at"}),
		}).
		Create(equipment).Error
}

func (r *shopRepository) DeleteEquipment(ctx context.Context, studentID uint, slot string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("student_id = ? AND slot = ?", studentID, slot).
		Delete(&models.StudentEquipment{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *shopRepository) ListEquipment(ctx context.Context, studentID uint) ([]models.StudentEquipment, error) {
	var equipment []models.StudentEquipment
	if err := r.db.WithContext(ctx).
		Preload("Item").
		Where("student_id = ?", studentID).
		Order("slot ASC").
		Find(&equipment).Error; err != nil {
		return nil, err
	}
	return equipment, nil
}
