package repository

import (
	"context"

	"github.com/wfunc/zombie-walk/internal/models"
	"gorm.io/gorm"
)

// InventoryRepository 背包仓储接口
type InventoryRepository interface {
	BaseRepository
	Create(ctx context.Context, item *models.InventoryItem) error
	Update(ctx context.Context, item *models.InventoryItem) error
	FindBySessionID(ctx context.Context, sessionID uint) ([]*models.InventoryItem, error)
	FindStack(ctx context.Context, sessionID uint, itemType, name string) (*models.InventoryItem, error)
	FindBookStack(ctx context.Context, sessionID uint, bookID string) (*models.InventoryItem, error)
	FindAnyBook(ctx context.Context, sessionID uint) (*models.InventoryItem, error)
	Delete(ctx context.Context, id uint) error
	DeleteBySessionID(ctx context.Context, sessionID uint) (int64, error)
}

// inventoryRepo 背包仓储实现
type inventoryRepo struct {
	*BaseRepo
}

// NewInventoryRepository 创建背包仓储
func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 创建物品
func (r *inventoryRepo) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update 更新物品
func (r *inventoryRepo) Update(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// FindBySessionID 查找会话的所有物品
func (r *inventoryRepo) FindBySessionID(ctx context.Context, sessionID uint) ([]*models.InventoryItem, error) {
	var items []*models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindStack 查找非书籍物品堆叠（按类型+名称）
func (r *inventoryRepo) FindStack(ctx context.Context, sessionID uint, itemType, name string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND item_type = ? AND name = ?", sessionID, itemType, name).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindBookStack 查找书籍堆叠（按书籍标识）
func (r *inventoryRepo) FindBookStack(ctx context.Context, sessionID uint, bookID string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND item_type = ? AND book_id = ?", sessionID, models.ItemBook, bookID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindAnyBook 查找任意一本有库存的书（投掷消耗用）
func (r *inventoryRepo) FindAnyBook(ctx context.Context, sessionID uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND item_type = ? AND quantity > 0", sessionID, models.ItemBook).
		Order("id").
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete 删除物品记录
func (r *inventoryRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&models.InventoryItem{}, id).Error
}

// DeleteBySessionID 删除会话的所有物品（会话终结时清场）
func (r *inventoryRepo) DeleteBySessionID(ctx context.Context, sessionID uint) (int64, error) {
	result := r.db.WithContext(ctx).Unscoped().
		Where("session_id = ?", sessionID).
		Delete(&models.InventoryItem{})
	return result.RowsAffected, result.Error
}
