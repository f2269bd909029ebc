package repository

import (
	"context"

	"github.com/wfunc/zombie-walk/internal/models"
	"gorm.io/gorm"
)

// ZombieRepository 丧尸仓储接口
type ZombieRepository interface {
	BaseRepository
	Create(ctx context.Context, zombie *models.Zombie) error
	CreateBatch(ctx context.Context, zombies []*models.Zombie) error
	Update(ctx context.Context, zombie *models.Zombie) error
	UpdatePositions(ctx context.Context, zombies []*models.Zombie) error
	FindByID(ctx context.Context, id uint) (*models.Zombie, error)
	FindBySessionID(ctx context.Context, sessionID uint) ([]*models.Zombie, error)
	Delete(ctx context.Context, id uint) error
	DeleteBySessionID(ctx context.Context, sessionID uint) (int64, error)
	CountBySessionID(ctx context.Context, sessionID uint) (int64, error)
}

// zombieRepo 丧尸仓储实现
type zombieRepo struct {
	*BaseRepo
}

// NewZombieRepository 创建丧尸仓储
func NewZombieRepository(db *gorm.DB) ZombieRepository {
	return &zombieRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 创建丧尸
func (r *zombieRepo) Create(ctx context.Context, zombie *models.Zombie) error {
	return r.db.WithContext(ctx).Create(zombie).Error
}

// CreateBatch 批量创建丧尸
func (r *zombieRepo) CreateBatch(ctx context.Context, zombies []*models.Zombie) error {
	if len(zombies) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(zombies).Error
}

// Update 更新丧尸
func (r *zombieRepo) Update(ctx context.Context, zombie *models.Zombie) error {
	return r.db.WithContext(ctx).Save(zombie).Error
}

// UpdatePositions 批量提交丧尸新位置（同一快照计算的结果一起落库）
func (r *zombieRepo) UpdatePositions(ctx context.Context, zombies []*models.Zombie) error {
	if len(zombies) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, z := range zombies {
			err := tx.Model(&models.Zombie{}).
				Where("id = ?", z.ID).
				Updates(map[string]interface{}{
					"lat":        z.Lat,
					"lng":        z.Lng,
					"is_hunting": z.IsHunting,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID 根据ID查找
func (r *zombieRepo) FindByID(ctx context.Context, id uint) (*models.Zombie, error) {
	var zombie models.Zombie
	err := r.db.WithContext(ctx).First(&zombie, id).Error
	if err != nil {
		return nil, err
	}
	return &zombie, nil
}

// FindBySessionID 查找会话的所有丧尸
func (r *zombieRepo) FindBySessionID(ctx context.Context, sessionID uint) ([]*models.Zombie, error) {
	var zombies []*models.Zombie
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id").
		Find(&zombies).Error
	if err != nil {
		return nil, err
	}
	return zombies, nil
}

// Delete 删除丧尸（教育成功后永久移除）
func (r *zombieRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&models.Zombie{}, id).Error
}

// DeleteBySessionID 删除会话的所有丧尸（会话终结时清场）
func (r *zombieRepo) DeleteBySessionID(ctx context.Context, sessionID uint) (int64, error) {
	result := r.db.WithContext(ctx).Unscoped().
		Where("session_id = ?", sessionID).
		Delete(&models.Zombie{})
	return result.RowsAffected, result.Error
}

// CountBySessionID 统计会话丧尸数量
func (r *zombieRepo) CountBySessionID(ctx context.Context, sessionID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Zombie{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}
