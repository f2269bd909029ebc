package repository

import (
	"context"
	"time"

	"github.com/wfunc/zombie-walk/internal/models"
	"gorm.io/gorm"
)

// WorldObjectRepository 世界对象仓储接口
type WorldObjectRepository interface {
	BaseRepository
	CreateBatch(ctx context.Context, objects []*models.WorldObject) error
	FindByID(ctx context.Context, id uint) (*models.WorldObject, error)
	FindBySessionID(ctx context.Context, sessionID uint) ([]*models.WorldObject, error)
	FindUnlootedBySessionID(ctx context.Context, sessionID uint) ([]*models.WorldObject, error)
	MarkLooted(ctx context.Context, id uint, lootedAt, respawnAt time.Time) (bool, error)
	ResetRespawned(ctx context.Context, sessionID uint, now time.Time) (int64, error)
	DeleteBySessionID(ctx context.Context, sessionID uint) (int64, error)
}

// worldObjectRepo 世界对象仓储实现
type worldObjectRepo struct {
	*BaseRepo
}

// NewWorldObjectRepository 创建世界对象仓储
func NewWorldObjectRepository(db *gorm.DB) WorldObjectRepository {
	return &worldObjectRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// CreateBatch 批量创建世界对象（开局一次性生成）
func (r *worldObjectRepo) CreateBatch(ctx context.Context, objects []*models.WorldObject) error {
	if len(objects) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(objects).Error
}

// FindByID 根据ID查找
func (r *worldObjectRepo) FindByID(ctx context.Context, id uint) (*models.WorldObject, error) {
	var object models.WorldObject
	err := r.db.WithContext(ctx).First(&object, id).Error
	if err != nil {
		return nil, err
	}
	return &object, nil
}

// FindBySessionID 查找会话的所有世界对象
func (r *worldObjectRepo) FindBySessionID(ctx context.Context, sessionID uint) ([]*models.WorldObject, error) {
	var objects []*models.WorldObject
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id").
		Find(&objects).Error
	if err != nil {
		return nil, err
	}
	return objects, nil
}

// FindUnlootedBySessionID 查找会话中尚未搜刮的对象
func (r *worldObjectRepo) FindUnlootedBySessionID(ctx context.Context, sessionID uint) ([]*models.WorldObject, error) {
	var objects []*models.WorldObject
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND is_looted = ?", sessionID, false).
		Order("id").
		Find(&objects).Error
	if err != nil {
		return nil, err
	}
	return objects, nil
}

// MarkLooted 条件标记搜刮：仅当对象尚未被搜刮时生效，保证幂等。
// 返回false表示该对象已被搜刮过。
func (r *worldObjectRepo) MarkLooted(ctx context.Context, id uint, lootedAt, respawnAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.WorldObject{}).
		Where("id = ? AND is_looted = ?", id, false).
		Updates(map[string]interface{}{
			"is_looted":  true,
			"looted_at":  lootedAt,
			"respawn_at": respawnAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ResetRespawned 惰性刷新补给：到达respawn_at的已搜刮对象恢复为可搜刮。
// 与行动点恢复同样采用时间推导，没有后台扫描任务。
func (r *worldObjectRepo) ResetRespawned(ctx context.Context, sessionID uint, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.WorldObject{}).
		Where("session_id = ? AND is_looted = ? AND respawn_at IS NOT NULL AND respawn_at <= ?", sessionID, true, now).
		Updates(map[string]interface{}{
			"is_looted":  false,
			"looted_at":  nil,
			"respawn_at": nil,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteBySessionID 删除会话的所有世界对象（会话终结时清场）
func (r *worldObjectRepo) DeleteBySessionID(ctx context.Context, sessionID uint) (int64, error) {
	result := r.db.WithContext(ctx).Unscoped().
		Where("session_id = ?", sessionID).
		Delete(&models.WorldObject{})
	return result.RowsAffected, result.Error
}
