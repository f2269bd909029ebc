package repository

import (
	"context"
	"errors"

	"github.com/wfunc/zombie-walk/internal/models"
	"gorm.io/gorm"
)

// ZombieStatsRepository 玩家生存统计仓储接口
type ZombieStatsRepository interface {
	BaseRepository
	FindOrCreateByUserID(ctx context.Context, userID uint) (*models.ZombieStats, error)
	FindByUserID(ctx context.Context, userID uint) (*models.ZombieStats, error)
	Update(ctx context.Context, stats *models.ZombieStats) error
	IncrementCounters(ctx context.Context, userID uint, deltas map[string]int) error
	UpdateBestSurvivalTime(ctx context.Context, userID uint, seconds int) error
	TopBySurvivalTime(ctx context.Context, limit int) ([]*models.ZombieStats, error)
	DeceasedAvatars(ctx context.Context, limit int) ([]string, error)
}

// zombieStatsRepo 玩家生存统计仓储实现
type zombieStatsRepo struct {
	*BaseRepo
}

// NewZombieStatsRepository 创建统计仓储
func NewZombieStatsRepository(db *gorm.DB) ZombieStatsRepository {
	return &zombieStatsRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// FindOrCreateByUserID 查找用户统计，不存在则初始化
func (r *zombieStatsRepo) FindOrCreateByUserID(ctx context.Context, userID uint) (*models.ZombieStats, error) {
	var stats models.ZombieStats
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&stats).Error
	if err == nil {
		return &stats, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	stats = models.ZombieStats{UserID: userID}
	if err := r.db.WithContext(ctx).Create(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// FindByUserID 查找用户统计
func (r *zombieStatsRepo) FindByUserID(ctx context.Context, userID uint) (*models.ZombieStats, error) {
	var stats models.ZombieStats
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Update 更新统计
func (r *zombieStatsRepo) Update(ctx context.Context, stats *models.ZombieStats) error {
	return r.db.WithContext(ctx).Save(stats).Error
}

// IncrementCounters 对计数字段做原子自增
func (r *zombieStatsRepo) IncrementCounters(ctx context.Context, userID uint, deltas map[string]int) error {
	if len(deltas) == 0 {
		return nil
	}

	updates := make(map[string]interface{}, len(deltas))
	for column, delta := range deltas {
		updates[column] = gorm.Expr(column+" + ?", delta)
	}

	return r.db.WithContext(ctx).
		Model(&models.ZombieStats{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}

// UpdateBestSurvivalTime 仅当新纪录更优时更新最佳生存时长
func (r *zombieStatsRepo) UpdateBestSurvivalTime(ctx context.Context, userID uint, seconds int) error {
	return r.db.WithContext(ctx).
		Model(&models.ZombieStats{}).
		Where("user_id = ? AND best_survival_time < ?", userID, seconds).
		Update("best_survival_time", seconds).Error
}

// TopBySurvivalTime 按最佳生存时长排行
func (r *zombieStatsRepo) TopBySurvivalTime(ctx context.Context, limit int) ([]*models.ZombieStats, error) {
	var stats []*models.ZombieStats
	err := r.db.WithContext(ctx).
		Order("best_survival_time DESC").
		Limit(limit).
		Find(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// DeceasedAvatars 返回有死亡记录玩家的头像URL（丧尸外观素材池）
func (r *zombieStatsRepo) DeceasedAvatars(ctx context.Context, limit int) ([]string, error) {
	var avatars []string
	err := r.db.WithContext(ctx).
		Model(&models.ZombieStats{}).
		Select("users.avatar").
		Joins("JOIN users ON users.id = zombie_stats.user_id").
		Where("zombie_stats.deaths > 0 AND users.avatar <> ''").
		Order("zombie_stats.deaths DESC").
		Limit(limit).
		Pluck("users.avatar", &avatars).Error
	if err != nil {
		return nil, err
	}
	return avatars, nil
}
