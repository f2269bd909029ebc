package repository

import (
	"context"
	"errors"
	"time"

	"github.com/wfunc/zombie-walk/internal/models"
	"gorm.io/gorm"
)

// GameSessionRepository 游戏会话仓储接口
type GameSessionRepository interface {
	BaseRepository
	Create(ctx context.Context, session *models.GameSession) error
	Update(ctx context.Context, session *models.GameSession) error
	UpdateBySessionID(ctx context.Context, sessionID string, updates map[string]interface{}) error
	FindByID(ctx context.Context, id uint) (*models.GameSession, error)
	FindBySessionID(ctx context.Context, sessionID string) (*models.GameSession, error)
	FindActiveByUserID(ctx context.Context, userID uint) (*models.GameSession, error)
	FindLatestEndedByUserID(ctx context.Context, userID uint) (*models.GameSession, error)
	FindPausedByUserID(ctx context.Context, userID uint) (*models.GameSession, error)
	DeactivateAllByUserID(ctx context.Context, userID uint, reason string) (int64, error)
	ConsumeActionPoint(ctx context.Context, id uint, newAP int, usedAt time.Time) (bool, error)
	FindByUserID(ctx context.Context, userID uint, p *Pagination) ([]*models.GameSession, error)
}

// gameSessionRepo 游戏会话仓储实现
type gameSessionRepo struct {
	*BaseRepo
}

// NewGameSessionRepository 创建游戏会话仓储
func NewGameSessionRepository(db *gorm.DB) GameSessionRepository {
	return &gameSessionRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 创建游戏会话
func (r *gameSessionRepo) Create(ctx context.Context, session *models.GameSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// Update 更新游戏会话
func (r *gameSessionRepo) Update(ctx context.Context, session *models.GameSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

// UpdateBySessionID 根据会话ID更新
func (r *gameSessionRepo) UpdateBySessionID(ctx context.Context, sessionID string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.GameSession{}).
		Where("session_id = ?", sessionID).
		Updates(updates).Error
}

// FindByID 根据ID查找
func (r *gameSessionRepo) FindByID(ctx context.Context, id uint) (*models.GameSession, error) {
	var session models.GameSession
	err := r.db.WithContext(ctx).First(&session, id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindBySessionID 根据会话ID查找
func (r *gameSessionRepo) FindBySessionID(ctx context.Context, sessionID string) (*models.GameSession, error) {
	var session models.GameSession
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindActiveByUserID 查找用户当前激活的会话
func (r *gameSessionRepo) FindActiveByUserID(ctx context.Context, userID uint) (*models.GameSession, error) {
	var session models.GameSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindLatestEndedByUserID 查找用户最近一次已结束的会话
func (r *gameSessionRepo) FindLatestEndedByUserID(ctx context.Context, userID uint) (*models.GameSession, error) {
	var session models.GameSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND ended_at IS NOT NULL", userID, false).
		Order("ended_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindPausedByUserID 查找用户可恢复的暂离会话
func (r *gameSessionRepo) FindPausedByUserID(ctx context.Context, userID uint) (*models.GameSession, error) {
	var session models.GameSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND end_reason = ?", userID, false, models.EndReasonPaused).
		Order("ended_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// DeactivateAllByUserID 停用用户所有激活会话，返回受影响行数
// 保证"每个玩家最多一个激活会话"的不变量
func (r *gameSessionRepo) DeactivateAllByUserID(ctx context.Context, userID uint, reason string) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.GameSession{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"end_reason": reason,
			"ended_at":   now,
		})
	return result.RowsAffected, result.Error
}

// ConsumeActionPoint 写入惰性推导后的AP与本次消耗时间。
// AP充足性由调用方持玩家锁校验（库里存的是基准值，不是实时值，条件不能下推到SQL）；
// 仅当会话仍激活时落库，返回false表示会话已被其他路径关闭，调用方应放弃本次移动。
func (r *gameSessionRepo) ConsumeActionPoint(ctx context.Context, id uint, newAP int, usedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.GameSession{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"action_points":  newAP,
			"last_ap_use_at": usedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindByUserID 分页查询用户历史会话
func (r *gameSessionRepo) FindByUserID(ctx context.Context, userID uint, p *Pagination) ([]*models.GameSession, error) {
	var sessions []*models.GameSession

	query := r.db.WithContext(ctx).
		Model(&models.GameSession{}).
		Where("user_id = ?", userID)

	if p != nil {
		if err := query.Count(&p.Total).Error; err != nil {
			return nil, err
		}
		query = query.Scopes(Paginate(p))
	}

	err := query.Order("created_at DESC").Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// IsNotFound 判断是否为记录不存在错误
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
