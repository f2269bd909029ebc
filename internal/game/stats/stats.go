// Package stats 生存统计与防作弊校验
// 客户端上报的数据一律先经服务端观测窗口校验，超出部分截断
package stats

import (
	"context"
	"time"

	"github.com/wfunc/zombie-walk/internal/config"
	"github.com/wfunc/zombie-walk/internal/errors"
	"github.com/wfunc/zombie-walk/internal/models"
	"github.com/wfunc/zombie-walk/internal/repository"
	"go.uber.org/zap"
)

// Validator 生存时长校验器
type Validator struct {
	tolerance time.Duration
}

// NewValidator 创建校验器
func NewValidator(cfg *config.AntiCheatConfig) *Validator {
	return &Validator{tolerance: cfg.SurvivalTimeTolerance}
}

// ClampSurvivalTime 将上报的生存秒数截断到服务端观测窗口内
// 窗口从首次移动开始计，到会话结束（未结束则取当前时间），外加容差
func (v *Validator) ClampSurvivalTime(session *models.GameSession, claimed int, now time.Time) int {
	if claimed < 0 {
		return 0
	}
	if session.FirstMoveAt == nil {
		return 0
	}

	end := now
	if session.EndedAt != nil {
		end = *session.EndedAt
	}
	window := end.Sub(*session.FirstMoveAt) + v.tolerance
	if window < 0 {
		return 0
	}

	max := int(window.Seconds())
	if claimed > max {
		return max
	}
	return claimed
}

// Recorder 统计记录器，所有计数通过原子自增写入
type Recorder struct {
	repo repository.ZombieStatsRepository
	log  *zap.Logger
}

// NewRecorder 创建统计记录器
func NewRecorder(repo repository.ZombieStatsRepository, log *zap.Logger) *Recorder {
	return &Recorder{
		repo: repo,
		log:  log.Named("stats"),
	}
}

// RecordGameStart 记录开局
func (r *Recorder) RecordGameStart(ctx context.Context, userID uint) error {
	if _, err := r.repo.FindOrCreateByUserID(ctx, userID); err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "初始化统计失败")
	}
	return r.increment(ctx, userID, map[string]int{"games_played": 1})
}

// RecordDeath 记录死亡与本局生存时长
func (r *Recorder) RecordDeath(ctx context.Context, userID uint, survivalSeconds int) error {
	if err := r.increment(ctx, userID, map[string]int{"deaths": 1}); err != nil {
		return err
	}
	return r.recordSurvival(ctx, userID, survivalSeconds)
}

// RecordExtraction 记录成功撤离，甩掉的丧尸计入逃脱数
func (r *Recorder) RecordExtraction(ctx context.Context, userID uint, survivalSeconds int, zombiesEvaded int) error {
	deltas := map[string]int{}
	if zombiesEvaded > 0 {
		deltas["zombies_evaded"] = zombiesEvaded
	}
	if len(deltas) > 0 {
		if err := r.increment(ctx, userID, deltas); err != nil {
			return err
		}
	}
	return r.recordSurvival(ctx, userID, survivalSeconds)
}

// RecordEducated 记录一次丧尸教育
func (r *Recorder) RecordEducated(ctx context.Context, userID uint) error {
	return r.increment(ctx, userID, map[string]int{"zombies_educated": 1})
}

// RecordResource 记录资源收集
func (r *Recorder) RecordResource(ctx context.Context, userID uint, count int) error {
	if count <= 0 {
		return nil
	}
	return r.increment(ctx, userID, map[string]int{"resources_collected": count})
}

// Get 查询玩家统计
func (r *Recorder) Get(ctx context.Context, userID uint) (*models.ZombieStats, error) {
	stats, err := r.repo.FindOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询统计失败")
	}
	return stats, nil
}

// Leaderboard 按最佳生存时长取排行榜
func (r *Recorder) Leaderboard(ctx context.Context, limit int) ([]*models.ZombieStats, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	list, err := r.repo.TopBySurvivalTime(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询排行榜失败")
	}
	return list, nil
}

// RandomAvatar 从阵亡玩家头像池随机取一个，供丧尸装饰使用
func (r *Recorder) RandomAvatar(ctx context.Context) (string, error) {
	avatars, err := r.repo.DeceasedAvatars(ctx, 50)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrDatabase, "查询头像池失败")
	}
	if len(avatars) == 0 {
		return "", nil
	}
	return avatars[time.Now().UnixNano()%int64(len(avatars))], nil
}

func (r *Recorder) recordSurvival(ctx context.Context, userID uint, seconds int) error {
	if seconds <= 0 {
		return nil
	}
	if err := r.repo.UpdateBestSurvivalTime(ctx, userID, seconds); err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "更新最佳生存时长失败")
	}
	return nil
}

func (r *Recorder) increment(ctx context.Context, userID uint, deltas map[string]int) error {
	if _, err := r.repo.FindOrCreateByUserID(ctx, userID); err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "初始化统计失败")
	}
	if err := r.repo.IncrementCounters(ctx, userID, deltas); err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "更新统计计数失败")
	}
	return nil
}
