// Package zombie 丧尸行为引擎
// 每回合先对全部丧尸做快照决策，再统一提交位置，避免受处理顺序影响
package zombie

import (
	"context"
	"math/rand"
	"sort"

	"github.com/wfunc/zombie-walk/internal/config"
	"github.com/wfunc/zombie-walk/internal/errors"
	"github.com/wfunc/zombie-walk/internal/game/geo"
	"github.com/wfunc/zombie-walk/internal/models"
	"github.com/wfunc/zombie-walk/internal/repository"
	"go.uber.org/zap"
)

// AvatarPool 提供丧尸装饰用的头像来源
// 与统计层解耦：引擎不关心头像从哪来
type AvatarPool interface {
	RandomAvatar(ctx context.Context) (string, error)
}

// SpawnSpec 一次生成的参数
type SpawnSpec struct {
	Count        int
	DistanceMin  float64
	DistanceMax  float64
	Speed        float64
	UseAvatars   bool
	AvatarChance int // 0-100，单只丧尸带头像的概率
}

// MoveResult 一回合丧尸结算结果
type MoveResult struct {
	Attackers []*models.Zombie // 本回合进入攻击半径的丧尸
	Hunting   int              // 处于追踪状态的数量
}

// SmellResult 气味回合的结算结果
type SmellResult struct {
	Moved     int              // 被气味吸引而蠕动的数量
	Attackers []*models.Zombie // 蠕动后处于攻击半径内的丧尸
}

// VisibleZombie 玩家可见的丧尸
type VisibleZombie struct {
	Zombie   *models.Zombie
	Distance float64
}

// DistantZombie 手电筒照出的远处丧尸（只给方位与距离）
type DistantZombie struct {
	ID       uint    `json:"id"`
	Distance float64 `json:"distance"`
	Bearing  float64 `json:"bearing"`
}

// Engine 丧尸引擎
type Engine struct {
	cfg     *config.ZombieConfig
	repo    repository.ZombieRepository
	avatars AvatarPool
	rand    *rand.Rand
	log     *zap.Logger
}

// NewEngine 创建丧尸引擎
func NewEngine(cfg *config.ZombieConfig, repo repository.ZombieRepository, avatars AvatarPool, r *rand.Rand, log *zap.Logger) *Engine {
	return &Engine{
		cfg:     cfg,
		repo:    repo,
		avatars: avatars,
		rand:    r,
		log:     log.Named("zombie"),
	}
}

// SpawnBatch 按规格在玩家周围环形区域生成一批丧尸
func (e *Engine) SpawnBatch(ctx context.Context, sessionID uint, center geo.Point, spec SpawnSpec) ([]*models.Zombie, error) {
	if spec.Count <= 0 {
		return nil, nil
	}

	zombies := make([]*models.Zombie, 0, spec.Count)
	for i := 0; i < spec.Count; i++ {
		p := geo.RandomPointInRing(e.rand, center, spec.DistanceMin, spec.DistanceMax)
		z := &models.Zombie{
			SessionID: sessionID,
			Lat:       p.Lat,
			Lng:       p.Lng,
			Speed:     spec.Speed,
		}
		if spec.UseAvatars && e.avatars != nil && e.rand.Intn(100) < spec.AvatarChance {
			avatar, err := e.avatars.RandomAvatar(ctx)
			if err != nil {
				e.log.Warn("获取丧尸头像失败", zap.Error(err))
			} else {
				z.AvatarURL = avatar
			}
		}
		zombies = append(zombies, z)
	}

	if err := e.repo.CreateBatch(ctx, zombies); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "批量创建丧尸失败")
	}
	e.log.Debug("生成丧尸",
		zap.Uint("session_id", sessionID),
		zap.Int("count", len(zombies)))
	return zombies, nil
}

// ResolveMovement 结算一回合的丧尸移动与攻击
// 追踪条件：进入侦测半径，或玩家噪音达到阈值（全图激活）
func (e *Engine) ResolveMovement(ctx context.Context, zombies []*models.Zombie, player geo.Point, noiseLevel int) (*MoveResult, error) {
	noisy := noiseLevel >= e.cfg.NoiseThreshold
	result := &MoveResult{}

	for _, z := range zombies {
		pos := geo.Point{Lat: z.Lat, Lng: z.Lng}
		dist := geo.Distance(pos, player)

		z.IsHunting = noisy || dist <= e.cfg.DetectionRadius
		if z.IsHunting {
			next := geo.StepToward(pos, player, z.Speed)
			z.Lat, z.Lng = next.Lat, next.Lng
			result.Hunting++
		} else {
			// 游荡：随机方向低速移动
			next := geo.Offset(pos, z.Speed*e.cfg.WanderSpeedFactor, e.rand.Float64()*360)
			z.Lat, z.Lng = next.Lat, next.Lng
		}

		if geo.Distance(geo.Point{Lat: z.Lat, Lng: z.Lng}, player) <= e.cfg.AttackRadius {
			result.Attackers = append(result.Attackers, z)
		}
	}

	if err := e.repo.UpdatePositions(ctx, zombies); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "提交丧尸位置失败")
	}
	return result, nil
}

// ResolveSmell 气味回合：感知半径内的丧尸以低速向玩家蠕动
// 蠕动后进入攻击半径的丧尸照常攻击，规则与移动回合一致
func (e *Engine) ResolveSmell(ctx context.Context, zombies []*models.Zombie, player geo.Point) (*SmellResult, error) {
	result := &SmellResult{}
	for _, z := range zombies {
		pos := geo.Point{Lat: z.Lat, Lng: z.Lng}
		if geo.Distance(pos, player) <= e.cfg.SmellRadius {
			next := geo.StepToward(pos, player, z.Speed*e.cfg.SmellSpeedFactor)
			z.Lat, z.Lng = next.Lat, next.Lng
			result.Moved++
		}
		if geo.Distance(geo.Point{Lat: z.Lat, Lng: z.Lng}, player) <= e.cfg.AttackRadius {
			result.Attackers = append(result.Attackers, z)
		}
	}
	if result.Moved == 0 {
		return result, nil
	}
	if err := e.repo.UpdatePositions(ctx, zombies); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "提交丧尸位置失败")
	}
	return result, nil
}

// Visible 返回可见半径内的丧尸，按距离升序
func (e *Engine) Visible(zombies []*models.Zombie, player geo.Point) []*VisibleZombie {
	visible := make([]*VisibleZombie, 0)
	for _, z := range zombies {
		d := geo.Distance(geo.Point{Lat: z.Lat, Lng: z.Lng}, player)
		if d <= e.cfg.VisibilityRadius {
			visible = append(visible, &VisibleZombie{Zombie: z, Distance: d})
		}
	}
	sort.Slice(visible, func(i, j int) bool {
		return visible[i].Distance < visible[j].Distance
	})
	return visible
}

// Distant 手电筒探测：可见半径外、探测半径内的丧尸方位，按距离升序
func (e *Engine) Distant(zombies []*models.Zombie, player geo.Point) []*DistantZombie {
	distant := make([]*DistantZombie, 0)
	for _, z := range zombies {
		pos := geo.Point{Lat: z.Lat, Lng: z.Lng}
		d := geo.Distance(pos, player)
		if d > e.cfg.VisibilityRadius && d <= e.cfg.FlashlightRadius {
			distant = append(distant, &DistantZombie{
				ID:       z.ID,
				Distance: d,
				Bearing:  geo.Bearing(player, pos),
			})
		}
	}
	sort.Slice(distant, func(i, j int) bool {
		return distant[i].Distance < distant[j].Distance
	})
	return distant
}

// Educate 向投掷范围内的丧尸扔书，命中则该丧尸离场
func (e *Engine) Educate(ctx context.Context, zombies []*models.Zombie, zombieID uint, player geo.Point) (*models.Zombie, error) {
	var target *models.Zombie
	for _, z := range zombies {
		if z.ID == zombieID {
			target = z
			break
		}
	}
	if target == nil {
		return nil, errors.New(errors.ErrZombieNotFound)
	}

	dist := geo.Distance(geo.Point{Lat: target.Lat, Lng: target.Lng}, player)
	if dist > e.cfg.ThrowRange {
		return nil, errors.Newf(errors.ErrTargetOutOfRange, "目标距离 %.0f 米，超出投掷范围", dist)
	}

	if err := e.repo.Delete(ctx, target.ID); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "移除丧尸失败")
	}
	e.log.Debug("丧尸被教育离场", zap.Uint("zombie_id", target.ID))
	return target, nil
}
