// Package session 游戏会话管理
// 同一玩家的全部写操作由按玩家分键的互斥锁串行化
package session

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/zombie-walk/internal/config"
	"github.com/wfunc/zombie-walk/internal/errors"
	"github.com/wfunc/zombie-walk/internal/game/geo"
	"github.com/wfunc/zombie-walk/internal/game/inventory"
	"github.com/wfunc/zombie-walk/internal/game/scenario"
	"github.com/wfunc/zombie-walk/internal/game/stats"
	"github.com/wfunc/zombie-walk/internal/game/world"
	"github.com/wfunc/zombie-walk/internal/game/zombie"
	"github.com/wfunc/zombie-walk/internal/models"
	"github.com/wfunc/zombie-walk/internal/repository"
	"go.uber.org/zap"
)

// keyedMutex 按玩家ID分键的互斥锁
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uint]*sync.Mutex)}
}

// Lock 锁定指定玩家，返回解锁函数
func (k *keyedMutex) Lock(userID uint) func() {
	k.mu.Lock()
	m, ok := k.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		k.locks[userID] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Manager 会话管理器，聚合世界生成、丧尸引擎、剧本与统计
type Manager struct {
	cfg       *config.GameConfig
	sessions  repository.GameSessionRepository
	zombies   repository.ZombieRepository
	objects   repository.WorldObjectRepository
	generator *world.Generator
	loot      *world.LootTable
	engine    *zombie.Engine
	scenarios *scenario.Engine
	inventory *inventory.Manager
	validator *stats.Validator
	recorder  *stats.Recorder
	locks     *keyedMutex
	rand      *rand.Rand
	now       func() time.Time
	log       *zap.Logger
}

// NewManager 创建会话管理器
func NewManager(
	cfg *config.GameConfig,
	repos *repository.Manager,
	scenarios *scenario.Engine,
	recorder *stats.Recorder,
	r *rand.Rand,
	log *zap.Logger,
) *Manager {
	return &Manager{
		cfg:       cfg,
		sessions:  repos.GameSession(),
		zombies:   repos.Zombie(),
		objects:   repos.WorldObject(),
		generator: world.NewGenerator(&cfg.World, r, log),
		loot:      world.NewLootTable(r, cfg.World.FlashlightChance, cfg.Survival.MedkitHeal),
		engine:    zombie.NewEngine(&cfg.Zombie, repos.Zombie(), recorder, r, log),
		scenarios: scenarios,
		inventory: inventory.NewManager(repos.Inventory(), log),
		validator: stats.NewValidator(&cfg.AntiCheat),
		recorder:  recorder,
		locks:     newKeyedMutex(),
		rand:      r,
		now:       time.Now,
		log:       log.Named("session"),
	}
}

// SetNowFunc 替换时钟来源（测试用）
func (m *Manager) SetNowFunc(now func() time.Time) {
	m.now = now
}

// Inventory 暴露背包管理器
func (m *Manager) Inventory() *inventory.Manager {
	return m.inventory
}

// Recorder 暴露统计记录器
func (m *Manager) Recorder() *stats.Recorder {
	return m.recorder
}

// CalculateCurrentAP 惰性计算当前行动点
// 不依赖任何定时任务：按距上次消耗的时长折算恢复量，封顶 MaxAP
func (m *Manager) CalculateCurrentAP(session *models.GameSession, now time.Time) int {
	interval := m.cfg.Survival.APRegenInterval
	if session.IsInSafeZone {
		interval = m.cfg.Survival.APRegenSafeInterval
	}
	if interval <= 0 {
		return session.ActionPoints
	}

	elapsed := now.Sub(session.LastAPUseAt)
	if elapsed < 0 {
		elapsed = 0
	}
	ap := session.ActionPoints + int(elapsed/interval)
	if ap > session.MaxAP {
		ap = session.MaxAP
	}
	return ap
}

// GameState 对外的会话状态视图
type GameState struct {
	Session   *models.GameSession     `json:"session"`
	CurrentAP int                     `json:"current_ap"`
	Zombies   []*zombie.VisibleZombie `json:"zombies"`
	Objects   []*models.WorldObject   `json:"objects"`
	Inventory []*models.InventoryItem `json:"inventory"`
}

// GetState 查询玩家当前激活会话的完整状态
// 只返回可见半径内的丧尸，远处的需要手电筒探测
func (m *Manager) GetState(ctx context.Context, userID uint) (*GameState, error) {
	session, err := m.activeSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	return m.buildState(ctx, session)
}

func (m *Manager) buildState(ctx context.Context, session *models.GameSession) (*GameState, error) {
	zombies, err := m.zombies.FindBySessionID(ctx, session.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询丧尸失败")
	}
	objects, err := m.objects.FindBySessionID(ctx, session.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询世界对象失败")
	}
	items, err := m.inventory.List(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	pos := geo.Point{Lat: session.Lat, Lng: session.Lng}
	return &GameState{
		Session:   session,
		CurrentAP: m.CalculateCurrentAP(session, m.now()),
		Zombies:   m.engine.Visible(zombies, pos),
		Objects:   objects,
		Inventory: items,
	}, nil
}

// activeSession 查询激活会话，不存在时返回业务错误
func (m *Manager) activeSession(ctx context.Context, userID uint) (*models.GameSession, error) {
	session, err := m.sessions.FindActiveByUserID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.New(errors.ErrNoActiveSession)
		}
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询会话失败")
	}
	return session, nil
}

func newSessionID() string {
	return uuid.New().String()
}
