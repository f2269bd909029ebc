package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Manager 仓储管理器，提供所有仓储的统一访问接口
type Manager struct {
	db *gorm.DB

	// 仓储实例（使用懒加载）
	gameSessionOnce sync.Once
	gameSession     GameSessionRepository

	zombieOnce sync.Once
	zombie     ZombieRepository

	worldObjectOnce sync.Once
	worldObject     WorldObjectRepository

	inventoryOnce sync.Once
	inventory     InventoryRepository

	scenarioOnce sync.Once
	scenario     ScenarioRepository

	zombieStatsOnce sync.Once
	zombieStats     ZombieStatsRepository

	// 用户相关
	userOnce sync.Once
	user     UserRepository

	userAuthOnce sync.Once
	userAuth     UserAuthRepository

	userSessionOnce sync.Once
	userSession     UserSessionRepository
}

// NewManager 创建仓储管理器
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// GetDB 获取数据库实例
func (m *Manager) GetDB() *gorm.DB {
	return m.db
}

// GameSession 获取游戏会话仓储
func (m *Manager) GameSession() GameSessionRepository {
	m.gameSessionOnce.Do(func() {
		m.gameSession = NewGameSessionRepository(m.db)
	})
	return m.gameSession
}

// Zombie 获取丧尸仓储
func (m *Manager) Zombie() ZombieRepository {
	m.zombieOnce.Do(func() {
		m.zombie = NewZombieRepository(m.db)
	})
	return m.zombie
}

// WorldObject 获取世界对象仓储
func (m *Manager) WorldObject() WorldObjectRepository {
	m.worldObjectOnce.Do(func() {
		m.worldObject = NewWorldObjectRepository(m.db)
	})
	return m.worldObject
}

// Inventory 获取背包仓储
func (m *Manager) Inventory() InventoryRepository {
	m.inventoryOnce.Do(func() {
		m.inventory = NewInventoryRepository(m.db)
	})
	return m.inventory
}

// Scenario 获取剧本预设仓储
func (m *Manager) Scenario() ScenarioRepository {
	m.scenarioOnce.Do(func() {
		m.scenario = NewScenarioRepository(m.db)
	})
	return m.scenario
}

// ZombieStats 获取生存统计仓储
func (m *Manager) ZombieStats() ZombieStatsRepository {
	m.zombieStatsOnce.Do(func() {
		m.zombieStats = NewZombieStatsRepository(m.db)
	})
	return m.zombieStats
}

// User 获取用户仓储
func (m *Manager) User() UserRepository {
	m.userOnce.Do(func() {
		m.user = NewUserRepository(m.db)
	})
	return m.user
}

// UserAuth 获取用户认证仓储
func (m *Manager) UserAuth() UserAuthRepository {
	m.userAuthOnce.Do(func() {
		m.userAuth = NewUserAuthRepository(m.db)
	})
	return m.userAuth
}

// UserSession 获取用户登录会话仓储
func (m *Manager) UserSession() UserSessionRepository {
	m.userSessionOnce.Do(func() {
		m.userSession = NewUserSessionRepository(m.db)
	})
	return m.userSession
}
