package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/zombie-walk/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 创建测试数据库
// 使用内存数据库进行测试（更快，不需要文件系统，在所有环境中都能工作）
func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// 自动迁移所有模型
	err = db.AutoMigrate(
		// 用户系统
		&models.User{},
		&models.UserAuth{},
		&models.UserSession{},

		// 生存游戏
		&models.GameSession{},
		&models.Zombie{},
		&models.WorldObject{},
		&models.InventoryItem{},
		&models.ZombieStats{},

		// 剧本系统
		&models.ScenarioPreset{},
		&models.SpawnRule{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	return db
}

// SeedTestData 创建测试数据
func SeedTestData(t *testing.T, db *gorm.DB) {
	users := []models.User{
		{
			Username: "survivor1",
			Nickname: "测试幸存者1",
			Avatar:   "avatar1.png",
			Status:   "active",
		},
		{
			Username: "survivor2",
			Nickname: "测试幸存者2",
			Avatar:   "avatar2.png",
			Status:   "active",
		},
	}
	for i := range users {
		require.NoError(t, db.Create(&users[i]).Error)
	}
}

// CreateTestGameSession 构造测试游戏会话
func CreateTestGameSession(userID uint) *models.GameSession {
	now := time.Now()
	return &models.GameSession{
		UserID:       userID,
		SessionID:    uuid.New().String(),
		HP:           100,
		MaxHP:        100,
		ActionPoints: 10,
		MaxAP:        10,
		Lat:          39.9042,
		Lng:          116.4074,
		StartedAt:    now,
		LastAPUseAt:  now,
		IsActive:     true,
	}
}

// CreateTestZombie 构造测试丧尸
func CreateTestZombie(sessionID uint, lat, lng float64) *models.Zombie {
	return &models.Zombie{
		SessionID: sessionID,
		Lat:       lat,
		Lng:       lng,
		Speed:     50,
	}
}

// CreateTestWorldObject 构造测试世界对象
func CreateTestWorldObject(sessionID uint, objType string, lat, lng float64) *models.WorldObject {
	return &models.WorldObject{
		SessionID: sessionID,
		Type:      objType,
		Lat:       lat,
		Lng:       lng,
		Radius:    50,
	}
}

// CreateTestPreset 构造带规则的测试预设
func CreateTestPreset(name string, isDefault bool) *models.ScenarioPreset {
	turnMax := 5
	return &models.ScenarioPreset{
		Name:      name,
		IsDefault: isDefault,
		Rules: []models.SpawnRule{
			{
				TriggerType: models.TriggerTurn,
				TurnMin:     1,
				TurnMax:     &turnMax,
				ZombieCount: 2,
				DistanceMin: 200,
				DistanceMax: 500,
				Speed:       50,
				Chance:      100,
				SortOrder:   1,
			},
		},
	}
}
