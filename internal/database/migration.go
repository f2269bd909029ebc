package database

import (
	"fmt"

	"github.com/wfunc/zombie-walk/internal/logger"
	"github.com/wfunc/zombie-walk/internal/models"
	"go.uber.org/zap"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	// 定义需要迁移的模型
	migrationModels := []interface{}{
		// 用户相关
		&models.User{},
		&models.UserAuth{},
		&models.UserSession{},

		// 生存游戏相关
		&models.GameSession{},
		&models.Zombie{},
		&models.WorldObject{},
		&models.InventoryItem{},
		&models.ZombieStats{},

		// 剧本相关
		&models.ScenarioPreset{},
		&models.SpawnRule{},
	}

	logger.Info("开始数据库迁移...")

	// SQLite迁移期间关闭外键约束，避免重建表时的问题
	if DB.Dialector.Name() == "sqlite" {
		DB.Exec("PRAGMA foreign_keys = OFF")
		defer DB.Exec("PRAGMA foreign_keys = ON")
	}

	for _, model := range migrationModels {
		if err := DB.AutoMigrate(model); err != nil {
			logger.Error("迁移失败",
				zap.String("model", fmt.Sprintf("%T", model)),
				zap.Error(err),
			)
			return err
		}
		logger.Debug("迁移成功", zap.String("model", fmt.Sprintf("%T", model)))
	}

	logger.Info("数据库迁移完成", zap.Int("tables", len(migrationModels)))
	return nil
}
