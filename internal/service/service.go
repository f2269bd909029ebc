package service

import (
	"math/rand"
	"time"

	"github.com/wfunc/zombie-walk/internal/config"
	"github.com/wfunc/zombie-walk/internal/game/scenario"
	"github.com/wfunc/zombie-walk/internal/game/session"
	"github.com/wfunc/zombie-walk/internal/game/stats"
	"github.com/wfunc/zombie-walk/internal/repository"
	"github.com/wfunc/zombie-walk/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services 服务集合
type Services struct {
	Auth     AuthService
	Game     GameService
	Scenario ScenarioService

	// Sessions 暴露会话管理器，供WebSocket层直接推送
	Sessions *session.Manager
	// Scenarios 剧本引擎，启动时做种子导入
	Scenarios *scenario.Engine
}

// NewServices 创建服务集合
func NewServices(db *gorm.DB, cfg *config.Config, log *zap.Logger) *Services {
	repos := repository.NewManager(db)
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	jwtManager := utils.NewJWTManager(
		cfg.Security.JWT.Secret,
		time.Duration(cfg.Security.JWT.ExpireHours)*time.Hour,
		time.Duration(cfg.Security.JWT.RefreshHours)*time.Hour,
	)

	recorder := stats.NewRecorder(repos.ZombieStats(), log)
	scenarios := scenario.NewEngine(repos.Scenario(), r, log)
	manager := session.NewManager(&cfg.Game, repos, scenarios, recorder, r, log)

	return &Services{
		Auth:      NewAuthService(repos, jwtManager, log),
		Game:      NewGameService(manager),
		Scenario:  NewScenarioService(repos.Scenario(), log),
		Sessions:  manager,
		Scenarios: scenarios,
	}
}
