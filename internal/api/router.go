package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/zombie-walk/internal/config"
	"github.com/wfunc/zombie-walk/internal/middleware"
	"github.com/wfunc/zombie-walk/internal/service"
	"github.com/wfunc/zombie-walk/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
type Router struct {
	engine          *gin.Engine
	db              *gorm.DB
	services        *service.Services
	authHandler     *AuthHandler
	gameHandler     *GameHandler
	scenarioHandler *ScenarioHandler
	wsHandler       *websocket.GameMessageHandler
	authMiddleware  *middleware.AuthMiddleware
	log             *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, cfg *config.Config, log *zap.Logger) *Router {
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	// 创建服务
	services := service.NewServices(db, cfg, log)

	// WebSocket推送中心
	hub := websocket.NewHub(log)
	go hub.Run()

	router := &Router{
		engine:          engine,
		db:              db,
		services:        services,
		authHandler:     NewAuthHandler(services.Auth),
		gameHandler:     NewGameHandler(services.Game),
		scenarioHandler: NewScenarioHandler(services.Scenario),
		wsHandler:       websocket.NewGameMessageHandler(hub, services.Game, log),
		authMiddleware:  middleware.NewAuthMiddleware(services.Auth),
		log:             log,
	}

	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	v1 := r.engine.Group("/api/v1")
	{
		// 认证相关路由
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/refresh", r.authHandler.RefreshToken)

			authRequired := auth.Group("")
			authRequired.Use(r.authMiddleware.RequireAuth())
			{
				authRequired.POST("/logout", r.authHandler.Logout)
			}
		}

		// 游戏核心路由（需要认证）
		game := v1.Group("/game")
		game.Use(r.authMiddleware.RequireAuth())
		{
			game.POST("/start", r.gameHandler.StartGame)
			game.GET("/state", r.gameHandler.GetState)
			game.POST("/move", r.gameHandler.Move)
			game.POST("/medkit", r.gameHandler.UseMedkit)
			game.POST("/zombies/:zombie_id/educate", r.gameHandler.ThrowBook)
			game.POST("/flashlight", r.gameHandler.UseFlashlight)
			game.POST("/exit", r.gameHandler.ExitGame)
			game.GET("/saved", r.gameHandler.GetSavedSession)
			game.POST("/resume", r.gameHandler.ResumeGame)
			game.POST("/extract", r.gameHandler.Extract)
			game.POST("/offline-death", r.gameHandler.CheckOfflineDeath)
			game.POST("/smell", r.gameHandler.TriggerSmell)
			game.GET("/stats", r.gameHandler.GetStats)
			game.GET("/leaderboard", r.gameHandler.GetLeaderboard)
		}

		// 管理员路由（需要管理员权限）
		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.RequireRole("admin"))
		{
			scenarios := admin.Group("/scenarios")
			{
				scenarios.GET("", r.scenarioHandler.ListPresets)
				scenarios.POST("", r.scenarioHandler.CreatePreset)
				scenarios.GET("/:id", r.scenarioHandler.GetPreset)
				scenarios.PUT("/:id", r.scenarioHandler.UpdatePreset)
				scenarios.DELETE("/:id", r.scenarioHandler.DeletePreset)
				scenarios.PUT("/:id/default", r.scenarioHandler.SetDefault)
				scenarios.POST("/:id/rules", r.scenarioHandler.CreateRule)
				scenarios.PUT("/rules/:rule_id", r.scenarioHandler.UpdateRule)
				scenarios.DELETE("/rules/:rule_id", r.scenarioHandler.DeleteRule)
			}
		}
	}

	// WebSocket路由
	ws := r.engine.Group("/ws")
	ws.Use(r.authMiddleware.RequireAuth())
	{
		ws.GET("/game", r.wsHandler.ServeWS)
	}

	// Swagger文档（swagger构建标签下生效）
	registerSwaggerRoutes(r.engine)

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "unhealthy",
			"message": "数据库连接失败",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "unhealthy",
			"message": "数据库ping失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
	})
}

// Services 获取服务集合（用于启动时初始化）
func (r *Router) Services() *service.Services {
	return r.services
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	r.log.Info("Starting API server", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
