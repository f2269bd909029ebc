package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/zombie-walk/internal/middleware"
	"github.com/wfunc/zombie-walk/internal/service"
)

// GameHandler 生存游戏处理器
type GameHandler struct {
	gameService service.GameService
}

// NewGameHandler 创建游戏处理器
func NewGameHandler(gameService service.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

// positionRequest 位置上报
// 经纬度不加required：零值是合法坐标（赤道与本初子午线交点）
type positionRequest struct {
	Lat float64 `json:"lat" binding:"min=-90,max=90"`
	Lng float64 `json:"lng" binding:"min=-180,max=180"`
}

// exitRequest 退出上报
type exitRequest struct {
	SurvivalTime int `json:"survival_time" binding:"min=0"`
}

// StartGame 开始新游戏
// @Summary 开始新游戏
// @Description 以当前位置为原点生成新一局：世界对象、初始丧尸、新手装备
// @Tags Game
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body positionRequest true "起始位置"
// @Success 200 {object} session.GameState
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/game/start [post]
func (h *GameHandler) StartGame(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	state, err := h.gameService.StartGame(c.Request.Context(), userID, req.Lat, req.Lng)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetState 查询当前会话状态
// @Summary 查询当前会话状态
// @Tags Game
// @Produce json
// @Security BearerAuth
// @Success 200 {object} session.GameState
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/game/state [get]
func (h *GameHandler) GetState(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	state, err := h.gameService.GetState(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Move 移动一步
// @Summary 移动一步
// @Description 消耗一点行动点并结算整个回合
// @Tags Game
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body positionRequest true "目标位置"
// @Success 200 {object} session.MoveOutcome
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/game/move [post]
func (h *GameHandler) Move(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	outcome, err := h.gameService.MakeMove(c.Request.Context(), userID, req.Lat, req.Lng)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// UseMedkit 使用医疗包
// @Summary 使用医疗包
// @Tags Game
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.GameSession
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/game/medkit [post]
func (h *GameHandler) UseMedkit(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	session, err := h.gameService.UseMedkit(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ThrowBook 投掷书籍教育丧尸
// @Summary 投掷书籍教育丧尸
// @Tags Game
// @Produce json
// @Security BearerAuth
// @Param zombie_id path int true "丧尸ID"
// @Success 200 {object} models.Zombie
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/game/zombies/{zombie_id}/educate [post]
func (h *GameHandler) ThrowBook(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	zombieID, err := strconv.ParseUint(c.Param("zombie_id"), 10, 32)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	educated, err := h.gameService.ThrowBook(c.Request.Context(), userID, uint(zombieID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, educated)
}

// UseFlashlight 手电筒探测远处丧尸
// @Summary 手电筒探测远处丧尸
// @Description 返回可见半径外的丧尸方位与距离，按距离升序
// @Tags Game
// @Produce json
// @Security BearerAuth
// @Success 200 {array} zombie.DistantZombie
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/game/flashlight [post]
func (h *GameHandler) UseFlashlight(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	distant, err := h.gameService.UseFlashlight(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, distant)
}

// ExitGame 退出当前游戏
// @Summary 退出当前游戏
// @Description 安全区内退出可恢复，安全区外退出按死亡结算
// @Tags Game
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body exitRequest true "客户端统计的生存时长（秒），服务端会校验截断"
// @Success 200 {object} models.GameSession
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/game/exit [post]
func (h *GameHandler) ExitGame(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	var req exitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	session, err := h.gameService.ExitGame(c.Request.Context(), userID, req.SurvivalTime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSavedSession 查询可恢复的存档
// @Summary 查询可恢复的存档
// @Tags Game
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.GameSession
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/game/saved [get]
func (h *GameHandler) GetSavedSession(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	session, err := h.gameService.GetSavedSession(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ResumeGame 恢复暂离的游戏
// @Summary 恢复暂离的游戏
// @Tags Game
// @Produce json
// @Security BearerAuth
// @Success 200 {object} session.GameState
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/game/resume [post]
func (h *GameHandler) ResumeGame(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	state, err := h.gameService.ResumeGame(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Extract 在撤离营地撤离
// @Summary 在撤离营地撤离
// @Tags Game
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body exitRequest true "客户端统计的生存时长（秒）"
// @Success 200 {object} models.GameSession
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/game/extract [post]
func (h *GameHandler) Extract(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	var req exitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	session, err := h.gameService.ExtractPlayer(c.Request.Context(), userID, req.SurvivalTime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// CheckOfflineDeath 结算离线死亡
// @Summary 结算离线死亡
// @Description 客户端重新上线时调用，在不安全区域离线过久的会话按死亡结算
// @Tags Game
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]bool
// @Router /api/v1/game/offline-death [post]
func (h *GameHandler) CheckOfflineDeath(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	died, err := h.gameService.CheckOfflineDeath(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"died": died})
}

// TriggerSmell 触发气味回合
// @Summary 触发气味回合
// @Description 静止超过阈值后由客户端心跳调用，附近丧尸缓慢逼近，进入攻击半径照常造成伤害
// @Tags Game
// @Produce json
// @Security BearerAuth
// @Success 200 {object} session.SmellOutcome
// @Router /api/v1/game/smell [post]
func (h *GameHandler) TriggerSmell(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	outcome, err := h.gameService.TriggerSmell(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// GetStats 查询个人生存统计
// @Summary 查询个人生存统计
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ZombieStats
// @Router /api/v1/game/stats [get]
func (h *GameHandler) GetStats(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	stats, err := h.gameService.GetStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetLeaderboard 生存时长排行榜
// @Summary 生存时长排行榜
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param limit query int false "返回条数，默认10"
// @Success 200 {array} models.ZombieStats
// @Router /api/v1/game/leaderboard [get]
func (h *GameHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	top, err := h.gameService.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, top)
}
