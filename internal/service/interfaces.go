package service

import (
	"context"

	"github.com/wfunc/zombie-walk/internal/game/session"
	"github.com/wfunc/zombie-walk/internal/game/zombie"
	"github.com/wfunc/zombie-walk/internal/models"
)

// AuthService 认证服务接口
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, tokenID string) error
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	RevokeAllSessions(ctx context.Context, userID uint) error
}

// GameService 生存游戏服务接口
type GameService interface {
	StartGame(ctx context.Context, userID uint, lat, lng float64) (*session.GameState, error)
	GetState(ctx context.Context, userID uint) (*session.GameState, error)
	MakeMove(ctx context.Context, userID uint, lat, lng float64) (*session.MoveOutcome, error)
	UseMedkit(ctx context.Context, userID uint) (*models.GameSession, error)
	ThrowBook(ctx context.Context, userID uint, zombieID uint) (*models.Zombie, error)
	UseFlashlight(ctx context.Context, userID uint) ([]*zombie.DistantZombie, error)
	ExitGame(ctx context.Context, userID uint, claimedSurvival int) (*models.GameSession, error)
	GetSavedSession(ctx context.Context, userID uint) (*models.GameSession, error)
	ResumeGame(ctx context.Context, userID uint) (*session.GameState, error)
	ExtractPlayer(ctx context.Context, userID uint, claimedSurvival int) (*models.GameSession, error)
	CheckOfflineDeath(ctx context.Context, userID uint) (bool, error)
	TriggerSmell(ctx context.Context, userID uint) (*session.SmellOutcome, error)
	GetStats(ctx context.Context, userID uint) (*models.ZombieStats, error)
	GetLeaderboard(ctx context.Context, limit int) ([]*models.ZombieStats, error)
}

// ScenarioService 剧本管理服务接口（运营侧）
type ScenarioService interface {
	ListPresets(ctx context.Context) ([]*models.ScenarioPreset, error)
	GetPreset(ctx context.Context, id uint) (*models.ScenarioPreset, error)
	CreatePreset(ctx context.Context, preset *models.ScenarioPreset) error
	UpdatePreset(ctx context.Context, preset *models.ScenarioPreset) error
	DeletePreset(ctx context.Context, id uint) error
	SetDefaultPreset(ctx context.Context, id uint) error
	CreateRule(ctx context.Context, rule *models.SpawnRule) error
	UpdateRule(ctx context.Context, rule *models.SpawnRule) error
	DeleteRule(ctx context.Context, id uint) error
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=20"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	Nickname        string `json:"nickname"`
	Avatar          string `json:"avatar"`
	IP              string `json:"-"` // 客户端IP，由handler设置
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Device   string `json:"device"`
	IP       string `json:"-"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"` // 秒
}

// TokenClaims 令牌解析结果
type TokenClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	TokenID  string `json:"token_id"`
}
