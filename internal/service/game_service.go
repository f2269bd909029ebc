package service

import (
	"context"

	"github.com/wfunc/zombie-walk/internal/game/session"
	"github.com/wfunc/zombie-walk/internal/game/zombie"
	"github.com/wfunc/zombie-walk/internal/models"
)

// gameService 生存游戏服务实现，转发到会话管理器
type gameService struct {
	manager *session.Manager
}

// NewGameService 创建游戏服务
func NewGameService(manager *session.Manager) GameService {
	return &gameService{manager: manager}
}

func (s *gameService) StartGame(ctx context.Context, userID uint, lat, lng float64) (*session.GameState, error) {
	return s.manager.StartGame(ctx, userID, lat, lng)
}

func (s *gameService) GetState(ctx context.Context, userID uint) (*session.GameState, error) {
	return s.manager.GetState(ctx, userID)
}

func (s *gameService) MakeMove(ctx context.Context, userID uint, lat, lng float64) (*session.MoveOutcome, error) {
	return s.manager.MakeMove(ctx, userID, lat, lng)
}

func (s *gameService) UseMedkit(ctx context.Context, userID uint) (*models.GameSession, error) {
	return s.manager.UseMedkit(ctx, userID)
}

func (s *gameService) ThrowBook(ctx context.Context, userID uint, zombieID uint) (*models.Zombie, error) {
	return s.manager.ThrowBook(ctx, userID, zombieID)
}

func (s *gameService) UseFlashlight(ctx context.Context, userID uint) ([]*zombie.DistantZombie, error) {
	return s.manager.UseFlashlight(ctx, userID)
}

func (s *gameService) ExitGame(ctx context.Context, userID uint, claimedSurvival int) (*models.GameSession, error) {
	return s.manager.EndActiveSession(ctx, userID, claimedSurvival)
}

func (s *gameService) GetSavedSession(ctx context.Context, userID uint) (*models.GameSession, error) {
	return s.manager.GetSavedSession(ctx, userID)
}

func (s *gameService) ResumeGame(ctx context.Context, userID uint) (*session.GameState, error) {
	return s.manager.ResumeGame(ctx, userID)
}

func (s *gameService) ExtractPlayer(ctx context.Context, userID uint, claimedSurvival int) (*models.GameSession, error) {
	return s.manager.ExtractPlayer(ctx, userID, claimedSurvival)
}

func (s *gameService) CheckOfflineDeath(ctx context.Context, userID uint) (bool, error) {
	return s.manager.CheckOfflineDeath(ctx, userID)
}

func (s *gameService) TriggerSmell(ctx context.Context, userID uint) (*session.SmellOutcome, error) {
	return s.manager.HandleSmell(ctx, userID)
}

func (s *gameService) GetStats(ctx context.Context, userID uint) (*models.ZombieStats, error) {
	return s.manager.Recorder().Get(ctx, userID)
}

func (s *gameService) GetLeaderboard(ctx context.Context, limit int) ([]*models.ZombieStats, error) {
	return s.manager.Recorder().Leaderboard(ctx, limit)
}
