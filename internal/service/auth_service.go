package service

import (
	"context"
	"time"

	"github.com/wfunc/zombie-walk/internal/errors"
	"github.com/wfunc/zombie-walk/internal/models"
	"github.com/wfunc/zombie-walk/internal/repository"
	"github.com/wfunc/zombie-walk/internal/utils"
	"go.uber.org/zap"
)

const maxLoginAttempts = 5

// authService 认证服务实现
type authService struct {
	users    repository.UserRepository
	auths    repository.UserAuthRepository
	sessions repository.UserSessionRepository
	jwt      *utils.JWTManager
	log      *zap.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(repos *repository.Manager, jwt *utils.JWTManager, log *zap.Logger) AuthService {
	return &authService{
		users:    repos.User(),
		auths:    repos.UserAuth(),
		sessions: repos.UserSession(),
		jwt:      jwt,
		log:      log.Named("auth"),
	}
}

// Register 注册新玩家
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if _, err := s.users.FindByUsername(ctx, req.Username); err == nil {
		return nil, errors.New(errors.ErrUserExists)
	} else if !repository.IsNotFound(err) {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询用户失败")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "密码哈希失败")
	}

	user := &models.User{
		Username: req.Username,
		Nickname: req.Nickname,
		Avatar:   req.Avatar,
		Role:     "player",
		Status:   "active",
	}
	if user.Nickname == "" {
		user.Nickname = req.Username
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "创建用户失败")
	}
	if err := s.auths.Create(ctx, &models.UserAuth{UserID: user.ID, Password: hash}); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "创建认证信息失败")
	}

	s.log.Info("新玩家注册", zap.String("username", user.Username))
	return s.issueTokens(ctx, user, req.IP, "")
}

// Login 登录
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.New(errors.ErrInvalidCredentials)
		}
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询用户失败")
	}
	if user.Status != "active" {
		return nil, errors.New(errors.ErrUserFrozen)
	}

	auth, err := s.auths.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询认证信息失败")
	}
	if auth.LockedUntil != nil && auth.LockedUntil.After(time.Now()) {
		return nil, errors.New(errors.ErrAccountLocked)
	}

	ok, err := utils.VerifyPassword(req.Password, auth.Password)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "密码校验失败")
	}
	if !ok {
		auth.LoginAttempts++
		if auth.LoginAttempts >= maxLoginAttempts {
			lockUntil := time.Now().Add(30 * time.Minute)
			auth.LockedUntil = &lockUntil
			s.log.Warn("账号因连续失败被锁定", zap.String("username", user.Username))
		}
		if err := s.auths.Update(ctx, auth); err != nil {
			s.log.Error("更新登录失败次数出错", zap.Error(err))
		}
		return nil, errors.New(errors.ErrInvalidCredentials)
	}

	if auth.LoginAttempts > 0 || auth.LockedUntil != nil {
		auth.LoginAttempts = 0
		auth.LockedUntil = nil
		if err := s.auths.Update(ctx, auth); err != nil {
			s.log.Error("重置登录失败次数出错", zap.Error(err))
		}
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID, req.IP); err != nil {
		s.log.Error("更新登录时间出错", zap.Error(err))
	}

	return s.issueTokens(ctx, user, req.IP, req.Device)
}

// Logout 注销当前登录会话
func (s *authService) Logout(ctx context.Context, tokenID string) error {
	if err := s.sessions.Revoke(ctx, tokenID); err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "注销会话失败")
	}
	return nil
}

// RefreshToken 刷新访问令牌
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwt.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, errors.New(errors.ErrInvalidToken)
	}

	stored, err := s.sessions.FindByTokenID(ctx, claims.TokenID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.New(errors.ErrInvalidToken)
		}
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询登录会话失败")
	}
	if stored.RevokedAt != nil || stored.ExpiredAt.Before(time.Now()) {
		return nil, errors.New(errors.ErrTokenExpired)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询用户失败")
	}

	access, err := s.jwt.GenerateAccessToken(user.ID, user.Username, user.Role, claims.TokenID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "签发令牌失败")
	}
	return &AuthResponse{
		User:         user,
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwt.GetTokenExpiry("access").Seconds()),
	}, nil
}

// ValidateToken 校验访问令牌
func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		if err == utils.ErrExpiredToken {
			return nil, errors.New(errors.ErrTokenExpired)
		}
		return nil, errors.New(errors.ErrInvalidToken)
	}
	if claims.TokenType != "access" {
		return nil, errors.New(errors.ErrInvalidToken)
	}
	return &TokenClaims{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
		TokenID:  claims.TokenID,
	}, nil
}

// RevokeAllSessions 注销该玩家全部登录会话
func (s *authService) RevokeAllSessions(ctx context.Context, userID uint) error {
	if err := s.sessions.RevokeAllByUserID(ctx, userID); err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "注销会话失败")
	}
	return nil
}

func (s *authService) issueTokens(ctx context.Context, user *models.User, ip, device string) (*AuthResponse, error) {
	tokenID, err := utils.GenerateSessionID()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "生成令牌ID失败")
	}

	access, err := s.jwt.GenerateAccessToken(user.ID, user.Username, user.Role, tokenID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "签发访问令牌失败")
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.ID, tokenID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "签发刷新令牌失败")
	}

	session := &models.UserSession{
		UserID:       user.ID,
		TokenID:      tokenID,
		RefreshToken: refresh,
		DeviceType:   device,
		ClientIP:     ip,
		ExpiredAt:    time.Now().Add(s.jwt.GetTokenExpiry("refresh")),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "保存登录会话失败")
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwt.GetTokenExpiry("access").Seconds()),
	}, nil
}
