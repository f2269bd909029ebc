package models

import (
	"time"
)

// User 用户基础信息表
// 身份验证由宿主系统负责，游戏核心只依赖已验证的用户ID和头像
type User struct {
	BaseModel
	Username    string     `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Nickname    string     `gorm:"size:100" json:"nickname"`
	Avatar      string     `gorm:"size:255" json:"avatar"` // 头像URL（丧尸外观素材来源）
	Role        string     `gorm:"size:20;default:'player'" json:"role"`   // player, admin
	Status      string     `gorm:"size:20;default:'active'" json:"status"` // active, frozen, banned
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP string     `gorm:"size:50" json:"last_login_ip"`

	// 关联
	Auth     UserAuth      `gorm:"foreignKey:UserID" json:"-"`
	Sessions []UserSession `gorm:"foreignKey:UserID" json:"-"`
}

// UserAuth 用户认证信息表
type UserAuth struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Password      string     `gorm:"size:255;not null" json:"-"`
	LoginAttempts int        `gorm:"default:0" json:"login_attempts"`
	LockedUntil   *time.Time `json:"locked_until,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UserSession 用户登录会话表（JWT刷新令牌）
type UserSession struct {
	BaseModel
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	TokenID      string    `gorm:"uniqueIndex;size:64;not null" json:"token_id"`
	RefreshToken string    `gorm:"size:512" json:"-"`
	DeviceType   string    `gorm:"size:50" json:"device_type"`
	ClientIP     string    `gorm:"size:50" json:"client_ip"`
	ExpiredAt    time.Time `json:"expired_at"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
}
