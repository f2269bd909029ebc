package models

import (
	"time"
)

// 会话结束原因
const (
	EndReasonDeath     = "death"     // 死亡
	EndReasonExtracted = "extracted" // 成功撤离
	EndReasonPaused    = "paused"    // 安全区暂离（可恢复）
)

// GameSession 生存游戏会话表
// 每个玩家同一时间最多只有一个激活会话；hp为0时必须为非激活状态
type GameSession struct {
	BaseModel
	UserID       uint    `gorm:"not null;index" json:"user_id"`
	SessionID    string  `gorm:"uniqueIndex;size:64;not null" json:"session_id"`
	HP           int     `gorm:"default:100" json:"hp"`
	MaxHP        int     `gorm:"default:100" json:"max_hp"`
	ActionPoints int     `gorm:"default:10" json:"action_points"`
	MaxAP        int     `gorm:"default:10" json:"max_ap"`
	Lat          float64 `gorm:"not null" json:"lat"`
	Lng          float64 `gorm:"not null" json:"lng"`
	NoiseLevel   int     `gorm:"default:0" json:"noise_level"` // 0-100
	MoveCount    int     `gorm:"default:0" json:"move_count"`

	StartedAt    time.Time  `json:"started_at"`
	FirstMoveAt  *time.Time `json:"first_move_at,omitempty"` // 生存计时起点（非创建时间）
	LastAPUseAt  time.Time  `json:"last_ap_use_at"`          // AP惰性恢复基准
	LastMoveAt   *time.Time `json:"last_move_at,omitempty"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	SurvivalTime int        `gorm:"default:0" json:"survival_time"` // 秒

	IsActive     bool   `gorm:"default:true;index" json:"is_active"`
	IsInSafeZone bool   `gorm:"default:false" json:"is_in_safe_zone"`
	EndReason    string `gorm:"size:20" json:"end_reason"`

	ScenarioPresetID uint `gorm:"index" json:"scenario_preset_id"`

	// 关联
	Zombies   []Zombie        `gorm:"foreignKey:SessionID" json:"-"`
	Objects   []WorldObject   `gorm:"foreignKey:SessionID" json:"-"`
	Inventory []InventoryItem `gorm:"foreignKey:SessionID" json:"-"`
}

// Zombie 丧尸表（会话私有）
type Zombie struct {
	BaseModel
	SessionID uint    `gorm:"not null;index" json:"session_id"`
	Lat       float64 `gorm:"not null" json:"lat"`
	Lng       float64 `gorm:"not null" json:"lng"`
	IsHunting bool    `gorm:"default:false" json:"is_hunting"`
	Speed     float64 `gorm:"default:50" json:"speed"` // 米/回合
	AvatarURL string  `gorm:"size:255" json:"avatar_url"` // 纯装饰：已阵亡玩家的头像
}

// 世界对象类型
const (
	ObjectShelter        = "shelter"
	ObjectShop           = "shop"
	ObjectPharmacy       = "pharmacy"
	ObjectGasStation     = "gas_station"
	ObjectCamp           = "camp"
	ObjectLibrary        = "library"
	ObjectBookstore      = "bookstore"
	ObjectExtractionCamp = "extraction_camp"
)

// WorldObject 世界对象表（会话私有，开局一次性生成）
type WorldObject struct {
	BaseModel
	SessionID uint    `gorm:"not null;index" json:"session_id"`
	Type      string  `gorm:"size:30;not null" json:"type"`
	Lat       float64 `gorm:"not null" json:"lat"`
	Lng       float64 `gorm:"not null" json:"lng"`
	Radius    float64 `gorm:"default:50" json:"radius"` // 交互半径（米）
	IsLooted  bool    `gorm:"default:false" json:"is_looted"`
	LootedAt  *time.Time `json:"looted_at,omitempty"`
	// RespawnAt 补给刷新时间，移动结算前按时间惰性恢复
	RespawnAt *time.Time `json:"respawn_at,omitempty"`
	// UnlockMoveCount 仅撤离营地使用：达到该移动次数后才解锁
	UnlockMoveCount int `gorm:"default:0" json:"unlock_move_count"`
}

// 物品类型
const (
	ItemMedkit     = "medkit"
	ItemFood       = "food"
	ItemWater      = "water"
	ItemWeapon     = "weapon"
	ItemAmmo       = "ammo"
	ItemFlashlight = "flashlight"
	ItemBook       = "book"
)

// InventoryItem 背包物品表（会话私有）
// 非书籍物品按(type, name)堆叠，书籍按BookID堆叠
type InventoryItem struct {
	BaseModel
	SessionID   uint   `gorm:"not null;index" json:"session_id"`
	ItemType    string `gorm:"size:30;not null" json:"item_type"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Quantity    int    `gorm:"default:1" json:"quantity"`
	EffectValue int    `gorm:"default:0" json:"effect_value"`
	BookID      string `gorm:"size:64" json:"book_id,omitempty"`
}

// ZombieStats 玩家生存统计表
// 仅允许通过防作弊校验层写入，禁止直接采信客户端数据
type ZombieStats struct {
	BaseModel
	UserID             uint `gorm:"uniqueIndex;not null" json:"user_id"`
	Deaths             int  `gorm:"default:0" json:"deaths"`
	BestSurvivalTime   int  `gorm:"default:0" json:"best_survival_time"` // 秒
	ZombiesEvaded      int  `gorm:"default:0" json:"zombies_evaded"`
	ZombiesEducated    int  `gorm:"default:0" json:"zombies_educated"`
	ResourcesCollected int  `gorm:"default:0" json:"resources_collected"`
	GamesPlayed        int  `gorm:"default:0" json:"games_played"`
}
