package models

// ScenarioPreset 剧本预设表
// 有且仅有一个预设被标记为默认
type ScenarioPreset struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	IsDefault   bool   `gorm:"default:false;index" json:"is_default"`

	// 关联
	Rules []SpawnRule `gorm:"foreignKey:PresetID" json:"rules,omitempty"`
}

// 刷新规则触发类型（目前仅实现回合触发）
const (
	TriggerTurn = "turn"
)

// SpawnRule 丧尸刷新规则表
// TurnMax为空表示"从TurnMin起每回合"；同一回合所有命中的规则叠加生效
type SpawnRule struct {
	BaseModel
	PresetID    uint    `gorm:"not null;index" json:"preset_id"`
	TriggerType string  `gorm:"size:20;default:'turn'" json:"trigger_type"`
	TurnMin     int     `gorm:"default:1" json:"turn_min"`
	TurnMax     *int    `json:"turn_max,omitempty"`
	ZombieCount int     `gorm:"default:1" json:"zombie_count"`
	DistanceMin float64 `gorm:"default:200" json:"distance_min"` // 米
	DistanceMax float64 `gorm:"default:500" json:"distance_max"` // 米
	Speed       float64 `gorm:"default:50" json:"speed"`         // 米/回合
	Chance      int     `gorm:"default:100" json:"chance"`       // 0-100
	SortOrder   int     `gorm:"default:0" json:"sort_order"`
	UseAvatars  bool    `gorm:"default:false" json:"use_avatars"`
	AvatarChance int    `gorm:"default:0" json:"avatar_chance"` // 0-100，逐只独立判定
}
