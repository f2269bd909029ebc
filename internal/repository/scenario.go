package repository

import (
	"context"

	"github.com/wfunc/zombie-walk/internal/models"
	"gorm.io/gorm"
)

// ScenarioRepository 剧本预设仓储接口
type ScenarioRepository interface {
	BaseRepository
	CreatePreset(ctx context.Context, preset *models.ScenarioPreset) error
	UpdatePreset(ctx context.Context, preset *models.ScenarioPreset) error
	DeletePreset(ctx context.Context, id uint) error
	FindPresetByID(ctx context.Context, id uint) (*models.ScenarioPreset, error)
	FindPresetByName(ctx context.Context, name string) (*models.ScenarioPreset, error)
	FindAllPresets(ctx context.Context) ([]*models.ScenarioPreset, error)
	FindDefaultPreset(ctx context.Context) (*models.ScenarioPreset, error)
	SetDefaultPreset(ctx context.Context, id uint) error
	CountPresets(ctx context.Context) (int64, error)

	CreateRule(ctx context.Context, rule *models.SpawnRule) error
	UpdateRule(ctx context.Context, rule *models.SpawnRule) error
	DeleteRule(ctx context.Context, id uint) error
	FindRuleByID(ctx context.Context, id uint) (*models.SpawnRule, error)
	FindRulesByPresetID(ctx context.Context, presetID uint) ([]*models.SpawnRule, error)
}

// scenarioRepo 剧本预设仓储实现
type scenarioRepo struct {
	*BaseRepo
}

// NewScenarioRepository 创建剧本预设仓储
func NewScenarioRepository(db *gorm.DB) ScenarioRepository {
	return &scenarioRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// CreatePreset 创建预设
func (r *scenarioRepo) CreatePreset(ctx context.Context, preset *models.ScenarioPreset) error {
	return r.db.WithContext(ctx).Create(preset).Error
}

// UpdatePreset 更新预设
func (r *scenarioRepo) UpdatePreset(ctx context.Context, preset *models.ScenarioPreset) error {
	return r.db.WithContext(ctx).Save(preset).Error
}

// DeletePreset 删除预设及其规则
func (r *scenarioRepo) DeletePreset(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("preset_id = ?", id).Delete(&models.SpawnRule{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.ScenarioPreset{}, id).Error
	})
}

// FindPresetByID 根据ID查找预设（含规则，按排序号排列）
func (r *scenarioRepo) FindPresetByID(ctx context.Context, id uint) (*models.ScenarioPreset, error) {
	var preset models.ScenarioPreset
	err := r.db.WithContext(ctx).
		Preload("Rules", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, id")
		}).
		First(&preset, id).Error
	if err != nil {
		return nil, err
	}
	return &preset, nil
}

// FindPresetByName 根据名称查找预设
func (r *scenarioRepo) FindPresetByName(ctx context.Context, name string) (*models.ScenarioPreset, error) {
	var preset models.ScenarioPreset
	err := r.db.WithContext(ctx).
		Preload("Rules", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, id")
		}).
		Where("name = ?", name).
		First(&preset).Error
	if err != nil {
		return nil, err
	}
	return &preset, nil
}

// FindAllPresets 查找所有预设
func (r *scenarioRepo) FindAllPresets(ctx context.Context) ([]*models.ScenarioPreset, error) {
	var presets []*models.ScenarioPreset
	err := r.db.WithContext(ctx).
		Preload("Rules", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, id")
		}).
		Order("id").
		Find(&presets).Error
	if err != nil {
		return nil, err
	}
	return presets, nil
}

// FindDefaultPreset 查找默认预设
func (r *scenarioRepo) FindDefaultPreset(ctx context.Context) (*models.ScenarioPreset, error) {
	var preset models.ScenarioPreset
	err := r.db.WithContext(ctx).
		Preload("Rules", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, id")
		}).
		Where("is_default = ?", true).
		First(&preset).Error
	if err != nil {
		return nil, err
	}
	return &preset, nil
}

// SetDefaultPreset 设置默认预设。
// 清除旧默认与设置新默认在同一事务内完成，保证"有且仅有一个默认"不变量。
func (r *scenarioRepo) SetDefaultPreset(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var preset models.ScenarioPreset
		if err := tx.First(&preset, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ScenarioPreset{}).
			Where("is_default = ?", true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.ScenarioPreset{}).
			Where("id = ?", id).
			Update("is_default", true).Error
	})
}

// CountPresets 统计预设数量
func (r *scenarioRepo) CountPresets(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ScenarioPreset{}).Count(&count).Error
	return count, err
}

// CreateRule 创建刷新规则
func (r *scenarioRepo) CreateRule(ctx context.Context, rule *models.SpawnRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

// UpdateRule 更新刷新规则
func (r *scenarioRepo) UpdateRule(ctx context.Context, rule *models.SpawnRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

// DeleteRule 删除刷新规则
func (r *scenarioRepo) DeleteRule(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&models.SpawnRule{}, id).Error
}

// FindRuleByID 根据ID查找规则
func (r *scenarioRepo) FindRuleByID(ctx context.Context, id uint) (*models.SpawnRule, error) {
	var rule models.SpawnRule
	err := r.db.WithContext(ctx).First(&rule, id).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// FindRulesByPresetID 查找预设的所有规则（按排序号排列）
func (r *scenarioRepo) FindRulesByPresetID(ctx context.Context, presetID uint) ([]*models.SpawnRule, error) {
	var rules []*models.SpawnRule
	err := r.db.WithContext(ctx).
		Where("preset_id = ?", presetID).
		Order("sort_order, id").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}
