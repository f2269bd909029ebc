// Package scenario 剧本规则引擎
// 剧本预设决定每回合丧尸的出现节奏，可由运营热更
package scenario

import (
	"context"
	"math/rand"
	"os"

	"github.com/wfunc/zombie-walk/internal/errors"
	"github.com/wfunc/zombie-walk/internal/models"
	"github.com/wfunc/zombie-walk/internal/repository"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Engine 剧本引擎
type Engine struct {
	repo repository.ScenarioRepository
	rand *rand.Rand
	log  *zap.Logger
}

// NewEngine 创建剧本引擎
func NewEngine(repo repository.ScenarioRepository, r *rand.Rand, log *zap.Logger) *Engine {
	return &Engine{
		repo: repo,
		rand: r,
		log:  log.Named("scenario"),
	}
}

// MatchRules 返回回合命中的全部规则
// 回合区间为闭区间，TurnMax 为空表示无上限；多条规则可同时命中
func MatchRules(rules []*models.SpawnRule, moveCount int) []*models.SpawnRule {
	matched := make([]*models.SpawnRule, 0)
	for _, rule := range rules {
		if rule.TriggerType != models.TriggerTurn {
			continue
		}
		if moveCount < rule.TurnMin {
			continue
		}
		if rule.TurnMax != nil && moveCount > *rule.TurnMax {
			continue
		}
		matched = append(matched, rule)
	}
	return matched
}

// FireRules 对命中的规则逐条独立掷概率，返回实际触发的规则
func (e *Engine) FireRules(rules []*models.SpawnRule, moveCount int) []*models.SpawnRule {
	fired := make([]*models.SpawnRule, 0)
	for _, rule := range MatchRules(rules, moveCount) {
		if rule.Chance >= 100 || e.rand.Intn(100) < rule.Chance {
			fired = append(fired, rule)
		}
	}
	return fired
}

// DefaultPreset 返回当前默认剧本
func (e *Engine) DefaultPreset(ctx context.Context) (*models.ScenarioPreset, error) {
	preset, err := e.repo.FindDefaultPreset(ctx)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询默认剧本失败")
	}
	return preset, nil
}

// PresetByID 按ID查询剧本（含规则）
func (e *Engine) PresetByID(ctx context.Context, id uint) (*models.ScenarioPreset, error) {
	preset, err := e.repo.FindPresetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.New(errors.ErrPresetNotFound)
		}
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询剧本失败")
	}
	return preset, nil
}

// presetFile 剧本种子文件结构
type presetFile struct {
	Presets []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		IsDefault   bool   `yaml:"is_default"`
		Rules       []struct {
			TurnMin      int     `yaml:"turn_min"`
			TurnMax      *int    `yaml:"turn_max"`
			ZombieCount  int     `yaml:"zombie_count"`
			DistanceMin  float64 `yaml:"distance_min"`
			DistanceMax  float64 `yaml:"distance_max"`
			Speed        float64 `yaml:"speed"`
			Chance       int     `yaml:"chance"`
			UseAvatars   bool    `yaml:"use_avatars"`
			AvatarChance int     `yaml:"avatar_chance"`
		} `yaml:"rules"`
	} `yaml:"presets"`
}

// SeedFromFile 首次启动时从种子文件导入剧本预设
// 库内已有预设时不做任何事，避免覆盖运营调整
func (e *Engine) SeedFromFile(ctx context.Context, path string) error {
	count, err := e.repo.CountPresets(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "统计剧本数量失败")
	}
	if count > 0 {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			e.log.Warn("剧本种子文件不存在，跳过导入", zap.String("path", path))
			return nil
		}
		return errors.Wrap(err, errors.ErrConfigLoad, "读取剧本种子文件失败")
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errors.Wrap(err, errors.ErrConfigParse, "解析剧本种子文件失败")
	}

	for _, p := range file.Presets {
		preset := &models.ScenarioPreset{
			Name:        p.Name,
			Description: p.Description,
			IsDefault:   p.IsDefault,
		}
		for i, r := range p.Rules {
			preset.Rules = append(preset.Rules, models.SpawnRule{
				TriggerType:  models.TriggerTurn,
				TurnMin:      r.TurnMin,
				TurnMax:      r.TurnMax,
				ZombieCount:  r.ZombieCount,
				DistanceMin:  r.DistanceMin,
				DistanceMax:  r.DistanceMax,
				Speed:        r.Speed,
				Chance:       r.Chance,
				SortOrder:    i,
				UseAvatars:   r.UseAvatars,
				AvatarChance: r.AvatarChance,
			})
		}
		if err := e.repo.CreatePreset(ctx, preset); err != nil {
			return errors.Wrapf(err, errors.ErrDatabase, "导入剧本 %s 失败", p.Name)
		}
	}

	e.log.Info("剧本种子导入完成",
		zap.String("path", path),
		zap.Int("presets", len(file.Presets)))
	return nil
}
