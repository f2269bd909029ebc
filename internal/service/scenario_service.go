package service

import (
	"context"

	"github.com/wfunc/zombie-walk/internal/errors"
	"github.com/wfunc/zombie-walk/internal/models"
	"github.com/wfunc/zombie-walk/internal/repository"
	"go.uber.org/zap"
)

// scenarioService 剧本管理服务实现
type scenarioService struct {
	repo repository.ScenarioRepository
	log  *zap.Logger
}

// NewScenarioService 创建剧本管理服务
func NewScenarioService(repo repository.ScenarioRepository, log *zap.Logger) ScenarioService {
	return &scenarioService{
		repo: repo,
		log:  log.Named("scenario-admin"),
	}
}

func (s *scenarioService) ListPresets(ctx context.Context) ([]*models.ScenarioPreset, error) {
	presets, err := s.repo.FindAllPresets(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询剧本列表失败")
	}
	return presets, nil
}

func (s *scenarioService) GetPreset(ctx context.Context, id uint) (*models.ScenarioPreset, error) {
	preset, err := s.repo.FindPresetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.New(errors.ErrPresetNotFound)
		}
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询剧本失败")
	}
	return preset, nil
}

func (s *scenarioService) CreatePreset(ctx context.Context, preset *models.ScenarioPreset) error {
	if err := s.repo.CreatePreset(ctx, preset); err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "创建剧本失败")
	}
	s.log.Info("剧本已创建", zap.String("name", preset.Name))
	return nil
}

func (s *scenarioService) UpdatePreset(ctx context.Context, preset *models.ScenarioPreset) error {
	if _, err := s.GetPreset(ctx, preset.ID); err != nil {
		return err
	}
	if err := s.repo.UpdatePreset(ctx, preset); err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "更新剧本失败")
	}
	return nil
}

func (s *scenarioService) DeletePreset(ctx context.Context, id uint) error {
	if _, err := s.GetPreset(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeletePreset(ctx, id); err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "删除剧本失败")
	}
	s.log.Info("剧本已删除", zap.Uint("preset_id", id))
	return nil
}

// SetDefaultPreset 切换默认剧本，底层保证原子翻转
func (s *scenarioService) SetDefaultPreset(ctx context.Context, id uint) error {
	if err := s.repo.SetDefaultPreset(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return errors.New(errors.ErrPresetNotFound)
		}
		return errors.Wrap(err, errors.ErrDatabase, "切换默认剧本失败")
	}
	s.log.Info("默认剧本已切换", zap.Uint("preset_id", id))
	return nil
}

func (s *scenarioService) CreateRule(ctx context.Context, rule *models.SpawnRule) error {
	if _, err := s.GetPreset(ctx, rule.PresetID); err != nil {
		return err
	}
	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "创建规则失败")
	}
	return nil
}

func (s *scenarioService) UpdateRule(ctx context.Context, rule *models.SpawnRule) error {
	if _, err := s.repo.FindRuleByID(ctx, rule.ID); err != nil {
		if repository.IsNotFound(err) {
			return errors.New(errors.ErrRuleNotFound)
		}
		return errors.Wrap(err, errors.ErrDatabase, "查询规则失败")
	}
	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "更新规则失败")
	}
	return nil
}

func (s *scenarioService) DeleteRule(ctx context.Context, id uint) error {
	if _, err := s.repo.FindRuleByID(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return errors.New(errors.ErrRuleNotFound)
		}
		return errors.Wrap(err, errors.ErrDatabase, "查询规则失败")
	}
	if err := s.repo.DeleteRule(ctx, id); err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "删除规则失败")
	}
	return nil
}
