package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/zombie-walk/internal/models"
)

func TestScenarioRepository_CreateAndFind(t *testing.T) {
	db := TestDB(t)
	repo := NewScenarioRepository(db)
	ctx := context.Background()

	preset := CreateTestPreset("标准难度", true)
	require.NoError(t, repo.CreatePreset(ctx, preset))
	assert.NotZero(t, preset.ID)

	found, err := repo.FindPresetByID(ctx, preset.ID)
	require.NoError(t, err)
	assert.Equal(t, "标准难度", found.Name)
	require.Len(t, found.Rules, 1)
	assert.Equal(t, 2, found.Rules[0].ZombieCount)
}

func TestScenarioRepository_SetDefaultPreset(t *testing.T) {
	db := TestDB(t)
	repo := NewScenarioRepository(db)
	ctx := context.Background()

	first := CreateTestPreset("预设A", true)
	second := CreateTestPreset("预设B", false)
	require.NoError(t, repo.CreatePreset(ctx, first))
	require.NoError(t, repo.CreatePreset(ctx, second))

	// 切换默认预设
	require.NoError(t, repo.SetDefaultPreset(ctx, second.ID))

	// 有且仅有一个默认预设
	var count int64
	require.NoError(t, db.Model(&models.ScenarioPreset{}).
		Where("is_default = ?", true).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	def, err := repo.FindDefaultPreset(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)

	// 对不存在的预设设置默认应失败，且不破坏现状
	err = repo.SetDefaultPreset(ctx, 9999)
	assert.Error(t, err)

	def, err = repo.FindDefaultPreset(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)
}

func TestScenarioRepository_Rules(t *testing.T) {
	db := TestDB(t)
	repo := NewScenarioRepository(db)
	ctx := context.Background()

	preset := CreateTestPreset("规则测试", true)
	require.NoError(t, repo.CreatePreset(ctx, preset))

	// 追加一条开放区间规则（无上限）
	rule := &models.SpawnRule{
		PresetID:    preset.ID,
		TriggerType: models.TriggerTurn,
		TurnMin:     10,
		TurnMax:     nil,
		ZombieCount: 5,
		DistanceMin: 100,
		DistanceMax: 300,
		Speed:       80,
		Chance:      50,
		SortOrder:   2,
	}
	require.NoError(t, repo.CreateRule(ctx, rule))

	rules, err := repo.FindRulesByPresetID(ctx, preset.ID)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	// 按排序号排列
	assert.Equal(t, 1, rules[0].SortOrder)
	assert.Equal(t, 2, rules[1].SortOrder)
	assert.Nil(t, rules[1].TurnMax)

	// 删除预设连带删除规则
	require.NoError(t, repo.DeletePreset(ctx, preset.ID))
	rules, err = repo.FindRulesByPresetID(ctx, preset.ID)
	require.NoError(t, err)
	assert.Empty(t, rules)
}
