package scenario

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/zombie-walk/internal/models"
	"github.com/wfunc/zombie-walk/internal/repository"
	"go.uber.org/zap"
)

func intPtr(v int) *int { return &v }

func testEngine(t *testing.T) (*Engine, repository.ScenarioRepository) {
	db := repository.TestDB(t)
	repo := repository.NewScenarioRepository(db)
	return NewEngine(repo, rand.New(rand.NewSource(1)), zap.NewNop()), repo
}

func TestMatchRules(t *testing.T) {
	early := &models.SpawnRule{TriggerType: models.TriggerTurn, TurnMin: 1, TurnMax: intPtr(5), ZombieCount: 2}
	late := &models.SpawnRule{TriggerType: models.TriggerTurn, TurnMin: 10, TurnMax: nil, ZombieCount: 4}
	rules := []*models.SpawnRule{early, late}

	// 闭区间命中
	for move := 1; move <= 5; move++ {
		matched := MatchRules(rules, move)
		require.Len(t, matched, 1, "回合 %d", move)
		assert.Equal(t, early, matched[0])
	}

	// 区间之间无规则
	assert.Empty(t, MatchRules(rules, 6))
	assert.Empty(t, MatchRules(rules, 9))

	// TurnMax 为空：无上限
	assert.Len(t, MatchRules(rules, 10), 1)
	assert.Len(t, MatchRules(rules, 9999), 1)
}

func TestMatchRulesOverlap(t *testing.T) {
	a := &models.SpawnRule{TriggerType: models.TriggerTurn, TurnMin: 1, TurnMax: intPtr(10)}
	b := &models.SpawnRule{TriggerType: models.TriggerTurn, TurnMin: 5, TurnMax: intPtr(15)}
	rules := []*models.SpawnRule{a, b}

	// 重叠区间内两条规则同时命中
	assert.Len(t, MatchRules(rules, 7), 2)
	assert.Len(t, MatchRules(rules, 3), 1)
	assert.Len(t, MatchRules(rules, 12), 1)
}

func TestFireRulesChance(t *testing.T) {
	engine, _ := testEngine(t)

	sure := &models.SpawnRule{TriggerType: models.TriggerTurn, TurnMin: 1, Chance: 100}
	never := &models.SpawnRule{TriggerType: models.TriggerTurn, TurnMin: 1, Chance: 0}
	rules := []*models.SpawnRule{sure, never}

	// 概率 100 必触发，概率 0 必不触发
	for move := 1; move <= 20; move++ {
		fired := engine.FireRules(rules, move)
		require.Len(t, fired, 1)
		assert.Equal(t, sure, fired[0])
	}
}

func TestFireRulesIndependentRolls(t *testing.T) {
	engine, _ := testEngine(t)

	half := &models.SpawnRule{TriggerType: models.TriggerTurn, TurnMin: 1, Chance: 50}
	rules := []*models.SpawnRule{half, half}

	// 各规则独立掷概率：大样本下触发数应接近一半
	total := 0
	for i := 0; i < 1000; i++ {
		total += len(engine.FireRules(rules, 1))
	}
	assert.Greater(t, total, 800)
	assert.Less(t, total, 1200)
}

func TestSeedFromFile(t *testing.T) {
	engine, repo := testEngine(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	content := `presets:
  - name: 标准剧本
    description: 默认节奏
    is_default: true
    rules:
      - turn_min: 1
        turn_max: 5
        zombie_count: 2
        distance_min: 200
        distance_max: 500
        speed: 50
        chance: 100
      - turn_min: 10
        zombie_count: 4
        distance_min: 150
        distance_max: 400
        speed: 60
        chance: 50
        use_avatars: true
        avatar_chance: 30
  - name: 地狱难度
    is_default: false
    rules:
      - turn_min: 1
        zombie_count: 6
        distance_min: 100
        distance_max: 300
        speed: 80
        chance: 100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, engine.SeedFromFile(ctx, path))

	presets, err := repo.FindAllPresets(ctx)
	require.NoError(t, err)
	require.Len(t, presets, 2)

	def, err := engine.DefaultPreset(ctx)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, "标准剧本", def.Name)
	require.Len(t, def.Rules, 2)

	// 无上限规则导入后 TurnMax 保持为空
	assert.Nil(t, def.Rules[1].TurnMax)
	assert.True(t, def.Rules[1].UseAvatars)

	// 已有数据时重复导入不生效
	require.NoError(t, os.WriteFile(path, []byte("presets:\n  - name: 覆盖剧本\n    is_default: true\n"), 0644))
	require.NoError(t, engine.SeedFromFile(ctx, path))
	count, err := repo.CountPresets(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSeedFromFileMissing(t *testing.T) {
	engine, repo := testEngine(t)
	ctx := context.Background()

	// 文件缺失按空种子处理
	require.NoError(t, engine.SeedFromFile(ctx, "/nonexistent/scenarios.yaml"))
	count, err := repo.CountPresets(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestDefaultPresetEmpty(t *testing.T) {
	engine, _ := testEngine(t)
	def, err := engine.DefaultPreset(context.Background())
	require.NoError(t, err)
	assert.Nil(t, def)
}
