package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/zombie-walk/internal/config"
	"github.com/wfunc/zombie-walk/internal/models"
	"github.com/wfunc/zombie-walk/internal/repository"
	"go.uber.org/zap"
)

func testValidator() *Validator {
	return NewValidator(&config.AntiCheatConfig{SurvivalTimeTolerance: 5 * time.Second})
}

func TestClampSurvivalTime(t *testing.T) {
	v := testValidator()
	now := time.Now()
	firstMove := now.Add(-40 * time.Second)
	session := &models.GameSession{FirstMoveAt: &firstMove}

	// 夸大上报被截断到窗口 40s + 容差 5s
	assert.Equal(t, 45, v.ClampSurvivalTime(session, 999999, now))

	// 窗口内的上报原样采信
	assert.Equal(t, 30, v.ClampSurvivalTime(session, 30, now))

	// 负数归零
	assert.Equal(t, 0, v.ClampSurvivalTime(session, -10, now))
}

func TestClampSurvivalTimeNoFirstMove(t *testing.T) {
	v := testValidator()

	// 未移动过的会话没有观测窗口
	session := &models.GameSession{}
	assert.Equal(t, 0, v.ClampSurvivalTime(session, 100, time.Now()))
}

func TestClampSurvivalTimeEndedSession(t *testing.T) {
	v := testValidator()
	now := time.Now()
	firstMove := now.Add(-300 * time.Second)
	endedAt := now.Add(-240 * time.Second)
	session := &models.GameSession{FirstMoveAt: &firstMove, EndedAt: &endedAt}

	// 已结束会话以结束时刻为窗口上界：60s + 5s 容差
	assert.Equal(t, 65, v.ClampSurvivalTime(session, 999, now))
}

func testRecorder(t *testing.T) (*Recorder, repository.ZombieStatsRepository) {
	db := repository.TestDB(t)
	repository.SeedTestData(t, db)
	repo := repository.NewZombieStatsRepository(db)
	return NewRecorder(repo, zap.NewNop()), repo
}

func TestRecordLifecycle(t *testing.T) {
	r, repo := testRecorder(t)
	ctx := context.Background()

	require.NoError(t, r.RecordGameStart(ctx, 1))
	require.NoError(t, r.RecordDeath(ctx, 1, 120))
	require.NoError(t, r.RecordEducated(ctx, 1))
	require.NoError(t, r.RecordResource(ctx, 1, 3))
	require.NoError(t, r.RecordExtraction(ctx, 1, 80, 4))

	stats, err := repo.FindByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.GamesPlayed)
	assert.Equal(t, 1, stats.Deaths)
	assert.Equal(t, 1, stats.ZombiesEducated)
	assert.Equal(t, 3, stats.ResourcesCollected)
	assert.Equal(t, 4, stats.ZombiesEvaded)

	// 最佳生存时长只升不降
	assert.Equal(t, 120, stats.BestSurvivalTime)
}

func TestLeaderboard(t *testing.T) {
	r, _ := testRecorder(t)
	ctx := context.Background()

	require.NoError(t, r.RecordDeath(ctx, 1, 60))
	require.NoError(t, r.RecordDeath(ctx, 2, 300))

	top, err := r.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, uint(2), top[0].UserID)
	assert.Equal(t, 300, top[0].BestSurvivalTime)
}

func TestRandomAvatar(t *testing.T) {
	r, _ := testRecorder(t)
	ctx := context.Background()

	// 无阵亡记录时头像池为空
	avatar, err := r.RandomAvatar(ctx)
	require.NoError(t, err)
	assert.Empty(t, avatar)

	require.NoError(t, r.RecordDeath(ctx, 1, 60))
	avatar, err = r.RandomAvatar(ctx)
	require.NoError(t, err)
	assert.Equal(t, "avatar1.png", avatar)
}
