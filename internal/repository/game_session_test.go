package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/zombie-walk/internal/models"
)

func TestGameSessionRepository_Create(t *testing.T) {
	db := TestDB(t)
	SeedTestData(t, db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	// 测试创建游戏会话
	session := CreateTestGameSession(1)
	err := repo.Create(ctx, session)
	require.NoError(t, err)
	assert.NotZero(t, session.ID)

	// 验证会话已创建
	found, err := repo.FindBySessionID(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, found.UserID)
	assert.Equal(t, 100, found.HP)
	assert.True(t, found.IsActive)
}

func TestGameSessionRepository_FindActiveByUserID(t *testing.T) {
	db := TestDB(t)
	SeedTestData(t, db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	// 没有激活会话时返回未找到
	_, err := repo.FindActiveByUserID(ctx, 1)
	assert.True(t, IsNotFound(err))

	session := CreateTestGameSession(1)
	require.NoError(t, repo.Create(ctx, session))

	found, err := repo.FindActiveByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, session.SessionID, found.SessionID)
}

func TestGameSessionRepository_DeactivateAllByUserID(t *testing.T) {
	db := TestDB(t)
	SeedTestData(t, db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	// 创建两个激活会话（模拟异常数据）
	first := CreateTestGameSession(1)
	second := CreateTestGameSession(1)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	// 全部停用
	affected, err := repo.DeactivateAllByUserID(ctx, 1, models.EndReasonDeath)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	// 验证不再有激活会话
	_, err = repo.FindActiveByUserID(ctx, 1)
	assert.True(t, IsNotFound(err))

	// 其他用户的会话不受影响
	other := CreateTestGameSession(2)
	require.NoError(t, repo.Create(ctx, other))
	affected, err = repo.DeactivateAllByUserID(ctx, 1, models.EndReasonDeath)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestGameSessionRepository_ConsumeActionPoint(t *testing.T) {
	db := TestDB(t)
	SeedTestData(t, db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	session := CreateTestGameSession(1)
	require.NoError(t, repo.Create(ctx, session))

	// 正常扣减
	ok, err := repo.ConsumeActionPoint(ctx, session.ID, 9, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := repo.FindByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, found.ActionPoints)

	// 会话停用后扣减失败
	_, err = repo.DeactivateAllByUserID(ctx, 1, models.EndReasonPaused)
	require.NoError(t, err)
	ok, err = repo.ConsumeActionPoint(ctx, session.ID, 8, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGameSessionRepository_FindPausedByUserID(t *testing.T) {
	db := TestDB(t)
	SeedTestData(t, db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	session := CreateTestGameSession(1)
	require.NoError(t, repo.Create(ctx, session))

	// 暂离
	_, err := repo.DeactivateAllByUserID(ctx, 1, models.EndReasonPaused)
	require.NoError(t, err)

	paused, err := repo.FindPausedByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, session.SessionID, paused.SessionID)
	assert.Equal(t, models.EndReasonPaused, paused.EndReason)

	// 死亡结束的会话不可恢复
	dead := CreateTestGameSession(2)
	require.NoError(t, repo.Create(ctx, dead))
	_, err = repo.DeactivateAllByUserID(ctx, 2, models.EndReasonDeath)
	require.NoError(t, err)
	_, err = repo.FindPausedByUserID(ctx, 2)
	assert.True(t, IsNotFound(err))
}

func TestGameSessionRepository_FindByUserID_Pagination(t *testing.T) {
	db := TestDB(t)
	SeedTestData(t, db)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		s := CreateTestGameSession(1)
		s.IsActive = false
		require.NoError(t, repo.Create(ctx, s))
	}

	p := NewPagination(1, 10)
	sessions, err := repo.FindByUserID(ctx, 1, p)
	require.NoError(t, err)
	assert.Len(t, sessions, 10)
	assert.Equal(t, int64(15), p.Total)

	p2 := NewPagination(2, 10)
	sessions, err = repo.FindByUserID(ctx, 1, p2)
	require.NoError(t, err)
	assert.Len(t, sessions, 5)
}
