package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/zombie-walk/internal/models"
)

func TestWorldObjectRepository_MarkLooted(t *testing.T) {
	db := TestDB(t)
	SeedTestData(t, db)
	repo := NewWorldObjectRepository(db)
	ctx := context.Background()

	obj := CreateTestWorldObject(1, models.ObjectPharmacy, 39.9, 116.4)
	require.NoError(t, repo.CreateBatch(ctx, []*models.WorldObject{obj}))

	now := time.Now()
	respawn := now.Add(time.Hour)

	// 第一次搜刮成功
	ok, err := repo.MarkLooted(ctx, obj.ID, now, respawn)
	require.NoError(t, err)
	assert.True(t, ok)

	// 重复搜刮无效（幂等）
	ok, err = repo.MarkLooted(ctx, obj.ID, now, respawn)
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.FindByID(ctx, obj.ID)
	require.NoError(t, err)
	assert.True(t, found.IsLooted)
	assert.NotNil(t, found.RespawnAt)
}

func TestWorldObjectRepository_FindUnlooted(t *testing.T) {
	db := TestDB(t)
	SeedTestData(t, db)
	repo := NewWorldObjectRepository(db)
	ctx := context.Background()

	objects := []*models.WorldObject{
		CreateTestWorldObject(1, models.ObjectShelter, 39.90, 116.40),
		CreateTestWorldObject(1, models.ObjectShop, 39.91, 116.41),
		CreateTestWorldObject(2, models.ObjectShelter, 39.92, 116.42),
	}
	require.NoError(t, repo.CreateBatch(ctx, objects))

	ok, err := repo.MarkLooted(ctx, objects[0].ID, time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	// 只返回本会话未搜刮的对象
	unlooted, err := repo.FindUnlootedBySessionID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, unlooted, 1)
	assert.Equal(t, objects[1].ID, unlooted[0].ID)
}

func TestWorldObjectRepository_DeleteBySessionID(t *testing.T) {
	db := TestDB(t)
	SeedTestData(t, db)
	repo := NewWorldObjectRepository(db)
	ctx := context.Background()

	objects := []*models.WorldObject{
		CreateTestWorldObject(1, models.ObjectCamp, 39.90, 116.40),
		CreateTestWorldObject(1, models.ObjectExtractionCamp, 39.91, 116.41),
	}
	require.NoError(t, repo.CreateBatch(ctx, objects))

	affected, err := repo.DeleteBySessionID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	remaining, err := repo.FindBySessionID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestWorldObjectRepository_ResetRespawned(t *testing.T) {
	db := TestDB(t)
	SeedTestData(t, db)
	repo := NewWorldObjectRepository(db)
	ctx := context.Background()

	objects := []*models.WorldObject{
		CreateTestWorldObject(1, models.ObjectPharmacy, 39.90, 116.40),
		CreateTestWorldObject(1, models.ObjectShop, 39.91, 116.41),
	}
	require.NoError(t, repo.CreateBatch(ctx, objects))

	now := time.Now()
	ok, err := repo.MarkLooted(ctx, objects[0].ID, now, now.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = repo.MarkLooted(ctx, objects[1].ID, now, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.True(t, ok)

	// 刷新时间未到：没有对象恢复
	affected, err := repo.ResetRespawned(ctx, 1, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	// 过了第一个刷新点：只恢复到点的对象
	affected, err = repo.ResetRespawned(ctx, 1, now.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	found, err := repo.FindByID(ctx, objects[0].ID)
	require.NoError(t, err)
	assert.False(t, found.IsLooted)
	assert.Nil(t, found.RespawnAt)

	still, err := repo.FindByID(ctx, objects[1].ID)
	require.NoError(t, err)
	assert.True(t, still.IsLooted)
}
