package zombie

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/zombie-walk/internal/config"
	"github.com/wfunc/zombie-walk/internal/errors"
	"github.com/wfunc/zombie-walk/internal/game/geo"
	"github.com/wfunc/zombie-walk/internal/models"
	"github.com/wfunc/zombie-walk/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var player = geo.Point{Lat: 39.9042, Lng: 116.4074}

type fixedAvatars struct{ url string }

func (f *fixedAvatars) RandomAvatar(ctx context.Context) (string, error) {
	return f.url, nil
}

func testEngine(t *testing.T, seed int64) (*Engine, repository.ZombieRepository, *gorm.DB) {
	db := repository.TestDB(t)
	repository.SeedTestData(t, db)
	repo := repository.NewZombieRepository(db)
	cfg := config.DefaultGameConfig()
	engine := NewEngine(&cfg.Zombie, repo, &fixedAvatars{url: "dead1.png"}, rand.New(rand.NewSource(seed)), zap.NewNop())
	return engine, repo, db
}

func spawnAt(t *testing.T, db *gorm.DB, sessionID uint, distance, bearing, speed float64) *models.Zombie {
	p := geo.Offset(player, distance, bearing)
	z := repository.CreateTestZombie(sessionID, p.Lat, p.Lng)
	z.Speed = speed
	require.NoError(t, db.Create(z).Error)
	return z
}

func TestSpawnBatch(t *testing.T) {
	engine, repo, _ := testEngine(t, 1)
	ctx := context.Background()

	zombies, err := engine.SpawnBatch(ctx, 1, player, SpawnSpec{
		Count: 5, DistanceMin: 200, DistanceMax: 500, Speed: 50,
		UseAvatars: true, AvatarChance: 100,
	})
	require.NoError(t, err)
	require.Len(t, zombies, 5)

	for _, z := range zombies {
		d := geo.Distance(geo.Point{Lat: z.Lat, Lng: z.Lng}, player)
		assert.GreaterOrEqual(t, d, 199.0)
		assert.LessOrEqual(t, d, 501.0)
		assert.Equal(t, 50.0, z.Speed)
		assert.Equal(t, "dead1.png", z.AvatarURL)
	}

	count, err := repo.CountBySessionID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestSpawnBatchZeroCount(t *testing.T) {
	engine, _, _ := testEngine(t, 1)
	zombies, err := engine.SpawnBatch(context.Background(), 1, player, SpawnSpec{Count: 0})
	require.NoError(t, err)
	assert.Nil(t, zombies)
}

func TestResolveMovementHunting(t *testing.T) {
	engine, _, db := testEngine(t, 2)
	ctx := context.Background()

	// 侦测半径 150 米内的丧尸全速逼近
	z := spawnAt(t, db, 1, 120, 90, 50)
	before := geo.Distance(geo.Point{Lat: z.Lat, Lng: z.Lng}, player)

	result, err := engine.ResolveMovement(ctx, []*models.Zombie{z}, player, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Hunting)
	assert.True(t, z.IsHunting)

	after := geo.Distance(geo.Point{Lat: z.Lat, Lng: z.Lng}, player)
	assert.InDelta(t, before-50, after, 1)
}

func TestResolveMovementNoiseActivatesAll(t *testing.T) {
	engine, _, db := testEngine(t, 3)
	ctx := context.Background()

	// 噪音达阈值时，远在侦测半径外的丧尸也会追踪
	z := spawnAt(t, db, 1, 800, 0, 50)
	result, err := engine.ResolveMovement(ctx, []*models.Zombie{z}, player, 70)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Hunting)
}

func TestResolveMovementWander(t *testing.T) {
	engine, _, db := testEngine(t, 4)
	ctx := context.Background()

	// 侦测半径外且无噪音：低速游荡，位移为速度的 30%
	z := spawnAt(t, db, 1, 600, 180, 100)
	origin := geo.Point{Lat: z.Lat, Lng: z.Lng}

	result, err := engine.ResolveMovement(ctx, []*models.Zombie{z}, player, 0)
	require.NoError(t, err)
	assert.Empty(t, result.Attackers)
	assert.False(t, z.IsHunting)

	moved := geo.Distance(origin, geo.Point{Lat: z.Lat, Lng: z.Lng})
	assert.InDelta(t, 30, moved, 1)
}

func TestResolveMovementAttack(t *testing.T) {
	engine, _, db := testEngine(t, 5)
	ctx := context.Background()

	// 70 米处速度 50：移动后剩 20 米，进入 50 米攻击半径
	z := spawnAt(t, db, 1, 70, 45, 50)
	result, err := engine.ResolveMovement(ctx, []*models.Zombie{z}, player, 0)
	require.NoError(t, err)
	require.Len(t, result.Attackers, 1)
	assert.Equal(t, z.ID, result.Attackers[0].ID)
}

func TestResolveSmell(t *testing.T) {
	engine, _, db := testEngine(t, 6)
	ctx := context.Background()

	// 气味回合：400 米处速度 100 的丧尸前进 15 米
	inRange := spawnAt(t, db, 1, 400, 270, 100)
	outOfRange := spawnAt(t, db, 1, 900, 270, 100)
	origin := geo.Point{Lat: outOfRange.Lat, Lng: outOfRange.Lng}

	result, err := engine.ResolveSmell(ctx, []*models.Zombie{inRange, outOfRange}, player)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Moved)
	assert.Empty(t, result.Attackers)

	after := geo.Distance(geo.Point{Lat: inRange.Lat, Lng: inRange.Lng}, player)
	assert.InDelta(t, 385, after, 1)

	// 感知半径外的丧尸纹丝不动
	assert.Equal(t, origin.Lat, outOfRange.Lat)
	assert.Equal(t, origin.Lng, outOfRange.Lng)
}

func TestResolveSmellAttack(t *testing.T) {
	engine, _, db := testEngine(t, 8)
	ctx := context.Background()

	// 60 米处速度 100：蠕动 15 米后剩 45 米，进入 50 米攻击半径
	z := spawnAt(t, db, 1, 60, 90, 100)
	result, err := engine.ResolveSmell(ctx, []*models.Zombie{z}, player)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Moved)
	require.Len(t, result.Attackers, 1)
	assert.Equal(t, z.ID, result.Attackers[0].ID)
}

func TestVisibleAndDistant(t *testing.T) {
	engine, _, db := testEngine(t, 7)

	near := spawnAt(t, db, 1, 100, 0, 50)
	mid := spawnAt(t, db, 1, 250, 90, 50)
	far := spawnAt(t, db, 1, 600, 90, 50)
	beyond := spawnAt(t, db, 1, 1500, 180, 50)
	all := []*models.Zombie{far, mid, near, beyond}

	// 可见列表按距离升序
	visible := engine.Visible(all, player)
	require.Len(t, visible, 2)
	assert.Equal(t, near.ID, visible[0].Zombie.ID)
	assert.Equal(t, mid.ID, visible[1].Zombie.ID)

	// 手电筒只照出可见半径外、探测半径内的目标
	distant := engine.Distant(all, player)
	require.Len(t, distant, 1)
	assert.Equal(t, far.ID, distant[0].ID)
	assert.InDelta(t, 600, distant[0].Distance, 1)
	assert.InDelta(t, 90, distant[0].Bearing, 1)
}

func TestEducate(t *testing.T) {
	engine, repo, db := testEngine(t, 8)
	ctx := context.Background()

	inRange := spawnAt(t, db, 1, 80, 0, 50)
	tooFar := spawnAt(t, db, 1, 200, 0, 50)
	all := []*models.Zombie{inRange, tooFar}

	// 超出投掷范围
	_, err := engine.Educate(ctx, all, tooFar.ID, player)
	assert.Equal(t, errors.ErrTargetOutOfRange, errors.GetCode(err))

	// 目标不存在
	_, err = engine.Educate(ctx, all, 9999, player)
	assert.Equal(t, errors.ErrZombieNotFound, errors.GetCode(err))

	// 命中后离场
	gone, err := engine.Educate(ctx, all, inRange.ID, player)
	require.NoError(t, err)
	assert.Equal(t, inRange.ID, gone.ID)

	count, err := repo.CountBySessionID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
