package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/zombie-walk/internal/errors"
	"github.com/wfunc/zombie-walk/internal/game/world"
	"github.com/wfunc/zombie-walk/internal/models"
	"github.com/wfunc/zombie-walk/internal/repository"
	"go.uber.org/zap"
)

func testManager(t *testing.T) (*Manager, *models.GameSession) {
	db := repository.TestDB(t)
	repository.SeedTestData(t, db)
	session := repository.CreateTestGameSession(1)
	require.NoError(t, db.Create(session).Error)
	return NewManager(repository.NewInventoryRepository(db), zap.NewNop()), session
}

func TestAddStacksSameItem(t *testing.T) {
	m, session := testManager(t)
	ctx := context.Background()

	drop := &world.Drop{ItemType: models.ItemFood, Name: "罐头食品", Quantity: 1, EffectValue: 10}
	item, err := m.Add(ctx, session.ID, drop)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)

	item, err = m.Add(ctx, session.ID, drop)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	items, err := m.List(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestAddBooksStackByBookID(t *testing.T) {
	m, session := testManager(t)
	ctx := context.Background()

	_, err := m.Add(ctx, session.ID, &world.Drop{
		ItemType: models.ItemBook, Name: "哲学入门", Quantity: 1, BookID: "philosophy_101",
	})
	require.NoError(t, err)
	_, err = m.Add(ctx, session.ID, &world.Drop{
		ItemType: models.ItemBook, Name: StarterBookName, Quantity: 1, BookID: StarterBookID,
	})
	require.NoError(t, err)
	item, err := m.Add(ctx, session.ID, &world.Drop{
		ItemType: models.ItemBook, Name: "哲学入门", Quantity: 1, BookID: "philosophy_101",
	})
	require.NoError(t, err)

	// 不同书各占一格，同书叠加
	assert.Equal(t, 2, item.Quantity)
	items, err := m.List(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestConsume(t *testing.T) {
	m, session := testManager(t)
	ctx := context.Background()

	_, err := m.Add(ctx, session.ID, &world.Drop{
		ItemType: models.ItemMedkit, Name: "医疗包", Quantity: 2, EffectValue: 30,
	})
	require.NoError(t, err)

	used, err := m.Consume(ctx, session.ID, models.ItemMedkit)
	require.NoError(t, err)
	assert.Equal(t, 30, used.EffectValue)

	// 第二次消耗后堆叠归零并删除
	_, err = m.Consume(ctx, session.ID, models.ItemMedkit)
	require.NoError(t, err)

	_, err = m.Consume(ctx, session.ID, models.ItemMedkit)
	assert.Equal(t, errors.ErrItemNotFound, errors.GetCode(err))

	items, err := m.List(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestConsumeBook(t *testing.T) {
	m, session := testManager(t)
	ctx := context.Background()

	_, err := m.ConsumeBook(ctx, session.ID)
	assert.Equal(t, errors.ErrItemNotFound, errors.GetCode(err))

	_, err = m.Add(ctx, session.ID, &world.Drop{
		ItemType: models.ItemBook, Name: StarterBookName, Quantity: 1, BookID: StarterBookID,
	})
	require.NoError(t, err)

	used, err := m.ConsumeBook(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, StarterBookID, used.BookID)

	has, err := m.HasItem(ctx, session.ID, models.ItemBook)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestGrantStarterKit(t *testing.T) {
	m, session := testManager(t)
	ctx := context.Background()

	require.NoError(t, m.GrantStarterKit(ctx, session.ID, 30))

	items, err := m.List(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)

	byType := map[string]*models.InventoryItem{}
	for _, item := range items {
		byType[item.ItemType] = item
	}
	assert.Equal(t, 30, byType[models.ItemMedkit].EffectValue)
	assert.NotNil(t, byType[models.ItemFlashlight])
	assert.Equal(t, StarterBookID, byType[models.ItemBook].BookID)
}
