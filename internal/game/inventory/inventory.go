// Package inventory 背包管理
// 同名同类物品按堆叠存储，书籍按 BookID 单独堆叠
package inventory

import (
	"context"

	"github.com/wfunc/zombie-walk/internal/errors"
	"github.com/wfunc/zombie-walk/internal/game/world"
	"github.com/wfunc/zombie-walk/internal/models"
	"github.com/wfunc/zombie-walk/internal/repository"
	"go.uber.org/zap"
)

// 新手装备常量
const (
	StarterBookID   = "zombie_survival_guide"
	StarterBookName = "丧尸生存指南"
)

// Manager 背包管理器
type Manager struct {
	repo repository.InventoryRepository
	log  *zap.Logger
}

// NewManager 创建背包管理器
func NewManager(repo repository.InventoryRepository, log *zap.Logger) *Manager {
	return &Manager{
		repo: repo,
		log:  log.Named("inventory"),
	}
}

// Add 添加掉落物品，存在同堆叠则数量累加
func (m *Manager) Add(ctx context.Context, sessionID uint, drop *world.Drop) (*models.InventoryItem, error) {
	if drop == nil {
		return nil, nil
	}

	var stack *models.InventoryItem
	var err error
	if drop.ItemType == models.ItemBook {
		stack, err = m.repo.FindBookStack(ctx, sessionID, drop.BookID)
	} else {
		stack, err = m.repo.FindStack(ctx, sessionID, drop.ItemType, drop.Name)
	}
	if err != nil && !repository.IsNotFound(err) {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询物品堆叠失败")
	}

	if stack != nil {
		stack.Quantity += drop.Quantity
		if err := m.repo.Update(ctx, stack); err != nil {
			return nil, errors.Wrap(err, errors.ErrDatabase, "更新物品数量失败")
		}
		return stack, nil
	}

	item := &models.InventoryItem{
		SessionID:   sessionID,
		ItemType:    drop.ItemType,
		Name:        drop.Name,
		Quantity:    drop.Quantity,
		EffectValue: drop.EffectValue,
		BookID:      drop.BookID,
	}
	if err := m.repo.Create(ctx, item); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "创建物品失败")
	}

	m.log.Debug("物品入包",
		zap.Uint("session_id", sessionID),
		zap.String("item_type", drop.ItemType),
		zap.String("name", drop.Name))
	return item, nil
}

// List 列出会话内全部物品
func (m *Manager) List(ctx context.Context, sessionID uint) ([]*models.InventoryItem, error) {
	items, err := m.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询背包失败")
	}
	return items, nil
}

// Consume 消耗一个指定类型的物品，返回被消耗的堆叠快照
// 数量归零后删除记录
func (m *Manager) Consume(ctx context.Context, sessionID uint, itemType string) (*models.InventoryItem, error) {
	items, err := m.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询背包失败")
	}

	for _, item := range items {
		if item.ItemType != itemType || item.Quantity <= 0 {
			continue
		}
		return m.consumeOne(ctx, item)
	}
	return nil, errors.New(errors.ErrItemNotFound)
}

// ConsumeBook 消耗一本书（教育丧尸用），优先消耗最早获得的堆叠
func (m *Manager) ConsumeBook(ctx context.Context, sessionID uint) (*models.InventoryItem, error) {
	item, err := m.repo.FindAnyBook(ctx, sessionID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.New(errors.ErrItemNotFound)
		}
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询书籍失败")
	}
	return m.consumeOne(ctx, item)
}

// HasItem 判断会话是否持有指定类型且有库存的物品
func (m *Manager) HasItem(ctx context.Context, sessionID uint, itemType string) (bool, error) {
	items, err := m.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrDatabase, "查询背包失败")
	}
	for _, item := range items {
		if item.ItemType == itemType && item.Quantity > 0 {
			return true, nil
		}
	}
	return false, nil
}

// GrantStarterKit 发放新手装备：医疗包、手电筒、一本生存指南
func (m *Manager) GrantStarterKit(ctx context.Context, sessionID uint, medkitHeal int) error {
	drops := []*world.Drop{
		{ItemType: models.ItemMedkit, Name: "医疗包", Quantity: 1, EffectValue: medkitHeal},
		{ItemType: models.ItemFlashlight, Name: "手电筒", Quantity: 1},
		{ItemType: models.ItemBook, Name: StarterBookName, Quantity: 1, BookID: StarterBookID},
	}
	for _, drop := range drops {
		if _, err := m.Add(ctx, sessionID, drop); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAll 清空会话背包（会话终结时调用）
func (m *Manager) DeleteAll(ctx context.Context, sessionID uint) (int64, error) {
	n, err := m.repo.DeleteBySessionID(ctx, sessionID)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrDatabase, "清空背包失败")
	}
	return n, nil
}

func (m *Manager) consumeOne(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	snapshot := *item
	item.Quantity--
	if item.Quantity <= 0 {
		if err := m.repo.Delete(ctx, item.ID); err != nil {
			return nil, errors.Wrap(err, errors.ErrDatabase, "删除物品失败")
		}
	} else {
		if err := m.repo.Update(ctx, item); err != nil {
			return nil, errors.Wrap(err, errors.ErrDatabase, "更新物品数量失败")
		}
	}
	return &snapshot, nil
}
