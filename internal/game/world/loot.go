package world

import (
	"math/rand"

	"github.com/wfunc/zombie-walk/internal/models"
)

// Drop 搜刮获得的物品
type Drop struct {
	ItemType    string
	Name        string
	Quantity    int
	EffectValue int
	BookID      string
}

// 图书馆/书店可搜出的书籍（教育丧尸的弹药）
var bookPool = []struct {
	ID   string
	Name string
}{
	{"zombie_survival_guide", "丧尸生存指南"},
	{"first_aid_handbook", "急救手册"},
	{"philosophy_intro", "哲学入门"},
	{"world_history", "世界通史"},
}

// LootTable 按对象类型决定搜刮奖励
type LootTable struct {
	rand             *rand.Rand
	flashlightChance int // 商店/加油站出手电筒概率 0-100
	medkitHeal       int // 医疗包恢复量
}

// NewLootTable 创建奖励表
func NewLootTable(r *rand.Rand, flashlightChance, medkitHeal int) *LootTable {
	return &LootTable{
		rand:             r,
		flashlightChance: flashlightChance,
		medkitHeal:       medkitHeal,
	}
}

// Roll 对指定对象掷一次奖励。返回nil表示一无所获。
func (t *LootTable) Roll(obj *models.WorldObject) *Drop {
	switch obj.Type {
	case models.ObjectPharmacy:
		return &Drop{
			ItemType:    models.ItemMedkit,
			Name:        "医疗包",
			Quantity:    1,
			EffectValue: t.medkitHeal,
		}

	case models.ObjectShop, models.ObjectGasStation:
		if t.rand.Intn(100) < t.flashlightChance {
			return &Drop{
				ItemType: models.ItemFlashlight,
				Name:     "手电筒",
				Quantity: 1,
			}
		}
		return &Drop{
			ItemType:    models.ItemFood,
			Name:        "罐头食品",
			Quantity:    1,
			EffectValue: 10,
		}

	case models.ObjectShelter:
		// 三选一：食物 / 水 / 空手而归
		switch t.rand.Intn(3) {
		case 0:
			return &Drop{
				ItemType:    models.ItemFood,
				Name:        "罐头食品",
				Quantity:    1,
				EffectValue: 10,
			}
		case 1:
			return &Drop{
				ItemType:    models.ItemWater,
				Name:        "瓶装水",
				Quantity:    1,
				EffectValue: 5,
			}
		default:
			return nil
		}

	case models.ObjectLibrary, models.ObjectBookstore:
		book := bookPool[t.rand.Intn(len(bookPool))]
		return &Drop{
			ItemType: models.ItemBook,
			Name:     book.Name,
			Quantity: 1,
			BookID:   book.ID,
		}
	}

	return nil
}
