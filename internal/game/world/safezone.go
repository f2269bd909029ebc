package world

import (
	"github.com/wfunc/zombie-walk/internal/game/geo"
	"github.com/wfunc/zombie-walk/internal/models"
)

// ObjectPoint 返回世界对象的坐标
func ObjectPoint(obj *models.WorldObject) geo.Point {
	return geo.Point{Lat: obj.Lat, Lng: obj.Lng}
}

// Contains 判断坐标是否位于对象交互半径内
func Contains(obj *models.WorldObject, pos geo.Point) bool {
	return geo.Distance(ObjectPoint(obj), pos) <= obj.Radius
}

// CheckSafeZone 对所有对象做点在圆内判定，返回命中的安全区对象。
// 撤离营地在解锁前不算安全区：站在未解锁的撤离点内必须返回不安全，
// 这是胜利条件唯一的门槛，不允许提前蹲点绕过。
func CheckSafeZone(objects []*models.WorldObject, pos geo.Point, moveCount int) (bool, *models.WorldObject) {
	for _, obj := range objects {
		if !Contains(obj, pos) {
			continue
		}
		switch obj.Type {
		case models.ObjectCamp:
			return true, obj
		case models.ObjectExtractionCamp:
			if moveCount >= obj.UnlockMoveCount {
				return true, obj
			}
		}
	}
	return false, nil
}

// FindUnlockedExtraction 返回玩家当前所在的已解锁撤离营地
func FindUnlockedExtraction(objects []*models.WorldObject, pos geo.Point, moveCount int) *models.WorldObject {
	for _, obj := range objects {
		if obj.Type != models.ObjectExtractionCamp {
			continue
		}
		if Contains(obj, pos) && moveCount >= obj.UnlockMoveCount {
			return obj
		}
	}
	return nil
}

// FindLockedExtraction 返回玩家所在但尚未解锁的撤离营地（用于提示）
func FindLockedExtraction(objects []*models.WorldObject, pos geo.Point, moveCount int) *models.WorldObject {
	for _, obj := range objects {
		if obj.Type != models.ObjectExtractionCamp {
			continue
		}
		if Contains(obj, pos) && moveCount < obj.UnlockMoveCount {
			return obj
		}
	}
	return nil
}

// NearbyLootable 返回玩家范围内可搜刮的对象（未搜刮、非营地类）
func NearbyLootable(objects []*models.WorldObject, pos geo.Point) []*models.WorldObject {
	var result []*models.WorldObject
	for _, obj := range objects {
		if obj.IsLooted {
			continue
		}
		if obj.Type == models.ObjectCamp || obj.Type == models.ObjectExtractionCamp {
			continue
		}
		if Contains(obj, pos) {
			result = append(result, obj)
		}
	}
	return result
}
