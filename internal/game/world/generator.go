// Package world 负责会话世界的一次性程序化生成、
// 安全区判定与搜刮奖励表。
package world

import (
	"math/rand"

	"github.com/wfunc/zombie-walk/internal/config"
	"github.com/wfunc/zombie-walk/internal/game/geo"
	"github.com/wfunc/zombie-walk/internal/models"
	"go.uber.org/zap"
)

// 世界对象的生成顺序：撤离营地和安全营地各一个，
// 其余类型按距离带随机数量放置（越稀有的类别越远）
var bandOrder = []string{
	models.ObjectShelter,
	models.ObjectShop,
	models.ObjectPharmacy,
	models.ObjectGasStation,
	models.ObjectLibrary,
	models.ObjectBookstore,
}

// Generator 世界生成器
type Generator struct {
	cfg  *config.WorldConfig
	rand *rand.Rand
	log  *zap.Logger
}

// NewGenerator 创建世界生成器
func NewGenerator(cfg *config.WorldConfig, r *rand.Rand, log *zap.Logger) *Generator {
	return &Generator{
		cfg:  cfg,
		rand: r,
		log:  log,
	}
}

// Generate 围绕会话起点生成全部世界对象（每个会话仅调用一次）
func (g *Generator) Generate(sessionID uint, origin geo.Point) []*models.WorldObject {
	objects := make([]*models.WorldObject, 0, 16)

	// 撤离营地：有且仅有一个，固定近距离带保证总是可达，
	// 由移动次数阈值控制解锁时机
	extraction := g.place(sessionID, models.ObjectExtractionCamp, origin,
		g.cfg.ExtractionMin, g.cfg.ExtractionMax)
	extraction.UnlockMoveCount = g.cfg.ExtractionUnlockMoves
	objects = append(objects, extraction)

	// 普通安全营地：有且仅有一个，近距离带
	camp := g.place(sessionID, models.ObjectCamp, origin, g.cfg.CampMin, g.cfg.CampMax)
	objects = append(objects, camp)

	// 其余类型按配置的数量区间和距离带放置
	for _, objType := range bandOrder {
		band, ok := g.cfg.Bands[objType]
		if !ok {
			continue
		}
		count := band.CountMin
		if band.CountMax > band.CountMin {
			count += g.rand.Intn(band.CountMax - band.CountMin + 1)
		}
		for i := 0; i < count; i++ {
			objects = append(objects,
				g.place(sessionID, objType, origin, band.DistanceMin, band.DistanceMax))
		}
	}

	g.log.Info("世界生成完成",
		zap.Uint("session_id", sessionID),
		zap.Int("objects", len(objects)),
		zap.Int("extraction_unlock_moves", g.cfg.ExtractionUnlockMoves),
	)

	return objects
}

// place 在指定距离带内随机放置一个对象
func (g *Generator) place(sessionID uint, objType string, origin geo.Point, minDist, maxDist float64) *models.WorldObject {
	p := geo.RandomPointInRing(g.rand, origin, minDist, maxDist)
	return &models.WorldObject{
		SessionID: sessionID,
		Type:      objType,
		Lat:       p.Lat,
		Lng:       p.Lng,
		Radius:    g.cfg.ObjectRadius,
	}
}
