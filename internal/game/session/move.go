package session

import (
	"context"
	"fmt"
	"time"

	"github.com/wfunc/zombie-walk/internal/errors"
	"github.com/wfunc/zombie-walk/internal/game/geo"
	"github.com/wfunc/zombie-walk/internal/game/world"
	"github.com/wfunc/zombie-walk/internal/game/zombie"
	"github.com/wfunc/zombie-walk/internal/models"
	"go.uber.org/zap"
)

// respawnDelay 已搜刮补给点的刷新间隔
const respawnDelay = time.Hour

// MoveOutcome 一次移动的结算结果
type MoveOutcome struct {
	Session      *models.GameSession     `json:"session"`
	CurrentAP    int                     `json:"current_ap"`
	Spawned      int                     `json:"spawned"`
	HuntingCount int                     `json:"hunting_count"`
	Attackers    int                     `json:"attackers"`
	Damage       int                     `json:"damage"`
	Died         bool                    `json:"died"`
	EnteredSafe  bool                    `json:"entered_safe"`
	Loot         []*models.InventoryItem `json:"loot,omitempty"`
	Zombies      []*zombie.VisibleZombie `json:"zombies"`
	// Events 按结算顺序排列的可读事件，客户端按序播报
	Events []string `json:"events"`
}

// MakeMove 消耗一点行动点移动到新位置，并结算整个回合
// 结算顺序固定：扣AP → 记步 → 噪音 → 丧尸移动与攻击 → 剧本生成 → 安全区 → 自动搜刮
func (m *Manager) MakeMove(ctx context.Context, userID uint, lat, lng float64) (*MoveOutcome, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	session, err := m.activeSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	currentAP := m.CalculateCurrentAP(session, now)
	if currentAP < 1 {
		return nil, errors.New(errors.ErrInsufficientAP)
	}

	// 条件更新：会话在读取后被其他路径关闭则放弃本次移动
	ok, err := m.sessions.ConsumeActionPoint(ctx, session.ID, currentAP-1, now)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "扣减行动点失败")
	}
	if !ok {
		return nil, errors.New(errors.ErrSessionEnded)
	}
	session.ActionPoints = currentAP - 1
	session.LastAPUseAt = now

	session.MoveCount++
	session.Lat = lat
	session.Lng = lng
	session.LastMoveAt = &now
	if session.FirstMoveAt == nil {
		session.FirstMoveAt = &now
	}
	session.NoiseLevel += m.cfg.Survival.NoiseStep
	if session.NoiseLevel > 100 {
		session.NoiseLevel = 100
	}

	pos := geo.Point{Lat: lat, Lng: lng}
	outcome := &MoveOutcome{Session: session}

	zombies, err := m.zombies.FindBySessionID(ctx, session.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询丧尸失败")
	}
	moveResult, err := m.engine.ResolveMovement(ctx, zombies, pos, session.NoiseLevel)
	if err != nil {
		return nil, err
	}
	outcome.HuntingCount = moveResult.Hunting
	outcome.Attackers = len(moveResult.Attackers)
	if outcome.HuntingCount > 0 {
		outcome.Events = append(outcome.Events, fmt.Sprintf("%d只丧尸正在追踪你", outcome.HuntingCount))
	}

	// 本回合的剧本生成对下回合才有威胁
	var preset *models.ScenarioPreset
	if session.ScenarioPresetID != 0 {
		if preset, err = m.scenarios.PresetByID(ctx, session.ScenarioPresetID); err != nil {
			if errors.GetCode(err) != errors.ErrPresetNotFound {
				return nil, err
			}
			preset = nil
		}
	}
	if outcome.Spawned, err = m.spawnForMove(ctx, session, preset, pos, session.MoveCount); err != nil {
		return nil, err
	}
	if outcome.Spawned > 0 {
		outcome.Events = append(outcome.Events, fmt.Sprintf("远处出现了%d只丧尸", outcome.Spawned))
	}

	outcome.Damage = outcome.Attackers * m.cfg.Zombie.Damage
	session.HP -= outcome.Damage
	if session.HP < 0 {
		session.HP = 0
	}
	if outcome.Damage > 0 {
		outcome.Events = append(outcome.Events, fmt.Sprintf("被%d只丧尸攻击，损失%d点生命", outcome.Attackers, outcome.Damage))
	}

	// 到点的补给先刷新再查询，与行动点一样按时间惰性推导
	if _, err := m.objects.ResetRespawned(ctx, session.ID, now); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "刷新补给失败")
	}
	objects, err := m.objects.FindBySessionID(ctx, session.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询世界对象失败")
	}
	wasSafe := session.IsInSafeZone
	session.IsInSafeZone, _ = world.CheckSafeZone(objects, pos, session.MoveCount)
	outcome.EnteredSafe = session.IsInSafeZone && !wasSafe
	if session.IsInSafeZone {
		// 进入安全区噪音消散
		session.NoiseLevel = 0
	}
	if outcome.EnteredSafe {
		outcome.Events = append(outcome.Events, "进入安全区，噪音消散")
	}

	if session.HP == 0 {
		survival := m.validator.ClampSurvivalTime(session, int(now.Sub(*session.FirstMoveAt).Seconds()), now)
		if err := m.handleDeath(ctx, session, survival); err != nil {
			return nil, err
		}
		outcome.Died = true
		outcome.CurrentAP = session.ActionPoints
		outcome.Events = append(outcome.Events, "你被丧尸群淹没了")
		return outcome, nil
	}

	if outcome.Loot, err = m.autoLoot(ctx, session, objects, pos, now); err != nil {
		return nil, err
	}
	for _, item := range outcome.Loot {
		outcome.Events = append(outcome.Events, "搜刮获得："+item.Name)
	}

	if err := m.sessions.Update(ctx, session); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "保存会话失败")
	}

	remaining, err := m.zombies.FindBySessionID(ctx, session.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询丧尸失败")
	}
	outcome.Zombies = m.engine.Visible(remaining, pos)
	outcome.CurrentAP = session.ActionPoints

	m.log.Debug("移动结算完成",
		zap.Uint("user_id", userID),
		zap.Int("move_count", session.MoveCount),
		zap.Int("damage", outcome.Damage),
		zap.Int("spawned", outcome.Spawned))
	return outcome, nil
}

// autoLoot 自动搜刮落点半径内未搜刮的资源点
// MarkLooted 为条件更新，确保每个资源点只产出一次
func (m *Manager) autoLoot(ctx context.Context, session *models.GameSession, objects []*models.WorldObject, pos geo.Point, now time.Time) ([]*models.InventoryItem, error) {
	var gained []*models.InventoryItem
	for _, obj := range world.NearbyLootable(objects, pos) {
		looted, err := m.objects.MarkLooted(ctx, obj.ID, now, now.Add(respawnDelay))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrDatabase, "标记搜刮失败")
		}
		if !looted {
			continue
		}
		drop := m.loot.Roll(obj)
		if drop == nil {
			continue
		}
		item, err := m.inventory.Add(ctx, session.ID, drop)
		if err != nil {
			return nil, err
		}
		gained = append(gained, item)
	}
	if len(gained) > 0 {
		if err := m.recorder.RecordResource(ctx, session.UserID, len(gained)); err != nil {
			return nil, err
		}
	}
	return gained, nil
}

// UseMedkit 使用医疗包恢复生命值
func (m *Manager) UseMedkit(ctx context.Context, userID uint) (*models.GameSession, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	session, err := m.activeSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	used, err := m.inventory.Consume(ctx, session.ID, models.ItemMedkit)
	if err != nil {
		return nil, err
	}

	session.HP += used.EffectValue
	if session.HP > session.MaxHP {
		session.HP = session.MaxHP
	}
	if err := m.sessions.Update(ctx, session); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "保存会话失败")
	}
	return session, nil
}

// ThrowBook 向投掷范围内的丧尸扔书，命中即让其离场
func (m *Manager) ThrowBook(ctx context.Context, userID uint, zombieID uint) (*models.Zombie, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	session, err := m.activeSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	hasBook, err := m.inventory.HasItem(ctx, session.ID, models.ItemBook)
	if err != nil {
		return nil, err
	}
	if !hasBook {
		return nil, errors.New(errors.ErrItemNotFound)
	}

	zombies, err := m.zombies.FindBySessionID(ctx, session.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询丧尸失败")
	}

	pos := geo.Point{Lat: session.Lat, Lng: session.Lng}
	educated, err := m.engine.Educate(ctx, zombies, zombieID, pos)
	if err != nil {
		return nil, err
	}

	// 命中后才消耗书籍
	if _, err := m.inventory.ConsumeBook(ctx, session.ID); err != nil {
		return nil, err
	}
	if err := m.recorder.RecordEducated(ctx, userID); err != nil {
		return nil, err
	}
	return educated, nil
}

// UseFlashlight 手电筒探测可见半径外的丧尸方位，需要持有手电筒，不消耗
func (m *Manager) UseFlashlight(ctx context.Context, userID uint) ([]*zombie.DistantZombie, error) {
	session, err := m.activeSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	hasLight, err := m.inventory.HasItem(ctx, session.ID, models.ItemFlashlight)
	if err != nil {
		return nil, err
	}
	if !hasLight {
		return nil, errors.New(errors.ErrItemNotFound)
	}

	zombies, err := m.zombies.FindBySessionID(ctx, session.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询丧尸失败")
	}
	return m.engine.Distant(zombies, geo.Point{Lat: session.Lat, Lng: session.Lng}), nil
}

// SmellOutcome 一次气味回合的结算结果
type SmellOutcome struct {
	Session   *models.GameSession `json:"session"`
	Moved     int                 `json:"moved"`
	Attackers int                 `json:"attackers"`
	Damage    int                 `json:"damage"`
	Died      bool                `json:"died"`
}

// HandleSmell 气味回合：静止超过阈值且不在安全区时，附近丧尸缓慢逼近
// 逼近后进入攻击半径的丧尸照常造成伤害，规则与移动回合一致
func (m *Manager) HandleSmell(ctx context.Context, userID uint) (*SmellOutcome, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	session, err := m.activeSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	outcome := &SmellOutcome{Session: session}
	if session.IsInSafeZone {
		return outcome, nil
	}

	now := m.now()
	last := session.StartedAt
	if session.LastMoveAt != nil {
		last = *session.LastMoveAt
	}
	if now.Sub(last) < m.cfg.Survival.IdleSmellThreshold {
		return outcome, nil
	}

	zombies, err := m.zombies.FindBySessionID(ctx, session.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询丧尸失败")
	}
	result, err := m.engine.ResolveSmell(ctx, zombies, geo.Point{Lat: session.Lat, Lng: session.Lng})
	if err != nil {
		return nil, err
	}
	outcome.Moved = result.Moved
	outcome.Attackers = len(result.Attackers)

	outcome.Damage = outcome.Attackers * m.cfg.Zombie.Damage
	if outcome.Damage == 0 {
		return outcome, nil
	}
	session.HP -= outcome.Damage
	if session.HP < 0 {
		session.HP = 0
	}

	if session.HP == 0 {
		claimed := 0
		if session.FirstMoveAt != nil {
			claimed = int(now.Sub(*session.FirstMoveAt).Seconds())
		}
		survival := m.validator.ClampSurvivalTime(session, claimed, now)
		if err := m.handleDeath(ctx, session, survival); err != nil {
			return nil, err
		}
		outcome.Died = true
		return outcome, nil
	}

	if err := m.sessions.Update(ctx, session); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "保存会话失败")
	}
	return outcome, nil
}
