package session

import (
	"context"

	"github.com/wfunc/zombie-walk/internal/errors"
	"github.com/wfunc/zombie-walk/internal/game/geo"
	"github.com/wfunc/zombie-walk/internal/game/world"
	"github.com/wfunc/zombie-walk/internal/game/zombie"
	"github.com/wfunc/zombie-walk/internal/models"
	"github.com/wfunc/zombie-walk/internal/repository"
	"go.uber.org/zap"
)

// StartGame 开始新游戏
// 旧的激活会话按死亡处理后废弃；世界对象、初始丧尸与新手装备在此一次性就位
func (m *Manager) StartGame(ctx context.Context, userID uint, lat, lng float64) (*GameState, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	now := m.now()
	if old, err := m.sessions.FindActiveByUserID(ctx, userID); err == nil {
		// 被顶替的会话按死亡结算，连同其丧尸、世界对象与背包一并清理
		claimed := 0
		if old.FirstMoveAt != nil {
			claimed = int(now.Sub(*old.FirstMoveAt).Seconds())
		}
		survival := m.validator.ClampSurvivalTime(old, claimed, now)
		if err := m.handleDeath(ctx, old, survival); err != nil {
			return nil, err
		}
		m.log.Info("旧会话被新开局顶替", zap.Uint("user_id", userID), zap.String("session_id", old.SessionID))
	} else if !repository.IsNotFound(err) {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询会话失败")
	}
	// 兜底清扫，保证"每个玩家最多一个激活会话"
	if _, err := m.sessions.DeactivateAllByUserID(ctx, userID, models.EndReasonDeath); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "关闭旧会话失败")
	}

	preset, err := m.scenarios.DefaultPreset(ctx)
	if err != nil {
		return nil, err
	}

	session := &models.GameSession{
		UserID:       userID,
		SessionID:    newSessionID(),
		HP:           m.cfg.Survival.MaxHP,
		MaxHP:        m.cfg.Survival.MaxHP,
		ActionPoints: m.cfg.Survival.InitialAP,
		MaxAP:        m.cfg.Survival.MaxAP,
		Lat:          lat,
		Lng:          lng,
		StartedAt:    now,
		LastAPUseAt:  now,
		IsActive:     true,
	}
	if preset != nil {
		session.ScenarioPresetID = preset.ID
	}
	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "创建会话失败")
	}

	origin := geo.Point{Lat: lat, Lng: lng}
	objects := m.generator.Generate(session.ID, origin)
	if err := m.objects.CreateBatch(ctx, objects); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "创建世界对象失败")
	}

	if _, err := m.spawnForMove(ctx, session, preset, origin, 0); err != nil {
		return nil, err
	}

	if err := m.inventory.GrantStarterKit(ctx, session.ID, m.cfg.Survival.MedkitHeal); err != nil {
		return nil, err
	}

	if err := m.recorder.RecordGameStart(ctx, userID); err != nil {
		return nil, err
	}

	m.log.Info("新游戏开始",
		zap.Uint("user_id", userID),
		zap.String("session_id", session.SessionID))
	return m.buildState(ctx, session)
}

// spawnForMove 按剧本规则生成该回合的丧尸
// 无剧本或剧本无规则时回退为开局一次性随机生成
func (m *Manager) spawnForMove(ctx context.Context, session *models.GameSession, preset *models.ScenarioPreset, center geo.Point, moveCount int) (int, error) {
	var rules []*models.SpawnRule
	if preset != nil {
		rules = make([]*models.SpawnRule, len(preset.Rules))
		for i := range preset.Rules {
			rules[i] = &preset.Rules[i]
		}
	}

	if len(rules) == 0 {
		if moveCount > 0 {
			return 0, nil
		}
		spec := zombie.SpawnSpec{
			Count: m.cfg.Spawn.FallbackCountMin +
				m.rand.Intn(m.cfg.Spawn.FallbackCountMax-m.cfg.Spawn.FallbackCountMin+1),
			DistanceMin: m.cfg.Spawn.DistanceMin,
			DistanceMax: m.cfg.Spawn.DistanceMax,
			Speed:       m.cfg.Spawn.Speed,
		}
		spawned, err := m.engine.SpawnBatch(ctx, session.ID, center, spec)
		if err != nil {
			return 0, err
		}
		return len(spawned), nil
	}

	total := 0
	for _, rule := range m.scenarios.FireRules(rules, moveCount) {
		spawned, err := m.engine.SpawnBatch(ctx, session.ID, center, zombie.SpawnSpec{
			Count:        rule.ZombieCount,
			DistanceMin:  rule.DistanceMin,
			DistanceMax:  rule.DistanceMax,
			Speed:        rule.Speed,
			UseAvatars:   rule.UseAvatars,
			AvatarChance: rule.AvatarChance,
		})
		if err != nil {
			return 0, err
		}
		total += len(spawned)
	}
	return total, nil
}

// EndActiveSession 玩家主动退出
// 安全区内退出为暂离（可恢复）；安全区外退出按死亡结算
func (m *Manager) EndActiveSession(ctx context.Context, userID uint, claimedSurvival int) (*models.GameSession, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	session, err := m.activeSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	survival := m.validator.ClampSurvivalTime(session, claimedSurvival, now)

	if !session.IsInSafeZone {
		if err := m.handleDeath(ctx, session, survival); err != nil {
			return nil, err
		}
		return session, nil
	}

	// 暂离：固化当前AP，供恢复时作为新的惰性恢复基准
	session.ActionPoints = m.CalculateCurrentAP(session, now)
	session.LastAPUseAt = now
	session.IsActive = false
	session.EndReason = models.EndReasonPaused
	session.EndedAt = &now
	session.SurvivalTime = survival
	if err := m.sessions.Update(ctx, session); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "保存暂离会话失败")
	}

	m.log.Info("会话暂离",
		zap.Uint("user_id", userID),
		zap.String("session_id", session.SessionID))
	return session, nil
}

// GetSavedSession 查询可恢复的暂离会话
func (m *Manager) GetSavedSession(ctx context.Context, userID uint) (*models.GameSession, error) {
	session, err := m.sessions.FindPausedByUserID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.New(errors.ErrNoSavedSession)
		}
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询暂离会话失败")
	}
	return session, nil
}

// ResumeGame 恢复暂离会话
// 恢复时重置AP恢复基准，离线时长不折算行动点
func (m *Manager) ResumeGame(ctx context.Context, userID uint) (*GameState, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	if _, err := m.sessions.FindActiveByUserID(ctx, userID); err == nil {
		return nil, errors.New(errors.ErrSessionExists)
	} else if !repository.IsNotFound(err) {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询会话失败")
	}

	session, err := m.GetSavedSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	session.IsActive = true
	session.EndReason = ""
	session.EndedAt = nil
	session.LastAPUseAt = now
	if err := m.sessions.Update(ctx, session); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "恢复会话失败")
	}

	m.log.Info("会话恢复",
		zap.Uint("user_id", userID),
		zap.String("session_id", session.SessionID))
	return m.buildState(ctx, session)
}

// ExtractPlayer 在已解锁的撤离营地撤离，结束本局并结算统计
func (m *Manager) ExtractPlayer(ctx context.Context, userID uint, claimedSurvival int) (*models.GameSession, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	session, err := m.activeSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	objects, err := m.objects.FindBySessionID(ctx, session.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "查询世界对象失败")
	}

	pos := geo.Point{Lat: session.Lat, Lng: session.Lng}
	if world.FindUnlockedExtraction(objects, pos, session.MoveCount) == nil {
		if world.FindLockedExtraction(objects, pos, session.MoveCount) != nil {
			return nil, errors.Newf(errors.ErrExtractionLocked,
				"撤离点需要 %d 次移动后解锁", m.cfg.World.ExtractionUnlockMoves)
		}
		return nil, errors.New(errors.ErrNotInExtraction)
	}

	now := m.now()
	survival := m.validator.ClampSurvivalTime(session, claimedSurvival, now)
	evaded, err := m.zombies.CountBySessionID(ctx, session.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "统计丧尸数量失败")
	}

	session.IsActive = false
	session.EndReason = models.EndReasonExtracted
	session.EndedAt = &now
	session.SurvivalTime = survival
	if err := m.sessions.Update(ctx, session); err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "结束会话失败")
	}

	if err := m.recorder.RecordExtraction(ctx, userID, survival, int(evaded)); err != nil {
		return nil, err
	}
	if err := m.purgeSessionWorld(ctx, session.ID); err != nil {
		return nil, err
	}

	m.log.Info("玩家成功撤离",
		zap.Uint("user_id", userID),
		zap.Int("survival_seconds", survival),
		zap.Int64("zombies_evaded", evaded))
	return session, nil
}

// CheckOfflineDeath 结算并上报离线死亡
// 无激活会话时检查最近一次终结会话：在不安全区域带血退出的，向玩家上报为离线死亡；
// 有激活会话且在不安全区域离线超过气味阈值时长的，按死亡结算
func (m *Manager) CheckOfflineDeath(ctx context.Context, userID uint) (bool, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	session, err := m.sessions.FindActiveByUserID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return m.reportEndedOffline(ctx, userID)
		}
		return false, errors.Wrap(err, errors.ErrDatabase, "查询会话失败")
	}
	if session.IsInSafeZone {
		return false, nil
	}

	now := m.now()
	last := session.StartedAt
	if session.LastMoveAt != nil {
		last = *session.LastMoveAt
	}
	if now.Sub(last) < m.cfg.Survival.IdleSmellThreshold {
		return false, nil
	}

	survival := m.validator.ClampSurvivalTime(session, int(now.Sub(session.StartedAt).Seconds()), now)
	if err := m.handleDeath(ctx, session, survival); err != nil {
		return false, err
	}
	m.log.Info("离线死亡结算", zap.Uint("user_id", userID))
	return true, nil
}

// reportEndedOffline 检查最近一次终结会话
// 在不安全区域结束且仍有生命值的，说明死亡是退出时强制结算的，向玩家上报为离线发生
func (m *Manager) reportEndedOffline(ctx context.Context, userID uint) (bool, error) {
	ended, err := m.sessions.FindLatestEndedByUserID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrDatabase, "查询历史会话失败")
	}
	if ended.EndReason != models.EndReasonDeath || ended.IsInSafeZone || ended.HP <= 0 {
		return false, nil
	}
	return true, nil
}

// handleDeath 死亡结算：关闭会话、写统计、清理世界
// 不改写HP：保留终局血量用于区分局内死亡与退出时强制结算的死亡
// 调用方必须已持有玩家锁
func (m *Manager) handleDeath(ctx context.Context, session *models.GameSession, survival int) error {
	now := m.now()
	session.IsActive = false
	session.EndReason = models.EndReasonDeath
	session.EndedAt = &now
	session.SurvivalTime = survival
	if err := m.sessions.Update(ctx, session); err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "保存死亡会话失败")
	}

	if err := m.recorder.RecordDeath(ctx, session.UserID, survival); err != nil {
		return err
	}
	if err := m.purgeSessionWorld(ctx, session.ID); err != nil {
		return err
	}

	m.log.Info("玩家死亡",
		zap.Uint("user_id", session.UserID),
		zap.Int("survival_seconds", survival))
	return nil
}

// purgeSessionWorld 会话终结后清理其丧尸、世界对象与背包
func (m *Manager) purgeSessionWorld(ctx context.Context, sessionID uint) error {
	if _, err := m.zombies.DeleteBySessionID(ctx, sessionID); err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "清理丧尸失败")
	}
	if _, err := m.objects.DeleteBySessionID(ctx, sessionID); err != nil {
		return errors.Wrap(err, errors.ErrDatabase, "清理世界对象失败")
	}
	if _, err := m.inventory.DeleteAll(ctx, sessionID); err != nil {
		return err
	}
	return nil
}
