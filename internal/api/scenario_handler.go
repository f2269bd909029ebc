package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/zombie-walk/internal/models"
	"github.com/wfunc/zombie-walk/internal/service"
)

// ScenarioHandler 剧本管理处理器（运营侧）
type ScenarioHandler struct {
	scenarioService service.ScenarioService
}

// NewScenarioHandler 创建剧本管理处理器
func NewScenarioHandler(scenarioService service.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{scenarioService: scenarioService}
}

// ListPresets 列出全部剧本
// @Summary 列出全部剧本
// @Tags Scenario
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ScenarioPreset
// @Router /api/v1/admin/scenarios [get]
func (h *ScenarioHandler) ListPresets(c *gin.Context) {
	presets, err := h.scenarioService.ListPresets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, presets)
}

// GetPreset 查询单个剧本
func (h *ScenarioHandler) GetPreset(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		return
	}
	preset, err := h.scenarioService.GetPreset(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preset)
}

// CreatePreset 创建剧本
func (h *ScenarioHandler) CreatePreset(c *gin.Context) {
	var preset models.ScenarioPreset
	if err := c.ShouldBindJSON(&preset); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.scenarioService.CreatePreset(c.Request.Context(), &preset); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preset)
}

// UpdatePreset 更新剧本
func (h *ScenarioHandler) UpdatePreset(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		return
	}
	var preset models.ScenarioPreset
	if err := c.ShouldBindJSON(&preset); err != nil {
		respondBadRequest(c, err)
		return
	}
	preset.ID = id
	if err := h.scenarioService.UpdatePreset(c.Request.Context(), &preset); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preset)
}

// DeletePreset 删除剧本
func (h *ScenarioHandler) DeletePreset(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		return
	}
	if err := h.scenarioService.DeletePreset(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已删除"})
}

// SetDefault 切换默认剧本
// @Summary 切换默认剧本
// @Description 原子翻转：任意时刻最多只有一个默认剧本
// @Tags Scenario
// @Produce json
// @Security BearerAuth
// @Param id path int true "剧本ID"
// @Success 200 {object} map[string]string
// @Router /api/v1/admin/scenarios/{id}/default [put]
func (h *ScenarioHandler) SetDefault(c *gin.Context) {
	id, err := h.parseID(c, "id")
	if err != nil {
		return
	}
	if err := h.scenarioService.SetDefaultPreset(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "默认剧本已切换"})
}

// CreateRule 为剧本新增刷新规则
func (h *ScenarioHandler) CreateRule(c *gin.Context) {
	presetID, err := h.parseID(c, "id")
	if err != nil {
		return
	}
	var rule models.SpawnRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		respondBadRequest(c, err)
		return
	}
	rule.PresetID = presetID
	if err := h.scenarioService.CreateRule(c.Request.Context(), &rule); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// UpdateRule 更新刷新规则
func (h *ScenarioHandler) UpdateRule(c *gin.Context) {
	ruleID, err := h.parseID(c, "rule_id")
	if err != nil {
		return
	}
	var rule models.SpawnRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		respondBadRequest(c, err)
		return
	}
	rule.ID = ruleID
	if err := h.scenarioService.UpdateRule(c.Request.Context(), &rule); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// DeleteRule 删除刷新规则
func (h *ScenarioHandler) DeleteRule(c *gin.Context) {
	ruleID, err := h.parseID(c, "rule_id")
	if err != nil {
		return
	}
	if err := h.scenarioService.DeleteRule(c.Request.Context(), ruleID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已删除"})
}

func (h *ScenarioHandler) parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		respondBadRequest(c, err)
		return 0, err
	}
	return uint(id), nil
}
