package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/zombie-walk/internal/config"
	"github.com/wfunc/zombie-walk/internal/repository"
	"go.uber.org/zap"
)

func testRouter(t *testing.T) *Router {
	gin.SetMode(gin.TestMode)
	db := repository.TestDB(t)

	cfg := &config.Config{
		Game: *config.DefaultGameConfig(),
	}
	cfg.Security.JWT.Secret = "test-secret"
	cfg.Security.JWT.ExpireHours = 1
	cfg.Security.JWT.RefreshHours = 24

	return NewRouter(db, cfg, zap.NewNop())
}

func doJSON(t *testing.T, router *Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.GetEngine().ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, router *Router, username string) string {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/v1/auth/register", "", map[string]string{
		"username":         username,
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestHealthCheck(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestAuthFlow(t *testing.T) {
	router := testRouter(t)

	token := registerAndLogin(t, router, "apitester")

	// 重复注册同名用户
	w := doJSON(t, router, "POST", "/api/v1/auth/register", "", map[string]string{
		"username":         "apitester",
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 错误密码登录
	w = doJSON(t, router, "POST", "/api/v1/auth/login", "", map[string]string{
		"username": "apitester",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 正确登录
	w = doJSON(t, router, "POST", "/api/v1/auth/login", "", map[string]string{
		"username": "apitester",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// 带令牌登出
	w = doJSON(t, router, "POST", "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGameFlow(t *testing.T) {
	router := testRouter(t)
	token := registerAndLogin(t, router, "walker")

	// 未认证访问被拒
	w := doJSON(t, router, "GET", "/api/v1/game/state", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 没有会话时查询状态（游戏规则校验失败）
	w = doJSON(t, router, "GET", "/api/v1/game/state", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 开始游戏
	w = doJSON(t, router, "POST", "/api/v1/game/start", token, map[string]float64{
		"lat": 39.9042,
		"lng": 116.4074,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var state struct {
		Session struct {
			SessionID string `json:"session_id"`
			HP        int    `json:"hp"`
		} `json:"session"`
		CurrentAP int `json:"current_ap"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.NotEmpty(t, state.Session.SessionID)
	assert.Equal(t, 100, state.Session.HP)

	// 非法坐标被参数校验拦截
	w = doJSON(t, router, "POST", "/api/v1/game/move", token, map[string]float64{
		"lat": 91.0,
		"lng": 116.4074,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 正常移动
	w = doJSON(t, router, "POST", "/api/v1/game/move", token, map[string]float64{
		"lat": 39.9043,
		"lng": 116.4074,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var outcome struct {
		CurrentAP int      `json:"current_ap"`
		Events    []string `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	assert.Equal(t, state.CurrentAP-1, outcome.CurrentAP)

	// 排行榜
	w = doJSON(t, router, "GET", "/api/v1/game/leaderboard?limit=5", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestZeroCoordinates(t *testing.T) {
	router := testRouter(t)
	token := registerAndLogin(t, router, "sailor")

	// 赤道与本初子午线交点是合法起点
	w := doJSON(t, router, "POST", "/api/v1/game/start", token, map[string]float64{
		"lat": 0,
		"lng": 0,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 纬度归零的移动同样合法
	w = doJSON(t, router, "POST", "/api/v1/game/move", token, map[string]float64{
		"lat": 0,
		"lng": 0.0001,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAdminScenarioRequiresRole(t *testing.T) {
	router := testRouter(t)
	token := registerAndLogin(t, router, "ordinary")

	// 普通玩家无权访问剧本管理
	w := doJSON(t, router, "GET", "/api/v1/admin/scenarios", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNoRoute(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, "GET", fmt.Sprintf("/api/v1/%s", "nope"), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
