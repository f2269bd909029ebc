package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/wfunc/zombie-walk/internal/middleware"
	"github.com/wfunc/zombie-walk/internal/service"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 客户端为移动端App，不做Origin校验
		return true
	},
}

// GameMessageHandler WebSocket游戏消息处理器
type GameMessageHandler struct {
	hub         *Hub
	gameService service.GameService
	logger      *zap.Logger
}

// NewGameMessageHandler 创建游戏消息处理器
func NewGameMessageHandler(hub *Hub, gameService service.GameService, logger *zap.Logger) *GameMessageHandler {
	h := &GameMessageHandler{
		hub:         hub,
		gameService: gameService,
		logger:      logger,
	}
	hub.SetMessageHandler(h)
	return h
}

// ServeWS 处理WebSocket连接升级
func (h *GameMessageHandler) ServeWS(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket升级失败",
			zap.Uint("user_id", userID),
			zap.Error(err))
		return
	}

	client := NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// movePayload 移动消息负载
type movePayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HandleClientMessage 处理客户端消息
func (h *GameMessageHandler) HandleClientMessage(client *Client, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Error("解析消息失败",
			zap.String("client_id", client.ID),
			zap.Error(err))
		h.sendError(client, "消息格式错误")
		client.Close()
		return
	}

	if msg.Type == "" {
		h.sendError(client, "消息类型不能为空")
		client.Close()
		return
	}

	msg.UserID = client.UserID
	msg.Timestamp = time.Now().Unix()

	h.logger.Debug("收到WebSocket消息",
		zap.String("client_id", client.ID),
		zap.String("type", msg.Type),
		zap.Uint("user_id", client.UserID))

	switch msg.Type {
	case MessageTypePing:
		client.SendMessage(MessageTypePong, nil)

	case MessageTypePong:
		// 客户端响应心跳

	case MessageTypeGameState:
		h.handleGameState(client)

	case MessageTypeMoveResult:
		h.handleMove(client, &msg)

	case MessageTypeSmellTick:
		h.handleSmell(client)

	default:
		h.sendError(client, "不支持的消息类型: "+msg.Type)
		client.Close()
	}
}

// handleGameState 推送当前游戏状态
func (h *GameMessageHandler) handleGameState(client *Client) {
	ctx, cancel := h.requestContext()
	defer cancel()

	state, err := h.gameService.GetState(ctx, client.UserID)
	if err != nil {
		h.sendError(client, err.Error())
		return
	}

	client.SessionID = state.Session.SessionID
	client.SendMessage(MessageTypeGameState, state)
}

// handleMove 处理移动请求并推送结果
func (h *GameMessageHandler) handleMove(client *Client, msg *Message) {
	var payload movePayload
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			h.sendError(client, "移动参数错误")
			return
		}
	}
	if payload.Lat < -90 || payload.Lat > 90 || payload.Lng < -180 || payload.Lng > 180 {
		h.sendError(client, "坐标超出范围")
		return
	}

	ctx, cancel := h.requestContext()
	defer cancel()

	outcome, err := h.gameService.MakeMove(ctx, client.UserID, payload.Lat, payload.Lng)
	if err != nil {
		h.sendError(client, err.Error())
		return
	}

	client.SessionID = outcome.Session.SessionID
	client.SendMessage(MessageTypeMoveResult, outcome)

	// 死亡时额外推送一条终局消息，客户端据此切换结算界面
	if outcome.Died {
		client.SendMessage(MessageTypePlayerDeath, gin.H{
			"session_id":    outcome.Session.SessionID,
			"survival_time": outcome.Session.SurvivalTime,
		})
		return
	}

	// 受击告警
	if outcome.Attackers > 0 {
		client.SendMessage(MessageTypeZombieAlert, gin.H{
			"attackers": outcome.Attackers,
			"damage":    outcome.Damage,
			"hp":        outcome.Session.HP,
		})
	}

	if len(outcome.Loot) > 0 {
		client.SendMessage(MessageTypeLootDrop, outcome.Loot)
	}
}

// handleSmell 触发嗅觉移动并推送结果
func (h *GameMessageHandler) handleSmell(client *Client) {
	ctx, cancel := h.requestContext()
	defer cancel()

	outcome, err := h.gameService.TriggerSmell(ctx, client.UserID)
	if err != nil {
		h.sendError(client, err.Error())
		return
	}

	client.SendMessage(MessageTypeSmellTick, outcome)
	if outcome.Died {
		client.SendMessage(MessageTypePlayerDeath, gin.H{
			"session_id":    outcome.Session.SessionID,
			"survival_time": outcome.Session.SurvivalTime,
		})
	}
}

func (h *GameMessageHandler) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// sendError 发送错误消息
func (h *GameMessageHandler) sendError(client *Client, message string) {
	data, _ := json.Marshal(gin.H{"error": message})
	msg := &Message{
		Type:      MessageTypeError,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}
	h.hub.SendToClient(client.ID, msg)
}
