// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"interview-copilot-go/internal/model"
	"interview-copilot-go/internal/service"
	"interview-copilot-go/pkg/log"
	"interview-copilot-go/pkg/realtime"
	"interview-copilot-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// ChatHandler 负责聊天请求与 WebSocket 订阅连接。
type ChatHandler struct {
	chatService service.ChatService
	jwtManager  *token.JWTManager
	hub         *realtime.Hub
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService, jwtManager *token.JWTManager, hub *realtime.Hub) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		jwtManager:  jwtManager,
		hub:         hub,
	}
}

// Chat 处理一条入站聊天消息：校验、编排、返回确认。
// 流式分片通过实时通道推给订阅者；没有订阅者时请求照常同步完成。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "请求参数无效: " + err.Error(),
			"data":    nil,
		})
		return
	}

	streaming := h.hub.HasSubscriber(req.SessionID)

	result, err := h.chatService.Respond(c.Request.Context(), req.SessionID, req.Message, req.IsVoice)
	if err != nil {
		log.Errorf("处理聊天请求失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "AI 服务暂时不可用，请稍后重试",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"success":   true,
			"response":  result.Response.Content,
			"streaming": streaming,
			"result":    result,
		},
	})
}

// GetWSToken 为会话签发一个短期 WebSocket 连接令牌。
func (h *ChatHandler) GetWSToken(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "缺少 sessionId 参数",
			"data":    nil,
		})
		return
	}

	wsToken, err := h.jwtManager.GenerateWSToken(sessionID)
	if err != nil {
		log.Error("生成 WebSocket 令牌失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "无法生成连接令牌",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"wsToken": wsToken},
	})
}

// Subscribe 处理一条传入的 WebSocket 订阅连接。
// 连接注册为令牌所绑会话的订阅者，之后编排层产生的流式事件会推到这里。
func (h *ChatHandler) Subscribe(c *gin.Context) {
	tokenString := c.Param("token")
	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    http.StatusUnauthorized,
			"message": "无效的 token",
			"data":    nil,
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	unsubscribe := h.hub.Subscribe(claims.SessionID, conn)
	defer unsubscribe()

	log.Infof("WebSocket 订阅已建立，会话: %s", claims.SessionID)

	// 读循环只用于感知客户端断开；该通道上不接受入站指令。
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Infof("WebSocket 订阅已断开，会话: %s", claims.SessionID)
			break
		}
	}
}
