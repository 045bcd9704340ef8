package handler

import (
	"net/http"

	"interview-copilot-go/internal/model"
	"interview-copilot-go/internal/service"
	"interview-copilot-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SessionHandler 处理会话状态相关的 API 请求：背景资料、历史、清理。
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler 创建一个新的 SessionHandler。
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// SetContext 保存会话的背景资料（简历、职位描述等），后写覆盖。
func (h *SessionHandler) SetContext(c *gin.Context) {
	var req model.ContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "请求参数无效: " + err.Error(),
			"data":    nil,
		})
		return
	}

	if err := h.sessionService.SetBackground(c.Request.Context(), req.SessionID, req.Content); err != nil {
		log.Error("保存会话背景失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "保存背景资料失败",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": nil})
}

// GetHistory 返回会话留存的全部轮次，最旧在前。
func (h *SessionHandler) GetHistory(c *gin.Context) {
	sessionID := c.Param("sessionId")

	turns, err := h.sessionService.History(c.Request.Context(), sessionID)
	if err != nil {
		log.Error("读取会话历史失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "读取会话历史失败",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": turns})
}

// ClearSession 删除会话的轮次日志与背景资料。
func (h *SessionHandler) ClearSession(c *gin.Context) {
	sessionID := c.Param("sessionId")

	if err := h.sessionService.Clear(c.Request.Context(), sessionID); err != nil {
		log.Error("清理会话失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "清理会话失败",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": nil})
}
