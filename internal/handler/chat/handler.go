package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/whisper/backend/internal/model/chat"
	chatService "github.com/zhouzirui/whisper/backend/internal/service/chat"
	"github.com/zhouzirui/whisper/backend/pkg/utils"
)

// Handler 聊天中继的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
	ws      *WebSocketHandler
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		ws:      NewWebSocketHandler(chatSvc),
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/ws/chat", h.ws.handleWebSocket)
}

// handleChat 转发用户输入；生成失败也以200返回
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chat.Request
	if err := utils.DecodeJSON(r.Body, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if payload.UserInput == nil {
		utils.RespondError(w, http.StatusBadRequest, "user_input is required")
		return
	}

	utils.RespondJSON(w, http.StatusOK, h.chatSvc.Respond(r.Context(), *payload.UserInput))
}
