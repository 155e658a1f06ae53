package chat

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zhouzirui/whisper/backend/internal/model/chat"
	chatService "github.com/zhouzirui/whisper/backend/internal/service/chat"
	"github.com/zhouzirui/whisper/backend/pkg/utils"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// WebSocketHandler 通过WebSocket逐条中继聊天消息，连接之间与消息之间均无状态
type WebSocketHandler struct {
	chatSvc  *chatService.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(chatSvc *chatService.Service) *WebSocketHandler {
	return &WebSocketHandler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go h.pingLoop(ctx, conn)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))

		if messageType != websocket.TextMessage {
			h.sendError(conn, "only text frames are supported")
			continue
		}

		var payload chat.Request
		if err := utils.DecodeJSON(bytes.NewReader(data), &payload); err != nil {
			h.sendError(conn, err.Error())
			continue
		}
		if payload.UserInput == nil {
			h.sendError(conn, "user_input is required")
			continue
		}

		h.send(conn, outgoingMessage{
			Type:      "reply",
			Data:      h.chatSvc.Respond(ctx, *payload.UserInput),
			Timestamp: time.Now().Unix(),
		})
	}
}

func (h *WebSocketHandler) send(conn *websocket.Conn, msg outgoingMessage) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write %s failed: %v", msg.Type, err)
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, message string) {
	h.send(conn, outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	})
}

// pingLoop 定期发送ping；WriteControl 可与 WriteJSON 并发调用
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
