package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatService "github.com/zhouzirui/neuroaid/backend/internal/service/chat"
	"github.com/zhouzirui/neuroaid/backend/internal/service/companion"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// WebSocketHandler 实时情绪分析的WebSocket处理器
type WebSocketHandler struct {
	companion *companion.Service
	upgrader  websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(companionSvc *companion.Service) *WebSocketHandler {
	return &WebSocketHandler{
		companion: companionSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
}

type analyzePayload struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// connection serialises writes; gorilla allows one concurrent writer.
type connection struct {
	conn      *websocket.Conn
	sessionID string
	writeMu   sync.Mutex
}

func (c *connection) writeJSON(msg outgoingMessage) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		slog.Warn("websocket write failed", "component", "live", "sessionID", c.sessionID, "error", err)
	}
}

func (c *connection) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.companion.Sessions().GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "component", "live", "error", err)
		return
	}
	defer ws.Close()

	conn := &connection{conn: ws, sessionID: sessionID}
	slog.Info("websocket connected", "component", "live", "sessionID", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = ws.SetReadDeadline(time.Now().Add(readTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go h.pingLoop(ctx, conn)

	h.sendInfo(conn, map[string]any{"type": "connected"})

	for {
		var msg inboundMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read failed", "component", "live", "sessionID", sessionID, "error", err)
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(readTimeout))

		if msg.SessionID != "" && msg.SessionID != sessionID {
			h.sendError(conn, "session mismatch")
			continue
		}
		h.handleMessage(ctx, conn, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, conn *connection, msg *inboundMessage) {
	switch msg.Type {
	case "analyze":
		var payload analyzePayload
		if len(msg.Data) == 0 || json.Unmarshal(msg.Data, &payload) != nil {
			h.sendError(conn, "invalid analyze payload")
			return
		}
		outcome, err := h.companion.Analyze(ctx, conn.sessionID, payload.Text)
		if err != nil {
			h.sendError(conn, clientMessage(err))
			return
		}
		h.sendInfo(conn, map[string]any{
			"type":           "analysis",
			"record":         outcome.Record,
			"classification": outcome.Classification,
		})
	case "clear":
		if err := h.companion.Clear(ctx, conn.sessionID); err != nil {
			h.sendError(conn, clientMessage(err))
			return
		}
		h.sendInfo(conn, map[string]any{"type": "cleared"})
	case "history":
		records, err := h.companion.History(ctx, conn.sessionID)
		if err != nil {
			h.sendError(conn, clientMessage(err))
			return
		}
		h.sendInfo(conn, map[string]any{"type": "history", "records": records})
	default:
		h.sendError(conn, "unsupported message type: "+msg.Type)
	}
}

func clientMessage(err error) string {
	switch {
	case errors.Is(err, companion.ErrEmptyInput):
		return companion.ErrEmptyInput.Error()
	case errors.Is(err, chatService.ErrSessionNotFound):
		return "session not found"
	default:
		return err.Error()
	}
}

func (h *WebSocketHandler) sendInfo(conn *connection, data map[string]any) {
	conn.writeJSON(outgoingMessage{
		Type:      "result",
		SessionID: conn.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

func (h *WebSocketHandler) sendError(conn *connection, message string) {
	conn.writeJSON(outgoingMessage{
		Type:      "error",
		SessionID: conn.sessionID,
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	})
}

// pingLoop 定期发送ping消息
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *connection) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		}
	}
}
