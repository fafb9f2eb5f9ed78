package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	analysis "github.com/zhouzirui/neuroaid/backend/internal/analysis/emotion"
	chatservice "github.com/zhouzirui/neuroaid/backend/internal/service/chat"
	"github.com/zhouzirui/neuroaid/backend/internal/service/companion"
	"github.com/zhouzirui/neuroaid/backend/internal/service/emotion"
)

type frame struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func setupServer(t *testing.T) (*httptest.Server, *chatservice.Service) {
	t.Helper()
	classifier, err := emotion.NewService(emotion.NewKeywordBackend(analysis.DefaultModelLabels()), emotion.Config{})
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	chatSvc := chatservice.NewService()

	r := chi.NewRouter()
	NewWebSocketHandler(companion.NewService(classifier, chatSvc)).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, chatSvc
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	var hello frame
	readFrame(t, conn, &hello)
	if hello.Type != "result" || hello.Data["type"] != "connected" {
		t.Fatalf("unexpected greeting: %+v", hello)
	}
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn, out *frame) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(out); err != nil {
		t.Fatalf("read: %v", err)
	}
}

func TestWebSocketAnalyzeAppendsRecord(t *testing.T) {
	srv, chatSvc := setupServer(t)
	session, _ := chatSvc.CreateSession(context.Background())
	conn := dial(t, srv, session.ID)

	if err := conn.WriteJSON(map[string]any{"type": "analyze", "data": map[string]string{"text": "I got the job, I'm so excited!"}}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var reply frame
	readFrame(t, conn, &reply)
	if reply.Type != "result" || reply.Data["type"] != "analysis" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	record, _ := reply.Data["record"].(map[string]any)
	if record["emotion"] != "joy" {
		t.Fatalf("expected joy, got %v", record["emotion"])
	}

	history, _ := chatSvc.History(context.Background(), session.ID)
	if history.Len() != 1 {
		t.Fatalf("expected one record, got %d", history.Len())
	}
}

func TestWebSocketEmptyTextAndClear(t *testing.T) {
	srv, chatSvc := setupServer(t)
	session, _ := chatSvc.CreateSession(context.Background())
	conn := dial(t, srv, session.ID)

	_ = conn.WriteJSON(map[string]any{"type": "analyze", "data": map[string]string{"text": "  "}})
	var reply frame
	readFrame(t, conn, &reply)
	if reply.Type != "error" {
		t.Fatalf("expected error frame, got %+v", reply)
	}

	_ = conn.WriteJSON(map[string]any{"type": "clear"})
	readFrame(t, conn, &reply)
	if reply.Data["type"] != "cleared" {
		t.Fatalf("expected cleared, got %+v", reply)
	}

	_ = conn.WriteJSON(map[string]any{"type": "history"})
	readFrame(t, conn, &reply)
	if reply.Data["type"] != "history" {
		t.Fatalf("expected history, got %+v", reply)
	}
	if records, _ := reply.Data["records"].([]any); len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestWebSocketUnsupportedType(t *testing.T) {
	srv, chatSvc := setupServer(t)
	session, _ := chatSvc.CreateSession(context.Background())
	conn := dial(t, srv, session.ID)

	_ = conn.WriteJSON(map[string]any{"type": "audio"})
	var reply frame
	readFrame(t, conn, &reply)
	if reply.Type != "error" {
		t.Fatalf("expected error frame, got %+v", reply)
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	srv, _ := setupServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/missing"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
}
