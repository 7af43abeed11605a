package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/doutorgpt/carousel-maker/internal/services"
)

func readEvent(t *testing.T, conn *websocket.Conn) services.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	var event services.Event
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	return event
}

func dialSession(t *testing.T, server *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/sessions/" + id
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSessionWebSocketEvents(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.router)
	defer server.Close()

	id := ts.createSession(t, true)
	conn := dialSession(t, server, id)

	if event := readEvent(t, conn); event.Type != EventConnected || event.SessionID != id {
		t.Fatalf("expected welcome event, got %+v", event)
	}

	ts.do(t, http.MethodPost, "/api/sessions/"+id+"/generate", nil)

	if event := readEvent(t, conn); event.Type != services.EventGenerationStarted {
		t.Errorf("expected %s, got %+v", services.EventGenerationStarted, event)
	}
	event := readEvent(t, conn)
	if event.Type != services.EventGenerationFinished || event.Error != "" {
		t.Errorf("expected clean %s, got %+v", services.EventGenerationFinished, event)
	}

	ts.do(t, http.MethodPost, "/api/sessions/"+id+"/slides/4/prompt", nil)
	if event := readEvent(t, conn); event.Type != services.EventSlidePromptStarted || event.SlideNumber != 4 {
		t.Errorf("unexpected event %+v", event)
	}
	if event := readEvent(t, conn); event.Type != services.EventSlidePromptFinished || event.SlideNumber != 4 {
		t.Errorf("unexpected event %+v", event)
	}
}

func TestSessionWebSocketIsolation(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.router)
	defer server.Close()

	watched := ts.createSession(t, false)
	other := ts.createSession(t, false)
	conn := dialSession(t, server, watched)
	readEvent(t, conn)

	ts.do(t, http.MethodPatch, "/api/sessions/"+other+"/briefing", UpdateBriefingRequest{Field: "topic", Value: "Outro"})
	ts.do(t, http.MethodPatch, "/api/sessions/"+watched+"/briefing", UpdateBriefingRequest{Field: "topic", Value: "Sono"})

	event := readEvent(t, conn)
	if event.SessionID != watched || event.Type != services.EventBriefingUpdated {
		t.Errorf("received another session's event: %+v", event)
	}
}

func TestSessionWebSocketUnknownSession(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/sessions/missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected the handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 handshake response, got %+v", resp)
	}
}

func TestWebSocketManagerClientCount(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.router)
	defer server.Close()

	id := ts.createSession(t, false)
	conn := dialSession(t, server, id)
	readEvent(t, conn)

	if n := ts.ws.ClientCount(id); n != 1 {
		t.Errorf("expected 1 client, got %d", n)
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for ts.ws.ClientCount(id) != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := ts.ws.ClientCount(id); n != 0 {
		t.Errorf("expected client to be removed, got %d", n)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	manager := NewWebSocketManager()
	manager.Start()
	defer manager.Stop()

	// must not block or panic
	for i := 0; i < 1000; i++ {
		manager.Publish(services.Event{Type: services.EventBriefingUpdated, SessionID: "nobody"})
	}
}
