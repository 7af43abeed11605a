// internal/api/websocket.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/doutorgpt/carousel-maker/internal/logger"
	"github.com/doutorgpt/carousel-maker/internal/metrics"
	"github.com/doutorgpt/carousel-maker/internal/services"
)

const (
	EventConnected = "connected"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketClient is one subscriber of a session's event feed.
type WebSocketClient struct {
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
	createdAt time.Time
}

type sessionMessage struct {
	sessionID string
	payload   []byte
}

// WebSocketManager fans session events out to connected clients. All
// client bookkeeping happens on the run goroutine, so only run ever writes
// to or closes a client's send channel.
type WebSocketManager struct {
	connections map[string]map[*WebSocketClient]struct{}
	register    chan *WebSocketClient
	unregister  chan *WebSocketClient
	broadcast   chan sessionMessage
	done        chan struct{}
	stopOnce    sync.Once

	mutex  sync.RWMutex
	counts map[string]int
}

// NewWebSocketManager creates a manager; call Start before use.
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		connections: make(map[string]map[*WebSocketClient]struct{}),
		register:    make(chan *WebSocketClient, 64),
		unregister:  make(chan *WebSocketClient, 64),
		broadcast:   make(chan sessionMessage, 256),
		done:        make(chan struct{}),
		counts:      make(map[string]int),
	}
}

// Start runs the manager loop in the background.
func (manager *WebSocketManager) Start() {
	go manager.run()
}

// Stop closes every client and ends the loop.
func (manager *WebSocketManager) Stop() {
	manager.stopOnce.Do(func() {
		close(manager.done)
	})
}

func (manager *WebSocketManager) run() {
	for {
		select {
		case client := <-manager.register:
			manager.registerClient(client)

		case client := <-manager.unregister:
			manager.unregisterClient(client)

		case msg := <-manager.broadcast:
			manager.broadcastMessage(msg)

		case <-manager.done:
			manager.shutdown()
			return
		}
	}
}

func (manager *WebSocketManager) registerClient(client *WebSocketClient) {
	clients, ok := manager.connections[client.sessionID]
	if !ok {
		clients = make(map[*WebSocketClient]struct{})
		manager.connections[client.sessionID] = clients
	}
	clients[client] = struct{}{}
	manager.setCount(client.sessionID, len(clients))
	metrics.WebSocketConnections.Inc()

	welcome, _ := json.Marshal(services.Event{
		Type:      EventConnected,
		SessionID: client.sessionID,
		Timestamp: time.Now(),
	})
	client.send <- welcome

	logger.Debug(context.Background(), "websocket client connected", "session_id", client.sessionID)
}

func (manager *WebSocketManager) unregisterClient(client *WebSocketClient) {
	clients, ok := manager.connections[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	metrics.WebSocketConnections.Dec()

	if len(clients) == 0 {
		delete(manager.connections, client.sessionID)
	}
	manager.setCount(client.sessionID, len(clients))

	logger.Debug(context.Background(), "websocket client disconnected", "session_id", client.sessionID)
}

func (manager *WebSocketManager) broadcastMessage(msg sessionMessage) {
	for client := range manager.connections[msg.sessionID] {
		select {
		case client.send <- msg.payload:
		default:
			// slow consumer
			manager.unregisterClient(client)
		}
	}
}

func (manager *WebSocketManager) shutdown() {
	for _, clients := range manager.connections {
		for client := range clients {
			close(client.send)
			metrics.WebSocketConnections.Dec()
		}
	}
	manager.connections = make(map[string]map[*WebSocketClient]struct{})

	manager.mutex.Lock()
	manager.counts = make(map[string]int)
	manager.mutex.Unlock()
}

func (manager *WebSocketManager) setCount(sessionID string, n int) {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	if n == 0 {
		delete(manager.counts, sessionID)
		return
	}
	manager.counts[sessionID] = n
}

// ClientCount returns the number of clients subscribed to a session.
func (manager *WebSocketManager) ClientCount(sessionID string) int {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()
	return manager.counts[sessionID]
}

// Publish implements services.EventPublisher. It never blocks; events are
// dropped when the manager is saturated.
func (manager *WebSocketManager) Publish(event services.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error(context.Background(), "marshal websocket event", err)
		return
	}

	select {
	case manager.broadcast <- sessionMessage{sessionID: event.SessionID, payload: payload}:
	default:
		logger.Warn(context.Background(), "websocket broadcast queue full, event dropped",
			"session_id", event.SessionID,
			"type", event.Type,
		)
	}
}

// Serve upgrades the request and streams the session's events until the
// client goes away.
func (manager *WebSocketManager) Serve(w http.ResponseWriter, r *http.Request, sessionID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &WebSocketClient{
		conn:      conn,
		sessionID: sessionID,
		send:      make(chan []byte, sendBufferSize),
		createdAt: time.Now(),
	}

	select {
	case manager.register <- client:
	case <-manager.done:
		conn.Close()
		return nil
	}

	go manager.writePump(client)
	manager.readPump(client)
	return nil
}

// readPump discards client messages and detects disconnects.
func (manager *WebSocketManager) readPump(client *WebSocketClient) {
	defer func() {
		select {
		case manager.unregister <- client:
		case <-manager.done:
		}
		client.conn.Close()
	}()

	client.conn.SetReadLimit(4096)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn(context.Background(), "websocket read failed", "session_id", client.sessionID, "error", err.Error())
			}
			return
		}
	}
}

func (manager *WebSocketManager) writePump(client *WebSocketClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
