package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
	"github.com/SIMPLYBOYS/campaign_monitor/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
	broadcastWait  = time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// WebSocketManager streams campaign transitions and leaderboards to connected
// operator dashboards.
type WebSocketManager struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	mutex      sync.Mutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Run dispatches registrations and broadcasts until ctx is cancelled, then
// closes every connection.
func (manager *WebSocketManager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(manager.done)
			manager.mutex.Lock()
			for c := range manager.clients {
				close(c.send)
				delete(manager.clients, c)
			}
			manager.mutex.Unlock()
			return
		case c := <-manager.register:
			manager.mutex.Lock()
			manager.clients[c] = true
			manager.mutex.Unlock()
		case c := <-manager.unregister:
			manager.mutex.Lock()
			if _, ok := manager.clients[c]; ok {
				delete(manager.clients, c)
				close(c.send)
			}
			manager.mutex.Unlock()
		case message := <-manager.broadcast:
			manager.mutex.Lock()
			for c := range manager.clients {
				select {
				case c.send <- message:
				default:
					logger.Warn("Dropping slow websocket client %s", c.conn.RemoteAddr())
					close(c.send)
					delete(manager.clients, c)
				}
			}
			manager.mutex.Unlock()
		}
	}
}

// ClientCount returns the number of registered connections.
func (manager *WebSocketManager) ClientCount() int {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	return len(manager.clients)
}

func (manager *WebSocketManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade connection: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case manager.register <- c:
	case <-manager.done:
		conn.Close()
		return
	}

	go manager.readPump(c)
	go manager.writePump(c)
}

func (manager *WebSocketManager) readPump(c *client) {
	defer func() {
		select {
		case manager.unregister <- c:
		case <-manager.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("Unexpected close error: %v", err)
			}
			return
		}
	}
}

func (manager *WebSocketManager) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Error("Error broadcasting message: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (manager *WebSocketManager) send(operation string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return &errors.WebSocketError{Operation: "marshal " + operation, Err: err}
	}

	select {
	case manager.broadcast <- data:
		return nil
	case <-time.After(broadcastWait):
		return &errors.WebSocketError{Operation: operation, Err: context.DeadlineExceeded}
	}
}

// NotifyTransition broadcasts a committed campaign transition.
func (manager *WebSocketManager) NotifyTransition(_ context.Context, t types.Transition) error {
	return manager.send("campaign transition", map[string]interface{}{
		"type":       "campaign_transition",
		"transition": t,
	})
}

func (manager *WebSocketManager) BroadcastLeaderboard(campaignID string, entries []types.LeaderboardEntry) error {
	return manager.send("leaderboard update", map[string]interface{}{
		"type":        "leaderboard_update",
		"campaignId":  campaignID,
		"leaderboard": entries,
	})
}
