package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now (should be restricted in production)
	},
}

// LineupUpdate is the envelope pushed to connected clients after an
// optimize run or waiver scan finishes.
type LineupUpdate struct {
	Type      string      `json:"type"`
	LeagueID  string      `json:"league_id"`
	Week      int         `json:"week"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Client represents a WebSocket client
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
}

// Hub maintains active WebSocket connections and routes lineup updates
// to the owning user's connections.
type Hub struct {
	clients     map[*Client]bool
	userClients map[string][]*Client
	broadcast   chan []byte
	register    chan *Client
	unregister  chan *Client
	logger      *logrus.Logger
	mutex       sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		userClients: make(map[string][]*Client),
		broadcast:   make(chan []byte, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		logger:      logger,
	}
}

// Run starts the hub and handles client registration/unregistration
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"user_id":       client.UserID,
				"total_clients": len(h.clients),
			}).Info("WebSocket client connected")

		case client := <-h.unregister:
			h.dropClient(client)

			h.logger.WithFields(logrus.Fields{
				"user_id":       client.UserID,
				"total_clients": h.GetConnectionCount(),
			}).Info("WebSocket client disconnected")

		case message := <-h.broadcast:
			var dropped []*Client
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					dropped = append(dropped, client)
				}
			}
			h.mutex.RUnlock()
			for _, client := range dropped {
				h.dropClient(client)
			}
		}
	}
}

// dropClient removes a client from both registries and closes its send
// channel. Removal and close happen under the write lock while sends
// happen under the read lock, so a send can never hit a closed channel.
func (h *Hub) dropClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)

	userClients := h.userClients[client.UserID]
	for i, c := range userClients {
		if c == client {
			h.userClients[client.UserID] = append(userClients[:i], userClients[i+1:]...)
			break
		}
	}
	if len(h.userClients[client.UserID]) == 0 {
		delete(h.userClients, client.UserID)
	}
}

// HandleWebSocket upgrades the connection and registers the client under
// the user ID in the route.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		Hub:    h,
	}

	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}

// NotifyUser pushes a lineup update to all of a user's connections. A slow
// client gets dropped from both registries rather than blocking the rest.
func (h *Hub) NotifyUser(userID string, update LineupUpdate) {
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(update)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal WebSocket message")
		return
	}

	var dropped []*Client
	h.mutex.RLock()
	for _, client := range h.userClients[userID] {
		select {
		case client.Send <- data:
		default:
			dropped = append(dropped, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range dropped {
		h.dropClient(client)
		h.logger.WithField("user_id", userID).Warn("Dropped slow WebSocket client")
	}
}

// BroadcastToAll sends a message to all connected clients
func (h *Hub) BroadcastToAll(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal WebSocket message")
		return
	}

	h.broadcast <- data
}

// GetConnectionCount returns the total number of active connections
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.WithError(err).Error("WebSocket error")
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.Hub.logger.WithError(err).Error("Failed to write WebSocket message")
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
