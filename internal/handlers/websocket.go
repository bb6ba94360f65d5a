package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"casino-lobby/internal/engine"
	"casino-lobby/internal/logger"
	"casino-lobby/internal/models"
)

const (
	MessagePing          = "PING"
	MessagePong          = "PONG"
	MessageActive        = "ACTIVE"
	MessageBalanceUpdate = "BALANCE_UPDATE"
	MessageSessionUpdate = "SESSION_UPDATE"
	MessageSettled       = "SETTLED"

	clientBuffer    = 32
	broadcastBuffer = 256
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Conn is the part of *websocket.Conn the hub uses.
type Conn interface {
	WriteJSON(v any) error
	ReadJSON(v any) error
	Close() error
}

// Presence is told when a player's first connection opens and last one closes.
type Presence interface {
	IncOnlinePlayers()
	DecOnlinePlayers()
}

type Message struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id,omitempty"`
	Data     any    `json:"data,omitempty"`
}

type Client struct {
	PlayerID string
	conn     Conn
	send     chan *Message
}

func NewClient(playerID string, conn Conn) *Client {
	return &Client{
		PlayerID: playerID,
		conn:     conn,
		send:     make(chan *Message, clientBuffer),
	}
}

// writePump is the only writer on the connection.
func (c *Client) writePump() {
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			logger.Log.Debugw("WebSocket write failed", "player_id", c.PlayerID, "error", err)
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
	c.conn.Close()
}

// WebSocketHub fans engine events out to the owning player's connections.
// A player may hold several connections at once.
type WebSocketHub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	presence   Presence
}

func NewWebSocketHub(presence Presence) *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, broadcastBuffer),
		done:       make(chan struct{}),
		presence:   presence,
	}
}

func (hub *WebSocketHub) Run(ctx context.Context) {
	defer close(hub.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range hub.clients {
				for client := range set {
					close(client.send)
				}
			}
			hub.clients = make(map[string]map[*Client]struct{})
			return

		case client := <-hub.register:
			set, ok := hub.clients[client.PlayerID]
			if !ok {
				set = make(map[*Client]struct{})
				hub.clients[client.PlayerID] = set
				if hub.presence != nil {
					hub.presence.IncOnlinePlayers()
				}
			}
			set[client] = struct{}{}
			logger.Log.Debugw("Client registered", "player_id", client.PlayerID, "connections", len(set))

		case client := <-hub.unregister:
			hub.remove(client)

		case message := <-hub.broadcast:
			hub.broadcastMessage(message)
		}
	}
}

// Register returns false once the hub has stopped.
func (hub *WebSocketHub) Register(client *Client) bool {
	select {
	case hub.register <- client:
		return true
	case <-hub.done:
		return false
	}
}

func (hub *WebSocketHub) Unregister(client *Client) {
	select {
	case hub.unregister <- client:
	case <-hub.done:
	}
}

func (hub *WebSocketHub) remove(client *Client) {
	set, ok := hub.clients[client.PlayerID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(hub.clients, client.PlayerID)
		if hub.presence != nil {
			hub.presence.DecOnlinePlayers()
		}
	}
	logger.Log.Debugw("Client unregistered", "player_id", client.PlayerID)
}

// broadcastMessage drops clients whose buffer is full rather than block the hub.
func (hub *WebSocketHub) broadcastMessage(message *Message) {
	for client := range hub.clients[message.PlayerID] {
		select {
		case client.send <- message:
		default:
			logger.Log.Warnw("Dropping slow WebSocket client", "player_id", client.PlayerID)
			hub.remove(client)
		}
	}
}

func (hub *WebSocketHub) publish(message *Message) {
	select {
	case hub.broadcast <- message:
	default:
		logger.Log.Warnw("WebSocket broadcast queue full", "type", message.Type, "player_id", message.PlayerID)
	}
}

func (hub *WebSocketHub) BroadcastSessionUpdate(playerID string, view models.SessionView) {
	hub.publish(&Message{
		Type:     MessageSessionUpdate,
		PlayerID: playerID,
		Data:     view,
	})
}

func (hub *WebSocketHub) BroadcastSettlement(playerID string, rec models.WagerRecord, balance int64) {
	hub.publish(&Message{
		Type:     MessageSettled,
		PlayerID: playerID,
		Data: gin.H{
			"result":  rec,
			"balance": balance,
		},
	})
}

type WebSocketHandler struct {
	engine *engine.Engine
	hub    *WebSocketHub
	now    func() time.Time
}

func NewWebSocketHandler(eng *engine.Engine, hub *WebSocketHub) *WebSocketHandler {
	return &WebSocketHandler{
		engine: eng,
		hub:    hub,
		now:    time.Now,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	p, ok := player(c, h.engine)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warnw("Failed to upgrade to WebSocket", "player_id", p.ID(), "error", err)
		return
	}

	h.Serve(p, conn)
}

// Serve runs one connection until the peer goes away.
func (h *WebSocketHandler) Serve(p *engine.Player, conn Conn) {
	client := NewClient(p.ID(), conn)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}
	go client.writePump()
	defer h.hub.Unregister(client)

	h.reply(client, &Message{
		Type: MessageBalanceUpdate,
		Data: h.engine.Balance(p),
	})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Infow("WebSocket closed", "player_id", p.ID(), "error", err)
			}
			return
		}
		h.handleMessage(p, client, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(p *engine.Player, client *Client, msg *Message) {
	switch msg.Type {
	case MessagePing:
		h.reply(client, &Message{
			Type: MessagePong,
			Data: gin.H{"timestamp": h.now().Unix()},
		})
	case MessageActive:
		h.reply(client, &Message{
			Type: MessageActive,
			Data: h.engine.Active(p),
		})
	}
}

// reply goes through the hub, so it reaches every connection the player holds.
func (h *WebSocketHandler) reply(client *Client, msg *Message) {
	msg.PlayerID = client.PlayerID
	h.hub.publish(msg)
}
