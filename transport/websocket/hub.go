package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/ludo/game/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Outgoing frames buffered per client beyond its replay.
	sendBuffer = 256
)

const (
	// LiveChannel receives every simulation broadcast by the server
	LiveChannel = "live"

	EventTurn      = "turn"
	EventCompleted = "completed"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is a single frame sent to clients
type Message struct {
	SimulationID string             `json:"simulation_id"`
	Event        string             `json:"event"`
	Turn         *engine.TurnRecord `json:"turn,omitempty"`
	Positions    []string           `json:"positions"`
}

// EncodeSimulation renders a simulation as its ordered frames: one turn
// message per record and a trailing completed message.
func EncodeSimulation(id string, history []engine.TurnRecord, positions []string) ([][]byte, error) {
	frames := make([][]byte, 0, len(history)+1)
	for i := range history {
		data, err := json.Marshal(Message{
			SimulationID: id,
			Event:        EventTurn,
			Turn:         &history[i],
			Positions:    history[i].Board,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode turn %d: %w", history[i].Index, err)
		}
		frames = append(frames, data)
	}

	data, err := json.Marshal(Message{
		SimulationID: id,
		Event:        EventCompleted,
		Positions:    positions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion: %w", err)
	}
	return append(frames, data), nil
}

// Client is a single WebSocket connection subscribed to one channel
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	channel string
}

type outbound struct {
	channel string
	data    []byte
}

type countRequest struct {
	channel string
	reply   chan int
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by channel
	channels map[string]map[*Client]bool

	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	count      chan countRequest

	// Closed when Run returns
	done chan struct{}
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		channels:   make(map[string]map[*Client]bool),
		broadcast:  make(chan outbound, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan countRequest),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop and closes every client when ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for _, clients := range h.channels {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.deliver(msg)

		case req := <-h.count:
			req.reply <- len(h.channels[req.channel])
		}
	}
}

// ServeWS upgrades the request and subscribes the connection to channel.
// replay frames are queued before any broadcast reaches the client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, channel string, replay [][]byte) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, len(replay)+sendBuffer),
		channel: channel,
	}
	for _, frame := range replay {
		client.send <- frame
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastSimulation sends a simulation's frames to every client on channel
func (h *Hub) BroadcastSimulation(channel, id string, history []engine.TurnRecord, positions []string) error {
	frames, err := EncodeSimulation(id, history, positions)
	if err != nil {
		return err
	}
	for _, frame := range frames {
		select {
		case h.broadcast <- outbound{channel: channel, data: frame}:
		case <-h.done:
			return nil
		}
	}
	return nil
}

// ClientCount returns the number of clients subscribed to channel
func (h *Hub) ClientCount(channel string) int {
	reply := make(chan int, 1)
	select {
	case h.count <- countRequest{channel: channel, reply: reply}:
		return <-reply
	case <-h.done:
		return 0
	}
}

// registerClient adds a client to its channel
func (h *Hub) registerClient(client *Client) {
	if h.channels[client.channel] == nil {
		h.channels[client.channel] = make(map[*Client]bool)
	}
	h.channels[client.channel][client] = true

	log.Printf("Client registered for %s (total clients: %d)",
		client.channel, len(h.channels[client.channel]))
}

// unregisterClient removes a client from its channel
func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.channels[client.channel]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.channels, client.channel)
	}

	log.Printf("Client unregistered from %s (remaining clients: %d)",
		client.channel, len(clients))
}

// deliver queues a frame for every client on the channel, dropping slow clients
func (h *Hub) deliver(msg outbound) {
	for client := range h.channels[msg.channel] {
		select {
		case client.send <- msg.data:
		default:
			h.unregisterClient(client)
		}
	}
}

// readPump drains the connection so pongs and close frames are processed
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

// writePump writes queued frames to the connection, one frame per message
func (c *Client) writePump() {
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
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
