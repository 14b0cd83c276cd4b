package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"servicesbladi_backend/internal/logger"
	"servicesbladi_backend/internal/models"
)

const (
	writeWait = 10 * time.Second

	// pongWait is the idle deadline; pingPeriod must be shorter so a
	// healthy peer always answers in time.
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	maxMessageSize = 4096
)

// Frame is the wire format of inbound client frames on a request
// conversation room.
type Frame struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Client is one live websocket session of a user. A user may hold
// several sessions at once (multiple tabs or devices). Sessions
// opened against a request conversation carry the request id as room.
type Client struct {
	manager *Manager
	handler *Handler
	conn    *websocket.Conn
	send    chan []byte
	userID  string
	role    models.UserRole
	room    string
}

func newClient(manager *Manager, handler *Handler, conn *websocket.Conn, userID string, role models.UserRole, room string) *Client {
	return &Client{
		manager: manager,
		handler: handler,
		conn:    conn,
		send:    make(chan []byte, 32),
		userID:  userID,
		role:    role,
		room:    room,
	}
}

// readPump drains the connection and enforces the idle deadline. Any
// read error tears the session down. Frames on notification sessions
// are keepalive traffic only; room sessions accept chat frames.
func (c *Client) readPump() {
	defer func() {
		c.manager.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read error", "user_id", c.userID, "error", err)
			}
			return
		}

		if c.room == "" {
			continue
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.sendError("invalid frame")
			continue
		}
		c.handler.handleFrame(c, frame)
	}
}

// sendError delivers an error frame to this session only.
func (c *Client) sendError(message string) {
	data, err := json.Marshal(Envelope{Event: "error", Data: map[string]string{"message": message}})
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

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
