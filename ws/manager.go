package ws

import (
	"encoding/json"

	"servicesbladi_backend/internal/logger"
)

// Envelope is the wire format of every outbound frame.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Manager tracks live sessions per user and per request conversation
// room, and fans events out to them. All map access happens on the
// run loop.
type Manager struct {
	sessions   map[string]map[*Client]bool
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	outbound   chan targetedMessage
	roomOut    chan roomMessage
}

type targetedMessage struct {
	userID  string
	payload []byte
}

type roomMessage struct {
	room    string
	payload []byte
}

func NewManager() *Manager {
	return &Manager{
		sessions:   make(map[string]map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan targetedMessage, 256),
		roomOut:    make(chan roomMessage, 256),
	}
}

// Run owns the session and room maps. Start it once, before serving
// connections.
func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			if m.sessions[client.userID] == nil {
				m.sessions[client.userID] = make(map[*Client]bool)
			}
			m.sessions[client.userID][client] = true
			if client.room != "" {
				if m.rooms[client.room] == nil {
					m.rooms[client.room] = make(map[*Client]bool)
				}
				m.rooms[client.room][client] = true
			}
			logger.Debug("websocket session opened", "user_id", client.userID, "room", client.room)

		case client := <-m.unregister:
			if clients, ok := m.sessions[client.userID]; ok && clients[client] {
				m.drop(client)
			}

		case msg := <-m.outbound:
			for client := range m.sessions[msg.userID] {
				select {
				case client.send <- msg.payload:
				default:
					// Slow consumer, drop the session.
					m.drop(client)
				}
			}

		case msg := <-m.roomOut:
			for client := range m.rooms[msg.room] {
				select {
				case client.send <- msg.payload:
				default:
					m.drop(client)
				}
			}
		}
	}
}

// drop removes the client from both maps and closes its send channel.
// Must only run on the run loop.
func (m *Manager) drop(client *Client) {
	delete(m.sessions[client.userID], client)
	if len(m.sessions[client.userID]) == 0 {
		delete(m.sessions, client.userID)
	}
	if client.room != "" {
		delete(m.rooms[client.room], client)
		if len(m.rooms[client.room]) == 0 {
			delete(m.rooms, client.room)
		}
	}
	close(client.send)
}

// PublishToUser delivers an event to every live session of the user.
// Users with no open session are skipped silently.
func (m *Manager) PublishToUser(userID string, event string, payload interface{}) {
	data, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		logger.Warn("websocket payload marshal failed", "event", event, "error", err)
		return
	}

	select {
	case m.outbound <- targetedMessage{userID: userID, payload: data}:
	default:
		logger.Warn("websocket outbound queue full, dropping event", "event", event, "user_id", userID)
	}
}

// PublishToRoom delivers an event to every session joined to a
// request conversation room.
func (m *Manager) PublishToRoom(room string, event string, payload interface{}) {
	data, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		logger.Warn("websocket payload marshal failed", "event", event, "error", err)
		return
	}

	select {
	case m.roomOut <- roomMessage{room: room, payload: data}:
	default:
		logger.Warn("websocket room queue full, dropping event", "event", event, "room", room)
	}
}
