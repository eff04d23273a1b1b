package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"room-chat-service/internal/models"
	"room-chat-service/internal/observability"
)

// Hub maintains the active websocket subscribers per room.
type Hub struct {
	rooms    map[string]map[*websocket.Conn]bool
	connInfo map[string]map[*websocket.Conn]ConnInfo
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[string]map[*websocket.Conn]bool),
		connInfo: make(map[string]map[*websocket.Conn]ConnInfo),
	}
}

// AddClient registers a websocket connection to a room.
func (h *Hub) AddClient(roomName string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[roomName]; !ok {
		h.rooms[roomName] = make(map[*websocket.Conn]bool)
	}
	h.rooms[roomName][conn] = true
	if _, ok := h.connInfo[roomName]; !ok {
		h.connInfo[roomName] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[roomName][conn] = info
}

// RemoveClient removes a websocket connection from a room.
func (h *Hub) RemoveClient(roomName string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[roomName]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, roomName)
		}
	}
	if infos, ok := h.connInfo[roomName]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, roomName)
		}
	}
}

// BroadcastMessage sends a new message to all subscribers of the room.
func (h *Hub) BroadcastMessage(roomName string, msg models.RoomMessage) {
	h.broadcast(roomName, models.RoomEvent{Type: "message", Message: &msg})
}

// BroadcastReaction notifies subscribers that a reaction changed.
func (h *Hub) BroadcastReaction(roomName string, reaction models.Reaction) {
	h.broadcast(roomName, models.RoomEvent{Type: "reaction", MessageID: reaction.MessageID, Reaction: &reaction})
}

func (h *Hub) broadcast(roomName string, event models.RoomEvent) {
	h.mu.RLock()
	conns := h.rooms[roomName]
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveClient(roomName, conn)
			h.publishWSError(roomName, conn, err)
		}
	}
}

func (h *Hub) publishWSError(roomName string, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(roomName, conn)
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        "room",
			"room":        roomName,
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.rooms", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("room", "ws_error")
}

func (h *Hub) getConnInfo(roomName string, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[roomName]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}
