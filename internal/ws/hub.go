package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeDeadline = 10 * time.Second

// LockMessage is the envelope sent to all WebSocket subscribers of an event.
type LockMessage struct {
	Type           string     `json:"type"` // "lock_state" or "claimed"
	EventName      string     `json:"eventName"`
	Claimed        bool       `json:"claimed"`
	DownloaderName string     `json:"downloaderName,omitempty"`
	DownloadTime   *time.Time `json:"downloadTime,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
}

// Hub manages per-event WebSocket subscriber lists.
// All methods are safe for concurrent use.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string][]*websocket.Conn // event name -> list of WS connections
}

// NewHub creates and returns an initialised Hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string][]*websocket.Conn),
	}
}

// Subscribe adds conn to the subscriber list for the given event.
func (h *Hub) Subscribe(eventName string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[eventName] = append(h.subscribers[eventName], conn)
	log.Debug().
		Str("event_name", eventName).
		Int("total_subscribers", len(h.subscribers[eventName])).
		Msg("ws: client subscribed")
}

// Unsubscribe removes conn from the subscriber list for the given event.
// If the list becomes empty the map entry is deleted.
func (h *Hub) Unsubscribe(eventName string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeLocked(eventName, conn)
}

// unsubscribeLocked removes conn; caller must hold h.mu (write lock).
func (h *Hub) unsubscribeLocked(eventName string, conn *websocket.Conn) {
	conns := h.subscribers[eventName]
	filtered := conns[:0]
	for _, c := range conns {
		if c != conn {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		delete(h.subscribers, eventName)
	} else {
		h.subscribers[eventName] = filtered
	}
	log.Debug().
		Str("event_name", eventName).
		Int("remaining_subscribers", len(filtered)).
		Msg("ws: client unsubscribed")
}

// Broadcast sends msg as JSON to all subscribers of the event.
// Connections that fail to receive the message are unsubscribed and closed.
func (h *Hub) Broadcast(eventName string, msg LockMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.subscribers[eventName]
	if len(conns) == 0 {
		return
	}

	log.Debug().
		Str("event_name", eventName).
		Str("type", msg.Type).
		Int("subscribers", len(conns)).
		Msg("ws: broadcasting message")

	var failed []*websocket.Conn
	for _, conn := range conns {
		if err := conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
			failed = append(failed, conn)
			continue
		}
		if err := conn.WriteJSON(msg); err != nil {
			log.Debug().Err(err).Str("event_name", eventName).Msg("ws: write failed, dropping subscriber")
			failed = append(failed, conn)
		}
	}

	for _, conn := range failed {
		h.unsubscribeLocked(eventName, conn)
		conn.Close()
	}
}

// BroadcastClaim sends a "claimed" message to all subscribers of the event
// after a coordinator wins the first-download transition.
func (h *Hub) BroadcastClaim(eventName, downloaderName string, downloadTime time.Time) {
	h.Broadcast(eventName, LockMessage{
		Type:           "claimed",
		EventName:      eventName,
		Claimed:        true,
		DownloaderName: downloaderName,
		DownloadTime:   &downloadTime,
		Timestamp:      time.Now(),
	})
}
