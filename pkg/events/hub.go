package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Update is the frame pushed to every connected dashboard.
type Update struct {
	Type      string    `json:"type"`
	AssetID   string    `json:"assetId,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// sendBuffer bounds how far a connection may fall behind before it is dropped.
const sendBuffer = 32

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Hub tracks dashboard connections and fans asset lifecycle updates out to
// all of them. It satisfies the event publisher interfaces of the asset and
// repair services.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	log     *logrus.Entry
}

func NewHub(log *logrus.Entry) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     log,
	}
}

// Publish marshals the event once and hands it to every connection. A client
// whose send buffer is already full is disconnected instead of blocking the
// publishing request.
func (h *Hub) Publish(event string, payload any) {
	update := Update{
		Type:      event,
		Data:      payload,
		Timestamp: time.Now().UTC(),
	}
	if fields, ok := payload.(map[string]any); ok {
		if id, ok := fields["assetId"].(string); ok {
			update.AssetID = id
		}
	}

	data, err := json.Marshal(update)
	if err != nil {
		h.log.WithError(err).WithField("event", event).Warn("Failed to marshal event update")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropLocked(c)
		}
	}
}

// ClientCount reports how many dashboards are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// dropLocked removes a client and signals its loops. Callers hold h.mu; the
// membership check keeps done from being closed twice.
func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.done)
}
