package services

import (
	"context"
	"ixadmin/internal/logging"
	"ixadmin/internal/metrics"
	"ixadmin/internal/models"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// LiveMessage is one frame on the live traffic websocket.
type LiveMessage struct {
	Type      string    `json:"type"` // "realtime", "pong", "subscribed", "unsubscribed", "error"
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// LiveClient is a connected websocket client. Unsubscribed clients stay
// connected but are skipped by broadcasts.
type LiveClient struct {
	ID         string
	Conn       *websocket.Conn
	Send       chan LiveMessage
	subscribed atomic.Bool
}

func NewLiveClient(id string, conn *websocket.Conn) *LiveClient {
	c := &LiveClient{ID: id, Conn: conn, Send: make(chan LiveMessage, 16)}
	c.subscribed.Store(true)
	return c
}

func (c *LiveClient) SetSubscribed(v bool) { c.subscribed.Store(v) }
func (c *LiveClient) Subscribed() bool     { return c.subscribed.Load() }

// RealtimeSource produces the payload pushed on every tick.
type RealtimeSource func(ctx context.Context) models.RealtimeMetrics

// LiveHub pushes realtime traffic to every subscribed client.
type LiveHub struct {
	clients    map[string]*LiveClient
	broadcast  chan LiveMessage
	unregister chan string
	mu         sync.RWMutex
	interval   time.Duration
	source     RealtimeSource
	fetching   atomic.Bool
	done       chan struct{}
	stopOnce   sync.Once
}

var liveHub *LiveHub

// InitLiveHub starts the hub and makes it available through GetLiveHub.
func InitLiveHub(interval time.Duration, source RealtimeSource) *LiveHub {
	liveHub = NewLiveHub(interval, source)
	liveHub.Start()
	return liveHub
}

// NewLiveHub builds a hub without starting it.
func NewLiveHub(interval time.Duration, source RealtimeSource) *LiveHub {
	return &LiveHub{
		clients:    make(map[string]*LiveClient),
		broadcast:  make(chan LiveMessage, 64),
		unregister: make(chan string),
		interval:   interval,
		source:     source,
		done:       make(chan struct{}),
	}
}

func GetLiveHub() *LiveHub {
	return liveHub
}

// Start runs the event loop in the background.
func (h *LiveHub) Start() {
	go h.run()
}

func (h *LiveHub) run() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			h.mu.Unlock()
			metrics.LiveClients.Set(0)
			return

		case clientID := <-h.unregister:
			h.mu.Lock()
			if client, exists := h.clients[clientID]; exists {
				delete(h.clients, clientID)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			metrics.LiveClients.Set(float64(total))
			logging.Info().Str("client", clientID).Int("total", total).Msg("[WS] Client disconnected")

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				if !client.Subscribed() {
					continue
				}
				select {
				case client.Send <- msg:
				default:
					// Slow client, drop this frame
				}
			}
			h.mu.RUnlock()

		case <-ticker.C:
			h.tick()
		}
	}
}

// tick gathers a payload off the loop so a slow upstream never blocks
// unregistration or broadcasts. At most one gather runs at a time.
func (h *LiveHub) tick() {
	if h.ClientCount() == 0 || !h.fetching.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer h.fetching.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), h.interval)
		defer cancel()
		payload := h.source(ctx)

		select {
		case h.broadcast <- LiveMessage{Type: "realtime", Timestamp: time.Now().UTC(), Data: payload}:
		case <-h.done:
		default:
			logging.Debug().Msg("[WS] Broadcast queue full, skipping tick")
		}
	}()
}

// Register adds a new client to the hub. The client is visible to SendTo
// as soon as this returns. It reports false once the hub is stopped.
func (h *LiveHub) Register(client *LiveClient) bool {
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		return false
	default:
	}
	h.clients[client.ID] = client
	total := len(h.clients)
	h.mu.Unlock()

	metrics.LiveClients.Set(float64(total))
	logging.Info().Str("client", client.ID).Int("total", total).Msg("[WS] Client connected")
	return true
}

func (h *LiveHub) Unregister(clientID string) {
	select {
	case h.unregister <- clientID:
	case <-h.done:
	}
}

// Broadcast queues a message for every subscribed client.
func (h *LiveHub) Broadcast(msg LiveMessage) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// SendTo delivers msg to one client if it is still registered. The read
// lock keeps the hub from closing the channel mid-send.
func (h *LiveHub) SendTo(clientID string, msg LiveMessage) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, exists := h.clients[clientID]
	if !exists {
		return false
	}
	select {
	case client.Send <- msg:
		return true
	default:
		return false
	}
}

func (h *LiveHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop ends the loop, which closes every client. It is safe to call twice.
func (h *LiveHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}
