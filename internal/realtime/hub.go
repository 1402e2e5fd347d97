package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

const outboundBuffer = 32

type Hub struct {
	mu            sync.RWMutex
	logger        *logger.Logger
	subscriptions map[string]map[*Client]bool
	clients       map[uuid.UUID]*Client
	heartbeat     time.Duration
	onDrop        func(Message)
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		logger:        log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*Client]bool),
		clients:       make(map[uuid.UUID]*Client),
		heartbeat:     15 * time.Second,
	}
}

func (hub *Hub) NewClient(userID uuid.UUID) *Client {
	id := uuid.New()
	c := &Client{
		ID:       id,
		UserID:   userID,
		Channels: make(map[string]bool),
		Outbound: make(chan Message, outboundBuffer),
		done:     make(chan struct{}),
	}
	hub.mu.Lock()
	hub.clients[id] = c
	hub.mu.Unlock()
	return c
}

// OnDrop registers fn to be called for every message a slow client misses.
func (hub *Hub) OnDrop(fn func(Message)) {
	hub.mu.Lock()
	hub.onDrop = fn
	hub.mu.Unlock()
}

// Client looks up a connected client by id.
func (hub *Hub) Client(id uuid.UUID) (*Client, bool) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	c, ok := hub.clients[id]
	return c, ok
}

// AddChannel subscribes client to channel. It reports false when the client
// has already been closed and was left untouched.
func (hub *Hub) AddChannel(client *Client, channel string) bool {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	if hub.clients[client.ID] != client {
		return false
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return false
	}

	client.Channels[channel] = true

	clients, exists := hub.subscriptions[channel]
	if !exists {
		clients = make(map[*Client]bool)
		hub.subscriptions[channel] = clients
	}
	clients[client] = true

	hub.logger.Debug("SSE client subscribed", "client_id", client.ID, "channel", channel)
	return true
}

func (hub *Hub) RemoveChannel(client *Client, channel string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	delete(client.Channels, channel)

	if subMap, ok := hub.subscriptions[channel]; ok {
		delete(subMap, client)
		if len(subMap) == 0 {
			delete(hub.subscriptions, channel)
		}
	}
	hub.logger.Debug("SSE client unsubscribed", "client_id", client.ID, "channel", channel)
}

func (hub *Hub) removeClientLocked(client *Client) {
	for ch := range client.Channels {
		if subMap, ok := hub.subscriptions[ch]; ok {
			delete(subMap, client)
			if len(subMap) == 0 {
				delete(hub.subscriptions, ch)
			}
		}
	}
	client.Channels = make(map[string]bool)
	delete(hub.clients, client.ID)
}

// Broadcast never blocks: a client whose buffer is full misses the message.
func (hub *Hub) Broadcast(msg Message) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if msg.Channel == "" {
		return
	}
	clientsMap, ok := hub.subscriptions[msg.Channel]
	if !ok {
		return
	}
	for c := range clientsMap {
		select {
		case c.Outbound <- msg:
		default:
			hub.logger.Warn("Dropping SSE message; outbound buffer full", "client_id", c.ID, "event", msg.Event)
			if hub.onDrop != nil {
				hub.onDrop(msg)
			}
		}
	}
}

// Subscribers reports how many clients listen on channel.
func (hub *Hub) Subscribers(channel string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.subscriptions[channel])
}

func (hub *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *Client) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()

	heartbeat := time.NewTicker(hub.heartbeat)
	defer heartbeat.Stop()

	hello := Message{Event: EventConnected, Data: map[string]any{"client_id": client.ID.String()}}
	if err := writeEvent(w, hello); err == nil {
		flusher.Flush()
	}

	for {
		select {
		case <-ctx.Done():
			hub.logger.Debug("SSE client context done", "client_id", client.ID, "err", ctx.Err())
			return
		case <-client.Done():
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-client.Outbound:
			if !ok {
				return
			}
			if err := writeEvent(w, msg); err != nil {
				hub.logger.Warn("Failed to marshal SSE message", "error", err)
				continue
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, msg Message) error {
	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, string(jsonBytes))
	return nil
}

// CloseClient detaches client and closes its outbound channel. Safe to call twice.
func (hub *Hub) CloseClient(client *Client) {
	client.once.Do(func() {
		close(client.done)
		hub.mu.Lock()
		hub.removeClientLocked(client)
		hub.mu.Unlock()
		close(client.Outbound)
	})
}
