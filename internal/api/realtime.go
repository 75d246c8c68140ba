package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gmsas95/nutritrack/internal/metrics"
	"github.com/gmsas95/nutritrack/internal/result"
	"github.com/gmsas95/nutritrack/internal/store"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	pingInterval   = 25 * time.Second
	wsWriteTimeout = 10 * time.Second
)

type wsClient struct {
	userID string
	conn   *websocket.Conn

	writeMu sync.Mutex
	once    sync.Once
}

func (c *wsClient) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteMessage(messageType, data)
}

// Hub fans progress updates out to every socket a user has open.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*wsClient]struct{}

	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewHub(m *metrics.Metrics, logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*wsClient]struct{}),
		metrics: m,
		logger:  logger,
	}
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*wsClient]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.IncrementActiveConnections()
	}
}

// unregister is safe to call more than once per client.
func (h *Hub) unregister(c *wsClient) {
	c.once.Do(func() {
		h.mu.Lock()
		if set := h.clients[c.userID]; set != nil {
			delete(set, c)
			if len(set) == 0 {
				delete(h.clients, c.userID)
			}
		}
		h.mu.Unlock()

		_ = c.conn.Close()
		if h.metrics != nil {
			h.metrics.DecrementActiveConnections()
		}
	})
}

func (h *Hub) HasSubscribers(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// Count returns the number of open sockets.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Publish sends payload as JSON to all of userID's sockets and returns how
// many writes succeeded. Sockets that fail a write are dropped.
func (h *Hub) Publish(userID string, payload any) int {
	msg, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to encode realtime payload", zap.Error(err))
		return 0
	}

	h.mu.RLock()
	targets := make([]*wsClient, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if err := c.write(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("Dropping realtime client", zap.String("user_id", userID), zap.Error(err))
			h.unregister(c)
			continue
		}
		sent++
	}
	return sent
}

// CloseAll disconnects every client, used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	var all []*wsClient
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.unregister(c)
	}
}

// handleProgressSocket streams progress for the authenticated user. The
// current day is sent on connect; a client may ask for another day by
// sending {"date": "YYYY-MM-DD"}.
func (s *Server) handleProgressSocket(conn *websocket.Conn) {
	id, _ := conn.Locals(localUserID).(string)
	client := &wsClient{userID: id, conn: conn}
	s.hub.register(client)
	defer s.hub.unregister(client)

	s.sendProgress(client, store.FormatDate(time.Now()))

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := client.write(websocket.PingMessage, nil); err != nil {
					s.hub.unregister(client)
					return
				}
			}
		}
	}()

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		var req struct {
			Date string `json:"date"`
		}
		if err := json.Unmarshal(msg, &req); err != nil {
			continue
		}
		if _, err := store.ParseDate(req.Date); err != nil {
			continue
		}
		s.sendProgress(client, req.Date)
	}
}

func (s *Server) sendProgress(client *wsClient, date string) {
	info, err := result.Get(s.progress(context.Background(), client.userID, date))
	if err != nil {
		s.logger.Warn("Failed to compute progress", zap.String("user_id", client.userID), zap.Error(err))
		return
	}
	msg, err := json.Marshal(progressEvent{Type: "progress", Data: info})
	if err != nil {
		return
	}
	if err := client.write(websocket.TextMessage, msg); err != nil {
		s.hub.unregister(client)
	}
}
