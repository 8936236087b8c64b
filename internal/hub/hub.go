// Package hub manages the WebSocket connections that push content and
// route updates to connected browsers. A single goroutine owns the client
// set; registration, disconnection, and broadcasting flow through
// channels, and shutdown is coordinated once via context cancellation.
package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/driftline/driftline/internal/logging"
)

// Message is one update pushed to clients.
type Message struct {
	// Type is "content" (feed changed) or "route" (route committed).
	Type string `json:"type"`
	// Fingerprint accompanies content messages.
	Fingerprint string `json:"fingerprint,omitempty"`
	// Route accompanies route messages.
	Route string `json:"route,omitempty"`
}

// OriginChecker validates WebSocket connection origins.
type OriginChecker func(origin string) bool

// AllowOrigins builds an OriginChecker from a fixed allowlist. An empty
// list allows same-host connections only, which coder/websocket already
// enforces, so the checker accepts everything it is asked about.
func AllowOrigins(origins []string) OriginChecker {
	if len(origins) == 0 {
		return func(string) bool { return true }
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(origin string) bool { return allowed[origin] }
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts messages to all connected clients.
type Hub struct {
	checkOrigin OriginChecker
	origins     []string
	logger      logging.Logger

	register   chan *client
	unregister chan *client
	broadcast  chan []byte

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once

	mu      sync.RWMutex
	clients map[*client]bool
}

// New creates a hub. allowedOrigins may be empty for same-host only.
func New(allowedOrigins []string, logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		checkOrigin: AllowOrigins(allowedOrigins),
		origins:     allowedOrigins,
		logger:      logger.WithComponent("hub"),
		register:    make(chan *client),
		unregister:  make(chan *client),
		broadcast:   make(chan []byte, 16),
		ctx:         ctx,
		cancel:      cancel,
		clients:     make(map[*client]bool),
	}

	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case payload := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- payload:
				default:
					// Slow client, drop the frame rather than block the hub.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues a message for every connected client.
func (h *Hub) Broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error(h.ctx, err, "marshal broadcast message")
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.ctx.Done():
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and pumps broadcast frames to the client
// until either side goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if origin := r.Header.Get("Origin"); origin != "" && !h.checkOrigin(origin) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.logger.Warn(r.Context(), err, "websocket accept failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}

	select {
	case h.register <- c:
	case <-h.ctx.Done():
		conn.Close(websocket.StatusGoingAway, "shutting down")
		return
	}

	defer func() {
		select {
		case h.unregister <- c:
		case <-h.ctx.Done():
		}
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	// Reads are discarded; the protocol is push-only. The read loop exists
	// to observe the close frame.
	readCtx, cancelRead := context.WithCancel(r.Context())
	defer cancelRead()
	go func() {
		for {
			if _, _, err := conn.Read(readCtx); err != nil {
				cancelRead()
				return
			}
		}
	}()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-readCtx.Done():
			return
		case payload, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(h.ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// Shutdown closes every connection and stops the hub. Safe to call more
// than once.
func (h *Hub) Shutdown() {
	h.shutdownOnce.Do(h.cancel)
}
