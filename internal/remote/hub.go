// Package remote bridges the viewer to browsers and phones over
// websockets: clients receive state snapshots and may send touch input
// and actions back.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Message types accepted from clients.
const (
	TypeDown   = "down"
	TypeMove   = "move"
	TypeUp     = "up"
	TypeAction = "action"
)

const (
	// DefaultInboundSize is the inbound queue capacity.
	DefaultInboundSize = 64

	writeTimeout = 2 * time.Second
	maxMessage   = 4096
)

// Point is a client contact position in window pixels.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Message is one client request.
type Message struct {
	Type   string  `json:"type"`
	Points []Point `json:"points,omitempty"`
	Action string  `json:"action,omitempty"`
}

func (m Message) valid() bool {
	switch m.Type {
	case TypeDown, TypeMove, TypeUp:
		return true
	case TypeAction:
		return m.Action != ""
	}
	return false
}

// Hub serves /ws and /state and fans snapshots out to connected clients.
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger
	inbound  chan Message
	dropped  atomic.Uint64

	mu      sync.Mutex
	clients map[*client]struct{}
	latest  []byte
}

// client serializes writes to one connection; gorilla allows a single
// concurrent writer.
type client struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (c *client) send(data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Hub) { h.log = l }
}

// WithInboundSize sets the inbound queue capacity.
func WithInboundSize(n int) Option {
	return func(h *Hub) { h.inbound = make(chan Message, n) }
}

// NewHub creates a hub with no clients.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local tool; any page may connect
			},
		},
		log:     zap.NewNop(),
		inbound: make(chan Message, DefaultInboundSize),
		clients: make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handler returns the HTTP routes.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWebSocket)
	mux.HandleFunc("/state", h.handleState)
	return mux
}

// Inbound returns the queue of client messages. The viewer drains it once
// per frame.
func (h *Hub) Inbound() <-chan Message {
	return h.inbound
}

// Dropped returns how many client messages were discarded on a full queue.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Clients returns the number of connected websocket clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish records v as the latest state. It is sent to new clients, served
// on /state and pushed by Broadcast.
func (h *Hub) Publish(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.latest = data
	h.mu.Unlock()
	return nil
}

// Broadcast sends the latest state to every client. Clients that fail the
// write are disconnected. Writes happen outside the hub lock so a slow
// client never blocks Publish.
func (h *Hub) Broadcast() {
	h.mu.Lock()
	data := h.latest
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()
	if data == nil {
		return
	}

	var failed []*client
	for _, c := range targets {
		if err := c.send(data); err != nil {
			h.log.Debug("websocket write failed", zap.Error(err))
			failed = append(failed, c)
		}
	}
	if len(failed) == 0 {
		return
	}
	h.mu.Lock()
	for _, c := range failed {
		delete(h.clients, c)
	}
	h.mu.Unlock()
	for _, c := range failed {
		c.conn.Close()
	}
}

// Serve listens on addr and broadcasts every interval until ctx is done.
func (h *Hub) Serve(ctx context.Context, addr string, interval time.Duration) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler(), ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	h.log.Info("remote bridge listening", zap.String("addr", addr))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.Broadcast()
		case err := <-errc:
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			h.closeAll()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return ctx.Err()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}

func (h *Hub) handleState(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	data := h.latest
	h.mu.Unlock()
	if data == nil {
		http.Error(w, "no state yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(maxMessage)
	c := &client{conn: conn}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	latest := h.latest
	h.mu.Unlock()
	if latest != nil {
		// Send current state immediately
		if err := c.send(latest); err != nil {
			h.log.Debug("websocket write failed", zap.Error(err))
		}
	}
	h.log.Info("remote client connected", zap.String("addr", r.RemoteAddr))

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		conn.Close()
		h.log.Info("remote client disconnected", zap.String("addr", r.RemoteAddr))
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || !msg.valid() {
			h.log.Debug("ignoring client message", zap.ByteString("data", data), zap.Error(err))
			continue
		}
		select {
		case h.inbound <- msg:
		default:
			h.dropped.Add(1)
		}
	}
}
