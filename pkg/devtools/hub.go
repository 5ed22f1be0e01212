package devtools

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/snapfx/pkg/snapfx"
)

// DefaultClientBuffer is the number of frames buffered per websocket client.
const DefaultClientBuffer = 256

// Frame is the JSON form of a snapfx.Event sent to devtools clients.
type Frame struct {
	Kind       snapfx.EventKind `json:"kind"`
	Instance   uint64           `json:"instance,omitempty"`
	Name       string           `json:"name,omitempty"`
	Slot       *int             `json:"slot,omitempty"`
	Value      any              `json:"value,omitempty"`
	Batch      int              `json:"batch,omitempty"`
	DurationUS int64            `json:"durationUs,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// NewFrame converts ev. A committed value that cannot be encoded as JSON is
// sent in its %v form.
func NewFrame(ev snapfx.Event) Frame {
	f := Frame{
		Kind:       ev.Kind,
		Instance:   ev.Instance,
		Name:       ev.Name,
		Batch:      ev.Batch,
		DurationUS: ev.Duration.Microseconds(),
	}
	if ev.Slot >= 0 {
		slot := ev.Slot
		f.Slot = &slot
	}
	if ev.Value != nil {
		if _, err := json.Marshal(ev.Value); err != nil {
			f.Value = fmt.Sprintf("%v", ev.Value)
		} else {
			f.Value = ev.Value
		}
	}
	if ev.Err != nil {
		f.Error = ev.Err.Error()
	}
	return f
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub streams runtime events to websocket clients. It is a snapfx.Observer;
// Observe never blocks the runtime: a client whose buffer is full misses
// the frame.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	buffer   int
	origins  map[string]bool

	mu      sync.RWMutex
	clients map[*client]struct{}

	dropped atomic.Int64
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHubLogger sets the hub's logger.
func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithClientBuffer sets the per-client frame buffer.
func WithClientBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithAllowedOrigins accepts websocket upgrades from these browser origins,
// e.g. "https://tools.example.com", in addition to loopback ones.
func WithAllowedOrigins(origins ...string) HubOption {
	return func(h *Hub) {
		for _, o := range origins {
			h.origins[o] = true
		}
	}
}

// NewHub creates a Hub. Browser upgrades are only accepted from loopback
// origins unless WithAllowedOrigins says otherwise; requests without an
// Origin header (non-browser clients) are always accepted.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		logger:  slog.Default(),
		buffer:  DefaultClientBuffer,
		clients: make(map[*client]struct{}),
		origins: make(map[string]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader.CheckOrigin = h.checkOrigin
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.origins[origin] {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return isLoopbackHost(u.Hostname())
}

// IsLoopbackAddr reports whether a listen address such as "localhost:7070"
// only binds a loopback interface. An empty host binds every interface.
func IsLoopbackAddr(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	return isLoopbackHost(host)
}

func isLoopbackHost(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Observe implements snapfx.Observer.
func (h *Hub) Observe(ev snapfx.Event) {
	h.mu.RLock()
	empty := len(h.clients) == 0
	h.mu.RUnlock()
	if empty {
		return
	}

	data, err := json.Marshal(NewFrame(ev))
	if err != nil {
		h.logger.Warn("devtools frame encode failed", "kind", ev.Kind, "error", err)
		return
	}
	h.broadcast(data)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped.Add(1)
		}
	}
}

// ServeHTTP upgrades the request and streams frames until the client goes
// away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("devtools upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.buffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("devtools client connected", "remote", r.RemoteAddr)

	done := make(chan struct{})
	go h.writeLoop(c, done)

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
	close(done)
	conn.Close()
	h.logger.Debug("devtools client disconnected", "remote", r.RemoteAddr)
}

func (h *Hub) writeLoop(c *client, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.remove(c)
				c.conn.Close()
				return
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns the number of frames dropped for slow clients.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}
