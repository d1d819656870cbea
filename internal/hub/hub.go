package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// IdentifyFunc resolves the owner a request streams events for
type IdentifyFunc func(r *http.Request) (uuid.UUID, error)

// Client is one open event stream
type Client struct {
	label  string
	owner  uuid.UUID
	events chan []byte
}

// message is a named event bound for one owner, or all owners when owner
// is uuid.Nil
type message struct {
	owner   uuid.UUID
	name    string
	payload interface{}
}

// Hub manages SSE client connections and delivers each event to the
// clients of the owner it concerns
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	identify   IdentifyFunc
	keepAlive  time.Duration
	stopped    chan struct{}
	seq        atomic.Uint64
}

// New creates a new Hub
func New(identify IdentifyFunc) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 256),
		identify:   identify,
		keepAlive:  30 * time.Second,
		stopped:    make(chan struct{}),
	}
}

// Run starts the hub's event loop and returns when ctx is cancelled.
// It must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.events)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("event stream %s opened (open streams: %d)", client.label, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.events)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("event stream %s closed (open streams: %d)", client.label, total)

		case msg := <-h.broadcast:
			frame, err := encodeFrame(msg.name, msg.payload)
			if err != nil {
				log.Printf("dropping %s event: %v", msg.name, err)
				continue
			}

			h.mu.RLock()
			for client := range h.clients {
				if msg.owner != uuid.Nil && client.owner != msg.owner {
					continue
				}
				select {
				case client.events <- frame:
				default:
					log.Printf("event stream %s is behind, dropped %s", client.label, msg.name)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues a named event for the owner's streams.
// uuid.Nil sends it to every stream.
func (h *Hub) Broadcast(owner uuid.UUID, name string, payload interface{}) {
	select {
	case h.broadcast <- message{owner: owner, name: name, payload: payload}:
	default:
		log.Printf("event queue full, dropped %s", name)
	}
}

// encodeFrame renders one SSE frame. The name goes in the event field so
// browsers can subscribe per event type.
func encodeFrame(name string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return []byte(fmt.Sprintf("data: %s\n\n", data)), nil
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", name, data)), nil
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP handles SSE connections
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	owner, err := h.identify(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// Streams outlive the server's write timeout
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Printf("SSE write deadline not cleared: %v", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := &Client{
		label:  fmt.Sprintf("%s/%d", owner, h.seq.Add(1)),
		owner:  owner,
		events: make(chan []byte, 64),
	}

	select {
	case h.register <- client:
	case <-h.stopped:
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	defer func() {
		select {
		case h.unregister <- client:
		case <-h.stopped:
		}
	}()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.events:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
