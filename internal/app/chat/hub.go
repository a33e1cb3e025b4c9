package chat

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"alumnilink/internal/pkg/logx"
)

const (
	// deliverChannelBuffer is the queue length of pending deliveries.
	deliverChannelBuffer = 1024

	// MaxConnectionsPerUser caps the open connections of one user. Registering
	// one more kicks the oldest.
	MaxConnectionsPerUser = 5
)

// SocketGauge observes open connections.
type SocketGauge interface {
	SocketOpened()
	SocketClosed()
}

type delivery struct {
	userIDs []string
	data    []byte
}

// Hub tracks the live connections of every user and pushes frames to them.
type Hub struct {
	// clients holds the open connections of each user in registration order.
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	deliver    chan delivery

	// stop signals Run to exit; done is closed once it has.
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	// mu protects clients for readers outside the Run loop.
	mu sync.RWMutex

	gauge  SocketGauge
	logger zerolog.Logger
}

// NewHub returns a Hub. Call Run to start it. gauge may be nil.
func NewHub(gauge SocketGauge) *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, deliverChannelBuffer),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		gauge:      gauge,
		logger:     logx.Component("Hub"),
	}
}

// Run processes registrations and deliveries until Shutdown is called.
func (h *Hub) Run() {
	defer close(h.done)

	h.logger.Info().Msg("Hub loop started.")

	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case d := <-h.deliver:
			h.fanOut(d)

		case <-h.stop:
			h.closeAll()
			h.logger.Info().Msg("Hub loop stopped.")
			return
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	conns := append(h.clients[client.user.ID], client)
	var kicked *Client
	if len(conns) > MaxConnectionsPerUser {
		kicked, conns = conns[0], conns[1:]
	}
	h.clients[client.user.ID] = conns
	h.mu.Unlock()

	if h.gauge != nil {
		h.gauge.SocketOpened()
	}

	if kicked != nil {
		h.logger.Warn().Str("user_id", client.user.ID).Msg("Too many connections. Kicking the oldest.")
		kicked.Kick("Too many open connections. Check other tabs.")
		if h.gauge != nil {
			h.gauge.SocketClosed()
		}
	}

	h.logger.Info().
		Str("user_id", client.user.ID).
		Int("connections", len(conns)).
		Msg("Client registered.")

	client.SendReady()
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	conns := h.clients[client.user.ID]
	removed := false
	for i, c := range conns {
		if c == client {
			conns = append(conns[:i], conns[i+1:]...)
			removed = true
			break
		}
	}
	if len(conns) == 0 {
		delete(h.clients, client.user.ID)
	} else {
		h.clients[client.user.ID] = conns
	}
	h.mu.Unlock()

	if !removed {
		return
	}

	client.closeSend()
	if h.gauge != nil {
		h.gauge.SocketClosed()
	}

	h.logger.Info().Str("user_id", client.user.ID).Msg("Client unregistered.")
}

func (h *Hub) fanOut(d delivery) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]bool, len(d.userIDs))
	for _, id := range d.userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		for _, c := range h.clients[id] {
			c.enqueue(d.data)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conns := range h.clients {
		for _, c := range conns {
			c.closeSend()
			if h.gauge != nil {
				h.gauge.SocketClosed()
			}
		}
		delete(h.clients, id)
	}
}

// Register adds client to its user's connections and sends it a READY frame.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

// Unregister removes client. It is a no-op once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Deliver queues frame for every open connection of userIDs.
func (h *Hub) Deliver(frame Frame, userIDs ...string) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal frame for delivery")
		return
	}

	select {
	case h.deliver <- delivery{userIDs: userIDs, data: data}:
	case <-h.done:
	}
}

// Connections returns the number of open connections of userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// IsOnline reports whether userID has at least one open connection.
func (h *Hub) IsOnline(userID string) bool {
	return h.Connections(userID) > 0
}

// Shutdown stops the Run loop and closes every connection's send queue.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down hub...")
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
	h.logger.Info().Msg("Hub shutdown complete.")
}
