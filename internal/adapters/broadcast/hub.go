package broadcast

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/pollster/internal/core/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	queueSize      = 256
	clientBuffer   = 32
)

type message struct {
	pollID  string
	payload []byte
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	pollID string
}

func (c *client) wants(pollID string) bool {
	return c.pollID == "" || c.pollID == pollID
}

// Hub fans events out to websocket viewers from a single loop, so every
// viewer sees events in the order they were handed to the hub. Viewers that
// fall behind are disconnected instead of slowing everyone else down.
type Hub struct {
	log        logrus.FieldLogger
	upgrader   websocket.Upgrader
	register   chan *client
	unregister chan *client
	messages   chan message
	count      chan chan int
	clients    map[*client]struct{}
	done       chan struct{}
}

func NewHub(log logrus.FieldLogger, allowedOrigins []string) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		register:   make(chan *client),
		unregister: make(chan *client),
		messages:   make(chan message, queueSize),
		count:      make(chan chan int),
		clients:    make(map[*client]struct{}),
		done:       make(chan struct{}),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// Publish implements ports.Broadcaster.
func (h *Hub) Publish(_ context.Context, event domain.Event) {
	payload, err := Encode(event)
	if err != nil {
		h.log.WithError(err).Error("dropping event")
		return
	}
	h.Deliver(event.EventPollID(), payload)
}

// Deliver queues an encoded frame without blocking.
func (h *Hub) Deliver(pollID string, payload []byte) {
	select {
	case h.messages <- message{pollID: pollID, payload: payload}:
	default:
		h.log.WithField("poll_id", pollID).Warn("broadcast queue full, dropping event")
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			h.drop(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
		case reply := <-h.count:
			reply <- len(h.clients)
		case m := <-h.messages:
			for c := range h.clients {
				if !c.wants(m.pollID) {
					continue
				}
				select {
				case c.send <- m.payload:
				default:
					h.log.WithField("poll_id", m.pollID).Warn("viewer too slow, disconnecting")
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
}

// ServeHTTP upgrades the request to a websocket. The optional "poll" query
// parameter limits the subscription to one poll.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer), pollID: r.URL.Query().Get("poll")}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

// readPump only exists to notice the viewer going away and to answer pings.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Viewers returns the number of connected viewers.
func (h *Hub) Viewers() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}
