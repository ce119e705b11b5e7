package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"FactPull/internal/domain/models"
	"FactPull/internal/domain/repository"
	"FactPull/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	sendBufferSize = 16
)

// Hub fans refresh events out to connected websocket clients. A single owner
// goroutine serializes register/unregister/broadcast, so client bookkeeping
// needs no locks beyond the channel handoff.
type Hub struct {
	logger     *logger.Logger
	upgrader   websocket.Upgrader
	register   chan *client
	unregister chan *client
	events     chan models.RefreshEvent

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	done    chan struct{}
}

type client struct {
	conn *websocket.Conn
	send chan models.RefreshEvent
}

func NewHub(l *logger.Logger) *Hub {
	return &Hub{
		logger: l,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// origin policy is handled by the CORS middleware upstream
			CheckOrigin: func(*http.Request) bool { return true },
		},
		register:   make(chan *client),
		unregister: make(chan *client),
		events:     make(chan models.RefreshEvent, 64),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the owner goroutine.
func (h *Hub) Start(ctx context.Context) {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.mu.Unlock()

	go h.run(ctx)
}

// Stop disconnects all clients and stops the owner goroutine.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.started {
		h.mu.Unlock()
		return
	}
	h.started = false
	h.mu.Unlock()

	close(h.stopCh)
	<-h.done
}

// Broadcast queues an event for delivery. Non-blocking: if the hub is
// saturated the event is dropped, clients re-sync on their next poll.
func (h *Hub) Broadcast(ev models.RefreshEvent) {
	select {
	case h.events <- ev:
	default:
		h.logger.Warn("stream hub event dropped", logger.String("ticker", ev.Ticker))
	}
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)
	clients := make(map[*client]bool)

	closeAll := func() {
		for c := range clients {
			close(c.send)
			_ = c.conn.Close()
		}
	}

	for {
		select {
		case <-ctx.Done():
			closeAll()
			return
		case <-h.stopCh:
			closeAll()
			return
		case c := <-h.register:
			clients[c] = true
			h.logger.Info("stream client connected", logger.Int("clients", len(clients)))
		case c := <-h.unregister:
			if clients[c] {
				delete(clients, c)
				close(c.send)
				_ = c.conn.Close()
			}
		case ev := <-h.events:
			for c := range clients {
				select {
				case c.send <- ev:
				default:
					// slow consumer: disconnect rather than block the hub
					delete(clients, c)
					close(c.send)
					_ = c.conn.Close()
				}
			}
		}
	}
}

// Serve upgrades an echo request to a websocket subscription.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{conn: conn, send: make(chan models.RefreshEvent, sendBufferSize)}
	select {
	case h.register <- cl:
	case <-h.stopCh:
		_ = conn.Close()
		return nil
	}

	go h.writeLoop(cl)
	go h.readLoop(cl)
	return nil
}

// drop detaches a client without blocking when the hub is already stopped.
func (h *Hub) drop(cl *client) {
	select {
	case h.unregister <- cl:
	case <-h.stopCh:
	}
}

func (h *Hub) writeLoop(cl *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-cl.send:
			if !ok {
				_ = cl.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(writeWait))
				return
			}
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteJSON(ev); err != nil {
				h.drop(cl)
				return
			}
		case <-ticker.C:
			if err := cl.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.drop(cl)
				return
			}
		}
	}
}

// readLoop drains inbound frames so control messages are processed; clients
// do not send application data.
func (h *Hub) readLoop(cl *client) {
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			h.drop(cl)
			return
		}
	}
}

var _ repository.Broadcaster = (*Hub)(nil)
