package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/soratane/aicity/internal/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin enforcement happens in the CORS layer; the upgrade itself
	// accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	maxClients = 64
)

// hub pushes a full snapshot to every connected client on a fixed
// cadence. Clients are read-only; inbound messages are discarded.
type hub struct {
	sim      *engine.Simulation
	interval time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]chan engine.Snapshot
}

func newHub(sim *engine.Simulation, interval time.Duration) *hub {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &hub{
		sim:      sim,
		interval: interval,
		clients:  make(map[*websocket.Conn]chan engine.Snapshot),
	}
}

// run broadcasts snapshots until the context is canceled. Slow clients
// drop frames rather than stalling the loop.
func (h *hub) run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		h.mu.Lock()
		if len(h.clients) == 0 {
			h.mu.Unlock()
			continue
		}
		snap := h.sim.Snapshot()
		for _, ch := range h.clients {
			select {
			case ch <- snap:
			default:
			}
		}
		h.mu.Unlock()
	}
}

func (h *hub) handleWS(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	n := len(h.clients)
	h.mu.Unlock()
	if n >= maxClients {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	ch := make(chan engine.Snapshot, 1)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	slog.Info("websocket client connected", "remote", conn.RemoteAddr())

	go h.writeLoop(conn, ch)
	go h.readLoop(conn)
}

func (h *hub) writeLoop(conn *websocket.Conn, ch chan engine.Snapshot) {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		h.drop(conn)
	}()

	for {
		select {
		case snap := <-ch:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *hub) readLoop(conn *websocket.Conn) {
	defer h.drop(conn)
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
		slog.Info("websocket client disconnected", "remote", conn.RemoteAddr())
	}
	h.mu.Unlock()
}
