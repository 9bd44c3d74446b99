// Package telemetry streams simulation snapshots to WebSocket clients and
// accepts commands from them.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/gorilla/websocket"

	"github.com/elektrokombinacija/diffdrive-sim/internal/command"
	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
	"github.com/elektrokombinacija/diffdrive-sim/internal/scheduler"
	"github.com/elektrokombinacija/diffdrive-sim/internal/sim"
)

// Envelope types.
const (
	TypeState   = "state"
	TypeEvent   = "event"
	TypeCommand = "command"
	TypeAck     = "ack"
	TypeError   = "error"
)

// Envelope is every frame exchanged on the socket.
type Envelope struct {
	Type     string           `json:"type"`
	State    *sim.Snapshot    `json:"state,omitempty"`
	Command  *command.Message `json:"command,omitempty"`
	Event    string           `json:"event,omitempty"`
	ID       string           `json:"id,omitempty"`
	Message  string           `json:"message,omitempty"`
	ServerMS int64            `json:"server_ms"`
}

// Source provides snapshots.
type Source interface {
	Snapshot() sim.Snapshot
}

// Sink accepts commands from clients.
type Sink interface {
	SubmitMessage(m command.Message) (command.Command, error)
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans snapshots out to connected clients.
type Hub struct {
	logger   golog.Logger
	source   Source
	sink     Sink
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates a hub. sink may be nil for a read-only feed.
func NewHub(source Source, sink Sink, logger golog.Logger) *Hub {
	return &Hub{
		logger: logger,
		source: source,
		sink:   sink,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Handler serves /ws and /health.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "clients": h.ClientCount()})
	})
	mux.HandleFunc("/ws", h.handleWS)
	return mux
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade error", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 64)}
	h.register(c)
	h.logger.Infow("telemetry client connected", "remote", r.RemoteAddr)

	snap := h.source.Snapshot()
	h.enqueue(c, Envelope{Type: TypeState, State: &snap})

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debugw("telemetry read error", "error", err)
			}
			return
		}

		var in Envelope
		if err := json.Unmarshal(data, &in); err != nil {
			h.enqueue(c, Envelope{Type: TypeError, Message: "bad_payload"})
			continue
		}
		if in.Type != TypeCommand || in.Command == nil {
			h.enqueue(c, Envelope{Type: TypeError, Message: "unsupported_message_type"})
			continue
		}
		if h.sink == nil {
			h.enqueue(c, Envelope{Type: TypeError, Message: "read_only"})
			continue
		}

		cmd, err := h.sink.SubmitMessage(*in.Command)
		if err != nil {
			h.enqueue(c, Envelope{Type: TypeError, ID: in.Command.ID, Message: err.Error()})
			continue
		}
		h.enqueue(c, Envelope{Type: TypeAck, ID: cmd.ID().String(), Message: cmd.Describe()})
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(20 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				return
			}
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
}

// enqueue drops the frame if the client is slow.
func (h *Hub) enqueue(c *client, env Envelope) {
	payload, err := encode(env)
	if err != nil {
		h.logger.Warnw("marshal envelope failed", "error", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// Broadcast sends env to every client, skipping slow ones.
func (h *Hub) Broadcast(env Envelope) {
	payload, err := encode(env)
	if err != nil {
		h.logger.Warnw("marshal envelope failed", "error", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
		}
	}
}

func encode(env Envelope) ([]byte, error) {
	env.ServerMS = time.Now().UTC().UnixMilli()
	return json.Marshal(env)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run broadcasts a state frame every interval until ctx is done.
func (h *Hub) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if h.ClientCount() == 0 {
				continue
			}
			snap := h.source.Snapshot()
			h.Broadcast(Envelope{Type: TypeState, State: &snap})
		}
	}
}

// OnSubmitted implements sim.Observer.
func (h *Hub) OnSubmitted(c command.Command, outcome scheduler.Outcome, _ float64) {
	h.Broadcast(Envelope{Type: TypeEvent, Event: outcome.String(), ID: c.ID().String(), Message: c.Describe()})
}

// OnCompleted implements sim.Observer.
func (h *Hub) OnCompleted(c command.Command, at float64) {
	h.Broadcast(Envelope{Type: TypeEvent, Event: "completed", ID: c.ID().String(),
		Message: fmt.Sprintf("%s at t=%.2fs", c.Describe(), at)})
}

// OnCollision implements sim.Observer.
func (h *Hub) OnCollision(pose core.Pose, obstacle core.Obstacle, at float64) {
	h.Broadcast(Envelope{Type: TypeEvent, Event: "collision",
		Message: fmt.Sprintf("%v hit %v at t=%.2fs", pose, obstacle, at)})
}

var _ sim.Observer = (*Hub)(nil)
