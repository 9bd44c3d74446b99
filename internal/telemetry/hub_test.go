package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edaniels/golog"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/diffdrive-sim/internal/command"
	"github.com/elektrokombinacija/diffdrive-sim/internal/sim"
)

func newSimulator(t *testing.T) *sim.Simulator {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.RealTimeFactor = 0
	s, err := sim.NewSimulator(cfg, sim.DefaultScenario(), golog.NewTestLogger(t))
	require.NoError(t, err)
	return s
}

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

// readType skips frames until one of the given type arrives.
func readType(t *testing.T, conn *websocket.Conn, typ string) Envelope {
	t.Helper()
	for i := 0; i < 20; i++ {
		if env := read(t, conn); env.Type == typ {
			return env
		}
	}
	t.Fatalf("no %q frame", typ)
	return Envelope{}
}

func TestWelcomeState(t *testing.T) {
	s := newSimulator(t)
	h := NewHub(s, s, golog.NewTestLogger(t))
	conn := dial(t, h)

	env := read(t, conn)
	assert.Equal(t, TypeState, env.Type)
	require.NotNil(t, env.State)
	assert.Equal(t, s.Scenario().Start, env.State.Pose)
	assert.NotZero(t, env.ServerMS)
	assert.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestCommandOverSocket(t *testing.T) {
	s := newSimulator(t)
	h := NewHub(s, s, golog.NewTestLogger(t))
	s.AddObserver(h)
	conn := dial(t, h)
	read(t, conn)

	msg := command.Message{Command: "move", Params: map[string]float64{"distance": 0.5}}
	require.NoError(t, conn.WriteJSON(Envelope{Type: TypeCommand, Command: &msg}))

	ack := readType(t, conn, TypeAck)
	assert.Equal(t, "move forward 0.5 m", ack.Message)
	assert.NotEmpty(t, ack.ID)

	s.Step()
	ev := readType(t, conn, TypeEvent)
	assert.Equal(t, "activated", ev.Event)
	assert.Equal(t, ack.ID, ev.ID)

	bad := command.Message{Command: "fly"}
	require.NoError(t, conn.WriteJSON(Envelope{Type: TypeCommand, Command: &bad}))
	errEnv := readType(t, conn, TypeError)
	assert.Contains(t, errEnv.Message, "unknown command")
}

func TestBadFrames(t *testing.T) {
	s := newSimulator(t)
	h := NewHub(s, nil, golog.NewTestLogger(t))
	conn := dial(t, h)
	read(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("nope")))
	assert.Equal(t, "bad_payload", readType(t, conn, TypeError).Message)

	require.NoError(t, conn.WriteJSON(Envelope{Type: "ping"}))
	assert.Equal(t, "unsupported_message_type", readType(t, conn, TypeError).Message)

	msg := command.Message{Command: "stop"}
	require.NoError(t, conn.WriteJSON(Envelope{Type: TypeCommand, Command: &msg}))
	assert.Equal(t, "read_only", readType(t, conn, TypeError).Message)
}

func TestRunBroadcastsState(t *testing.T) {
	s := newSimulator(t)
	h := NewHub(s, s, golog.NewTestLogger(t))
	conn := dial(t, h)
	read(t, conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx, 20*time.Millisecond)

	s.RunFor(0.5)
	for i := 0; i < 20; i++ {
		env := readType(t, conn, TypeState)
		require.NotNil(t, env.State)
		if env.State.Time > 0 {
			return
		}
	}
	t.Fatal("no state frame after stepping")
}

func TestHealth(t *testing.T) {
	s := newSimulator(t)
	srv := httptest.NewServer(NewHub(s, s, golog.NewTestLogger(t)).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
