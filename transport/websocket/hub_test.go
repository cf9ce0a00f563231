package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/ludo/game/engine"
)

func testHistory(t *testing.T) ([]engine.TurnRecord, []string) {
	t.Helper()
	g, err := engine.NewGame([]engine.Quadrant{engine.QuadrantA, engine.QuadrantB})
	if err != nil {
		t.Fatalf("Failed to create game: %v", err)
	}
	turns := []engine.Turn{
		{Player: engine.QuadrantA, Roll: 6},
		{Player: engine.QuadrantA, Roll: 5},
		{Player: engine.QuadrantB, Roll: 6},
	}
	if err := g.Play(turns); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	return g.History(), g.Positions()
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func newTestServer(t *testing.T, hub *Hub, replay [][]byte) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		channel := r.URL.Query().Get("channel")
		if channel == "" {
			channel = LiveChannel
		}
		hub.ServeWS(w, r, channel, replay)
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return msg
}

func waitForClients(t *testing.T, hub *Hub, channel string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount(channel) != want {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients on %s, got %d", want, channel, hub.ClientCount(channel))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub.channels == nil {
		t.Error("Hub channels map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels are not initialised")
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	first := &Client{hub: hub, channel: "sim", send: make(chan []byte, 1)}
	second := &Client{hub: hub, channel: "sim", send: make(chan []byte, 1)}

	hub.registerClient(first)
	hub.registerClient(second)
	if len(hub.channels["sim"]) != 2 {
		t.Fatalf("Expected 2 clients, got %d", len(hub.channels["sim"]))
	}

	hub.unregisterClient(first)
	if _, ok := <-first.send; ok {
		t.Error("Expected send channel to be closed")
	}
	hub.unregisterClient(first)

	hub.unregisterClient(second)
	if _, exists := hub.channels["sim"]; exists {
		t.Error("Empty channel should be removed")
	}
}

func TestHubDeliverDropsSlowClients(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, channel: LiveChannel, send: make(chan []byte)}
	fast := &Client{hub: hub, channel: LiveChannel, send: make(chan []byte, 1)}
	other := &Client{hub: hub, channel: "other", send: make(chan []byte, 1)}
	hub.registerClient(slow)
	hub.registerClient(fast)
	hub.registerClient(other)

	hub.deliver(outbound{channel: LiveChannel, data: []byte("x")})

	if got := <-fast.send; string(got) != "x" {
		t.Errorf("Expected frame, got %q", got)
	}
	if hub.channels[LiveChannel][slow] {
		t.Error("Slow client should have been dropped")
	}
	if len(other.send) != 0 {
		t.Error("Other channels must not receive the frame")
	}
}

func TestEncodeSimulation(t *testing.T) {
	history, positions := testHistory(t)

	frames, err := EncodeSimulation("sim-1", history, positions)
	if err != nil {
		t.Fatalf("EncodeSimulation failed: %v", err)
	}
	if len(frames) != len(history)+1 {
		t.Fatalf("Expected %d frames, got %d", len(history)+1, len(frames))
	}

	var first Message
	json.Unmarshal(frames[0], &first)
	if first.Event != EventTurn || first.Turn == nil || first.Turn.Index != 1 {
		t.Errorf("Unexpected first frame %s", frames[0])
	}
	if !slices.Equal(first.Positions, []string{"R", "H", "H", "H"}) {
		t.Errorf("Unexpected positions %v", first.Positions)
	}

	var last Message
	json.Unmarshal(frames[len(frames)-1], &last)
	if last.Event != EventCompleted || last.Turn != nil || !slices.Equal(last.Positions, positions) {
		t.Errorf("Unexpected final frame %s", frames[len(frames)-1])
	}
}

func TestServeWS_Replay(t *testing.T) {
	hub := startHub(t)
	history, positions := testHistory(t)
	replay, err := EncodeSimulation("sim-1", history, positions)
	if err != nil {
		t.Fatalf("EncodeSimulation failed: %v", err)
	}

	conn := dial(t, newTestServer(t, hub, replay)+"?channel=sim-1")

	for i := range history {
		msg := readMessage(t, conn)
		if msg.Event != EventTurn || msg.Turn.Index != i+1 {
			t.Errorf("Frame %d: unexpected message %+v", i, msg)
		}
	}
	done := readMessage(t, conn)
	if done.Event != EventCompleted || !slices.Equal(done.Positions, []string{"5", "H", "R", "H"}) {
		t.Errorf("Unexpected completion %+v", done)
	}
}

func TestBroadcastSimulation_Live(t *testing.T) {
	hub := startHub(t)
	url := newTestServer(t, hub, nil)

	live := dial(t, url)
	waitForClients(t, hub, LiveChannel, 1)

	history, positions := testHistory(t)
	if err := hub.BroadcastSimulation(LiveChannel, "sim-2", history, positions); err != nil {
		t.Fatalf("BroadcastSimulation failed: %v", err)
	}

	for range history {
		if msg := readMessage(t, live); msg.SimulationID != "sim-2" || msg.Event != EventTurn {
			t.Errorf("Unexpected message %+v", msg)
		}
	}
	if msg := readMessage(t, live); msg.Event != EventCompleted {
		t.Errorf("Expected completion, got %+v", msg)
	}
}

func TestServeWS_Disconnect(t *testing.T) {
	hub := startHub(t)
	conn := dial(t, newTestServer(t, hub, nil)+"?channel=bye")
	waitForClients(t, hub, "bye", 1)

	conn.Close()
	waitForClients(t, hub, "bye", 0)
}

func TestHub_StopReleasesCallers(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	history, positions := testHistory(t)
	done := make(chan struct{})
	go func() {
		hub.BroadcastSimulation(LiveChannel, "late", history, positions)
		hub.ClientCount(LiveChannel)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Calls on a stopped hub must not block")
	}
}
