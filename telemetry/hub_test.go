package telemetry

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastsWaveStats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(8)
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.Clients() == 1 })

	if !hub.Publish("wave", WaveStats{Wave: 3, Spawned: 11, Killed: 9}) {
		t.Fatal("Publish dropped the message")
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	var msg struct {
		Type    string    `json:"type"`
		Payload WaveStats `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if msg.Type != "wave" || msg.Payload.Wave != 3 || msg.Payload.Killed != 9 {
		t.Errorf("unexpected message: %s", data)
	}

	conn.Close()
	waitFor(t, func() bool { return hub.Clients() == 0 })
}

func TestHubPublishNeverBlocks(t *testing.T) {
	hub := NewHub(2)

	// Nothing drains the broadcast buffer
	accepted := 0
	for i := 0; i < 10; i++ {
		if hub.Publish("wave", WaveStats{Wave: i}) {
			accepted++
		}
	}
	if accepted != 2 {
		t.Errorf("accepted %d messages, want buffer size 2", accepted)
	}

	var nilHub *Hub
	if nilHub.Publish("wave", WaveStats{}) {
		t.Error("nil hub should drop messages")
	}
	if nilHub.Clients() != 0 {
		t.Error("nil hub should report no clients")
	}
}

func TestHubRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(1)

	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
