package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// dialTestConn upgrades a server-side connection and returns both ends.
func dialTestConn(t *testing.T) (*Conn, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverConn := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		serverConn <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	server := NewConn(<-serverConn)
	t.Cleanup(func() { server.Close() })
	return server, client
}

func TestWriteTypedConcurrentWriters(t *testing.T) {
	server, client := dialTestConn(t)

	const perWriter = 50
	received := make(chan struct{})
	go func() {
		defer close(received)
		for i := 0; i < 2*perWriter; i++ {
			var msg map[string]interface{}
			if err := client.ReadJSON(&msg); err != nil {
				t.Errorf("client read failed: %v", err)
				return
			}
		}
	}()

	// One goroutine pushes graded events, the other answers pings, both
	// through the same wrapped connection.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < perWriter; i++ {
			if err := server.WriteTyped(PongResponse{Event: EventPong}); err != nil {
				t.Errorf("pong write failed: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < perWriter; i++ {
			event := GradedResponse{Event: EventGraded, SubmissionID: "s", TestID: "t"}
			if err := server.WriteTyped(event); err != nil {
				t.Errorf("event write failed: %v", err)
				return
			}
		}
	}()

	wg.Wait()
	<-received
}

func TestWriteErrorPayload(t *testing.T) {
	server, client := dialTestConn(t)

	if err := server.WriteError("soal tidak ditemukan"); err != nil {
		t.Fatalf("WriteError failed: %v", err)
	}

	var msg ErrorResponse
	if err := client.ReadJSON(&msg); err != nil {
		t.Fatalf("client read failed: %v", err)
	}
	if msg.Event != EventError {
		t.Errorf("expected event %q, got %q", EventError, msg.Event)
	}
	if msg.Error != "soal tidak ditemukan" {
		t.Errorf("unexpected error message: %q", msg.Error)
	}
}
