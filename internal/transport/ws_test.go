package transport

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestBroadcastReachesClient(t *testing.T) {
	st := NewStreamer()
	srv := httptest.NewServer(st.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// The accept handler registers the client asynchronously.
	deadline := time.Now().Add(time.Second)
	for {
		st.mu.Lock()
		n := len(st.clients)
		st.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	st.Broadcast([]string{"t", "b1_e"}, []float64{2.5, 0.31})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}

	var frame Frame
	if err := json.Unmarshal(payload, &frame); err != nil {
		t.Fatal(err)
	}
	if frame.T != 2.5 {
		t.Errorf("t = %v, want 2.5", frame.T)
	}
	if frame.Values["b1_e"] != 0.31 {
		t.Errorf("b1_e = %v, want 0.31", frame.Values["b1_e"])
	}
	if _, ok := frame.Values["t"]; ok {
		t.Error("t should not be duplicated into the value map")
	}
}

func TestBroadcastDropsDeadClients(t *testing.T) {
	st := NewStreamer()
	srv := httptest.NewServer(st.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	conn.Close()

	// Eventually the reader goroutine or a failed write drops the client.
	deadline := time.Now().Add(2 * time.Second)
	for {
		st.Broadcast([]string{"t"}, []float64{0})
		st.mu.Lock()
		n := len(st.clients)
		st.mu.Unlock()
		if n == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("dead client never dropped")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
