// Package transport streams sampled simulation frames to websocket
// clients as JSON records.
package transport

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Frame is one sampled record keyed by column name.
type Frame struct {
	T      float64            `json:"t"`
	Values map[string]float64 `json:"values"`
}

// Streamer broadcasts frames to every connected client. Broadcast is
// called from the single simulation thread; the mutex only guards the
// client set against the HTTP accept goroutines.
type Streamer struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewStreamer() *Streamer {
	return &Streamer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

func (st *Streamer) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := st.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		st.mu.Lock()
		st.clients[conn] = true
		st.mu.Unlock()

		// Drain control frames and detect close.
		go func() {
			defer st.drop(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

func (st *Streamer) drop(conn *websocket.Conn) {
	st.mu.Lock()
	delete(st.clients, conn)
	st.mu.Unlock()
	conn.Close()
}

// Broadcast sends one sampled record to all clients. Clients that fail
// to accept the write are dropped.
func (st *Streamer) Broadcast(header []string, row []float64) {
	frame := Frame{Values: make(map[string]float64, len(header))}
	for i, name := range header {
		if name == "t" {
			frame.T = row[i]
			continue
		}
		frame.Values[name] = row[i]
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	for conn := range st.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			delete(st.clients, conn)
			conn.Close()
		}
	}
}

// ListenAndServe exposes the stream on /ws.
func (st *Streamer) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", st.Handler())
	return http.ListenAndServe(addr, mux)
}
