package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ai_app_generator/generator"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = pongWait * 9 / 10
	clientQueue = 32
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	send chan generator.Event
}

// hub fans session events out to websocket subscribers. Notify never
// blocks; a subscriber whose queue is full misses the event.
type hub struct {
	logger *log.Logger

	mu   sync.RWMutex
	subs map[string]map[*client]struct{}
}

func newHub(logger *log.Logger) *hub {
	return &hub{logger: logger, subs: make(map[string]map[*client]struct{})}
}

// Notify implements generator.Notifier.
func (h *hub) Notify(e generator.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.subs[e.SessionID] {
		select {
		case c.send <- e:
		default:
			h.logger.Printf("[WARN] events: dropping %s event for session %s", e.Kind, e.SessionID)
		}
	}
}

func (h *hub) subscribe(sessionID string) *client {
	c := &client{send: make(chan generator.Event, clientQueue)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[*client]struct{})
	}
	h.subs[sessionID][c] = struct{}{}
	return c
}

func (h *hub) unsubscribe(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[sessionID], c)
	if len(h.subs[sessionID]) == 0 {
		delete(h.subs, sessionID)
	}
}

func (h *hub) serve(w http.ResponseWriter, r *http.Request, sessionID string) {
	// Subscribe before the handshake completes so no event published after
	// the client sees the upgrade is missed.
	c := h.subscribe(sessionID)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.unsubscribe(sessionID, c)
		h.logger.Printf("events: websocket upgrade: %v", err)
		return
	}
	done := make(chan struct{})

	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Printf("events: websocket read: %v", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.unsubscribe(sessionID, c)
		conn.Close()
	}()

	for {
		select {
		case e := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
