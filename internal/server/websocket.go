package server

import (
	"net/http"
	"sync"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, this should be more restrictive
	},
}

// wsClient serializes writes to one connection; broadcasts come from
// concurrent request goroutines and gorilla allows a single writer.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) send(message any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(message)
}

// clientRegistry tracks connected WebSocket clients and fans completed
// analyses out to them.
type clientRegistry struct {
	clients sync.Map
}

func newClientRegistry() *clientRegistry {
	return &clientRegistry{}
}

func (r *clientRegistry) add(client *wsClient) string {
	id := uuid.New().String()
	r.clients.Store(id, client)
	return id
}

func (r *clientRegistry) remove(id string) {
	r.clients.Delete(id)
}

// broadcast pushes a {type, data} envelope to every connected client.
// Clients whose writes fail are dropped; the next read in their handler
// loop will error out and close the connection.
func (r *clientRegistry) broadcast(messageType string, data any) {
	msg := map[string]any{
		"type": messageType,
		"data": data,
	}
	r.clients.Range(func(key, value any) bool {
		client := value.(*wsClient)
		if err := client.send(msg); err != nil {
			log.WithError(err).Warn("dropping unresponsive websocket client")
			r.clients.Delete(key)
			client.conn.Close()
		}
		return true
	})
}

// handleWebSocket upgrades the connection and keeps it registered for the
// live analysis feed. Incoming messages are discarded; the feed is one-way.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	client := &wsClient{conn: conn}
	clientID := s.clients.add(client)
	defer s.clients.remove(clientID)

	log.WithField("client", clientID).Info("websocket client connected")
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	log.WithField("client", clientID).Info("websocket client disconnected")
}
