// Package realtime implements the realtime publisher: fan-out to
// dispatch/{region} and contractor/{id} subscriber groups over WebSocket,
// plus event-log persistence. Follows websocket_service.go's
// map[*websocket.Conn]ClientInfo guarded by sync.RWMutex and broadcast loop
// with dead-connection auto-removal, regrouped from tenant/user-keyed to
// region/contractor-keyed groups.
package realtime

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks live WebSocket connections per subscriber group and fans out
// raw JSON frames to every connection in a group.
type Hub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	groups   map[string]map[*websocket.Conn]struct{}
}

// NewHub constructs an empty Hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		groups: make(map[string]map[*websocket.Conn]struct{}),
	}
}

// Subscribe upgrades an HTTP connection and registers it under group (e.g.
// "dispatch/west" or "contractor/<id>").
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, group string) (*websocket.Conn, error) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	if h.groups[group] == nil {
		h.groups[group] = make(map[*websocket.Conn]struct{})
	}
	h.groups[group][conn] = struct{}{}
	h.mu.Unlock()

	conn.SetCloseHandler(func(code int, text string) error {
		h.remove(group, conn)
		return nil
	})

	return conn, nil
}

func (h *Hub) remove(group string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.groups[group]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.groups, group)
		}
	}
}

// send writes a pre-marshaled JSON frame to every connection in group,
// dropping dead connections as it goes. Delivery order within the group
// mirrors iteration here, which mirrors the server's publish order since
// writes happen synchronously before send returns.
func (h *Hub) send(group string, frame []byte) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.groups[group]))
	for c := range h.groups[group] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			h.logger.Printf("realtime: dropping dead connection in group %s: %v", group, err)
			go func(c *websocket.Conn) {
				h.remove(group, c)
				c.Close()
			}(conn)
		}
	}
}

// GroupSize reports how many connections are currently subscribed to group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
