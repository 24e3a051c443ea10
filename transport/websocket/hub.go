package websocket

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hexfray/hexfray/logger"
)

// Close codes surfaced to clients on admission failure.
const (
	CloseInvalidPlayer = websocket.CloseNormalClosure    // 1000: invalid/missing player or duplicate session
	CloseNotAllowed    = websocket.CloseUnsupportedData  // 1003: not allowed in this room
)

// ErrRoomExists is returned when adding a room whose id is already hosted.
var ErrRoomExists = errors.New("websocket: room already exists")

// CloseError rejects a join with a specific close code.
type CloseError struct {
	Code   int
	Reason string
}

// Handler is a room's message handler. The hub invokes every method on the
// room's single task loop, so implementations need no locking of their own.
type Handler interface {
	RoomID() string

	// OnJoin admits or rejects a connecting client. A non-nil CloseError
	// closes the connection with that code before the client is registered.
	OnJoin(c *Client) *CloseError

	// OnLeave runs after a registered client disconnects.
	OnLeave(c *Client)

	// OnMessage handles one inbound frame, already split into its type tag
	// and raw JSON payload.
	OnMessage(c *Client, msgType string, raw []byte)

	// OnShutdown runs when the hub disposes the room.
	OnShutdown()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The game is served cross-origin during development.
		return true
	},
}

// Hub hosts rooms and routes connections to them.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*Room)}
}

// AddRoom registers a handler and starts its task loop.
func (h *Hub) AddRoom(handler Handler) (*Room, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := handler.RoomID()
	if _, exists := h.rooms[id]; exists {
		return nil, ErrRoomExists
	}
	r := &Room{
		id:      id,
		handler: handler,
		hub:     h,
		tasks:   make(chan func(), 256),
		done:    make(chan struct{}),
		clients: make(map[*Client]struct{}),
	}
	h.rooms[id] = r
	go r.run()
	logger.WithRoomContext(id).Info("room added", zap.Int("total_rooms", len(h.rooms)))
	return r, nil
}

// Room returns a hosted room by id.
func (h *Hub) Room(id string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[id]
	return r, ok
}

// RemoveRoom disposes a room: remaining clients are closed, the handler's
// OnShutdown runs, and the task loop stops.
func (h *Hub) RemoveRoom(id string) {
	h.mu.Lock()
	r, ok := h.rooms[id]
	if ok {
		delete(h.rooms, id)
	}
	total := len(h.rooms)
	h.mu.Unlock()
	if !ok {
		return
	}
	// Posted from a fresh goroutine so the room loop itself can call
	// RemoveRoom without risking a full task queue deadlock.
	go r.Post(func() {
		r.handler.OnShutdown()
		for c := range r.clients {
			c.closeWithCode(CloseInvalidPlayer, "room closed")
		}
		r.clients = nil
		close(r.done)
	})
	logger.WithRoomContext(id).Info("room removed", zap.Int("total_rooms", total))
}

// RoomCount returns the number of hosted rooms.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// ServeWS upgrades an HTTP request into a room connection. Identity comes
// from the playerId/token query parameters; rooms that admit anonymous
// viewers tolerate both being empty.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, roomID string) {
	room, ok := h.Room(roomID)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithRoomContext(roomID).Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	query := r.URL.Query()
	client := &Client{
		PlayerID:  query.Get("playerId"),
		Token:     query.Get("token"),
		SessionID: uuid.NewString(),
		room:      room,
		conn:      conn,
		send:      make(chan []byte, 256),
	}

	go client.writePump()
	go client.readPump()

	room.Post(func() {
		if cerr := room.handler.OnJoin(client); cerr != nil {
			logger.WithRoomContext(roomID).Debug("join rejected",
				zap.String("player_id", client.PlayerID),
				zap.Int("code", cerr.Code), zap.String("reason", cerr.Reason))
			client.closeWithCode(cerr.Code, cerr.Reason)
			return
		}
		room.clients[client] = struct{}{}
		client.registered = true
	})
}

// Room is a single-writer actor: every inbound message, join, leave and
// timer firing executes in order on one goroutine. Two rooms progress in
// parallel; within a room there is no shared-state race by construction.
type Room struct {
	id      string
	handler Handler
	hub     *Hub
	tasks   chan func()
	done    chan struct{}

	// clients is owned by the task loop.
	clients map[*Client]struct{}
}

// ID returns the room id.
func (r *Room) ID() string {
	return r.id
}

func (r *Room) run() {
	for {
		select {
		case f := <-r.tasks:
			f()
		case <-r.done:
			return
		}
	}
}

// Post queues work onto the room loop. Returns false if the room is gone.
// Never call from the room loop itself when the queue may be full; loop code
// that needs deferred work should use Schedule.
func (r *Room) Post(f func()) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.tasks <- f:
		return true
	case <-r.done:
		return false
	}
}

// Schedule runs f on the room loop after d. The returned timer can be
// stopped to cancel.
func (r *Room) Schedule(d time.Duration, f func()) *time.Timer {
	return time.AfterFunc(d, func() {
		r.Post(f)
	})
}

// Broadcast marshals v once and sends it to every connected client. Frames
// to a client with a full send buffer are dropped; a slow client never
// stalls the room. Loop-only.
func (r *Room) Broadcast(v any) {
	data, err := marshalFrame(v)
	if err != nil {
		logger.WithRoomContext(r.id).Error("broadcast marshal failed", zap.Error(err))
		return
	}
	for c := range r.clients {
		c.sendRaw(data)
	}
}

// Clients returns the registered clients. Loop-only.
func (r *Room) Clients() []*Client {
	out := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		out = append(out, c)
	}
	return out
}

// drop unregisters a client after its connection ends. Loop-only.
func (r *Room) drop(c *Client) {
	if _, ok := r.clients[c]; !ok {
		return
	}
	delete(r.clients, c)
	r.handler.OnLeave(c)
}
