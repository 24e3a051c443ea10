package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoHandler greets joiners, echoes frames back, and records lifecycle
// events on channels so tests can wait without polling.
type echoHandler struct {
	id     string
	reject *CloseError

	joined chan string
	left   chan string
	msgs   chan string
}

func newEchoHandler(id string) *echoHandler {
	return &echoHandler{
		id:     id,
		joined: make(chan string, 8),
		left:   make(chan string, 8),
		msgs:   make(chan string, 8),
	}
}

func (h *echoHandler) RoomID() string { return h.id }

func (h *echoHandler) OnJoin(c *Client) *CloseError {
	if h.reject != nil {
		return h.reject
	}
	c.Send(map[string]string{"type": "welcome", "playerId": c.PlayerID})
	h.joined <- c.PlayerID
	return nil
}

func (h *echoHandler) OnLeave(c *Client) { h.left <- c.PlayerID }

func (h *echoHandler) OnMessage(c *Client, msgType string, raw []byte) {
	h.msgs <- msgType
	c.Send(map[string]string{"type": "echo", "got": msgType})
}

func (h *echoHandler) OnShutdown() {}

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	r := mux.NewRouter()
	r.HandleFunc("/ws/{roomID}", func(w http.ResponseWriter, req *http.Request) {
		hub.ServeWS(w, req, mux.Vars(req)["roomID"])
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, roomID, playerID string) *websocket.Conn {
	t.Helper()
	url := strings.Replace(srv.URL, "http", "ws", 1) + "/ws/" + roomID + "?playerId=" + playerID + "&token=tok"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var out map[string]string
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func waitFor(t *testing.T, ch chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func TestAddRoomRejectsDuplicates(t *testing.T) {
	hub := NewHub()
	_, err := hub.AddRoom(newEchoHandler("r1"))
	require.NoError(t, err)
	_, err = hub.AddRoom(newEchoHandler("r1"))
	assert.ErrorIs(t, err, ErrRoomExists)
	assert.Equal(t, 1, hub.RoomCount())
}

func TestServeWSUnknownRoom(t *testing.T) {
	_, srv := newTestHub(t)
	resp, err := http.Get(srv.URL + "/ws/nowhere")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestJoinAndEcho(t *testing.T) {
	hub, srv := newTestHub(t)
	h := newEchoHandler("r1")
	_, err := hub.AddRoom(h)
	require.NoError(t, err)

	conn := dial(t, srv, "r1", "p1")
	welcome := readFrame(t, conn)
	assert.Equal(t, "welcome", welcome["type"])
	assert.Equal(t, "p1", welcome["playerId"])
	waitFor(t, h.joined, "p1")

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	waitFor(t, h.msgs, "ping")
	echo := readFrame(t, conn)
	assert.Equal(t, "echo", echo["type"])
	assert.Equal(t, "ping", echo["got"])

	require.NoError(t, conn.Close())
	waitFor(t, h.left, "p1")
}

func TestJoinRejectedWithCloseCode(t *testing.T) {
	hub, srv := newTestHub(t)
	h := newEchoHandler("r1")
	h.reject = &CloseError{Code: CloseNotAllowed, Reason: "not allowed"}
	_, err := hub.AddRoom(h)
	require.NoError(t, err)

	conn := dial(t, srv, "r1", "intruder")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, CloseNotAllowed, closeErr.Code)
}

func TestMalformedFramesDropped(t *testing.T) {
	hub, srv := newTestHub(t)
	h := newEchoHandler("r1")
	_, err := hub.AddRoom(h)
	require.NoError(t, err)

	conn := dial(t, srv, "r1", "p1")
	readFrame(t, conn) // welcome
	waitFor(t, h.joined, "p1")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"no":"type"}`)))
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "real"}))

	// Only the well-formed frame reaches the handler.
	waitFor(t, h.msgs, "real")
	select {
	case extra := <-h.msgs:
		t.Fatalf("unexpected extra message %q", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub, srv := newTestHub(t)
	h := newEchoHandler("r1")
	r, err := hub.AddRoom(h)
	require.NoError(t, err)

	c1 := dial(t, srv, "r1", "p1")
	readFrame(t, c1)
	waitFor(t, h.joined, "p1")
	c2 := dial(t, srv, "r1", "p2")
	readFrame(t, c2)
	waitFor(t, h.joined, "p2")

	r.Post(func() {
		r.Broadcast(map[string]string{"type": "announce"})
	})

	for _, conn := range []*websocket.Conn{c1, c2} {
		frame := readFrame(t, conn)
		assert.Equal(t, "announce", frame["type"])
	}
}

func TestRemoveRoomClosesClients(t *testing.T) {
	hub, srv := newTestHub(t)
	h := newEchoHandler("r1")
	_, err := hub.AddRoom(h)
	require.NoError(t, err)

	conn := dial(t, srv, "r1", "p1")
	readFrame(t, conn)
	waitFor(t, h.joined, "p1")

	hub.RemoveRoom("r1")
	assert.Equal(t, 0, hub.RoomCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
