package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hexfray/hexfray/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is one WebSocket connection inside a room. PlayerID and Token are
// the identity presented at connect time; SessionID is assigned by the
// server and changes on every reconnect.
type Client struct {
	PlayerID  string
	Token     string
	SessionID string

	room       *Room
	conn       *websocket.Conn
	send       chan []byte
	closeOnce  sync.Once
	registered bool
}

// inboundFrame is the envelope every in-room message shares.
type inboundFrame struct {
	Type string `json:"type"`
}

// marshalFrame encodes an outbound payload. Payload structs carry their own
// "type" field.
func marshalFrame(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Send marshals v and queues it for this client. Frames are dropped when the
// client's buffer is full rather than blocking the caller.
func (c *Client) Send(v any) {
	data, err := marshalFrame(v)
	if err != nil {
		logger.WithRoomContext(c.room.id).Error("send marshal failed", zap.Error(err))
		return
	}
	c.sendRaw(data)
}

func (c *Client) sendRaw(data []byte) {
	select {
	case c.send <- data:
	default:
		// Slow consumer: drop the frame, never stall the room.
	}
}

// Kick force-closes the connection with a specific close code. Used by room
// handlers for admission failures discovered late (stale duplicate sessions).
func (c *Client) Kick(code int, reason string) {
	c.closeWithCode(code, reason)
}

// closeWithCode writes a close control frame and tears the connection down.
func (c *Client) closeWithCode(code int, reason string) {
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(writeWait)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason), deadline)
		_ = c.conn.Close()
	})
}

// readPump pumps frames from the connection onto the room loop.
func (c *Client) readPump() {
	defer func() {
		c.room.Post(func() { c.room.drop(c) })
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.WithRoomContext(c.room.id).Debug("websocket read error", zap.Error(err))
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Type == "" {
			logger.WithRoomContext(c.room.id).Debug("dropping malformed frame",
				zap.String("player_id", c.PlayerID))
			continue
		}

		raw := data
		c.room.Post(func() {
			if c.registered {
				c.room.handler.OnMessage(c, frame.Type, raw)
			}
		})
	}
}

// writePump pumps queued frames to the connection and keeps the peer alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
