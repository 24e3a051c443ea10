package room

import (
	"time"

	"go.uber.org/zap"

	"github.com/hexfray/hexfray/game/config"
	"github.com/hexfray/hexfray/game/engine"
	"github.com/hexfray/hexfray/logger"
	ws "github.com/hexfray/hexfray/transport/websocket"
)

// ReplayRoom streams a finished game's event log with the original relative
// timing. Viewers join anonymously; playback starts when the first viewer
// arrives and the room disposes itself once everyone leaves.
type ReplayRoom struct {
	roomID string
	gameID string
	cfg    *config.Config
	hub    *ws.Hub

	room *ws.Room

	// events with timestamps normalized to offsets from the first event.
	events  []engine.Event
	offsets []time.Duration

	playing      bool
	timers       []*time.Timer
	cleanupTimer *time.Timer
	closed       bool
}

// NewReplayRoom builds a replay actor over an already-loaded event log.
func NewReplayRoom(cfg *config.Config, hub *ws.Hub, roomID, gameID string, events []engine.Event) *ReplayRoom {
	offsets := make([]time.Duration, len(events))
	if len(events) > 0 {
		base := events[0].Timestamp
		for i, e := range events {
			offsets[i] = time.Duration(e.Timestamp-base) * time.Millisecond
		}
	}
	return &ReplayRoom{
		roomID:  roomID,
		gameID:  gameID,
		cfg:     cfg,
		hub:     hub,
		events:  events,
		offsets: offsets,
	}
}

// Attach binds the hub room.
func (rr *ReplayRoom) Attach(r *ws.Room) { rr.room = r }

// RoomID implements websocket.Handler.
func (rr *ReplayRoom) RoomID() string { return rr.roomID }

// OnJoin admits anyone, identity or not.
func (rr *ReplayRoom) OnJoin(c *ws.Client) *ws.CloseError {
	if rr.closed {
		return &ws.CloseError{Code: ws.CloseNotAllowed, Reason: "replay closed"}
	}
	if rr.cleanupTimer != nil {
		rr.cleanupTimer.Stop()
		rr.cleanupTimer = nil
	}

	c.Send(replayInfoMsg{
		Type:        "replayInfo",
		GameID:      rr.gameID,
		TotalEvents: len(rr.events),
	})
	rr.startPlayback()
	return nil
}

// OnLeave arms disposal once the room is empty.
func (rr *ReplayRoom) OnLeave(c *ws.Client) {
	if len(rr.room.Clients()) > 0 {
		return
	}
	rr.cleanupTimer = rr.room.Schedule(rr.cfg.CleanupDelay, rr.cleanup)
}

// OnShutdown cancels pending playback.
func (rr *ReplayRoom) OnShutdown() {
	rr.closed = true
	for _, t := range rr.timers {
		t.Stop()
	}
	if rr.cleanupTimer != nil {
		rr.cleanupTimer.Stop()
	}
}

// OnMessage ignores everything; replays are one-way.
func (rr *ReplayRoom) OnMessage(c *ws.Client, msgType string, raw []byte) {
	logger.WithRoomContext(rr.roomID).Debug("ignoring message in replay",
		zap.String("type", msgType))
}

// startPlayback schedules every event as a broadcast at its original offset.
// Playback runs once per room; later joiners see the remainder.
func (rr *ReplayRoom) startPlayback() {
	if rr.playing {
		return
	}
	rr.playing = true
	if len(rr.events) == 0 {
		rr.room.Broadcast(replayEndMsg{Type: "replayEnd"})
		return
	}

	for i, e := range rr.events {
		e, off := e, rr.offsets[i]
		rr.timers = append(rr.timers, rr.room.Schedule(off, func() {
			rr.room.Broadcast(replayEventMsg{
				Type:      "replayEvent",
				PlayerID:  e.PlayerID,
				Color:     e.Color,
				Q:         e.Q,
				R:         e.R,
				EventType: string(e.EventType),
				Offset:    off.Milliseconds(),
			})
		}))
	}
	last := rr.offsets[len(rr.offsets)-1]
	rr.timers = append(rr.timers, rr.room.Schedule(last+time.Second, func() {
		rr.room.Broadcast(replayEndMsg{Type: "replayEnd"})
	}))
}

// cleanup disposes an empty replay room.
func (rr *ReplayRoom) cleanup() {
	if rr.closed || len(rr.room.Clients()) > 0 {
		return
	}
	logger.WithRoomContext(rr.roomID).Info("disposing idle replay")
	rr.hub.RemoveRoom(rr.roomID)
}
