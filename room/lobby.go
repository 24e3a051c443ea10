package room

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/hexfray/hexfray/auth"
	"github.com/hexfray/hexfray/game/config"
	"github.com/hexfray/hexfray/logger"
	"github.com/hexfray/hexfray/store"
	ws "github.com/hexfray/hexfray/transport/websocket"
)

// lobbyPlayer is one roster entry. started means the player pressed join and
// will be included when the countdown completes.
type lobbyPlayer struct {
	username string
	color    string
	started  bool
	client   *ws.Client
}

// LobbyRoom stages players until enough of them are ready, then hands the
// ready set to the matchmaker as a new game.
type LobbyRoom struct {
	lobbyID string
	cfg     *config.Config
	st      *store.Store
	auth    *auth.Service
	mm      *Matchmaker

	room   *ws.Room
	roster map[string]*lobbyPlayer

	countdown      int
	countdownTimer *time.Timer
	cleanupTimer   *time.Timer
	closed         bool
}

// NewLobbyRoom builds the staging actor for one lobby.
func NewLobbyRoom(cfg *config.Config, st *store.Store, authsvc *auth.Service, mm *Matchmaker, lobbyID string) *LobbyRoom {
	return &LobbyRoom{
		lobbyID: lobbyID,
		cfg:     cfg,
		st:      st,
		auth:    authsvc,
		mm:      mm,
		roster:  make(map[string]*lobbyPlayer),
	}
}

// Attach binds the hub room.
func (l *LobbyRoom) Attach(r *ws.Room) { l.room = r }

// RoomID implements websocket.Handler.
func (l *LobbyRoom) RoomID() string { return l.lobbyID }

func (l *LobbyRoom) log() *zap.Logger {
	return logger.WithRoomContext(l.lobbyID)
}

func (l *LobbyRoom) ctx() context.Context { return context.Background() }

// OnJoin admits any registered player with a valid token.
func (l *LobbyRoom) OnJoin(c *ws.Client) *ws.CloseError {
	if l.closed {
		return &ws.CloseError{Code: ws.CloseNotAllowed, Reason: "lobby closed"}
	}
	if !l.auth.Verify(c.PlayerID, c.Token) {
		return &ws.CloseError{Code: ws.CloseInvalidPlayer, Reason: "invalid player"}
	}
	ctx := l.ctx()
	p, err := l.st.GetPlayer(ctx, c.PlayerID)
	if err != nil {
		return &ws.CloseError{Code: ws.CloseInvalidPlayer, Reason: "unknown player"}
	}

	lp, ok := l.roster[c.PlayerID]
	if ok && lp.client != nil && lp.client != c {
		l.log().Info("evicting duplicate session", zap.String("player_id", c.PlayerID))
		lp.client.Kick(ws.CloseInvalidPlayer, "duplicate session")
	}
	if !ok {
		lp = &lobbyPlayer{username: p.Username, color: p.Color}
		l.roster[c.PlayerID] = lp
	}
	lp.client = c

	if err := l.st.AddLobbyPlayer(ctx, l.lobbyID, c.PlayerID); err != nil {
		l.log().Warn("presence write failed", zap.Error(err))
	}
	if err := l.st.SetPlayerSession(ctx, c.PlayerID, c.SessionID); err != nil {
		l.log().Warn("session write failed", zap.Error(err))
	}
	if err := l.st.TouchPlayer(ctx, c.PlayerID); err != nil {
		l.log().Warn("player touch failed", zap.Error(err))
	}

	if l.cleanupTimer != nil {
		l.cleanupTimer.Stop()
		l.cleanupTimer = nil
	}

	// The joiner only starts receiving broadcasts after OnJoin returns, so
	// hand them the roster directly; everyone already present gets the
	// broadcast.
	msg := l.stateMsg()
	c.Send(msg)
	l.room.Broadcast(msg)
	return nil
}

// OnLeave drops the player from presence; an unready disconnect during the
// countdown may abort it on the next tick.
func (l *LobbyRoom) OnLeave(c *ws.Client) {
	lp, ok := l.roster[c.PlayerID]
	if !ok || lp.client != c {
		return
	}
	lp.client = nil
	if err := l.st.RemoveLobbyPlayer(l.ctx(), l.lobbyID, c.PlayerID); err != nil {
		l.log().Warn("presence remove failed", zap.Error(err))
	}
	l.broadcastState()

	for _, p := range l.roster {
		if p.client != nil {
			return
		}
	}
	l.cleanupTimer = l.room.Schedule(l.cfg.CleanupDelay, l.cleanup)
}

// OnShutdown stops the lobby's timers.
func (l *LobbyRoom) OnShutdown() {
	l.closed = true
	for _, t := range []*time.Timer{l.countdownTimer, l.cleanupTimer} {
		if t != nil {
			t.Stop()
		}
	}
}

// OnMessage handles joinGame and createReplay.
func (l *LobbyRoom) OnMessage(c *ws.Client, msgType string, raw []byte) {
	switch msgType {
	case msgJoinGame:
		l.handleJoinGame(c)
	case msgCreateReplay:
		var p createReplayPayload
		if json.Unmarshal(raw, &p) == nil && p.GameID != "" {
			l.handleCreateReplay(c, p.GameID)
		}
	default:
		l.log().Debug("unknown message type",
			zap.String("type", msgType), zap.String("player_id", c.PlayerID))
	}
}

func (l *LobbyRoom) handleJoinGame(c *ws.Client) {
	lp, ok := l.roster[c.PlayerID]
	if !ok {
		return
	}
	lp.started = true
	l.broadcastState()

	if l.countdownTimer == nil && l.readyConnected() >= l.cfg.MinReady {
		l.countdown = l.cfg.CountdownSeconds
		if err := l.st.SetLobbyStartTime(l.ctx(), l.lobbyID, nowMillis()); err != nil {
			l.log().Warn("start time write failed", zap.Error(err))
		}
		l.room.Broadcast(countdownMsg{Type: "countdown", Seconds: l.countdown})
		l.countdownTimer = l.room.Schedule(time.Second, l.countdownTick)
	}
}

// countdownTick decrements once per second. The countdown aborts if the ready
// headcount drops below the minimum before reaching zero.
func (l *LobbyRoom) countdownTick() {
	if l.closed {
		return
	}
	if l.readyConnected() < l.cfg.MinReady {
		l.log().Info("countdown aborted", zap.Int("ready", l.readyConnected()))
		l.countdownTimer = nil
		l.countdown = 0
		l.broadcastState()
		return
	}

	l.countdown--
	l.room.Broadcast(countdownMsg{Type: "countdown", Seconds: l.countdown})
	if l.countdown > 0 {
		l.countdownTimer = l.room.Schedule(time.Second, l.countdownTick)
		return
	}
	l.countdownTimer = nil
	l.launchGame()
}

// launchGame moves every ready connected player into a freshly created game
// room and tells them where to go.
func (l *LobbyRoom) launchGame() {
	ready := make([]store.StartPlayer, 0, len(l.roster))
	clients := make([]*ws.Client, 0, len(l.roster))
	ids := make([]string, 0, len(l.roster))
	for id := range l.roster {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		lp := l.roster[id]
		if lp.started && lp.client != nil {
			ready = append(ready, store.StartPlayer{
				PlayerID: id,
				Username: lp.username,
				Color:    lp.color,
			})
			clients = append(clients, lp.client)
		}
	}
	if len(ready) < l.cfg.MinReady {
		return
	}

	gameID, err := l.mm.CreateGame(l.ctx(), ready)
	if err != nil {
		l.log().Error("game creation failed", zap.Error(err))
		l.broadcastState()
		return
	}
	l.log().Info("game launched",
		zap.String("game_id", gameID), zap.Int("players", len(ready)))

	for i, sp := range ready {
		clients[i].Send(startGameMsg{Type: "startGame", RoomID: gameID})
		delete(l.roster, sp.PlayerID)
		if err := l.st.RemoveLobbyPlayer(l.ctx(), l.lobbyID, sp.PlayerID); err != nil {
			l.log().Warn("presence remove failed", zap.Error(err))
		}
	}
	l.broadcastState()
}

func (l *LobbyRoom) handleCreateReplay(c *ws.Client, gameID string) {
	roomID, err := l.mm.CreateReplay(l.ctx(), gameID)
	if err != nil {
		l.log().Warn("replay creation failed",
			zap.String("game_id", gameID), zap.Error(err))
		return
	}
	c.Send(replayCreatedMsg{Type: "replayCreated", RoomID: roomID})
}

func (l *LobbyRoom) readyConnected() int {
	n := 0
	for _, p := range l.roster {
		if p.started && p.client != nil {
			n++
		}
	}
	return n
}

// stateMsg builds the roster frame, sorted for a stable wire order.
func (l *LobbyRoom) stateMsg() lobbyStateMsg {
	entries := make([]lobbyRosterEntry, 0, len(l.roster))
	for id, p := range l.roster {
		if p.client == nil {
			continue
		}
		entries = append(entries, lobbyRosterEntry{
			PlayerID: id,
			Username: p.username,
			Color:    p.color,
			Started:  p.started,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].PlayerID < entries[j].PlayerID
	})
	return lobbyStateMsg{Type: "lobbyState", Players: entries}
}

// broadcastState pushes the roster to everyone connected.
func (l *LobbyRoom) broadcastState() {
	l.room.Broadcast(l.stateMsg())
}

// cleanup closes the lobby after the grace window passes with nobody
// connected.
func (l *LobbyRoom) cleanup() {
	if l.closed {
		return
	}
	for _, p := range l.roster {
		if p.client != nil {
			return
		}
	}
	l.log().Info("closing empty lobby")
	if err := l.st.CloseLobby(l.ctx(), l.lobbyID); err != nil {
		l.log().Warn("lobby close failed", zap.Error(err))
	}
	l.mm.hub.RemoveRoom(l.lobbyID)
}
