package room

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/hexfray/hexfray/auth"
	"github.com/hexfray/hexfray/game/config"
	"github.com/hexfray/hexfray/game/engine"
	"github.com/hexfray/hexfray/game/hexgrid"
	"github.com/hexfray/hexfray/logger"
	"github.com/hexfray/hexfray/store"
	ws "github.com/hexfray/hexfray/transport/websocket"
)

// economy tick starts this long after startDelay elapses for the first join,
// so the first income lands just after the start window closes.
const econStartSlack = 100 * time.Millisecond

// gamePlayer is the room's view of one participant.
type gamePlayer struct {
	username string
	color    string
	client   *ws.Client
}

// GameRoom is the authoritative actor for one match. Every handler runs on
// the room's task loop; there is no locking here by construction.
type GameRoom struct {
	gameID string
	cfg    *config.Config
	st     *store.Store
	auth   *auth.Service
	hub    *ws.Hub

	room    *ws.Room
	allowed map[string]*gamePlayer

	lobbyStartTime int64
	econScheduled  bool
	econTimer      *time.Timer
	expandTimer    *time.Timer
	cleanupTimer   *time.Timer
	closed         bool
}

// NewGameRoom builds the actor for a persisted game. The hub has not started
// its loop yet; call Attach once AddRoom returns.
func NewGameRoom(cfg *config.Config, st *store.Store, authsvc *auth.Service, hub *ws.Hub, g store.Game) *GameRoom {
	allowed := make(map[string]*gamePlayer, len(g.StartPlayers))
	for _, p := range g.StartPlayers {
		allowed[p.PlayerID] = &gamePlayer{username: p.Username, color: p.Color}
	}
	return &GameRoom{
		gameID:         g.ID,
		cfg:            cfg,
		st:             st,
		auth:           authsvc,
		hub:            hub,
		allowed:        allowed,
		lobbyStartTime: g.LobbyStartTime,
	}
}

// Attach binds the hub room and starts the auto-expansion loop.
func (g *GameRoom) Attach(r *ws.Room) {
	g.room = r
	g.expandTimer = r.Schedule(g.cfg.AutoExpandInterval, g.autoExpandTick)
}

// RoomID implements websocket.Handler.
func (g *GameRoom) RoomID() string { return g.gameID }

func (g *GameRoom) log() *zap.Logger {
	return logger.WithRoomContext(g.gameID)
}

func (g *GameRoom) ctx() context.Context { return context.Background() }

// OnJoin admits game participants only. Duplicate sessions evict the older
// connection; the newest always wins.
func (g *GameRoom) OnJoin(c *ws.Client) *ws.CloseError {
	if g.closed {
		return &ws.CloseError{Code: ws.CloseNotAllowed, Reason: "game closed"}
	}
	if !g.auth.Verify(c.PlayerID, c.Token) {
		return &ws.CloseError{Code: ws.CloseInvalidPlayer, Reason: "invalid player"}
	}
	gp, ok := g.allowed[c.PlayerID]
	if !ok {
		return &ws.CloseError{Code: ws.CloseNotAllowed, Reason: "not allowed"}
	}

	if gp.client != nil && gp.client != c {
		g.log().Info("evicting duplicate session", zap.String("player_id", c.PlayerID))
		gp.client.Kick(ws.CloseInvalidPlayer, "duplicate session")
	}
	gp.client = c

	ctx := g.ctx()
	if err := g.st.SetPlayerSession(ctx, c.PlayerID, c.SessionID); err != nil {
		g.log().Warn("session write failed", zap.Error(err))
	}
	if err := g.st.TouchPlayer(ctx, c.PlayerID); err != nil {
		g.log().Warn("player touch failed", zap.Error(err))
	}

	if g.cleanupTimer != nil {
		g.cleanupTimer.Stop()
		g.cleanupTimer = nil
	}

	c.Send(assignedColorMsg{Type: "assignedColor", Color: gp.color})
	c.Send(lobbyStartTimeMsg{
		Type:       "lobbyStartTime",
		Ts:         g.lobbyStartTime,
		StartDelay: g.cfg.StartDelay.Milliseconds(),
	})
	g.sendHistory(c)

	if !g.econScheduled {
		g.econScheduled = true
		g.econTimer = g.room.Schedule(g.cfg.StartDelay+econStartSlack, g.econTick)
	}
	return nil
}

// OnLeave marks the player disconnected and arms the cleanup timer once the
// room is empty. A reconnect inside the grace window disarms it.
func (g *GameRoom) OnLeave(c *ws.Client) {
	gp, ok := g.allowed[c.PlayerID]
	if !ok || gp.client != c {
		return
	}
	gp.client = nil

	for _, p := range g.allowed {
		if p.client != nil {
			return
		}
	}
	g.cleanupTimer = g.room.Schedule(g.cfg.CleanupDelay, g.cleanup)
}

// OnShutdown stops the room's timers.
func (g *GameRoom) OnShutdown() {
	g.closed = true
	for _, t := range []*time.Timer{g.econTimer, g.expandTimer, g.cleanupTimer} {
		if t != nil {
			t.Stop()
		}
	}
}

// OnMessage dispatches one inbound frame.
func (g *GameRoom) OnMessage(c *ws.Client, msgType string, raw []byte) {
	switch msgType {
	case msgChooseStart:
		var p coordPayload
		if json.Unmarshal(raw, &p) == nil {
			g.handleChooseStart(c, hexgrid.Coord{Q: p.Q, R: p.R})
		}
	case msgClickHex:
		var p coordPayload
		if json.Unmarshal(raw, &p) == nil {
			g.handleClickHex(c, hexgrid.Coord{Q: p.Q, R: p.R})
		}
	case msgFillHex:
		var p coordPayload
		if json.Unmarshal(raw, &p) == nil {
			res := g.captureAttempt(c, hexgrid.Coord{Q: p.Q, R: p.R}, false)
			c.Send(fillResultMsg{Type: "fillResult", fillResult: res})
		}
	case msgBatchFillHex:
		var p batchFillPayload
		if json.Unmarshal(raw, &p) == nil {
			results := make([]fillResult, 0, len(p.Hexes))
			for _, h := range p.Hexes {
				results = append(results, g.captureAttempt(c, hexgrid.Coord{Q: h.Q, R: h.R}, false))
			}
			c.Send(batchFillResultMsg{Type: "batchFillResult", Results: results})
		}
	case msgUpgradeHex:
		var p upgradePayload
		if json.Unmarshal(raw, &p) == nil {
			res := g.upgradeAttempt(c, hexgrid.Coord{Q: p.Q, R: p.R}, engine.Upgrade(p.Kind))
			c.Send(upgradeResultMsg{Type: "upgradeResult", OK: res.OK, Kind: res.Kind, Error: res.Error})
		}
	case msgBatchUpgradeHex:
		var p batchUpgradePayload
		if json.Unmarshal(raw, &p) == nil {
			results := make([]upgradeBatchResult, 0, len(p.Hexes))
			for _, h := range p.Hexes {
				results = append(results, g.upgradeAttempt(c, hexgrid.Coord{Q: h.Q, R: h.R}, engine.Upgrade(h.Kind)))
			}
			c.Send(batchUpgradeResultMsg{Type: "batchUpgradeResult", Results: results})
		}
	case msgRequestHoverCost:
		var p coordPayload
		if json.Unmarshal(raw, &p) == nil {
			g.handleHoverCost(c, hexgrid.Coord{Q: p.Q, R: p.R})
		}
	case msgRequestPointsUpdate:
		g.sendPointsTo(c, c.PlayerID)
	default:
		g.log().Debug("unknown message type",
			zap.String("type", msgType), zap.String("player_id", c.PlayerID))
	}
}

// startWindowOpen reports whether start picks are still accepted.
func (g *GameRoom) startWindowOpen(now int64) bool {
	return now <= g.lobbyStartTime+g.cfg.StartDelay.Milliseconds()
}

// handleChooseStart places the player's crowned first tile. Valid only inside
// the start window, on unowned plain ground, once per player.
func (g *GameRoom) handleChooseStart(c *ws.Client, coord hexgrid.Coord) {
	res := g.placeStart(c, coord)
	c.Send(fillResultMsg{Type: "fillResult", fillResult: res})
}

func (g *GameRoom) placeStart(c *ws.Client, coord hexgrid.Coord) fillResult {
	now := time.Now().UnixMilli()
	if !g.startWindowOpen(now) {
		return fillResult{Q: coord.Q, R: coord.R, Reason: reasonWindowClosed}
	}

	ctx := g.ctx()
	pp, err := g.st.GetPlayerPoints(ctx, g.gameID, c.PlayerID)
	if err != nil {
		return g.failClosed(coord, err)
	}
	if pp.Started {
		return fillResult{Q: coord.Q, R: coord.R, Reason: reasonAlreadyStarted}
	}

	tile, exists, err := g.st.GetHex(ctx, g.gameID, coord)
	if err != nil {
		return g.failClosed(coord, err)
	}
	if exists && !tile.Claimable() {
		return fillResult{Q: coord.Q, R: coord.R, Reason: reasonImpassable}
	}
	if exists && tile.PlayerID != "" {
		return fillResult{Q: coord.Q, R: coord.R, Reason: reasonOccupied}
	}

	gp := g.allowed[c.PlayerID]
	if err := g.st.SetHex(ctx, g.gameID, coord, engine.Tile{
		PlayerID:    c.PlayerID,
		Color:       gp.color,
		CaptureTime: now,
		IsStart:     true,
	}); err != nil {
		return g.failClosed(coord, err)
	}
	if err := g.st.SetPlayerStart(ctx, g.gameID, c.PlayerID, coord); err != nil {
		return g.failClosed(coord, err)
	}
	g.saveEvent(c.PlayerID, gp.color, coord, engine.EventStart, now)

	g.room.Broadcast(updateMsg{
		Type: "update", Q: coord.Q, R: coord.R,
		Color: gp.color, Crown: true,
	})
	g.broadcastPoints(c.PlayerID)
	return fillResult{Q: coord.Q, R: coord.R, OK: true}
}

// handleClickHex is the interactive path: clicking an owned tile opens its
// menu, clicking anything else is an adjacency-checked capture. The first
// click inside the start window is a start pick.
func (g *GameRoom) handleClickHex(c *ws.Client, coord hexgrid.Coord) {
	ctx := g.ctx()
	pp, err := g.st.GetPlayerPoints(ctx, g.gameID, c.PlayerID)
	if err != nil {
		c.Send(fillResultMsg{Type: "fillResult", fillResult: g.failClosed(coord, err)})
		return
	}
	if !pp.Started {
		if g.startWindowOpen(time.Now().UnixMilli()) {
			g.handleChooseStart(c, coord)
		} else {
			c.Send(fillResultMsg{Type: "fillResult",
				fillResult: fillResult{Q: coord.Q, R: coord.R, Reason: reasonNotStarted}})
		}
		return
	}

	tile, exists, err := g.st.GetHex(ctx, g.gameID, coord)
	if err != nil {
		c.Send(fillResultMsg{Type: "fillResult", fillResult: g.failClosed(coord, err)})
		return
	}
	if exists && tile.PlayerID == c.PlayerID {
		c.Send(openOwnedTileMenuMsg{
			Type: "openOwnedTileMenu", Q: coord.Q, R: coord.R,
			Upgrade: string(tile.Upgrade),
		})
		return
	}

	res := g.captureAttempt(c, coord, true)
	c.Send(fillResultMsg{Type: "fillResult", fillResult: res})
}

// captureAttempt runs the shared capture pipeline: cost, funds, optional
// adjacency, debit, ownership transfer, event, broadcasts. The fill paths
// skip the adjacency check; the click path enforces it.
func (g *GameRoom) captureAttempt(c *ws.Client, coord hexgrid.Coord, checkAdjacency bool) fillResult {
	ctx := g.ctx()
	now := time.Now().UnixMilli()

	pp, err := g.st.GetPlayerPoints(ctx, g.gameID, c.PlayerID)
	if err != nil {
		return g.failClosed(coord, err)
	}
	if !pp.Started {
		if g.startWindowOpen(now) {
			return g.placeStart(c, coord)
		}
		return fillResult{Q: coord.Q, R: coord.R, Reason: reasonNotStarted}
	}

	board, err := g.st.GetAllHexes(ctx, g.gameID)
	if err != nil {
		return g.failClosed(coord, err)
	}
	tile := board[coord]
	if !tile.Passable() {
		return fillResult{Q: coord.Q, R: coord.R, Reason: reasonImpassable}
	}

	cost, ok := engine.CaptureCost(g.cfg, board, c.PlayerID, coord, g.pointsLookup(ctx))
	if !ok || pp.Points < cost {
		return fillResult{Q: coord.Q, R: coord.R, Reason: reasonInsufficient}
	}
	if checkAdjacency && !engine.CanReach(board, c.PlayerID, coord) {
		return fillResult{Q: coord.Q, R: coord.R, Reason: reasonNotAdjacent}
	}

	prevOwner := tile.PlayerID
	gp := g.allowed[c.PlayerID]
	// Full overwrite: the captured tile keeps no upgrade and no crown. The
	// coordinate only reaches this point on plain ground, so terrain stays
	// empty. Ownership transfers before the debit: if the debit is lost to
	// an outage the cap clamp absorbs the windfall, whereas a debit without
	// a transfer would never heal.
	if err := g.st.SetHex(ctx, g.gameID, coord, engine.Tile{
		PlayerID:    c.PlayerID,
		Color:       gp.color,
		CaptureTime: now,
	}); err != nil {
		return g.failClosed(coord, err)
	}
	if _, err := g.st.UpdatePlayerPoints(ctx, g.gameID, c.PlayerID, pp.Points-cost); err != nil {
		g.log().Warn("capture debit failed", zap.Error(err))
	}
	g.saveEvent(c.PlayerID, gp.color, coord, engine.EventCapture, now)

	g.room.Broadcast(updateMsg{
		Type: "update", Q: coord.Q, R: coord.R, Color: gp.color,
	})
	g.broadcastPoints(c.PlayerID)
	if prevOwner != "" && prevOwner != c.PlayerID {
		g.broadcastPoints(prevOwner)
	}
	return fillResult{Q: coord.Q, R: coord.R, OK: true}
}

// upgradeAttempt purchases a structure on an owned tile.
func (g *GameRoom) upgradeAttempt(c *ws.Client, coord hexgrid.Coord, kind engine.Upgrade) upgradeBatchResult {
	fail := func(msg string) upgradeBatchResult {
		return upgradeBatchResult{Q: coord.Q, R: coord.R, Error: msg}
	}
	if !engine.ValidUpgrade(kind) {
		return fail("unknown upgrade type")
	}

	ctx := g.ctx()
	tile, exists, err := g.st.GetHex(ctx, g.gameID, coord)
	if err != nil {
		return fail(reasonUnavailable)
	}
	if !exists || tile.PlayerID != c.PlayerID {
		return fail(reasonNotOwner)
	}

	var cost int
	switch kind {
	case engine.UpgradeBank:
		cost = g.cfg.UpgradeBankCost
	case engine.UpgradeCity:
		cost = g.cfg.UpgradeCityCost
	case engine.UpgradeFort:
		cost = g.cfg.UpgradeFortCost
	}

	pp, err := g.st.GetPlayerPoints(ctx, g.gameID, c.PlayerID)
	if err != nil {
		return fail(reasonUnavailable)
	}
	if pp.Points < cost {
		return fail(reasonInsufficient)
	}

	// Structure first, debit second, for the same reason captures transfer
	// ownership before paying.
	if err := g.st.SetHexUpgrade(ctx, g.gameID, coord, kind); err != nil {
		return fail(reasonUnavailable)
	}
	if _, err := g.st.UpdatePlayerPoints(ctx, g.gameID, c.PlayerID, pp.Points-cost); err != nil {
		g.log().Warn("upgrade debit failed", zap.Error(err))
	}

	now := time.Now().UnixMilli()
	gp := g.allowed[c.PlayerID]
	g.saveEvent(c.PlayerID, gp.color, coord, engine.EventUpgrade, now)

	g.room.Broadcast(updateMsg{
		Type: "update", Q: coord.Q, R: coord.R,
		Color: gp.color, Crown: tile.IsStart, Upgrade: string(kind),
	})
	g.broadcastPoints(c.PlayerID)
	return upgradeBatchResult{Q: coord.Q, R: coord.R, OK: true, Kind: string(kind)}
}

// handleHoverCost answers a price preview without charging. Cost is null for
// hexes that can never be captured.
func (g *GameRoom) handleHoverCost(c *ws.Client, coord hexgrid.Coord) {
	ctx := g.ctx()
	board, err := g.st.GetAllHexes(ctx, g.gameID)
	if err != nil {
		c.Send(hoverCostMsg{Type: "hoverCost", Q: coord.Q, R: coord.R})
		return
	}
	cost, ok := engine.CaptureCost(g.cfg, board, c.PlayerID, coord, g.pointsLookup(ctx))
	msg := hoverCostMsg{Type: "hoverCost", Q: coord.Q, R: coord.R}
	if ok {
		msg.Cost = &cost
	}
	c.Send(msg)
}

// econTick credits base income to every participant once per tick. Ticks do
// not broadcast; clients poll with requestPointsUpdate. When the store is
// unavailable the loop backs off for a full interval instead of hammering it.
func (g *GameRoom) econTick() {
	if g.closed {
		return
	}
	defer func() {
		g.econTimer = g.room.Schedule(g.cfg.TickInterval, g.econTick)
	}()
	if !g.st.KV().Available() {
		return
	}
	ctx := g.ctx()
	for playerID, gp := range g.allowed {
		if gp.client == nil {
			continue
		}
		pp, err := g.st.GetPlayerPoints(ctx, g.gameID, playerID)
		if err != nil {
			g.log().Warn("economy tick read failed", zap.Error(err))
			continue
		}
		if _, err := g.st.UpdatePlayerPoints(ctx, g.gameID, playerID, pp.Points+g.cfg.BaseIncome); err != nil {
			g.log().Warn("economy tick write failed", zap.Error(err))
		}
	}
}

// autoExpandTick scans one board snapshot for majority-surrounded hexes and
// applies the captures afterwards, so no flip feeds another in the same pass.
func (g *GameRoom) autoExpandTick() {
	if g.closed {
		return
	}
	defer func() {
		g.expandTimer = g.room.Schedule(g.cfg.AutoExpandInterval, g.autoExpandTick)
	}()
	if !g.st.KV().Available() {
		return
	}

	ctx := g.ctx()
	board, err := g.st.GetAllHexes(ctx, g.gameID)
	if err != nil {
		g.log().Warn("auto-expand scan failed", zap.Error(err))
		return
	}

	captures := engine.AutoExpandScan(g.cfg, board)
	if len(captures) == 0 {
		return
	}

	now := time.Now().UnixMilli()
	touched := make(map[string]struct{})
	for _, ac := range captures {
		gp, ok := g.allowed[ac.PlayerID]
		if !ok {
			continue
		}
		if err := g.st.SetHex(ctx, g.gameID, ac.Coord, engine.Tile{
			PlayerID:    ac.PlayerID,
			Color:       gp.color,
			CaptureTime: now,
		}); err != nil {
			g.log().Warn("auto-expand write failed", zap.Error(err))
			continue
		}
		g.saveEvent(ac.PlayerID, gp.color, ac.Coord, engine.EventAutoCapture, now)
		g.room.Broadcast(updateMsg{
			Type: "update", Q: ac.Coord.Q, R: ac.Coord.R, Color: gp.color,
		})
		touched[ac.PlayerID] = struct{}{}
		if ac.PrevOwner != "" {
			touched[ac.PrevOwner] = struct{}{}
		}
	}
	for playerID := range touched {
		g.broadcastPoints(playerID)
	}
}

// cleanup closes the game after the grace window passes with nobody
// connected.
func (g *GameRoom) cleanup() {
	if g.closed {
		return
	}
	for _, p := range g.allowed {
		if p.client != nil {
			return
		}
	}
	g.log().Info("closing abandoned game")
	if err := g.st.CloseGame(g.ctx(), g.gameID); err != nil {
		g.log().Warn("game close failed", zap.Error(err))
	}
	g.hub.RemoveRoom(g.gameID)
}

// sendHistory replays the current board to one client, terrain included.
func (g *GameRoom) sendHistory(c *ws.Client) {
	board, err := g.st.GetAllHexes(g.ctx(), g.gameID)
	if err != nil {
		g.log().Warn("history load failed", zap.Error(err))
		c.Send(historyMsg{Type: "history", Hexes: []historyEntry{}})
		return
	}
	entries := make([]historyEntry, 0, len(board))
	for coord, tile := range board {
		entries = append(entries, historyEntry{
			Q: coord.Q, R: coord.R,
			Color:   tile.Color,
			Crown:   tile.IsStart,
			Upgrade: string(tile.Upgrade),
			Terrain: string(tile.Terrain),
		})
	}
	c.Send(historyMsg{Type: "history", Hexes: entries})
}

// broadcastPoints pushes a player's fresh points row to everyone.
func (g *GameRoom) broadcastPoints(playerID string) {
	msg, ok := g.pointsMsg(playerID)
	if ok {
		g.room.Broadcast(msg)
	}
}

func (g *GameRoom) sendPointsTo(c *ws.Client, playerID string) {
	msg, ok := g.pointsMsg(playerID)
	if ok {
		c.Send(msg)
	}
}

func (g *GameRoom) pointsMsg(playerID string) (pointsUpdateMsg, bool) {
	ctx := g.ctx()
	pp, err := g.st.GetPlayerPoints(ctx, g.gameID, playerID)
	if err != nil {
		g.log().Warn("points read failed", zap.Error(err))
		return pointsUpdateMsg{}, false
	}
	board, err := g.st.GetAllHexes(ctx, g.gameID)
	if err != nil {
		g.log().Warn("board read failed", zap.Error(err))
		return pointsUpdateMsg{}, false
	}
	return pointsUpdateMsg{
		Type:      "pointsUpdate",
		PlayerID:  playerID,
		Points:    pp.Points,
		Tiles:     board.Tiles(playerID),
		MaxPoints: pp.MaxPoints,
	}, true
}

// pointsLookup adapts the store to the cost model's defender-points hook.
func (g *GameRoom) pointsLookup(ctx context.Context) engine.PointsLookup {
	return func(playerID string) int {
		pp, err := g.st.GetPlayerPoints(ctx, g.gameID, playerID)
		if err != nil {
			return 0
		}
		return pp.Points
	}
}

func (g *GameRoom) saveEvent(playerID, color string, c hexgrid.Coord, et engine.EventType, ts int64) {
	err := g.st.SaveGameEvent(g.ctx(), engine.Event{
		GameID:    g.gameID,
		PlayerID:  playerID,
		Color:     color,
		Q:         c.Q,
		R:         c.R,
		EventType: et,
		Timestamp: ts,
	})
	if err != nil {
		g.log().Warn("event append failed", zap.Error(err))
	}
}

// failClosed is the generic storage-failure rejection. Handlers call it
// before any points leave the player's balance, so a retry is always safe.
func (g *GameRoom) failClosed(c hexgrid.Coord, err error) fillResult {
	g.log().Warn("operation failed closed", zap.Error(err))
	return fillResult{Q: c.Q, R: c.R, Reason: reasonUnavailable}
}
