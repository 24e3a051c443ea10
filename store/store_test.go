package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexfray/hexfray/game/config"
	"github.com/hexfray/hexfray/game/engine"
	"github.com/hexfray/hexfray/game/hexgrid"
	"github.com/hexfray/hexfray/kv"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := kv.New(mr.Addr(), 2)
	t.Cleanup(func() { _ = client.Close() })
	return New(client, config.Default()), mr
}

func TestPlayerLifecycle(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	p, err := st.CreatePlayer(ctx, "Alice", "#e74c3c")
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)

	got, err := st.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Username)
	assert.Equal(t, "#e74c3c", got.Color)

	_, err = st.GetPlayer(ctx, "no-such-player")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	// Case-insensitive username lookup.
	found, ok, err := st.FindPlayerByUsername(ctx, "aLiCe")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p.ID, found.ID)

	_, ok, err = st.FindPlayerByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.SetPlayerColor(ctx, p.ID, "#3498db"))
	got, err = st.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "#3498db", got.Color)
}

func TestPlayerSessionTTL(t *testing.T) {
	st, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetPlayerSession(ctx, "p1", "sess-1"))
	sess, err := st.GetPlayerSession(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sess)

	mr.FastForward(2 * time.Hour)
	sess, err = st.GetPlayerSession(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, sess)
}

func TestLobbyLifecycle(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	l, err := st.CreateLobby(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, l.Status)

	active, err := st.ActiveLobbies(ctx)
	require.NoError(t, err)
	assert.Contains(t, active, l.ID)

	require.NoError(t, st.AddLobbyPlayer(ctx, l.ID, "p1"))
	require.NoError(t, st.AddLobbyPlayer(ctx, l.ID, "p2"))
	players, err := st.LobbyPlayers(ctx, l.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p2"}, players)

	require.NoError(t, st.RemoveLobbyPlayer(ctx, l.ID, "p1"))
	players, err = st.LobbyPlayers(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, players)

	require.NoError(t, st.CloseLobby(ctx, l.ID))
	got, err := st.GetLobby(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, got.Status)
	active, err = st.ActiveLobbies(ctx)
	require.NoError(t, err)
	assert.NotContains(t, active, l.ID)

	_, err = st.GetLobby(ctx, "missing")
	assert.ErrorIs(t, err, ErrLobbyNotFound)
}

func TestGameLifecycle(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	roster := []StartPlayer{
		{PlayerID: "p1", Username: "alice", Color: "#e74c3c"},
		{PlayerID: "p2", Username: "bob", Color: "#3498db"},
	}
	g, err := st.CreateGame(ctx, "game-1", roster, 12345, 42)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, g.Status)

	got, err := st.GetGame(ctx, "game-1")
	require.NoError(t, err)
	assert.Equal(t, roster, got.StartPlayers)
	assert.Equal(t, int64(12345), got.LobbyStartTime)
	assert.Equal(t, int64(42), got.TerrainSeed)

	players, err := st.GamePlayers(ctx, "game-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p2"}, players)

	active, err := st.ActiveGames(ctx)
	require.NoError(t, err)
	assert.Contains(t, active, "game-1")

	require.NoError(t, st.CloseGame(ctx, "game-1"))
	got, err = st.GetGame(ctx, "game-1")
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, got.Status)
	active, err = st.ActiveGames(ctx)
	require.NoError(t, err)
	assert.NotContains(t, active, "game-1")

	_, err = st.GetGame(ctx, "missing")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestSetHexOverwritesUpgrade(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	c := hexgrid.Coord{Q: 1, R: 2}

	require.NoError(t, st.SetHex(ctx, "g", c, engine.Tile{
		PlayerID: "p1", Color: "#e74c3c", Upgrade: engine.UpgradeFort,
	}))

	// A capture-style full overwrite drops the fort.
	require.NoError(t, st.SetHex(ctx, "g", c, engine.Tile{
		PlayerID: "p2", Color: "#3498db",
	}))
	tile, ok, err := st.GetHex(ctx, "g", c)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "p2", tile.PlayerID)
	assert.Equal(t, engine.UpgradeNone, tile.Upgrade)
}

func TestSetHexUpgradePreservesOwnership(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	c := hexgrid.Coord{Q: 0, R: 0}

	require.NoError(t, st.SetHex(ctx, "g", c, engine.Tile{
		PlayerID: "p1", Color: "#e74c3c", IsStart: true, CaptureTime: 111,
	}))
	require.NoError(t, st.SetHexUpgrade(ctx, "g", c, engine.UpgradeBank))

	tile, ok, err := st.GetHex(ctx, "g", c)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "p1", tile.PlayerID)
	assert.Equal(t, engine.UpgradeBank, tile.Upgrade)
	assert.True(t, tile.IsStart)
	assert.Equal(t, int64(111), tile.CaptureTime)

	// Upgrading an untouched hex is an error.
	err = st.SetHexUpgrade(ctx, "g", hexgrid.Coord{Q: 9, R: 9}, engine.UpgradeBank)
	assert.Error(t, err)
}

func TestGetHexMissing(t *testing.T) {
	st, _ := newTestStore(t)
	_, ok, err := st.GetHex(context.Background(), "g", hexgrid.Coord{Q: 5, R: 5})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveTerrainAndPassability(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	terrain := map[hexgrid.Coord]engine.Terrain{
		{Q: 0, R: 0}: engine.TerrainMountain,
		{Q: 1, R: 0}: engine.TerrainRiver,
	}
	require.NoError(t, st.SaveTerrain(ctx, "g", terrain))

	passable, err := st.IsHexPassable(ctx, "g", hexgrid.Coord{Q: 0, R: 0})
	require.NoError(t, err)
	assert.False(t, passable)

	passable, err = st.IsHexPassable(ctx, "g", hexgrid.Coord{Q: 1, R: 0})
	require.NoError(t, err)
	assert.True(t, passable)

	passable, err = st.IsHexPassable(ctx, "g", hexgrid.Coord{Q: 9, R: 9})
	require.NoError(t, err)
	assert.True(t, passable)

	board, err := st.GetAllHexes(ctx, "g")
	require.NoError(t, err)
	assert.Len(t, board, 2)
	assert.Equal(t, engine.TerrainRiver, board[hexgrid.Coord{Q: 1, R: 0}].Terrain)
}

func TestPlayerPointsInitAndClamp(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	cfg := st.Config()

	// First read initializes to the starting values.
	pp, err := st.GetPlayerPoints(ctx, "g", "p1")
	require.NoError(t, err)
	assert.Equal(t, cfg.StartingPoints, pp.Points)
	assert.Equal(t, cfg.StartingMaxPoints, pp.MaxPoints)
	assert.False(t, pp.Started)

	// One owned tile lifts the cap by the tile bonus.
	require.NoError(t, st.SetHex(ctx, "g", hexgrid.Coord{Q: 0, R: 0}, engine.Tile{
		PlayerID: "p1", Color: "#e74c3c",
	}))
	pp, err = st.UpdatePlayerPoints(ctx, "g", "p1", 10_000)
	require.NoError(t, err)
	assert.Equal(t, 205, pp.Points)
	assert.Equal(t, 205, pp.MaxPoints)

	// Debits clamp at zero.
	pp, err = st.UpdatePlayerPoints(ctx, "g", "p1", -50)
	require.NoError(t, err)
	assert.Equal(t, 0, pp.Points)
}

func TestSetPlayerStart(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetPlayerStart(ctx, "g", "p1", hexgrid.Coord{Q: 3, R: -2}))
	pp, err := st.GetPlayerPoints(ctx, "g", "p1")
	require.NoError(t, err)
	assert.True(t, pp.Started)
	assert.Equal(t, 3, pp.StartQ)
	assert.Equal(t, -2, pp.StartR)

	// A later balance write keeps the start.
	pp, err = st.UpdatePlayerPoints(ctx, "g", "p1", 100)
	require.NoError(t, err)
	assert.True(t, pp.Started)
	assert.Equal(t, 3, pp.StartQ)
}

func TestGameEventsOrder(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	for i, et := range []engine.EventType{engine.EventStart, engine.EventCapture, engine.EventUpgrade} {
		require.NoError(t, st.SaveGameEvent(ctx, engine.Event{
			GameID:    "g",
			PlayerID:  "p1",
			Q:         i,
			EventType: et,
			Timestamp: int64(1000 + i),
		}))
	}

	events, err := st.GetGameEvents(ctx, "g")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, engine.EventStart, events[0].EventType)
	assert.Equal(t, engine.EventCapture, events[1].EventType)
	assert.Equal(t, engine.EventUpgrade, events[2].EventType)
	assert.Equal(t, 2, events[2].Q)
}
