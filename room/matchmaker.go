package room

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hexfray/hexfray/auth"
	"github.com/hexfray/hexfray/game/config"
	"github.com/hexfray/hexfray/game/engine"
	"github.com/hexfray/hexfray/logger"
	"github.com/hexfray/hexfray/store"
	ws "github.com/hexfray/hexfray/transport/websocket"
)

// Matchmaker allocates rooms: it finds or creates lobbies, turns ready lobby
// rosters into game rooms, spins up replay rooms, and rebuilds game rooms for
// matches that were active when the process last stopped.
//
// The hub enforces one room per id; the matchmaker's own lock only serializes
// the find-or-create lobby scan.
type Matchmaker struct {
	cfg  *config.Config
	st   *store.Store
	auth *auth.Service
	hub  *ws.Hub

	mu sync.Mutex
}

func nowMillis() int64 { return time.Now().UnixMilli() }

// NewMatchmaker wires the room factory.
func NewMatchmaker(cfg *config.Config, st *store.Store, authsvc *auth.Service, hub *ws.Hub) *Matchmaker {
	return &Matchmaker{cfg: cfg, st: st, auth: authsvc, hub: hub}
}

// JoinLobby returns the id of an open lobby with spare capacity, creating one
// when every existing lobby is full or stale.
func (m *Matchmaker) JoinLobby(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lobbyIDs, err := m.st.ActiveLobbies(ctx)
	if err != nil {
		return "", err
	}
	for _, id := range lobbyIDs {
		if _, hosted := m.hub.Room(id); !hosted {
			// Active in the store but not hosted here: a leftover from a
			// previous process. Rehost it instead of leaking lobbies.
			lr := NewLobbyRoom(m.cfg, m.st, m.auth, m, id)
			r, err := m.hub.AddRoom(lr)
			if err != nil {
				continue
			}
			lr.Attach(r)
		}
		present, err := m.st.LobbyPlayers(ctx, id)
		if err != nil {
			return "", err
		}
		if len(present) < m.cfg.LobbyCapacity {
			return id, nil
		}
	}

	l, err := m.st.CreateLobby(ctx)
	if err != nil {
		return "", err
	}
	lr := NewLobbyRoom(m.cfg, m.st, m.auth, m, l.ID)
	r, err := m.hub.AddRoom(lr)
	if err != nil {
		return "", err
	}
	lr.Attach(r)
	logger.L().Info("lobby created", zap.String("lobby_id", l.ID))
	return l.ID, nil
}

// CreateGame persists a new game for the ready players, generates its
// terrain, and hosts its room. The game id doubles as the room id.
func (m *Matchmaker) CreateGame(ctx context.Context, ready []store.StartPlayer) (string, error) {
	if len(ready) < m.cfg.MinReady {
		return "", fmt.Errorf("need at least %d ready players, got %d", m.cfg.MinReady, len(ready))
	}

	gameID := uuid.NewString()
	seed := m.cfg.TerrainSeed
	if seed == 0 {
		seed = rand.Int63()
	}

	g, err := m.st.CreateGame(ctx, gameID, ready, nowMillis(), seed)
	if err != nil {
		return "", err
	}
	terrain := engine.GenerateTerrain(m.cfg, seed)
	if err := m.st.SaveTerrain(ctx, gameID, terrain); err != nil {
		return "", err
	}

	gr := NewGameRoom(m.cfg, m.st, m.auth, m.hub, g)
	r, err := m.hub.AddRoom(gr)
	if err != nil {
		return "", err
	}
	gr.Attach(r)
	logger.WithGameContext(gameID, "").Info("game created",
		zap.Int("players", len(ready)), zap.Int64("seed", seed),
		zap.Int("terrain_cells", len(terrain)))
	return gameID, nil
}

// CreateReplay loads a game's event log into a fresh replay room and returns
// the room id.
func (m *Matchmaker) CreateReplay(ctx context.Context, gameID string) (string, error) {
	if _, err := m.st.GetGame(ctx, gameID); err != nil {
		return "", err
	}
	events, err := m.st.GetGameEvents(ctx, gameID)
	if err != nil {
		return "", err
	}

	roomID := "replay-" + uuid.NewString()
	rr := NewReplayRoom(m.cfg, m.hub, roomID, gameID, events)
	r, err := m.hub.AddRoom(rr)
	if err != nil {
		return "", err
	}
	rr.Attach(r)
	logger.WithGameContext(gameID, "").Info("replay created",
		zap.String("room_id", roomID), zap.Int("events", len(events)))
	return roomID, nil
}

// RestoreActiveRooms rehosts every game the store still marks active, so a
// restart does not strand players mid-match. Board and economy state live in
// the store; only the actors need rebuilding.
func (m *Matchmaker) RestoreActiveRooms(ctx context.Context) error {
	gameIDs, err := m.st.ActiveGames(ctx)
	if err != nil {
		return err
	}
	restored := 0
	for _, id := range gameIDs {
		if _, hosted := m.hub.Room(id); hosted {
			continue
		}
		g, err := m.st.GetGame(ctx, id)
		if err != nil {
			logger.WithGameContext(id, "").Warn("skipping unreadable active game", zap.Error(err))
			continue
		}
		gr := NewGameRoom(m.cfg, m.st, m.auth, m.hub, g)
		r, err := m.hub.AddRoom(gr)
		if err != nil {
			continue
		}
		gr.Attach(r)
		restored++
	}
	if restored > 0 {
		logger.L().Info("restored active games", zap.Int("count", restored))
	}
	return nil
}
