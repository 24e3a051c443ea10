package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// StartPlayer snapshots a participant at game kickoff.
type StartPlayer struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	Color    string `json:"color"`
}

// Game is one match. Its id doubles as the room id hosting it.
type Game struct {
	ID             string        `json:"id"`
	CreatedAt      int64         `json:"createdAt"`
	Status         string        `json:"status"`
	StartPlayers   []StartPlayer `json:"startPlayers"`
	LobbyStartTime int64         `json:"lobbyStartTime"`
	TerrainSeed    int64         `json:"terrainSeed"`
}

// CreateGame persists a new active game with its kickoff roster and terrain
// seed, and indexes the participants.
func (s *Store) CreateGame(ctx context.Context, gameID string, startPlayers []StartPlayer, lobbyStartTime, terrainSeed int64) (Game, error) {
	now := time.Now().UnixMilli()
	g := Game{
		ID:             gameID,
		CreatedAt:      now,
		Status:         StatusActive,
		StartPlayers:   startPlayers,
		LobbyStartTime: lobbyStartTime,
		TerrainSeed:    terrainSeed,
	}
	snapshot, err := json.Marshal(startPlayers)
	if err != nil {
		return Game{}, fmt.Errorf("marshal start players: %w", err)
	}
	if err := s.kv.HashSet(ctx, gameDataKey(gameID),
		"id", g.ID,
		"createdAt", strconv.FormatInt(g.CreatedAt, 10),
		"status", g.Status,
		"startPlayers", string(snapshot),
		"lobbyStartTime", strconv.FormatInt(g.LobbyStartTime, 10),
		"terrainSeed", strconv.FormatInt(g.TerrainSeed, 10),
	); err != nil {
		return Game{}, err
	}
	for _, p := range startPlayers {
		if err := s.kv.SetAdd(ctx, gamePlayersKey(gameID), p.PlayerID); err != nil {
			return Game{}, err
		}
	}
	if err := s.kv.ZSetAdd(ctx, keyGamesActive, float64(now), gameID); err != nil {
		return Game{}, err
	}
	return g, nil
}

// GetGame loads a game by id.
func (s *Store) GetGame(ctx context.Context, gameID string) (Game, error) {
	fields, err := s.kv.HashGetAll(ctx, gameDataKey(gameID))
	if err != nil {
		return Game{}, err
	}
	if len(fields) == 0 {
		return Game{}, ErrGameNotFound
	}
	createdAt, _ := strconv.ParseInt(fields["createdAt"], 10, 64)
	startTime, _ := strconv.ParseInt(fields["lobbyStartTime"], 10, 64)
	seed, _ := strconv.ParseInt(fields["terrainSeed"], 10, 64)
	g := Game{
		ID:             fields["id"],
		CreatedAt:      createdAt,
		Status:         fields["status"],
		LobbyStartTime: startTime,
		TerrainSeed:    seed,
	}
	if raw := fields["startPlayers"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &g.StartPlayers); err != nil {
			return Game{}, fmt.Errorf("unmarshal start players: %w", err)
		}
	}
	return g, nil
}

// CloseGame marks the game closed and drops it from the active index.
func (s *Store) CloseGame(ctx context.Context, gameID string) error {
	if err := s.kv.HashSet(ctx, gameDataKey(gameID), "status", StatusClosed); err != nil {
		return err
	}
	return s.kv.ZSetRem(ctx, keyGamesActive, gameID)
}

// GamePlayers lists the participants of a game.
func (s *Store) GamePlayers(ctx context.Context, gameID string) ([]string, error) {
	return s.kv.SetMembers(ctx, gamePlayersKey(gameID))
}

// ActiveGames lists running game ids, oldest first.
func (s *Store) ActiveGames(ctx context.Context) ([]string, error) {
	return s.kv.ZSetRange(ctx, keyGamesActive, 0, -1)
}
