package store

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Status values shared by lobbies and games.
const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// Lobby is the staging area players wait in before a game starts.
type Lobby struct {
	ID             string `json:"id"`
	CreatedAt      int64  `json:"createdAt"`
	Status         string `json:"status"`
	LobbyStartTime int64  `json:"lobbyStartTime"`
}

// CreateLobby allocates a new active lobby.
func (s *Store) CreateLobby(ctx context.Context) (Lobby, error) {
	now := time.Now().UnixMilli()
	l := Lobby{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Status:    StatusActive,
	}
	if err := s.kv.HashSet(ctx, lobbyDataKey(l.ID),
		"id", l.ID,
		"createdAt", strconv.FormatInt(l.CreatedAt, 10),
		"status", l.Status,
		"lobbyStartTime", "0",
	); err != nil {
		return Lobby{}, err
	}
	if err := s.kv.ZSetAdd(ctx, keyLobbiesActive, float64(now), l.ID); err != nil {
		return Lobby{}, err
	}
	return l, nil
}

// GetLobby loads a lobby by id.
func (s *Store) GetLobby(ctx context.Context, lobbyID string) (Lobby, error) {
	fields, err := s.kv.HashGetAll(ctx, lobbyDataKey(lobbyID))
	if err != nil {
		return Lobby{}, err
	}
	if len(fields) == 0 {
		return Lobby{}, ErrLobbyNotFound
	}
	createdAt, _ := strconv.ParseInt(fields["createdAt"], 10, 64)
	startTime, _ := strconv.ParseInt(fields["lobbyStartTime"], 10, 64)
	return Lobby{
		ID:             fields["id"],
		CreatedAt:      createdAt,
		Status:         fields["status"],
		LobbyStartTime: startTime,
	}, nil
}

// CloseLobby marks the lobby closed and drops it from the active index.
func (s *Store) CloseLobby(ctx context.Context, lobbyID string) error {
	if err := s.kv.HashSet(ctx, lobbyDataKey(lobbyID), "status", StatusClosed); err != nil {
		return err
	}
	return s.kv.ZSetRem(ctx, keyLobbiesActive, lobbyID)
}

// SetLobbyStartTime records the countdown kickoff timestamp.
func (s *Store) SetLobbyStartTime(ctx context.Context, lobbyID string, ts int64) error {
	return s.kv.HashSet(ctx, lobbyDataKey(lobbyID), "lobbyStartTime", strconv.FormatInt(ts, 10))
}

// AddLobbyPlayer adds a player to the lobby's presence set.
func (s *Store) AddLobbyPlayer(ctx context.Context, lobbyID, playerID string) error {
	return s.kv.SetAdd(ctx, lobbyPlayersKey(lobbyID), playerID)
}

// RemoveLobbyPlayer removes a player from the lobby's presence set.
func (s *Store) RemoveLobbyPlayer(ctx context.Context, lobbyID, playerID string) error {
	return s.kv.SetRem(ctx, lobbyPlayersKey(lobbyID), playerID)
}

// LobbyPlayers lists players present in the lobby.
func (s *Store) LobbyPlayers(ctx context.Context, lobbyID string) ([]string, error) {
	return s.kv.SetMembers(ctx, lobbyPlayersKey(lobbyID))
}

// ActiveLobbies lists open lobby ids, oldest first.
func (s *Store) ActiveLobbies(ctx context.Context) ([]string, error) {
	return s.kv.ZSetRange(ctx, keyLobbiesActive, 0, -1)
}
