package store

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hexfray/hexfray/kv"
)

// Player is a registered identity. Players are created once and never
// destroyed; only color and lastSeen change afterwards.
type Player struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Color     string `json:"color"`
	CreatedAt int64  `json:"createdAt"`
	LastSeen  int64  `json:"lastSeen"`
}

// CreatePlayer registers a new player with the given username and color.
func (s *Store) CreatePlayer(ctx context.Context, username, color string) (Player, error) {
	now := time.Now().UnixMilli()
	p := Player{
		ID:        uuid.NewString(),
		Username:  username,
		Color:     color,
		CreatedAt: now,
		LastSeen:  now,
	}
	if err := s.kv.HashSet(ctx, playerDataKey(p.ID),
		"id", p.ID,
		"username", p.Username,
		"color", p.Color,
		"createdAt", strconv.FormatInt(p.CreatedAt, 10),
		"lastSeen", strconv.FormatInt(p.LastSeen, 10),
	); err != nil {
		return Player{}, err
	}
	if err := s.kv.ZSetAdd(ctx, keyPlayersActive, float64(now), p.ID); err != nil {
		return Player{}, err
	}
	return p, nil
}

// GetPlayer loads a player by id.
func (s *Store) GetPlayer(ctx context.Context, playerID string) (Player, error) {
	fields, err := s.kv.HashGetAll(ctx, playerDataKey(playerID))
	if err != nil {
		return Player{}, err
	}
	if len(fields) == 0 {
		return Player{}, ErrPlayerNotFound
	}
	return playerFromFields(fields), nil
}

// FindPlayerByUsername scans registered players for a case-insensitive
// username match. Registration keys uniqueness on this lookup.
func (s *Store) FindPlayerByUsername(ctx context.Context, username string) (Player, bool, error) {
	want := strings.ToLower(username)
	ids, err := s.kv.ZSetRange(ctx, keyPlayersActive, 0, -1)
	if err != nil {
		return Player{}, false, err
	}
	for _, id := range ids {
		p, err := s.GetPlayer(ctx, id)
		if errors.Is(err, ErrPlayerNotFound) {
			continue
		}
		if err != nil {
			return Player{}, false, err
		}
		if strings.ToLower(p.Username) == want {
			return p, true, nil
		}
	}
	return Player{}, false, nil
}

// SetPlayerColor updates a player's color.
func (s *Store) SetPlayerColor(ctx context.Context, playerID, color string) error {
	if _, err := s.GetPlayer(ctx, playerID); err != nil {
		return err
	}
	return s.kv.HashSet(ctx, playerDataKey(playerID), "color", color)
}

// TouchPlayer refreshes lastSeen and the active-players score.
func (s *Store) TouchPlayer(ctx context.Context, playerID string) error {
	now := time.Now().UnixMilli()
	if err := s.kv.HashSet(ctx, playerDataKey(playerID), "lastSeen", strconv.FormatInt(now, 10)); err != nil {
		return err
	}
	return s.kv.ZSetAdd(ctx, keyPlayersActive, float64(now), playerID)
}

// SetPlayerSession records the player's current session id with the session
// TTL. Writing a new session id implicitly evicts the previous one: only one
// session per player is ever current.
func (s *Store) SetPlayerSession(ctx context.Context, playerID, sessionID string) error {
	return s.kv.StringSet(ctx, playerSessionKey(playerID), sessionID, s.cfg.SessionTTL)
}

// GetPlayerSession returns the player's current session id, or "" when none
// is active.
func (s *Store) GetPlayerSession(ctx context.Context, playerID string) (string, error) {
	v, err := s.kv.StringGet(ctx, playerSessionKey(playerID))
	if errors.Is(err, kv.ErrNil) {
		return "", nil
	}
	return v, err
}

func playerFromFields(fields map[string]string) Player {
	createdAt, _ := strconv.ParseInt(fields["createdAt"], 10, 64)
	lastSeen, _ := strconv.ParseInt(fields["lastSeen"], 10, 64)
	return Player{
		ID:        fields["id"],
		Username:  fields["username"],
		Color:     fields["color"],
		CreatedAt: createdAt,
		LastSeen:  lastSeen,
	}
}
