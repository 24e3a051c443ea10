package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hexfray/hexfray/game/engine"
	"github.com/hexfray/hexfray/game/hexgrid"
	"github.com/hexfray/hexfray/kv"
)

// CalculateMaxPoints derives a player's point cap from the board: the single
// source of truth for caps. Banks and tiles are counted from a fresh scan.
func (s *Store) CalculateMaxPoints(ctx context.Context, gameID, playerID string) (int, error) {
	board, err := s.GetAllHexes(ctx, gameID)
	if err != nil {
		return 0, err
	}
	counts := board.UpgradeCounts(playerID)
	return engine.MaxPoints(s.cfg, counts["banks"], board.Tiles(playerID)), nil
}

// GetPlayerPoints loads a player's economy row. A missing row initializes to
// the starting values; an existing row gets its cap recomputed so callers
// never see a stale maxPoints.
func (s *Store) GetPlayerPoints(ctx context.Context, gameID, playerID string) (engine.PlayerPoints, error) {
	raw, err := s.kv.HashGet(ctx, gamePointsKey(gameID), playerID)
	if errors.Is(err, kv.ErrNil) {
		pp := engine.PlayerPoints{
			Points:     s.cfg.StartingPoints,
			MaxPoints:  s.cfg.StartingMaxPoints,
			LastUpdate: time.Now().UnixMilli(),
		}
		if err := s.writePlayerPoints(ctx, gameID, playerID, pp); err != nil {
			return engine.PlayerPoints{}, err
		}
		return pp, nil
	}
	if err != nil {
		return engine.PlayerPoints{}, err
	}

	var pp engine.PlayerPoints
	if err := json.Unmarshal([]byte(raw), &pp); err != nil {
		return engine.PlayerPoints{}, fmt.Errorf("unmarshal points: %w", err)
	}
	maxPoints, err := s.CalculateMaxPoints(ctx, gameID, playerID)
	if err != nil {
		return engine.PlayerPoints{}, err
	}
	pp.MaxPoints = maxPoints
	if pp.Points > pp.MaxPoints {
		pp.Points = pp.MaxPoints
	}
	return pp, nil
}

// UpdatePlayerPoints writes a new points balance clamped to
// [0, calculateMaxPoints]. Start coordinates are preserved.
func (s *Store) UpdatePlayerPoints(ctx context.Context, gameID, playerID string, points int) (engine.PlayerPoints, error) {
	pp, err := s.GetPlayerPoints(ctx, gameID, playerID)
	if err != nil {
		return engine.PlayerPoints{}, err
	}
	maxPoints, err := s.CalculateMaxPoints(ctx, gameID, playerID)
	if err != nil {
		return engine.PlayerPoints{}, err
	}
	if points < 0 {
		points = 0
	}
	if points > maxPoints {
		points = maxPoints
	}
	pp.Points = points
	pp.MaxPoints = maxPoints
	pp.LastUpdate = time.Now().UnixMilli()
	if err := s.writePlayerPoints(ctx, gameID, playerID, pp); err != nil {
		return engine.PlayerPoints{}, err
	}
	return pp, nil
}

// SetPlayerStart records the player's chosen start hex.
func (s *Store) SetPlayerStart(ctx context.Context, gameID, playerID string, c hexgrid.Coord) error {
	pp, err := s.GetPlayerPoints(ctx, gameID, playerID)
	if err != nil {
		return err
	}
	pp.StartQ = c.Q
	pp.StartR = c.R
	pp.Started = true
	pp.LastUpdate = time.Now().UnixMilli()
	return s.writePlayerPoints(ctx, gameID, playerID, pp)
}

func (s *Store) writePlayerPoints(ctx context.Context, gameID, playerID string, pp engine.PlayerPoints) error {
	raw, err := json.Marshal(pp)
	if err != nil {
		return fmt.Errorf("marshal points: %w", err)
	}
	return s.kv.HashSet(ctx, gamePointsKey(gameID), playerID, string(raw))
}
