package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hexfray/hexfray/game/engine"
	"github.com/hexfray/hexfray/game/hexgrid"
	"github.com/hexfray/hexfray/kv"
	"github.com/hexfray/hexfray/logger"
)

// SetHex fully overwrites the hex at c. Omitted fields of t are written as
// their zero values: a caller that wants to keep an existing upgrade or
// terrain must read-modify-write or use SetHexUpgrade. This keeps ownership
// transfer fully specified instead of silently inheriting state.
func (s *Store) SetHex(ctx context.Context, gameID string, c hexgrid.Coord, t engine.Tile) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal hex: %w", err)
	}
	return s.kv.HashSet(ctx, gameHexesKey(gameID), c.Key(), string(raw))
}

// GetHex reads the hex at c. ok is false for untouched hexes.
func (s *Store) GetHex(ctx context.Context, gameID string, c hexgrid.Coord) (engine.Tile, bool, error) {
	raw, err := s.kv.HashGet(ctx, gameHexesKey(gameID), c.Key())
	if errors.Is(err, kv.ErrNil) {
		return engine.Tile{}, false, nil
	}
	if err != nil {
		return engine.Tile{}, false, err
	}
	var t engine.Tile
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return engine.Tile{}, false, fmt.Errorf("unmarshal hex %s: %w", c.Key(), err)
	}
	return t, true, nil
}

// SetHexUpgrade read-modify-writes a single hex, changing only its upgrade.
// Owner, color, terrain and capture metadata are preserved.
func (s *Store) SetHexUpgrade(ctx context.Context, gameID string, c hexgrid.Coord, upgrade engine.Upgrade) error {
	t, ok, err := s.GetHex(ctx, gameID, c)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("hex %s has no state to upgrade", c.Key())
	}
	t.Upgrade = upgrade
	return s.SetHex(ctx, gameID, c, t)
}

// GetAllHexes loads the full board snapshot for a game. Corrupt entries are
// skipped with a log line rather than failing the whole read.
func (s *Store) GetAllHexes(ctx context.Context, gameID string) (engine.Board, error) {
	fields, err := s.kv.HashGetAll(ctx, gameHexesKey(gameID))
	if err != nil {
		return nil, err
	}
	board := make(engine.Board, len(fields))
	for field, raw := range fields {
		c, err := hexgrid.ParseKey(field)
		if err != nil {
			logger.WithGameContext(gameID, "").Warn("skipping malformed hex field",
				zap.String("field", field))
			continue
		}
		var t engine.Tile
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			logger.WithGameContext(gameID, "").Warn("skipping malformed hex value",
				zap.String("field", field))
			continue
		}
		board[c] = t
	}
	return board, nil
}

// SaveTerrain writes generated terrain cells as unowned hexes.
func (s *Store) SaveTerrain(ctx context.Context, gameID string, terrain map[hexgrid.Coord]engine.Terrain) error {
	if len(terrain) == 0 {
		return nil
	}
	pairs := make([]any, 0, len(terrain)*2)
	for c, tr := range terrain {
		raw, err := json.Marshal(engine.Tile{Terrain: tr})
		if err != nil {
			return fmt.Errorf("marshal terrain: %w", err)
		}
		pairs = append(pairs, c.Key(), string(raw))
	}
	return s.kv.HashSet(ctx, gameHexesKey(gameID), pairs...)
}

// IsHexPassable reports whether the hex at c can be entered. Untouched
// hexes are passable.
func (s *Store) IsHexPassable(ctx context.Context, gameID string, c hexgrid.Coord) (bool, error) {
	t, ok, err := s.GetHex(ctx, gameID, c)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return t.Passable(), nil
}
