package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hexfray/hexfray/game/engine"
)

// Event log cap. LPUSH + LTRIM keeps the newest eventLogCap entries.
const eventLogCap = 10000

// SaveGameEvent appends an event to the game's log. The list holds at most
// eventLogCap entries; the oldest are trimmed away.
func (s *Store) SaveGameEvent(ctx context.Context, e engine.Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	key := gameEventsKey(e.GameID)
	if err := s.kv.ListLPush(ctx, key, string(raw)); err != nil {
		return err
	}
	return s.kv.ListLTrim(ctx, key, 0, eventLogCap-1)
}

// GetGameEvents returns the game's events in insertion order.
func (s *Store) GetGameEvents(ctx context.Context, gameID string) ([]engine.Event, error) {
	raws, err := s.kv.ListLRange(ctx, gameEventsKey(gameID), 0, -1)
	if err != nil {
		return nil, err
	}
	// LPUSH stores newest first; reverse back to insertion order.
	events := make([]engine.Event, 0, len(raws))
	for i := len(raws) - 1; i >= 0; i-- {
		var e engine.Event
		if err := json.Unmarshal([]byte(raws[i]), &e); err != nil {
			return nil, fmt.Errorf("unmarshal event: %w", err)
		}
		events = append(events, e)
	}
	return events, nil
}
