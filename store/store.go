package store

import (
	"errors"

	"github.com/hexfray/hexfray/game/config"
	"github.com/hexfray/hexfray/kv"
)

// Sentinel errors for domain lookups. Missing hexes are modeled as absent
// values, not errors.
var (
	ErrPlayerNotFound = errors.New("store: player not found")
	ErrLobbyNotFound  = errors.New("store: lobby not found")
	ErrGameNotFound   = errors.New("store: game not found")
)

// Store implements every persistent domain operation as a pure function of
// the KV facade. It holds no game state of its own, so any number of
// processes sharing the same backend see the same world.
type Store struct {
	kv  *kv.Client
	cfg *config.Config
}

// New creates a store over the given KV client.
func New(client *kv.Client, cfg *config.Config) *Store {
	return &Store{kv: client, cfg: cfg}
}

// KV exposes the underlying client for liveness checks.
func (s *Store) KV() *kv.Client {
	return s.kv
}

// Config returns the tunables the store was built with.
func (s *Store) Config() *config.Config {
	return s.cfg
}
