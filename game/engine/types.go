package engine

import (
	"github.com/hexfray/hexfray/game/hexgrid"
)

// Terrain marks a hex as impassable mountain or unclaimable river.
// The empty string is plain ground.
type Terrain string

const (
	TerrainNone     Terrain = ""
	TerrainMountain Terrain = "mountain"
	TerrainRiver    Terrain = "river"
)

// Upgrade is a structure built on an owned hex.
type Upgrade string

const (
	UpgradeNone Upgrade = ""
	UpgradeBank Upgrade = "bank"
	UpgradeFort Upgrade = "fort"
	UpgradeCity Upgrade = "city"
)

// ValidUpgrade reports whether u names a buildable upgrade.
func ValidUpgrade(u Upgrade) bool {
	return u == UpgradeBank || u == UpgradeFort || u == UpgradeCity
}

// Tile is the state of one hex. A zero Tile is an untouched hex.
type Tile struct {
	PlayerID    string  `json:"playerId,omitempty"`
	Color       string  `json:"color,omitempty"`
	Upgrade     Upgrade `json:"upgrade,omitempty"`
	Terrain     Terrain `json:"terrain,omitempty"`
	CaptureTime int64   `json:"captureTime,omitempty"`
	IsStart     bool    `json:"isStart,omitempty"`
}

// Passable reports whether the tile can be entered or targeted at all.
// Only mountains are impassable.
func (t Tile) Passable() bool {
	return t.Terrain != TerrainMountain
}

// Claimable reports whether the tile can ever carry an owner.
// Mountains and rivers cannot.
func (t Tile) Claimable() bool {
	return t.Terrain == TerrainNone
}

// Board is the full hex state of one game, keyed by axial coordinate.
// Absent coordinates are untouched ground.
type Board map[hexgrid.Coord]Tile

// Tiles counts the hexes owned by playerID.
func (b Board) Tiles(playerID string) int {
	n := 0
	for _, t := range b {
		if t.PlayerID == playerID && playerID != "" {
			n++
		}
	}
	return n
}

// UpgradeCounts tallies a player's structures under the lowercase keys
// banks, forts and cities.
func (b Board) UpgradeCounts(playerID string) map[string]int {
	counts := map[string]int{"banks": 0, "forts": 0, "cities": 0}
	for _, t := range b {
		if t.PlayerID != playerID || playerID == "" {
			continue
		}
		switch t.Upgrade {
		case UpgradeBank:
			counts["banks"]++
		case UpgradeFort:
			counts["forts"]++
		case UpgradeCity:
			counts["cities"]++
		}
	}
	return counts
}

// Passable reports whether the hex at c can be entered or targeted.
func (b Board) Passable(c hexgrid.Coord) bool {
	return b[c].Passable()
}

// AdjacentToRiver reports whether any of c's six neighbors is a river cell.
func (b Board) AdjacentToRiver(c hexgrid.Coord) bool {
	for _, n := range c.Neighbors() {
		if b[n].Terrain == TerrainRiver {
			return true
		}
	}
	return false
}

// HasRiverAccess reports whether playerID owns at least one hex adjacent to
// a river cell.
func (b Board) HasRiverAccess(playerID string) bool {
	if playerID == "" {
		return false
	}
	for c, t := range b {
		if t.PlayerID == playerID && b.AdjacentToRiver(c) {
			return true
		}
	}
	return false
}

// PlayerPoints is a player's economy row within one game.
type PlayerPoints struct {
	Points     int   `json:"points"`
	MaxPoints  int   `json:"maxPoints"`
	StartQ     int   `json:"startQ"`
	StartR     int   `json:"startR"`
	Started    bool  `json:"started"`
	LastUpdate int64 `json:"lastUpdate"`
}

// EventType classifies entries of the per-game event log.
type EventType string

const (
	EventStart       EventType = "start"
	EventCapture     EventType = "capture"
	EventAutoCapture EventType = "auto-capture"
	EventUpgrade     EventType = "upgrade"
)

// Event is one append-only log entry. Replaying a game's events in order
// reproduces its ownership history.
type Event struct {
	GameID    string    `json:"gameId"`
	PlayerID  string    `json:"playerId"`
	Color     string    `json:"color"`
	Q         int       `json:"q"`
	R         int       `json:"r"`
	EventType EventType `json:"eventType"`
	Timestamp int64     `json:"timestamp"`
}
