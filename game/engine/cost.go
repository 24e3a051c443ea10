package engine

import (
	"math"

	"github.com/hexfray/hexfray/game/config"
	"github.com/hexfray/hexfray/game/hexgrid"
)

// Cap bonuses granted by holdings. Part of the economy contract:
// maxPoints = startingMaxPoints + 50 per bank + 5 per tile.
const (
	BankCapBonus = 50
	TileCapBonus = 5
)

// MaxPoints computes a player's point cap from their holdings.
func MaxPoints(cfg *config.Config, banks, tiles int) int {
	return cfg.StartingMaxPoints + BankCapBonus*banks + TileCapBonus*tiles
}

// PointsLookup resolves a player's current points. The cost model needs the
// defender's points without the engine reaching into storage itself.
type PointsLookup func(playerID string) int

// ExpansionCost is the base cost of taking any hex, growing logarithmically
// with the attacker's territory.
func ExpansionCost(cfg *config.Config, attackerTiles int) int {
	growth := math.Floor(float64(cfg.ExpGrowth) * math.Log2(float64(attackerTiles)+2))
	return cfg.HexValue + int(growth)
}

// CaptureCost computes what the attacker would pay for the hex at c.
// ok is false when the hex is not a capture target at all: the attacker
// already owns it, or terrain forbids ownership.
//
// The same function backs hoverCost responses and the actual charge, so the
// number shown is always the number debited.
func CaptureCost(cfg *config.Config, b Board, attacker string, c hexgrid.Coord, points PointsLookup) (cost int, ok bool) {
	target := b[c]
	if target.PlayerID == attacker && attacker != "" {
		return 0, false
	}
	if !target.Claimable() {
		return 0, false
	}

	cost = ExpansionCost(cfg, b.Tiles(attacker))

	if b.AdjacentToRiver(c) && b.HasRiverAccess(attacker) {
		cost = int(math.Floor(float64(cost) * 0.7))
		if cost < 1 {
			cost = 1
		}
	}

	if target.PlayerID != "" {
		attackCost := ExpansionCost(cfg, b.Tiles(attacker)) + cfg.OccupiedBase +
			int(math.Floor(cfg.AttackMult*math.Sqrt(defenderStrength(cfg, b, c, target, points))))
		if attackCost > cost {
			cost = attackCost
		}
	}
	return cost, true
}

// defenderStrength models how hard an occupied hex resists capture: defenders
// with concentrated points on few tiles are strong, and a fort on the target
// or on a defender-owned neighbor doubles the result.
func defenderStrength(cfg *config.Config, b Board, c hexgrid.Coord, target Tile, points PointsLookup) float64 {
	defender := target.PlayerID
	tiles := b.Tiles(defender)
	if tiles < 1 {
		tiles = 1
	}
	p := 0
	if points != nil {
		p = points(defender)
	}

	strength := (1 + float64(p)/float64(tiles)) * float64(tiles) * (float64(cfg.HexValue) + 0.5)

	fortified := target.Upgrade == UpgradeFort
	if !fortified {
		for _, n := range c.Neighbors() {
			if nt := b[n]; nt.Upgrade == UpgradeFort && nt.PlayerID == defender {
				fortified = true
				break
			}
		}
	}
	if fortified {
		strength *= 2
	}
	return strength
}

// CanReach applies the click-path adjacency rule: the target must touch the
// attacker's territory, unless the attacker owns nothing yet, or the target
// is adjacent to a river the attacker has access to.
func CanReach(b Board, attacker string, c hexgrid.Coord) bool {
	if b.Tiles(attacker) == 0 {
		return true
	}
	for _, n := range c.Neighbors() {
		if t := b[n]; t.PlayerID == attacker {
			return true
		}
	}
	return b.AdjacentToRiver(c) && b.HasRiverAccess(attacker)
}
