package engine

import (
	"sort"

	"github.com/hexfray/hexfray/game/config"
	"github.com/hexfray/hexfray/game/hexgrid"
)

// AutoCapture is one ownership transfer decided by an auto-expansion scan.
type AutoCapture struct {
	Coord     hexgrid.Coord
	PlayerID  string
	PrevOwner string
}

// AutoExpandScan decides which hexes flip to the player surrounding them.
// The whole scan reads one board snapshot; captures are returned for the
// caller to apply afterwards, so a flip in this scan never enables another
// flip in the same scan.
//
// A hex flips only when a single player holds a strict majority of at least
// autoCaptureThreshold neighbors. Occupied hexes additionally require full
// enclosure or river access, and any fort on or next to the target owned by
// someone other than the majority player vetoes the flip.
func AutoExpandScan(cfg *config.Config, b Board) []AutoCapture {
	candidates := make(map[hexgrid.Coord]struct{}, len(b)*2)
	for c := range b {
		candidates[c] = struct{}{}
		for _, n := range c.Neighbors() {
			candidates[n] = struct{}{}
		}
	}

	var captures []AutoCapture
	for c := range candidates {
		target := b[c]
		if !target.Claimable() {
			continue
		}

		maxPlayer, maxCount := majorityNeighbor(b, c)
		if maxPlayer == "" || maxCount < cfg.AutoCaptureThreshold {
			continue
		}
		if target.PlayerID == maxPlayer {
			continue
		}

		if target.PlayerID != "" {
			if !fullyEnclosed(b, c, maxPlayer) &&
				!(b.AdjacentToRiver(c) && b.HasRiverAccess(maxPlayer)) {
				continue
			}
		}

		if fortProtected(b, c, target, maxPlayer) {
			continue
		}

		captures = append(captures, AutoCapture{
			Coord:     c,
			PlayerID:  maxPlayer,
			PrevOwner: target.PlayerID,
		})
	}

	// Stable order so the event log is reproducible for a given snapshot.
	sort.Slice(captures, func(i, j int) bool {
		a, b := captures[i].Coord, captures[j].Coord
		if a.Q != b.Q {
			return a.Q < b.Q
		}
		return a.R < b.R
	})
	return captures
}

// majorityNeighbor returns the player owning a strict maximum of c's
// neighbors. Ties return ("", 0): no capture on a tie.
func majorityNeighbor(b Board, c hexgrid.Coord) (string, int) {
	counts := make(map[string]int, 6)
	for _, n := range c.Neighbors() {
		if t := b[n]; t.PlayerID != "" {
			counts[t.PlayerID]++
		}
	}

	maxPlayer, maxCount, tied := "", 0, false
	for p, n := range counts {
		switch {
		case n > maxCount:
			maxPlayer, maxCount, tied = p, n, false
		case n == maxCount:
			tied = true
		}
	}
	if tied {
		return "", 0
	}
	return maxPlayer, maxCount
}

func fullyEnclosed(b Board, c hexgrid.Coord, playerID string) bool {
	for _, n := range c.Neighbors() {
		if b[n].PlayerID != playerID {
			return false
		}
	}
	return true
}

// fortProtected vetoes a flip when the target carries a foreign fort or any
// neighboring fort belongs to a player other than the would-be captor.
func fortProtected(b Board, c hexgrid.Coord, target Tile, captor string) bool {
	if target.Upgrade == UpgradeFort && target.PlayerID != captor {
		return true
	}
	for _, n := range c.Neighbors() {
		if t := b[n]; t.Upgrade == UpgradeFort && t.PlayerID != "" && t.PlayerID != captor {
			return true
		}
	}
	return false
}
