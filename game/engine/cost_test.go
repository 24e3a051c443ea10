package engine

import (
	"testing"

	"github.com/hexfray/hexfray/game/config"
	"github.com/hexfray/hexfray/game/hexgrid"
)

func testConfig() *config.Config {
	return config.Default()
}

// staticPoints builds a PointsLookup from a fixed map.
func staticPoints(m map[string]int) PointsLookup {
	return func(playerID string) int { return m[playerID] }
}

func TestMaxPoints(t *testing.T) {
	cfg := testConfig()
	tests := []struct {
		banks, tiles, want int
	}{
		{0, 0, 200},
		{0, 1, 205},
		{0, 4, 220},
		{1, 4, 270},
		{2, 10, 350},
	}
	for _, tt := range tests {
		if got := MaxPoints(cfg, tt.banks, tt.tiles); got != tt.want {
			t.Errorf("MaxPoints(banks=%d, tiles=%d) = %d, want %d", tt.banks, tt.tiles, got, tt.want)
		}
	}
}

func TestExpansionCostGrowth(t *testing.T) {
	cfg := testConfig()
	if got := ExpansionCost(cfg, 0); got != 15 {
		t.Errorf("ExpansionCost(0 tiles) = %d, want 15", got)
	}
	if got := ExpansionCost(cfg, 1); got != 17 {
		t.Errorf("ExpansionCost(1 tile) = %d, want 17", got)
	}
	prev := 0
	for tiles := 0; tiles < 200; tiles++ {
		c := ExpansionCost(cfg, tiles)
		if c < prev {
			t.Fatalf("ExpansionCost decreased at %d tiles: %d < %d", tiles, c, prev)
		}
		prev = c
	}
}

func TestCaptureCostUnownedHex(t *testing.T) {
	cfg := testConfig()
	b := Board{
		{Q: 0, R: 0}: {PlayerID: "a", Color: "#e74c3c"},
	}
	cost, ok := CaptureCost(cfg, b, "a", hexgrid.Coord{Q: 1, R: 0}, nil)
	if !ok {
		t.Fatal("unowned plain hex must be capturable")
	}
	if cost != 17 {
		t.Errorf("cost = %d, want 17", cost)
	}
}

func TestCaptureCostOccupiedDefender(t *testing.T) {
	cfg := testConfig()
	b := Board{
		{Q: 0, R: 0}: {PlayerID: "a"},
		{Q: 4, R: 0}: {PlayerID: "b"},
		{Q: 5, R: 0}: {PlayerID: "b"},
		{Q: 5, R: 1}: {PlayerID: "b"},
	}
	points := staticPoints(map[string]int{"b": 200})

	cost, ok := CaptureCost(cfg, b, "a", hexgrid.Coord{Q: 4, R: 0}, points)
	if !ok {
		t.Fatal("occupied hex must be attackable")
	}
	// strength = (1 + 200/3) * 3 * 10.5, attack = 17 + 5 + floor(2.5*sqrt(strength))
	if cost != 137 {
		t.Errorf("attack cost = %d, want 137", cost)
	}
}

func TestCaptureCostFortDoubles(t *testing.T) {
	cfg := testConfig()
	target := hexgrid.Coord{Q: 4, R: 0}
	points := staticPoints(map[string]int{"b": 200})

	fortOnTarget := Board{
		{Q: 0, R: 0}: {PlayerID: "a"},
		{Q: 4, R: 0}: {PlayerID: "b", Upgrade: UpgradeFort},
		{Q: 5, R: 0}: {PlayerID: "b"},
		{Q: 5, R: 1}: {PlayerID: "b"},
	}
	cost, ok := CaptureCost(cfg, fortOnTarget, "a", target, points)
	if !ok || cost != 185 {
		t.Errorf("fort on target: cost = %d (ok=%v), want 185", cost, ok)
	}

	fortOnNeighbor := Board{
		{Q: 0, R: 0}: {PlayerID: "a"},
		{Q: 4, R: 0}: {PlayerID: "b"},
		{Q: 5, R: 0}: {PlayerID: "b", Upgrade: UpgradeFort},
		{Q: 5, R: 1}: {PlayerID: "b"},
	}
	cost, ok = CaptureCost(cfg, fortOnNeighbor, "a", target, points)
	if !ok || cost != 185 {
		t.Errorf("fort on defender neighbor: cost = %d (ok=%v), want 185", cost, ok)
	}
}

func TestCaptureCostRiverDiscount(t *testing.T) {
	cfg := testConfig()
	b := Board{
		{Q: 0, R: 0}:  {PlayerID: "a"},
		{Q: 1, R: -1}: {Terrain: TerrainRiver},
	}
	// (1,0) is adjacent to the river, and so is a's (0,0).
	cost, ok := CaptureCost(cfg, b, "a", hexgrid.Coord{Q: 1, R: 0}, nil)
	if !ok {
		t.Fatal("river-adjacent plain hex must be capturable")
	}
	if cost != 11 { // floor(17 * 0.7)
		t.Errorf("discounted cost = %d, want 11", cost)
	}

	// Same board but the target far from the river: full price.
	cost, ok = CaptureCost(cfg, b, "a", hexgrid.Coord{Q: 0, R: 1}, nil)
	if !ok || cost != 17 {
		t.Errorf("undiscounted cost = %d (ok=%v), want 17", cost, ok)
	}
}

func TestCaptureCostRejectsNonTargets(t *testing.T) {
	cfg := testConfig()
	b := Board{
		{Q: 0, R: 0}: {PlayerID: "a"},
		{Q: 1, R: 0}: {Terrain: TerrainMountain},
		{Q: 0, R: 1}: {Terrain: TerrainRiver},
	}
	if _, ok := CaptureCost(cfg, b, "a", hexgrid.Coord{Q: 0, R: 0}, nil); ok {
		t.Error("own hex must not be a capture target")
	}
	if _, ok := CaptureCost(cfg, b, "a", hexgrid.Coord{Q: 1, R: 0}, nil); ok {
		t.Error("mountain must not be a capture target")
	}
	if _, ok := CaptureCost(cfg, b, "a", hexgrid.Coord{Q: 0, R: 1}, nil); ok {
		t.Error("river must not be a capture target")
	}
}

func TestCanReach(t *testing.T) {
	b := Board{
		{Q: 0, R: 0}:  {PlayerID: "a"},
		{Q: 1, R: -1}: {Terrain: TerrainRiver},
	}
	if !CanReach(b, "new", hexgrid.Coord{Q: 9, R: 9}) {
		t.Error("a player with no tiles reaches anywhere")
	}
	if !CanReach(b, "a", hexgrid.Coord{Q: 1, R: 0}) {
		t.Error("neighbor of owned tile must be reachable")
	}
	if CanReach(b, "a", hexgrid.Coord{Q: 5, R: 5}) {
		t.Error("distant hex must not be reachable")
	}
	// (2,-1) touches the river at (1,-1) but no a-owned tile; river access
	// makes it reachable anyway.
	if !CanReach(b, "a", hexgrid.Coord{Q: 2, R: -1}) {
		t.Error("river access must extend reach along the river")
	}
}

func TestUpgradeCounts(t *testing.T) {
	b := Board{
		{Q: 0, R: 0}: {PlayerID: "a", Upgrade: UpgradeBank},
		{Q: 1, R: 0}: {PlayerID: "a", Upgrade: UpgradeCity},
		{Q: 2, R: 0}: {PlayerID: "a", Upgrade: UpgradeCity},
		{Q: 3, R: 0}: {PlayerID: "a"},
		{Q: 4, R: 0}: {PlayerID: "b", Upgrade: UpgradeFort},
	}
	counts := b.UpgradeCounts("a")
	if counts["banks"] != 1 || counts["cities"] != 2 || counts["forts"] != 0 {
		t.Errorf("UpgradeCounts = %v, want banks=1 cities=2 forts=0", counts)
	}
}
