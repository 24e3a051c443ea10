package engine

import (
	"testing"
)

func TestGenerateTerrainDeterministic(t *testing.T) {
	cfg := testConfig()
	first := GenerateTerrain(cfg, 42)
	second := GenerateTerrain(cfg, 42)

	if len(first) != len(second) {
		t.Fatalf("same seed produced %d and %d cells", len(first), len(second))
	}
	for c, tr := range first {
		if second[c] != tr {
			t.Fatalf("cell %v differs: %q vs %q", c, tr, second[c])
		}
	}
}

func TestGenerateTerrainSeedsDiffer(t *testing.T) {
	cfg := testConfig()
	a := GenerateTerrain(cfg, 1)
	b := GenerateTerrain(cfg, 2)

	same := len(a) == len(b)
	if same {
		for c, tr := range a {
			if b[c] != tr {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("different seeds produced identical terrain")
	}
}

func TestGenerateTerrainHasBothKinds(t *testing.T) {
	cfg := testConfig()
	terrain := GenerateTerrain(cfg, 7)

	mountains, rivers := 0, 0
	for _, tr := range terrain {
		switch tr {
		case TerrainMountain:
			mountains++
		case TerrainRiver:
			rivers++
		default:
			t.Fatalf("unexpected terrain value %q", tr)
		}
	}
	// Defaults guarantee at least 3 chains of 8 and 3 rivers of 18.
	if mountains < cfg.MountainChainsMin*cfg.MountainChainLenMin/2 {
		t.Errorf("suspiciously few mountain cells: %d", mountains)
	}
	if rivers == 0 {
		t.Error("no river cells generated")
	}
}

func TestGenerateTerrainStaysInArea(t *testing.T) {
	cfg := testConfig()
	terrain := GenerateTerrain(cfg, 99)

	// Chains and rivers wander from seeds inside the placement square; they
	// can leave it, but never by more than their own length.
	limit := cfg.MountainAreaSize/2 + cfg.RiverLength + cfg.MountainChainLenMax + cfg.RiverForkLength
	for c := range terrain {
		if c.Q > limit || c.Q < -limit || c.R > limit || c.R < -limit {
			t.Fatalf("cell %v outside plausible bounds (limit %d)", c, limit)
		}
	}
}
