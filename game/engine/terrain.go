package engine

import (
	"math/rand"

	"github.com/hexfray/hexfray/game/config"
	"github.com/hexfray/hexfray/game/hexgrid"
)

const seedPlacementAttempts = 200

// GenerateTerrain lays down mountain chains and rivers for a new game.
// It is a pure function of cfg and seed: the same inputs always produce the
// same geography, so a replay instance can regenerate the map from the seed
// stored with the game.
func GenerateTerrain(cfg *config.Config, seed int64) map[hexgrid.Coord]Terrain {
	rng := rand.New(rand.NewSource(seed))
	terrain := make(map[hexgrid.Coord]Terrain)

	generateMountains(cfg, rng, terrain)
	generateRivers(cfg, rng, terrain)
	return terrain
}

func generateMountains(cfg *config.Config, rng *rand.Rand, terrain map[hexgrid.Coord]Terrain) {
	chains := cfg.MountainChainsMin + rng.Intn(cfg.MountainChainsMax-cfg.MountainChainsMin+1)
	seeds := placeSeeds(rng, chains, cfg.MountainAreaSize, cfg.MountainChainSpacing)

	for _, seed := range seeds {
		dir := rng.Intn(6)
		length := cfg.MountainChainLenMin + rng.Intn(cfg.MountainChainLenMax-cfg.MountainChainLenMin+1)

		cur := seed
		for step := 0; step < length; step++ {
			terrain[cur] = TerrainMountain

			if rng.Float64() < cfg.MountainDensity {
				branch := cur.Add(hexgrid.Directions[rng.Intn(6)])
				terrain[branch] = TerrainMountain
			}

			if rng.Float64() < cfg.MountainZigzagChance {
				dir = turn(rng, dir)
			}
			cur = cur.Add(hexgrid.Directions[dir])
		}
	}
}

func generateRivers(cfg *config.Config, rng *rand.Rand, terrain map[hexgrid.Coord]Terrain) {
	seeds := placeSeeds(rng, cfg.RiverCount, cfg.MountainAreaSize, cfg.RiverSpacing)

	for _, seed := range seeds {
		dir := rng.Intn(6)
		forked := false

		cur := seed
		for step := 0; step < cfg.RiverLength; step++ {
			markRiver(terrain, cur)

			// Rivers may split once past their first third.
			if !forked && step > cfg.RiverLength/3 && rng.Float64() < cfg.RiverForkChance {
				forked = true
				forkDir := turn(rng, dir)
				fork := cur
				for i := 0; i < cfg.RiverForkLength; i++ {
					fork = fork.Add(hexgrid.Directions[forkDir])
					markRiver(terrain, fork)
				}
			}

			if rng.Float64() < cfg.MountainZigzagChance {
				dir = turn(rng, dir)
			}
			cur = cur.Add(hexgrid.Directions[dir])
		}
	}
}

// markRiver writes a river cell unless a mountain already occupies it.
func markRiver(terrain map[hexgrid.Coord]Terrain, c hexgrid.Coord) {
	if terrain[c] != TerrainMountain {
		terrain[c] = TerrainRiver
	}
}

// placeSeeds picks count coordinates within a square of the given side,
// pairwise at least spacing apart. Placement gives up on a seed after a
// bounded number of attempts so degenerate configs cannot spin forever.
func placeSeeds(rng *rand.Rand, count, areaSize, spacing int) []hexgrid.Coord {
	seeds := make([]hexgrid.Coord, 0, count)
	half := areaSize / 2

	for len(seeds) < count {
		placed := false
		for attempt := 0; attempt < seedPlacementAttempts; attempt++ {
			c := hexgrid.Coord{
				Q: rng.Intn(areaSize+1) - half,
				R: rng.Intn(areaSize+1) - half,
			}
			ok := true
			for _, s := range seeds {
				if c.Distance(s) < spacing {
					ok = false
					break
				}
			}
			if ok {
				seeds = append(seeds, c)
				placed = true
				break
			}
		}
		if !placed {
			break
		}
	}
	return seeds
}

// turn picks one of the five directions that is not the reverse of dir.
func turn(rng *rand.Rand, dir int) int {
	reverse := (dir + 3) % 6
	next := rng.Intn(5)
	if next >= reverse {
		next++
	}
	return next
}
