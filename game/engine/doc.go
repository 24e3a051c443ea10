// Package engine implements the deterministic core of the hex territory
// game: the cost model, the auto-expansion scan, terrain generation, and the
// domain types shared with storage and rooms.
//
// The engine package implements the game mechanics including:
//   - Expansion and attack cost computation with river discounts and
//     fort defense
//   - The periodic auto-expansion majority scan
//   - Seeded mountain chain and river generation
//   - Board queries: tile counts, river access, upgrade tallies
//
// Core Types:
//
// Board is a snapshot of one game's hexes keyed by axial coordinate; Tile is
// the state of a single hex. Event entries form the append-only per-game log
// that replays reproduce ownership from.
//
// Determinism:
//
// Every function here is a pure function of its inputs. Terrain generation
// takes an explicit seed, auto-expansion decides all captures from one board
// snapshot and returns them in a stable order, and the cost functions use
// floating point only for the strength and cost intermediates with a final
// floor. Rooms own all side effects; the engine never touches storage or the
// network.
package engine
