// Package hexgrid provides axial coordinates for the pointy-top hex grid.
//
// A hex is addressed by an axial (q, r) pair; the implied cube coordinate is
// s = -q - r. The six neighbor directions are fixed and shared by every
// subsystem that walks the grid (captures, auto-expansion, terrain).
package hexgrid

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord is an axial hex coordinate.
type Coord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Directions lists the six neighbor offsets, clockwise from east.
var Directions = [6]Coord{
	{1, 0}, {1, -1}, {0, -1}, {-1, 0}, {-1, 1}, {0, 1},
}

// Add returns c translated by d.
func (c Coord) Add(d Coord) Coord {
	return Coord{c.Q + d.Q, c.R + d.R}
}

// Neighbors returns the six adjacent coordinates.
func (c Coord) Neighbors() [6]Coord {
	var out [6]Coord
	for i, d := range Directions {
		out[i] = c.Add(d)
	}
	return out
}

// Distance returns the hex distance between two coordinates.
func (c Coord) Distance(o Coord) int {
	dq := abs(c.Q - o.Q)
	dr := abs(c.R - o.R)
	ds := abs((-c.Q - c.R) - (-o.Q - o.R))
	return (dq + dr + ds) / 2
}

// Key renders the coordinate as the "q:r" hash field used in the KV layout.
func (c Coord) Key() string {
	return strconv.Itoa(c.Q) + ":" + strconv.Itoa(c.R)
}

// ParseKey parses a "q:r" hash field back into a coordinate.
func ParseKey(s string) (Coord, error) {
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return Coord{}, fmt.Errorf("invalid hex key %q", s)
	}
	q, err := strconv.Atoi(s[:i])
	if err != nil {
		return Coord{}, fmt.Errorf("invalid hex key %q: %w", s, err)
	}
	r, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return Coord{}, fmt.Errorf("invalid hex key %q: %w", s, err)
	}
	return Coord{q, r}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
