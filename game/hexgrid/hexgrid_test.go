package hexgrid

import (
	"testing"
)

func TestNeighbors(t *testing.T) {
	n := Coord{0, 0}.Neighbors()
	want := [6]Coord{{1, 0}, {1, -1}, {0, -1}, {-1, 0}, {-1, 1}, {0, 1}}
	if n != want {
		t.Errorf("Neighbors() = %v, want %v", n, want)
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b Coord
		want int
	}{
		{Coord{0, 0}, Coord{0, 0}, 0},
		{Coord{0, 0}, Coord{1, 0}, 1},
		{Coord{0, 0}, Coord{1, -1}, 1},
		{Coord{0, 0}, Coord{3, 0}, 3},
		{Coord{0, 0}, Coord{2, -1}, 2},
		{Coord{-2, 1}, Coord{3, -1}, 5},
	}
	for _, tt := range tests {
		if got := tt.a.Distance(tt.b); got != tt.want {
			t.Errorf("Distance(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := tt.b.Distance(tt.a); got != tt.want {
			t.Errorf("Distance is not symmetric for %v, %v", tt.a, tt.b)
		}
	}
}

func TestKeyRoundTrip(t *testing.T) {
	coords := []Coord{{0, 0}, {5, -3}, {-12, 40}}
	for _, c := range coords {
		parsed, err := ParseKey(c.Key())
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", c.Key(), err)
		}
		if parsed != c {
			t.Errorf("round trip %v -> %q -> %v", c, c.Key(), parsed)
		}
	}
}

func TestParseKeyRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "12", "a:b", "1:2:3", ":4"} {
		if _, err := ParseKey(s); err == nil {
			t.Errorf("ParseKey(%q) should fail", s)
		}
	}
}
