// Command validate checks game event log JSON files for consistency. For
// each file it checks:
//   - JSON structure and known event types
//   - Non-decreasing timestamps
//   - Every capturing player has a prior start event
//   - Upgrades only land on hexes the player owns at that point of the log
//   - A replay of the log produces a single owner per hex
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hexfray/hexfray/game/engine"
	"github.com/hexfray/hexfray/game/hexgrid"
)

// ValidationResult captures the outcome of validating a single file.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateLog loads and validates a single event log file.
func validateLog(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	events, err := decodeEvents(data)
	if err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}
	if len(events) == 0 {
		result.fail("Log is empty")
		return result
	}

	checkEvents(events, &result)
	return result
}

// decodeEvents accepts both the /api/history envelope and a bare array.
func decodeEvents(data []byte) ([]engine.Event, error) {
	var envelope struct {
		Clicks []engine.Event `json:"clicks"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Clicks != nil {
		return envelope.Clicks, nil
	}
	var events []engine.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func checkEvents(events []engine.Event, result *ValidationResult) {
	validTypes := map[engine.EventType]bool{
		engine.EventStart:       true,
		engine.EventCapture:     true,
		engine.EventAutoCapture: true,
		engine.EventUpgrade:     true,
	}

	owners := map[hexgrid.Coord]string{}
	started := map[string]bool{}
	prevTs := int64(0)

	for i, e := range events {
		if !validTypes[e.EventType] {
			result.fail("event %d: unknown type %q", i, e.EventType)
			continue
		}
		if e.PlayerID == "" {
			result.fail("event %d: missing playerId", i)
		}
		if e.Timestamp < prevTs {
			result.fail("event %d: timestamp went backwards (%d < %d)", i, e.Timestamp, prevTs)
		}
		prevTs = e.Timestamp

		c := hexgrid.Coord{Q: e.Q, R: e.R}
		switch e.EventType {
		case engine.EventStart:
			if started[e.PlayerID] {
				result.fail("event %d: player %s started twice", i, e.PlayerID)
			}
			started[e.PlayerID] = true
			owners[c] = e.PlayerID
		case engine.EventCapture, engine.EventAutoCapture:
			if !started[e.PlayerID] {
				result.fail("event %d: capture by %s before their start", i, e.PlayerID)
			}
			if owners[c] == e.PlayerID {
				result.fail("event %d: %s captured %s which they already own", i, e.PlayerID, c.Key())
			}
			owners[c] = e.PlayerID
		case engine.EventUpgrade:
			if owners[c] != e.PlayerID {
				result.fail("event %d: upgrade on %s not owned by %s", i, c.Key(), e.PlayerID)
			}
		}
	}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: validate <log.json> [...]")
		os.Exit(1)
	}

	allValid := true
	for _, path := range os.Args[1:] {
		result := validateLog(path)
		if result.Valid {
			fmt.Printf("OK   %s\n", result.File)
			continue
		}
		allValid = false
		fmt.Printf("FAIL %s\n", result.File)
		for _, msg := range result.Errors {
			fmt.Printf("     - %s\n", msg)
		}
	}
	if !allValid {
		os.Exit(1)
	}
}
