package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hexfray/hexfray/game/engine"
)

func writeLog(t *testing.T, name string, events []engine.Event) string {
	t.Helper()
	data, err := json.Marshal(events)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestValidateCleanLog(t *testing.T) {
	path := writeLog(t, "clean.json", []engine.Event{
		{PlayerID: "p1", Q: 0, R: 0, EventType: engine.EventStart, Timestamp: 100},
		{PlayerID: "p1", Q: 1, R: 0, EventType: engine.EventCapture, Timestamp: 200},
		{PlayerID: "p1", Q: 1, R: 0, EventType: engine.EventUpgrade, Timestamp: 300},
		{PlayerID: "p1", Q: 0, R: 1, EventType: engine.EventAutoCapture, Timestamp: 400},
	})

	result := validateLog(path)
	if !result.Valid {
		t.Fatalf("expected valid, got errors: %v", result.Errors)
	}
}

func TestValidateCaptureBeforeStart(t *testing.T) {
	path := writeLog(t, "nostart.json", []engine.Event{
		{PlayerID: "p1", Q: 1, R: 0, EventType: engine.EventCapture, Timestamp: 100},
	})

	result := validateLog(path)
	if result.Valid {
		t.Fatal("expected capture before start to fail")
	}
}

func TestValidateDoubleStart(t *testing.T) {
	path := writeLog(t, "double.json", []engine.Event{
		{PlayerID: "p1", Q: 0, R: 0, EventType: engine.EventStart, Timestamp: 100},
		{PlayerID: "p1", Q: 5, R: 5, EventType: engine.EventStart, Timestamp: 200},
	})

	result := validateLog(path)
	if result.Valid {
		t.Fatal("expected double start to fail")
	}
}

func TestValidateBackwardsTimestamps(t *testing.T) {
	path := writeLog(t, "backwards.json", []engine.Event{
		{PlayerID: "p1", Q: 0, R: 0, EventType: engine.EventStart, Timestamp: 500},
		{PlayerID: "p1", Q: 1, R: 0, EventType: engine.EventCapture, Timestamp: 100},
	})

	result := validateLog(path)
	if result.Valid {
		t.Fatal("expected backwards timestamps to fail")
	}
}

func TestValidateUpgradeOnUnownedHex(t *testing.T) {
	path := writeLog(t, "unowned.json", []engine.Event{
		{PlayerID: "p1", Q: 0, R: 0, EventType: engine.EventStart, Timestamp: 100},
		{PlayerID: "p1", Q: 3, R: 3, EventType: engine.EventUpgrade, Timestamp: 200},
	})

	result := validateLog(path)
	if result.Valid {
		t.Fatal("expected upgrade on unowned hex to fail")
	}
}

func TestValidateHistoryEnvelope(t *testing.T) {
	data, err := json.Marshal(map[string][]engine.Event{
		"clicks": {
			{PlayerID: "p1", Q: 0, R: 0, EventType: engine.EventStart, Timestamp: 100},
		},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "envelope.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result := validateLog(path)
	if !result.Valid {
		t.Fatalf("expected envelope form to validate, got: %v", result.Errors)
	}
}

func TestValidateEmptyAndGarbage(t *testing.T) {
	empty := writeLog(t, "empty.json", []engine.Event{})
	if validateLog(empty).Valid {
		t.Fatal("expected empty log to fail")
	}

	garbage := filepath.Join(t.TempDir(), "garbage.json")
	if err := os.WriteFile(garbage, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if validateLog(garbage).Valid {
		t.Fatal("expected garbage to fail")
	}
}
