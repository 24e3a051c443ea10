// Command replaycheck prints quick, human-readable heuristics about game
// event logs. It summarizes event counts by type, per-player activity and
// final territory, and flags logs whose replay never converges (captures by
// players that never started).
//
// Logs come either from files (the JSON body of /api/history) or straight
// from a running server with -server and -game.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"time"

	"github.com/hexfray/hexfray/game/engine"
	"github.com/hexfray/hexfray/game/hexgrid"
)

// historyBody is the /api/history response shape.
type historyBody struct {
	Clicks []engine.Event `json:"clicks"`
}

func main() {
	server := flag.String("server", "", "server base URL to fetch history from (e.g. http://localhost:8080)")
	gameID := flag.String("game", "", "game id to fetch when -server is set")
	flag.Parse()

	if *server != "" {
		if *gameID == "" {
			fmt.Fprintln(os.Stderr, "-game is required with -server")
			os.Exit(1)
		}
		events, err := fetchHistory(*server, *gameID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fetch history: %v\n", err)
			os.Exit(1)
		}
		analyze(*gameID, events)
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: replaycheck [-server URL -game ID] [file ...]")
		os.Exit(1)
	}
	for _, path := range flag.Args() {
		fmt.Printf("\n=== Analyzing %s ===\n", path)
		events, err := loadHistory(path)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		analyze(path, events)
	}
}

func fetchHistory(server, gameID string) ([]engine.Event, error) {
	u := fmt.Sprintf("%s/api/history?lobbyId=%s", server, url.QueryEscape(gameID))
	resp, err := http.Get(u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, body)
	}
	var h historyBody
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, err
	}
	return h.Clicks, nil
}

func loadHistory(path string) ([]engine.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// Accept both the endpoint envelope and a bare event array.
	var h historyBody
	if err := json.Unmarshal(data, &h); err == nil && h.Clicks != nil {
		return h.Clicks, nil
	}
	var events []engine.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func analyze(name string, events []engine.Event) {
	if len(events) == 0 {
		fmt.Println("No events.")
		return
	}

	byType := map[engine.EventType]int{}
	byPlayer := map[string]int{}
	owners := map[hexgrid.Coord]string{}
	started := map[string]bool{}
	orphanCaptures := 0

	for _, e := range events {
		byType[e.EventType]++
		byPlayer[e.PlayerID]++
		c := hexgrid.Coord{Q: e.Q, R: e.R}
		switch e.EventType {
		case engine.EventStart:
			started[e.PlayerID] = true
			owners[c] = e.PlayerID
		case engine.EventCapture, engine.EventAutoCapture:
			if !started[e.PlayerID] {
				orphanCaptures++
			}
			owners[c] = e.PlayerID
		}
	}

	first, last := events[0].Timestamp, events[len(events)-1].Timestamp
	fmt.Printf("Events: %d over %s\n", len(events),
		time.Duration(last-first)*time.Millisecond)
	for _, et := range []engine.EventType{engine.EventStart, engine.EventCapture, engine.EventAutoCapture, engine.EventUpgrade} {
		if n := byType[et]; n > 0 {
			fmt.Printf("  %-12s %d\n", et, n)
		}
	}

	tiles := map[string]int{}
	for _, p := range owners {
		tiles[p]++
	}
	players := make([]string, 0, len(byPlayer))
	for p := range byPlayer {
		players = append(players, p)
	}
	sort.Strings(players)
	fmt.Println("Final territory:")
	for _, p := range players {
		fmt.Printf("  %s: %d tiles (%d events)\n", p, tiles[p], byPlayer[p])
	}

	if orphanCaptures > 0 {
		fmt.Printf("WARNING: %d captures by players with no start event in %s\n",
			orphanCaptures, name)
	}
}
