// Command bot is an automated player used for load testing and soak runs.
// It registers a throwaway username, queues for a lobby, readies up, and then
// plays the resulting game with a simple frontier strategy: pick a start,
// then keep filling hexes adjacent to its territory until stopped.
//
// Run several in parallel to fill a lobby:
//
//	for i in $(seq 4); do ./bot -server http://localhost:8080 & done
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type identity struct {
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
	Username string `json:"username"`
	Color    string `json:"color"`
}

type frame struct {
	Type    string `json:"type"`
	Q       int    `json:"q"`
	R       int    `json:"r"`
	Color   string `json:"color"`
	RoomID  string `json:"roomId"`
	Seconds int    `json:"seconds"`
	OK      bool   `json:"ok"`
	Reason  string `json:"reason"`
	Hexes   []struct {
		Q       int    `json:"q"`
		R       int    `json:"r"`
		Color   string `json:"color"`
		Terrain string `json:"terrain"`
	} `json:"hexes"`
}

type coord struct{ Q, R int }

var directions = [6]coord{{1, 0}, {1, -1}, {0, -1}, {-1, 0}, {-1, 1}, {0, 1}}

type bot struct {
	server string
	id     identity
	client *http.Client

	// board knowledge accumulated from history and update frames
	mine    map[coord]bool
	blocked map[coord]bool
	color   string
}

func main() {
	server := flag.String("server", "http://localhost:8080", "server base URL")
	name := flag.String("name", "", "username (random when empty)")
	clickDelay := flag.Duration("delay", 300*time.Millisecond, "pause between moves")
	flag.Parse()

	username := *name
	if username == "" {
		username = fmt.Sprintf("bot-%04d", rand.Intn(10000))
	}

	b := &bot{
		server:  *server,
		client:  &http.Client{Timeout: 10 * time.Second},
		mine:    make(map[coord]bool),
		blocked: make(map[coord]bool),
	}

	if err := b.register(username); err != nil {
		log.Fatalf("register: %v", err)
	}
	log.Printf("registered as %s (%s)", b.id.Username, b.id.PlayerID)

	lobbyID, err := b.joinLobby()
	if err != nil {
		log.Fatalf("join lobby: %v", err)
	}
	log.Printf("queued in lobby %s", lobbyID)

	gameID, err := b.waitInLobby(lobbyID)
	if err != nil {
		log.Fatalf("lobby: %v", err)
	}
	log.Printf("game starting: %s", gameID)

	if err := b.playGame(gameID, *clickDelay); err != nil {
		log.Fatalf("game: %v", err)
	}
}

func (b *bot) register(username string) error {
	body, _ := json.Marshal(map[string]string{"username": username})
	resp, err := b.client.Post(b.server+"/api/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(&b.id)
}

func (b *bot) joinLobby() (string, error) {
	body, _ := json.Marshal(map[string]string{"playerId": b.id.PlayerID, "token": b.id.Token})
	resp, err := b.client.Post(b.server+"/api/lobby", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	var out struct {
		RoomID string `json:"roomId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.RoomID, nil
}

func (b *bot) dial(roomID string) (*websocket.Conn, error) {
	wsURL := strings.Replace(b.server, "http", "ws", 1)
	u := fmt.Sprintf("%s/ws/%s?playerId=%s&token=%s",
		wsURL, roomID, url.QueryEscape(b.id.PlayerID), url.QueryEscape(b.id.Token))
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	return conn, err
}

// waitInLobby readies up and blocks until the server hands out a game room.
func (b *bot) waitInLobby(lobbyID string) (string, error) {
	conn, err := b.dial(lobbyID)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "joinGame"}); err != nil {
		return "", err
	}
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			return "", err
		}
		switch f.Type {
		case "countdown":
			log.Printf("countdown: %d", f.Seconds)
		case "startGame":
			return f.RoomID, nil
		}
	}
}

// playGame connects to the game room, picks a start near the origin, and then
// alternates between reading server frames and filling frontier hexes.
func (b *bot) playGame(gameID string, delay time.Duration) error {
	conn, err := b.dial(gameID)
	if err != nil {
		return err
	}
	defer conn.Close()

	frames := make(chan frame, 64)
	go func() {
		defer close(frames)
		for {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			frames <- f
		}
	}()

	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	startPlaced := false

	for {
		select {
		case f, ok := <-frames:
			if !ok {
				log.Printf("disconnected; %d tiles held", len(b.mine))
				return nil
			}
			b.observe(f)
			if f.Type == "lobbyStartTime" && !startPlaced {
				startPlaced = true
				c := b.pickStart()
				log.Printf("starting at %d:%d", c.Q, c.R)
				if err := conn.WriteJSON(map[string]any{"type": "chooseStart", "q": c.Q, "r": c.R}); err != nil {
					return err
				}
			}

		case <-ticker.C:
			if !startPlaced {
				continue
			}
			c, ok := b.pickFrontier()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(map[string]any{"type": "fillHex", "q": c.Q, "r": c.R}); err != nil {
				return err
			}
		}
	}
}

// observe folds one server frame into the bot's board knowledge.
func (b *bot) observe(f frame) {
	switch f.Type {
	case "assignedColor":
		b.color = f.Color
	case "history":
		for _, h := range f.Hexes {
			c := coord{h.Q, h.R}
			if h.Terrain != "" {
				b.blocked[c] = true
			} else if h.Color == b.color && b.color != "" {
				b.mine[c] = true
			}
		}
	case "update":
		c := coord{f.Q, f.R}
		if f.Color == b.color && b.color != "" {
			b.mine[c] = true
		} else {
			delete(b.mine, c)
		}
	case "fillResult":
		if !f.OK && f.Reason == "impassable" {
			b.blocked[coord{f.Q, f.R}] = true
		}
	}
}

// pickStart looks for clear ground in a widening ring around a random offset.
func (b *bot) pickStart() coord {
	base := coord{rand.Intn(21) - 10, rand.Intn(21) - 10}
	for radius := 0; radius < 20; radius++ {
		for dq := -radius; dq <= radius; dq++ {
			for dr := -radius; dr <= radius; dr++ {
				c := coord{base.Q + dq, base.R + dr}
				if !b.blocked[c] {
					return c
				}
			}
		}
	}
	return base
}

// pickFrontier returns a random unowned, unblocked neighbor of the bot's
// territory.
func (b *bot) pickFrontier() (coord, bool) {
	var frontier []coord
	for c := range b.mine {
		for _, d := range directions {
			n := coord{c.Q + d.Q, c.R + d.R}
			if !b.mine[n] && !b.blocked[n] {
				frontier = append(frontier, n)
			}
		}
	}
	if len(frontier) == 0 {
		return coord{}, false
	}
	return frontier[rand.Intn(len(frontier))], true
}
